package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func counterSchema() *Schema {
	return NewSchema(
		FieldDescriptor{
			Name: "count",
			Default: 0,
			Reducer: func(current, update any) (any, error) {
				return current.(int) + update.(int), nil
			},
		},
		FieldDescriptor{Name: "name", Default: ""},
		FieldDescriptor{Name: "action", Default: "", IsAction: true},
		FieldDescriptor{Name: "tags", Factory: func() any { return []string{} }},
	)
}

func TestStateStore_InitializeAppliesDefaults(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))

	v, ok := s.Get("count")
	require.True(t, ok)
	require.Equal(t, 0, v)
}

func TestStateStore_InitializeRejectsUnknownField(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	err := s.Initialize(map[string]any{"bogus": 1})
	require.Error(t, err)
}

func TestStateStore_UpdateUsesReducer(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(map[string]any{"count": 5}))

	require.NoError(t, s.Update(map[string]any{"count": 3}))
	v, _ := s.Get("count")
	require.Equal(t, 8, v)
}

func TestStateStore_UpdateReplacesFieldWithoutReducer(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))

	require.NoError(t, s.Update(map[string]any{"name": "hello"}))
	v, _ := s.Get("name")
	require.Equal(t, "hello", v)
}

func TestStateStore_UpdateRejectsFailingReducerAtomically(t *testing.T) {
	t.Parallel()
	schema := NewSchema(FieldDescriptor{
		Name: "count", Default: 0,
		Reducer: func(current, update any) (any, error) {
			return nil, errors.New("boom")
		},
	}, FieldDescriptor{Name: "name", Default: ""})
	s := NewStateStore(schema, false)
	require.NoError(t, s.Initialize(map[string]any{"count": 1, "name": "a"}))

	err := s.Update(map[string]any{"count": 1, "name": "b"})
	require.Error(t, err)

	name, _ := s.Get("name")
	require.Equal(t, "a", name, "a failing reducer must reject the whole update, including sibling fields")
}

func TestStateStore_ResetActionsRestoresDefaults(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))
	require.NoError(t, s.Update(map[string]any{"action": "fire"}))

	v, _ := s.Get("action")
	require.Equal(t, "fire", v)

	s.ResetActions()
	v, _ = s.Get("action")
	require.Equal(t, "", v)
}

func TestStateStore_ResetActionsLeavesNonActionFieldsAlone(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))
	require.NoError(t, s.Update(map[string]any{"name": "keep-me"}))

	s.ResetActions()
	v, _ := s.Get("name")
	require.Equal(t, "keep-me", v)
}

func TestStateStore_FactoryProducesFreshInstancePerInitialise(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))
	v, _ := s.Get("tags")
	tags := v.([]string)
	tags = append(tags, "x")
	_ = tags

	s2 := NewStateStore(counterSchema(), false)
	require.NoError(t, s2.Initialize(nil))
	v2, _ := s2.Get("tags")
	require.Empty(t, v2.([]string))
}

func TestStateStore_SnapshotReturnsAllFields(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(map[string]any{"name": "x"}))

	snap := s.Snapshot()
	require.Equal(t, "x", snap["name"])
	require.Contains(t, snap, "count")
}

func TestStateStore_SignalNotifiesWithoutDataChange(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	var calls int
	var lastChanged []string
	s.Subscribe(func(changed []string) {
		calls++
		lastChanged = changed
	})

	s.Signal()
	require.Equal(t, 1, calls)
	require.Nil(t, lastChanged)
}

func TestStateStore_SubscribeReceivesChangedFieldNames(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))

	var got []string
	s.Subscribe(func(changed []string) { got = changed })

	require.NoError(t, s.Update(map[string]any{"name": "y"}))
	require.Equal(t, []string{"name"}, got)
}

func TestStateStore_UnsubscribeStopsNotifications(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))

	calls := 0
	unsub := s.Subscribe(func(changed []string) { calls++ })
	unsub()

	require.NoError(t, s.Update(map[string]any{"name": "z"}))
	require.Equal(t, 0, calls)
}

func TestStateStore_NotifySurvivesPanickingSubscriber(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), false)
	require.NoError(t, s.Initialize(nil))

	secondCalled := false
	s.Subscribe(func(changed []string) { panic("boom") })
	s.Subscribe(func(changed []string) { secondCalled = true })

	require.NoError(t, s.Update(map[string]any{"name": "q"}))
	require.True(t, secondCalled, "a panicking subscriber must not prevent later subscribers from running")
}

func TestStateStore_AllowUnknownFieldsWhenPermitted(t *testing.T) {
	t.Parallel()
	s := NewStateStore(counterSchema(), true)
	require.NoError(t, s.Initialize(map[string]any{"extra": "ok"}))
	v, ok := s.Get("extra")
	require.True(t, ok)
	require.Equal(t, "ok", v)
}
