package state

import (
	"fmt"
	"sync"

	"github.com/joeycumines/btflow"
)

// Subscriber is notified after every Update and every Signal call. changed
// lists the field names that were written this pass, or nil for a Signal
// (zero-change notify, spec.md §4.1's "signal()").
type Subscriber func(changed []string)

// StateStore is a mutex-guarded, schema-validated, reducer-driven
// blackboard. It is the Go re-architecture of the original
// StateManager (ported from original_source/btflow/core/state.py):
// Pydantic model validation is replaced by the Schema's per-field
// presence check, and the Pydantic deep-copy-via-model_dump is replaced
// by a direct field-map copy, since Go has no equivalent JSON-round-trip
// default for a dynamically-typed struct-model type.
type StateStore struct {
	schema       *Schema
	allowUnknown bool

	mu          sync.Mutex
	data        map[string]any
	initialised bool

	subsMu sync.Mutex
	subs   []subscription
	nextID uint64
}

type subscription struct {
	id uint64
	fn Subscriber
}

// NewStateStore returns a StateStore governed by schema. If allowUnknown
// is false (the default posture, spec.md §4.1), Initialize/Update reject
// any key not present in schema.
func NewStateStore(schema *Schema, allowUnknown bool) *StateStore {
	return &StateStore{schema: schema, allowUnknown: allowUnknown}
}

// Initialize sets the store's starting values: any schema field not
// present in initial gets its Default/Factory value. Initialize does not
// notify subscribers (matching StateManager.initialize). It may be called
// more than once (e.g. on checkpoint restore), replacing prior data
// wholesale.
func (s *StateStore) Initialize(initial map[string]any) error {
	if !s.allowUnknown {
		if err := s.schema.validateKeys(initial); err != nil {
			return fmt.Errorf("%w: %v", btflow.ErrSchema, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(map[string]any, len(s.schema.fields)+len(initial))
	for _, f := range s.schema.fields {
		data[f.Name] = f.defaultValue()
	}
	for k, v := range initial {
		data[k] = v
	}
	s.data = data
	s.initialised = true
	return nil
}

func (s *StateStore) ensureInitLocked() {
	if s.data == nil {
		data := make(map[string]any, len(s.schema.fields))
		for _, f := range s.schema.fields {
			data[f.Name] = f.defaultValue()
		}
		s.data = data
	}
}

// Update applies updates to the store: for each key with a registered
// Reducer, the new value is reducer(current, update); otherwise the value
// is replaced outright. All updates are validated and combined before any
// are committed, so a failing reducer leaves the store unchanged
// (spec.md §4.1). On success, subscribers are notified with the list of
// changed field names.
func (s *StateStore) Update(updates map[string]any) error {
	if !s.allowUnknown {
		if err := s.schema.validateKeys(updates); err != nil {
			return fmt.Errorf("%w: %v", btflow.ErrSchema, err)
		}
	}

	changed := make([]string, 0, len(updates))

	s.mu.Lock()
	s.ensureInitLocked()

	pending := make(map[string]any, len(updates))
	for name, updateVal := range updates {
		current := s.data[name]
		final := updateVal
		if f := s.schema.Lookup(name); f != nil && f.Reducer != nil {
			v, err := func() (v any, err error) {
				defer func() {
					if p := recover(); p != nil {
						err = fmt.Errorf("panic: %v", p)
					}
				}()
				return f.Reducer(current, updateVal)
			}()
			if err != nil {
				s.mu.Unlock()
				return fmt.Errorf("%w: field %q: %v", btflow.ErrReducer, name, err)
			}
			final = v
		}
		pending[name] = final
		changed = append(changed, name)
	}
	for name, final := range pending {
		s.data[name] = final
	}
	s.mu.Unlock()

	s.notify(changed)
	return nil
}

// Get returns the current value of a single field and whether it is
// present.
func (s *StateStore) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitLocked()
	v, ok := s.data[name]
	return v, ok
}

// Snapshot returns a shallow copy of the entire state map (spec.md §4.1
// get()). As with the teacher's Blackboard.Snapshot, mutable field values
// (slices, maps) are not deep-copied; callers that mutate a returned
// slice/map value are mutating the store's own data.
func (s *StateStore) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitLocked()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// ResetActions restores every IsAction field to its Default/Factory value
// (spec.md §4.1). Intended to be called once per step/tick, before the
// tree runs, so action outputs from the previous tick don't leak forward.
func (s *StateStore) ResetActions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitLocked()
	for _, name := range s.schema.ActionFields() {
		f := s.schema.Lookup(name)
		s.data[name] = f.defaultValue()
	}
}

// GetActions returns a snapshot of just the IsAction fields' current
// values.
func (s *StateStore) GetActions() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureInitLocked()
	names := s.schema.ActionFields()
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = s.data[name]
	}
	return out
}

// Subscribe registers fn to be called after every Update/Signal, in
// subscription order. It returns an unsubscribe function.
func (s *StateStore) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Signal notifies subscribers with no field changes — a zero-change
// notify used by constructs like LoopUntilSuccess to prompt a re-tick
// without otherwise touching the store (spec.md §4.1).
func (s *StateStore) Signal() {
	s.notify(nil)
}

// notify calls every subscriber in registration order, recovering from
// and discarding any panic so one bad subscriber cannot break the others
// (mirroring StateManager._notify_listeners' try/except-and-log).
func (s *StateStore) notify(changed []string) {
	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		s.callSubscriber(sub.fn, changed)
	}
}

func (s *StateStore) callSubscriber(fn Subscriber, changed []string) {
	defer func() {
		_ = recover()
	}()
	fn(changed)
}
