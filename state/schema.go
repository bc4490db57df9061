// Package state implements the BTflow reactive state store: a typed,
// schema-validated, reducer-driven blackboard shared between a tree's
// leaves and its Runner (spec.md §4.1).
//
// Unlike the original Pydantic-model-backed StateManager, BTflow declares
// its schema as data — a slice of FieldDescriptor, in the same spirit as
// internal/config's ConfigOption/ConfigSchema — since Go has no runtime
// equivalent of Pydantic's field introspection.
package state

import "fmt"

// Reducer combines the current value of a field with an incoming update,
// returning the field's next value. A reducer that returns an error aborts
// the whole Update call; no partial writes are committed (spec.md §4.1).
type Reducer func(current, update any) (any, error)

// FieldDescriptor declares one field of a StateStore's schema.
type FieldDescriptor struct {
	// Name is the field's key, used as the map key in Initialize/Update/Get.
	Name string
	// Default is the field's zero value when neither Initialize nor a
	// Factory supplies one. Ignored if Factory is non-nil.
	Default any
	// Factory, if set, is called to produce a fresh default value each
	// time one is needed (Initialize with no value supplied, or
	// ResetActions for an IsAction field) — avoiding the shared-mutable-
	// default trap for slice/map-typed fields.
	Factory func() any
	// Reducer, if set, combines the field's current value with an
	// incoming Update value. If nil, Update replaces the field outright.
	Reducer Reducer
	// IsAction marks a field that ResetActions restores to its default
	// after each consumption pass (spec.md §4.1's "action fields", e.g.
	// an RL-style per-tick action output).
	IsAction bool
}

func (f FieldDescriptor) defaultValue() any {
	if f.Factory != nil {
		return f.Factory()
	}
	return f.Default
}

// Schema is an ordered, lookup-indexed set of FieldDescriptors.
type Schema struct {
	fields []FieldDescriptor
	byName map[string]*FieldDescriptor
}

// NewSchema returns a Schema registering the given fields, in order.
// Duplicate names overwrite earlier registrations (last wins), matching
// internal/config's ConfigSchema.Register convention.
func NewSchema(fields ...FieldDescriptor) *Schema {
	s := &Schema{byName: make(map[string]*FieldDescriptor, len(fields))}
	for _, f := range fields {
		s.Register(f)
	}
	return s
}

// Register adds or replaces a field descriptor.
func (s *Schema) Register(f FieldDescriptor) {
	ref := new(FieldDescriptor)
	*ref = f
	if _, exists := s.byName[f.Name]; !exists {
		s.fields = append(s.fields, f)
	} else {
		for i := range s.fields {
			if s.fields[i].Name == f.Name {
				s.fields[i] = f
				break
			}
		}
	}
	s.byName[f.Name] = ref
}

// Lookup returns the descriptor for name, or nil if unregistered.
func (s *Schema) Lookup(name string) *FieldDescriptor {
	return s.byName[name]
}

// IsKnown reports whether name is registered.
func (s *Schema) IsKnown(name string) bool {
	return s.byName[name] != nil
}

// Fields returns every registered field descriptor, in registration order.
func (s *Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// ActionFields returns the names of every field marked IsAction.
func (s *Schema) ActionFields() []string {
	var out []string
	for _, f := range s.fields {
		if f.IsAction {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s *Schema) validateKeys(values map[string]any) error {
	for k := range values {
		if !s.IsKnown(k) {
			return fmt.Errorf("state: unknown field %q", k)
		}
	}
	return nil
}
