// Package locomotion defines the reduced-body and whole-body state types, phases and preview
// controls shared by the preview engine and its collaborators.
package locomotion

import (
	"github.com/pkg/errors"
)

// FootID is the index of a foot in a Feet table.
type FootID int

// Feet maps foot names to dense FootIDs and back. The ids are assigned in the order the names
// were given, which is the order the floating-base model reports its end effectors.
type Feet struct {
	names []string
	ids   map[string]FootID
}

// NewFeet builds a foot table from the end-effector names of a model.
func NewFeet(names []string) (*Feet, error) {
	if len(names) == 0 {
		return nil, errors.New("a legged system needs at least one foot")
	}
	f := &Feet{names: make([]string, 0, len(names)), ids: make(map[string]FootID, len(names))}
	for _, name := range names {
		if name == "" {
			return nil, errors.New("foot name cannot be empty")
		}
		if _, ok := f.ids[name]; ok {
			return nil, errors.Errorf("duplicate foot name %q", name)
		}
		f.ids[name] = FootID(len(f.names))
		f.names = append(f.names, name)
	}
	return f, nil
}

// Len returns the number of feet.
func (f *Feet) Len() int {
	return len(f.names)
}

// Name returns the name of the foot with the given id, or the empty string if it is unknown.
func (f *Feet) Name(id FootID) string {
	if !f.Contains(id) {
		return ""
	}
	return f.names[id]
}

// ID looks up a foot by name.
func (f *Feet) ID(name string) (FootID, bool) {
	id, ok := f.ids[name]
	return id, ok
}

// Contains returns whether id refers to a foot of this table.
func (f *Feet) Contains(id FootID) bool {
	return id >= 0 && int(id) < len(f.names)
}

// Names returns the foot names ordered by id.
func (f *Feet) Names() []string {
	return append([]string(nil), f.names...)
}

// IDs returns every foot id in order.
func (f *Feet) IDs() []FootID {
	ids := make([]FootID, len(f.names))
	for i := range ids {
		ids[i] = FootID(i)
	}
	return ids
}
