package runtime

import "sort"

// Environment maps variable names to values for one function call or one
// conditional block. There is no parent link: a block scope starts as a
// snapshot of its enclosing scope and is discarded when the block ends.
type Environment struct {
	values map[string]Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Get looks up name in this environment only.
func (e *Environment) Get(name string) (Value, bool) {
	val, ok := e.values[name]
	return val, ok
}

// Set binds name to value, inserting or overwriting. Declaration and
// assignment are the same operation.
func (e *Environment) Set(name string, value Value) {
	e.values[name] = value
}

// SnapshotInto copies every binding of e into other, overwriting bindings
// other already has under the same name. Later changes to either side are
// not seen by the other.
func (e *Environment) SnapshotInto(other *Environment) {
	for name, val := range e.values {
		other.values[name] = val
	}
}

// Child returns a new environment seeded with a snapshot of e.
func (e *Environment) Child() *Environment {
	child := NewEnvironment()
	e.SnapshotInto(child)
	return child
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
