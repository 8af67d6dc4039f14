package evaluator

// Env is a single-level environment mapping symbol names to values.
// The evaluator owns one global Env per run; every thunk carries an
// attached Env swapped in and out around calls.
type Env struct {
	bindings map[string]Value
}

// NewEnv creates a new empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Get looks up a name in this environment only.
func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Set binds a name unconditionally, shadowing any existing entry.
// Parameter binding uses Set; `define` goes through Define.
func (e *Env) Set(name string, val Value) {
	e.bindings[name] = val
}

// Has checks whether a name is bound in this environment.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Define binds a name only if it is absent. It reports false when the name
// is already bound; environments are single-assignment under `define`.
func (e *Env) Define(name string, val Value) bool {
	if _, ok := e.bindings[name]; ok {
		return false
	}
	e.bindings[name] = val
	return true
}

// Len returns the number of bindings.
func (e *Env) Len() int {
	return len(e.bindings)
}

// Merge builds the executing environment for a call: the caller's attached
// environment extended with the callee's captured environment, callee
// entries winning on collision. The result is a fresh Env; neither input
// is mutated.
func Merge(caller, callee *Env) *Env {
	merged := NewEnv()
	if caller != nil {
		for name, val := range caller.bindings {
			merged.bindings[name] = val
		}
	}
	if callee != nil {
		for name, val := range callee.bindings {
			merged.bindings[name] = val
		}
	}
	return merged
}
