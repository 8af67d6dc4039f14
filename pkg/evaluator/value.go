// Package evaluator implements the Mini-Lisp lazy evaluation engine.
package evaluator

// Operand is anything that may appear in a thunk's operand list: a literal
// Value, an unresolved Symbol, or a nested *Thunk.
type Operand interface {
	operand() // sealed marker
}

// Value is the interface for all Mini-Lisp runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	Operand
	value() // sealed marker
}

// Number represents an integer value.
type Number struct {
	Value int64
}

func (Number) operand() {}
func (Number) value()   {}

// Boolean represents a boolean value.
type Boolean struct {
	Value bool
}

func (Boolean) operand() {}
func (Boolean) value()   {}

// Closure represents a deferred computation value.
type Closure struct {
	Thunk *Thunk
}

func (Closure) operand() {}
func (Closure) value()   {}

// Symbol is a transient operand form: an unresolved name. It only exists
// inside unforced operand lists and resolves to one of the three value
// kinds before use.
type Symbol struct {
	Name string
}

func (Symbol) operand() {}

// NewNumber creates a number value.
func NewNumber(n int64) Value {
	return Number{Value: n}
}

// NewBoolean creates a boolean value.
func NewBoolean(b bool) Value {
	return Boolean{Value: b}
}

// Kind is a runtime value category used for dynamic type checking.
type Kind int

const (
	KindAny Kind = iota
	KindNumber
	KindBoolean
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindClosure:
		return "closure"
	default:
		return "any"
	}
}

// KindOf returns the runtime kind of a value. Print primitives yield no
// value; a nil Value reports "none" via kindName.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Number:
		return KindNumber
	case Boolean:
		return KindBoolean
	case Closure:
		return KindClosure
	}
	return KindAny
}

// kindName names a possibly-nil value's kind for error messages.
func kindName(v Value) string {
	if v == nil {
		return "none"
	}
	return KindOf(v).String()
}
