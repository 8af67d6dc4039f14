package evaluator

import (
	"fmt"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

// opThunk builds the thunk for a built-in operator application. Every
// built-in declares the expected kind for all of its operand positions and
// a native computation over the resolved values.
func opThunk(span ast.Span, op ast.Op, operands []Operand) (*Thunk, error) {
	switch op {
	case ast.OpPlus:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opPlus), nil
	case ast.OpMinus:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opMinus), nil
	case ast.OpMultiply:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opMultiply), nil
	case ast.OpDivide:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opDivide), nil
	case ast.OpModulus:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opModulus), nil
	case ast.OpGreater:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opGreater), nil
	case ast.OpSmaller:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opSmaller), nil
	case ast.OpEqual:
		return newThunk(span, operands, sameKinds(KindNumber, len(operands)), opEqual), nil
	case ast.OpAnd:
		return newThunk(span, operands, sameKinds(KindBoolean, len(operands)), opAnd), nil
	case ast.OpOr:
		return newThunk(span, operands, sameKinds(KindBoolean, len(operands)), opOr), nil
	case ast.OpNot:
		return newThunk(span, operands, sameKinds(KindBoolean, len(operands)), opNot), nil
	}
	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Message: fmt.Sprintf("unknown operator '%s'", op),
		Span:    &span,
	}
}

func opPlus(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	var sum int64
	for _, arg := range args {
		sum += arg.(Number).Value
	}
	return NewNumber(sum), nil
}

func opMinus(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	return NewNumber(args[0].(Number).Value - args[1].(Number).Value), nil
}

func opMultiply(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	var product int64 = 1
	for _, arg := range args {
		product *= arg.(Number).Value
	}
	return NewNumber(product), nil
}

func opDivide(_ *Interp, self *Thunk, args []Value) (Value, error) {
	divisor := args[1].(Number).Value
	if divisor == 0 {
		return nil, &RuntimeError{
			Code:    diagnostics.ERuntime,
			Message: "division by zero",
			Span:    &self.span,
		}
	}
	return NewNumber(floorDiv(args[0].(Number).Value, divisor)), nil
}

func opModulus(_ *Interp, self *Thunk, args []Value) (Value, error) {
	divisor := args[1].(Number).Value
	if divisor == 0 {
		return nil, &RuntimeError{
			Code:    diagnostics.ERuntime,
			Message: "modulo by zero",
			Span:    &self.span,
		}
	}
	return NewNumber(floorMod(args[0].(Number).Value, divisor)), nil
}

func opGreater(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	return NewBoolean(args[0].(Number).Value > args[1].(Number).Value), nil
}

func opSmaller(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	return NewBoolean(args[0].(Number).Value < args[1].(Number).Value), nil
}

func opEqual(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	return NewBoolean(args[0].(Number).Value == args[1].(Number).Value), nil
}

// opAnd combines all operands; there is no short-circuiting, every operand
// is forced before the result is computed so print side effects keep
// their source order.
func opAnd(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	result := true
	for _, arg := range args {
		result = result && arg.(Boolean).Value
	}
	return NewBoolean(result), nil
}

// opOr, like opAnd, forces every operand unconditionally.
func opOr(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	result := false
	for _, arg := range args {
		result = result || arg.(Boolean).Value
	}
	return NewBoolean(result), nil
}

func opNot(_ *Interp, _ *Thunk, args []Value) (Value, error) {
	return NewBoolean(!args[0].(Boolean).Value), nil
}

// printThunk builds print-num or print-bool. Both yield no value; booleans
// render as #t / #f.
func printThunk(span ast.Span, boolForm bool, operand Operand) *Thunk {
	kind := KindNumber
	if boolForm {
		kind = KindBoolean
	}
	return newThunk(span, []Operand{operand}, []Kind{kind},
		func(in *Interp, self *Thunk, args []Value) (Value, error) {
			var line string
			switch v := args[0].(type) {
			case Number:
				line = fmt.Sprintf("%d", v.Value)
			case Boolean:
				if v.Value {
					line = "#t"
				} else {
					line = "#f"
				}
			}
			in.emit(TracePrint, &self.span)
			if _, err := fmt.Fprintln(in.out, line); err != nil {
				return nil, &RuntimeError{
					Code:    diagnostics.EIO,
					Message: fmt.Sprintf("write failed: %s", err),
					Span:    &self.span,
				}
			}
			return nil, nil
		})
}

// floorDiv divides truncating toward negative infinity, matching the
// language's `/` operator.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod is the floor modulus: the result has the divisor's sign and
// satisfies a == b*floorDiv(a,b) + floorMod(a,b).
func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (a < 0) != (b < 0) {
		m += b
	}
	return m
}
