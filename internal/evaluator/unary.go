// Package evaluator implements the visitor-dispatch layer: pure
// functions that switch on an InternalValue's Kind, a closed
// tagged-union match instead of a visitor-template dispatch.
package evaluator

import "github.com/exprkit/tmplcore/internal/value"

// UnaryOperation applies a unary operator (negation, logical not, unary
// plus) to v, returning the empty value for unsupported combinations.
func UnaryOperation(op string, v value.InternalValue) value.InternalValue {
	switch op {
	case "-":
		switch v.Kind() {
		case value.KindInt:
			i, _ := v.AsInt()
			return value.Int(-i).SetTemporary(true)
		case value.KindFloat:
			f, _ := v.AsFloat()
			return value.Float(-f).SetTemporary(true)
		}
		return value.Empty()
	case "+":
		switch v.Kind() {
		case value.KindInt, value.KindFloat:
			return v.SetTemporary(true)
		}
		return value.Empty()
	case "not", "!":
		return value.Bool(!v.ConvertToBool()).SetTemporary(true)
	default:
		return value.Empty()
	}
}
