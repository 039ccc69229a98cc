package evaluator

import (
	"math"
	"strings"

	"github.com/exprkit/tmplcore/internal/value"
)

func isNumeric(k value.Kind) bool { return k == value.KindInt || k == value.KindFloat }
func isStringKind(k value.Kind) bool {
	return k == value.KindStringNarrow || k == value.KindStringWide || k == value.KindTargetString
}

func toFloat(v value.InternalValue) float64 {
	if i, ok := v.AsInt(); ok {
		return float64(i)
	}
	f, _ := v.AsFloat()
	return f
}

// BinaryMathOperation implements arithmetic and comparison across
// numeric promotions, lexicographic string comparison, and element-wise
// container comparison. Division by zero and modulo by zero both yield
// the empty value; unsupported operand pairings do too, rather than
// aborting the render.
func BinaryMathOperation(op string, l, r value.InternalValue) value.InternalValue {
	switch op {
	case "==", "!=", ">", "<", ">=", "<=":
		return compare(op, l, r)
	}

	if isNumeric(l.Kind()) && isNumeric(r.Kind()) {
		return arithmetic(op, l, r)
	}
	return value.Empty()
}

func arithmetic(op string, l, r value.InternalValue) value.InternalValue {
	bothInt := l.Kind() == value.KindInt && r.Kind() == value.KindInt

	switch op {
	case "+", "Plus":
		if bothInt {
			li, _ := l.AsInt()
			ri, _ := r.AsInt()
			return value.Int(li + ri).SetTemporary(true)
		}
		return value.Float(toFloat(l) + toFloat(r)).SetTemporary(true)
	case "-", "Minus":
		if bothInt {
			li, _ := l.AsInt()
			ri, _ := r.AsInt()
			return value.Int(li - ri).SetTemporary(true)
		}
		return value.Float(toFloat(l) - toFloat(r)).SetTemporary(true)
	case "*", "Mul":
		if bothInt {
			li, _ := l.AsInt()
			ri, _ := r.AsInt()
			return value.Int(li * ri).SetTemporary(true)
		}
		return value.Float(toFloat(l) * toFloat(r)).SetTemporary(true)
	case "/", "Div":
		rf := toFloat(r)
		if rf == 0 {
			return value.Empty()
		}
		return value.Float(toFloat(l) / rf).SetTemporary(true)
	case "//", "DivInteger":
		li, ri := truncInt(l), truncInt(r)
		if ri == 0 {
			return value.Empty()
		}
		// Truncation toward zero, not floor division.
		return value.Int(li / ri).SetTemporary(true)
	case "%", "DivReminder":
		li, ri := truncInt(l), truncInt(r)
		if ri == 0 {
			return value.Empty()
		}
		m := li % ri
		// Modulo follows the sign of the divisor when both operands are
		// integers, unlike Go's native %, which follows the dividend's
		// sign.
		if m != 0 && (m < 0) != (ri < 0) {
			m += ri
		}
		return value.Int(m).SetTemporary(true)
	case "**", "Pow":
		if bothInt {
			ri, _ := r.AsInt()
			if ri >= 0 {
				li, _ := l.AsInt()
				return value.Int(intPow(li, ri)).SetTemporary(true)
			}
		}
		return value.Float(math.Pow(toFloat(l), toFloat(r))).SetTemporary(true)
	default:
		return value.Empty()
	}
}

func truncInt(v value.InternalValue) int64 {
	if i, ok := v.AsInt(); ok {
		return i
	}
	f, _ := v.AsFloat()
	return int64(f)
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compare(op string, l, r value.InternalValue) value.InternalValue {
	var less, equal bool
	switch {
	case isNumeric(l.Kind()) && isNumeric(r.Kind()):
		lf, rf := toFloat(l), toFloat(r)
		less, equal = lf < rf, lf == rf
	case l.Kind() == value.KindBool && r.Kind() == value.KindBool:
		lb, _ := l.AsBool()
		rb, _ := r.AsBool()
		li, ri := boolToInt(lb), boolToInt(rb)
		less, equal = li < ri, li == ri
	case isStringKind(l.Kind()) && isStringKind(r.Kind()):
		lr, _, _ := value.StringWidthOf(l)
		rr, _, _ := value.StringWidthOf(r)
		c := strings.Compare(string(lr), string(rr))
		less, equal = c < 0, c == 0
	case l.Kind() == value.KindList && r.Kind() == value.KindList:
		less, equal = compareLists(l, r)
	case l.Kind() == value.KindEmpty && r.Kind() == value.KindEmpty:
		less, equal = false, true
	default:
		if op == "==" {
			return value.Bool(false).SetTemporary(true)
		}
		if op == "!=" {
			return value.Bool(true).SetTemporary(true)
		}
		return value.Empty()
	}

	var result bool
	switch op {
	case "==":
		result = equal
	case "!=":
		result = !equal
	case "<":
		result = less
	case ">":
		result = !less && !equal
	case "<=":
		result = less || equal
	case ">=":
		result = !less
	}
	return value.Bool(result).SetTemporary(true)
}

func compareLists(l, r value.InternalValue) (less, equal bool) {
	la, _ := l.AsList()
	ra, _ := r.AsList()
	li := la.Materialize()
	ri := ra.Materialize()
	n := len(li)
	if len(ri) < n {
		n = len(ri)
	}
	for i := 0; i < n; i++ {
		elemLess, elemEqual := compareElements(li[i], ri[i])
		if !elemEqual {
			return elemLess, false
		}
	}
	if len(li) == len(ri) {
		return false, true
	}
	return len(li) < len(ri), false
}

func compareElements(a, b value.InternalValue) (less, equal bool) {
	res := compare("<", a, b)
	if l, ok := res.AsBool(); ok && l {
		return true, false
	}
	res = compare("==", a, b)
	eq, _ := res.AsBool()
	return false, eq
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// IntegerEvaluator coerces any value to int64, returning 0 for anything
// unrepresentable, for contexts (subscript indices, range bounds) that
// need a plain integer rather than the full ConvertToInt default-value
// contract.
func IntegerEvaluator(v value.InternalValue) int64 {
	return value.ConvertToInt(v, 0)
}
