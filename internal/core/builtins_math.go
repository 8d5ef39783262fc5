package core

func registerMathNatives(ins *Instance) {
	ins.RegisterOperator("+", "left:integer!|decimal! right:integer!|decimal!", arithNative(opAdd))
	ins.RegisterOperator("-", "left:integer!|decimal! right:integer!|decimal!", arithNative(opSub))
	ins.RegisterOperator("*", "left:integer!|decimal! right:integer!|decimal!", arithNative(opMul))
	ins.RegisterOperator("/", "left:integer!|decimal! right:integer!|decimal!", arithNative(opDiv))

	ins.RegisterOperator("=", "left right", compareNative(func(o int, eq bool) bool { return eq }))
	ins.RegisterOperator("<>", "left right", compareNative(func(o int, eq bool) bool { return !eq }))
	ins.RegisterOperator("<", "left:integer!|decimal! right:integer!|decimal!", compareNative(func(o int, eq bool) bool { return o < 0 }))
	ins.RegisterOperator(">", "left:integer!|decimal! right:integer!|decimal!", compareNative(func(o int, eq bool) bool { return o > 0 }))
	ins.RegisterOperator("<=", "left:integer!|decimal! right:integer!|decimal!", compareNative(func(o int, eq bool) bool { return o <= 0 }))
	ins.RegisterOperator(">=", "left:integer!|decimal! right:integer!|decimal!", compareNative(func(o int, eq bool) bool { return o >= 0 }))

	ins.RegisterNative("negate", "value:integer!|decimal!", func(ins *Instance, lv *Level) Bounce {
		v := lv.Arg(0)
		if v.Kind() == KindInteger {
			lv.Out().InitInteger(-v.Int())
		} else {
			lv.Out().InitDecimal(-v.Dec())
		}
		return BounceDone
	})

	ins.RegisterNative("odd?", "value:integer!", func(ins *Instance, lv *Level) Bounce {
		lv.Out().InitLogic(lv.Arg(0).Int()%2 != 0)
		return BounceDone
	})
	ins.RegisterNative("even?", "value:integer!", func(ins *Instance, lv *Level) Bounce {
		lv.Out().InitLogic(lv.Arg(0).Int()%2 == 0)
		return BounceDone
	})
}

type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
)

// arithNative builds a binary numeric native. Integer pairs stay
// integer except division by a non-divisor; any decimal operand
// promotes both sides.
func arithNative(op arithOp) NativeFunc {
	return func(ins *Instance, lv *Level) Bounce {
		a, b := lv.Arg(0), lv.Arg(1)
		if a.Kind() == KindInteger && b.Kind() == KindInteger {
			x, y := a.Int(), b.Int()
			switch op {
			case opAdd:
				lv.Out().InitInteger(x + y)
			case opSub:
				lv.Out().InitInteger(x - y)
			case opMul:
				lv.Out().InitInteger(x * y)
			case opDiv:
				if y == 0 {
					return ins.Failf(ins.symZeroDivide, "attempt to divide by zero")
				}
				if x%y == 0 {
					lv.Out().InitInteger(x / y)
				} else {
					lv.Out().InitDecimal(float64(x) / float64(y))
				}
			}
			return BounceDone
		}
		x, y := numAsFloat(a), numAsFloat(b)
		switch op {
		case opAdd:
			lv.Out().InitDecimal(x + y)
		case opSub:
			lv.Out().InitDecimal(x - y)
		case opMul:
			lv.Out().InitDecimal(x * y)
		case opDiv:
			if y == 0 {
				return ins.Failf(ins.symZeroDivide, "attempt to divide by zero")
			}
			lv.Out().InitDecimal(x / y)
		}
		return BounceDone
	}
}

func numAsFloat(c *Cell) float64 {
	if c.Kind() == KindInteger {
		return float64(c.Int())
	}
	return c.Dec()
}

// compareNative builds an infix comparison from an ordering predicate.
// pick receives the numeric ordering (when both sides are numbers) and
// the general equality verdict.
func compareNative(pick func(order int, eq bool) bool) NativeFunc {
	return func(ins *Instance, lv *Level) Bounce {
		a, b := lv.Arg(0), lv.Arg(1)
		var order int
		eq := EqualCells(a, b)
		if isNumber(a) && isNumber(b) {
			x, y := numAsFloat(a), numAsFloat(b)
			switch {
			case x < y:
				order = -1
			case x > y:
				order = 1
			}
			eq = x == y
		}
		lv.Out().InitLogic(pick(order, eq))
		return BounceDone
	}
}

func isNumber(c *Cell) bool {
	return c.Kind() == KindInteger || c.Kind() == KindDecimal
}
