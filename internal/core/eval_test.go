package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/revo/internal/config"
)

func newTestInstance() *Instance {
	return NewInstance(nil)
}

func evalText(t *testing.T, ins *Instance, src string) Cell {
	t.Helper()
	out, err := ins.DoText(src)
	if err != nil {
		t.Fatalf("eval %q failed: %v", src, err)
	}
	return out
}

func evalInt(t *testing.T, ins *Instance, src string, want int64) {
	t.Helper()
	out := evalText(t, ins, src)
	if out.Kind() != KindInteger {
		t.Fatalf("eval %q: want integer, got %s", src, out.Kind())
	}
	if out.Int() != want {
		t.Errorf("eval %q = %d, want %d", src, out.Int(), want)
	}
}

func evalError(t *testing.T, ins *Instance, src string) *GuestError {
	t.Helper()
	_, err := ins.DoText(src)
	if err == nil {
		t.Fatalf("eval %q: expected an error", src)
	}
	var ge *GuestError
	if !errors.As(err, &ge) {
		t.Fatalf("eval %q: expected a guest error, got %v", src, err)
	}
	return ge
}

func TestEval_Literals(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "42", 42)

	out := evalText(t, ins, "3.5")
	if out.Kind() != KindDecimal || out.Dec() != 3.5 {
		t.Errorf("3.5 = %s", ins.MoldCell(&out))
	}

	out = evalText(t, ins, `"hello"`)
	if out.Kind() != KindText || out.Text() != "hello" {
		t.Errorf(`"hello" = %s`, ins.MoldCell(&out))
	}

	out = evalText(t, ins, "true")
	if out.Kind() != KindLogic || !out.Logic() {
		t.Errorf("true = %s", ins.MoldCell(&out))
	}
}

func TestEval_InfixIsLeftToRight(t *testing.T) {
	ins := newTestInstance()
	// No precedence: multiplication does not bind tighter.
	evalInt(t, ins, "1 + 2 * 3", 9)
	evalInt(t, ins, "10 - 2 - 3", 5)
	evalInt(t, ins, "2 * 3 + 4", 10)
}

func TestEval_PrefixArgumentTakesInfixChain(t *testing.T) {
	ins := newTestInstance()
	// A prefix action's argument is one full infix chain.
	evalInt(t, ins, "negate 1 + 2", -3)
}

func TestEval_SetWordAndWord(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "x: 3 x + 1", 4)
	evalInt(t, ins, "a: b: 5 a + b", 10)
}

func TestEval_GroupsEvaluateInline(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "(1 + 2) * 3", 9)
	evalInt(t, ins, "2 * (3 + 4)", 14)
}

func TestEval_BlocksSelfEvaluate(t *testing.T) {
	ins := newTestInstance()
	out := evalText(t, ins, "[1 + 2]")
	if out.Kind() != KindBlock {
		t.Fatalf("block literal evaluated to %s", out.Kind())
	}
	if out.Series().Len() != 3 {
		t.Errorf("block contents were evaluated: %s", ins.MoldCell(&out))
	}
}

func TestEval_IfEitherLoopWhile(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "if true [7]", 7)

	out := evalText(t, ins, "if false [7]")
	if out.Kind() != KindNulled {
		t.Errorf("if false = %s, want null", ins.MoldCell(&out))
	}

	evalInt(t, ins, "either 1 < 2 [10] [20]", 10)
	evalInt(t, ins, "either 1 > 2 [10] [20]", 20)

	evalInt(t, ins, "x: 0 loop 10 [x: x + 1] x", 10)
	evalInt(t, ins, "n: 0 while [n < 5] [n: n + 1] n", 5)
}

func TestEval_BreakAndContinue(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "x: 0 loop 10 [x: x + 1 if x = 3 [break]] x", 3)
	evalInt(t, ins, "x: 0 n: 0 while [n < 10] [n: n + 1 if even? n [continue] x: x + 1] x", 5)
}

func TestEval_CatchThrow(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "catch [throw 42 99]", 42)
	evalInt(t, ins, "catch [1 + 1]", 2)
	// Inner catch intercepts; outer sees the normal result.
	evalInt(t, ins, "catch [5 + catch [throw 3]]", 8)
}

func TestEval_UncaughtThrowIsInternalDefect(t *testing.T) {
	ins := newTestInstance()
	_, err := ins.DoText("throw 1")
	if !errors.Is(err, ErrUncaughtThrow) {
		t.Fatalf("uncaught throw gave %v, want ErrUncaughtThrow", err)
	}
}

func TestEval_GuestRecursionOutrunsHostStack(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [n] [either n = 0 [0] [f n - 1]]")
	evalInt(t, ins, "f 10000", 0)
}

func TestEval_CountdownSum(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "sum: func [n] [either n = 0 [0] [n + sum n - 1]]")
	evalInt(t, ins, "sum 100", 5050)
}

func TestEval_StackDepthIsConfigBounded(t *testing.T) {
	cfg := config.Default()
	cfg.MaxLevels = 64
	ins := NewInstance(cfg)
	evalText(t, ins, "f: func [n] [either n = 0 [0] [f n - 1]]")
	_, err := ins.DoText("f 1000")
	var ge *GuestError
	if !errors.As(err, &ge) || ge.ID != "stack-overflow" {
		t.Fatalf("deep recursion under a small level cap gave %v, want stack-overflow", err)
	}
}

func TestEval_GhostValuesVanish(t *testing.T) {
	ins := newTestInstance()
	// comment and elide leave no value behind; the previous value stands.
	evalInt(t, ins, "3 comment unused", 3)
	out := evalText(t, ins, "comment unused")
	if out.Kind() != KindGhost {
		t.Errorf("lone comment = %s, want ghost", out.Kind())
	}
}

func TestEval_DoAndLoad(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, `do "1 + 2"`, 3)
	evalInt(t, ins, "do [2 * 5]", 10)

	out := evalText(t, ins, `load "a b c"`)
	if out.Kind() != KindBlock || out.Series().Len() != 3 {
		t.Errorf("load = %s", ins.MoldCell(&out))
	}
}

func TestEval_Reduce(t *testing.T) {
	ins := newTestInstance()
	out := evalText(t, ins, "reduce [1 + 1 2 * 2]")
	if got := ins.MoldCell(&out); got != "[2 4]" {
		t.Errorf("reduce = %s, want [2 4]", got)
	}
}

func TestEval_ZeroDivide(t *testing.T) {
	ins := newTestInstance()
	ge := evalError(t, ins, "1 / 0")
	if ge.ID != "zero-divide" {
		t.Errorf("1 / 0 error id = %s", ge.ID)
	}
}

func TestEval_UnboundWord(t *testing.T) {
	ins := newTestInstance()
	ge := evalError(t, ins, "certainly-not-bound")
	if ge.ID != "no-value" {
		t.Errorf("unbound word error id = %s", ge.ID)
	}
}

func TestEval_PathPicksIntoSeries(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "b: [10 20 30] b/2", 20)
}

func TestEval_PrintWritesToInstanceOut(t *testing.T) {
	ins := newTestInstance()
	var sb strings.Builder
	ins.Out = &sb
	evalText(t, ins, "print 1 + 2")
	if sb.String() != "3\n" {
		t.Errorf("print wrote %q", sb.String())
	}
}

func TestEval_SeparateInstancesAreIsolated(t *testing.T) {
	a := newTestInstance()
	b := newTestInstance()
	evalText(t, a, "shared: 1")
	_, err := b.DoText("shared")
	if err == nil {
		t.Fatal("binding leaked between instances")
	}
	if a.ID == b.ID {
		t.Error("instances share an identity stamp")
	}
}

func TestEval_SeriesNatives(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "length-of [1 2 3]", 3)
	evalInt(t, ins, "first [7 8]", 7)
	evalInt(t, ins, "last [7 8]", 8)
	evalInt(t, ins, "pick [5 6 7] 2", 6)

	out := evalText(t, ins, "pick [1] 9")
	if out.Kind() != KindNulled {
		t.Errorf("out-of-range pick = %s, want null", ins.MoldCell(&out))
	}

	evalInt(t, ins, "b: [1] append b 2 length-of b", 2)
	// copy does not alias the source
	evalInt(t, ins, "orig: [1 2] dup: copy orig append dup 3 length-of orig", 2)
}
