package core

import (
	"strings"
	"testing"
)

func TestAction_FuncWithArgs(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "add3: func [a b c] [a + b + c]")
	evalInt(t, ins, "add3 1 2 3", 6)
}

func TestAction_DoesTakesNoArgs(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "seven: does [3 + 4]")
	evalInt(t, ins, "seven", 7)
}

func TestAction_ReturnUnwindsOnlyItsFrame(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "early: func [n] [if n > 0 [return 1] 2]")
	evalInt(t, ins, "early 5", 1)
	evalInt(t, ins, "early 0", 2)
	// The caller continues normally after a returned callee.
	evalInt(t, ins, "10 + early 5", 11)
}

func TestAction_RefinementPickupOrder(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [a /c [integer!] /b [integer!]] [reduce [a c b]]")

	// Declared order is a, c, b. Mentioning /c first matches it.
	out := evalText(t, ins, "f/c/b 1 2 3")
	if got := ins.MoldCell(&out); got != "[1 2 3]" {
		t.Errorf("f/c/b 1 2 3 = %s, want [1 2 3]", got)
	}

	// Mentioning /b first defers /c to a pickup: the same declared
	// slots fill in path-mention order.
	out = evalText(t, ins, "f/b/c 1 2 3")
	if got := ins.MoldCell(&out); got != "[1 3 2]" {
		t.Errorf("f/b/c 1 2 3 = %s, want [1 3 2]", got)
	}

	// Reordering the supplied values to match the mention order builds
	// the same frame either way.
	out = evalText(t, ins, "f/b/c 1 3 2")
	if got := ins.MoldCell(&out); got != "[1 2 3]" {
		t.Errorf("f/b/c 1 3 2 = %s, want [1 2 3]", got)
	}
}

func TestAction_UnusedRefinementIsUnsetNotNull(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [/opt [integer!]] [type-of opt]")

	out := evalText(t, ins, "f")
	if got := ins.MoldCell(&out); got != "unset" {
		t.Errorf("unsupplied refinement types as %s, want unset", got)
	}

	out = evalText(t, ins, "f/opt 5")
	if got := ins.MoldCell(&out); got != "integer!" {
		t.Errorf("supplied refinement types as %s, want integer!", got)
	}
}

func TestAction_FlagRefinement(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [/loud] [either loud = true [1] [0]]")
	evalInt(t, ins, "f", 0)
	evalInt(t, ins, "f/loud", 1)
}

func TestAction_UnknownRefinementFails(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [a] [a]")
	ge := evalError(t, ins, "f/nope 1")
	if ge.ID != "bad-refine" {
		t.Errorf("unknown refinement error id = %s", ge.ID)
	}
	if !strings.Contains(ge.Message, "nope") {
		t.Errorf("diagnostic %q does not name the refinement", ge.Message)
	}
}

func TestAction_QuotedParameterTakesRawCell(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "name-of: func ['w] [mold w]")
	out := evalText(t, ins, "name-of some-word")
	if out.Text() != "some-word" {
		t.Errorf("quoted parameter saw %q", out.Text())
	}
}

func TestAction_MetaParameterWrapsValues(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "meta-of: func [:x] [x]")
	out := evalText(t, ins, "meta-of 1 + 2")
	if out.Kind() != KindInteger || out.Quotes() != 1 || out.Int() != 3 {
		t.Errorf("meta argument = %s, want '3", ins.MoldCell(&out))
	}
}

func TestAction_MetaParameterInterceptsFailure(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "meta-of: func [:x] [x]")
	out := evalText(t, ins, `meta-of fail "boom"`)
	if out.Kind() != KindError {
		t.Fatalf("meta argument of a failing expression = %s, want error!", out.Kind())
	}
	if out.Quotes() != 0 {
		t.Error("intercepted failure arrived quoted; values and signals must stay distinguishable")
	}
}

func TestAction_TypecheckNamesTheParameter(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [n [integer!]] [n]")
	ge := evalError(t, ins, `f "text"`)
	if ge.ID != "type-mismatch" {
		t.Errorf("type mismatch error id = %s", ge.ID)
	}
	if !strings.Contains(ge.Message, "n") || !strings.Contains(ge.Message, "integer!") {
		t.Errorf("diagnostic %q does not name parameter and expected kind", ge.Message)
	}
}

func TestAction_MissingArgNamesTheParameter(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "f: func [value] [value]")
	ge := evalError(t, ins, "f")
	if ge.ID != "missing-arg" {
		t.Errorf("missing argument error id = %s", ge.ID)
	}
	if !strings.Contains(ge.Message, "value") {
		t.Errorf("diagnostic %q does not name the parameter", ge.Message)
	}
}

func TestAction_TypecheckOnlyFillsWithoutDispatch(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "ran: 0 f: func [n [integer!]] [ran: 1 n]")
	out := evalText(t, ins, "typecheck :f [42]")
	if out.Kind() != KindLogic || !out.Logic() {
		t.Fatalf("typecheck = %s, want true", ins.MoldCell(&out))
	}
	evalInt(t, ins, "ran", 0)

	ge := evalError(t, ins, `typecheck :f ["nope"]`)
	if ge.ID != "type-mismatch" {
		t.Errorf("typecheck mismatch error id = %s", ge.ID)
	}
}

func TestAction_Specialize(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "add2: func [a b] [a + b]")
	evalText(t, ins, "add-ten: specialize :add2 [a: 10]")
	evalInt(t, ins, "add-ten 5", 15)
}

func TestAction_Adapt(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "add2: func [a b] [a + b]")
	// The prelude sees and may rewrite the fulfilled frame.
	evalText(t, ins, "add-doubled: adapt :add2 [a: a * 2]")
	evalInt(t, ins, "add-doubled 3 4", 10)
}

func TestAction_SpecializeOfAdapt(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "add2: func [a b] [a + b]")
	evalText(t, ins, "chain: specialize adapt :add2 [a: a * 2] [b: 1]")
	evalInt(t, ins, "chain 5", 11)
}

func TestAction_HijackRedirectsExistingReferences(t *testing.T) {
	ins := newTestInstance()
	evalText(t, ins, "victim: func [n] [n + 1]")
	evalText(t, ins, "alias: :victim")
	evalInt(t, ins, "alias 1", 2)

	evalText(t, ins, "hijack :victim func [n] [n * 100]")
	// Both the original name and the pre-hijack alias see the agent.
	evalInt(t, ins, "victim 2", 200)
	evalInt(t, ins, "alias 2", 200)
}

func TestAction_EnfixNeedsLeftOperand(t *testing.T) {
	ins := newTestInstance()
	ge := evalError(t, ins, "+ 1 2")
	if ge.ID != "missing-arg" {
		t.Errorf("operator with no left operand error id = %s", ge.ID)
	}
}

func TestAction_PrefixWordWinsLeftQuoteTie(t *testing.T) {
	ins := newTestInstance()
	// A left-quoting operator: takes its left operand literally.
	ins.RegisterOperator("tie", "'left right", func(ins *Instance, lv *Level) Bounce {
		CopyCell(lv.Out(), lv.Arg(0))
		return BounceDone
	})

	// A plain-valued word to the operator's left is taken literally.
	evalText(t, ins, "x: 10")
	out := evalText(t, ins, "x tie 1")
	if out.Kind() != KindWord || ins.Syms().Spelling(out.Word()) != "x" {
		t.Errorf("left-quoter saw %s, want the literal word x", ins.MoldCell(&out))
	}

	// An action-valued word runs as prefix first; that wins when its
	// product is itself right-quoting.
	evalText(t, ins, "get-quote: does [:quote]")
	out = evalText(t, ins, "get-quote tie 1")
	if out.Kind() != KindAction {
		t.Errorf("prefix word before left-quoter gave %s", ins.MoldCell(&out))
	}

	// A prefix word whose product is not right-quoting gets the
	// specific diagnostic, not a silent reinterpretation.
	evalText(t, ins, "get-negate: does [:negate]")
	ge := evalError(t, ins, "get-negate tie 1")
	if ge.ID != "literal-left-tie" {
		t.Errorf("tie-break violation error id = %s", ge.ID)
	}
}
