package core

import (
	"errors"
	"testing"
)

func TestSignal_TrapCatchesFailure(t *testing.T) {
	ins := newTestInstance()
	out := evalText(t, ins, `trap [fail "boom" 99]`)
	if out.Kind() != KindError {
		t.Fatalf("trap = %s, want error!", out.Kind())
	}
	// The body stopped at the failure point.
	out = evalText(t, ins, "trap [1 + 1]")
	if out.Kind() != KindNulled {
		t.Errorf("trap of a clean body = %s, want null", ins.MoldCell(&out))
	}
}

func TestSignal_TrapDoesNotCatchPanic(t *testing.T) {
	ins := newTestInstance()
	_, err := ins.DoText(`trap [panic "cannot continue"]`)
	var ge *GuestError
	if !errors.As(err, &ge) {
		t.Fatalf("panic through trap gave %v, want a guest error", err)
	}
	if !ge.Divergent {
		t.Error("escaped panic lost its divergent severity")
	}
}

func TestSignal_RescueCatchesPanic(t *testing.T) {
	ins := newTestInstance()
	out := evalText(t, ins, `rescue [panic "cannot continue"]`)
	if out.Kind() != KindError {
		t.Fatalf("rescue = %s, want error!", out.Kind())
	}
	// Outer rescue around an inner trap still sees the panic.
	out = evalText(t, ins, `rescue [trap [panic "boom"]]`)
	if out.Kind() != KindError {
		t.Errorf("rescue around trap = %s, want error!", out.Kind())
	}
}

func TestSignal_AttemptDiscardsTheError(t *testing.T) {
	ins := newTestInstance()
	out := evalText(t, ins, `attempt [fail "boom"]`)
	if out.Kind() != KindNulled {
		t.Errorf("attempt of failure = %s, want null", ins.MoldCell(&out))
	}
	evalInt(t, ins, "attempt [40 + 2]", 42)
}

func TestSignal_ExceptRunsHandlerWithError(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, `except [fail "boom"] [7]`, 7)
	evalInt(t, ins, "except [41 + 1] [0]", 42)

	// The handler sees the error under the word "error".
	out := evalText(t, ins, `except [fail "boom"] [type-of error]`)
	if got := ins.MoldCell(&out); got != "error!" {
		t.Errorf("handler error binding types as %s", got)
	}
}

func TestSignal_RequirePromotesFailure(t *testing.T) {
	ins := newTestInstance()
	// Inside require, a failure becomes divergent: trap outside no
	// longer intercepts it.
	_, err := ins.DoText(`trap [require [fail "must work"]]`)
	var ge *GuestError
	if !errors.As(err, &ge) {
		t.Fatalf("promoted failure gave %v, want a guest error", err)
	}
	if !ge.Divergent {
		t.Error("require did not promote the failure to divergent")
	}
	// A clean body passes through.
	evalInt(t, ins, "require [2 + 2]", 4)
}

func TestSignal_FlagsArmAtomically(t *testing.T) {
	ins := newTestInstance()

	ins.Failf(ins.symUser, "recoverable")
	if !ins.FailureArmed() || ins.DivergentArmed() {
		t.Error("failure must arm the failure flag alone")
	}
	ins.ClearSignal()

	ins.Panic(ins.symUser)
	if !ins.FailureArmed() || !ins.DivergentArmed() {
		t.Error("panic must arm both flags together")
	}
	ins.ClearSignal()
	if ins.FailureArmed() || ins.DivergentArmed() || ins.Pending() != nil {
		t.Error("clear must fully disarm")
	}
}

func TestSignal_ThrowsAreNotErrors(t *testing.T) {
	ins := newTestInstance()
	ins.ThrowSignal(ins.symThrow, nil, nil)
	if ins.FailureArmed() {
		t.Error("a throw armed the failure flag")
	}
	ins.ClearSignal()
}

func TestSignal_FailureMessageSurvivesToHost(t *testing.T) {
	ins := newTestInstance()
	ge := evalError(t, ins, `fail "the disk is gone"`)
	if ge.ID != "user" {
		t.Errorf("fail error id = %s", ge.ID)
	}
	if ge.Message != "the disk is gone" {
		t.Errorf("fail message = %q", ge.Message)
	}
}

func TestSignal_FailWithWordIdentity(t *testing.T) {
	ins := newTestInstance()
	ge := evalError(t, ins, "fail 'out-of-cheese")
	if ge.ID != "out-of-cheese" {
		t.Errorf("symbolic fail id = %s", ge.ID)
	}
}

func TestSignal_InstanceUsableAfterUnwind(t *testing.T) {
	ins := newTestInstance()
	if _, err := ins.DoText(`fail "boom"`); err == nil {
		t.Fatal("expected an error")
	}
	if ins.Top() != nil {
		t.Fatal("levels leaked after unwind")
	}
	if ins.Pending() != nil {
		t.Fatal("signal still pending after delivery to host")
	}
	evalInt(t, ins, "1 + 1", 2)
}
