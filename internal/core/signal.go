package core

// Bounce is what an executor step hands back to the trampoline.
type Bounce uint8

const (
	// BounceContinue re-enters the (possibly new) topmost level.
	BounceContinue Bounce = iota

	// BounceDone pops the level; its out cell is the result.
	BounceDone

	// BounceDelegate keeps the level logically present (its frame must
	// stay alive as a binding target) while a child produces the final
	// result on its behalf.
	BounceDelegate

	// BounceUnwind means a signal is pending on the instance and the
	// trampoline should propagate it outward.
	BounceUnwind
)

// SignalKind separates the three unwind severities. They are never
// conflated: a throw is control flow, a failure is recoverable, a panic
// is divergent.
type SignalKind uint8

const (
	SignalThrow SignalKind = iota + 1
	SignalFailure
	SignalPanic
)

func (k SignalKind) String() string {
	switch k {
	case SignalThrow:
		return "throw"
	case SignalFailure:
		return "failure"
	case SignalPanic:
		return "panic"
	}
	return "signal?"
}

// Signal is a pending unwind travelling up the level stack.
type Signal struct {
	Kind SignalKind

	// Name tags a throw with the construct it targets (break,
	// continue, return, throw). Unused for failures and panics.
	Name Sym

	// Target pins a throw to one specific level when the name alone is
	// ambiguous (a return belongs to one function activation). nil
	// means "nearest catcher of Name".
	Target *Level

	// Value is the payload a throw carries.
	Value Cell

	// Err is the structured error of a failure or panic.
	Err *Stub
}

// instance-wide signal flags; kept in one word so arming failure and
// divergence together is a single assignment.
type signalFlags uint8

const (
	flagFailureArmed   signalFlags = 1 << 0
	flagDivergentArmed signalFlags = 1 << 1
)

// FailureArmed reports whether a failure (or panic) signal is pending.
func (ins *Instance) FailureArmed() bool { return ins.sigFlags&flagFailureArmed != 0 }

// DivergentArmed reports whether the pending signal is divergent.
func (ins *Instance) DivergentArmed() bool { return ins.sigFlags&flagDivergentArmed != 0 }

// Pending returns the in-flight signal, if any.
func (ins *Instance) Pending() *Signal { return ins.pending }

// ThrowSignal arms a throw. Throws are not errors and arm neither flag.
func (ins *Instance) ThrowSignal(name Sym, target *Level, value *Cell) Bounce {
	sig := &Signal{Kind: SignalThrow, Name: name, Target: target}
	if value != nil {
		CopyCell(&sig.Value, value)
	}
	ins.pending = sig
	return BounceUnwind
}

// Fail arms a recoverable failure built from id and arguments.
func (ins *Instance) Fail(id Sym, args ...*Cell) Bounce {
	return ins.failWith(ins.NewError(id, args...), false)
}

// Failf arms a recoverable failure whose single argument is a text message.
func (ins *Instance) Failf(id Sym, format string, a ...interface{}) Bounce {
	return ins.failWith(ins.NewErrorf(id, format, a...), false)
}

// Panic arms a divergent error. Ordinary handlers must not intercept it.
func (ins *Instance) Panic(id Sym, args ...*Cell) Bounce {
	return ins.failWith(ins.NewError(id, args...), true)
}

// PanicWith re-arms an existing error stub as divergent. This is the
// promotion step of the require combinator.
func (ins *Instance) PanicWith(err *Stub) Bounce {
	return ins.failWith(err, true)
}

// FailWith arms an existing error stub as a recoverable failure.
func (ins *Instance) FailWith(err *Stub) Bounce {
	return ins.failWith(err, false)
}

func (ins *Instance) failWith(err *Stub, divergent bool) Bounce {
	ins.pending = &Signal{Kind: SignalFailure, Err: err}
	// Single atomic transition: both flags land in one assignment, so
	// no observer ever sees divergence armed without failure or a
	// half-armed state between them.
	if divergent {
		ins.pending.Kind = SignalPanic
		ins.sigFlags = flagFailureArmed | flagDivergentArmed
	} else {
		ins.sigFlags = flagFailureArmed
	}
	return BounceUnwind
}

// ClearSignal disarms the pending signal and returns it. Handlers call
// this exactly once when intercepting.
func (ins *Instance) ClearSignal() *Signal {
	sig := ins.pending
	ins.pending = nil
	ins.sigFlags = 0
	return sig
}

// NewError builds an error stub with a symbolic identity and arguments.
func (ins *Instance) NewError(id Sym, args ...*Cell) *Stub {
	e := ins.allocStub(FlavorError)
	e.flags |= stubManaged
	e.errID = id
	for _, a := range args {
		e.Append(a)
	}
	return e
}

// NewErrorf builds an error stub whose one argument is formatted text.
func (ins *Instance) NewErrorf(id Sym, format string, a ...interface{}) *Stub {
	var msg Cell
	ins.InitText(&msg, sprintf(format, a...))
	// The text is reachable only through the local cell until the
	// error stub takes it, and allocating the error stub may collect.
	ins.Guard(msg.ref)
	defer ins.Unguard(msg.ref)
	return ins.NewError(id, &msg)
}

// catches reports whether a level registered interest in sig's category
// and, for throws, whether the name/target match.
func (lv *Level) catches(sig *Signal) bool {
	switch sig.Kind {
	case SignalThrow:
		if lv.flags&levelCatchesThrow == 0 {
			return false
		}
		if sig.Target != nil {
			return sig.Target == lv
		}
		return lv.catchNames&throwNameBit(sig.Name, lv.ins) != 0
	case SignalFailure:
		return lv.flags&levelCatchesFailure != 0
	case SignalPanic:
		return lv.flags&levelCatchesPanic != 0
	}
	return false
}

// throwNameBit maps the well-known throw names onto catchNames bits.
type throwNames uint8

const (
	catchBreak throwNames = 1 << iota
	catchContinue
	catchReturn
	catchThrow
)

func throwNameBit(name Sym, ins *Instance) throwNames {
	switch name {
	case ins.symBreak:
		return catchBreak
	case ins.symContinue:
		return catchContinue
	case ins.symReturn:
		return catchReturn
	case ins.symThrow:
		return catchThrow
	}
	return 0
}
