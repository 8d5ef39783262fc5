package core

func registerSignalNatives(ins *Instance) {
	ins.RegisterNative("fail", "reason:text!|word!|error!", nativeFail)
	ins.RegisterNative("panic", "reason:text!|word!|error!", nativePanic)
	ins.RegisterNative("trap", "body:block!", nativeTrap)
	ins.RegisterNative("attempt", "body:block!", nativeAttempt)
	ins.RegisterNative("except", "body:block! handler:block!", nativeExcept)
	ins.RegisterNative("require", "body:block!", nativeRequire)
	ins.RegisterNative("rescue", "body:block!", nativeRescue)
	ins.RegisterNative("typecheck", "action:action! args:block!", nativeTypecheck)
}

// reasonError builds an error stub from a fail/panic reason argument.
func reasonError(ins *Instance, reason *Cell) *Stub {
	switch reason.Kind() {
	case KindError:
		return reason.ErrStub()
	case KindWord:
		return ins.NewError(reason.Word())
	default:
		var msg Cell
		CopyCell(&msg, reason)
		return ins.NewError(ins.symUser, &msg)
	}
}

func nativeFail(ins *Instance, lv *Level) Bounce {
	return ins.FailWith(reasonError(ins, lv.Arg(0)))
}

func nativePanic(ins *Instance, lv *Level) Bounce {
	return ins.PanicWith(reasonError(ins, lv.Arg(0)))
}

// nativeTrap runs its body and converts a recoverable failure into an
// ordinary error value. Divergent signals pass it by untouched: a trap
// that swallowed panics would hide defects.
func nativeTrap(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		lv.Out().InitError(sig.Err)
		return BounceDone
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesFailure
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	}
	lv.Out().InitNulled()
	return BounceDone
}

// nativeAttempt runs its body and turns any recoverable failure into a
// null result, discarding the error.
func nativeAttempt(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		lv.Out().InitNulled()
		return BounceDone
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesFailure
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	}
	CopyCell(lv.Out(), lv.Sub())
	return BounceDone
}

const nsHandlerDone byte = 3

// nativeExcept runs its body; on failure the handler block runs with
// the error bound to the word "error" in a fresh scope.
func nativeExcept(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		scope := ins.NewVarList(lv.Env())
		var errv Cell
		errv.InitError(sig.Err)
		scope.varAdd(ins.symError, &errv)
		lv.flags &^= levelCatchesFailure
		lv.SetState(nsHandlerDone)
		ins.pushStepper(NewArrayFeed(lv.Arg(1).Series(), lv.Arg(1).Index()), scope, levelRunToEnd)
		return BounceContinue
	}
	switch lv.State() {
	case nsBegin:
		lv.flags |= levelCatchesFailure
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	default: // body or handler completed
		CopyCell(lv.Out(), lv.Sub())
		return BounceDone
	}
}

// nativeRequire promotes any failure out of its body to divergent
// severity: past this point the operation must not be quietly retried.
func nativeRequire(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		return ins.PanicWith(sig.Err)
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesFailure
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	}
	CopyCell(lv.Out(), lv.Sub())
	return BounceDone
}

// nativeRescue is the outermost barrier: it intercepts divergent
// signals as well as failures and yields the error as a value.
func nativeRescue(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		lv.Out().InitError(sig.Err)
		return BounceDone
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesFailure | levelCatchesPanic
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	}
	CopyCell(lv.Out(), lv.Sub())
	return BounceDone
}

// nativeTypecheck fulfills an action's frame from an argument block
// without dispatching it. The result is true when every argument
// passes; a mismatch surfaces as the usual failure.
func nativeTypecheck(ins *Instance, lv *Level) Bounce {
	args := lv.Arg(1)
	child := ins.pushAction(lv.Arg(0), NewArrayFeed(args.Series(), args.Index()), lv.Env(), nil, nil)
	child.flags |= levelFulfillOnly
	return BounceDelegate
}
