package core

import "fmt"

// Shared states for body-pumping natives.
const (
	nsBegin byte = iota
	nsBodyDone
	nsCondDone
)

func registerCoreFlow(ins *Instance) {
	ins.RegisterNative("if", "condition body:block!", nativeIf)
	ins.RegisterNative("either", "condition true-body:block! false-body:block!", nativeEither)
	ins.RegisterNative("loop", "count:integer! body:block!", nativeLoop)
	ins.RegisterNative("while", "condition:block! body:block!", nativeWhile)
	ins.RegisterNative("break", "", nativeBreak)
	ins.RegisterNative("continue", "", nativeContinue)
	ins.RegisterNative("catch", "body:block!", nativeCatch)
	ins.RegisterNative("throw", "value", nativeThrow)
	ins.RegisterNative("return", "value", nativeReturn)
	ins.RegisterNative("do", "source:block!|text!", nativeDo)
	ins.RegisterNative("load", "source:text!", nativeLoad)
	ins.RegisterNative("reduce", "block:block!", nativeReduce)
	ins.RegisterNative("print", "value", nativePrint)
	ins.RegisterNative("probe", "value", nativeProbe)
	ins.RegisterNative("mold", "value", nativeMold)
	ins.RegisterNative("form", "value", nativeForm)
	ins.RegisterNative("set", "'target:word! value", nativeSet)
	ins.RegisterNative("get", "'source:word!", nativeGet)
	ins.RegisterNative("type-of", "value", nativeTypeOf)
	ins.RegisterNative("comment", "'discarded", nativeComment)
	ins.RegisterNative("elide", "value", nativeElide)
	ins.RegisterNative("quote", "'value", nativeQuote)
	ins.RegisterNative("recycle", "", nativeRecycle)
}

// pushBody starts a child stepper over a block argument in env.
func pushBody(ins *Instance, lv *Level, body *Cell, env *Stub) {
	ins.pushStepper(NewArrayFeed(body.Series(), body.Index()), env, levelRunToEnd)
}

func nativeIf(ins *Instance, lv *Level) Bounce {
	if !lv.Arg(0).Truthy() {
		lv.Out().InitNulled()
		return BounceDone
	}
	pushBody(ins, lv, lv.Arg(1), lv.Env())
	return BounceDelegate
}

func nativeEither(ins *Instance, lv *Level) Bounce {
	branch := lv.Arg(1)
	if !lv.Arg(0).Truthy() {
		branch = lv.Arg(2)
	}
	pushBody(ins, lv, branch, lv.Env())
	return BounceDelegate
}

// interceptLoopSignal handles a break or continue that arrived at a
// looping native. It reports (bounce, true) when the loop must stop.
func interceptLoopSignal(ins *Instance, lv *Level) (Bounce, bool) {
	sig := ins.Pending()
	if sig == nil {
		return 0, false
	}
	ins.ClearSignal()
	if sig.Name == ins.symBreak {
		CopyCell(lv.Out(), &sig.Value)
		if !lv.Out().IsLive() {
			lv.Out().InitNulled()
		}
		return BounceDone, true
	}
	// continue: fall through into the next iteration
	return 0, false
}

func nativeLoop(ins *Instance, lv *Level) Bounce {
	if b, stop := interceptLoopSignal(ins, lv); stop {
		return b
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesThrow
		lv.catchNames |= catchBreak | catchContinue
		lv.SetWork(lv.Arg(0).Int())
		lv.Out().InitNulled()
		lv.SetState(nsBodyDone)
	} else {
		CopyCell(lv.Out(), lv.Sub())
	}
	remaining := lv.Work().(int64)
	if remaining <= 0 {
		return BounceDone
	}
	lv.SetWork(remaining - 1)
	pushBody(ins, lv, lv.Arg(1), lv.Env())
	return BounceContinue
}

func nativeWhile(ins *Instance, lv *Level) Bounce {
	if b, stop := interceptLoopSignal(ins, lv); stop {
		return b
	}
	switch lv.State() {
	case nsBegin:
		lv.flags |= levelCatchesThrow
		lv.catchNames |= catchBreak | catchContinue
		lv.Out().InitNulled()
	case nsCondDone:
		if !lv.Sub().Truthy() {
			return BounceDone
		}
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(1), lv.Env())
		return BounceContinue
	case nsBodyDone:
		CopyCell(lv.Out(), lv.Sub())
	}
	lv.SetState(nsCondDone)
	pushBody(ins, lv, lv.Arg(0), lv.Env())
	return BounceContinue
}

func nativeBreak(ins *Instance, lv *Level) Bounce {
	return ins.ThrowSignal(ins.symBreak, nil, nil)
}

func nativeContinue(ins *Instance, lv *Level) Bounce {
	return ins.ThrowSignal(ins.symContinue, nil, nil)
}

func nativeCatch(ins *Instance, lv *Level) Bounce {
	if sig := ins.Pending(); sig != nil {
		ins.ClearSignal()
		CopyCell(lv.Out(), &sig.Value)
		if !lv.Out().IsLive() {
			lv.Out().InitNulled()
		}
		return BounceDone
	}
	if lv.State() == nsBegin {
		lv.flags |= levelCatchesThrow
		lv.catchNames |= catchThrow
		lv.SetState(nsBodyDone)
		pushBody(ins, lv, lv.Arg(0), lv.Env())
		return BounceContinue
	}
	// Body ran to completion with no throw.
	CopyCell(lv.Out(), lv.Sub())
	return BounceDone
}

func nativeThrow(ins *Instance, lv *Level) Bounce {
	return ins.ThrowSignal(ins.symThrow, nil, lv.Arg(0))
}

func nativeReturn(ins *Instance, lv *Level) Bounce {
	return ins.ThrowSignal(ins.symReturn, nil, lv.Arg(0))
}

func nativeDo(ins *Instance, lv *Level) Bounce {
	src := lv.Arg(0)
	if src.Kind() == KindBlock {
		pushBody(ins, lv, src, lv.Env())
		return BounceDelegate
	}
	switch lv.State() {
	case nsBegin:
		lv.SetState(nsBodyDone)
		pushScan(ins, src.Series().bytes)
		return BounceContinue
	default:
		// The scanned block arrived in sub; it stays reachable there
		// while the stepper over it runs.
		pushBody(ins, lv, lv.Sub(), lv.Env())
		return BounceDelegate
	}
}

func nativeLoad(ins *Instance, lv *Level) Bounce {
	if lv.State() == nsBegin {
		lv.SetState(nsBodyDone)
		pushScan(ins, lv.Arg(0).Series().bytes)
		return BounceContinue
	}
	CopyCell(lv.Out(), lv.Sub())
	return BounceDone
}

// pushScan starts a child scanner over source bytes.
func pushScan(ins *Instance, src []byte) {
	child := &Level{kind: ExecScanner, feed: NewTextFeed(src)}
	child.scanner.kind = KindBlock
	child.scanner.sess = &scanSession{line: 1}
	ins.pushLevel(child)
}

func nativeReduce(ins *Instance, lv *Level) Bounce {
	if lv.State() == nsBegin {
		src := lv.Arg(0)
		ins.InitBlock(lv.Out(), nil)
		lv.SetWork(NewArrayFeed(src.Series(), src.Index()))
		lv.SetState(nsBodyDone)
	} else if lv.Sub().Kind() != KindGhost {
		lv.Out().Series().Append(lv.Sub())
	}
	feed := lv.Work().(*Feed)
	if feed.AtEnd() {
		return BounceDone
	}
	ins.pushStepper(feed, lv.Env(), 0)
	return BounceContinue
}

func nativePrint(ins *Instance, lv *Level) Bounce {
	fmt.Fprintln(ins.Out, ins.FormCell(lv.Arg(0)))
	lv.Out().InitGhost()
	return BounceDone
}

func nativeProbe(ins *Instance, lv *Level) Bounce {
	fmt.Fprintln(ins.Out, ins.MoldCell(lv.Arg(0)))
	CopyCell(lv.Out(), lv.Arg(0))
	return BounceDone
}

func nativeMold(ins *Instance, lv *Level) Bounce {
	ins.InitText(lv.Out(), ins.MoldCell(lv.Arg(0)))
	return BounceDone
}

func nativeForm(ins *Instance, lv *Level) Bounce {
	ins.InitText(lv.Out(), ins.FormCell(lv.Arg(0)))
	return BounceDone
}

func nativeSet(ins *Instance, lv *Level) Bounce {
	ins.SetWord(lv.Env(), lv.Arg(0).Word(), lv.Arg(1))
	CopyCell(lv.Out(), lv.Arg(1))
	return BounceDone
}

func nativeGet(ins *Instance, lv *Level) Bounce {
	sym := lv.Arg(0).Word()
	v := ins.GetWord(lv.Env(), sym)
	if v == nil {
		return ins.Failf(ins.symNoValue, "%s has no value", ins.syms.Spelling(sym))
	}
	CopyCell(lv.Out(), v)
	return BounceDone
}

func nativeTypeOf(ins *Instance, lv *Level) Bounce {
	lv.Out().InitWord(KindWord, ins.syms.Intern(lv.Arg(0).Kind().String()))
	return BounceDone
}

func nativeComment(ins *Instance, lv *Level) Bounce {
	lv.Out().InitGhost()
	return BounceDone
}

func nativeElide(ins *Instance, lv *Level) Bounce {
	lv.Out().InitGhost()
	return BounceDone
}

func nativeQuote(ins *Instance, lv *Level) Bounce {
	CopyCell(lv.Out(), lv.Arg(0))
	return BounceDone
}

func nativeRecycle(ins *Instance, lv *Level) Bounce {
	lv.Out().InitInteger(int64(ins.Collect()))
	return BounceDone
}
