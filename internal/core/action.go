package core

// ParamClass is how a parameter gathers its argument.
type ParamClass uint8

const (
	// ParamNormal evaluates exactly one stepper step.
	ParamNormal ParamClass = iota

	// ParamQuoted takes the next raw cell unevaluated.
	ParamQuoted

	// ParamMeta evaluates, then wraps: ordinary values arrive quoted
	// one level, intercepted failures arrive as plain error values, so
	// the body can tell values from control signals.
	ParamMeta
)

// Param is one slot of a function's fixed parameter record.
type Param struct {
	Name       Sym
	Class      ParamClass
	Refinement bool // optionally supplied, by name
	NoArg      bool // refinement is a pure flag
	Kinds      KindMask
}

type actionFlag uint8

const (
	// actionEnfix makes the action infix: its first parameter comes
	// from the expression to its left.
	actionEnfix actionFlag = 1 << iota
)

// ActionDetails is an action's implementation record. Specialization,
// adaptation and replacement are not separate call records: they are
// variant phases chained through Target/Hijack, all sharing the
// outermost Params and one argument frame per call.
type ActionDetails struct {
	Name  Sym
	Flags actionFlag

	// Params is the fixed parameter record (FlavorParamList stub).
	Params *Stub

	// Exactly one of NativeID >= 0 or Body is the executable phase at
	// the end of a chain.
	NativeID int32
	Body     *Stub // block array
	Binding  *Stub // definition environment for Body

	// Exemplar pre-fills frame slots (specialization).
	Exemplar *Stub

	// Prelude runs in the frame before the underlying phase
	// (adaptation).
	Prelude *Stub

	// Target is the underlying phase this one wraps.
	Target *Stub

	// Hijack, when set, replaces this action's behavior entirely while
	// keeping its identity and parameter record.
	Hijack *Stub
}

// isRightQuoting reports whether an action takes its first real
// argument literally, the property the prefix-word tie-break demands.
func isRightQuoting(details *Stub) bool {
	for i := range details.details.Params.params {
		p := &details.details.Params.params[i]
		if p.Refinement {
			continue
		}
		return p.Class == ParamQuoted
	}
	return false
}

// isLeftQuoting reports whether an enfix action quotes its left
// operand.
func isLeftQuoting(details *Stub) bool {
	d := details.details
	return d.Flags&actionEnfix != 0 && isRightQuoting(details)
}

// action executor states; states at and above actNativeBase belong to
// the dispatched native's own step machine.
const (
	actBegin byte = iota
	actArgDone
	actPreludeDone
	actNativeBase byte = 0x40
)

type actionState struct {
	original Cell  // the action value as invoked
	details  *Stub // its details stub
	frame    *Stub // argument varlist; slots start as scratch
	refines  []Sym // refinements named at the call site, in path order

	order    []int // fulfillment order over param indices (incl. pickups)
	orderPos int

	left     Cell // enfix left operand
	haveLeft bool
	leftUsed bool

	preludes   []*Stub
	preludeIdx int

	finalDetails *Stub
	bodyPhase    bool

	// work is native-owned scratch carried between step entries. A
	// *Stub parked here is marked; any other stub a native holds must
	// stay reachable through the frame or the out cell.
	work interface{}
}

// pushAction pushes an action invocation level. feed supplies the
// arguments; env is the caller's environment; refines are path-named
// refinements in mention order; left, when non-nil, is the enfix left
// operand (already gathered per the action's first parameter class).
func (ins *Instance) pushAction(act *Cell, feed *Feed, env *Stub, refines []Sym, left *Cell) *Level {
	lv := &Level{kind: ExecAction, feed: feed, env: env}
	CopyCell(&lv.action.original, act)
	lv.action.details = act.Details()
	lv.action.refines = refines
	if left != nil {
		CopyCell(&lv.action.left, left)
		lv.action.haveLeft = true
	}
	lv.label = lv.action.details.details.Name
	ins.pushLevel(lv)
	return lv
}

func (lv *Level) stepAction() Bounce {
	ins := lv.ins
	if sig := ins.pending; sig != nil {
		if !lv.catches(sig) {
			return BounceUnwind
		}
		// A function body intercepts its own return directly.
		if sig.Kind == SignalThrow && sig.Name == ins.symReturn && lv.action.bodyPhase {
			ins.ClearSignal()
			CopyCell(&lv.out, &sig.Value)
			return BounceDone
		}
		// Otherwise the dispatched native registered the interest; let
		// it look at the still-pending signal.
		return lv.callNative()
	}

	switch {
	case lv.state == actBegin:
		return lv.actionBegin()
	case lv.state == actArgDone:
		return lv.actionArgDone()
	case lv.state == actPreludeDone:
		lv.action.preludeIdx++
		return lv.actionDispatch()
	case lv.state >= actNativeBase:
		return lv.callNative()
	}
	panic("action level in unknown state")
}

// actionBegin resolves the phase chain, builds the frame, and computes
// the fulfillment order (including pickups for out-of-order named
// refinements).
func (lv *Level) actionBegin() Bounce {
	ins := lv.ins
	st := &lv.action

	params := st.details.details.Params.params

	frame := ins.NewVarList(nil)
	frame.keys = make([]Sym, len(params))
	frame.cells = make([]Cell, len(params)) // scratch: distinctly unfilled
	for i := range params {
		frame.keys[i] = params[i].Name
	}
	st.frame = frame

	// Walk the phase chain: hijacks redirect, exemplars pre-fill,
	// preludes queue up, and the first phase with code is final.
	d := st.details
	for {
		dd := d.details
		if dd.Hijack != nil {
			d = dd.Hijack
			continue
		}
		if dd.Exemplar != nil {
			ex := dd.Exemplar
			for i := 0; i < len(ex.cells) && i < len(frame.cells); i++ {
				if ex.cells[i].IsLive() && !frame.cells[i].IsLive() {
					CopyCell(&frame.cells[i], &ex.cells[i])
				}
			}
		}
		if dd.Prelude != nil {
			st.preludes = append(st.preludes, dd.Prelude)
		}
		if dd.Target != nil {
			d = dd.Target
			continue
		}
		st.finalDetails = d
		break
	}

	// Validate named refinements and set pure flags up front.
	var refArgs []Sym
	for _, rname := range st.refines {
		idx := -1
		for i := range params {
			if params[i].Refinement && params[i].Name == rname {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ins.Failf(ins.symBadRefine, "%s has no refinement /%s",
				ins.syms.Spelling(lv.label), ins.syms.Spelling(rname))
		}
		if params[idx].NoArg {
			frame.cells[idx].InitLogic(true)
			continue
		}
		refArgs = append(refArgs, rname)
	}

	// Declared-order walk; a named refinement whose turn in the path
	// has not come yet is picked up afterwards, in path order.
	pathIdx := 0
	inPath := func(name Sym) bool {
		for _, r := range refArgs {
			if r == name {
				return true
			}
		}
		return false
	}
	for i := range params {
		p := &params[i]
		if frame.cells[i].IsLive() {
			continue // pre-filled by exemplar or flag
		}
		if p.Refinement {
			if !inPath(p.Name) {
				continue
			}
			if pathIdx < len(refArgs) && refArgs[pathIdx] == p.Name {
				st.order = append(st.order, i)
				pathIdx++
			}
			continue
		}
		st.order = append(st.order, i)
	}
	for ; pathIdx < len(refArgs); pathIdx++ {
		for i := range params {
			if params[i].Refinement && params[i].Name == refArgs[pathIdx] {
				st.order = append(st.order, i)
				break
			}
		}
	}

	return lv.actionFulfill()
}

// actionFulfill consumes arguments until every ordered slot is filled,
// suspending on a child stepper for each evaluated argument.
func (lv *Level) actionFulfill() Bounce {
	ins := lv.ins
	st := &lv.action
	params := st.details.details.Params.params

	for st.orderPos < len(st.order) {
		i := st.order[st.orderPos]
		p := &params[i]

		if st.haveLeft && !st.leftUsed {
			st.leftUsed = true
			if b, ok := lv.storeArg(i, &st.left); !ok {
				return b
			}
			continue
		}

		switch p.Class {
		case ParamQuoted:
			if lv.feed.AtEnd() || lv.feed.AtText() {
				return lv.failMissingArg(p)
			}
			raw := *lv.feed.Current()
			lv.feed.Advance()
			if b, ok := lv.storeArg(i, &raw); !ok {
				return b
			}

		case ParamNormal, ParamMeta:
			if lv.feed.AtEnd() || lv.feed.AtText() {
				return lv.failMissingArg(p)
			}
			// The right operand of an infix operation defers to the
			// operation: a following infix operator waits for the
			// outer one to complete, which is what makes chains
			// evaluate strictly left to right.
			var flags levelFlag
			if st.details.details.Flags&actionEnfix != 0 {
				flags |= levelNoLookahead
			}
			if p.Class == ParamMeta {
				flags |= levelMetaArg | levelCatchesFailure
			}
			lv.state = actArgDone
			ins.pushStepper(lv.feed, lv.env, flags)
			return BounceContinue
		}
	}

	// Unsupplied refinements get the distinct "not supplied" state,
	// never null. A required slot still scratch here is unreachable by
	// construction, but fails loudly rather than evaluating garbage.
	for i := range params {
		if st.frame.cells[i].IsLive() {
			continue
		}
		if params[i].Refinement {
			st.frame.cells[i].InitUnset()
			continue
		}
		return lv.failMissingArg(&params[i])
	}

	if lv.flags&levelFulfillOnly != 0 {
		lv.out.InitLogic(true)
		return BounceDone
	}
	return lv.actionDispatch()
}

func (lv *Level) actionArgDone() Bounce {
	st := &lv.action
	i := st.order[st.orderPos]
	p := &st.details.details.Params.params[i]
	if lv.sub.Kind() == KindGhost && p.Class == ParamNormal {
		return lv.failMissingArg(p)
	}
	if b, ok := lv.storeArg(i, &lv.sub); !ok {
		return b
	}
	return lv.actionFulfill()
}

// storeArg typechecks and writes a fulfilled argument. The mask is
// checked against the value's kind regardless of quoting, so meta
// wrapping does not defeat the check.
func (lv *Level) storeArg(i int, v *Cell) (Bounce, bool) {
	ins := lv.ins
	st := &lv.action
	p := &st.details.details.Params.params[i]
	if !p.Kinds.Has(v.Kind()) {
		return ins.Failf(ins.symTypeMismatch, "%s expects %s for its %s argument, got %s",
			ins.syms.Spelling(lv.label), maskNames(p.Kinds),
			ins.syms.Spelling(p.Name), v.Kind()), false
	}
	CopyCell(st.frame.At(i), v)
	st.orderPos++
	return BounceContinue, true
}

func (lv *Level) failMissingArg(p *Param) Bounce {
	ins := lv.ins
	return ins.Failf(ins.symMissingArg, "%s is missing its %s argument",
		ins.syms.Spelling(lv.label), ins.syms.Spelling(p.Name))
}

// actionDispatch runs queued preludes, then the final phase.
func (lv *Level) actionDispatch() Bounce {
	ins := lv.ins
	st := &lv.action

	if st.preludeIdx < len(st.preludes) {
		pre := st.preludes[st.preludeIdx]
		st.frame.parent = lv.bodyBinding()
		lv.state = actPreludeDone
		ins.pushStepper(NewArrayFeed(pre, 0), st.frame, levelRunToEnd)
		return BounceContinue
	}

	d := st.finalDetails.details
	if d.NativeID >= 0 {
		lv.state = actNativeBase
		return lv.callNative()
	}

	// Guest body: the frame is the body's environment and must stay
	// alive as a binding target, so the level delegates rather than
	// popping early.
	st.bodyPhase = true
	st.frame.parent = lv.bodyBinding()
	lv.flags |= levelCatchesThrow
	lv.catchNames |= catchReturn
	ins.pushStepper(NewArrayFeed(d.Body, 0), st.frame, levelRunToEnd)
	return BounceDelegate
}

func (lv *Level) bodyBinding() *Stub {
	if b := lv.action.finalDetails.details.Binding; b != nil {
		return b
	}
	return lv.ins.globals
}

func (lv *Level) callNative() Bounce {
	d := lv.action.finalDetails.details
	return lv.ins.natives[d.NativeID].fn(lv.ins, lv)
}

// State returns the native-owned portion of the level's state byte.
func (lv *Level) State() byte {
	return lv.state - actNativeBase
}

// SetState advances the native-owned state machine.
func (lv *Level) SetState(s byte) {
	lv.state = actNativeBase + s
}

// Work and SetWork carry a native's scratch value between entries.
func (lv *Level) Work() interface{}     { return lv.action.work }
func (lv *Level) SetWork(w interface{}) { lv.action.work = w }

// Sub returns the most recent child result delivered to this level.
func (lv *Level) Sub() *Cell { return &lv.sub }
