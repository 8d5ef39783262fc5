package core

// ExecKind selects a level's step function. The set is closed and the
// trampoline dispatches over it exhaustively; there are no executor
// function pointers to compare.
type ExecKind uint8

const (
	ExecStepper ExecKind = iota + 1
	ExecAction
	ExecScanner
)

func (k ExecKind) String() string {
	switch k {
	case ExecStepper:
		return "stepper"
	case ExecAction:
		return "action"
	case ExecScanner:
		return "scanner"
	}
	return "exec?"
}

type levelFlag uint16

const (
	levelCatchesThrow   levelFlag = 1 << iota // intercepts matching throws
	levelCatchesFailure                       // intercepts recoverable failures
	levelCatchesPanic                         // intercepts divergent errors
	levelDelegated                            // result produced by a child on our behalf
	levelFulfillOnly                          // action: typecheck without dispatch
	levelRunToEnd                             // stepper: evaluate the whole feed
	levelNoLookahead                          // stepper: no infix continuation (argument mode)
	levelScanOne                              // scanner: stop after one value
	levelMetaArg                              // stepper child fulfilling a meta parameter
)

// Level is one suspended or active unit of evaluation work. Levels are
// heap values chained through prior, never host stack frames, which is
// what lets guest recursion outrun the host stack.
type Level struct {
	ins   *Instance
	kind  ExecKind
	state byte
	flags levelFlag

	// out receives this level's result; sub receives each child's.
	out Cell
	sub Cell

	prior *Level
	feed  *Feed

	// env is the varlist words evaluate against at this level.
	env *Stub

	// handles heads this level's root-handle list.
	handles *Stub

	// catchNames selects which throw names this level intercepts when
	// levelCatchesThrow is set.
	catchNames throwNames

	// label names the running construct for diagnostics.
	label Sym

	stepper stepperState
	action  actionState
	scanner scannerState
}

// Out returns the level's result cell.
func (lv *Level) Out() *Cell { return &lv.out }

// Env returns the varlist in scope at this level.
func (lv *Level) Env() *Stub { return lv.env }

// Arg returns the fulfilled argument cell for the action level's
// parameter at index i. Natives read their inputs through this.
func (lv *Level) Arg(i int) *Cell {
	return lv.action.frame.At(i)
}

// ArgNamed returns the fulfilled argument cell by parameter name.
func (lv *Level) ArgNamed(name Sym) *Cell {
	if i := lv.action.frame.varFind(name); i >= 0 {
		return lv.action.frame.At(i)
	}
	return nil
}

// Frame returns the action level's argument varlist.
func (lv *Level) Frame() *Stub { return lv.action.frame }

// pushLevel makes lv the topmost level.
func (ins *Instance) pushLevel(lv *Level) {
	lv.ins = ins
	lv.prior = ins.top
	ins.top = lv
	ins.depth++
	if ins.depth > ins.cfg.MaxLevels {
		// Depth is configuration-bounded, not host-stack-bounded.
		ins.Failf(ins.symStackOverflow, "level stack exceeded %d", ins.cfg.MaxLevels)
	}
}

// popLevel removes the topmost level after normal completion.
// Surviving root handles are re-homed to the prior level: their
// lifetime contract is "bounded by the owning level", and a normally
// delivered result may still reference them.
func (ins *Instance) popLevel(lv *Level) {
	for h := lv.handles; h != nil; {
		next := h.next
		if lv.prior != nil {
			ins.attachHandle(lv.prior, h)
		} else {
			h.owner = nil
			h.prev, h.next = nil, nil
			ins.looseHandles = append(ins.looseHandles, h)
		}
		h = next
	}
	lv.handles = nil
	ins.top = lv.prior
	ins.depth--
}

// dropLevel removes the topmost level during an unwind. Still-attached
// root handles are released: nothing may leak on an error path.
func (ins *Instance) dropLevel(lv *Level) {
	for h := lv.handles; h != nil; {
		next := h.next
		h.flags &^= stubRooted
		h.owner = nil
		h.prev, h.next = nil, nil
		ins.rootCount--
		h = next
	}
	lv.handles = nil
	ins.top = lv.prior
	ins.depth--
}

// newStepper builds a stepper level over feed in env.
func (ins *Instance) newStepper(feed *Feed, env *Stub, flags levelFlag) *Level {
	return &Level{
		kind:  ExecStepper,
		flags: flags,
		feed:  feed,
		env:   env,
	}
}

// pushStepper builds and pushes in one step.
func (ins *Instance) pushStepper(feed *Feed, env *Stub, flags levelFlag) *Level {
	lv := ins.newStepper(feed, env, flags)
	ins.pushLevel(lv)
	return lv
}
