package core

import (
	"errors"
	"fmt"
)

// ErrUncaughtThrow reports a throw that reached the top of the level
// stack. That is a defect in a control construct, not a user error.
var ErrUncaughtThrow = errors.New("internal defect: uncaught throw reached the trampoline top")

// GuestError is the Go-side rendering of an uncaught guest failure or
// panic.
type GuestError struct {
	ID        string
	Message   string
	Divergent bool
}

func (e *GuestError) Error() string {
	sev := "Error"
	if e.Divergent {
		sev = "Panic"
	}
	if e.Message != "" {
		return fmt.Sprintf("** %s: %s %s", sev, e.ID, e.Message)
	}
	return fmt.Sprintf("** %s: %s", sev, e.ID)
}

// drive is the trampoline: the single loop that re-invokes the topmost
// level's executor until base completes or a signal unwinds past it.
// No executor ever calls another executor on the host stack.
func (ins *Instance) drive(base *Level) Bounce {
	for {
		top := ins.top

		var b Bounce
		switch top.kind {
		case ExecStepper:
			b = top.stepStepper()
		case ExecAction:
			b = top.stepAction()
		case ExecScanner:
			b = top.stepScanner()
		default:
			panic("level with unknown executor kind")
		}

		switch b {
		case BounceContinue:
			// Re-enter whatever is topmost now.

		case BounceDelegate:
			// The level stays logically present while its child
			// produces the result on its behalf.
			top.flags |= levelDelegated

		case BounceDone:
			ins.popLevel(top)
			if top == base {
				return BounceDone
			}
			// Unwrap any chain of delegated parents: their result is
			// the child's result, with no further step.
			for ins.top != nil && ins.top.flags&levelDelegated != 0 {
				parent := ins.top
				CopyCell(&parent.out, &top.out)
				ins.popLevel(parent)
				if parent == base {
					return BounceDone
				}
				top = parent
			}
			if ins.top != nil {
				CopyCell(&ins.top.sub, &top.out)
			}

		case BounceUnwind:
			// The executor either armed a signal or declined to
			// intercept a pending one. Drop the level, which releases
			// its root handles, and let the next level up have a look.
			ins.dropLevel(top)
			if top == base {
				return BounceUnwind
			}

		default:
			panic("executor returned unknown bounce")
		}
	}
}

// signalToError converts an unconsumed signal into the Go error the
// embedding surface reports.
func (ins *Instance) signalToError() error {
	sig := ins.ClearSignal()
	if sig == nil {
		return nil
	}
	switch sig.Kind {
	case SignalThrow:
		return fmt.Errorf("%w (name: %s)", ErrUncaughtThrow, ins.syms.Spelling(sig.Name))
	case SignalFailure, SignalPanic:
		ge := &GuestError{
			ID:        ins.syms.Spelling(sig.Err.errID),
			Divergent: sig.Kind == SignalPanic,
		}
		if len(sig.Err.cells) > 0 {
			ge.Message = ins.FormCell(sig.Err.At(0))
		}
		return ge
	}
	return fmt.Errorf("internal defect: unknown signal kind %d", sig.Kind)
}

// DoBlock evaluates a block value to completion and returns its result.
func (ins *Instance) DoBlock(block *Cell) (Cell, error) {
	lv := ins.newStepper(NewArrayFeed(block.Series(), block.Index()), ins.globals, levelRunToEnd)
	ins.pushLevel(lv)
	if ins.drive(lv) == BounceUnwind {
		return Cell{}, ins.signalToError()
	}
	return lv.out, nil
}

// DoBlockIn evaluates a block in a given environment.
func (ins *Instance) DoBlockIn(block *Cell, env *Stub) (Cell, error) {
	lv := ins.newStepper(NewArrayFeed(block.Series(), block.Index()), env, levelRunToEnd)
	ins.pushLevel(lv)
	if ins.drive(lv) == BounceUnwind {
		return Cell{}, ins.signalToError()
	}
	return lv.out, nil
}

// DoText scans src and evaluates the result.
func (ins *Instance) DoText(src string) (Cell, error) {
	block, err := ins.ScanText(src)
	if err != nil {
		return Cell{}, err
	}
	// The scanned block must survive evaluation even if evaluation
	// allocates; the block cell itself lives only on the Go stack.
	ins.Guard(block.Series())
	defer ins.Unguard(block.Series())
	return ins.DoBlock(&block)
}

// ScanText tokenizes source text into a block without evaluating.
func (ins *Instance) ScanText(src string) (Cell, error) {
	return ins.scanFeed(NewTextFeed([]byte(src)), 0)
}

// ScanNext scans a single value from feed, advancing it. The bool is
// false at end of input.
func (ins *Instance) ScanNext(feed *Feed) (Cell, bool, error) {
	if feed.AtEnd() {
		return Cell{}, false, nil
	}
	out, err := ins.scanWith(feed, levelScanOne)
	if err != nil {
		return Cell{}, false, err
	}
	if out.Kind() == KindGhost {
		// Nothing but trivia remained.
		return Cell{}, false, nil
	}
	return out, true, nil
}

// ScanSplice scans a mixture of literal text spans and already-built
// cells, the host-driven interpolation entry point. Parts follow
// NewSpliceFeed's contract.
func (ins *Instance) ScanSplice(parts ...interface{}) (Cell, error) {
	return ins.scanFeed(NewSpliceFeed(parts...), 0)
}

func (ins *Instance) scanFeed(feed *Feed, extra levelFlag) (Cell, error) {
	return ins.scanWith(feed, extra)
}

func (ins *Instance) scanWith(feed *Feed, extra levelFlag) (Cell, error) {
	lv := &Level{
		kind:  ExecScanner,
		flags: extra,
		feed:  feed,
	}
	lv.scanner.kind = KindBlock
	lv.scanner.sess = &scanSession{line: 1}
	ins.pushLevel(lv)
	if ins.drive(lv) == BounceUnwind {
		return Cell{}, ins.signalToError()
	}
	return lv.out, nil
}
