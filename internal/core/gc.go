package core

// The collector is a plain mark-sweep over the stub pool. The root set
// is: the instance globals, every guarded stub, every loose root
// handle, and, per level on the stack, the out/sub cells, executor
// state cells, feed keepalives, environment, and attached root handles.
// Collection may run at any stub-allocating operation, so everything
// live must be discoverable through that set at all times; code that
// builds multi-stub structures parks intermediates with Guard.

// Guard pins s into the root set until Unguard. Used while wiring
// multi-stub structures that are not yet reachable from anywhere else.
func (ins *Instance) Guard(s *Stub) {
	ins.guarded = append(ins.guarded, s)
}

// GuardCell pins the stub a cell references, if any. Host-boundary
// code assembling values that live only in Go locals uses this around
// further allocating calls.
func (ins *Instance) GuardCell(c *Cell) {
	if c.ref != nil {
		ins.Guard(c.ref)
	}
}

// UnguardCell releases a GuardCell pin.
func (ins *Instance) UnguardCell(c *Cell) {
	if c.ref != nil {
		ins.Unguard(c.ref)
	}
}

// Unguard releases the most recent guard of s. Guards nest like a
// stack; release order is expected to mirror acquisition.
func (ins *Instance) Unguard(s *Stub) {
	for i := len(ins.guarded) - 1; i >= 0; i-- {
		if ins.guarded[i] == s {
			ins.guarded = append(ins.guarded[:i], ins.guarded[i+1:]...)
			return
		}
	}
}

// maybeCollect runs a collection when the allocation budget since the
// last cycle is spent. Called on entry to allocStub, before the new
// stub exists, so a fresh stub can be wired up without racing the
// sweep.
func (ins *Instance) maybeCollect() {
	if ins.cfg.DisableGC {
		return
	}
	if ins.allocSinceGC >= ins.cfg.GCTrigger {
		ins.Collect()
	}
}

// Collect runs a full mark-sweep cycle and returns the number of stubs
// reclaimed.
func (ins *Instance) Collect() int {
	ins.allocSinceGC = 0

	// Mark with an explicit worklist: structure depth must not turn
	// into host stack depth here any more than it does in evaluation.
	var work []*Stub
	push := func(s *Stub) {
		if s != nil && s.flags&stubMarked == 0 {
			s.flags |= stubMarked
			work = append(work, s)
		}
	}

	ins.markRoots(push)

	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]
		markStubRefs(s, push)
	}

	// Sweep everything unmarked, clear marks on survivors.
	reclaimed := 0
	ins.pool.each(func(s *Stub) {
		if s.flags&stubMarked != 0 {
			s.flags &^= stubMarked
			return
		}
		ins.pool.put(s)
		reclaimed++
	})
	return reclaimed
}

func (ins *Instance) markRoots(push func(*Stub)) {
	push(ins.globals)
	for _, g := range ins.guarded {
		push(g)
	}
	for _, h := range ins.looseHandles {
		push(h)
	}
	for _, d := range ins.natives {
		push(d.selfDetails)
	}
	for lv := ins.top; lv != nil; lv = lv.prior {
		markCell(&lv.out, push)
		markCell(&lv.sub, push)
		push(lv.env)
		if lv.feed != nil {
			lv.feed.markStubs(push)
		}
		for h := lv.handles; h != nil; h = h.next {
			push(h)
		}
		switch lv.kind {
		case ExecStepper:
			markCell(&lv.stepper.current, push)
		case ExecAction:
			markCell(&lv.action.original, push)
			markCell(&lv.action.left, push)
			push(lv.action.details)
			push(lv.action.frame)
			push(lv.action.finalDetails)
			for _, p := range lv.action.preludes {
				push(p)
			}
			if w, ok := lv.action.work.(*Stub); ok {
				push(w)
			}
		case ExecScanner:
			for i := range lv.scanner.items {
				markCell(&lv.scanner.items[i], push)
			}
		}
	}
	if ins.pending != nil {
		markCell(&ins.pending.Value, push)
		push(ins.pending.Err)
	}
}

// markCell pushes the stub a cell references, if any. Scratch cells
// carry a nil reference by construction, so the uninitialized state is
// always safe to visit.
func markCell(c *Cell, push func(*Stub)) {
	if c.ref != nil {
		push(c.ref)
	}
}

// markStubRefs pushes everything s references strongly. The root-handle
// prev/next/owner links are deliberately not followed: they are weak.
func markStubRefs(s *Stub, push func(*Stub)) {
	for i := range s.cells {
		markCell(&s.cells[i], push)
	}
	push(s.parent)
	if d := s.details; d != nil {
		push(d.Params)
		push(d.Body)
		push(d.Binding)
		push(d.Exemplar)
		push(d.Prelude)
		push(d.Target)
		push(d.Hijack)
	}
}
