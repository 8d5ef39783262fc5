package core

import "errors"

var (
	// ErrForeignHandle means a handle was used with an instance other
	// than the one that allocated it.
	ErrForeignHandle = errors.New("root handle belongs to a different instance")

	// ErrReleasedHandle means a handle was used after Free, or after
	// its owning level unwound.
	ErrReleasedHandle = errors.New("root handle already released")
)

// AllocHandle allocates a root handle: a singly-committed stub holding
// one cell, attached to the currently topmost level. Until promoted or
// freed, its lifetime is bounded by that level; if the level unwinds on
// failure the handle is released with it.
func (ins *Instance) AllocHandle() *Stub {
	h := ins.allocStub(FlavorArray)
	h.cells = make([]Cell, 1)
	h.flags |= stubRooted | stubFixed
	h.instID = ins.ID
	ins.attachHandle(ins.top, h)
	ins.rootCount++
	return h
}

// HandleFromCell allocates a root handle initialized from an existing
// cell plus its binding context.
func (ins *Instance) HandleFromCell(c *Cell, binding *Stub) *Stub {
	// The source may be reachable only through the caller's Go local,
	// and the handle allocation can collect.
	if c.ref != nil {
		ins.Guard(c.ref)
		defer ins.Unguard(c.ref)
	}
	h := ins.AllocHandle()
	CopyCell(&h.cells[0], c)
	h.parent = binding
	return h
}

// HandleCell returns the handle's one value slot.
func (ins *Instance) HandleCell(h *Stub) (*Cell, error) {
	if err := ins.checkHandle(h); err != nil {
		return nil, err
	}
	return &h.cells[0], nil
}

// FreeHandle detaches and releases a handle explicitly.
func (ins *Instance) FreeHandle(h *Stub) error {
	if err := ins.checkHandle(h); err != nil {
		return err
	}
	ins.detachHandle(h)
	h.flags &^= stubRooted
	ins.rootCount--
	return nil
}

// PromoteHandle moves a handle from level-bound to ordinary GC
// lifetime: it stops being a root and survives exactly as long as
// something references it.
func (ins *Instance) PromoteHandle(h *Stub) error {
	if err := ins.checkHandle(h); err != nil {
		return err
	}
	ins.detachHandle(h)
	h.flags &^= stubRooted
	h.flags |= stubManaged
	ins.rootCount--
	return nil
}

// RootCount is the live root-handle probe used by leak tests.
func (ins *Instance) RootCount() int { return ins.rootCount }

func (ins *Instance) checkHandle(h *Stub) error {
	if h.instID != ins.ID {
		return ErrForeignHandle
	}
	if h.flags&stubRooted == 0 {
		return ErrReleasedHandle
	}
	return nil
}

// attachHandle links h at the head of owner's handle list. A nil owner
// (no levels yet) parks the handle on the instance itself.
func (ins *Instance) attachHandle(owner *Level, h *Stub) {
	h.owner = owner
	if owner == nil {
		h.prev, h.next = nil, nil
		ins.looseHandles = append(ins.looseHandles, h)
		return
	}
	h.prev = nil
	h.next = owner.handles
	if owner.handles != nil {
		owner.handles.prev = h
	}
	owner.handles = h
}

// detachHandle unlinks h from wherever it lives.
func (ins *Instance) detachHandle(h *Stub) {
	if h.owner == nil {
		for i, cand := range ins.looseHandles {
			if cand == h {
				ins.looseHandles = append(ins.looseHandles[:i], ins.looseHandles[i+1:]...)
				break
			}
		}
		return
	}
	if h.prev != nil {
		h.prev.next = h.next
	} else {
		h.owner.handles = h.next
	}
	if h.next != nil {
		h.next.prev = h.prev
	}
	h.owner = nil
	h.prev, h.next = nil, nil
}
