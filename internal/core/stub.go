package core

import "github.com/google/uuid"

// Flavor says what a stub's storage backs.
type Flavor uint8

const (
	FlavorFree     Flavor = iota // on the pool free list
	FlavorArray                  // cells: a run of value slots
	FlavorText                   // bytes: UTF-8 text
	FlavorBinary                 // bytes: raw octets
	FlavorVarList                // keys+cells: a bound environment
	FlavorParamList              // params: a function's parameter record
	FlavorDetails                // details: an action's implementation record
	FlavorError                  // errID+cells: structured error
)

type stubFlag uint8

const (
	stubMarked  stubFlag = 1 << iota // reachable in the current mark phase
	stubManaged                      // ordinary GC lifetime
	stubRooted                       // root handle, pinned by its owner level
	stubFixed                        // storage may not grow
)

// Stub is a heap node backing every variable-size structure. Stubs are
// owned by the collector: allocate through Instance.allocStub, never
// construct one directly. Cells reference stubs strongly; the prev/next
// links of the root-handle list are non-owning and never keep a stub
// alive by themselves.
type Stub struct {
	flavor Flavor
	flags  stubFlag

	cells  []Cell  // FlavorArray, FlavorVarList values, FlavorError args
	bytes  []byte  // FlavorText, FlavorBinary
	keys   []Sym   // FlavorVarList keys, parallel to cells
	params []Param // FlavorParamList

	details *ActionDetails // FlavorDetails

	errID   Sym // FlavorError: symbolic identity
	errLine int // FlavorError: source line, 0 if unknown

	// parent chains varlists into scopes.
	parent *Stub

	// Root-handle bookkeeping. owner is the level the handle was
	// allocated under; prev/next link the handle into that level's
	// list; instID stamps which instance the handle belongs to so a
	// stale or foreign handle is a checked error, not a wild pointer.
	owner  *Level
	prev   *Stub
	next   *Stub
	instID uuid.UUID
}

// Flavor returns the stub's storage flavor.
func (s *Stub) Flavor() Flavor { return s.flavor }

// Managed reports whether the stub has ordinary GC lifetime.
func (s *Stub) Managed() bool { return s.flags&stubManaged != 0 }

// Rooted reports whether the stub is a live root handle.
func (s *Stub) Rooted() bool { return s.flags&stubRooted != 0 }

// Len returns the element count for the stub's flavor.
func (s *Stub) Len() int {
	switch s.flavor {
	case FlavorText, FlavorBinary:
		return len(s.bytes)
	case FlavorParamList:
		return len(s.params)
	default:
		return len(s.cells)
	}
}

// At returns the cell at index i of an array-backed stub.
func (s *Stub) At(i int) *Cell {
	return &s.cells[i]
}

// Append grows an array-backed stub by one cell.
func (s *Stub) Append(c *Cell) {
	if s.flags&stubFixed != 0 {
		panic("append to fixed-size stub")
	}
	var slot Cell
	CopyCell(&slot, c)
	s.cells = append(s.cells, slot)
}

// varFind returns the index of key in a varlist, or -1.
func (s *Stub) varFind(key Sym) int {
	for i, k := range s.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// varAdd appends a key/value pair to a varlist.
func (s *Stub) varAdd(key Sym, v *Cell) {
	s.keys = append(s.keys, key)
	var slot Cell
	if v != nil {
		CopyCell(&slot, v)
	}
	s.cells = append(s.cells, slot)
}

// chainFind walks a varlist scope chain looking for key. Returns the
// holding varlist and slot index, or (nil, -1).
func (s *Stub) chainFind(key Sym) (*Stub, int) {
	for v := s; v != nil; v = v.parent {
		if i := v.varFind(key); i >= 0 {
			return v, i
		}
	}
	return nil, -1
}
