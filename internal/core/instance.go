package core

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/funvibe/revo/internal/config"
)

// Instance is one isolated interpreter: its own symbol table, pool,
// native table, globals, and signal state. Nothing in the core is
// process-global, so instances can coexist and later run on separate
// goroutines. One instance is single-threaded by contract.
type Instance struct {
	// ID stamps root handles so cross-instance misuse is detectable.
	ID uuid.UUID

	// Out is where print-family natives write.
	Out io.Writer

	// HostState is scratch space for extension native packages.
	HostState map[string]interface{}

	cfg  *config.Config
	syms *SymbolTable
	pool *pool

	natives []nativeEntry

	// globals is the outermost varlist.
	globals *Stub

	top   *Level
	depth int

	pending  *Signal
	sigFlags signalFlags

	guarded      []*Stub
	looseHandles []*Stub
	rootCount    int
	allocSinceGC int
	handleSeq    int64

	// interned spellings the core itself consults
	symBreak, symContinue, symReturn, symThrow           Sym
	symNoValue, symTypeMismatch, symMissingArg           Sym
	symLiteralLeftTie, symSyntax, symZeroDivide          Sym
	symStackOverflow, symBadRefine, symUser, symInternal Sym
	symError                                             Sym
}

// NewInstance builds a ready interpreter with the core natives
// registered and nothing else.
func NewInstance(cfg *config.Config) *Instance {
	if cfg == nil {
		cfg = config.Default()
	}
	ins := &Instance{
		ID:        uuid.New(),
		Out:       os.Stdout,
		HostState: make(map[string]interface{}),
		cfg:       cfg,
		syms:      NewSymbolTable(),
		pool:      newPool(cfg.StubSegment),
	}
	ins.symBreak = ins.syms.Intern(config.ThrowNameBreak)
	ins.symContinue = ins.syms.Intern(config.ThrowNameContinue)
	ins.symReturn = ins.syms.Intern(config.ThrowNameReturn)
	ins.symThrow = ins.syms.Intern(config.ThrowNameDefault)
	ins.symNoValue = ins.syms.Intern("no-value")
	ins.symTypeMismatch = ins.syms.Intern("type-mismatch")
	ins.symMissingArg = ins.syms.Intern("missing-arg")
	ins.symLiteralLeftTie = ins.syms.Intern("literal-left-tie")
	ins.symSyntax = ins.syms.Intern("syntax-error")
	ins.symZeroDivide = ins.syms.Intern("zero-divide")
	ins.symStackOverflow = ins.syms.Intern("stack-overflow")
	ins.symBadRefine = ins.syms.Intern("bad-refine")
	ins.symUser = ins.syms.Intern("user")
	ins.symInternal = ins.syms.Intern("internal")
	ins.symError = ins.syms.Intern("error")

	ins.globals = ins.allocStub(FlavorVarList)

	registerCoreNatives(ins)
	return ins
}

// Syms exposes the instance's symbol table.
func (ins *Instance) Syms() *SymbolTable { return ins.syms }

// Globals exposes the outermost varlist.
func (ins *Instance) Globals() *Stub { return ins.globals }

// Top returns the topmost level, or nil when idle.
func (ins *Instance) Top() *Level { return ins.top }

// allocStub is the one gate to the pool. Collection may trigger here,
// before the new stub exists, at any allocating operation.
func (ins *Instance) allocStub(flavor Flavor) *Stub {
	ins.maybeCollect()
	ins.allocSinceGC++
	return ins.pool.get(flavor)
}

// LiveStubs reports the pool's live stub count (test probe).
func (ins *Instance) LiveStubs() int { return ins.pool.live }

// ---- value constructors that allocate ----

// NewArray allocates an array stub seeded from cells.
func (ins *Instance) NewArray(cells []Cell) *Stub {
	s := ins.allocStub(FlavorArray)
	s.flags |= stubManaged
	s.cells = append(s.cells, cells...)
	return s
}

// NewVarList allocates an empty varlist chained to parent.
func (ins *Instance) NewVarList(parent *Stub) *Stub {
	s := ins.allocStub(FlavorVarList)
	s.flags |= stubManaged
	s.parent = parent
	return s
}

// InitText makes c a text value with fresh storage.
func (ins *Instance) InitText(c *Cell, s string) {
	stub := ins.allocStub(FlavorText)
	stub.flags |= stubManaged
	stub.bytes = []byte(s)
	c.InitSeries(KindText, stub, 0)
}

// InitBinary makes c a binary value with fresh storage.
func (ins *Instance) InitBinary(c *Cell, data []byte) {
	stub := ins.allocStub(FlavorBinary)
	stub.flags |= stubManaged
	stub.bytes = append([]byte(nil), data...)
	c.InitSeries(KindBinary, stub, 0)
}

// InitBlock makes c a block over a fresh array stub.
func (ins *Instance) InitBlock(c *Cell, cells []Cell) {
	c.InitSeries(KindBlock, ins.NewArray(cells), 0)
}

// NextHandleID mints an id for an opaque host handle cell.
func (ins *Instance) NextHandleID() int64 {
	ins.handleSeq++
	return ins.handleSeq
}

// ---- word binding ----

// GetWord resolves sym through env's scope chain, falling back to the
// globals. Returns nil when unbound.
func (ins *Instance) GetWord(env *Stub, sym Sym) *Cell {
	if env != nil {
		if holder, i := env.chainFind(sym); holder != nil {
			return holder.At(i)
		}
	}
	if i := ins.globals.varFind(sym); i >= 0 {
		return ins.globals.At(i)
	}
	return nil
}

// SetWord assigns sym in the nearest scope that already binds it, or
// defines it in env (the globals when env is nil).
func (ins *Instance) SetWord(env *Stub, sym Sym, v *Cell) {
	if env != nil {
		if holder, i := env.chainFind(sym); holder != nil {
			CopyCell(holder.At(i), v)
			return
		}
	} else {
		if i := ins.globals.varFind(sym); i >= 0 {
			CopyCell(ins.globals.At(i), v)
			return
		}
	}
	target := env
	if target == nil {
		target = ins.globals
	}
	target.varAdd(sym, v)
}

// Bind defines a named global value (host convenience).
func (ins *Instance) Bind(name string, v *Cell) {
	ins.SetWord(nil, ins.syms.Intern(name), v)
}

func sprintf(format string, a ...interface{}) string {
	return fmt.Sprintf(format, a...)
}
