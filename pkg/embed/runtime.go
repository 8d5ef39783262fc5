package revo

import (
	"io"

	"github.com/funvibe/revo/internal/config"
	"github.com/funvibe/revo/internal/core"
)

// Runtime wraps one interpreter instance and provides the high-level
// embedding API. A Runtime is single-threaded; create one per
// goroutine when embedding concurrently.
type Runtime struct {
	ins        *core.Instance
	marshaller *Marshaller
}

// New creates a runtime with the given configuration (nil for
// defaults) and the core natives registered.
func New(cfg *config.Config) *Runtime {
	return &Runtime{
		ins:        core.NewInstance(cfg),
		marshaller: NewMarshaller(),
	}
}

// Instance exposes the underlying interpreter for extension packages
// that register natives directly.
func (r *Runtime) Instance() *core.Instance { return r.ins }

// SetOutput redirects print-family output.
func (r *Runtime) SetOutput(w io.Writer) { r.ins.Out = w }

// Do scans and evaluates source text, returning the final value.
func (r *Runtime) Do(src string) (core.Cell, error) {
	return r.ins.DoText(src)
}

// DoValue evaluates source and converts the result to a Go value.
func (r *Runtime) DoValue(src string) (interface{}, error) {
	out, err := r.ins.DoText(src)
	if err != nil {
		return nil, err
	}
	return r.marshaller.FromCell(r.ins, &out)
}

// Bind makes a Go value visible as a named global.
func (r *Runtime) Bind(name string, value interface{}) error {
	c, err := r.marshaller.ToCell(r.ins, value)
	if err != nil {
		return err
	}
	r.ins.Bind(name, &c)
	return nil
}

// Handle is a host-held reference into the runtime's heap. While live
// it pins its value against collection; its lifetime is bounded by the
// level it was allocated under unless promoted.
type Handle struct {
	r    *Runtime
	stub *core.Stub
}

// Alloc allocates an empty root handle.
func (r *Runtime) Alloc() *Handle {
	return &Handle{r: r, stub: r.ins.AllocHandle()}
}

// Capture allocates a root handle holding a copy of a result cell.
func (r *Runtime) Capture(c *core.Cell) *Handle {
	return &Handle{r: r, stub: r.ins.HandleFromCell(c, nil)}
}

// Cell returns the handle's value slot for reading or writing.
func (h *Handle) Cell() (*core.Cell, error) {
	return h.r.ins.HandleCell(h.stub)
}

// Free releases the handle explicitly.
func (h *Handle) Free() error {
	return h.r.ins.FreeHandle(h.stub)
}

// Promote converts the handle to ordinary GC lifetime: it stops
// pinning and survives only while referenced.
func (h *Handle) Promote() error {
	return h.r.ins.PromoteHandle(h.stub)
}
