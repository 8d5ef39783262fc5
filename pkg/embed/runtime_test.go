package revo

import (
	"strings"
	"testing"

	"github.com/funvibe/revo/internal/config"
	"github.com/funvibe/revo/internal/core"
)

func TestRuntime_DoAndMarshal(t *testing.T) {
	r := New(nil)
	v, err := r.DoValue("1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(9) {
		t.Errorf("DoValue = %v, want 9", v)
	}

	v, err = r.DoValue(`reduce [1 "two" 3.0]`)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := v.([]interface{})
	if !ok || len(list) != 3 {
		t.Fatalf("DoValue block = %#v", v)
	}
	if list[0] != int64(1) || list[1] != "two" || list[2] != 3.0 {
		t.Errorf("block contents = %#v", list)
	}
}

func TestRuntime_BindGoValues(t *testing.T) {
	r := New(nil)
	if err := r.Bind("limit", 10); err != nil {
		t.Fatal(err)
	}
	if err := r.Bind("greeting", "hi"); err != nil {
		t.Fatal(err)
	}
	v, err := r.DoValue("limit + 5")
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(15) {
		t.Errorf("bound integer arithmetic = %v", v)
	}
	v, err = r.DoValue("greeting")
	if err != nil {
		t.Fatal(err)
	}
	if v != "hi" {
		t.Errorf("bound text = %v", v)
	}
}

func TestRuntime_OutputRedirect(t *testing.T) {
	r := New(nil)
	var sb strings.Builder
	r.SetOutput(&sb)
	if _, err := r.Do(`print "hello"`); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "hello\n" {
		t.Errorf("print wrote %q", sb.String())
	}
}

func TestRuntime_HandleLifecycle(t *testing.T) {
	r := New(nil)
	out, err := r.Do("reduce [1 2 3]")
	if err != nil {
		t.Fatal(err)
	}
	h := r.Capture(&out)
	r.Instance().Collect()

	cell, err := h.Cell()
	if err != nil {
		t.Fatal(err)
	}
	if cell.Kind() != core.KindBlock || cell.Series().Len() != 3 {
		t.Error("captured value lost across a collection")
	}
	if err := h.Free(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Cell(); err != core.ErrReleasedHandle {
		t.Errorf("freed handle read gave %v", err)
	}
}

func TestRuntime_ErrorsSurfaceAsGoErrors(t *testing.T) {
	r := New(nil)
	_, err := r.Do(`fail "nope"`)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error %q lost the guest message", err)
	}
}

func eagerRuntime() *Runtime {
	cfg := config.Default()
	cfg.GCTrigger = 1
	return New(cfg)
}

func TestRuntime_CaptureSurvivesEagerCollection(t *testing.T) {
	// Between Do returning and the handle taking the value, the result
	// lives only in a Go local; allocating the handle must not reclaim
	// it.
	r := eagerRuntime()
	out, err := r.Do("reduce [1 2 3]")
	if err != nil {
		t.Fatal(err)
	}
	h := r.Capture(&out)
	cell, err := h.Cell()
	if err != nil {
		t.Fatal(err)
	}
	if cell.Kind() != core.KindBlock || cell.Series().Len() != 3 {
		t.Fatalf("captured block = %s", r.Instance().MoldCell(cell))
	}
	for i, want := range []int64{1, 2, 3} {
		if got := cell.Series().At(i).Int(); got != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

func TestRuntime_BindSliceSurvivesEagerCollection(t *testing.T) {
	r := eagerRuntime()
	if err := r.Bind("xs", []interface{}{"alpha", "beta"}); err != nil {
		t.Fatal(err)
	}
	v, err := r.DoValue("xs")
	if err != nil {
		t.Fatal(err)
	}
	list, ok := v.([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("bound slice read back as %#v", v)
	}
	if list[0] != "alpha" || list[1] != "beta" {
		t.Errorf("element texts = %#v", list)
	}
}
