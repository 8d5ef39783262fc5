package core

import "testing"

func TestCell_ZeroValueIsScratch(t *testing.T) {
	var c Cell
	if c.Kind() != KindScratch {
		t.Fatalf("zero cell kind = %s", c.Kind())
	}
	if c.IsLive() {
		t.Error("scratch must read as not live")
	}
	if c.Truthy() {
		t.Error("scratch must not be truthy")
	}
}

func TestCell_KindAndQuotesPack(t *testing.T) {
	var c Cell
	c.InitInteger(5)
	c.Quote(3)
	if c.Kind() != KindInteger || c.Quotes() != 3 {
		t.Fatalf("kind %s quotes %d", c.Kind(), c.Quotes())
	}
	c.Unquote()
	if c.Quotes() != 2 {
		t.Errorf("quotes after unquote = %d", c.Quotes())
	}
	if c.Int() != 5 {
		t.Errorf("payload lost across quote changes: %d", c.Int())
	}
}

func TestCell_FlagsAreIndependent(t *testing.T) {
	var c Cell
	c.InitLogic(true)
	c.SetNewlineBefore(true)
	c.SetConst()
	if !c.NewlineBefore() || !c.Const() {
		t.Fatal("flags did not set")
	}
	if c.Kind() != KindLogic || !c.Logic() {
		t.Error("flags clobbered kind or payload")
	}
	c.SetNewlineBefore(false)
	if c.NewlineBefore() || !c.Const() {
		t.Error("clearing one flag disturbed the other")
	}
}

func TestCell_WrongKindReadPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("reading an integer as text did not panic")
		}
	}()
	var c Cell
	c.InitInteger(1)
	_ = c.Text()
}

func TestCell_Truthiness(t *testing.T) {
	ins := newTestInstance()
	var c Cell

	c.InitNulled()
	if c.Truthy() {
		t.Error("null is truthy")
	}
	c.InitLogic(false)
	if c.Truthy() {
		t.Error("false is truthy")
	}
	c.InitInteger(0)
	if !c.Truthy() {
		t.Error("zero integer must be truthy; only null and false are not")
	}
	ins.InitText(&c, "")
	if !c.Truthy() {
		t.Error("empty text must be truthy")
	}
}

func TestCell_EqualCells(t *testing.T) {
	ins := newTestInstance()
	var a, b Cell
	a.InitInteger(3)
	b.InitInteger(3)
	if !EqualCells(&a, &b) {
		t.Error("equal integers compare unequal")
	}
	b.Quote(1)
	if EqualCells(&a, &b) {
		t.Error("quoting depth must participate in equality")
	}

	ins.InitText(&a, "abc")
	ins.InitText(&b, "abc")
	if !EqualCells(&a, &b) {
		t.Error("equal texts compare unequal")
	}
}

func TestSymbols_CaseInsensitiveIdentity(t *testing.T) {
	st := NewSymbolTable()
	a := st.Intern("Word")
	b := st.Intern("word")
	c := st.Intern("WORD")
	if a != b || b != c {
		t.Error("case variants interned to different symbols")
	}
	if st.Spelling(a) != "Word" {
		t.Errorf("canonical spelling = %q, want the first seen", st.Spelling(a))
	}
	if st.Lookup("other") != SymNone {
		t.Error("lookup of never-interned spelling is not SymNone")
	}
}
