package core

// feedSegment is one span of input: either a run of cells or a span of
// source text. Mixed segments are what host-driven interpolated scans
// are made of.
type feedSegment struct {
	array *Stub  // keepalive + identity when cells come from a stub
	cells []Cell // populated for value segments
	text  []byte // populated for text segments
}

// Feed is the input cursor every executor consumes: an ordered list of
// segments with exactly one cell of lookahead for value reads. Text
// segments are consumed byte-wise by the scanner; value segments are
// consumed cell-wise by everyone.
type Feed struct {
	segs []feedSegment
	seg  int // current segment
	idx  int // position within current segment (cells or bytes)
}

// NewArrayFeed positions a feed over an array stub from index.
func NewArrayFeed(array *Stub, index int) *Feed {
	return &Feed{segs: []feedSegment{{array: array, cells: array.cells[index:]}}}
}

// NewCellsFeed positions a feed over a raw cell slice (the cells must
// be kept reachable by the caller's level).
func NewCellsFeed(cells []Cell) *Feed {
	return &Feed{segs: []feedSegment{{cells: cells}}}
}

// NewTextFeed positions a feed over source text.
func NewTextFeed(text []byte) *Feed {
	return &Feed{segs: []feedSegment{{text: text}}}
}

// NewSpliceFeed builds a variadic feed from parts. Each part must be a
// []byte (text span), a *Cell (pre-built value), or a *Stub (array of
// values).
func NewSpliceFeed(parts ...interface{}) *Feed {
	f := &Feed{}
	for _, part := range parts {
		switch p := part.(type) {
		case []byte:
			f.segs = append(f.segs, feedSegment{text: p})
		case string:
			f.segs = append(f.segs, feedSegment{text: []byte(p)})
		case *Cell:
			var slot Cell
			CopyCell(&slot, p)
			f.segs = append(f.segs, feedSegment{cells: []Cell{slot}})
		case *Stub:
			f.segs = append(f.segs, feedSegment{array: p, cells: p.cells})
		default:
			panic("splice feed part must be text, cell, or stub")
		}
	}
	return f
}

// skipEmpty advances past exhausted segments.
func (f *Feed) skipEmpty() {
	for f.seg < len(f.segs) {
		s := &f.segs[f.seg]
		n := len(s.cells)
		if s.text != nil {
			n = len(s.text)
		}
		if f.idx < n {
			return
		}
		f.seg++
		f.idx = 0
	}
}

// AtEnd reports whether no input remains.
func (f *Feed) AtEnd() bool {
	f.skipEmpty()
	return f.seg >= len(f.segs)
}

// AtText reports whether the cursor sits on a text span.
func (f *Feed) AtText() bool {
	f.skipEmpty()
	return f.seg < len(f.segs) && f.segs[f.seg].text != nil
}

// Current returns the cell under the cursor without consuming it. This
// is the one cell of lookahead; calling it on a text span or at end is
// a cursor misuse.
func (f *Feed) Current() *Cell {
	f.skipEmpty()
	s := &f.segs[f.seg]
	if s.text != nil {
		panic("feed value read on a text span")
	}
	return &s.cells[f.idx]
}

// Advance consumes the current cell.
func (f *Feed) Advance() {
	f.idx++
}

// PeekByte returns the byte under the cursor of a text span, or 0 at
// the span's end.
func (f *Feed) PeekByte() byte {
	f.skipEmpty()
	if f.seg >= len(f.segs) || f.segs[f.seg].text == nil {
		return 0
	}
	return f.segs[f.seg].text[f.idx]
}

// NextByte consumes and returns the byte under the cursor. A zero
// return means the span (or input) is exhausted; source text never
// contains NUL.
func (f *Feed) NextByte() byte {
	b := f.PeekByte()
	if b != 0 {
		f.idx++
	}
	return b
}

// TextTail returns the unconsumed remainder of the current text span
// and its consumed prefix length, for position reporting.
func (f *Feed) TextTail() ([]byte, int) {
	f.skipEmpty()
	if f.seg >= len(f.segs) || f.segs[f.seg].text == nil {
		return nil, 0
	}
	return f.segs[f.seg].text[f.idx:], f.idx
}

// SkipText advances n bytes within the current text span.
func (f *Feed) SkipText(n int) {
	f.idx += n
}

// markStubs reports every stub the feed keeps alive to the collector.
func (f *Feed) markStubs(mark func(*Stub)) {
	for i := range f.segs {
		s := &f.segs[i]
		if s.array != nil {
			mark(s.array)
		}
		for j := range s.cells {
			markCell(&s.cells[j], mark)
		}
	}
}
