package core

import (
	"fmt"
	"math"
)

// Kind is the logical datatype of a Cell. The zero value is KindScratch:
// a freshly zeroed cell is explicitly "not a value yet", never garbage,
// so the collector and the mold code can visit any cell safely.
type Kind uint8

const (
	KindScratch Kind = iota // uninitialized slot, never a live value
	KindNulled              // explicit null
	KindGhost               // vanishing result (comments and friends)
	KindUnset               // refinement "not supplied"; distinct from null
	KindLogic
	KindInteger
	KindDecimal
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindRefinement // /word
	KindText
	KindBinary
	KindBlock
	KindGroup
	KindFence
	KindPath
	KindTuple
	KindAction
	KindError
	KindHandle
	KindPack // multiple-return bundle

	kindMax
)

var kindNames = [...]string{
	KindScratch:    "scratch",
	KindNulled:     "null",
	KindGhost:      "ghost",
	KindUnset:      "unset",
	KindLogic:      "logic!",
	KindInteger:    "integer!",
	KindDecimal:    "decimal!",
	KindWord:       "word!",
	KindSetWord:    "set-word!",
	KindGetWord:    "get-word!",
	KindLitWord:    "lit-word!",
	KindRefinement: "refinement!",
	KindText:       "text!",
	KindBinary:     "binary!",
	KindBlock:      "block!",
	KindGroup:      "group!",
	KindFence:      "fence!",
	KindPath:       "path!",
	KindTuple:      "tuple!",
	KindAction:     "action!",
	KindError:      "error!",
	KindHandle:     "handle!",
	KindPack:       "pack!",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind-%d", uint8(k))
}

// KindMask is a set of kinds, used for parameter typechecking.
type KindMask uint32

// MaskOf builds a mask from kinds.
func MaskOf(kinds ...Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// AnyKind accepts every live value kind.
const AnyKind KindMask = 0

// Has reports whether k is in the mask. The empty mask means "any".
func (m KindMask) Has(k Kind) bool {
	return m == AnyKind || m&(1<<k) != 0
}

// Cell header layout (private; all access goes through methods):
//
//	bits 0..7   kind
//	bits 8..15  quoting depth
//	bits 16..   flags
const (
	headerKindMask   = 0x000000FF
	headerQuoteMask  = 0x0000FF00
	headerQuoteShift = 8

	cellFlagNewline = 1 << 16 // value was preceded by a newline in source
	cellFlagConst   = 1 << 17 // read-only view through this reference
)

// copiedFlags are the header flags preserved by CopyCell.
const copiedFlags = cellFlagNewline | cellFlagConst

// Cell is the fixed-size tagged value slot. Cells are never allocated
// individually; they live inside stubs, level slots, and root handles.
// The header is bit-packed for density but private: the kind fully
// determines how payload and ref are read, and the typed accessors are
// the only way in.
type Cell struct {
	header  uint32
	payload int64 // immediate: integer, decimal bits, symbol id, series index
	ref     *Stub // reference payload; nil for immediates
}

// Kind returns the cell's logical datatype, ignoring quoting.
func (c *Cell) Kind() Kind {
	return Kind(c.header & headerKindMask)
}

// Quotes returns the quoting depth.
func (c *Cell) Quotes() int {
	return int(c.header&headerQuoteMask) >> headerQuoteShift
}

// Quote adds n quoting levels.
func (c *Cell) Quote(n int) {
	q := c.Quotes() + n
	if q > 255 {
		panic("cell quoting depth overflow")
	}
	c.setQuotes(q)
}

// Unquote removes one quoting level if present.
func (c *Cell) Unquote() {
	if q := c.Quotes(); q > 0 {
		c.setQuotes(q - 1)
	}
}

func (c *Cell) setQuotes(q int) {
	c.header = c.header&^uint32(headerQuoteMask) | uint32(q)<<headerQuoteShift
}

// NewlineBefore reports the formatting hint "this value began a line".
func (c *Cell) NewlineBefore() bool { return c.header&cellFlagNewline != 0 }

// SetNewlineBefore sets or clears the newline hint.
func (c *Cell) SetNewlineBefore(on bool) {
	if on {
		c.header |= cellFlagNewline
	} else {
		c.header &^= cellFlagNewline
	}
}

// Const reports whether this reference forbids mutation of the target,
// regardless of other references to the same stub.
func (c *Cell) Const() bool { return c.header&cellFlagConst != 0 }

// SetConst marks this reference read-only.
func (c *Cell) SetConst() { c.header |= cellFlagConst }

// Reset returns the cell to the scratch state.
func (c *Cell) Reset() {
	*c = Cell{}
}

// IsLive reports whether the cell holds a real value (not scratch).
func (c *Cell) IsLive() bool { return c.Kind() != KindScratch }

func (c *Cell) init(k Kind) {
	c.header = uint32(k)
	c.payload = 0
	c.ref = nil
}

func (c *Cell) mustKind(k Kind) {
	if c.Kind() != k {
		panic(fmt.Sprintf("cell read as %s but holds %s", k, c.Kind()))
	}
}

// ---- constructors ----

// InitNulled makes c the null value.
func (c *Cell) InitNulled() { c.init(KindNulled) }

// InitGhost makes c the vanishing value.
func (c *Cell) InitGhost() { c.init(KindGhost) }

// InitUnset makes c the "not supplied" state.
func (c *Cell) InitUnset() { c.init(KindUnset) }

// InitLogic makes c a logic value.
func (c *Cell) InitLogic(v bool) {
	c.init(KindLogic)
	if v {
		c.payload = 1
	}
}

// InitInteger makes c an integer.
func (c *Cell) InitInteger(v int64) {
	c.init(KindInteger)
	c.payload = v
}

// InitDecimal makes c a decimal.
func (c *Cell) InitDecimal(v float64) {
	c.init(KindDecimal)
	c.payload = int64(math.Float64bits(v))
}

// InitWord makes c a word-family value. kind must be one of the word
// kinds (word, set-word, get-word, lit-word, refinement).
func (c *Cell) InitWord(kind Kind, id Sym) {
	switch kind {
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement:
	default:
		panic("InitWord with non-word kind " + kind.String())
	}
	c.init(kind)
	c.payload = int64(id)
}

// InitSeries makes c a series value positioned at index. kind must be a
// series kind and stub's flavor must back it.
func (c *Cell) InitSeries(kind Kind, stub *Stub, index int) {
	switch kind {
	case KindText, KindBinary, KindBlock, KindGroup, KindFence, KindPath, KindTuple, KindPack:
	default:
		panic("InitSeries with non-series kind " + kind.String())
	}
	c.init(kind)
	c.payload = int64(index)
	c.ref = stub
}

// InitAction makes c an action referencing its details stub.
func (c *Cell) InitAction(details *Stub) {
	c.init(KindAction)
	c.ref = details
}

// InitError makes c an error value referencing its error stub.
func (c *Cell) InitError(err *Stub) {
	c.init(KindError)
	c.ref = err
}

// InitHandle makes c an opaque host handle with a numeric id.
func (c *Cell) InitHandle(id int64) {
	c.init(KindHandle)
	c.payload = id
}

// ---- typed readers ----

// Logic reads a logic cell.
func (c *Cell) Logic() bool {
	c.mustKind(KindLogic)
	return c.payload != 0
}

// Int reads an integer cell.
func (c *Cell) Int() int64 {
	c.mustKind(KindInteger)
	return c.payload
}

// Dec reads a decimal cell.
func (c *Cell) Dec() float64 {
	c.mustKind(KindDecimal)
	return math.Float64frombits(uint64(c.payload))
}

// Word reads the symbol of any word-family cell.
func (c *Cell) Word() Sym {
	switch c.Kind() {
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement:
		return Sym(c.payload)
	}
	panic("cell read as word but holds " + c.Kind().String())
}

// Series returns the backing stub of a series cell.
func (c *Cell) Series() *Stub {
	switch c.Kind() {
	case KindText, KindBinary, KindBlock, KindGroup, KindFence, KindPath, KindTuple, KindPack:
		return c.ref
	}
	panic("cell read as series but holds " + c.Kind().String())
}

// Index returns the position of a series cell within its stub.
func (c *Cell) Index() int {
	_ = c.Series()
	return int(c.payload)
}

// Details returns the details stub of an action cell.
func (c *Cell) Details() *Stub {
	c.mustKind(KindAction)
	return c.ref
}

// ErrStub returns the error stub of an error cell.
func (c *Cell) ErrStub() *Stub {
	c.mustKind(KindError)
	return c.ref
}

// Text returns a text value's string contents.
func (c *Cell) Text() string {
	c.mustKind(KindText)
	return string(c.ref.bytes)
}

// Bytes returns a binary value's octets (shared, not copied).
func (c *Cell) Bytes() []byte {
	c.mustKind(KindBinary)
	return c.ref.bytes
}

// Handle reads the numeric id of a handle cell.
func (c *Cell) Handle() int64 {
	c.mustKind(KindHandle)
	return c.payload
}

// IsWordLike reports whether the cell is in the word family.
func (c *Cell) IsWordLike() bool {
	switch c.Kind() {
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement:
		return true
	}
	return false
}

// IsArrayLike reports whether the cell references a cell-array stub.
func (c *Cell) IsArrayLike() bool {
	switch c.Kind() {
	case KindBlock, KindGroup, KindFence, KindPath, KindTuple, KindPack:
		return true
	}
	return false
}

// Truthy reports the conditional truth of a value: null, unset, ghost
// and false are falsey, everything else is truthy.
func (c *Cell) Truthy() bool {
	switch c.Kind() {
	case KindScratch, KindNulled, KindUnset, KindGhost:
		return false
	case KindLogic:
		return c.payload != 0
	}
	return true
}

// CopyCell copies src into dst. Transient flags of dst are replaced;
// the newline and const hints travel with the value.
func CopyCell(dst, src *Cell) {
	dst.header = src.header&^uint32(copiedFlags) | src.header&copiedFlags
	dst.payload = src.payload
	dst.ref = src.ref
}

// CopyCellValue copies src into dst but keeps dst's formatting flags.
func CopyCellValue(dst, src *Cell) {
	keep := dst.header & copiedFlags
	dst.header = src.header&^uint32(copiedFlags) | keep
	dst.payload = src.payload
	dst.ref = src.ref
}

// EqualCells compares two cells by value. Series compare by content at
// their positions; words compare by symbol id; quoting depth matters.
func EqualCells(a, b *Cell) bool {
	if a.Quotes() != b.Quotes() {
		return false
	}
	ak, bk := a.Kind(), b.Kind()
	if ak != bk {
		// integer/decimal compare across the numeric kinds
		if (ak == KindInteger && bk == KindDecimal) || (ak == KindDecimal && bk == KindInteger) {
			return numValue(a) == numValue(b)
		}
		return false
	}
	switch ak {
	case KindScratch, KindNulled, KindGhost, KindUnset:
		return true
	case KindLogic, KindInteger, KindHandle:
		return a.payload == b.payload
	case KindDecimal:
		return a.Dec() == b.Dec()
	case KindWord, KindSetWord, KindGetWord, KindLitWord, KindRefinement:
		return a.payload == b.payload
	case KindText, KindBinary:
		return string(a.ref.bytes[a.Index():]) == string(b.ref.bytes[b.Index():])
	case KindBlock, KindGroup, KindFence, KindPath, KindTuple, KindPack:
		as, bs := a.ref.cells[a.Index():], b.ref.cells[b.Index():]
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !EqualCells(&as[i], &bs[i]) {
				return false
			}
		}
		return true
	case KindAction:
		return a.ref == b.ref
	case KindError:
		return a.ref == b.ref
	}
	return false
}

func numValue(c *Cell) float64 {
	if c.Kind() == KindInteger {
		return float64(c.payload)
	}
	return c.Dec()
}
