package core

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// scanSession tracks source position across the scanner levels of one
// scan. All levels of a nesting share it.
type scanSession struct {
	line      int
	lineStart int // consumed-offset of the current line's first byte
	consumed  int // total bytes consumed
}

func (s *scanSession) column() int {
	return s.consumed - s.lineStart + 1
}

// scanner executor states
const (
	scanRun byte = iota
	scanChildDone
)

type scannerState struct {
	items   []Cell
	term    byte // expected closing delimiter; 0 at top level
	kind    Kind // series kind this level produces
	sess    *scanSession
	pendNL  bool // next value gets the newline-before hint
	pendQ   int  // pending quote prefix count
}

// stepScanner tokenizes until this level's bracket closes. Nesting
// pushes one level per open bracket, with the expected terminal
// delimiter kept in the child's state, so pathological depth consumes
// heap, not the host stack.
func (lv *Level) stepScanner() Bounce {
	ins := lv.ins
	if ins.pending != nil {
		return BounceUnwind
	}
	sc := &lv.scanner

	if lv.state == scanChildDone {
		lv.state = scanRun
		lv.appendScanned(&lv.sub)
		if b, stop := lv.maybeFinishOne(); stop {
			return b
		}
	}

	for {
		lv.skipTrivia()

		if lv.feed.AtEnd() {
			if sc.term != 0 {
				return ins.Failf(ins.symSyntax, "missing %q at line %d", string(sc.term), sc.sess.line)
			}
			if lv.flags&levelScanOne != 0 {
				lv.out.InitGhost() // nothing but trivia remained
				return BounceDone
			}
			return lv.finishScan()
		}

		// Pre-built cells splice straight through (host interpolation).
		if !lv.feed.AtText() {
			item := *lv.feed.Current()
			lv.feed.Advance()
			lv.appendScanned(&item)
			if b, stop := lv.maybeFinishOne(); stop {
				return b
			}
			continue
		}

		b := lv.peekByte()
		switch {
		case b == '[' || b == '(' || b == '{':
			lv.nextByte()
			child := &Level{kind: ExecScanner, feed: lv.feed}
			child.scanner.sess = sc.sess
			switch b {
			case '[':
				child.scanner.term, child.scanner.kind = ']', KindBlock
			case '(':
				child.scanner.term, child.scanner.kind = ')', KindGroup
			case '{':
				child.scanner.term, child.scanner.kind = '}', KindFence
			}
			lv.state = scanChildDone
			ins.pushLevel(child)
			return BounceContinue

		case b == ']' || b == ')' || b == '}':
			if b != sc.term {
				return ins.Failf(ins.symSyntax, "unexpected %q at line %d:%d",
					string(b), sc.sess.line, sc.sess.column())
			}
			lv.nextByte()
			return lv.finishScan()

		case b == '\'':
			lv.nextByte()
			sc.pendQ++
			continue

		default:
			var item Cell
			if bounce, ok := lv.scanToken(&item); !ok {
				return bounce
			}
			lv.appendScanned(&item)
			if b, stop := lv.maybeFinishOne(); stop {
				return b
			}
		}
	}
}

// appendScanned applies pending newline/quote prefixes and collects.
func (lv *Level) appendScanned(c *Cell) {
	sc := &lv.scanner
	var slot Cell
	CopyCell(&slot, c)
	if sc.pendNL {
		slot.SetNewlineBefore(true)
		sc.pendNL = false
	}
	if sc.pendQ > 0 {
		slot.Quote(sc.pendQ)
		sc.pendQ = 0
	}
	sc.items = append(sc.items, slot)
}

// maybeFinishOne ends a single-value scan as soon as one value exists.
func (lv *Level) maybeFinishOne() (Bounce, bool) {
	sc := &lv.scanner
	if lv.flags&levelScanOne != 0 && sc.term == 0 && len(sc.items) > 0 {
		CopyCell(&lv.out, &sc.items[0])
		return BounceDone, true
	}
	return 0, false
}

// finishScan builds the collected items into this level's series value.
func (lv *Level) finishScan() Bounce {
	sc := &lv.scanner
	arr := lv.ins.NewArray(sc.items)
	lv.out.InitSeries(sc.kind, arr, 0)
	return BounceDone
}

// ---- byte-level helpers with position tracking ----

func (lv *Level) peekByte() byte { return lv.feed.PeekByte() }

func (lv *Level) nextByte() byte {
	b := lv.feed.NextByte()
	if b != 0 {
		sess := lv.scanner.sess
		sess.consumed++
		if b == '\n' {
			sess.line++
			sess.lineStart = sess.consumed
		}
	}
	return b
}

// skipTrivia consumes whitespace and line comments, recording whether a
// newline preceded whatever comes next.
func (lv *Level) skipTrivia() {
	for {
		b := lv.peekByte()
		switch b {
		case ' ', '\t', '\r':
			lv.nextByte()
		case '\n':
			lv.nextByte()
			lv.scanner.pendNL = true
		case ';':
			for {
				c := lv.peekByte()
				if c == 0 || c == '\n' {
					break
				}
				lv.nextByte()
			}
		default:
			return
		}
	}
}

func isWordChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return strings.IndexByte("+-*=<>!?_.&|~", b) >= 0
}

func isWordStart(b byte) bool {
	return isWordChar(b) && !(b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanToken scans one non-bracket token into item. On a malformed
// token it arms a positioned failure; the bytes read so far stay
// consumed, so a sibling scan can carry on after the bad spot.
func (lv *Level) scanToken(item *Cell) (Bounce, bool) {
	ins := lv.ins
	sc := &lv.scanner
	b := lv.peekByte()

	switch {
	case b == '"':
		return lv.scanText(item)

	case b == '#':
		lv.nextByte()
		if lv.peekByte() == '{' {
			lv.nextByte()
			return lv.scanBinary(item)
		}
		return ins.Failf(ins.symSyntax, "unexpected # at line %d:%d", sc.sess.line, sc.sess.column()), false

	case b == ':':
		lv.nextByte()
		word, ok := lv.takeWordSpelling()
		if !ok {
			return ins.Failf(ins.symSyntax, "malformed get-word at line %d:%d", sc.sess.line, sc.sess.column()), false
		}
		item.InitWord(KindGetWord, ins.syms.Intern(word))
		return 0, true

	case b == '/':
		lv.nextByte()
		if isWordStart(lv.peekByte()) {
			word, _ := lv.takeWordSpelling()
			item.InitWord(KindRefinement, ins.syms.Intern(word))
			return 0, true
		}
		// lone slash is an ordinary word
		item.InitWord(KindWord, ins.syms.Intern("/"))
		return 0, true

	case isDigit(b) || (b == '-' || b == '+') && isDigit(lv.peekSecond()):
		return lv.scanNumber(item)

	case isWordStart(b):
		word, _ := lv.takeWordSpelling()
		// set-word, or path continuation
		if lv.peekByte() == ':' {
			lv.nextByte()
			item.InitWord(KindSetWord, ins.syms.Intern(word))
			return 0, true
		}
		if lv.peekByte() == '/' {
			return lv.scanPath(item, word)
		}
		item.InitWord(KindWord, ins.syms.Intern(word))
		return 0, true
	}

	return ins.Failf(ins.symSyntax, "unexpected %q at line %d:%d",
		string(b), sc.sess.line, sc.sess.column()), false
}

// peekSecond looks one byte past the cursor within the current span.
func (lv *Level) peekSecond() byte {
	tail, _ := lv.feed.TextTail()
	if len(tail) < 2 {
		return 0
	}
	return tail[1]
}

// takeWordSpelling consumes a maximal word token. A word may not
// contain a slash; paths are assembled by the caller.
func (lv *Level) takeWordSpelling() (string, bool) {
	var sb strings.Builder
	if !isWordStart(lv.peekByte()) {
		return "", false
	}
	for isWordChar(lv.peekByte()) {
		sb.WriteByte(lv.nextByte())
	}
	return sb.String(), true
}

// scanNumber scans an integer, decimal, or dotted tuple.
func (lv *Level) scanNumber(item *Cell) (Bounce, bool) {
	ins := lv.ins
	sc := &lv.scanner
	var sb strings.Builder
	dots := 0
	if b := lv.peekByte(); b == '-' || b == '+' {
		sb.WriteByte(lv.nextByte())
	}
	for {
		b := lv.peekByte()
		if isDigit(b) || b == 'e' || b == 'E' {
			sb.WriteByte(lv.nextByte())
			continue
		}
		if b == '.' && isDigit(lv.peekSecond()) {
			dots++
			sb.WriteByte(lv.nextByte())
			continue
		}
		break
	}
	tok := sb.String()
	switch {
	case dots == 0:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return ins.Failf(ins.symSyntax, "malformed integer %q at line %d", tok, sc.sess.line), false
		}
		item.InitInteger(n)
	case dots == 1 || strings.ContainsAny(tok, "eE"):
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return ins.Failf(ins.symSyntax, "malformed decimal %q at line %d", tok, sc.sess.line), false
		}
		item.InitDecimal(f)
	default:
		parts := strings.Split(tok, ".")
		cells := make([]Cell, len(parts))
		for i, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return ins.Failf(ins.symSyntax, "malformed tuple %q at line %d", tok, sc.sess.line), false
			}
			cells[i].InitInteger(n)
		}
		item.InitSeries(KindTuple, ins.NewArray(cells), 0)
	}
	return 0, true
}

// scanPath assembles word/integer path elements after a head word.
func (lv *Level) scanPath(item *Cell, head string) (Bounce, bool) {
	ins := lv.ins
	sc := &lv.scanner
	var cells []Cell
	var hc Cell
	hc.InitWord(KindWord, ins.syms.Intern(head))
	cells = append(cells, hc)
	// Tuple elements carry array stubs reachable only through this Go
	// slice until the path array takes them; later allocations along
	// the same path can collect, so park each one until then.
	var pinned []*Stub
	unpin := func() {
		for i := len(pinned) - 1; i >= 0; i-- {
			ins.Unguard(pinned[i])
		}
	}
	for lv.peekByte() == '/' {
		lv.nextByte()
		var el Cell
		switch {
		case isDigit(lv.peekByte()):
			if b, ok := lv.scanNumber(&el); !ok {
				unpin()
				return b, false
			}
		case isWordStart(lv.peekByte()):
			w, _ := lv.takeWordSpelling()
			el.InitWord(KindWord, ins.syms.Intern(w))
		default:
			unpin()
			return ins.Failf(ins.symSyntax, "malformed path at line %d:%d",
				sc.sess.line, sc.sess.column()), false
		}
		if el.ref != nil {
			ins.Guard(el.ref)
			pinned = append(pinned, el.ref)
		}
		cells = append(cells, el)
	}
	arr := ins.NewArray(cells)
	unpin()
	item.InitSeries(KindPath, arr, 0)
	return 0, true
}

// scanText scans a quoted string with caret escapes.
func (lv *Level) scanText(item *Cell) (Bounce, bool) {
	ins := lv.ins
	sc := &lv.scanner
	lv.nextByte() // opening quote
	var sb strings.Builder
	for {
		b := lv.nextByte()
		switch b {
		case 0:
			return ins.Failf(ins.symSyntax, "unterminated text at line %d", sc.sess.line), false
		case '"':
			ins.InitText(item, sb.String())
			return 0, true
		case '^':
			switch e := lv.nextByte(); e {
			case '/':
				sb.WriteByte('\n')
			case '-':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '^':
				sb.WriteByte('^')
			case 0:
				return ins.Failf(ins.symSyntax, "unterminated text at line %d", sc.sess.line), false
			default:
				return ins.Failf(ins.symSyntax, "unknown escape ^%s at line %d", string(e), sc.sess.line), false
			}
		default:
			sb.WriteByte(b)
		}
	}
}

// scanBinary scans #{...} hex content; inner whitespace is allowed.
func (lv *Level) scanBinary(item *Cell) (Bounce, bool) {
	ins := lv.ins
	sc := &lv.scanner
	var sb strings.Builder
	for {
		b := lv.nextByte()
		switch {
		case b == 0:
			return ins.Failf(ins.symSyntax, "unterminated binary at line %d", sc.sess.line), false
		case b == '}':
			data, err := hex.DecodeString(sb.String())
			if err != nil {
				return ins.Failf(ins.symSyntax, "malformed binary at line %d", sc.sess.line), false
			}
			ins.InitBinary(item, data)
			return 0, true
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			// inner whitespace is layout only
		default:
			sb.WriteByte(b)
		}
	}
}
