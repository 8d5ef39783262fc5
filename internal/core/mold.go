package core

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// molder renders cells back into loadable source text. A seen set cuts
// self-referencing series rather than looping.
type molder struct {
	ins  *Instance
	sb   strings.Builder
	seen map[*Stub]bool
	form bool
}

// MoldCell renders a cell in loadable notation: text gets quotes and
// escapes back, words get their sigils, series get their brackets.
func (ins *Instance) MoldCell(c *Cell) string {
	m := molder{ins: ins, seen: map[*Stub]bool{}}
	m.cell(c)
	return m.sb.String()
}

// FormCell renders a cell for humans: text is raw, errors read as a
// message. Everything else molds.
func (ins *Instance) FormCell(c *Cell) string {
	m := molder{ins: ins, seen: map[*Stub]bool{}, form: true}
	m.cell(c)
	return m.sb.String()
}

func (m *molder) cell(c *Cell) {
	for i := 0; i < c.Quotes(); i++ {
		m.sb.WriteByte('\'')
	}
	switch c.Kind() {
	case KindScratch:
		m.sb.WriteString("~scratch~")
	case KindNulled:
		m.sb.WriteString("~null~")
	case KindGhost:
		m.sb.WriteString("~ghost~")
	case KindUnset:
		m.sb.WriteString("~unset~")
	case KindLogic:
		if c.Logic() {
			m.sb.WriteString("true")
		} else {
			m.sb.WriteString("false")
		}
	case KindInteger:
		m.sb.WriteString(strconv.FormatInt(c.Int(), 10))
	case KindDecimal:
		m.sb.WriteString(strconv.FormatFloat(c.Dec(), 'g', -1, 64))
	case KindWord:
		m.sb.WriteString(m.ins.syms.Spelling(c.Word()))
	case KindSetWord:
		m.sb.WriteString(m.ins.syms.Spelling(c.Word()))
		m.sb.WriteByte(':')
	case KindGetWord:
		m.sb.WriteByte(':')
		m.sb.WriteString(m.ins.syms.Spelling(c.Word()))
	case KindLitWord:
		m.sb.WriteByte('\'')
		m.sb.WriteString(m.ins.syms.Spelling(c.Word()))
	case KindRefinement:
		m.sb.WriteByte('/')
		m.sb.WriteString(m.ins.syms.Spelling(c.Word()))
	case KindText:
		m.text(c.Series())
	case KindBinary:
		m.sb.WriteString("#{")
		m.sb.WriteString(strings.ToUpper(hex.EncodeToString(c.Series().bytes)))
		m.sb.WriteByte('}')
	case KindBlock:
		m.array(c.Series(), "[", "]", " ")
	case KindGroup:
		m.array(c.Series(), "(", ")", " ")
	case KindFence:
		m.array(c.Series(), "{", "}", " ")
	case KindPath:
		m.array(c.Series(), "", "", "/")
	case KindTuple:
		m.array(c.Series(), "", "", ".")
	case KindAction:
		d := c.Details().details
		m.sb.WriteString("#[action! ")
		if d != nil && d.Name != SymNone {
			m.sb.WriteString(m.ins.syms.Spelling(d.Name))
		} else {
			m.sb.WriteString("anonymous")
		}
		m.sb.WriteByte(']')
	case KindError:
		m.errStub(c.ErrStub())
	case KindHandle:
		m.sb.WriteString("#[handle! ")
		m.sb.WriteString(strconv.FormatInt(c.Handle(), 10))
		m.sb.WriteByte(']')
	case KindPack:
		m.array(c.Series(), "~[", "]~", " ")
	default:
		m.sb.WriteString(c.Kind().String())
	}
}

func (m *molder) text(s *Stub) {
	raw := string(s.bytes)
	if m.form {
		m.sb.WriteString(raw)
		return
	}
	m.sb.WriteByte('"')
	for i := 0; i < len(raw); i++ {
		switch b := raw[i]; b {
		case '\n':
			m.sb.WriteString("^/")
		case '\t':
			m.sb.WriteString("^-")
		case '"':
			m.sb.WriteString("^\"")
		case '^':
			m.sb.WriteString("^^")
		default:
			m.sb.WriteByte(b)
		}
	}
	m.sb.WriteByte('"')
}

func (m *molder) array(s *Stub, open, close, sep string) {
	m.sb.WriteString(open)
	if m.seen[s] {
		m.sb.WriteString("...")
		m.sb.WriteString(close)
		return
	}
	m.seen[s] = true
	for i := 0; i < s.Len(); i++ {
		if i > 0 {
			m.sb.WriteString(sep)
		}
		m.cell(s.At(i))
	}
	delete(m.seen, s)
	m.sb.WriteString(close)
}

func (m *molder) errStub(e *Stub) {
	if m.form {
		m.sb.WriteString("** ")
		m.sb.WriteString(m.ins.syms.Spelling(e.errID))
		for i := 0; i < e.Len(); i++ {
			m.sb.WriteByte(' ')
			m.sb.WriteString(m.ins.FormCell(e.At(i)))
		}
		return
	}
	m.sb.WriteString("#[error! ")
	m.sb.WriteString(m.ins.syms.Spelling(e.errID))
	for i := 0; i < e.Len(); i++ {
		m.sb.WriteByte(' ')
		m.cell(e.At(i))
	}
	m.sb.WriteByte(']')
}

// maskNames renders a typecheck mask for diagnostics.
func maskNames(m KindMask) string {
	if m == AnyKind {
		return "any value"
	}
	var parts []string
	for k := KindNulled; int(k) < len(kindNames); k++ {
		if m&(1<<k) != 0 {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, " ")
}
