package revo

import (
	"fmt"

	"github.com/funvibe/revo/internal/core"
)

// Marshaller converts between Go values and interpreter cells.
type Marshaller struct{}

// NewMarshaller creates a marshaller with default conversions.
func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToCell converts a Go value into a cell. Slices become blocks; []byte
// becomes a binary.
func (m *Marshaller) ToCell(ins *core.Instance, value interface{}) (core.Cell, error) {
	var c core.Cell
	switch v := value.(type) {
	case nil:
		c.InitNulled()
	case bool:
		c.InitLogic(v)
	case int:
		c.InitInteger(int64(v))
	case int32:
		c.InitInteger(int64(v))
	case int64:
		c.InitInteger(v)
	case float32:
		c.InitDecimal(float64(v))
	case float64:
		c.InitDecimal(v)
	case string:
		ins.InitText(&c, v)
	case []byte:
		ins.InitBinary(&c, v)
	case []interface{}:
		// Converted elements live only in this Go slice until the
		// block stub takes them, and each conversion can collect.
		cells := make([]core.Cell, len(v))
		unpin := func(n int) {
			for i := n - 1; i >= 0; i-- {
				ins.UnguardCell(&cells[i])
			}
		}
		for i, el := range v {
			ec, err := m.ToCell(ins, el)
			if err != nil {
				unpin(i)
				return core.Cell{}, err
			}
			cells[i] = ec
			ins.GuardCell(&cells[i])
		}
		ins.InitBlock(&c, cells)
		unpin(len(cells))
	case core.Cell:
		c = v
	default:
		return core.Cell{}, fmt.Errorf("cannot marshal %T into a value", value)
	}
	return c, nil
}

// FromCell converts a cell into a plain Go value. Blocks and groups
// become []interface{}.
func (m *Marshaller) FromCell(ins *core.Instance, c *core.Cell) (interface{}, error) {
	switch c.Kind() {
	case core.KindNulled, core.KindGhost, core.KindUnset:
		return nil, nil
	case core.KindLogic:
		return c.Logic(), nil
	case core.KindInteger:
		return c.Int(), nil
	case core.KindDecimal:
		return c.Dec(), nil
	case core.KindText:
		return c.Text(), nil
	case core.KindBinary:
		return append([]byte(nil), c.Bytes()...), nil
	case core.KindWord, core.KindSetWord, core.KindGetWord, core.KindLitWord, core.KindRefinement:
		return ins.Syms().Spelling(c.Word()), nil
	case core.KindBlock, core.KindGroup, core.KindFence, core.KindPath, core.KindTuple:
		s := c.Series()
		out := make([]interface{}, 0, s.Len()-c.Index())
		for i := c.Index(); i < s.Len(); i++ {
			el, err := m.FromCell(ins, s.At(i))
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		return out, nil
	default:
		// Actions, errors and handles have no useful plain-Go shape;
		// hand back their molded form.
		return ins.MoldCell(c), nil
	}
}
