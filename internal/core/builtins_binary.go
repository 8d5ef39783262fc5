package core

import (
	"encoding/binary"

	"github.com/funvibe/funbit/pkg/funbit"
)

func registerBinaryNatives(ins *Instance) {
	ins.RegisterNative("to-binary", "value:text!|integer!|block!|binary!", nativeToBinary)
	ins.RegisterNative("bits-of", "series:binary!", nativeBitsOf)
	ins.RegisterNative("join-binary", "left:binary! right:binary!", nativeJoinBinary)
	ins.RegisterNative("pack-bits", "spec:block!", nativePackBits)
	ins.RegisterNative("unpack-bits", "data:binary! widths:block!", nativeUnpackBits)
}

func nativeToBinary(ins *Instance, lv *Level) Bounce {
	v := lv.Arg(0)
	switch v.Kind() {
	case KindBinary:
		CopyCell(lv.Out(), v)
	case KindText:
		ins.InitBinary(lv.Out(), v.Series().bytes)
	case KindInteger:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.Int()))
		ins.InitBinary(lv.Out(), buf[:])
	case KindBlock:
		s := v.Series()
		data := make([]byte, 0, s.Len())
		for i := v.Index(); i < s.Len(); i++ {
			c := s.At(i)
			if c.Kind() != KindInteger || c.Int() < 0 || c.Int() > 255 {
				return ins.Failf(ins.symTypeMismatch, "to-binary needs bytes 0-255, got %s", ins.MoldCell(c))
			}
			data = append(data, byte(c.Int()))
		}
		ins.InitBinary(lv.Out(), data)
	}
	return BounceDone
}

// nativeBitsOf reports the bit length of a binary through its
// bitstring view.
func nativeBitsOf(ins *Instance, lv *Level) Bounce {
	bs := funbit.NewBitStringFromBytes(lv.Arg(0).Series().bytes)
	lv.Out().InitInteger(int64(bs.Length()))
	return BounceDone
}

// nativeJoinBinary concatenates two binaries as bitstrings and returns
// a fresh binary.
func nativeJoinBinary(ins *Instance, lv *Level) Bounce {
	left := funbit.NewBitStringFromBytes(lv.Arg(0).Series().bytes)
	right := funbit.NewBitStringFromBytes(lv.Arg(1).Series().bytes)
	b := funbit.NewBuilder()
	funbit.AddBinary(b, left.ToBytes())
	funbit.AddBinary(b, right.ToBytes())
	joined, err := b.Build()
	if err != nil {
		return ins.Failf(ins.symInternal, "binary join failed: %v", err)
	}
	ins.InitBinary(lv.Out(), joined.ToBytes())
	return BounceDone
}

// nativePackBits builds a binary from [value width ...] pairs, packing
// each integer into exactly its bit width, in order.
func nativePackBits(ins *Instance, lv *Level) Bounce {
	spec := lv.Arg(0)
	s := spec.Series()
	if (s.Len()-spec.Index())%2 != 0 {
		return ins.Failf(ins.symTypeMismatch, "pack-bits needs value/width pairs")
	}
	b := funbit.NewBuilder()
	total := int64(0)
	for i := spec.Index(); i < s.Len(); i += 2 {
		val, width := s.At(i), s.At(i+1)
		if val.Kind() != KindInteger || width.Kind() != KindInteger ||
			width.Int() < 1 || width.Int() > 64 {
			return ins.Failf(ins.symTypeMismatch, "pack-bits pair %s %s, want an integer value and a width of 1-64",
				ins.MoldCell(val), ins.MoldCell(width))
		}
		funbit.AddInteger(b, val.Int(), funbit.WithSize(uint(width.Int())))
		total += width.Int()
	}
	if total%8 != 0 {
		return ins.Failf(ins.symTypeMismatch, "pack-bits widths sum to %d bits, not a whole number of bytes", total)
	}
	bs, err := funbit.Build(b)
	if err != nil {
		return ins.Failf(ins.symInternal, "bit packing failed: %v", err)
	}
	ins.InitBinary(lv.Out(), bs.ToBytes())
	return BounceDone
}

// nativeUnpackBits matches a binary against a block of bit widths and
// returns the extracted integers. The widths must consume the binary
// exactly.
func nativeUnpackBits(ins *Instance, lv *Level) Bounce {
	widths := lv.Arg(1)
	s := widths.Series()
	n := s.Len() - widths.Index()
	m := funbit.NewMatcher()
	vals := make([]int64, n)
	total := int64(0)
	for i := 0; i < n; i++ {
		w := s.At(widths.Index() + i)
		if w.Kind() != KindInteger || w.Int() < 1 || w.Int() > 64 {
			return ins.Failf(ins.symTypeMismatch, "unpack-bits width %s, want an integer of 1-64", ins.MoldCell(w))
		}
		funbit.Integer(m, &vals[i], funbit.WithSize(uint(w.Int())))
		total += w.Int()
	}
	bs := funbit.NewBitStringFromBytes(lv.Arg(0).Series().bytes)
	if total != int64(bs.Length()) {
		return ins.Failf(ins.symTypeMismatch, "unpack-bits widths sum to %d bits, data has %d", total, bs.Length())
	}
	if _, err := funbit.Match(m, bs); err != nil {
		return ins.Failf(ins.symTypeMismatch, "unpack-bits does not match: %v", err)
	}
	cells := make([]Cell, n)
	for i, v := range vals {
		cells[i].InitInteger(v)
	}
	ins.InitBlock(lv.Out(), cells)
	return BounceDone
}
