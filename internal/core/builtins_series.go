package core

const anySeries = "block!|group!|fence!|path!|tuple!|pack!|text!|binary!"

func registerSeriesNatives(ins *Instance) {
	ins.RegisterNative("length-of", "series:"+anySeries, nativeLengthOf)
	ins.RegisterNative("first", "series:"+anySeries, nativeFirst)
	ins.RegisterNative("last", "series:"+anySeries, nativeLast)
	ins.RegisterNative("pick", "series:"+anySeries+" index:integer!", nativePick)
	ins.RegisterNative("append", "series:block!|group!|text!|binary! value", nativeAppend)
	ins.RegisterNative("copy", "series:"+anySeries, nativeCopy)
	ins.RegisterNative("next", "series:"+anySeries, nativeNext)
	ins.RegisterNative("head", "series:"+anySeries, nativeHead)
	ins.RegisterNative("empty?", "series:"+anySeries, nativeEmptyQ)
}

// seriesLen is the element count from the cell's index to the tail.
func seriesLen(c *Cell) int {
	n := c.Series().Len() - c.Index()
	if n < 0 {
		return 0
	}
	return n
}

func nativeLengthOf(ins *Instance, lv *Level) Bounce {
	lv.Out().InitInteger(int64(seriesLen(lv.Arg(0))))
	return BounceDone
}

// seriesPick writes the n-th element (1-based, from the cell's index)
// into out, or null when out of range.
func seriesPick(ins *Instance, out, series *Cell, n int) {
	if n < 1 || n > seriesLen(series) {
		out.InitNulled()
		return
	}
	s := series.Series()
	i := series.Index() + n - 1
	switch s.flavor {
	case FlavorText:
		ins.InitText(out, string(s.bytes[i:i+1]))
	case FlavorBinary:
		out.InitInteger(int64(s.bytes[i]))
	default:
		CopyCell(out, s.At(i))
	}
}

func nativeFirst(ins *Instance, lv *Level) Bounce {
	seriesPick(ins, lv.Out(), lv.Arg(0), 1)
	return BounceDone
}

func nativeLast(ins *Instance, lv *Level) Bounce {
	seriesPick(ins, lv.Out(), lv.Arg(0), seriesLen(lv.Arg(0)))
	return BounceDone
}

func nativePick(ins *Instance, lv *Level) Bounce {
	seriesPick(ins, lv.Out(), lv.Arg(0), int(lv.Arg(1).Int()))
	return BounceDone
}

func nativeAppend(ins *Instance, lv *Level) Bounce {
	series := lv.Arg(0)
	if series.Const() {
		return ins.Failf(ins.symInternal, "cannot modify a const series")
	}
	s := series.Series()
	v := lv.Arg(1)
	switch s.flavor {
	case FlavorText:
		s.bytes = append(s.bytes, ins.FormCell(v)...)
	case FlavorBinary:
		switch v.Kind() {
		case KindBinary:
			s.bytes = append(s.bytes, v.Series().bytes...)
		case KindInteger:
			s.bytes = append(s.bytes, byte(v.Int()))
		default:
			return ins.Failf(ins.symTypeMismatch, "cannot append %s to a binary", v.Kind())
		}
	default:
		if v.IsArrayLike() && v.Kind() == KindBlock {
			// Appending a block splices its contents.
			vs := v.Series()
			for i := v.Index(); i < vs.Len(); i++ {
				s.Append(vs.At(i))
			}
		} else {
			s.Append(v)
		}
	}
	CopyCell(lv.Out(), series)
	return BounceDone
}

func nativeCopy(ins *Instance, lv *Level) Bounce {
	series := lv.Arg(0)
	src := series.Series()
	switch src.flavor {
	case FlavorText:
		ins.InitText(lv.Out(), string(src.bytes[series.Index():]))
	case FlavorBinary:
		ins.InitBinary(lv.Out(), src.bytes[series.Index():])
	default:
		fresh := ins.NewArray(src.cells[series.Index():])
		lv.Out().InitSeries(series.Kind(), fresh, 0)
	}
	return BounceDone
}

func nativeNext(ins *Instance, lv *Level) Bounce {
	series := lv.Arg(0)
	idx := series.Index()
	if idx < series.Series().Len() {
		idx++
	}
	CopyCell(lv.Out(), series)
	lv.Out().InitSeries(series.Kind(), series.Series(), idx)
	return BounceDone
}

func nativeHead(ins *Instance, lv *Level) Bounce {
	series := lv.Arg(0)
	lv.Out().InitSeries(series.Kind(), series.Series(), 0)
	return BounceDone
}

func nativeEmptyQ(ins *Instance, lv *Level) Bounce {
	lv.Out().InitLogic(seriesLen(lv.Arg(0)) == 0)
	return BounceDone
}
