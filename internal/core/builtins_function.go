package core

func registerFunctionNatives(ins *Instance) {
	ins.RegisterNative("func", "spec:block! body:block!", nativeFunc)
	ins.RegisterNative("does", "body:block!", nativeDoes)
	ins.RegisterNative("specialize", "action:action! values:block!", nativeSpecialize)
	ins.RegisterNative("adapt", "action:action! prelude:block!", nativeAdapt)
	ins.RegisterNative("hijack", "victim:action! agent:action!", nativeHijack)
}

// parseFuncSpec reads a guest parameter spec block:
//
//	word        ordinary evaluated argument
//	'word       literal argument, taken raw
//	:word       meta argument
//	/word       refinement; a pure flag unless a type block follows
//	[types...]  kind restriction for the preceding parameter
//	"..."       description, skipped
func parseFuncSpec(ins *Instance, spec *Stub) ([]Param, Bounce, bool) {
	var params []Param
	for i := 0; i < spec.Len(); i++ {
		c := spec.At(i)
		switch {
		case c.Kind() == KindText:
			continue
		case c.Kind() == KindBlock:
			if len(params) == 0 {
				return nil, ins.Failf(ins.symSyntax, "type block before any parameter in spec"), false
			}
			p := &params[len(params)-1]
			var mask KindMask
			types := c.Series()
			for j := 0; j < types.Len(); j++ {
				t := types.At(j)
				if !t.IsWordLike() {
					return nil, ins.Failf(ins.symSyntax, "bad type %s in spec", ins.MoldCell(t)), false
				}
				k, ok := kindByName(ins.syms.Spelling(t.Word()))
				if !ok {
					return nil, ins.Failf(ins.symSyntax, "unknown type %s in spec", ins.MoldCell(t)), false
				}
				mask |= 1 << k
			}
			p.Kinds = mask
			if p.Refinement {
				p.NoArg = false
			}
		case c.Kind() == KindWord && c.Quotes() > 0:
			params = append(params, Param{Name: c.Word(), Class: ParamQuoted})
		case c.Kind() == KindWord:
			params = append(params, Param{Name: c.Word(), Class: ParamNormal})
		case c.Kind() == KindGetWord:
			params = append(params, Param{Name: c.Word(), Class: ParamMeta})
		case c.Kind() == KindLitWord:
			params = append(params, Param{Name: c.Word(), Class: ParamQuoted})
		case c.Kind() == KindRefinement:
			params = append(params, Param{Name: c.Word(), Refinement: true, NoArg: true})
		default:
			return nil, ins.Failf(ins.symSyntax, "bad parameter %s in spec", ins.MoldCell(c)), false
		}
	}
	return params, 0, true
}

// newUserAction wires a details stub for a guest-defined phase. The
// paramlist is guarded across the second allocation.
func newUserAction(ins *Instance, name Sym, params []Param, fill func(d *ActionDetails)) *Stub {
	plist := ins.allocStub(FlavorParamList)
	plist.flags |= stubManaged
	plist.params = params
	ins.Guard(plist)
	defer ins.Unguard(plist)

	details := ins.allocStub(FlavorDetails)
	details.flags |= stubManaged
	details.details = &ActionDetails{
		Name:     name,
		Params:   plist,
		NativeID: -1,
	}
	fill(details.details)
	return details
}

func nativeFunc(ins *Instance, lv *Level) Bounce {
	params, b, ok := parseFuncSpec(ins, lv.Arg(0).Series())
	if !ok {
		return b
	}
	body := lv.Arg(1)
	env := lv.Env()
	details := newUserAction(ins, SymNone, params, func(d *ActionDetails) {
		d.Body = body.Series()
		d.Binding = env
	})
	lv.Out().InitAction(details)
	return BounceDone
}

func nativeDoes(ins *Instance, lv *Level) Bounce {
	body := lv.Arg(0)
	env := lv.Env()
	details := newUserAction(ins, SymNone, nil, func(d *ActionDetails) {
		d.Body = body.Series()
		d.Binding = env
	})
	lv.Out().InitAction(details)
	return BounceDone
}

// nativeSpecialize builds a new action whose exemplar pre-fills frame
// slots. The values block is evaluated in a fresh scope; whatever it
// assigns to parameter names becomes fixed.
func nativeSpecialize(ins *Instance, lv *Level) Bounce {
	if lv.State() == nsBegin {
		scope := ins.NewVarList(lv.Env())
		lv.SetWork(scope)
		lv.SetState(nsBodyDone)
		vals := lv.Arg(1)
		ins.pushStepper(NewArrayFeed(vals.Series(), vals.Index()), scope, levelRunToEnd)
		return BounceContinue
	}

	scope := lv.Work().(*Stub)
	target := lv.Arg(0).Details()
	td := target.details
	params := td.Params.params

	exemplar := ins.allocStub(FlavorVarList)
	exemplar.flags |= stubManaged
	exemplar.cells = make([]Cell, len(params))
	ins.Guard(exemplar)
	defer ins.Unguard(exemplar)
	for i := range params {
		if j := scope.varFind(params[i].Name); j >= 0 {
			CopyCell(&exemplar.cells[i], scope.At(j))
		}
	}

	wrap := ins.allocStub(FlavorDetails)
	wrap.flags |= stubManaged
	wrap.details = &ActionDetails{
		Name:     td.Name,
		Flags:    td.Flags,
		Params:   td.Params,
		NativeID: -1,
		Exemplar: exemplar,
		Target:   target,
	}
	lv.Out().InitAction(wrap)
	return BounceDone
}

// nativeAdapt builds a new action that runs a prelude block in the
// fulfilled frame before the wrapped action's own phase.
func nativeAdapt(ins *Instance, lv *Level) Bounce {
	target := lv.Arg(0).Details()
	td := target.details
	wrap := ins.allocStub(FlavorDetails)
	wrap.flags |= stubManaged
	wrap.details = &ActionDetails{
		Name:     td.Name,
		Flags:    td.Flags,
		Params:   td.Params,
		NativeID: -1,
		Prelude:  lv.Arg(1).Series(),
		Target:   target,
	}
	lv.Out().InitAction(wrap)
	return BounceDone
}

// nativeHijack redirects the victim's behavior in place: every existing
// reference to the victim now runs the agent, while the victim keeps
// its identity and parameter record.
func nativeHijack(ins *Instance, lv *Level) Bounce {
	victim := lv.Arg(0).Details()
	victim.details.Hijack = lv.Arg(1).Details()
	CopyCell(lv.Out(), lv.Arg(0))
	return BounceDone
}
