package core

import (
	"fmt"
	"strings"
)

// NativeFunc is a host-implemented action phase. It may return
// BounceContinue after pushing work and be re-entered; State/SetState
// carry its position between entries.
type NativeFunc func(ins *Instance, lv *Level) Bounce

type nativeEntry struct {
	name Sym
	fn   NativeFunc

	// selfDetails keeps the registered action's details reachable even
	// if the guest unbinds the word.
	selfDetails *Stub
}

// RegisterNative registers fn as a prefix action bound in the globals.
//
// The param spec is a space-separated mini-language:
//
//	value            normal argument, any kind
//	value:integer!   normal argument, kind-restricted (| separates kinds)
//	'target          quoted argument (taken raw from the feed)
//	^operand         meta argument (evaluated, then quote-wrapped)
//	/only            refinement used as a pure flag
//	/with:block!     refinement carrying an argument
//
// A malformed spec is a host defect and panics at registration time.
func (ins *Instance) RegisterNative(name, spec string, fn NativeFunc) *Stub {
	return ins.registerNative(name, spec, fn, 0)
}

// RegisterOperator registers fn as an infix action: its first parameter
// is gathered from the expression to the operator's left.
func (ins *Instance) RegisterOperator(name, spec string, fn NativeFunc) *Stub {
	return ins.registerNative(name, spec, fn, actionEnfix)
}

func (ins *Instance) registerNative(name, spec string, fn NativeFunc, flags actionFlag) *Stub {
	params := ins.parseParamSpec(name, spec)

	plist := ins.allocStub(FlavorParamList)
	plist.flags |= stubManaged
	plist.params = params
	ins.Guard(plist)
	defer ins.Unguard(plist)

	details := ins.allocStub(FlavorDetails)
	details.flags |= stubManaged
	details.details = &ActionDetails{
		Name:     ins.syms.Intern(name),
		Flags:    flags,
		Params:   plist,
		NativeID: int32(len(ins.natives)),
	}
	ins.natives = append(ins.natives, nativeEntry{
		name:        details.details.Name,
		fn:          fn,
		selfDetails: details,
	})

	var act Cell
	act.InitAction(details)
	ins.SetWord(nil, details.details.Name, &act)
	return details
}

func (ins *Instance) parseParamSpec(owner, spec string) []Param {
	var params []Param
	for _, tok := range strings.Fields(spec) {
		var p Param
		switch tok[0] {
		case '\'':
			p.Class = ParamQuoted
			tok = tok[1:]
		case '^':
			p.Class = ParamMeta
			tok = tok[1:]
		case '/':
			p.Refinement = true
			p.NoArg = true
			tok = tok[1:]
		}
		if i := strings.IndexByte(tok, ':'); i >= 0 {
			p.Kinds = parseKindMask(owner, tok[i+1:])
			tok = tok[:i]
			p.NoArg = false
		}
		if tok == "" {
			panic(fmt.Sprintf("native %s: empty parameter name in spec %q", owner, spec))
		}
		p.Name = ins.syms.Intern(tok)
		params = append(params, p)
	}
	return params
}

func parseKindMask(owner, names string) KindMask {
	var m KindMask
	for _, name := range strings.Split(names, "|") {
		k, ok := kindByName(name)
		if !ok {
			panic(fmt.Sprintf("native %s: unknown kind %q", owner, name))
		}
		m |= 1 << k
	}
	return m
}

// kindByName resolves a kind's printed name ("integer!", "block!").
func kindByName(name string) (Kind, bool) {
	for k, kn := range kindNames {
		if kn == name && kn != "" {
			return Kind(k), true
		}
	}
	return KindScratch, false
}

// registerCoreNatives is the one aggregation point; each builtins file
// contributes a group.
func registerCoreNatives(ins *Instance) {
	registerMathNatives(ins)
	registerCoreFlow(ins)
	registerSignalNatives(ins)
	registerFunctionNatives(ins)
	registerSeriesNatives(ins)
	registerBinaryNatives(ins)

	var v Cell
	v.InitLogic(true)
	ins.Bind("true", &v)
	v.InitLogic(false)
	ins.Bind("false", &v)
	v.InitNulled()
	ins.Bind("null", &v)
}
