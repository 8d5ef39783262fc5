package core

// stepper executor states
const (
	stepBegin byte = iota
	stepActionDone
	stepGroupDone
	stepTieCheck
)

type stepperState struct {
	current    Cell
	hasCurrent bool
	setWords   []Sym
}

// stepStepper performs one logical expression step: pass literals
// through, look up and dispatch bound words, evaluate groups, defer
// infix operators until the next token resolves whether they apply.
func (lv *Level) stepStepper() Bounce {
	ins := lv.ins

	if sig := ins.pending; sig != nil {
		// A stepper fulfilling a meta parameter converts a failure
		// into a plain error value; everything else passes through.
		if lv.flags&levelMetaArg != 0 && sig.Kind == SignalFailure {
			ins.ClearSignal()
			lv.out.InitError(sig.Err)
			return BounceDone
		}
		return BounceUnwind
	}

	switch lv.state {
	case stepActionDone, stepGroupDone:
		lv.state = stepBegin
		lv.acceptSub()
		return lv.lookahead()
	case stepTieCheck:
		lv.state = stepBegin
		if lv.sub.Kind() != KindAction || !isRightQuoting(lv.sub.Details()) {
			return ins.Failf(ins.symLiteralLeftTie,
				"prefixed word before a left-quoting operator must yield a right-quoting action")
		}
		lv.acceptSub()
		return lv.lookahead()
	}
	return lv.beginExpr()
}

// acceptSub folds a child's result into the current value. Ghost
// results vanish: they neither replace the current value nor feed a
// following infix operator.
func (lv *Level) acceptSub() {
	if lv.sub.Kind() == KindGhost && lv.stepper.hasCurrent {
		return
	}
	CopyCell(&lv.stepper.current, &lv.sub)
	lv.stepper.hasCurrent = lv.sub.Kind() != KindGhost
}

func (lv *Level) beginExpr() Bounce {
	ins := lv.ins
	for {
		if lv.feed.AtEnd() {
			return lv.finishExpr()
		}
		c := lv.feed.Current()

		if c.Quotes() > 0 {
			CopyCell(&lv.stepper.current, c)
			lv.stepper.current.Unquote()
			lv.stepper.hasCurrent = true
			lv.feed.Advance()
			return lv.lookahead()
		}

		switch c.Kind() {
		case KindGhost:
			lv.feed.Advance()

		case KindSetWord:
			lv.stepper.setWords = append(lv.stepper.setWords, c.Word())
			lv.feed.Advance()

		case KindGroup:
			grp := *c
			lv.feed.Advance()
			lv.state = stepGroupDone
			ins.pushStepper(NewArrayFeed(grp.Series(), grp.Index()), lv.env, levelRunToEnd)
			return BounceContinue

		case KindWord:
			return lv.evalWord(c)

		case KindGetWord:
			v := ins.GetWord(lv.env, c.Word())
			if v == nil {
				return lv.failNoValue(c.Word())
			}
			CopyCell(&lv.stepper.current, v)
			lv.stepper.hasCurrent = true
			lv.feed.Advance()
			return lv.lookahead()

		case KindLitWord:
			lv.stepper.current.InitWord(KindWord, c.Word())
			lv.stepper.hasCurrent = true
			lv.feed.Advance()
			return lv.lookahead()

		case KindPath:
			return lv.evalPath(c)

		default:
			// self-evaluating: literals, blocks, fences, actions, errors
			CopyCell(&lv.stepper.current, c)
			lv.stepper.hasCurrent = true
			lv.feed.Advance()
			return lv.lookahead()
		}
	}
}

func (lv *Level) failNoValue(sym Sym) Bounce {
	ins := lv.ins
	return ins.Failf(ins.symNoValue, "%s has no value", ins.syms.Spelling(sym))
}

// evalWord handles a bare word at expression start, including the
// tie-break between its prefix interpretation and a following
// left-quoting infix operator: the prefixed word always wins, but its
// product is then required to be a right-quoting action; anything else
// is a specific diagnostic, never a silent fallback.
func (lv *Level) evalWord(c *Cell) Bounce {
	ins := lv.ins
	sym := c.Word()
	v := ins.GetWord(lv.env, sym)
	if v == nil {
		return lv.failNoValue(sym)
	}
	wordCell := *c
	lv.feed.Advance()

	if v.Kind() == KindAction {
		d := v.Details().details
		if d.Flags&actionEnfix != 0 {
			return ins.Failf(ins.symMissingArg, "operator %s has no left operand",
				ins.syms.Spelling(sym))
		}
		actCell := *v
		if lv.flags&levelNoLookahead == 0 && lv.peekLeftQuoter() != nil {
			lv.state = stepTieCheck
		} else {
			lv.state = stepActionDone
		}
		ins.pushAction(&actCell, lv.feed, lv.env, nil, nil)
		return BounceContinue
	}

	// A plain-valued word to the left of a left-quoting operator is
	// taken literally by that operator.
	if lv.flags&levelNoLookahead == 0 {
		if op := lv.peekLeftQuoter(); op != nil {
			opCell := *op
			lv.feed.Advance() // the operator word
			lv.state = stepActionDone
			ins.pushAction(&opCell, lv.feed, lv.env, nil, &wordCell)
			return BounceContinue
		}
	}

	CopyCell(&lv.stepper.current, v)
	lv.stepper.hasCurrent = true
	return lv.lookahead()
}

// peekLeftQuoter returns the bound action cell when the next token is a
// word bound to a left-quoting enfix action.
func (lv *Level) peekLeftQuoter() *Cell {
	if lv.feed.AtEnd() || lv.feed.AtText() {
		return nil
	}
	c := lv.feed.Current()
	if c.Kind() != KindWord || c.Quotes() > 0 {
		return nil
	}
	v := lv.ins.GetWord(lv.env, c.Word())
	if v == nil || v.Kind() != KindAction || !isLeftQuoting(v.Details()) {
		return nil
	}
	return v
}

// evalPath handles a path at expression start: an action head invokes
// with the remaining words as named refinements; a series head
// navigates by integer picks.
func (lv *Level) evalPath(c *Cell) Bounce {
	ins := lv.ins
	parts := c.Series().cells[c.Index():]
	if len(parts) == 0 {
		return ins.Failf(ins.symSyntax, "empty path")
	}
	head := &parts[0]
	if !head.IsWordLike() {
		return ins.Failf(ins.symSyntax, "path must start with a word")
	}
	v := ins.GetWord(lv.env, head.Word())
	if v == nil {
		return lv.failNoValue(head.Word())
	}

	if v.Kind() == KindAction {
		refines := make([]Sym, 0, len(parts)-1)
		for i := 1; i < len(parts); i++ {
			if !parts[i].IsWordLike() {
				return ins.Failf(ins.symBadRefine, "refinement in path must be a word")
			}
			refines = append(refines, parts[i].Word())
		}
		actCell := *v
		lv.feed.Advance()
		lv.state = stepActionDone
		ins.pushAction(&actCell, lv.feed, lv.env, refines, nil)
		return BounceContinue
	}

	cur := *v
	for i := 1; i < len(parts); i++ {
		p := &parts[i]
		switch {
		case p.Kind() == KindInteger && cur.IsArrayLike():
			idx := cur.Index() + int(p.Int()) - 1
			s := cur.Series()
			if idx < 0 || idx >= s.Len() {
				return ins.Failf(ins.symSyntax, "path index %d out of range", p.Int())
			}
			cur = *s.At(idx)
		default:
			return ins.Failf(ins.symSyntax, "cannot pick %s in path", ins.FormCell(p))
		}
	}
	CopyCell(&lv.stepper.current, &cur)
	lv.stepper.hasCurrent = true
	lv.feed.Advance()
	return lv.lookahead()
}

// lookahead decides whether the just-produced value feeds a following
// infix operator or ends the expression.
func (lv *Level) lookahead() Bounce {
	ins := lv.ins
	if lv.flags&levelNoLookahead == 0 && !lv.feed.AtEnd() && !lv.feed.AtText() {
		c := lv.feed.Current()
		if c.Kind() == KindWord && c.Quotes() == 0 {
			if v := ins.GetWord(lv.env, c.Word()); v != nil && v.Kind() == KindAction {
				if v.Details().details.Flags&actionEnfix != 0 {
					if !lv.stepper.hasCurrent {
						return ins.Failf(ins.symMissingArg, "operator %s has no left operand",
							ins.syms.Spelling(c.Word()))
					}
					opCell := *v
					left := lv.stepper.current
					lv.feed.Advance()
					lv.state = stepActionDone
					ins.pushAction(&opCell, lv.feed, lv.env, nil, &left)
					return BounceContinue
				}
			}
		}
	}
	return lv.finishExpr()
}

// finishExpr assigns pending set-words, then either starts the next
// expression (run-to-end mode) or delivers the result.
func (lv *Level) finishExpr() Bounce {
	ins := lv.ins
	st := &lv.stepper

	if len(st.setWords) > 0 {
		if !st.hasCurrent {
			return ins.Failf(ins.symMissingArg, "set-word needs a value")
		}
		v := st.current
		if v.Kind() == KindPack && v.Series().Len() > 0 {
			// A multiple-return pack assigns its first value.
			v = *v.Series().At(0)
		}
		for _, sym := range st.setWords {
			ins.SetWord(lv.env, sym, &v)
		}
		st.setWords = st.setWords[:0]
	}

	if lv.flags&levelRunToEnd != 0 && !lv.feed.AtEnd() {
		lv.state = stepBegin
		return BounceContinue
	}

	if st.hasCurrent {
		CopyCell(&lv.out, &st.current)
	} else {
		lv.out.InitGhost()
	}
	if lv.flags&levelMetaArg != 0 && lv.out.Kind() != KindError {
		lv.out.Quote(1)
	}
	return BounceDone
}
