package automaton

import (
	"fmt"

	"github.com/dekarrin/rosed"

	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/lookahead"
	"github.com/jsinger67/parol-sub000/pgerrors"
)

// LRActionKind distinguishes the four possible LR table cell contents.
type LRActionKind int

const (
	LRError LRActionKind = iota
	LRShift
	LRReduce
	LRAccept
)

// LRAction is one ACTION-table cell (spec.md §3 "LR(1) state").
type LRAction struct {
	Kind       LRActionKind
	State      int
	Production int
}

func (a LRAction) Equal(o LRAction) bool {
	return a.Kind == o.Kind && a.State == o.State && a.Production == o.Production
}

func (a LRAction) String() string {
	switch a.Kind {
	case LRShift:
		return fmt.Sprintf("s%d", a.State)
	case LRReduce:
		return fmt.Sprintf("r%d", a.Production)
	case LRAccept:
		return "acc"
	default:
		return ""
	}
}

// LRParseTable is the compiled ACTION/GOTO table built from an LR1Automaton
// (canonical LR(1) or its LALR(1) core-merge), grounded on the teacher's
// internal/ictiobus/parse/clr1.go construction (Algorithm 4.56 of the
// dragon book) and rendered the way parse/clr1.go/lalr.go render theirs,
// with github.com/dekarrin/rosed.
type LRParseTable struct {
	Automaton *LR1Automaton

	action []map[lookahead.CompiledTerminal]LRAction
	gotoT  []map[string]int
}

// BuildTable constructs the ACTION/GOTO table from aut. Fails with
// LRConflictError if two distinct actions would occupy the same
// (state, terminal) cell (spec.md §9 LALR(1) merge-conflict policy: fail).
func BuildTable(aut *LR1Automaton) (*LRParseTable, error) {
	t := &LRParseTable{
		Automaton: aut,
		action:    make([]map[lookahead.CompiledTerminal]LRAction, aut.NumStates()),
		gotoT:     make([]map[string]int, aut.NumStates()),
	}
	for i := range t.action {
		t.action[i] = map[lookahead.CompiledTerminal]LRAction{}
		t.gotoT[i] = map[string]int{}
	}

	for i, st := range aut.states {
		for _, it := range st {
			p := aut.prods[it.Prod]

			if it.Dot < len(p.RHS) {
				sym := p.RHS[it.Dot]
				if sym.Kind != grammar.SymbolTerminal {
					continue
				}
				target, ok := aut.trans[i][keyOf(sym)]
				if !ok {
					continue
				}
				idx := lookahead.CompiledTerminal(aut.Augmented.Term(sym.Name).Index)
				if err := t.setAction(i, idx, LRAction{Kind: LRShift, State: target}); err != nil {
					return nil, err
				}
				continue
			}

			if it.Prod == aut.AugProd && it.La == lookahead.EndOfInput {
				if err := t.setAction(i, lookahead.EndOfInput, LRAction{Kind: LRAccept}); err != nil {
					return nil, err
				}
				continue
			}

			if err := t.setAction(i, it.La, LRAction{Kind: LRReduce, Production: it.Prod}); err != nil {
				return nil, err
			}
		}

		for sym, target := range aut.trans[i] {
			if sym.Kind == grammar.SymbolNonTerminal {
				t.gotoT[i][sym.Name] = target
			}
		}
	}

	return t, nil
}

func (t *LRParseTable) setAction(state int, term lookahead.CompiledTerminal, act LRAction) error {
	existing, ok := t.action[state][term]
	if ok && !existing.Equal(act) {
		return &pgerrors.LRConflictError{
			State:     state,
			Terminal:  fmt.Sprintf("%d", term),
			Existing:  existing.String(),
			Attempted: act.String(),
		}
	}
	t.action[state][term] = act
	return nil
}

// Action returns the action for (state, terminal), or the zero-value
// LRError action if no entry exists.
func (t *LRParseTable) Action(state int, term lookahead.CompiledTerminal) LRAction {
	return t.action[state][term]
}

// Goto returns the state reached from state on non-terminal name.
func (t *LRParseTable) Goto(state int, name string) (int, bool) {
	s, ok := t.gotoT[state][name]
	return s, ok
}

// String renders the table the way the teacher's parse/clr1.go and
// parse/lalr.go render theirs: one row per state, one column per terminal
// (plus end-of-input) for ACTION, one column per non-terminal for GOTO.
func (t *LRParseTable) String() string {
	terms := t.Automaton.Augmented.Terminals()
	nts := t.Automaton.Augmented.NonTerminals()

	headers := []string{"S", "|"}
	for _, term := range terms {
		headers = append(headers, "A:"+term)
	}
	headers = append(headers, "A:$", "|")
	for _, nt := range nts {
		headers = append(headers, "G:"+nt)
	}

	data := [][]string{headers}
	for i := 0; i < t.Automaton.NumStates(); i++ {
		row := []string{itoa(i), "|"}
		for _, term := range terms {
			idx := lookahead.CompiledTerminal(t.Automaton.Augmented.Term(term).Index)
			row = append(row, t.action[i][idx].String())
		}
		row = append(row, t.action[i][lookahead.EndOfInput].String(), "|")
		for _, nt := range nts {
			if target, ok := t.gotoT[i][nt]; ok {
				row = append(row, itoa(target))
			} else {
				row = append(row, "")
			}
		}
		data = append(data, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
