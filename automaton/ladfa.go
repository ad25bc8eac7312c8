// Package automaton builds the per-non-terminal lookahead DFAs (spec.md
// §4.6) and the canonical LR(1)/LALR(1) viable-prefix automaton and parse
// table (spec.md §3 "LR(1) state", §9 LALR(1) merge-policy note).
//
// It is grounded on the teacher's internal/ictiobus/automaton package: a
// DFA keyed by small integer state ids with an adjacency-list transition
// table, generalized here from the teacher's rune/string alphabet to a
// terminal-index alphabet, and from the teacher's viable-prefix states to
// the lookahead-trie states of §4.6.
package automaton

import (
	"sort"

	"github.com/jsinger67/parol-sub000/lookahead"
	"github.com/jsinger67/parol-sub000/pgerrors"
)

// NoProduction is the production annotation for a non-accepting state
// (spec.md §4.6 "production index -1").
const NoProduction = -1

// LADFA is a per-non-terminal lookahead DFA: ordered states (state 0 is the
// start state), a production annotation per state, and a transition map per
// state (spec.md §3 "Lookahead DFA").
type LADFA struct {
	NonTerminal string
	K           int

	// production[s] is the production number state s accepts, or
	// NoProduction.
	production []int
	// trans[s][terminal] = next state.
	trans []map[lookahead.CompiledTerminal]int
}

func newLADFA(nonTerminal string, k int) *LADFA {
	d := &LADFA{NonTerminal: nonTerminal, K: k}
	d.newState() // state 0, the start state
	return d
}

func (d *LADFA) newState() int {
	d.production = append(d.production, NoProduction)
	d.trans = append(d.trans, map[lookahead.CompiledTerminal]int{})
	return len(d.production) - 1
}

// NumStates returns the number of states, including the start state.
func (d *LADFA) NumStates() int { return len(d.production) }

// Production returns the production annotation of state s.
func (d *LADFA) Production(s int) int { return d.production[s] }

// Next returns the state reached from s on terminal t, and whether an edge
// exists.
func (d *LADFA) Next(s int, t lookahead.CompiledTerminal) (int, bool) {
	next, ok := d.trans[s][t]
	return next, ok
}

// Transitions returns the sorted (from, terminal, to) transition list for
// state s.
func (d *LADFA) Transitions(s int) []Transition {
	out := make([]Transition, 0, len(d.trans[s]))
	for t, next := range d.trans[s] {
		out = append(out, Transition{From: s, Terminal: t, To: next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Terminal < out[j].Terminal })
	return out
}

// Transition is one compiled edge of a lookahead DFA or LR automaton
// (spec.md §4.6 "Compiled form").
type Transition struct {
	From     int
	Terminal lookahead.CompiledTerminal
	To       int
	ToProd   int
}

// BuildLADFA constructs the lookahead DFA for one alternative's annotated
// tuple set (spec.md §4.6 steps 1-4): sort tuples lexicographically, walk
// from the start state creating an edge/state for every terminal not yet
// present, and annotate the state reached at the end of each tuple with its
// production number.
func BuildLADFA(nonTerminal string, k int, tuples *lookahead.KTuples) *LADFA {
	d := newLADFA(nonTerminal, k)

	elems := tuples.AnnotatedElements()
	sort.Slice(elems, func(i, j int) bool {
		return elems[i].Terminals.Compare(elems[j].Terminals) < 0
	})

	for _, at := range elems {
		state := 0
		for i := 0; i < at.Terminals.Len(); i++ {
			term := at.Terminals.Get(i)
			next, ok := d.trans[state][term]
			if !ok {
				next = d.newState()
				d.trans[state][term] = next
			}
			state = next
		}
		if at.Production >= 0 {
			d.production[state] = at.Production
		}
	}

	return d
}

// Unite combines alts (one LADFA per alternative of the same non-terminal)
// by walking them in lock-step from state 0, copying edges/states from each
// subsequent DFA into the first by mapping states (spec.md §4.6 "Union").
// Fails with UnionConflictError if two accepting states with distinct
// production numbers would collapse onto the same state.
func Unite(nonTerminal string, k int, alts []*LADFA) (*LADFA, error) {
	if len(alts) == 0 {
		return newLADFA(nonTerminal, k), nil
	}

	result := &LADFA{NonTerminal: nonTerminal, K: k,
		production: append([]int(nil), alts[0].production...),
	}
	result.trans = make([]map[lookahead.CompiledTerminal]int, len(alts[0].trans))
	for i, m := range alts[0].trans {
		cp := make(map[lookahead.CompiledTerminal]int, len(m))
		for t, next := range m {
			cp[t] = next
		}
		result.trans[i] = cp
	}

	for _, alt := range alts[1:] {
		// mapping from alt's state id to result's state id, seeded with the
		// shared start state.
		mapped := map[int]int{0: 0}
		var walk func(altState int) error
		walk = func(altState int) error {
			rState, ok := mapped[altState]
			if !ok {
				rState = result.newState()
				mapped[altState] = rState
			}
			if altProd := alt.production[altState]; altProd != NoProduction {
				if result.production[rState] == NoProduction {
					result.production[rState] = altProd
				} else if result.production[rState] != altProd {
					return &pgerrors.UnionConflictError{
						NonTerminal: nonTerminal,
						State:       stateLabel(rState),
						ProductionA: result.production[rState],
						ProductionB: altProd,
					}
				}
			}
			for term, altNext := range alt.trans[altState] {
				rNext, exists := result.trans[rState][term]
				if !exists {
					rNext, exists = mapped[altNext]
					if !exists {
						rNext = result.newState()
						mapped[altNext] = rNext
					}
					result.trans[rState][term] = rNext
				} else {
					mapped[altNext] = rNext
				}
				if err := walk(altNext); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(0); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func stateLabel(s int) string {
	return "s" + itoa(s)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
