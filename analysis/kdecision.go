package analysis

import (
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
	"github.com/jsinger67/parol-sub000/pgerrors"
)

// Decision is the result of running the k-decision engine for one
// non-terminal (spec.md §4.5).
type Decision struct {
	NonTerminal string
	K           int
}

// DecideK finds the smallest k in [1, kMax] at which every pair of N's
// alternatives produces disjoint FIRST_k(p_i) ⊙_k FOLLOW_k(N) sets
// (spec.md §4.5). A single-alternative non-terminal always decides at k=0.
func (s *Solver) DecideK(nonTerminal string, kMax int) (Decision, error) {
	if kMax > lookahead.MaxK {
		return Decision{}, &pgerrors.LookaheadTooLargeError{Requested: kMax, MaxK: lookahead.MaxK}
	}

	rule := s.g.Rule(nonTerminal)
	if len(rule.Productions) <= 1 {
		return Decision{NonTerminal: nonTerminal, K: 0}, nil
	}

	prodIndices := make([]int, 0, len(rule.Productions))
	for i, p := range s.g.Productions {
		if p.LHS == nonTerminal {
			prodIndices = append(prodIndices, i)
		}
	}

	var lastConflicts []pgerrors.Conflict
	for k := 1; k <= kMax; k++ {
		first, err := s.FirstK(k)
		if err != nil {
			return Decision{}, err
		}
		follow, err := s.FollowK(k)
		if err != nil {
			return Decision{}, err
		}
		followN := follow.PerNonTerminal[nonTerminal]

		ts := make([]*lookahead.KTuples, len(prodIndices))
		for j, pi := range prodIndices {
			ts[j] = first.PerProduction[pi].ConcatK(followN)
		}

		conflicts := conflictsAt(nonTerminal, k, prodIndices, ts)
		if len(conflicts) == 0 {
			return Decision{NonTerminal: nonTerminal, K: k}, nil
		}
		lastConflicts = conflicts
	}

	return Decision{}, &pgerrors.MaxKExceededError{NonTerminal: nonTerminal, MaxK: kMax, Conflicts: lastConflicts}
}

// conflictsAt reports every pairwise non-disjoint alternative at k,
// de-duplicated so each unordered pair is reported once (spec.md §4.5).
func conflictsAt(nonTerminal string, k int, prodIndices []int, ts []*lookahead.KTuples) []pgerrors.Conflict {
	var conflicts []pgerrors.Conflict
	for i := 0; i < len(ts); i++ {
		for j := i + 1; j < len(ts); j++ {
			if ts[i].DisjointWith(ts[j]) {
				continue
			}
			intersection, _ := ts[i].Intersection(ts[j])
			conflicts = append(conflicts, pgerrors.Conflict{
				NonTerminal:  nonTerminal,
				K:            k,
				AltI:         prodIndices[i],
				AltJ:         prodIndices[j],
				TupleStrI:    joinTuples(ts[i]),
				TupleStrJ:    joinTuples(ts[j]),
				Intersection: joinTuples(intersection),
			})
		}
	}
	return conflicts
}

func joinTuples(set *lookahead.KTuples) string {
	elems := set.Elements()
	s := "{"
	for i, e := range elems {
		if i > 0 {
			s += ", "
		}
		s += e.Terminals.String()
	}
	return s + "}"
}

// WholeGrammarK computes the grammar's required k: the maximum over every
// non-terminal's minimum decidable k. If any non-terminal exceeds kMax, the
// whole grammar is rejected with that non-terminal's MaxKExceededError
// (spec.md §4.5 "Whole-grammar k").
func (s *Solver) WholeGrammarK(kMax int) (int, util.SVSet[Decision], error) {
	decisions := util.NewSVSet[Decision]()
	required := 0
	for _, nt := range s.g.NonTerminals() {
		d, err := s.DecideK(nt, kMax)
		if err != nil {
			return 0, nil, err
		}
		decisions[nt] = d
		if d.K > required {
			required = d.K
		}
	}
	return required, decisions, nil
}
