package analysis

import (
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
)

// FirstKResult is one solved FIRST_k approximation: a KTuples set per
// production plus one per non-terminal (spec.md §4.4).
type FirstKResult struct {
	K              int
	PerProduction  []*lookahead.KTuples
	PerNonTerminal util.SVSet[*lookahead.KTuples]
}

// FirstK returns the memoized FIRST_k result, solving it (and, if needed,
// FIRST_{k-1} first) on first request.
func (s *Solver) FirstK(k int) (*FirstKResult, error) {
	if cached, ok := s.firstCache[k]; ok {
		return cached, nil
	}

	perProduction := make([]*lookahead.KTuples, len(s.g.Productions))
	perNonTerminal := util.NewSVSet[*lookahead.KTuples]()
	for _, nt := range s.g.NonTerminals() {
		perNonTerminal[nt], _ = lookahead.NewKTuplesWithBits(s.bits, k)
	}

	if k == 0 {
		// Empty sets for productions, epsilon-singletons for non-terminals
		// (spec.md §4.4 "Initialization for k = 0").
		for i := range perProduction {
			perProduction[i], _ = lookahead.NewKTuplesWithBits(s.bits, 0)
		}
		for _, nt := range s.g.NonTerminals() {
			perNonTerminal[nt].Insert(lookahead.EpsilonTuple(s.bits))
		}
	} else {
		prev, err := s.FirstK(k - 1)
		if err != nil {
			return nil, err
		}
		for i := range perProduction {
			perProduction[i] = relift(prev.PerProduction[i], s.bits, k)
		}
		for _, nt := range s.g.NonTerminals() {
			perNonTerminal[nt] = relift(prev.PerNonTerminal[nt], s.bits, k)
		}
	}

	for {
		changed := false

		for i, p := range s.g.Productions {
			computed := s.sequenceFirstK(p.RHS, perNonTerminal, k)
			merged, ch := perProduction[i].Union(computed)
			if ch || merged.Len() != computed.Len() {
				changed = true
			}
			perProduction[i] = computed
		}

		for _, nt := range s.g.NonTerminals() {
			ntSet, _ := lookahead.NewKTuplesWithBits(s.bits, k)
			for i, p := range s.g.Productions {
				if p.LHS == nt {
					ntSet, _ = ntSet.Union(perProduction[i])
				}
			}
			merged, ch := perNonTerminal[nt].Union(ntSet)
			if ch || merged.Len() != ntSet.Len() {
				changed = true
			}
			perNonTerminal[nt] = ntSet
		}

		if !changed {
			break
		}
	}

	result := &FirstKResult{K: k, PerProduction: perProduction, PerNonTerminal: perNonTerminal}
	s.firstCache[k] = result
	return result, nil
}

// relift re-lifts a KTuples result computed for some other target k to the
// new target k, truncating every member tuple and recomputing its
// completeness flag (spec.md §4.4: "initialize by re-lifting the cached
// FIRST_{k-1} result").
func relift(old *lookahead.KTuples, bits, k int) *lookahead.KTuples {
	fresh, _ := lookahead.NewKTuplesWithBits(bits, k)
	for _, at := range old.AnnotatedElements() {
		fresh.InsertAnnotated(lookahead.Terminals_of(at.Terminals, k), at.Production)
	}
	return fresh
}
