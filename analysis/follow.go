package analysis

import (
	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
)

// FollowKResult is one solved FOLLOW_k approximation: one KTuples set per
// non-terminal (spec.md §4.4).
type FollowKResult struct {
	K              int
	PerNonTerminal util.SVSet[*lookahead.KTuples]
}

// FollowK returns the memoized FOLLOW_k result, solving FIRST_k(k) first if
// needed.
func (s *Solver) FollowK(k int) (*FollowKResult, error) {
	if cached, ok := s.followCache[k]; ok {
		return cached, nil
	}

	first, err := s.FirstK(k)
	if err != nil {
		return nil, err
	}

	follow := util.NewSVSet[*lookahead.KTuples]()
	for _, nt := range s.g.NonTerminals() {
		follow[nt], _ = lookahead.NewKTuplesWithBits(s.bits, k)
	}
	if start := s.g.StartSymbol(); start != "" {
		eoi, _ := lookahead.New(s.bits)
		eoi, _ = eoi.Push(lookahead.EndOfInput)
		follow[start].Insert(eoi)
	}

	for {
		changed := false

		for _, p := range s.g.Productions {
			for i, sym := range p.RHS {
				if sym.Kind != grammar.SymbolNonTerminal {
					continue
				}
				beta := p.RHS[i+1:]
				firstOfBeta := s.sequenceFirstK(beta, first.PerNonTerminal, k)
				contribution := firstOfBeta.ConcatK(follow[p.LHS])

				merged, ch := follow[sym.Name].Union(contribution)
				if ch {
					follow[sym.Name] = merged
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	result := &FollowKResult{K: k, PerNonTerminal: follow}
	s.followCache[k] = result
	return result, nil
}
