// Package analysis implements the FIRST_k/FOLLOW_k fixed-point solvers and
// the k-decision engine (spec.md §4.4, §4.5) on top of the grammar IR and
// the k-tuple algebra.
//
// It is grounded on the teacher's internal/ictiobus/grammar FIRST/FOLLOW
// computation (an equation system iterated to a fixed point, memoized per
// call) generalized from single-symbol lookahead to bounded k-tuples.
package analysis

import (
	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
)

// Solver owns the memoized FIRST_k/FOLLOW_k caches for one grammar
// (spec.md §4.4: "Caches are mandatory: repeated requests for the same k
// must not recompute").
type Solver struct {
	g   grammar.Grammar
	bits int

	firstCache  map[int]*FirstKResult
	followCache map[int]*FollowKResult
}

// NewSolver prepares a solver for g, sizing the bit-packed tuple encoding
// from the grammar's terminal table.
func NewSolver(g grammar.Grammar) (*Solver, error) {
	bits, err := lookahead.BitsFor(g.MaxTerminalIndex())
	if err != nil {
		return nil, err
	}
	return &Solver{
		g:           g,
		bits:        bits,
		firstCache:  map[int]*FirstKResult{},
		followCache: map[int]*FollowKResult{},
	}, nil
}

// Bits returns the bit width this solver packs each k-tuple slot into,
// derived once from the grammar's terminal table (spec.md §4.3).
func (s *Solver) Bits() int { return s.bits }

// Grammar returns the grammar this solver was built for.
func (s *Solver) Grammar() grammar.Grammar { return s.g }

func (s *Solver) terminalIndex(name string) lookahead.CompiledTerminal {
	return lookahead.CompiledTerminal(s.g.Term(name).Index)
}

// sequenceFirstK computes the k-concatenation, in order, of the maximal
// terminal runs and non-terminal FIRST_k approximations in syms
// (spec.md §4.4, FIRST_k production equation).
func (s *Solver) sequenceFirstK(syms []grammar.Symbol, approx util.SVSet[*lookahead.KTuples], k int) *lookahead.KTuples {
	accum, _ := lookahead.NewKTuplesWithBits(s.bits, k)
	accum.Insert(lookahead.EpsilonTuple(s.bits))

	i := 0
	for i < len(syms) {
		sym := syms[i]
		switch sym.Kind {
		case grammar.SymbolTerminal:
			run, _ := lookahead.New(s.bits)
			for i < len(syms) && syms[i].Kind == grammar.SymbolTerminal {
				next, err := run.Push(s.terminalIndex(syms[i].Name))
				if err != nil {
					// MAX_K reached; further terminals in this run cannot
					// affect any k <= MAX_K.
					break
				}
				run = next
				i++
			}
			group, _ := lookahead.NewKTuplesWithBits(s.bits, k)
			group.Insert(run)
			accum = accum.ConcatK(group)
		case grammar.SymbolNonTerminal:
			next := approx[sym.Name]
			if next == nil {
				next, _ = lookahead.NewKTuplesWithBits(s.bits, k)
			}
			accum = accum.ConcatK(next)
			i++
		default:
			// scanner-switch directives contribute no terminals to FIRST.
			i++
		}
	}
	return accum
}
