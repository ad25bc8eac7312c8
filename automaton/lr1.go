package automaton

import (
	"fmt"
	"sort"

	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
)

// lrItem is one canonical LR(1) item: a production, a dot position within
// its RHS, and a single-terminal lookahead (spec.md §3 "LR(1) state": "a
// set of items (production, dot position, lookahead terminal)").
type lrItem struct {
	Prod int
	Dot  int
	La   lookahead.CompiledTerminal
}

func (it lrItem) key() string { return fmt.Sprintf("%d.%d@%d", it.Prod, it.Dot, it.La) }

type itemSet map[string]lrItem

// symKey identifies a grammar symbol for use as a transition-map key,
// distinguishing a terminal and a non-terminal of the same name.
type symKey struct {
	Kind grammar.SymbolKind
	Name string
}

func keyOf(sym grammar.Symbol) symKey { return symKey{Kind: sym.Kind, Name: sym.Name} }

// LR1Automaton is the canonical LR(1) viable-prefix automaton (spec.md §3,
// §4 "Lookahead DFA construction... The alternative LALR(1) path builds a
// canonical LR(1) automaton and merges by core"). It is grounded on the
// teacher's internal/ictiobus/automaton.NewLR1ViablePrefixDFA /
// NewLALR1ViablePrefixDFA pair and internal/ictiobus/parse/clr1.go's
// table-construction algorithm (itself Algorithm 4.56 of the dragon book),
// adapted from the teacher's string-keyed items to the structured
// grammar.Symbol/Production domain used throughout this core.
type LR1Automaton struct {
	Augmented grammar.Grammar
	AugProd   int

	prods    []grammar.Production
	first1   map[string]map[lookahead.CompiledTerminal]bool
	nullable map[string]bool

	states []itemSet
	trans  []map[symKey]int
	start  int
}

// BuildLR1 constructs the canonical LR(1) automaton for g.
func BuildLR1(g grammar.Grammar) *LR1Automaton {
	aug, augIdx := g.Augmented()
	nullable := aug.Nullable()
	first1 := computeFirst1(aug, nullable)

	a := &LR1Automaton{
		Augmented: aug,
		AugProd:   augIdx,
		prods:     aug.Productions,
		first1:    first1,
		nullable:  nullable,
	}

	startItem := lrItem{Prod: augIdx, Dot: 0, La: lookahead.EndOfInput}
	startSet := a.closure(itemSet{startItem.key(): startItem})

	a.states = []itemSet{startSet}
	a.trans = []map[symKey]int{{}}
	a.start = 0

	seen := map[string]int{canonicalKey(startSet): 0}
	worklist := &util.Stack[int]{}
	worklist.Push(0)

	for !worklist.Empty() {
		i := worklist.Pop()

		for _, sym := range a.outgoingSymbols(a.states[i]) {
			next := a.goTo(a.states[i], sym)
			if len(next) == 0 {
				continue
			}
			ck := canonicalKey(next)
			j, exists := seen[ck]
			if !exists {
				j = len(a.states)
				a.states = append(a.states, next)
				a.trans = append(a.trans, map[symKey]int{})
				seen[ck] = j
				worklist.Push(j)
			}
			a.trans[i][keyOf(sym)] = j
		}
	}

	return a
}

// NumStates returns the number of canonical states.
func (a *LR1Automaton) NumStates() int { return len(a.states) }

// Start returns the start state's id.
func (a *LR1Automaton) Start() int { return a.start }

func (a *LR1Automaton) closure(seed itemSet) itemSet {
	result := make(itemSet, len(seed))
	for k, v := range seed {
		result[k] = v
	}

	changed := true
	for changed {
		changed = false
		for _, it := range valuesOf(result) {
			p := a.prods[it.Prod]
			if it.Dot >= len(p.RHS) {
				continue
			}
			sym := p.RHS[it.Dot]
			if sym.Kind != grammar.SymbolNonTerminal {
				continue
			}
			beta := p.RHS[it.Dot+1:]
			las := a.first1OfSeq(beta, it.La)

			for pi, prod := range a.prods {
				if prod.LHS != sym.Name {
					continue
				}
				for la := range las {
					ni := lrItem{Prod: pi, Dot: 0, La: la}
					if _, exists := result[ni.key()]; !exists {
						result[ni.key()] = ni
						changed = true
					}
				}
			}
		}
	}

	return result
}

func (a *LR1Automaton) goTo(items itemSet, sym grammar.Symbol) itemSet {
	kernel := itemSet{}
	for _, it := range items {
		p := a.prods[it.Prod]
		if it.Dot < len(p.RHS) && p.RHS[it.Dot].Kind == sym.Kind && p.RHS[it.Dot].Name == sym.Name {
			ni := lrItem{Prod: it.Prod, Dot: it.Dot + 1, La: it.La}
			kernel[ni.key()] = ni
		}
	}
	if len(kernel) == 0 {
		return nil
	}
	return a.closure(kernel)
}

// outgoingSymbols returns, in a stable order, every distinct symbol that
// immediately follows the dot in some item of the set.
func (a *LR1Automaton) outgoingSymbols(items itemSet) []grammar.Symbol {
	seen := map[symKey]grammar.Symbol{}
	for _, it := range items {
		p := a.prods[it.Prod]
		if it.Dot < len(p.RHS) {
			sym := p.RHS[it.Dot]
			seen[keyOf(sym)] = sym
		}
	}
	out := make([]grammar.Symbol, 0, len(seen))
	for _, sym := range seen {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// first1OfSeq computes the classical single-terminal FIRST set of syms
// followed by trailing if syms is entirely nullable (the standard LR(1)
// closure lookahead rule).
func (a *LR1Automaton) first1OfSeq(syms []grammar.Symbol, trailing lookahead.CompiledTerminal) map[lookahead.CompiledTerminal]bool {
	out := map[lookahead.CompiledTerminal]bool{}
	for _, sym := range syms {
		switch sym.Kind {
		case grammar.SymbolScannerDirective:
			continue
		case grammar.SymbolTerminal:
			out[lookahead.CompiledTerminal(a.Augmented.Term(sym.Name).Index)] = true
			return out
		default:
			for t := range a.first1[sym.Name] {
				out[t] = true
			}
			if !a.nullable[sym.Name] {
				return out
			}
		}
	}
	out[trailing] = true
	return out
}

func valuesOf(items itemSet) []lrItem {
	out := make([]lrItem, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}

func canonicalKey(items itemSet) string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "|"
	}
	return out
}

// computeFirst1 computes the classical single-terminal FIRST sets for
// every non-terminal of g (standard fixed-point dragon-book algorithm,
// distinct from the k-tuple FIRST_k of package analysis: LR(1) items only
// ever need a single lookahead terminal).
func computeFirst1(g grammar.Grammar, nullable map[string]bool) map[string]map[lookahead.CompiledTerminal]bool {
	first := map[string]map[lookahead.CompiledTerminal]bool{}
	for _, nt := range g.NonTerminals() {
		first[nt] = map[lookahead.CompiledTerminal]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if addFirst1OfSeq(first[p.LHS], p.RHS, g, nullable, first) {
				changed = true
			}
		}
	}

	return first
}

func addFirst1OfSeq(dst map[lookahead.CompiledTerminal]bool, syms []grammar.Symbol, g grammar.Grammar, nullable map[string]bool, first map[string]map[lookahead.CompiledTerminal]bool) bool {
	changed := false
	for _, sym := range syms {
		switch sym.Kind {
		case grammar.SymbolScannerDirective:
			continue
		case grammar.SymbolTerminal:
			idx := lookahead.CompiledTerminal(g.Term(sym.Name).Index)
			if !dst[idx] {
				dst[idx] = true
				changed = true
			}
			return changed
		default:
			for t := range first[sym.Name] {
				if !dst[t] {
					dst[t] = true
					changed = true
				}
			}
			if !nullable[sym.Name] {
				return changed
			}
		}
	}
	return changed
}
