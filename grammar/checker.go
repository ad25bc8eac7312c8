package grammar

import (
	"sort"

	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/pgerrors"
)

// Productive returns the set of non-terminals that can derive some terminal
// string (spec.md §4.1 Productivity). Computed by fixed point: first mark
// every non-terminal with a production made entirely of terminals (or
// epsilon), then repeat, marking any non-terminal with a production whose
// RHS symbols are all already marked productive.
func (g Grammar) Productive() util.StringSet {
	productive := util.NewStringSet()

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if productive.Has(p.LHS) {
				continue
			}
			ok := true
			for _, sym := range p.RHS {
				if sym.Kind == SymbolNonTerminal && !productive.Has(sym.Name) {
					ok = false
					break
				}
			}
			if ok {
				productive.Add(p.LHS)
				changed = true
			}
		}
	}

	return productive
}

// Reachable returns the set of non-terminals reachable from the start
// symbol (spec.md §4.1 Reachability).
func (g Grammar) Reachable() util.StringSet {
	reachable := util.NewStringSet()
	if g.Start == "" {
		return reachable
	}
	reachable.Add(g.Start)

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if !reachable.Has(p.LHS) {
				continue
			}
			for _, sym := range p.RHS {
				if sym.Kind == SymbolNonTerminal && !reachable.Has(sym.Name) {
					reachable.Add(sym.Name)
					changed = true
				}
			}
		}
	}

	return reachable
}

// leftRecursionCycle builds the directed graph whose vertices are
// non-terminals and whose edges A -> B exist iff some production
// A -> α B β has every symbol in α nullable (spec.md §4.1 Left-recursion
// detection), then runs a DFS looking for a cycle. Returns the witness path
// if one is found, nil otherwise.
func (g Grammar) leftRecursionCycle() []string {
	nullable := g.Nullable()

	edges := map[string][]string{}
	for _, p := range g.Productions {
		for i, sym := range p.RHS {
			if sym.Kind != SymbolNonTerminal {
				if sym.Kind == SymbolTerminal {
					break // alpha can no longer be nullable past a terminal
				}
				continue
			}
			if nullablePrefix(p.RHS[:i], nullable) {
				edges[p.LHS] = append(edges[p.LHS], sym.Name)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string
	var cycle []string

	var visit func(nt string) bool
	visit = func(nt string) bool {
		color[nt] = gray
		path = append(path, nt)
		for _, next := range edges[nt] {
			switch color[next] {
			case white:
				if visit(next) {
					return true
				}
			case gray:
				// found the cycle: path from next's first occurrence to here
				start := 0
				for i, n := range path {
					if n == next {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, path[start:]...), next)
				return true
			}
		}
		path = path[:len(path)-1]
		color[nt] = black
		return false
	}

	nts := g.NonTerminals()
	for _, nt := range nts {
		if color[nt] == white {
			if visit(nt) {
				return cycle
			}
		}
	}
	return nil
}

// Check implements the full contract of spec.md §4.1: given a grammar IR,
// either return it unchanged (modulo left-factoring) satisfying I1-I2, or
// fail with one of LeftRecursionError, NonProductiveError, or
// UnreachableError.
//
// Left-recursion is checked first. A cycle in the left-recursion graph is
// also, definitionally, a cycle with no terminal-only escape in the
// productivity graph (spec.md §8 scenario 2 is both at once), so checking
// productivity first would mask the more specific diagnosis with the
// generic one; a caller debugging an accidentally left-recursive rule wants
// to see the cycle, not a list of non-terminals that looks like a typo.
func (g Grammar) Check() (Grammar, error) {
	if cycle := g.leftRecursionCycle(); cycle != nil {
		return Grammar{}, &pgerrors.LeftRecursionError{Witness: cycle}
	}

	productive := g.Productive()
	var nonProductive []string
	for _, nt := range g.NonTerminals() {
		if !productive.Has(nt) {
			nonProductive = append(nonProductive, nt)
		}
	}
	if len(nonProductive) > 0 {
		sort.Strings(nonProductive)
		return Grammar{}, &pgerrors.NonProductiveError{NonTerminals: nonProductive}
	}

	reachable := g.Reachable()
	var unreachable []string
	for _, nt := range g.NonTerminals() {
		if !reachable.Has(nt) {
			unreachable = append(unreachable, nt)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return Grammar{}, &pgerrors.UnreachableError{NonTerminals: unreachable}
	}

	return g.LeftFactor(), nil
}
