package automaton

import (
	"sort"

	"github.com/jsinger67/parol-sub000/lookahead"
)

// Minimize implements spec.md §4.6 "Minimization": group accepting states
// by production annotation, merge every group of size > 1 into its lowest-
// numbered member (splicing outgoing edges and redirecting incoming
// edges), then emit a compactly renumbered DFA with a sorted transition
// list. The start state (0) is always preserved.
func Minimize(d *LADFA) *LADFA {
	groups := map[int][]int{}
	for s, p := range d.production {
		if p != NoProduction {
			groups[p] = append(groups[p], s)
		}
	}

	kept := make([]int, d.NumStates())
	for i := range kept {
		kept[i] = i
	}
	removed := make(map[int]bool)
	for _, states := range groups {
		if len(states) <= 1 {
			continue
		}
		sort.Ints(states)
		keep := states[0]
		for _, s := range states[1:] {
			kept[s] = keep
			removed[s] = true
		}
	}

	// Splice every (possibly-removed) state's outgoing edges into its kept
	// representative; the first writer for a given terminal wins, since the
	// construction in BuildLADFA never creates two distinct live edges on
	// the same terminal out of states destined to merge.
	mergedOutgoing := map[int]map[lookahead.CompiledTerminal]int{}
	for s := 0; s < d.NumStates(); s++ {
		rep := kept[s]
		if mergedOutgoing[rep] == nil {
			mergedOutgoing[rep] = map[lookahead.CompiledTerminal]int{}
		}
		for term, to := range d.trans[s] {
			if _, exists := mergedOutgoing[rep][term]; !exists {
				mergedOutgoing[rep][term] = to
			}
		}
	}

	keptStates := make([]int, 0, d.NumStates())
	for s := 0; s < d.NumStates(); s++ {
		if !removed[s] {
			keptStates = append(keptStates, s)
		}
	}
	sort.Ints(keptStates)

	newID := make(map[int]int, len(keptStates))
	for i, s := range keptStates {
		newID[s] = i
	}

	result := &LADFA{NonTerminal: d.NonTerminal, K: d.K,
		production: make([]int, len(keptStates)),
		trans:      make([]map[lookahead.CompiledTerminal]int, len(keptStates)),
	}
	for i, s := range keptStates {
		result.production[i] = d.production[s]
		edges := map[lookahead.CompiledTerminal]int{}
		for term, to := range mergedOutgoing[s] {
			edges[term] = newID[kept[to]]
		}
		result.trans[i] = edges
	}

	return result
}

// AllTransitions returns every state's transitions as a single sorted list,
// the compiled form of spec.md §4.6: "(prod0, sorted transition list, k)".
func (d *LADFA) AllTransitions() []Transition {
	var out []Transition
	for s := 0; s < d.NumStates(); s++ {
		for _, tr := range d.Transitions(s) {
			tr.ToProd = d.production[tr.To]
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Terminal < out[j].Terminal
	})
	return out
}

// Prod0 returns the start state's production annotation (spec.md §4.6
// "its production annotation (0 or -1) is recorded as prod0").
func (d *LADFA) Prod0() int {
	return d.production[0]
}
