package automaton

import "sort"

// MergeLALR1 collapses every group of canonical LR(1) states sharing the
// same LR(0) core (production, dot position — ignoring lookahead) into one
// state whose item set is the union of the group's items (spec.md §3 "LR(1)
// state", §9 "Open question: LR(1) -> LALR(1) merge policy"). Any conflict
// this merge introduces is detected later, when BuildTable constructs the
// action table — the specified behavior (per spec.md §9) is to fail rather
// than silently keep the un-merged LR(1) automaton.
func MergeLALR1(lr1 *LR1Automaton) *LR1Automaton {
	coreOf := func(items itemSet) string {
		keys := make([]string, 0, len(items))
		for _, it := range items {
			keys = append(keys, itoa(it.Prod)+"."+itoa(it.Dot))
		}
		sort.Strings(keys)
		out := ""
		for _, k := range keys {
			out += k + "|"
		}
		return out
	}

	groups := map[string][]int{}
	groupOrder := []string{}
	for i, st := range lr1.states {
		c := coreOf(st)
		if _, exists := groups[c]; !exists {
			groupOrder = append(groupOrder, c)
		}
		groups[c] = append(groups[c], i)
	}

	newID := map[int]int{}
	newStates := make([]itemSet, 0, len(groupOrder))
	for _, c := range groupOrder {
		idxs := groups[c]
		merged := itemSet{}
		for _, idx := range idxs {
			for k, v := range lr1.states[idx] {
				merged[k] = v
			}
		}
		id := len(newStates)
		newStates = append(newStates, merged)
		for _, idx := range idxs {
			newID[idx] = id
		}
	}

	newTrans := make([]map[symKey]int, len(newStates))
	for i := range newTrans {
		newTrans[i] = map[symKey]int{}
	}
	for idx, m := range lr1.trans {
		ni := newID[idx]
		for sym, target := range m {
			newTrans[ni][sym] = newID[target]
		}
	}

	return &LR1Automaton{
		Augmented: lr1.Augmented,
		AugProd:   lr1.AugProd,
		prods:     lr1.prods,
		first1:    lr1.first1,
		nullable:  lr1.nullable,
		states:    newStates,
		trans:     newTrans,
		start:     newID[lr1.start],
	}
}
