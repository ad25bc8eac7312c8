package grammar

import "fmt"

// LeftFactor applies the iterative left-factoring transformation of
// spec.md §4.1 until no further change is possible: for each non-terminal
// with two or more productions, find the longest prefix (of length >= 1)
// shared by at least two of its alternatives, and if one exists, split it
// out into a fresh non-terminal.
//
// Ties between candidate prefixes of the same length are broken by picking
// the one whose sharing group is most populous (spec.md §4.1).
func (g Grammar) LeftFactor() Grammar {
	cur := g.Copy()

	for {
		lhs, prefixLen, group, ok := cur.findLeftFactorCandidate()
		if !ok {
			break
		}
		cur = cur.applyLeftFactor(lhs, prefixLen, group)
	}

	cur.renumber()
	return cur
}

// findLeftFactorCandidate scans every non-terminal's alternatives for the
// longest common prefix shared by two or more of them. Returns the LHS,
// prefix length, and the indices (into that LHS's productions, in
// production-list order) of the productions sharing it.
func (g Grammar) findLeftFactorCandidate() (lhs string, prefixLen int, group []int, ok bool) {
	bestLen := 0
	var bestLHS string
	var bestGroup []int

	for _, rule := range g.RulesByLHS() {
		if len(rule.Productions) < 2 {
			continue
		}

		maxLen := 0
		for _, p := range rule.Productions {
			if len(p.RHS) > maxLen {
				maxLen = len(p.RHS)
			}
		}

		for l := maxLen; l >= 1; l-- {
			buckets := map[string][]int{}
			for i, p := range rule.Productions {
				if len(p.RHS) < l {
					continue
				}
				key := symbolsKey(p.RHS[:l])
				buckets[key] = append(buckets[key], i)
			}
			longestGroupThisLen := []int{}
			for _, idxs := range buckets {
				if len(idxs) >= 2 && len(idxs) > len(longestGroupThisLen) {
					longestGroupThisLen = idxs
				}
			}
			if len(longestGroupThisLen) >= 2 {
				if l > bestLen || (l == bestLen && len(longestGroupThisLen) > len(bestGroup)) {
					bestLen = l
					bestLHS = rule.NonTerminal
					bestGroup = longestGroupThisLen
				}
				break // no need to check shorter prefixes for this rule
			}
		}
	}

	if bestLen == 0 {
		return "", 0, nil, false
	}
	return bestLHS, bestLen, bestGroup, true
}

func symbolsKey(syms []Symbol) string {
	key := ""
	for _, s := range syms {
		key += fmt.Sprintf("%d:%s:%d|", s.Kind, s.Name, s.Attr)
	}
	return key
}

// applyLeftFactor rewrites productions[group] of non-terminal lhs (all of
// which share the prefix of length prefixLen) into a single production
// lhs -> prefix Asuffix, plus one Asuffix -> suffix_i per original
// alternative (including the empty suffix where it applied).
func (g Grammar) applyLeftFactor(lhs string, prefixLen int, group []int) Grammar {
	cur := g.Copy()

	rule := cur.Rule(lhs)
	// locate the group's productions within cur.Productions by identity of
	// (LHS, RHS) match against the snapshot passed in; rebuild indices
	// against current production list since Copy() preserves order.
	groupProds := make([]Production, 0, len(group))
	allForLHS := []int{}
	for i, p := range cur.Productions {
		if p.LHS == lhs {
			allForLHS = append(allForLHS, i)
		}
	}
	for _, gIdx := range group {
		groupProds = append(groupProds, rule.Productions[gIdx])
	}

	prefix := groupProds[0].RHS[:prefixLen]

	suffixName := freshNonTerminalName(lhs, cur.nonTerminals)
	cur.nonTerminals[suffixName] = true

	// Build replacement: remove all group productions from the grammar,
	// insert one lhs -> prefix suffixName in the position of the first
	// group member, and append suffixName -> suffix_i productions at the
	// end (stable pipeline-run-local numbering is reassigned by renumber()
	// after the whole LeftFactor loop finishes).
	groupSet := map[int]bool{}
	for _, gIdx := range group {
		groupSet[allForLHS[gIdx]] = true
	}

	firstGroupPos := -1
	for idx := range groupSet {
		if firstGroupPos == -1 || idx < firstGroupPos {
			firstGroupPos = idx
		}
	}

	newProds := make([]Production, 0, len(cur.Productions)+len(group))
	inserted := false
	for i, p := range cur.Productions {
		if groupSet[i] {
			if i == firstGroupPos {
				rhs := append(append([]Symbol{}, prefix...), Symbol{Kind: SymbolNonTerminal, Name: suffixName})
				newProds = append(newProds, Production{LHS: lhs, RHS: rhs, Attr: ProdNone})
				inserted = true
			}
			continue
		}
		newProds = append(newProds, p)
	}
	_ = inserted

	for _, gp := range groupProds {
		suffix := append([]Symbol{}, gp.RHS[prefixLen:]...)
		newProds = append(newProds, Production{LHS: suffixName, RHS: suffix, Attr: gp.Attr})
	}

	cur.Productions = newProds
	return cur
}

// freshNonTerminalName picks a name of the form "<lhs>Suffix", appending
// digits until it does not collide with an existing non-terminal
// (spec.md §4.1: "name chosen to avoid collisions").
func freshNonTerminalName(lhs string, existing map[string]bool) string {
	base := lhs + "Suffix"
	if !existing[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		if !existing[candidate] {
			return candidate
		}
	}
}
