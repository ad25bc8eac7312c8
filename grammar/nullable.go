package grammar

// Nullable computes the set of non-terminals that can derive the empty
// string (spec.md §4.2). It feeds both left-recursion detection and the
// FIRST_k solver.
//
// Seeded with non-terminals that have an empty production, then grown by
// fixed point: any non-terminal with a production whose RHS consists only
// of already-nullable non-terminals is added too. Monotone over a finite
// domain, so the loop always terminates.
func (g Grammar) Nullable() map[string]bool {
	nullable := map[string]bool{}

	for _, p := range g.Productions {
		if p.IsEpsilon() {
			nullable[p.LHS] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if nullable[p.LHS] {
				continue
			}
			allNullable := true
			for _, sym := range p.RHS {
				if sym.Kind != SymbolNonTerminal || !nullable[sym.Name] {
					allNullable = false
					break
				}
			}
			if allNullable && len(p.RHS) > 0 {
				nullable[p.LHS] = true
				changed = true
			}
		}
	}

	return nullable
}

// nullablePrefix returns whether every symbol in syms is nullable (terminals
// are never nullable); used by left-recursion detection to test whether a
// prefix α in A -> α B β can vanish entirely.
func nullablePrefix(syms []Symbol, nullable map[string]bool) bool {
	for _, s := range syms {
		if s.Kind != SymbolNonTerminal || !nullable[s.Name] {
			return false
		}
	}
	return true
}
