package typesynth

// PropagateLifetimes marks every entry that transitively contains a token
// entry as HasLifetime, by fixed-point iteration over the containment
// graph (spec.md §4.7 "Lifetime propagation"). It terminates because each
// pass either flips at least one entry from false to true or makes no
// change, and there are finitely many entries.
func PropagateLifetimes(table *SymbolTable) {
	for {
		changed := false
		for _, e := range table.All() {
			if e.HasLifetime {
				continue
			}
			if entryHasLifetime(table, e) {
				e.HasLifetime = true
				table.Set(e)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	// Refresh the cached Member.HasLifetime flags now that every entry's
	// own HasLifetime has reached its final value.
	for _, e := range table.All() {
		if e.Kind != KindStruct && e.Kind != KindEnum && e.Kind != KindFunction {
			continue
		}
		dirty := false
		for i, m := range e.Members {
			lt := table.Get(m.Type).HasLifetime
			if m.HasLifetime != lt {
				e.Members[i].HasLifetime = lt
				dirty = true
			}
		}
		if dirty {
			table.Set(e)
		}
	}
}

func entryHasLifetime(table *SymbolTable, e Entry) bool {
	switch e.Kind {
	case KindToken:
		return true
	case KindStruct, KindEnum:
		for _, m := range e.Members {
			if table.Get(m.Type).HasLifetime {
				return true
			}
		}
		return false
	default:
		if e.Inner == NoEntry {
			return false
		}
		return table.Get(e.Inner).HasLifetime
	}
}
