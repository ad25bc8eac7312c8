package typesynth

import "github.com/jsinger67/parol-sub000/pgerrors"

// BreakCycles walks the type graph built by Synthesize and rewrites any
// struct or enum member whose declared type transitively owns the entry it
// belongs to, unless that path already passes through a box or vec
// indirection (spec.md §3 invariant I7, §4.7 "Cycle-breaking"). Each
// rewrite inserts a fresh box entry wrapping the offending member's
// previous type and strictly reduces the number of direct cycles, so the
// fixed point always terminates; maxIterations is a generous bound used
// only to turn a would-be infinite loop into a CycleError instead.
func BreakCycles(table *SymbolTable, nonTerminalType map[string]EntryID) error {
	maxIterations := table.Len()*table.Len() + len(nonTerminalType) + 16

	for iter := 0; ; iter++ {
		if iter > maxIterations {
			return &pgerrors.CycleError{Stage: "typesynth cycle-breaking", Path: []string{"fixed point did not converge"}}
		}

		changed := false
		for _, e := range table.All() {
			if e.Kind != KindStruct && e.Kind != KindEnum {
				continue
			}
			for mi, m := range e.Members {
				real, needsCheck := unwrapNonBreaking(table, m.Type)
				if !needsCheck {
					continue
				}
				if real != e.ID && !reachesOwner(table, real, e.ID, map[EntryID]bool{}) {
					continue
				}

				boxed := table.Insert(Entry{
					Kind:       KindBox,
					Name:       table.Get(m.Type).Name + "Box",
					Inner:      m.Type,
					Production: NoProduction,
				})
				owner := table.Get(e.ID)
				owner.Members[mi].Type = boxed
				table.Set(owner)
				changed = true
			}
		}

		if !changed {
			return nil
		}
	}
}

// unwrapNonBreaking follows Option/Clipped/Ref/EnumVariant wrappers (none of
// which break an ownership cycle per I7) down to the first Struct, Enum,
// Token, or leaf entry. It reports ok=false the moment it passes through a
// Box or Vec, since those already break any cycle that would otherwise run
// through id.
func unwrapNonBreaking(table *SymbolTable, id EntryID) (real EntryID, ok bool) {
	cur := id
	for {
		e := table.Get(cur)
		switch e.Kind {
		case KindBox, KindVec:
			return NoEntry, false
		case KindOption, KindClipped, KindRef, KindEnumVariant:
			if e.Inner == NoEntry {
				return cur, true
			}
			cur = e.Inner
		default:
			return cur, true
		}
	}
}

// reachesOwner reports whether from's ownership graph (struct members and
// enum variants, unwrapped the same way) reaches owner without crossing a
// box or vec indirection.
func reachesOwner(table *SymbolTable, from, owner EntryID, visited map[EntryID]bool) bool {
	if from == owner {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true

	e := table.Get(from)
	switch e.Kind {
	case KindStruct:
		for _, m := range e.Members {
			real, ok := unwrapNonBreaking(table, m.Type)
			if !ok {
				continue
			}
			if reachesOwner(table, real, owner, visited) {
				return true
			}
		}
	case KindEnum:
		for _, m := range e.Members {
			variant := table.Get(m.Type)
			real, ok := unwrapNonBreaking(table, variant.Inner)
			if !ok {
				continue
			}
			if reachesOwner(table, real, owner, visited) {
				return true
			}
		}
	}
	return false
}
