package typesynth

import (
	"fmt"

	"github.com/jsinger67/parol-sub000/grammar"
)

// synthesizeActions builds one adapter-function entry per production,
// whose arguments mirror the RHS (tokens kept, clipped symbols kept but
// wrapped so callers know to drop them explicitly, non-terminals passed by
// their synthesized type), plus one user-facing semantic-action entry per
// non-terminal taking that non-terminal's AST type by shared reference
// (spec.md §4.7 "Action signatures").
func (s *Synthesizer) synthesizeActions() (map[int]EntryID, map[string]EntryID) {
	actions := make(map[int]EntryID, len(s.g.Productions))

	for _, p := range s.g.Productions {
		counts := map[string]int{}
		args := make([]Member, 0, len(p.RHS))

		for _, sym := range p.RHS {
			if sym.Kind == grammar.SymbolScannerDirective {
				continue
			}

			name := fieldName(sym.Name, counts)

			var typeID EntryID
			if sym.Kind == grammar.SymbolTerminal {
				typeID = s.tokenType
			} else {
				typeID = s.nonTerminalType[sym.Name]
			}

			if sym.Attr == grammar.SymClipped {
				typeID = s.table.Insert(Entry{
					Kind:       KindClipped,
					Name:       name + "Clipped",
					Inner:      typeID,
					Production: NoProduction,
				})
			}

			args = append(args, Member{Name: name, Type: typeID})
		}

		fnID := s.table.Insert(Entry{
			Kind:        KindFunction,
			Name:        fmt.Sprintf("%sAction%d", p.LHS, p.AltIndex),
			Members:     args,
			Inner:       s.nonTerminalType[p.LHS],
			NonTerminal: p.LHS,
			Production:  p.Index,
		})
		actions[p.Index] = fnID
	}

	semantic := make(map[string]EntryID, len(s.g.NonTerminals()))
	for _, nt := range s.g.NonTerminals() {
		ref := s.table.Insert(Entry{
			Kind:       KindRef,
			Name:       nt + "Ref",
			Inner:      s.nonTerminalType[nt],
			Production: NoProduction,
		})
		fnID := s.table.Insert(Entry{
			Kind:        KindFunction,
			Name:        nt + "SemanticAction",
			Members:     []Member{{Name: lowerFirst(nt), Type: ref}},
			Inner:       NoEntry,
			NonTerminal: nt,
			Production:  NoProduction,
		})
		semantic[nt] = fnID
	}

	return actions, semantic
}
