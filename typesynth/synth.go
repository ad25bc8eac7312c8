package typesynth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsinger67/parol-sub000/grammar"
)

// Artifacts is everything Synthesize produces: the finished symbol table,
// per-non-terminal type ids, the vector/option classification, and the
// designated AST sum-type root (spec.md §6 "a symbol table expressing the
// AST shape with resolved lifetimes and a designated ASTType enum root").
type Artifacts struct {
	Table *SymbolTable

	NonTerminalType map[string]EntryID
	VectorTyped     map[string]bool
	OptionTyped     map[string]bool

	TokenType EntryID
	ASTType   EntryID

	// Actions holds one adapter-function entry per production, indexed by
	// production index (spec.md §4.7 "Action signatures").
	Actions map[int]EntryID

	// SemanticActions holds one user-facing entry per non-terminal.
	SemanticActions map[string]EntryID
}

// Synthesizer walks a grammar and builds its Artifacts (spec.md §4.7). It is
// the sole mutator of its SymbolTable for the duration of one run (spec.md
// §5).
type Synthesizer struct {
	g grammar.Grammar

	// MinimizeBoxedTypes selects whether a field naming a non-terminal other
	// than the enclosing one is inlined instead of boxed, in every struct
	// fieldsFor builds; cycles that inlining creates are broken later by
	// BreakCycles.
	MinimizeBoxedTypes bool

	table *SymbolTable

	nonTerminalType map[string]EntryID
	vectorTyped     map[string]bool
	optionTyped     map[string]bool

	tokenType EntryID
}

// New returns a Synthesizer for g.
func New(g grammar.Grammar, minimizeBoxedTypes bool) *Synthesizer {
	return &Synthesizer{
		g:                  g,
		MinimizeBoxedTypes: minimizeBoxedTypes,
		table:              NewSymbolTable(),
		nonTerminalType:    map[string]EntryID{},
		vectorTyped:        map[string]bool{},
		optionTyped:        map[string]bool{},
	}
}

// Synthesize runs the full type-synthesis pipeline: per-non-terminal type
// assignment, the AST sum type, cycle-breaking, action-signature synthesis,
// and finally lifetime propagation (run last so it also resolves the
// entries action-signature synthesis adds).
func (s *Synthesizer) Synthesize() (*Artifacts, error) {
	s.tokenType = s.table.Insert(Entry{Kind: KindToken, Name: "Token", Inner: NoEntry, Production: NoProduction})

	// Pass 1: reserve one entry id per non-terminal so forward references
	// (a field naming a non-terminal processed later) resolve immediately.
	for _, nt := range s.g.NonTerminals() {
		id := s.table.Insert(Entry{Kind: KindStruct, Name: nt, NonTerminal: nt, Inner: NoEntry, Production: NoProduction})
		s.nonTerminalType[nt] = id
	}

	// Pass 2: fill in each non-terminal's real shape.
	for _, rule := range s.g.RulesByLHS() {
		if err := s.synthesizeRule(rule); err != nil {
			return nil, err
		}
	}

	astType := s.synthesizeASTEnum()

	if err := BreakCycles(s.table, s.nonTerminalType); err != nil {
		return nil, err
	}

	actions, semantic := s.synthesizeActions()

	// Lifetime propagation runs last: the function/clipped/ref entries
	// synthesizeActions just inserted need their HasLifetime resolved too
	// (spec.md §6 "resolved lifetimes"), not just the struct/enum/vec/option
	// entries from the earlier passes.
	PropagateLifetimes(s.table)

	return &Artifacts{
		Table:           s.table,
		NonTerminalType: s.nonTerminalType,
		VectorTyped:     s.vectorTyped,
		OptionTyped:     s.optionTyped,
		TokenType:       s.tokenType,
		ASTType:         astType,
		Actions:         actions,
		SemanticActions: semantic,
	}, nil
}

func (s *Synthesizer) synthesizeRule(rule grammar.Rule) error {
	id := s.nonTerminalType[rule.NonTerminal]

	switch {
	case len(rule.Productions) == 1 && rule.Productions[0].Attr == grammar.ProdNone:
		s.synthesizeStructRule(id, rule.NonTerminal, rule.Productions[0])

	case isCollectionPair(rule.Productions):
		return s.synthesizeCollectionRule(id, rule.NonTerminal, rule.Productions)

	case isOptionPair(rule.Productions):
		s.synthesizeOptionRule(id, rule.NonTerminal, rule.Productions)

	default:
		s.synthesizeEnumRule(id, rule.NonTerminal, rule.Productions)
	}

	return nil
}

func isCollectionPair(prods []grammar.Production) bool {
	if len(prods) != 2 {
		return false
	}
	a, b := prods[0].Attr, prods[1].Attr
	return (a == grammar.ProdCollectionStart && b == grammar.ProdAddToCollection) ||
		(a == grammar.ProdAddToCollection && b == grammar.ProdCollectionStart)
}

func isOptionPair(prods []grammar.Production) bool {
	if len(prods) != 2 {
		return false
	}
	a, b := prods[0].Attr, prods[1].Attr
	return (a == grammar.ProdOptionalSome && b == grammar.ProdOptionalNone) ||
		(a == grammar.ProdOptionalNone && b == grammar.ProdOptionalSome)
}

// synthesizeStructRule fills id with a struct entry for the lone
// alternative of a non-recursive non-terminal (spec.md §4.7 "one
// alternative, attribute = none").
func (s *Synthesizer) synthesizeStructRule(id EntryID, nt string, p grammar.Production) {
	s.table.Set(Entry{
		ID:          id,
		Kind:        KindStruct,
		Name:        nt,
		Members:     s.fieldsFor(p, nt),
		Inner:       NoEntry,
		NonTerminal: nt,
		Production:  p.Index,
	})
}

// fieldsFor builds struct members for production p's RHS, skipping
// scanner-switch directives and clipped symbols, mapping a terminal to a
// token field and a non-terminal to its own synthesized type. A field whose
// type is the enclosing non-terminal itself is always boxed; any other
// non-terminal field is inlined when MinimizeBoxedTypes is set (leaving
// longer cycles to BreakCycles) and boxed otherwise.
func (s *Synthesizer) fieldsFor(p grammar.Production, owner string) []Member {
	counts := map[string]int{}
	members := make([]Member, 0, len(p.RHS))

	for _, sym := range p.RHS {
		if sym.Kind == grammar.SymbolScannerDirective || sym.Attr == grammar.SymClipped {
			continue
		}

		name := fieldName(sym.Name, counts)

		var typeID EntryID
		switch sym.Kind {
		case grammar.SymbolTerminal:
			typeID = s.tokenType
		default:
			inner := s.nonTerminalType[sym.Name]
			switch {
			case sym.Name == owner:
				// Always boxed: an inlined direct self-reference would be an
				// infinite-size type regardless of MinimizeBoxedTypes.
				typeID = s.boxOf(inner, sym.Name)
			case s.MinimizeBoxedTypes:
				typeID = inner
			default:
				typeID = s.boxOf(inner, sym.Name)
			}
		}

		members = append(members, Member{Name: name, Type: typeID})
	}

	return members
}

// boxOf inserts a fresh box entry wrapping inner, named after the field it
// shields (spec.md §4.7: boxed "iff the field type equals N", or, when
// MinimizeBoxedTypes is off, for every nested non-terminal field).
func (s *Synthesizer) boxOf(inner EntryID, fieldName string) EntryID {
	return s.table.Insert(Entry{Kind: KindBox, Name: fieldName + "Box", Inner: inner, Production: NoProduction})
}

func fieldName(symName string, counts map[string]int) string {
	counts[symName]++
	if counts[symName] == 1 {
		return lowerFirst(symName)
	}
	return fmt.Sprintf("%s%d", lowerFirst(symName), counts[symName])
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// synthesizeCollectionRule handles the two-alternative
// {collection-start, add-to-collection} shape (spec.md §4.7): the
// add-to-collection production's self-reference to nt is stripped (from
// whichever end it occurs, since the recursion can be left- or
// right-handed depending on parser family) and the remaining fields become
// the element struct; nt itself is recorded as vector-typed, wrapping that
// element struct externally.
func (s *Synthesizer) synthesizeCollectionRule(id EntryID, nt string, prods []grammar.Production) error {
	var addTo grammar.Production
	found := false
	for _, p := range prods {
		if p.Attr == grammar.ProdAddToCollection {
			addTo = p
			found = true
		}
	}
	if !found {
		return fmt.Errorf("typesynth: %q has no add-to-collection alternative", nt)
	}

	stripped := stripSelfReference(addTo.RHS, nt)
	elementProd := addTo
	elementProd.RHS = stripped

	elementID := s.table.Insert(Entry{
		Kind:        KindStruct,
		Name:        nt + "Item",
		Members:     s.fieldsFor(elementProd, nt),
		Inner:       NoEntry,
		NonTerminal: nt,
		Production:  NoProduction,
	})

	s.table.Set(Entry{
		ID:          id,
		Kind:        KindVec,
		Name:        nt,
		Inner:       elementID,
		NonTerminal: nt,
		Production:  NoProduction,
	})
	s.vectorTyped[nt] = true
	return nil
}

func stripSelfReference(rhs []grammar.Symbol, nt string) []grammar.Symbol {
	if len(rhs) == 0 {
		return rhs
	}
	if rhs[0].Kind == grammar.SymbolNonTerminal && rhs[0].Name == nt {
		return rhs[1:]
	}
	if last := len(rhs) - 1; rhs[last].Kind == grammar.SymbolNonTerminal && rhs[last].Name == nt {
		return rhs[:last]
	}
	return rhs
}

// synthesizeOptionRule handles the two-alternative
// {optional-some, optional-none} shape: nt is recorded as option-typed,
// wrapping a struct built from the "some" arm's fields.
func (s *Synthesizer) synthesizeOptionRule(id EntryID, nt string, prods []grammar.Production) {
	var some grammar.Production
	for _, p := range prods {
		if p.Attr == grammar.ProdOptionalSome {
			some = p
		}
	}

	innerID := s.table.Insert(Entry{
		Kind:        KindStruct,
		Name:        nt + "Some",
		Members:     s.fieldsFor(some, nt),
		Inner:       NoEntry,
		NonTerminal: nt,
		Production:  some.Index,
	})

	s.table.Set(Entry{
		ID:          id,
		Kind:        KindOption,
		Name:        nt,
		Inner:       innerID,
		NonTerminal: nt,
		Production:  NoProduction,
	})
	s.optionTyped[nt] = true
}

// synthesizeEnumRule handles every non-terminal that doesn't match one of
// the three special shapes above: one enum variant per alternative,
// wrapping a freshly-synthesized per-production struct (spec.md §4.7
// "otherwise").
func (s *Synthesizer) synthesizeEnumRule(id EntryID, nt string, prods []grammar.Production) {
	variants := make([]Member, 0, len(prods))

	for _, p := range prods {
		variantName := nt + alternativeSignature(p)
		structID := s.table.Insert(Entry{
			Kind:        KindStruct,
			Name:        variantName,
			Members:     s.fieldsFor(p, nt),
			Inner:       NoEntry,
			NonTerminal: nt,
			Production:  p.Index,
		})

		variantID := s.table.Insert(Entry{
			Kind:        KindEnumVariant,
			Name:        variantName,
			Inner:       structID,
			NonTerminal: nt,
			Production:  p.Index,
		})

		variants = append(variants, Member{Name: variantName, Type: variantID})
	}

	s.table.Set(Entry{
		ID:          id,
		Kind:        KindEnum,
		Name:        nt,
		Members:     variants,
		Inner:       NoEntry,
		NonTerminal: nt,
		Production:  NoProduction,
	})
}

// alternativeSignature names a per-production struct from its RHS shape:
// "<Sym1><Sym2>..." with each symbol capitalized, or "Empty" for an empty
// RHS (spec.md §4.7 "<NonTerminal>Empty for an empty RHS").
func alternativeSignature(p grammar.Production) string {
	if p.IsEpsilon() {
		return "Empty"
	}
	var b strings.Builder
	for _, sym := range p.RHS {
		if sym.Kind == grammar.SymbolScannerDirective {
			continue
		}
		b.WriteString(upperFirst(sanitize(sym.Name)))
	}
	if b.Len() == 0 {
		return "Empty"
	}
	return b.String()
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Sym"
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// synthesizeASTEnum builds the top-level AST sum type, one variant per
// non-terminal, wrapped in vec/option as recorded by the rule passes
// (spec.md §4.7 "a top-level AST sum type is synthesized with one variant
// per non-terminal, wrapped in vec/option as recorded").
func (s *Synthesizer) synthesizeASTEnum() EntryID {
	nts := s.g.NonTerminals()
	sort.Strings(nts)

	variants := make([]Member, 0, len(nts))
	for _, nt := range nts {
		variants = append(variants, Member{Name: nt, Type: s.nonTerminalType[nt]})
	}

	return s.table.Insert(Entry{
		Kind:       KindEnum,
		Name:       "ASTType",
		Members:    variants,
		Inner:      NoEntry,
		Production: NoProduction,
	})
}
