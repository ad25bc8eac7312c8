// Package grammar holds the canonical in-memory grammar IR (spec.md §3, §6)
// and the checker/transformer (§4.1) and nullability (§4.2) passes that
// operate on it. It is grounded on the teacher's
// internal/ictiobus/grammar package: a Grammar type built from an ordered
// Production list plus a terminal table, with Rule/Production values that
// carry .String()/.Equal() the way the teacher's LR0Item/LR1Item do.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reserved terminal indices (spec.md §3, §6). User terminals begin at 5.
const (
	EndOfInput   = 0
	NewLine      = 1
	Whitespace   = 2
	LineComment  = 3
	BlockComment = 4

	FirstUserTerminalIndex = 5
)

// TerminalKind distinguishes how a terminal's literal text is matched.
type TerminalKind int

const (
	TermRaw TerminalKind = iota
	TermRegex
	TermLiteral
)

func (k TerminalKind) String() string {
	switch k {
	case TermRaw:
		return "raw"
	case TermRegex:
		return "regex"
	case TermLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// LookaheadPredicate is a positive or negative regex guard attached to a
// terminal (spec.md §3, Terminal entry).
type LookaheadPredicate struct {
	Negative bool
	Pattern  string
}

// Terminal is an entry of the terminal table (spec.md §3, §6).
type Terminal struct {
	Index         int
	Name          string
	Literal       string
	Kind          TerminalKind
	ScannerStates []string
	Lookahead     *LookaheadPredicate
	UserType      string
}

// ID returns the terminal's canonical name, NFC-normalized so that two
// grammars spelling the same literal with different Unicode forms are
// recognized as one terminal (grounded on the teacher's go.mod dependency
// on golang.org/x/text, which this core uses purely for normalization
// rather than collation since terminal names are compared for exact
// identity, not sorted by locale).
func (t Terminal) ID() string {
	return norm.NFC.String(t.Name)
}

// SymbolAttr is the hint attached to one RHS occurrence of a symbol
// (spec.md §3 Non-terminal entry, GLOSSARY "Symbol attribute").
type SymbolAttr int

const (
	SymNone SymbolAttr = iota
	SymOptional
	SymRepetitionAnchor
	SymClipped
)

// SymbolKind distinguishes what a RHS slot refers to.
type SymbolKind int

const (
	SymbolTerminal SymbolKind = iota
	SymbolNonTerminal
	SymbolScannerDirective
)

// Symbol is one slot of a production's right-hand side.
type Symbol struct {
	Kind SymbolKind
	Name string
	Attr SymbolAttr
}

func (s Symbol) String() string {
	switch s.Attr {
	case SymOptional:
		return s.Name + "?"
	case SymRepetitionAnchor:
		return s.Name + "*"
	case SymClipped:
		return "^" + s.Name
	default:
		return s.Name
	}
}

func (s Symbol) IsTerminal() bool { return s.Kind == SymbolTerminal }

// ProdAttr is the semantic hint attached to a whole production (spec.md §3
// Production entry, GLOSSARY "Production attribute"); it drives type
// synthesis in package typesynth.
type ProdAttr int

const (
	ProdNone ProdAttr = iota
	ProdCollectionStart
	ProdAddToCollection
	ProdOptionalSome
	ProdOptionalNone
)

func (a ProdAttr) String() string {
	switch a {
	case ProdCollectionStart:
		return "collection-start"
	case ProdAddToCollection:
		return "add-to-collection"
	case ProdOptionalSome:
		return "optional-some"
	case ProdOptionalNone:
		return "optional-none"
	default:
		return "none"
	}
}

// Production is one alternative of a non-terminal's rule.
type Production struct {
	LHS      string
	RHS      []Symbol
	Attr     ProdAttr
	Index    int // stable only within one pipeline run (spec.md §3)
	AltIndex int // index among the alternatives sharing LHS
}

// IsEpsilon returns whether this production's RHS is empty.
func (p Production) IsEpsilon() bool {
	return len(p.RHS) == 0
}

func (p Production) String() string {
	if p.IsEpsilon() {
		return fmt.Sprintf("%s -> ε", p.LHS)
	}
	parts := make([]string, len(p.RHS))
	for i, s := range p.RHS {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s -> %s", p.LHS, strings.Join(parts, " "))
}

func (p Production) Equal(o Production) bool {
	if p.LHS != o.LHS || len(p.RHS) != len(o.RHS) || p.Attr != o.Attr {
		return false
	}
	for i := range p.RHS {
		if p.RHS[i] != o.RHS[i] {
			return false
		}
	}
	return true
}

// Rule groups all productions sharing one left-hand-side non-terminal,
// mirroring the teacher's grammar_test.go Rule{NonTerminal, Productions}
// shape used when authoring test grammars.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Position is a (production index, symbol index) pair used as the domain of
// the FOLLOW_k equation system (spec.md §3). Symbol index 0 denotes the LHS,
// 1..n denote RHS symbols.
type Position struct {
	ProductionIndex int
	SymbolIndex     int
}

// ScannerConfig names a scanner mode and its comment/whitespace handling
// (spec.md §6 Inputs).
type ScannerConfig struct {
	Name               string
	LineComments       []string
	BlockComments      []string
	AutoSkipNewline    bool
	AutoSkipWhitespace bool
}

// Grammar is the canonical in-memory grammar IR produced by the (external)
// front-end and consumed by every stage of this core (spec.md §3, §6).
type Grammar struct {
	Start string

	// Productions is the ordered production list; indices into it are
	// stable only within one pipeline run (spec.md §3).
	Productions []Production

	terminals     map[string]Terminal
	terminalOrder []string

	nonTerminals map[string]bool

	ScannerConfigs map[string]ScannerConfig

	Title   string
	Comment string
}

// New returns an empty Grammar ready to be populated with AddTerm/AddRule.
func New() Grammar {
	return Grammar{
		terminals:      map[string]Terminal{},
		nonTerminals:   map[string]bool{},
		ScannerConfigs: map[string]ScannerConfig{},
	}
}

// AddTerm registers a terminal under id, assigning it the next available
// user index (>= FirstUserTerminalIndex) if it does not already have one.
func (g *Grammar) AddTerm(id string, t Terminal) {
	if g.terminals == nil {
		g.terminals = map[string]Terminal{}
	}
	if t.Name == "" {
		t.Name = id
	}
	if t.Index == 0 && id != "" {
		t.Index = g.nextTerminalIndex()
	}
	if _, exists := g.terminals[id]; !exists {
		g.terminalOrder = append(g.terminalOrder, id)
	}
	g.terminals[id] = t
}

func (g *Grammar) nextTerminalIndex() int {
	max := FirstUserTerminalIndex - 1
	for _, name := range g.terminalOrder {
		if g.terminals[name].Index > max {
			max = g.terminals[name].Index
		}
	}
	return max + 1
}

// AddRule appends a production with LHS nonTerm and right-hand side rhs
// (given as bare symbol names; terminal-vs-non-terminal is inferred from
// whether the name is a registered terminal, mirroring the teacher's
// lower-case-is-terminal convention from parse/ll1.go).
func (g *Grammar) AddRule(nonTerm string, rhs []string) {
	g.AddRuleAttr(nonTerm, rhs, ProdNone)
}

// AddRuleAttr is AddRule with an explicit production attribute.
func (g *Grammar) AddRuleAttr(nonTerm string, rhs []string, attr ProdAttr) {
	if g.nonTerminals == nil {
		g.nonTerminals = map[string]bool{}
	}
	g.nonTerminals[nonTerm] = true
	if g.Start == "" {
		g.Start = nonTerm
	}

	altIdx := 0
	for _, p := range g.Productions {
		if p.LHS == nonTerm {
			altIdx++
		}
	}

	syms := make([]Symbol, 0, len(rhs))
	for _, name := range rhs {
		if name == "" {
			continue
		}
		kind := SymbolNonTerminal
		if _, ok := g.terminals[name]; ok {
			kind = SymbolTerminal
		} else if strings.ToLower(name) == name && name != strings.ToUpper(name) {
			// heuristic fallback consistent with the teacher: lower-case
			// bare names that were never declared as non-terminals are
			// terminals referenced by ID before AddTerm was called.
			kind = SymbolTerminal
		}
		syms = append(syms, Symbol{Kind: kind, Name: name})
	}

	p := Production{
		LHS:      nonTerm,
		RHS:      syms,
		Attr:     attr,
		Index:    len(g.Productions),
		AltIndex: altIdx,
	}
	g.Productions = append(g.Productions, p)
}

// Term returns the terminal registered under id.
func (g Grammar) Term(id string) Terminal {
	return g.terminals[id]
}

// HasTerm returns whether id names a registered terminal.
func (g Grammar) HasTerm(id string) bool {
	_, ok := g.terminals[id]
	return ok
}

// MaxTerminalIndex returns the largest terminal index registered, or
// EndOfInput if no terminals are registered. Used by the lookahead package
// to size the bit-packed Terminals encoding (spec.md §4.3).
func (g Grammar) MaxTerminalIndex() int {
	max := EndOfInput
	for _, t := range g.terminals {
		if t.Index > max {
			max = t.Index
		}
	}
	return max
}

// Terminals returns all registered terminal IDs, in registration order.
func (g Grammar) Terminals() []string {
	out := make([]string, len(g.terminalOrder))
	copy(out, g.terminalOrder)
	return out
}

// NonTerminals returns all declared non-terminal names, alphabetically
// sorted.
func (g Grammar) NonTerminals() []string {
	names := make([]string, 0, len(g.nonTerminals))
	for nt := range g.nonTerminals {
		names = append(names, nt)
	}
	sort.Strings(names)
	return names
}

// IsNonTerminal returns whether name was declared as a non-terminal LHS.
func (g Grammar) IsNonTerminal(name string) bool {
	return g.nonTerminals[name]
}

// Rule collects every production for nonTerm into a Rule value.
func (g Grammar) Rule(nonTerm string) Rule {
	r := Rule{NonTerminal: nonTerm}
	for _, p := range g.Productions {
		if p.LHS == nonTerm {
			r.Productions = append(r.Productions, p)
		}
	}
	return r
}

// RulesByLHS groups every production by its LHS, preserving first-seen
// order of non-terminals (used by the checker and the type synthesizer,
// which both need to walk "one non-terminal at a time, alternatives in
// production order").
func (g Grammar) RulesByLHS() []Rule {
	order := []string{}
	seen := map[string]bool{}
	byLHS := map[string][]Production{}
	for _, p := range g.Productions {
		if !seen[p.LHS] {
			seen[p.LHS] = true
			order = append(order, p.LHS)
		}
		byLHS[p.LHS] = append(byLHS[p.LHS], p)
	}
	rules := make([]Rule, len(order))
	for i, nt := range order {
		rules[i] = Rule{NonTerminal: nt, Productions: byLHS[nt]}
	}
	return rules
}

// Augmented returns a copy of g with a fresh start symbol S' and one new
// production S' -> S appended at the end of the production list (spec.md
// §3 "LR(1) state"; the augmenting production is what lets the canonical
// LR(1)/LALR(1) construction recognize "accept"). The new production's
// index is returned alongside the augmented grammar.
func (g Grammar) Augmented() (Grammar, int) {
	cp := g.Copy()
	fresh := g.Start + "'"
	for cp.nonTerminals[fresh] {
		fresh += "'"
	}
	augIndex := len(cp.Productions)
	cp.Productions = append(cp.Productions, Production{
		LHS:      fresh,
		RHS:      []Symbol{{Kind: SymbolNonTerminal, Name: g.Start}},
		Index:    augIndex,
		AltIndex: 0,
	})
	cp.nonTerminals[fresh] = true
	cp.Start = fresh
	return cp, augIndex
}

// StartSymbol returns the grammar's declared start non-terminal.
func (g Grammar) StartSymbol() string {
	return g.Start
}

// Copy returns a deep-enough copy of g suitable for a transformation pass to
// mutate without affecting the caller's grammar (spec.md §4.1 contract:
// "either return a transformed IR... or fail").
func (g Grammar) Copy() Grammar {
	cp := Grammar{
		Start:          g.Start,
		Title:          g.Title,
		Comment:        g.Comment,
		terminals:      make(map[string]Terminal, len(g.terminals)),
		terminalOrder:  append([]string(nil), g.terminalOrder...),
		nonTerminals:   make(map[string]bool, len(g.nonTerminals)),
		ScannerConfigs: make(map[string]ScannerConfig, len(g.ScannerConfigs)),
		Productions:    make([]Production, len(g.Productions)),
	}
	for k, v := range g.terminals {
		cp.terminals[k] = v
	}
	for k, v := range g.nonTerminals {
		cp.nonTerminals[k] = v
	}
	for k, v := range g.ScannerConfigs {
		cp.ScannerConfigs[k] = v
	}
	for i, p := range g.Productions {
		rhs := make([]Symbol, len(p.RHS))
		copy(rhs, p.RHS)
		p.RHS = rhs
		cp.Productions[i] = p
	}
	return cp
}

// Validate performs the minimal structural sanity check required before
// running any analysis stage: a start symbol, at least one production, and
// at least one terminal.
func (g Grammar) Validate() error {
	if g.Start == "" {
		return fmt.Errorf("grammar has no start symbol")
	}
	if len(g.Productions) == 0 {
		return fmt.Errorf("grammar has no productions")
	}
	if len(g.terminals) == 0 {
		return fmt.Errorf("grammar has no terminals")
	}
	for _, p := range g.Productions {
		for _, sym := range p.RHS {
			if sym.Kind == SymbolNonTerminal && !g.nonTerminals[sym.Name] {
				return fmt.Errorf("production %s references undeclared non-terminal %q", p, sym.Name)
			}
			if sym.Kind == SymbolTerminal && !g.HasTerm(sym.Name) {
				return fmt.Errorf("production %s references undeclared terminal %q", p, sym.Name)
			}
		}
	}
	return nil
}

// renumber reassigns Production.Index/AltIndex after a transformation has
// added, removed, or reordered productions, preserving relative order of
// what remains.
func (g *Grammar) renumber() {
	altCounters := map[string]int{}
	for i := range g.Productions {
		g.Productions[i].Index = i
		lhs := g.Productions[i].LHS
		g.Productions[i].AltIndex = altCounters[lhs]
		altCounters[lhs]++
	}
}
