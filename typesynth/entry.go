// Package typesynth walks a transformed grammar and derives the strongly
// typed AST shape from production structure (spec.md §4.7): a product type
// (struct) or sum type (enum) per non-terminal, option/repetition lifting,
// cycle-breaking through box indirection, lifetime propagation, and
// per-production action-adapter signatures.
//
// It is grounded on the original Rust implementation's
// generators/grammar_type_generator.rs (GrammarTypeInfo / SymbolTable /
// TypeEntrails), re-expressed in the teacher's style: a flat entry table
// owned by one synthesizer, mutated only by sequential fixed-point passes,
// the same shape as internal/ictiobus/grammar's fixed-point
// nullability/productivity passes that package grammar already carries.
package typesynth

import "fmt"

// EntryKind is the kind of one symbol-table entry (spec.md §3 "Symbol table
// entry (type synthesis)").
type EntryKind int

const (
	KindStruct EntryKind = iota
	KindEnum
	KindEnumVariant
	KindToken
	KindBox
	KindRef
	KindVec
	KindOption
	KindClipped
	KindUserDefined
	KindTrait
	KindFunction
)

func (k EntryKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindEnumVariant:
		return "enum-variant"
	case KindToken:
		return "token"
	case KindBox:
		return "box"
	case KindRef:
		return "ref"
	case KindVec:
		return "vec"
	case KindOption:
		return "option"
	case KindClipped:
		return "clipped"
	case KindUserDefined:
		return "user-defined"
	case KindTrait:
		return "trait"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// EntryID identifies an Entry within a SymbolTable. Ids are assigned from 0
// in insertion order; NoEntry (-1) never names a valid entry and stands for
// "no inner type".
type EntryID int

const NoEntry EntryID = -1

// Member is one field of a struct/enum-variant entry, or one argument of a
// function entry.
type Member struct {
	Name string
	Type EntryID

	// HasLifetime mirrors Entry.HasLifetime for the member's own type.
	// PropagateLifetimes reads the table entries, not this flag, and sets
	// the flag once every entry's own HasLifetime is final.
	HasLifetime bool
}

// Entry is one symbol-table entry: a struct, enum, variant, token, one of
// the indirection wrappers (box/ref/vec/option/clipped), a user-defined
// type reference, a trait, or a function (spec.md §3).
type Entry struct {
	ID   EntryID
	Kind EntryKind
	Name string

	// Members holds struct fields, enum variants (as KindEnumVariant
	// members), or function arguments, in declaration order.
	Members []Member

	// Inner is the wrapped type for box/ref/vec/option/clipped/enum-variant
	// entries and the result type (the LHS non-terminal's type) for a
	// per-production action function; NoEntry for struct/enum/token/trait
	// and for a per-non-terminal semantic-action function.
	Inner EntryID

	// NonTerminal is the grammar non-terminal this entry was synthesized
	// for, empty for entries with no grammar origin (tokens, traits, the
	// fixed adapter scaffolding).
	NonTerminal string

	// Production is the originating production index for an
	// enum-variant/struct entry synthesized from one alternative, or
	// NoProduction if the entry spans more than one (an enum, the AST sum
	// type, Vec/Option wrappers).
	Production int

	HasLifetime bool
}

const NoProduction = -1

// SymbolTable is the synthesizer's exclusively-owned entry table (spec.md
// §5 "the symbol table for type synthesis is exclusively owned by the
// synthesizer; all mutation is sequential").
type SymbolTable struct {
	entries []Entry
	byName  map[string]EntryID
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: map[string]EntryID{}}
}

// Insert appends a new entry, assigning it the next EntryID, and returns
// that id. Name collisions are allowed (enum-variant structs and their
// owning non-terminal's struct never share a name in practice, but nothing
// here enforces it); callers needing uniqueness check Lookup first.
func (t *SymbolTable) Insert(e Entry) EntryID {
	id := EntryID(len(t.entries))
	e.ID = id
	t.entries = append(t.entries, e)
	if e.Name != "" {
		t.byName[e.Name] = id
	}
	return id
}

// Get returns the entry for id. Panics on an out-of-range id, matching the
// teacher's convention that an invalid EntryID is an internal bug, not a
// recoverable condition.
func (t *SymbolTable) Get(id EntryID) Entry {
	if id < 0 || int(id) >= len(t.entries) {
		panic(fmt.Sprintf("typesynth: invalid entry id %d", id))
	}
	return t.entries[id]
}

// Set overwrites the entry at id.Entry.ID (used by the cycle-breaking and
// lifetime-propagation passes, which mutate entries in place).
func (t *SymbolTable) Set(e Entry) {
	t.entries[e.ID] = e
}

// Lookup returns the id registered under name, if any.
func (t *SymbolTable) Lookup(name string) (EntryID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of entries.
func (t *SymbolTable) Len() int { return len(t.entries) }

// All returns every entry, in insertion order.
func (t *SymbolTable) All() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
