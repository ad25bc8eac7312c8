// Package pgerrors defines the error taxonomy the grammar-analysis core
// surfaces to its callers. It is grounded on the teacher's icterrors
// package (referenced throughout internal/ictiobus/parse and
// internal/ictiobus/lex but not retrieved with the rest of the corpus): a
// set of small typed error structs, each carrying enough structured data
// for a caller to build a real diagnostic instead of parsing an error
// string.
//
// Every kind here corresponds to a row of spec.md §7. Nothing in this core
// catches one of these and continues; they all propagate to the caller of
// the stage that produced them.
package pgerrors

import (
	"fmt"
	"strings"

	"github.com/jsinger67/parol-sub000/internal/util"
)

// NonProductiveError reports non-terminals that can never derive a terminal
// string.
type NonProductiveError struct {
	NonTerminals []string
}

func (e *NonProductiveError) Error() string {
	if len(e.NonTerminals) == 1 {
		return fmt.Sprintf("%s non-productive non-terminal: %s", util.ArticleFor("non-productive", true), e.NonTerminals[0])
	}
	return fmt.Sprintf("non-productive non-terminals: %s", util.MakeTextList(e.NonTerminals))
}

// UnreachableError reports non-terminals unreachable from the start symbol.
type UnreachableError struct {
	NonTerminals []string
}

func (e *UnreachableError) Error() string {
	if len(e.NonTerminals) == 1 {
		return fmt.Sprintf("%s unreachable non-terminal: %s", util.ArticleFor("unreachable", true), e.NonTerminals[0])
	}
	return fmt.Sprintf("unreachable non-terminals: %s", util.MakeTextList(e.NonTerminals))
}

// LeftRecursionError reports a cycle found in the left-recursion graph,
// together with the full witness path that demonstrates it.
type LeftRecursionError struct {
	// Witness is the cycle, e.g. []string{"A", "B", "C", "A"}.
	Witness []string
}

func (e *LeftRecursionError) Error() string {
	return fmt.Sprintf("left recursion detected: %s", strings.Join(e.Witness, " -> "))
}

// Conflict is one pairwise disjointness failure surfaced by the k-decision
// engine: two alternatives of the same non-terminal whose FIRST_k ⊙_k
// FOLLOW_k sets intersect at the attempted k.
type Conflict struct {
	NonTerminal  string
	K            int
	AltI, AltJ   int
	TupleStrI    string
	TupleStrJ    string
	Intersection string
}

// MaxKExceededError reports that the k-decision engine could not find a
// disjointness witness for some non-terminal at or below k_max.
type MaxKExceededError struct {
	NonTerminal string
	MaxK        int
	Conflicts   []Conflict
}

func (e *MaxKExceededError) Error() string {
	return fmt.Sprintf("non-terminal %q is not decidable within k_max=%d", e.NonTerminal, e.MaxK)
}

// UnionConflictError reports that unifying two per-alternative lookahead
// DFAs would collapse two accepting states with distinct production
// numbers onto the same state: the classical LL(k) conflict.
type UnionConflictError struct {
	NonTerminal  string
	State        string
	ProductionA  int
	ProductionB  int
}

func (e *UnionConflictError) Error() string {
	return fmt.Sprintf("union conflict for %q at state %q: productions %d and %d both claim the same lookahead",
		e.NonTerminal, e.State, e.ProductionA, e.ProductionB)
}

// KTupleOverflowError reports an attempt to push past MAX_K slots, or to
// encode more distinct terminal indices than the bit-packed representation's
// 12-bit slot width allows.
type KTupleOverflowError struct {
	Reason string
}

func (e *KTupleOverflowError) Error() string {
	return fmt.Sprintf("k-tuple capacity exceeded: %s", e.Reason)
}

// InvalidProductionError reports a broken internal invariant, such as a
// production index referencing beyond the production list.
type InvalidProductionError struct {
	Reason string
}

func (e *InvalidProductionError) Error() string {
	return fmt.Sprintf("invalid production: %s", e.Reason)
}

// LookaheadTooLargeError reports that the caller requested a k_max beyond
// MAX_K. Rejected at entry, before any solver state is built.
type LookaheadTooLargeError struct {
	Requested int
	MaxK      int
}

func (e *LookaheadTooLargeError) Error() string {
	return fmt.Sprintf("requested k_max=%d exceeds MAX_K=%d", e.Requested, e.MaxK)
}

// LRConflictError reports a shift/reduce or reduce/reduce conflict found
// while building an LR(1) or LALR(1) action table: two distinct actions
// both claim the same (state, terminal) cell. For LALR(1), this is also
// how a core-merge that was unsound for this grammar surfaces (spec.md §9
// "Open question: LR(1) -> LALR(1) merge policy under conflicts" — the
// specified behavior is to fail rather than silently keep one action).
type LRConflictError struct {
	State      int
	Terminal   string
	Existing   string
	Attempted  string
}

func (e *LRConflictError) Error() string {
	return fmt.Sprintf("conflict in state %d on %q: %s vs %s", e.State, e.Terminal, e.Existing, e.Attempted)
}

// CycleError reports a cycle found somewhere other than the left-recursion
// graph. It is raised only by the type-synthesis cycle breaker when it fails
// to converge within its fixed-point bound, which indicates an internal bug
// rather than a grammar defect.
type CycleError struct {
	Stage string
	Path  []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s did not converge, possible cycle: %s", e.Stage, strings.Join(e.Path, " -> "))
}
