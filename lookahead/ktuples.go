package lookahead

import (
	"fmt"
	"sort"

	"github.com/jsinger67/parol-sub000/pgerrors"
)

// ktrieNode is one node of the tuple trie, keyed by compiled terminal index
// at each level (grounded on other_examples' levtrie node{child, data}
// shape, generalized from a rune key to a CompiledTerminal key).
type ktrieNode struct {
	children map[CompiledTerminal]*ktrieNode
	isEnd    bool
	// production is the production index this tuple supports, or -1 if the
	// set is unannotated (spec.md §4.6: lookahead DFA construction consumes
	// KTuples annotated with the production number each tuple supports).
	production int
}

func newKtrieNode() *ktrieNode {
	return &ktrieNode{children: map[CompiledTerminal]*ktrieNode{}, production: -1}
}

// KTuples is a set of k-tuples stored as a trie over terminal indices. It
// carries the bit width derived from max_terminal_index, the target k, and
// a cached all-complete flag so that concat_k can become a no-op once every
// member is already k-complete (spec.md §3, §4.3).
type KTuples struct {
	root        *ktrieNode
	bits        int
	k           int
	allComplete bool
	size        int
}

// NewKTuples allocates an empty set for the given max terminal index and
// target k.
func NewKTuples(maxTerminalIndex, k int) (*KTuples, error) {
	bits, err := BitsFor(maxTerminalIndex)
	if err != nil {
		return nil, err
	}
	return &KTuples{root: newKtrieNode(), bits: bits, k: k, allComplete: true}, nil
}

// NewKTuplesWithBits allocates an empty set at an already-computed slot
// width (as returned by BitsFor), for callers such as package analysis that
// size their bit width once per solver and reuse it across many sets rather
// than re-deriving it from a max terminal index each time.
func NewKTuplesWithBits(bits, k int) (*KTuples, error) {
	if bits <= 0 || bits > maxBitsPerSlot {
		return nil, &pgerrors.KTupleOverflowError{Reason: fmt.Sprintf("invalid slot width %d", bits)}
	}
	return &KTuples{root: newKtrieNode(), bits: bits, k: k, allComplete: true}, nil
}

func (s *KTuples) Bits() int { return s.bits }
func (s *KTuples) K() int    { return s.k }
func (s *KTuples) Len() int  { return s.size }
func (s *KTuples) Empty() bool { return s.size == 0 }

// AllComplete reports the cached flag: true iff every member tuple is
// k-complete for this set's k.
func (s *KTuples) AllComplete() bool { return s.allComplete }

// Insert adds t to the set, returning true if it was not already present.
func (s *KTuples) Insert(t Terminals) bool {
	return s.insertAnnotated(t, -1)
}

// InsertAnnotated adds t to the set tagged with the production index it
// supports (spec.md §4.6).
func (s *KTuples) InsertAnnotated(t Terminals, production int) bool {
	return s.insertAnnotated(t, production)
}

func (s *KTuples) insertAnnotated(t Terminals, production int) bool {
	n := newTupleWalker(s.root)
	for i := 0; i < t.Len(); i++ {
		n = n.step(t.Get(i))
	}
	isNew := !n.isEnd
	n.isEnd = true
	if production >= 0 {
		n.production = production
	}
	if isNew {
		s.size++
		if !t.IsKComplete(s.k) {
			s.allComplete = false
		}
	}
	return isNew
}

func newTupleWalker(root *ktrieNode) *ktrieNode { return root }

func (n *ktrieNode) step(sym CompiledTerminal) *ktrieNode {
	child, ok := n.children[sym]
	if !ok {
		child = newKtrieNode()
		n.children[sym] = child
	}
	return child
}

type annotatedTuple struct {
	t          Terminals
	production int
}

// collect walks the full trie, rebuilding each member Terminals value from
// the path of slot symbols traversed to reach it.
func (s *KTuples) collect() []annotatedTuple {
	var out []annotatedTuple
	var walk func(n *ktrieNode, path []CompiledTerminal)
	walk = func(n *ktrieNode, path []CompiledTerminal) {
		if n.isEnd {
			t, _ := New(s.bits)
			for _, sym := range path {
				t, _ = t.Push(sym)
			}
			out = append(out, annotatedTuple{t: t, production: n.production})
		}
		for sym, child := range n.children {
			walk(child, append(path, sym))
		}
	}
	walk(s.root, nil)
	return out
}

// Elements returns the set's members as KTuple values, sorted per spec.md
// §3 ordering (len, then numeric value of slots).
func (s *KTuples) Elements() []KTuple {
	tuples := s.collect()
	out := make([]KTuple, len(tuples))
	for i, at := range tuples {
		out[i] = NewKTuple(at.t, s.k)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Terminals.Compare(out[j].Terminals) < 0
	})
	return out
}

// AnnotatedKTuple pairs a KTuple with the production index it supports (-1
// if unannotated).
type AnnotatedKTuple struct {
	KTuple
	Production int
}

// AnnotatedElements is Elements but preserving each member's production
// annotation, used to re-lift a FIRST_{k-1} result to a new target k
// without losing which production each tuple supports (spec.md §4.4).
func (s *KTuples) AnnotatedElements() []AnnotatedKTuple {
	tuples := s.collect()
	out := make([]AnnotatedKTuple, len(tuples))
	for i, at := range tuples {
		out[i] = AnnotatedKTuple{KTuple: NewKTuple(at.t, s.k), Production: at.production}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Terminals.Compare(out[j].Terminals) < 0
	})
	return out
}

// Has reports whether t is a member of the set.
func (s *KTuples) Has(t Terminals) bool {
	n := s.root
	for i := 0; i < t.Len(); i++ {
		child, ok := n.children[t.Get(i)]
		if !ok {
			return false
		}
		n = child
	}
	return n.isEnd
}

// Union returns a new set containing the members of both s and other, and a
// "changed" flag reporting whether other contributed any tuple not already
// in s (spec.md §4.3: solvers use this to detect fixed-point convergence).
// Their bits and k must match.
func (s *KTuples) Union(other *KTuples) (*KTuples, bool) {
	result, _ := NewKTuples(0, s.k)
	result.bits = s.bits
	for _, at := range s.collect() {
		result.insertAnnotated(at.t, at.production)
	}
	changed := false
	for _, at := range other.collect() {
		if !result.Has(at.t) {
			changed = true
		}
		result.insertAnnotated(at.t, at.production)
	}
	return result, changed
}

// Intersection returns a new set containing only the tuples present in both
// s and other (production annotation taken from s), and a "changed" flag
// reporting whether the intersection is a strict subset of s.
func (s *KTuples) Intersection(other *KTuples) (*KTuples, bool) {
	result, _ := NewKTuples(0, s.k)
	result.bits = s.bits
	for _, at := range s.collect() {
		if other.Has(at.t) {
			result.insertAnnotated(at.t, at.production)
		}
	}
	return result, result.size != s.size
}

// DisjointWith reports whether s and other share no member tuple
// (spec.md §4.5 uses this to test T_i vs T_j for k-decision conflicts).
func (s *KTuples) DisjointWith(other *KTuples) bool {
	small, big := s, other
	if big.size < small.size {
		small, big = big, small
	}
	for _, at := range small.collect() {
		if big.Has(at.t) {
			return false
		}
	}
	return true
}

// ConcatK computes s ⊙_k other: every incomplete tuple in s is
// cross-concatenated with every tuple in other and the result re-inserted
// (preserving s's production annotation on the result); tuples already
// k-complete in s are carried through unchanged. If s.AllComplete() is
// already true, the result is a copy of s (spec.md §4.3, §4.4).
func (s *KTuples) ConcatK(other *KTuples) *KTuples {
	result, _ := NewKTuples(0, s.k)
	result.bits = s.bits

	if s.allComplete {
		for _, at := range s.collect() {
			result.insertAnnotated(at.t, at.production)
		}
		return result
	}

	otherTuples := other.collect()
	for _, at := range s.collect() {
		if at.t.IsKComplete(s.k) {
			result.insertAnnotated(at.t, at.production)
			continue
		}
		for _, bt := range otherTuples {
			concatenated := ConcatK(at.t, bt.t, s.k)
			result.insertAnnotated(concatenated, at.production)
		}
	}
	return result
}

// Annotations returns the distinct production indices carried by members of
// the set (unannotated members, production == -1, are excluded).
func (s *KTuples) Annotations() []int {
	seen := map[int]bool{}
	for _, at := range s.collect() {
		if at.production >= 0 {
			seen[at.production] = true
		}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
