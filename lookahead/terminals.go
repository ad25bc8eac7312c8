// Package lookahead implements the k-tuple algebra of spec.md §4.3: a
// bit-packed fixed-width sequence of terminal indices (Terminals/KTuple),
// and the trie-of-tuples set (KTuples) that supports union, intersection,
// disjointness, and the bounded-concatenation operation (⊙_k) central to
// FIRST_k/FOLLOW_k computation.
//
// It is grounded on the teacher's use of fixed-shape value types throughout
// internal/ictiobus/automaton (DFA/NFA states keyed by small comparable
// values) and on the trie shape of other_examples' levtrie package (a
// map-of-children node with a leaf marker), generalized here to a
// bit-packed 128-bit word per spec.md's explicit wire format instead of a
// byte/rune trie.
package lookahead

import (
	"fmt"
	"strings"

	"github.com/jsinger67/parol-sub000/pgerrors"
)

// MaxK is the hard ceiling on lookahead length (spec.md GLOSSARY, §8).
const MaxK = 10

// maxBitsPerSlot is floor(128/MAX_K): the widest a single terminal-index
// slot can be while still fitting MAX_K of them in the low 120 bits.
const maxBitsPerSlot = 128 / MaxK

// CompiledTerminal is a single terminal index as stored in one slot of a
// Terminals value. EpsilonValue and InvalidValue are computed relative to a
// given bit width and share the value space with ordinary indices while
// remaining distinguishable from them (spec.md §3, Compiled terminal).
type CompiledTerminal uint16

// EndOfInput is the reserved terminal index for end-of-input (spec.md §6).
// A tuple whose last slot holds this value is k-complete regardless of its
// length.
const EndOfInput CompiledTerminal = 0

func slotMask(bits int) uint64 {
	return uint64(1)<<uint(bits) - 1
}

// Epsilon returns the sentinel value representing the empty string at the
// given bit width: the all-ones bit pattern of that width (spec.md §3,
// invariant I4).
func Epsilon(bits int) CompiledTerminal {
	return CompiledTerminal(slotMask(bits))
}

// Invalid returns the sentinel value one below Epsilon at the given bit
// width (spec.md §3 Compiled terminal: "EPS = MAX and INVALID = MAX-1").
func Invalid(bits int) CompiledTerminal {
	return CompiledTerminal(slotMask(bits) - 1)
}

// BitsFor computes bits(max_index) = ceil(log2(max_index+1)), refusing any
// value that would exceed the 12-bit-per-slot cap (spec.md §4.3).
func BitsFor(maxTerminalIndex int) (int, error) {
	if maxTerminalIndex < 0 {
		maxTerminalIndex = 0
	}
	n := maxTerminalIndex + 1
	bits := 0
	for (1 << uint(bits)) < n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	if bits > maxBitsPerSlot {
		return 0, &pgerrors.KTupleOverflowError{
			Reason: fmt.Sprintf("max_terminal_index=%d requires %d bits per slot, exceeds the %d-bit cap", maxTerminalIndex, bits, maxBitsPerSlot),
		}
	}
	return bits, nil
}

// Terminals is a bit-packed sequence of up to MAX_K compiled terminals,
// packed into a 128-bit word: the low 120 bits hold the sequence (each slot
// `bits` wide), the high 8 bits split into `bits` (4 bits) and `len` (4
// bits) (spec.md §3).
//
// Terminals is a value type; all operations on it return new values rather
// than mutating in place (the owning KTuples trie is what gets mutated
// during solver iteration, per spec.md §5).
type Terminals struct {
	lo uint64 // bits 0..63
	hi uint64 // bits 64..127
}

// New returns the empty Terminals sequence at the given bit width.
func New(bits int) (Terminals, error) {
	if bits <= 0 || bits > maxBitsPerSlot {
		return Terminals{}, &pgerrors.KTupleOverflowError{Reason: fmt.Sprintf("invalid slot width %d", bits)}
	}
	var t Terminals
	t.setHighByte(bits, 0)
	return t, nil
}

// EpsilonTuple returns the one-slot tuple holding the epsilon sentinel
// (spec.md §3 invariant I4: a KTuple with len==1 whose sole slot equals the
// bit-mask is the epsilon tuple).
func EpsilonTuple(bits int) Terminals {
	t, _ := New(bits)
	t.lo = uint64(Epsilon(bits))
	t.setHighByte(bits, 1)
	return t
}

func (t Terminals) highByte() uint64 {
	return t.hi >> 56
}

func (t Terminals) Bits() int {
	return int(t.highByte() >> 4)
}

func (t Terminals) Len() int {
	return int(t.highByte() & 0xF)
}

func (t *Terminals) setHighByte(bits, length int) {
	hb := uint64(bits&0xF)<<4 | uint64(length&0xF)
	t.hi = (t.hi & (uint64(1)<<56 - 1)) | (hb << 56)
}

func (t *Terminals) setLen(length int) {
	t.setHighByte(t.Bits(), length)
}

// get128 reads width bits starting at bit offset start (0 = LSB) across the
// lo/hi word pair.
func get128(lo, hi uint64, start, width int) uint64 {
	mask := uint64(1)<<uint(width) - 1
	if start >= 64 {
		return (hi >> uint(start-64)) & mask
	}
	if start+width <= 64 {
		return (lo >> uint(start)) & mask
	}
	lowBits := 64 - start
	lowPart := lo >> uint(start)
	highPart := hi & (uint64(1)<<uint(width-lowBits) - 1)
	return (lowPart & (uint64(1)<<uint(lowBits) - 1)) | (highPart << uint(lowBits))
}

func set128(lo, hi *uint64, start, width int, value uint64) {
	mask := uint64(1)<<uint(width) - 1
	value &= mask
	if start >= 64 {
		s := uint(start - 64)
		*hi &^= mask << s
		*hi |= value << s
		return
	}
	if start+width <= 64 {
		*lo &^= mask << uint(start)
		*lo |= value << uint(start)
		return
	}
	lowBits := 64 - start
	lowMask := uint64(1)<<uint(lowBits) - 1
	*lo &^= lowMask << uint(start)
	*lo |= (value & lowMask) << uint(start)
	highBits := width - lowBits
	highMask := uint64(1)<<uint(highBits) - 1
	*hi &^= highMask
	*hi |= value >> uint(lowBits)
}

// Get returns the compiled terminal stored in slot i (0-indexed). Panics if
// i is out of [0, Len()).
func (t Terminals) Get(i int) CompiledTerminal {
	if i < 0 || i >= t.Len() {
		panic(fmt.Sprintf("slot %d out of range for Terminals of length %d", i, t.Len()))
	}
	bits := t.Bits()
	return CompiledTerminal(get128(t.lo, t.hi, i*bits, bits))
}

// IsEpsilon returns whether this is the single-slot epsilon tuple
// (spec.md §3 invariant I4).
func (t Terminals) IsEpsilon() bool {
	return t.Len() == 1 && t.Get(0) == Epsilon(t.Bits())
}

// Push appends term to the next free slot. It is a no-op if the last slot
// already holds EndOfInput (the tuple cannot be extended past it), and
// fails with KTupleOverflowError if the tuple is already at MAX_K
// (spec.md §4.3).
func (t Terminals) Push(term CompiledTerminal) (Terminals, error) {
	n := t.Len()
	if n > 0 && t.Get(n-1) == EndOfInput {
		return t, nil
	}
	if n == MaxK {
		return t, &pgerrors.KTupleOverflowError{Reason: "push onto a tuple already at MAX_K"}
	}
	bits := t.Bits()
	set128(&t.lo, &t.hi, n*bits, bits, uint64(term))
	t.setLen(n + 1)
	return t, nil
}

// KLen returns min(Len(), k), stopping early if end-of-input is seen
// (spec.md §4.3).
func (t Terminals) KLen(k int) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if n >= k {
			break
		}
		n++
		if t.Get(i) == EndOfInput {
			break
		}
	}
	return n
}

// IsKComplete returns whether the tuple cannot be extended to contribute
// more to a length-k string: it is not epsilon, and either its length has
// reached k or its last symbol is end-of-input (spec.md §4.3, §8).
func (t Terminals) IsKComplete(k int) bool {
	if t.IsEpsilon() {
		return false
	}
	n := t.Len()
	return n >= k || (n > 0 && t.Get(n-1) == EndOfInput)
}

// ConcatK is the bounded concatenation w_a . w_b, truncated to length k
// (spec.md §4.3, the central operation of the k-tuple algebra):
//
//	w . ε = w; ε . w = w.
//	If a is already k-complete, the result is a unchanged.
//	Otherwise the first (k - a.KLen(k)) slots of b are copied onto a's tail.
func ConcatK(a, b Terminals, k int) Terminals {
	if b.IsEpsilon() {
		return a
	}
	if a.IsEpsilon() {
		return Terminals_of(b, k)
	}
	if a.IsKComplete(k) {
		return a
	}

	toTake := b.KLen(k - a.KLen(k))
	result := a
	for i := 0; i < toTake; i++ {
		var err error
		result, err = result.Push(b.Get(i))
		if err != nil {
			// k <= MAX_K is guaranteed by callers (LookaheadTooLargeError
			// is rejected at entry), so MAX_K can never be exceeded here.
			break
		}
	}
	return result
}

// Terminals_of truncates other to its first k slots, matching the
// reference implementation's Terminals::of used to re-lift a cached FIRST_k
// result to a new target k.
func Terminals_of(other Terminals, k int) Terminals {
	n := other.KLen(k)
	result, _ := New(other.Bits())
	for i := 0; i < n; i++ {
		result, _ = result.Push(other.Get(i))
	}
	return result
}

// Compare orders two Terminals first by length, then by the numeric value
// of their slots (spec.md §3: "ordering is (len, numeric value)").
func (t Terminals) Compare(o Terminals) int {
	if t.Len() != o.Len() {
		if t.Len() < o.Len() {
			return -1
		}
		return 1
	}
	for i := 0; i < t.Len(); i++ {
		a, b := t.Get(i), o.Get(i)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (t Terminals) Equal(o Terminals) bool {
	return t.lo == o.lo && t.hi == o.hi
}

func (t Terminals) String() string {
	var sb strings.Builder
	sb.WriteRune('[')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			sb.WriteRune(' ')
		}
		v := t.Get(i)
		if v == Epsilon(t.Bits()) {
			sb.WriteString("ε")
		} else {
			fmt.Fprintf(&sb, "%d", v)
		}
	}
	sb.WriteRune(']')
	return sb.String()
}

// KTuple is a Terminals payload together with its target length k and a
// complete/incomplete flag, computed once at construction time
// (spec.md §3).
type KTuple struct {
	Terminals Terminals
	K         int
	Complete  bool
}

// NewKTuple wraps t for target length k, computing the completeness flag.
func NewKTuple(t Terminals, k int) KTuple {
	return KTuple{Terminals: t, K: k, Complete: t.IsKComplete(k)}
}

func (kt KTuple) String() string {
	return fmt.Sprintf("%s@%d", kt.Terminals.String(), kt.K)
}
