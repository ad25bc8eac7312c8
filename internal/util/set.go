// Package util holds small generic containers and helpers shared across the
// grammar-analysis packages: sets keyed by string (non-terminal and terminal
// names), a LIFO stack, and a few formatting helpers for diagnostic text.
package util

import (
	"fmt"
	"sort"
	"strings"
)

// ISet is the common surface shared by every set implementation in this
// package, regardless of what it stores alongside each element.
type ISet[E any] interface {
	Add(element E)
	AddAll(s2 ISet[E])
	Remove(element E)
	Has(element E) bool
	Len() int
	Elements() []E
	Copy() ISet[E]
	Equal(o any) bool
	String() string
	StringOrdered() string
	Union(s2 ISet[E]) ISet[E]
	Intersection(s2 ISet[E]) ISet[E]
	Difference(s2 ISet[E]) ISet[E]
	DisjointWith(s2 ISet[E]) bool
	Empty() bool
	Any(predicate func(v E) bool) bool
}

// VSet is a set that additionally maps each element to a stored value, such
// as a KTuples set keyed by non-terminal name.
type VSet[E any, V any] interface {
	ISet[E]

	Set(element E, data V)
	Get(element E) V
}

// SVSet is a VSet that uses strings as its element type. It holds the
// per-non-terminal FIRST_k/FOLLOW_k results; per-production KTuples sets
// are kept in a slice indexed by production and LR(1) item sets in their
// own map type.
type SVSet[V any] map[string]V

func NewSVSet[V any](of ...map[string]V) SVSet[V] {
	bs := SVSet[V](map[string]V{})
	for _, m := range of {
		for k := range m {
			bs.Set(k, m[k])
		}
	}
	return bs
}

func (s SVSet[V]) Copy() ISet[string] {
	return NewSVSet(s)
}

func (s SVSet[V]) Add(idx string) {
	var zero V
	s[idx] = zero
}

func (s SVSet[V]) Set(idx string, val V) {
	s[idx] = val
}

func (s SVSet[V]) Get(idx string) V {
	return s[idx]
}

func (s SVSet[V]) Has(idx string) bool {
	_, ok := s[idx]
	return ok
}

func (s SVSet[V]) Remove(idx string) {
	delete(s, idx)
}

func (s SVSet[V]) Len() int {
	return len(s)
}

func (s SVSet[V]) Elements() []string {
	elems := make([]string, 0, len(s))
	for k := range s {
		elems = append(elems, k)
	}
	return elems
}

func (s SVSet[V]) AddAll(s2 ISet[string]) {
	if valuedSet, isValued := s2.(VSet[string, V]); isValued {
		for _, k := range valuedSet.Elements() {
			s.Set(k, valuedSet.Get(k))
		}
	} else {
		for _, k := range s2.Elements() {
			s.Add(k)
		}
	}
}

func (s SVSet[V]) Union(s2 ISet[string]) ISet[string] {
	newSet := NewSVSet[V]()
	newSet.AddAll(s)
	newSet.AddAll(s2)
	return newSet
}

func (s SVSet[V]) Intersection(s2 ISet[string]) ISet[string] {
	newSet := NewSVSet[V]()
	for k := range s {
		if s2.Has(k) {
			newSet.Set(k, s.Get(k))
		}
	}
	return newSet
}

func (s SVSet[V]) Difference(o ISet[string]) ISet[string] {
	newSet := NewSVSet(s)
	for _, k := range o.Elements() {
		newSet.Remove(k)
	}
	return newSet
}

func (s SVSet[V]) DisjointWith(o ISet[string]) bool {
	for k := range s {
		if o.Has(k) {
			return false
		}
	}
	return true
}

func (s SVSet[V]) Empty() bool {
	return s.Len() == 0
}

func (s SVSet[V]) Any(predicate func(v string) bool) bool {
	for k := range s {
		if predicate(k) {
			return true
		}
	}
	return false
}

func (s SVSet[V]) StringOrdered() string {
	return joinOrdered(s.Elements())
}

func (s SVSet[V]) String() string {
	return joinUnordered(s.Elements())
}

func (s SVSet[V]) Equal(o any) bool {
	other, ok := asSet(o)
	if !ok {
		return false
	}
	if s.Len() != other.Len() {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// StringSet is a plain set of strings with no associated value, used for
// non-terminal name bookkeeping (the productive and reachable sets; the
// nullable set is a plain map[string]bool).
type StringSet map[string]bool

func NewStringSet(of ...map[string]bool) StringSet {
	s := StringSet{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

func StringSetOf(sl []string) StringSet {
	s := NewStringSet()
	for _, v := range sl {
		s.Add(v)
	}
	return s
}

func (s StringSet) Copy() ISet[string] {
	newS := NewStringSet()
	for k := range s {
		newS[k] = true
	}
	return newS
}

func (s StringSet) Add(value string)    { s[value] = true }
func (s StringSet) Remove(value string) { delete(s, value) }
func (s StringSet) Has(value string) bool {
	_, has := s[value]
	return has
}
func (s StringSet) Len() int { return len(s) }

func (s StringSet) Elements() []string {
	if s == nil {
		return nil
	}
	sl := make([]string, 0, len(s))
	for item := range s {
		sl = append(sl, item)
	}
	return sl
}

func (s StringSet) AddAll(s2 ISet[string]) {
	for _, element := range s2.Elements() {
		s.Add(element)
	}
}

func (s StringSet) Union(o ISet[string]) ISet[string] {
	newSet := NewStringSet()
	newSet.AddAll(s)
	newSet.AddAll(o)
	return newSet
}

func (s StringSet) Intersection(o ISet[string]) ISet[string] {
	newSet := NewStringSet()
	for k := range s {
		if o.Has(k) {
			newSet.Add(k)
		}
	}
	return newSet
}

func (s StringSet) Difference(o ISet[string]) ISet[string] {
	newSet := NewStringSet()
	newSet.AddAll(s)
	for _, k := range o.Elements() {
		newSet.Remove(k)
	}
	return newSet
}

func (s StringSet) DisjointWith(o ISet[string]) bool {
	for k := range s {
		if o.Has(k) {
			return false
		}
	}
	return true
}

func (s StringSet) Empty() bool { return s.Len() == 0 }

func (s StringSet) Any(predicate func(v string) bool) bool {
	for k := range s {
		if predicate(k) {
			return true
		}
	}
	return false
}

func (s StringSet) StringOrdered() string { return joinOrdered(s.Elements()) }
func (s StringSet) String() string        { return joinUnordered(s.Elements()) }

func (s StringSet) Equal(o any) bool {
	other, ok := asSet(o)
	if !ok {
		return false
	}
	if s.Len() != other.Len() {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func asSet(o any) (ISet[string], bool) {
	if other, ok := o.(ISet[string]); ok {
		return other, true
	}
	if otherPtr, ok := o.(*ISet[string]); ok && otherPtr != nil {
		return *otherPtr, true
	}
	return nil, false
}

func joinOrdered(elems []string) string {
	cp := make([]string, len(elems))
	copy(cp, elems)
	sort.Strings(cp)
	return "{" + strings.Join(cp, ", ") + "}"
}

func joinUnordered(elems []string) string {
	parts := make([]string, len(elems))
	for i := range elems {
		parts[i] = fmt.Sprintf("%v", elems[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// OrderedKeys returns the keys of m sorted alphabetically, for walking a map
// in a deterministic order.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
