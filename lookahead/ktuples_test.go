package lookahead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tup(bits int, syms ...CompiledTerminal) Terminals {
	t, _ := New(bits)
	for _, s := range syms {
		t, _ = t.Push(s)
	}
	return t
}

func Test_KTuples_InsertAndHas(t *testing.T) {
	assert := assert.New(t)

	set, err := NewKTuples(10, 2)
	assert.NoError(err)

	added := set.Insert(tup(set.Bits(), 3, 4))
	assert.True(added)
	assert.True(set.Has(tup(set.Bits(), 3, 4)))
	assert.False(set.Has(tup(set.Bits(), 3, 5)))

	addedAgain := set.Insert(tup(set.Bits(), 3, 4))
	assert.False(addedAgain)
	assert.Equal(1, set.Len())
}

func Test_KTuples_Union(t *testing.T) {
	assert := assert.New(t)

	a, _ := NewKTuples(10, 2)
	a.Insert(tup(a.Bits(), 1))
	b, _ := NewKTuples(10, 2)
	b.Insert(tup(b.Bits(), 2))

	u, changed := a.Union(b)
	assert.True(changed)
	assert.Equal(2, u.Len())
	assert.True(u.Has(tup(u.Bits(), 1)))
	assert.True(u.Has(tup(u.Bits(), 2)))
}

func Test_KTuples_Intersection(t *testing.T) {
	assert := assert.New(t)

	a, _ := NewKTuples(10, 2)
	a.Insert(tup(a.Bits(), 1))
	a.Insert(tup(a.Bits(), 2))

	b, _ := NewKTuples(10, 2)
	b.Insert(tup(b.Bits(), 2))
	b.Insert(tup(b.Bits(), 3))

	i, changed := a.Intersection(b)
	assert.Equal(1, i.Len())
	assert.True(i.Has(tup(i.Bits(), 2)))
	assert.True(changed)
}

func Test_KTuples_DisjointWith(t *testing.T) {
	assert := assert.New(t)

	a, _ := NewKTuples(10, 2)
	a.Insert(tup(a.Bits(), 1))
	b, _ := NewKTuples(10, 2)
	b.Insert(tup(b.Bits(), 2))

	assert.True(a.DisjointWith(b))

	b.Insert(tup(b.Bits(), 1))
	assert.False(a.DisjointWith(b))
}

func Test_KTuples_ConcatK(t *testing.T) {
	assert := assert.New(t)

	x, _ := NewKTuples(10, 2)
	x.InsertAnnotated(tup(x.Bits(), 1), 0) // incomplete, k=2

	y, _ := NewKTuples(10, 2)
	y.Insert(tup(y.Bits(), 2))
	y.Insert(tup(y.Bits(), 3))

	result := x.ConcatK(y)
	assert.Equal(2, result.Len())
	assert.True(result.Has(tup(result.Bits(), 1, 2)))
	assert.True(result.Has(tup(result.Bits(), 1, 3)))
	assert.Equal([]int{0}, result.Annotations())
}

func Test_KTuples_ConcatK_identityWhenAllComplete(t *testing.T) {
	assert := assert.New(t)

	x, _ := NewKTuples(10, 2)
	x.Insert(tup(x.Bits(), 1, 2)) // already k-complete for k=2
	assert.True(x.AllComplete())

	y, _ := NewKTuples(10, 2)
	y.Insert(tup(y.Bits(), 9))

	result := x.ConcatK(y)
	assert.Equal(1, result.Len())
	assert.True(result.Has(tup(result.Bits(), 1, 2)))
}

func Test_KTuples_Elements_sortedOrder(t *testing.T) {
	assert := assert.New(t)

	set, _ := NewKTuples(10, 2)
	set.Insert(tup(set.Bits(), 5))
	set.Insert(tup(set.Bits(), 1, 1))
	set.Insert(tup(set.Bits(), 2))

	elems := set.Elements()
	if assert.Len(elems, 3) {
		assert.Equal(1, elems[0].Terminals.Len())
		assert.Equal(1, elems[1].Terminals.Len())
		assert.Equal(2, elems[2].Terminals.Len())
	}
}
