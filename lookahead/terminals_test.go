package lookahead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BitsFor(t *testing.T) {
	assert := assert.New(t)

	bits, err := BitsFor(0)
	assert.NoError(err)
	assert.Equal(1, bits)

	bits, err = BitsFor(15)
	assert.NoError(err)
	assert.Equal(4, bits)

	bits, err = BitsFor(16)
	assert.NoError(err)
	assert.Equal(5, bits)

	_, err = BitsFor(1 << 13)
	assert.Error(err)
}

func Test_Terminals_PushAndGet(t *testing.T) {
	assert := assert.New(t)

	tt, err := New(4)
	assert.NoError(err)
	assert.Equal(0, tt.Len())

	tt, err = tt.Push(3)
	assert.NoError(err)
	tt, err = tt.Push(7)
	assert.NoError(err)
	tt, err = tt.Push(9)
	assert.NoError(err)

	assert.Equal(3, tt.Len())
	assert.Equal(CompiledTerminal(3), tt.Get(0))
	assert.Equal(CompiledTerminal(7), tt.Get(1))
	assert.Equal(CompiledTerminal(9), tt.Get(2))
}

func Test_Terminals_PushNoOpAfterEndOfInput(t *testing.T) {
	assert := assert.New(t)

	tt, _ := New(4)
	tt, _ = tt.Push(EndOfInput)
	before := tt

	tt, err := tt.Push(5)
	assert.NoError(err)
	assert.True(tt.Equal(before))
	assert.Equal(1, tt.Len())
}

func Test_Terminals_OverflowAtMaxK(t *testing.T) {
	assert := assert.New(t)

	tt, _ := New(4)
	var err error
	for i := 0; i < MaxK; i++ {
		tt, err = tt.Push(CompiledTerminal(i + 1))
		assert.NoError(err)
	}
	assert.Equal(MaxK, tt.Len())

	_, err = tt.Push(1)
	assert.Error(err)
}

func Test_Terminals_EpsilonTuple(t *testing.T) {
	assert := assert.New(t)

	eps := EpsilonTuple(4)
	assert.True(eps.IsEpsilon())
	assert.False(eps.IsKComplete(3))
}

func Test_Terminals_IsKComplete(t *testing.T) {
	assert := assert.New(t)

	bits := 4
	tt, _ := New(bits)
	tt, _ = tt.Push(1)
	tt, _ = tt.Push(2)
	assert.False(tt.IsKComplete(3))
	assert.True(tt.IsKComplete(2))

	withEOI, _ := New(bits)
	withEOI, _ = withEOI.Push(1)
	withEOI, _ = withEOI.Push(EndOfInput)
	assert.True(withEOI.IsKComplete(5))
}

func Test_ConcatK_basic(t *testing.T) {
	assert := assert.New(t)
	bits := 4

	a, _ := New(bits)
	a, _ = a.Push(1)

	b, _ := New(bits)
	b, _ = b.Push(2)
	b, _ = b.Push(3)

	result := ConcatK(a, b, 2)
	assert.Equal(2, result.Len())
	assert.Equal(CompiledTerminal(1), result.Get(0))
	assert.Equal(CompiledTerminal(2), result.Get(1))
}

func Test_ConcatK_identityOnKComplete(t *testing.T) {
	assert := assert.New(t)
	bits := 4

	a, _ := New(bits)
	a, _ = a.Push(1)
	a, _ = a.Push(2)

	b, _ := New(bits)
	b, _ = b.Push(9)

	result := ConcatK(a, b, 2)
	assert.True(result.Equal(a))
}

func Test_ConcatK_epsilonIdentities(t *testing.T) {
	assert := assert.New(t)
	bits := 4

	eps := EpsilonTuple(bits)
	w, _ := New(bits)
	w, _ = w.Push(5)

	assert.True(ConcatK(w, eps, 3).Equal(w))
	assert.True(ConcatK(eps, w, 3).Equal(w))
}

func Test_Terminals_Compare(t *testing.T) {
	assert := assert.New(t)
	bits := 4

	short, _ := New(bits)
	short, _ = short.Push(9)

	long, _ := New(bits)
	long, _ = long.Push(1)
	long, _ = long.Push(1)

	assert.True(short.Compare(long) < 0)
	assert.True(long.Compare(short) > 0)
	assert.Equal(0, short.Compare(short))
}

func Test_Terminals_HighBitWidth(t *testing.T) {
	assert := assert.New(t)
	bits := 12

	tt, err := New(bits)
	assert.NoError(err)
	tt, err = tt.Push(4095)
	assert.NoError(err)
	tt, err = tt.Push(2048)
	assert.NoError(err)

	assert.Equal(CompiledTerminal(4095), tt.Get(0))
	assert.Equal(CompiledTerminal(2048), tt.Get(1))
	assert.Equal(bits, tt.Bits())
}
