package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsinger67/parol-sub000/lookahead"
)

func Test_BuildLADFA_fromTuples(t *testing.T) {
	assert := assert.New(t)

	bits, err := lookahead.BitsFor(10)
	assert.NoError(err)

	set, err := lookahead.NewKTuples(10, 2)
	assert.NoError(err)

	t1, _ := lookahead.New(bits)
	t1, _ = t1.Push(1)
	t1, _ = t1.Push(2)
	set.InsertAnnotated(t1, 0)

	t2, _ := lookahead.New(bits)
	t2, _ = t2.Push(1)
	t2, _ = t2.Push(3)
	set.InsertAnnotated(t2, 1)

	d := BuildLADFA("N", 2, set)

	s1, ok := d.Next(0, 1)
	assert.True(ok)
	assert.Equal(NoProduction, d.Production(s1))

	s2, ok := d.Next(s1, 2)
	assert.True(ok)
	assert.Equal(0, d.Production(s2))

	s3, ok := d.Next(s1, 3)
	assert.True(ok)
	assert.Equal(1, d.Production(s3))
}

func Test_Unite_detectsUnionConflict(t *testing.T) {
	assert := assert.New(t)
	bits, _ := lookahead.BitsFor(10)

	setA, _ := lookahead.NewKTuples(10, 1)
	ta, _ := lookahead.New(bits)
	ta, _ = ta.Push(1)
	setA.InsertAnnotated(ta, 0)

	setB, _ := lookahead.NewKTuples(10, 1)
	tb, _ := lookahead.New(bits)
	tb, _ = tb.Push(1)
	setB.InsertAnnotated(tb, 1)

	dA := BuildLADFA("N", 1, setA)
	dB := BuildLADFA("N", 1, setB)

	_, err := Unite("N", 1, []*LADFA{dA, dB})
	assert.Error(err)
}

func Test_Unite_mergesDisjointAlternatives(t *testing.T) {
	assert := assert.New(t)
	bits, _ := lookahead.BitsFor(10)

	setA, _ := lookahead.NewKTuples(10, 1)
	ta, _ := lookahead.New(bits)
	ta, _ = ta.Push(1)
	setA.InsertAnnotated(ta, 0)

	setB, _ := lookahead.NewKTuples(10, 1)
	tb, _ := lookahead.New(bits)
	tb, _ = tb.Push(2)
	setB.InsertAnnotated(tb, 1)

	dA := BuildLADFA("N", 1, setA)
	dB := BuildLADFA("N", 1, setB)

	united, err := Unite("N", 1, []*LADFA{dA, dB})
	assert.NoError(err)

	s1, ok := united.Next(0, 1)
	assert.True(ok)
	assert.Equal(0, united.Production(s1))

	s2, ok := united.Next(0, 2)
	assert.True(ok)
	assert.Equal(1, united.Production(s2))
}

// spec.md §8 end-to-end scenario 4: states {0,1,2,3,4}, transitions
// 0->0 3, 0->5 1, 1->0 4, 1->6 2, with 3 and 4 both accepting production 5.
// Minimization must yield four states, with 1->0 4 redirected to 1->0 3.
func Test_Minimize_scenario4(t *testing.T) {
	assert := assert.New(t)

	d := &LADFA{NonTerminal: "N", K: 2}
	for i := 0; i < 5; i++ {
		d.newState()
	}
	d.production = []int{NoProduction, NoProduction, NoProduction, 5, 5}
	d.trans[0][0] = 3
	d.trans[0][5] = 1
	d.trans[1][0] = 4
	d.trans[1][6] = 2

	min := Minimize(d)

	assert.Equal(4, min.NumStates())

	s1, ok := min.Next(0, 5)
	assert.True(ok)
	redirected, ok := min.Next(s1, 0)
	assert.True(ok)
	assert.Equal(5, min.Production(redirected))

	direct, ok := min.Next(0, 0)
	assert.True(ok)
	assert.Equal(redirected, direct)
}
