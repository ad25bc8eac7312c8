package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/lookahead"
	"github.com/jsinger67/parol-sub000/pgerrors"
)

func Test_BuildTable_exprGrammar_noConflicts(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	canon := BuildLR1(g)
	table, err := BuildTable(canon)
	assert.NoError(err)
	assert.NotNil(table)

	idAction := table.Action(canon.Start(), lookahead.CompiledTerminal(g.Term("id").Index))
	assert.Equal(LRShift, idAction.Kind)
}

func Test_BuildTable_LALR1_exprGrammar_noConflicts(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	merged := MergeLALR1(BuildLR1(g))
	table, err := BuildTable(merged)
	assert.NoError(err)
	assert.NotNil(table)
}

func Test_BuildTable_acceptOnAugmentedReduce(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	canon := BuildLR1(g)
	table, err := BuildTable(canon)
	assert.NoError(err)

	sawAccept := false
	for s := 0; s < table.Automaton.NumStates(); s++ {
		if table.Action(s, lookahead.EndOfInput).Kind == LRAccept {
			sawAccept = true
		}
	}
	assert.True(sawAccept, "some state must accept on end-of-input")
}

// An ambiguous grammar (reduce/reduce: two productions that can both
// reduce on the same lookahead in the same state) must surface as an
// LRConflictError rather than silently keeping one action.
func Test_BuildTable_detectsReduceReduceConflict(t *testing.T) {
	assert := assert.New(t)
	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddRule("S", []string{"A"})
	g.AddRule("S", []string{"B"})
	g.AddRule("A", []string{"a"})
	g.AddRule("B", []string{"a"})

	canon := BuildLR1(g)
	_, err := BuildTable(canon)
	assert.Error(err)
	var conflict *pgerrors.LRConflictError
	assert.ErrorAs(err, &conflict)
}

func Test_LRAction_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("s3", LRAction{Kind: LRShift, State: 3}.String())
	assert.Equal("r2", LRAction{Kind: LRReduce, Production: 2}.String())
	assert.Equal("acc", LRAction{Kind: LRAccept}.String())
	assert.Equal("", LRAction{Kind: LRError}.String())
}

func Test_LRParseTable_String_renders(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	table, err := BuildTable(BuildLR1(g))
	assert.NoError(err)
	assert.NotEmpty(table.String())
}
