package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/lookahead"
)

// classic expression grammar, unambiguous, textbook LALR(1):
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func exprGrammar() grammar.Grammar {
	g := grammar.New()
	for _, id := range []string{"+", "*", "(", ")", "id"} {
		g.AddTerm(id, grammar.Terminal{Literal: id})
	}
	g.AddRule("E", []string{"E", "+", "T"})
	g.AddRule("E", []string{"T"})
	g.AddRule("T", []string{"T", "*", "F"})
	g.AddRule("T", []string{"F"})
	g.AddRule("F", []string{"(", "E", ")"})
	g.AddRule("F", []string{"id"})
	return g
}

func Test_BuildLR1_exprGrammar(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	aut := BuildLR1(g)

	assert.Greater(aut.NumStates(), 1)
	assert.Equal(0, aut.Start())

	// The start state's closure must contain the augmenting item
	// (E' -> .E, $) plus every item the closure over E pulls in.
	start := aut.states[aut.Start()]
	found := false
	for _, it := range start {
		if it.Prod == aut.AugProd && it.Dot == 0 && it.La == lookahead.EndOfInput {
			found = true
		}
	}
	assert.True(found, "start state must contain the augmenting item")
}

func Test_BuildLR1_canonicalHasMoreOrEqualStatesThanLALR(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	canon := BuildLR1(g)
	merged := MergeLALR1(canon)

	assert.GreaterOrEqual(canon.NumStates(), merged.NumStates())
	assert.Greater(merged.NumStates(), 0)
}

func Test_MergeLALR1_isIdempotent(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()

	canon := BuildLR1(g)
	once := MergeLALR1(canon)
	twice := MergeLALR1(once)

	assert.Equal(once.NumStates(), twice.NumStates())
}
