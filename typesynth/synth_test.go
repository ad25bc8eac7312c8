package typesynth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsinger67/parol-sub000/grammar"
)

func TestSynthesize_SingleProductionStruct(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddRule("S", []string{"a"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	id, ok := art.Table.Lookup("S")
	require.True(ok)
	entry := art.Table.Get(id)
	assert.Equal(KindStruct, entry.Kind)
	require.Len(entry.Members, 1)
	assert.Equal(art.TokenType, entry.Members[0].Type)
}

func TestSynthesize_OptionPairIsOptionTyped(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddRule("S", []string{"a", "Opt"})
	g.AddRuleAttr("Opt", []string{"a"}, grammar.ProdOptionalSome)
	g.AddRuleAttr("Opt", nil, grammar.ProdOptionalNone)

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	assert.True(art.OptionTyped["Opt"])
	optID := art.NonTerminalType["Opt"]
	optEntry := art.Table.Get(optID)
	assert.Equal(KindOption, optEntry.Kind)
}

func TestSynthesize_CollectionRuleIsVectorTyped(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("elem", grammar.Terminal{Literal: "e"})
	g.AddRule("Elem", []string{"elem"})
	g.AddRuleAttr("List", []string{"Elem", "ListTail"}, grammar.ProdCollectionStart)
	g.AddRuleAttr("ListTail", []string{"Elem", "ListTail"}, grammar.ProdAddToCollection)
	g.AddRuleAttr("ListTail", nil, grammar.ProdCollectionStart)

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	assert.True(art.VectorTyped["ListTail"])
	tailID := art.NonTerminalType["ListTail"]
	tailEntry := art.Table.Get(tailID)
	assert.Equal(KindVec, tailEntry.Kind)
}

func TestSynthesize_EnumRuleOneVariantPerAlternative(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("plus", grammar.Terminal{Literal: "+"})
	g.AddTerm("num", grammar.Terminal{Literal: "0"})
	g.AddRule("Expr", []string{"Expr", "plus", "Factor"})
	g.AddRule("Expr", []string{"Factor"})
	g.AddRule("Factor", []string{"num"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	exprID := art.NonTerminalType["Expr"]
	exprEntry := art.Table.Get(exprID)
	assert.Equal(KindEnum, exprEntry.Kind)
	require.Len(exprEntry.Members, 2)
}

// Expr -> Expr plus Factor | Factor is exactly the cyclic-type shape the
// spec's design notes call out (expression -> factor -> expression); the
// recursive field must come back boxed.
func TestSynthesize_BreaksDirectRecursionWithBox(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("plus", grammar.Terminal{Literal: "+"})
	g.AddTerm("num", grammar.Terminal{Literal: "0"})
	g.AddRule("Expr", []string{"Expr", "plus", "Factor"})
	g.AddRule("Expr", []string{"Factor"})
	g.AddRule("Factor", []string{"num"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	exprID := art.NonTerminalType["Expr"]
	exprEntry := art.Table.Get(exprID)

	var addVariantStructID EntryID = NoEntry
	for _, m := range exprEntry.Members {
		variant := art.Table.Get(m.Type)
		for _, f := range art.Table.Get(variant.Inner).Members {
			if f.Name == "expr" {
				addVariantStructID = variant.Inner
			}
		}
	}
	require.NotEqual(NoEntry, addVariantStructID)

	structEntry := art.Table.Get(addVariantStructID)
	var exprField Member
	found := false
	for _, f := range structEntry.Members {
		if f.Name == "expr" {
			exprField = f
			found = true
		}
	}
	require.True(found)
	assert.Equal(KindBox, art.Table.Get(exprField.Type).Kind)
}

func TestSynthesize_LifetimePropagatesThroughStruct(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddRule("S", []string{"a"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	assert.True(art.Table.Get(art.TokenType).HasLifetime)

	sID := art.NonTerminalType["S"]
	assert.True(art.Table.Get(sID).HasLifetime)
}

func TestSynthesize_ASTTypeCoversEveryNonTerminal(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddTerm("b", grammar.Terminal{Literal: "b"})
	g.AddRule("S", []string{"a", "T"})
	g.AddRule("T", []string{"b"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	astEntry := art.Table.Get(art.ASTType)
	assert.Equal(KindEnum, astEntry.Kind)
	assert.Len(astEntry.Members, 2)
}

func TestSynthesize_ActionsOnePerProduction(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New()
	g.AddTerm("a", grammar.Terminal{Literal: "a"})
	g.AddTerm("b", grammar.Terminal{Literal: "b"})
	g.AddRule("S", []string{"a"})
	g.AddRule("S", []string{"b"})

	art, err := New(g, false).Synthesize()
	require.NoError(err)

	assert.Len(art.Actions, len(g.Productions))
	for _, p := range g.Productions {
		id, ok := art.Actions[p.Index]
		require.True(ok)
		assert.Equal(KindFunction, art.Table.Get(id).Kind)
	}

	semID, ok := art.SemanticActions["S"]
	require.True(ok)
	semEntry := art.Table.Get(semID)
	require.Len(semEntry.Members, 1)
	assert.Equal(KindRef, art.Table.Get(semEntry.Members[0].Type).Kind)
}
