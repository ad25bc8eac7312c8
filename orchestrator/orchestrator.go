// Package orchestrator is the single-threaded pipeline object of spec.md
// §5: it owns solver state, caches, and the tracing hook for one pipeline
// run, and wires the checker/transformer, k-tuple solvers, decision
// engine, lookahead-DFA (or LALR(1)) construction, and type synthesizer
// into one Run(Grammar) call (spec.md §2 "System Overview").
//
// It is grounded on the teacher's internal/ictiobus/ictiobus.go, which
// plays the same "single entry point wiring every stage" role for its
// Frontend[E]: NewLexer/NewParser/NewSDTS composed by a caller into one
// pipeline object, rather than each stage's constructor being called
// piecemeal. This package reconstructs that shape for the grammar-analysis
// core's own stages, since no Frontend type applies here (there is no
// lexer or SDD to assemble).
package orchestrator

import (
	"github.com/google/uuid"

	"github.com/jsinger67/parol-sub000/analysis"
	"github.com/jsinger67/parol-sub000/automaton"
	"github.com/jsinger67/parol-sub000/grammar"
	"github.com/jsinger67/parol-sub000/internal/util"
	"github.com/jsinger67/parol-sub000/lookahead"
	"github.com/jsinger67/parol-sub000/pgerrors"
	"github.com/jsinger67/parol-sub000/typesynth"
)

// Mode selects which of the two table-construction paths (spec.md §2 item
// 6) a run takes: per-non-terminal lookahead DFAs for an LL(k) recognizer,
// or a canonical LR(1) automaton merged into LALR(1).
type Mode int

const (
	ModeLL Mode = iota
	ModeLALR1
)

func (m Mode) String() string {
	if m == ModeLALR1 {
		return "LALR(1)"
	}
	return "LL(k)"
}

// TraceFunc receives non-fatal progress information during a run (spec.md
// §7 "Non-fatal information... is emitted via a tracing hook that is a
// no-op by default").
type TraceFunc func(format string, args ...any)

// Options configures one Orchestrator.
type Options struct {
	Mode Mode

	// KMax bounds the k-decision engine (spec.md §4.5); defaults to
	// lookahead.MaxK (10) when zero. A value above lookahead.MaxK is
	// rejected at entry with LookaheadTooLargeError (spec.md §7).
	KMax int

	// MinimizeBoxedTypes is forwarded to the type synthesizer (spec.md
	// §4.7): when set, a nested non-terminal field that does not close a
	// direct cycle is inlined rather than boxed.
	MinimizeBoxedTypes bool

	// Trace receives progress messages; defaults to a no-op.
	Trace TraceFunc
}

// Artifacts is everything one Run produces (spec.md §6 "Outputs").
type Artifacts struct {
	RunID uuid.UUID

	// Grammar is the checked, left-factored grammar this run analyzed
	// (spec.md §4.1 contract output).
	Grammar grammar.Grammar

	// K is the grammar's whole-grammar lookahead (spec.md §4.5
	// "Whole-grammar k"); meaningful for ModeLL, zero for ModeLALR1 (LALR
	// table construction does not go through the k-decision engine).
	K int

	// Decisions holds the per-non-terminal k-decision result, keyed by
	// non-terminal name; populated only for ModeLL.
	Decisions util.SVSet[analysis.Decision]

	// LADFAs holds one minimized lookahead DFA per non-terminal
	// (spec.md §6 "one minimized lookahead DFA in the compiled form");
	// populated only for ModeLL.
	LADFAs map[string]*automaton.LADFA

	// LRTable is the compiled ACTION/GOTO table (spec.md §6
	// "LRParseTable"); populated only for ModeLALR1.
	LRTable *automaton.LRParseTable

	// Types is the synthesized AST symbol table (spec.md §6 "a symbol
	// table expressing the AST shape").
	Types *typesynth.Artifacts
}

// Orchestrator owns the solver state, caches, and tracing hook for the
// duration of one Run (spec.md §5: "owned by a single orchestrating
// object... lifetime ends when that object is dropped").
type Orchestrator struct {
	opts Options
}

// New returns an Orchestrator configured by opts.
func New(opts Options) *Orchestrator {
	if opts.KMax == 0 {
		opts.KMax = lookahead.MaxK
	}
	if opts.Trace == nil {
		opts.Trace = func(string, ...any) {}
	}
	return &Orchestrator{opts: opts}
}

// Run executes the full pipeline against g: validation, the checker/
// transformer, the FIRST_k/FOLLOW_k solvers and k-decision engine, the
// selected table-construction path, and type synthesis (spec.md §2).
//
// Every run gets a fresh RunID (spec.md §9 "Global terminal numbering...
// must not persist across runs" — the RunID is how a caller distinguishes
// two terminal-numbering universes in a log stream).
func (o *Orchestrator) Run(g grammar.Grammar) (*Artifacts, error) {
	runID := uuid.New()

	if o.opts.KMax > lookahead.MaxK {
		return nil, &pgerrors.LookaheadTooLargeError{Requested: o.opts.KMax, MaxK: lookahead.MaxK}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	transformed, err := g.Check()
	if err != nil {
		return nil, err
	}
	o.opts.Trace("run %s: grammar checked and left-factored to %d productions", runID, len(transformed.Productions))

	art := &Artifacts{RunID: runID, Grammar: transformed}

	solver, err := analysis.NewSolver(transformed)
	if err != nil {
		return nil, err
	}

	switch o.opts.Mode {
	case ModeLALR1:
		if err := o.runLALR1(transformed, art); err != nil {
			return nil, err
		}
	default:
		if err := o.runLL(transformed, solver, art); err != nil {
			return nil, err
		}
	}

	synth, err := typesynth.New(transformed, o.opts.MinimizeBoxedTypes).Synthesize()
	if err != nil {
		return nil, err
	}
	art.Types = synth
	o.opts.Trace("run %s: synthesized %d symbol-table entries", runID, synth.Table.Len())

	return art, nil
}

func (o *Orchestrator) runLL(g grammar.Grammar, solver *analysis.Solver, art *Artifacts) error {
	k, decisions, err := solver.WholeGrammarK(o.opts.KMax)
	if err != nil {
		return err
	}
	o.opts.Trace("run %s: whole-grammar k = %d", art.RunID, k)

	art.K = k
	art.Decisions = decisions

	ladfas := make(map[string]*automaton.LADFA, len(g.NonTerminals()))
	for _, nt := range g.NonTerminals() {
		d := decisions[nt]
		ladfa, err := buildLADFAForNonTerminal(g, solver, nt, d)
		if err != nil {
			return err
		}
		ladfas[nt] = automaton.Minimize(ladfa)
	}
	art.LADFAs = ladfas
	return nil
}

func (o *Orchestrator) runLALR1(g grammar.Grammar, art *Artifacts) error {
	lr1 := automaton.BuildLR1(g)
	lalr := automaton.MergeLALR1(lr1)
	table, err := automaton.BuildTable(lalr)
	if err != nil {
		return err
	}
	art.LRTable = table
	o.opts.Trace("run %s: LALR(1) table built with %d states", art.RunID, lalr.NumStates())
	return nil
}

// buildLADFAForNonTerminal builds the minimized-ready (but not yet
// minimized) lookahead DFA for one non-terminal: a trivial one-state DFA
// for the single-production case (spec.md §3 invariant I6), or one DFA per
// alternative united into the non-terminal's DFA (spec.md §4.6
// "Construction", "Union").
func buildLADFAForNonTerminal(g grammar.Grammar, solver *analysis.Solver, nt string, d analysis.Decision) (*automaton.LADFA, error) {
	rule := g.Rule(nt)

	if len(rule.Productions) <= 1 {
		empty, err := lookahead.NewKTuplesWithBits(solver.Bits(), 0)
		if err != nil {
			return nil, err
		}
		if len(rule.Productions) == 1 {
			zero, err := lookahead.New(solver.Bits())
			if err != nil {
				return nil, err
			}
			empty.InsertAnnotated(zero, rule.Productions[0].Index)
		}
		return automaton.BuildLADFA(nt, 0, empty), nil
	}

	k := d.K
	first, err := solver.FirstK(k)
	if err != nil {
		return nil, err
	}
	follow, err := solver.FollowK(k)
	if err != nil {
		return nil, err
	}
	followN := follow.PerNonTerminal[nt]

	alts := make([]*automaton.LADFA, 0, len(rule.Productions))
	for _, p := range rule.Productions {
		ti := first.PerProduction[p.Index].ConcatK(followN)

		annotated, err := lookahead.NewKTuplesWithBits(solver.Bits(), k)
		if err != nil {
			return nil, err
		}
		for _, elem := range ti.Elements() {
			annotated.InsertAnnotated(elem.Terminals, p.Index)
		}

		alts = append(alts, automaton.BuildLADFA(nt, k, annotated))
	}

	return automaton.Unite(nt, k, alts)
}
