package search_test

import (
	"testing"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/corvane-chess/corvane/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionRoundTrip(t *testing.T) {
	tt := search.NewTranspositionTable(1)
	m := board.Move{From: board.E2, To: board.E4}

	tt.Store(board.ZobristHash(1234), 6, eval.Score(55), search.Exact, m)

	e, ok := tt.Probe(board.ZobristHash(1234))
	require.True(t, ok)
	assert.Equal(t, int16(6), e.Depth)
	assert.Equal(t, int32(55), e.Score)
	assert.Equal(t, search.Exact, e.Flag)
	assert.Equal(t, m, board.UnpackMove(e.Best))
}

func TestTranspositionProbeMiss(t *testing.T) {
	tt := search.NewTranspositionTable(1)
	_, ok := tt.Probe(board.ZobristHash(42))
	assert.False(t, ok)
}

func TestTranspositionSameKeyAlwaysOverwrites(t *testing.T) {
	tt := search.NewTranspositionTable(1)
	m1 := board.Move{From: board.E2, To: board.E4}
	m2 := board.Move{From: board.D2, To: board.D4}

	tt.Store(board.ZobristHash(7), 10, eval.Score(100), search.Exact, m1)
	tt.Store(board.ZobristHash(7), 2, eval.Score(-5), search.Alpha, m2)

	e, ok := tt.Probe(board.ZobristHash(7))
	require.True(t, ok)
	// A same-key store always replaces, regardless of depth.
	assert.Equal(t, int16(2), e.Depth)
	assert.Equal(t, m2, board.UnpackMove(e.Best))
}

func TestTranspositionReplacesShallowestOnCollision(t *testing.T) {
	// Keys that differ only above bit 32 share their low bits, so every key maps to the
	// same 4-slot bucket (bucket 0) of this table.
	tt := search.NewTranspositionTable(1)
	deep := board.Move{From: board.A2, To: board.A4}
	const step = board.ZobristHash(1) << 32

	tt.Store(board.ZobristHash(0), 12, eval.Score(1), search.Exact, deep)
	tt.Store(1*step, 1, eval.Score(2), search.Exact, board.Move{})
	tt.Store(2*step, 3, eval.Score(3), search.Exact, board.Move{})
	tt.Store(3*step, 5, eval.Score(4), search.Exact, board.Move{})

	// A fifth distinct key forces an eviction; the shallowest entry (depth 1) should go.
	tt.Store(4*step, 7, eval.Score(5), search.Exact, board.Move{})

	_, stillThere := tt.Probe(board.ZobristHash(0))
	assert.True(t, stillThere, "deepest entry must survive the eviction")
	_, evicted := tt.Probe(1 * step)
	assert.False(t, evicted, "shallowest entry should have been evicted")
}

func TestTranspositionMateDistanceNormalization(t *testing.T) {
	mateIn3 := eval.Mate - 3
	stored := eval.ToTT(mateIn3, 5)
	assert.Equal(t, mateIn3+5, stored)

	recovered := eval.FromTT(stored, 5)
	assert.Equal(t, mateIn3, recovered)
}
