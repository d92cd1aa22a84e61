package board_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPosition(t *testing.T, pieces []board.Placement, turn board.Color, castling board.Castling, ep board.Square, hasEP bool) *board.Position {
	t.Helper()
	zt := board.NewZobristTable(1)
	pos, err := board.NewPosition(zt, pieces, turn, castling, ep, hasEP, 0, 1)
	require.NoError(t, err)
	return pos
}

func printMoves(ms []board.Move) string {
	var list []string
	for _, m := range ms {
		list = append(list, m.String())
	}
	sort.Strings(list)
	return strings.Join(list, " ")
}

func TestPawnMoves(t *testing.T) {
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.E2, board.White, board.Pawn},
		{board.D7, board.Black, board.Pawn},
	}, board.White, 0, 0, false)

	moves := printMoves(pos.LegalMoves())
	assert.Contains(t, moves, "e2e3")
	assert.Contains(t, moves, "e2e4")
}

func TestPawnPromotion(t *testing.T) {
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.D7, board.White, board.Pawn},
	}, board.White, 0, 0, false)

	moves := printMoves(pos.LegalMoves())
	for _, want := range []string{"d7d8q", "d7d8r", "d7d8b", "d7d8n"} {
		assert.Contains(t, moves, want)
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.E5, board.White, board.Pawn},
		{board.D5, board.Black, board.Pawn},
	}, board.White, 0, board.D6, true)

	moves := printMoves(pos.LegalMoves())
	assert.Contains(t, moves, "e5d6")

	next := pos.MakeMove(board.Move{From: board.E5, To: board.D6})
	_, _, ok := next.PieceAt(board.D5)
	assert.False(t, ok, "captured pawn should be removed")
}

func TestCastlingRights(t *testing.T) {
	base := []board.Placement{
		{board.E1, board.White, board.King},
		{board.H1, board.White, board.Rook},
		{board.A1, board.White, board.Rook},
		{board.E8, board.Black, board.King},
	}

	t.Run("full rights", func(t *testing.T) {
		pos := newPosition(t, base, board.White, board.FullCastingRights, 0, false)
		moves := printMoves(pos.LegalMoves())
		assert.Contains(t, moves, "e1g1")
		assert.Contains(t, moves, "e1c1")
	})

	t.Run("no rights", func(t *testing.T) {
		pos := newPosition(t, base, board.White, 0, 0, false)
		moves := printMoves(pos.LegalMoves())
		assert.NotContains(t, moves, "e1g1")
		assert.NotContains(t, moves, "e1c1")
	})

	t.Run("blocked transit square attacked", func(t *testing.T) {
		withAttacker := append(append([]board.Placement{}, base...), board.Placement{Square: board.F8, Color: board.Black, Piece: board.Rook})
		pos := newPosition(t, withAttacker, board.White, board.FullCastingRights, 0, false)
		moves := printMoves(pos.LegalMoves())
		assert.NotContains(t, moves, "e1g1", "king may not transit through an attacked square")
	})
}

func TestLegalMovesExcludePinnedPieceExposingCheck(t *testing.T) {
	// White king on e1, white rook pinned on e2 by black rook on e7; the rook may
	// only move along the e-file without leaving the king in check.
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E2, board.White, board.Rook},
		{board.H8, board.Black, board.King},
		{board.E7, board.Black, board.Rook},
	}, board.White, 0, 0, false)

	moves := printMoves(pos.LegalMoves())
	assert.Contains(t, moves, "e2e7", "capturing the pinning rook stays legal")
	assert.NotContains(t, moves, "e2a2", "moving off the e-file would expose the king")
}

func TestCheckDetection(t *testing.T) {
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.E7, board.Black, board.Rook},
	}, board.White, 0, 0, false)
	assert.True(t, pos.InCheck(board.White))
	assert.False(t, pos.InCheck(board.Black))
}

func TestInsufficientMaterial(t *testing.T) {
	pos := newPosition(t, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.B1, board.White, board.Bishop},
	}, board.White, 0, 0, false)
	assert.True(t, pos.InsufficientMaterial())
}

func TestPerftStartingPosition(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	assert.Equal(t, board.White, turn)
	assert.Len(t, pos.LegalMoves(), 20)
}

func TestPerftKiwipete(t *testing.T) {
	// Well-known perft test position ("Kiwipete"): 48 legal moves at depth 1.
	pos, _, _, _, err := fen.Decode("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	assert.Len(t, pos.LegalMoves(), 48)
}
