package eval_test

import (
	"testing"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/board/fen"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartingPositionIsSymmetric(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	score := eval.Classical{}.Evaluate(pos)
	// Only the tempo bonus should distinguish the side to move in a symmetric position.
	assert.Equal(t, eval.TempoBonus, score)
}

func TestMaterialAdvantageFavorsSideUp(t *testing.T) {
	// White is up a rook.
	pos, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	score := eval.Classical{}.Evaluate(pos)
	assert.Greater(t, score, eval.Score(0))
}

func TestEvaluationSignFlipsWithSideToMove(t *testing.T) {
	white, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)
	black, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	require.NoError(t, err)

	scoreWhite := eval.Classical{}.Evaluate(white)
	scoreBlack := eval.Classical{}.Evaluate(black)

	// Same placement, opposite mover: the rook-up side's score must flip sign, net of tempo.
	assert.Greater(t, scoreWhite, eval.Score(0))
	assert.Less(t, scoreBlack, eval.Score(0))
}

func TestEvaluationIsMirrorSymmetric(t *testing.T) {
	// A position and its vertical mirror with colors swapped (and side to move swapped)
	// must evaluate identically: every term in Classical is side-to-move-relative and
	// rank-mirrors via Square.FlipRank, so the two boards are the "same" position up to
	// relabeling.
	pos, _, _, _, err := fen.Decode("4k3/8/2n5/3p4/3P4/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	mirrored, _, _, _, err := fen.Decode("4k3/8/8/3p4/3P4/2N5/8/4K3 b - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, eval.Classical{}.Evaluate(pos), eval.Classical{}.Evaluate(mirrored))
}

func TestCheckmateIsWorstScore(t *testing.T) {
	pos, _, _, _, err := fen.Decode("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	require.Equal(t, board.Checkmate, pos.Status())
	assert.Equal(t, -eval.Mate, eval.Classical{}.Evaluate(pos))
}
