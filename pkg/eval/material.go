package eval

import "github.com/corvane-chess/corvane/pkg/board"

// Nominal piece values in centipawns.
const (
	PawnValue   Score = 100
	KnightValue Score = 320
	BishopValue Score = 330
	RookValue   Score = 500
	QueenValue  Score = 900
)

// PieceValue returns the nominal material value of p, 0 for King and NoPiece.
func PieceValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return PawnValue
	case board.Knight:
		return KnightValue
	case board.Bishop:
		return BishopValue
	case board.Rook:
		return RookValue
	case board.Queen:
		return QueenValue
	default:
		return 0
	}
}

// Game-phase weights, used to taper the evaluation between the middlegame and endgame
// terms. A position with all non-pawn, non-king material still on the board has phase ==
// PhaseMax; bare kings and pawns have phase == 0.
const (
	phaseKnight = 1
	phaseBishop = 1
	phaseRook   = 2
	phaseQueen  = 4
)

// PhaseMax is the phase value of the starting material (4 knights + 4 bishops + 4 rooks +
// 2 queens).
const PhaseMax = phaseKnight*4 + phaseBishop*4 + phaseRook*4 + phaseQueen*2

func countPieces(pos *board.Position, c board.Color, p board.Piece) int {
	return pos.PiecesOf(c, p).PopCount()
}

// GamePhase estimates how far into the game pos is, clamped to [0, PhaseMax]: PhaseMax
// with all non-pawn, non-king material still on the board, 0 with bare kings and pawns.
func GamePhase(pos *board.Position) int {
	phase := 0
	for _, c := range []board.Color{board.White, board.Black} {
		phase += phaseKnight * countPieces(pos, c, board.Knight)
		phase += phaseBishop * countPieces(pos, c, board.Bishop)
		phase += phaseRook * countPieces(pos, c, board.Rook)
		phase += phaseQueen * countPieces(pos, c, board.Queen)
	}
	return clampInt(phase, 0, PhaseMax)
}

func gamePhase(pos *board.Position) int {
	return GamePhase(pos)
}

func totalMaterialExclKings(pos *board.Position) Score {
	var total Score
	for _, c := range []board.Color{board.White, board.Black} {
		total += PawnValue*Score(countPieces(pos, c, board.Pawn)) +
			KnightValue*Score(countPieces(pos, c, board.Knight)) +
			BishopValue*Score(countPieces(pos, c, board.Bishop)) +
			RookValue*Score(countPieces(pos, c, board.Rook)) +
			QueenValue*Score(countPieces(pos, c, board.Queen))
	}
	return total
}

func clampInt(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
