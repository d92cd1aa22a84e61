// Package eval contains static position evaluation.
package eval

import "github.com/corvane-chess/corvane/pkg/board"

// Evaluator is a static position evaluator: a pure function from position to score, from
// the perspective of the side to move.
type Evaluator interface {
	Evaluate(pos *board.Position) Score
}

// Tunables for the middlegame-weighted terms.
const (
	TempoBonus             Score = 10
	BishopPairMG           Score = 28
	BishopPairEG           Score = 12
	CastledBonusEarly      Score = 40
	UncastledPenaltyEarly  Score = 16
	CenterPawnBonus        Score = 12
	MinorDevPenalty        Score = 10
	RookOpenFileBonus      Score = 12
	RookSemiOpenFileBonus  Score = 6
	DoubledPawnPenaltyMG   Score = 10
	IsolatedPawnPenaltyMG  Score = 8
	Rook7thRankBonusEG     Score = 18
	RookBehindPasserBonus  Score = 20
	openingLikePhaseFrac        = 2 // opening_like iff phase >= PhaseMax * openingLikePhaseFrac / openingLikePhaseDenom
	openingLikePhaseDenom       = 3
	earlyUncastledFullmove      = 10
	endgameLikeMaterialCeiling  Score = 1200
)

// PassedPawnBonusByRank is indexed by relative rank (0 = home rank, 7 unused since a pawn
// on the promotion rank has already promoted).
var PassedPawnBonusByRank = [8]Score{0, 5, 12, 24, 40, 70, 110, 0}

// PSTKingEG is the endgame king piece-square table, White's perspective (a1=index 0). Black
// mirrors via Square.FlipRank.
var PSTKingEG = [64]Score{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

func pstKingEG(c board.Color, sq board.Square) Score {
	if c == board.Black {
		sq = sq.FlipRank()
	}
	return PSTKingEG[sq]
}

// Classical is the tapered material-and-structure evaluator: material, tempo, bishop
// pair, castling encouragement, central pawns, rook file placement, pawn-structure
// penalties and passed-pawn bonuses, minor development, endgame king centralization, and
// an opposite-colored-bishop endgame scale-down -- blended middlegame-to-endgame by game phase.
type Classical struct{}

func (Classical) Evaluate(pos *board.Position) Score {
	switch pos.Status() {
	case board.Checkmate:
		return -Mate
	case board.Stalemate:
		return Draw
	}
	if pos.InsufficientMaterial() {
		return Draw
	}
	if pos.HalfmoveClock >= 100 {
		return Draw
	}

	var mg, eg Score

	// Material, both phases.
	for _, c := range []board.Color{board.White, board.Black} {
		sgn := sideSign(pos, c)
		mat := PawnValue*Score(countPieces(pos, c, board.Pawn)) +
			KnightValue*Score(countPieces(pos, c, board.Knight)) +
			BishopValue*Score(countPieces(pos, c, board.Bishop)) +
			RookValue*Score(countPieces(pos, c, board.Rook)) +
			QueenValue*Score(countPieces(pos, c, board.Queen))
		mg += sgn * mat
		eg += sgn * mat
	}

	phase := gamePhase(pos)
	openingLike := phase >= PhaseMax*openingLikePhaseFrac/openingLikePhaseDenom

	mg += TempoBonus

	for _, c := range []board.Color{board.White, board.Black} {
		sgn := sideSign(pos, c)

		if countPieces(pos, c, board.Bishop) >= 2 {
			mg += sgn * BishopPairMG
			eg += sgn * BishopPairEG
		}

		if openingLike {
			if isCastled(pos, c) {
				mg += sgn * CastledBonusEarly
			} else if pos.FullmoveNumber >= earlyUncastledFullmove {
				mg -= sgn * UncastledPenaltyEarly
			}
		}

		pawns := pos.PiecesOf(c, board.Pawn).Squares()
		for _, sq := range pawns {
			rr := relativeRank(c, sq)
			f := fileOf(sq)
			if rr == 3 && (f == 3 || f == 4) {
				mg += sgn * CenterPawnBonus
			}
		}

		for _, sq := range pos.PiecesOf(c, board.Rook).Squares() {
			mg += sgn * rookFileBonus(pos, c, sq)
		}

		for _, sq := range pawns {
			f := fileOf(sq)
			if isDoubledPawnOnFile(pos, c, f) {
				mg -= sgn * DoubledPawnPenaltyMG
			}
			if isIsolatedPawn(pos, c, f) {
				mg -= sgn * IsolatedPawnPenaltyMG
			}
		}

		if openingLike {
			stuck := 0
			for _, sq := range minorHomeSquares(c) {
				if color, piece, ok := pos.PieceAt(sq); ok && color == c && (piece == board.Knight || piece == board.Bishop) {
					stuck++
				}
			}
			mg -= sgn * MinorDevPenalty * Score(stuck)
		}
	}

	// King endgame centralization.
	for _, c := range []board.Color{board.White, board.Black} {
		sgn := sideSign(pos, c)
		eg += sgn * pstKingEG(c, pos.KingSquare(c))
	}

	// Passed pawns.
	for _, c := range []board.Color{board.White, board.Black} {
		sgn := sideSign(pos, c)
		for _, sq := range pos.PiecesOf(c, board.Pawn).Squares() {
			if isPassedPawn(pos, sq, c) {
				eg += sgn * PassedPawnBonusByRank[relativeRank(c, sq)]
			}
		}
	}

	// Rook on the 7th (2nd from Black's view) and rook behind its own passed pawn.
	for _, c := range []board.Color{board.White, board.Black} {
		sgn := sideSign(pos, c)
		them := c.Opponent()
		oppKingBackRank := relativeRank(them, pos.KingSquare(them)) == 0
		oppHasPawns := countPieces(pos, them, board.Pawn) > 0

		for _, sq := range pos.PiecesOf(c, board.Rook).Squares() {
			if relativeRank(c, sq) == 6 && (oppHasPawns || oppKingBackRank) {
				eg += sgn * Rook7thRankBonusEG
			}
			f := fileOf(sq)
			for _, ps := range pos.PiecesOf(c, board.Pawn).Squares() {
				if fileOf(ps) == f && isPassedPawn(pos, ps, c) && relativeRank(c, sq) < relativeRank(c, ps) {
					eg += sgn * RookBehindPasserBonus
				}
			}
		}
	}

	// Opposite-colored-bishop endgames (no rooks or queens, one bishop each, and no more
	// material in total than two bishops and sixteen pawns) are drawish; scale both terms
	// down.
	onlyMinorsAndPawns := totalMaterialExclKings(pos) <= BishopValue*2+PawnValue*16 &&
		countPieces(pos, board.White, board.Queen) == 0 && countPieces(pos, board.Black, board.Queen) == 0 &&
		countPieces(pos, board.White, board.Rook) == 0 && countPieces(pos, board.Black, board.Rook) == 0
	if onlyMinorsAndPawns && countPieces(pos, board.White, board.Bishop) == 1 && countPieces(pos, board.Black, board.Bishop) == 1 {
		wb := pos.PiecesOf(board.White, board.Bishop).FirstSquare()
		bb := pos.PiecesOf(board.Black, board.Bishop).FirstSquare()
		if isLightSquare(wb) != isLightSquare(bb) {
			mg = mg * 3 / 4
			eg = eg * 3 / 4
		}
	}

	mgWeight := Score(phase)
	egWeight := Score(PhaseMax - phase)
	denom := Score(PhaseMax)
	if denom < 1 {
		denom = 1
	}
	mixed := (mg*mgWeight + eg*egWeight) / denom

	return Crop(mixed)
}

// sideSign returns +1 when c is the side to move, -1 otherwise -- the evaluator's score
// is always from the mover's perspective, per Position's Turn rather than an absolute
// color convention.
func sideSign(pos *board.Position, c board.Color) Score {
	if c == pos.Turn {
		return 1
	}
	return -1
}

func isLightSquare(sq board.Square) bool {
	return (int(sq.File())+int(sq.Rank()))%2 != 0
}

func minorHomeSquares(c board.Color) []board.Square {
	if c == board.White {
		return []board.Square{board.B1, board.G1, board.C1, board.F1}
	}
	return []board.Square{board.B8, board.G8, board.C8, board.F8}
}

// IsEndgameLike reports whether total non-king material is low enough that the search
// should disable middlegame-only pruning heuristics (frontier futility, move-count
// pruning) which assume a stable positional evaluation.
func IsEndgameLike(pos *board.Position) bool {
	return totalMaterialExclKings(pos) <= endgameLikeMaterialCeiling
}
