package eval

import "github.com/corvane-chess/corvane/pkg/board"

// relativeRank returns sq's rank from c's perspective: 0 is c's home rank, 7 is the
// promotion rank.
func relativeRank(c board.Color, sq board.Square) int {
	r := int(sq.Rank())
	if c == board.Black {
		return 7 - r
	}
	return r
}

func fileOf(sq board.Square) int {
	return int(sq.File())
}

func hasPawnOnFile(pos *board.Position, c board.Color, file int) bool {
	for _, sq := range pos.PiecesOf(c, board.Pawn).Squares() {
		if fileOf(sq) == file {
			return true
		}
	}
	return false
}

// isDoubledPawnOnFile reports whether c has two or more pawns on file.
func isDoubledPawnOnFile(pos *board.Position, c board.Color, file int) bool {
	count := 0
	for _, sq := range pos.PiecesOf(c, board.Pawn).Squares() {
		if fileOf(sq) == file {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// isIsolatedPawn reports whether c has no pawn on an adjacent file to file.
func isIsolatedPawn(pos *board.Position, c board.Color, file int) bool {
	if file-1 >= 0 && hasPawnOnFile(pos, c, file-1) {
		return false
	}
	if file+1 <= 7 && hasPawnOnFile(pos, c, file+1) {
		return false
	}
	return true
}

// isPassedPawn reports whether the pawn on sq belonging to us has no opposing pawn on its
// file or an adjacent file between it and the promotion rank.
func isPassedPawn(pos *board.Position, sq board.Square, us board.Color) bool {
	them := us.Opponent()
	ourRank := relativeRank(us, sq)
	f := fileOf(sq)

	for df := -1; df <= 1; df++ {
		ff := f + df
		if ff < 0 || ff > 7 {
			continue
		}
		for rr := ourRank + 1; rr <= 6; rr++ {
			rank := rr
			if us == board.Black {
				rank = 7 - rr
			}
			target := board.NewSquare(board.File(ff), board.Rank(rank))
			if c, piece, ok := pos.PieceAt(target); ok && piece == board.Pawn && c == them {
				return false
			}
		}
	}
	return true
}

// rookFileBonus scores a rook for sitting on an open (no pawns either side) or
// semi-open (no own pawn) file; zero if its own pawn still occupies the file.
func rookFileBonus(pos *board.Position, c board.Color, sq board.Square) Score {
	f := fileOf(sq)
	if hasPawnOnFile(pos, c, f) {
		return 0
	}
	if hasPawnOnFile(pos, c.Opponent(), f) {
		return RookSemiOpenFileBonus
	}
	return RookOpenFileBonus
}

// isCastled reports whether c's king sits on its post-castling square.
func isCastled(pos *board.Position, c board.Color) bool {
	ksq := pos.KingSquare(c)
	if c == board.White {
		return ksq == board.G1 || ksq == board.C1
	}
	return ksq == board.G8 || ksq == board.C8
}
