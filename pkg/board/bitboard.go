package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a bit-wise representation of the chess board. Bit i corresponds to Square(i),
// so bit 0 = A1 and bit 63 = H8. It relies on CPU support for popcount and bitscan.
type Bitboard uint64

const EmptyBitboard Bitboard = 0

func BitMask(sq Square) Bitboard {
	return Bitboard(1) << uint(sq)
}

func (b Bitboard) IsSet(sq Square) bool {
	return b&BitMask(sq) != 0
}

func (b Bitboard) Set(sq Square) Bitboard {
	return b | BitMask(sq)
}

func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ BitMask(sq)
}

// PopCount returns the population count of the bitboard, i.e., number of 1s.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// FirstSquare returns the index of the least-significant 1. Returns 64 (NumSquares) if zero.
func (b Bitboard) FirstSquare() Square {
	return Square(bits.TrailingZeros64(uint64(b)))
}

// Squares returns every set square, ascending.
func (b Bitboard) Squares() []Square {
	var ret []Square
	for b != 0 {
		sq := b.FirstSquare()
		ret = append(ret, sq)
		b = b.Clear(sq)
	}
	return ret
}

func (b Bitboard) String() string {
	var sb strings.Builder
	for r := int(NumRanks) - 1; r >= 0; r-- {
		for f := ZeroFile; f < NumFiles; f++ {
			if b.IsSet(NewSquare(f, Rank(r))) {
				sb.WriteRune('X')
			} else {
				sb.WriteRune('.')
			}
		}
		if r > 0 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// knightAttacks and kingAttacks are precomputed per-square attack masks, built once at
// init from the square's (file,rank) offsets -- the same "precompute once, index by
// square" idiom as a rotated-bitboard attack table, minus the rotation.
var (
	knightAttacks [NumSquares]Bitboard
	kingAttacks   [NumSquares]Bitboard
)

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

func init() {
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		f, r := int(sq.File()), int(sq.Rank())
		for _, d := range knightOffsets {
			if nf, nr := f+d[0], r+d[1]; onBoard(nf, nr) {
				knightAttacks[sq] = knightAttacks[sq].Set(NewSquare(File(nf), Rank(nr)))
			}
		}
		for _, d := range kingOffsets {
			if nf, nr := f+d[0], r+d[1]; onBoard(nf, nr) {
				kingAttacks[sq] = kingAttacks[sq].Set(NewSquare(File(nf), Rank(nr)))
			}
		}
	}
}

func onBoard(f, r int) bool {
	return f >= 0 && f < 8 && r >= 0 && r < 8
}

// KnightAttacks returns the knight attack set from sq, ignoring occupancy.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq, ignoring occupancy.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

var rayDirs = map[Piece][][2]int{
	Rook:   {{1, 0}, {-1, 0}, {0, 1}, {0, -1}},
	Bishop: {{1, 1}, {1, -1}, {-1, 1}, {-1, -1}},
}

func init() {
	rayDirs[Queen] = append(append([][2]int{}, rayDirs[Rook]...), rayDirs[Bishop]...)
}

// SlidingAttacks returns the attack set of a rook/bishop/queen on sq given the board's
// full occupancy, by casting a ray in each direction and stopping at (and including)
// the first occupied square.
func SlidingAttacks(piece Piece, sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	f, r := int(sq.File()), int(sq.Rank())
	for _, d := range rayDirs[piece] {
		nf, nr := f+d[0], r+d[1]
		for onBoard(nf, nr) {
			to := NewSquare(File(nf), Rank(nr))
			attacks = attacks.Set(to)
			if occupied.IsSet(to) {
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
	return attacks
}

// PawnAttacks returns the squares a pawn of the given color on sq attacks (diagonal
// captures only, not the push square).
func PawnAttacks(c Color, sq Square) Bitboard {
	f, r := int(sq.File()), int(sq.Rank())
	dr := 1
	if c == Black {
		dr = -1
	}
	var ret Bitboard
	for _, df := range []int{-1, 1} {
		if nf, nr := f+df, r+dr; onBoard(nf, nr) {
			ret = ret.Set(NewSquare(File(nf), Rank(nr)))
		}
	}
	return ret
}
