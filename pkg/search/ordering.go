package search

import (
	"sort"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
)

// scoredMoves sorts moves and their parallel scores together, highest score first.
type scoredMoves struct {
	moves  []board.Move
	scores []int64
}

func (s scoredMoves) Len() int           { return len(s.moves) }
func (s scoredMoves) Less(i, j int) bool { return s.scores[i] > s.scores[j] }
func (s scoredMoves) Swap(i, j int) {
	s.moves[i], s.moves[j] = s.moves[j], s.moves[i]
	s.scores[i], s.scores[j] = s.scores[j], s.scores[i]
}

// Move-ordering score weights. TT and killer bonuses sit well above any MVV/LVA value so
// a hash move or killer is always tried before a capture; the capture bonus itself is
// large enough to dominate the much smaller quiet-move history and check scores.
const (
	ttMoveBonus    int64 = 10_000_000
	killerBonus    int64 = 5_000_000
	captureBase    int64 = 10_000
	mvvLvaScale    int64 = 10
	checkBonus     int64 = 1_000
	captureTieBreak int64 = 1
)

// mvvLva scores a capture by victim value minus a fraction of the attacker's, so that
// capturing a queen with a pawn always outranks capturing a pawn with a queen.
func mvvLva(pos *board.Position, m board.Move) int64 {
	if !pos.IsCapture(m) {
		return 0
	}
	_, attacker, _ := pos.PieceAt(m.From)

	victim := board.Pawn // en passant: the captured pawn isn't on m.To.
	if c, p, ok := pos.PieceAt(m.To); ok {
		_ = c
		victim = p
	}
	return captureBase + int64(eval.PieceValue(victim))*mvvLvaScale - int64(eval.PieceValue(attacker))
}

// killers holds, per search ply, the two most recent quiet moves that caused a beta
// cutoff -- tried early on sibling nodes at the same ply since a refutation of one line
// often refutes another.
type killers struct {
	slots [eval.MaxPly + 1][2]board.Move
}

func (k *killers) add(ply int, m board.Move) {
	if ply < 0 || ply >= len(k.slots) {
		return
	}
	if k.slots[ply][0].Equals(m) {
		return
	}
	k.slots[ply][1] = k.slots[ply][0]
	k.slots[ply][0] = m
}

func (k *killers) isKiller(ply int, m board.Move) bool {
	if ply < 0 || ply >= len(k.slots) {
		return false
	}
	return k.slots[ply][0].Equals(m) || k.slots[ply][1].Equals(m)
}

// history accumulates a depth-squared bonus for quiet moves that cause a beta cutoff,
// indexed by side to move, origin, destination, and moving piece -- so a quiet move that
// has repeatedly refuted other lines is tried before one that never has, independent of
// the specific position it occurs in.
type history struct {
	table [board.NumColors][64][64][board.NumPieces]int64
}

func (h *history) bump(us board.Color, m board.Move, piece board.Piece, depth int) {
	h.table[us][m.From][m.To][piece] += int64(depth) * int64(depth)
}

func (h *history) score(us board.Color, m board.Move, piece board.Piece) int64 {
	return h.table[us][m.From][m.To][piece]
}

// orderMoves sorts candidates in place, most promising first, per the combined score
// ttMove + mvvLva + killers + check + history + capture-tiebreak.
func orderMoves(pos *board.Position, moves []board.Move, ttMove board.Move, ply int, k *killers, h *history) {
	us := pos.Turn
	scores := make([]int64, len(moves))
	for i, m := range moves {
		var s int64
		if !ttMove.IsZero() && m.Equals(ttMove) {
			s += ttMoveBonus
		}
		s += mvvLva(pos, m)
		if k.isKiller(ply, m) {
			s += killerBonus
		}
		if pos.GivesCheck(m) {
			s += checkBonus
		}
		if _, piece, ok := pos.PieceAt(m.From); ok {
			s += h.score(us, m, piece)
		}
		if pos.IsCapture(m) {
			s += captureTieBreak
		}
		scores[i] = s
	}

	sort.Stable(scoredMoves{moves: moves, scores: scores})
}
