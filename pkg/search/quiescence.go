package search

import (
	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
)

// qFutilityMargin is the delta-pruning margin: a capture that cannot plausibly close a
// gap this wide against alpha, even if it wins its full nominal value, is skipped.
const qFutilityMargin eval.Score = 150

// qIncludeChecks extends quiescence search with non-capturing checks, not just captures
// and promotions, so a forcing sequence that starts with a check is not cut off early.
const qIncludeChecks = true

// quiesce resolves tactical noise at the frontier of the main search: it keeps
// extending through captures, promotions, and checks until the position is "quiet",
// using a stand-pat score as both a floor and an immediate beta cutoff candidate.
func (s *Search) quiesce(pos *board.Position, alpha, beta eval.Score, ply int) eval.Score {
	s.nodes++
	if s.stopped() {
		return alpha
	}

	standPat := s.eval.Evaluate(pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := pos.NoisyMoves(qIncludeChecks)
	orderMoves(pos, moves, board.Move{}, ply, &s.killers, &s.history)

	for _, m := range moves {
		if s.stopped() {
			break
		}

		// Delta pruning: skip captures that cannot possibly raise alpha even winning
		// their full nominal value, unless the move also promotes (value is understated).
		if m.Promotion == board.NoPiece {
			if _, victim, ok := pos.PieceAt(m.To); ok {
				if standPat+eval.PieceValue(victim)+qFutilityMargin < alpha {
					continue
				}
			}
		}

		next := pos.MakeMove(m)
		score := -s.quiesce(&next, -beta, -alpha, ply+1)

		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
