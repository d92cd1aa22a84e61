package search

import (
	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
)

// Tunables mirrored exactly from the reference alpha-beta implementation this search
// core was ported from.
const (
	lmrMinDepth                     = 3
	lmrBaseReduction                = 1
	futilityMarginBase   eval.Score = 200
	mcpMinDepth                     = 3
	mcpStartAt                      = 6
	endgameLikePhaseFrac            = 3 // endgame_like also holds when phase <= PhaseMax/endgameLikePhaseFrac
	improvingMargin      eval.Score = 40
)

// rootSearch runs negamax at ply 0: PVS ordering against the root TT move and killers,
// but no LMR and no pruning, matching the reference root search's reduced selectivity.
func (s *Search) rootSearch(pos *board.Position, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	score := s.negamax(pos, depth, 0, alpha, beta, true, nil)
	return score, s.extractPV(pos, depth)
}

// negamax implements the core search: terminal short-circuits, repetition/TT probing,
// check extension, move-loop with frontier futility / move-count pruning / PVS+LMR, and
// a TT store on the way out.
func (s *Search) negamax(pos *board.Position, depth, ply int, alpha, beta eval.Score, isPV bool, parentEval *eval.Score) eval.Score {
	s.nodes++
	if s.stopped() {
		return alpha
	}

	inCheck := pos.InCheck(pos.Turn)
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return -eval.Mate
		}
		return eval.Draw
	}
	if pos.InsufficientMaterial() || pos.HalfmoveClock >= 100 {
		return eval.Draw
	}

	hash := pos.Hash()
	if ply > 0 {
		if s.isRepetition(hash) {
			return eval.Draw
		}
		// The root's hash is already the last entry of the seeded history, so only
		// positions below the root are pushed.
		s.pushRep(hash)
		defer s.popRep()
	}

	alphaOrig := alpha

	var ttMove board.Move
	if e, ok := s.tt.Probe(hash); ok {
		ttMove = board.UnpackMove(e.Best)
		if int(e.Depth) >= depth {
			stored := eval.FromTT(eval.Score(e.Score), ply)
			switch e.Flag {
			case Exact:
				return stored
			case Alpha:
				if stored <= alpha {
					return stored
				}
			case Beta:
				if stored >= beta {
					return stored
				}
			}
		}
	}

	localDepth := depth
	if inCheck {
		localDepth++
	}
	if localDepth <= 0 {
		return s.quiesce(pos, alpha, beta, ply)
	}

	nodeEval := s.eval.Evaluate(pos)
	improving := false
	if parentEval != nil {
		improving = nodeEval >= *parentEval-improvingMargin
	}

	endgameLike := eval.IsEndgameLike(pos) || gamePhaseOf(pos) <= phaseMaxDiv(endgameLikePhaseFrac)

	orderMoves(pos, moves, ttMove, ply, &s.killers, &s.history)

	bestScore := -eval.Inf
	var bestMove board.Move
	explored := false

	for moveIndex, m := range moves {
		if s.stopped() {
			break
		}

		isCap := pos.IsCapture(m)
		next := pos.MakeMove(m)
		givesCheck := next.InCheck(next.Turn)

		if !endgameLike && !isPV && !improving && localDepth == 1 && !isCap && !givesCheck &&
			nodeEval+futilityMarginBase/2 <= alpha {
			continue
		}
		if !endgameLike && !isPV && !improving && ply > 2 && localDepth >= mcpMinDepth && !isCap && !givesCheck {
			dynStart := mcpStartAt + localDepth
			if beta-alpha <= 2*aspirationWindow {
				dynStart += 2
			}
			if moveIndex >= dynStart {
				continue
			}
		}

		explored = true
		score := s.searchMove(&next, localDepth, ply, alpha, beta, isPV, moveIndex, isCap, givesCheck, endgameLike, improving, nodeEval)

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				if !isCap {
					s.killers.add(ply, m)
					if _, piece, ok := pos.PieceAt(m.From); ok {
						s.history.bump(pos.Turn, m, piece, localDepth)
					}
				}
				break
			}
		}
	}

	if !explored {
		// Every move was either pruned by futility/MCP or the stop flag cut the loop
		// short before any recursion; neither implies checkmate or stalemate, since
		// legal moves exist -- fall through and store/return the fail-low bound.
		bestScore = alpha
	}

	flag := Exact
	switch {
	case bestScore <= alphaOrig:
		flag = Alpha
	case bestScore >= beta:
		flag = Beta
	}
	s.tt.Store(hash, localDepth, eval.ToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// searchMove recurses on one child, applying PVS and, where eligible, LMR.
func (s *Search) searchMove(next *board.Position, localDepth, ply int, alpha, beta eval.Score, isPV bool, moveIndex int, isCap, givesCheck, endgameLike, improving bool, nodeEval eval.Score) eval.Score {
	doLMR := localDepth >= lmrMinDepth && !isPV && !isCap && !givesCheck && !endgameLike && !improving && moveIndex >= 4

	if doLMR {
		reduce := lmrBaseReduction
		if moveIndex >= 6 {
			reduce++
		}
		reducedDepth := localDepth - 1 - reduce
		if reducedDepth < 1 {
			reducedDepth = 1
		}
		score := -s.negamax(next, reducedDepth, ply+1, -alpha-1, -alpha, false, &nodeEval)
		if score > alpha {
			// A move that beats an LMR probe earns a full-width re-search and is treated
			// as the new principal variation regardless of this node's own PV status.
			score = -s.negamax(next, localDepth-1, ply+1, -beta, -alpha, true, &nodeEval)
		}
		return score
	}

	if moveIndex == 0 {
		return -s.negamax(next, localDepth-1, ply+1, -beta, -alpha, true, &nodeEval)
	}

	score := -s.negamax(next, localDepth-1, ply+1, -alpha-1, -alpha, false, &nodeEval)
	if score > alpha && score < beta {
		score = -s.negamax(next, localDepth-1, ply+1, -beta, -alpha, true, &nodeEval)
	}
	return score
}

// extractPV walks the TT's stored best moves from pos, stopping at maxLen plies, a TT
// miss, an illegal (collision-corrupted) move, or a repeated position.
func (s *Search) extractPV(pos *board.Position, maxLen int) []board.Move {
	var pv []board.Move
	cur := pos
	seen := map[board.ZobristHash]bool{cur.Hash(): true}

	for i := 0; i < maxLen; i++ {
		e, ok := s.tt.Probe(cur.Hash())
		if !ok {
			break
		}
		m := board.UnpackMove(e.Best)
		if m.IsZero() {
			break
		}

		legal := false
		for _, cand := range cur.LegalMoves() {
			if cand.Equals(m) {
				legal = true
				break
			}
		}
		if !legal {
			break
		}

		pv = append(pv, m)
		next := cur.MakeMove(m)
		if seen[next.Hash()] {
			break
		}
		seen[next.Hash()] = true
		cur = &next
	}
	return pv
}

func gamePhaseOf(pos *board.Position) int {
	return eval.GamePhase(pos)
}

func phaseMaxDiv(n int) int {
	return eval.PhaseMax / n
}
