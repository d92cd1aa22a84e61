// Package search implements iterative-deepening alpha-beta search over a Position: move
// ordering, quiescence, principal-variation search with late-move reductions, frontier
// futility and move-count pruning, aspiration windows, and a bucketed transposition table.
package search

import (
	"time"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
	"go.uber.org/atomic"
)

// ErrHalted marks a search cut short by Stop rather than completing on its own.
var ErrHalted = errSentinel("search halted")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// PV is one completed iterative-deepening iteration: the best line found at Depth, its
// score, and bookkeeping for UCI info output.
type PV struct {
	Depth int
	Nodes uint64
	Score eval.Score
	Moves []board.Move
	Time  time.Duration
}

func (pv PV) BestMove() (board.Move, bool) {
	if len(pv.Moves) == 0 {
		return board.Move{}, false
	}
	return pv.Moves[0], true
}

// Search runs alpha-beta search against a shared transposition table and evaluator. A
// Search is single-use: construct one per root search via NewSearch.
type Search struct {
	tt   *TranspositionTable
	eval eval.Evaluator

	killers killers
	history history

	repStack []board.ZobristHash

	nodes uint64
	stop  atomic.Bool

	rootPV []board.Move
}

// NewSearch constructs a search rooted at history (the actual game's hash chain, oldest
// first, including the current position) so in-search threefold claims account for
// repetitions that happened before the search began.
func NewSearch(tt *TranspositionTable, evaluator eval.Evaluator, history []board.ZobristHash) *Search {
	s := &Search{
		tt:       tt,
		eval:     evaluator,
		repStack: append([]board.ZobristHash(nil), history...),
	}
	return s
}

// Stop requests the search halt at its next opportunity. Idempotent, safe to call
// concurrently with a running search.
func (s *Search) Stop() {
	s.stop.Store(true)
}

func (s *Search) stopped() bool {
	return s.stop.Load()
}

// Nodes returns the number of nodes visited so far by this Search instance.
func (s *Search) Nodes() uint64 {
	return s.nodes
}

// isRepetition reports whether hash already occurs twice in the repetition stack, which
// makes this push its claimed third occurrence.
func (s *Search) isRepetition(hash board.ZobristHash) bool {
	count := 0
	for _, h := range s.repStack {
		if h == hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

func (s *Search) pushRep(hash board.ZobristHash) {
	s.repStack = append(s.repStack, hash)
}

func (s *Search) popRep() {
	s.repStack = s.repStack[:len(s.repStack)-1]
}

// SearchDepth runs one fixed-depth root search with an aspiration window derived from
// the previous iteration's score, widening and re-searching on failure, and returns the
// resulting principal variation.
func (s *Search) SearchDepth(pos *board.Position, depth int, prevScore eval.Score, havePrev bool) PV {
	start := time.Now()
	s.tt.NewSearch()

	alpha, beta := -eval.Inf, eval.Inf
	if havePrev && depth >= 2 {
		alpha = prevScore - aspirationWindow
		beta = prevScore + aspirationWindow
	}

	window := aspirationWindow
	var score eval.Score
	var pv []board.Move

	for {
		score, pv = s.rootSearch(pos, depth, alpha, beta)
		if s.stopped() {
			break
		}
		if score <= alpha {
			alpha = eval.Max(-eval.Inf, alpha-window)
			window = widen(window)
			continue
		}
		if score >= beta {
			beta = eval.Min(eval.Inf, beta+window)
			window = widen(window)
			continue
		}
		break
	}

	return PV{
		Depth: depth,
		Nodes: s.nodes,
		Score: score,
		Moves: pv,
		Time:  time.Since(start),
	}
}

const aspirationWindow eval.Score = 24
const aspirationMaxWiden eval.Score = 2048

func widen(w eval.Score) eval.Score {
	if w*2 > aspirationMaxWiden {
		return aspirationMaxWiden
	}
	return w * 2
}
