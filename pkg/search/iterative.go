package search

import (
	"context"
	"sync"
	"time"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Options holds the dynamic limits for one Launch: a requested depth and/or a movetime
// budget. Both are optional; a Launch with neither set runs to MaxPly bounded only by
// Stop.
type Options struct {
	DepthLimit lang.Optional[int]
	Movetime   lang.Optional[time.Duration]
}

// Handle lets the owner halt a launched search and read back its last completed PV.
type Handle interface {
	// Halt stops the search, if running, and returns the last completed iteration.
	// Idempotent.
	Halt() PV
}

// Launcher drives iterative-deepening searches against a shared transposition table and
// evaluator, emitting one PV per completed depth on the returned channel.
type Launcher struct {
	TT   *TranspositionTable
	Eval eval.Evaluator
}

// Launch starts a new search from b's current position in its own goroutine. The
// repetition stack is seeded from b's game history so in-search threefold claims account
// for repetitions already on the board. The channel closes when the search is halted or
// exhausts its depth limit.
func (l *Launcher) Launch(ctx context.Context, b *board.Board, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
		done: make(chan struct{}),
	}
	go h.run(ctx, l, b, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser
	done       chan struct{}

	mu sync.Mutex
	pv PV
}

func (h *handle) run(ctx context.Context, l *Launcher, b *board.Board, opt Options, out chan PV) {
	defer close(h.done)
	defer h.init.Close()
	defer close(out)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	deadline, hasDeadline := opt.Movetime.V()
	var hardTimer *time.Timer
	if hasDeadline {
		hardTimer = time.AfterFunc(deadline, func() { h.quit.Close() })
		defer hardTimer.Stop()
	}

	s := NewSearch(l.TT, l.Eval, b.History())

	go func() {
		<-wctx.Done()
		s.Stop()
	}()

	maxDepth := eval.MaxPly
	if d, ok := opt.DepthLimit.V(); ok && d < maxDepth {
		maxDepth = d
	}

	var prevScore eval.Score
	havePrev := false

	for depth := 1; depth <= maxDepth; depth++ {
		if contextx.IsCancelled(wctx) || h.quit.IsClosed() {
			return
		}

		pv := s.SearchDepth(b.Position(), depth, prevScore, havePrev)
		if s.stopped() {
			// An iteration cut short by Stop is neither recorded nor emitted.
			return
		}
		logw.Debugf(ctx, "searched %v at depth=%v: score=%v nodes=%v pv=%v", b.Position(), depth, pv.Score, pv.Nodes, board.PrintMoves(pv.Moves))

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		prevScore, havePrev = pv.Score, true

		if s.stopped() {
			return
		}
	}
}

// Halt stops the search and blocks until its goroutine has fully exited, so the caller can
// safely mutate the board it was reading the instant Halt returns.
func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.quit.Close()
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}
