// Package uci contains a driver for running the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/board/fen"
	"github.com/corvane-chess/corvane/pkg/engine"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/corvane-chess/corvane/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated once "uci" is received.
type Driver struct {
	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // a "go" is outstanding and awaiting its bestmove
	bestmoveSent atomic.Bool    // guards the single bestmove per "go"
	ponder       chan search.PV // intermediate search information
	lastPosition string         // last "position" line, empty if none yet

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver wires a driver to read commands from in and write UCI output to the returned
// channel. Processing happens in its own goroutine.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			d.handle(ctx, line)

		case pv := <-d.ponder:
			if d.active.Load() {
				d.out <- printInfo(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) handle(ctx context.Context, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case ProtocolName:
		d.out <- fmt.Sprintf("id name %v", d.e.Name())
		d.out <- fmt.Sprintf("id author %v", d.e.Author())
		d.out <- "uciok"

	case "isready":
		d.out <- "readyok"

	case "debug", "setoption", "register", "ponderhit":
		// Recognized but not applicable: no engine-tunable UCI options are exposed.

	case "ucinewgame":
		d.ensureInactive(ctx)
		d.lastPosition = ""
		_ = d.e.Reset(ctx, fen.Initial)

	case "position":
		d.handlePosition(ctx, line, args)

	case "go":
		d.handleGo(ctx, line, args)

	case "stop":
		d.haltAndRespond(ctx)

	case "quit":
		d.Close()

	default:
		d.out <- fmt.Sprintf("info string dbg=unknown command %q", line)
		logw.Warningf(ctx, "Unknown command %q", line)
	}
}

func (d *Driver) handlePosition(ctx context.Context, line string, args []string) {
	d.ensureInactive(ctx)

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		// Continuation of the same game: only the newly appended moves need replaying.
		rest := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		d.playMoves(ctx, line, strings.Fields(rest))
		d.lastPosition = line
		return
	}

	position := fen.Initial
	moveArgs := args
	if len(args) >= 1 && args[0] == "fen" {
		if len(args) < 7 {
			d.out <- fmt.Sprintf("info string dbg=malformed fen in %q, resetting to startpos", line)
			_ = d.e.Reset(ctx, fen.Initial)
			d.lastPosition = ""
			return
		}
		position = strings.Join(args[1:7], " ")
		moveArgs = args[7:]
	} else if len(args) >= 1 && args[0] != "startpos" {
		d.out <- fmt.Sprintf("info string dbg=malformed position command %q, resetting to startpos", line)
		_ = d.e.Reset(ctx, fen.Initial)
		d.lastPosition = ""
		return
	}

	if err := d.e.Reset(ctx, position); err != nil {
		d.out <- fmt.Sprintf("info string dbg=invalid position %q: %v, resetting to startpos", line, err)
		_ = d.e.Reset(ctx, fen.Initial)
		d.lastPosition = ""
		return
	}

	if len(moveArgs) > 0 && moveArgs[0] == "moves" {
		moveArgs = moveArgs[1:]
	}
	d.playMoves(ctx, line, moveArgs)
	d.lastPosition = line
}

// playMoves applies each move in order, logging and skipping any that fail to parse or are
// illegal in the position reached so far, rather than aborting the whole command.
func (d *Driver) playMoves(ctx context.Context, line string, moves []string) {
	for _, arg := range moves {
		if err := d.e.Move(ctx, arg); err != nil {
			d.out <- fmt.Sprintf("info string dbg=skipping move %q in %q: %v", arg, line, err)
			logw.Errorf(ctx, "Invalid position move %q: %v: %v", arg, line, err)
		}
	}
}

func (d *Driver) handleGo(ctx context.Context, line string, args []string) {
	d.ensureInactive(ctx)

	var opt search.Options
	var rollouts string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			if i == len(args) {
				d.out <- fmt.Sprintf("info string dbg=missing argument for depth in %q", line)
				break
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				d.out <- fmt.Sprintf("info string dbg=invalid depth in %q: %v", line, err)
				break
			}
			opt.DepthLimit = lang.Some(n)

		case "movetime":
			i++
			if i == len(args) {
				d.out <- fmt.Sprintf("info string dbg=missing argument for movetime in %q", line)
				break
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				d.out <- fmt.Sprintf("info string dbg=invalid movetime in %q: %v", line, err)
				break
			}
			opt.Movetime = lang.Some(time.Duration(n) * time.Millisecond)

		case "rollouts":
			// Accepted for compatibility with MCTS-oriented GUIs, but this engine always
			// runs alpha-beta search regardless of the requested rollout count.
			i++
			if i < len(args) {
				rollouts = args[i]
			}

		default:
			// searchmoves, ponder, wtime/btime/winc/binc/movestogo, infinite, mate, nodes:
			// silently ignored; not supported by this engine's time/search model.
		}
	}
	if rollouts != "" {
		depth, _ := opt.DepthLimit.V()
		d.out <- fmt.Sprintf("info string dbg=go depth=%v rollouts=%v (rollouts ignored; AB-only)", depth, rollouts)
	}

	out, err := d.e.Go(ctx, opt)
	if err != nil {
		d.out <- fmt.Sprintf("info string dbg=go failed: %v", err)
		return
	}

	d.active.Store(true)
	d.bestmoveSent.Store(false)

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.ponder <- pv
		}
		d.searchCompleted(ctx, last)
	}()
}

func (d *Driver) haltAndRespond(ctx context.Context) {
	pv, ok := d.e.Halt(ctx)
	if ok {
		d.searchCompleted(ctx, pv)
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.e.Halt(ctx)
}

// searchCompleted emits the bestmove for the outstanding "go", exactly once. If the search
// produced no PV at all (e.g. stopped before the first iteration completed), it falls back
// to the best legal move ranked by (is_capture, gives_check, mvv, uci) descending, or the
// null move if the position has no legal moves.
func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if !d.bestmoveSent.CAS(false, true) {
		return // stale or duplicate completion
	}
	d.active.Store(false)

	if best, ok := pv.BestMove(); ok {
		d.out <- printInfo(pv)
		d.out <- fmt.Sprintf("bestmove %v", best)
		return
	}

	if m, ok := fallbackMove(d.e.Board().Position()); ok {
		logw.Infof(ctx, "No PV from search; falling back to %v", m)
		d.out <- fmt.Sprintf("bestmove %v", m)
		return
	}

	d.out <- "bestmove 0000"
}

// fallbackMove picks a legal move by (is_capture, gives_check, mvv, uci) descending, used
// when "stop" arrives before any search iteration has completed.
func fallbackMove(pos *board.Position) (board.Move, bool) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return board.Move{}, false
	}

	mvv := func(m board.Move) eval.Score {
		if _, victim, ok := pos.PieceAt(m.To); ok {
			return eval.PieceValue(victim)
		}
		return 0
	}

	sort.SliceStable(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		ac, bc := pos.IsCapture(a), pos.IsCapture(b)
		if ac != bc {
			return ac
		}
		ag, bg := pos.GivesCheck(a), pos.GivesCheck(b)
		if ag != bg {
			return ag
		}
		if av, bv := mvv(a), mvv(b); av != bv {
			return av > bv
		}
		return a.String() > b.String()
	})
	return moves[0], true
}

func printInfo(pv search.PV) string {
	parts := []string{"info", fmt.Sprintf("depth %v", pv.Depth)}

	parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))

	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
		nps := pv.Nodes * uint64(time.Second) / uint64(pv.Time)
		parts = append(parts, fmt.Sprintf("nps %v", nps))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}
