package engine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/board/fen"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/corvane-chess/corvane/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// defaultHashMB is used when TT_MB is unset or not a positive integer.
const defaultHashMB = 128

// HashMBFromEnv reads the TT_MB environment variable, falling back to defaultHashMB on any
// parse failure or absence. Config errors here are not fatal: the engine always starts.
func HashMBFromEnv() int {
	v, ok := os.LookupEnv("TT_MB")
	if !ok {
		return defaultHashMB
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultHashMB
	}
	return n
}

// Engine encapsulates game-playing logic, search and evaluation, and owns exactly one
// active search worker at a time.
type Engine struct {
	name, author string

	launcher *search.Launcher
	hashMB   int

	b      *board.Board
	active search.Handle
	mu     sync.Mutex
}

// New creates an engine with a fresh transposition table sized hashMB megabytes and the
// classical tapered evaluator, reset to the starting position.
func New(ctx context.Context, name, author string, hashMB int) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		hashMB: hashMB,
	}
	e.launcher = &search.Launcher{
		TT:   search.NewTranspositionTable(hashMB),
		Eval: eval.Classical{},
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, hash=%vMB", e.Name(), hashMB)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// Board returns the live board. Callers must not retain it across a Reset/Move.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b
}

// Position returns the current position in FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position())
}

// Reset resets the engine to a new starting position in FEN format, discarding any
// in-progress search. The transposition table is left as it is.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, TT=%vMB", position, e.hashMB)

	e.haltSearchIfActive(ctx)

	pos, _, _, _, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(pos)

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move plays a move, usually sent by the GUI on behalf of the opponent or as part of
// replaying a game's move list. Illegal or unparseable moves are reported but leave the
// board untouched, so the caller can skip them and keep processing the rest of the list.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move %q: %w", move, err)
	}

	e.haltSearchIfActive(ctx)

	if !e.b.PushMove(candidate) {
		return fmt.Errorf("illegal move %q in position %v", move, fen.Encode(e.b.Position()))
	}

	logw.Debugf(ctx, "Move %v: %v", candidate, e.b)
	return nil
}

// Go launches a new search from the current position. Only one search may be active at a
// time; the caller is expected to have stopped any prior search before calling Go again.
func (e *Engine) Go(ctx context.Context, opt search.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	logw.Infof(ctx, "go %v on %v", opt, e.b)

	handle, out := e.launcher.Launch(ctx, e.b, opt)
	e.active = handle
	return out, nil
}

// Halt stops the active search and returns its last principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.haltSearchIfActive(ctx)
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active == nil {
		return search.PV{}, false
	}

	pv := e.active.Halt()
	logw.Infof(ctx, "Search halted: depth=%v nodes=%v", pv.Depth, pv.Nodes)

	e.active = nil
	return pv, true
}
