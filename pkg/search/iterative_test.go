package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/board/fen"
	"github.com/corvane-chess/corvane/pkg/eval"
	"github.com/corvane-chess/corvane/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLauncherRunsToDepthLimit(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b := board.NewBoard(pos)

	l := &search.Launcher{TT: search.NewTranspositionTable(1), Eval: eval.Classical{}}
	_, out := l.Launch(context.Background(), b, search.Options{DepthLimit: lang.Some(2)})

	var last search.PV
	for pv := range out {
		last = pv
	}

	assert.Equal(t, 2, last.Depth)
	_, ok := last.BestMove()
	assert.True(t, ok)
}

func TestLauncherHaltStopsPromptly(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b := board.NewBoard(pos)

	l := &search.Launcher{TT: search.NewTranspositionTable(1), Eval: eval.Classical{}}
	h, out := l.Launch(context.Background(), b, search.Options{DepthLimit: lang.Some(40)})

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first iteration")
	}

	done := make(chan struct{})
	go func() {
		h.Halt()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Halt did not return promptly")
	}
}
