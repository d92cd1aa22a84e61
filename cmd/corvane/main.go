// corvane is a UCI chess engine: iterative-deepening alpha-beta search over a classical
// tapered evaluator, speaking the Universal Chess Interface over stdio.
package main

import (
	"context"

	"github.com/corvane-chess/corvane/pkg/engine"
	"github.com/corvane-chess/corvane/pkg/engine/uci"
	"github.com/seekerror/logw"
)

func main() {
	ctx := context.Background()

	hashMB := engine.HashMBFromEnv()
	e := engine.New(ctx, "corvane", "corvane-chess", hashMB)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		logw.Exitf(ctx, "corvane only supports the UCI protocol; the first line must be %q", uci.ProtocolName)
	}
}
