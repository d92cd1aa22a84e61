package board

import "fmt"

// Outcome represents the game-level result of a finished game.
type Outcome uint8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// Win returns the outcome where c wins.
func Win(c Color) Outcome {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}

// Loss returns the outcome where c loses.
func Loss(c Color) Outcome {
	return Win(c.Opponent())
}

// Reason distinguishes why a game ended, beyond the bare outcome.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCheckmate
	ReasonStalemate
	ReasonRepetition
	ReasonFiftyMoveRule
	ReasonInsufficientMaterial
)

func (r Reason) String() string {
	switch r {
	case ReasonCheckmate:
		return "checkmate"
	case ReasonStalemate:
		return "stalemate"
	case ReasonRepetition:
		return "threefold repetition"
	case ReasonFiftyMoveRule:
		return "fifty-move rule"
	case ReasonInsufficientMaterial:
		return "insufficient material"
	default:
		return "none"
	}
}

// Result is the outcome of a game together with the reason it ended, if decided.
type Result struct {
	Outcome Outcome
	Reason  Reason
}

func (r Result) String() string {
	if r.Outcome == Undecided {
		return "undecided"
	}
	return fmt.Sprintf("%v (%v)", r.Outcome, r.Reason)
}
