package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
)

const (
	StatusIdle     = ""
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

const BoardSize = 9

var (
	ErrUnknownGameStatus = errors.New("unknown game status")

	// WinLines lists every winning triple: rows, then columns, then diagonals.
	// The order is relied upon by the computer opponent for tie-breaks.
	WinLines = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board is a row-major 3x3 grid.
type Board [BoardSize]Mark

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) Occupied() int {
	return len(that) - len(that.EmptyCells())
}

type OutcomeKind string

const (
	OutcomeInProgress OutcomeKind = "in_progress"
	OutcomeWin        OutcomeKind = "win"
	OutcomeDraw       OutcomeKind = "draw"
)

// Outcome is derived from a Game and never stored on its own.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Winner Mark        `json:"winner,omitempty"`
}

func (that Outcome) IsOver() bool {
	return that.Kind == OutcomeWin || that.Kind == OutcomeDraw
}

// Game is the state of a single round: the board and whose turn it is.
type Game struct {
	Round  uint64 `json:"round"`
	Board  Board  `json:"board"`
	Turn   Mark   `json:"turn"`
	Active bool   `json:"active"`
	Winner Mark   `json:"winner,omitempty"`
	Status string `json:"status"`
}

func (that *Game) Outcome() Outcome {
	if !that.IsFinished() {
		return Outcome{Kind: OutcomeInProgress}
	}

	if that.Winner != Empty {
		return Outcome{Kind: OutcomeWin, Winner: that.Winner}
	}

	return Outcome{Kind: OutcomeDraw}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) ConfirmOngoingState() error {
	switch that.Status {
	case StatusOngoing:
		return nil
	case StatusFinished, StatusIdle:
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
