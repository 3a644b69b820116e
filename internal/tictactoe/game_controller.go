package tictactoe

import (
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

// HasWin reports whether mark occupies every cell of at least one win line.
func HasWin(board entity.Board, mark entity.Mark) bool {
	if mark == entity.Empty {
		return false
	}

	for _, line := range entity.WinLines {
		if board[line[0]] == mark && board[line[1]] == mark && board[line[2]] == mark {
			return true
		}
	}

	return false
}

// GameController drives one round: it owns the board and whose turn it is.
type GameController struct {
	game *entity.Game
}

func NewGameController(game *entity.Game) *GameController {
	return &GameController{game: game}
}

// Reset clears the board and hands the first move to starter.
func (that *GameController) Reset(starter entity.Mark) {
	that.game.Round++
	that.game.Board = entity.Board{}
	that.game.Turn = starter
	that.game.Active = true
	that.game.Winner = entity.Empty
	that.game.Status = entity.StatusOngoing
}

// CanMove reports whether the current player may mark cell.
func (that *GameController) CanMove(cell int) bool {
	if !that.game.Active {
		return false
	}

	if cell < 0 || cell >= len(that.game.Board) {
		return false
	}

	return that.game.Board[cell] == entity.Empty
}

// ApplyMove marks cell for the player whose turn it is. It is a no-op returning
// false when CanMove(cell) does not hold.
func (that *GameController) ApplyMove(cell int) (entity.Outcome, bool) {
	if !that.CanMove(cell) {
		return that.game.Outcome(), false
	}

	mark := that.game.Turn
	that.game.Board[cell] = mark

	// win is checked before fullness so a winning last move is not a draw
	switch {
	case HasWin(that.game.Board, mark):
		that.finish(mark)
	case that.game.Board.IsFull():
		that.finish(entity.Empty)
	default:
		that.game.Turn = mark.Other()
	}

	return that.game.Outcome(), true
}

func (that *GameController) finish(winner entity.Mark) {
	that.game.Active = false
	that.game.Winner = winner
	that.game.Status = entity.StatusFinished
}

func (that *GameController) Outcome() entity.Outcome {
	return that.game.Outcome()
}

func (that *GameController) Board() entity.Board {
	return that.game.Board
}

func (that *GameController) Turn() entity.Mark {
	return that.game.Turn
}

func (that *GameController) Active() bool {
	return that.game.Active
}

func (that *GameController) Round() uint64 {
	return that.game.Round
}
