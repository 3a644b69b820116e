package service

import (
	"errors"
	"slices"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// BotService is the computer opponent.
type BotService interface {
	// ChooseMove picks a cell for self: win if possible, else block opponent, else random.
	ChooseMove(board entity.Board, self, opponent entity.Mark) (int, error)
	// PickAvatar picks a look for the computer that differs from exclude.
	PickAvatar(exclude string, inventory []string) string
}

type botService struct {
	rnd           pkg.Rand
	ignoreUnlocks bool
}

// NewBotService builds the computer opponent. With ignoreUnlocks the bot may
// dress up as any avatar in the catalog, owned or not.
func NewBotService(rnd pkg.Rand, ignoreUnlocks bool) BotService {
	if rnd == nil {
		rnd = pkg.DefaultRand()
	}

	return &botService{
		rnd:           rnd,
		ignoreUnlocks: ignoreUnlocks,
	}
}

func (that *botService) ChooseMove(board entity.Board, self, opponent entity.Mark) (int, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	if cell, ok := completingCell(board, self); ok {
		return cell, nil
	}

	if cell, ok := completingCell(board, opponent); ok {
		return cell, nil
	}

	return pkg.Pick(that.rnd, availableCells), nil
}

// completingCell finds the first line, in WinLines order, holding two marks
// and one empty cell, and returns that empty cell.
func completingCell(board entity.Board, mark entity.Mark) (int, bool) {
	for _, line := range entity.WinLines {
		marks, emptyCell := 0, -1

		for _, cell := range line {
			switch board[cell] {
			case mark:
				marks++
			case entity.Empty:
				if emptyCell < 0 {
					emptyCell = cell
				}
			}
		}

		if marks == 2 && emptyCell >= 0 {
			return emptyCell, true
		}
	}

	return 0, false
}

func (that *botService) PickAvatar(exclude string, inventory []string) string {
	pool := entity.AvatarKeys()
	if !that.ignoreUnlocks {
		pool = inventory
	}

	candidates := slices.DeleteFunc(slices.Clone(pool), func(key string) bool {
		return key == exclude
	})

	// an owner with a single avatar leaves nothing to pick, fall back to the catalog
	if len(candidates) == 0 {
		candidates = slices.DeleteFunc(entity.AvatarKeys(), func(key string) bool {
			return key == exclude
		})
	}

	return pkg.Pick(that.rnd, candidates)
}
