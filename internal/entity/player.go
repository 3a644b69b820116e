package entity

import (
	"fmt"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
)

// Mark identifies one of the two seats at the board. The zero value is an empty cell.
type Mark string

const (
	Empty     Mark = ""
	PlayerOne Mark = "p1"
	PlayerTwo Mark = "p2"
)

func ParseMark(raw string) (Mark, error) {
	switch mark := Mark(raw); mark {
	case PlayerOne, PlayerTwo:
		return mark, nil
	default:
		return Empty, fmt.Errorf("%w: %q", apperror.ErrUnknownSeat, raw)
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerOne || that == PlayerTwo
}

// Other returns the opposing seat. Empty stays Empty.
func (that Mark) Other() Mark {
	switch that {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return Empty
	}
}

// Seats keeps one record per player, addressed by Mark.
type Seats[T any] struct {
	P1 T `json:"p1"`
	P2 T `json:"p2"`
}

func (that *Seats[T]) For(mark Mark) *T {
	switch mark {
	case PlayerOne:
		return &that.P1
	case PlayerTwo:
		return &that.P2
	default:
		return nil
	}
}

func (that *Seats[T]) Get(mark Mark) T {
	if ptr := that.For(mark); ptr != nil {
		return *ptr
	}

	var zero T
	return zero
}

func (that *Seats[T]) Set(mark Mark, value T) {
	if ptr := that.For(mark); ptr != nil {
		*ptr = value
	}
}
