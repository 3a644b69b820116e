package entity

import (
	"fmt"
	"maps"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
)

type Mode string

const (
	ModeVsComputer Mode = "pvc"
	ModeVsHuman    Mode = "pvp"
)

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(raw); mode {
	case ModeVsComputer, ModeVsHuman:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, raw)
	}
}

type SessionConfig struct {
	Mode    Mode `json:"mode"`
	Starter Mark `json:"starter"`
}

// AvatarSelection is what a seat shows on the board: a catalog avatar or a custom drawing.
type AvatarSelection struct {
	Key    string `json:"key"`
	Custom bool   `json:"custom,omitempty"`
}

// Session is everything that survives across rounds for one player at one table.
// ProfileID doubles as the owner's cookie and never goes out to clients.
type Session struct {
	ID        string                 `json:"id"`
	ProfileID string                 `json:"-"`
	Config    SessionConfig          `json:"config"`
	Game      Game                   `json:"game"`
	Scores    Seats[int]             `json:"scores"`
	Coins     Seats[int]             `json:"coins"`
	Toys      Seats[map[string]int]  `json:"toys"`
	Avatars   Seats[AvatarSelection] `json:"avatars"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func NewSession(id, profileID string) *Session {
	return &Session{
		ID:        id,
		ProfileID: profileID,
		Config: SessionConfig{
			Mode:    ModeVsComputer,
			Starter: PlayerOne,
		},
		Toys: Seats[map[string]int]{
			P1: map[string]int{},
			P2: map[string]int{},
		},
		Avatars: Seats[AvatarSelection]{
			P1: AvatarSelection{Key: DefaultP1Avatar},
			P2: AvatarSelection{Key: DefaultP2Avatar},
		},
	}
}

// IsComputer reports whether the seat is played by the computer. Only the
// second seat is ever computer-controlled.
func (that *Session) IsComputer(mark Mark) bool {
	return that.Config.Mode == ModeVsComputer && mark == PlayerTwo
}

func (that *Session) AddToy(mark Mark, prize string) {
	toys := that.Toys.For(mark)
	if toys == nil {
		return
	}

	if *toys == nil {
		*toys = map[string]int{}
	}

	(*toys)[prize]++
}

// Clone returns a copy that shares no mutable state with the original.
func (that *Session) Clone() Session {
	clone := *that
	clone.Toys = Seats[map[string]int]{
		P1: maps.Clone(that.Toys.P1),
		P2: maps.Clone(that.Toys.P2),
	}

	return clone
}

// Reward is what the winner of a round receives.
type Reward struct {
	Winner Mark   `json:"winner"`
	Coins  int    `json:"coins"`
	Prize  string `json:"prize"`
}
