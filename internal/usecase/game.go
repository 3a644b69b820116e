package usecase

import (
	"context"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/service"
)

type EventKind string

const (
	EventState    EventKind = "session:state"
	EventGameOver EventKind = "game:over"
)

// Event is published to listeners after every change of a session.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Seq     uint64         `json:"seq"`
	Session entity.Session `json:"session"`
	Outcome entity.Outcome `json:"outcome"`
	Reward  *entity.Reward `json:"reward,omitempty"`
}

// Listener receives session events. It is called without any session lock held.
type Listener func(Event)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type profileService interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Profile, error)
}

type botService interface {
	ChooseMove(board entity.Board, self, opponent entity.Mark) (int, error)
	PickAvatar(exclude string, inventory []string) string
}

type rewardService interface {
	Award(ctx context.Context, session *entity.Session, outcome entity.Outcome) (*entity.Reward, error)
}

type shopService interface {
	Offers(profile *entity.Profile) []service.Offer
	Buy(ctx context.Context, profile *entity.Profile, key string) error
	UnlockAll(ctx context.Context, profile *entity.Profile) error
}

type iconService interface {
	Save(ctx context.Context, sessionID string, seat entity.Mark, dataURL string) (*entity.Icon, error)
	Delete(ctx context.Context, sessionID string, seat entity.Mark) error
}

// Services groups the collaborators a session delegates to.
type Services struct {
	Sessions sessionRepo
	Profiles profileService
	Bot      botService
	Rewards  rewardService
	Shop     shopService
	Icons    iconService
}
