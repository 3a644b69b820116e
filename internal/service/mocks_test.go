package service

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockProfileRepo struct {
	mock.Mock
}

func (that *mockProfileRepo) CreateOrUpdate(ctx context.Context, profile *entity.Profile) error {
	args := that.Called(ctx, profile)
	return args.Error(0)
}

func (that *mockProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	args := that.Called(ctx, id)

	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

// Update hands fn a copy of the stubbed stored profile, or a fresh one when the stub returns nil.
func (that *mockProfileRepo) Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error) {
	args := that.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	profile := entity.NewProfile(id)
	if stored, ok := args.Get(0).(*entity.Profile); ok {
		*profile = *stored
		profile.Inventory = slices.Clone(stored.Inventory)
	}

	if err := fn(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// fixedRand always returns the same index, clamped to n.
type fixedRand int

func (that fixedRand) IntN(n int) int {
	return min(int(that), n-1)
}
