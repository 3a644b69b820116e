package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

func TestProfileService_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored profile", func(t *testing.T) {
		repo := &mockProfileRepo{}
		stored := &entity.Profile{ID: "p1", Coins: 40, Inventory: []string{"green", "blue"}}
		repo.On("GetByID", ctx, "p1").Return(stored, nil).Once()

		profile, err := NewProfileService(repo).GetOrCreate(ctx, "p1")

		require.NoError(t, err)
		assert.Equal(t, stored, profile)
		repo.AssertExpectations(t)
	})

	t.Run("Creates a profile under the requested id when unknown", func(t *testing.T) {
		// Given: the repository has never seen the id
		repo := &mockProfileRepo{}
		repo.On("GetByID", ctx, "lost").Return(nil, apperror.ErrProfileNotFound).Once()
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Profile")).Return(nil).Once()

		// When: the profile is requested
		profile, err := NewProfileService(repo).GetOrCreate(ctx, "lost")

		// Then: a fresh wallet is created and stored
		require.NoError(t, err)
		assert.Equal(t, entity.NewProfile("lost"), profile)
		repo.AssertExpectations(t)
	})

	t.Run("Creates a profile with a new id when none is given", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Profile")).Return(nil).Once()

		profile, err := NewProfileService(repo).GetOrCreate(ctx, "")

		require.NoError(t, err)
		assert.NotEmpty(t, profile.ID)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Storage failures are not treated as missing profiles", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("GetByID", ctx, "p1").Return(nil, errRedisDown).Once()

		profile, err := NewProfileService(repo).GetOrCreate(ctx, "p1")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, profile)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes the updated wallet back", func(t *testing.T) {
		repo := &mockProfileRepo{}
		repo.On("Update", ctx, "p1").Return(&entity.Profile{ID: "p1", Coins: 5}, nil).Once()

		profile, err := NewProfileService(repo).Update(ctx, "p1", func(p *entity.Profile) error {
			p.Coins *= 2
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 10, profile.Coins)
		repo.AssertExpectations(t)
	})

	t.Run("Refuses an empty id", func(t *testing.T) {
		repo := &mockProfileRepo{}

		_, err := NewProfileService(repo).Update(ctx, "", func(*entity.Profile) error { return nil })

		require.ErrorIs(t, err, apperror.ErrProfileNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRewardService_Award(t *testing.T) {
	ctx := context.Background()

	t.Run("First seat win is paid into the profile", func(t *testing.T) {
		// Given: a stored profile with 5 coins
		repo := &mockProfileRepo{}
		repo.On("Update", ctx, "profile1").Return(&entity.Profile{ID: "profile1", Coins: 5}, nil).Once()

		session := entity.NewSession("s1", "profile1")
		rewards := NewRewardService(discardLogger, NewProfileService(repo), fixedRand(1), 10)

		// When: the first seat wins
		reward, err := rewards.Award(ctx, session, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerOne})

		// Then: it gets a point, ten coins and the second toy on the list
		require.NoError(t, err)
		assert.Equal(t, &entity.Reward{Winner: entity.PlayerOne, Coins: 10, Prize: entity.ToyPrizes[1]}, reward)
		assert.Equal(t, 1, session.Scores.P1)
		assert.Equal(t, 15, session.Coins.P1)
		assert.Equal(t, map[string]int{entity.ToyPrizes[1]: 1}, session.Toys.P1)
		repo.AssertExpectations(t)
	})

	t.Run("Second seat win stays in the session", func(t *testing.T) {
		repo := &mockProfileRepo{}
		session := entity.NewSession("s1", "profile1")
		session.Coins.P2 = 20
		rewards := NewRewardService(discardLogger, NewProfileService(repo), fixedRand(0), 10)

		reward, err := rewards.Award(ctx, session, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerTwo})

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerTwo, reward.Winner)
		assert.Equal(t, 30, session.Coins.P2)
		assert.Equal(t, 1, session.Scores.P2)
		assert.Equal(t, 0, session.Scores.P1)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Draw pays nothing", func(t *testing.T) {
		repo := &mockProfileRepo{}
		session := entity.NewSession("s1", "profile1")
		rewards := NewRewardService(discardLogger, NewProfileService(repo), fixedRand(0), 10)

		reward, err := rewards.Award(ctx, session, entity.Outcome{Kind: entity.OutcomeDraw})

		require.NoError(t, err)
		assert.Nil(t, reward)
		assert.Equal(t, entity.Seats[int]{}, session.Scores)
	})

	t.Run("Wallet failure still counts the win", func(t *testing.T) {
		// Given: the wallet cannot be written
		repo := &mockProfileRepo{}
		repo.On("Update", ctx, "profile1").Return(nil, errRedisDown).Once()

		session := entity.NewSession("s1", "profile1")
		session.Coins.P1 = 7
		rewards := NewRewardService(discardLogger, NewProfileService(repo), fixedRand(0), 10)

		// When: the first seat wins
		reward, err := rewards.Award(ctx, session, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerOne})

		// Then: the error is reported, but the point, the toy and the reward survive
		require.ErrorIs(t, err, errRedisDown)
		require.NotNil(t, reward)
		assert.Equal(t, entity.ToyPrizes[0], reward.Prize)
		assert.Equal(t, 1, session.Scores.P1)
		assert.Equal(t, map[string]int{entity.ToyPrizes[0]: 1}, session.Toys.P1)
		assert.Equal(t, 7, session.Coins.P1)
	})
}
