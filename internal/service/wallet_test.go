package service

import (
	"sync"
	"testing"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/repository"
	"github.com/rocketscienceinc/monstertoe-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallet_ConcurrentRewardsAndPurchase(t *testing.T) {
	// Given: a stored wallet with 60 coins shared by several tables
	ctx, st := suite.New(t)

	repo := repository.NewProfileRepository(st.Storage)
	profiles := NewProfileService(repo)
	rewards := NewRewardService(discardLogger, profiles, fixedRand(0), 10)
	shop := NewShopService(discardLogger, profiles, 500)

	wallet := entity.NewProfile("shared")
	wallet.Coins = 60
	require.NoError(t, repo.CreateOrUpdate(ctx, wallet))

	const wins = 10

	// When: wins are paid while an avatar is bought from a stale copy
	var wg sync.WaitGroup
	for range wins {
		wg.Add(1)
		go func() {
			defer wg.Done()

			session := entity.NewSession("table", "shared")
			_, err := rewards.Award(ctx, session, entity.Outcome{Kind: entity.OutcomeWin, Winner: entity.PlayerOne})
			assert.NoError(t, err)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		stale := entity.NewProfile("shared")
		stale.Coins = 60
		assert.NoError(t, shop.Buy(ctx, stale, "orange"))
	}()

	wg.Wait()

	// Then: every win and the purchase are reflected in the wallet
	stored, err := repo.GetByID(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 60+wins*10-50, stored.Coins)
	assert.True(t, stored.Owns("orange"))
}
