package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
)

// RewardService pays out coins and toys at the end of a round.
type RewardService interface {
	Award(ctx context.Context, session *entity.Session, outcome entity.Outcome) (*entity.Reward, error)
}

type rewardService struct {
	logger *slog.Logger

	profileService ProfileService
	rnd            pkg.Rand
	winCoins       int
}

func NewRewardService(logger *slog.Logger, profileService ProfileService, rnd pkg.Rand, winCoins int) RewardService {
	if rnd == nil {
		rnd = pkg.DefaultRand()
	}

	return &rewardService{
		logger:         logger,
		profileService: profileService,
		rnd:            rnd,
		winCoins:       winCoins,
	}
}

// Award credits the winner with a point, coins and a random toy. Draws pay nothing.
// The first seat's coins live in the persisted profile; the second seat's only in the session.
// When the wallet cannot be paid the reward is still returned together with the error.
func (that *rewardService) Award(ctx context.Context, session *entity.Session, outcome entity.Outcome) (*entity.Reward, error) {
	if outcome.Kind != entity.OutcomeWin {
		return nil, nil //nolint: nilnil // nothing to award
	}

	log := that.logger.With("method", "Award", "sessionID", session.ID, "winner", outcome.Winner)

	winner := outcome.Winner
	reward := &entity.Reward{
		Winner: winner,
		Coins:  that.winCoins,
		Prize:  pkg.Pick(that.rnd, entity.ToyPrizes),
	}

	session.Scores.Set(winner, session.Scores.Get(winner)+1)
	session.AddToy(winner, reward.Prize)

	if winner != entity.PlayerOne {
		session.Coins.Set(winner, session.Coins.Get(winner)+reward.Coins)
		log.Info("round rewarded", "coins", reward.Coins, "prize", reward.Prize)

		return reward, nil
	}

	profile, err := that.profileService.Update(ctx, session.ProfileID, func(profile *entity.Profile) error {
		profile.Coins += reward.Coins
		return nil
	})
	if err != nil {
		return reward, fmt.Errorf("failed to pay the winner: %w", err)
	}

	session.Coins.P1 = profile.Coins

	log.Info("round rewarded", "coins", reward.Coins, "prize", reward.Prize)

	return reward, nil
}
