package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

// Offer is a catalog entry as seen by one profile.
type Offer struct {
	entity.Avatar
	Owned bool `json:"owned"`
}

type ShopService interface {
	Offers(profile *entity.Profile) []Offer
	Buy(ctx context.Context, profile *entity.Profile, key string) error
	UnlockAll(ctx context.Context, profile *entity.Profile) error
}

type shopService struct {
	logger *slog.Logger

	profileService ProfileService
	unlockAllBonus int
}

func NewShopService(logger *slog.Logger, profileService ProfileService, unlockAllBonus int) ShopService {
	return &shopService{
		logger:         logger,
		profileService: profileService,
		unlockAllBonus: unlockAllBonus,
	}
}

// Offers lists every avatar that can be bought; free ones are never on sale.
func (that *shopService) Offers(profile *entity.Profile) []Offer {
	offers := make([]Offer, 0, len(entity.Avatars))
	for _, avatar := range entity.Avatars {
		if avatar.IsFree() {
			continue
		}

		offers = append(offers, Offer{Avatar: avatar, Owned: profile.Owns(avatar.Key)})
	}

	return offers
}

// Buy unlocks key for the profile. Buying an owned avatar is a no-op so the
// caller can treat it as "equip". The balance is checked against the stored wallet.
func (that *shopService) Buy(ctx context.Context, profile *entity.Profile, key string) error {
	avatar, ok := entity.FindAvatar(key)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAvatar, key)
	}

	if profile.Owns(key) {
		return nil
	}

	if avatar.IsFree() {
		return fmt.Errorf("%w: %s", apperror.ErrNotForSale, key)
	}

	updated, err := that.profileService.Update(ctx, profile.ID, func(stored *entity.Profile) error {
		if stored.Owns(key) {
			return nil
		}

		if stored.Coins < avatar.Cost {
			return fmt.Errorf("%w: have %d, need %d", apperror.ErrNotEnoughCoins, stored.Coins, avatar.Cost)
		}

		stored.Coins -= avatar.Cost
		stored.Unlock(key)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to buy avatar: %w", err)
	}

	*profile = *updated

	that.logger.Info("avatar bought", "profileID", profile.ID, "avatar", key, "coins", profile.Coins)

	return nil
}

// UnlockAll grants the whole catalog plus a coin bonus.
func (that *shopService) UnlockAll(ctx context.Context, profile *entity.Profile) error {
	updated, err := that.profileService.Update(ctx, profile.ID, func(stored *entity.Profile) error {
		stored.Inventory = entity.AvatarKeys()
		stored.Coins += that.unlockAllBonus

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to unlock catalog: %w", err)
	}

	*profile = *updated

	that.logger.Info("catalog unlocked", "profileID", profile.ID, "coins", profile.Coins)

	return nil
}
