package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

// maxUpdateAttempts bounds optimistic retries when other writers keep touching the same wallet.
const maxUpdateAttempts = 64

type ProfileRepository interface {
	CreateOrUpdate(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error)
}

type dbProfile struct {
	client *redis.Client
}

func NewProfileRepository(client *redis.Client) ProfileRepository {
	return &dbProfile{
		client: client,
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func profileKey(id string) string {
	return "profile:" + id
}

func (that *dbProfile) CreateOrUpdate(ctx context.Context, profile *entity.Profile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	err = that.client.Set(ctx, profileKey(profile.ID), profileJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}

	return nil
}

func (that *dbProfile) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return readProfile(ctx, that.client, id)
}

// Update runs fn on the stored wallet inside a WATCH/MULTI transaction and
// retries when another writer got there first. A missing profile starts out fresh.
// Errors returned by fn abort the update and are passed through.
func (that *dbProfile) Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error) {
	key := profileKey(id)

	var updated *entity.Profile

	txf := func(tx *redis.Tx) error {
		profile, err := readProfile(ctx, tx, id)
		if errors.Is(err, apperror.ErrProfileNotFound) {
			profile = entity.NewProfile(id)
		} else if err != nil {
			return err
		}

		if err = fn(profile); err != nil {
			return err
		}

		profileJSON, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, profileJSON, 0)
			return nil
		}); err != nil {
			return err //nolint: wrapcheck // TxFailedErr is matched by the caller
		}

		updated = profile

		return nil
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return nil, apperror.ErrProfileBusy
}

func readProfile(ctx context.Context, getter stringGetter, id string) (*entity.Profile, error) {
	response, err := getter.Get(ctx, profileKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrProfileNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	var existingProfile entity.Profile
	if err = json.Unmarshal([]byte(response), &existingProfile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &existingProfile, nil
}
