package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
)

type ProfileService interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error)
}

type profileRepo interface {
	CreateOrUpdate(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error)
}

type profileService struct {
	profileRepo profileRepo
}

func NewProfileService(profileRepo profileRepo) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
	}
}

// GetOrCreate loads the profile, creating a fresh wallet when the id is empty or unknown.
func (that *profileService) GetOrCreate(ctx context.Context, id string) (*entity.Profile, error) {
	if id != "" {
		existingProfile, err := that.profileRepo.GetByID(ctx, id)
		if err == nil {
			return existingProfile, nil
		}

		if !errors.Is(err, apperror.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to get profile by id: %w", err)
		}
	}

	if id == "" {
		newID, err := pkg.GenerateProfileID()
		if err != nil {
			return nil, err
		}
		id = newID
	}

	profile := entity.NewProfile(id)
	if err := that.profileRepo.CreateOrUpdate(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// Update changes the stored wallet atomically; fn sees the latest stored state.
func (that *profileService) Update(ctx context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error) {
	if id == "" {
		return nil, apperror.ErrProfileNotFound
	}

	profile, err := that.profileRepo.Update(ctx, id, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
