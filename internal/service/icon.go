package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

const (
	pngDataURLPrefix = "data:image/png;base64,"

	MaxIconBytes     = 512 << 10
	MaxIconDimension = 1024
)

type IconService interface {
	Save(ctx context.Context, sessionID string, seat entity.Mark, dataURL string) (*entity.Icon, error)
	Get(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error)
	Delete(ctx context.Context, sessionID string, seat entity.Mark) error
}

type iconRepo interface {
	Save(ctx context.Context, icon *entity.Icon) error
	Find(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error)
	Delete(ctx context.Context, sessionID string, seat entity.Mark) error
}

type iconService struct {
	iconRepo iconRepo
	now      func() time.Time
}

func NewIconService(iconRepo iconRepo) IconService {
	return &iconService{
		iconRepo: iconRepo,
		now:      time.Now,
	}
}

// Save stores a drawing exported by the client canvas as a PNG data URL.
func (that *iconService) Save(ctx context.Context, sessionID string, seat entity.Mark, dataURL string) (*entity.Icon, error) {
	image, err := DecodeIcon(dataURL)
	if err != nil {
		return nil, err
	}

	icon := &entity.Icon{
		SessionID: sessionID,
		Seat:      seat,
		PNG:       image,
		CreatedAt: that.now().UTC(),
	}

	if err = that.iconRepo.Save(ctx, icon); err != nil {
		return nil, fmt.Errorf("failed to save icon: %w", err)
	}

	return icon, nil
}

func (that *iconService) Get(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error) {
	icon, err := that.iconRepo.Find(ctx, sessionID, seat)
	if err != nil {
		return nil, fmt.Errorf("failed to find icon: %w", err)
	}

	return icon, nil
}

func (that *iconService) Delete(ctx context.Context, sessionID string, seat entity.Mark) error {
	if err := that.iconRepo.Delete(ctx, sessionID, seat); err != nil {
		return fmt.Errorf("failed to delete icon: %w", err)
	}

	return nil
}

// DecodeIcon turns a PNG data URL into raw PNG bytes, rejecting anything that
// is not a reasonably sized PNG.
func DecodeIcon(dataURL string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(dataURL, pngDataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: expected a png data url", apperror.ErrInvalidIcon)
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxIconBytes {
		return nil, fmt.Errorf("%w: image is too large", apperror.ErrInvalidIcon)
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidIcon, err)
	}

	config, err := png.DecodeConfig(bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidIcon, err)
	}

	if config.Width > MaxIconDimension || config.Height > MaxIconDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", apperror.ErrInvalidIcon, config.Width, config.Height, MaxIconDimension)
	}

	return image, nil
}
