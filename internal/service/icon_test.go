package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIconRepo struct {
	mock.Mock
}

func (that *mockIconRepo) Save(ctx context.Context, icon *entity.Icon) error {
	return that.Called(ctx, icon).Error(0)
}

func (that *mockIconRepo) Find(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error) {
	args := that.Called(ctx, sessionID, seat)

	icon, _ := args.Get(0).(*entity.Icon)
	return icon, args.Error(1)
}

func (that *mockIconRepo) Delete(ctx context.Context, sessionID string, seat entity.Mark) error {
	return that.Called(ctx, sessionID, seat).Error(0)
}

func pngDataURL(t *testing.T, width, height int) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))

	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes()
}

func TestDecodeIcon(t *testing.T) {
	t.Run("Accepts a canvas export", func(t *testing.T) {
		dataURL, raw := pngDataURL(t, 280, 280)

		decoded, err := DecodeIcon(dataURL)

		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	})

	t.Run("Rejects other formats", func(t *testing.T) {
		_, err := DecodeIcon("data:image/jpeg;base64,AAAA")

		require.ErrorIs(t, err, apperror.ErrInvalidIcon)
	})

	t.Run("Rejects broken base64", func(t *testing.T) {
		_, err := DecodeIcon(pngDataURLPrefix + "%%%")

		require.ErrorIs(t, err, apperror.ErrInvalidIcon)
	})

	t.Run("Rejects bytes that are not a png", func(t *testing.T) {
		_, err := DecodeIcon(pngDataURLPrefix + base64.StdEncoding.EncodeToString([]byte("hello")))

		require.ErrorIs(t, err, apperror.ErrInvalidIcon)
	})

	t.Run("Rejects oversized drawings", func(t *testing.T) {
		dataURL, _ := pngDataURL(t, MaxIconDimension+1, 1)

		_, err := DecodeIcon(dataURL)

		require.ErrorIs(t, err, apperror.ErrInvalidIcon)
	})
}

func TestIconService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the decoded image", func(t *testing.T) {
		// Given: a valid drawing
		dataURL, raw := pngDataURL(t, 10, 10)
		repo := &mockIconRepo{}
		repo.On("Save", ctx, mock.MatchedBy(func(icon *entity.Icon) bool {
			return icon.SessionID == "s1" && icon.Seat == entity.PlayerOne && bytes.Equal(icon.PNG, raw)
		})).Return(nil).Once()

		icons := NewIconService(repo).(*iconService)
		icons.now = func() time.Time { return time.Unix(100, 0) }

		// When: it is saved
		icon, err := icons.Save(ctx, "s1", entity.PlayerOne, dataURL)

		// Then: the repository receives the raw png
		require.NoError(t, err)
		assert.Equal(t, time.Unix(100, 0).UTC(), icon.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid drawing never reaches storage", func(t *testing.T) {
		repo := &mockIconRepo{}

		_, err := NewIconService(repo).Save(ctx, "s1", entity.PlayerOne, "nope")

		require.ErrorIs(t, err, apperror.ErrInvalidIcon)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestIconService_GetAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing icon", func(t *testing.T) {
		repo := &mockIconRepo{}
		repo.On("Find", ctx, "s1", entity.PlayerTwo).Return(nil, apperror.ErrIconNotFound).Once()

		_, err := NewIconService(repo).Get(ctx, "s1", entity.PlayerTwo)

		require.ErrorIs(t, err, apperror.ErrIconNotFound)
	})

	t.Run("Delete is passed through", func(t *testing.T) {
		repo := &mockIconRepo{}
		repo.On("Delete", ctx, "s1", entity.PlayerOne).Return(nil).Once()

		require.NoError(t, NewIconService(repo).Delete(ctx, "s1", entity.PlayerOne))
		repo.AssertExpectations(t)
	})
}
