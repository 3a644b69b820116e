package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

type IconRepository interface {
	Save(ctx context.Context, icon *entity.Icon) error
	Find(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error)
	Delete(ctx context.Context, sessionID string, seat entity.Mark) error
}

type iconRepository struct {
	conn *sql.DB
}

func NewIconRepository(conn *sql.DB) IconRepository {
	return &iconRepository{
		conn: conn,
	}
}

func (that *iconRepository) Save(ctx context.Context, icon *entity.Icon) error {
	query := `INSERT INTO icons (session_id, seat, image, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, seat) DO UPDATE SET image = excluded.image, created_at = excluded.created_at`

	_, err := that.conn.ExecContext(ctx, query, icon.SessionID, string(icon.Seat), icon.PNG, icon.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save icon: %w", err)
	}

	return nil
}

func (that *iconRepository) Find(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error) {
	query := `SELECT image, created_at FROM icons WHERE session_id = ? AND seat = ?`

	icon := entity.Icon{
		SessionID: sessionID,
		Seat:      seat,
	}

	var createdAt int64

	err := that.conn.QueryRowContext(ctx, query, sessionID, string(seat)).Scan(&icon.PNG, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrIconNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find icon: %w", err)
	}

	icon.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &icon, nil
}

func (that *iconRepository) Delete(ctx context.Context, sessionID string, seat entity.Mark) error {
	query := `DELETE FROM icons WHERE session_id = ? AND seat = ?`

	if _, err := that.conn.ExecContext(ctx, query, sessionID, string(seat)); err != nil {
		return fmt.Errorf("can't delete icon: %w", err)
	}

	return nil
}
