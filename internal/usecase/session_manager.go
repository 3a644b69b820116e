package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
)

// SessionManager keeps the live sessions of this process and restores the rest from storage.
// Every Start or Get takes a hold on the session that the caller gives back with Release;
// a session leaves memory only when its last hold is released.
type SessionManager struct {
	logger *slog.Logger

	services  Services
	scheduler Scheduler
	botDelay  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	holds    map[string]int
}

func NewSessionManager(logger *slog.Logger, services Services, scheduler Scheduler, botDelay time.Duration) *SessionManager {
	return &SessionManager{
		logger:    logger,
		services:  services,
		scheduler: scheduler,
		botDelay:  botDelay,
		sessions:  make(map[string]*Session),
		holds:     make(map[string]int),
	}
}

// Start attaches to sessionID when it exists and belongs to the profile, otherwise it
// opens a new session for the profile and deals the first round.
func (that *SessionManager) Start(ctx context.Context, sessionID, profileID string) (*Session, error) {
	log := that.logger.With("method", "Start")

	if sessionID != "" {
		session, err := that.Get(ctx, sessionID)
		switch {
		case err == nil && session.profileID() == profileID:
			return session, nil
		case err == nil:
			that.Release(sessionID)
			log.Warn("session belongs to another profile, opening a new one", "sessionID", sessionID)
		case errors.Is(err, apperror.ErrSessionNotFound):
			log.Info("session not found, opening a new one", "sessionID", sessionID)
		default:
			return nil, err
		}
	}

	profile, err := that.services.Profiles.GetOrCreate(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	id, err := pkg.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	state := entity.NewSession(id, profile.ID)
	state.Coins.P1 = profile.Coins

	session := newSession(that.logger, state, that.services, that.scheduler, that.botDelay)

	that.mu.Lock()
	that.sessions[id] = session
	that.holds[id] = 1
	that.mu.Unlock()

	session.Resume(ctx)

	log.Info("session opened", "sessionID", id, "profileID", profile.ID)

	return session, nil
}

// Get returns the live session, restoring it from storage when this process does not hold it.
// The caller owns a hold on the session until it calls Release.
func (that *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	that.mu.Lock()
	session, ok := that.sessions[id]
	if ok {
		that.holds[id]++
	}
	that.mu.Unlock()

	if ok {
		return session, nil
	}

	state, err := that.services.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	that.mu.Lock()
	if existing, found := that.sessions[id]; found {
		that.holds[id]++
		that.mu.Unlock()
		return existing, nil
	}

	session = newSession(that.logger, state, that.services, that.scheduler, that.botDelay)
	that.sessions[id] = session
	that.holds[id] = 1
	that.mu.Unlock()

	session.Resume(ctx)

	that.logger.Info("session restored", "sessionID", id, "round", state.Game.Round)

	return session, nil
}

// Snapshot reads a session without taking ownership of it.
func (that *SessionManager) Snapshot(ctx context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	session, ok := that.sessions[id]
	that.mu.Unlock()

	if ok {
		snapshot := session.Snapshot()
		return &snapshot, nil
	}

	state, err := that.services.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return state, nil
}

// Release gives back a hold taken by Start or Get. The session leaves memory with
// its last hold; its state stays in storage and a later Get picks it up again.
func (that *SessionManager) Release(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return
	}

	that.holds[id]--
	if that.holds[id] > 0 {
		return
	}

	session.Close()
	delete(that.sessions, id)
	delete(that.holds, id)

	that.logger.Debug("session released", "sessionID", id)
}

// Delete removes a session for good: its snapshot and its drawings.
// A session somebody still holds is left alone.
func (that *SessionManager) Delete(ctx context.Context, id string) error {
	log := that.logger.With("method", "Delete", "sessionID", id)

	that.mu.Lock()
	if _, ok := that.sessions[id]; ok {
		that.mu.Unlock()
		return apperror.ErrSessionInUse
	}
	that.mu.Unlock()

	if err := that.services.Sessions.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	for _, seat := range []entity.Mark{entity.PlayerOne, entity.PlayerTwo} {
		if err := that.services.Icons.Delete(ctx, id, seat); err != nil {
			log.Warn("failed to delete icon", "seat", seat, "error", err)
		}
	}

	log.Info("session deleted")

	return nil
}

// Shutdown stops every pending computer move.
func (that *SessionManager) Shutdown() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, session := range that.sessions {
		session.Close()
		delete(that.sessions, id)
		delete(that.holds, id)
	}
}
