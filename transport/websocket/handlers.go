package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/usecase"
)

var errNoSession = errors.New("session is not started")

// clientErrors are reported back verbatim; anything else is logged and hidden.
var clientErrors = []error{
	errNoSession,
	apperror.ErrGameFinished,
	apperror.ErrNotYourTurn,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
	apperror.ErrUnknownMode,
	apperror.ErrUnknownSeat,
	apperror.ErrSeatLocked,
	apperror.ErrUnknownAvatar,
	apperror.ErrAvatarLocked,
	apperror.ErrNotEnoughCoins,
	apperror.ErrNotForSale,
	apperror.ErrInvalidIcon,
}

func clientError(err error) (string, bool) {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}

	return "internal error", false
}

func (that *Server) handleSessionStart(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleSessionStart", "profileID", c.profileID)

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendError(ctx, c, msg.Action, "malformed payload")
		return err
	}

	session, err := that.sessions.Start(ctx, payloadReq.SessionID, c.profileID)
	if err != nil {
		that.sendError(ctx, c, msg.Action, "failed to start session")
		return fmt.Errorf("failed to start session: %w", err)
	}

	if previous := c.attach(session, that.forward(c)); previous != "" {
		that.sessions.Release(previous)
	}

	snapshot := session.Snapshot()
	outcome := snapshot.Game.Outcome()

	if err = c.send(ctx, msg.Action, Payload{Session: &snapshot, Outcome: &outcome}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("client attached to session", "sessionID", session.ID())

	return nil
}

func (that *Server) handleSessionMode(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		mode, err := entity.ParseMode(payload.Mode)
		if err != nil {
			return err
		}

		return session.SetMode(ctx, mode)
	})
}

func (that *Server) handleSessionStarter(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		starter, err := entity.ParseMark(payload.Seat)
		if err != nil {
			return err
		}

		return session.SetStarter(ctx, starter)
	})
}

func (that *Server) handleSessionReset(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, _ Payload) error {
		session.Reset(ctx)
		return nil
	})
}

// handleSessionLeave detaches the client and throws the session away.
// Another tab on the same session keeps it alive.
func (that *Server) handleSessionLeave(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleSessionLeave", "profileID", c.profileID)

	sessionID := c.detach()
	if sessionID == "" {
		that.sendError(ctx, c, msg.Action, errNoSession.Error())
		return nil
	}

	that.sessions.Release(sessionID)

	err := that.sessions.Delete(ctx, sessionID)
	switch {
	case errors.Is(err, apperror.ErrSessionInUse):
		log.Info("session still in use, leaving it open", "sessionID", sessionID)
	case err != nil:
		that.sendError(ctx, c, msg.Action, "failed to leave session")
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err = c.send(ctx, msg.Action, Payload{SessionID: sessionID}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		if payload.Cell == nil {
			return fmt.Errorf("%w: cell is required", apperror.ErrInvalidCell)
		}

		return session.AttemptMove(ctx, *payload.Cell)
	})
}

func (that *Server) handleAvatarSet(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		seat, err := entity.ParseMark(payload.Seat)
		if err != nil {
			return err
		}

		return session.SetAvatar(ctx, seat, payload.Avatar)
	})
}

func (that *Server) handleShopOffers(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, _ Payload) error {
		offers, profile, err := session.Offers(ctx)
		if err != nil {
			return err
		}

		return c.send(ctx, msg.Action, Payload{Offers: offers, Profile: profile})
	})
}

func (that *Server) handleShopBuy(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		return session.Buy(ctx, payload.Avatar)
	})
}

func (that *Server) handleShopUnlockAll(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, _ Payload) error {
		return session.UnlockAll(ctx)
	})
}

func (that *Server) handleIconSave(ctx context.Context, msg *Message, c *client) error {
	return that.withSession(ctx, msg, c, func(session *usecase.Session, payload Payload) error {
		seat, err := entity.ParseMark(payload.Seat)
		if err != nil {
			return err
		}

		return session.SaveIcon(ctx, seat, payload.Image)
	})
}

// withSession decodes the payload and runs fn against the client's session.
// Rule violations go back to the client; only unexpected failures are returned.
func (that *Server) withSession(ctx context.Context, msg *Message, c *client, fn func(*usecase.Session, Payload) error) error {
	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendError(ctx, c, msg.Action, "malformed payload")
		return err
	}

	session := c.current()
	if session == nil {
		that.sendError(ctx, c, msg.Action, errNoSession.Error())
		return nil
	}

	err := fn(session, payloadReq)
	if err == nil {
		return nil
	}

	text, expected := clientError(err)
	that.sendError(ctx, c, msg.Action, text)

	if expected {
		return nil
	}

	return err
}

// forward pushes session events to the client.
func (that *Server) forward(c *client) usecase.Listener {
	log := that.logger.With("method", "forward", "profileID", c.profileID)

	return func(event usecase.Event) {
		payload := Payload{
			Seq:     event.Seq,
			Session: &event.Session,
			Outcome: &event.Outcome,
			Reward:  event.Reward,
		}

		if err := c.send(context.Background(), string(event.Kind), payload); err != nil {
			log.Warn("failed to push event", "kind", event.Kind, "error", err)
		}
	}
}

func (that *Server) sendError(ctx context.Context, c *client, action, errorMsg string) {
	if err := c.send(ctx, action, Payload{Error: errorMsg}); err != nil {
		that.logger.Warn("failed to send error response", "action", action, "error", err)
	}
}

func decodePayload(msg *Message, payload *Payload) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}
