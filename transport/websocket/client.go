package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/monstertoe-backend/internal/usecase"
)

// client is one browser tab. It follows at most one session at a time.
type client struct {
	conn      *websocket.Conn
	profileID string

	mu          sync.Mutex
	session     *usecase.Session
	unsubscribe func()
}

func newClient(conn *websocket.Conn, profileID string) *client {
	return &client{
		conn:      conn,
		profileID: profileID,
	}
}

// attach follows session and returns the id of the session whose hold the caller
// should give back: the one it stopped following, or session itself when it already
// followed it.
func (that *client) attach(session *usecase.Session, listener usecase.Listener) string {
	that.mu.Lock()
	defer that.mu.Unlock()

	previous := ""
	if that.session != nil {
		if that.session == session {
			return session.ID()
		}

		previous = that.session.ID()
		that.unsubscribe()
	}

	that.session = session
	that.unsubscribe = session.Subscribe(listener)

	return previous
}

func (that *client) current() *usecase.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session
}

func (that *client) detach() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.session == nil {
		return ""
	}

	id := that.session.ID()
	that.unsubscribe()
	that.session, that.unsubscribe = nil, nil

	return id
}

func (that *client) send(ctx context.Context, action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err = wsjson.Write(ctx, that.conn, Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
