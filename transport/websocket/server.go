package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
	"github.com/rocketscienceinc/monstertoe-backend/internal/usecase"
)

const (
	profileCookie   = "profile_id"
	readLimit       = 1 << 20
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type sessionManager interface {
	Start(ctx context.Context, sessionID, profileID string) (*usecase.Session, error)
	Release(id string)
	Delete(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, message *Message, client *client) error

type Server struct {
	logger   *slog.Logger
	sessions sessionManager

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionManager) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionSessionStart] = server.handleSessionStart
	server.handlers[actionSessionMode] = server.handleSessionMode
	server.handlers[actionSessionStarter] = server.handleSessionStarter
	server.handlers[actionSessionReset] = server.handleSessionReset
	server.handlers[actionSessionLeave] = server.handleSessionLeave
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionAvatarSet] = server.handleAvatarSet
	server.handlers[actionShopOffers] = server.handleShopOffers
	server.handlers[actionShopBuy] = server.handleShopBuy
	server.handlers[actionShopUnlockAll] = server.handleShopUnlockAll
	server.handlers[actionIconSave] = server.handleIconSave

	return server
}

// Handler exposes the upgrade endpoint at /ws.
func (that *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", that.upgradeToWebSocket)

	return r
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint: contextcheck // parent is already canceled
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	profileID := that.setProfileCookie(writer, req)

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}

	conn.SetReadLimit(readLimit)

	c := newClient(conn, profileID)
	defer that.detach(c)

	log.Info("WebSocket connection established", "profileID", profileID)

	if err = that.handleMessages(req.Context(), c); err != nil {
		log.Error("error handling messages", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if isClosed(ctx, err) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(ctx, c, actionError, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(ctx, c, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// detach stops forwarding events to the client and lets the manager drop an abandoned session.
func (that *Server) detach(c *client) {
	if sessionID := c.detach(); sessionID != "" {
		that.sessions.Release(sessionID)
	}
}

// setProfileCookie - keeps the wallet bound to the browser across connections.
func (that *Server) setProfileCookie(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "setProfileCookie")

	cookie, err := req.Cookie(profileCookie)
	if err == nil && pkg.IsValidID(cookie.Value) {
		log.Debug("profile cookie found", "profileID", cookie.Value)
		return cookie.Value
	}

	profileID, err := pkg.GenerateProfileID()
	if err != nil {
		log.Error("failed to generate profile id", "error", err)
		return ""
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     profileCookie,
		Value:    profileID,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("profile cookie not found, new one created", "profileID", profileID)

	return profileID
}

func isClosed(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
