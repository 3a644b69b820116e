package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
)

type sessionReader interface {
	Snapshot(ctx context.Context, id string) (*entity.Session, error)
}

type iconReader interface {
	Get(ctx context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error)
}

type handlers struct {
	logger *slog.Logger

	sessions sessionReader
	icons    iconReader
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write pong", "error", err)
	}
}

func (that *handlers) avatars(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, entity.Avatars)
}

func (that *handlers) session(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "session")

	session, err := that.sessions.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.NotFound(w, r)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, session)
}

// icon serves a stored drawing as a plain PNG so clients can use it as an image source.
func (that *handlers) icon(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "icon")

	seat, err := entity.ParseMark(chi.URLParam(r, "seat"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	icon, err := that.icons.Get(r.Context(), chi.URLParam(r, "id"), seat)
	if errors.Is(err, apperror.ErrIconNotFound) {
		http.NotFound(w, r)
		return
	}

	if err != nil {
		log.Error("failed to get icon", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(icon.PNG)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(icon.PNG); err != nil {
		log.Warn("failed to write icon", "error", err)
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Warn("failed to write response", "error", err)
	}
}
