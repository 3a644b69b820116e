package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/service"
	"github.com/rocketscienceinc/monstertoe-backend/internal/tictactoe"
)

const computerMoveTimeout = 5 * time.Second

// Session controls one table: it validates human input, schedules the
// computer's replies and reports round results to listeners.
type Session struct {
	logger *slog.Logger

	services  Services
	scheduler Scheduler
	botDelay  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	state   *entity.Session
	engine  *tictactoe.GameController
	pending Timer
	ticket  uint64
	seq     uint64
	closed  bool

	listenersMu    sync.RWMutex
	listeners      map[uint64]Listener
	nextListenerID uint64
}

func newSession(logger *slog.Logger, state *entity.Session, services Services, scheduler Scheduler, botDelay time.Duration) *Session {
	session := &Session{
		logger:    logger.With("component", "session", "sessionID", state.ID),
		services:  services,
		scheduler: scheduler,
		botDelay:  botDelay,
		now:       time.Now,
		state:     state,
		listeners: make(map[uint64]Listener),
	}
	session.engine = tictactoe.NewGameController(&session.state.Game)

	return session
}

func (that *Session) ID() string {
	return that.state.ID
}

// Snapshot returns a read-only copy of the session.
func (that *Session) Snapshot() entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

// Subscribe registers listener for future events and returns a func that removes it.
func (that *Session) Subscribe(listener Listener) func() {
	that.listenersMu.Lock()
	defer that.listenersMu.Unlock()

	that.nextListenerID++
	id := that.nextListenerID
	that.listeners[id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			that.listenersMu.Lock()
			delete(that.listeners, id)
			that.listenersMu.Unlock()
		})
	}
}

// Resume continues a session after it was created or restored: an idle table
// gets its first round, a round waiting on the computer gets its move scheduled.
func (that *Session) Resume(ctx context.Context) {
	that.mu.Lock()

	var events []Event
	if that.state.Game.Status == entity.StatusIdle {
		events = that.resetLocked(ctx)
	} else {
		that.scheduleComputerLocked()
		events = []Event{that.eventLocked(EventState, nil)}
	}

	that.mu.Unlock()

	that.publish(events)
}

// Reset starts a new round with the configured starter. A pending computer move is discarded.
func (that *Session) Reset(ctx context.Context) {
	that.mu.Lock()
	events := that.resetLocked(ctx)
	that.mu.Unlock()

	that.publish(events)
}

func (that *Session) SetMode(ctx context.Context, mode entity.Mode) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return err
	}

	inventory := that.inventory(ctx)

	that.mu.Lock()
	that.state.Config.Mode = mode
	if mode == entity.ModeVsComputer && that.state.Avatars.P2.Key == that.state.Avatars.P1.Key {
		that.rerollComputerAvatarLocked(inventory)
	}
	events := that.resetLocked(ctx)
	that.mu.Unlock()

	that.publish(events)

	return nil
}

func (that *Session) SetStarter(ctx context.Context, starter entity.Mark) error {
	if !starter.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrUnknownSeat, starter)
	}

	that.mu.Lock()
	that.state.Config.Starter = starter
	events := that.resetLocked(ctx)
	that.mu.Unlock()

	that.publish(events)

	return nil
}

// AttemptMove plays cell for the human whose turn it is. A rejected move leaves the session untouched.
func (that *Session) AttemptMove(ctx context.Context, cell int) error {
	that.mu.Lock()
	events, err := that.moveLocked(ctx, cell)
	that.mu.Unlock()

	if err != nil {
		return err
	}

	that.publish(events)

	return nil
}

func (that *Session) moveLocked(ctx context.Context, cell int) ([]Event, error) {
	game := &that.state.Game

	if err := game.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	if that.state.IsComputer(game.Turn) {
		return nil, apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= entity.BoardSize {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !that.engine.CanMove(cell) {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	outcome, _ := that.engine.ApplyMove(cell)

	return that.afterMoveLocked(ctx, outcome), nil
}

func (that *Session) afterMoveLocked(ctx context.Context, outcome entity.Outcome) []Event {
	if !outcome.IsOver() {
		that.scheduleComputerLocked()
		that.persistLocked(ctx)

		return []Event{that.eventLocked(EventState, nil)}
	}

	reward, err := that.services.Rewards.Award(ctx, that.state, outcome)
	if err != nil {
		that.logger.Error("failed to award round", "error", err)
	}

	that.persistLocked(ctx)

	that.logger.Info("round finished", "round", that.state.Game.Round, "outcome", outcome.Kind, "winner", outcome.Winner)

	return []Event{that.eventLocked(EventGameOver, reward)}
}

func (that *Session) resetLocked(ctx context.Context) []Event {
	that.stopPendingLocked()
	that.engine.Reset(that.state.Config.Starter)
	that.scheduleComputerLocked()
	that.persistLocked(ctx)

	return []Event{that.eventLocked(EventState, nil)}
}

// scheduleComputerLocked queues the computer's reply if it is the computer's turn.
func (that *Session) scheduleComputerLocked() {
	game := &that.state.Game
	if that.closed || !game.Active || !that.state.IsComputer(game.Turn) {
		return
	}

	that.stopPendingLocked()

	round, ticket := game.Round, that.ticket
	that.pending = that.scheduler.AfterFunc(that.botDelay, func() {
		that.playComputer(round, ticket)
	})
}

func (that *Session) stopPendingLocked() {
	// the ticket moves on even if Stop loses the race with a firing timer
	that.ticket++

	if that.pending != nil {
		that.pending.Stop()
		that.pending = nil
	}
}

func (that *Session) playComputer(round, ticket uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), computerMoveTimeout)
	defer cancel()

	that.mu.Lock()
	events := that.computerMoveLocked(ctx, round, ticket)
	that.mu.Unlock()

	that.publish(events)
}

func (that *Session) computerMoveLocked(ctx context.Context, round, ticket uint64) []Event {
	log := that.logger.With("method", "computerMove", "round", round)

	game := &that.state.Game
	if that.closed || game.Round != round || that.ticket != ticket || !game.Active || !that.state.IsComputer(game.Turn) {
		log.Debug("discarding stale computer move")
		return nil
	}

	that.pending = nil

	self := game.Turn
	cell, err := that.services.Bot.ChooseMove(game.Board, self, self.Other())
	if err != nil {
		log.Error("computer failed to choose a move", "error", err)
		return nil
	}

	outcome, ok := that.engine.ApplyMove(cell)
	if !ok {
		log.Error("computer chose an unplayable cell", "cell", cell)
		return nil
	}

	return that.afterMoveLocked(ctx, outcome)
}

// SetAvatar puts a catalog avatar on a human seat. It must be unlocked in the profile.
func (that *Session) SetAvatar(ctx context.Context, seat entity.Mark, key string) error {
	if !seat.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrUnknownSeat, seat)
	}

	if _, ok := entity.FindAvatar(key); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownAvatar, key)
	}

	profile, err := that.services.Profiles.GetOrCreate(ctx, that.profileID())
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.Owns(key) {
		return fmt.Errorf("%w: %s", apperror.ErrAvatarLocked, key)
	}

	that.mu.Lock()
	if that.state.IsComputer(seat) {
		that.mu.Unlock()
		return fmt.Errorf("%w: %s", apperror.ErrSeatLocked, seat)
	}

	hadIcon := that.equipLocked(seat, key, profile.Inventory)
	that.persistLocked(ctx)
	events := []Event{that.eventLocked(EventState, nil)}
	that.mu.Unlock()

	that.publish(events)

	if hadIcon {
		that.dropIcon(ctx, seat)
	}

	return nil
}

// equipLocked puts key on seat and reports whether a custom drawing was replaced.
func (that *Session) equipLocked(seat entity.Mark, key string, inventory []string) bool {
	hadIcon := that.state.Avatars.Get(seat).Custom
	that.state.Avatars.Set(seat, entity.AvatarSelection{Key: key})

	if seat == entity.PlayerOne && that.state.IsComputer(entity.PlayerTwo) && that.state.Avatars.P2.Key == key {
		that.rerollComputerAvatarLocked(inventory)
	}

	return hadIcon
}

func (that *Session) dropIcon(ctx context.Context, seat entity.Mark) {
	if err := that.services.Icons.Delete(ctx, that.state.ID, seat); err != nil {
		that.logger.Warn("failed to delete replaced icon", "seat", seat, "error", err)
	}
}

func (that *Session) rerollComputerAvatarLocked(inventory []string) {
	key := that.services.Bot.PickAvatar(that.state.Avatars.P1.Key, inventory)
	that.state.Avatars.P2 = entity.AvatarSelection{Key: key}
}

// Offers lists the shop for this session's profile.
func (that *Session) Offers(ctx context.Context) ([]service.Offer, *entity.Profile, error) {
	profile, err := that.services.Profiles.GetOrCreate(ctx, that.profileID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return that.services.Shop.Offers(profile), profile, nil
}

// Buy purchases key for the first seat and equips it. Buying an owned avatar just equips it.
func (that *Session) Buy(ctx context.Context, key string) error {
	profile, err := that.services.Profiles.GetOrCreate(ctx, that.profileID())
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if err = that.services.Shop.Buy(ctx, profile, key); err != nil {
		return fmt.Errorf("failed to buy avatar: %w", err)
	}

	that.mu.Lock()
	that.syncProfileLocked(profile)
	hadIcon := that.equipLocked(entity.PlayerOne, key, profile.Inventory)
	that.persistLocked(ctx)
	events := []Event{that.eventLocked(EventState, nil)}
	that.mu.Unlock()

	that.publish(events)

	if hadIcon {
		that.dropIcon(ctx, entity.PlayerOne)
	}

	return nil
}

func (that *Session) UnlockAll(ctx context.Context) error {
	profile, err := that.services.Profiles.GetOrCreate(ctx, that.profileID())
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if err = that.services.Shop.UnlockAll(ctx, profile); err != nil {
		return fmt.Errorf("failed to unlock catalog: %w", err)
	}

	that.mu.Lock()
	that.syncProfileLocked(profile)
	that.persistLocked(ctx)
	events := []Event{that.eventLocked(EventState, nil)}
	that.mu.Unlock()

	that.publish(events)

	return nil
}

// SaveIcon stores a drawing for a human seat, shows it instead of the avatar and starts a new round.
func (that *Session) SaveIcon(ctx context.Context, seat entity.Mark, dataURL string) error {
	if !seat.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrUnknownSeat, seat)
	}

	that.mu.Lock()
	computer := that.state.IsComputer(seat)
	that.mu.Unlock()

	if computer {
		return fmt.Errorf("%w: %s", apperror.ErrSeatLocked, seat)
	}

	if _, err := that.services.Icons.Save(ctx, that.state.ID, seat, dataURL); err != nil {
		return fmt.Errorf("failed to save icon: %w", err)
	}

	that.mu.Lock()
	selection := that.state.Avatars.Get(seat)
	selection.Custom = true
	that.state.Avatars.Set(seat, selection)
	events := that.resetLocked(ctx)
	that.mu.Unlock()

	that.publish(events)

	return nil
}

// Close stops any pending computer move. The session accepts no further scheduling.
func (that *Session) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true
	that.stopPendingLocked()
}

func (that *Session) profileID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.ProfileID
}

func (that *Session) inventory(ctx context.Context) []string {
	profile, err := that.services.Profiles.GetOrCreate(ctx, that.profileID())
	if err != nil {
		that.logger.Warn("failed to load profile, using free avatars", "error", err)
		return entity.FreeAvatarKeys()
	}

	return profile.Inventory
}

func (that *Session) syncProfileLocked(profile *entity.Profile) {
	that.state.ProfileID = profile.ID
	that.state.Coins.P1 = profile.Coins
}

func (that *Session) persistLocked(ctx context.Context) {
	that.state.UpdatedAt = that.now().UTC()

	snapshot := that.state.Clone()
	if err := that.services.Sessions.CreateOrUpdate(ctx, &snapshot); err != nil {
		that.logger.Error("failed to persist session", "error", err)
	}
}

func (that *Session) eventLocked(kind EventKind, reward *entity.Reward) Event {
	that.seq++

	return Event{
		Kind:    kind,
		Seq:     that.seq,
		Session: that.state.Clone(),
		Outcome: that.state.Game.Outcome(),
		Reward:  reward,
	}
}

func (that *Session) publish(events []Event) {
	if len(events) == 0 {
		return
	}

	that.listenersMu.RLock()
	listeners := make([]Listener, 0, len(that.listeners))
	for _, listener := range that.listeners {
		listeners = append(listeners, listener)
	}
	that.listenersMu.RUnlock()

	for _, event := range events {
		for _, listener := range listeners {
			listener(event)
		}
	}
}
