package usecase

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rocketscienceinc/monstertoe-backend/internal/apperror"
	"github.com/rocketscienceinc/monstertoe-backend/internal/entity"
	"github.com/rocketscienceinc/monstertoe-backend/internal/service"
)

const testBotDelay = 600 * time.Millisecond

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// manualScheduler queues callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	queue   []*manualTimer
	history []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped atomic.Bool
}

func (that *manualTimer) Stop() bool {
	return !that.stopped.Swap(true)
}

func (that *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	timer := &manualTimer{delay: d, f: f}

	that.mu.Lock()
	that.queue = append(that.queue, timer)
	that.history = append(that.history, timer)
	that.mu.Unlock()

	return timer
}

// fire runs every queued callback that was not stopped and reports how many ran.
func (that *manualScheduler) fire() int {
	that.mu.Lock()
	queue := that.queue
	that.queue = nil
	that.mu.Unlock()

	fired := 0
	for _, timer := range queue {
		if timer.stopped.Swap(true) {
			continue
		}

		timer.f()
		fired++
	}

	return fired
}

func (that *manualScheduler) pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	for _, timer := range that.queue {
		if !timer.stopped.Load() {
			count++
		}
	}

	return count
}

func (that *manualScheduler) last() *manualTimer {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.history) == 0 {
		return nil
	}

	return that.history[len(that.history)-1]
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func (that *memorySessionRepo) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = session.Clone()

	return nil
}

func (that *memorySessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	clone := session.Clone()
	return &clone, nil
}

func (that *memorySessionRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

type memoryProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]entity.Profile
}

func (that *memoryProfileRepo) CreateOrUpdate(_ context.Context, profile *entity.Profile) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored := *profile
	stored.Inventory = slices.Clone(profile.Inventory)
	that.profiles[profile.ID] = stored

	return nil
}

func (that *memoryProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	profile, ok := that.profiles[id]
	if !ok {
		return nil, apperror.ErrProfileNotFound
	}

	profile.Inventory = slices.Clone(profile.Inventory)
	return &profile, nil
}

func (that *memoryProfileRepo) Update(_ context.Context, id string, fn func(*entity.Profile) error) (*entity.Profile, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	profile := *entity.NewProfile(id)
	if stored, ok := that.profiles[id]; ok {
		profile = stored
		profile.Inventory = slices.Clone(stored.Inventory)
	}

	if err := fn(&profile); err != nil {
		return nil, err
	}

	that.profiles[id] = profile
	updated := profile
	updated.Inventory = slices.Clone(profile.Inventory)

	return &updated, nil
}

func listenerCount(session *Session) int {
	session.listenersMu.RLock()
	defer session.listenersMu.RUnlock()

	return len(session.listeners)
}

type memoryIconRepo struct {
	mu    sync.Mutex
	icons map[string]entity.Icon
}

func (that *memoryIconRepo) Save(_ context.Context, icon *entity.Icon) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.icons[icon.SessionID+"/"+string(icon.Seat)] = *icon

	return nil
}

func (that *memoryIconRepo) Find(_ context.Context, sessionID string, seat entity.Mark) (*entity.Icon, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	icon, ok := that.icons[sessionID+"/"+string(seat)]
	if !ok {
		return nil, apperror.ErrIconNotFound
	}

	return &icon, nil
}

func (that *memoryIconRepo) Delete(_ context.Context, sessionID string, seat entity.Mark) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.icons, sessionID+"/"+string(seat))

	return nil
}

// fixedRand always returns the same index, clamped to n.
type fixedRand int

func (that fixedRand) IntN(n int) int {
	return min(int(that), n-1)
}

type testEnv struct {
	sessions  *memorySessionRepo
	profiles  *memoryProfileRepo
	icons     *memoryIconRepo
	scheduler *manualScheduler
	manager   *SessionManager
}

// newTestEnv wires real services over in-memory storage. The computer always
// falls back to the first empty cell and the reward is always the first toy.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		sessions:  &memorySessionRepo{sessions: map[string]entity.Session{}},
		profiles:  &memoryProfileRepo{profiles: map[string]entity.Profile{}},
		icons:     &memoryIconRepo{icons: map[string]entity.Icon{}},
		scheduler: &manualScheduler{},
	}

	profiles := service.NewProfileService(env.profiles)
	services := Services{
		Sessions: env.sessions,
		Profiles: profiles,
		Bot:      service.NewBotService(fixedRand(0), true),
		Rewards:  service.NewRewardService(discardLogger, profiles, fixedRand(0), 10),
		Shop:     service.NewShopService(discardLogger, profiles, 500),
		Icons:    service.NewIconService(env.icons),
	}

	env.manager = NewSessionManager(discardLogger, services, env.scheduler, testBotDelay)
	t.Cleanup(env.manager.Shutdown)

	return env
}

func (that *testEnv) start(t *testing.T) *Session {
	t.Helper()

	session, err := that.manager.Start(context.Background(), "", "profile1")
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	return session
}

func (that *testEnv) giveCoins(t *testing.T, profileID string, coins int) {
	t.Helper()

	profile, err := that.profiles.GetByID(context.Background(), profileID)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}

	profile.Coins = coins
	if err = that.profiles.CreateOrUpdate(context.Background(), profile); err != nil {
		t.Fatalf("failed to save profile: %v", err)
	}
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (that *recorder) listen(event Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *recorder) all() []Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return slices.Clone(that.events)
}
