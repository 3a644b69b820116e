package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rocketscienceinc/monstertoe-backend/internal/config"
	"github.com/rocketscienceinc/monstertoe-backend/internal/pkg"
	"github.com/rocketscienceinc/monstertoe-backend/internal/repository"
	"github.com/rocketscienceinc/monstertoe-backend/internal/repository/storage"
	"github.com/rocketscienceinc/monstertoe-backend/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/monstertoe-backend/internal/service"
	"github.com/rocketscienceinc/monstertoe-backend/internal/usecase"
	"github.com/rocketscienceinc/monstertoe-backend/transport/rest"
	"github.com/rocketscienceinc/monstertoe-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	iconStorage, err := openIconStorage(ctx, conf.SQLiteStoragePath)
	if err != nil {
		return err
	}

	defer func() {
		if err = iconStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection, conf.Game.SessionTTL)
	profileRepo := repository.NewProfileRepository(redisStorage.Connection)
	iconRepo := repository.NewIconRepository(iconStorage.Connection)

	rnd := pkg.DefaultRand()
	profileService := service.NewProfileService(profileRepo)
	iconService := service.NewIconService(iconRepo)

	sessionManager := usecase.NewSessionManager(logger, usecase.Services{
		Sessions: sessionRepo,
		Profiles: profileService,
		Bot:      service.NewBotService(rnd, conf.Game.BotIgnoresUnlocks),
		Rewards:  service.NewRewardService(logger, profileService, rnd, conf.Game.WinCoins),
		Shop:     service.NewShopService(logger, profileService, conf.Game.UnlockAllBonus),
		Icons:    iconService,
	}, usecase.NewClockScheduler(), conf.Game.BotDelay)
	defer sessionManager.Shutdown()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		router := rest.NewRouter(logger, sessionManager, iconService)
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessionManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func openIconStorage(ctx context.Context, path string) (*sqlite.Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create sqlite directory: %w", err)
	}

	iconStorage, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite storage: %w", err)
	}

	if err = iconStorage.Init(ctx); err != nil {
		_ = iconStorage.Close()
		return nil, fmt.Errorf("could not init sqlite storage: %w", err)
	}

	return iconStorage, nil
}
