package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closeRepo, err := newGameRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	gameManager := usecase.NewGameManager(logger, gameRepo, conf.Bot)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- rest.New(logger, gameManager).Start(ctx, conf.HTTPPort)
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsErrCh <- websocket.New(logger, gameManager, conf.Bot).Start(ctx, conf.SocketPort)
	}()

	var httpErr, wsErr error

	// either server failing stops the other one
	select {
	case httpErr = <-httpErrCh:
		stop()
		wsErr = <-wsErrCh
	case wsErr = <-wsErrCh:
		stop()
		httpErr = <-httpErrCh
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
		httpErr, wsErr = <-httpErrCh, <-wsErrCh
	}

	if httpErr != nil {
		httpErr = fmt.Errorf("HTTP server error: %w", httpErr)
	}

	if wsErr != nil {
		wsErr = fmt.Errorf("WebSocket server error: %w", wsErr)
	}

	return errors.Join(httpErr, wsErr)
}

// newGameRepository - picks the game storage; the returned func releases it.
func newGameRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	log := logger.With("component", "app")

	if conf.Storage != config.StorageRedis {
		log.Info("Keeping games in memory")
		return repository.NewMemoryGameRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Keeping games in redis", "addr", redisAddrString)

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage), closeStorage, nil
}
