package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/server"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if conf.Redis.Host == "" || conf.Redis.Port == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.SessionTTL)
	gameUseCase := usecase.NewGameUseCase(logger, gameRepo)

	const servers = 2
	errCh := make(chan error, servers)

	// run HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := server.Start(ctx, conf.HTTPPort, rest.NewHandlers(logger, gameUseCase).Routes()); httpErr != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
			return
		}
		errCh <- nil
	}()

	// run Websocket server
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := server.Start(ctx, conf.SocketPort, websocket.New(logger, gameUseCase).Handler(ctx)); wsErr != nil {
			errCh <- fmt.Errorf("WebSocket server error: %w", wsErr)
			return
		}
		errCh <- nil
	}()

	var runErr error
	pending := servers

	select {
	case runErr = <-errCh:
		pending--
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	// one server stopping takes the other one down too
	cancel()
	for ; pending > 0; pending-- {
		if serverErr := <-errCh; serverErr != nil && runErr == nil {
			runErr = serverErr
		}
	}

	return runErr
}
