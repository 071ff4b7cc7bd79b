package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	app "github.com/rocketscienceinc/tictactoe-timetravel/internal"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
)

// main - loads the configuration, builds the logger and runs the game server.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
