package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/moviegrab/moviegrab-go-bot/internal/config"
	"github.com/moviegrab/moviegrab-go-bot/internal/healthapi"
	"github.com/moviegrab/moviegrab-go-bot/internal/logging"
	"github.com/moviegrab/moviegrab-go-bot/internal/process"
)

func main() {
	configPath := flag.String("config", "healthd.toml", "Path to the server config file")
	bind := flag.String("bind", "", "Override the configured bind address")
	flag.Parse()

	logger := logging.GetLogger().With().Str("service", "healthd").Logger()
	logger.Info().Msg("starting health-check server")

	configExplicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configExplicit = true
		}
	})

	cfg := config.Default()
	loaded, err := config.Load(*configPath)
	switch {
	case err == nil:
		cfg = loaded
	case os.IsNotExist(errors.Cause(err)) && !configExplicit:
		logger.Info().Str("path", *configPath).Msg("no config file found, using defaults")
	default:
		logger.Fatal().Err(err).Str("path", *configPath).Msg("error loading config")
	}

	if *bind != "" {
		cfg.Bind = *bind
		if err := cfg.Validate(); err != nil {
			logger.Fatal().Err(err).Msg("invalid bind override")
		}
	}

	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
			logger = logger.Level(lvl)
		}
	}

	var probe healthapi.ReadinessProbe
	if cfg.BotPattern != "" {
		pattern := regexp.MustCompile(cfg.BotPattern)
		probe = func(ctx context.Context) error {
			matches, err := process.FindMatching(pattern)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				return errors.Errorf("no process matching %q", pattern.String())
			}
			return nil
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := healthapi.NewServer(cfg, probe, &logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("health-check server failed")
	}
}
