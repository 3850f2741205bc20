package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moviegrab/moviegrab-go-bot/internal/logging"
)

func newUpCmd(opts *launcherOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start healthd and the bot runner, tear both down on first exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), opts)
		},
	}
}

func runUp(ctx context.Context, opts *launcherOptions) error {
	logger := logging.GetLogger().With().Str("service", "launcher").Logger()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	healthd := newChild(opts.healthdBin, []string{"-bind", opts.bind}, &logger)
	if err := healthd.start(); err != nil {
		return errors.Wrap(err, "starting healthd")
	}
	defer healthd.stop(opts.grace)

	healthURL := "http://" + probeAddr(opts.bind) + "/health"
	if err := waitHTTP(ctx, healthURL, opts.wait); err != nil {
		return errors.Wrap(err, "waiting for healthd")
	}
	logger.Info().Str("url", healthURL).Msg("health-check server is up")

	runner := newChild(opts.runnerBin, []string{"-env-file", opts.envFile, "-stale-pattern", opts.pattern}, &logger)
	if err := runner.start(); err != nil {
		return errors.Wrap(err, "starting bot runner")
	}
	defer runner.stop(opts.grace)

	select {
	case <-healthd.exited:
		logger.Error().Err(healthd.err).Msg("healthd exited")
		return errors.New("healthd exited unexpectedly")
	case <-runner.exited:
		if runner.err != nil {
			logger.Error().Err(runner.err).Msg("bot runner exited")
			return errors.Wrap(runner.err, "bot runner exited")
		}
		logger.Info().Msg("bot runner exited cleanly")
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return nil
	}
}
