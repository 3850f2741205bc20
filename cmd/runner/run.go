package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/moviegrab/moviegrab-go-bot/internal/botapi"
	"github.com/moviegrab/moviegrab-go-bot/internal/logging"
	"github.com/moviegrab/moviegrab-go-bot/internal/process"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file from the pwd(!)")
	killStale := flag.Bool("kill-stale", true, "Terminate stale bot processes before starting")
	grace := flag.Duration("grace", 2*time.Second, "How long stale processes get to exit")
	stalePattern := flag.String("stale-pattern", "moviegrab-runner", "Pattern matching stale bot processes")
	flag.Parse()

	logger := logging.GetLogger().With().Str("service", "runner").Logger()
	logger.Info().Msg("starting standalone Telegram bot")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *killStale {
		pattern, err := regexp.Compile(*stalePattern)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid stale-pattern")
		}
		if _, err := process.TerminateMatching(ctx, pattern, *grace, &logger); err != nil {
			logger.Warn().Err(err).Msg("could not terminate stale processes")
		}
		// the old polling session needs a beat to release before the new
		// bot connects
		time.Sleep(*grace)
	}

	bot, err := botapi.InitBot(*envFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing bot")
	}
	defer bot.Close()

	bot.Run(ctx)
	logger.Info().Msg("bot stopped")
}
