package botapi

import (
	"context"
	"net/http"
	"os"

	telegramBot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/moviegrab/moviegrab-go-bot/internal/database"
	"github.com/moviegrab/moviegrab-go-bot/internal/files"
	"github.com/moviegrab/moviegrab-go-bot/internal/logging"
	"github.com/moviegrab/moviegrab-go-bot/internal/session"
	"github.com/moviegrab/moviegrab-go-bot/internal/yts"
)

type BotWebhookConfig struct {
	URL  string
	Port string
}

type Bot struct {
	bot           *telegramBot.Bot
	webhookConfig *BotWebhookConfig
	handlers      map[string]string
	searcher      *yts.Client
	downloader    *files.Downloader
	sessions      *session.Store
	logger        *zerolog.Logger
	db            *database.Database
}

func InitBot(envfile string) (*Bot, error) {
	err := godotenv.Load(envfile)

	// can be instantiated without env params
	logger := logging.GetLogger()

	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatal().Err(err).Msg("error loading .env file")
			return nil, err
		}
		logger.Warn().Str("envfile", envfile).Msg("no .env file found, relying on process environment")
	}

	if os.Getenv("TELEGRAM_API_KEY") == "" {
		logger.Fatal().Msg("error TELEGRAM_API_KEY is not set")
		return nil, errors.New("TELEGRAM_API_KEY is not set")
	}

	var webhookCfg *BotWebhookConfig
	webhookURL := os.Getenv("WEBHOOK_URL")
	if webhookURL != "" {
		webhookCfg = &BotWebhookConfig{
			URL:  webhookURL,
			Port: os.Getenv("WEBHOOK_PORT"),
		}
	}

	bot := &Bot{
		webhookConfig: webhookCfg,
		handlers:      make(map[string]string),
		logger:        &logger,
	}

	tOpts := []telegramBot.Option{
		telegramBot.WithDefaultHandler(activityMiddleware(bot, searchHandlerClosure(bot))),
	}

	tBot, err := telegramBot.New(os.Getenv("TELEGRAM_API_KEY"), tOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating telegram bot")
		return nil, err
	}
	bot.bot = tBot

	downloader, err := files.NewDownloader(&logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error preparing download directory")
		return nil, err
	}

	db, err := database.NewDatabase()
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing database")
		return nil, err
	}
	if db == nil {
		logger.Warn().Msg("DB_HOST is not set, running without activity logging")
	}

	bot.searcher = yts.NewClient(&logger)
	bot.downloader = downloader
	bot.sessions = session.NewStore(session.DefaultTTL, &logger)
	bot.db = db

	bot.setHandlers()

	return bot, nil
}

// Close releases resources held by the bot, currently the database
// connection.
func (b *Bot) Close() {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			b.logger.Warn().Err(err).Msg("error closing database")
		}
	}
}

func (b *Bot) Run(ctx context.Context) {
	b.sessions.StartJanitor(ctx)
	if err := b.downloader.CleanupAll(); err != nil {
		b.logger.Warn().Err(err).Msg("could not clean download directory")
	}

	if b.webhookConfig != nil {
		if err := b.runWebhook(ctx); err == nil {
			return
		}
		b.logger.Warn().Msg("falling back to long polling")
	}

	// a webhook left over from a previous deployment starves long polling
	if _, err := b.bot.DeleteWebhook(ctx, &telegramBot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn().Err(err).Msg("could not delete stale webhook")
	}

	b.logger.Info().Msg("running telegram bot with long polling")
	b.bot.Start(ctx)
}

func (b *Bot) runWebhook(ctx context.Context) error {
	if _, err := b.bot.SetWebhook(ctx, &telegramBot.SetWebhookParams{
		URL: b.webhookConfig.URL,
	}); err != nil {
		b.logger.Error().Err(err).Msg("error setting webhook")
		return err
	}

	port := b.webhookConfig.Port
	if port == "" {
		port = "2000"
	}

	go func() {
		if err := http.ListenAndServe(":"+port, b.bot.WebhookHandler()); err != nil {
			b.logger.Fatal().Err(err).Msg("webhook server error")
		}
	}()

	b.logger.Info().Msg("running telegram bot with a webhook")
	b.bot.StartWebhook(ctx)

	return nil
}

func (b *Bot) setHandlers() {
	b.handlers["start"] = b.bot.RegisterHandler(telegramBot.HandlerTypeMessageText, "/start", telegramBot.MatchTypeExact, activityMiddleware(b, startHandlerClosure(b)))
	b.handlers["help"] = b.bot.RegisterHandler(telegramBot.HandlerTypeMessageText, "/help", telegramBot.MatchTypeExact, activityMiddleware(b, TextHandlerClosure(helpText)))
	b.handlers["search"] = b.bot.RegisterHandler(telegramBot.HandlerTypeMessageText, "/search", telegramBot.MatchTypeExact, activityMiddleware(b, TextHandlerClosure(searchPromptText)))
	b.handlers["download"] = b.bot.RegisterHandler(telegramBot.HandlerTypeCallbackQueryData, downloadCallbackPrefix, telegramBot.MatchTypePrefix, activityMiddleware(b, downloadHandlerClosure(b)))
	b.handlers["details"] = b.bot.RegisterHandler(telegramBot.HandlerTypeCallbackQueryData, detailsCallbackPrefix, telegramBot.MatchTypePrefix, activityMiddleware(b, detailsHandlerClosure(b)))
}
