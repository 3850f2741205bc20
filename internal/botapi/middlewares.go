package botapi

import (
	"context"

	telegramBot "github.com/go-telegram/bot"
	telegramBotModels "github.com/go-telegram/bot/models"
)

// activityMiddleware records who triggered a handler before running it.
// Logging is best effort and never blocks the handler.
func activityMiddleware(b *Bot, handler telegramBot.HandlerFunc) telegramBot.HandlerFunc {
	return func(ctx context.Context, bot *telegramBot.Bot, update *telegramBotModels.Update) {
		if b.db != nil {
			if userID, action := describeUpdate(update); userID != 0 {
				if err := b.db.LogUserActivity(userID, action); err != nil {
					b.logger.Error().Err(err).Msg("error logging user activity")
				}
			}
		}
		handler(ctx, bot, update)
	}
}

// describeUpdate extracts the acting user and a short action string from an
// update, covering the two update kinds this bot handles.
func describeUpdate(update *telegramBotModels.Update) (int64, string) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Text
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, "callback:" + update.CallbackQuery.Data
	default:
		return 0, ""
	}
}
