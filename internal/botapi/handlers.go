package botapi

import (
	"context"
	"fmt"
	"os"
	"strings"

	telegramBot "github.com/go-telegram/bot"
	telegramBotModels "github.com/go-telegram/bot/models"

	"github.com/moviegrab/moviegrab-go-bot/internal/session"
	"github.com/moviegrab/moviegrab-go-bot/internal/yts"
)

// /////////////////////////////////////////////////////////////////////////////
// Command handlers
// /////////////////////////////////////////////////////////////////////////////

const helpText = "*How to search*\n" +
	"Send a movie title as a plain message:\n" +
	"`inception`\n" +
	"`interstellar 1080p`\n\n" +
	"*Quality*\n" +
	"Add `720p`, `1080p` or `2160p` anywhere in the message to pin a quality. Without it you get every quality, best seeded first.\n\n" +
	"*Buttons*\n" +
	"• 🎬 sends the .torrent file\n" +
	"• ℹ️ shows rating, genres, description and cast\n\n" +
	"*No torrent client?*\n" +
	"Every torrent comes with a webtor.io link. Open it in your browser and the movie streams right there.\n\n" +
	"*Commands*\n" +
	"/start - introduction\n" +
	"/help - this message\n" +
	"/search - search hint"

const searchPromptText = "Send me a movie title to search, for example `dune 1080p` 🎬"

func startHandlerClosure(b *Bot) telegramBot.HandlerFunc {
	return func(ctx context.Context, bot *telegramBot.Bot, update *telegramBotModels.Update) {
		name := "there"
		if update.Message.From != nil && update.Message.From.FirstName != "" {
			name = update.Message.From.FirstName
		}

		text := fmt.Sprintf("👋 Hi, %s!\n\n"+
			"I find movie torrents on YTS for you.\n\n"+
			"Send me a movie title and I reply with up to 10 download buttons, best seeded first. "+
			"Add 720p, 1080p or 2160p to the title to pin a quality.\n\n"+
			"Every torrent comes with a webtor.io link so you can stream the movie in your browser "+
			"without a torrent client.\n\n"+
			"Type /help for examples.", name)

		if _, err := bot.SendMessage(ctx, &telegramBot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   text,
		}); err != nil {
			b.logger.Error().Err(err).Msg("error sending start message")
		}
	}
}

// /////////////////////////////////////////////////////////////////////////////
// Search flow
// /////////////////////////////////////////////////////////////////////////////

// searchHandlerClosure is the default handler: any plain text message is a
// movie search. Unknown commands are ignored rather than searched.
func searchHandlerClosure(b *Bot) telegramBot.HandlerFunc {
	return func(ctx context.Context, bot *telegramBot.Bot, update *telegramBotModels.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		if strings.HasPrefix(update.Message.Text, "/") {
			return
		}
		chatID := update.Message.Chat.ID

		term, quality := yts.ParseQuery(update.Message.Text)
		if term == "" {
			bot.SendMessage(ctx, &telegramBot.SendMessageParams{
				ChatID: chatID,
				Text:   "Please send a movie title to search, for example: dune 1080p",
			})
			return
		}

		progressText := fmt.Sprintf("🔍 Searching for \"%s\"...", term)
		if quality != yts.QualityAny {
			progressText = fmt.Sprintf("🔍 Searching for \"%s\" (%s)...", term, quality)
		}
		progress, err := bot.SendMessage(ctx, &telegramBot.SendMessageParams{
			ChatID: chatID,
			Text:   progressText,
		})
		if err != nil {
			b.logger.Error().Err(err).Msg("error sending progress message")
			return
		}

		results, err := b.searcher.Search(ctx, term, quality)

		if b.db != nil {
			if dbErr := b.db.LogSearch(update.Message.From.ID, term, string(quality), len(results)); dbErr != nil {
				b.logger.Error().Err(dbErr).Msg("error logging search")
			}
		}

		if err != nil {
			b.logger.Error().Err(err).Str("query", term).Msg("search failed")
			b.editMessage(ctx, bot, chatID, progress.ID, "😔 Search failed, please try again later")
			return
		}
		if len(results) == 0 {
			text := fmt.Sprintf("😔 No torrents found for \"%s\"", term)
			if quality != yts.QualityAny {
				text = fmt.Sprintf("😔 No %s torrents found for \"%s\". Try without the quality filter.", quality, term)
			}
			b.editMessage(ctx, bot, chatID, progress.ID, text)
			return
		}

		b.sessions.Put(update.Message.From.ID, session.Session{
			Results: results,
			Query:   term,
			Quality: quality,
		})

		if _, err := bot.EditMessageText(ctx, &telegramBot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   progress.ID,
			Text:        fmt.Sprintf("Found %d torrents for \"%s\", sorted by seeds. Pick one:", len(results), term),
			ReplyMarkup: resultsKeyboard(results),
		}); err != nil {
			b.logger.Error().Err(err).Msg("error showing search results")
		}
	}
}

// /////////////////////////////////////////////////////////////////////////////
// Callback handlers
// /////////////////////////////////////////////////////////////////////////////

func downloadHandlerClosure(b *Bot) telegramBot.HandlerFunc {
	return func(ctx context.Context, bot *telegramBot.Bot, update *telegramBotModels.Update) {
		cq := update.CallbackQuery
		msg := cq.Message.Message
		if msg == nil {
			b.answerCallback(ctx, bot, cq.ID, "This message is too old, send me a new search")
			return
		}
		chatID := msg.Chat.ID

		sess, ok := b.sessions.Get(cq.From.ID)
		if !ok {
			b.answerCallback(ctx, bot, cq.ID, "Search expired")
			b.editMessage(ctx, bot, chatID, msg.ID, "⌛ This search has expired, send me a new movie title")
			return
		}

		idx, err := parseCallbackIndex(cq.Data, downloadCallbackPrefix)
		if err != nil || idx < 0 || idx >= len(sess.Results) {
			b.answerCallback(ctx, bot, cq.ID, "Invalid selection")
			return
		}
		result := sess.Results[idx]

		b.answerCallback(ctx, bot, cq.ID, "")
		b.editMessage(ctx, bot, chatID, msg.ID, fmt.Sprintf("⏳ Preparing \"%s\"...", result.Title))

		path, err := b.downloader.Download(ctx, result.TorrentURL)
		if err != nil {
			b.logger.Error().Err(err).Str("url", result.TorrentURL).Msg("torrent download failed")
			b.editMessage(ctx, bot, chatID, msg.ID, "😔 Could not download the torrent file, please try another result")
			return
		}
		defer b.downloader.Cleanup(path)

		f, err := os.Open(path)
		if err != nil {
			b.logger.Error().Err(err).Str("path", path).Msg("error opening downloaded torrent")
			b.editMessage(ctx, bot, chatID, msg.ID, "😔 Could not read the torrent file, please try again")
			return
		}
		defer f.Close()

		b.editMessage(ctx, bot, chatID, msg.ID, fmt.Sprintf("📤 Sending \"%s\"...", result.Title))

		caption, followUp := documentCaption(result)
		if _, err := bot.SendDocument(ctx, &telegramBot.SendDocumentParams{
			ChatID: chatID,
			Document: &telegramBotModels.InputFileUpload{
				Filename: uploadFileName(result.Title),
				Data:     f,
			},
			Caption: caption,
		}); err != nil {
			b.logger.Error().Err(err).Msg("error sending torrent document")
			b.editMessage(ctx, bot, chatID, msg.ID, "😔 Could not send the torrent file, please try again")
			return
		}
		if followUp != "" {
			if _, err := bot.SendMessage(ctx, &telegramBot.SendMessageParams{
				ChatID: chatID,
				Text:   followUp,
			}); err != nil {
				b.logger.Error().Err(err).Msg("error sending stream link")
			}
		}

		if b.db != nil {
			if err := b.db.LogSentTorrent(cq.From.ID, result.Title, result.Quality, result.SizeBytes); err != nil {
				b.logger.Error().Err(err).Msg("error logging sent torrent")
			}
		}

		b.editMessage(ctx, bot, chatID, msg.ID, fmt.Sprintf("✅ Sent \"%s\". Enjoy! 🍿", result.Title))
	}
}

func detailsHandlerClosure(b *Bot) telegramBot.HandlerFunc {
	return func(ctx context.Context, bot *telegramBot.Bot, update *telegramBotModels.Update) {
		cq := update.CallbackQuery
		msg := cq.Message.Message
		if msg == nil {
			b.answerCallback(ctx, bot, cq.ID, "This message is too old, send me a new search")
			return
		}

		sess, ok := b.sessions.Get(cq.From.ID)
		if !ok {
			b.answerCallback(ctx, bot, cq.ID, "Search expired, send me a new movie title")
			return
		}

		idx, err := parseCallbackIndex(cq.Data, detailsCallbackPrefix)
		if err != nil || idx < 0 || idx >= len(sess.Results) {
			b.answerCallback(ctx, bot, cq.ID, "Invalid selection")
			return
		}
		result := sess.Results[idx]

		b.answerCallback(ctx, bot, cq.ID, "")

		movie, err := b.searcher.Details(ctx, result.MovieID)
		if err != nil {
			b.logger.Error().Err(err).Int("movie_id", result.MovieID).Msg("error fetching movie details")
			bot.SendMessage(ctx, &telegramBot.SendMessageParams{
				ChatID: msg.Chat.ID,
				Text:   "😔 Could not load movie details, please try again",
			})
			return
		}

		text := yts.FormatDetails(movie)
		if link := yts.WebtorLink(result.Hash, movie.TitleLong); link != "" {
			text += fmt.Sprintf("\n▶️ Stream it in your browser:\n%s", link)
		}

		if _, err := bot.SendMessage(ctx, &telegramBot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   truncateText(text, maxMessageLen),
		}); err != nil {
			b.logger.Error().Err(err).Msg("error sending movie details")
		}
	}
}

// /////////////////////////////////////////////////////////////////////////////
// Shared helpers
// /////////////////////////////////////////////////////////////////////////////

func (b *Bot) editMessage(ctx context.Context, bot *telegramBot.Bot, chatID int64, messageID int, text string) {
	if _, err := bot.EditMessageText(ctx, &telegramBot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}); err != nil {
		b.logger.Error().Err(err).Msg("error editing message")
	}
}

func (b *Bot) answerCallback(ctx context.Context, bot *telegramBot.Bot, callbackID, text string) {
	if _, err := bot.AnswerCallbackQuery(ctx, &telegramBot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		b.logger.Error().Err(err).Msg("error answering callback query")
	}
}
