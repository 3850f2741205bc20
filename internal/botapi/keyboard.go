package botapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	telegramBot "github.com/go-telegram/bot"
	telegramBotModels "github.com/go-telegram/bot/models"
	"github.com/pkg/errors"

	"github.com/moviegrab/moviegrab-go-bot/internal/yts"
)

const (
	downloadCallbackPrefix = "file_"
	detailsCallbackPrefix  = "info_"

	maxButtonTitleLen = 32
	maxCaptionLen     = 1024
	maxMessageLen     = 4096
)

// TextHandlerClosure replies to any matched message with a fixed Markdown
// text.
func TextHandlerClosure(text string) telegramBot.HandlerFunc {
	return func(ctx context.Context, b *telegramBot.Bot, update *telegramBotModels.Update) {
		b.SendMessage(ctx, &telegramBot.SendMessageParams{
			ChatID:    update.Message.Chat.ID,
			Text:      text,
			ParseMode: telegramBotModels.ParseModeMarkdown,
		})
	}
}

// resultsKeyboard renders one row per search result: a numbered download
// button and a details button, both carrying the result index as callback
// data.
func resultsKeyboard(results []yts.Result) *telegramBotModels.InlineKeyboardMarkup {
	rows := make([][]telegramBotModels.InlineKeyboardButton, 0, len(results))
	for i, r := range results {
		rows = append(rows, []telegramBotModels.InlineKeyboardButton{
			{
				Text:         fmt.Sprintf("%d. 🎬 %s (%s)", i+1, truncateText(r.Title, maxButtonTitleLen), r.Size),
				CallbackData: fmt.Sprintf("%s%d", downloadCallbackPrefix, i),
			},
			{
				Text:         "ℹ️",
				CallbackData: fmt.Sprintf("%s%d", detailsCallbackPrefix, i),
			},
		})
	}
	return &telegramBotModels.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// documentCaption builds the caption sent with a torrent file. When the
// stream link would push the caption past Telegram's limit it moves to the
// returned follow-up message instead.
func documentCaption(r yts.Result) (caption string, followUp string) {
	header := fmt.Sprintf("🎬 %s\n📦 %s | 🌱 %d seeds", r.Title, r.Size, r.Seeds)

	link := yts.WebtorLink(r.Hash, r.Title)
	if link == "" {
		return truncateText(header, maxCaptionLen), ""
	}

	tip := "\n\n💡 No torrent client? Stream it in your browser:\n" + link
	if utf8.RuneCountInString(header+tip) <= maxCaptionLen {
		return header + tip, ""
	}
	return truncateText(header, maxCaptionLen),
		fmt.Sprintf("💡 Stream \"%s\" in your browser:\n%s", r.Title, link)
}

// parseCallbackIndex extracts the result index from callback data such as
// "file_3".
func parseCallbackIndex(data, prefix string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil {
		return 0, errors.Wrapf(err, "bad callback data %q", data)
	}
	return idx, nil
}

// uploadFileName derives the Telegram-visible file name from a result title,
// keeping letters, digits, spaces, dashes and underscores.
func uploadFileName(title string) string {
	var sb strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	name := strings.TrimRight(sb.String(), " ")
	if name == "" {
		name = "movie"
	}
	return name + ".torrent"
}

// truncateText shortens s to at most max runes, ellipsized.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
