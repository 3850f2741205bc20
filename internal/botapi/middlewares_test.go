package botapi

import (
	"testing"

	telegramBotModels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestDescribeUpdateMessage(t *testing.T) {
	update := &telegramBotModels.Update{
		Message: &telegramBotModels.Message{
			Text: "dune 1080p",
			From: &telegramBotModels.User{ID: 42},
		},
	}

	userID, action := describeUpdate(update)
	assert.EqualValues(t, 42, userID)
	assert.Equal(t, "dune 1080p", action)
}

func TestDescribeUpdateCallback(t *testing.T) {
	update := &telegramBotModels.Update{
		CallbackQuery: &telegramBotModels.CallbackQuery{
			From: telegramBotModels.User{ID: 42},
			Data: "file_1",
		},
	}

	userID, action := describeUpdate(update)
	assert.EqualValues(t, 42, userID)
	assert.Equal(t, "callback:file_1", action)
}

func TestDescribeUpdateEmpty(t *testing.T) {
	userID, action := describeUpdate(&telegramBotModels.Update{})
	assert.Zero(t, userID)
	assert.Empty(t, action)
}
