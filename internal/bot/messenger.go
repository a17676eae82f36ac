package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramMessenger implements service.Messenger over the Bot API
type TelegramMessenger struct {
	api *tgbotapi.BotAPI
}

// NewTelegramMessenger creates a new TelegramMessenger
func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

// Send sends plain text to a chat. No parse mode is set, so text goes out
// exactly as written.
func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sent, err := m.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// Delete deletes a message from a chat
func (m *TelegramMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// deleteMessage answers with a bare boolean, which Send cannot decode
	_, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
