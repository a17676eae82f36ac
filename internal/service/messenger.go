package service

import "context"

// Messenger is the chat transport the relay needs
type Messenger interface {
	// Send delivers text to a chat and returns the new message ID
	Send(ctx context.Context, chatID int64, text string) (int, error)
	// Delete removes a previously sent message
	Delete(ctx context.Context, chatID int64, messageID int) error
}
