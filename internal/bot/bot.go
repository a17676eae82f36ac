package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/service"
)

const (
	msgNoPermission      = "You don't have permission to use this command."
	msgNoBroadcastRights = "You don't have permission to send messages through this bot."
	msgStartOnly         = "You only have access to the /start command."

	msgAdminWelcome = "Welcome, Admin!\n" +
		"This bot forwards your messages to the registered recipients and removes them after a while.\n" +
		"Use /help to view all available commands.\n" +
		"Use /enable_recipient <user_id> or /disable_recipient <user_id> to manage recipient status."

	msgUserWelcome = "Welcome to the Message Relay Bot!\n" +
		"This bot delivers messages from the operators to registered recipients.\n" +
		"You have been added as a recipient automatically."

	msgAdminHelp = "Admin Commands:\n" +
		"/start - Start the bot and show the welcome message\n" +
		"/help - Show this help message\n" +
		"/enable_recipient <user_id> - Enable a recipient (Admin only)\n" +
		"/disable_recipient <user_id> - Disable a recipient (Admin only)\n" +
		"/remove_recipient <user_id> - Remove a recipient (Admin only)\n" +
		"/list_recipients - List all current recipients (Admin only)\n" +
		"Any other text is forwarded to every active recipient."

	msgDegradedReport = "Warning: the recipient list could not be loaded, so nobody was contacted."
)

// Bot represents the Telegram bot
type Bot struct {
	api       *tgbotapi.BotAPI
	service   *service.RelayService
	messenger service.Messenger
	logger    *logrus.Logger
}

// Connect authorizes against the Bot API and routes the library's own logging
// through logger.
func Connect(token string, logger *logrus.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(logger); err != nil {
		return nil, fmt.Errorf("failed to set bot logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.WithField("account", api.Self.UserName).Info("Authorized on account")
	return api, nil
}

// New creates a new Bot instance
func New(api *tgbotapi.BotAPI, service *service.RelayService, messenger service.Messenger, logger *logrus.Logger) *Bot {
	return &Bot{
		api:       api,
		service:   service,
		messenger: messenger,
		logger:    logger,
	}
}

// Start long-polls for updates and handles them one at a time until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	// Long polling does not work while a webhook is registered
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.WithError(err).Error("Failed to remove webhook")
	} else {
		b.logger.Info("Webhook removed")
	}

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commandMenu()...)); err != nil {
		b.logger.WithError(err).Warn("Failed to publish command menu")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func commandMenu() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show available commands"},
		{Command: "list_recipients", Description: "List all recipients (admin)"},
		{Command: "enable_recipient", Description: "Enable a recipient (admin)"},
		{Command: "disable_recipient", Description: "Disable a recipient (admin)"},
		{Command: "remove_recipient", Description: "Remove a recipient (admin)"},
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Text == "" {
		return
	}

	b.handleBroadcast(ctx, message)
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(ctx, message)
	case "enable_recipient":
		b.handleSetStatus(ctx, message, true)
	case "disable_recipient":
		b.handleSetStatus(ctx, message, false)
	case "remove_recipient":
		b.handleRemove(ctx, message)
	case "list_recipients":
		b.handleList(ctx, message)
	default:
		if !b.service.IsAdmin(message.From.ID) {
			b.sendMessage(ctx, message.Chat.ID, msgStartOnly)
		}
	}
}

// handleStart greets the caller and registers non-admins as recipients
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if b.service.IsAdmin(message.From.ID) {
		b.sendMessage(ctx, message.Chat.ID, msgAdminWelcome)
		return
	}

	if _, err := b.service.EnsureRegistered(ctx, message.From.ID, message.From.UserName); err != nil {
		b.logger.WithError(err).WithField("user_id", message.From.ID).Error("Error registering recipient")
	}

	b.sendMessage(ctx, message.Chat.ID, msgUserWelcome)
}

func (b *Bot) handleHelp(ctx context.Context, message *tgbotapi.Message) {
	if !b.service.IsAdmin(message.From.ID) {
		b.sendMessage(ctx, message.Chat.ID, msgNoPermission)
		return
	}
	b.sendMessage(ctx, message.Chat.ID, msgAdminHelp)
}

func (b *Bot) handleSetStatus(ctx context.Context, message *tgbotapi.Message, status bool) {
	if !b.service.IsAdmin(message.From.ID) {
		b.sendMessage(ctx, message.Chat.ID, msgNoPermission)
		return
	}

	userID, ok := parseUserID(message)
	if !ok {
		b.sendMessage(ctx, message.Chat.ID, usage(message.Command()))
		return
	}

	var err error
	if status {
		err = b.service.EnableRecipient(ctx, message.From.ID, userID)
	} else {
		err = b.service.DisableRecipient(ctx, message.From.ID, userID)
	}
	if b.replyError(ctx, message, err, "Error updating recipient status") {
		return
	}

	action := "disabled"
	if status {
		action = "enabled"
	}
	b.sendMessage(ctx, message.Chat.ID, fmt.Sprintf("Recipient with ID %d has been %s successfully.", userID, action))
}

func (b *Bot) handleRemove(ctx context.Context, message *tgbotapi.Message) {
	if !b.service.IsAdmin(message.From.ID) {
		b.sendMessage(ctx, message.Chat.ID, msgNoPermission)
		return
	}

	userID, ok := parseUserID(message)
	if !ok {
		b.sendMessage(ctx, message.Chat.ID, usage(message.Command()))
		return
	}

	err := b.service.RemoveRecipient(ctx, message.From.ID, userID)
	if b.replyError(ctx, message, err, "Error removing recipient") {
		return
	}

	b.sendMessage(ctx, message.Chat.ID, fmt.Sprintf("Recipient with ID %d removed successfully.", userID))
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message) {
	lines, err := b.service.ListRecipients(ctx, message.From.ID)
	if errors.Is(err, service.ErrPermissionDenied) {
		b.sendMessage(ctx, message.Chat.ID, msgNoPermission)
		return
	}
	if err != nil {
		b.logger.WithError(err).Error("Error retrieving recipients list")
		b.sendMessage(ctx, message.Chat.ID, fmt.Sprintf("Error retrieving recipients list: %v", err))
		return
	}

	b.sendMessage(ctx, message.Chat.ID, service.FormatRecipientList(lines))
}

// handleBroadcast relays admin text to the recipients and reports back
func (b *Bot) handleBroadcast(ctx context.Context, message *tgbotapi.Message) {
	report, err := b.service.Broadcast(ctx, message.From.ID, message.Text)
	if errors.Is(err, service.ErrPermissionDenied) {
		b.sendMessage(ctx, message.Chat.ID, msgNoBroadcastRights)
		return
	}
	if err != nil {
		b.logger.WithError(err).Error("Error broadcasting message")
		b.sendMessage(ctx, message.Chat.ID, fmt.Sprintf("Error: %v", err))
		return
	}

	text := report.String()
	if report.Degraded {
		text += "\n\n" + msgDegradedReport
	}
	b.sendMessage(ctx, message.Chat.ID, text)
}

// replyError reports a failed admin mutation and returns true if err was set
func (b *Bot) replyError(ctx context.Context, message *tgbotapi.Message, err error, logMsg string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, service.ErrPermissionDenied) {
		b.sendMessage(ctx, message.Chat.ID, msgNoPermission)
		return true
	}

	b.logger.WithError(err).Error(logMsg)
	b.sendMessage(ctx, message.Chat.ID, fmt.Sprintf("Error: %v", err))
	return true
}

// sendMessage sends a plain reply
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := b.messenger.Send(ctx, chatID, text); err != nil {
		b.logger.WithError(err).WithField("chat_id", chatID).Error("Error sending message")
	}
}

// parseUserID reads the first command argument as a Telegram user ID
func parseUserID(message *tgbotapi.Message) (int64, bool) {
	args := strings.Fields(message.CommandArguments())
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func usage(command string) string {
	return fmt.Sprintf("Usage: /%s <user_id>", command)
}
