package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
)

// Bot represents a Telegram bot instance
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logger.Logger
}

// HandlerFunc is a function that handles a Telegram update
type HandlerFunc func(update tgbotapi.Update)

// CommandHandler is a function that handles a Telegram command
type CommandHandler func(message *tgbotapi.Message)

// CallbackHandler is a function that handles a Telegram callback query
type CallbackHandler func(callback *tgbotapi.CallbackQuery)

// Handlers routes updates. Callback handlers are keyed by data prefix.
type Handlers struct {
	Commands  map[string]CommandHandler
	Callbacks map[string]CallbackHandler
	Default   HandlerFunc
}

// New creates a new Telegram bot instance
func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}

	bot := &Bot{
		api:    api,
		logger: logger.New("telegram"),
	}

	bot.logger.Info("Telegram bot created: @%s", api.Self.UserName)
	return bot, nil
}

// Start listens for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context, h Handlers) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		h.Dispatch(update, b.logger)
	}
	return ctx.Err()
}

// Dispatch routes one update to its handler
func (h Handlers) Dispatch(update tgbotapi.Update, log *logger.Logger) {
	// Use a chat-specific logger when the update belongs to a chat
	if chatID := ChatID(update); chatID != 0 {
		log = logger.New(fmt.Sprintf("%d", chatID))
	}

	// Handle commands
	if update.Message != nil && update.Message.IsCommand() {
		command := update.Message.Command()
		if handler, ok := h.Commands[command]; ok {
			log.Info("Handling command: %s from user %s", command, userName(update.Message.From))
			handler(update.Message)
			return
		}
	}

	// Handle callback queries
	if update.CallbackQuery != nil {
		data := update.CallbackQuery.Data
		for prefix, handler := range h.Callbacks {
			if strings.HasPrefix(data, prefix) {
				log.Info("Handling callback: %s from user %s", data, userName(update.CallbackQuery.From))
				handler(update.CallbackQuery)
				break
			}
		}
		return
	}

	// Use default handler for other updates
	if h.Default != nil {
		h.Default(update)
	}
}

// ChatID returns the chat an update belongs to, or 0
func ChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func userName(u *tgbotapi.User) string {
	if u == nil {
		return "unknown"
	}
	return u.UserName
}

// SendMessage sends a text message to a chat
func (b *Bot) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return b.api.Send(msg)
}

// SendMessageWithKeyboard sends a text message with an inline keyboard
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return b.api.Send(msg)
}

// AnswerCallbackQuery answers a callback query
func (b *Bot) AnswerCallbackQuery(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := b.api.Request(callback)
	return err
}

// EditMessage replaces a message's text and removes its keyboard
func (b *Bot) EditMessage(chatID int64, messageID int, text string) (tgbotapi.Message, error) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	return b.api.Send(edit)
}

// FileURL returns a direct download link for a file sent to the bot
func (b *Bot) FileURL(fileID string) (string, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get file URL")
	}
	return url, nil
}
