package main

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/dinner"
	"github.com/korjavin/ispirami/pkg/fridge"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/messages"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/state"
	"github.com/korjavin/ispirami/pkg/telegram"
)

const (
	almostMaxMissing = 2
	almostLimit      = 15

	callbackResetFridge = "reset_fridge"
	callbackDoneAdding  = "done_adding"
)

// sender is the part of the Telegram bot the handlers talk to
type sender interface {
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallbackQuery(callbackID string, text string) error
	EditMessage(chatID int64, messageID int, text string) (tgbotapi.Message, error)
	FileURL(fileID string) (string, error)
}

// extractor turns free text or photos into ingredient names
type extractor interface {
	ParseIngredientsFromText(ctx context.Context, text string) ([]string, error)
	ExtractIngredientsFromPhoto(ctx context.Context, photoURL string) ([]string, error)
}

type app struct {
	ctx     context.Context
	bot     sender
	fridges *fridge.Service
	dinner  *dinner.Service
	states  *state.Manager
	llm     extractor // nil without an OpenAI key
	logger  *logger.Logger
}

func (a *app) handlers() telegram.Handlers {
	return telegram.Handlers{
		Commands: map[string]telegram.CommandHandler{
			"start":       a.handleStart,
			"help":        a.handleStart,
			"fridge":      a.handleFridge,
			"add":         a.handleAdd,
			"remove":      a.handleRemove,
			"sync_fridge": a.handleSyncFridge,
			"cook":        a.handleCook,
			"almost":      a.handleAlmost,
			"missing":     a.handleMissing,
		},
		Callbacks: map[string]telegram.CallbackHandler{
			callbackResetFridge: a.handleResetCallback,
			callbackDoneAdding:  a.handleDoneCallback,
		},
		Default: a.handleDefault,
	}
}

func (a *app) send(chatID int64, text string) {
	if _, err := a.bot.SendMessage(chatID, text); err != nil {
		a.logger.Error("Failed to send message to %d: %v", chatID, err)
	}
}

func (a *app) handleStart(message *tgbotapi.Message) {
	a.send(message.Chat.ID, messages.Welcome())
}

func (a *app) handleFridge(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	items, err := a.fridges.ListIngredients(chatID)
	if err != nil {
		a.logger.Error("Failed to list ingredients: %v", err)
		a.send(chatID, messages.Error("retrieve your fridge"))
		return
	}
	if len(items) == 0 {
		a.send(chatID, messages.EmptyFridge())
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Empty fridge", callbackResetFridge),
		),
	)
	if _, err := a.bot.SendMessageWithKeyboard(chatID, messages.FridgeContents(items), keyboard); err != nil {
		a.logger.Error("Failed to send fridge contents: %v", err)
	}
}

func (a *app) handleAdd(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	items := fridge.ParseList(message.CommandArguments())
	if len(items) == 0 {
		a.send(chatID, "Usage: /add name: quantity, name")
		return
	}
	a.store(chatID, items)
}

func (a *app) store(chatID int64, items []models.FridgeItem) {
	if err := a.fridges.UpdateIngredients(chatID, fridge.ItemMap(items)); err != nil {
		a.logger.Error("Failed to add ingredients: %v", err)
		a.send(chatID, messages.Error("update your fridge"))
		return
	}
	a.send(chatID, messages.Added(fridge.ItemNames(items)))
}

func (a *app) handleRemove(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	names := fridge.ItemNames(fridge.ParseList(message.CommandArguments()))
	if len(names) == 0 {
		a.send(chatID, "Usage: /remove name, name")
		return
	}
	if err := a.fridges.RemoveIngredients(chatID, names); err != nil {
		a.logger.Error("Failed to remove ingredients: %v", err)
		a.send(chatID, messages.Error("update your fridge"))
		return
	}
	a.send(chatID, messages.Removed(names))
}

func (a *app) handleSyncFridge(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if err := a.fridges.ResetFridge(chatID); err != nil {
		a.logger.Error("Failed to reset fridge: %v", err)
		a.send(chatID, messages.Error("reset your fridge"))
		return
	}
	a.states.SetState(chatID, state.StateAddingIngredients)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", callbackDoneAdding),
		),
	)
	if _, err := a.bot.SendMessageWithKeyboard(chatID, messages.SyncStarted(a.llm != nil), keyboard); err != nil {
		a.logger.Error("Failed to send sync prompt: %v", err)
	}
}

func (a *app) handleCook(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	names, err := a.fridges.Names(chatID)
	if err != nil {
		a.logger.Error("Failed to read fridge: %v", err)
		a.send(chatID, messages.Error("read your fridge"))
		return
	}
	found, err := a.dinner.Cookable(a.ctx, names)
	if err != nil {
		a.logger.Error("Failed to match recipes: %v", err)
		a.send(chatID, messages.Error("search the recipes"))
		return
	}
	for _, text := range messages.CookResults(found) {
		a.send(chatID, text)
	}
}

func (a *app) handleAlmost(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	names, err := a.fridges.Names(chatID)
	if err != nil {
		a.logger.Error("Failed to read fridge: %v", err)
		a.send(chatID, messages.Error("read your fridge"))
		return
	}
	near, err := a.dinner.Almost(a.ctx, names, almostMaxMissing, almostLimit)
	if err != nil {
		a.logger.Error("Failed to match recipes: %v", err)
		a.send(chatID, messages.Error("search the recipes"))
		return
	}
	a.send(chatID, messages.NearMisses(near))
}

func (a *app) handleMissing(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	url := strings.TrimSpace(message.CommandArguments())
	if url == "" {
		a.send(chatID, "Usage: /missing <recipe url>")
		return
	}

	names, err := a.fridges.Names(chatID)
	if err != nil {
		a.logger.Error("Failed to read fridge: %v", err)
		a.send(chatID, messages.Error("read your fridge"))
		return
	}
	r, missing, err := a.dinner.Missing(a.ctx, names, url)
	if errors.Is(err, models.ErrNotFound) {
		a.send(chatID, "🤷 I don't know that recipe.")
		return
	}
	if err != nil {
		a.logger.Error("Failed to load recipe %s: %v", url, err)
		a.send(chatID, messages.Error("load the recipe"))
		return
	}
	a.send(chatID, messages.Missing(r, missing))
}

func (a *app) handleResetCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	if err := a.fridges.ResetFridge(chatID); err != nil {
		a.logger.Error("Failed to reset fridge: %v", err)
		a.bot.AnswerCallbackQuery(callback.ID, messages.Error("reset your fridge"))
		return
	}
	a.bot.AnswerCallbackQuery(callback.ID, "Fridge emptied")
	if _, err := a.bot.EditMessage(chatID, callback.Message.MessageID, messages.EmptyFridge()); err != nil {
		a.logger.Error("Failed to edit message: %v", err)
	}
}

func (a *app) handleDoneCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	a.states.ClearState(chatID)
	a.bot.AnswerCallbackQuery(callback.ID, "Thanks! Your fridge is now updated.")
	if _, err := a.bot.EditMessage(chatID, callback.Message.MessageID, "✅ Fridge update complete! Use /fridge to see it or /cook to find recipes."); err != nil {
		a.logger.Error("Failed to edit message: %v", err)
	}
}

// handleDefault collects fridge contents while the chat is syncing
func (a *app) handleDefault(update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil || message.IsCommand() {
		return
	}
	chatID := message.Chat.ID
	if a.states.GetState(chatID) != state.StateAddingIngredients {
		return
	}
	a.states.Touch(chatID)

	var (
		items []models.FridgeItem
		err   error
	)
	switch {
	case len(message.Photo) > 0:
		items, err = a.fromPhoto(message.Photo)
	case message.Text != "":
		items, err = a.fromText(message.Text)
	default:
		return
	}
	if err != nil {
		a.logger.Error("Failed to read ingredients: %v", err)
		a.send(chatID, "😢 Sorry, I couldn't understand the ingredients. Please try again with a clearer list.")
		return
	}
	if len(items) == 0 {
		a.send(chatID, "I couldn't find any ingredients in your message. Please try again with a list of ingredients.")
		return
	}
	a.store(chatID, items)
}

func (a *app) fromText(text string) ([]models.FridgeItem, error) {
	// lists with quantities are already structured
	if a.llm == nil || strings.Contains(text, ":") {
		return fridge.ParseList(text), nil
	}

	names, err := a.llm.ParseIngredientsFromText(a.ctx, text)
	if err != nil {
		a.logger.Warn("LLM parsing failed, splitting the text instead: %v", err)
		return fridge.ParseList(text), nil
	}
	return fridge.ParseList(strings.Join(names, "\n")), nil
}

func (a *app) fromPhoto(photos []tgbotapi.PhotoSize) ([]models.FridgeItem, error) {
	if a.llm == nil {
		return nil, errors.New("photo recognition needs an OpenAI key")
	}

	// the last size is the largest
	url, err := a.bot.FileURL(photos[len(photos)-1].FileID)
	if err != nil {
		return nil, err
	}
	names, err := a.llm.ExtractIngredientsFromPhoto(a.ctx, url)
	if err != nil {
		return nil, err
	}
	return fridge.ParseList(strings.Join(names, "\n")), nil
}
