package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordbot/internal/learning"
	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/review"
	"github.com/example/wordbot/internal/settings"
)

// API is the subset of *tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// ReminderChecker runs a reminder poll on demand
type ReminderChecker interface {
	RunManualCheck(ctx context.Context) (bool, error)
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Options wire the bot to the rest of the application
type Options struct {
	ChatID   int64
	Session  *review.Session
	Learning *learning.Service
	Settings *settings.Store
	Reminder ReminderChecker
	Logger   *slog.Logger
}

// Bot is the Telegram front end for a single owner chat
type Bot struct {
	api      API
	chatID   int64
	session  *review.Session
	learning *learning.Service
	settings *settings.Store
	reminder ReminderChecker
	logger   *slog.Logger

	wg sync.WaitGroup
}

// Connect authorizes against the Telegram API
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	return api, nil
}

// New creates a bot over api
func New(api API, opts Options) *Bot {
	return &Bot{
		api:      api,
		chatID:   opts.ChatID,
		session:  opts.Session,
		learning: opts.Learning,
		settings: opts.Settings,
		reminder: opts.Reminder,
		logger:   logging.Component(opts.Logger, "bot"),
	}
}

// SetReminder attaches the reminder poll used by /remind
func (b *Bot) SetReminder(r ReminderChecker) {
	b.reminder = r
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("bot started", slog.Int64("chat", b.chatID))
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// HandleUpdate dispatches one update from the owner chat
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chat := update.FromChat()
	if chat == nil {
		return
	}
	if chat.ID != b.chatID {
		b.logger.Debug("ignoring update from foreign chat", slog.Int64("chat", chat.ID))
		return
	}

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendText("Use /review to start or /start for help.")
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Error("failed to handle update", slog.Int("update", update.UpdateID), slog.Any("error", err))
	}
}

// SendReminder tells the owner how many words are waiting
func (b *Bot) SendReminder(_ context.Context, dueCount int) error {
	msg := tgbotapi.NewMessage(b.chatID, formatReminder(dueCount))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "▶️ Start review", CallbackData: callbackReview}},
	})
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(text string) error {
	return b.sendMessage(tgbotapi.NewMessage(b.chatID, text))
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("failed to answer callback", slog.Any("error", err))
	}
}
