package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordbot/internal/learning"
	"github.com/example/wordbot/internal/review"
	"github.com/example/wordbot/pkg/models"
)

// Constants for callback data
const (
	callbackReview    = "review"
	callbackStats     = "stats"
	callbackShowPref  = "show:"
	callbackRatePref  = "rate:"
	callbackWordsPref = "words:"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.TrimSpace(message.CommandArguments())

	var err error
	switch message.Command() {
	case "start", "help":
		err = b.handleStart()
	case "review":
		err = b.handleReview(ctx)
	case "stats":
		err = b.handleStats(ctx)
	case "words":
		err = b.handleWords(ctx, args)
	case "search":
		err = b.handleSearch(ctx, args)
	case "add":
		err = b.handleAdd(ctx, args)
	case "daily":
		err = b.handleDailyLimit(ctx, args)
	case "interval":
		err = b.handleInterval(ctx, args)
	case "remind":
		err = b.handleRemind(ctx)
	default:
		err = b.sendText("Unknown command. Use /start to see what I can do.")
	}
	return err
}

func (b *Bot) handleStart() error {
	msg := tgbotapi.NewMessage(b.chatID, helpText)
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "▶️ Review", CallbackData: callbackReview}, {Text: "📊 Stats", CallbackData: callbackStats}},
		{{Text: "📚 Word list", CallbackData: callbackWordsPref + "0"}},
	}
}

func (b *Bot) handleReview(ctx context.Context) error {
	err := b.session.StartSession(ctx)
	if errors.Is(err, review.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return b.sendText("❌ Could not load your reviews. Please try again later.")
	}
	if b.session.SessionComplete() {
		return b.sendText("🎉 Nothing is due right now. Come back later!")
	}

	head, _ := b.session.CurrentHead()
	completed, total := b.session.Progress()
	msg := tgbotapi.NewMessage(b.chatID, formatCard(head, false, completed, total))
	msg.ReplyMarkup = hiddenCardKeyboard(head.ID)
	return b.sendMessage(msg)
}

func (b *Bot) handleStats(ctx context.Context) error {
	stats, err := b.session.Stats(ctx)
	if err != nil {
		return b.sendText("❌ Statistics are unavailable right now.")
	}
	return b.sendText(formatStats(stats))
}

func (b *Bot) handleWords(ctx context.Context, args string) error {
	if args == "" {
		return b.showWordPage(ctx, 0, 0)
	}
	if n, err := strconv.Atoi(args); err == nil {
		return b.showWordPage(ctx, 0, n-1)
	}

	letter := string([]rune(args)[:1])
	words, err := b.learning.WordsByLetter(ctx, letter)
	if err != nil {
		return b.sendText("❌ Could not load the word list.")
	}
	return b.sendText(formatWordList(fmt.Sprintf("Words starting with %q", strings.ToUpper(letter)), words))
}

// showWordPage sends a page of the master list, or edits messageID when it is set
func (b *Bot) showWordPage(ctx context.Context, messageID, page int) error {
	if page < 0 {
		page = 0
	}
	words, err := b.learning.ListWords(ctx, page, learning.DefaultPageSize)
	if err != nil {
		return b.sendText("❌ Could not load the word list.")
	}

	text := formatWordList(fmt.Sprintf("Word list, page %d", page+1), words)
	var nav []MenuButton
	if page > 0 {
		nav = append(nav, MenuButton{Text: "⬅️", CallbackData: callbackWordsPref + strconv.Itoa(page-1)})
	}
	if len(words) == learning.DefaultPageSize {
		nav = append(nav, MenuButton{Text: "➡️", CallbackData: callbackWordsPref + strconv.Itoa(page+1)})
	}

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(b.chatID, messageID, text)
		if len(nav) > 0 {
			kb := createKeyboard([][]MenuButton{nav})
			edit.ReplyMarkup = &kb
		}
		return b.sendMessage(edit)
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	if len(nav) > 0 {
		msg.ReplyMarkup = createKeyboard([][]MenuButton{nav})
	}
	return b.sendMessage(msg)
}

func (b *Bot) handleSearch(ctx context.Context, args string) error {
	if args == "" {
		return b.sendText("Usage: /search <prefix>")
	}
	words, err := b.learning.SearchWords(ctx, args)
	if err != nil {
		return b.sendText("❌ Search failed.")
	}
	return b.sendText(formatWordList(fmt.Sprintf("Results for %q", args), words))
}

func (b *Bot) handleAdd(ctx context.Context, args string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.sendText("Usage: /add <word id>")
	}

	_, err = b.learning.AddToLearning(ctx, id)
	switch {
	case errors.Is(err, learning.ErrAlreadyLearning):
		return b.sendText("This word is already in your learning set.")
	case errors.Is(err, learning.ErrNotFound):
		return b.sendText(fmt.Sprintf("No word with id %d.", id))
	case err != nil:
		return b.sendText("❌ Could not add the word.")
	}
	return b.sendText("✅ Added. It is due for review now.")
}

func (b *Bot) handleDailyLimit(ctx context.Context, args string) error {
	if args == "" {
		return b.sendText(fmt.Sprintf("New words per session: %d", b.settings.DailyLimit(ctx)))
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return b.sendText("Usage: /daily <number>")
	}
	applied, err := b.settings.SetDailyLimit(ctx, n)
	if err != nil {
		b.logger.Warn("daily limit not persisted", slog.Any("error", err))
	}
	return b.sendText(fmt.Sprintf("New words per session set to %d.", applied))
}

func (b *Bot) handleInterval(ctx context.Context, args string) error {
	if args == "" {
		return b.sendText(fmt.Sprintf("Reminder check every %d hours.", b.settings.PushIntervalHours(ctx)))
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return b.sendText("Usage: /interval <hours>")
	}
	applied, err := b.settings.SetPushIntervalHours(ctx, n)
	if err != nil {
		b.logger.Warn("push interval not persisted", slog.Any("error", err))
	}
	return b.sendText(fmt.Sprintf("Reminder check every %d hours.", applied))
}

func (b *Bot) handleRemind(ctx context.Context) error {
	if b.reminder == nil {
		return b.sendText("Reminders are disabled.")
	}
	sent, err := b.reminder.RunManualCheck(ctx)
	if err != nil {
		return b.sendText("❌ Reminder check failed.")
	}
	if !sent {
		return b.sendText("No reminder needed right now.")
	}
	return nil
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}
	messageID := callback.Message.MessageID

	switch data := callback.Data; {
	case data == callbackReview:
		b.answerCallback(callback.ID, "")
		return b.handleReview(ctx)
	case data == callbackStats:
		b.answerCallback(callback.ID, "")
		return b.handleStats(ctx)
	case strings.HasPrefix(data, callbackWordsPref):
		b.answerCallback(callback.ID, "")
		page, err := strconv.Atoi(strings.TrimPrefix(data, callbackWordsPref))
		if err != nil {
			return fmt.Errorf("invalid page in callback data: %w", err)
		}
		return b.showWordPage(ctx, messageID, page)
	case strings.HasPrefix(data, callbackShowPref):
		b.answerCallback(callback.ID, "")
		return b.handleShowAnswer(messageID, strings.TrimPrefix(data, callbackShowPref))
	case strings.HasPrefix(data, callbackRatePref):
		itemID, rating, err := parseRateCallback(data)
		if err != nil {
			b.answerCallback(callback.ID, "⚠️ Unknown action")
			return err
		}
		return b.handleRate(ctx, callback.ID, messageID, itemID, rating)
	default:
		b.answerCallback(callback.ID, "⚠️ Unknown action")
		return nil
	}
}

func (b *Bot) handleShowAnswer(messageID int, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item ID in callback data: %w", err)
	}
	head, ok := b.session.CurrentHead()
	if !ok || head.ID != id {
		return b.renderHead(messageID)
	}
	completed, total := b.session.Progress()
	kb := ratingKeyboard(head.ID)
	return b.sendMessage(tgbotapi.NewEditMessageTextAndMarkup(b.chatID, messageID, formatCard(head, true, completed, total), kb))
}

func (b *Bot) handleRate(ctx context.Context, callbackID string, messageID int, itemID int64, rating models.Rating) error {
	outcome, err := b.session.SubmitRating(ctx, itemID, rating)
	if errors.Is(err, review.ErrScheduleUnavailable) {
		// the card stays so the same button can be pressed again
		b.answerCallback(callbackID, "❌ Could not save the rating, please try again")
		return nil
	}
	if err != nil {
		b.answerCallback(callbackID, "⚠️ Rating rejected")
		return err
	}

	b.answerCallback(callbackID, "")
	if outcome == review.OutcomeStale {
		b.logger.Debug("re-rendering after stale rating", slog.Int64("item", itemID))
	}
	return b.renderHead(messageID)
}

// renderHead replaces the card in messageID with the current head, or the
// completion message when the queue is empty
func (b *Bot) renderHead(messageID int) error {
	completed, total := b.session.Progress()
	head, ok := b.session.CurrentHead()
	if !ok {
		return b.sendMessage(tgbotapi.NewEditMessageText(b.chatID, messageID, formatComplete(completed)))
	}
	kb := hiddenCardKeyboard(head.ID)
	return b.sendMessage(tgbotapi.NewEditMessageTextAndMarkup(b.chatID, messageID, formatCard(head, false, completed, total), kb))
}

func hiddenCardKeyboard(itemID int64) tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{
		{{Text: "👀 Show answer", CallbackData: fmt.Sprintf("%s%d", callbackShowPref, itemID)}},
	})
}

func ratingKeyboard(itemID int64) tgbotapi.InlineKeyboardMarkup {
	labels := []struct {
		rating models.Rating
		text   string
	}{
		{models.RatingForgot, "😵 Forgot"},
		{models.RatingHard, "😓 Hard"},
		{models.RatingGood, "🙂 Good"},
		{models.RatingEasy, "😎 Easy"},
	}
	row := make([]MenuButton, 0, len(labels))
	for _, l := range labels {
		row = append(row, MenuButton{Text: l.text, CallbackData: rateCallbackData(itemID, l.rating)})
	}
	return createKeyboard([][]MenuButton{row[:2], row[2:]})
}

func rateCallbackData(itemID int64, rating models.Rating) string {
	return fmt.Sprintf("%s%d:%d", callbackRatePref, itemID, int(rating))
}

// parseRateCallback reads "rate:<itemID>:<rating>"
func parseRateCallback(data string) (int64, models.Rating, error) {
	parts := strings.Split(strings.TrimPrefix(data, callbackRatePref), ":")
	if !strings.HasPrefix(data, callbackRatePref) || len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed rating callback %q", data)
	}
	itemID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item ID in callback data: %w", err)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rating in callback data: %w", err)
	}
	rating, err := models.ParseRating(n)
	if err != nil {
		return 0, 0, err
	}
	return itemID, rating, nil
}
