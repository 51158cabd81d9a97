package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/learning"
	"github.com/example/wordbot/internal/logging"
	"github.com/example/wordbot/internal/review"
	"github.com/example/wordbot/internal/settings"
	"github.com/example/wordbot/pkg/models"
)

const ownerChat = 42

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

// lastText returns the text of the latest message or edit
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	default:
		t.Fatalf("unexpected chattable %T", c)
		return ""
	}
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestBot(t *testing.T, words ...models.MasterWord) (*Bot, *fakeAPI) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, database.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wordRepo := database.NewWordRepository(db)
	for i := range words {
		require.NoError(t, wordRepo.Create(ctx, &words[i]))
	}

	logger := logging.NewNop()
	svc := learning.NewService(wordRepo, database.NewLearningRepository(db), logger)
	store := settings.New(database.NewSettingsRepository(db), logger)
	session := review.NewSession(svc, store, review.Options{Logger: logger})

	api := &fakeAPI{}
	b := New(api, Options{
		ChatID:   ownerChat,
		Session:  session,
		Learning: svc,
		Settings: store,
		Logger:   logger,
	})
	return b, api
}

func command(chatID int64, text string) tgbotapi.Update {
	length := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		length = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func callback(data string, messageID int) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: ownerChat},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: ownerChat}},
	}}
}

func TestParseRateCallback(t *testing.T) {
	id, rating, err := parseRateCallback("rate:17:3")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
	assert.Equal(t, models.RatingGood, rating)

	for _, bad := range []string{"rate:17", "rate:x:3", "rate:17:5", "rate:17:0", "show:17:3", "rate:1:2:3"} {
		_, _, err := parseRateCallback(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "rate:9:4", rateCallbackData(9, models.RatingEasy))
}

func TestFormatCard(t *testing.T) {
	item := models.ReviewItem{ID: 1, Text: "serene", Definition: "calm", Pronunciation: "/səˈriːn/"}

	hidden := formatCard(item, false, 1, 4)
	assert.Contains(t, hidden, "serene")
	assert.Contains(t, hidden, "/səˈriːn/")
	assert.NotContains(t, hidden, "calm")
	assert.Contains(t, hidden, "1/4")

	assert.Contains(t, formatCard(item, true, 1, 4), "calm")
}

func TestFormatProgressCapsBar(t *testing.T) {
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓ 5/4", formatProgress(5, 4))
	assert.Equal(t, "░░░░░░░░░░ 0/3", formatProgress(0, 3))
}

func TestPluralWords(t *testing.T) {
	assert.Equal(t, "1 word", pluralWords(1))
	assert.Equal(t, "3 words", pluralWords(3))
	assert.Equal(t, "⏰ You have 5 words to review!", formatReminder(5))
}

func TestForeignChatIgnored(t *testing.T) {
	b, api := newTestBot(t)
	b.HandleUpdate(context.Background(), command(7, "/stats"))
	assert.Zero(t, api.sentCount())
}

func TestReviewFlow(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t,
		models.MasterWord{Text: "alpha", Definition: "first letter"},
		models.MasterWord{Text: "beta", Definition: "second letter"},
	)

	b.HandleUpdate(ctx, command(ownerChat, "/review"))
	assert.Contains(t, api.lastText(t), "alpha")
	assert.NotContains(t, api.lastText(t), "first letter")

	head, ok := b.session.CurrentHead()
	require.True(t, ok)

	b.HandleUpdate(ctx, callback("show:"+strconv.FormatInt(head.ID, 10), 1))
	assert.Contains(t, api.lastText(t), "first letter")

	b.HandleUpdate(ctx, callback(rateCallbackData(head.ID, models.RatingForgot), 1))
	assert.Contains(t, api.lastText(t), "beta", "forgotten word moves behind the next one")
	assert.Equal(t, 2, b.session.Remaining())

	b.HandleUpdate(ctx, callback(rateCallbackData(head.ID, models.RatingGood), 1))
	assert.Equal(t, 1, b.session.Remaining())

	next, _ := b.session.CurrentHead()
	b.HandleUpdate(ctx, callback(rateCallbackData(next.ID, models.RatingEasy), 1))
	assert.Contains(t, api.lastText(t), "Session complete")
	assert.Contains(t, api.lastText(t), "2 words")

	// a second press on an already rated card is ignored
	b.HandleUpdate(ctx, callback(rateCallbackData(next.ID, models.RatingEasy), 1))
	assert.Contains(t, api.lastText(t), "Session complete")
}

func TestReviewNothingDue(t *testing.T) {
	b, api := newTestBot(t)
	b.HandleUpdate(context.Background(), command(ownerChat, "/review"))
	assert.Contains(t, api.lastText(t), "Nothing is due")
}

func TestSettingsCommands(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)

	b.HandleUpdate(ctx, command(ownerChat, "/daily 99"))
	assert.Contains(t, api.lastText(t), "50")
	assert.Equal(t, 50, b.settings.DailyLimit(ctx))

	b.HandleUpdate(ctx, command(ownerChat, "/interval 1"))
	assert.Contains(t, api.lastText(t), "2 hours")

	b.HandleUpdate(ctx, command(ownerChat, "/daily lots"))
	assert.Contains(t, api.lastText(t), "Usage")
}

func TestWordCommands(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t,
		models.MasterWord{Text: "apple", Definition: "a fruit"},
		models.MasterWord{Text: "banana", Definition: "a long fruit"},
	)

	b.HandleUpdate(ctx, command(ownerChat, "/words b"))
	assert.Contains(t, api.lastText(t), "banana")
	assert.NotContains(t, api.lastText(t), "apple")

	b.HandleUpdate(ctx, command(ownerChat, "/search app"))
	assert.Contains(t, api.lastText(t), "apple")

	b.HandleUpdate(ctx, command(ownerChat, "/add 1"))
	assert.Contains(t, api.lastText(t), "Added")

	b.HandleUpdate(ctx, command(ownerChat, "/add 1"))
	assert.Contains(t, api.lastText(t), "already")

	b.HandleUpdate(ctx, command(ownerChat, "/add 77"))
	assert.Contains(t, api.lastText(t), "No word")

	b.HandleUpdate(ctx, command(ownerChat, "/stats"))
	assert.Contains(t, api.lastText(t), "Learning: 1")
}

func TestSendReminder(t *testing.T) {
	b, api := newTestBot(t)
	require.NoError(t, b.SendReminder(context.Background(), 3))

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(ownerChat), msg.ChatID)
	assert.Contains(t, msg.Text, "3 words")
}
