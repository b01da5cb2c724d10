package telegram

import (
	"context"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kasir-bot/bot"
)

func TestToEvent(t *testing.T) {
	t.Run("text message", func(t *testing.T) {
		ev, ok := ToEvent(tgbotapi.Update{Message: &tgbotapi.Message{
			MessageID: 5,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "📝 Buat Struk",
		}})
		require.True(t, ok)
		assert.Equal(t, bot.TextEvent{ChatID: 42, Text: "📝 Buat Struk"}, ev)
	})

	t.Run("callback query", func(t *testing.T) {
		ev, ok := ToEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			Data:    "edit_save",
			Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: 42}},
		}})
		require.True(t, ok)
		assert.Equal(t, bot.CallbackEvent{ChatID: 42, CallbackID: "cb-1", Data: "edit_save", MessageID: 77}, ev)
	})

	t.Run("non text message is ignored", func(t *testing.T) {
		_, ok := ToEvent(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}}})
		assert.False(t, ok)
	})

	t.Run("empty update is ignored", func(t *testing.T) {
		_, ok := ToEvent(tgbotapi.Update{})
		assert.False(t, ok)
	})
}

func TestNewMessageConfig(t *testing.T) {
	cfg := newMessageConfig(42, bot.Message{
		Text:     "*Halo*",
		Markdown: true,
		Markup: bot.ReplyKeyboard{
			Rows:    [][]string{{"✅ Ya", "❌ Tidak"}},
			OneTime: true,
		},
	})
	assert.Equal(t, int64(42), cfg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, cfg.ParseMode)

	kb, ok := cfg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	assert.True(t, kb.OneTimeKeyboard)
	require.Len(t, kb.Keyboard, 1)
	assert.Equal(t, "❌ Tidak", kb.Keyboard[0][1].Text)

	plain := newMessageConfig(42, bot.Message{Text: "halo", Markup: bot.RemoveKeyboard{}})
	assert.Empty(t, plain.ParseMode)
	_, ok = plain.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)
}

func TestNewEditConfigKeepsOnlyInlineKeyboard(t *testing.T) {
	cfg := newEditConfig(42, 9, bot.Message{
		Text:   "menu",
		Markup: bot.InlineKeyboard{{{Text: "✅ Simpan Perubahan", Data: "edit_save"}}},
	})
	require.NotNil(t, cfg.ReplyMarkup)
	assert.Equal(t, "edit_save", *cfg.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	cfg = newEditConfig(42, 9, bot.Message{Text: "menu", Markup: bot.ReplyKeyboard{Rows: [][]string{{"x"}}}})
	assert.Nil(t, cfg.ReplyMarkup)
}

type recordingHandler struct {
	mu     sync.Mutex
	events []bot.Event
}

func (h *recordingHandler) Handle(_ context.Context, ev bot.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

func TestDispatchSkipsIrrelevantUpdates(t *testing.T) {
	h := &recordingHandler{}
	Dispatch(context.Background(), h, tgbotapi.Update{})
	Dispatch(context.Background(), h, tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "halo"}})
	assert.Len(t, h.events, 1)
}

func TestNewWebhookConfigUsesSingleConnection(t *testing.T) {
	wh, err := newWebhookConfig("https://bot.villaparfum.id/webhook/s3cret")
	require.NoError(t, err)
	assert.Equal(t, 1, wh.MaxConnections)
	assert.Equal(t, "/webhook/s3cret", wh.URL.Path)

	_, err = newWebhookConfig("://broken")
	assert.Error(t, err)
}
