package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yeremiapane/kasir-bot/bot"
	"github.com/yeremiapane/kasir-bot/utils"
)

// Handler menerima event dari Telegram. bot.Dispatcher memenuhi interface ini.
type Handler interface {
	Handle(ctx context.Context, ev bot.Event) error
}

// ToEvent mengubah update Telegram menjadi event bot. ok=false untuk update yang
// tidak diproses (edit pesan, stiker, dsb).
func ToEvent(u tgbotapi.Update) (bot.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return nil, false
		}
		return bot.CallbackEvent{
			ChatID:     q.Message.Chat.ID,
			CallbackID: q.ID,
			Data:       q.Data,
			MessageID:  q.Message.MessageID,
		}, true
	case u.Message != nil:
		m := u.Message
		if m.Chat == nil || m.Text == "" {
			return nil, false
		}
		return bot.TextEvent{ChatID: m.Chat.ID, Text: m.Text}, true
	}
	return nil, false
}

// Dispatch meneruskan satu update ke handler.
func Dispatch(ctx context.Context, h Handler, u tgbotapi.Update) {
	ev, ok := ToEvent(u)
	if !ok {
		return
	}
	if err := h.Handle(ctx, ev); err != nil {
		utils.InfoLogger.WithError(err).WithField("update_id", u.UpdateID).Debug("update not handled")
	}
}

// Poll menjalankan long polling sampai ctx selesai. Update dari chat yang sama
// diproses berurutan sesuai kedatangan; chat berbeda paralel.
func (c *Client) Poll(ctx context.Context, timeout int, h Handler) error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to remove webhook before polling: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := c.api.GetUpdatesChan(cfg)
	utils.InfoLogger.Info("Polling Telegram updates")

	seq := NewSequencer(h)
	seq.Run(ctx, updates)
	c.api.StopReceivingUpdates()
	seq.Wait()
	return nil
}

// SetWebhook mendaftarkan URL webhook ke Telegram.
func (c *Client) SetWebhook(url string) error {
	wh, err := newWebhookConfig(url)
	if err != nil {
		return err
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	utils.InfoLogger.WithField("url", url).Info("Telegram webhook registered")
	return nil
}

// newWebhookConfig memakai satu koneksi: Telegram menunggu balasan sebelum mengirim
// update berikutnya, sehingga urutan per chat sama dengan urutan kirim.
func newWebhookConfig(url string) (tgbotapi.WebhookConfig, error) {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return wh, fmt.Errorf("invalid webhook url: %w", err)
	}
	wh.MaxConnections = 1
	return wh, nil
}
