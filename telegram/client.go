// Package telegram menghubungkan bot ke Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yeremiapane/kasir-bot/bot"
	"github.com/yeremiapane/kasir-bot/utils"
)

// Client mengimplementasikan bot.Transport.
type Client struct {
	api *tgbotapi.BotAPI
}

func NewClient(token string, debug bool) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	api.Debug = debug
	utils.InfoLogger.WithField("username", api.Self.UserName).Info("Authorized on Telegram")
	return &Client{api: api}, nil
}

func (c *Client) Send(ctx context.Context, chatID int64, msg bot.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cfg := newMessageConfig(chatID, msg)
	sent, err := c.api.Send(cfg)
	if err != nil && msg.Markdown && isParseError(err) {
		// teks dari user bisa berisi karakter markdown, kirim ulang tanpa format
		cfg.ParseMode = ""
		sent, err = c.api.Send(cfg)
	}
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, msg bot.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := newEditConfig(chatID, messageID, msg)
	_, err := c.api.Request(cfg)
	if err != nil && msg.Markdown && isParseError(err) {
		cfg.ParseMode = ""
		_, err = c.api.Request(cfg)
	}
	if err != nil && isNotModified(err) {
		return nil
	}
	return err
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	_, err := c.api.Request(cfg)
	return err
}

func newMessageConfig(chatID int64, msg bot.Message) tgbotapi.MessageConfig {
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup := replyMarkup(msg.Markup); markup != nil {
		cfg.ReplyMarkup = markup
	}
	return cfg
}

// newEditConfig: Telegram hanya mengizinkan keyboard inline pada pesan yang diedit.
func newEditConfig(chatID int64, messageID int, msg bot.Message) tgbotapi.EditMessageTextConfig {
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, msg.Text)
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	if kb, ok := msg.Markup.(bot.InlineKeyboard); ok {
		markup := inlineMarkup(kb)
		cfg.ReplyMarkup = &markup
	}
	return cfg
}

func replyMarkup(m bot.Markup) interface{} {
	switch kb := m.(type) {
	case bot.ReplyKeyboard:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		markup.OneTimeKeyboard = kb.OneTime
		return markup
	case bot.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	case bot.InlineKeyboard:
		return inlineMarkup(kb)
	}
	return nil
}

func inlineMarkup(kb bot.InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
