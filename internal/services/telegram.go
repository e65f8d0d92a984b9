package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramTimeout bounds every Telegram API call. Long polling in Listen
// asks for 60s, so the limit sits above that.
const telegramTimeout = 75 * time.Second

// TelegramNotifier sends giveaway notices to the organizer's Telegram chat.
// When no chat id is configured, the first user sending /start to the bot
// becomes the recipient.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI

	mu     sync.RWMutex
	chatID int64
}

// NewTelegramNotifier authorizes the bot token against the Telegram API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chatID, tgbotapi.APIEndpoint, telegramTimeout)
}

func newTelegramNotifier(token string, chatID int64, endpoint string, timeout time.Duration) (*TelegramNotifier, error) {
	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("telegram bot authorized", "account", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// ChatID returns the current recipient, 0 if none is known yet.
func (t *TelegramNotifier) ChatID() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.chatID
}

// claimChat sets the recipient unless one is already known.
func (t *TelegramNotifier) claimChat(chatID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.chatID != 0 {
		return false
	}
	t.chatID = chatID
	return true
}

// Listen captures the admin chat from the first /start command until ctx is
// done. Later /start senders are ignored.
func (t *TelegramNotifier) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		t.bot.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		if update.Message.Command() != "start" {
			continue
		}

		chatID := update.Message.Chat.ID
		if !t.claimChat(chatID) {
			slog.Warn("telegram /start ignored, admin chat already set", "chat_id", chatID)
			continue
		}

		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("¡Hola Admin! Tu ID ha sido registrado: %d. Ahora recibirás las novedades del sorteo aquí.", chatID))
		if _, err := t.bot.Send(msg); err != nil {
			slog.Warn("telegram reply failed", "error", err)
		}
		slog.Info("telegram admin chat registered", "chat_id", chatID)
	}
}

// Notify sends text to the admin chat in the background and returns at once.
func (t *TelegramNotifier) Notify(text string) {
	chatID := t.ChatID()
	if chatID == 0 {
		slog.Debug("telegram notice dropped, admin chat unknown")
		return
	}

	go func() {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			slog.Warn("telegram notice failed", "error", err)
		}
	}()
}
