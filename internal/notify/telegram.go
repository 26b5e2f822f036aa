package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"status-sentiment/internal/config"
	"status-sentiment/internal/models"
)

// Notifier is told about every recorded status and decides whether to alert.
type Notifier interface {
	StatusRecorded(ctx context.Context, entry models.StatusEntry)
}

// Nop ignores every status.
type Nop struct{}

func (Nop) StatusRecorded(context.Context, models.StatusEntry) {}

// DefaultSendTimeout bounds one alert, including the HTTP round trip.
const DefaultSendTimeout = 10 * time.Second

// TelegramNotifier posts an alert to a chat when a status carries one of
// the configured labels. Send failures are logged, never returned.
type TelegramNotifier struct {
	api         *tgbotapi.BotAPI
	chatID      int64
	labels      map[string]struct{}
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewTelegramNotifier authorizes the bot. apiEndpoint and client may be
// empty/nil to use the public Telegram API.
func NewTelegramNotifier(cfg config.TelegramConfig, apiEndpoint string, client *http.Client, logger *zap.Logger) (*TelegramNotifier, error) {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultSendTimeout}
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, apiEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	labels := make(map[string]struct{}, len(cfg.AlertLabels))
	for _, l := range cfg.AlertLabels {
		labels[strings.ToUpper(strings.TrimSpace(l))] = struct{}{}
	}

	return &TelegramNotifier{
		api:         botAPI,
		chatID:      cfg.ChatID,
		labels:      labels,
		sendTimeout: DefaultSendTimeout,
		logger:      logger,
	}, nil
}

// WithSendTimeout changes how long StatusRecorded waits for Telegram.
func (n *TelegramNotifier) WithSendTimeout(d time.Duration) *TelegramNotifier {
	n.sendTimeout = d
	return n
}

// StatusRecorded returns once the alert is sent, ctx is done or the send
// timeout passes. An abandoned send finishes in the background.
func (n *TelegramNotifier) StatusRecorded(ctx context.Context, entry models.StatusEntry) {
	if _, ok := n.labels[strings.ToUpper(entry.Label)]; !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	// BotAPI.Send takes no context, so wait on it from here.
	done := make(chan error, 1)
	msg := tgbotapi.NewMessage(n.chatID, formatAlert(entry))
	go func() {
		_, err := n.api.Send(msg)
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("alert not confirmed: %w", ctx.Err())
	}
	if err != nil {
		n.logger.Warn("Failed to send Telegram alert",
			zap.String("user_id", entry.UserID),
			zap.Int64("id_status", entry.ID),
			zap.Error(err))
		return
	}

	n.logger.Debug("Telegram alert sent", zap.String("user_id", entry.UserID), zap.String("label", entry.Label))
}

func formatAlert(entry models.StatusEntry) string {
	return fmt.Sprintf("⚠️ %s status recorded\nUser: %s\nConfidence: %.2f%%\nDate: %s",
		entry.Label, entry.UserID, entry.Confidence, entry.Date)
}
