package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"tradehook/internal/domain"
)

// NotificationService pushes trade events to a Telegram chat through the
// Bot API. It implements domain.Notifier: every send is best effort and a
// delivery failure is only logged.
type NotificationService struct {
	botToken   string
	chatID     string
	enabled    bool
	httpClient *http.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewNotificationService creates a notifier. With empty credentials the
// service stays disabled and every call is a no-op.
func NewNotificationService(botToken, chatID string) *NotificationService {
	return &NotificationService{
		botToken: botToken,
		chatID:   chatID,
		enabled:  botToken != "" && chatID != "",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyTrade reports an executed or failed trade.
func (s *NotificationService) NotifyTrade(trade *domain.Trade) {
	if !s.enabled {
		return
	}

	var message string
	switch trade.Status {
	case domain.TradeFilled:
		filled := 0.0
		if trade.FilledPrice != nil {
			filled = *trade.FilledPrice
		}
		sideEmoji := "🟢"
		if trade.Side == domain.SideSell {
			sideEmoji = "🔴"
		}
		message = fmt.Sprintf(
			"%s *TRADE FILLED*\n\n"+
				"📊 Symbol: `%s`\n"+
				"📈 Side: `%s`\n"+
				"🔢 Quantity: `%v`\n"+
				"💵 Price: `$%.4f`\n"+
				"🕒 Time: `%s`",
			sideEmoji,
			trade.Symbol,
			trade.Side,
			trade.Quantity,
			filled,
			trade.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		)

	case domain.TradeFailed:
		reason := "unknown"
		if trade.ErrorMessage != nil {
			reason = *trade.ErrorMessage
		}
		message = fmt.Sprintf(
			"❌ *TRADE FAILED*\n\n"+
				"📊 Symbol: `%s`\n"+
				"📈 Side: `%s`\n"+
				"⚠️ Reason: %s",
			trade.Symbol,
			trade.Side,
			reason,
		)

	default:
		message = fmt.Sprintf(
			"⏳ *ORDER PLACED*\n\n"+
				"📊 Symbol: `%s`\n"+
				"📈 Side: `%s`\n"+
				"🔢 Quantity: `%v`\n"+
				"📋 Status: `%s`",
			trade.Symbol,
			trade.Side,
			trade.Quantity,
			trade.Status,
		)
	}

	if err := s.sendMessage(message); err != nil {
		log.Printf("WARNING: telegram notification failed: %v", err)
	}
}

// NotifyPositionClosed reports a closed position with its realized PnL.
func (s *NotificationService) NotifyPositionClosed(position *domain.Position) {
	if !s.enabled {
		return
	}

	pnl := 0.0
	if position.RealizedPnL != nil {
		pnl = *position.RealizedPnL
	}
	resultEmoji := "✅"
	if pnl < 0 {
		resultEmoji = "❌"
	}

	closedAt := time.Now().UTC()
	if position.ClosedAt != nil {
		closedAt = position.ClosedAt.UTC()
	}

	message := fmt.Sprintf(
		"%s *POSITION CLOSED*\n\n"+
			"📊 Symbol: `%s`\n"+
			"📈 Side: `%s`\n"+
			"🔢 Quantity: `%v`\n"+
			"━━━━━━━━━━━━━━━━━\n"+
			"🔵 Entry: `$%.4f`\n"+
			"🏁 Exit: `$%.4f`\n"+
			"💰 PnL: `$%.2f`\n"+
			"🕒 Closed: `%s`",
		resultEmoji,
		position.Symbol,
		position.Side,
		position.Quantity,
		position.EntryPrice,
		position.MarkPrice,
		pnl,
		closedAt.Format("2006-01-02 15:04:05"),
	)

	if err := s.sendMessage(message); err != nil {
		log.Printf("WARNING: telegram notification failed: %v", err)
	}
}

// sendMessage sends a message to Telegram using the Bot API
func (s *NotificationService) sendMessage(text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	payload := telegramMessage{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
