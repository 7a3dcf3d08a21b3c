package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"rug-surfer/internal/domain"
)

// Default configuration values.
const (
	telegramAPIBase    = "https://api.telegram.org"
	longPollTimeoutSec = 30
	commandQueueDepth  = 16

	labelSimulation = "[SIM]"
	labelLive       = "[LIVE]"
)

// TelegramNotifier delivers events through a Telegram bot and long-polls the
// bot API for operator commands. The chat is bound on the first /start.
type TelegramNotifier struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *log.Logger

	chatID   atomic.Int64
	commands chan Command
}

// TelegramOption configures TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithAPIBase overrides the bot API base URL.
func WithAPIBase(u string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = u
	}
}

// WithChatID pre-binds the chat so notifications flow before any /start.
func WithChatID(id int64) TelegramOption {
	return func(n *TelegramNotifier) {
		n.chatID.Store(id)
	}
}

// WithTelegramHTTPClient sets a custom http.Client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.client = c
	}
}

// NewTelegramNotifier creates a notifier for the bot token.
func NewTelegramNotifier(token string, logger *log.Logger, opts ...TelegramOption) *TelegramNotifier {
	n := &TelegramNotifier{
		baseURL:  telegramAPIBase,
		token:    token,
		client:   &http.Client{Timeout: (longPollTimeoutSec + 10) * time.Second},
		logger:   logger,
		commands: make(chan Command, commandQueueDepth),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var (
	_ Notifier      = (*TelegramNotifier)(nil)
	_ CommandSource = (*TelegramNotifier)(nil)
)

// Commands returns the operator command queue.
func (n *TelegramNotifier) Commands() <-chan Command {
	return n.commands
}

type tgUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type tgUpdatesResponse struct {
	OK     bool       `json:"ok"`
	Result []tgUpdate `json:"result"`
}

// Run long-polls getUpdates until ctx is cancelled.
func (n *TelegramNotifier) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := n.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.logger.Printf("[TG] getUpdates: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			cmd, ok := ParseCommand(u.Message.Text)
			if !ok {
				continue
			}
			if cmd.Kind == CmdStart {
				n.chatID.Store(u.Message.Chat.ID)
			}
			select {
			case n.commands <- cmd:
			default:
				n.logger.Printf("[TG] command queue full, dropping %q", u.Message.Text)
			}
		}
	}
}

func (n *TelegramNotifier) getUpdates(ctx context.Context, offset int64) ([]tgUpdate, error) {
	u := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&offset=%d",
		n.baseURL, n.token, longPollTimeoutSec, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed tgUpdatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram API returned ok=false")
	}
	return parsed.Result, nil
}

// send posts one message to the bound chat. Without a bound chat the message
// falls back to the log.
func (n *TelegramNotifier) send(text string) {
	chatID := n.chatID.Load()
	if chatID == 0 {
		n.logger.Printf("[TG] %s", text)
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		n.logger.Printf("[TG] marshal message: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		n.logger.Printf("[TG] create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Printf("[TG] send: %v", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		n.logger.Printf("[TG] send: unexpected status %d", resp.StatusCode)
	}
}

func modeLabel(simulated bool) string {
	if simulated {
		return labelSimulation
	}
	return labelLive
}

// Signal reports an untraded entry signal.
func (n *TelegramNotifier) Signal(mint, info string, simulated bool) {
	n.send(fmt.Sprintf("%s Signal on %s: %s", modeLabel(simulated), mint, info))
}

// Entry reports an opened position.
func (n *TelegramNotifier) Entry(pos *domain.Position) {
	n.send(fmt.Sprintf("%s Entered %s at %.8f, size %.4f SOL",
		modeLabel(pos.Simulated), pos.Mint, pos.EntryPrice, pos.SizeBase))
}

// Exit reports a closed position.
func (n *TelegramNotifier) Exit(mint, reason string, pnlPercent float64, simulated bool) {
	n.send(fmt.Sprintf("%s Exited %s (%s) PnL %.2f%%",
		modeLabel(simulated), mint, reason, pnlPercent*100))
}

// Alert reports an urgent risk event.
func (n *TelegramNotifier) Alert(text string) {
	n.send("ALERT: " + text)
}

// Info sends a plain message.
func (n *TelegramNotifier) Info(text string) {
	n.send(text)
}

// ParseCommand maps a message text to an operator command. The argument, if
// any, is the first token after the command word.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	// Commands may arrive as /status@botname in group chats.
	word := fields[0]
	if idx := strings.IndexByte(word, '@'); idx >= 0 {
		word = word[:idx]
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch word {
	case "/start":
		return Command{Kind: CmdStart}, true
	case "/status":
		return Command{Kind: CmdStatus}, true
	case "/auto_on":
		return Command{Kind: CmdAutoOn}, true
	case "/auto_off":
		return Command{Kind: CmdAutoOff}, true
	case "/paper_on", "/sim_mode":
		return Command{Kind: CmdPaperOn}, true
	case "/paper_off", "/live_mode":
		return Command{Kind: CmdPaperOff}, true
	case "/track":
		if arg == "" {
			return Command{}, false
		}
		return Command{Kind: CmdTrack, Arg: arg}, true
	case "/close":
		if arg == "" {
			return Command{}, false
		}
		return Command{Kind: CmdClose, Arg: arg}, true
	case "/rug_risk":
		return Command{Kind: CmdRugRisk}, true
	default:
		return Command{}, false
	}
}
