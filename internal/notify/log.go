package notify

import (
	"log"

	"rug-surfer/internal/domain"
)

// LogNotifier writes events to the process log. It is the fallback when no
// Telegram token is configured.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Signal(mint, info string, simulated bool) {
	n.logger.Printf("[NOTIFY] %s signal on %s: %s", modeLabel(simulated), mint, info)
}

func (n *LogNotifier) Entry(pos *domain.Position) {
	n.logger.Printf("[NOTIFY] %s entered %s at %.8f, size %.4f SOL",
		modeLabel(pos.Simulated), pos.Mint, pos.EntryPrice, pos.SizeBase)
}

func (n *LogNotifier) Exit(mint, reason string, pnlPercent float64, simulated bool) {
	n.logger.Printf("[NOTIFY] %s exited %s (%s) PnL %.2f%%",
		modeLabel(simulated), mint, reason, pnlPercent*100)
}

func (n *LogNotifier) Alert(text string) {
	n.logger.Printf("[NOTIFY] ALERT: %s", text)
}

func (n *LogNotifier) Info(text string) {
	n.logger.Printf("[NOTIFY] %s", text)
}
