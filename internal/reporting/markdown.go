package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Session Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Simulated / Live | %d / %d |\n", r.SimulatedTrades, r.LiveTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", r.WinRate*100))
	sb.WriteString(fmt.Sprintf("| Mean PnL | %.4f%% |\n", r.PnlMean*100))
	sb.WriteString(fmt.Sprintf("| Median PnL | %.4f%% |\n", r.PnlMedian*100))
	sb.WriteString(fmt.Sprintf("| Best / Worst | %.4f%% / %.4f%% |\n", r.PnlBest*100, r.PnlWorst*100))
	sb.WriteString(fmt.Sprintf("| Total PnL (SOL) | %.6f |\n", r.TotalPnlBase))
	sb.WriteString(fmt.Sprintf("| First Exit (ms) | %d |\n", r.FirstExitMs))
	sb.WriteString(fmt.Sprintf("| Last Exit (ms) | %d |\n", r.LastExitMs))
	sb.WriteString("\n")

	if len(r.ByExitReason) > 0 {
		sb.WriteString("## By Exit Reason\n\n")
		sb.WriteString("| Reason | Trades | Win Rate | Mean PnL | Total PnL (SOL) | Mean p_rug at Exit |\n")
		sb.WriteString("|--------|--------|----------|----------|-----------------|--------------------|\n")
		for _, row := range r.ByExitReason {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f%% | %.4f%% | %.6f | %.4f |\n",
				row.Reason, row.Trades, row.WinRate*100, row.PnlMean*100, row.PnlTotal, row.MeanPRug))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
