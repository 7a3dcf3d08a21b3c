package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-exit-reason breakdown as a CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("exit_reason,trades,win_rate,pnl_mean,pnl_total_sol,mean_p_rug_exit\n")
	for _, row := range r.ByExitReason {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%.6f\n",
			row.Reason, row.Trades, row.WinRate, row.PnlMean, row.PnlTotal, row.MeanPRug))
	}

	return sb.String()
}
