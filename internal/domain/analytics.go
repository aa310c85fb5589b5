package domain

// TradingAnalytics is a derived read model over closed positions. It is
// recomputed on demand and always rebuildable from history.
type TradingAnalytics struct {
	TotalTrades int     `json:"total_trades"`
	WinCount    int     `json:"win_count"`
	LossCount   int     `json:"loss_count"`
	WinRate     float64 `json:"win_rate"`
	TotalPnL    float64 `json:"total_pnl"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`
}

// ComputeAnalytics builds the aggregate counters from closed positions.
func ComputeAnalytics(closed []*Position) TradingAnalytics {
	var a TradingAnalytics
	for _, p := range closed {
		if p.RealizedPnL == nil {
			continue
		}
		pnl := *p.RealizedPnL
		a.TotalTrades++
		a.TotalPnL += pnl
		if pnl >= 0 {
			a.WinCount++
			if pnl > a.LargestWin {
				a.LargestWin = pnl
			}
		} else {
			a.LossCount++
			if pnl < a.LargestLoss {
				a.LargestLoss = pnl
			}
		}
	}
	if a.TotalTrades > 0 {
		a.WinRate = float64(a.WinCount) / float64(a.TotalTrades) * 100
	}
	return a
}
