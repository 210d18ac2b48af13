package main

import (
	"fmt"

	"github.com/chidi150c/backtest-core/internal/perf"
)

// printSummary renders a Summary to stdout as a plain text table.
// External serializers (JSON, CSV, dashboards) are out of scope for the
// core itself; this is just the CLI's own reporting shell.
func printSummary(s perf.Summary) {
	fmt.Printf("total_return          %.4f\n", s.TotalReturn)
	fmt.Printf("annualized_return     %.4f\n", s.AnnualizedReturn)
	fmt.Printf("annualized_volatility %.4f\n", s.AnnualizedVolatility)
	fmt.Printf("sharpe                %.4f\n", s.Sharpe)
	fmt.Printf("sortino               %.4f\n", s.Sortino)
	fmt.Printf("calmar                %.4f\n", s.Calmar)
	fmt.Printf("max_drawdown          %.4f\n", s.MaxDrawdown)
	fmt.Printf("win_rate              %.4f\n", s.WinRate)
	fmt.Printf("profit_factor         %.4f\n", s.ProfitFactor)
	fmt.Printf("avg_trade_return      %.4f\n", s.AvgTradeReturn)
	fmt.Printf("total_trades          %d\n", s.TotalTrades)
	fmt.Printf("turnover              %.4f\n", s.Turnover)
	fmt.Printf("total_fees            %s\n", s.TotalFees)
	fmt.Printf("total_taxes           %s\n", s.TotalTaxes)
}
