// Package scanner implements the three opportunity-discovery strategies:
// event-group arbitrage, threshold mispricing, and known hedge patterns.
package scanner

import (
	"context"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

// Economics holds the profitability thresholds shared by every
// scanner.
type Economics struct {
	MinProfitPerDollar float64
	PolyFee            float64
	MinEventVolume24h  float64
}

// NetProfit applies the flat two-sided fee estimate to a raw
// guaranteed-profit-per-dollar figure.
func (e Economics) NetProfit(grossPerDollar float64) float64 {
	return grossPerDollar - e.PolyFee*2
}

// Scanner discovers hedge opportunities from a single strategy and
// reports how many markets or patterns it examined.
type Scanner interface {
	Name() domain.ScannerTag
	Scan(ctx context.Context) ([]domain.HedgeOpportunity, int, error)
}
