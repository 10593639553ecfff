package ports

import (
	"context"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

// MarketGateway is the venue's market-data HTTP surface.
type MarketGateway interface {
	// GetEvents returns up to limit current event groups ordered by
	// recency/volume.
	GetEvents(ctx context.Context, limit int) ([]domain.MarketGroup, error)

	// GetTrendingMarkets returns up to limit currently trending markets.
	GetTrendingMarkets(ctx context.Context, limit int) ([]domain.Market, error)

	// SearchMarkets returns up to limit markets matching query.
	SearchMarkets(ctx context.Context, query string, limit int) ([]domain.Market, error)
}
