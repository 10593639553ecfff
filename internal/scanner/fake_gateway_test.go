package scanner

import (
	"context"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

type fakeGateway struct {
	events       []domain.MarketGroup
	trending     []domain.Market
	searchByTerm map[string][]domain.Market
	err          error
}

func (f *fakeGateway) GetEvents(ctx context.Context, limit int) ([]domain.MarketGroup, error) {
	return f.events, f.err
}

func (f *fakeGateway) GetTrendingMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	return f.trending, f.err
}

func (f *fakeGateway) SearchMarkets(ctx context.Context, query string, limit int) ([]domain.Market, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.searchByTerm[query], nil
}

func testEcon() Economics {
	return Economics{MinProfitPerDollar: 0.003, PolyFee: 0.02, MinEventVolume24h: 5000}
}
