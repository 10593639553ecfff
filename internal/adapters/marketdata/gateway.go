package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

const (
	eventsPath  = "/events"
	marketsPath = "/markets"
)

// Gateway implements ports.MarketGateway against Gamma.
type Gateway struct {
	client *Client
}

// New wraps an existing Gamma Client as a ports.MarketGateway.
func New(client *Client) *Gateway {
	return &Gateway{client: client}
}

// GetEvents fetches up to limit event groups ordered by 24h volume.
func (g *Gateway) GetEvents(ctx context.Context, limit int) ([]domain.MarketGroup, error) {
	url := fmt.Sprintf("%s%s?closed=false&limit=%d&order=volume24hr&ascending=false", g.client.base, eventsPath, limit)

	var resp []gammaEvent
	if err := g.client.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("marketdata.GetEvents: %w", err)
	}

	groups := make([]domain.MarketGroup, 0, len(resp))
	for _, ge := range resp {
		groups = append(groups, mapEvent(ge))
	}
	return groups, nil
}

// GetTrendingMarkets fetches up to limit currently active markets
// ordered by 24h volume.
func (g *Gateway) GetTrendingMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	url := fmt.Sprintf("%s%s?closed=false&limit=%d&order=volume24hr&ascending=false", g.client.base, marketsPath, limit)

	var resp []gammaMarket
	if err := g.client.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("marketdata.GetTrendingMarkets: %w", err)
	}
	return mapMarkets(resp), nil
}

// SearchMarkets fetches the current trending set and filters it
// client-side by query, matching question or slug substring. Gamma has
// no full-text search endpoint for markets, so this mirrors the
// teacher lineage's own client-side filter approach.
func (g *Gateway) SearchMarkets(ctx context.Context, query string, limit int) ([]domain.Market, error) {
	all, err := g.GetTrendingMarkets(ctx, 500)
	if err != nil {
		return nil, fmt.Errorf("marketdata.SearchMarkets: %w", err)
	}

	q := strings.ToLower(query)
	out := make([]domain.Market, 0, limit)
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Question), q) || strings.Contains(strings.ToLower(m.Slug), q) {
			out = append(out, m)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
