package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
)

// PatternScanner monitors a fixed and an operator-extensible table of
// pre-researched market relationships for mispricing.
type PatternScanner struct {
	gateway  ports.MarketGateway
	econ     Economics
	store    *DiscoveredPatternStore
	patterns []Pattern
}

// NewPatternScanner loads the known-pattern table plus any previously
// discovered patterns from store.
func NewPatternScanner(gw ports.MarketGateway, econ Economics, store *DiscoveredPatternStore) (*PatternScanner, error) {
	patterns := append([]Pattern(nil), knownPatterns...)
	discovered, err := store.Load()
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, discovered...)
	return &PatternScanner{gateway: gw, econ: econ, store: store, patterns: patterns}, nil
}

func (s *PatternScanner) Name() domain.ScannerTag { return domain.ScannerPattern }

func (s *PatternScanner) findMarket(ctx context.Context, search string) (domain.Market, bool) {
	markets, err := s.gateway.SearchMarkets(ctx, search, 5)
	if err != nil || len(markets) == 0 {
		return domain.Market{}, false
	}
	return markets[0], true
}

func (s *PatternScanner) Scan(ctx context.Context) ([]domain.HedgeOpportunity, int, error) {
	var opps []domain.HedgeOpportunity

	for _, pat := range s.patterns {
		a, okA := s.findMarket(ctx, pat.SearchA)
		b, okB := s.findMarket(ctx, pat.SearchB)
		if !okA || !okB || a.Closed || b.Closed {
			continue
		}

		if opp, ok := s.evaluate(pat, a, b); ok {
			opps = append(opps, opp)
		}
	}

	return opps, len(s.patterns), nil
}

func (s *PatternScanner) evaluate(pat Pattern, a, b domain.Market) (domain.HedgeOpportunity, bool) {
	var cost float64
	var legs []domain.Leg
	var maxPayout float64
	var label string

	switch pat.HedgeType {
	case domain.HedgeComplementary:
		cost = a.YesPrice + b.YesPrice
		legs = []domain.Leg{
			{MarketID: a.ID, Question: a.Question, Side: domain.SideYes, Price: a.YesPrice, TokenID: a.YesToken, Volume: a.Volume24h},
			{MarketID: b.ID, Question: b.Question, Side: domain.SideYes, Price: b.YesPrice, TokenID: b.YesToken, Volume: b.Volume24h},
		}
		maxPayout = 1.0
		label = "🔗"
	case domain.HedgeExclusive:
		cost = a.NoPrice + b.NoPrice
		legs = []domain.Leg{
			{MarketID: a.ID, Question: a.Question, Side: domain.SideNo, Price: a.NoPrice, TokenID: a.NoToken, Volume: a.Volume24h},
			{MarketID: b.ID, Question: b.Question, Side: domain.SideNo, Price: b.NoPrice, TokenID: b.NoToken, Volume: b.Volume24h},
		}
		maxPayout = 2.0
		label = "❌"
	case domain.HedgeSuperset:
		cost = b.YesPrice + a.NoPrice
		legs = []domain.Leg{
			{MarketID: b.ID, Question: b.Question, Side: domain.SideYes, Price: b.YesPrice, TokenID: b.YesToken, Volume: b.Volume24h},
			{MarketID: a.ID, Question: a.Question, Side: domain.SideNo, Price: a.NoPrice, TokenID: a.NoToken, Volume: a.Volume24h},
		}
		maxPayout = 2.0
		label = "⏰"
	default:
		return domain.HedgeOpportunity{}, false
	}

	if cost <= 0 || cost >= 1.0 {
		return domain.HedgeOpportunity{}, false
	}

	opp := domain.HedgeOpportunity{
		Name:       fmt.Sprintf("%s %s", label, pat.Name),
		Scanner:    domain.ScannerPattern,
		HedgeType:  pat.HedgeType,
		Legs:       legs,
		TotalCost:  cost,
		MinPayout:  1.0,
		MaxPayout:  maxPayout,
		Confidence: domain.ConfidenceGuaranteed,
		ScannedAt:  time.Now(),
	}
	if opp.NetProfitPerDollar(s.econ.PolyFee) <= s.econ.MinProfitPerDollar {
		return domain.HedgeOpportunity{}, false
	}
	return opp, true
}
