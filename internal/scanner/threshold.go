package scanner

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
)

var (
	thresholdCommaRe = regexp.MustCompile(`\$?([0-9]{1,3}(?:,[0-9]{3})+)(?:\s*(k|m))?`)
	thresholdPlainRe = regexp.MustCompile(`\$?([0-9]+(?:\.[0-9]+)?)(?:\s*(k|m)\b)?`)
)

// parseThreshold extracts a dollar/price level from a market question,
// requiring the asset name to appear somewhere in the text.
func parseThreshold(text, asset string) (float64, bool) {
	t := strings.ToLower(text)
	if !strings.Contains(t, strings.ToLower(asset)) {
		return 0, false
	}
	for _, re := range []*regexp.Regexp{thresholdCommaRe, thresholdPlainRe} {
		for _, m := range re.FindAllStringSubmatch(t, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			suffix := strings.TrimSpace(m[2])
			switch suffix {
			case "k":
				val *= 1000
			case "m":
				val *= 1000000
			}
			if val >= 1 {
				return val, true
			}
		}
	}
	return 0, false
}

type thresholdLevel struct {
	threshold float64
	market    domain.Market
}

// ThresholdScanner pairs threshold markets on the same asset, buying
// NO on the higher level and YES on the lower one when mispriced.
type ThresholdScanner struct {
	gateway ports.MarketGateway
	econ    Economics
}

// NewThresholdScanner constructs a scanner over the fixed set of
// tracked assets.
func NewThresholdScanner(gw ports.MarketGateway, econ Economics) *ThresholdScanner {
	return &ThresholdScanner{gateway: gw, econ: econ}
}

func (s *ThresholdScanner) Name() domain.ScannerTag { return domain.ScannerThreshold }

func (s *ThresholdScanner) fetchAssetLevels(ctx context.Context, asset string, cfg assetConfig) []thresholdLevel {
	found := make(map[float64]domain.Market)

	for _, term := range cfg.searchTerms {
		markets, err := s.gateway.SearchMarkets(ctx, term, 50)
		if err != nil {
			continue
		}
		for _, m := range markets {
			if m.Closed || m.Resolved {
				continue
			}
			th, ok := parseThreshold(m.Question, asset)
			if !ok {
				continue
			}
			if existing, has := found[th]; !has || m.Volume24h > existing.Volume24h {
				found[th] = m
			}
		}
	}

	if len(found) < 2 {
		trending, err := s.gateway.GetTrendingMarkets(ctx, 200)
		if err == nil {
			for _, m := range trending {
				if m.Closed || m.Resolved {
					continue
				}
				th, ok := parseThreshold(m.Question, asset)
				if !ok {
					continue
				}
				if existing, has := found[th]; !has || m.Volume24h > existing.Volume24h {
					found[th] = m
				}
			}
		}
	}

	if len(cfg.levels) > 0 {
		filtered := make(map[float64]domain.Market)
		for th, m := range found {
			for _, lvl := range cfg.levels {
				denom := lvl
				if denom < 1 {
					denom = 1
				}
				if absFloat(th-lvl)/denom < 0.05 {
					if existing, has := filtered[th]; !has || m.Volume24h > existing.Volume24h {
						filtered[th] = m
					}
					break
				}
			}
		}
		if len(filtered) > 0 {
			found = filtered
		}
	}

	result := make([]thresholdLevel, 0, len(found))
	for th, m := range found {
		result = append(result, thresholdLevel{threshold: th, market: m})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].threshold < result[j].threshold })
	return result
}

func (s *ThresholdScanner) Scan(ctx context.Context) ([]domain.HedgeOpportunity, int, error) {
	var opps []domain.HedgeOpportunity
	totalMarkets := 0

	assets := make([]string, 0, len(thresholdAssets))
	for asset := range thresholdAssets {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for _, asset := range assets {
		cfg := thresholdAssets[asset]
		pairs := s.fetchAssetLevels(ctx, asset, cfg)
		totalMarkets += len(pairs)
		if len(pairs) < 2 {
			continue
		}

		for i := 0; i < len(pairs); i++ {
			for j := i + 1; j < len(pairs); j++ {
				low, high := pairs[i], pairs[j]
				noHigh := high.market.NoPrice
				yesLow := low.market.YesPrice
				cost := noHigh + yesLow
				if cost <= 0 || cost >= 1.0 {
					continue
				}

				opp := domain.HedgeOpportunity{
					Name:      fmt.Sprintf("📊 %s $%.0f vs $%.0f", asset, low.threshold, high.threshold),
					Scanner:   domain.ScannerThreshold,
					HedgeType: domain.HedgeThreshold,
					Legs: []domain.Leg{
						{MarketID: high.market.ID, Question: high.market.Question, Side: domain.SideNo, Price: noHigh, TokenID: high.market.NoToken, Volume: high.market.Volume24h},
						{MarketID: low.market.ID, Question: low.market.Question, Side: domain.SideYes, Price: yesLow, TokenID: low.market.YesToken, Volume: low.market.Volume24h},
					},
					TotalCost:  cost,
					MinPayout:  1.0,
					MaxPayout:  2.0,
					Confidence: domain.ConfidenceGuaranteed,
					ScannedAt:  time.Now(),
				}
				if opp.NetProfitPerDollar(s.econ.PolyFee) > s.econ.MinProfitPerDollar {
					opps = append(opps, opp)
				}
			}
		}
	}

	return opps, totalMarkets, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
