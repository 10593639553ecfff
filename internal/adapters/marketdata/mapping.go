package marketdata

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

func mapMarket(gm gammaMarket) domain.Market {
	tokens := parseStringArray(gm.ClobTokenIDs)
	prices := parseFloatArray(gm.OutcomePrices)

	m := domain.Market{
		ID:       gm.ConditionID,
		Question: gm.Question,
		Slug:     gm.Slug,
		Active:   gm.Active,
		Closed:   gm.Closed || gm.Archived,
		Resolved: gm.Resolved,
	}
	if len(tokens) > 0 {
		m.YesToken = tokens[0]
	}
	if len(tokens) > 1 {
		m.NoToken = tokens[1]
	}
	if len(prices) > 0 {
		m.YesPrice = prices[0]
	}
	if len(prices) > 1 {
		m.NoPrice = prices[1]
	}
	if v, err := gm.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}
	if gm.EndDateISO != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z", "2006-01-02"} {
			if t, err := time.Parse(layout, gm.EndDateISO); err == nil {
				m.EndDate = t.UTC()
				break
			}
		}
	}
	return m
}

func mapMarkets(raw []gammaMarket) []domain.Market {
	out := make([]domain.Market, 0, len(raw))
	for _, gm := range raw {
		out = append(out, mapMarket(gm))
	}
	return out
}

func mapEvent(ge gammaEvent) domain.MarketGroup {
	return domain.MarketGroup{
		ID:          ge.ID,
		Title:       ge.Title,
		Description: ge.Description,
		Markets:     mapMarkets(ge.Markets),
	}
}

// parseStringArray decodes Gamma's "clobTokenIds" field, which is a JSON
// array encoded as a string (e.g. `"[\"123\",\"456\"]"`).
func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// parseFloatArray decodes Gamma's "outcomePrices" field, the same
// string-encoded-JSON-array quirk as clobTokenIds but with numeric
// strings inside (e.g. `"[\"0.42\",\"0.58\"]"`).
func parseFloatArray(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil
	}
	out := make([]float64, 0, len(strs))
	for _, s := range strs {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}
