package marketdata

import "encoding/json"

// gammaMarket is the raw Gamma /markets (and nested event-market) shape.
// clobTokenIds and outcomePrices arrive as JSON-encoded string arrays
// inside a JSON string field — Gamma's own dynamic-encoding quirk.
type gammaMarket struct {
	ConditionID   string      `json:"conditionId"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	EndDateISO    string      `json:"endDate"`
	Volume24h     json.Number `json:"volume24hr"`
	ClobTokenIDs  string      `json:"clobTokenIds"`
	OutcomePrices string      `json:"outcomePrices"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
	Archived      bool        `json:"archived"`
	Resolved      bool        `json:"resolved"`
}

type gammaEvent struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Markets     []gammaMarket `json:"markets"`
}
