package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
)

// exclusivityKeywords flags event titles/descriptions that plausibly
// describe a single-winner outcome space. This is a heuristic, not a
// guarantee — a keyword match whose prices don't sum near $1 logs a
// mis-exclusivity incident instead of being silently treated as
// non-exclusive.
var exclusivityKeywords = []string{
	"winner", "nominee", "who will", "which", "election", "primary",
	"champion", "win", "wins", "best", "award", "oscar", "grammy",
	"world cup", "super bowl", "nba", "nhl", "ufc", "formula 1",
}

// EventGroupScanner looks for event groups whose active markets sum to
// less than $1 on one side, across all mutually exclusive outcomes.
// events is optional — nil disables mis-exclusivity incident logging,
// useful in tests that don't care about it.
type EventGroupScanner struct {
	gateway ports.MarketGateway
	events  ports.EventLog
	econ    Economics
	limit   int
}

// NewEventGroupScanner constructs a scanner over the top limit event
// groups returned by the gateway. events may be nil.
func NewEventGroupScanner(gw ports.MarketGateway, events ports.EventLog, econ Economics, limit int) *EventGroupScanner {
	return &EventGroupScanner{gateway: gw, events: events, econ: econ, limit: limit}
}

func (s *EventGroupScanner) Name() domain.ScannerTag { return domain.ScannerEventGroup }

func keywordMatch(group domain.MarketGroup) bool {
	title := strings.ToLower(group.Title)
	desc := strings.ToLower(group.Description)
	for _, k := range exclusivityKeywords {
		if strings.Contains(title, k) || strings.Contains(desc, k) {
			return true
		}
	}
	return false
}

// isExclusiveEvent reports whether group should be treated as a
// mutually-exclusive outcome set: its title/description must match an
// exclusivity keyword AND its active markets' YES prices must sum
// within the 0.8-1.2 overround band. A keyword match outside that band
// is a mis-exclusivity case — the group looked like a single-winner
// event but its prices don't agree — surfaced as an incident rather
// than silently dropped.
func (s *EventGroupScanner) isExclusiveEvent(ctx context.Context, group domain.MarketGroup, active []domain.Market) bool {
	if !keywordMatch(group) {
		return false
	}

	var totalYes float64
	for _, m := range active {
		totalYes += m.YesPrice
	}
	if totalYes >= 0.8 && totalYes <= 1.2 {
		return true
	}

	if s.events != nil {
		_ = s.events.LogIncident(ctx, domain.Incident{
			Type:    domain.IncidentScanError,
			Details: fmt.Sprintf("mis-exclusivity: group %q matched keywords but YES sum %.3f is outside 0.8-1.2", group.Title, totalYes),
			At:      time.Now(),
		})
	}
	return false
}

func (s *EventGroupScanner) Scan(ctx context.Context) ([]domain.HedgeOpportunity, int, error) {
	groups, err := s.gateway.GetEvents(ctx, s.limit)
	if err != nil {
		return nil, 0, fmt.Errorf("scanner.EventGroupScanner.Scan: fetch events: %w", err)
	}

	var opps []domain.HedgeOpportunity
	marketsChecked := 0

	for _, group := range groups {
		active := group.ActiveMarkets()
		marketsChecked += len(active)

		if len(active) < 2 || !s.isExclusiveEvent(ctx, group, active) {
			continue
		}
		if group.Volume24h() < s.econ.MinEventVolume24h {
			continue
		}
		if len(active) < 3 {
			continue
		}

		if opp, ok := s.sideArb(group, active, domain.SideYes); ok {
			opps = append(opps, opp)
		}
		if opp, ok := s.sideArb(group, active, domain.SideNo); ok {
			opps = append(opps, opp)
		}
	}

	return opps, marketsChecked, nil
}

func (s *EventGroupScanner) sideArb(group domain.MarketGroup, active []domain.Market, side domain.Side) (domain.HedgeOpportunity, bool) {
	var total float64
	legs := make([]domain.Leg, 0, len(active))
	for _, m := range active {
		price, token := m.YesPrice, m.YesToken
		if side == domain.SideNo {
			price, token = m.NoPrice, m.NoToken
		}
		total += price
		legs = append(legs, domain.Leg{
			MarketID: m.ID, Question: m.Question, Side: side,
			Price: price, TokenID: token, Volume: m.Volume24h,
		})
	}

	if total <= 0 || total >= 1.0-s.econ.MinProfitPerDollar-s.econ.PolyFee*2 {
		return domain.HedgeOpportunity{}, false
	}
	opp := domain.HedgeOpportunity{
		Name:      fmt.Sprintf("%s %s", sideLabel(side), domain.TruncateQuestion(group.Title, group.ID, 40)),
		Scanner:   domain.ScannerEventGroup,
		HedgeType: domain.HedgeGroupArb,
		Legs:      legs,
		TotalCost: total,
		MinPayout: 1.0,
		MaxPayout: 1.0,
		Confidence: domain.ConfidenceGuaranteed,
		ScannedAt: time.Now(),
	}
	if opp.NetProfitPerDollar(s.econ.PolyFee) <= s.econ.MinProfitPerDollar {
		return domain.HedgeOpportunity{}, false
	}
	return opp, true
}

func sideLabel(side domain.Side) string {
	if side == domain.SideNo {
		return "📦🔄"
	}
	return "📦"
}
