// Package execution turns a discovered hedge opportunity into signed
// orders on the venue, respecting the risk manager's gates throughout.
package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/0xhedge/hedgeengine/internal/depthprobe"
	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/risk"
)

// Config holds the economics the Executor sizes trades with.
type Config struct {
	AutoTrade   bool
	TradeBudget float64
	Bankroll    float64
}

// ExecReport is the outcome of one Execute call.
type ExecReport struct {
	Executed   bool
	Partial    bool
	Orders     []domain.Order
	Errors     []string
	SpentUSD   float64
	NotifyKill bool // true the first time this trip blocked execution
}

// Executor sizes, depth-checks, places, and records the legs of a
// hedge opportunity.
type Executor struct {
	gateway ports.OrderGateway
	events  ports.EventLog
	probe   *depthprobe.Probe
	risk    *risk.Manager
	cfg     Config

	mu           sync.Mutex
	killNotified bool
}

// New constructs an Executor.
func New(gateway ports.OrderGateway, events ports.EventLog, probe *depthprobe.Probe, rm *risk.Manager, cfg Config) *Executor {
	return &Executor{gateway: gateway, events: events, probe: probe, risk: rm, cfg: cfg}
}

// Execute attempts to enter every leg of opp, subject to the risk
// manager's gates. It never rolls back or flattens a partial fill.
func (e *Executor) Execute(ctx context.Context, opp domain.HedgeOpportunity) ExecReport {
	if !e.cfg.AutoTrade {
		return ExecReport{Errors: []string{"auto-trade disabled"}}
	}

	if e.risk.ShouldKill() {
		report := ExecReport{Errors: []string{fmt.Sprintf("kill switch active: %s", e.risk.KillReason())}}
		e.mu.Lock()
		firstNotify := !e.killNotified
		e.killNotified = true
		e.mu.Unlock()
		report.NotifyKill = firstNotify
		_ = e.events.LogIncident(ctx, domain.Incident{
			Type: domain.IncidentKillSwitch, Details: opp.Name,
			KillReason: e.risk.KillReason(), At: time.Now(),
		})
		return report
	}

	if !e.risk.CanTakeTrade(e.cfg.Bankroll, e.cfg.TradeBudget) {
		return ExecReport{Errors: []string{"exposure cap reached"}}
	}

	if opp.TotalCost <= 0 {
		return ExecReport{Errors: []string{"opportunity has non-positive total cost"}}
	}

	scale := e.cfg.TradeBudget / opp.TotalCost

	var orders []domain.Order
	var errs []string
	var spent float64

	for _, leg := range opp.Legs {
		legAmountUSD := leg.Price * scale

		if leg.TokenID == "" {
			errs = append(errs, fmt.Sprintf("%s: empty token id", leg.MarketID))
			continue
		}

		legSizeShares := legAmountUSD / leg.Price

		if _, ok, reason := e.probe.Check(ctx, leg.TokenID, legAmountUSD); !ok {
			errs = append(errs, fmt.Sprintf("%s: depth check failed: %s", leg.MarketID, reason))
			continue
		}

		start := time.Now()
		venueID, err := e.gateway.PlaceLimitBuyGTC(ctx, leg.TokenID, leg.Price, legSizeShares)
		latency := float64(time.Since(start).Milliseconds())
		e.risk.Latency(latency)

		order := domain.Order{
			OpportunityName: opp.Name, MarketID: leg.MarketID, TokenID: leg.TokenID,
			Side: leg.Side, LimitPrice: leg.Price, SizeShares: legSizeShares,
			SubmittedAt: start, VenueOrderID: venueID, LatencyMS: latency,
		}
		if err != nil {
			e.risk.APIError()
			order.Status = domain.OrderError
			order.Error = err.Error()
			errs = append(errs, fmt.Sprintf("%s: order rejected: %v", leg.MarketID, err))
		} else {
			e.risk.Trade()
			order.Status = domain.OrderSubmitted
			spent += legAmountUSD
		}

		orders = append(orders, order)
		_ = e.events.LogOrder(ctx, order)
	}

	filled := 0
	for _, o := range orders {
		if o.Status == domain.OrderSubmitted {
			filled++
		}
	}

	report := ExecReport{Orders: orders, Errors: errs, SpentUSD: spent}

	switch {
	case filled == len(opp.Legs) && filled > 0:
		report.Executed = true
		e.risk.HedgedComplete()
		e.risk.AddExposure(spent)
		_ = e.events.LogPnL(ctx, e.cfg.TradeBudget, e.risk.CurrentExposure(), 0, "hedge fully entered")
	case filled > 0:
		report.Partial = true
		e.risk.PartialFill()
		e.risk.AddExposure(spent)
		_ = e.events.LogIncident(ctx, domain.Incident{
			Type: domain.IncidentPartialFill,
			Details: fmt.Sprintf("%s: %d/%d legs filled", opp.Name, filled, len(opp.Legs)),
			At:      time.Now(),
		})
	default:
		_ = e.events.LogIncident(ctx, domain.Incident{
			Type: domain.IncidentOrderError, Details: opp.Name, At: time.Now(),
		})
	}

	return report
}
