// Package depthprobe evaluates whether a leg's order book can actually
// absorb the size the executor intends to buy, before an order is
// ever sent.
package depthprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/risk"
)

// Probe checks a single token's book depth against a target dollar
// size before a leg is traded.
type Probe struct {
	gateway   ports.OrderGateway
	events    ports.EventLog
	risk      *risk.Manager
	maxSpread float64
	minDepth  float64 // absolute USD floor on aggregate ask depth
}

// New constructs a Probe. maxSpread is the top-of-book spread above
// which a leg is rejected; minDepth is the minimum aggregate ask
// depth, in USD, required regardless of the size being probed. Every
// call to Check persists its domain.DepthCheck via events.
func New(gateway ports.OrderGateway, events ports.EventLog, rm *risk.Manager, maxSpread, minDepth float64) *Probe {
	return &Probe{gateway: gateway, events: events, risk: rm, maxSpread: maxSpread, minDepth: minDepth}
}

// Check fetches the book for tokenID and sweeps it for targetUSD worth
// of shares at the best ask, reporting whether the leg is tradeable.
// The resulting domain.DepthCheck is persisted via events before
// Check returns, regardless of outcome — one row per attempted leg.
func (p *Probe) Check(ctx context.Context, tokenID string, targetUSD float64) (dc domain.DepthCheck, ok bool, reason string) {
	start := time.Now()
	dc = domain.DepthCheck{TokenID: tokenID, At: start}
	defer func() {
		if p.events != nil {
			_ = p.events.LogDepthCheck(ctx, dc)
		}
	}()

	book, err := p.gateway.GetOrderBook(ctx, tokenID)
	latency := float64(time.Since(start).Milliseconds())
	p.risk.Latency(latency)

	if err != nil {
		p.risk.APIError()
		p.risk.ThinBook(true)
		return dc, false, fmt.Sprintf("order book fetch failed: %v", err)
	}

	bestAsk := book.BestAsk()
	if bestAsk <= 0 {
		p.risk.ThinBook(true)
		return dc, false, "no_asks"
	}

	dc.TopSpread = book.Spread()
	dc.AskDepthUSD = book.AskDepthUSD()
	dc.SpreadOK = dc.TopSpread <= p.maxSpread

	qty := targetUSD / bestAsk
	cost, enough := domain.SweepAsks(book.Asks, qty)
	dc.VWAPSweepCost = cost
	dc.DepthOK = enough && dc.AskDepthUSD >= p.minDepth

	p.risk.ThinBook(!dc.DepthOK)

	if !dc.SpreadOK {
		return dc, false, fmt.Sprintf("spread %.4f exceeds max %.4f", dc.TopSpread, p.maxSpread)
	}
	if !dc.DepthOK {
		return dc, false, fmt.Sprintf("ask depth $%.2f insufficient (need enough=%v, min=$%.2f)", dc.AskDepthUSD, enough, p.minDepth)
	}
	return dc, true, ""
}
