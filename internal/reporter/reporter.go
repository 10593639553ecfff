// Package reporter renders engine events into the four human-readable
// message kinds the operator actually reads, and fans them out to
// every configured notification sink.
package reporter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/execution"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/risk"
	"github.com/olekukonko/tablewriter"
)

const maxMessageBytes = 4096

// Reporter fans every rendered message out to every configured sink.
type Reporter struct {
	feeRate float64
	sinks   []ports.NotifySink
}

// New constructs a Reporter over the given sinks. feeRate is the
// per-side fee estimate used to render net profit figures. A Reporter
// with no sinks renders messages but delivers nothing — useful in
// tests.
func New(feeRate float64, sinks ...ports.NotifySink) *Reporter {
	return &Reporter{feeRate: feeRate, sinks: sinks}
}

func (r *Reporter) send(ctx context.Context, text string) error {
	text = truncateMessage(text, maxMessageBytes)
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.Send(ctx, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Startup announces the scanners in play, the configured economics,
// and the kill-switch limits.
func (r *Reporter) Startup(ctx context.Context, scannerNames []string, econ struct {
	MinProfitPerDollar, PolyFee, MinEventVolume24h float64
}, autoTrade bool, limits risk.Limits) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚀 hedge engine starting\n")
	fmt.Fprintf(&sb, "scanners: %s\n", strings.Join(scannerNames, ", "))
	fmt.Fprintf(&sb, "min profit/$: %.4f | fee: %.3f | min event vol: $%.0f\n",
		econ.MinProfitPerDollar, econ.PolyFee, econ.MinEventVolume24h)
	fmt.Fprintf(&sb, "auto-trade: %v\n", autoTrade)
	fmt.Fprintf(&sb, "kill limits: partial-streak=%d partial-day=%d api-errors-10m=%d latency-ms=%.0f thin-book=%d trades/h=%d exposure-pct=%.2f\n",
		limits.PartialFillStreak, limits.PartialFillDay, limits.APIErrors10m,
		limits.LatencyMS, limits.ThinBookStreak, limits.MaxTradesPerHour, limits.MaxOpenExposurePct)
	return r.send(ctx, sb.String())
}

// ScanResult lists every opportunity discovered this tick, skipping
// the message entirely when none were found.
func (r *Reporter) ScanResult(ctx context.Context, opps []domain.HedgeOpportunity) error {
	if len(opps) == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 %d opportunit%s found\n", len(opps), plural(len(opps)))
	for _, o := range opps {
		fmt.Fprintf(&sb, "\n%s [%s] cost=$%.4f net/$=%.4f\n", o.Name, o.Confidence, o.TotalCost, o.NetProfitPerDollar(r.feeRate))
		for _, leg := range o.Legs {
			fmt.Fprintf(&sb, "  → %s %s @ $%.4f — %s\n", leg.Side, leg.MarketID, leg.Price, domain.TruncateQuestion(leg.Question, leg.MarketID, 60))
		}
	}
	return r.send(ctx, sb.String())
}

// Trade reports the outcome of one Execute call.
func (r *Reporter) Trade(ctx context.Context, opp domain.HedgeOpportunity, report execution.ExecReport) error {
	var sb strings.Builder
	status := "FAILED"
	if report.Executed {
		status = "EXECUTED"
	} else if report.Partial {
		status = "PARTIAL"
	}
	fmt.Fprintf(&sb, "💰 trade %s — %s\n", status, opp.Name)
	for _, o := range report.Orders {
		fmt.Fprintf(&sb, "  %s %s limit=$%.4f size=%.2f status=%s order_id=%s\n",
			o.Side, o.MarketID, o.LimitPrice, o.SizeShares, o.Status, o.VenueOrderID)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(&sb, "  ! %s\n", e)
	}
	return r.send(ctx, sb.String())
}

// SummaryInput bundles everything an interval summary reports.
type SummaryInput struct {
	Uptime           time.Duration
	ScanCount        int
	OpportunityCount int
	ExecutionCount   int
	ActiveAlerts     int
	RiskStatus       string
	WalletBalance    float64
	TopHedges        []domain.HedgeOpportunity // already sorted, caller truncates to top 5
}

// IntervalSummary renders the periodic status digest, including a
// table of the top active hedges by profit.
func (r *Reporter) IntervalSummary(ctx context.Context, in SummaryInput) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 interval summary — uptime %s\n", in.Uptime.Round(time.Second))
	fmt.Fprintf(&sb, "scans: %d | opportunities: %d | executions: %d | active alerts: %d\n",
		in.ScanCount, in.OpportunityCount, in.ExecutionCount, in.ActiveAlerts)
	fmt.Fprintf(&sb, "wallet balance: $%.2f\n", in.WalletBalance)
	fmt.Fprintf(&sb, "%s\n", in.RiskStatus)

	top := in.TopHedges
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].NetProfitPerDollar(r.feeRate) > top[j].NetProfitPerDollar(r.feeRate)
	})
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) > 0 {
		tbl := tablewriter.NewWriter(&sb)
		tbl.Header("Name", "Scanner", "Cost", "Net/$", "Confidence")
		for _, o := range top {
			tbl.Append(
				domain.TruncateQuestion(o.Name, "", 30),
				string(o.Scanner),
				fmt.Sprintf("$%.4f", o.TotalCost),
				fmt.Sprintf("%.4f", o.NetProfitPerDollar(r.feeRate)),
				string(o.Confidence),
			)
		}
		tbl.Render()
	}

	return r.send(ctx, sb.String())
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// truncateMessage trims text to at most maxBytes, truncation marker
// included, cutting at the last newline boundary before the limit
// rather than mid-token.
func truncateMessage(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	const marker = "\n…(truncated)"
	cut := text[:maxBytes-len(marker)]
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut + marker
}
