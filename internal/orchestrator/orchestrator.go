// Package orchestrator drives the main scan-execute-alert loop: one
// tick runs every scanner in a fixed order, logs and ranks whatever
// they found, executes and alerts on it, then sleeps.
package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/execution"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/reporter"
	"github.com/0xhedge/hedgeengine/internal/risk"
	"github.com/0xhedge/hedgeengine/internal/scanner"
)

// Config holds the orchestrator's scheduling and re-alert knobs.
type Config struct {
	ScanInterval     time.Duration
	SummaryInterval  time.Duration
	RealertThreshold float64
	AutoTrade        bool
	FeeRate          float64
}

// Orchestrator owns the scanners, the alert-dedup map, and the main
// loop. It is the sole writer of the alert-dedup map.
type Orchestrator struct {
	scanners []scanner.Scanner
	events   ports.EventLog
	executor *execution.Executor
	reporter *reporter.Reporter
	risk     *risk.Manager
	wallet   ports.OrderGateway
	cfg      Config
	log      *slog.Logger

	alerted map[string]float64
	active  map[string]domain.HedgeOpportunity

	startedAt      time.Time
	scanCount      int
	oppCount       int
	executionCount int
	lastSummaryAt  time.Time
}

// New constructs an Orchestrator. Scanners run in the order given —
// callers should pass event-group, threshold, pattern for the
// documented deterministic ordering.
func New(scanners []scanner.Scanner, events ports.EventLog, executor *execution.Executor, rep *reporter.Reporter, rm *risk.Manager, wallet ports.OrderGateway, cfg Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		scanners: scanners, events: events, executor: executor, reporter: rep,
		risk: rm, wallet: wallet, cfg: cfg, log: log,
		alerted: make(map[string]float64),
		active:  make(map[string]domain.HedgeOpportunity),
	}
}

// Run drives the main loop until ctx is cancelled. The current tick
// always completes before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.startedAt = time.Now()
	o.lastSummaryAt = o.startedAt

	for {
		if err := o.tick(ctx); err != nil {
			o.log.Error("tick failed", "error", err)
		}

		if time.Since(o.lastSummaryAt) >= o.cfg.SummaryInterval {
			if err := o.emitSummary(ctx); err != nil {
				o.log.Error("summary failed", "error", err)
			}
			o.lastSummaryAt = time.Now()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(o.cfg.ScanInterval):
		}
	}
}

// Tick runs exactly one scan-execute-alert cycle and returns, without
// sleeping or scheduling a summary. Used by -once runs.
func (o *Orchestrator) Tick(ctx context.Context) error {
	return o.tick(ctx)
}

func (o *Orchestrator) tick(ctx context.Context) error {
	o.scanCount++

	var allOpps []domain.HedgeOpportunity
	seenKeys := make(map[string]bool)

	for _, sc := range o.scanners {
		t0 := time.Now()
		opps, checked, err := sc.Scan(ctx)
		latency := float64(time.Since(t0).Milliseconds())

		errMsg := ""
		if err != nil {
			errMsg = err.Error()
			o.risk.APIError()
		}
		_ = o.events.LogScan(ctx, o.scanCount, sc.Name(), checked, len(opps), latency, errMsg)

		allOpps = append(allOpps, opps...)
		for _, op := range opps {
			seenKeys[op.AlertKey()] = true
			o.active[op.AlertKey()] = op
		}
	}

	for key := range o.active {
		if !seenKeys[key] {
			delete(o.active, key)
		}
	}

	sortOpportunities(allOpps, o.cfg.FeeRate)

	for _, opp := range allOpps {
		o.oppCount++
		_ = o.events.LogOpportunity(ctx, opp, false)

		prevNet, seen := o.alerted[opp.AlertKey()]
		net := opp.NetProfitPerDollar(o.cfg.FeeRate)
		alertNow := !seen
		if seen {
			denom := prevNet
			if denom < 0 {
				denom = -denom
			}
			if denom < 0.001 {
				denom = 0.001
			}
			diff := net - prevNet
			if diff < 0 {
				diff = -diff
			}
			alertNow = diff/denom > o.cfg.RealertThreshold
		}

		var report execution.ExecReport
		executed := false
		if o.cfg.AutoTrade && !o.risk.Killed() {
			report = o.executor.Execute(ctx, opp)
			executed = report.Executed
			if executed || report.Partial {
				o.executionCount++
			}
			if report.NotifyKill {
				_ = o.reporter.Trade(ctx, opp, report)
			}
		}
		if executed {
			_ = o.events.LogOpportunity(ctx, opp, true)
		}

		if alertNow {
			if executed || report.Partial || len(report.Errors) > 0 {
				_ = o.reporter.Trade(ctx, opp, report)
			} else {
				_ = o.reporter.ScanResult(ctx, []domain.HedgeOpportunity{opp})
			}
			o.alerted[opp.AlertKey()] = net
		}
	}

	for key := range o.alerted {
		if !seenKeys[key] {
			delete(o.alerted, key)
		}
	}

	return nil
}

func (o *Orchestrator) emitSummary(ctx context.Context) error {
	balance, err := o.wallet.Balance(ctx)
	if err != nil {
		o.log.Warn("wallet balance query failed", "error", err)
	}

	return o.reporter.IntervalSummary(ctx, reporter.SummaryInput{
		Uptime:           time.Since(o.startedAt),
		ScanCount:        o.scanCount,
		OpportunityCount: o.oppCount,
		ExecutionCount:   o.executionCount,
		ActiveAlerts:     len(o.alerted),
		RiskStatus:       o.risk.StatusText(),
		WalletBalance:    balance,
		TopHedges:        o.topHedges(5),
	})
}

// topHedges returns the n currently active opportunities with the
// highest net profit per dollar, descending.
func (o *Orchestrator) topHedges(n int) []domain.HedgeOpportunity {
	opps := make([]domain.HedgeOpportunity, 0, len(o.active))
	for _, opp := range o.active {
		opps = append(opps, opp)
	}
	sortOpportunities(opps, o.cfg.FeeRate)
	if len(opps) > n {
		opps = opps[:n]
	}
	return opps
}

// sortOpportunities orders opportunities by descending net profit per
// dollar, breaking ties by alert key for deterministic output.
func sortOpportunities(opps []domain.HedgeOpportunity, feeRate float64) {
	sort.SliceStable(opps, func(i, j int) bool {
		ni, nj := opps[i].NetProfitPerDollar(feeRate), opps[j].NetProfitPerDollar(feeRate)
		if ni != nj {
			return ni > nj
		}
		return opps[i].AlertKey() < opps[j].AlertKey()
	})
}
