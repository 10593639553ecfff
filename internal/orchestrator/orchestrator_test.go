package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/0xhedge/hedgeengine/internal/depthprobe"
	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/execution"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/reporter"
	"github.com/0xhedge/hedgeengine/internal/risk"
	"github.com/0xhedge/hedgeengine/internal/scanner"
)

type fakeScanner struct {
	tag  domain.ScannerTag
	opps []domain.HedgeOpportunity
	err  error
}

func (f *fakeScanner) Name() domain.ScannerTag { return f.tag }
func (f *fakeScanner) Scan(ctx context.Context) ([]domain.HedgeOpportunity, int, error) {
	return f.opps, len(f.opps), f.err
}

type fakeEventLog struct{}

func (f *fakeEventLog) LogScan(ctx context.Context, scanNr int, s domain.ScannerTag, checked, found int, latency float64, errMsg string) error {
	return nil
}
func (f *fakeEventLog) LogOpportunity(ctx context.Context, opp domain.HedgeOpportunity, executed bool) error {
	return nil
}
func (f *fakeEventLog) LogOrder(ctx context.Context, o domain.Order) error { return nil }
func (f *fakeEventLog) LogFill(ctx context.Context, orderID, marketID string, side domain.Side, price, size, feeEst float64) error {
	return nil
}
func (f *fakeEventLog) LogIncident(ctx context.Context, inc domain.Incident) error { return nil }
func (f *fakeEventLog) LogDepthCheck(ctx context.Context, dc domain.DepthCheck) error { return nil }
func (f *fakeEventLog) LogPnL(ctx context.Context, budget, exposure, realized float64, notes string) error {
	return nil
}
func (f *fakeEventLog) Stats(ctx context.Context) (ports.EventLogStats, error) {
	return ports.EventLogStats{}, nil
}
func (f *fakeEventLog) Close() error { return nil }

type fakeWallet struct{}

func (f *fakeWallet) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	return domain.OrderBook{
		Bids: []domain.BookEntry{{Price: 0.49, Size: 1000}},
		Asks: []domain.BookEntry{{Price: 0.50, Size: 1000}},
	}, nil
}
func (f *fakeWallet) PlaceLimitBuyGTC(ctx context.Context, tokenID string, price, size float64) (string, error) {
	return "ord-1", nil
}
func (f *fakeWallet) Balance(ctx context.Context) (float64, error) { return 500, nil }

type erroringWallet struct{ fakeWallet }

func (f *erroringWallet) Balance(ctx context.Context) (float64, error) {
	return 0, errors.New("rpc down")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, opps []domain.HedgeOpportunity, autoTrade bool) (*Orchestrator, *reporter.Reporter, *captureSink) {
	t.Helper()
	wallet := &fakeWallet{}
	events := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	probe := depthprobe.New(wallet, events, rm, 0.05, 10)
	exec := execution.New(wallet, events, probe, rm, execution.Config{AutoTrade: autoTrade, TradeBudget: 50, Bankroll: 100})

	sink := &captureSink{}
	rep := reporter.New(0.02, sink)

	sc := &fakeScanner{tag: domain.ScannerEventGroup, opps: opps}
	orch := New([]scanner.Scanner{sc}, events, exec, rep, rm, wallet, Config{
		ScanInterval: time.Millisecond, SummaryInterval: time.Hour,
		RealertThreshold: 0.05, AutoTrade: autoTrade, FeeRate: 0.02,
	}, testLogger())
	return orch, rep, sink
}

type captureSink struct {
	messages []string
}

func (c *captureSink) Send(ctx context.Context, text string) error {
	c.messages = append(c.messages, text)
	return nil
}

func sampleOpp(id string, cost float64) domain.HedgeOpportunity {
	return domain.HedgeOpportunity{
		Name: "opp-" + id, TotalCost: cost, MinPayout: 1.0, MaxPayout: 1.0,
		Confidence: domain.ConfidenceGuaranteed,
		Legs: []domain.Leg{
			{MarketID: id, Question: "q", Side: domain.SideYes, Price: cost, TokenID: "t-" + id},
		},
	}
}

func TestTickAlertsOnNewOpportunity(t *testing.T) {
	orch, _, sink := newTestOrchestrator(t, []domain.HedgeOpportunity{sampleOpp("m1", 0.4)}, false)
	if err := orch.tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("expected 1 alert on first sighting, got %d", len(sink.messages))
	}
	if _, ok := orch.alerted[sampleOpp("m1", 0.4).AlertKey()]; !ok {
		t.Fatal("expected opportunity to be recorded in alert-dedup map")
	}
}

func TestTickSuppressesRepeatAlertBelowThreshold(t *testing.T) {
	orch, _, sink := newTestOrchestrator(t, []domain.HedgeOpportunity{sampleOpp("m1", 0.4)}, false)
	_ = orch.tick(context.Background())
	_ = orch.tick(context.Background())
	if len(sink.messages) != 1 {
		t.Fatalf("expected exactly 1 alert across two identical ticks, got %d", len(sink.messages))
	}
}

func TestTickPrunesStaleAlertedKeys(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t, []domain.HedgeOpportunity{sampleOpp("m1", 0.4)}, false)
	_ = orch.tick(context.Background())
	if len(orch.alerted) != 1 {
		t.Fatalf("expected 1 alerted key, got %d", len(orch.alerted))
	}

	orch.scanners[0] = &fakeScanner{tag: domain.ScannerEventGroup, opps: nil}
	_ = orch.tick(context.Background())
	if len(orch.alerted) != 0 {
		t.Fatalf("expected stale alert pruned, got %d remaining", len(orch.alerted))
	}
}

func TestEmitSummaryToleratesWalletError(t *testing.T) {
	events := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	wallet := &erroringWallet{}
	probe := depthprobe.New(wallet, events, rm, 0.05, 10)
	exec := execution.New(wallet, events, probe, rm, execution.Config{AutoTrade: false, TradeBudget: 50, Bankroll: 100})
	sink := &captureSink{}
	rep := reporter.New(0.02, sink)
	orch := New(nil, events, exec, rep, rm, wallet, Config{ScanInterval: time.Millisecond, SummaryInterval: time.Hour, FeeRate: 0.02}, testLogger())

	if err := orch.emitSummary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.messages) != 1 {
		t.Fatalf("expected summary to still be sent despite wallet error, got %d", len(sink.messages))
	}
}
