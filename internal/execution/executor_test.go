package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/0xhedge/hedgeengine/internal/depthprobe"
	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
	"github.com/0xhedge/hedgeengine/internal/risk"
)

type fakeOrderGateway struct {
	book    domain.OrderBook
	placeID string
	placeErr error
}

func (f *fakeOrderGateway) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	return f.book, nil
}

func (f *fakeOrderGateway) PlaceLimitBuyGTC(ctx context.Context, tokenID string, price, size float64) (string, error) {
	if f.placeErr != nil {
		return "", f.placeErr
	}
	return f.placeID, nil
}

func (f *fakeOrderGateway) Balance(ctx context.Context) (float64, error) {
	return 1000, nil
}

type fakeEventLog struct {
	orders    []domain.Order
	incidents []domain.Incident
}

func (f *fakeEventLog) LogScan(ctx context.Context, scanNr int, scanner domain.ScannerTag, marketsChecked, oppsFound int, latencyMS float64, errMsg string) error {
	return nil
}
func (f *fakeEventLog) LogOpportunity(ctx context.Context, opp domain.HedgeOpportunity, executed bool) error {
	return nil
}
func (f *fakeEventLog) LogOrder(ctx context.Context, o domain.Order) error {
	f.orders = append(f.orders, o)
	return nil
}
func (f *fakeEventLog) LogFill(ctx context.Context, orderID, marketID string, side domain.Side, price, size, feeEst float64) error {
	return nil
}
func (f *fakeEventLog) LogIncident(ctx context.Context, inc domain.Incident) error {
	f.incidents = append(f.incidents, inc)
	return nil
}
func (f *fakeEventLog) LogDepthCheck(ctx context.Context, dc domain.DepthCheck) error { return nil }
func (f *fakeEventLog) LogPnL(ctx context.Context, budget, exposure, realized float64, notes string) error {
	return nil
}
func (f *fakeEventLog) Stats(ctx context.Context) (ports.EventLogStats, error) {
	return ports.EventLogStats{}, nil
}
func (f *fakeEventLog) Close() error { return nil }

func deepBook() domain.OrderBook {
	return domain.OrderBook{
		Bids: []domain.BookEntry{{Price: 0.49, Size: 1000}},
		Asks: []domain.BookEntry{{Price: 0.50, Size: 1000}},
	}
}

func sampleOpp() domain.HedgeOpportunity {
	return domain.HedgeOpportunity{
		Name: "test opp",
		Legs: []domain.Leg{
			{MarketID: "m1", Side: domain.SideYes, Price: 0.40, TokenID: "t1"},
			{MarketID: "m2", Side: domain.SideNo, Price: 0.40, TokenID: "t2"},
		},
		TotalCost: 0.80, MinPayout: 1.0, MaxPayout: 1.0,
	}
}

func TestExecuteFullyFillsBothLegs(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook(), placeID: "ord-1"}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: true, TradeBudget: 50, Bankroll: 100})

	report := ex.Execute(context.Background(), sampleOpp())
	if !report.Executed {
		t.Fatalf("expected full execution, got errors: %v", report.Errors)
	}
	if len(report.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(report.Orders))
	}
	if rm.CurrentExposure() <= 0 {
		t.Fatal("expected exposure to increase")
	}
}

func TestExecuteRefusesWhenAutoTradeDisabled(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook()}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: false, TradeBudget: 50, Bankroll: 100})

	report := ex.Execute(context.Background(), sampleOpp())
	if report.Executed || len(report.Orders) != 0 {
		t.Fatalf("expected no execution, got %+v", report)
	}
}

func TestExecuteRefusesWhenKillSwitchTripped(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook()}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	for i := 0; i < 5; i++ {
		rm.APIError()
	}
	if !rm.ShouldKill() {
		t.Fatal("expected risk manager to be killed")
	}
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: true, TradeBudget: 50, Bankroll: 100})

	report := ex.Execute(context.Background(), sampleOpp())
	if report.Executed || len(report.Orders) != 0 {
		t.Fatalf("expected no orders placed, got %+v", report)
	}
	if !report.NotifyKill {
		t.Fatal("expected first kill to request a notification")
	}
	if len(el.incidents) != 1 || el.incidents[0].Type != domain.IncidentKillSwitch {
		t.Fatalf("expected one kill_switch incident, got %+v", el.incidents)
	}

	report2 := ex.Execute(context.Background(), sampleOpp())
	if report2.NotifyKill {
		t.Fatal("expected no repeat notification on second trip")
	}
}

func TestExecuteMarksPartialOnOneLegRejected(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook()}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: true, TradeBudget: 50, Bankroll: 100})

	opp := sampleOpp()
	opp.Legs[1].TokenID = "" // forces a rejection on leg 2

	report := ex.Execute(context.Background(), opp)
	if !report.Partial {
		t.Fatalf("expected partial execution, got %+v", report)
	}
	if len(report.Errors) == 0 {
		t.Fatal("expected an error recorded for the empty token id")
	}
}

func TestExecuteDeniesWhenExposureCapReached(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook()}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	rm.AddExposure(1000)
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: true, TradeBudget: 50, Bankroll: 100})

	report := ex.Execute(context.Background(), sampleOpp())
	if report.Executed || len(report.Orders) != 0 {
		t.Fatalf("expected execution denied by exposure cap, got %+v", report)
	}
}

func TestExecuteRecordsOrderErrorOnGatewayRejection(t *testing.T) {
	gw := &fakeOrderGateway{book: deepBook(), placeErr: errors.New("insufficient balance")}
	el := &fakeEventLog{}
	rm := risk.New(risk.DefaultLimits())
	probe := depthprobe.New(gw, el, rm, 0.05, 10)
	ex := New(gw, el, probe, rm, Config{AutoTrade: true, TradeBudget: 50, Bankroll: 100})

	report := ex.Execute(context.Background(), sampleOpp())
	if report.Executed {
		t.Fatal("expected no execution when both legs are rejected by the gateway")
	}
	for _, o := range el.orders {
		if o.Status != domain.OrderError {
			t.Fatalf("expected order error status, got %s", o.Status)
		}
	}
}
