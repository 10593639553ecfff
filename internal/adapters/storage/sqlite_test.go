package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

func openTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogScanAndOpportunityRoundTripIntoStats(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	if err := s.LogScan(ctx, 1, domain.ScannerEventGroup, 10, 2, 45.5, ""); err != nil {
		t.Fatalf("LogScan: %v", err)
	}
	opp := domain.HedgeOpportunity{
		Name: "test", Scanner: domain.ScannerEventGroup, HedgeType: domain.HedgeExclusive,
		TotalCost: 0.9, MinPayout: 1.0, MaxPayout: 1.0, Confidence: domain.ConfidenceGuaranteed,
		ScannedAt: time.Now(),
		Legs:      []domain.Leg{{MarketID: "m1"}},
	}
	if err := s.LogOpportunity(ctx, opp, false); err != nil {
		t.Fatalf("LogOpportunity: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalScans != 1 || stats.TotalOpps != 1 {
		t.Fatalf("expected 1 scan and 1 opportunity, got %+v", stats)
	}
}

func TestLogIncidentAppendsRatherThanOverwrites(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	inc := domain.Incident{Type: domain.IncidentKillSwitch, KillReason: "api_errors", At: time.Now()}
	if err := s.LogIncident(ctx, inc); err != nil {
		t.Fatalf("LogIncident: %v", err)
	}
	if err := s.LogIncident(ctx, inc); err != nil {
		t.Fatalf("LogIncident: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalIncidents != 2 {
		t.Fatalf("expected 2 incident rows (append-only), got %d", stats.TotalIncidents)
	}
}

func TestLogOrderAndDepthCheckPersist(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	o := domain.Order{
		OpportunityName: "test", MarketID: "m1", TokenID: "t1", Side: domain.SideYes,
		LimitPrice: 0.5, SizeShares: 10, Status: domain.OrderSubmitted, SubmittedAt: time.Now(),
	}
	if err := s.LogOrder(ctx, o); err != nil {
		t.Fatalf("LogOrder: %v", err)
	}

	dc := domain.DepthCheck{TokenID: "t1", TopSpread: 0.02, AskDepthUSD: 500, DepthOK: true, SpreadOK: true, At: time.Now()}
	if err := s.LogDepthCheck(ctx, dc); err != nil {
		t.Fatalf("LogDepthCheck: %v", err)
	}
}
