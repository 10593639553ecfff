package ports

import (
	"context"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

// EventLogStats summarises row counts for health reporting.
type EventLogStats struct {
	TotalScans     int
	TotalOpps      int
	TotalFills     int
	TotalErrors    int
	TotalIncidents int
}

// EventLog is the append-only typed event store. Writes must be visible
// to readers immediately; it owns the persistent store handle
// exclusively.
type EventLog interface {
	LogScan(ctx context.Context, scanNr int, scanner domain.ScannerTag, marketsChecked, oppsFound int, latencyMS float64, errMsg string) error
	LogOpportunity(ctx context.Context, opp domain.HedgeOpportunity, executed bool) error
	LogOrder(ctx context.Context, o domain.Order) error
	LogFill(ctx context.Context, orderID, marketID string, side domain.Side, price, size, feeEst float64) error
	LogIncident(ctx context.Context, inc domain.Incident) error
	LogDepthCheck(ctx context.Context, dc domain.DepthCheck) error
	LogPnL(ctx context.Context, budget, exposure, realized float64, notes string) error
	Stats(ctx context.Context) (EventLogStats, error)
	Close() error
}
