// Package storage implements ports.EventLog as a strictly append-only
// SQLite store: every Log* call is an INSERT, never an UPDATE. Nothing
// here rewrites history — the tables are the engine's audit trail.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/0xhedge/hedgeengine/internal/domain"
	"github.com/0xhedge/hedgeengine/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    scan_nr          INTEGER NOT NULL,
    scanner          TEXT    NOT NULL,
    markets_checked  INTEGER NOT NULL DEFAULT 0,
    opps_found       INTEGER NOT NULL DEFAULT 0,
    latency_ms       REAL    NOT NULL DEFAULT 0,
    error            TEXT    NOT NULL DEFAULT '',
    at               DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS opportunities (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL,
    scanner      TEXT    NOT NULL,
    hedge_type   TEXT    NOT NULL,
    total_cost   REAL    NOT NULL,
    min_payout   REAL    NOT NULL,
    max_payout   REAL    NOT NULL,
    confidence   TEXT    NOT NULL,
    alert_key    TEXT    NOT NULL,
    executed     INTEGER NOT NULL DEFAULT 0,
    scanned_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    opportunity_name TEXT    NOT NULL,
    market_id        TEXT    NOT NULL,
    token_id         TEXT    NOT NULL,
    side             TEXT    NOT NULL,
    limit_price      REAL    NOT NULL,
    size_shares      REAL    NOT NULL,
    venue_order_id   TEXT    NOT NULL DEFAULT '',
    status           TEXT    NOT NULL,
    error            TEXT    NOT NULL DEFAULT '',
    latency_ms       REAL    NOT NULL DEFAULT 0,
    submitted_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS fills (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   TEXT    NOT NULL,
    market_id  TEXT    NOT NULL,
    side       TEXT    NOT NULL,
    price      REAL    NOT NULL,
    size       REAL    NOT NULL,
    fee_est    REAL    NOT NULL DEFAULT 0,
    at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS incidents (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    type        TEXT    NOT NULL,
    details     TEXT    NOT NULL DEFAULT '',
    kill_reason TEXT    NOT NULL DEFAULT '',
    at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS depth_checks (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    token_id        TEXT    NOT NULL,
    top_spread      REAL    NOT NULL,
    ask_depth_usd   REAL    NOT NULL,
    vwap_sweep_cost REAL    NOT NULL,
    depth_ok        INTEGER NOT NULL,
    spread_ok       INTEGER NOT NULL,
    at              DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS pnl (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    budget   REAL    NOT NULL,
    exposure REAL    NOT NULL,
    realized REAL    NOT NULL,
    notes    TEXT    NOT NULL DEFAULT '',
    at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_at         ON scans(at DESC);
CREATE INDEX IF NOT EXISTS idx_opps_alert_key   ON opportunities(alert_key);
CREATE INDEX IF NOT EXISTS idx_opps_scanned_at  ON opportunities(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_market    ON orders(market_id);
CREATE INDEX IF NOT EXISTS idx_incidents_at     ON incidents(at DESC);
CREATE INDEX IF NOT EXISTS idx_depth_token      ON depth_checks(token_id);
`

// SQLiteStorage implements ports.EventLog over a single SQLite file.
// SQLite is single-writer, so the connection pool is capped at one
// connection; callers serialize writes through the orchestrator's
// single cooperative loop anyway.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at path and applies
// the schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) LogScan(ctx context.Context, scanNr int, scanner domain.ScannerTag, marketsChecked, oppsFound int, latencyMS float64, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (scan_nr, scanner, markets_checked, opps_found, latency_ms, error, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scanNr, string(scanner), marketsChecked, oppsFound, latencyMS, errMsg, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogScan: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogOpportunity(ctx context.Context, opp domain.HedgeOpportunity, executed bool) error {
	executedInt := 0
	if executed {
		executedInt = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunities (name, scanner, hedge_type, total_cost, min_payout, max_payout, confidence, alert_key, executed, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		opp.Name, string(opp.Scanner), string(opp.HedgeType), opp.TotalCost, opp.MinPayout, opp.MaxPayout,
		string(opp.Confidence), opp.AlertKey(), executedInt, opp.ScannedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogOpportunity: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogOrder(ctx context.Context, o domain.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (opportunity_name, market_id, token_id, side, limit_price, size_shares, venue_order_id, status, error, latency_ms, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OpportunityName, o.MarketID, o.TokenID, string(o.Side), o.LimitPrice, o.SizeShares,
		o.VenueOrderID, string(o.Status), o.Error, o.LatencyMS, o.SubmittedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogOrder: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogFill(ctx context.Context, orderID, marketID string, side domain.Side, price, size, feeEst float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fills (order_id, market_id, side, price, size, fee_est, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		orderID, marketID, string(side), price, size, feeEst, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogFill: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogIncident(ctx context.Context, inc domain.Incident) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incidents (type, details, kill_reason, at) VALUES (?, ?, ?, ?)`,
		string(inc.Type), inc.Details, inc.KillReason, inc.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogIncident: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogDepthCheck(ctx context.Context, dc domain.DepthCheck) error {
	depthOK, spreadOK := 0, 0
	if dc.DepthOK {
		depthOK = 1
	}
	if dc.SpreadOK {
		spreadOK = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO depth_checks (token_id, top_spread, ask_depth_usd, vwap_sweep_cost, depth_ok, spread_ok, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dc.TokenID, dc.TopSpread, dc.AskDepthUSD, dc.VWAPSweepCost, depthOK, spreadOK, dc.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogDepthCheck: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LogPnL(ctx context.Context, budget, exposure, realized float64, notes string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pnl (budget, exposure, realized, notes, at) VALUES (?, ?, ?, ?, ?)`,
		budget, exposure, realized, notes, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.LogPnL: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Stats(ctx context.Context) (ports.EventLogStats, error) {
	var stats ports.EventLogStats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`)
	if err := row.Scan(&stats.TotalScans); err != nil {
		return stats, fmt.Errorf("storage.Stats: scans: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM opportunities`)
	if err := row.Scan(&stats.TotalOpps); err != nil {
		return stats, fmt.Errorf("storage.Stats: opportunities: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fills`)
	if err := row.Scan(&stats.TotalFills); err != nil {
		return stats, fmt.Errorf("storage.Stats: fills: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans WHERE error != ''`)
	if err := row.Scan(&stats.TotalErrors); err != nil {
		return stats, fmt.Errorf("storage.Stats: errors: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`)
	if err := row.Scan(&stats.TotalIncidents); err != nil {
		return stats, fmt.Errorf("storage.Stats: incidents: %w", err)
	}
	return stats, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
