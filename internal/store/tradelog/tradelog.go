package tradelog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"tradepulse/internal/store"
	"tradepulse/internal/trader"
)

// Store is the append-only audit log: one row per trade, one row per equity
// point. Rows are never updated or deleted.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

var _ store.Logs = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	ts INTEGER NOT NULL,
	action TEXT NOT NULL,
	coin TEXT NOT NULL,
	price REAL NOT NULL,
	quantity TEXT NOT NULL,
	pnl REAL,
	reason TEXT NOT NULL DEFAULT '',
	balance_usd REAL NOT NULL,
	total_value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts);
CREATE INDEX IF NOT EXISTS idx_trades_coin ON trades(coin);
CREATE TABLE IF NOT EXISTS equity_logs (
	id TEXT PRIMARY KEY,
	ts INTEGER NOT NULL,
	total_value REAL NOT NULL,
	balance_usd REAL NOT NULL,
	holdings_count INTEGER NOT NULL,
	year TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_equity_ts ON equity_logs(ts);
`

// New opens (and migrates) the audit log database.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("trade log: database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating trade log: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AppendTrade inserts one immutable trade row.
func (s *Store) AppendTrade(ctx context.Context, rec trader.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pnl any
	if rec.PnL != nil {
		pnl = *rec.PnL
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (id, ts, action, coin, price, quantity, pnl, reason, balance_usd, total_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixMilli(), string(rec.Action), rec.Coin, rec.Price,
		rec.Quantity, pnl, rec.Reason, rec.BalanceUSD, rec.TotalValue)
	if err != nil {
		return fmt.Errorf("appending trade: %w", err)
	}
	return nil
}

// AppendEquity inserts one equity snapshot row.
func (s *Store) AppendEquity(ctx context.Context, pt trader.EquityPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO equity_logs (id, ts, total_value, balance_usd, holdings_count, year)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pt.ID, pt.Timestamp.UnixMilli(), pt.TotalValue, pt.BalanceUSD, pt.HoldingsCount,
		pt.Timestamp.Format("2006"))
	if err != nil {
		return fmt.Errorf("appending equity point: %w", err)
	}
	return nil
}

// ListTrades returns the most recent trades, newest first.
func (s *Store) ListTrades(ctx context.Context, limit int) ([]trader.TradeRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, action, coin, price, quantity, pnl, reason, balance_usd, total_value
		 FROM trades ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing trades: %w", err)
	}
	defer rows.Close()

	var out []trader.TradeRecord
	for rows.Next() {
		var rec trader.TradeRecord
		var ts int64
		var action string
		var pnl sql.NullFloat64
		if err := rows.Scan(&rec.ID, &ts, &action, &rec.Coin, &rec.Price,
			&rec.Quantity, &pnl, &rec.Reason, &rec.BalanceUSD, &rec.TotalValue); err != nil {
			return nil, err
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		rec.Action = trader.TradeAction(action)
		if pnl.Valid {
			v := pnl.Float64
			rec.PnL = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquity returns the most recent equity points, oldest first so the
// result plots directly as a curve.
func (s *Store) ListEquity(ctx context.Context, limit int) ([]trader.EquityPoint, error) {
	if limit <= 0 {
		limit = 500
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, total_value, balance_usd, holdings_count
		 FROM (SELECT * FROM equity_logs ORDER BY ts DESC, id DESC LIMIT ?)
		 ORDER BY ts ASC, id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing equity points: %w", err)
	}
	defer rows.Close()

	var out []trader.EquityPoint
	for rows.Next() {
		var pt trader.EquityPoint
		var ts int64
		if err := rows.Scan(&pt.ID, &ts, &pt.TotalValue, &pt.BalanceUSD, &pt.HoldingsCount); err != nil {
			return nil, err
		}
		pt.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, pt)
	}
	return out, rows.Err()
}
