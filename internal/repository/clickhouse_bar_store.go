package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	pkgch "github.com/quantfra/swingdesk/pkg/clickhouse"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// CHBarStore implements BarSource backed by ClickHouse daily/weekly
// bar tables. Series come back ascending by bucket.
type CHBarStore struct {
	db       *sql.DB
	ch       *pkgch.Client
	database string
	l        *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, database string) *CHBarStore {
	return &CHBarStore{db: ch.DB(), ch: ch, database: database}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) GetHistory(ctx context.Context, symbol string, lookback int, interval domrepo.Interval) ([]models.PriceBar, error) {
	start := time.Now()
	table, err := tableForInterval(s.database, interval)
	if err != nil {
		return nil, err
	}
	const qtpl = `
		SELECT bucket, open, high, low, close, vol
		FROM %s
		WHERE symbol = ?
		ORDER BY bucket DESC
		LIMIT ?
	`
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, lookback)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_history query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.String("interval", string(interval)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.PriceBar, 0, lookback)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_history scan error",
					applogger.String("table", table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_history rows error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(tmp) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", models.ErrDataUnavailable, symbol)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_history ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHBarStore) Close() error {
	return s.ch.Close()
}

// Schema returns the DDL the store needs on boot.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bars_1d (
			symbol String, bucket DateTime,
			open Float64, high Float64, low Float64, close Float64, vol Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bars_1wk (
			symbol String, bucket DateTime,
			open Float64, high Float64, low Float64, close Float64, vol Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`, database),
	}
}

func tableForInterval(database string, iv domrepo.Interval) (string, error) {
	switch iv {
	case domrepo.Interval1d:
		return database + ".bars_1d", nil
	case domrepo.Interval1wk:
		return database + ".bars_1wk", nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", iv)
	}
}

var _ domrepo.BarSource = (*CHBarStore)(nil)
