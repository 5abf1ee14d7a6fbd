package series

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// PriceRepository persists daily bars in PostgreSQL
// ⭐ SSOT: 일봉 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// EnsureSchema creates the bar table when missing
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS market;
		CREATE TABLE IF NOT EXISTS market.daily_bars (
			ticker      TEXT             NOT NULL,
			trade_date  DATE             NOT NULL,
			open_price  DOUBLE PRECISION NOT NULL,
			high_price  DOUBLE PRECISION NOT NULL,
			low_price   DOUBLE PRECISION NOT NULL,
			close_price DOUBLE PRECISION NOT NULL,
			volume      DOUBLE PRECISION NOT NULL,
			updated_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
			PRIMARY KEY (ticker, trade_date)
		);
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure market.daily_bars: %w", err)
	}
	return nil
}

// GetRange retrieves bars for a ticker within [from, to], oldest first
func (r *PriceRepository) GetRange(ctx context.Context, ticker string, from, to time.Time) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM market.daily_bars
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", ticker, err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LatestDate returns the most recent stored trade date; ok is false when none
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (time.Time, bool, error) {
	query := `SELECT max(trade_date) FROM market.daily_bars WHERE ticker = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, ticker).Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("latest date for %s: %w", ticker, err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// SaveBars upserts bars in one batch
func (r *PriceRepository) SaveBars(ctx context.Context, ticker string, bars []contracts.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.daily_bars (ticker, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, ticker, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save %d bars for %s: %w", len(bars), ticker, err)
	}
	return nil
}
