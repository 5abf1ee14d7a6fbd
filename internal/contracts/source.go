package contracts

import (
	"context"
	"time"
)

// BarSource delivers a ticker's daily bars, oldest first and deduplicated
// ⭐ SSOT: 시세 조회 인터페이스
type BarSource interface {
	Fetch(ctx context.Context, ticker string, lookback time.Duration) ([]Bar, error)
}

// SectorResolver maps a ticker to its display sector name
type SectorResolver interface {
	Sector(ctx context.Context, ticker string) string
}
