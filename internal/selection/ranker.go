package selection

import (
	"fmt"
	"sort"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// OrderKey selects which score a ranking sorts by
type OrderKey string

const (
	OrderOpportunity OrderKey = "opportunity"
	OrderBuy         OrderKey = "buy"
	OrderSell        OrderKey = "sell"
)

// ParseOrderKey validates an order key string
func ParseOrderKey(s string) (OrderKey, error) {
	switch OrderKey(s) {
	case OrderOpportunity, OrderBuy, OrderSell:
		return OrderKey(s), nil
	default:
		return "", contracts.InvalidConfigError{Field: "order", Message: fmt.Sprintf("must be opportunity, buy or sell, got %q", s)}
	}
}

// KeysForMode returns the rankings a scoring mode exposes
func KeysForMode(mode contracts.Mode) []OrderKey {
	if mode == contracts.ModeMomentum {
		return []OrderKey{OrderBuy, OrderSell}
	}
	return []OrderKey{OrderOpportunity}
}

func (k OrderKey) mode() contracts.Mode {
	if k == OrderOpportunity {
		return contracts.ModeOpportunity
	}
	return contracts.ModeMomentum
}

func (k OrderKey) value(s contracts.Score) int {
	switch k {
	case OrderBuy:
		return s.Buy
	case OrderSell:
		return s.Sell
	default:
		return s.Total
	}
}

// Entry is one ranked row
type Entry struct {
	Rank    int        `json:"rank"`
	Ticker  string     `json:"ticker"`
	Sector  string     `json:"sector"`
	Score   int        `json:"score"`
	RSI     null.Float `json:"rsi"`      // rounded to 1 decimal
	ReturnN null.Float `json:"return_n"` // rounded to 1 decimal

	Result contracts.ScoreResult `json:"result"`
}

// Exclusion records a ticker that never reached the ranking
type Exclusion struct {
	Ticker string                  `json:"ticker"`
	Status contracts.OutcomeStatus `json:"status"`
	Reason string                  `json:"reason"`
}

// Stats are computed over every outcome, before any Top(n) truncation
type Stats struct {
	Total      int `json:"total"`
	Scored     int `json:"scored"`
	Ranked     int `json:"ranked"`
	BelowFloor int `json:"below_floor"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Ranking is the ordered output of one run for one order key
type Ranking struct {
	Key      OrderKey    `json:"key"`
	Floor    int         `json:"floor"`
	Entries  []Entry     `json:"entries"`
	Excluded []Exclusion `json:"excluded"`
	Stats    Stats       `json:"stats"`
}

// Top returns at most n leading entries, for chart selection
func (r *Ranking) Top(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.Entries) {
		n = len(r.Entries)
	}
	return r.Entries[:n]
}

// Rank filters scored outcomes below floor, then stable-sorts the rest by key
// descending so equal scores keep universe order. A floor of 0 keeps everything.
func Rank(outcomes []contracts.TickerOutcome, key OrderKey, floor int) (*Ranking, error) {
	if _, err := ParseOrderKey(string(key)); err != nil {
		return nil, err
	}

	ranking := &Ranking{
		Key:      key,
		Floor:    floor,
		Entries:  make([]Entry, 0, len(outcomes)),
		Excluded: []Exclusion{},
	}
	ranking.Stats.Total = len(outcomes)

	for _, o := range outcomes {
		switch o.Status {
		case contracts.OutcomeScored:
			if o.Result == nil {
				return nil, fmt.Errorf("outcome %s is scored but has no result", o.Ticker)
			}
			if o.Result.Mode != key.mode() {
				return nil, fmt.Errorf("cannot rank %s result for %s by %s", o.Result.Mode, o.Ticker, key)
			}
			ranking.Stats.Scored++

			score := key.value(o.Result.Score)
			if score < floor {
				ranking.Stats.BelowFloor++
				continue
			}

			ranking.Entries = append(ranking.Entries, Entry{
				Ticker:  o.Ticker,
				Sector:  o.Result.Sector,
				Score:   score,
				RSI:     round1(o.Result.Snapshot.RSI),
				ReturnN: round1(o.Result.Snapshot.ReturnN),
				Result:  *o.Result,
			})
		case contracts.OutcomeSkipped:
			ranking.Stats.Skipped++
			ranking.Excluded = append(ranking.Excluded, Exclusion{Ticker: o.Ticker, Status: o.Status, Reason: o.Reason})
		default:
			ranking.Stats.Failed++
			ranking.Excluded = append(ranking.Excluded, Exclusion{Ticker: o.Ticker, Status: contracts.OutcomeFailed, Reason: o.Reason})
		}
	}

	sort.SliceStable(ranking.Entries, func(i, j int) bool {
		return ranking.Entries[i].Score > ranking.Entries[j].Score
	})

	for i := range ranking.Entries {
		ranking.Entries[i].Rank = i + 1
	}
	ranking.Stats.Ranked = len(ranking.Entries)

	return ranking, nil
}

// exactFloat forces NewFromFloatWithExponent to keep every binary digit
const exactFloat = -1074

// round1 rounds half to even on the float's exact binary value
func round1(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	rounded, _ := decimal.NewFromFloatWithExponent(v.Float64, exactFloat).RoundBank(1).Float64()
	return null.FloatFrom(rounded)
}

// Ranker wraps Rank with run logging
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	floor  int
	logger *logger.Logger
}

// NewRanker creates a ranker; floor applies to the opportunity key only
func NewRanker(floor int, log *logger.Logger) *Ranker {
	return &Ranker{
		floor:  floor,
		logger: log,
	}
}

// RankAll builds every ranking the mode exposes
func (r *Ranker) RankAll(mode contracts.Mode, outcomes []contracts.TickerOutcome) (map[OrderKey]*Ranking, error) {
	out := make(map[OrderKey]*Ranking)

	for _, key := range KeysForMode(mode) {
		floor := 0
		if key == OrderOpportunity {
			floor = r.floor
		}

		ranking, err := Rank(outcomes, key, floor)
		if err != nil {
			return nil, fmt.Errorf("rank by %s: %w", key, err)
		}

		fields := map[string]interface{}{
			"key":         key,
			"scored":      ranking.Stats.Scored,
			"ranked":      ranking.Stats.Ranked,
			"below_floor": ranking.Stats.BelowFloor,
			"skipped":     ranking.Stats.Skipped,
			"failed":      ranking.Stats.Failed,
		}
		if len(ranking.Entries) > 0 {
			fields["top_ticker"] = ranking.Entries[0].Ticker
			fields["top_score"] = ranking.Entries[0].Score
		}
		r.logger.WithFields(fields).Info("Ranking completed")

		out[key] = ranking
	}

	return out, nil
}
