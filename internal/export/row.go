package export

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// ChartRow is the flat export DTO for one bar of an indicator series.
// Undefined indicators are nil.
type ChartRow struct {
	Ticker        string   `json:"ticker" parquet:"ticker"`
	Date          string   `json:"date" parquet:"date"`
	Close         float64  `json:"close" parquet:"close"`
	SMAFast       *float64 `json:"sma_fast" parquet:"sma_fast,optional"`
	SMASlow       *float64 `json:"sma_slow" parquet:"sma_slow,optional"`
	RSI           *float64 `json:"rsi" parquet:"rsi,optional"`
	MACD          *float64 `json:"macd" parquet:"macd,optional"`
	Signal        *float64 `json:"signal" parquet:"signal,optional"`
	VolumeSMAFast *float64 `json:"volume_sma_fast" parquet:"volume_sma_fast,optional"`
	VolumeSMASlow *float64 `json:"volume_sma_slow" parquet:"volume_sma_slow,optional"`
	ReturnN       *float64 `json:"return_n" parquet:"return_n,optional"`
}

// Rows flattens an indicator series for export
func Rows(ticker string, sets []contracts.IndicatorSet) []ChartRow {
	rows := make([]ChartRow, len(sets))
	for i, s := range sets {
		rows[i] = ChartRow{
			Ticker:        ticker,
			Date:          s.Time.Format("2006-01-02"),
			Close:         s.Close,
			SMAFast:       ptr(s.SMAFast),
			SMASlow:       ptr(s.SMASlow),
			RSI:           ptr(s.RSI),
			MACD:          ptr(s.MACD),
			Signal:        ptr(s.Signal),
			VolumeSMAFast: ptr(s.VolumeSMAFast),
			VolumeSMASlow: ptr(s.VolumeSMASlow),
			ReturnN:       ptr(s.ReturnN),
		}
	}
	return rows
}

func ptr(v null.Float) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
