package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Writer encodes chart rows in one file format
type Writer interface {
	Write(w io.Writer, rows []ChartRow) error
	Extension() string
}

// NewWriter returns the writer for format (csv, parquet, json)
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVWriter{}, nil
	case "parquet":
		return ParquetWriter{}, nil
	case "json":
		return JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use csv, parquet or json)", format)
	}
}

// ParquetWriter writes a single parquet file
type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) Write(w io.Writer, rows []ChartRow) error {
	return parquet.Write(w, rows)
}

// JSONWriter writes an indented JSON array
type JSONWriter struct{}

func (JSONWriter) Extension() string { return "json" }

func (JSONWriter) Write(w io.Writer, rows []ChartRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// CSVWriter writes a header row then one line per bar; undefined values are empty
type CSVWriter struct{}

func (CSVWriter) Extension() string { return "csv" }

func (CSVWriter) Write(w io.Writer, rows []ChartRow) error {
	cw := csv.NewWriter(w)
	header := []string{"ticker", "date", "close", "sma_fast", "sma_slow", "rsi", "macd", "signal", "volume_sma_fast", "volume_sma_slow", "return_n"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Ticker,
			r.Date,
			formatFloat(&r.Close),
			formatFloat(r.SMAFast),
			formatFloat(r.SMASlow),
			formatFloat(r.RSI),
			formatFloat(r.MACD),
			formatFloat(r.Signal),
			formatFloat(r.VolumeSMAFast),
			formatFloat(r.VolumeSMASlow),
			formatFloat(r.ReturnN),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
