package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/selection"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	topStyle    = numberStyle.Foreground(lipgloss.Color("10")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintRunHeader prints the run identity block
func PrintRunHeader(w io.Writer, result *brain.RunResult, tickers int) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", titleStyle.Render("Screening Run"))
	PrintSeparator(w)
	PrintKeyValue(w, "Run ID", result.RunID, 10)
	PrintKeyValue(w, "Strategy", result.StrategyID, 10)
	PrintKeyValue(w, "Mode", string(result.Mode), 10)
	PrintKeyValue(w, "Tickers", strconv.Itoa(tickers), 10)
	PrintKeyValue(w, "Duration", result.Duration.Round(time.Millisecond).String(), 10)
	PrintSeparator(w)
}

// RenderRanking renders one ranking as a table; limit <= 0 shows every entry
func RenderRanking(r *selection.Ranking, limit int) string {
	entries := r.Entries
	if limit > 0 {
		entries = r.Top(limit)
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(e.Rank),
			e.Ticker,
			e.Sector,
			strconv.Itoa(e.Score),
			formatOne(e.RSI),
			formatPercent(e.ReturnN),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "TICKER", "SECTOR", "SCORE", "RSI", "RETURN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && row < len(entries) && entries[row].Score == maxScore(r.Key):
				return topStyle
			case col == 0 || col >= 3:
				return numberStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

// RenderStats renders the outcome counters of a ranking
func RenderStats(s selection.Stats) string {
	return fmt.Sprintf("total %d · scored %d · ranked %d · below floor %d · skipped %d · failed %d",
		s.Total, s.Scored, s.Ranked, s.BelowFloor, s.Skipped, s.Failed)
}

func maxScore(key selection.OrderKey) int {
	if key == selection.OrderOpportunity {
		return 6
	}
	return 3
}

// formatOne prints a value with one decimal; undefined prints "-"
func formatOne(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(1)
}

func formatPercent(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	d := decimal.NewFromFloat(v.Float64)
	sign := ""
	if d.IsPositive() {
		sign = "+"
	}
	return sign + d.StringFixed(1) + "%"
}
