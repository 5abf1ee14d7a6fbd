package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// WriteFile writes one ticker's series to dir/<ticker>.<ext> and returns the path
func WriteFile(dir, ticker string, sets []contracts.IndicatorSet, w Writer) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	name := strings.NewReplacer("/", "_", "\\", "_").Replace(ticker)
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", name, w.Extension()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := w.Write(f, Rows(ticker, sets)); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
