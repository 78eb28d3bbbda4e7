package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/rezmoss/prodlog/internal/ledger"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// parseDateFlag reads a --date value. Empty means today. The configured
// layout is tried before the usual sheet formats.
func parseDateFlag(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return ledger.Day(now), nil
	}
	if t, err := time.Parse(cfg.DateLayout, s); err == nil {
		return ledger.Day(t), nil
	}
	if t, ok := ledger.ParseDate(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("date %q not recognised (try YYYY-MM-DD)", s)
}

func warn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}
