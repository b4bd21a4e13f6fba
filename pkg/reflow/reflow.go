// Package reflow turns a pin table copied out of a datasheet, where the
// description column wraps freely, into one comma-separated row per pin.
package reflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// MinFields is the fewest tokens a row can have.
const MinFields = 5

// MaxLineSize is the longest input line Write accepts.
const MaxLineSize = 1024 * 1024

// Terminators end a row; they are the pin direction column.
var Terminators = []string{"input", "output", "in/out", "unused"}

func isTerminator(tok string) bool {
	for _, t := range Terminators {
		if strings.EqualFold(tok, t) {
			return true
		}
	}
	return false
}

// Option configures Rows and Write.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger.With(slog.String("component", "reflow"))
		}
	}
}

// Rows reassembles lines into rows of the form
//
//	ball, name, type, description words, direction
func Rows(lines []string, opts ...Option) []string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var rows []string
	for n, raw := range lines {
		toks := strings.Fields(raw)
		if len(toks) == 0 {
			continue
		}

		var row []string
		for _, tok := range toks {
			row = append(row, tok)
			if len(row) >= MinFields && isTerminator(tok) {
				rows = append(rows, formatRow(row))
				row = nil
			}
		}

		if len(row) > 0 && cfg.logger != nil && cfg.logger.Enabled(context.Background(), slog.LevelDebug) {
			cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "dropping incomplete row",
				slog.Int("line", n+1),
				slog.Any("tokens", row))
		}
	}
	return rows
}

func formatRow(row []string) string {
	fields := make([]string, 0, 5)
	fields = append(fields, row[:3]...)
	fields = append(fields, strings.Join(row[3:len(row)-1], " "))
	fields = append(fields, row[len(row)-1])
	return strings.Join(fields, ", ")
}

// Write reads a table from r and writes one row per line to w.
func Write(w io.Writer, r io.Reader, opts ...Option) error {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read table: %w", err)
	}

	bw := bufio.NewWriter(w)
	for _, row := range Rows(lines, opts...) {
		if _, err := fmt.Fprintln(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
