package pinmux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrMalformedLine matches every *LineError.
var ErrMalformedLine = errors.New("malformed pin line")

// LineError reports a pin line that cannot be turned into a record.
type LineError struct {
	Line   int    // 1-based line number, 0 when unknown
	Pin    string // pin name, if the line had one
	Raw    string
	Reason string
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: pin %s: %s: %q", e.Line, e.Pin, e.Reason, e.Raw)
	}
	return fmt.Sprintf("pin %s: %s: %q", e.Pin, e.Reason, e.Raw)
}

func (e *LineError) Is(target error) bool {
	return target == ErrMalformedLine
}

// Signal is an alternate pin function and the condition that selects it.
type Signal struct {
	Name string
	Expr Expr
}

// Pin is one parsed row of the pin table.
type Pin struct {
	Name    string
	Default string
	Group   string
	High    *Signal
	Low     *Signal
	Line    int
}

// Signals returns the pin's high signal followed by its low signal, if any.
func (p *Pin) Signals() []*Signal {
	out := []*Signal{p.High}
	if p.Low != nil {
		out = append(out, p.Low)
	}
	return out
}

// Key returns the field of the pin selected by f.
func (p *Pin) Key(f Field) string {
	if f == FieldDefault {
		return p.Default
	}
	return p.Group
}

// Field selects which pin field filters and sorts match against.
type Field string

const (
	FieldGroup   Field = "group"
	FieldDefault Field = "default"
)

// ParseField converts a flag or config value into a Field.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldGroup, "":
		return FieldGroup, nil
	case FieldDefault:
		return FieldDefault, nil
	}
	return "", fmt.Errorf("unknown pin field %q (want group or default)", s)
}

// Option configures ParsePins and ReadPins.
type Option func(*parseConfig)

type parseConfig struct {
	logger *slog.Logger
	field  Field
	filter map[string]bool
}

// WithLogger sets the logger for debug output. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *parseConfig) {
		if logger != nil {
			c.logger = logger.With(slog.String("component", "pinmux"))
		}
	}
}

// WithFilter keeps only pins whose field f is one of keys. An empty key
// list disables filtering.
func WithFilter(f Field, keys []string) Option {
	return func(c *parseConfig) {
		c.field = f
		if len(keys) == 0 {
			c.filter = nil
			return
		}
		c.filter = make(map[string]bool, len(keys))
		for _, k := range keys {
			c.filter[k] = true
		}
	}
}

func (c *parseConfig) debug(msg string, attrs ...slog.Attr) {
	if c.logger != nil && c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

// ParseLine parses one non-blank line of the pin table:
//
//	pin default high_sig high_expr... [low_sig low_expr...] group
func ParseLine(line string) (*Pin, error) {
	pin, _, err := parseLine(line)
	return pin, err
}

// parseLine also returns any tokens left after the low clause.
func parseLine(line string) (*Pin, []string, error) {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil, nil, &LineError{Raw: line, Reason: "empty line"}
	}
	if len(toks) < 3 {
		return nil, nil, &LineError{Pin: toks[0], Raw: line, Reason: "missing high signal"}
	}

	pin := &Pin{
		Name:    toks[0],
		Default: toks[1],
		Group:   toks[len(toks)-1],
	}

	high, rest, err := parseSignal(toks[2 : len(toks)-1])
	if err != nil {
		return nil, nil, &LineError{Pin: pin.Name, Raw: line, Reason: "high " + err.Error()}
	}
	if high == nil {
		return nil, nil, &LineError{Pin: pin.Name, Raw: line, Reason: "missing high signal"}
	}
	pin.High = high

	low, rest, err := parseSignal(rest)
	if err != nil {
		return nil, nil, &LineError{Pin: pin.Name, Raw: line, Reason: "low " + err.Error()}
	}
	pin.Low = low

	return pin, rest, nil
}

// ParsePins parses every non-blank line. The first malformed line aborts
// parsing; filtering is applied only to lines that parsed.
func ParsePins(lines []string, opts ...Option) ([]*Pin, error) {
	cfg := parseConfig{field: FieldGroup}
	for _, opt := range opts {
		opt(&cfg)
	}

	var pins []*Pin
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			cfg.debug("skipping blank line", slog.Int("line", i+1))
			continue
		}

		pin, rest, err := parseLine(line)
		if err != nil {
			var le *LineError
			if errors.As(err, &le) {
				le.Line = i + 1
			}
			return nil, err
		}
		pin.Line = i + 1

		if len(rest) > 0 {
			cfg.debug("ignoring trailing tokens",
				slog.String("pin", pin.Name),
				slog.Any("tokens", rest))
		}

		if cfg.filter != nil && !cfg.filter[pin.Key(cfg.field)] {
			cfg.debug("filtered pin",
				slog.String("pin", pin.Name),
				slog.String(string(cfg.field), pin.Key(cfg.field)))
			continue
		}
		pins = append(pins, pin)
	}

	cfg.debug("parsed pin table", slog.Int("pins", len(pins)))
	return pins, nil
}

// ReadPins reads a pin table from r and parses it.
func ReadPins(r io.Reader, opts ...Option) ([]*Pin, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pin table: %w", err)
	}
	return ParsePins(lines, opts...)
}

// ReadFilter reads one name per line, skipping blank lines.
func ReadFilter(r io.Reader) ([]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter: %w", err)
	}
	var keys []string
	for _, l := range lines {
		if k := strings.TrimSpace(l); k != "" {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
