package network

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatSexp Format = "sexp"
)

// Config controls which networks are reported and how members are ordered.
type Config struct {
	SortBy            pinmux.Field // Member ordering key (default: group)
	IncludeSingletons bool         // Report single-signal networks (default: false)
	Format            Format       // Output encoding (default: text)
}

// DefaultConfig returns a Config matching the classic text report.
func DefaultConfig() *Config {
	return &Config{
		SortBy:            pinmux.FieldGroup,
		IncludeSingletons: false,
		Format:            FormatText,
	}
}

// Validate fills in defaults and rejects unknown values.
func (c *Config) Validate() error {
	field, err := pinmux.ParseField(string(c.SortBy))
	if err != nil {
		return err
	}
	c.SortBy = field

	format, err := ParseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = format

	return nil
}

// ShouldReport reports whether net is printed under this configuration.
func (c *Config) ShouldReport(net *Network) bool {
	return c.IncludeSingletons || len(net.Signals) > 1
}

// ParseFormat converts a flag or config value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCBOR, FormatSexp:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json, cbor or sexp)", s)
}
