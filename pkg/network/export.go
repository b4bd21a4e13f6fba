package network

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"
	"github.com/fxamacker/cbor/v2"
)

// reportEncMode encodes reports deterministically.
var reportEncMode cbor.EncMode

// reportDecMode decodes reports produced by ExportCBOR.
var reportDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	reportEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create report CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	reportDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create report CBOR decoder mode: %v", err))
	}
}

// ExportJSON encodes the report as indented JSON.
func ExportJSON(rep *Report) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("network: nil report")
	}
	return json.MarshalIndent(rep, "", "  ")
}

// ExportCBOR encodes the report as canonical CBOR.
func ExportCBOR(rep *Report) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("network: nil report")
	}
	return reportEncMode.Marshal(rep)
}

// DecodeCBOR decodes a report produced by ExportCBOR.
func DecodeCBOR(data []byte) (*Report, error) {
	var rep Report
	if err := reportDecMode.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("network: decode report: %w", err)
	}
	return &rep, nil
}

// ExportSexp renders the report as a single s-expression:
//
//	(pinmux (version "1.0")
//	  (network (id 0)
//	    (common (bit "SCU80[0]" 2))
//	    (member (pin "D6") (key "GPIOA") (signals "MAC1LINK") (bits "SCU80[1]"))))
//
// The list structure is parsed back before the output is returned.
func ExportSexp(rep *Report) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("network: nil report")
	}

	out := renderSexp(rep, strconv.Quote)
	if err := checkSexp(renderSexp(rep, placeholderAtom)); err != nil {
		return "", err
	}
	return out, nil
}

func renderSexp(rep *Report, atom func(string) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(pinmux (version %s)\n", atom(rep.Version))
	for _, net := range rep.Networks {
		fmt.Fprintf(&sb, "  (network (id %d)\n", net.ID)
		sb.WriteString("    (common")
		for _, c := range net.Common {
			fmt.Fprintf(&sb, " (bit %s %d)", atom(c.Descriptor), c.Count)
		}
		sb.WriteString(")")
		for _, m := range net.Members {
			fmt.Fprintf(&sb, "\n    (member (pin %s) (key %s) (signals%s) (bits%s))",
				atom(m.Pin), atom(m.Key), atomList(m.Signals, atom), atomList(m.Distinguishing, atom))
		}
		sb.WriteString(")\n")
	}
	sb.WriteString(")\n")
	return sb.String()
}

// placeholderAtom stands in for quoted text when checking list structure;
// the sexp lexer does not honour quotes, so parens inside names would
// otherwise be read as list delimiters.
func placeholderAtom(string) string {
	return `"_"`
}

// checkSexp verifies that skeleton is exactly one list.
func checkSexp(skeleton string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("network: invalid s-expression export: %v", r)
		}
	}()

	parsed, err := sexp.ParseString(skeleton)
	if err != nil {
		return fmt.Errorf("network: invalid s-expression export: %w", err)
	}
	if len(parsed) != 1 || parsed[0].IsLeaf() {
		return fmt.Errorf("network: s-expression export has %d top-level forms", len(parsed))
	}
	return nil
}

// Write encodes rep in the given format.
func Write(w io.Writer, rep *Report, format Format) error {
	switch format {
	case FormatText, "":
		return WriteText(w, rep)
	case FormatJSON:
		data, err := ExportJSON(rep)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatCBOR:
		data, err := ExportCBOR(rep)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatSexp:
		out, err := ExportSexp(rep)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("network: unknown format %q", format)
}

func atomList(ss []string, atom func(string) string) string {
	var sb strings.Builder
	for _, s := range ss {
		sb.WriteString(" ")
		sb.WriteString(atom(s))
	}
	return sb.String()
}
