package pinmux

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// opPattern finds the first operator within a token.
var opPattern = regexp.MustCompile(`!?=|[&|]`)

var litPattern = regexp.MustCompile(`^[0-9]+$`)

var errNoMatch = errors.New("no match")

// operand is either a descriptor or a literal.
type operand struct {
	desc  *Descriptor
	value uint64
}

// parseDescriptor strips a descriptor from the front of the first token.
// A non-empty residual (such as "=1") stays in place as the new first token.
func parseDescriptor(toks []string) (Descriptor, []string, error) {
	if len(toks) == 0 {
		return Descriptor{}, toks, errNoMatch
	}
	d, rest, err := stripDescriptor(toks[0])
	if errors.Is(err, ErrNoDescriptor) {
		return Descriptor{}, toks, errNoMatch
	}
	if err != nil {
		return Descriptor{}, toks, err
	}
	return d, replaceHead(toks, rest), nil
}

// parseLiteral consumes a token made only of decimal digits.
func parseLiteral(toks []string) (uint64, []string, error) {
	if len(toks) == 0 || !litPattern.MatchString(toks[0]) {
		return 0, toks, errNoMatch
	}
	v, err := strconv.ParseUint(toks[0], 10, 64)
	if err != nil {
		return 0, toks, fmt.Errorf("literal %q exceeds %d: %w", toks[0], MaxLiteral, err)
	}
	return v, toks[1:], nil
}

// parseArg tries a descriptor first, then a literal.
func parseArg(toks []string) (operand, []string, error) {
	d, rest, err := parseDescriptor(toks)
	if err == nil {
		return operand{desc: &d}, rest, nil
	}
	if !errors.Is(err, errNoMatch) {
		return operand{}, toks, err
	}
	v, rest, err := parseLiteral(toks)
	if err != nil {
		return operand{}, toks, err
	}
	return operand{value: v}, rest, nil
}

// parseOp finds the first operator in the first token. Relational operators
// are cut out of the token because they are usually packed between a
// descriptor and a literal; combinators always stand alone and consume the
// whole token.
func parseOp(toks []string) (Op, []string, bool) {
	if len(toks) == 0 {
		return "", toks, false
	}
	tok := toks[0]
	loc := opPattern.FindStringIndex(tok)
	if loc == nil {
		return "", toks, false
	}
	op := Op(tok[loc[0]:loc[1]])
	if op.IsRelational() {
		return op, replaceHead(toks, tok[:loc[0]]+tok[loc[1]:]), true
	}
	return op, toks[1:], true
}

// parseComparison reads descriptor, relational operator and literal.
func parseComparison(toks []string) (*Simple, []string, error) {
	lhs, rest, err := parseArg(toks)
	if err != nil {
		return nil, toks, err
	}
	if lhs.desc == nil {
		return nil, toks, fmt.Errorf("comparison starts with literal %d", lhs.value)
	}

	op, rest, ok := parseOp(rest)
	if !ok || !op.IsRelational() {
		return nil, toks, fmt.Errorf("%s: expected = or !=", lhs.desc)
	}

	rhs, rest, err := parseArg(rest)
	if err != nil {
		return nil, toks, fmt.Errorf("%s%s: expected literal: %w", lhs.desc, op, err)
	}
	if rhs.desc != nil {
		return nil, toks, fmt.Errorf("%s%s: compared with descriptor %s", lhs.desc, op, rhs.desc)
	}
	return &Simple{Desc: *lhs.desc, Op: op, Value: rhs.value}, rest, nil
}

// parseExpr builds a left-associative tree from comparisons joined by & and
// |. It stops at the first token that does not start with a combinator and
// returns the tokens it did not consume.
func parseExpr(toks []string) (Expr, []string, error) {
	first, toks, err := parseComparison(toks)
	if err != nil {
		return nil, toks, err
	}

	var acc Expr = first
	for {
		op, rest, ok := parseOp(toks)
		if !ok || op.IsRelational() {
			return acc, toks, nil
		}
		next, rest, err := parseComparison(rest)
		if err != nil {
			return nil, toks, fmt.Errorf("after %s: %w", op, err)
		}
		acc = &Compound{Op: op, Left: acc, Right: next}
		toks = rest
	}
}

// ParseExpr parses a whole token sequence as one expression.
func ParseExpr(toks []string) (Expr, error) {
	e, rest, err := parseExpr(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected %q", rest[0])
	}
	return e, nil
}

// parseSignal reads a signal name followed by its condition. It returns
// nil when no tokens are left.
func parseSignal(toks []string) (*Signal, []string, error) {
	if len(toks) == 0 {
		return nil, nil, nil
	}
	name := toks[0]
	e, rest, err := parseExpr(toks[1:])
	if err != nil {
		if err == errNoMatch {
			err = errors.New("no condition")
		}
		return nil, toks, fmt.Errorf("signal %s: %w", name, err)
	}
	return &Signal{Name: name, Expr: e}, rest, nil
}

// replaceHead swaps the first token for s, dropping it when s is empty.
func replaceHead(toks []string, s string) []string {
	if s == "" {
		return toks[1:]
	}
	out := make([]string, len(toks))
	copy(out, toks)
	out[0] = s
	return out
}
