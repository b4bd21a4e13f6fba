package pinmux

import "fmt"

// Op is a comparison or combining operator.
type Op string

const (
	OpEq  Op = "="
	OpNe  Op = "!="
	OpAnd Op = "&"
	OpOr  Op = "|"
)

// IsRelational reports whether op compares a descriptor with a literal.
func (op Op) IsRelational() bool {
	return op == OpEq || op == OpNe
}

// Expr is a node of a selection condition: either a *Simple comparison or
// a *Compound combination of two sub-expressions.
type Expr interface {
	isExpr()
	String() string
}

// Simple compares a descriptor with a literal, e.g. SCU80[0]=1.
type Simple struct {
	Desc  Descriptor
	Op    Op
	Value uint64
}

func (*Simple) isExpr() {}

func (s *Simple) String() string {
	return fmt.Sprintf("%s%s%d", s.Desc, s.Op, s.Value)
}

// Compound joins two expressions with & or |.
type Compound struct {
	Op          Op
	Left, Right Expr
}

func (*Compound) isExpr() {}

func (c *Compound) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

// IsCompound reports whether e combines sub-expressions.
func IsCompound(e Expr) bool {
	_, ok := e.(*Compound)
	return ok
}

// Descriptors returns every descriptor tested anywhere in e, in source
// order. AND/OR structure does not affect the result.
func Descriptors(e Expr) []Descriptor {
	var out []Descriptor
	collectDescriptors(e, &out)
	return out
}

func collectDescriptors(e Expr, out *[]Descriptor) {
	switch n := e.(type) {
	case *Simple:
		*out = append(*out, n.Desc)
	case *Compound:
		if n.Left == nil || n.Right == nil {
			panic(fmt.Sprintf("pinmux: compound %q with missing operand", n.Op))
		}
		collectDescriptors(n.Left, out)
		collectDescriptors(n.Right, out)
	default:
		panic(fmt.Sprintf("pinmux: unknown expression node %T", e))
	}
}

// Bits returns the distinct single bits referenced by e.
func Bits(e Expr) []Bit {
	seen := make(map[Bit]bool)
	var out []Bit
	for _, d := range Descriptors(e) {
		for _, b := range d.Explode() {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}
