package pinmux

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var (
	// ErrNoDescriptor is returned when text does not start with a descriptor.
	ErrNoDescriptor = errors.New("pinmux: no descriptor")
	// ErrBadBitSpec is returned for reversed ranges or out-of-range bits.
	ErrBadBitSpec = errors.New("pinmux: bad bit specification")
)

// MaxBit is the highest bit index a descriptor may name.
const MaxBit = 63

// MaxLiteral is the largest value a comparison may test. Literals are read
// as decimal uint64; a longer literal makes its line malformed.
const MaxLiteral uint64 = math.MaxUint64

// descriptorPrefix locates a descriptor at the start of a token.
var descriptorPrefix = regexp.MustCompile(`^(SCU[A-F0-9]+|Strap|SIORD_30)\[[0-9:,]+\]`)

// Parser parses bracketed descriptor text.
type Parser struct {
	parser *participle.Parser[descriptorText]
}

// NewParser creates a new descriptor parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[descriptorText](
		participle.Lexer(DescriptorLexer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

var defaultParser = mustNewParser()

func mustNewParser() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

// BitSet is a set of bit positions within one register.
type BitSet uint64

// Has reports whether bit i is in the set.
func (s BitSet) Has(i int) bool {
	return i >= 0 && i <= MaxBit && s&(1<<uint(i)) != 0
}

// Len returns the number of bits in the set.
func (s BitSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Indexes returns the bit positions in ascending order.
func (s BitSet) Indexes() []int {
	out := make([]int, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

// Descriptor names a register and a set of bits within it. It is a
// comparable value and can be used as a map key.
type Descriptor struct {
	Register string
	Bits     BitSet
}

// Bit is a single register bit, the unit the network builder indexes by.
type Bit struct {
	Register string
	Index    int
}

func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}

// Less orders bits by register name, then index.
func (b Bit) Less(o Bit) bool {
	if b.Register != o.Register {
		return b.Register < o.Register
	}
	return b.Index < o.Index
}

// Explode splits the descriptor into its individual bits, lowest first.
func (d Descriptor) Explode() []Bit {
	idx := d.Bits.Indexes()
	out := make([]Bit, len(idx))
	for i, n := range idx {
		out[i] = Bit{Register: d.Register, Index: n}
	}
	return out
}

// Overlaps reports whether both descriptors share a register bit.
func (d Descriptor) Overlaps(o Descriptor) bool {
	return d.Register == o.Register && d.Bits&o.Bits != 0
}

// String renders the descriptor with contiguous runs collapsed to hi:lo,
// highest bits first. The result parses back to the same value.
func (d Descriptor) String() string {
	idx := d.Bits.Indexes()
	var parts []string
	for i := len(idx) - 1; i >= 0; {
		hi := idx[i]
		j := i
		for j > 0 && idx[j-1] == idx[j]-1 {
			j--
		}
		lo := idx[j]
		if hi == lo {
			parts = append(parts, strconv.Itoa(hi))
		} else {
			parts = append(parts, fmt.Sprintf("%d:%d", hi, lo))
		}
		i = j - 1
	}
	return fmt.Sprintf("%s[%s]", d.Register, strings.Join(parts, ","))
}

// ParseDescriptor parses descriptor text such as "SCU70[3:1,7]".
func ParseDescriptor(text string) (Descriptor, error) {
	return defaultParser.ParseString(text)
}

// ParseString parses a whole descriptor; trailing text is an error.
func (p *Parser) ParseString(text string) (Descriptor, error) {
	d, rest, err := p.strip(text)
	if err != nil {
		return Descriptor{}, err
	}
	if rest != "" {
		return Descriptor{}, fmt.Errorf("%w: trailing text %q", ErrNoDescriptor, rest)
	}
	return d, nil
}

// stripDescriptor parses the descriptor at the start of tok and returns the
// residual text, e.g. "SCU70[0]=1" yields SCU70[0] and "=1".
func stripDescriptor(tok string) (Descriptor, string, error) {
	return defaultParser.strip(tok)
}

func (p *Parser) strip(tok string) (Descriptor, string, error) {
	loc := descriptorPrefix.FindStringIndex(tok)
	if loc == nil {
		return Descriptor{}, tok, ErrNoDescriptor
	}

	ast, err := p.parser.ParseString("", tok[:loc[1]])
	if err != nil {
		return Descriptor{}, tok, fmt.Errorf("%w: %v", ErrBadBitSpec, err)
	}

	var set BitSet
	for _, r := range ast.Specs {
		hi, err := strconv.Atoi(r.Hi)
		if err != nil {
			return Descriptor{}, tok, fmt.Errorf("%w: %v", ErrBadBitSpec, err)
		}
		lo := hi
		if r.Lo != nil {
			if lo, err = strconv.Atoi(*r.Lo); err != nil {
				return Descriptor{}, tok, fmt.Errorf("%w: %v", ErrBadBitSpec, err)
			}
		}
		if lo > hi {
			return Descriptor{}, tok, fmt.Errorf("%w: range %d:%d in %s", ErrBadBitSpec, hi, lo, tok[:loc[1]])
		}
		if hi > MaxBit {
			return Descriptor{}, tok, fmt.Errorf("%w: bit %d exceeds %d in %s", ErrBadBitSpec, hi, MaxBit, tok[:loc[1]])
		}
		for i := lo; i <= hi; i++ {
			set |= 1 << uint(i)
		}
	}

	return Descriptor{Register: ast.Register, Bits: set}, tok[loc[1]:], nil
}
