package pinmux

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// DescriptorLexer defines the lexical structure of a bit-descriptor such as
// SCU70[3:1,7] or Strap[0].
var DescriptorLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Register names must come before integers so SCU70 is not split
	{Name: "Register", Pattern: `SCU[A-F0-9]+|Strap|SIORD_30`},
	{Name: "Int", Pattern: `[0-9]+`},

	// Brackets and bit-spec separators
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
})

// descriptorText is the grammar for a bracketed descriptor.
type descriptorText struct {
	Register string      `@Register`
	Specs    []*bitRange `LBracket @@ ( Comma @@ )* RBracket`
}

// bitRange is either a single index or an inclusive hi:lo range. Indexes
// are captured as text and converted as decimal.
type bitRange struct {
	Hi string  `@Int`
	Lo *string `( Colon @Int )?`
}
