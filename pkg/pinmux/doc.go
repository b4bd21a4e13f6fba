// Package pinmux parses multiplexed pin-description tables.
//
// Each line of a table describes one pin: its name, its default function,
// up to two alternate signals with the register conditions that select
// them, and a trailing group label:
//
//	D6 GPIOA0 MAC1LINK SCU80[0]=1 TIMER1 SCU80[0]=0 & Strap[4]=1 GPIOA
//
// Conditions compare bit-descriptors (a register name and a set of bit
// positions, e.g. SCU70[3:1,7]) against literals with = or !=, joined left
// to right with & and |. Descriptor and operator may be packed into one
// token or separated by spaces.
package pinmux
