package network

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

func parseTable(t *testing.T, table string) []*pinmux.Pin {
	t.Helper()
	pins, err := pinmux.ParsePins(strings.Split(table, "\n"))
	require.NoError(t, err)
	return pins
}

func bit(reg string, i int) pinmux.Bit {
	return pinmux.Bit{Register: reg, Index: i}
}

const ast2400Sample = `
D6 GPIOA0 MAC1LINK SCU80[0]=1 TIMER1 SCU80[16]=1 GPIOA
B5 GPIOA1 MAC2LINK SCU80[0]=1 TIMER2 SCU80[17]=1 GPIOA
A4 GPIOA2 TIMER3 SCU80[2]=1 GPIOA
C5 GPIOB0 SALT1 SCU80[8]=1 & SCU70[0]=0 GPIOB
D5 GPIOB1 SALT2 SCU80[9]=1 & SCU70[0]=0 LPCRST SCU80[9]=0 GPIOB
E6 ROMA2 VPIB0 SCU90[5:4]=2 VPIOB0 SCU94[0]=1 & SCU90[5]=1 ROM
`

func TestBuildSharedBitScenario(t *testing.T) {
	pins := parseTable(t, `
A1 GPIOC0 SIG1 SCU80[0]=1 & SCU84[3]=1 GPIOC
A2 GPIOC1 SIG2 SCU80[0]=1 | Strap[5]=0 GPIOC
`)

	res := Build(pins)
	require.Len(t, res.Networks, 1)

	net := res.Networks[0]
	assert.Equal(t, []SignalRef{{Pin: 0, Slot: High}, {Pin: 1, Slot: High}}, net.Signals)
	assert.Equal(t, []BitCount{{Bit: bit("SCU80", 0), Count: 2}}, net.Common)
	assert.True(t, net.IsCommon(bit("SCU80", 0)))
	assert.False(t, net.IsCommon(bit("SCU84", 3)))

	require.Len(t, net.Members, 2)
	assert.Equal(t, []pinmux.Bit{bit("SCU84", 3)}, net.Members[0].Distinguishing)
	assert.Equal(t, []pinmux.Bit{bit("Strap", 5)}, net.Members[1].Distinguishing)
}

func TestBuildPartition(t *testing.T) {
	pins := parseTable(t, ast2400Sample)
	res := Build(pins)

	total := 0
	for _, p := range pins {
		total += len(p.Signals())
	}

	seen := make(map[SignalRef]int)
	for _, net := range res.Networks {
		require.NotEmpty(t, net.Signals)
		for _, ref := range net.Signals {
			seen[ref]++
		}
	}

	assert.Len(t, seen, total, "every signal belongs to a network")
	for ref, n := range seen {
		assert.Equal(t, 1, n, "signal %+v in %d networks", ref, n)
	}
}

func TestBuildNetworks(t *testing.T) {
	pins := parseTable(t, ast2400Sample)
	res := Build(pins)

	// MAC1LINK+MAC2LINK share SCU80[0]
	mac := res.NetworkOf(SignalRef{Pin: 0, Slot: High})
	require.NotNil(t, mac)
	assert.Equal(t, []SignalRef{{Pin: 0, Slot: High}, {Pin: 1, Slot: High}}, mac.Signals)

	// TIMER1 tests nothing anyone else does
	timer := res.NetworkOf(SignalRef{Pin: 0, Slot: Low})
	require.NotNil(t, timer)
	assert.Len(t, timer.Signals, 1)
	assert.NotSame(t, mac, timer)

	// SALT1, SALT2 and LPCRST are tied through SCU70[0] and SCU80[9]
	salt := res.NetworkOf(SignalRef{Pin: 3, Slot: High})
	require.NotNil(t, salt)
	assert.Equal(t, []SignalRef{
		{Pin: 3, Slot: High},
		{Pin: 4, Slot: High},
		{Pin: 4, Slot: Low},
	}, salt.Signals)
	assert.Equal(t, []BitCount{{Bit: bit("SCU70", 0), Count: 2}}, salt.Common)

	require.Len(t, salt.Members, 2)
	assert.Equal(t, []pinmux.Bit{bit("SCU80", 8)}, salt.Members[0].Distinguishing)
	assert.Equal(t, []pinmux.Bit{bit("SCU80", 9)}, salt.Members[1].Distinguishing)
	assert.Equal(t, []string{"LPCRST", "SALT2"}, salt.Members[1].SignalNames())
}

func TestBuildSinglePinNetwork(t *testing.T) {
	// VPIB0 and VPIOB0 live on the same pin and share SCU90[5]
	pins := parseTable(t, ast2400Sample)
	res := Build(pins)

	net := res.NetworkOf(SignalRef{Pin: 5, Slot: High})
	require.NotNil(t, net)
	require.Len(t, net.Signals, 2)
	require.Len(t, net.Members, 1)

	// With one pin every bit is referenced by all pins, so all are common
	assert.Equal(t, []BitCount{
		{Bit: bit("SCU90", 4), Count: 1},
		{Bit: bit("SCU90", 5), Count: 1},
		{Bit: bit("SCU94", 0), Count: 1},
	}, net.Common)
	assert.Empty(t, net.Members[0].Distinguishing)
}

func TestBuildMultiBitDescriptorsConnect(t *testing.T) {
	pins := parseTable(t, `
B1 GPIOD0 SD1CLK SCU90[3:0]=1 GPIOD
B2 GPIOD1 SD1CMD SCU90[2]=1 GPIOD
B3 GPIOD2 SD2CLK SCU90[7:4]=1 GPIOD
`)

	res := Build(pins)
	require.Len(t, res.Networks, 2)

	net := res.NetworkOf(SignalRef{Pin: 1, Slot: High})
	require.NotNil(t, net)
	assert.Equal(t, []SignalRef{{Pin: 0, Slot: High}, {Pin: 1, Slot: High}}, net.Signals)
	assert.Equal(t, []BitCount{{Bit: bit("SCU90", 2), Count: 2}}, net.Common)
	assert.Equal(t, []pinmux.Bit{bit("SCU90", 0), bit("SCU90", 1), bit("SCU90", 3)}, net.Members[0].Distinguishing)

	alone := res.NetworkOf(SignalRef{Pin: 2, Slot: High})
	require.NotNil(t, alone)
	assert.Len(t, alone.Signals, 1)
}

func TestBuildTransitive(t *testing.T) {
	pins := parseTable(t, `
C1 GPIOE0 A SCU80[0]=1 GPIOE
C2 GPIOE1 B SCU80[0]=0 & SCU80[1]=1 GPIOE
C3 GPIOE2 C SCU80[1]=0 & SCU80[2]=1 GPIOE
C4 GPIOE3 D SCU80[2]=0 GPIOE
`)

	res := Build(pins)
	require.Len(t, res.Networks, 1)
	assert.Len(t, res.Networks[0].Signals, 4)
	assert.Equal(t, []BitCount{
		{Bit: bit("SCU80", 0), Count: 2},
		{Bit: bit("SCU80", 1), Count: 2},
		{Bit: bit("SCU80", 2), Count: 2},
	}, res.Networks[0].Common)
}

func TestBuildCommonBitsDisjoint(t *testing.T) {
	pins := parseTable(t, ast2400Sample)
	res := Build(pins)

	owner := make(map[pinmux.Bit]int)
	for _, net := range res.Networks {
		for _, c := range net.Common {
			prev, dup := owner[c.Bit]
			assert.False(t, dup, "bit %s common to networks %d and %d", c.Bit, prev, net.ID)
			owner[c.Bit] = net.ID
		}
	}
}

func TestSignalRefOrdering(t *testing.T) {
	assert.True(t, SignalRef{Pin: 0, Slot: Low}.Less(SignalRef{Pin: 1, Slot: High}))
	assert.True(t, SignalRef{Pin: 1, Slot: High}.Less(SignalRef{Pin: 1, Slot: Low}))
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "low", Low.String())
}

func TestAssertDisjointPanics(t *testing.T) {
	shared := []BitCount{{Bit: bit("SCU80", 0), Count: 2}}
	nets := []*Network{{ID: 0, Common: shared}, {ID: 1, Common: shared}}
	assert.Panics(t, func() { assertDisjoint(nets) })
}

func TestBuildEmpty(t *testing.T) {
	res := Build(nil)
	assert.Empty(t, res.Networks)
	assert.Empty(t, res.Report(nil).Networks)
}
