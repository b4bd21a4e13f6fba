package network

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

// BitCount is a bit together with the number of pins referencing it.
type BitCount struct {
	Bit   pinmux.Bit
	Count int
}

// Member is one pin's share of a network.
type Member struct {
	PinIndex       int
	Pin            *pinmux.Pin
	Signals        []*pinmux.Signal
	Bits           []pinmux.Bit // every bit the member's signals test
	Distinguishing []pinmux.Bit // bits no other pin of the network tests
}

// SignalNames returns the member's signal names, sorted.
func (m *Member) SignalNames() []string {
	names := make([]string, len(m.Signals))
	for i, s := range m.Signals {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names
}

// Network is a maximal set of signals connected through shared bits.
type Network struct {
	ID      int
	Signals []SignalRef
	Members []*Member  // one per pin, in corpus order
	Common  []BitCount // sorted by count descending, then bit
}

// IsCommon reports whether b is one of the network's common bits.
func (n *Network) IsCommon(b pinmux.Bit) bool {
	for _, c := range n.Common {
		if c.Bit == b {
			return true
		}
	}
	return false
}

// Result is the partition of a pin corpus into networks.
type Result struct {
	Pins     []*pinmux.Pin
	Networks []*Network
}

// NetworkOf returns the network containing ref, or nil.
func (r *Result) NetworkOf(ref SignalRef) *Network {
	for _, n := range r.Networks {
		for _, s := range n.Signals {
			if s == ref {
				return n
			}
		}
	}
	return nil
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger for debug output. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) {
		if logger != nil {
			c.logger = logger.With(slog.String("component", "network"))
		}
	}
}

func (c *buildConfig) debug(msg string, attrs ...slog.Attr) {
	if c.logger != nil && c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

// Build partitions every signal of pins into networks. Every signal ends up
// in exactly one network; single-signal networks are kept in the result and
// dropped only when reporting.
//
// Build panics if two networks claim the same common bit, which would mean
// the flood fill split a connected set.
func Build(pins []*pinmux.Pin, opts ...Option) *Result {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	idx := newBitIndex(pins)
	cfg.debug("indexed signals",
		slog.Int("signals", len(idx.refs)),
		slog.Int("bits", len(idx.byBit)),
		slog.Int("seeds", len(idx.seeds)))

	res := &Result{Pins: pins}
	assigned := make(map[SignalRef]bool, len(idx.refs))

	for _, seed := range idx.seeds {
		queue := idx.touching(seed)

		fresh := false
		for _, ref := range queue {
			if !assigned[ref] {
				fresh = true
				break
			}
		}
		if !fresh {
			continue
		}

		sigs := flood(idx, queue)
		for _, ref := range sigs {
			assigned[ref] = true
		}

		net := classify(idx, len(res.Networks), sigs)
		res.Networks = append(res.Networks, net)

		cfg.debug("discovered network",
			slog.Int("id", net.ID),
			slog.String("seed", seed.String()),
			slog.Int("signals", len(net.Signals)),
			slog.Int("common", len(net.Common)))
	}

	assertDisjoint(res.Networks)
	return res
}

// flood collects the transitive closure of queue under bit sharing.
func flood(idx *bitIndex, queue []SignalRef) []SignalRef {
	queued := make(map[SignalRef]bool, len(queue))
	for _, ref := range queue {
		queued[ref] = true
	}

	var members []SignalRef
	for len(queue) > 0 {
		ref := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		members = append(members, ref)

		for _, d := range idx.bySig[ref] {
			for _, b := range d.Explode() {
				for _, next := range idx.byBit[b] {
					if !queued[next] {
						queued[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Less(members[j])
	})
	return members
}

// classify groups a network's signals by pin and splits their bits into
// common and distinguishing sets. Bits are counted once per pin so a pin's
// high and low signal never vote twice.
func classify(idx *bitIndex, id int, sigs []SignalRef) *Network {
	net := &Network{ID: id, Signals: sigs}

	byPin := make(map[int]*Member)
	for _, ref := range sigs {
		m, ok := byPin[ref.Pin]
		if !ok {
			m = &Member{PinIndex: ref.Pin, Pin: idx.pins[ref.Pin]}
			byPin[ref.Pin] = m
			net.Members = append(net.Members, m)
		}
		sig := idx.signal(ref)
		m.Signals = append(m.Signals, sig)
		m.Bits = unionBits(m.Bits, pinmux.Bits(sig.Expr))
	}

	counts := make(map[pinmux.Bit]int)
	for _, m := range net.Members {
		for _, b := range m.Bits {
			counts[b]++
		}
	}

	common := make(map[pinmux.Bit]bool)
	for b, n := range counts {
		if n > 1 || n == len(net.Members) {
			common[b] = true
			net.Common = append(net.Common, BitCount{Bit: b, Count: n})
		}
	}
	sort.Slice(net.Common, func(i, j int) bool {
		a, b := net.Common[i], net.Common[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Bit.Less(b.Bit)
	})

	for _, m := range net.Members {
		m.Distinguishing = []pinmux.Bit{}
		for _, b := range m.Bits {
			if !common[b] {
				m.Distinguishing = append(m.Distinguishing, b)
			}
		}
		sortBits(m.Bits)
		sortBits(m.Distinguishing)
	}

	return net
}

// assertDisjoint panics when a bit is common to more than one network.
func assertDisjoint(nets []*Network) {
	owner := make(map[pinmux.Bit]int)
	for _, n := range nets {
		for _, c := range n.Common {
			if prev, ok := owner[c.Bit]; ok {
				panic(fmt.Sprintf("network: bit %s is common to networks %d and %d", c.Bit, prev, n.ID))
			}
			owner[c.Bit] = n.ID
		}
	}
}

func unionBits(dst, src []pinmux.Bit) []pinmux.Bit {
	for _, b := range src {
		found := false
		for _, d := range dst {
			if d == b {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, b)
		}
	}
	return dst
}

func sortBits(bits []pinmux.Bit) {
	sort.Slice(bits, func(i, j int) bool {
		return bits[i].Less(bits[j])
	})
}
