package network

import (
	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

// Slot distinguishes a pin's high and low signal.
type Slot int

const (
	High Slot = iota
	Low
)

func (s Slot) String() string {
	if s == Low {
		return "low"
	}
	return "high"
}

// SignalRef identifies a signal by its pin's position in the corpus and its
// slot, so identical signals on different pins stay distinct.
type SignalRef struct {
	Pin  int
	Slot Slot
}

// Less orders refs by pin position, then slot.
func (r SignalRef) Less(o SignalRef) bool {
	if r.Pin != o.Pin {
		return r.Pin < o.Pin
	}
	return r.Slot < o.Slot
}

// bitIndex maps each single register bit to the signals that test it.
type bitIndex struct {
	pins  []*pinmux.Pin
	refs  []SignalRef
	bySig map[SignalRef][]pinmux.Descriptor
	byBit map[pinmux.Bit][]SignalRef
	seeds []pinmux.Descriptor
}

func newBitIndex(pins []*pinmux.Pin) *bitIndex {
	idx := &bitIndex{
		pins:  pins,
		bySig: make(map[SignalRef][]pinmux.Descriptor),
		byBit: make(map[pinmux.Bit][]SignalRef),
	}

	seenSeed := make(map[pinmux.Descriptor]bool)
	for i, pin := range pins {
		for slot, sig := range pin.Signals() {
			ref := SignalRef{Pin: i, Slot: Slot(slot)}
			descs := pinmux.Descriptors(sig.Expr)

			idx.refs = append(idx.refs, ref)
			idx.bySig[ref] = descs

			for _, d := range descs {
				if !seenSeed[d] {
					seenSeed[d] = true
					idx.seeds = append(idx.seeds, d)
				}
				for _, b := range d.Explode() {
					idx.add(b, ref)
				}
			}
		}
	}
	return idx
}

func (idx *bitIndex) add(b pinmux.Bit, ref SignalRef) {
	sigs := idx.byBit[b]
	for _, s := range sigs {
		if s == ref {
			return
		}
	}
	idx.byBit[b] = append(sigs, ref)
}

// signal resolves a ref against the corpus.
func (idx *bitIndex) signal(ref SignalRef) *pinmux.Signal {
	pin := idx.pins[ref.Pin]
	if ref.Slot == Low {
		return pin.Low
	}
	return pin.High
}

// touching returns every signal testing any bit of d.
func (idx *bitIndex) touching(d pinmux.Descriptor) []SignalRef {
	var out []SignalRef
	seen := make(map[SignalRef]bool)
	for _, b := range d.Explode() {
		for _, ref := range idx.byBit[b] {
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out
}
