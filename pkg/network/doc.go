// Package network groups pin-mux signals into networks of signals that are
// configured through shared register bits.
//
// # Overview
//
// Two signals are related when their selection conditions test a common
// register bit. The builder:
//  1. Indexes every single bit referenced by every signal (multi-bit
//     descriptors are exploded into their bits)
//  2. Flood-fills from each distinct descriptor, following shared bits,
//     until every signal belongs to exactly one network
//  3. Counts, per network, how many pins reference each bit; bits referenced
//     by more than one pin (or by every pin of the network) are common, the
//     rest distinguish the pin that uses them
//
// # Usage
//
//	pins, err := pinmux.ReadPins(os.Stdin)
//	res := network.Build(pins, network.WithLogger(logger))
//	rep := res.Report(network.DefaultConfig())
//	network.WriteText(os.Stdout, rep)
//
// # Export Formats
//
//   - Text: one "Common bits" line and one line per member pin
//   - JSON: versioned machine-readable report
//   - CBOR: the JSON model in canonical CBOR
//   - S-expression: KiCad-style nested lists
package network
