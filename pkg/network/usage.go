package network

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/pinmux"
)

// SignalUse is one signal whose condition tests a descriptor.
type SignalUse struct {
	Ref    SignalRef
	Key    string
	Signal string
}

// DescriptorUsage lists the signals testing one descriptor.
type DescriptorUsage struct {
	Descriptor pinmux.Descriptor
	Users      []SignalUse
}

// Usage returns every distinct descriptor in the corpus, in order of first
// appearance, with the signals that test it. Keys come from sortBy.
// Descriptors are matched exactly; overlapping descriptors are listed apart.
func Usage(pins []*pinmux.Pin, sortBy pinmux.Field) []DescriptorUsage {
	idx := newBitIndex(pins)

	users := make(map[pinmux.Descriptor][]SignalUse, len(idx.seeds))
	for _, ref := range idx.refs {
		seen := make(map[pinmux.Descriptor]bool)
		for _, d := range idx.bySig[ref] {
			if seen[d] {
				continue
			}
			seen[d] = true
			users[d] = append(users[d], SignalUse{
				Ref:    ref,
				Key:    idx.pins[ref.Pin].Key(sortBy),
				Signal: idx.signal(ref).Name,
			})
		}
	}

	out := make([]DescriptorUsage, 0, len(idx.seeds))
	for _, d := range idx.seeds {
		out = append(out, DescriptorUsage{Descriptor: d, Users: users[d]})
	}
	return out
}

// WriteUsage writes one line per descriptor:
//
//	SCU80[0]: [('GPIOA', 'MAC1LINK'), ('GPIOA', 'MAC2LINK')]
func WriteUsage(w io.Writer, usage []DescriptorUsage) error {
	var sb strings.Builder
	for _, u := range usage {
		users := make([]string, len(u.Users))
		for i, s := range u.Users {
			users[i] = fmt.Sprintf("('%s', '%s')", s.Key, s.Signal)
		}
		fmt.Fprintf(&sb, "%s: [%s]\n", u.Descriptor, strings.Join(users, ", "))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
