package network

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReportVersion is the version of the structured report layout.
const ReportVersion = "1.0"

// Report is the printable view of a Result.
type Report struct {
	Version      string          `json:"version" cbor:"version"`
	NetworkCount int             `json:"network_count" cbor:"network_count"`
	SortBy       string          `json:"sort_by" cbor:"sort_by"`
	Networks     []NetworkRecord `json:"networks" cbor:"networks"`
	GeneratedBy  string          `json:"generated_by" cbor:"generated_by"`
}

// NetworkRecord describes one reported network.
type NetworkRecord struct {
	ID      int            `json:"network_id" cbor:"network_id"`
	Common  []CommonBit    `json:"common_bits" cbor:"common_bits"`
	Members []MemberRecord `json:"members" cbor:"members"`
}

// CommonBit is a shared bit and the number of pins testing it.
type CommonBit struct {
	Descriptor string `json:"descriptor" cbor:"descriptor"`
	Count      int    `json:"count" cbor:"count"`
}

// MemberRecord is one pin of a reported network.
type MemberRecord struct {
	Pin            string   `json:"pin" cbor:"pin"`
	Key            string   `json:"key" cbor:"key"`
	Signals        []string `json:"signals" cbor:"signals"`
	Distinguishing []string `json:"distinguishing_bits" cbor:"distinguishing_bits"`
}

// Report selects and orders the networks cfg asks for. Members are sorted
// by cfg.SortBy, ties broken by pin name.
func (r *Result) Report(cfg *Config) *Report {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rep := &Report{
		Version:     ReportVersion,
		SortBy:      string(cfg.SortBy),
		Networks:    []NetworkRecord{},
		GeneratedBy: "pinmux network analysis",
	}

	for _, net := range r.Networks {
		if !cfg.ShouldReport(net) {
			continue
		}

		rec := NetworkRecord{ID: net.ID, Common: make([]CommonBit, 0, len(net.Common))}
		for _, c := range net.Common {
			rec.Common = append(rec.Common, CommonBit{Descriptor: c.Bit.String(), Count: c.Count})
		}

		members := make([]*Member, len(net.Members))
		copy(members, net.Members)
		sort.SliceStable(members, func(i, j int) bool {
			ki, kj := members[i].Pin.Key(cfg.SortBy), members[j].Pin.Key(cfg.SortBy)
			if ki != kj {
				return ki < kj
			}
			return members[i].Pin.Name < members[j].Pin.Name
		})

		for _, m := range members {
			mr := MemberRecord{
				Pin:            m.Pin.Name,
				Key:            m.Pin.Key(cfg.SortBy),
				Signals:        m.SignalNames(),
				Distinguishing: make([]string, 0, len(m.Distinguishing)),
			}
			for _, b := range m.Distinguishing {
				mr.Distinguishing = append(mr.Distinguishing, b.String())
			}
			rec.Members = append(rec.Members, mr)
		}

		rep.Networks = append(rep.Networks, rec)
	}

	rep.NetworkCount = len(rep.Networks)
	return rep
}

// WriteText writes the human-readable report:
//
//	Common bits: [(SCU80[0], 2)]
//	('GPIOA', 'MAC1LINK'): {SCU80[1]}
//	('GPIOA', 'MAC2LINK'): {SCU80[2]}
func WriteText(w io.Writer, rep *Report) error {
	var sb strings.Builder
	for _, net := range rep.Networks {
		common := make([]string, len(net.Common))
		for i, c := range net.Common {
			common[i] = fmt.Sprintf("(%s, %d)", c.Descriptor, c.Count)
		}
		fmt.Fprintf(&sb, "Common bits: [%s]\n", strings.Join(common, ", "))

		for _, m := range net.Members {
			fmt.Fprintf(&sb, "('%s', '%s'): {%s}\n",
				m.Key, strings.Join(m.Signals, ", "), strings.Join(m.Distinguishing, ", "))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
