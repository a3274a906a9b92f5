package nets

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/wiregraph/pkg/topo"
)

// Report is the serializable form of a [Result], as handed to netlist
// writers, caches and the HTTP API.
type Report struct {
	Nets        []Net         `json:"nets"`
	Junctions   []Junction    `json:"junctions"`
	Warnings    []Warning     `json:"warnings,omitempty"`
	Unconnected []topo.PinRef `json:"unconnected,omitempty"`
}

// Report summarizes r for the given pins, which are checked for
// connectivity.
func (r *Result) Report(ps []Pin) Report {
	rep := Report{
		Nets:        r.Nets,
		Junctions:   r.Junctions,
		Warnings:    r.Warnings,
		Unconnected: r.Unconnected(ps),
	}
	if rep.Nets == nil {
		rep.Nets = []Net{}
	}
	if rep.Junctions == nil {
		rep.Junctions = []Junction{}
	}
	return rep
}

// WriteText writes one line per net, "NAME pin pin ...", followed by a
// line per unconnected pin and per warning. Nets without pins are listed
// with their anchor so that floating wires stay visible.
//
//	0 R1.2 V1.-
//	N001 R1.1 V1.+
//	N002 (40,10)
//	nc U1.3
//	warning multiple_ground: 2 separate ground clusters
func (rep Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range rep.Nets {
		fields := []string{n.Name}
		if len(n.Pins) == 0 {
			fields = append(fields, n.Anchor.String())
		}
		for _, p := range n.Pins {
			fields = append(fields, p.String())
		}
		fmt.Fprintln(bw, strings.Join(fields, " "))
	}
	for _, p := range rep.Unconnected {
		fmt.Fprintf(bw, "nc %s\n", p)
	}
	for _, wn := range rep.Warnings {
		fmt.Fprintf(bw, "warning %s: %s\n", wn.Code, wn.Message)
	}
	return bw.Flush()
}
