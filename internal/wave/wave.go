// Package wave buffers raw mutation signals until a coherent wave has
// finished and classifies the finished wave into domain change events.
package wave

import (
	"errors"
	"fmt"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/shadow"
)

// ErrNotEnded is returned when classification is requested before the wave
// has seen a terminator event. That is a contract violation by the
// orchestrator, not a runtime condition to recover from.
var ErrNotEnded = errors.New("wave has not ended")

// Flags are the coarse derived facts recorded on a wave during topology-diff
// classification.
type Flags struct {
	LinksAdded      bool
	LinksRemoved    bool
	ReroutesAdded   bool
	ReroutesRemoved bool
}

// Wave is the ordered batch of raw signals accumulated since the previous
// dispatch. Created empty, appended to by every incoming signal, consumed
// exactly once when ended, then discarded.
type Wave struct {
	events []event.Raw
	flags  Flags
}

// New creates an empty wave.
func New() *Wave {
	return &Wave{}
}

// Append buffers one raw event in arrival order. Non-informative signals are
// dropped; the return value reports whether the event was kept.
func (w *Wave) Append(ev event.Raw) bool {
	if !ev.IsInformative() {
		return false
	}
	w.events = append(w.events, ev)
	return true
}

// Len returns the number of buffered events.
func (w *Wave) Len() int { return len(w.events) }

// Events returns the buffered events in arrival order.
func (w *Wave) Events() []event.Raw { return w.events }

// Flags returns the coarse facts derived during classification.
func (w *Wave) Flags() Flags { return w.flags }

// Ended reports whether the most recently appended event is a terminator. A
// wave that never sees one simply never dispatches.
func (w *Wave) Ended() bool {
	return len(w.events) > 0 && w.events[len(w.events)-1].IsTerminator()
}

// Convert classifies the ended wave into domain events, in the order the raw
// events arrived.
//
// Two paths exist because the host reports direct-manipulation edits at
// coarse granularity (one ambiguous tree-update signal) but procedural edits
// precisely per object. When the wave opens with a topology signal the raw
// kind tags cannot be trusted, so the live topology is diffed against the
// shadow instead; otherwise each raw event maps one-to-one through a fixed
// table.
func (w *Wave) Convert(reg *shadow.Registry, acc graph.Accessor) ([]event.Domain, error) {
	if !w.Ended() {
		return nil, ErrNotEnded
	}
	if w.events[0].IsTopology() {
		return w.convertByDiff(reg, acc)
	}
	var out []event.Domain
	for _, raw := range w.events {
		if dev, ok := raw.Convert(); ok {
			out = append(out, dev)
		}
	}
	return out, nil
}

// convertByDiff derives what actually changed by comparing the live graph's
// node/link identity sets against the shadow snapshot.
func (w *Wave) convertByDiff(reg *shadow.Registry, acc graph.Accessor) ([]event.Domain, error) {
	id := w.events[0].Graph
	topo, err := acc.Topology(id)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	delta := reg.Tree(id).Diff(topo)

	w.flags.LinksAdded = len(delta.LinksAdded) > 0
	w.flags.LinksRemoved = len(delta.LinksRemoved) > 0
	for _, n := range delta.NodesAdded {
		if n.Reroute {
			w.flags.ReroutesAdded = true
		}
	}
	for _, n := range delta.NodesRemoved {
		if n.Reroute {
			w.flags.ReroutesRemoved = true
		}
	}

	var out []event.Domain
	for _, n := range delta.NodesAdded {
		out = append(out, event.Domain{Kind: event.NodeAdded, Graph: id, Node: n.ID})
	}
	for _, n := range delta.NodesRemoved {
		out = append(out, event.Domain{Kind: event.NodeFreed, Graph: id, Node: n.ID})
	}
	for _, l := range delta.LinksAdded {
		out = append(out, event.Domain{Kind: event.LinkChanged, Graph: id, Node: l.ToNode, Link: l.ID})
	}
	for _, l := range delta.LinksRemoved {
		// The downstream endpoint is only worth recomputing if it still
		// exists.
		dev := event.Domain{Kind: event.LinkChanged, Graph: id, Link: l.ID}
		if _, alive := topo.Nodes[l.ToNode]; alive {
			dev.Node = l.ToNode
		}
		out = append(out, dev)
	}
	return out, nil
}
