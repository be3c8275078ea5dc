// Package host is an in-memory stand-in for the application that owns the
// node graphs. It mutates graphs the way a UI or script would and emits the
// same loosely-ordered signal bursts: per-object events first, then exactly
// one terminator per gesture.
package host

import (
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
)

// Sink receives every raw signal the host emits; in production wiring this
// is the scheduler's Ingest.
type Sink interface {
	Ingest(ev event.Raw) error
}

// Host owns the live graphs and the signal sink.
type Host struct {
	graphs map[graph.ID]*Graph
	sink   Sink
}

// New creates a host wired to the given sink, which may be nil until SetSink
// is called.
func New(sink Sink) *Host {
	return &Host{graphs: make(map[graph.ID]*Graph), sink: sink}
}

// SetSink installs the signal sink. The scheduler needs the host as its live
// graph accessor, so the two are wired in this order: host, scheduler, sink.
func (h *Host) SetSink(sink Sink) { h.sink = sink }

// NewGraph creates an empty live graph with a fresh identity.
func (h *Host) NewGraph(name string) *Graph {
	g := &Graph{
		host:  h,
		id:    graph.ID(uuid.New().String()),
		name:  name,
		nodes: make(map[graph.NodeID]*Node),
		links: make(map[graph.LinkID]graph.LinkInfo),
	}
	h.graphs[g.id] = g
	return g
}

// DeleteGraph removes a graph entirely. Subsequent Topology calls for its ID
// fail with a lookup error; the caller is expected to release the matching
// shadow as well.
func (h *Host) DeleteGraph(id graph.ID) {
	delete(h.graphs, id)
}

// Topology implements graph.Accessor. It snapshots the current node/link
// identity sets without side effects.
func (h *Host) Topology(id graph.ID) (*graph.Topology, error) {
	g, ok := h.graphs[id]
	if !ok {
		return nil, graph.NotFound(id)
	}
	topo := &graph.Topology{
		Nodes: make(map[graph.NodeID]graph.NodeInfo, len(g.nodes)),
		Links: make(map[graph.LinkID]graph.LinkInfo, len(g.links)),
	}
	for nid, n := range g.nodes {
		topo.Nodes[nid] = graph.NodeInfo{ID: nid, Name: n.Name, Reroute: n.Reroute}
	}
	for lid, info := range g.links {
		topo.Links[lid] = info
	}
	return topo, nil
}

func (h *Host) emit(ev event.Raw) {
	if h.sink == nil {
		return
	}
	if err := h.sink.Ingest(ev); err != nil {
		slog.Error("signal dispatch failed", "event", ev, "err", err)
	}
}

// socketID derives a socket's stable identity from its node and name,
// mirroring the hash-based socket IDs of the original host.
func socketID(node graph.NodeID, name string) graph.SocketID {
	sum := blake3.Sum256([]byte(string(node) + name))
	return graph.SocketID(hex.EncodeToString(sum[:8]))
}
