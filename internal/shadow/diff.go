package shadow

import (
	"sort"

	"github.com/atsal/nodewave/internal/graph"
)

// Delta is the result of one set-difference between a shadow tree and a live
// topology: everything present live but not shadowed, and vice versa.
type Delta struct {
	NodesAdded   []graph.NodeInfo
	NodesRemoved []*Node
	LinksAdded   []graph.LinkInfo
	LinksRemoved []*Link
}

// Empty reports whether the two topologies had identical key sets.
func (d Delta) Empty() bool {
	return len(d.NodesAdded) == 0 && len(d.NodesRemoved) == 0 &&
		len(d.LinksAdded) == 0 && len(d.LinksRemoved) == 0
}

// Diff compares the shadow's node/link identity sets against a live topology
// snapshot. Results are sorted by ID so callers see a stable order.
func (t *Tree) Diff(topo *graph.Topology) Delta {
	var d Delta
	for id, info := range topo.Nodes {
		if _, ok := t.nodes[id]; !ok {
			d.NodesAdded = append(d.NodesAdded, info)
		}
	}
	for id, n := range t.nodes {
		if _, ok := topo.Nodes[id]; !ok {
			d.NodesRemoved = append(d.NodesRemoved, n)
		}
	}
	for id, info := range topo.Links {
		if _, ok := t.links[id]; !ok {
			d.LinksAdded = append(d.LinksAdded, info)
		}
	}
	for id, l := range t.links {
		if _, ok := topo.Links[id]; !ok {
			d.LinksRemoved = append(d.LinksRemoved, l)
		}
	}
	sort.Slice(d.NodesAdded, func(i, j int) bool { return d.NodesAdded[i].ID < d.NodesAdded[j].ID })
	sort.Slice(d.NodesRemoved, func(i, j int) bool { return d.NodesRemoved[i].ID < d.NodesRemoved[j].ID })
	sort.Slice(d.LinksAdded, func(i, j int) bool { return d.LinksAdded[i].ID < d.LinksAdded[j].ID })
	sort.Slice(d.LinksRemoved, func(i, j int) bool { return d.LinksRemoved[i].ID < d.LinksRemoved[j].ID })
	return d
}

// Matches reports whether the shadow's node/link key sets equal the live
// topology's. Used by the debug self-check after reconciliation.
func (t *Tree) Matches(topo *graph.Topology) bool {
	if len(t.nodes) != len(topo.Nodes) || len(t.links) != len(topo.Links) {
		return false
	}
	for id := range topo.Nodes {
		if _, ok := t.nodes[id]; !ok {
			return false
		}
	}
	for id := range topo.Links {
		if _, ok := t.links[id]; !ok {
			return false
		}
	}
	return true
}
