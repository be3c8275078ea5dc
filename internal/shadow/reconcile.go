package shadow

import (
	"fmt"
	"log/slog"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/metrics"
)

// Reconciler applies classified structural events to shadow trees so that the
// next wave diffs against current truth.
type Reconciler struct {
	registry *Registry
	accessor graph.Accessor
	debug    func() bool
}

// NewReconciler wires a reconciler to its shadow registry, the live graph
// accessor and the debug-mode predicate.
func NewReconciler(reg *Registry, acc graph.Accessor, debug func() bool) *Reconciler {
	if debug == nil {
		debug = func() bool { return false }
	}
	return &Reconciler{registry: reg, accessor: acc, debug: debug}
}

// Registry exposes the shadow registry, e.g. for releasing deleted graphs.
func (r *Reconciler) Registry() *Registry { return r.registry }

// Reconcile applies the structural events of one wave, in wave order, to the
// shadow of the given graph. An empty shadow is rebuilt wholesale from the
// live topology instead of being patched incrementally. In debug mode the
// result is self-checked against the live topology; a mismatch is reported,
// never raised.
func (r *Reconciler) Reconcile(id graph.ID, events []event.Domain) error {
	topo, err := r.accessor.Topology(id)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	tree := r.registry.Tree(id)
	if tree.Empty() {
		tree.Rebuild(topo)
	} else {
		for _, ev := range events {
			r.apply(tree, topo, ev)
		}
	}

	if r.debug() {
		if tree.Matches(topo) {
			slog.Debug("reconstruction is correct", "graph", id,
				"nodes", tree.NodeCount(), "links", tree.LinkCount())
		} else {
			metrics.ReconcileDrift.Inc()
			slog.Warn("reconstruction does not match live topology",
				"graph", id,
				"shadow_nodes", tree.NodeCount(), "live_nodes", len(topo.Nodes),
				"shadow_links", tree.LinkCount(), "live_links", len(topo.Links))
		}
	}
	return nil
}

// apply patches the tree for one event. Property, undo, frame and
// unclassified events change no topology and are skipped.
func (r *Reconciler) apply(tree *Tree, topo *graph.Topology, ev event.Domain) {
	switch ev.Kind {
	case event.NodeAdded, event.NodeCopied:
		if info, ok := topo.Nodes[ev.Node]; ok {
			tree.AddNode(info)
		}
	case event.NodeFreed:
		tree.RemoveNode(ev.Node)
	case event.LinkChanged:
		// The same kind covers both directions; the live topology tells
		// which one this link went.
		if info, ok := topo.Links[ev.Link]; ok {
			tree.AddLink(info)
		} else {
			tree.RemoveLink(ev.Link)
		}
	}
}
