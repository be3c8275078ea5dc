package event

import (
	"fmt"
	"log/slog"

	"github.com/atsal/nodewave/internal/graph"
)

// RawKind discriminates the low-level signals emitted by the host while the
// user (or a script) edits a graph.
type RawKind string

const (
	// TreeUpdate is emitted for almost any structural edit and carries no
	// information about what actually changed. It usually arrives last in a
	// wave, except while a new node is being created.
	TreeUpdate      RawKind = "tree_update"
	GroupTreeUpdate RawKind = "group_tree_update"
	// NodeUpdate is a redundant "something changed" signal; it adds nothing
	// over the other events of the same wave and is filtered on ingestion.
	NodeUpdate RawKind = "node_update"
	// AddNode, CopyNode and FreeNode arrive first in a wave, one per node.
	AddNode  RawKind = "add_node"
	CopyNode RawKind = "copy_node"
	FreeNode RawKind = "free_node"
	// AddLink only detects manually created links.
	AddLink        RawKind = "add_link_to_node"
	PropertyUpdate RawKind = "property_update"
	// Undo reports no other events for the tree changes it causes.
	Undo        RawKind = "undo"
	FrameChange RawKind = "frame_change"
)

// terminators are the kinds that end the current wave. Node and link signals
// are deliberately absent: one gesture (paste, duplicate) emits a burst of
// them followed by exactly one terminator.
var terminators = map[RawKind]bool{
	TreeUpdate:      true,
	GroupTreeUpdate: true,
	PropertyUpdate:  true,
	Undo:            true,
	FrameChange:     true,
}

// DomainKind discriminates the classified events handed to the redraw and
// recomputation collaborators.
type DomainKind string

const (
	NodeAdded       DomainKind = "node_added"
	NodeCopied      DomainKind = "node_copied"
	NodeFreed       DomainKind = "node_freed"
	LinkChanged     DomainKind = "link_changed"
	PropertyChanged DomainKind = "property_changed"
	UndoPerformed   DomainKind = "undo"
	FrameChanged    DomainKind = "frame_change"
	Unclassified    DomainKind = "unclassified"
)

// conversion maps per-object raw kinds to their domain counterpart. Topology
// kinds are intentionally missing: when they close a wave of per-object
// signals they add nothing, and when they open one the classifier diffs the
// live topology instead of trusting the tags.
var conversion = map[RawKind]DomainKind{
	AddNode:        NodeAdded,
	CopyNode:       NodeCopied,
	FreeNode:       NodeFreed,
	AddLink:        LinkChanged,
	PropertyUpdate: PropertyChanged,
	Undo:           UndoPerformed,
	FrameChange:    FrameChanged,
}

// RedrawFunc is the callback captured with a property update; it is invoked
// with the captured arguments during the redraw step of dispatch.
type RedrawFunc func(args ...interface{})

// Raw is one host-emitted mutation signal. Immutable once constructed.
type Raw struct {
	Kind       RawKind
	Graph      graph.ID
	Node       graph.NodeID
	Link       graph.LinkID
	Redraw     RedrawFunc
	RedrawArgs []interface{}
}

// IsTerminator reports whether this event ends the current wave.
func (r Raw) IsTerminator() bool { return terminators[r.Kind] }

// IsInformative reports whether this event carries information worth
// buffering; NodeUpdate signals do not.
func (r Raw) IsInformative() bool { return r.Kind != NodeUpdate }

// IsTopology reports whether this event is one of the ambiguous structural
// kinds that force a topology diff when they open a wave.
func (r Raw) IsTopology() bool {
	return r.Kind == TreeUpdate || r.Kind == GroupTreeUpdate
}

// Convert maps this raw event to its domain counterpart via the fixed lookup
// table. The second result is false for topology kinds, which produce no
// domain event on the table path. An unknown kind maps to Unclassified.
func (r Raw) Convert() (Domain, bool) {
	if r.IsTopology() {
		return Domain{}, false
	}
	kind, ok := conversion[r.Kind]
	if !ok {
		kind = Unclassified
	}
	return Domain{
		Kind:       kind,
		Graph:      r.Graph,
		Node:       r.Node,
		Link:       r.Link,
		Redraw:     r.Redraw,
		RedrawArgs: r.RedrawArgs,
	}, true
}

// LogValue lets a raw event be logged structurally by slog.
func (r Raw) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(r.Kind)),
		slog.String("graph", string(r.Graph)),
		slog.String("node", string(r.Node)),
	)
}

func (r Raw) String() string {
	return fmt.Sprintf("EVENT: %-20s graph=%s node=%s", r.Kind, r.Graph, r.Node)
}

// Domain is one classified change event. Transient: consumed by the redraw
// and recomputation collaborators during dispatch and never retained.
type Domain struct {
	Kind       DomainKind
	Graph      graph.ID
	Node       graph.NodeID
	Link       graph.LinkID
	Redraw     RedrawFunc
	RedrawArgs []interface{}
}

// RedrawNode invokes the captured redraw callback, if any.
func (d Domain) RedrawNode() {
	if d.Redraw != nil {
		d.Redraw(d.RedrawArgs...)
	}
}

// LogValue lets a domain event be logged structurally by slog.
func (d Domain) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(d.Kind)),
		slog.String("graph", string(d.Graph)),
		slog.String("node", string(d.Node)),
	)
}

func (d Domain) String() string {
	return fmt.Sprintf("CHANGE: %-18s graph=%s node=%s", d.Kind, d.Graph, d.Node)
}
