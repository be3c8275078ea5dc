package shadow

import (
	"fmt"

	"github.com/atsal/nodewave/internal/graph"
)

// Node is the shadow copy of one live node: identity, display name and the
// links touching it, keyed by link ID.
type Node struct {
	ID      graph.NodeID
	Name    string
	Reroute bool
	Inputs  map[graph.LinkID]*Link
	Outputs map[graph.LinkID]*Link
}

func newNode(info graph.NodeInfo) *Node {
	return &Node{
		ID:      info.ID,
		Name:    info.Name,
		Reroute: info.Reroute,
		Inputs:  make(map[graph.LinkID]*Link),
		Outputs: make(map[graph.LinkID]*Link),
	}
}

func (n *Node) String() string { return fmt.Sprintf("<Node %q>", n.Name) }

// Link is the shadow copy of one live link. Its ID is the concatenation of
// the two endpoint socket IDs.
type Link struct {
	ID       graph.LinkID
	FromNode graph.NodeID
	ToNode   graph.NodeID
}

// Tree is the persisted belief about one graph's topology, used as the diff
// baseline for ambiguous structural signals. Every link in links has both
// endpoints present in the owning nodes' input/output maps and vice versa.
type Tree struct {
	id    graph.ID
	nodes map[graph.NodeID]*Node
	links map[graph.LinkID]*Link
}

// NewTree allocates an empty shadow for the given graph.
func NewTree(id graph.ID) *Tree {
	return &Tree{
		id:    id,
		nodes: make(map[graph.NodeID]*Node),
		links: make(map[graph.LinkID]*Link),
	}
}

// ID returns the identity of the shadowed graph.
func (t *Tree) ID() graph.ID { return t.id }

// Empty reports whether the shadow has never been populated. An empty shadow
// cannot be meaningfully diffed and triggers total reconstruction.
func (t *Tree) Empty() bool { return len(t.nodes) == 0 }

// NodeCount returns the number of shadowed nodes.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// LinkCount returns the number of shadowed links.
func (t *Tree) LinkCount() int { return len(t.links) }

// Node returns a shadowed node by ID (nil if not present).
func (t *Tree) Node(id graph.NodeID) *Node { return t.nodes[id] }

// Link returns a shadowed link by ID (nil if not present).
func (t *Tree) Link(id graph.LinkID) *Link { return t.links[id] }

// AddNode records a node. Adding an already-present ID replaces the entry.
func (t *Tree) AddNode(info graph.NodeInfo) {
	t.nodes[info.ID] = newNode(info)
}

// RemoveNode drops a node and every link still attached to it.
func (t *Tree) RemoveNode(id graph.NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for linkID := range n.Inputs {
		t.RemoveLink(linkID)
	}
	for linkID := range n.Outputs {
		t.RemoveLink(linkID)
	}
	delete(t.nodes, id)
}

// AddLink records a link and attaches it to both endpoint nodes. Links whose
// endpoints are not shadowed are ignored; they reappear on the next diff.
func (t *Tree) AddLink(info graph.LinkInfo) {
	from, okFrom := t.nodes[info.FromNode]
	to, okTo := t.nodes[info.ToNode]
	if !okFrom || !okTo {
		return
	}
	l := &Link{ID: info.ID, FromNode: info.FromNode, ToNode: info.ToNode}
	from.Outputs[info.ID] = l
	to.Inputs[info.ID] = l
	t.links[info.ID] = l
}

// RemoveLink drops a link and detaches it from its endpoints.
func (t *Tree) RemoveLink(id graph.LinkID) {
	l, ok := t.links[id]
	if !ok {
		return
	}
	if from := t.nodes[l.FromNode]; from != nil {
		delete(from.Outputs, id)
	}
	if to := t.nodes[l.ToNode]; to != nil {
		delete(to.Inputs, id)
	}
	delete(t.links, id)
}

// Rebuild performs a total reconstruction: the shadow is repopulated
// wholesale from the given live topology.
func (t *Tree) Rebuild(topo *graph.Topology) {
	t.nodes = make(map[graph.NodeID]*Node, len(topo.Nodes))
	t.links = make(map[graph.LinkID]*Link, len(topo.Links))
	for _, info := range topo.Nodes {
		t.AddNode(info)
	}
	for _, info := range topo.Links {
		t.AddLink(info)
	}
}

func (t *Tree) String() string {
	return fmt.Sprintf("<Tree(nodes=%d, links=%d)>", len(t.nodes), len(t.links))
}

// Registry owns every shadow tree, keyed by graph identity. Trees are created
// lazily on first reference and live until explicitly released.
type Registry struct {
	trees map[graph.ID]*Tree
}

// NewRegistry allocates an empty registry.
func NewRegistry() *Registry {
	return &Registry{trees: make(map[graph.ID]*Tree)}
}

// Tree returns the shadow for id, creating an empty one on first reference.
func (r *Registry) Tree(id graph.ID) *Tree {
	t, ok := r.trees[id]
	if !ok {
		t = NewTree(id)
		r.trees[id] = t
	}
	return t
}

// Release drops the shadow for a deleted graph. The collaborator that
// observes graph deletion is expected to call this; otherwise the entry
// lives as long as the registry.
func (r *Registry) Release(id graph.ID) {
	delete(r.trees, id)
}

// Len returns the number of shadowed graphs.
func (r *Registry) Len() int { return len(r.trees) }
