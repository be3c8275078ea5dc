package host

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
)

// Graph is one live, mutable node graph.
type Graph struct {
	host  *Host
	id    graph.ID
	name  string
	nodes map[graph.NodeID]*Node
	links map[graph.LinkID]graph.LinkInfo
}

// Node is one live node with named input and output sockets.
type Node struct {
	ID      graph.NodeID
	Name    string
	Reroute bool
	Inputs  map[string]graph.SocketID
	Outputs map[string]graph.SocketID
}

// ID returns the graph's stable identity.
func (g *Graph) ID() graph.ID { return g.id }

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// Node returns a live node by ID (nil if not found).
func (g *Graph) Node(id graph.NodeID) *Node { return g.nodes[id] }

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of live links.
func (g *Graph) LinkCount() int { return len(g.links) }

func (g *Graph) newNode(name string, inputs, outputs []string, reroute bool) *Node {
	n := &Node{
		ID:      graph.NodeID(uuid.New().String()),
		Name:    name,
		Reroute: reroute,
		Inputs:  make(map[string]graph.SocketID, len(inputs)),
		Outputs: make(map[string]graph.SocketID, len(outputs)),
	}
	for _, s := range inputs {
		n.Inputs[s] = socketID(n.ID, "in/"+s)
	}
	for _, s := range outputs {
		n.Outputs[s] = socketID(n.ID, "out/"+s)
	}
	g.nodes[n.ID] = n
	return n
}

// AddNode creates a node and emits the add-node signal plus the redundant
// node-update that the UI fires alongside it. No terminator: the gesture is
// closed by a later TreeUpdate.
func (g *Graph) AddNode(name string, inputs, outputs []string) *Node {
	n := g.newNode(name, inputs, outputs, false)
	g.host.emit(event.Raw{Kind: event.AddNode, Graph: g.id, Node: n.ID})
	g.host.emit(event.Raw{Kind: event.NodeUpdate, Graph: g.id, Node: n.ID})
	return n
}

// AddReroute creates a pass-through node with one input and one output.
func (g *Graph) AddReroute(name string) *Node {
	n := g.newNode(name, []string{"in"}, []string{"out"}, true)
	g.host.emit(event.Raw{Kind: event.AddNode, Graph: g.id, Node: n.ID})
	return n
}

// CopyNode duplicates a node (sockets get fresh identities) and emits the
// copy-node signal.
func (g *Graph) CopyNode(id graph.NodeID) (*Node, error) {
	src, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("copy node %q: not found", id)
	}
	var inputs, outputs []string
	for s := range src.Inputs {
		inputs = append(inputs, s)
	}
	for s := range src.Outputs {
		outputs = append(outputs, s)
	}
	n := g.newNode(src.Name+".copy", inputs, outputs, src.Reroute)
	g.host.emit(event.Raw{Kind: event.CopyNode, Graph: g.id, Node: n.ID})
	return n, nil
}

// DeleteNodes removes nodes and their attached links, emitting one free-node
// signal per node regardless of how many links died with them.
func (g *Graph) DeleteNodes(ids ...graph.NodeID) {
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			continue
		}
		for lid, info := range g.links {
			if info.FromNode == id || info.ToNode == id {
				delete(g.links, lid)
			}
		}
		delete(g.nodes, id)
		g.host.emit(event.Raw{Kind: event.FreeNode, Graph: g.id, Node: id})
	}
}

// Connect links an output socket to an input socket and emits the
// add-link signal attributed to the downstream node.
func (g *Graph) Connect(from graph.NodeID, outSocket string, to graph.NodeID, inSocket string) (graph.LinkID, error) {
	lid, err := g.link(from, outSocket, to, inSocket)
	if err != nil {
		return "", err
	}
	g.host.emit(event.Raw{Kind: event.AddLink, Graph: g.id, Node: to, Link: lid})
	return lid, nil
}

// ConnectSilent links two sockets without emitting a per-object signal, the
// way coarse UI gestures do; only the closing tree-update reports them.
func (g *Graph) ConnectSilent(from graph.NodeID, outSocket string, to graph.NodeID, inSocket string) (graph.LinkID, error) {
	return g.link(from, outSocket, to, inSocket)
}

// Disconnect removes a link without a per-object signal; manual unlinking is
// reported only by the closing tree-update.
func (g *Graph) Disconnect(id graph.LinkID) {
	delete(g.links, id)
}

func (g *Graph) link(from graph.NodeID, outSocket string, to graph.NodeID, inSocket string) (graph.LinkID, error) {
	fromNode, ok := g.nodes[from]
	if !ok {
		return "", fmt.Errorf("connect: from node %q not found", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return "", fmt.Errorf("connect: to node %q not found", to)
	}
	outID, ok := fromNode.Outputs[outSocket]
	if !ok {
		return "", fmt.Errorf("connect: node %q has no output %q", fromNode.Name, outSocket)
	}
	inID, ok := toNode.Inputs[inSocket]
	if !ok {
		return "", fmt.Errorf("connect: node %q has no input %q", toNode.Name, inSocket)
	}
	lid := graph.MakeLinkID(outID, inID)
	g.links[lid] = graph.LinkInfo{ID: lid, FromNode: from, ToNode: to}
	return lid, nil
}

// SetProperty records a property edit: the redraw callback and its captured
// arguments travel with the property-update signal, which terminates the
// wave.
func (g *Graph) SetProperty(node graph.NodeID, redraw event.RedrawFunc, args ...interface{}) {
	g.host.emit(event.Raw{
		Kind:       event.PropertyUpdate,
		Graph:      g.id,
		Node:       node,
		Redraw:     redraw,
		RedrawArgs: args,
	})
}

// TreeUpdate emits the ambiguous structural terminator.
func (g *Graph) TreeUpdate() {
	g.host.emit(event.Raw{Kind: event.TreeUpdate, Graph: g.id})
}

// GroupTreeUpdate emits the group-subgraph terminator.
func (g *Graph) GroupTreeUpdate() {
	g.host.emit(event.Raw{Kind: event.GroupTreeUpdate, Graph: g.id})
}

// Undo reports an undo step. The host gives no detail about what the undo
// changed.
func (g *Graph) Undo() {
	g.host.emit(event.Raw{Kind: event.Undo, Graph: g.id})
}

// FrameChange reports a frame step when the configured handler mode emits
// one; mode NONE stays silent.
func (g *Graph) FrameChange(mode string) {
	if mode == "NONE" {
		return
	}
	g.host.emit(event.Raw{Kind: event.FrameChange, Graph: g.id})
}
