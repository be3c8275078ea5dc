package graph

import (
	"errors"
	"fmt"
)

// ID identifies a node graph. Stable for the lifetime of the graph; a deleted
// and recreated graph gets a fresh ID.
type ID string

// NodeID identifies a node. Stable across renames but not across node
// deletion/recreation.
type NodeID string

// SocketID identifies one input or output socket of a node.
type SocketID string

// LinkID identifies a link as the concatenation of its from-socket and
// to-socket IDs.
type LinkID string

// MakeLinkID derives a link's identity from its two endpoint sockets.
func MakeLinkID(from, to SocketID) LinkID {
	return LinkID(string(from) + string(to))
}

// ErrGraphNotFound is returned by an Accessor when the requested graph no
// longer exists, e.g. it was deleted between signal emission and dispatch.
var ErrGraphNotFound = errors.New("graph not found")

// NodeInfo describes one node in a topology snapshot.
type NodeInfo struct {
	ID      NodeID
	Name    string
	Reroute bool
}

// LinkInfo describes one link in a topology snapshot.
type LinkInfo struct {
	ID       LinkID
	FromNode NodeID
	ToNode   NodeID
}

// Topology is a point-in-time snapshot of a graph's node and link identity
// sets. Snapshots are plain values; taking one has no side effects on the
// underlying graph.
type Topology struct {
	Nodes map[NodeID]NodeInfo
	Links map[LinkID]LinkInfo
}

// Accessor resolves a graph ID to its current topology. Implementations must
// be repeatable without side effects and must return an error wrapping
// ErrGraphNotFound for unknown IDs.
type Accessor interface {
	Topology(id ID) (*Topology, error)
}

// NotFound builds the canonical lookup error for a missing graph.
func NotFound(id ID) error {
	return fmt.Errorf("graph %q: %w", id, ErrGraphNotFound)
}
