package wave_test

import (
	"errors"
	"testing"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/shadow"
	"github.com/atsal/nodewave/internal/wave"
)

type fakeAccessor struct {
	topos map[graph.ID]*graph.Topology
}

func (f *fakeAccessor) Topology(id graph.ID) (*graph.Topology, error) {
	t, ok := f.topos[id]
	if !ok {
		return nil, graph.NotFound(id)
	}
	return t, nil
}

func makeTopo(nodes []graph.NodeInfo, links []graph.LinkInfo) *graph.Topology {
	topo := &graph.Topology{
		Nodes: make(map[graph.NodeID]graph.NodeInfo),
		Links: make(map[graph.LinkID]graph.LinkInfo),
	}
	for _, n := range nodes {
		topo.Nodes[n.ID] = n
	}
	for _, l := range links {
		topo.Links[l.ID] = l
	}
	return topo
}

func kinds(events []event.Domain) []event.DomainKind {
	out := make([]event.DomainKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestAppendFiltersNonInformative(t *testing.T) {
	w := wave.New()
	w.Append(event.Raw{Kind: event.AddNode, Node: "n1"})
	before := w.Len()
	if w.Append(event.Raw{Kind: event.NodeUpdate, Node: "n1"}) {
		t.Error("node_update was buffered")
	}
	if w.Len() != before {
		t.Errorf("wave length changed: %d → %d", before, w.Len())
	}
}

func TestEnded(t *testing.T) {
	w := wave.New()
	if w.Ended() {
		t.Error("empty wave reports ended")
	}
	w.Append(event.Raw{Kind: event.AddNode, Node: "n1"})
	if w.Ended() {
		t.Error("wave without terminator reports ended")
	}
	w.Append(event.Raw{Kind: event.TreeUpdate, Graph: "g1"})
	if !w.Ended() {
		t.Error("wave with terminator does not report ended")
	}
}

func TestConvertBeforeEndFails(t *testing.T) {
	w := wave.New()
	w.Append(event.Raw{Kind: event.AddNode, Node: "n1"})
	_, err := w.Convert(shadow.NewRegistry(), &fakeAccessor{})
	if !errors.Is(err, wave.ErrNotEnded) {
		t.Errorf("err = %v, want ErrNotEnded", err)
	}
}

func TestConvertTablePathKeepsOrder(t *testing.T) {
	w := wave.New()
	w.Append(event.Raw{Kind: event.AddNode, Graph: "g1", Node: "n1"})
	w.Append(event.Raw{Kind: event.CopyNode, Graph: "g1", Node: "n2"})
	w.Append(event.Raw{Kind: event.AddLink, Graph: "g1", Node: "n2", Link: "l12"})
	w.Append(event.Raw{Kind: event.TreeUpdate, Graph: "g1"})

	events, err := w.Convert(shadow.NewRegistry(), &fakeAccessor{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want := []event.DomainKind{event.NodeAdded, event.NodeCopied, event.LinkChanged}
	got := kinds(events)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestConvertDiffPath(t *testing.T) {
	// Shadow knows n1, n2 and l12. Live has lost n2/l12 and gained n3/l13.
	reg := shadow.NewRegistry()
	reg.Tree("g1").Rebuild(makeTopo(
		[]graph.NodeInfo{{ID: "n1"}, {ID: "n2"}},
		[]graph.LinkInfo{{ID: "l12", FromNode: "n1", ToNode: "n2"}},
	))
	acc := &fakeAccessor{topos: map[graph.ID]*graph.Topology{
		"g1": makeTopo(
			[]graph.NodeInfo{{ID: "n1"}, {ID: "n3"}},
			[]graph.LinkInfo{{ID: "l13", FromNode: "n1", ToNode: "n3"}},
		),
	}}

	w := wave.New()
	w.Append(event.Raw{Kind: event.TreeUpdate, Graph: "g1"})
	events, err := w.Convert(reg, acc)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	var added, freed, linked []event.Domain
	for _, ev := range events {
		switch ev.Kind {
		case event.NodeAdded:
			added = append(added, ev)
		case event.NodeFreed:
			freed = append(freed, ev)
		case event.LinkChanged:
			linked = append(linked, ev)
		default:
			t.Errorf("unexpected kind %s", ev.Kind)
		}
	}
	if len(added) != 1 || added[0].Node != "n3" {
		t.Errorf("added = %v, want exactly n3", added)
	}
	if len(freed) != 1 || freed[0].Node != "n2" {
		t.Errorf("freed = %v, want exactly n2", freed)
	}
	if len(linked) != 2 {
		t.Fatalf("link events = %d, want 2 (one added, one removed)", len(linked))
	}
	if !w.Flags().LinksAdded || !w.Flags().LinksRemoved {
		t.Errorf("flags = %+v, want links added and removed", w.Flags())
	}
}

func TestConvertDiffPathRerouteFlags(t *testing.T) {
	reg := shadow.NewRegistry()
	reg.Tree("g1").Rebuild(makeTopo([]graph.NodeInfo{{ID: "n1"}}, nil))
	acc := &fakeAccessor{topos: map[graph.ID]*graph.Topology{
		"g1": makeTopo([]graph.NodeInfo{{ID: "n1"}, {ID: "r1", Reroute: true}}, nil),
	}}

	w := wave.New()
	w.Append(event.Raw{Kind: event.TreeUpdate, Graph: "g1"})
	if _, err := w.Convert(reg, acc); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !w.Flags().ReroutesAdded {
		t.Errorf("flags = %+v, want reroutes added", w.Flags())
	}
	if w.Flags().ReroutesRemoved {
		t.Errorf("flags = %+v, reroutes removed should be unset", w.Flags())
	}
}

func TestConvertDiffPathMissingGraphPropagates(t *testing.T) {
	w := wave.New()
	w.Append(event.Raw{Kind: event.TreeUpdate, Graph: "gone"})
	_, err := w.Convert(shadow.NewRegistry(), &fakeAccessor{topos: map[graph.ID]*graph.Topology{}})
	if !errors.Is(err, graph.ErrGraphNotFound) {
		t.Errorf("err = %v, want ErrGraphNotFound", err)
	}
}
