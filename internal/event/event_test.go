package event_test

import (
	"testing"

	"github.com/atsal/nodewave/internal/event"
)

func TestTerminators(t *testing.T) {
	cases := []struct {
		kind event.RawKind
		want bool
	}{
		{event.TreeUpdate, true},
		{event.GroupTreeUpdate, true},
		{event.PropertyUpdate, true},
		{event.Undo, true},
		{event.FrameChange, true},
		{event.AddNode, false},
		{event.CopyNode, false},
		{event.FreeNode, false},
		{event.AddLink, false},
		{event.NodeUpdate, false},
	}
	for _, c := range cases {
		ev := event.Raw{Kind: c.kind}
		if got := ev.IsTerminator(); got != c.want {
			t.Errorf("IsTerminator(%s) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestConvertTable(t *testing.T) {
	cases := []struct {
		raw  event.RawKind
		want event.DomainKind
	}{
		{event.AddNode, event.NodeAdded},
		{event.CopyNode, event.NodeCopied},
		{event.FreeNode, event.NodeFreed},
		{event.AddLink, event.LinkChanged},
		{event.PropertyUpdate, event.PropertyChanged},
		{event.Undo, event.UndoPerformed},
		{event.FrameChange, event.FrameChanged},
	}
	for _, c := range cases {
		dev, ok := event.Raw{Kind: c.raw, Node: "n1"}.Convert()
		if !ok {
			t.Fatalf("Convert(%s) produced no event", c.raw)
		}
		if dev.Kind != c.want {
			t.Errorf("Convert(%s) = %s, want %s", c.raw, dev.Kind, c.want)
		}
		if dev.Node != "n1" {
			t.Errorf("Convert(%s) lost node identity", c.raw)
		}
	}
}

func TestConvertTopologyKindsProduceNothing(t *testing.T) {
	for _, kind := range []event.RawKind{event.TreeUpdate, event.GroupTreeUpdate} {
		if _, ok := (event.Raw{Kind: kind}).Convert(); ok {
			t.Errorf("Convert(%s) produced an event on the table path", kind)
		}
	}
}

func TestConvertUnknownKindIsUnclassified(t *testing.T) {
	dev, ok := event.Raw{Kind: event.RawKind("someday_new_signal")}.Convert()
	if !ok {
		t.Fatal("unknown kind produced no event")
	}
	if dev.Kind != event.Unclassified {
		t.Errorf("unknown kind = %s, want %s", dev.Kind, event.Unclassified)
	}
}

func TestRedrawNode(t *testing.T) {
	var got []interface{}
	dev := event.Domain{
		Kind:       event.PropertyChanged,
		Redraw:     func(args ...interface{}) { got = append(got, args...) },
		RedrawArgs: []interface{}{"a", 2},
	}
	dev.RedrawNode()
	if len(got) != 2 || got[0] != "a" || got[1] != 2 {
		t.Errorf("redraw args = %v, want [a 2]", got)
	}

	// No callback is fine.
	event.Domain{Kind: event.UndoPerformed}.RedrawNode()
}
