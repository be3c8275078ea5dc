// Package scheduler turns the host's flat mutation-callback stream into one
// classify-reconcile-notify cycle per finished wave, with reentrant ingestion
// suppressed for the duration of each cycle.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/atsal/nodewave/internal/event"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/metrics"
	"github.com/atsal/nodewave/internal/shadow"
	"github.com/atsal/nodewave/internal/wave"
)

// Recomputer propagates recomputation through the dependency graph for the
// nodes touched by a wave. It is invoked at most once per wave, after
// reconciliation and redraw notification. Freed nodes are excluded.
type Recomputer interface {
	ProcessNodes(nodes []graph.NodeID)
}

// RecomputeFunc adapts a plain function to the Recomputer interface.
type RecomputeFunc func(nodes []graph.NodeID)

func (f RecomputeFunc) ProcessNodes(nodes []graph.NodeID) { f(nodes) }

// Scheduler owns the active wave and the suppression guard. It is
// constructed explicitly at environment startup and handed to every call
// site that can emit raw signals; it is not safe for concurrent use — all
// signals arrive on the host's single scripting thread.
type Scheduler struct {
	accessor   graph.Accessor
	reconciler *shadow.Reconciler
	recompute  Recomputer
	debug      func() bool

	wave       *wave.Wave
	suppressed bool
}

// New creates a scheduler with a fresh shadow registry. The debug predicate
// gates the event audit trail and reconciliation self-checks; nil means off.
func New(acc graph.Accessor, rec Recomputer, debug func() bool) *Scheduler {
	if debug == nil {
		debug = func() bool { return false }
	}
	reg := shadow.NewRegistry()
	return &Scheduler{
		accessor:   acc,
		reconciler: shadow.NewReconciler(reg, acc, debug),
		recompute:  rec,
		debug:      debug,
		wave:       wave.New(),
	}
}

// Registry exposes the shadow registry so the collaborator that observes
// graph deletion can release the matching shadow.
func (s *Scheduler) Registry() *shadow.Registry { return s.reconciler.Registry() }

// WaveLen returns the number of signals buffered in the current wave.
func (s *Scheduler) WaveLen() int { return s.wave.Len() }

// Ingest accepts one raw mutation signal. Signals arriving while a dispatch
// is in progress are dropped, not queued; non-informative signals are
// filtered. When the appended signal is a terminator the whole pipeline runs
// before Ingest returns.
func (s *Scheduler) Ingest(ev event.Raw) error {
	if s.suppressed {
		metrics.RawDropped.Inc()
		if s.debug() {
			slog.Debug("signal dropped during dispatch", "event", ev)
		}
		return nil
	}
	if s.debug() {
		slog.Debug("raw signal", "event", ev)
	}
	if !s.wave.Append(ev) {
		metrics.RawFiltered.Inc()
		return nil
	}
	metrics.RawIngested.WithLabelValues(string(ev.Kind)).Inc()

	if !s.wave.Ended() {
		return nil
	}
	return s.dispatch()
}

// dispatch runs exactly one classify → reconcile → redraw → recompute cycle
// for the finished wave. Ingestion stays suppressed for the duration; the
// guard is released on every exit path, because a wedged guard would starve
// all future event processing.
func (s *Scheduler) dispatch() error {
	start := time.Now()
	current := s.wave
	s.suppressed = true
	defer func() {
		s.suppressed = false
		s.wave = wave.New()
	}()

	events, err := current.Convert(s.Registry(), s.accessor)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	for _, id := range graphsOf(events) {
		if err := s.reconciler.Reconcile(id, eventsFor(events, id)); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
	}

	for _, ev := range events {
		if s.debug() {
			slog.Debug("change event", "event", ev)
		}
		metrics.DomainEmitted.WithLabelValues(string(ev.Kind)).Inc()
		ev.RedrawNode()
	}

	s.recompute.ProcessNodes(survivingNodes(events))

	metrics.WavesDispatched.Inc()
	metrics.DispatchDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// isStructural reports whether a change event affects topology. Property,
// undo, frame and unclassified events leave the shadow alone.
func isStructural(kind event.DomainKind) bool {
	switch kind {
	case event.NodeAdded, event.NodeCopied, event.NodeFreed, event.LinkChanged:
		return true
	}
	return false
}

// graphsOf lists, in first-seen order, the distinct graphs with structural
// events in this wave. Graphs that received none are deliberately not
// reconciled.
func graphsOf(events []event.Domain) []graph.ID {
	var ids []graph.ID
	seen := make(map[graph.ID]bool)
	for _, ev := range events {
		if ev.Graph == "" || !isStructural(ev.Kind) || seen[ev.Graph] {
			continue
		}
		seen[ev.Graph] = true
		ids = append(ids, ev.Graph)
	}
	return ids
}

func eventsFor(events []event.Domain, id graph.ID) []event.Domain {
	var out []event.Domain
	for _, ev := range events {
		if ev.Graph == id && isStructural(ev.Kind) {
			out = append(out, ev)
		}
	}
	return out
}

// survivingNodes collects, in wave order and without duplicates, the node of
// every change event except frees — a freed node no longer exists to
// recompute.
func survivingNodes(events []event.Domain) []graph.NodeID {
	nodes := []graph.NodeID{}
	seen := make(map[graph.NodeID]bool)
	for _, ev := range events {
		if ev.Kind == event.NodeFreed || ev.Node == "" || seen[ev.Node] {
			continue
		}
		seen[ev.Node] = true
		nodes = append(nodes, ev.Node)
	}
	return nodes
}
