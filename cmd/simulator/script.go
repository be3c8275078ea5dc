package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atsal/nodewave/internal/config"
	"github.com/atsal/nodewave/internal/graph"
	"github.com/atsal/nodewave/internal/host"
	"github.com/atsal/nodewave/internal/scheduler"
)

// Script is a YAML-described sequence of graph mutations to play against the
// tracker, standing in for a user editing graphs in the host UI.
type Script struct {
	Graphs []string `yaml:"graphs"`
	Steps  []Step   `yaml:"steps"`
}

// Step is one scripted mutation. Nodes are referenced by their scripted
// display name; the player resolves names to live identities.
type Step struct {
	Op      string   `yaml:"op"`
	Graph   string   `yaml:"graph"`
	Name    string   `yaml:"name"`
	Node    string   `yaml:"node"`
	Nodes   []string `yaml:"nodes"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
	From    string   `yaml:"from"`
	Output  string   `yaml:"output"`
	To      string   `yaml:"to"`
	Input   string   `yaml:"input"`
	Value   string   `yaml:"value"`
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return &s, nil
}

// Player drives the host and scheduler through a script.
type Player struct {
	host   *host.Host
	sched  *scheduler.Scheduler
	loader *config.Loader

	graphs map[string]*host.Graph
	nodes  map[string]map[string]*host.Node // graph name → node name → node
}

// NewPlayer wires a player to its collaborators.
func NewPlayer(h *host.Host, s *scheduler.Scheduler, l *config.Loader) *Player {
	return &Player{
		host:   h,
		sched:  s,
		loader: l,
		graphs: make(map[string]*host.Graph),
		nodes:  make(map[string]map[string]*host.Node),
	}
}

// Play creates the scripted graphs and runs every step in order, stopping at
// the first invalid step.
func (p *Player) Play(s *Script) error {
	for _, name := range s.Graphs {
		p.graphs[name] = p.host.NewGraph(name)
		p.nodes[name] = make(map[string]*host.Node)
	}
	for i, step := range s.Steps {
		if err := p.run(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	return nil
}

func (p *Player) run(step Step) error {
	g, ok := p.graphs[step.Graph]
	if !ok {
		return fmt.Errorf("unknown graph %q", step.Graph)
	}
	names := p.nodes[step.Graph]

	switch step.Op {
	case "add_node":
		names[step.Name] = g.AddNode(step.Name, step.Inputs, step.Outputs)
	case "add_reroute":
		names[step.Name] = g.AddReroute(step.Name)
	case "copy_node":
		src, err := p.resolve(step.Graph, step.Node)
		if err != nil {
			return err
		}
		n, err := g.CopyNode(src.ID)
		if err != nil {
			return err
		}
		names[n.Name] = n
	case "delete_nodes":
		ids := make([]graph.NodeID, 0, len(step.Nodes))
		for _, name := range step.Nodes {
			n, err := p.resolve(step.Graph, name)
			if err != nil {
				return err
			}
			ids = append(ids, n.ID)
			delete(names, name)
		}
		g.DeleteNodes(ids...)
	case "connect", "connect_silent":
		from, err := p.resolve(step.Graph, step.From)
		if err != nil {
			return err
		}
		to, err := p.resolve(step.Graph, step.To)
		if err != nil {
			return err
		}
		if step.Op == "connect" {
			_, err = g.Connect(from.ID, step.Output, to.ID, step.Input)
		} else {
			_, err = g.ConnectSilent(from.ID, step.Output, to.ID, step.Input)
		}
		return err
	case "disconnect":
		from, err := p.resolve(step.Graph, step.From)
		if err != nil {
			return err
		}
		to, err := p.resolve(step.Graph, step.To)
		if err != nil {
			return err
		}
		g.Disconnect(graph.MakeLinkID(from.Outputs[step.Output], to.Inputs[step.Input]))
	case "set_property":
		n, err := p.resolve(step.Graph, step.Node)
		if err != nil {
			return err
		}
		name, value := step.Name, step.Value
		g.SetProperty(n.ID, func(args ...interface{}) {
			slog.Info("redraw", "node", args[0], "prop", name, "value", value)
		}, n.Name)
	case "tree_update":
		g.TreeUpdate()
	case "group_tree_update":
		g.GroupTreeUpdate()
	case "undo":
		g.Undo()
	case "frame_change":
		g.FrameChange(p.loader.Settings().FrameChangeMode)
	case "delete_graph":
		p.host.DeleteGraph(g.ID())
		p.sched.Registry().Release(g.ID())
		delete(p.graphs, step.Graph)
		delete(p.nodes, step.Graph)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func (p *Player) resolve(graphName, nodeName string) (*host.Node, error) {
	n, ok := p.nodes[graphName][nodeName]
	if !ok {
		return nil, fmt.Errorf("unknown node %q in graph %q", nodeName, graphName)
	}
	return n, nil
}
