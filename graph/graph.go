//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package graph provides the workflow graph model: typed nodes, edges, the
// mutable graph edited by users and the topological order used to run it.
package graph

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Snapshot is an immutable copy of a graph taken at one instant.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node returns the first node with the given id.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIDs returns the ids of all nodes in list order.
func (s *Snapshot) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Incoming returns the edges targeting id in edge list order.
func (s *Snapshot) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range s.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: slices.Clone(s.Edges),
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return out
}

// Graph is the live, user edited workflow graph. It keeps insertion order
// for nodes and edges since execution order ties are broken by it.
type Graph struct {
	nodes []Node
	edges []Edge
	// mutex protects concurrent access to the graph.
	mutex sync.RWMutex
}

// New creates a graph from the given nodes and edges. Malformed input is
// accepted as is; see Validate.
func New(nodes []Node, edges []Edge) *Graph {
	snap := (&Snapshot{Nodes: nodes, Edges: edges}).Clone()
	return &Graph{nodes: snap.Nodes, edges: snap.Edges}
}

// Snapshot returns a deep copy of the current nodes and edges.
func (g *Graph) Snapshot() *Snapshot {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return (&Snapshot{Nodes: g.nodes, Edges: g.edges}).Clone()
}

// Replace swaps the whole graph content.
func (g *Graph) Replace(nodes []Node, edges []Edge) {
	snap := (&Snapshot{Nodes: nodes, Edges: edges}).Clone()
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.nodes, g.edges = snap.Nodes, snap.Edges
}

// GetNode returns a copy of the node with the given id.
func (g *Graph) GetNode(id string) (Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	i := g.indexOf(id)
	if i < 0 {
		return Node{}, false
	}
	return g.nodes[i].Clone(), true
}

// AddNode appends a node. Its status starts as idle.
func (g *Graph) AddNode(node Node) error {
	if node.ID == "" {
		return ErrNodeIDEmpty
	}
	if !node.Type.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownNodeType, node.Type)
	}
	node = node.Clone()
	node.Data.Status = NodeStatusIdle

	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.indexOf(node.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrNodeExists, node.ID)
	}
	g.nodes = append(g.nodes, node)
	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	g.nodes = slices.Delete(g.nodes, i, i+1)
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		return e.Source == id || e.Target == id
	})
	return nil
}

// MoveNode updates a node's canvas position.
func (g *Graph) MoveNode(id string, pos Position) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	g.nodes[i].Position = pos
	return nil
}

// UpdateNode overwrites the label, description and config of a node as the
// properties form does. Status, type and position are left untouched.
func (g *Graph) UpdateNode(id string, data NodeData) (Node, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n := &g.nodes[i]
	n.Data.Label = data.Label
	n.Data.Description = data.Description
	n.Data.Config = maps.Clone(data.Config)
	if n.Data.Config == nil {
		n.Data.Config = map[string]any{}
	}
	return n.Clone(), nil
}

// SetStatus records a node's run status. Unknown ids are ignored since the
// node may have been deleted while a run was in flight.
func (g *Graph) SetStatus(id string, status NodeStatus) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if i := g.indexOf(id); i >= 0 {
		g.nodes[i].Data.Status = status
	}
}

// ResetStatuses sets every node back to idle.
func (g *Graph) ResetStatuses() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	for i := range g.nodes {
		g.nodes[i].Data.Status = NodeStatusIdle
	}
}

// Connect adds an edge between two existing nodes.
func (g *Graph) Connect(source, target string) (Edge, error) {
	if source == "" || target == "" {
		return Edge{}, ErrEdgeEndpoints
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.indexOf(source) < 0 {
		return Edge{}, fmt.Errorf("%w: source %s", ErrNodeNotFound, source)
	}
	if g.indexOf(target) < 0 {
		return Edge{}, fmt.Errorf("%w: target %s", ErrNodeNotFound, target)
	}
	for _, e := range g.edges {
		if e.Source == source && e.Target == target {
			return Edge{}, fmt.Errorf("%w: %s -> %s", ErrEdgeExists, source, target)
		}
	}
	edge := Edge{ID: EdgeID(source, target), Source: source, Target: target}
	g.edges = append(g.edges, edge)
	return edge, nil
}

// RemoveEdge deletes an edge by id.
func (g *Graph) RemoveEdge(id string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	return nil
}

// Validate reports structural problems: duplicate node ids, unknown node
// types, dangling edges and self loops. They are warnings; the executor
// tolerates all of them.
func (g *Graph) Validate() []error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return validate(g.nodes, g.edges)
}

func validate(nodes []Node, edges []Edge) []error {
	var problems []error
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			problems = append(problems, ErrNodeIDEmpty)
			continue
		}
		if seen[n.ID] {
			problems = append(problems, fmt.Errorf("%w: %s", ErrNodeExists, n.ID))
		}
		seen[n.ID] = true
		if !n.Type.Valid() {
			problems = append(problems, fmt.Errorf("%w: node %s has type %q", ErrUnknownNodeType, n.ID, n.Type))
		}
	}
	for _, e := range edges {
		if !seen[e.Source] {
			problems = append(problems, fmt.Errorf("edge %s: %w: source %s", e.ID, ErrNodeNotFound, e.Source))
		}
		if !seen[e.Target] {
			problems = append(problems, fmt.Errorf("edge %s: %w: target %s", e.ID, ErrNodeNotFound, e.Target))
		}
		if e.Source == e.Target {
			problems = append(problems, fmt.Errorf("edge %s is a self loop on %s", e.ID, e.Source))
		}
	}
	return problems
}

func (g *Graph) indexOf(id string) int {
	return slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
}
