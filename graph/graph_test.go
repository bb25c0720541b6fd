//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(nil, nil)
	require.NoError(t, g.AddNode(Node{ID: "a", Type: NodeTypeTriggerStart}))
	require.NoError(t, g.AddNode(Node{ID: "b", Type: NodeTypeAIGeneration}))
	require.NoError(t, g.AddNode(Node{ID: "c", Type: NodeTypeActionOutput}))
	return g
}

func TestGraphAddNode(t *testing.T) {
	g := newTestGraph(t)

	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{name: "empty id", node: Node{Type: NodeTypeAIChat}, wantErr: ErrNodeIDEmpty},
		{name: "unknown type", node: Node{ID: "x", Type: "webhook"}, wantErr: ErrUnknownNodeType},
		{name: "duplicate", node: Node{ID: "a", Type: NodeTypeAIChat}, wantErr: ErrNodeExists},
		{name: "ok", node: Node{ID: "d", Type: NodeTypeAIChat, Data: NodeData{Status: NodeStatusCompleted}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddNode(tt.node)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			n, ok := g.GetNode(tt.node.ID)
			require.True(t, ok)
			assert.Equal(t, NodeStatusIdle, n.Data.Status)
			assert.NotNil(t, n.Data.Config)
		})
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, g.Snapshot().NodeIDs())
}

func TestGraphConnectAndRemove(t *testing.T) {
	g := newTestGraph(t)

	e, err := g.Connect("a", "b")
	require.NoError(t, err)
	assert.Equal(t, Edge{ID: "ea-b", Source: "a", Target: "b"}, e)

	_, err = g.Connect("a", "b")
	assert.ErrorIs(t, err, ErrEdgeExists)
	_, err = g.Connect("a", "missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.Connect("", "b")
	assert.ErrorIs(t, err, ErrEdgeEndpoints)

	_, err = g.Connect("b", "c")
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode("b"))
	snap := g.Snapshot()
	assert.Equal(t, []string{"a", "c"}, snap.NodeIDs())
	assert.Empty(t, snap.Edges)

	assert.ErrorIs(t, g.RemoveNode("b"), ErrNodeNotFound)
	assert.ErrorIs(t, g.RemoveEdge("ea-b"), ErrEdgeNotFound)

	_, err = g.Connect("a", "c")
	require.NoError(t, err)
	require.NoError(t, g.RemoveEdge("ea-c"))
	assert.Empty(t, g.Snapshot().Edges)
}

func TestGraphUpdateNodeKeepsStatus(t *testing.T) {
	g := newTestGraph(t)
	g.SetStatus("b", NodeStatusCompleted)

	cfg := map[string]any{ConfigKeyTemperature: 0.1}
	n, err := g.UpdateNode("b", NodeData{Label: "Writer", Description: "d", Config: cfg, Status: NodeStatusError})
	require.NoError(t, err)
	assert.Equal(t, "Writer", n.Data.Label)
	assert.Equal(t, NodeStatusCompleted, n.Data.Status)

	cfg[ConfigKeyTemperature] = 0.9
	stored, _ := g.GetNode("b")
	assert.Equal(t, 0.1, stored.Data.Config[ConfigKeyTemperature])

	_, err = g.UpdateNode("missing", NodeData{})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraphStatuses(t *testing.T) {
	g := newTestGraph(t)
	g.SetStatus("a", NodeStatusRunning)
	g.SetStatus("ghost", NodeStatusRunning)
	a, _ := g.GetNode("a")
	assert.Equal(t, NodeStatusRunning, a.Data.Status)

	g.ResetStatuses()
	for _, n := range g.Snapshot().Nodes {
		assert.Equal(t, NodeStatusIdle, n.Data.Status)
	}
}

func TestGraphMoveNode(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.MoveNode("c", Position{X: 10, Y: 20}))
	c, _ := g.GetNode("c")
	assert.Equal(t, Position{X: 10, Y: 20}, c.Position)
	assert.ErrorIs(t, g.MoveNode("ghost", Position{}), ErrNodeNotFound)
}

func TestSnapshotIsIsolated(t *testing.T) {
	g := New([]Node{{ID: "a", Type: NodeTypeAIChat, Data: NodeData{Config: map[string]any{"persona": "x"}}}}, nil)
	snap := g.Snapshot()
	snap.Nodes[0].Data.Config["persona"] = "changed"
	snap.Nodes[0].Data.Label = "changed"

	n, _ := g.GetNode("a")
	assert.Equal(t, "x", n.Data.Config["persona"])
	assert.Empty(t, n.Data.Label)
}

func TestSnapshotIncoming(t *testing.T) {
	snap := &Snapshot{
		Nodes: nodesOf("a", "b", "c"),
		Edges: []Edge{edge("b", "c"), edge("a", "b"), edge("a", "c")},
	}
	assert.Equal(t, []Edge{edge("b", "c"), edge("a", "c")}, snap.Incoming("c"))
	assert.Empty(t, snap.Incoming("a"))
}

func TestGraphValidate(t *testing.T) {
	g := New(
		[]Node{
			{ID: "a", Type: NodeTypeTriggerStart},
			{ID: "a", Type: NodeTypeActionOutput},
			{ID: "b", Type: "mystery"},
		},
		[]Edge{edge("a", "ghost"), edge("b", "b")},
	)
	problems := g.Validate()
	require.Len(t, problems, 4)
	assert.ErrorIs(t, problems[0], ErrNodeExists)
	assert.ErrorIs(t, problems[1], ErrUnknownNodeType)
	assert.ErrorIs(t, problems[2], ErrNodeNotFound)
	assert.Contains(t, problems[3].Error(), "self loop")

	assert.Empty(t, newTestGraph(t).Validate())
}

func TestGraphConcurrentAccess(t *testing.T) {
	g := newTestGraph(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.SetStatus("a", NodeStatusRunning)
			g.ResetStatuses()
		}()
		go func() {
			defer wg.Done()
			_ = g.Snapshot()
			_, _ = g.GetNode("b")
		}()
	}
	wg.Wait()
	assert.Len(t, g.Snapshot().Nodes, 3)
}
