//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package workspace ties the live workflow graph to the executor and the
// run log. It is the single writer of both the log and the node statuses.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/executor"
	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/runlog"
)

// Option configures a Workspace.
type Option func(*Workspace)

// WithStore uses store as the run log.
func WithStore(store *runlog.Store) Option {
	return func(w *Workspace) {
		if store != nil {
			w.store = store
		}
	}
}

// WithClock overrides the clock used for template node ids.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		if now != nil {
			w.now = now
		}
	}
}

// Workspace is one editable workflow and its latest run.
type Workspace struct {
	graph    *graph.Graph
	executor *executor.Executor
	store    *runlog.Store
	now      func() time.Time

	// drainMu serializes projection of consecutive runs.
	drainMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates a workspace around g that runs workflows with exec.
func New(g *graph.Graph, exec *executor.Executor, opts ...Option) *Workspace {
	if g == nil {
		g = graph.New(nil, nil)
	}
	w := &Workspace{
		graph:    g,
		executor: exec,
		store:    runlog.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Graph returns the live graph.
func (w *Workspace) Graph() *graph.Graph { return w.graph }

// Store returns the run log.
func (w *Workspace) Store() *runlog.Store { return w.store }

// IsRunning reports whether a run is in progress.
func (w *Workspace) IsRunning() bool {
	return w.executor.IsRunning() || w.store.IsRunning()
}

// RunWorkflow starts a run of the current graph and returns immediately.
// A request while a run is in progress is a no-op.
func (w *Workspace) RunWorkflow(ctx context.Context) error {
	snap := w.graph.Snapshot()
	for _, problem := range w.graph.Validate() {
		log.WarnfContext(ctx, "workflow graph: %v", problem)
	}
	events, err := w.executor.Execute(ctx, snap)
	if errors.Is(err, executor.ErrRunInProgress) {
		log.DebugfContext(ctx, "run requested while another run is in progress")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run workflow: %w", err)
	}
	w.wg.Add(1)
	go w.drain(events)
	return nil
}

// RunAndWait starts a run and waits until its events are projected.
func (w *Workspace) RunAndWait(ctx context.Context) (runlog.Snapshot, error) {
	if err := w.RunWorkflow(ctx); err != nil {
		return runlog.Snapshot{}, err
	}
	w.Wait()
	return w.store.Snapshot(), nil
}

// Wait blocks until every started run has been projected.
func (w *Workspace) Wait() {
	w.wg.Wait()
}

func (w *Workspace) drain(events <-chan *event.Event) {
	defer w.wg.Done()
	w.drainMu.Lock()
	defer w.drainMu.Unlock()
	for evt := range events {
		w.applyStatus(evt)
		w.store.Apply(evt)
	}
}

// applyStatus mirrors run progress onto the live graph nodes.
func (w *Workspace) applyStatus(evt *event.Event) {
	switch evt.Type {
	case event.TypeRunStarted:
		w.graph.ResetStatuses()
	case event.TypeNodeStarted:
		w.graph.SetStatus(evt.NodeID, graph.NodeStatusRunning)
	case event.TypeNodeCompleted:
		w.graph.SetStatus(evt.NodeID, graph.NodeStatusCompleted)
	case event.TypeNodeFailed:
		w.graph.SetStatus(evt.NodeID, graph.NodeStatusError)
	}
}

// AddNodeFromTemplate drops a node of type t at pos. When the time based id
// is taken, a random suffix is used instead.
func (w *Workspace) AddNodeFromTemplate(t graph.NodeType, pos graph.Position) (graph.Node, error) {
	n, err := graph.NewNodeFromTemplate(t, pos, w.now())
	if err != nil {
		return graph.Node{}, err
	}
	err = w.graph.AddNode(n)
	if errors.Is(err, graph.ErrNodeExists) {
		n.ID = fmt.Sprintf("%s_%s", t, uuid.NewString())
		err = w.graph.AddNode(n)
	}
	if err != nil {
		return graph.Node{}, err
	}
	return n, nil
}

// AddNode inserts a fully specified node.
func (w *Workspace) AddNode(n graph.Node) error {
	return w.graph.AddNode(n)
}

// UpdateNode applies a properties form change to a node.
func (w *Workspace) UpdateNode(id, label, description string, config map[string]any) (graph.Node, error) {
	return w.graph.UpdateNode(id, graph.NodeData{Label: label, Description: description, Config: config})
}

// MoveNode records a node's new canvas position.
func (w *Workspace) MoveNode(id string, pos graph.Position) error {
	return w.graph.MoveNode(id, pos)
}

// RemoveNode deletes a node, its edges and its status.
func (w *Workspace) RemoveNode(id string) error {
	if err := w.graph.RemoveNode(id); err != nil {
		return err
	}
	w.store.Forget(id)
	return nil
}

// Connect adds an edge.
func (w *Workspace) Connect(source, target string) (graph.Edge, error) {
	return w.graph.Connect(source, target)
}

// RemoveEdge deletes an edge.
func (w *Workspace) RemoveEdge(id string) error {
	return w.graph.RemoveEdge(id)
}

// Replace swaps the whole graph.
func (w *Workspace) Replace(snap *graph.Snapshot) {
	if snap == nil {
		snap = &graph.Snapshot{}
	}
	w.graph.Replace(snap.Nodes, snap.Edges)
}

// Snapshot returns a copy of the current graph.
func (w *Workspace) Snapshot() *graph.Snapshot {
	return w.graph.Snapshot()
}

// Close waits for pending projections and releases the executor.
func (w *Workspace) Close() {
	w.Wait()
	w.executor.Close()
}
