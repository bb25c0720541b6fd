//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package executor runs a workflow snapshot node by node in topological
// order and reports progress as a stream of events.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/graph"
	itelemetry "trpc.group/trpc-go/trpc-flow-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/logic"
	atrace "trpc.group/trpc-go/trpc-flow-go/telemetry/trace"
)

// InputSeparator joins the outputs of a node's predecessors.
const InputSeparator = "\n\n"

var (
	// ErrRunInProgress is returned when a run is requested while another is active.
	ErrRunInProgress = errors.New("workflow run already in progress")
	// ErrNilSnapshot is returned when no graph snapshot is given.
	ErrNilSnapshot = errors.New("workflow snapshot is nil")
	// ErrNilProvider is returned when the executor has no node logic provider.
	ErrNilProvider = errors.New("node logic provider is nil")
)

// Executor runs one workflow at a time.
type Executor struct {
	provider logic.Provider
	opts     Options
	pool     *ants.Pool
	ownPool  bool
	running  atomic.Bool
}

// New creates an executor that delegates node work to provider.
func New(provider logic.Provider, opts ...Option) (*Executor, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	e := &Executor{provider: provider, opts: options, pool: options.Pool}
	if e.pool == nil {
		if e.pool, err = ants.NewPool(defaultPoolSize); err != nil {
			return nil, fmt.Errorf("create run pool: %w", err)
		}
		e.ownPool = true
	}
	return e, nil
}

// IsRunning reports whether a run is in progress.
func (e *Executor) IsRunning() bool {
	return e.running.Load()
}

// Close releases the run pool if the executor created it.
func (e *Executor) Close() {
	if e.ownPool {
		e.pool.Release()
	}
}

// Execute starts a run of snap and returns its event stream. The stream
// always ends with a run.finished event and is then closed. Cancelling ctx
// does not stop a started run.
func (e *Executor) Execute(ctx context.Context, snap *graph.Snapshot) (<-chan *event.Event, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	r := &run{
		executor: e,
		id:       e.opts.RunIDGenerator(),
		snap:     snap.Clone(),
		events:   make(chan *event.Event, e.opts.ChannelBufferSize),
		outputs:  make(map[string]string, len(snap.Nodes)),
	}
	runCtx := context.WithoutCancel(ctx)
	if err := e.pool.Submit(func() { r.execute(runCtx) }); err != nil {
		e.running.Store(false)
		return nil, fmt.Errorf("submit workflow run: %w", err)
	}
	return r.events, nil
}

// run is the state of a single execution.
type run struct {
	executor   *Executor
	id         string
	snap       *graph.Snapshot
	events     chan *event.Event
	outputs    map[string]string
	status     string
	unresolved []string
	err        error
}

func (r *run) execute(ctx context.Context) {
	ctx = log.WithFields(ctx, "run_id", r.id)
	ctx, span := atrace.Tracer.Start(ctx, itelemetry.SpanNameRunWorkflow)
	r.status = event.RunStatusCompleted

	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, fmt.Errorf("workflow run panicked: %v", p))
		}
		itelemetry.TraceRunEnd(span, r.status, r.unresolved, r.err)
		span.End()
		itelemetry.IncRunCount(ctx, r.status)
		r.emit(ctx, event.New(r.id, event.TypeRunFinished, r.finishedOptions()...))
		log.InfofContext(ctx, "workflow run %s finished with status %s", r.id, r.status)
		r.executor.running.Store(false)
		close(r.events)
	}()

	itelemetry.TraceRunStart(span, r.id, len(r.snap.Nodes))
	order, err := graph.Order(r.snap.Nodes, r.snap.Edges)
	r.emit(ctx, event.New(r.id, event.TypeRunStarted,
		event.WithNodeIDs(r.snap.NodeIDs()),
		event.WithOrder(order),
	))
	if err != nil && !r.handleOrderError(ctx, err) {
		return
	}

	for _, id := range order {
		node, ok := r.snap.Node(id)
		if !ok {
			continue
		}
		output, err := r.executeNode(ctx, node, r.gatherInput(id))
		if err != nil {
			r.fail(ctx, err)
			return
		}
		r.outputs[id] = output
		r.pace(ctx)
	}
}

// handleOrderError reports whether the run may continue with the partial order.
func (r *run) handleOrderError(ctx context.Context, err error) bool {
	cycleErr, ok := graph.AsCycleError(err)
	if !ok {
		r.fail(ctx, fmt.Errorf("order workflow: %w", err))
		return false
	}
	r.unresolved = append([]string(nil), cycleErr.Unresolved...)
	log.WarnfContext(ctx, "workflow run %s: %v", r.id, cycleErr)
	r.emit(ctx, event.New(r.id, event.TypeCycleDetected,
		event.WithUnresolved(r.unresolved),
		event.WithError(cycleErr.Error()),
	))
	if r.executor.opts.CyclePolicy == CyclePolicyFail {
		r.fail(ctx, cycleErr)
		return false
	}
	return true
}

// gatherInput joins the outputs of the sources of every edge targeting id,
// in edge order. Sources missing from the snapshot are skipped; sources
// that produced nothing contribute an empty string.
func (r *run) gatherInput(id string) string {
	incoming := r.snap.Incoming(id)
	if len(incoming) == 0 {
		return ""
	}
	parts := make([]string, 0, len(incoming))
	for _, e := range incoming {
		if _, ok := r.snap.Node(e.Source); !ok {
			continue
		}
		parts = append(parts, r.outputs[e.Source])
	}
	return strings.Join(parts, InputSeparator)
}

func (r *run) executeNode(ctx context.Context, node graph.Node, input string) (string, error) {
	nodeType := string(node.Type)
	ctx = log.WithFields(ctx, "node_id", node.ID)
	ctx, span := atrace.Tracer.Start(ctx, itelemetry.NewNodeSpanName(nodeType))
	defer span.End()

	r.emit(ctx, event.New(r.id, event.TypeNodeStarted,
		event.WithNode(node.ID, node.Data.Label, nodeType),
		event.WithInput(input),
	))
	log.DebugfContext(ctx, "executing node %s (%s)", node.ID, nodeType)

	start := time.Now()
	output, err := r.callProvider(ctx, node, input)
	duration := time.Since(start)

	itelemetry.TraceNode(span, itelemetry.NodeAttributes{
		RunID:    r.id,
		NodeID:   node.ID,
		Label:    node.Data.Label,
		NodeType: nodeType,
	}, input, output, err)

	if err != nil {
		itelemetry.ReportNodeMetrics(ctx, nodeType, string(graph.NodeStatusError), duration)
		log.ErrorfContext(ctx, "node %s broke the logic contract: %v", node.ID, err)
		r.emit(ctx, event.New(r.id, event.TypeNodeFailed,
			event.WithNode(node.ID, node.Data.Label, nodeType),
			event.WithError(err.Error()),
			event.WithDuration(duration),
		))
		return "", err
	}

	itelemetry.ReportNodeMetrics(ctx, nodeType, string(graph.NodeStatusCompleted), duration)
	r.emit(ctx, event.New(r.id, event.TypeNodeCompleted,
		event.WithNode(node.ID, node.Data.Label, nodeType),
		event.WithOutput(output),
		event.WithDuration(duration),
	))
	return output, nil
}

// callProvider turns a provider panic into an error.
func (r *run) callProvider(ctx context.Context, node graph.Node, input string) (output string, err error) {
	defer func() {
		if p := recover(); p != nil {
			output, err = "", fmt.Errorf("%v", p)
		}
	}()
	return r.executor.provider.Execute(ctx, node.Type, input, node.TypedConfig())
}

func (r *run) fail(ctx context.Context, err error) {
	r.status = event.RunStatusFailed
	r.err = err
	r.emit(ctx, event.New(r.id, event.TypeRunFailed, event.WithError(err.Error())))
}

func (r *run) finishedOptions() []event.Option {
	opts := []event.Option{event.WithStatus(r.status)}
	if len(r.unresolved) > 0 {
		opts = append(opts, event.WithUnresolved(r.unresolved))
	}
	if r.err != nil {
		opts = append(opts, event.WithError(r.err.Error()))
	}
	return opts
}

func (r *run) pace(ctx context.Context) {
	d := r.executor.opts.PacingDelay
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (r *run) emit(ctx context.Context, evt *event.Event) {
	if err := event.EmitEventWithTimeout(ctx, r.events, evt, r.executor.opts.EmitTimeout); err != nil {
		log.WarnfContext(ctx, "workflow run %s: drop %s event: %v", r.id, evt.Type, err)
	}
}
