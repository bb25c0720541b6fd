//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package event defines the events a workflow run emits. The run log and the
// node statuses shown to users are projections of this stream.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of a run event.
type Type string

// Run event types.
const (
	// TypeRunStarted is emitted once per run before any node executes.
	TypeRunStarted Type = "run.started"
	// TypeCycleDetected reports nodes that could not be ordered.
	TypeCycleDetected Type = "run.cycle_detected"
	// TypeNodeStarted is emitted when a node begins executing.
	TypeNodeStarted Type = "node.started"
	// TypeNodeCompleted is emitted when a node produced its output.
	TypeNodeCompleted Type = "node.completed"
	// TypeNodeFailed is emitted when a node's logic broke its contract.
	TypeNodeFailed Type = "node.failed"
	// TypeRunFailed is emitted when the run aborts.
	TypeRunFailed Type = "run.failed"
	// TypeRunFinished is always the last event of a run.
	TypeRunFinished Type = "run.finished"
)

// Final run statuses carried by TypeRunFinished.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Event is a single observation of a workflow run.
type Event struct {
	// ID is unique per event.
	ID string `json:"id"`
	// RunID groups the events of one run.
	RunID string `json:"runId"`
	// Type is the event kind.
	Type Type `json:"type"`
	// Timestamp is when the event was created.
	Timestamp time.Time `json:"timestamp"`

	NodeID    string `json:"nodeId,omitempty"`
	NodeLabel string `json:"nodeLabel,omitempty"`
	NodeType  string `json:"nodeType,omitempty"`

	// Input is the text handed to the node.
	Input string `json:"input,omitempty"`
	// Output is the text the node produced.
	Output string `json:"output,omitempty"`
	// Duration is the elapsed time of the node's logic call.
	Duration time.Duration `json:"duration,omitempty"`
	// Error describes a node or run failure.
	Error string `json:"error,omitempty"`

	// NodeIDs lists every node of the run snapshot (run.started).
	NodeIDs []string `json:"nodeIds,omitempty"`
	// Order is the computed execution order (run.started).
	Order []string `json:"order,omitempty"`
	// Unresolved lists the nodes left out of the order by a cycle.
	Unresolved []string `json:"unresolved,omitempty"`
	// Status is the final run status (run.finished).
	Status string `json:"status,omitempty"`
}

// Option configures an Event.
type Option func(*Event)

// New creates a new event of the given type for a run.
func New(runID string, typ Type, opts ...Option) *Event {
	e := &Event{
		ID:        uuid.NewString(),
		RunID:     runID,
		Type:      typ,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithNode sets the node the event is about.
func WithNode(id, label, nodeType string) Option {
	return func(e *Event) {
		e.NodeID = id
		e.NodeLabel = label
		e.NodeType = nodeType
	}
}

// WithInput sets the node input.
func WithInput(input string) Option {
	return func(e *Event) { e.Input = input }
}

// WithOutput sets the node output.
func WithOutput(output string) Option {
	return func(e *Event) { e.Output = output }
}

// WithDuration sets the node duration.
func WithDuration(d time.Duration) Option {
	return func(e *Event) { e.Duration = d }
}

// WithError sets the failure message.
func WithError(msg string) Option {
	return func(e *Event) { e.Error = msg }
}

// WithNodeIDs sets the ids of every node in the run.
func WithNodeIDs(ids []string) Option {
	return func(e *Event) { e.NodeIDs = append([]string(nil), ids...) }
}

// WithOrder sets the execution order.
func WithOrder(order []string) Option {
	return func(e *Event) { e.Order = append([]string(nil), order...) }
}

// WithUnresolved sets the ids left out of the order.
func WithUnresolved(ids []string) Option {
	return func(e *Event) { e.Unresolved = append([]string(nil), ids...) }
}

// WithStatus sets the final run status.
func WithStatus(status string) Option {
	return func(e *Event) { e.Status = status }
}

// WithTimestamp overrides the creation time.
func WithTimestamp(ts time.Time) Option {
	return func(e *Event) { e.Timestamp = ts }
}

// IsTerminal reports whether e is the last event of its run.
func (e *Event) IsTerminal() bool {
	return e != nil && e.Type == TypeRunFinished
}
