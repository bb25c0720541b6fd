//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package executor

import (
	"context"

	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/graph"
)

// Observer receives every event of a run, in order.
type Observer func(*event.Event)

// Result summarizes a finished run.
type Result struct {
	RunID      string
	Status     string
	Error      string
	Order      []string
	Unresolved []string
	// Outputs maps node id to the output of every completed node.
	Outputs map[string]string
	Events  []*event.Event
}

// Run executes snap and blocks until the run finishes, passing each event
// to the observers before folding it into the result.
func (e *Executor) Run(ctx context.Context, snap *graph.Snapshot, observers ...Observer) (*Result, error) {
	events, err := e.Execute(ctx, snap)
	if err != nil {
		return nil, err
	}
	res := &Result{Outputs: make(map[string]string)}
	for evt := range events {
		for _, observe := range observers {
			observe(evt)
		}
		res.apply(evt)
	}
	return res, nil
}

func (r *Result) apply(evt *event.Event) {
	r.Events = append(r.Events, evt)
	r.RunID = evt.RunID
	switch evt.Type {
	case event.TypeRunStarted:
		r.Order = evt.Order
	case event.TypeNodeCompleted:
		r.Outputs[evt.NodeID] = evt.Output
	case event.TypeRunFinished:
		r.Status = evt.Status
		r.Error = evt.Error
		r.Unresolved = evt.Unresolved
	}
}

// Types lists the event types of the run in emission order.
func (r *Result) Types() []event.Type {
	types := make([]event.Type, len(r.Events))
	for i, evt := range r.Events {
		types[i] = evt.Type
	}
	return types
}
