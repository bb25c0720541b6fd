//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package runlog folds run events into the execution log and node statuses
// shown to users.
package runlog

import (
	"maps"
	"sync"

	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
)

// Snapshot is a consistent copy of the store.
type Snapshot struct {
	RunID      string                      `json:"runId"`
	IsRunning  bool                        `json:"isRunning"`
	Logs       []Entry                     `json:"logs"`
	Statuses   map[string]graph.NodeStatus `json:"statuses"`
	Unresolved []string                    `json:"unresolved,omitempty"`
	// Version increases with every applied event.
	Version uint64 `json:"version"`
}

// Store is the projection of the events of the latest run.
type Store struct {
	mu         sync.RWMutex
	runID      string
	running    bool
	entries    []*Entry
	statuses   map[string]graph.NodeStatus
	unresolved []string
	version    uint64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		statuses: make(map[string]graph.NodeStatus),
		subs:     make(map[int]chan struct{}),
	}
}

// Apply folds evt into the store. Events of a run other than the current
// one are ignored, except run.started which begins a new run.
func (s *Store) Apply(evt *event.Event) {
	if evt == nil {
		return
	}
	s.mu.Lock()
	applied := s.apply(evt)
	if applied {
		s.version++
	}
	s.mu.Unlock()
	if applied {
		s.notify()
	}
}

func (s *Store) apply(evt *event.Event) bool {
	if evt.Type == event.TypeRunStarted {
		s.runID = evt.RunID
		s.running = true
		s.entries = nil
		s.unresolved = nil
		for id := range s.statuses {
			s.statuses[id] = graph.NodeStatusIdle
		}
		for _, id := range evt.NodeIDs {
			s.statuses[id] = graph.NodeStatusIdle
		}
		return true
	}
	if evt.RunID != s.runID {
		log.Debugf("runlog: ignore %s event of stale run %s", evt.Type, evt.RunID)
		return false
	}

	switch evt.Type {
	case event.TypeCycleDetected:
		s.unresolved = append([]string(nil), evt.Unresolved...)
	case event.TypeNodeStarted:
		s.statuses[evt.NodeID] = graph.NodeStatusRunning
		s.entries = append(s.entries, &Entry{
			NodeID:    evt.NodeID,
			NodeLabel: evt.NodeLabel,
			Timestamp: evt.Timestamp,
			Input:     evt.Input,
			Status:    StatusPending,
		})
	case event.TypeNodeCompleted:
		s.statuses[evt.NodeID] = graph.NodeStatusCompleted
		s.resolve(evt.NodeID, evt.Output, StatusSuccess, evt)
	case event.TypeNodeFailed:
		s.statuses[evt.NodeID] = graph.NodeStatusError
		s.resolve(evt.NodeID, evt.Error, StatusError, evt)
	case event.TypeRunFailed:
		s.entries = append(s.entries, &Entry{
			NodeID:    SystemNodeID,
			NodeLabel: SystemNodeLabel,
			Timestamp: evt.Timestamp,
			Output:    evt.Error,
			Status:    StatusError,
		})
	case event.TypeRunFinished:
		s.running = false
	default:
		return false
	}
	return true
}

// resolve rewrites the most recent pending entry of nodeID.
func (s *Store) resolve(nodeID, output string, status Status, evt *event.Event) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.NodeID != nodeID || e.Status != StatusPending {
			continue
		}
		d := evt.Duration
		e.Output = output
		e.Status = status
		e.Duration = &d
		return
	}
	log.Warnf("runlog: no pending entry for node %s", nodeID)
}

// Entries returns a copy of the log in append order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyEntries()
}

func (s *Store) copyEntries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
		if e.Duration != nil {
			d := *e.Duration
			out[i].Duration = &d
		}
	}
	return out
}

// Status returns the status of a node seen by the current run.
func (s *Store) Status(nodeID string) (graph.NodeStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[nodeID]
	return st, ok
}

// Statuses returns a copy of every known node status.
func (s *Store) Statuses() map[string]graph.NodeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.statuses)
}

// IsRunning reports whether the current run has not finished.
func (s *Store) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// RunID returns the id of the current run.
func (s *Store) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Unresolved returns the nodes a cycle kept out of the current run.
func (s *Store) Unresolved() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.unresolved...)
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		RunID:      s.runID,
		IsRunning:  s.running,
		Logs:       s.copyEntries(),
		Statuses:   maps.Clone(s.statuses),
		Unresolved: append([]string(nil), s.unresolved...),
		Version:    s.version,
	}
}

// Forget drops the status of a node removed from the graph.
func (s *Store) Forget(nodeID string) {
	s.mu.Lock()
	delete(s.statuses, nodeID)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// Subscribe returns a channel signalled after every change and a function
// that cancels the subscription. Signals coalesce: a slow reader sees at
// least one signal after the latest change.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
