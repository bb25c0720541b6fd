//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package runlog

import (
	"encoding/json"
	"time"
)

// Status is the state of one log entry.
type Status string

// Entry statuses.
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Identity of the synthetic entry appended when a run aborts.
const (
	SystemNodeID    = "error"
	SystemNodeLabel = "System"
)

// Entry records one node execution, or a run failure, within a run.
type Entry struct {
	NodeID    string
	NodeLabel string
	// Timestamp is the instant the node started.
	Timestamp time.Time
	Input     string
	Output    string
	Status    Status
	// Duration is set once the entry leaves StatusPending.
	Duration *time.Duration
}

// IsSystem reports whether e is a run failure entry.
func (e Entry) IsSystem() bool {
	return e.NodeID == SystemNodeID && e.NodeLabel == SystemNodeLabel
}

type entryJSON struct {
	NodeID    string `json:"nodeId"`
	NodeLabel string `json:"nodeLabel"`
	Timestamp int64  `json:"timestamp"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Status    Status `json:"status"`
	Duration  *int64 `json:"duration,omitempty"`
}

// MarshalJSON encodes timestamp and duration in milliseconds.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		NodeID:    e.NodeID,
		NodeLabel: e.NodeLabel,
		Timestamp: e.Timestamp.UnixMilli(),
		Input:     e.Input,
		Output:    e.Output,
		Status:    e.Status,
	}
	if e.Duration != nil {
		ms := e.Duration.Milliseconds()
		out.Duration = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the millisecond wire form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Entry{
		NodeID:    in.NodeID,
		NodeLabel: in.NodeLabel,
		Timestamp: time.UnixMilli(in.Timestamp),
		Input:     in.Input,
		Output:    in.Output,
		Status:    in.Status,
	}
	if in.Duration != nil {
		d := time.Duration(*in.Duration) * time.Millisecond
		e.Duration = &d
	}
	return nil
}
