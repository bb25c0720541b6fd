//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import "maps"

// NodeType represents the type of a node in the graph. It decides which
// logic runs when the node executes.
type NodeType string

const (
	// NodeTypeTriggerStart starts a workflow with its configured input.
	NodeTypeTriggerStart NodeType = "trigger_start"
	// NodeTypeAIGeneration generates text with a system instruction.
	NodeTypeAIGeneration NodeType = "ai_generation"
	// NodeTypeAIAnalysis analyzes its input along configured aspects.
	NodeTypeAIAnalysis NodeType = "ai_analysis"
	// NodeTypeAIChat answers its input in a configured persona.
	NodeTypeAIChat NodeType = "ai_chat"
	// NodeTypeActionOutput passes its input through as the result.
	NodeTypeActionOutput NodeType = "action_output"
)

// NodeTypes lists the supported node types in node library order.
var NodeTypes = []NodeType{
	NodeTypeTriggerStart,
	NodeTypeAIGeneration,
	NodeTypeAIAnalysis,
	NodeTypeAIChat,
	NodeTypeActionOutput,
}

// Valid reports whether t is one of the supported node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// NodeStatus is the execution status of a node within the current run.
type NodeStatus string

const (
	NodeStatusIdle      NodeStatus = "idle"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusError     NodeStatus = "error"
)

// Position is a canvas coordinate. Execution ignores it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData holds the user editable part of a node plus its run status.
type NodeData struct {
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Config      map[string]any `json:"config" yaml:"config"`
	Status      NodeStatus     `json:"status,omitempty" yaml:"status,omitempty"`
}

// Node is a unit of work in the workflow graph.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// TypedConfig decodes the node's raw config into its typed form.
func (n Node) TypedConfig() NodeConfig {
	return DecodeConfig(n.Type, n.Data.Config)
}

// Clone returns a copy of n that shares no mutable state with it.
func (n Node) Clone() Node {
	n.Data.Config = maps.Clone(n.Data.Config)
	if n.Data.Config == nil {
		n.Data.Config = map[string]any{}
	}
	return n
}

// Edge is a directed dependency from Source to Target.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// EdgeID returns the identifier used for a connection between two nodes.
func EdgeID(source, target string) string {
	return "e" + source + "-" + target
}
