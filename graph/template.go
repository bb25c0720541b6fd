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
	"fmt"
	"maps"
	"time"
)

// Template describes an entry of the node library: what a freshly dropped
// node of a type looks like.
type Template struct {
	Type          NodeType       `json:"type"`
	Label         string         `json:"label"`
	Description   string         `json:"description"`
	DefaultConfig map[string]any `json:"defaultConfig"`
}

var templates = []Template{
	{
		Type:          NodeTypeTriggerStart,
		Label:         "Manual Trigger",
		Description:   "Starts the workflow manually with input text.",
		DefaultConfig: map[string]any{ConfigKeyInitialInput: "Hello world"},
	},
	{
		Type:        NodeTypeAIGeneration,
		Label:       "Gemini Generator",
		Description: "Generates text content using Gemini Flash.",
		DefaultConfig: map[string]any{
			ConfigKeySystemInstruction: DefaultSystemInstruction,
			ConfigKeyTemperature:       0.7,
			ConfigKeyMaxOutputTokens:   500,
		},
	},
	{
		Type:          NodeTypeAIAnalysis,
		Label:         "Sentiment Analysis",
		Description:   "Analyzes the sentiment of the input text.",
		DefaultConfig: map[string]any{ConfigKeyAspects: "sentiment, tone, key_topics"},
	},
	{
		Type:          NodeTypeAIChat,
		Label:         "Chat Simulator",
		Description:   "Simulates a chat response.",
		DefaultConfig: map[string]any{ConfigKeyPersona: "Customer Support"},
	},
	{
		Type:          NodeTypeActionOutput,
		Label:         "Result Output",
		Description:   "Displays the final result of the workflow.",
		DefaultConfig: map[string]any{},
	},
}

// Templates returns the node library in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		t.DefaultConfig = maps.Clone(t.DefaultConfig)
		out[i] = t
	}
	return out
}

// TemplateFor returns the template of a node type.
func TemplateFor(t NodeType) (Template, bool) {
	for _, tpl := range templates {
		if tpl.Type == t {
			tpl.DefaultConfig = maps.Clone(tpl.DefaultConfig)
			return tpl, true
		}
	}
	return Template{}, false
}

// NewNodeFromTemplate creates the node a user gets when dropping a node of
// type t at pos. The id is derived from the type and the current time.
func NewNodeFromTemplate(t NodeType, pos Position, now time.Time) (Node, error) {
	tpl, ok := TemplateFor(t)
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, t)
	}
	return Node{
		ID:       fmt.Sprintf("%s_%d", t, now.UnixMilli()),
		Type:     t,
		Position: pos,
		Data: NodeData{
			Label:       tpl.Label,
			Description: tpl.Description,
			Config:      tpl.DefaultConfig,
			Status:      NodeStatusIdle,
		},
	}, nil
}

// Default returns the demo workflow shown on first load.
func Default() *Snapshot {
	return &Snapshot{
		Nodes: []Node{
			{
				ID:       "1",
				Type:     NodeTypeTriggerStart,
				Position: Position{X: 100, Y: 200},
				Data: NodeData{
					Label:  "Manual Trigger",
					Config: map[string]any{ConfigKeyInitialInput: "Summarize the benefits of React hooks."},
					Status: NodeStatusIdle,
				},
			},
			{
				ID:       "2",
				Type:     NodeTypeAIGeneration,
				Position: Position{X: 500, Y: 200},
				Data: NodeData{
					Label: "Gemini Generator",
					Config: map[string]any{
						ConfigKeySystemInstruction: "You are a technical writer. Summarize complex topics simply.",
						ConfigKeyTemperature:       0.7,
					},
					Status: NodeStatusIdle,
				},
			},
		},
		Edges: []Edge{{ID: EdgeID("1", "2"), Source: "1", Target: "2"}},
	}
}
