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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tpls := Templates()
	require.Len(t, tpls, len(NodeTypes))
	for i, tpl := range tpls {
		assert.Equal(t, NodeTypes[i], tpl.Type)
		assert.NotEmpty(t, tpl.Label)
		assert.NotNil(t, tpl.DefaultConfig)
	}

	tpls[0].DefaultConfig[ConfigKeyInitialInput] = "mutated"
	again, ok := TemplateFor(NodeTypeTriggerStart)
	require.True(t, ok)
	assert.Equal(t, "Hello world", again.DefaultConfig[ConfigKeyInitialInput])

	_, ok = TemplateFor("webhook")
	assert.False(t, ok)
}

func TestNewNodeFromTemplate(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	n, err := NewNodeFromTemplate(NodeTypeAIChat, Position{X: 1, Y: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, "ai_chat_1700000000123", n.ID)
	assert.Equal(t, "Chat Simulator", n.Data.Label)
	assert.Equal(t, NodeStatusIdle, n.Data.Status)
	assert.Equal(t, Position{X: 1, Y: 2}, n.Position)
	assert.Equal(t, ChatConfig{Persona: "Customer Support"}, n.TypedConfig())

	_, err = NewNodeFromTemplate("webhook", Position{}, now)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestDefaultWorkflow(t *testing.T) {
	snap := Default()
	order, err := Order(snap.Nodes, snap.Edges)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, order)
	assert.Empty(t, New(snap.Nodes, snap.Edges).Validate())

	gen, ok := snap.Node("2")
	require.True(t, ok)
	cfg, ok := gen.TypedConfig().(GenerationConfig)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxOutputTokens, cfg.MaxOutputTokens)
	assert.Equal(t, 0.7, cfg.Temperature)
}
