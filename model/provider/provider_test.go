//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/model/gemini"
	"trpc.group/trpc-go/trpc-flow-go/model/openai"
)

type testModel struct{}

func (testModel) GenerateContent(context.Context, *model.Request) (<-chan *model.Response, error) {
	return nil, nil
}

func (testModel) Info() model.Info { return model.Info{Name: "test"} }

func TestModelUnknownProvider(t *testing.T) {
	_, err := Model("not-exist", "gpt")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Subset(t, Names(), []string{NameGemini, NameOpenAI})
}

func TestRegisterFactoryOverridesDefault(t *testing.T) {
	original, ok := Get(NameOpenAI)
	require.True(t, ok)

	var captured *Options
	Register(NameOpenAI, func(opts *Options) (model.Model, error) {
		captured = opts
		return testModel{}, nil
	})
	defer Register(NameOpenAI, original)

	m, err := Model(NameOpenAI, "test-model",
		WithAPIKey("key"),
		WithBaseURL("http://localhost"),
		WithChannelBufferSize(16),
		WithTimeout(time.Second),
		WithHTTPClientTransport(http.DefaultTransport),
		WithOpenAIOption(openai.WithChannelBufferSize(2)),
		WithGeminiOption(gemini.WithChannelBufferSize(2)),
	)
	require.NoError(t, err)
	assert.Equal(t, "test", m.Info().Name)
	require.NotNil(t, captured)
	assert.Equal(t, NameOpenAI, captured.ProviderName)
	assert.Equal(t, "test-model", captured.ModelName)
	assert.Equal(t, "key", captured.APIKey)
	assert.Equal(t, "http://localhost", captured.BaseURL)
	require.NotNil(t, captured.ChannelBufferSize)
	assert.Equal(t, 16, *captured.ChannelBufferSize)
	assert.Equal(t, time.Second, captured.Timeout)
	assert.Len(t, captured.OpenAIOption, 1)
	assert.Len(t, captured.GeminiOption, 1)
}

func TestOpenAIProvider(t *testing.T) {
	m, err := Model(NameOpenAI, "gpt-4o-mini", WithAPIKey("k"), WithTimeout(time.Second))
	require.NoError(t, err)
	_, ok := m.(*openai.Model)
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)
}

func TestGeminiProvider(t *testing.T) {
	m, err := Model(NameGemini, "", WithAPIKey("k"))
	require.NoError(t, err)
	_, ok := m.(*gemini.Model)
	assert.True(t, ok)
	assert.Equal(t, gemini.DefaultModelName, m.Info().Name)
}

func TestHTTPClientOptions(t *testing.T) {
	assert.Empty(t, httpClientOptions(&Options{}))
	assert.Len(t, httpClientOptions(&Options{
		HTTPClientTransport: http.DefaultTransport,
		Timeout:             time.Second,
	}), 2)
}
