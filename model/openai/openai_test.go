//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openaigo "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Hello there."},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
}`

func newTestModel(t *testing.T, handler http.HandlerFunc, opts ...Option) *Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{
		WithAPIKey("test-key"),
		WithBaseURL(server.URL + "/"),
		WithOpenAIOptions(openaiopt.WithMaxRetries(0)),
	}, opts...)
	return New("gpt-4o-mini", opts...)
}

func TestModel_GenerateContent(t *testing.T) {
	var body map[string]any
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	})

	var gotResponse *openaigo.ChatCompletion
	m.chatResponseCallback = func(_ context.Context, _ *openaigo.ChatCompletionNewParams, rsp *openaigo.ChatCompletion) {
		gotResponse = rsp
	}

	rsp, err := model.Collect(context.Background(), m, &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("Be brief."),
			model.NewUserMessage("Hi"),
		},
		GenerationConfig: model.GenerationConfig{
			Temperature: model.Float64Ptr(0.2),
			MaxTokens:   model.IntPtr(64),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", rsp.Text())
	assert.Equal(t, "chatcmpl-1", rsp.ID)
	assert.Equal(t, "gpt-4o-mini", rsp.Model)
	assert.Equal(t, &model.Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8}, rsp.Usage)
	require.NotNil(t, rsp.Choices[0].FinishReason)
	assert.Equal(t, "stop", *rsp.Choices[0].FinishReason)
	assert.NotNil(t, gotResponse)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, 0.2, body["temperature"])
	assert.Equal(t, float64(64), body["max_completion_tokens"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestModel_GenerateContentAPIError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"message": "bad model", "type": "invalid_request_error"}}`)
	})

	_, err := model.Collect(context.Background(), m, &model.Request{
		Messages: []model.Message{model.NewUserMessage("Hi")},
	})
	var rspErr *model.ResponseError
	require.ErrorAs(t, err, &rspErr)
	assert.Equal(t, model.ErrorTypeAPIError, rspErr.Type)
	assert.Contains(t, rspErr.Message, "400")
}

func TestModel_GenerateContentNilRequest(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("k"))
	_, err := m.GenerateContent(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)
}

func TestModel_buildChatRequestLeavesUnsetFields(t *testing.T) {
	m := New("gpt-4o-mini", WithAPIKey("k"))
	req := m.buildChatRequest(&model.Request{Messages: []model.Message{model.NewUserMessage("x")}})
	assert.False(t, req.Temperature.Valid())
	assert.False(t, req.MaxCompletionTokens.Valid())
	assert.Len(t, req.Messages, 1)
}

func TestOptions(t *testing.T) {
	o := defaultOptions
	for _, opt := range []Option{
		WithAPIKey("k"),
		WithBaseURL("http://localhost"),
		WithChannelBufferSize(0),
		WithHTTPClientOptions(model.WithHTTPClientTransport(http.DefaultTransport)),
	} {
		opt(&o)
	}
	assert.Equal(t, "k", o.APIKey)
	assert.Equal(t, "http://localhost", o.BaseURL)
	assert.Equal(t, defaultChannelBufferSize, o.ChannelBufferSize)
	assert.Len(t, o.HTTPClientOptions, 1)
}
