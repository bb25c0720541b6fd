//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

func newMockedModel(t *testing.T, opts ...Option) (*Model, *MockModels) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockClient := NewMockClient(ctrl)
	mockModels := NewMockModels(ctrl)
	mockClient.EXPECT().Models().Return(mockModels).AnyTimes()
	m, err := New(context.Background(), "", append(opts, withClient(mockClient))...)
	require.NoError(t, err)
	return m, mockModels
}

func TestModel_GenerateContent(t *testing.T) {
	req := &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage("You are a technical writer."),
			model.NewUserMessage("Summarize hooks."),
		},
		GenerationConfig: model.GenerationConfig{
			Temperature: model.Float64Ptr(0),
			MaxTokens:   model.IntPtr(500),
		},
	}
	rsp := &genai.GenerateContentResponse{
		ResponseID:   "r1",
		ModelVersion: "gemini-2.5-flash-001",
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "thinking", Thought: true},
						{Text: "Hooks "},
						{Text: "are functions."},
					},
				},
				FinishReason: genai.FinishReasonStop,
			},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     3,
			CandidatesTokenCount: 4,
			TotalTokenCount:      7,
		},
	}

	var gotRequest bool
	m, mockModels := newMockedModel(t, WithChatRequestCallback(
		func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) {
			gotRequest = true
		},
	))
	mockModels.EXPECT().
		GenerateContent(gomock.Any(), DefaultModelName, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, contents []*genai.Content,
			config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			require.Len(t, contents, 1)
			assert.Equal(t, genai.NewContentFromText("Summarize hooks.", genai.RoleUser), contents[0])
			require.NotNil(t, config.SystemInstruction)
			assert.Equal(t, "You are a technical writer.", config.SystemInstruction.Parts[0].Text)
			require.NotNil(t, config.Temperature)
			assert.Equal(t, float32(0), *config.Temperature)
			assert.Equal(t, int32(500), config.MaxOutputTokens)
			return rsp, nil
		})

	got, err := model.Collect(context.Background(), m, req)
	require.NoError(t, err)
	assert.True(t, gotRequest)
	assert.Equal(t, "Hooks are functions.", got.Text())
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "gemini-2.5-flash-001", got.Model)
	require.NotNil(t, got.Choices[0].FinishReason)
	assert.Equal(t, string(genai.FinishReasonStop), *got.Choices[0].FinishReason)
	assert.Equal(t, &model.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, got.Usage)
}

func TestModel_GenerateContentError(t *testing.T) {
	m, mockModels := newMockedModel(t)
	mockModels.EXPECT().
		GenerateContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("quota exceeded"))

	_, err := model.Collect(context.Background(), m, &model.Request{
		Messages: []model.Message{model.NewUserMessage("hi")},
	})
	var rspErr *model.ResponseError
	require.ErrorAs(t, err, &rspErr)
	assert.Equal(t, "quota exceeded", rspErr.Message)
	assert.Equal(t, model.ErrorTypeAPIError, rspErr.Type)
}

func TestModel_GenerateContentNilRequest(t *testing.T) {
	m, _ := newMockedModel(t)
	_, err := m.GenerateContent(context.Background(), nil)
	assert.Error(t, err)
}

func TestModel_Info(t *testing.T) {
	m, _ := newMockedModel(t)
	assert.Equal(t, DefaultModelName, m.Info().Name)
}

func TestModel_convertMessages(t *testing.T) {
	m := &Model{}
	got := m.convertMessages([]model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("question"),
		{Role: model.RoleAssistant, Content: "answer"},
	})
	assert.Equal(t, []*genai.Content{
		genai.NewContentFromText("question", genai.RoleUser),
		genai.NewContentFromText("answer", genai.RoleModel),
	}, got)
}

func TestModel_buildChatConfig(t *testing.T) {
	m := &Model{}
	cfg := m.buildChatConfig(&model.Request{Messages: []model.Message{model.NewUserMessage("x")}})
	assert.Nil(t, cfg.SystemInstruction)
	assert.Nil(t, cfg.Temperature)
	assert.Zero(t, cfg.MaxOutputTokens)
}

func TestBuildFinalResponseNil(t *testing.T) {
	m := &Model{name: DefaultModelName}
	rsp := m.buildFinalResponse(nil)
	assert.True(t, rsp.Done)
	assert.Empty(t, rsp.Text())
	assert.Equal(t, DefaultModelName, rsp.Model)
}
