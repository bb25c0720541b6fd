//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides the Gemini model backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Model implements the model.Model interface for Gemini API.
type Model struct {
	client               Client
	name                 string
	channelBufferSize    int
	chatRequestCallback  ChatRequestCallbackFunc
	chatResponseCallback ChatResponseCallbackFunc
}

// New creates a new Gemini model. An empty name selects DefaultModelName.
func New(ctx context.Context, name string, opts ...Option) (*Model, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		name = DefaultModelName
	}
	client := o.client
	if client == nil {
		cfg := buildClientConfig(&o)
		genaiClient, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		client = &clientWrapper{client: genaiClient}
	}
	return &Model{
		client:               client,
		name:                 name,
		channelBufferSize:    o.channelBufferSize,
		chatRequestCallback:  o.chatRequestCallback,
		chatResponseCallback: o.chatResponseCallback,
	}, nil
}

func buildClientConfig(o *options) *genai.ClientConfig {
	cfg := &genai.ClientConfig{}
	if o.geminiClientConfig != nil {
		*cfg = *o.geminiClientConfig
	}
	if o.apiKey != "" {
		cfg.APIKey = o.apiKey
	}
	if cfg.Backend == genai.BackendUnspecified {
		cfg.Backend = genai.BackendGeminiAPI
	}
	if cfg.HTTPClient == nil && len(o.httpClientOptions) > 0 {
		cfg.HTTPClient = model.DefaultNewHTTPClient(o.httpClientOptions...)
	}
	return cfg
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name: m.name,
	}
}

// GenerateContent implements the model.Model interface.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	contents := m.convertMessages(request.Messages)
	generateConfig := m.buildChatConfig(request)
	responseChan := make(chan *model.Response, m.channelBufferSize)
	go func() {
		defer close(responseChan)

		if m.chatRequestCallback != nil {
			m.chatRequestCallback(ctx, contents, generateConfig)
		}
		m.handleResponse(ctx, contents, responseChan, generateConfig)
	}()
	return responseChan, nil
}

func (m *Model) handleResponse(
	ctx context.Context,
	contents []*genai.Content,
	responseChan chan<- *model.Response,
	generateConfig *genai.GenerateContentConfig,
) {
	rsp, err := m.client.Models().GenerateContent(ctx, m.name, contents, generateConfig)
	if err != nil {
		log.DebugfContext(ctx, "gemini generate content failed: model=%s, err=%v", m.name, err)
		errorResponse := &model.Response{
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeAPIError,
			},
			Timestamp: time.Now(),
			Done:      true,
		}
		select {
		case responseChan <- errorResponse:
		case <-ctx.Done():
		}
		return
	}
	if m.chatResponseCallback != nil {
		m.chatResponseCallback(ctx, contents, generateConfig, rsp)
	}
	select {
	case responseChan <- m.buildFinalResponse(rsp):
	case <-ctx.Done():
	}
}

func (m *Model) buildFinalResponse(rsp *genai.GenerateContentResponse) *model.Response {
	response := &model.Response{
		Object:    model.ObjectTypeChatCompletion,
		Model:     m.name,
		Timestamp: time.Now(),
		Done:      true,
	}
	if rsp == nil {
		return response
	}
	response.ID = rsp.ResponseID
	if rsp.ModelVersion != "" {
		response.Model = rsp.ModelVersion
	}
	text, finishReason := convertCandidates(rsp.Candidates)
	response.Choices = []model.Choice{{
		Index:   0,
		Message: model.Message{Role: model.RoleAssistant, Content: text},
	}}
	if finishReason != "" {
		response.Choices[0].FinishReason = &finishReason
	}
	if usage := rsp.UsageMetadata; usage != nil {
		response.Usage = &model.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return response
}

// convertCandidates joins the text parts of all candidates. Thought parts
// are dropped.
func convertCandidates(candidates []*genai.Candidate) (string, string) {
	var (
		textBuilder  strings.Builder
		finishReason string
	)
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason != "" {
			finishReason = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			textBuilder.WriteString(part.Text)
		}
	}
	return textBuilder.String(), finishReason
}

// buildChatConfig converts our Request to Gemini request config.
func (m *Model) buildChatConfig(request *model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if sys := request.SystemInstruction(); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if request.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*request.MaxTokens)
	}
	if request.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*request.Temperature))
	}
	return cfg
}

// convertMessages converts the non system messages to Gemini contents.
func (m *Model) convertMessages(messages []model.Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		role := genai.RoleUser
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		result = append(result, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}
	return result
}
