//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"strings"
	"time"
)

// Error type constants for ResponseError.Type field.
const (
	ErrorTypeAPIError    = "api_error"
	ErrorTypeConfigError = "config_error"
)

// ObjectTypeChatCompletion is the object type of a complete response.
const ObjectTypeChatCompletion = "chat.completion"

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the message content.
	Message Message `json:"message,omitempty"`

	// FinishReason is the reason the choice was finished.
	// "stop", "length", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// Response is the response from the model.
//
// The Error field represents API level errors that occur after the request
// reached the backend, such as rate limits or filtered content. Errors
// returned by GenerateContent itself mean the request was never sent.
type Response struct {
	// ID is the unique identifier for this response.
	ID string `json:"id"`

	// Object describes the type of object returned (e.g., "chat.completion").
	Object string `json:"object"`

	// Model is the model used to generate the response.
	Model string `json:"model"`

	// Choices contains the completion choices.
	Choices []Choice `json:"choices"`

	// Usage contains token usage information.
	Usage *Usage `json:"usage,omitempty"`

	// Error contains API-level error information if the request failed.
	Error *ResponseError `json:"error,omitempty"`

	// Timestamp when this response was received.
	Timestamp time.Time `json:"timestamp"`

	// Done marks the final response of a request.
	Done bool `json:"done"`
}

// Text returns the concatenated message content of all choices.
func (rsp *Response) Text() string {
	if rsp == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range rsp.Choices {
		b.WriteString(c.Message.Content)
	}
	return b.String()
}

// ResponseError represents an error response from the API.
type ResponseError struct {
	// Message is the error message.
	Message string `json:"message"`

	// Type is the type of error.
	Type string `json:"type"`
}

// Error implements error.
func (e *ResponseError) Error() string {
	return e.Message
}
