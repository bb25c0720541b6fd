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

	"google.golang.org/genai"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

const (
	// DefaultModelName is the model used when New is given an empty name.
	DefaultModelName = "gemini-2.5-flash"

	defaultChannelBufferSize = 1
)

// ChatRequestCallbackFunc is called before a request is sent.
type ChatRequestCallbackFunc func(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
)

// ChatResponseCallbackFunc is called after a successful response.
type ChatResponseCallbackFunc func(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	rsp *genai.GenerateContentResponse,
)

// options contains configuration options for creating a Gemini model.
type options struct {
	// Buffer size for response channels (default: 1)
	channelBufferSize int
	// Callback for the chat request.
	chatRequestCallback ChatRequestCallbackFunc
	// Callback for the chat response.
	chatResponseCallback ChatResponseCallbackFunc
	// apiKey overrides the key of geminiClientConfig.
	apiKey string
	// httpClientOptions builds the HTTP client handed to genai.
	httpClientOptions []model.HTTPClientOption
	// geminiClientConfig for building gemini client.
	geminiClientConfig *genai.ClientConfig
	// client replaces the genai client, used in tests.
	client Client
}

var defaultOptions = options{
	channelBufferSize: defaultChannelBufferSize,
}

// Option is a function that configures a Gemini model.
type Option func(*options)

// WithChannelBufferSize sets the response channel buffer size, 1 by default.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = defaultChannelBufferSize
		}
		o.channelBufferSize = size
	}
}

// WithChatRequestCallback sets the function to be called before sending a chat request.
func WithChatRequestCallback(fn ChatRequestCallbackFunc) Option {
	return func(opts *options) {
		opts.chatRequestCallback = fn
	}
}

// WithChatResponseCallback sets the function to be called after receiving a chat response.
func WithChatResponseCallback(fn ChatResponseCallbackFunc) Option {
	return func(opts *options) {
		opts.chatResponseCallback = fn
	}
}

// WithAPIKey sets the Gemini API key. It selects the Gemini API backend
// unless the client config names another one.
func WithAPIKey(key string) Option {
	return func(opts *options) {
		opts.apiKey = key
	}
}

// WithHTTPClientOptions configures the HTTP client used by genai.
func WithHTTPClientOptions(httpOpts ...model.HTTPClientOption) Option {
	return func(opts *options) {
		opts.httpClientOptions = append(opts.httpClientOptions, httpOpts...)
	}
}

// WithGeminiClientConfig sets the ClientConfig used for gemini Client initialization.
func WithGeminiClientConfig(c *genai.ClientConfig) Option {
	return func(opts *options) {
		opts.geminiClientConfig = c
	}
}

// withClient injects a Client instead of building a genai one.
func withClient(c Client) Option {
	return func(opts *options) {
		opts.client = c
	}
}
