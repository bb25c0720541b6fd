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
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-flow-go/model/gemini"
	"trpc.group/trpc-go/trpc-flow-go/model/openai"
)

// Option configures how a model instance should be constructed.
type Option func(*Options)

// Options contains resolved settings used when constructing provider-backed models.
type Options struct {
	ProviderName        string            // ProviderName is the provider identifier passed to Model.
	ModelName           string            // ModelName is the concrete model identifier.
	APIKey              string            // APIKey holds the credential used for downstream SDK initialization.
	BaseURL             string            // BaseURL overrides the default endpoint when specified.
	HTTPClientTransport http.RoundTripper // HTTPClientTransport allows customizing the HTTP transport.
	Timeout             time.Duration     // Timeout bounds each request; zero means none.
	ChannelBufferSize   *int              // ChannelBufferSize is the response channel buffer size.
	OpenAIOption        []openai.Option   // OpenAIOption stores additional OpenAI options.
	GeminiOption        []gemini.Option   // GeminiOption stores additional Gemini options.
}

// WithAPIKey records the API key for the provider.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL records the base URL for the provider.
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithHTTPClientTransport configures the HTTP transport for the provider.
func WithHTTPClientTransport(transport http.RoundTripper) Option {
	return func(o *Options) {
		o.HTTPClientTransport = transport
	}
}

// WithTimeout bounds every request sent by the provider.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithChannelBufferSize records the response channel buffer size.
func WithChannelBufferSize(size int) Option {
	return func(o *Options) {
		o.ChannelBufferSize = &size
	}
}

// WithOpenAIOption appends raw OpenAI options.
func WithOpenAIOption(opt ...openai.Option) Option {
	return func(o *Options) {
		o.OpenAIOption = append(o.OpenAIOption, opt...)
	}
}

// WithGeminiOption appends raw Gemini options.
func WithGeminiOption(opt ...gemini.Option) Option {
	return func(o *Options) {
		o.GeminiOption = append(o.GeminiOption, opt...)
	}
}
