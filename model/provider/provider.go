//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package provider provides a unified interface for constructing model.Model instances from different providers.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/model/gemini"
	"trpc.group/trpc-go/trpc-flow-go/model/openai"
)

// Provider names registered by default.
const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
)

func init() {
	Register(NameGemini, geminiProvider)
	Register(NameOpenAI, openaiProvider)
}

// Provider builds a model.Model instance.
type Provider func(opts *Options) (model.Model, error)

var (
	providersMu sync.RWMutex                // providersMu guards providers access.
	providers   = make(map[string]Provider) // providers stores provider name to provider mappings.
)

// Register registers a provider by name.
func Register(name string, provider Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = provider
}

// Get returns the provider by name or nil if not found.
func Get(name string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	provider, ok := providers[name]
	return provider, ok
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model constructs a model.Model with the given provider name, model name and options.
func Model(providerName, modelName string, opt ...Option) (model.Model, error) {
	opts := &Options{
		ProviderName: providerName,
		ModelName:    modelName,
	}
	for _, o := range opt {
		o(opts)
	}
	provider, ok := Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
	return provider(opts)
}

func httpClientOptions(opts *Options) []model.HTTPClientOption {
	var httpOpts []model.HTTPClientOption
	if opts.HTTPClientTransport != nil {
		httpOpts = append(httpOpts, model.WithHTTPClientTransport(opts.HTTPClientTransport))
	}
	if opts.Timeout > 0 {
		httpOpts = append(httpOpts, model.WithHTTPClientTimeout(opts.Timeout))
	}
	return httpOpts
}

// openaiProvider builds an OpenAI-compatible model instance using the resolved options.
func openaiProvider(opts *Options) (model.Model, error) {
	var res []openai.Option
	if opts.APIKey != "" {
		res = append(res, openai.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		res = append(res, openai.WithBaseURL(opts.BaseURL))
	}
	if httpOpts := httpClientOptions(opts); len(httpOpts) > 0 {
		res = append(res, openai.WithHTTPClientOptions(httpOpts...))
	}
	if opts.ChannelBufferSize != nil {
		res = append(res, openai.WithChannelBufferSize(*opts.ChannelBufferSize))
	}
	res = append(res, opts.OpenAIOption...)
	return openai.New(opts.ModelName, res...), nil
}

// geminiProvider builds a Gemini model instance using the resolved options.
func geminiProvider(opts *Options) (model.Model, error) {
	var res []gemini.Option
	if opts.APIKey != "" {
		res = append(res, gemini.WithAPIKey(opts.APIKey))
	}
	if httpOpts := httpClientOptions(opts); len(httpOpts) > 0 {
		res = append(res, gemini.WithHTTPClientOptions(httpOpts...))
	}
	if opts.ChannelBufferSize != nil {
		res = append(res, gemini.WithChannelBufferSize(*opts.ChannelBufferSize))
	}
	res = append(res, opts.GeminiOption...)
	return gemini.New(context.Background(), opts.ModelName, res...)
}
