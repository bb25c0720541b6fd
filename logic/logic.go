//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package logic computes the output of a single workflow node from its type,
// its input text and its configuration.
package logic

import (
	"context"
	"fmt"
	"runtime/debug"

	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

const (
	// ErrorPrefix starts every node level failure text.
	ErrorPrefix = "Error: "
	// UnknownErrorMessage replaces an empty failure message.
	UnknownErrorMessage = "Unknown error occurred during AI execution"
	// UnknownNodeTypeOutput is produced by nodes of an unsupported type.
	UnknownNodeTypeOutput = "Unknown node type executed."

	defaultAnalysisTemperature = 0.2
)

// Provider computes a node's output.
//
// Implementations are expected to turn node failures into output text. A
// returned error or a panic is a contract violation that aborts the run.
type Provider interface {
	Execute(ctx context.Context, nodeType graph.NodeType, input string, cfg graph.NodeConfig) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, nodeType graph.NodeType, input string, cfg graph.NodeConfig) (string, error)

// Execute implements Provider.
func (f ProviderFunc) Execute(ctx context.Context, nodeType graph.NodeType, input string, cfg graph.NodeConfig) (string, error) {
	return f(ctx, nodeType, input, cfg)
}

// Option configures a Default provider.
type Option func(*Default)

// WithAnalysisTemperature overrides the temperature used by ai_analysis
// nodes, 0.2 by default.
func WithAnalysisTemperature(t float64) Option {
	return func(d *Default) {
		d.analysisTemperature = t
	}
}

// Default is the built-in Provider. It never returns an error: failures,
// including panics of the model backend, become "Error: <message>" text.
type Default struct {
	model               model.Model
	analysisTemperature float64
}

// New creates the default provider backed by m.
func New(m model.Model, opts ...Option) *Default {
	d := &Default{
		model:               m,
		analysisTemperature: defaultAnalysisTemperature,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute implements Provider.
func (d *Default) Execute(
	ctx context.Context,
	nodeType graph.NodeType,
	input string,
	cfg graph.NodeConfig,
) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorfContext(ctx, "node logic panic: type=%s, panic=%v\n%s", nodeType, r, debug.Stack())
			output = errorText(fmt.Sprint(r))
			err = nil
		}
	}()
	if cfg == nil || cfg.NodeType() != nodeType {
		cfg = graph.DecodeConfig(nodeType, nil)
	}

	switch c := cfg.(type) {
	case graph.TriggerConfig:
		if c.InitialInput != "" {
			return c.InitialInput, nil
		}
		return input, nil
	case graph.OutputConfig:
		return input, nil
	case graph.GenerationConfig:
		return d.generate(ctx, generationRequest(input, c)), nil
	case graph.AnalysisConfig:
		return d.generate(ctx, analysisRequest(input, c, d.analysisTemperature)), nil
	case graph.ChatConfig:
		return d.generate(ctx, chatRequest(input, c)), nil
	default:
		return UnknownNodeTypeOutput, nil
	}
}

func (d *Default) generate(ctx context.Context, req *model.Request) string {
	if d.model == nil {
		return errorText("no model configured")
	}
	rsp, err := model.Collect(ctx, d.model, req)
	if err != nil {
		log.WarnfContext(ctx, "model execution failed: model=%s, err=%v", d.model.Info().Name, err)
		return errorText(err.Error())
	}
	return rsp.Text()
}

func errorText(msg string) string {
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return ErrorPrefix + msg
}
