//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package executor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-flow-go/event"
)

// CyclePolicy decides what a run does with nodes that cannot be ordered.
type CyclePolicy string

const (
	// CyclePolicySkip runs the nodes that could be ordered and leaves the
	// unresolved ones idle.
	CyclePolicySkip CyclePolicy = "skip"
	// CyclePolicyFail aborts the run before any node executes.
	CyclePolicyFail CyclePolicy = "fail"
)

// Valid reports whether p is a known policy.
func (p CyclePolicy) Valid() bool {
	return p == CyclePolicySkip || p == CyclePolicyFail
}

const (
	// DefaultPacingDelay is the pause after each node execution.
	DefaultPacingDelay = 500 * time.Millisecond
	// defaultChannelBufferSize is the buffer of the run event channel.
	defaultChannelBufferSize = 256
	// defaultPoolSize bounds the goroutines dispatching runs.
	defaultPoolSize = 2
)

// Options configures an Executor.
type Options struct {
	// PacingDelay is the pause after each node. Zero disables it.
	PacingDelay time.Duration
	// CyclePolicy is applied when the graph contains a cycle.
	CyclePolicy CyclePolicy
	// ChannelBufferSize is the buffer size of the event channel.
	ChannelBufferSize int
	// EmitTimeout bounds each event send. Zero waits for the consumer.
	EmitTimeout time.Duration
	// Pool dispatches runs. When nil the executor owns a small pool.
	Pool *ants.Pool
	// RunIDGenerator creates the id of each run.
	RunIDGenerator func() string
}

// Option is a function that configures an Executor.
type Option func(*Options)

// WithPacingDelay sets the pause after each node.
func WithPacingDelay(d time.Duration) Option {
	return func(opts *Options) {
		if d >= 0 {
			opts.PacingDelay = d
		}
	}
}

// WithCyclePolicy sets the policy for graphs with cycles.
func WithCyclePolicy(p CyclePolicy) Option {
	return func(opts *Options) {
		opts.CyclePolicy = p
	}
}

// WithChannelBufferSize sets the buffer size for event channels.
func WithChannelBufferSize(size int) Option {
	return func(opts *Options) {
		if size >= 0 {
			opts.ChannelBufferSize = size
		}
	}
}

// WithEmitTimeout bounds how long a run waits for a slow consumer per event.
func WithEmitTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.EmitTimeout = d
	}
}

// WithPool dispatches runs on a caller owned ants pool.
func WithPool(pool *ants.Pool) Option {
	return func(opts *Options) {
		opts.Pool = pool
	}
}

// WithRunIDGenerator overrides how run ids are created.
func WithRunIDGenerator(gen func() string) Option {
	return func(opts *Options) {
		if gen != nil {
			opts.RunIDGenerator = gen
		}
	}
}

func newOptions(opts ...Option) (Options, error) {
	options := Options{
		PacingDelay:       DefaultPacingDelay,
		CyclePolicy:       CyclePolicySkip,
		ChannelBufferSize: defaultChannelBufferSize,
		EmitTimeout:       event.EmitWithoutTimeout,
		RunIDGenerator:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.CyclePolicy.Valid() {
		return Options{}, fmt.Errorf("unknown cycle policy %q", options.CyclePolicy)
	}
	return options, nil
}
