//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flow-go/log"
)

func TestLog(t *testing.T) {
	original := log.Default
	defer func() { log.Default = original }()

	log.Default = &noopLogger{}
	log.Debug("test")
	log.Debugf("test")
	log.Info("test")
	log.Infof("test")
	log.Warn("test")
	log.Warnf("test")
	log.Error("test")
	log.Errorf("test")
}

func TestContextHelpersUseContextDefault(t *testing.T) {
	original := log.ContextDefault
	defer func() { log.ContextDefault = original }()

	logger := &countLogger{}
	log.ContextDefault = logger

	log.InfofContext(context.Background(), "test %d", 1)
	log.InfofContext(log.WithFields(context.Background(), "run_id", "r1"), "test %d", 2)

	assert.Equal(t, 2, logger.infofCalls)
}

func TestWithFieldsAttachesToRecords(t *testing.T) {
	origDefault, origContext := log.Default, log.ContextDefault
	defer func() {
		log.Default = origDefault
		log.ContextDefault = origContext
	}()

	var buf bytes.Buffer
	log.SetOutput(&buf)

	ctx := log.WithFields(context.Background(), "run_id", "run-42")
	ctx = log.WithFields(ctx, "node_id", "n1")
	log.InfofContext(ctx, "node %s done", "n1")

	out := buf.String()
	require.Contains(t, out, "node n1 done")
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "n1")
}

func TestSetLevel(t *testing.T) {
	defer log.SetLevel(log.LevelInfo)

	tests := []struct {
		in   string
		want string
	}{
		{in: log.LevelDebug, want: "debug"},
		{in: log.LevelWarn, want: "warn"},
		{in: log.LevelError, want: "error"},
		{in: "verbose", want: "info"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			log.SetLevel(tt.in)
			assert.Equal(t, tt.want, log.Level())
		})
	}
}

type noopLogger struct{}

func (*noopLogger) Debug(args ...any)                 {}
func (*noopLogger) Debugf(format string, args ...any) {}
func (*noopLogger) Info(args ...any)                  {}
func (*noopLogger) Infof(format string, args ...any)  {}
func (*noopLogger) Warn(args ...any)                  {}
func (*noopLogger) Warnf(format string, args ...any)  {}
func (*noopLogger) Error(args ...any)                 {}
func (*noopLogger) Errorf(format string, args ...any) {}

type countLogger struct {
	infofCalls int
}

func (*countLogger) Debug(args ...any)                 {}
func (*countLogger) Debugf(format string, args ...any) {}
func (*countLogger) Info(args ...any)                  {}
func (c *countLogger) Infof(format string, args ...any) {
	c.infofCalls++
}
func (*countLogger) Warn(args ...any)                  {}
func (*countLogger) Warnf(format string, args ...any)  {}
func (*countLogger) Error(args ...any)                 {}
func (*countLogger) Errorf(format string, args ...any) {}
