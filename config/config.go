//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the flow server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-flow-go/executor"
	"trpc.group/trpc-go/trpc-flow-go/model/provider"
)

// Environment variables that override the file.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvAPIKey       = "API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvAddr         = "FLOW_ADDR"
	EnvLogLevel     = "FLOW_LOG_LEVEL"
	EnvPacingDelay  = "FLOW_PACING_DELAY"
	EnvCyclePolicy  = "FLOW_CYCLE_POLICY"
)

const (
	defaultAddr     = ":8080"
	defaultLogLevel = "info"
)

// Config is the flow server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Model     ModelConfig     `yaml:"model"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// WorkflowFile seeds the canvas. Empty means the built-in default workflow.
	WorkflowFile string `yaml:"workflow_file"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ModelConfig selects the generative backend.
type ModelConfig struct {
	Provider string        `yaml:"provider"`
	Name     string        `yaml:"name"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ExecutorConfig tunes the run loop.
type ExecutorConfig struct {
	PacingDelay time.Duration        `yaml:"pacing_delay"`
	CyclePolicy executor.CyclePolicy `yaml:"cycle_policy"`
}

// TelemetryConfig enables OTLP export. Empty endpoints leave telemetry off.
type TelemetryConfig struct {
	TraceEndpoint  string `yaml:"trace_endpoint"`
	MetricEndpoint string `yaml:"metric_endpoint"`
	Protocol       string `yaml:"protocol"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: defaultAddr, AllowedOrigins: []string{"*"}},
		Log:    LogConfig{Level: defaultLogLevel},
		Model:  ModelConfig{Provider: provider.NameGemini},
		Executor: ExecutorConfig{
			PacingDelay: executor.DefaultPacingDelay,
			CyclePolicy: executor.CyclePolicySkip,
		},
		Telemetry: TelemetryConfig{Protocol: "grpc"},
	}
}

// Load reads path (if not empty) over the defaults, then applies the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if c.Model.APIKey == "" {
		c.Model.APIKey = apiKeyFromEnv(c.Model.Provider, lookup)
	}
	if v, ok := lookup(EnvPacingDelay); ok && v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvPacingDelay, err)
		}
		c.Executor.PacingDelay = d
	}
	if v, ok := lookup(EnvCyclePolicy); ok && v != "" {
		c.Executor.CyclePolicy = executor.CyclePolicy(strings.ToLower(v))
	}
	return nil
}

// apiKeyFromEnv picks the key for the selected provider. Gemini reads
// GEMINI_API_KEY and falls back to API_KEY.
func apiKeyFromEnv(name string, lookup func(string) (string, bool)) string {
	var keys []string
	switch name {
	case provider.NameOpenAI:
		keys = []string{EnvOpenAIAPIKey, EnvAPIKey}
	default:
		keys = []string{EnvGeminiAPIKey, EnvAPIKey}
	}
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v
		}
	}
	return ""
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if _, ok := provider.Get(c.Model.Provider); !ok {
		errs = append(errs, fmt.Errorf("unknown model provider %q, want one of %v",
			c.Model.Provider, provider.Names()))
	}
	if c.Executor.PacingDelay < 0 {
		errs = append(errs, errors.New("executor.pacing_delay is negative"))
	}
	if !c.Executor.CyclePolicy.Valid() {
		errs = append(errs, fmt.Errorf("unknown cycle policy %q", c.Executor.CyclePolicy))
	}
	if c.Model.Timeout < 0 {
		errs = append(errs, errors.New("model.timeout is negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
