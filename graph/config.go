//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"strings"

	"github.com/spf13/cast"
)

// Config keys understood by the built-in node types.
const (
	ConfigKeyInitialInput      = "initialInput"
	ConfigKeySystemInstruction = "systemInstruction"
	ConfigKeyTemperature       = "temperature"
	ConfigKeyMaxOutputTokens   = "maxOutputTokens"
	ConfigKeyAspects           = "aspects"
	ConfigKeyPersona           = "persona"
)

// Defaults applied when a config key is absent, empty or unparsable.
const (
	DefaultSystemInstruction = "You are a helpful assistant."
	DefaultTemperature       = 0.7
	DefaultMaxOutputTokens   = 1000
	DefaultAspects           = "General Summary"
	DefaultPersona           = "Helpful Assistant"
)

// NodeConfig is the typed configuration of one node type.
type NodeConfig interface {
	// NodeType returns the node type the config belongs to.
	NodeType() NodeType
}

// TriggerConfig configures a trigger_start node.
type TriggerConfig struct {
	// InitialInput is the text the workflow starts with. Empty means the
	// trigger forwards whatever input it receives.
	InitialInput string
}

// NodeType implements NodeConfig.
func (TriggerConfig) NodeType() NodeType { return NodeTypeTriggerStart }

// GenerationConfig configures an ai_generation node.
type GenerationConfig struct {
	SystemInstruction string
	Temperature       float64
	MaxOutputTokens   int
}

// NodeType implements NodeConfig.
func (GenerationConfig) NodeType() NodeType { return NodeTypeAIGeneration }

// AnalysisConfig configures an ai_analysis node.
type AnalysisConfig struct {
	// Aspects is a free text list of what to analyze.
	Aspects string
}

// NodeType implements NodeConfig.
func (AnalysisConfig) NodeType() NodeType { return NodeTypeAIAnalysis }

// ChatConfig configures an ai_chat node.
type ChatConfig struct {
	Persona string
}

// NodeType implements NodeConfig.
func (ChatConfig) NodeType() NodeType { return NodeTypeAIChat }

// OutputConfig configures an action_output node. It has no settings.
type OutputConfig struct{}

// NodeType implements NodeConfig.
func (OutputConfig) NodeType() NodeType { return NodeTypeActionOutput }

// UnknownConfig is returned for node types this build does not know.
type UnknownConfig struct {
	Type NodeType
	Raw  map[string]any
}

// NodeType implements NodeConfig.
func (c UnknownConfig) NodeType() NodeType { return c.Type }

// DecodeConfig builds the typed config for t from a raw config map. It never
// fails: missing or malformed values take the documented defaults.
func DecodeConfig(t NodeType, raw map[string]any) NodeConfig {
	switch t {
	case NodeTypeTriggerStart:
		return TriggerConfig{InitialInput: stringValue(raw, ConfigKeyInitialInput, "")}
	case NodeTypeAIGeneration:
		return GenerationConfig{
			SystemInstruction: stringValue(raw, ConfigKeySystemInstruction, DefaultSystemInstruction),
			Temperature:       floatValue(raw, ConfigKeyTemperature, DefaultTemperature),
			MaxOutputTokens:   intValue(raw, ConfigKeyMaxOutputTokens, DefaultMaxOutputTokens),
		}
	case NodeTypeAIAnalysis:
		return AnalysisConfig{Aspects: stringValue(raw, ConfigKeyAspects, DefaultAspects)}
	case NodeTypeAIChat:
		return ChatConfig{Persona: stringValue(raw, ConfigKeyPersona, DefaultPersona)}
	case NodeTypeActionOutput:
		return OutputConfig{}
	default:
		return UnknownConfig{Type: t, Raw: raw}
	}
}

func stringValue(raw map[string]any, key, def string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return def
	}
	return s
}

func floatValue(raw map[string]any, key string, def float64) float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
		if v == "" {
			return def
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

func intValue(raw map[string]any, key string, def int) int {
	f := floatValue(raw, key, float64(def))
	if f <= 0 {
		return def
	}
	return int(f)
}
