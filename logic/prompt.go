//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package logic

import (
	"fmt"

	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// AnalysisPrompt builds the prompt of an ai_analysis node.
func AnalysisPrompt(aspects, input string) string {
	return fmt.Sprintf("Analyze the following text based on these aspects: %s. \n\nText to analyze:\n\"%s\"", aspects, input)
}

// ChatPrompt builds the prompt of an ai_chat node.
func ChatPrompt(persona, input string) string {
	return fmt.Sprintf("Act as %s. Respond to the following message:\n\"%s\"", persona, input)
}

// generationRequest sends the input as is under the configured system
// instruction.
func generationRequest(input string, c graph.GenerationConfig) *model.Request {
	return &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage(c.SystemInstruction),
			model.NewUserMessage(input),
		},
		GenerationConfig: model.GenerationConfig{
			Temperature: model.Float64Ptr(c.Temperature),
			MaxTokens:   model.IntPtr(c.MaxOutputTokens),
		},
	}
}

func analysisRequest(input string, c graph.AnalysisConfig, temperature float64) *model.Request {
	return &model.Request{
		Messages: []model.Message{model.NewUserMessage(AnalysisPrompt(c.Aspects, input))},
		GenerationConfig: model.GenerationConfig{
			Temperature: model.Float64Ptr(temperature),
		},
	}
}

func chatRequest(input string, c graph.ChatConfig) *model.Request {
	return &model.Request{
		Messages: []model.Message{model.NewUserMessage(ChatPrompt(c.Persona, input))},
	}
}
