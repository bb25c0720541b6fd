//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides the interface AI nodes use to talk to language
// model backends.
package model

import (
	"context"
	"errors"
)

// ErrNoResponse is returned by Collect when a backend closes its response
// channel without a final response.
var ErrNoResponse = errors.New("model returned no response")

// Model is the interface for all language models.
type Model interface {
	// GenerateContent sends a request and returns a channel of responses.
	// The last response on the channel has Done set. API level failures
	// are reported through Response.Error.
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	// Name is the backend specific model name.
	Name string
}

// Collect sends request to m and waits for the final response. A response
// carrying an API error is turned into a *ResponseError.
func Collect(ctx context.Context, m Model, request *Request) (*Response, error) {
	ch, err := m.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}
	var final *Response
	for {
		select {
		case rsp, ok := <-ch:
			if !ok {
				if final == nil {
					return nil, ErrNoResponse
				}
				return final, nil
			}
			if rsp == nil {
				continue
			}
			if rsp.Error != nil {
				return nil, rsp.Error
			}
			final = rsp
			if rsp.Done {
				return final, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
