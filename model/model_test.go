//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanModel struct {
	responses []*Response
	err       error
	hold      bool
}

func (m *chanModel) Info() Info { return Info{Name: "chan"} }

func (m *chanModel) GenerateContent(ctx context.Context, _ *Request) (<-chan *Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan *Response, len(m.responses))
	for _, r := range m.responses {
		ch <- r
	}
	if !m.hold {
		close(ch)
	}
	return ch, nil
}

func textResponse(text string, done bool) *Response {
	return &Response{
		Choices: []Choice{{Message: Message{Role: RoleAssistant, Content: text}}},
		Done:    done,
	}
}

func TestCollect(t *testing.T) {
	sendErr := errors.New("dial failed")
	tests := []struct {
		name     string
		model    *chanModel
		wantText string
		wantErr  error
		apiErr   bool
	}{
		{
			name:     "final response",
			model:    &chanModel{responses: []*Response{textResponse("hello", true)}},
			wantText: "hello",
		},
		{
			name:     "last response when none is done",
			model:    &chanModel{responses: []*Response{nil, textResponse("a", false), textResponse("b", false)}},
			wantText: "b",
		},
		{
			name:    "closed without responses",
			model:   &chanModel{},
			wantErr: ErrNoResponse,
		},
		{
			name:    "send error",
			model:   &chanModel{err: sendErr},
			wantErr: sendErr,
		},
		{
			name: "api error",
			model: &chanModel{responses: []*Response{{
				Error: &ResponseError{Message: "rate limited", Type: ErrorTypeAPIError},
				Done:  true,
			}}},
			apiErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsp, err := Collect(context.Background(), tt.model, &Request{})
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.apiErr:
				var rspErr *ResponseError
				require.ErrorAs(t, err, &rspErr)
				assert.Equal(t, "rate limited", rspErr.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, rsp.Text())
			}
		})
	}
}

func TestCollectHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Collect(ctx, &chanModel{hold: true}, &Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestSystemInstruction(t *testing.T) {
	req := &Request{Messages: []Message{
		NewSystemMessage("first"),
		NewUserMessage("question"),
		NewSystemMessage(""),
		NewSystemMessage("second"),
	}}
	assert.Equal(t, "first\nsecond", req.SystemInstruction())
	assert.Empty(t, (&Request{}).SystemInstruction())
}

func TestResponseText(t *testing.T) {
	var nilRsp *Response
	assert.Empty(t, nilRsp.Text())
	rsp := &Response{Choices: []Choice{
		{Message: Message{Content: "a"}},
		{Message: Message{Content: "b"}},
	}}
	assert.Equal(t, "ab", rsp.Text())
}

func TestUnavailable(t *testing.T) {
	m := NewUnavailable("gemini-2.5-flash", "API key is not configured")
	assert.Equal(t, "gemini-2.5-flash", m.Info().Name)
	_, err := Collect(context.Background(), m, &Request{})
	var rspErr *ResponseError
	require.ErrorAs(t, err, &rspErr)
	assert.Equal(t, ErrorTypeConfigError, rspErr.Type)
	assert.Equal(t, "API key is not configured", rspErr.Message)
}

func TestDefaultNewHTTPClient(t *testing.T) {
	c := DefaultNewHTTPClient(WithHTTPClientTimeout(time.Second))
	assert.Equal(t, time.Second, c.Timeout)
	assert.Nil(t, c.Transport)
}
