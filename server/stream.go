//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trpc.group/trpc-go/trpc-flow-go/log"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// Client messages accepted on the WebSocket.
const (
	wsActionRun = "run"
)

type wsMessage struct {
	Action string `json:"action"`
}

// handleLogStream pushes the run log as server-sent events: one snapshot on
// connect and one after every change.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	changes, cancel := s.ws.Store().Subscribe()
	defer cancel()

	send := func() bool {
		data, err := json.Marshal(s.ws.Store().Snapshot())
		if err != nil {
			log.Errorf("Error marshalling SSE event: %v", err)
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			if !send() {
				return
			}
		}
	}
}

// handleWebSocket mirrors the log stream over a WebSocket. Clients may send
// {"action":"run"} to start a run.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go s.readWebSocket(ctx, cancel, conn)

	changes, unsubscribe := s.ws.Store().Subscribe()
	defer unsubscribe()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	if err := writeWebSocketJSON(conn, s.ws.Store().Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			if err := writeWebSocketJSON(conn, s.ws.Store().Snapshot()); err != nil {
				log.Debugf("websocket write: %v", err)
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// readWebSocket handles client messages until the connection closes.
func (s *Server) readWebSocket(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("websocket read: %v", err)
			}
			return
		}
		switch msg.Action {
		case wsActionRun:
			if err := s.ws.RunWorkflow(ctx); err != nil {
				log.Warnf("websocket run: %v", err)
			}
		default:
			log.Debugf("websocket: ignore action %q", msg.Action)
		}
	}
}

func writeWebSocketJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
