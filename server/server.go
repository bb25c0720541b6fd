//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes a workflow workspace over HTTP: graph editing,
// run triggering and a live execution log over SSE and WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/workspace"
)

// Server serves one workspace.
type Server struct {
	ws       *workspace.Workspace
	router   *mux.Router
	handler  http.Handler
	upgrader websocket.Upgrader

	allowedOrigins []string
}

// Option configures the Server instance.
type Option func(*Server)

// WithAllowedOrigins restricts CORS and WebSocket origins. The default
// allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// New creates a server for ws.
func New(ws *workspace.Workspace, opts ...Option) *Server {
	s := &Server{
		ws:             ws,
		router:         mux.NewRouter(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return r.Header.Get("Origin") == "" || c.OriginAllowed(r)
		},
	}
	s.registerRoutes()
	// Wrapping the router, rather than router.Use, lets preflight requests
	// for unregistered OPTIONS routes reach the CORS handler.
	s.handler = c.Handler(s.router)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/graph", s.handleGetGraph).Methods(http.MethodGet)
	api.HandleFunc("/graph", s.handleReplaceGraph).Methods(http.MethodPut)
	api.HandleFunc("/graph/validate", s.handleValidateGraph).Methods(http.MethodGet)
	api.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)

	api.HandleFunc("/nodes", s.handleAddNode).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id}", s.handleUpdateNode).Methods(http.MethodPatch)
	api.HandleFunc("/nodes/{id}", s.handleDeleteNode).Methods(http.MethodDelete)
	api.HandleFunc("/nodes/{id}/position", s.handleMoveNode).Methods(http.MethodPut)

	api.HandleFunc("/edges", s.handleConnect).Methods(http.MethodPost)
	api.HandleFunc("/edges/{id}", s.handleDeleteEdge).Methods(http.MethodDelete)

	api.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	api.HandleFunc("/logs", s.handleGetLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs/stream", s.handleLogStream).Methods(http.MethodGet)
	api.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrEdgeNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrNodeExists), errors.Is(err, graph.ErrEdgeExists):
		return http.StatusConflict
	case errors.Is(err, graph.ErrUnknownNodeType), errors.Is(err, graph.ErrNodeIDEmpty),
		errors.Is(err, graph.ErrEdgeEndpoints), errors.Is(err, graph.ErrUnsupportedFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
