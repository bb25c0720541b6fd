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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
)

var errBadRequest = errors.New("bad request")

// maxBodyBytes bounds request bodies, workflow files included.
const maxBodyBytes = 4 << 20

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

type addNodeRequest struct {
	Type     graph.NodeType `json:"type"`
	Position graph.Position `json:"position"`
}

// updateNodeRequest carries a properties form change. Omitted fields keep
// their current value.
type updateNodeRequest struct {
	Label       *string        `json:"label"`
	Description *string        `json:"description"`
	Config      map[string]any `json:"config"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type validateResponse struct {
	Warnings []string `json:"warnings"`
}

func (s *Server) handleGetGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

// handleReplaceGraph accepts a JSON graph, or a YAML/HCL workflow document
// selected by the format query parameter or the content type.
func (s *Server) handleReplaceGraph(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	snap, err := graph.Parse(data, requestFormat(r), "request")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.ws.Replace(snap)
	log.Infof("graph replaced: %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func requestFormat(r *http.Request) graph.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return graph.Format(strings.ToLower(f))
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "yaml"):
		return graph.FormatYAML
	case strings.Contains(ct, "hcl"):
		return graph.FormatHCL
	default:
		return graph.FormatJSON
	}
}

func (s *Server) handleValidateGraph(w http.ResponseWriter, _ *http.Request) {
	resp := validateResponse{Warnings: []string{}}
	for _, problem := range s.ws.Graph().Validate() {
		resp.Warnings = append(resp.Warnings, problem.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, graph.Templates())
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.ws.AddNodeFromTemplate(req.Type, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := mux.Vars(r)["id"]
	var req updateNodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	current, ok := s.ws.Graph().GetNode(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id))
		return
	}
	label, description, config := current.Data.Label, current.Data.Description, current.Data.Config
	if req.Label != nil {
		label = *req.Label
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Config != nil {
		config = req.Config
	}
	n, err := s.ws.UpdateNode(id, label, description, config)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.RemoveNode(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var pos graph.Position
	if err := decodeBody(r, &pos); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ws.MoveNode(mux.Vars(r)["id"], pos); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req connectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	e, err := s.ws.Connect(req.Source, req.Target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.RemoveEdge(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRun starts a run and answers before it finishes. A request while a
// run is in progress is accepted and ignored.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.RunWorkflow(context.WithoutCancel(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Store().Snapshot())
}
