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
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format is a workflow file encoding.
type Format string

// Supported workflow file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// LoadFile reads a workflow definition from disk.
func LoadFile(path string) (*Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file %s: %w", path, err)
	}
	snap, err := Parse(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("parse workflow file %s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a workflow definition. filename is only used in HCL
// diagnostics.
func Parse(data []byte, format Format, filename string) (*Snapshot, error) {
	var (
		snap *Snapshot
		err  error
	)
	switch format {
	case FormatJSON:
		snap = &Snapshot{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(snap)
		if err == nil {
			normalizeJSONNumbers(snap)
		}
	case FormatYAML:
		snap = &Snapshot{}
		err = yaml.Unmarshal(data, snap)
	case FormatHCL:
		snap, err = parseHCL(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, format)
	}
	if err != nil {
		return nil, err
	}
	return snap.Clone(), nil
}

func normalizeJSONNumbers(s *Snapshot) {
	for _, n := range s.Nodes {
		for k, v := range n.Data.Config {
			num, ok := v.(json.Number)
			if !ok {
				continue
			}
			if i, err := num.Int64(); err == nil {
				n.Data.Config[k] = int(i)
			} else if f, err := num.Float64(); err == nil {
				n.Data.Config[k] = f
			} else {
				n.Data.Config[k] = num.String()
			}
		}
	}
}

// hclWorkflowFile is the top-level structure of an HCL workflow file:
//
//	node "1" {
//	  type   = "trigger_start"
//	  label  = "Manual Trigger"
//	  config = { initialInput = "Hello" }
//	  position {
//	    x = 100
//	    y = 200
//	  }
//	}
//
//	edge {
//	  source = "1"
//	  target = "2"
//	}
type hclWorkflowFile struct {
	Nodes []*hclNode `hcl:"node,block"`
	Edges []*hclEdge `hcl:"edge,block"`
}

type hclNode struct {
	ID          string       `hcl:"id,label"`
	Type        string       `hcl:"type"`
	Label       string       `hcl:"label,optional"`
	Description string       `hcl:"description,optional"`
	Config      cty.Value    `hcl:"config,optional"`
	Position    *hclPosition `hcl:"position,block"`
}

type hclPosition struct {
	X float64 `hcl:"x"`
	Y float64 `hcl:"y"`
}

type hclEdge struct {
	ID     string `hcl:"id,optional"`
	Source string `hcl:"source"`
	Target string `hcl:"target"`
}

func parseHCL(data []byte, filename string) (*Snapshot, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	var parsed hclWorkflowFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	snap := &Snapshot{}
	for _, hn := range parsed.Nodes {
		config, err := configFromCty(hn.Config)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", hn.ID, err)
		}
		node := Node{
			ID:   hn.ID,
			Type: NodeType(hn.Type),
			Data: NodeData{
				Label:       hn.Label,
				Description: hn.Description,
				Config:      config,
				Status:      NodeStatusIdle,
			},
		}
		if hn.Position != nil {
			node.Position = Position{X: hn.Position.X, Y: hn.Position.Y}
		}
		snap.Nodes = append(snap.Nodes, node)
	}
	for _, he := range parsed.Edges {
		id := he.ID
		if id == "" {
			id = EdgeID(he.Source, he.Target)
		}
		snap.Edges = append(snap.Edges, Edge{ID: id, Source: he.Source, Target: he.Target})
	}
	return snap, nil
}

func configFromCty(v cty.Value) (map[string]any, error) {
	out := map[string]any{}
	if v.IsNull() || !v.IsKnown() {
		return out, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("config must be an object, got %s", ty.FriendlyName())
	}
	for it := v.ElementIterator(); it.Next(); {
		key, val := it.Element()
		scalar, err := scalarFromCty(val)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", key.AsString(), err)
		}
		out[key.AsString()] = scalar
	}
	return out, nil
}

func scalarFromCty(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		// Non scalar values are kept as their JSON text.
		raw, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
}
