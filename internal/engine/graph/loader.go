// # internal/engine/graph/loader.go
package graph

import (
	"bytes"
	"codeflow/internal/core/errors"
	"codeflow/internal/shared/util"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a project graph. Edges may be omitted, in
// which case they are derived from each node's Dependencies.
type Document struct {
	Nodes []*Node `json:"nodes" yaml:"nodes" validate:"dive,required"`
	Edges []Edge  `json:"edges,omitempty" yaml:"edges,omitempty" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads a graph document from path. Files ending in .yaml or .yml
// are decoded as YAML, anything else as JSON.
func LoadFile(path string, opts Options) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read graph document"), errors.CtxPath, path)
	}
	format := "json"
	switch strings.ToLower(util.Extension(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	g, err := Parse(data, format, opts)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return g, nil
}

// Parse decodes a graph document in the given format ("json" or "yaml"),
// validates it and builds the Graph.
func Parse(data []byte, format string, opts Options) (*Graph, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	if err := doc.Normalize(); err != nil {
		return nil, err
	}
	return New(doc.Nodes, doc.Edges, opts), nil
}

func decodeDocument(data []byte, format string) (*Document, error) {
	doc := &Document{}
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(doc); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "decode json graph document")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "decode yaml graph document")
		}
	default:
		return nil, errors.Newf(errors.CodeNotSupported, "unsupported graph format %q", format)
	}
	return doc, nil
}

// Normalize validates the document, fills derived fields and rejects
// duplicate ids or paths.
func (d *Document) Normalize() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "invalid graph document")
	}

	ids := make(map[string]bool, len(d.Nodes))
	paths := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		n.Path = util.NormalizePath(n.Path)
		if n.Name == "" {
			n.Name = util.BaseName(n.Path)
		}
		if ids[n.ID] {
			return errors.AddContext(errors.Newf(errors.CodeValidationError, "duplicate node id %q", n.ID), errors.CtxNode, n.ID)
		}
		if paths[n.Path] {
			return errors.AddContext(errors.Newf(errors.CodeValidationError, "duplicate node path %q", n.Path), errors.CtxPath, n.Path)
		}
		ids[n.ID] = true
		paths[n.Path] = true
	}

	if len(d.Edges) == 0 {
		d.Edges = deriveEdges(d.Nodes, ids)
	}
	return nil
}

// deriveEdges turns node dependency lists into edges. Entries may name a node
// id or a path; unknown entries are dropped.
func deriveEdges(nodes []*Node, ids map[string]bool) []Edge {
	byPath := make(map[string]string, len(nodes))
	for _, n := range nodes {
		byPath[n.Path] = n.ID
	}
	var edges []Edge
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			target := dep
			if !ids[target] {
				id, ok := byPath[util.NormalizePath(dep)]
				if !ok {
					continue
				}
				target = id
			}
			edges = append(edges, Edge{Source: n.ID, Target: target})
		}
	}
	return edges
}

// String is used in log lines.
func (d *Document) String() string {
	return fmt.Sprintf("graph document (%d nodes, %d edges)", len(d.Nodes), len(d.Edges))
}
