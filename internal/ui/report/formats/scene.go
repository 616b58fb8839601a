// # internal/ui/report/formats/scene.go
package formats

import "codeflow/internal/core/ports"

// NodeView is one placed and colored file.
type NodeView struct {
	ID          string
	Path        string
	Name        string
	Language    string
	Position    ports.Position
	Size        float64
	Color       string
	Importance  float64
	Temperature float64
	InCycle     bool
}

// EdgeView is one styled dependency. Source and Target are node ids.
type EdgeView struct {
	Source  string
	Target  string
	Color   string
	Width   float64
	InCycle bool
}

// Scene is the rendered state of the graph under one suite.
type Scene struct {
	Mode  ports.Mode
	Nodes []NodeView
	Edges []EdgeView
}
