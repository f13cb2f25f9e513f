// Package graphspec loads a declarative .hcl description of elements to
// create and wire, as an alternative to the scheduler's ingress API being
// driven directly by Go code.
//
// It reuses the teacher's HCL stack (github.com/hashicorp/hcl/v2,
// github.com/zclconf/go-cty) the same way internal/model/grid.go parses
// `step` blocks: an hclparse.Parser reads the file, gohcl.DecodeBody
// populates a label-tagged Go struct, and the result is handed to a
// resolver rather than executed directly — the resolver here is
// ApplyToScheduler, which maps each block's Kind string to a concrete
// element.Element via a caller-supplied factory registry, since element
// kind implementations are themselves out of this package's scope.
package graphspec

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/gridwork/internal/element"
	"github.com/vk/gridwork/internal/scheduler"
	"github.com/vk/gridwork/internal/status"
)

// ElementBlock is the format of a single `element "kind" "name" { ... }`
// block.
type ElementBlock struct {
	Kind      string   `hcl:"kind,label"`
	Name      string   `hcl:"name,label"`
	DependsOn []string `hcl:"depends_on,optional"`
	Loop      int      `hcl:"loop,optional"`
	Level     int      `hcl:"level,optional"`
	Remain    hcl.Body `hcl:",remain"`
}

type fileSchema struct {
	Elements []ElementBlock `hcl:"element,block"`
}

// Graph is the parsed, not-yet-resolved contents of one or more .hcl files:
// a flat list of element blocks in file order, dependency edges still
// expressed as name strings.
type Graph struct {
	Elements []ElementBlock
}

// Load parses a single .hcl file into a Graph. Dependency edges are left as
// name references; ApplyToScheduler resolves them once every block has been
// read.
func Load(path string) (*Graph, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("graphspec: failed to parse %s: %w", path, diags)
	}

	var parsed fileSchema
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("graphspec: failed to decode %s: %w", path, diags)
	}

	return &Graph{Elements: parsed.Elements}, nil
}

// Factory builds the user Element implementation for a given kind. The
// outer façade registers one factory per kind it supports; graphspec itself
// implements no kinds.
type Factory func(block ElementBlock) (element.Element, error)

// ApplyToScheduler resolves g's name-based dependency edges against the
// blocks it was parsed from and calls Scheduler.CreateElement for each, in
// file order so that forward references (a block depending on one declared
// later in the same file) still resolve correctly via a two-pass approach:
// every block is created first with no dependencies, then
// AddDependElements wires the edges once every name is known.
func ApplyToScheduler(s *scheduler.Scheduler, g *Graph, factories map[string]Factory) (map[string]*element.Node, status.Status) {
	nodes := make(map[string]*element.Node, len(g.Elements))

	for _, block := range g.Elements {
		factory, ok := factories[block.Kind]
		if !ok {
			return nil, status.New(status.KindConfiguration, 1, fmt.Sprintf("no factory registered for element kind %q", block.Kind), "graphspec.ApplyToScheduler")
		}
		impl, err := factory(block)
		if err != nil {
			return nil, status.New(status.KindConfiguration, 1, fmt.Sprintf("factory for kind %q failed: %v", block.Kind, err), "graphspec.ApplyToScheduler")
		}

		loop := block.Loop
		if loop <= 0 {
			loop = 1
		}
		n, sc := s.CreateElement(impl, nil, block.Name, loop, block.Level, nil)
		if !sc.IsOK() {
			return nil, sc
		}
		nodes[block.Name] = n
	}

	for _, block := range g.Elements {
		if len(block.DependsOn) == 0 {
			continue
		}
		n, ok := nodes[block.Name]
		if !ok {
			continue
		}
		deps := make([]*element.Node, 0, len(block.DependsOn))
		for _, depName := range block.DependsOn {
			dep, ok := nodes[depName]
			if !ok {
				return nil, status.New(status.KindWiring, 1, fmt.Sprintf("element %q depends_on unknown element %q", block.Name, depName), "graphspec.ApplyToScheduler")
			}
			deps = append(deps, dep)
		}
		if sc := n.AddDependElements(deps...); !sc.IsOK() {
			return nil, sc
		}
	}

	return nodes, status.OK()
}
