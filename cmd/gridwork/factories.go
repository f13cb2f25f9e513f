package main

import (
	"context"

	"github.com/vk/gridwork/internal/element"
	"github.com/vk/gridwork/internal/graphspec"
	"github.com/vk/gridwork/internal/status"
)

// noopElement overrides Run to succeed without doing anything; every other
// method keeps BaseElement's default.
type noopElement struct {
	element.BaseElement
}

func (noopElement) Run(ctx context.Context) status.Status { return status.OK() }

// noopFactories is the element-kind registry available to a graph loaded
// from --graph. gridwork's core ships no concrete element kinds of its own
// (the engine is deliberately capability-agnostic); a real deployment
// registers its own kinds here or builds a purpose-specific main that does.
// "noop" is kept as a smoke-test kind so an .hcl graph with no custom kinds
// still runs end to end.
var noopFactories = map[string]graphspec.Factory{
	"noop": func(block graphspec.ElementBlock) (element.Element, error) {
		return &noopElement{}, nil
	},
}
