package framegraph

import (
	"errors"
	"fmt"
)

// Package errors for graph construction and compilation.
var (
	// ErrResourceNotFound is returned when a resource handle was never
	// added as a vertex.
	ErrResourceNotFound = errors.New("framegraph: resource was not created as a vertex")

	// ErrPassNotFound is returned when a pass handle was never added as
	// a vertex.
	ErrPassNotFound = errors.New("framegraph: pass was not created as a vertex")

	// ErrPipelineNotFound is returned when a pass references an
	// unregistered pipeline.
	ErrPipelineNotFound = errors.New("framegraph: pipeline is not registered")

	// ErrShaderNotFound is returned when a pipeline references an
	// unregistered shader.
	ErrShaderNotFound = errors.New("framegraph: shader is not registered")

	// ErrGraphCompiled is returned when a compiled graph is mutated or
	// compiled again.
	ErrGraphCompiled = errors.New("framegraph: graph is frozen after compilation")

	// ErrNoDevice is returned by Compile when no device is supplied.
	ErrNoDevice = errors.New("framegraph: compile requires a device")
)

// CycleError reports a dependency cycle found during compilation: a pass
// depends, directly or transitively, on its own output. This is an
// authoring mistake; no resources are materialized when it is returned.
type CycleError struct {
	// Vertices holds the display labels of the vertices on or reachable
	// from the cycle, in insertion order.
	Vertices []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("framegraph: dependency cycle through %v", e.Vertices)
}

// UnsatisfiedDependencyError reports a pass input that no earlier pass
// produces and no external binding supplies. The caller can bind the named
// resource and retry compilation on a fresh graph.
type UnsatisfiedDependencyError struct {
	// Resource is the handle of the unbound resource.
	Resource ResourceHandle

	// Label is the resource's display label (name if persistent,
	// generated id otherwise).
	Label string
}

func (e *UnsatisfiedDependencyError) Error() string {
	return fmt.Sprintf("framegraph: resource %q has no producer and no external binding", e.Label)
}
