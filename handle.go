package framegraph

import "github.com/gogpu/framegraph/registry"

// Typed handles for the four long-lived graph object kinds. Each is a
// distinct uuid-backed type so handles of different kinds cannot be mixed
// up; equality and map hashing are by identity only.

// ShaderHandle identifies a registered shader definition.
type ShaderHandle [16]byte

// PipelineHandle identifies a registered pipeline definition.
type PipelineHandle [16]byte

// PassHandle identifies a registered render pass.
type PassHandle [16]byte

// ResourceHandle identifies a resource vertex. Persistent resources keep
// the same logical identity across frames via their name; the handle itself
// is scoped to one Graph.
type ResourceHandle [16]byte

// String renders the handle in canonical uuid form.
func (h ShaderHandle) String() string { return registry.HandleString(h) }

// String renders the handle in canonical uuid form.
func (h PipelineHandle) String() string { return registry.HandleString(h) }

// String renders the handle in canonical uuid form.
func (h PassHandle) String() string { return registry.HandleString(h) }

// String renders the handle in canonical uuid form.
func (h ResourceHandle) String() string { return registry.HandleString(h) }
