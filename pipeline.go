package framegraph

import "github.com/gogpu/gputypes"

// ShaderStage is a bitmask of pipeline stages a binding is visible to.
type ShaderStage uint32

// Shader stage bits. StageCompute is part of the visibility vocabulary for
// layouts shared with compute pipelines; only render pipelines are
// materialized today.
const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageCompute
)

// BindGroupEntry declares one binding slot of a pipeline layout. The
// binding index is the entry's position in the layout's entry list.
type BindGroupEntry struct {
	// Visibility is the set of stages that can see the binding.
	Visibility ShaderStage

	// Buffer marks the binding as a uniform buffer slot.
	Buffer bool

	// Texture marks the binding as a sampled texture slot.
	Texture bool
}

// PipelineDesc describes a render pipeline and its layout. Pipelines are
// registered once on the graph and materialized at most once per
// compilation, no matter how many passes share them.
type PipelineDesc struct {
	// Label is an optional debug name.
	Label string

	// VertexShader is the shader providing the vertex stage.
	VertexShader ShaderHandle

	// FragmentShader is the shader providing the fragment stage.
	// Zero-valued means no fragment stage.
	FragmentShader ShaderHandle

	// Bindings declares the pipeline layout's bind group entries.
	Bindings []BindGroupEntry

	// Topology is the primitive type.
	Topology gputypes.PrimitiveTopology

	// CullMode selects which faces to cull.
	CullMode gputypes.CullMode

	// FrontFace defines which winding is front-facing.
	FrontFace gputypes.FrontFace

	// ColorFormat is the color target format.
	// Defaults to TextureFormatBGRA8Unorm.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the depth target format.
	// TextureFormatUndefined means no depth target.
	DepthFormat gputypes.TextureFormat

	// DepthCompare is the depth comparison function, when DepthFormat
	// is set.
	DepthCompare gputypes.CompareFunction
}

// hasFragment reports whether the pipeline declares a fragment stage.
func (d *PipelineDesc) hasFragment() bool {
	return d.FragmentShader != (ShaderHandle{})
}

// EffectiveColorFormat returns the color target format, defaulted.
func (d *PipelineDesc) EffectiveColorFormat() gputypes.TextureFormat {
	if d.ColorFormat == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return d.ColorFormat
}
