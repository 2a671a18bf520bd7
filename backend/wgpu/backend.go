package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/framegraph"
)

// ShaderModule is a shader compiled to SPIR-V, with its entry points.
type ShaderModule struct {
	ID            uint64
	Label         string
	SPIRV         []uint32
	VertexEntry   string
	FragmentEntry string
}

// PipelineLayout describes the bind group layout of a pipeline.
type PipelineLayout struct {
	ID      uint64
	Label   string
	Entries int
}

// RenderPipeline is a materialized render pipeline.
type RenderPipeline struct {
	ID          uint64
	Label       string
	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat
}

// Texture is a materialized texture.
type Texture struct {
	ID     uint64
	Label  string
	Format gputypes.TextureFormat
	Extent gputypes.Extent3D
}

// CreateShaderModule compiles WGSL to SPIR-V through naga.
func (d *Device) CreateShaderModule(desc *framegraph.ShaderDesc) (framegraph.ShaderModule, error) {
	spirv, err := compileWGSL(desc.Source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compiling shader %q: %w", desc.Label, err)
	}
	return &ShaderModule{
		ID:            d.alloc(),
		Label:         desc.Label,
		SPIRV:         spirv,
		VertexEntry:   desc.VertexEntryPoint(),
		FragmentEntry: desc.FragmentEntryPoint(),
	}, nil
}

// CreatePipelineLayout builds a layout from the pipeline's bindings.
//
// TODO: create the layout through core.CreateBindGroupLayout once render
// pipeline creation lands in gogpu/wgpu; until then layouts are local ids.
func (d *Device) CreatePipelineLayout(desc *framegraph.PipelineDesc) (framegraph.PipelineLayout, error) {
	return &PipelineLayout{
		ID:      d.alloc(),
		Label:   desc.Label,
		Entries: len(desc.Bindings),
	}, nil
}

// CreateRenderPipeline builds a render pipeline over the compiled shader
// modules.
//
// TODO: build through the core API once render pipeline creation lands in
// gogpu/wgpu; until then pipelines are local ids over the compiled SPIR-V.
func (d *Device) CreateRenderPipeline(desc *framegraph.PipelineDesc, layout framegraph.PipelineLayout, vertex, fragment framegraph.ShaderModule) (framegraph.RenderPipeline, error) {
	if _, ok := vertex.(*ShaderModule); !ok {
		return nil, fmt.Errorf("wgpu: pipeline %q: vertex module from another backend", desc.Label)
	}
	if fragment != nil {
		if _, ok := fragment.(*ShaderModule); !ok {
			return nil, fmt.Errorf("wgpu: pipeline %q: fragment module from another backend", desc.Label)
		}
	}
	return &RenderPipeline{
		ID:          d.alloc(),
		Label:       desc.Label,
		ColorFormat: desc.EffectiveColorFormat(),
		DepthFormat: desc.DepthFormat,
	}, nil
}

// CreateTexture allocates a texture for a resource descriptor.
func (d *Device) CreateTexture(desc *framegraph.ResourceDesc) framegraph.Texture {
	t := &Texture{
		ID:     d.alloc(),
		Label:  desc.Name,
		Format: desc.EffectiveFormat(),
		Extent: desc.Extent,
	}
	framegraph.Logger().Debug("wgpu: texture created",
		"label", t.Label, "format", t.Format, "id", t.ID)
	return t
}

// DestroyTexture releases a texture.
func (d *Device) DestroyTexture(t framegraph.Texture) {
	if tex, ok := t.(*Texture); ok {
		framegraph.Logger().Debug("wgpu: texture destroyed", "label", tex.Label, "id", tex.ID)
	}
}

// compileWGSL compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
