package framegraph

// Opaque backend object types. The graph never inspects these; it only
// threads them between the device that created them and the executor.
type (
	// ShaderModule is a backend-compiled shader.
	ShaderModule any

	// PipelineLayout is a backend pipeline layout.
	PipelineLayout any

	// RenderPipeline is a backend render pipeline.
	RenderPipeline any

	// Texture is a backend texture.
	Texture any
)

// Device is the backend surface the compiler materializes against.
// Implementations live in the backend packages; tests use in-memory fakes.
//
// Creation methods are called with graph-internal state held and must not
// call back into the Graph or the pool.
type Device interface {
	// Name identifies the backend for logs and diagnostics.
	Name() string

	// CreateShaderModule compiles a shader from its descriptor.
	CreateShaderModule(desc *ShaderDesc) (ShaderModule, error)

	// CreatePipelineLayout builds a layout from the pipeline's bindings.
	CreatePipelineLayout(desc *PipelineDesc) (PipelineLayout, error)

	// CreateRenderPipeline builds a render pipeline. fragment is nil when
	// the pipeline has no fragment stage.
	CreateRenderPipeline(desc *PipelineDesc, layout PipelineLayout, vertex, fragment ShaderModule) (RenderPipeline, error)

	// CreateTexture allocates a texture for a resource descriptor.
	CreateTexture(desc *ResourceDesc) Texture

	// DestroyTexture releases a texture created by CreateTexture.
	DestroyTexture(t Texture)
}
