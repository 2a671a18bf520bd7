package framegraph

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph/resource"
)

// OpKind classifies one step of a compiled execution plan.
type OpKind int

const (
	// OpCreateResource materializes a resource before its first use.
	OpCreateResource OpKind = iota

	// OpExecutePass runs a pass; everything it reads is already live.
	OpExecutePass
)

func (k OpKind) String() string {
	switch k {
	case OpCreateResource:
		return "create-resource"
	case OpExecutePass:
		return "execute-pass"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one step of the compiled plan. Resource is set for
// OpCreateResource, Pass for OpExecutePass.
type Op struct {
	Kind     OpKind
	Resource ResourceHandle
	Pass     PassHandle
}

// CompileOptions configures one compilation.
type CompileOptions struct {
	// Device is the backend to materialize against. Required.
	Device Device

	// Pool supplies cross-frame texture reuse. If nil, the compiled
	// graph owns a private pool that dies with it on Release.
	Pool *TexturePool

	// PoolConfig configures the private pool when Pool is nil.
	PoolConfig resource.Config

	// Bindings supplies externally owned textures for source resources,
	// keyed by resource handle. A swapchain image is the typical entry.
	Bindings map[ResourceHandle]Texture
}

// CompiledGraph is the result of compiling a Graph: a linear execution
// plan plus the materialized backend objects it refers to. Shader modules,
// layouts and pipelines are materialized at most once each, no matter how
// many passes share them.
//
// The compiled graph holds checked-out references on every pooled texture;
// Release them when the frame is done.
type CompiledGraph struct {
	graph    *Graph
	device   Device
	pool     *TexturePool
	ownsPool bool

	ops       []Op
	shaders   map[ShaderHandle]ShaderModule
	layouts   map[PipelineHandle]PipelineLayout
	pipelines map[PipelineHandle]RenderPipeline
	textures  map[ResourceHandle]Texture

	refs     []*resource.Ref
	released atomic.Bool
}

// Compile freezes the graph and materializes it into an execution plan.
// Vertices are visited in topological order, producers before consumers.
// A dependency cycle or an unbound source resource fails compilation
// before the graph is frozen; the graph can then be fixed and recompiled.
func (g *Graph) Compile(opts CompileOptions) (*CompiledGraph, error) {
	if g.state != stateBuilding {
		return nil, ErrGraphCompiled
	}
	if opts.Device == nil {
		return nil, ErrNoDevice
	}

	order, ok := g.dag.topoOrder()
	if !ok {
		return nil, g.cycleError(order)
	}

	cg := &CompiledGraph{
		graph:     g,
		device:    opts.Device,
		pool:      opts.Pool,
		shaders:   make(map[ShaderHandle]ShaderModule),
		layouts:   make(map[PipelineHandle]PipelineLayout),
		pipelines: make(map[PipelineHandle]RenderPipeline),
		textures:  make(map[ResourceHandle]Texture),
	}
	if cg.pool == nil {
		cg.pool = NewTexturePool(opts.Device, opts.PoolConfig)
		cg.ownsPool = true
	}

	// A pass's outputs sort after it, but their textures must exist when
	// the pass runs. Visiting a pass therefore materializes its output
	// resources first; the later resource visits become no-ops.
	done := make([]bool, g.dag.len())
	visit := func(v vertexID) error {
		if done[v] {
			return nil
		}
		done[v] = true
		w := g.vertices[v]
		if w.kind == vertexResource {
			return cg.materializeResource(v, w.resource, opts.Bindings)
		}
		for _, rv := range g.dag.succ[v] {
			if done[rv] {
				continue
			}
			done[rv] = true
			out := g.vertices[rv]
			if err := cg.materializeResource(rv, out.resource, opts.Bindings); err != nil {
				return err
			}
		}
		return cg.materializePass(w.pass)
	}
	for _, v := range order {
		if err := visit(v); err != nil {
			cg.Release()
			return nil, err
		}
	}

	g.state = stateCompiled
	Logger().Info("framegraph: compiled",
		"backend", opts.Device.Name(),
		"ops", len(cg.ops),
		"passes", g.passes.Len(),
		"resources", g.resources.Len())
	return cg, nil
}

// cycleError collects the labels of every vertex left out of a partial
// topological order. Those are the vertices on or downstream of a cycle.
func (g *Graph) cycleError(partial []vertexID) *CycleError {
	ordered := make([]bool, g.dag.len())
	for _, v := range partial {
		ordered[v] = true
	}
	var labels []string
	for v := range g.vertices {
		if !ordered[v] {
			labels = append(labels, g.label(vertexID(v)))
		}
	}
	return &CycleError{Vertices: labels}
}

// materializeResource binds or allocates the texture behind one resource
// vertex. Resolution order: external binding, then the persistent pool by
// name for source resources, then a fresh pool allocation for produced
// ones. A source resource with no binding fails compilation.
func (c *CompiledGraph) materializeResource(v vertexID, h ResourceHandle, bindings map[ResourceHandle]Texture) error {
	if t, ok := bindings[h]; ok {
		c.textures[h] = t
		return nil
	}

	node, ok := c.graph.resources.Get(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, h)
	}

	// No producing pass means nothing in this graph writes the resource,
	// so its contents must come from outside.
	if len(c.graph.dag.pred[v]) == 0 {
		if node.persistent {
			if ref, ok := c.pool.AcquireNamed(node.name); ok {
				c.holdRef(h, ref)
				return nil
			}
		}
		return &UnsatisfiedDependencyError{Resource: h, Label: c.graph.label(v)}
	}

	ref := c.pool.Acquire(h, node.name, &node.desc)
	c.holdRef(h, ref)
	c.ops = append(c.ops, Op{Kind: OpCreateResource, Resource: h})
	return nil
}

// holdRef records a checked-out texture reference and its resolved payload.
func (c *CompiledGraph) holdRef(h ResourceHandle, ref *resource.Ref) {
	c.refs = append(c.refs, ref)
	if t, ok := c.pool.Texture(ref); ok {
		c.textures[h] = t
	}
}

// materializePass ensures the pass's pipeline exists and appends its
// execution step.
func (c *CompiledGraph) materializePass(pass PassHandle) error {
	desc, ok := c.graph.passes.Get(pass)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPassNotFound, pass)
	}
	if _, err := c.ensurePipeline(desc.Pipeline); err != nil {
		return fmt.Errorf("pass %q: %w", desc.Label, err)
	}
	c.ops = append(c.ops, Op{Kind: OpExecutePass, Pass: pass})
	return nil
}

// ensureShader compiles a shader module once and memoizes it by handle.
func (c *CompiledGraph) ensureShader(h ShaderHandle) (ShaderModule, error) {
	if m, ok := c.shaders[h]; ok {
		return m, nil
	}
	desc, ok := c.graph.shaders.Get(h)
	if !ok {
		return nil, ErrShaderNotFound
	}
	m, err := c.device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", desc.Label, err)
	}
	c.shaders[h] = m
	return m, nil
}

// ensurePipeline materializes a pipeline once: its shader modules, its
// layout, then the pipeline itself, all memoized by handle.
func (c *CompiledGraph) ensurePipeline(h PipelineHandle) (RenderPipeline, error) {
	if p, ok := c.pipelines[h]; ok {
		return p, nil
	}
	desc, ok := c.graph.pipelines.Get(h)
	if !ok {
		return nil, ErrPipelineNotFound
	}

	vertex, err := c.ensureShader(desc.VertexShader)
	if err != nil {
		return nil, err
	}
	var fragment ShaderModule
	if desc.hasFragment() {
		if fragment, err = c.ensureShader(desc.FragmentShader); err != nil {
			return nil, err
		}
	}

	layout, ok := c.layouts[h]
	if !ok {
		if layout, err = c.device.CreatePipelineLayout(desc); err != nil {
			return nil, fmt.Errorf("pipeline layout %q: %w", desc.Label, err)
		}
		c.layouts[h] = layout
	}

	p, err := c.device.CreateRenderPipeline(desc, layout, vertex, fragment)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	c.pipelines[h] = p
	return p, nil
}

// Ops returns the execution plan in order.
func (c *CompiledGraph) Ops() []Op {
	out := make([]Op, len(c.ops))
	copy(out, c.ops)
	return out
}

// Texture returns the materialized or bound texture of a resource.
func (c *CompiledGraph) Texture(h ResourceHandle) (Texture, bool) {
	t, ok := c.textures[h]
	return t, ok
}

// Pipeline returns the materialized pipeline a pass executes with.
func (c *CompiledGraph) Pipeline(pass PassHandle) (RenderPipeline, bool) {
	desc, ok := c.graph.passes.Get(pass)
	if !ok {
		return nil, false
	}
	p, ok := c.pipelines[desc.Pipeline]
	return p, ok
}

// Release returns every pooled texture reference and, when the compiled
// graph owns its pool, destroys the pool. Safe to call more than once and
// from any goroutine; only the first call does work.
func (c *CompiledGraph) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	for _, ref := range c.refs {
		ref.Release()
	}
	c.refs = nil
	if c.ownsPool {
		c.pool.Close()
	}
}
