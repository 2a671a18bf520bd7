package framegraph

import (
	"fmt"
	"strings"

	"github.com/gogpu/framegraph/registry"
)

// vertexID indexes a vertex within one Graph. Insertion order is the
// deterministic tie-break for every traversal.
type vertexID int

// vertexKind tags a vertex as holding a resource or a pass. Every edge
// connects a resource vertex and a pass vertex, never two of a kind.
type vertexKind int

const (
	vertexResource vertexKind = iota
	vertexPass
)

// vertex is the weight stored per graph vertex.
type vertex struct {
	kind     vertexKind
	pass     PassHandle
	resource ResourceHandle
}

// digraph is a directed graph kept as forward and reverse adjacency lists
// in lockstep, so predecessors and successors both iterate in O(degree)
// and in edge insertion order.
type digraph struct {
	succ [][]vertexID
	pred [][]vertexID
}

func (d *digraph) addVertex() vertexID {
	d.succ = append(d.succ, nil)
	d.pred = append(d.pred, nil)
	return vertexID(len(d.succ) - 1)
}

func (d *digraph) addEdge(from, to vertexID) {
	d.succ[from] = append(d.succ[from], to)
	d.pred[to] = append(d.pred[to], from)
}

func (d *digraph) len() int { return len(d.succ) }

// topoOrder returns a producer-before-consumer ordering, or ok=false if
// the graph has a cycle. Kahn's algorithm; ready vertices leave the queue
// in insertion order, so the result is stable for a given build sequence.
func (d *digraph) topoOrder() ([]vertexID, bool) {
	indeg := make([]int, d.len())
	for _, outs := range d.succ {
		for _, to := range outs {
			indeg[to]++
		}
	}

	queue := make([]vertexID, 0, d.len())
	for v := range indeg {
		if indeg[v] == 0 {
			queue = append(queue, vertexID(v))
		}
	}

	order := make([]vertexID, 0, d.len())
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, to := range d.succ[v] {
			indeg[to]--
			if indeg[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return order, len(order) == d.len()
}

// graphState is the lifecycle of a Graph: building, then permanently
// compiled. There is no way back; a new frame builds a new Graph.
type graphState int

const (
	stateBuilding graphState = iota
	stateCompiled
)

// resourceNode is the registry record for a resource vertex.
type resourceNode struct {
	name       string
	persistent bool
	desc       ResourceDesc
}

// Graph is the frame graph authoring surface. It owns the registries for
// shaders, pipelines, passes and resources, and the dependency graph that
// links passes to the resources they consume and produce.
//
// A Graph is append-only while building and frozen after Compile.
// It is not safe for concurrent use.
type Graph struct {
	state graphState

	shaders   *registry.Registry[ShaderHandle, ShaderDesc]
	pipelines *registry.Registry[PipelineHandle, PipelineDesc]
	passes    *registry.Registry[PassHandle, PassDesc]
	resources *registry.Registry[ResourceHandle, resourceNode]

	dag            digraph
	vertices       []vertex
	passVertex     map[PassHandle]vertexID
	resourceVertex map[ResourceHandle]vertexID
}

// New creates an empty frame graph.
func New() *Graph {
	return &Graph{
		shaders:        registry.New[ShaderHandle, ShaderDesc](),
		pipelines:      registry.New[PipelineHandle, PipelineDesc](),
		passes:         registry.New[PassHandle, PassDesc](),
		resources:      registry.New[ResourceHandle, resourceNode](),
		passVertex:     make(map[PassHandle]vertexID),
		resourceVertex: make(map[ResourceHandle]vertexID),
	}
}

// AddShader registers a shader definition. The shader's label indexes it
// for ShaderByName, its path for ShaderByPath.
func (g *Graph) AddShader(desc ShaderDesc) ShaderHandle {
	g.mustBuilding()
	return g.shaders.AddWithPath(desc, desc.Label, desc.Path)
}

// ShaderByName resolves a shader by its label. A miss is not-found, never
// an error.
func (g *Graph) ShaderByName(name string) (ShaderHandle, bool) {
	return g.shaders.ByName(name)
}

// ShaderByPath resolves a shader by its source path.
func (g *Graph) ShaderByPath(path string) (ShaderHandle, bool) {
	return g.shaders.ByPath(path)
}

// AddPipeline registers a pipeline definition. The referenced shaders must
// already be registered.
func (g *Graph) AddPipeline(desc PipelineDesc) (PipelineHandle, error) {
	g.mustBuilding()

	if !g.shaders.Contains(desc.VertexShader) {
		return PipelineHandle{}, fmt.Errorf("%w: vertex shader of pipeline %q", ErrShaderNotFound, desc.Label)
	}
	if desc.hasFragment() && !g.shaders.Contains(desc.FragmentShader) {
		return PipelineHandle{}, fmt.Errorf("%w: fragment shader of pipeline %q", ErrShaderNotFound, desc.Label)
	}
	return g.pipelines.Add(desc, desc.Label), nil
}

// PipelineByName resolves a pipeline by its label.
func (g *Graph) PipelineByName(name string) (PipelineHandle, bool) {
	return g.pipelines.ByName(name)
}

// AddResource declares a resource vertex. A named descriptor registers a
// persistent resource addressable through ResourceByName; an anonymous one
// gets a fresh frame-local identity on every call.
func (g *Graph) AddResource(desc ResourceDesc) ResourceHandle {
	g.mustBuilding()
	return g.addResourceNode(resourceNode{
		name:       desc.Name,
		persistent: desc.persistent(),
		desc:       desc,
	})
}

// ResourceByName resolves a persistent resource by name.
func (g *Graph) ResourceByName(name string) (ResourceHandle, bool) {
	return g.resources.ByName(name)
}

// AddPass declares a pass and wires its dependency edges: one edge from
// every input resource to the pass, one edge from the pass to every output
// resource. Attachments are processed in declaration order (depth-stencil
// last), which fixes edge order and keeps serialized output stable.
//
// Output attachments without a handle allocate a fresh resource. A named
// descriptor keeps its persistent identity; an anonymous one is also
// registered under a derived persistent name ("<label>/out<N>") so later
// passes can reference it without the caller threading the handle through.
//
// Returns the pass handle and its output resource handles in declaration
// order.
func (g *Graph) AddPass(desc PassDesc) (PassHandle, []ResourceHandle, error) {
	g.mustBuilding()

	if !g.pipelines.Contains(desc.Pipeline) {
		return PassHandle{}, nil, fmt.Errorf("%w: pass %q", ErrPipelineNotFound, desc.Label)
	}

	// Validate every bound attachment before mutating the graph, so a
	// failed AddPass leaves no partial vertices or edges behind.
	for _, att := range desc.attachments() {
		if h, ok := att.Resource(); ok {
			if _, exists := g.resourceVertex[h]; !exists {
				return PassHandle{}, nil, fmt.Errorf("%w: attachment of pass %q", ErrResourceNotFound, desc.Label)
			}
		}
	}

	pass := g.passes.Add(desc, desc.Label)
	pv := g.addVertexRecord(vertex{kind: vertexPass, pass: pass})
	g.passVertex[pass] = pv

	var outputs []ResourceHandle
	newOutputs := 0
	for _, att := range desc.attachments() {
		switch {
		case att.isNewResource():
			node := resourceNode{desc: *att.desc}
			if node.desc.Name != "" {
				node.name = node.desc.Name
				node.persistent = true
			}
			rh := g.addResourceNode(node)
			if !node.persistent {
				g.promoteOutput(rh, desc.Label, pass, newOutputs)
			}
			newOutputs++
			g.dag.addEdge(pv, g.resourceVertex[rh])
			outputs = append(outputs, rh)

		case att.isOutput():
			h, _ := att.Resource()
			g.dag.addEdge(pv, g.resourceVertex[h])
			outputs = append(outputs, h)

		default: // pure input
			h, _ := att.Resource()
			g.dag.addEdge(g.resourceVertex[h], pv)
		}
	}

	Logger().Debug("framegraph: pass added",
		"pass", desc.Label, "outputs", len(outputs), "new", newOutputs)
	return pass, outputs, nil
}

// LinkResourceToPass adds consume edges from each resource to the pass.
// Used for dependencies that are not expressed as attachments, such as a
// vertex buffer feeding a pass.
func (g *Graph) LinkResourceToPass(pass PassHandle, resources []ResourceHandle) error {
	g.mustBuilding()

	pv, ok := g.passVertex[pass]
	if !ok {
		return ErrPassNotFound
	}
	for _, r := range resources {
		rv, ok := g.resourceVertex[r]
		if !ok {
			return ErrResourceNotFound
		}
		g.dag.addEdge(rv, pv)
	}
	return nil
}

// LinkPassToResource adds produce edges from each pass to the resource.
func (g *Graph) LinkPassToResource(res ResourceHandle, passes []PassHandle) error {
	g.mustBuilding()

	rv, ok := g.resourceVertex[res]
	if !ok {
		return ErrResourceNotFound
	}
	for _, p := range passes {
		pv, ok := g.passVertex[p]
		if !ok {
			return ErrPassNotFound
		}
		g.dag.addEdge(pv, rv)
	}
	return nil
}

// DOT renders the graph as a human-readable directed-graph description.
// Vertices display the resource name if persistent, the generated id
// otherwise; the projection is purely diagnostic and has no bearing on
// compiled behavior. Output is stable for a given build sequence.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph framegraph {\n")
	for i, v := range g.vertices {
		shape := "ellipse"
		if v.kind == vertexPass {
			shape = "box"
		}
		fmt.Fprintf(&b, "\tv%d [label=%q, shape=%s];\n", i, g.label(vertexID(i)), shape)
	}
	for from, outs := range g.dag.succ {
		for _, to := range outs {
			fmt.Fprintf(&b, "\tv%d -> v%d;\n", from, to)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// label returns the display label of a vertex.
func (g *Graph) label(v vertexID) string {
	w := g.vertices[v]
	if w.kind == vertexPass {
		if desc, ok := g.passes.Get(w.pass); ok && desc.Label != "" {
			return desc.Label
		}
		return w.pass.String()
	}
	if node, ok := g.resources.Get(w.resource); ok && node.persistent && node.name != "" {
		return node.name
	}
	return w.resource.String()
}

// addResourceNode registers a resource record and its vertex.
func (g *Graph) addResourceNode(node resourceNode) ResourceHandle {
	h := g.resources.Add(node, node.name)
	rv := g.addVertexRecord(vertex{kind: vertexResource, resource: h})
	g.resourceVertex[h] = rv
	return h
}

// promoteOutput registers a freshly allocated dynamic output under a
// derived persistent identity.
func (g *Graph) promoteOutput(h ResourceHandle, passLabel string, pass PassHandle, index int) {
	if passLabel == "" {
		passLabel = pass.String()
	}
	name := fmt.Sprintf("%s/out%d", passLabel, index)
	if node, ok := g.resources.Get(h); ok {
		node.name = name
		node.persistent = true
	}
	// Re-index under the derived name; the record itself was updated in
	// place above.
	g.resources.Reindex(h, name)
}

// addVertexRecord appends a vertex weight and its adjacency slots.
func (g *Graph) addVertexRecord(w vertex) vertexID {
	v := g.dag.addVertex()
	g.vertices = append(g.vertices, w)
	return v
}

// mustBuilding panics when the graph is mutated after compilation.
// Mutating a frozen graph is a programming error, not a runtime condition.
func (g *Graph) mustBuilding() {
	if g.state != stateBuilding {
		panic(ErrGraphCompiled)
	}
}
