package framegraph

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
)

func testShader(label string) ShaderDesc {
	return ShaderDesc{
		Label:  label,
		Source: "@vertex fn vs_main() {} @fragment fn fs_main() {}",
		Path:   "shaders/" + label + ".wgsl",
	}
}

func testGraphWithPipeline(t *testing.T) (*Graph, PipelineHandle) {
	t.Helper()
	g := New()
	sh := g.AddShader(testShader("blit"))
	pl, err := g.AddPipeline(PipelineDesc{
		Label:          "blit",
		VertexShader:   sh,
		FragmentShader: sh,
	})
	if err != nil {
		t.Fatalf("AddPipeline: %v", err)
	}
	return g, pl
}

func TestShaderLookup(t *testing.T) {
	g := New()
	sh := g.AddShader(testShader("tonemap"))

	if got, ok := g.ShaderByName("tonemap"); !ok || got != sh {
		t.Fatalf("ShaderByName = %v, %v; want %v, true", got, ok, sh)
	}
	if got, ok := g.ShaderByPath("shaders/tonemap.wgsl"); !ok || got != sh {
		t.Fatalf("ShaderByPath = %v, %v; want %v, true", got, ok, sh)
	}
	if _, ok := g.ShaderByName("missing"); ok {
		t.Fatal("ShaderByName found a shader that was never added")
	}
}

func TestAddPipelineUnknownShader(t *testing.T) {
	g := New()
	_, err := g.AddPipeline(PipelineDesc{
		Label:        "broken",
		VertexShader: ShaderHandle{1},
	})
	if !errors.Is(err, ErrShaderNotFound) {
		t.Fatalf("AddPipeline error = %v; want ErrShaderNotFound", err)
	}
}

func TestAddPassUnknownPipeline(t *testing.T) {
	g := New()
	_, _, err := g.AddPass(PassDesc{Label: "orphan", Pipeline: PipelineHandle{1}})
	if !errors.Is(err, ErrPipelineNotFound) {
		t.Fatalf("AddPass error = %v; want ErrPipelineNotFound", err)
	}
}

func TestAddPassUnknownAttachment(t *testing.T) {
	g, pl := testGraphWithPipeline(t)

	_, _, err := g.AddPass(PassDesc{
		Label:            "orphan",
		Pipeline:         pl,
		ColorAttachments: []Attachment{Input(ResourceHandle{1})},
	})
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("AddPass error = %v; want ErrResourceNotFound", err)
	}
	if len(g.passVertex) != 0 || g.dag.len() != 0 {
		t.Fatal("failed AddPass left vertices behind")
	}
}

func TestAddPassAllocatesOutput(t *testing.T) {
	g, pl := testGraphWithPipeline(t)

	pass, outputs, err := g.AddPass(PassDesc{
		Label:    "gbuffer",
		Pipeline: pl,
		ColorAttachments: []Attachment{
			NewOutput(ResourceDesc{Format: gputypes.TextureFormatRGBA8Unorm}),
		},
	})
	if err != nil {
		t.Fatalf("AddPass: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("outputs = %d; want 1", len(outputs))
	}

	// Freshly allocated outputs become addressable under a derived name.
	promoted, ok := g.ResourceByName("gbuffer/out0")
	if !ok || promoted != outputs[0] {
		t.Fatalf("ResourceByName(gbuffer/out0) = %v, %v; want %v, true", promoted, ok, outputs[0])
	}

	// Exactly one produce edge, pass to output.
	pv := g.passVertex[pass]
	rv := g.resourceVertex[outputs[0]]
	if len(g.dag.succ[pv]) != 1 || g.dag.succ[pv][0] != rv {
		t.Fatalf("succ[pass] = %v; want [%d]", g.dag.succ[pv], rv)
	}
	if len(g.dag.pred[rv]) != 1 || g.dag.pred[rv][0] != pv {
		t.Fatalf("pred[output] = %v; want [%d]", g.dag.pred[rv], pv)
	}
}

func TestInputOutputSingleEdge(t *testing.T) {
	g, pl := testGraphWithPipeline(t)
	r := g.AddResource(ResourceDesc{Name: "accum"})

	pass, outputs, err := g.AddPass(PassDesc{
		Label:            "accumulate",
		Pipeline:         pl,
		ColorAttachments: []Attachment{InputOutput(r)},
	})
	if err != nil {
		t.Fatalf("AddPass: %v", err)
	}
	if len(outputs) != 1 || outputs[0] != r {
		t.Fatalf("outputs = %v; want [%v]", outputs, r)
	}

	// A read-modify-write attachment registers only the produce edge,
	// otherwise the pass and resource would form a two-vertex cycle.
	pv := g.passVertex[pass]
	rv := g.resourceVertex[r]
	if len(g.dag.pred[pv]) != 0 {
		t.Fatalf("pred[pass] = %v; want none", g.dag.pred[pv])
	}
	if len(g.dag.succ[pv]) != 1 || g.dag.succ[pv][0] != rv {
		t.Fatalf("succ[pass] = %v; want [%d]", g.dag.succ[pv], rv)
	}
}

func TestDepthStencilAttachmentEdges(t *testing.T) {
	g, pl := testGraphWithPipeline(t)

	depth := NewOutput(ResourceDesc{Format: gputypes.TextureFormatDepth24PlusStencil8})
	pass, outputs, err := g.AddPass(PassDesc{
		Label:            "prepass",
		Pipeline:         pl,
		ColorAttachments: []Attachment{NewOutput(ResourceDesc{})},
		DepthStencil:     &depth,
	})
	if err != nil {
		t.Fatalf("AddPass: %v", err)
	}

	// Depth-stencil participates like a color attachment, ordered last.
	if len(outputs) != 2 {
		t.Fatalf("outputs = %d; want 2 (color then depth)", len(outputs))
	}
	if got, ok := g.ResourceByName("prepass/out1"); !ok || got != outputs[1] {
		t.Fatalf("depth output not promoted: %v, %v", got, ok)
	}
	pv := g.passVertex[pass]
	if len(g.dag.succ[pv]) != 2 {
		t.Fatalf("succ[pass] = %v; want two produce edges", g.dag.succ[pv])
	}
}

func TestLinkErrors(t *testing.T) {
	g, pl := testGraphWithPipeline(t)
	r := g.AddResource(ResourceDesc{Name: "buffer"})
	pass, _, err := g.AddPass(PassDesc{Label: "draw", Pipeline: pl})
	if err != nil {
		t.Fatalf("AddPass: %v", err)
	}

	if err := g.LinkResourceToPass(PassHandle{1}, []ResourceHandle{r}); !errors.Is(err, ErrPassNotFound) {
		t.Fatalf("LinkResourceToPass unknown pass = %v; want ErrPassNotFound", err)
	}
	if err := g.LinkResourceToPass(pass, []ResourceHandle{{1}}); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("LinkResourceToPass unknown resource = %v; want ErrResourceNotFound", err)
	}
	if err := g.LinkPassToResource(ResourceHandle{1}, []PassHandle{pass}); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("LinkPassToResource unknown resource = %v; want ErrResourceNotFound", err)
	}
	if err := g.LinkResourceToPass(pass, []ResourceHandle{r}); err != nil {
		t.Fatalf("LinkResourceToPass: %v", err)
	}
}

func TestTopoOrderProducersFirst(t *testing.T) {
	g, pl := testGraphWithPipeline(t)

	first, outputs, err := g.AddPass(PassDesc{
		Label:            "first",
		Pipeline:         pl,
		ColorAttachments: []Attachment{NewOutput(ResourceDesc{})},
	})
	if err != nil {
		t.Fatalf("AddPass first: %v", err)
	}
	second, _, err := g.AddPass(PassDesc{
		Label:            "second",
		Pipeline:         pl,
		ColorAttachments: []Attachment{Input(outputs[0]), NewOutput(ResourceDesc{})},
	})
	if err != nil {
		t.Fatalf("AddPass second: %v", err)
	}

	order, ok := g.dag.topoOrder()
	if !ok {
		t.Fatal("topoOrder reported a cycle in an acyclic graph")
	}
	pos := make(map[vertexID]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	if pos[g.passVertex[first]] >= pos[g.passVertex[second]] {
		t.Fatal("consumer pass ordered before its producer")
	}
	if pos[g.passVertex[first]] >= pos[g.resourceVertex[outputs[0]]] {
		t.Fatal("produced resource ordered before its producer")
	}
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	g, pl := testGraphWithPipeline(t)
	r := g.AddResource(ResourceDesc{Name: "feedback"})

	pass, _, err := g.AddPass(PassDesc{
		Label:            "loop",
		Pipeline:         pl,
		ColorAttachments: []Attachment{Input(r)},
	})
	if err != nil {
		t.Fatalf("AddPass: %v", err)
	}
	if err := g.LinkPassToResource(r, []PassHandle{pass}); err != nil {
		t.Fatalf("LinkPassToResource: %v", err)
	}

	if _, ok := g.dag.topoOrder(); ok {
		t.Fatal("topoOrder missed a resource/pass cycle")
	}
}

func TestDOTStable(t *testing.T) {
	build := func() *Graph {
		g, pl := testGraphWithPipeline(t)
		r := g.AddResource(ResourceDesc{Name: "scene"})
		if _, _, err := g.AddPass(PassDesc{
			Label:            "present",
			Pipeline:         pl,
			ColorAttachments: []Attachment{Input(r), NewOutput(ResourceDesc{})},
		}); err != nil {
			t.Fatalf("AddPass: %v", err)
		}
		return g
	}

	a, b := build().DOT(), build().DOT()
	if a != b {
		t.Fatalf("DOT not stable across identical builds:\n%s\n---\n%s", a, b)
	}
	for _, label := range []string{"scene", "present", "present/out0"} {
		if !strings.Contains(a, label) {
			t.Errorf("DOT output missing label %q:\n%s", label, a)
		}
	}
}

func TestMutateAfterCompilePanics(t *testing.T) {
	g, pl := testGraphWithPipeline(t)
	if _, _, err := g.AddPass(PassDesc{
		Label:            "only",
		Pipeline:         pl,
		ColorAttachments: []Attachment{NewOutput(ResourceDesc{})},
	}); err != nil {
		t.Fatalf("AddPass: %v", err)
	}
	cg, err := g.Compile(CompileOptions{Device: newFakeDevice()})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer cg.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("AddResource after compile did not panic")
		}
	}()
	g.AddResource(ResourceDesc{})
}
