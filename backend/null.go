package backend

import (
	"fmt"
	"sync"

	"github.com/gogpu/framegraph"
)

// NullDevice is a device that allocates nothing. Every create call hands
// out a unique in-memory id and every destroy is counted, which makes it
// the headless fallback and a convenient test double.
type NullDevice struct {
	mu     sync.Mutex
	nextID uint64

	shaders   int
	layouts   int
	pipelines int
	textures  int
	destroyed int
}

// nullObject is the payload behind every object a NullDevice creates.
type nullObject struct {
	id    uint64
	kind  string
	label string
}

func (o nullObject) String() string {
	return fmt.Sprintf("null/%s:%d(%s)", o.kind, o.id, o.label)
}

// NewNullDevice creates an empty null device.
func NewNullDevice() *NullDevice {
	return &NullDevice{}
}

func (d *NullDevice) Name() string { return "null" }

func (d *NullDevice) CreateShaderModule(desc *framegraph.ShaderDesc) (framegraph.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shaders++
	return d.alloc("shader", desc.Label), nil
}

func (d *NullDevice) CreatePipelineLayout(desc *framegraph.PipelineDesc) (framegraph.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layouts++
	return d.alloc("layout", desc.Label), nil
}

func (d *NullDevice) CreateRenderPipeline(desc *framegraph.PipelineDesc, layout framegraph.PipelineLayout, vertex, fragment framegraph.ShaderModule) (framegraph.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pipelines++
	return d.alloc("pipeline", desc.Label), nil
}

func (d *NullDevice) CreateTexture(desc *framegraph.ResourceDesc) framegraph.Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures++
	return d.alloc("texture", desc.Name)
}

func (d *NullDevice) DestroyTexture(t framegraph.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed++
}

// Created returns the number of objects created per kind.
func (d *NullDevice) Created() (shaders, layouts, pipelines, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shaders, d.layouts, d.pipelines, d.textures
}

// Destroyed returns the number of textures destroyed.
func (d *NullDevice) Destroyed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// alloc hands out the next object id. Caller holds d.mu.
func (d *NullDevice) alloc(kind, label string) nullObject {
	d.nextID++
	return nullObject{id: d.nextID, kind: kind, label: label}
}

func init() {
	Register("null", 10, func(opts Options) (framegraph.Device, error) {
		return NewNullDevice(), nil
	}, nil)
}
