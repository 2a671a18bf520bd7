package framegraph

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/framegraph/resource"
)

// deviceTextures materializes pool entries on the device. Descriptors are
// staged by resource id just before Manager.Create calls back into it.
type deviceTextures struct {
	device Device
	descs  map[uuid.UUID]*ResourceDesc
}

func (h *deviceTextures) Create(meta *resource.Meta) Texture {
	desc, ok := h.descs[meta.ID]
	if !ok {
		desc = &ResourceDesc{}
	}
	return h.device.CreateTexture(desc)
}

func (h *deviceTextures) Destroy(t Texture) {
	h.device.DestroyTexture(t)
}

// TexturePool keeps materialized textures alive across graphs. Persistent
// resources are keyed by name, so a texture survives as long as some graph
// keeps acquiring it within its lifetime window; dynamic resources are keyed
// by their per-graph handle and die once released and expired.
//
// A TexturePool is safe for concurrent use.
type TexturePool struct {
	mu      sync.Mutex
	handler *deviceTextures
	mgr     *resource.Manager[Texture]
}

// NewTexturePool creates a pool allocating through device. The zero Config
// selects default capacity, destruction rate and the real clock.
func NewTexturePool(device Device, cfg resource.Config) *TexturePool {
	handler := &deviceTextures{
		device: device,
		descs:  make(map[uuid.UUID]*ResourceDesc),
	}
	return &TexturePool{
		handler: handler,
		mgr:     resource.NewManager[Texture](handler, cfg),
	}
}

// Acquire checks out a texture for a graph resource. A non-empty name is
// tried first, so persistent resources reuse last frame's texture even
// though every graph generates fresh handles. Otherwise the handle's own
// identity is looked up, and a miss materializes a new texture from desc.
func (p *TexturePool) Acquire(h ResourceHandle, name string, desc *ResourceDesc) *resource.Ref {
	p.mu.Lock()
	defer p.mu.Unlock()

	if name != "" {
		if ref, ok := p.mgr.GetByName(name); ok {
			return ref
		}
	}
	id := uuid.UUID(h)
	if ref, ok := p.mgr.GetByID(id); ok {
		return ref
	}

	p.handler.descs[id] = desc
	ref := p.mgr.Create(&resource.Meta{
		ID:       id,
		Name:     name,
		Lifetime: desc.Lifetime,
	})
	delete(p.handler.descs, id)
	return ref
}

// AcquireNamed checks out a texture that already lives in the pool under a
// persistent name. A miss is not-found, never an error.
func (p *TexturePool) AcquireNamed(name string) (*resource.Ref, bool) {
	return p.mgr.GetByName(name)
}

// Texture returns the texture a checked-out reference points at.
func (p *TexturePool) Texture(ref *resource.Ref) (Texture, bool) {
	return p.mgr.Resource(ref)
}

// Upkeep sweeps the pool's eviction queue once. Call once per frame tick.
func (p *TexturePool) Upkeep(now time.Time) {
	p.mgr.Upkeep(now)
}

// Len returns the number of live textures.
func (p *TexturePool) Len() int {
	return p.mgr.Len()
}

// Close destroys every remaining texture, including forever-lived ones.
func (p *TexturePool) Close() {
	p.mgr.Close()
}
