package framegraph

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/resource"
)

// ResourceDesc describes a graph resource. A non-empty Name makes the
// resource persistent: it is registered for lookup by name and keeps a
// stable identity across frames through the texture pool. An empty Name
// makes it dynamic: anonymous and scoped to this frame's graph.
type ResourceDesc struct {
	// Name is the persistent identity, or empty for a dynamic resource.
	Name string

	// Format is the texel format.
	// Defaults to TextureFormatRGBA8Unorm.
	Format gputypes.TextureFormat

	// Extent is the texture size.
	Extent gputypes.Extent3D

	// Usage is the allowed-usage bitmask.
	Usage gputypes.TextureUsage

	// Lifetime selects how long the materialized texture outlives its
	// last reference. Dynamic resources usually want LifetimeNone or
	// LifetimeShort; persistent ones LifetimeLong or LifetimeForever.
	Lifetime resource.Lifetime
}

// persistent reports whether the resource carries a persistent identity.
func (d *ResourceDesc) persistent() bool {
	return d.Name != ""
}

// EffectiveFormat returns the texel format, defaulted.
func (d *ResourceDesc) EffectiveFormat() gputypes.TextureFormat {
	if d.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return d.Format
}
