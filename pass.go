package framegraph

import "github.com/gogpu/gputypes"

// PassDesc describes one render pass: the pipeline it runs and the ordered
// list of resources it reads and writes. Attachment declaration order is
// the edge insertion order, which keeps compiled output reproducible.
type PassDesc struct {
	// Label is an optional debug name; it also seeds derived names for
	// freshly allocated outputs.
	Label string

	// Pipeline is the pipeline the pass executes with.
	Pipeline PipelineHandle

	// ColorAttachments are the pass's color slots in declaration order.
	ColorAttachments []Attachment

	// DepthStencil is the optional depth-stencil slot. It participates
	// in dependency edges exactly like a color attachment.
	DepthStencil *Attachment

	// ClearColor is used when a color attachment is cleared on load.
	ClearColor gputypes.Color

	// LoadOp selects whether color attachments are cleared or loaded.
	LoadOp gputypes.LoadOp

	// StoreOp selects whether results are stored or discarded.
	StoreOp gputypes.StoreOp
}

// attachments returns every attachment in declaration order, depth-stencil
// last.
func (d *PassDesc) attachments() []Attachment {
	out := make([]Attachment, 0, len(d.ColorAttachments)+1)
	out = append(out, d.ColorAttachments...)
	if d.DepthStencil != nil {
		out = append(out, *d.DepthStencil)
	}
	return out
}
