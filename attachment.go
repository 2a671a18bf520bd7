package framegraph

// AttachmentKind classifies how a pass uses an attachment.
type AttachmentKind int

const (
	// AttachmentInput reads an existing resource.
	AttachmentInput AttachmentKind = iota

	// AttachmentOutput writes a resource. Without a handle a brand-new
	// dynamic resource is allocated for the output; with one, the pass
	// writes into the existing resource.
	AttachmentOutput

	// AttachmentInputOutput reads and writes the same existing resource.
	AttachmentInputOutput
)

// Attachment declares one resource slot of a pass. Build attachments with
// Input, NewOutput, OutputTo and InputOutput; the zero value is not valid.
type Attachment struct {
	kind     AttachmentKind
	resource ResourceHandle
	bound    bool

	// desc describes the texture to allocate for a NewOutput attachment.
	// Ignored when the attachment carries an existing handle.
	desc *ResourceDesc
}

// Input declares a read of an existing resource.
func Input(h ResourceHandle) Attachment {
	return Attachment{kind: AttachmentInput, resource: h, bound: true}
}

// NewOutput declares an output backed by a freshly allocated dynamic
// resource described by desc.
func NewOutput(desc ResourceDesc) Attachment {
	return Attachment{kind: AttachmentOutput, desc: &desc}
}

// OutputTo declares a write into an existing resource.
func OutputTo(h ResourceHandle) Attachment {
	return Attachment{kind: AttachmentOutput, resource: h, bound: true}
}

// InputOutput declares a read-modify-write of an existing resource.
func InputOutput(h ResourceHandle) Attachment {
	return Attachment{kind: AttachmentInputOutput, resource: h, bound: true}
}

// Kind returns the attachment's usage classification.
func (a Attachment) Kind() AttachmentKind { return a.kind }

// Resource returns the attached resource handle and whether one is bound.
// A NewOutput attachment has no handle until its pass is added to a graph.
func (a Attachment) Resource() (ResourceHandle, bool) {
	return a.resource, a.bound
}

// isNewResource reports whether the attachment requires a fresh allocation.
func (a Attachment) isNewResource() bool {
	return a.kind == AttachmentOutput && !a.bound
}

// isOutput reports whether the attachment registers an output edge.
func (a Attachment) isOutput() bool {
	return a.kind == AttachmentOutput || a.kind == AttachmentInputOutput
}
