package framegraph

// Default shader entry point names.
const (
	// DefaultVertexEntry is the vertex entry point used when a
	// ShaderDesc leaves VertexEntry empty.
	DefaultVertexEntry = "vs_main"

	// DefaultFragmentEntry is the fragment entry point used when a
	// ShaderDesc leaves FragmentEntry empty.
	DefaultFragmentEntry = "fs_main"
)

// ShaderDesc describes a shader module to be compiled by the backend at
// materialization time. Source carries WGSL text; Path optionally records
// where it came from and indexes the shader for path lookup.
type ShaderDesc struct {
	// Label is an optional debug name.
	Label string

	// Source is the WGSL source text.
	Source string

	// Path is the optional origin of Source.
	Path string

	// VertexEntry is the vertex entry point. Defaults to DefaultVertexEntry.
	VertexEntry string

	// FragmentEntry is the fragment entry point.
	// Defaults to DefaultFragmentEntry.
	FragmentEntry string
}

// VertexEntryPoint returns the vertex entry point, defaulted.
func (d *ShaderDesc) VertexEntryPoint() string {
	if d.VertexEntry == "" {
		return DefaultVertexEntry
	}
	return d.VertexEntry
}

// FragmentEntryPoint returns the fragment entry point, defaulted.
func (d *ShaderDesc) FragmentEntryPoint() string {
	if d.FragmentEntry == "" {
		return DefaultFragmentEntry
	}
	return d.FragmentEntry
}
