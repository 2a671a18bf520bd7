// Package framegraph builds and compiles per-frame rendering dependency
// graphs.
//
// A frame graph is a directed graph over two vertex kinds: resources
// (textures, attachments) and passes. Passes declare the resources they
// read and write; the graph derives a producer-before-consumer execution
// order and materializes only the resources a frame actually needs.
//
// Resources are either persistent (named, identity-stable across frames)
// or dynamic (anonymous, frame-local). Concrete GPU objects live in a
// reference-counted lifetime cache (package resource) so that a resource
// released at the end of one frame and re-acquired at the start of the next
// is reused rather than destroyed and recreated.
//
// A Graph moves through two states: while building, vertices and edges may
// be added freely; Compile freezes it permanently and produces an ordered
// operation list for an external command encoder. A new frame means a new
// Graph; resource identities, not graph topology, carry across frames.
package framegraph
