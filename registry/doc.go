// Package registry provides a handle-keyed map for long-lived graph objects
// (shaders, pipelines, passes, resources) with lookup by generated handle,
// by user-supplied name and by source path.
//
// Handles are uuid-backed. Each registry instantiates its own handle type,
// so a pass handle can never be used to address a pipeline even though both
// are sixteen opaque bytes underneath.
//
// Registries are append-mostly and not synchronized; graph construction is
// single-threaded by design.
package registry
