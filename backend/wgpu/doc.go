// Package wgpu implements the frame graph device on top of gogpu/wgpu.
// Shaders are compiled from WGSL to SPIR-V through gogpu/naga at
// materialization time; the logical device and its queue come from the
// wgpu core API.
package wgpu
