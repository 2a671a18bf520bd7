// Package backend selects the device implementation the frame graph
// compiles against. Backends register themselves from init functions;
// callers pick one by name or take the best available by priority.
package backend
