package wgpu

import "errors"

// Package errors.
var (
	// ErrNoAdapter is returned when the backend is created without a
	// wgpu adapter id in the options.
	ErrNoAdapter = errors.New("wgpu: an adapter id is required")

	// ErrDeviceClosed is returned when a closed device is used.
	ErrDeviceClosed = errors.New("wgpu: device is closed")
)
