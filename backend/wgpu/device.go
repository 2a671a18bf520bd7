package wgpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/core"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
)

// Device implements the frame graph device on a wgpu logical device.
// Create one with NewDevice from an adapter acquired by the caller; the
// adapter stays owned by the caller unless handed over with OwnAdapter.
type Device struct {
	label   string
	adapter core.AdapterID
	device  core.DeviceID
	queue   core.QueueID

	ownsAdapter bool
	nextID      atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// NewDevice requests a logical device and its queue from the adapter.
func NewDevice(adapter core.AdapterID, label string) (*Device, error) {
	if adapter.IsZero() {
		return nil, ErrNoAdapter
	}

	deviceID, err := core.RequestDevice(adapter, &types.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: requesting device: %w", err)
	}

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = core.DeviceDrop(deviceID)
		return nil, fmt.Errorf("wgpu: getting device queue: %w", err)
	}

	framegraph.Logger().Info("wgpu: device created", "label", label)
	return &Device{
		label:   label,
		adapter: adapter,
		device:  deviceID,
		queue:   queueID,
	}, nil
}

// OwnAdapter transfers adapter ownership to the device, so Close drops
// the adapter as well.
func (d *Device) OwnAdapter() *Device {
	d.ownsAdapter = true
	return d
}

// Name identifies the backend.
func (d *Device) Name() string { return "wgpu" }

// Queue returns the device's submission queue id.
func (d *Device) Queue() core.QueueID { return d.queue }

// GPUInfo describes the adapter behind the device.
type GPUInfo struct {
	Name       string
	Vendor     string
	DeviceType types.DeviceType
	Backend    types.Backend
	Driver     string
}

func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Info returns the adapter description, for logs and diagnostics.
func (d *Device) Info() (*GPUInfo, error) {
	info, err := core.GetAdapterInfo(d.adapter)
	if err != nil {
		return nil, fmt.Errorf("wgpu: getting adapter info: %w", err)
	}
	return &GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}

// Close drops the logical device and, if owned, the adapter. Textures
// and pipelines created by the device die with it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := core.DeviceDrop(d.device); err != nil {
		return fmt.Errorf("wgpu: dropping device: %w", err)
	}
	if d.ownsAdapter {
		if err := core.AdapterDrop(d.adapter); err != nil {
			return fmt.Errorf("wgpu: dropping adapter: %w", err)
		}
	}
	return nil
}

// alloc hands out the next local object id.
func (d *Device) alloc() uint64 {
	return d.nextID.Add(1)
}

func init() {
	backend.Register("wgpu", 100, func(opts backend.Options) (framegraph.Device, error) {
		adapter, ok := opts.Adapter.(core.AdapterID)
		if !ok {
			return nil, ErrNoAdapter
		}
		return NewDevice(adapter, opts.Label)
	}, nil)
}
