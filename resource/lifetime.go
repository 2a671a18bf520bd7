package resource

import "time"

// Lifetime is a policy bucket describing how long a resource survives after
// its last reference is released.
type Lifetime int

const (
	// LifetimeNone destroys the resource at the next upkeep sweep.
	LifetimeNone Lifetime = iota
	// LifetimeShort is for resources unlikely to be loaded again.
	LifetimeShort
	// LifetimeMedium is for resources that may be loaded again.
	LifetimeMedium
	// LifetimeLong is for resources expected to be loaded again.
	LifetimeLong
	// LifetimeForever keeps the resource until the manager is closed.
	LifetimeForever
)

// lifetimeDelays maps each lifetime class to its destruction delay.
// LifetimeForever has no entry; it never expires.
var lifetimeDelays = [...]time.Duration{
	LifetimeNone:   0,
	LifetimeShort:  3 * time.Second,
	LifetimeMedium: 60 * time.Second,
	LifetimeLong:   5 * time.Minute,
}

// Delay returns the destruction delay for the lifetime class. The second
// return value is false for LifetimeForever, which has no deadline.
func (l Lifetime) Delay() (time.Duration, bool) {
	if l == LifetimeForever {
		return 0, false
	}
	if l < LifetimeNone || int(l) >= len(lifetimeDelays) {
		panic("resource: lifetime class not defined")
	}
	return lifetimeDelays[l], true
}

// String returns the lifetime class name.
func (l Lifetime) String() string {
	switch l {
	case LifetimeNone:
		return "none"
	case LifetimeShort:
		return "short"
	case LifetimeMedium:
		return "medium"
	case LifetimeLong:
		return "long"
	case LifetimeForever:
		return "forever"
	default:
		return "unknown"
	}
}
