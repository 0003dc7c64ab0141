// Package camera provides an orbit camera around the garden.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orbit looks at Target from a point on a sphere around it.
// Yaw turns around the vertical axis; Pitch tilts above the ground plane.
type Orbit struct {
	Target r3.Vec

	Yaw      float64 // radians
	Pitch    float64 // radians
	Distance float64

	// Constraints
	MinDistance, MaxDistance float64
	MinPitch, MaxPitch       float64
}

// Default orbit framing the 3x3 garden.
const (
	DefaultYaw      = math.Pi / 4
	DefaultPitch    = math.Pi / 5
	DefaultDistance = 22.0
)

// New creates an orbit around target with default framing.
func New(target r3.Vec) *Orbit {
	return &Orbit{
		Target:      target,
		Yaw:         DefaultYaw,
		Pitch:       DefaultPitch,
		Distance:    DefaultDistance,
		MinDistance: 5,
		MaxDistance: 60,
		MinPitch:    0.05,
		MaxPitch:    math.Pi/2 - 0.05,
	}
}

// Eye returns the camera position in world coordinates.
func (o *Orbit) Eye() r3.Vec {
	cp := math.Cos(o.Pitch)
	offset := r3.Vec{
		X: o.Distance * cp * math.Sin(o.Yaw),
		Y: o.Distance * math.Sin(o.Pitch),
		Z: o.Distance * cp * math.Cos(o.Yaw),
	}
	return r3.Add(o.Target, offset)
}

// Forward returns the unit view direction.
func (o *Orbit) Forward() r3.Vec {
	return r3.Unit(r3.Sub(o.Target, o.Eye()))
}

// Rotate turns the orbit by the given yaw and pitch deltas in radians.
func (o *Orbit) Rotate(dYaw, dPitch float64) {
	o.Yaw = math.Mod(o.Yaw+dYaw, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+dPitch, o.MinPitch, o.MaxPitch)
}

// SetDistance sets the orbit radius, clamped to min/max.
func (o *Orbit) SetDistance(d float64) {
	o.Distance = clamp(d, o.MinDistance, o.MaxDistance)
}

// ZoomBy divides the distance by factor; factor > 1 moves closer.
func (o *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	o.SetDistance(o.Distance / factor)
}

// Pan moves the target across the ground plane, relative to the view.
// dx moves right on screen, dz moves away from the viewer.
func (o *Orbit) Pan(dx, dz float64) {
	right := r3.Vec{X: math.Cos(o.Yaw), Z: -math.Sin(o.Yaw)}
	away := r3.Vec{X: -math.Sin(o.Yaw), Z: -math.Cos(o.Yaw)}
	o.Target = r3.Add(o.Target, r3.Add(r3.Scale(dx, right), r3.Scale(dz, away)))
}

// Reset returns the camera to the default framing around target.
func (o *Orbit) Reset(target r3.Vec) {
	o.Target = target
	o.Yaw = DefaultYaw
	o.Pitch = DefaultPitch
	o.Distance = DefaultDistance
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
