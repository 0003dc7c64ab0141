package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNew(t *testing.T) {
	o := New(r3.Vec{})

	if o.Yaw != DefaultYaw || o.Pitch != DefaultPitch || o.Distance != DefaultDistance {
		t.Errorf("unexpected defaults: %+v", o)
	}
	eye := o.Eye()
	if !near(r3.Norm(eye), DefaultDistance) {
		t.Errorf("eye distance = %v, want %v", r3.Norm(eye), DefaultDistance)
	}
	if eye.Y <= 0 {
		t.Errorf("eye below ground: %+v", eye)
	}
}

func TestEyeAxes(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       r3.Vec
	}{
		{"front", 0, 0, r3.Vec{Z: 10}},
		{"side", math.Pi / 2, 0, r3.Vec{X: 10}},
		{"overhead", 0, math.Pi / 2, r3.Vec{Y: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Orbit{Target: r3.Vec{X: 1, Y: 2, Z: 3}, Yaw: tt.yaw, Pitch: tt.pitch, Distance: 10}
			got := r3.Sub(o.Eye(), o.Target)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Errorf("eye offset = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestForwardPointsAtTarget(t *testing.T) {
	o := New(r3.Vec{X: 4, Z: -2})
	o.Rotate(1.1, 0.2)

	f := o.Forward()
	if !near(r3.Norm(f), 1) {
		t.Errorf("forward not unit: %v", r3.Norm(f))
	}
	back := r3.Add(o.Eye(), r3.Scale(o.Distance, f))
	if r3.Norm(r3.Sub(back, o.Target)) > 1e-9 {
		t.Errorf("eye + d*forward = %+v, want target %+v", back, o.Target)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	o := New(r3.Vec{})

	o.Rotate(0, 10)
	if o.Pitch != o.MaxPitch {
		t.Errorf("pitch = %v, want max %v", o.Pitch, o.MaxPitch)
	}
	o.Rotate(0, -10)
	if o.Pitch != o.MinPitch {
		t.Errorf("pitch = %v, want min %v", o.Pitch, o.MinPitch)
	}
}

func TestZoomClamps(t *testing.T) {
	o := New(r3.Vec{})

	o.ZoomBy(2)
	if !near(o.Distance, DefaultDistance/2) {
		t.Errorf("distance = %v, want %v", o.Distance, DefaultDistance/2)
	}
	o.ZoomBy(100)
	if o.Distance != o.MinDistance {
		t.Errorf("distance = %v, want min %v", o.Distance, o.MinDistance)
	}
	o.ZoomBy(0.001)
	if o.Distance != o.MaxDistance {
		t.Errorf("distance = %v, want max %v", o.Distance, o.MaxDistance)
	}
	o.ZoomBy(0)
	if o.Distance != o.MaxDistance {
		t.Error("zero factor should be ignored")
	}
}

func TestPanIsViewRelative(t *testing.T) {
	o := New(r3.Vec{})
	o.Yaw = 0

	// Looking down -Z: away is -Z, right is +X
	o.Pan(1, 2)
	if !near(o.Target.X, 1) || !near(o.Target.Z, -2) || o.Target.Y != 0 {
		t.Errorf("target = %+v, want (1, 0, -2)", o.Target)
	}

	o.Reset(r3.Vec{})
	if o.Target != (r3.Vec{}) || o.Yaw != DefaultYaw {
		t.Errorf("reset = %+v", o)
	}
}
