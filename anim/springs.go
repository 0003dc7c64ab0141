// Package anim provides per-segment scale tweens for the viewer.
package anim

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// spring animates one value toward its target.
type spring struct {
	tween  *gween.Tween
	target float32
	value  float32
	done   bool
}

// Springs animates a scale per key. A key seen for the first time grows in
// from zero; a changed target retweens from the current value.
//
// There is no global animation clock; callers call Update each frame.
type Springs[K comparable] struct {
	duration float32 // seconds
	fn       ease.TweenFunc
	items    map[K]*spring
}

// NewSprings creates springs that settle over durationMs using an elastic
// ease-out.
func NewSprings[K comparable](durationMs int64) *Springs[K] {
	return NewSpringsWithEase[K](durationMs, ease.OutElastic)
}

// NewSpringsWithEase is NewSprings with a custom easing function.
func NewSpringsWithEase[K comparable](durationMs int64, fn ease.TweenFunc) *Springs[K] {
	d := float32(durationMs) / 1000
	if d <= 0 {
		d = 0.001
	}
	return &Springs[K]{
		duration: d,
		fn:       fn,
		items:    make(map[K]*spring),
	}
}

// Target sets the goal for key.
func (s *Springs[K]) Target(key K, target float32) {
	sp, ok := s.items[key]
	if !ok {
		s.items[key] = &spring{
			tween:  gween.New(0, target, s.duration, s.fn),
			target: target,
		}
		return
	}
	if sp.target == target {
		return
	}
	sp.tween = gween.New(sp.value, target, s.duration, s.fn)
	sp.target = target
	sp.done = false
}

// Update advances every spring by dt seconds.
func (s *Springs[K]) Update(dt float32) {
	for _, sp := range s.items {
		if sp.done {
			continue
		}
		sp.value, sp.done = sp.tween.Update(dt)
	}
}

// Value returns the current animated value for key, or 0 if it has no target.
func (s *Springs[K]) Value(key K) float32 {
	if sp, ok := s.items[key]; ok {
		return sp.value
	}
	return 0
}

// Settled reports whether key has reached its target.
func (s *Springs[K]) Settled(key K) bool {
	sp, ok := s.items[key]
	return ok && sp.done
}

// Prune drops springs whose key fails keep. Returns the number dropped.
func (s *Springs[K]) Prune(keep func(K) bool) int {
	n := 0
	for k := range s.items {
		if !keep(k) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (s *Springs[K]) Len() int {
	return len(s.items)
}

// Reset drops every spring.
func (s *Springs[K]) Reset() {
	clear(s.items)
}
