// Package flock holds the boids, their tuning parameters and the per-bucket
// flocking update: separation, alignment and cohesion computed only against
// the other members of the same bucket.
//
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. https://en.wikipedia.org/wiki/Boids
package flock

import "github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"

// Boid is one agent. All three vectors share the same dimensionality.
type Boid struct {
	Location     []float64
	Velocity     []float64
	Acceleration []float64
}

// NewBoid copies location and velocity into a new boid with zero acceleration.
func NewBoid(location, velocity []float64) (*Boid, error) {
	if len(location) != len(velocity) {
		return nil, geometry.NewDimensionMismatch(len(location), len(velocity))
	}
	b := &Boid{
		Location:     make([]float64, len(location)),
		Velocity:     make([]float64, len(velocity)),
		Acceleration: make([]float64, len(location)),
	}
	copy(b.Location, location)
	copy(b.Velocity, velocity)
	return b, nil
}

// NewBoidAt returns a boid at rest at location.
func NewBoidAt(location []float64) *Boid {
	b, _ := NewBoid(location, make([]float64, len(location)))
	return b
}

// Dim is the dimensionality of the boid.
func (b *Boid) Dim() int {
	return len(b.Location)
}

// EmptyAcceleration drains the acceleration into the velocity.
func (b *Boid) EmptyAcceleration() {
	drain(b.Velocity, b.Acceleration)
}

func drain(vel, acc []float64) {
	for i := range vel {
		vel[i] += acc[i]
		acc[i] = 0
	}
}
