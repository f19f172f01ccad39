package flock

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"
)

// The simulated domain is [DomainMin, DomainMax] on every axis.
const (
	DomainMin = -1.0
	DomainMax = 1.0
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid flock parameters")

// Params controls the steering rules.
// All three limits are squared quantities compared against squared magnitudes.
type Params struct {
	MaxNeighborDistanceSq      float64 `json:"maxNeighborDistanceSq" yaml:"maxNeighborDistanceSq"`
	MaxAccelerationMagnitudeSq float64 `json:"maxAccelerationMagnitudeSq" yaml:"maxAccelerationMagnitudeSq"`
	MaxVelocityMagnitudeSq     float64 `json:"maxVelocityMagnitudeSq" yaml:"maxVelocityMagnitudeSq"`
}

// DefaultParams returns the tuning used for a [-1, 1] domain.
func DefaultParams() Params {
	return Params{
		MaxNeighborDistanceSq:      0.04,
		MaxAccelerationMagnitudeSq: 0.0005,
		MaxVelocityMagnitudeSq:     0.01,
	}
}

// Validate rejects non-positive limits.
func (p Params) Validate() error {
	switch {
	case p.MaxNeighborDistanceSq <= 0:
		return fmt.Errorf("%w: maxNeighborDistanceSq must be positive, got %v", ErrInvalidParams, p.MaxNeighborDistanceSq)
	case p.MaxAccelerationMagnitudeSq <= 0:
		return fmt.Errorf("%w: maxAccelerationMagnitudeSq must be positive, got %v", ErrInvalidParams, p.MaxAccelerationMagnitudeSq)
	case p.MaxVelocityMagnitudeSq <= 0:
		return fmt.Errorf("%w: maxVelocityMagnitudeSq must be positive, got %v", ErrInvalidParams, p.MaxVelocityMagnitudeSq)
	}
	return nil
}

// Flock owns every boid in one contiguous slice, in insertion order.
// Partition buckets refer to boids by their index in this slice.
type Flock struct {
	boids   []Boid
	params  Params
	updater *Updater
}

// New returns an empty flock.
func New(params Params) *Flock {
	return &Flock{params: params, updater: NewUpdater(params)}
}

// Add appends a boid built from copies of location and velocity.
func (f *Flock) Add(location, velocity []float64) error {
	b, err := NewBoid(location, velocity)
	if err != nil {
		return fmt.Errorf("adding boid %d: %w", len(f.boids), err)
	}
	f.boids = append(f.boids, *b)
	return nil
}

// Populate appends n boids of the given dimension with locations and
// velocities drawn uniformly from [-1, 1] on every axis.
func (f *Flock) Populate(n, dim int, rng *rand.Rand) {
	f.boids = append(make([]Boid, 0, len(f.boids)+n), f.boids...)
	for i := 0; i < n; i++ {
		loc := make([]float64, dim)
		vel := make([]float64, dim)
		for j := 0; j < dim; j++ {
			loc[j] = rng.Float64()*2 - 1
			vel[j] = rng.Float64()*2 - 1
		}
		f.boids = append(f.boids, Boid{Location: loc, Velocity: vel, Acceleration: make([]float64, dim)})
	}
}

// Len is the number of boids.
func (f *Flock) Len() int {
	return len(f.boids)
}

// XY returns the first two coordinates of boid i.
func (f *Flock) XY(i int) (float64, float64) {
	p := geometry.FromSlice(f.boids[i].Location)
	return p.X, p.Y
}

// Boid gives direct access to boid i, for readers such as renderers.
func (f *Flock) Boid(i int) *Boid {
	return &f.boids[i]
}

// Positions appends the first two coordinates of every boid to dst.
func (f *Flock) Positions(dst [][2]float64) [][2]float64 {
	for i := range f.boids {
		x, y := f.XY(i)
		dst = append(dst, [2]float64{x, y})
	}
	return dst
}

// Params returns the current steering parameters.
func (f *Flock) Params() Params {
	return f.params
}

// SetParams replaces the steering parameters for the next update.
func (f *Flock) SetParams(p Params) {
	f.params = p
	f.updater.SetParams(p)
}

// Kinematics exposes the mutation surface of the flock to an Updater.
func (f *Flock) Kinematics() Kinematics {
	return boidSlice(f.boids)
}

// Update runs the flocking rules on one bucket of boid indexes.
// It is not safe for concurrent use; parallel callers each own an Updater.
func (f *Flock) Update(members []int) error {
	return f.updater.Update(f.Kinematics(), members)
}

// Mirror wraps every location back into the domain, giving a toroidal world.
func (f *Flock) Mirror() {
	for i := range f.boids {
		geometry.Wrap(f.boids[i].Location, DomainMin, DomainMax)
	}
}

type boidSlice []Boid

func (s boidSlice) Location(i int) []float64     { return s[i].Location }
func (s boidSlice) Velocity(i int) []float64     { return s[i].Velocity }
func (s boidSlice) Acceleration(i int) []float64 { return s[i].Acceleration }
