package flock

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/lao-tseu-is-alive/go-quadtree-boids/pkg/geometry"
)

// Kinematics is the minimal surface the update needs: read and write access
// to the location, velocity and acceleration of a boid by index.
type Kinematics interface {
	Location(i int) []float64
	Velocity(i int) []float64
	Acceleration(i int) []float64
}

// Updater applies the flocking rules to one bucket at a time and keeps its
// scratch vectors between calls. One Updater must not be shared between goroutines.
type Updater struct {
	params Params
	avgLoc []float64
	avgVel []float64
	steer  []float64
}

// NewUpdater returns an Updater for the given parameters.
func NewUpdater(p Params) *Updater {
	return &Updater{params: p}
}

// SetParams replaces the parameters used by the next Update.
func (u *Updater) SetParams(p Params) {
	u.params = p
}

// Update is a one-shot Updater.Update.
func Update(k Kinematics, members []int, p Params) error {
	return NewUpdater(p).Update(k, members)
}

// Update moves every member by its capped velocity, then, for buckets of at
// least two boids, accumulates separation, alignment and cohesion from the
// in-range members and drains the capped acceleration into the velocity.
//
// A dimension mismatch between two members aborts the update; members already
// processed keep their changes.
func (u *Updater) Update(k Kinematics, members []int) error {
	p := u.params

	for _, i := range members {
		vel := k.Velocity(i)
		geometry.CapMagnitude(vel, p.MaxVelocityMagnitudeSq, p.MaxVelocityMagnitudeSq/8)
		loc := k.Location(i)
		for j := range loc {
			loc[j] += vel[j]
		}
	}

	if len(members) < 2 {
		return nil
	}

	for _, a := range members {
		aLoc, aVel, aAcc := k.Location(a), k.Velocity(a), k.Acceleration(a)
		u.reset(len(aLoc))
		neighbors := 0

		for _, b := range members {
			if a == b {
				continue
			}
			bLoc := k.Location(b)
			d, err := geometry.SquaredDistance(aLoc, bLoc)
			if err != nil {
				return fmt.Errorf("boids %d and %d: %w", a, b, err)
			}
			if d > p.MaxNeighborDistanceSq {
				continue
			}
			neighbors++
			separate(aAcc, aLoc, bLoc, d)
			floats.Add(u.avgLoc, bLoc)
			floats.Add(u.avgVel, k.Velocity(b))
		}
		if neighbors == 0 {
			continue
		}

		n := float64(neighbors)
		for j := range u.avgLoc {
			u.avgLoc[j] /= n
			u.avgVel[j] /= n
		}
		u.align(aAcc, aVel)
		u.cohere(aAcc, aLoc, aVel)
	}

	for _, i := range members {
		acc := k.Acceleration(i)
		geometry.CapMagnitude(acc, p.MaxAccelerationMagnitudeSq, p.MaxAccelerationMagnitudeSq)
		drain(k.Velocity(i), acc)
	}
	return nil
}

func (u *Updater) reset(dim int) {
	if cap(u.avgLoc) < dim {
		u.avgLoc = make([]float64, dim)
		u.avgVel = make([]float64, dim)
		u.steer = make([]float64, dim)
	}
	u.avgLoc = u.avgLoc[:dim]
	u.avgVel = u.avgVel[:dim]
	u.steer = u.steer[:dim]
	clear(u.avgLoc)
	clear(u.avgVel)
}

// separate pushes a away from b by (a - b) / d², d being their squared distance.
// Coincident boids exert no force on each other.
//
// TODO: the divisor squares an already squared distance (inverse fourth power
// falloff); try d instead once the default tuning is re-balanced for it.
func separate(acc, a, b []float64, d float64) {
	if d == 0 {
		return
	}
	d2 := d * d
	for j := range acc {
		acc[j] += (a[j] - b[j]) / d2
	}
}

// align steers toward the average neighbor velocity.
func (u *Updater) align(acc, vel []float64) {
	floats.SubTo(u.steer, u.avgVel, vel)
	u.applySteer(acc)
}

// cohere steers toward the neighborhood center, anticipating one step of motion.
func (u *Updater) cohere(acc, loc, vel []float64) {
	floats.SubTo(u.steer, u.avgLoc, loc)
	floats.Sub(u.steer, vel)
	u.applySteer(acc)
}

func (u *Updater) applySteer(acc []float64) {
	m := u.params.MaxAccelerationMagnitudeSq
	geometry.CapMagnitude(u.steer, m, m)
	floats.Add(acc, u.steer)
}
