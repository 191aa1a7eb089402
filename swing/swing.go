// Package swing generates swing-foot trajectories: a smooth planar transfer between footholds with
// a vertical lift to an apex above the higher of the two.
package swing

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/locomotion/utils"
)

// StepParameters shape a single step.
type StepParameters struct {
	Duration   float64
	StepHeight float64
}

// Generator produces the position, velocity and acceleration of one foot during a swing. The zero
// value holds the foot at the origin.
type Generator struct {
	startTime float64
	initial   r3.Vector
	target    r3.Vector
	apex      float64
	params    StepParameters
}

// SetParameters configures the swing of a foot from initial to target starting at startTime.
func (g *Generator) SetParameters(startTime float64, initial, target r3.Vector, params StepParameters) error {
	if params.Duration < 0 {
		return errors.Errorf("swing duration cannot be negative, got %v", params.Duration)
	}
	if params.StepHeight < 0 {
		return errors.Errorf("step height cannot be negative, got %v", params.StepHeight)
	}
	g.startTime = startTime
	g.initial = initial
	g.target = target
	g.params = params
	g.apex = math.Max(initial.Z, target.Z) + params.StepHeight
	return nil
}

// Apex returns the height the foot reaches at the middle of the swing.
func (g *Generator) Apex() float64 {
	return g.apex
}

// GenerateTrajectory evaluates the swing at the absolute time t. Times outside the swing interval are
// clamped to it.
func (g *Generator) GenerateTrajectory(t float64) (pos, vel, acc r3.Vector) {
	if g.params.Duration == 0 {
		if t < g.startTime {
			return g.initial, r3.Vector{}, r3.Vector{}
		}
		return g.target, r3.Vector{}, r3.Vector{}
	}
	duration := g.params.Duration
	s := utils.Clamp((t-g.startTime)/duration, 0, 1)

	h, dh, ddh := smoothStep(s, duration)
	delta := g.target.Sub(g.initial)
	pos.X, vel.X, acc.X = g.initial.X+delta.X*h, delta.X*dh, delta.X*ddh
	pos.Y, vel.Y, acc.Y = g.initial.Y+delta.Y*h, delta.Y*dh, delta.Y*ddh

	half := duration / 2
	if s <= 0.5 {
		h, dh, ddh = smoothStep(2*s, half)
		rise := g.apex - g.initial.Z
		pos.Z, vel.Z, acc.Z = g.initial.Z+rise*h, rise*dh, rise*ddh
	} else {
		h, dh, ddh = smoothStep(2*s-1, half)
		fall := g.target.Z - g.apex
		pos.Z, vel.Z, acc.Z = g.apex+fall*h, fall*dh, fall*ddh
	}
	return pos, vel, acc
}

// smoothStep is the cubic 3s^2 - 2s^3 and its time derivatives for a segment of the given duration.
func smoothStep(s, duration float64) (h, dh, ddh float64) {
	h = s * s * (3 - 2*s)
	dh = 6 * s * (1 - s) / duration
	ddh = (6 - 12*s) / (duration * duration)
	return h, dh, ddh
}
