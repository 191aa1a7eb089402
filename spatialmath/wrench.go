package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Wrench is a spatial force: a moment and a linear force applied at a point.
type Wrench struct {
	Torque r3.Vector `json:"torque"`
	Force  r3.Vector `json:"force"`
}

// NewWrenchFromForce returns a pure linear force.
func NewWrenchFromForce(f r3.Vector) Wrench {
	return Wrench{Force: f}
}

// Magnitude returns the norm of the six dimensional wrench.
func (w Wrench) Magnitude() float64 {
	return math.Sqrt(w.Torque.Norm2() + w.Force.Norm2())
}
