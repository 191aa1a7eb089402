package spatialmath

import (
	"github.com/golang/geo/r3"
)

// FromBaseToWorldFrame expresses a vector given in the base frame in the world frame, where the base
// orientation is given as roll, pitch and yaw.
func FromBaseToWorldFrame(v, rpy r3.Vector) r3.Vector {
	return NewEulerAnglesFromRPY(rpy).RotationMatrix().Mul(v)
}

// FromWorldToBaseFrame expresses a world frame vector in the base frame.
func FromWorldToBaseFrame(v, rpy r3.Vector) r3.Vector {
	return NewEulerAnglesFromRPY(rpy).RotationMatrix().TransposeMul(v)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return a.Sub(b).Abs().X <= epsilon && a.Sub(b).Abs().Y <= epsilon && a.Sub(b).Abs().Z <= epsilon
}
