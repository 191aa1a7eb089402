// Package spatialmath defines spatial mathematical operations for locomotion: roll-pitch-yaw
// orientations, rotations between the base and world frames, and spatial force types.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/locomotion/utils"
)

// EulerAngles are three angles used to represent the rotation of an object in 3D Euclidean space.
// They follow the roll-pitch-yaw convention: the rotation from the base frame to the world frame is
// Rz(yaw) * Ry(pitch) * Rx(roll).
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{Roll: 0, Pitch: 0, Yaw: 0}
}

// NewEulerAnglesFromRPY reads roll, pitch and yaw from the X, Y and Z components of a vector.
// This is how reduced and whole-body states store orientations.
func NewEulerAnglesFromRPY(rpy r3.Vector) *EulerAngles {
	return &EulerAngles{Roll: rpy.X, Pitch: rpy.Y, Yaw: rpy.Z}
}

// RPY returns the angles packed as a vector of roll, pitch and yaw.
func (ea *EulerAngles) RPY() r3.Vector {
	return r3.Vector{X: ea.Roll, Y: ea.Pitch, Z: ea.Yaw}
}

// Quaternion returns the orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	cr, sr := math.Cos(ea.Roll/2), math.Sin(ea.Roll/2)
	cp, sp := math.Cos(ea.Pitch/2), math.Sin(ea.Pitch/2)
	cy, sy := math.Cos(ea.Yaw/2), math.Sin(ea.Yaw/2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(ea.Quaternion())
}

// QuatToEulerAngles converts a unit quaternion to roll-pitch-yaw Euler angles.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return &EulerAngles{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(utils.Clamp(2*(w*y-z*x), -1, 1)),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q, and
// this function will *not* account for this. Use OrientationAlmostEqual unless you're certain this is what you want.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol) &&
		utils.Float64AlmostEqual(a.Real, b.Real, tol)
}

// OrientationAlmostEqual will return a bool describing whether two orientations are approximately the same,
// accounting for the double coverage of quaternions.
func OrientationAlmostEqual(o1, o2 *EulerAngles) bool {
	q1, q2 := o1.Quaternion(), o2.Quaternion()
	return QuaternionAlmostEqual(q1, q2, 1e-5) || QuaternionAlmostEqual(q1, quat.Scale(-1, q2), 1e-5)
}
