package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// AngularVelocityFromRPYRate converts roll-pitch-yaw rates into the world frame angular velocity of a
// body with orientation rpy.
func AngularVelocityFromRPYRate(rpy, rpyRate r3.Vector) r3.Vector {
	sp, cp := math.Sincos(rpy.Y)
	sy, cy := math.Sincos(rpy.Z)
	return r3.Vector{
		X: rpyRate.X*cy*cp - rpyRate.Y*sy,
		Y: rpyRate.X*sy*cp + rpyRate.Y*cy,
		Z: rpyRate.Z - rpyRate.X*sp,
	}
}
