// Package model defines the robot model contracts the preview engine relies on, together with
// kinematic branch bookkeeping and a contact-wrench based dynamics implementation.
package model

import (
	"github.com/golang/geo/r3"

	"go.viam.com/locomotion/spatialmath"
)

// EndEffectorKind distinguishes the end effectors of a floating-base system.
type EndEffectorKind int

// Known end-effector kinds.
const (
	AllEndEffectors EndEffectorKind = iota
	FootEndEffectors
)

// BaseState is the pose, or one of its time derivatives, of a floating base. Angular holds roll,
// pitch and yaw (or their rates) in X, Y and Z.
type BaseState struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// FloatingBase describes the inertial and topological properties of a floating-base system.
type FloatingBase interface {
	TotalMass() float64
	// Gravity returns the gravity acceleration vector in the world frame.
	Gravity() r3.Vector
	// SystemCoM returns the world position of the center of mass for the given base pose and joint positions.
	SystemCoM(base BaseState, q []float64) (r3.Vector, error)
	// SystemCoMRate returns the world velocity of the center of mass.
	SystemCoMRate(base BaseState, q []float64, baseVel BaseState, qd []float64) (r3.Vector, error)
	DefaultPosture() []float64
	JointDoF() int
	EndEffectorCount(kind EndEffectorKind) int
	EndEffectorNames(kind EndEffectorKind) []string
}

// Kinematics maps between joint space and the positions of the end effectors. Contact quantities
// are expressed in the base frame and keyed by end-effector name.
type Kinematics interface {
	// ForwardKinematics returns the base frame position of the named end effectors.
	ForwardKinematics(q []float64, names []string) (map[string]r3.Vector, error)
	// InverseKinematics returns joint positions placing the end effectors at the given positions.
	// Joints of branches without a target keep the value of qInit.
	InverseKinematics(contactPos map[string]r3.Vector, qInit []float64) ([]float64, error)
	// JointVelocity returns the joint velocities producing the given end-effector velocities at q.
	JointVelocity(q []float64, contactVel map[string]r3.Vector) ([]float64, error)
	// JointAcceleration returns the joint accelerations producing the given end-effector
	// accelerations at (q, qd).
	JointAcceleration(q, qd []float64, contactAcc map[string]r3.Vector) ([]float64, error)
}

// Dynamics computes contact related quantities of a floating-base system.
type Dynamics interface {
	// CenterOfPressure returns the base frame center of pressure of the contact wrenches.
	CenterOfPressure(contactEff map[string]spatialmath.Wrench, contactPos map[string]r3.Vector) r3.Vector
	// ActiveContacts returns the names, in ascending order, of the contacts whose force exceeds threshold.
	ActiveContacts(contactEff map[string]spatialmath.Wrench, threshold float64) []string
}
