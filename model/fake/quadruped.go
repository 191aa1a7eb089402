// Package fake implements a code-defined quadruped satisfying the floating-base model contract,
// for use in tests and demos.
package fake

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/locomotion/kinematics"
	"go.viam.com/locomotion/model"
	"go.viam.com/locomotion/spatialmath"
)

// Foot names of the quadruped, in end-effector order.
const (
	LeftFront  = "lf_foot"
	RightFront = "rf_foot"
	LeftHind   = "lh_foot"
	RightHind  = "rh_foot"
)

const (
	gravity   = 9.81
	trunkMass = 70.
	legMass   = 3.5
	linkLen   = 0.35
	hipX      = 0.37
	hipY      = 0.21
)

// TrunkCoM is the base frame position of the center of mass of the trunk.
var TrunkCoM = r3.Vector{X: 0.02, Y: 0, Z: 0.01}

// Quadruped is a HyQ-like quadruped: a trunk with four three joint legs whose masses are lumped
// at the middle of the hip to foot segment.
type Quadruped struct {
	kin          *kinematics.Legged
	dyn          *model.ContactDynamics
	feet         []string
	defaultQ     []float64
	legMassTotal float64
}

var _ model.FloatingBase = (*Quadruped)(nil)

// NewQuadruped returns the quadruped model.
func NewQuadruped(logger golog.Logger) (*Quadruped, error) {
	legs := []kinematics.Leg{
		{Name: LeftFront, Hip: r3.Vector{X: hipX, Y: hipY}, KneeSign: -1},
		{Name: RightFront, Hip: r3.Vector{X: hipX, Y: -hipY}, KneeSign: -1},
		{Name: LeftHind, Hip: r3.Vector{X: -hipX, Y: hipY}, KneeSign: 1},
		{Name: RightHind, Hip: r3.Vector{X: -hipX, Y: -hipY}, KneeSign: 1},
	}
	for i := range legs {
		legs[i].Upper = linkLen
		legs[i].Lower = linkLen
		legs[i].FirstJoint = i * kinematics.LegDoF
	}
	kin, err := kinematics.NewLegged(legs, len(legs)*kinematics.LegDoF, logger)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build quadruped kinematics")
	}
	return &Quadruped{
		kin:  kin,
		dyn:  &model.ContactDynamics{},
		feet: []string{LeftFront, RightFront, LeftHind, RightHind},
		defaultQ: []float64{
			0, 0.75, -1.5,
			0, 0.75, -1.5,
			0, -0.75, 1.5,
			0, -0.75, 1.5,
		},
		legMassTotal: legMass * float64(len(legs)),
	}, nil
}

// Kinematics returns the leg kinematics of the quadruped.
func (qp *Quadruped) Kinematics() *kinematics.Legged {
	return qp.kin
}

// Dynamics returns the contact dynamics of the quadruped.
func (qp *Quadruped) Dynamics() *model.ContactDynamics {
	return qp.dyn
}

// TotalMass returns the mass of the trunk and legs.
func (qp *Quadruped) TotalMass() float64 {
	return trunkMass + qp.legMassTotal
}

// Gravity returns the gravity acceleration.
func (qp *Quadruped) Gravity() r3.Vector {
	return r3.Vector{Z: -gravity}
}

// DefaultPosture returns the nominal crouched posture.
func (qp *Quadruped) DefaultPosture() []float64 {
	return append([]float64(nil), qp.defaultQ...)
}

// JointDoF returns the number of joints.
func (qp *Quadruped) JointDoF() int {
	return len(qp.defaultQ)
}

// EndEffectorCount returns the number of end effectors of a kind. The only end effectors are feet.
func (qp *Quadruped) EndEffectorCount(kind model.EndEffectorKind) int {
	return len(qp.EndEffectorNames(kind))
}

// EndEffectorNames returns the end-effector names of a kind.
func (qp *Quadruped) EndEffectorNames(kind model.EndEffectorKind) []string {
	switch kind {
	case model.AllEndEffectors, model.FootEndEffectors:
		return append([]string(nil), qp.feet...)
	default:
		return nil
	}
}

// base frame center of mass
func (qp *Quadruped) localCoM(q []float64) (r3.Vector, error) {
	feet, err := qp.kin.ForwardKinematics(q, qp.feet)
	if err != nil {
		return r3.Vector{}, err
	}
	sum := TrunkCoM.Mul(trunkMass)
	for _, leg := range qp.kin.Legs() {
		mid := leg.Hip.Add(feet[leg.Name]).Mul(0.5)
		sum = sum.Add(mid.Mul(legMass))
	}
	return sum.Mul(1 / qp.TotalMass()), nil
}

// SystemCoM returns the world center of mass.
func (qp *Quadruped) SystemCoM(base model.BaseState, q []float64) (r3.Vector, error) {
	com, err := qp.localCoM(q)
	if err != nil {
		return r3.Vector{}, err
	}
	return base.Linear.Add(spatialmath.FromBaseToWorldFrame(com, base.Angular)), nil
}

// SystemCoMRate returns the world velocity of the center of mass.
func (qp *Quadruped) SystemCoMRate(base model.BaseState, q []float64, baseVel model.BaseState, qd []float64) (r3.Vector, error) {
	com, err := qp.localCoM(q)
	if err != nil {
		return r3.Vector{}, err
	}
	if len(qd) != len(q) {
		return r3.Vector{}, errors.Errorf("joint velocity has %d elements, expected %d", len(qd), len(q))
	}

	var localRate r3.Vector
	for _, leg := range qp.kin.Legs() {
		j, err := qp.kin.Jacobian(q, leg.Name)
		if err != nil {
			return r3.Vector{}, err
		}
		var footVel mat.VecDense
		footVel.MulVec(j, mat.NewVecDense(kinematics.LegDoF, append([]float64(nil), qd[leg.FirstJoint:leg.FirstJoint+kinematics.LegDoF]...)))
		v := r3.Vector{X: footVel.AtVec(0), Y: footVel.AtVec(1), Z: footVel.AtVec(2)}
		localRate = localRate.Add(v.Mul(0.5 * legMass))
	}
	localRate = localRate.Mul(1 / qp.TotalMass())

	omega := spatialmath.AngularVelocityFromRPYRate(base.Angular, baseVel.Angular)
	lever := spatialmath.FromBaseToWorldFrame(com, base.Angular)
	return baseVel.Linear.
		Add(omega.Cross(lever)).
		Add(spatialmath.FromBaseToWorldFrame(localRate, base.Angular)), nil
}
