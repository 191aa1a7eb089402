// Package kinematics implements analytic kinematics for legged robots whose legs are three joint
// chains: hip abduction/adduction about X followed by hip and knee flexion/extension about Y.
package kinematics

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/locomotion/model"
)

// LegDoF is the number of joints of a leg.
const LegDoF = 3

// Leg is a three joint leg attached to the base at Hip.
type Leg struct {
	Name string
	// Hip is the base frame position of the hip joints.
	Hip   r3.Vector
	Upper float64
	Lower float64
	// KneeSign is the sign, +1 or -1, of the knee angle chosen by inverse kinematics.
	KneeSign float64
	// FirstJoint is the index of the hip abduction/adduction joint in the joint vector.
	FirstJoint int
}

func (l *Leg) validate() error {
	if l.Upper <= 0 || l.Lower <= 0 {
		return errors.Errorf("leg %q: link lengths must be positive", l.Name)
	}
	if l.KneeSign != 1 && l.KneeSign != -1 {
		return errors.Errorf("leg %q: knee sign must be 1 or -1, got %v", l.Name, l.KneeSign)
	}
	return nil
}

// position of the foot in the base frame
func (l *Leg) forward(q []float64) r3.Vector {
	s0, c0 := math.Sincos(q[0])
	a, c := l.sagittal(q[1], q[2])
	return l.Hip.Add(r3.Vector{X: a, Y: -s0 * c, Z: c0 * c})
}

// foot position in the leg plane before the abduction rotation
func (l *Leg) sagittal(q1, q2 float64) (float64, float64) {
	s1, c1 := math.Sincos(q1)
	s12, c12 := math.Sincos(q1 + q2)
	return -l.Upper*s1 - l.Lower*s12, -l.Upper*c1 - l.Lower*c12
}

func (l *Leg) inverse(target r3.Vector) ([]float64, error) {
	d := target.Sub(l.Hip)
	reach := math.Hypot(d.Y, d.Z)
	q0 := math.Atan2(d.Y, -d.Z)

	x, y := -d.X, reach
	cosKnee := (x*x + y*y - l.Upper*l.Upper - l.Lower*l.Lower) / (2 * l.Upper * l.Lower)
	if math.Abs(cosKnee) > 1+1e-9 {
		return nil, errors.Errorf("leg %q: target %v is out of reach", l.Name, target)
	}
	cosKnee = math.Max(-1, math.Min(1, cosKnee))
	q2 := l.KneeSign * math.Acos(cosKnee)
	q1 := math.Atan2(x, y) - math.Atan2(l.Lower*math.Sin(q2), l.Upper+l.Lower*math.Cos(q2))
	return []float64{q0, q1, q2}, nil
}

func (l *Leg) jacobian(q []float64) *mat.Dense {
	s0, c0 := math.Sincos(q[0])
	a, c := l.sagittal(q[1], q[2])
	s12, c12 := math.Sincos(q[1] + q[2])
	return mat.NewDense(3, 3, []float64{
		0, c, -l.Lower * c12,
		-c0 * c, s0 * a, -s0 * l.Lower * s12,
		-s0 * c, -c0 * a, c0 * l.Lower * s12,
	})
}

// jacobianRate returns dJ/dt * qd, the velocity product term of the foot acceleration.
func (l *Leg) jacobianRate(q, qd []float64) *mat.VecDense {
	qdv := mat.NewVecDense(LegDoF, append([]float64(nil), qd...))
	dst := mat.NewDense(3, LegDoF, nil)
	fd.Jacobian(dst, func(y, x []float64) {
		var jqd mat.VecDense
		jqd.MulVec(l.jacobian(x), qdv)
		copy(y, jqd.RawVector().Data)
	}, q, &fd.JacobianSettings{Formula: fd.Central})

	var out mat.VecDense
	out.MulVec(dst, qdv)
	return &out
}

// Legged is the kinematics of a robot made of independent three joint legs, each one a kinematic
// branch named after its foot.
type Legged struct {
	legs     []Leg
	byName   map[string]int
	branches *model.Branches
	logger   golog.Logger
}

var _ model.Kinematics = (*Legged)(nil)

// NewLegged returns the kinematics of a robot with jointDoF joints and the given legs.
func NewLegged(legs []Leg, jointDoF int, logger golog.Logger) (*Legged, error) {
	lk := &Legged{
		legs:     append([]Leg(nil), legs...),
		byName:   make(map[string]int, len(legs)),
		branches: model.NewBranches(jointDoF, logger),
		logger:   logger,
	}
	for i := range lk.legs {
		leg := &lk.legs[i]
		if err := leg.validate(); err != nil {
			return nil, err
		}
		if err := lk.branches.AddBranch(model.Branch{Name: leg.Name, First: leg.FirstJoint, DoF: LegDoF}); err != nil {
			return nil, err
		}
		lk.byName[leg.Name] = i
	}
	return lk, nil
}

// Branches returns the joint bookkeeping of the legs.
func (lk *Legged) Branches() *model.Branches {
	return lk.branches
}

// Legs returns the leg descriptions.
func (lk *Legged) Legs() []Leg {
	return append([]Leg(nil), lk.legs...)
}

func (lk *Legged) leg(name string) (*Leg, error) {
	i, ok := lk.byName[name]
	if !ok {
		return nil, errors.Errorf("unknown end effector %q", name)
	}
	return &lk.legs[i], nil
}

func (lk *Legged) checkJoints(q []float64) error {
	if len(q) != lk.branches.JointDoF() {
		return errors.Errorf("joint state has %d elements, expected %d", len(q), lk.branches.JointDoF())
	}
	return nil
}

// ForwardKinematics returns the base frame foot positions of the named legs, or of every leg if no
// name is given.
func (lk *Legged) ForwardKinematics(q []float64, names []string) (map[string]r3.Vector, error) {
	if err := lk.checkJoints(q); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = lk.branches.Names()
	}
	out := make(map[string]r3.Vector, len(names))
	for _, name := range names {
		leg, err := lk.leg(name)
		if err != nil {
			return nil, err
		}
		legQ, err := lk.branches.BranchState(q, name)
		if err != nil {
			return nil, err
		}
		out[name] = leg.forward(legQ)
	}
	return out, nil
}

// Jacobian returns the base frame foot Jacobian of a leg with respect to its three joints.
func (lk *Legged) Jacobian(q []float64, name string) (*mat.Dense, error) {
	if err := lk.checkJoints(q); err != nil {
		return nil, err
	}
	leg, err := lk.leg(name)
	if err != nil {
		return nil, err
	}
	legQ, err := lk.branches.BranchState(q, name)
	if err != nil {
		return nil, err
	}
	return leg.jacobian(legQ), nil
}

// InverseKinematics solves every leg with a target in closed form.
func (lk *Legged) InverseKinematics(contactPos map[string]r3.Vector, qInit []float64) ([]float64, error) {
	q := make([]float64, lk.branches.JointDoF())
	if qInit != nil {
		if err := lk.checkJoints(qInit); err != nil {
			return nil, err
		}
		copy(q, qInit)
	}
	for name, target := range contactPos {
		leg, err := lk.leg(name)
		if err != nil {
			return nil, err
		}
		legQ, err := leg.inverse(target)
		if err != nil {
			return nil, err
		}
		if err := lk.branches.SetBranchState(q, legQ, name); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// JointVelocity solves J(q) qd = v for every leg with a target velocity.
func (lk *Legged) JointVelocity(q []float64, contactVel map[string]r3.Vector) ([]float64, error) {
	if err := lk.checkJoints(q); err != nil {
		return nil, err
	}
	qd := make([]float64, len(q))
	for name, vel := range contactVel {
		leg, err := lk.leg(name)
		if err != nil {
			return nil, err
		}
		legQ, err := lk.branches.BranchState(q, name)
		if err != nil {
			return nil, err
		}
		legQd, err := solve(leg.jacobian(legQ), mat.NewVecDense(3, []float64{vel.X, vel.Y, vel.Z}))
		if err != nil {
			return nil, errors.Wrapf(err, "leg %q", name)
		}
		if err := lk.branches.SetBranchState(qd, legQd, name); err != nil {
			return nil, err
		}
	}
	return qd, nil
}

// JointAcceleration solves J(q) qdd = a - dJ/dt qd for every leg with a target acceleration.
func (lk *Legged) JointAcceleration(q, qd []float64, contactAcc map[string]r3.Vector) ([]float64, error) {
	if err := lk.checkJoints(q); err != nil {
		return nil, err
	}
	if err := lk.checkJoints(qd); err != nil {
		return nil, err
	}
	qdd := make([]float64, len(q))
	for name, acc := range contactAcc {
		leg, err := lk.leg(name)
		if err != nil {
			return nil, err
		}
		legQ, err := lk.branches.BranchState(q, name)
		if err != nil {
			return nil, err
		}
		legQd, err := lk.branches.BranchState(qd, name)
		if err != nil {
			return nil, err
		}
		rhs := mat.NewVecDense(3, []float64{acc.X, acc.Y, acc.Z})
		rhs.SubVec(rhs, leg.jacobianRate(legQ, legQd))
		legQdd, err := solve(leg.jacobian(legQ), rhs)
		if err != nil {
			return nil, errors.Wrapf(err, "leg %q", name)
		}
		if err := lk.branches.SetBranchState(qdd, legQdd, name); err != nil {
			return nil, err
		}
	}
	return qdd, nil
}

func solve(j *mat.Dense, b *mat.VecDense) ([]float64, error) {
	var x mat.VecDense
	if err := x.SolveVec(j, b); err != nil {
		return nil, errors.Wrap(err, "singular leg configuration")
	}
	return x.RawVector().Data, nil
}
