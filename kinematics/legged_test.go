package kinematics

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/locomotion/spatialmath"
)

func testLegs(t *testing.T) *Legged {
	t.Helper()
	legs := []Leg{
		{Name: "left", Hip: r3.Vector{X: 0.3, Y: 0.2}, Upper: 0.35, Lower: 0.35, KneeSign: -1, FirstJoint: 0},
		{Name: "right", Hip: r3.Vector{X: -0.3, Y: -0.2}, Upper: 0.3, Lower: 0.4, KneeSign: 1, FirstJoint: 3},
	}
	lk, err := NewLegged(legs, 6, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return lk
}

func TestNewLegged(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := NewLegged([]Leg{{Name: "a", Upper: 0, Lower: 1, KneeSign: 1}}, 3, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewLegged([]Leg{{Name: "a", Upper: 1, Lower: 1, KneeSign: 0}}, 3, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewLegged([]Leg{{Name: "a", Upper: 1, Lower: 1, KneeSign: 1, FirstJoint: 1}}, 3, logger)
	test.That(t, err, test.ShouldNotBeNil)

	lk := testLegs(t)
	test.That(t, lk.Branches().Names(), test.ShouldResemble, []string{"left", "right"})
	test.That(t, lk.Legs(), test.ShouldHaveLength, 2)
}

func TestForwardKinematics(t *testing.T) {
	lk := testLegs(t)

	t.Run("straight legs", func(t *testing.T) {
		pos, err := lk.ForwardKinematics(make([]float64, 6), nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, spatialmath.R3VectorAlmostEqual(pos["left"], r3.Vector{X: 0.3, Y: 0.2, Z: -0.7}, 1e-12), test.ShouldBeTrue)
		test.That(t, spatialmath.R3VectorAlmostEqual(pos["right"], r3.Vector{X: -0.3, Y: -0.2, Z: -0.7}, 1e-12), test.ShouldBeTrue)
	})

	t.Run("symmetric crouch keeps the foot under the hip", func(t *testing.T) {
		pos, err := lk.ForwardKinematics([]float64{0, 0.75, -1.5, 0, 0, 0}, []string{"left"})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos, test.ShouldHaveLength, 1)
		test.That(t, pos["left"].X, test.ShouldAlmostEqual, 0.3)
		test.That(t, pos["left"].Y, test.ShouldAlmostEqual, 0.2)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := lk.ForwardKinematics(make([]float64, 5), nil)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = lk.ForwardKinematics(make([]float64, 6), []string{"tail"})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestInverseKinematics(t *testing.T) {
	lk := testLegs(t)
	q := []float64{0.1, 0.6, -1.2, -0.15, -0.5, 1.1}
	pos, err := lk.ForwardKinematics(q, nil)
	test.That(t, err, test.ShouldBeNil)

	solved, err := lk.InverseKinematics(pos, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, floats.EqualApprox(solved, q, 1e-9), test.ShouldBeTrue)

	t.Run("untouched legs keep the initial joints", func(t *testing.T) {
		solved, err := lk.InverseKinematics(map[string]r3.Vector{"left": pos["left"]}, []float64{0, 0, 0, 1, 2, 3})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, solved[3:], test.ShouldResemble, []float64{1, 2, 3})
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := lk.InverseKinematics(map[string]r3.Vector{"left": {X: 0.3, Y: 0.2, Z: -2}}, nil)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "out of reach")
	})

	t.Run("bad inputs", func(t *testing.T) {
		_, err := lk.InverseKinematics(map[string]r3.Vector{"tail": {}}, nil)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = lk.InverseKinematics(pos, []float64{1})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestJointVelocity(t *testing.T) {
	lk := testLegs(t)
	q := []float64{0.1, 0.6, -1.2, -0.15, -0.5, 1.1}
	qd := []float64{0.3, -0.2, 0.5, 0.1, 0.4, -0.6}

	// finite difference foot velocities
	h := 1e-6
	qp := make([]float64, 6)
	qm := make([]float64, 6)
	for i := range q {
		qp[i] = q[i] + h*qd[i]
		qm[i] = q[i] - h*qd[i]
	}
	pp, err := lk.ForwardKinematics(qp, nil)
	test.That(t, err, test.ShouldBeNil)
	pm, err := lk.ForwardKinematics(qm, nil)
	test.That(t, err, test.ShouldBeNil)
	vel := map[string]r3.Vector{}
	for name := range pp {
		vel[name] = pp[name].Sub(pm[name]).Mul(1 / (2 * h))
	}

	solved, err := lk.JointVelocity(q, vel)
	test.That(t, err, test.ShouldBeNil)
	for i := range qd {
		test.That(t, solved[i], test.ShouldAlmostEqual, qd[i], 1e-6)
	}

	t.Run("singular", func(t *testing.T) {
		_, err := lk.JointVelocity(make([]float64, 6), map[string]r3.Vector{"left": {X: 1}})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestJointAcceleration(t *testing.T) {
	lk := testLegs(t)
	q := []float64{0.1, 0.6, -1.2, -0.15, -0.5, 1.1}
	qd := []float64{0.3, -0.2, 0.5, 0.1, 0.4, -0.6}
	qdd := []float64{1, -0.5, 2, 0.2, -1, 0.7}

	at := func(dt float64) map[string]r3.Vector {
		qt := make([]float64, 6)
		for i := range q {
			qt[i] = q[i] + qd[i]*dt + 0.5*qdd[i]*dt*dt
		}
		pos, err := lk.ForwardKinematics(qt, nil)
		test.That(t, err, test.ShouldBeNil)
		return pos
	}
	h := 1e-4
	before, now, after := at(-h), at(0), at(h)
	acc := map[string]r3.Vector{}
	for name := range now {
		acc[name] = after[name].Add(before[name]).Sub(now[name].Mul(2)).Mul(1 / (h * h))
	}

	solved, err := lk.JointAcceleration(q, qd, acc)
	test.That(t, err, test.ShouldBeNil)
	for i := range qdd {
		test.That(t, solved[i], test.ShouldAlmostEqual, qdd[i], 1e-3)
	}

	_, err = lk.JointAcceleration(q, qd[:2], acc)
	test.That(t, err, test.ShouldNotBeNil)
}
