package preview_test

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/model/fake"
	"go.viam.com/locomotion/spatialmath"
)

func TestWholeBodyRoundTrip(t *testing.T) {
	engine, qp := newQuadrupedTestEngine(t, 0.01)
	reduced, err := engine.NominalState(r3.Vector{X: 0.1, Y: 0.2, Z: 0.55})
	test.That(t, err, test.ShouldBeNil)
	reduced.Time = 1.5

	full, err := engine.ToWholeBodyState(reduced)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, full.Time, test.ShouldEqual, 1.5)
	vectorsClose(t, full.BasePos, reduced.CoMPos.Sub(engine.CoMOffset()), 1e-12)
	test.That(t, full.Contacts, test.ShouldResemble, []bool{true, true, true, true})
	for i, q := range qp.DefaultPosture() {
		test.That(t, full.JointPos[i], test.ShouldAlmostEqual, q, 1e-9)
		test.That(t, full.JointVel[i], test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, full.JointAcc[i], test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, full.JointEff[i], test.ShouldEqual, 0)
	}

	weight := engine.TotalMass() * engine.Gravity() / 4
	for i := range full.ContactEff {
		full.ContactEff[i] = spatialmath.NewWrenchFromForce(r3.Vector{Z: weight})
	}
	back, err := engine.FromWholeBodyState(full)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Time, test.ShouldEqual, 1.5)
	vectorsClose(t, back.CoMPos, reduced.CoMPos, 1e-9)
	vectorsClose(t, back.CoMVel, r3.Vector{}, 1e-9)
	test.That(t, back.SupportRegion.IDs(), test.ShouldResemble, engine.Feet().IDs())

	var cop r3.Vector
	for _, id := range engine.Feet().IDs() {
		vectorsClose(t, back.FootPos[id], reduced.FootPos[id], 1e-9)
		vectorsClose(t, back.SupportRegion[id], reduced.FootPosWorld(id), 1e-9)
		cop = cop.Add(reduced.FootPosWorld(id).Mul(0.25))
	}
	vectorsClose(t, back.CoP, cop, 1e-9)
}

func TestFromWholeBodyForceThreshold(t *testing.T) {
	engine, _ := newQuadrupedTestEngine(t, 0.01)
	test.That(t, engine.SetForceThreshold(100), test.ShouldBeNil)
	lf := footID(t, engine, fake.LeftFront)

	reduced, err := engine.NominalState(r3.Vector{Z: 0.55})
	test.That(t, err, test.ShouldBeNil)
	full, err := engine.ToWholeBodyState(reduced)
	test.That(t, err, test.ShouldBeNil)
	for _, id := range engine.Feet().IDs() {
		force := 300.
		if id == lf {
			force = 50
		}
		full.ContactEff[id] = spatialmath.NewWrenchFromForce(r3.Vector{Z: force})
	}

	back, err := engine.FromWholeBodyState(full)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.SupportRegion, test.ShouldHaveLength, 3)
	test.That(t, back.IsSupportFoot(lf), test.ShouldBeFalse)

	full.JointPos = full.JointPos[:5]
	_, err = engine.FromWholeBodyState(full)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must have 12 joints")
}

func TestToWholeBodyTrajectory(t *testing.T) {
	engine, _ := newQuadrupedTestEngine(t, 0.02)
	lf := footID(t, engine, fake.LeftFront)
	initial := nominalState(t, engine, r3.Vector{X: 0.1})

	step := stance(0.3, r2.Point{X: 0.03})
	step.Phase.AddSwingFoot(lf, r2.Point{X: 0.1})
	traj, err := engine.MultiPhasePreview(initial, locomotion.PreviewControl{Params: []locomotion.PreviewParams{step}}, true)
	test.That(t, err, test.ShouldBeNil)

	wholeBody, err := engine.ToWholeBodyTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wholeBody, test.ShouldHaveLength, len(traj))
	for i := range traj {
		test.That(t, wholeBody[i].Time, test.ShouldEqual, traj[i].Time)
		test.That(t, wholeBody[i].Contacts[lf], test.ShouldEqual, traj[i].IsSupportFoot(lf))
	}

	// out of reach
	traj[3].FootPos[lf] = r3.Vector{Z: -2}
	_, err = engine.ToWholeBodyTrajectory(traj)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample 3")
}
