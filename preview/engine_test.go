package preview_test

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/model"
	"go.viam.com/locomotion/model/fake"
	"go.viam.com/locomotion/preview"
	"go.viam.com/locomotion/testutils"
)

func newQuadrupedTestEngine(t *testing.T, sampleTime float64) (*preview.Engine, *fake.Quadruped) {
	t.Helper()
	cfg := preview.DefaultConfig()
	cfg.SampleTime = sampleTime
	return testutils.NewQuadrupedEngine(t, cfg)
}

func newTestEngine(t *testing.T, sampleTime float64) *preview.Engine {
	t.Helper()
	engine, _ := newQuadrupedTestEngine(t, sampleTime)
	return engine
}

func footID(t *testing.T, engine *preview.Engine, name string) locomotion.FootID {
	t.Helper()
	id, ok := engine.Feet().ID(name)
	test.That(t, ok, test.ShouldBeTrue)
	return id
}

func TestNewEngine(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := preview.NewEngine(preview.Config{}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	engine, err := preview.NewEngine(preview.DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Loaded(), test.ShouldBeFalse)
	test.That(t, engine.SampleTime(), test.ShouldEqual, 0.001)
	test.That(t, engine.Config(), test.ShouldResemble, preview.DefaultConfig())

	test.That(t, engine.SetSampleTime(0), test.ShouldNotBeNil)
	test.That(t, engine.SetStepHeight(-1), test.ShouldNotBeNil)
	test.That(t, engine.SetForceThreshold(-1), test.ShouldNotBeNil)
	test.That(t, engine.SetWorkers(0), test.ShouldNotBeNil)

	test.That(t, engine.SetSampleTime(0.01), test.ShouldBeNil)
	test.That(t, engine.SetStepHeight(0.2), test.ShouldBeNil)
	test.That(t, engine.SetForceThreshold(5), test.ShouldBeNil)
	test.That(t, engine.SetWorkers(3), test.ShouldBeNil)
	test.That(t, engine.Config(), test.ShouldResemble, preview.Config{
		SampleTime: 0.01, StepHeight: 0.2, ForceThreshold: 5, Workers: 3,
	})
}

func TestLoad(t *testing.T) {
	logger := golog.NewTestLogger(t)
	qp, err := fake.NewQuadruped(logger)
	test.That(t, err, test.ShouldBeNil)

	engine, err := preview.NewEngine(preview.DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Load(nil, qp.Kinematics(), qp.Dynamics()), test.ShouldNotBeNil)
	test.That(t, engine.Loaded(), test.ShouldBeFalse)

	test.That(t, engine.Load(qp, qp.Kinematics(), qp.Dynamics()), test.ShouldBeNil)
	test.That(t, engine.Loaded(), test.ShouldBeTrue)
	test.That(t, engine.Feet().Names(), test.ShouldResemble, []string{fake.LeftFront, fake.RightFront, fake.LeftHind, fake.RightHind})
	test.That(t, engine.TotalMass(), test.ShouldAlmostEqual, qp.TotalMass())
	test.That(t, engine.Gravity(), test.ShouldAlmostEqual, 9.81)

	com, err := qp.SystemCoM(model.BaseState{}, qp.DefaultPosture())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.CoMOffset(), test.ShouldResemble, com)

	stance := engine.StancePosture()
	test.That(t, stance, test.ShouldHaveLength, 4)
	feet, err := qp.Kinematics().ForwardKinematics(qp.DefaultPosture(), nil)
	test.That(t, err, test.ShouldBeNil)
	meanZ := 0.
	for id, name := range engine.Feet().Names() {
		test.That(t, stance[id], test.ShouldResemble, feet[name].Sub(com))
		meanZ += stance[id].Z / 4
	}
	test.That(t, engine.PendulumHeight(), test.ShouldAlmostEqual, -meanZ)
	test.That(t, engine.PendulumHeight(), test.ShouldBeGreaterThan, 0.4)
}

func TestNominalState(t *testing.T) {
	engine := newTestEngine(t, 0.01)
	com := r3.Vector{X: 1, Y: -0.5, Z: 0.55}
	state, err := engine.NominalState(com)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, state.NumFeet(), test.ShouldEqual, 4)
	test.That(t, state.CoMPos, test.ShouldResemble, com)
	test.That(t, state.SupportRegion.IDs(), test.ShouldResemble, engine.Feet().IDs())
	for id, stance := range engine.StancePosture() {
		test.That(t, state.FootPos[id], test.ShouldResemble, stance)
		test.That(t, state.SupportRegion[locomotion.FootID(id)].Z, test.ShouldAlmostEqual, com.Z-engine.PendulumHeight())
	}
}

func TestModelNotLoaded(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)
	engine, err := preview.NewEngine(preview.DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	state := locomotion.NewReducedBodyState(4)
	control := locomotion.PreviewControl{Params: []locomotion.PreviewParams{
		{Duration: 0.5, Phase: locomotion.NewFlightPhase()},
	}}

	traj, err := engine.MultiPhasePreview(state, control, true)
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	test.That(t, traj, test.ShouldBeNil)

	energy, err := engine.MultiPhaseEnergy(state, control)
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	test.That(t, energy, test.ShouldResemble, preview.Energy{})

	_, err = engine.ToWholeBodyState(state)
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	_, err = engine.FromWholeBodyState(locomotion.NewWholeBodyState(4, 12))
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	_, err = engine.ToWholeBodyTrajectory(nil)
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	_, _, err = engine.ReadPreviewSequence("unused.yaml")
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)
	_, err = engine.NominalState(r3.Vector{})
	test.That(t, err, test.ShouldBeError, preview.ErrModelNotLoaded)

	test.That(t, logs.FilterMessageSnippet("cannot run preview operation").Len(), test.ShouldEqual, 7)
}

func TestEngineDebugLogs(t *testing.T) {
	logger, logs := testutils.NewObservedLogger(t)
	qp, err := fake.NewQuadruped(logger)
	test.That(t, err, test.ShouldBeNil)
	engine, err := preview.NewEngine(preview.DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Load(qp, qp.Kinematics(), qp.Dynamics()), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("loaded robot model").Len(), test.ShouldEqual, 1)

	state, err := engine.NominalState(r3.Vector{Z: 0.55})
	test.That(t, err, test.ShouldBeNil)
	step := locomotion.PreviewParams{Duration: 0.05, Phase: locomotion.NewStancePhase(r2.Point{}, 0)}
	step.Phase.AddSwingFoot(0, r2.Point{X: 0.05})
	_, err = engine.MultiPhasePreview(state, locomotion.PreviewControl{Params: []locomotion.PreviewParams{step}}, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("swing foot").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("previewed locomotion").Len(), test.ShouldEqual, 1)
}
