package testutils

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/locomotion/model/fake"
	"go.viam.com/locomotion/preview"
)

// NewQuadrupedEngine returns a preview engine loaded with the fake quadruped.
func NewQuadrupedEngine(t *testing.T, cfg preview.Config) (*preview.Engine, *fake.Quadruped) {
	t.Helper()
	logger := golog.NewTestLogger(t)
	qp, err := fake.NewQuadruped(logger)
	test.That(t, err, test.ShouldBeNil)
	engine, err := preview.NewEngine(cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, engine.Load(qp, qp.Kinematics(), qp.Dynamics()), test.ShouldBeNil)
	return engine, qp
}

// SampleSequence is a preview sequence for the fake quadruped: a stance phase stepping with the left
// front foot, a flight phase and a final stance phase stepping with the right hind foot.
const SampleSequence = `preview_sequence:
  state:
    com_pos: [0.0, 0.0, 0.55]
    com_vel: [0.1, 0.0, 0.0]
    cop: [0.0, 0.0, 0.0]
  preview_control:
    number_phase: 3
    phase_0:
      duration: 0.3
      cop_shift: [0.05, 0.0]
      head_acc: 0.0
      lf_foot: [0.1, 0.0]
    phase_1:
      duration: 0.1
    phase_2:
      duration: 0.3
      cop_shift: [0.05, -0.02]
      rh_foot: [0.1, 0.0]
`
