// Package preview implements a fast locomotion preview for legged robots. Given a reduced-body
// state and a sequence of stance and flight phases, an Engine predicts the center of mass and
// swing-foot trajectories using a cart-table model for stance and projectile motion for flight,
// and converts between reduced-body and whole-body states.
package preview

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/locomotion/carttable"
	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/model"
	"go.viam.com/locomotion/terrain"
	"go.viam.com/locomotion/utils"
)

// Engine previews multi-phase locomotion. An engine is configured once, with Load and the setters,
// and is then safe for concurrent previews as long as it is not reconfigured meanwhile.
type Engine struct {
	logger golog.Logger
	cfg    Config

	terrain terrain.Provider

	loaded bool
	system model.FloatingBase
	kin    model.Kinematics
	dyn    model.Dynamics

	feet      *locomotion.Feet
	gravity   float64
	mass      float64
	comOffset r3.Vector
	// nominal foot positions in the CoM frame at the default posture
	stance []r3.Vector
	props  carttable.Properties
}

// NewEngine returns an engine with the given tunables. A robot model has to be loaded before
// previewing.
func NewEngine(cfg Config, logger golog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid preview config")
	}
	return &Engine{logger: logger, cfg: cfg}, nil
}

// Load sets up the engine for a robot: it resolves the feet, the CoM offset and the nominal stance
// posture at the default joint positions, and the cart-table properties.
func (e *Engine) Load(system model.FloatingBase, kin model.Kinematics, dyn model.Dynamics) error {
	if system == nil || kin == nil || dyn == nil {
		return errors.New("floating-base system, kinematics and dynamics are all required")
	}

	names := system.EndEffectorNames(model.FootEndEffectors)
	if count := system.EndEffectorCount(model.FootEndEffectors); count != len(names) {
		return errors.Errorf("system reports %d feet but names %d", count, len(names))
	}
	feet, err := locomotion.NewFeet(names)
	if err != nil {
		return err
	}

	q0 := system.DefaultPosture()
	if len(q0) != system.JointDoF() {
		return errors.Errorf("default posture has %d joints, expected %d", len(q0), system.JointDoF())
	}
	comOffset, err := system.SystemCoM(model.BaseState{}, q0)
	if err != nil {
		return errors.Wrap(err, "cannot compute the default center of mass")
	}
	footPos, err := kin.ForwardKinematics(q0, names)
	if err != nil {
		return errors.Wrap(err, "cannot compute the stance posture")
	}
	stance := make([]r3.Vector, feet.Len())
	for _, id := range feet.IDs() {
		pos, ok := footPos[feet.Name(id)]
		if !ok {
			return errors.Errorf("forward kinematics is missing foot %q", feet.Name(id))
		}
		stance[id] = pos.Sub(comOffset)
	}

	props := carttable.Properties{
		Mass:    system.TotalMass(),
		Gravity: system.Gravity().Norm(),
		PendulumHeight: -utils.Mean(lo.Map(stance, func(p r3.Vector, _ int) float64 {
			return p.Z
		})...),
	}
	if err := props.Validate(); err != nil {
		return errors.Wrap(err, "invalid robot model")
	}

	e.system, e.kin, e.dyn = system, kin, dyn
	e.feet = feet
	e.gravity = props.Gravity
	e.mass = props.Mass
	e.comOffset = comOffset
	e.stance = stance
	e.props = props
	e.loaded = true

	e.logger.Debugw("loaded robot model",
		"feet", names,
		"mass", props.Mass,
		"gravity", props.Gravity,
		"pendulum_height", props.PendulumHeight,
		"com_offset", comOffset)
	return nil
}

// Loaded returns whether a robot model was loaded.
func (e *Engine) Loaded() bool {
	return e.loaded
}

// SetTerrain sets the terrain used to place footholds. Without a provider with terrain data the
// ground is assumed flat under the initial state of every preview.
func (e *Engine) SetTerrain(provider terrain.Provider) {
	e.terrain = provider
}

// SetSampleTime sets the preview sampling interval.
func (e *Engine) SetSampleTime(sampleTime float64) error {
	if sampleTime <= 0 {
		return errors.Errorf("sample time must be positive, got %v", sampleTime)
	}
	e.cfg.SampleTime = sampleTime
	return nil
}

// SetStepHeight sets the swing apex height.
func (e *Engine) SetStepHeight(stepHeight float64) error {
	if stepHeight < 0 {
		return errors.Errorf("step height cannot be negative, got %v", stepHeight)
	}
	e.cfg.StepHeight = stepHeight
	return nil
}

// SetForceThreshold sets the force above which a contact is active.
func (e *Engine) SetForceThreshold(threshold float64) error {
	if threshold < 0 {
		return errors.Errorf("force threshold cannot be negative, got %v", threshold)
	}
	e.cfg.ForceThreshold = threshold
	return nil
}

// SetWorkers sets how many samples of a phase may be computed concurrently.
func (e *Engine) SetWorkers(workers int) error {
	if workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", workers)
	}
	e.cfg.Workers = workers
	return nil
}

// Config returns the current tunables.
func (e *Engine) Config() Config {
	return e.cfg
}

// SampleTime returns the sampling interval.
func (e *Engine) SampleTime() float64 {
	return e.cfg.SampleTime
}

// Feet returns the foot table of the loaded model.
func (e *Engine) Feet() *locomotion.Feet {
	return e.feet
}

// StancePosture returns the nominal foot positions in the CoM frame, indexed by FootID.
func (e *Engine) StancePosture() []r3.Vector {
	return append([]r3.Vector(nil), e.stance...)
}

// CoMOffset returns the position of the CoM in the base frame at the default posture.
func (e *Engine) CoMOffset() r3.Vector {
	return e.comOffset
}

// PendulumHeight returns the nominal CoM height above the feet.
func (e *Engine) PendulumHeight() float64 {
	return e.props.PendulumHeight
}

// TotalMass returns the mass of the loaded robot.
func (e *Engine) TotalMass() float64 {
	return e.mass
}

// Gravity returns the gravity acceleration magnitude.
func (e *Engine) Gravity() float64 {
	return e.gravity
}

// NominalState returns a state at rest at the given CoM position with every foot at its nominal
// stance position and in support on flat ground.
func (e *Engine) NominalState(comPos r3.Vector) (locomotion.ReducedBodyState, error) {
	if err := e.checkLoaded("nominal state"); err != nil {
		return locomotion.ReducedBodyState{}, err
	}
	state := locomotion.NewReducedBodyState(e.feet.Len())
	state.CoMPos = comPos
	state.CoP = r3.Vector{X: comPos.X, Y: comPos.Y, Z: comPos.Z - e.props.PendulumHeight}
	copy(state.FootPos, e.stance)
	for _, id := range e.feet.IDs() {
		foothold := comPos.Add(e.stance[id])
		foothold.Z = comPos.Z - e.props.PendulumHeight
		state.SupportRegion[id] = foothold
	}
	return state, nil
}

func (e *Engine) checkState(state *locomotion.ReducedBodyState) error {
	n := e.feet.Len()
	if len(state.FootPos) != n || len(state.FootVel) != n || len(state.FootAcc) != n {
		return errors.Errorf("state must describe %d feet, got %d positions, %d velocities and %d accelerations",
			n, len(state.FootPos), len(state.FootVel), len(state.FootAcc))
	}
	for id := range state.SupportRegion {
		if !e.feet.Contains(id) {
			return errors.Errorf("support region contains unknown foot %d", id)
		}
	}
	return nil
}
