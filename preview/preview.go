package preview

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/locomotion/carttable"
	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/spatialmath"
	"go.viam.com/locomotion/swing"
)

func (e *Engine) checkControl(initial *locomotion.ReducedBodyState, control *locomotion.PreviewControl) error {
	if len(control.Params) == 0 {
		return ErrEmptyControl
	}
	if err := control.Validate(e.feet.Len()); err != nil {
		return errors.Wrap(err, "invalid preview control")
	}
	return e.checkState(initial)
}

// MultiPhasePreview predicts the motion produced by control starting at initial. In full mode every
// phase is sampled at the sample time, with a final sample pinned at the end of the phase, and swing
// feet trajectories are generated. Otherwise only the terminal state of each phase is produced.
// The trajectory always ends with a copy of its last state in which the footholds of the last phase
// are committed to the support region.
//
// States sampled within one phase share their support region, which must be cloned before being
// modified.
func (e *Engine) MultiPhasePreview(
	initial locomotion.ReducedBodyState,
	control locomotion.PreviewControl,
	full bool,
) (locomotion.ReducedBodyTrajectory, error) {
	if err := e.checkLoaded("multi-phase preview"); err != nil {
		return nil, err
	}
	if err := e.checkControl(&initial, &control); err != nil {
		return nil, err
	}
	c, err := e.newCallContext(&initial)
	if err != nil {
		return nil, err
	}

	var traj locomotion.ReducedBodyTrajectory
	for k := range control.Params {
		params := &control.Params[k]

		var start locomotion.ReducedBodyState
		var prev *locomotion.PreviewParams
		if k == 0 {
			start = initial
		} else {
			start = traj[len(traj)-1]
			prev = &control.Params[k-1]
		}
		start.SupportRegion = c.startSupport(&start, prev, params)

		phaseTraj, err := c.phasePreview(&start, params, full)
		if err != nil {
			return nil, errors.Wrapf(err, "phase %d", k)
		}
		traj = append(traj, phaseTraj...)

		if len(traj) == 0 {
			traj = append(traj, initial.Clone())
		}
	}

	final := traj[len(traj)-1].Clone()
	final.SupportRegion = c.endSupport(&final, &control.Params[len(control.Params)-1])
	traj = append(traj, final)

	e.logger.Debugw("previewed locomotion", "phases", len(control.Params), "samples", len(traj), "full", full)
	return traj, nil
}

// sampleTimes returns the sample times of a phase relative to its start.
func (c *callContext) sampleTimes(duration float64, full bool) []float64 {
	if !full {
		return []float64{duration}
	}
	if duration <= c.cfg.SampleTime {
		return nil
	}
	n := int(math.Floor(duration / c.cfg.SampleTime))
	times := make([]float64, n+1)
	for i := 0; i < n; i++ {
		times[i] = c.cfg.SampleTime * float64(i+1)
	}
	times[n] = duration
	return times
}

func (c *callContext) phasePreview(
	start *locomotion.ReducedBodyState,
	params *locomotion.PreviewParams,
	full bool,
) (locomotion.ReducedBodyTrajectory, error) {
	times := c.sampleTimes(params.Duration, full)
	if len(times) == 0 {
		return nil, nil
	}

	region := start.SupportRegion
	switch params.Phase.Type {
	case locomotion.Stance:
		if err := c.cartTable.InitResponse(start, carttable.ControlParams{
			Duration: params.Duration,
			CoPShift: params.Phase.CoPShift,
		}); err != nil {
			return nil, err
		}
	case locomotion.Flight:
		region = locomotion.SupportRegion{}
	default:
		return nil, locomotion.NewUnknownPhaseTypeError(params.Phase.Type)
	}

	c.phaseStart = *start
	if full {
		if err := c.initSwing(start, params); err != nil {
			return nil, err
		}
	}

	out := make(locomotion.ReducedBodyTrajectory, len(times))
	sample := func(i int) error {
		state, err := c.comState(start, params.Phase.Type, start.Time+times[i])
		if err != nil {
			return err
		}
		state.SupportRegion = region
		if full {
			c.feetState(&state)
		} else {
			state.FootPos = append([]r3.Vector(nil), start.FootPos...)
			state.FootVel = append([]r3.Vector(nil), start.FootVel...)
			state.FootAcc = append([]r3.Vector(nil), start.FootAcc...)
		}
		out[i] = state
		return nil
	}

	if c.cfg.Workers > 1 && len(times) > 1 {
		var g errgroup.Group
		g.SetLimit(c.cfg.Workers)
		for i := range times {
			i := i
			g.Go(func() error { return sample(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}
	for i := range times {
		if err := sample(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// comState computes the CoM level state at the absolute time t of a phase starting at start. The
// orientation and, during flight, the CoP are held.
func (c *callContext) comState(
	start *locomotion.ReducedBodyState,
	phaseType locomotion.PhaseType,
	t float64,
) (locomotion.ReducedBodyState, error) {
	state := locomotion.ReducedBodyState{
		Time:       t,
		AngularPos: start.AngularPos,
		AngularVel: start.AngularVel,
		AngularAcc: start.AngularAcc,
		CoP:        start.CoP,
	}
	switch phaseType {
	case locomotion.Stance:
		// TODO: integrate the heading with Phase.HeadAcc once angular motion is previewed.
		if err := c.cartTable.ComputeResponse(&state, t); err != nil {
			return state, err
		}
	case locomotion.Flight:
		dt := t - start.Time
		g := r3.Vector{Z: -c.e.gravity}
		state.CoMPos = start.CoMPos.Add(start.CoMVel.Mul(dt)).Add(g.Mul(0.5 * dt * dt))
		state.CoMVel = start.CoMVel.Add(g.Mul(dt))
		state.CoMAcc = g
	default:
		return state, locomotion.NewUnknownPhaseTypeError(phaseType)
	}
	return state, nil
}

// initSwing sets up a swing generator for every foot swinging in the phase. The targets are placed
// at the terrain height under the footholds reached at the end of the phase.
func (c *callContext) initSwing(start *locomotion.ReducedBodyState, params *locomotion.PreviewParams) error {
	terminal, err := c.comState(start, params.Phase.Type, start.Time+params.Duration)
	if err != nil {
		return err
	}

	for i := range c.generators {
		c.generators[i] = nil
	}
	c.swingParams = locomotion.SwingParams{
		Duration:  params.Duration,
		FeetShift: make(map[locomotion.FootID]r3.Vector, len(params.Phase.SwingFeet)),
	}
	for _, id := range params.Phase.SwingFeet {
		shift := params.Phase.Shift(id)
		stance := c.e.stance[id]
		foothold := terminal.CoMPos.Add(spatialmath.FromBaseToWorldFrame(
			stance.Add(r3.Vector{X: shift.X, Y: shift.Y}), terminal.AngularPos))
		height := c.ground.TerrainHeight(r2.Point{X: foothold.X, Y: foothold.Y})
		footShift := r3.Vector{X: shift.X, Y: shift.Y, Z: height - (terminal.CoMPos.Z + stance.Z)}
		c.swingParams.FeetShift[id] = footShift

		gen := &swing.Generator{}
		if err := gen.SetParameters(start.Time, start.FootPos[id], stance.Add(footShift), swing.StepParameters{
			Duration:   params.Duration,
			StepHeight: c.cfg.StepHeight,
		}); err != nil {
			return errors.Wrapf(err, "foot %q", c.e.feet.Name(id))
		}
		c.generators[id] = gen
		c.e.logger.Debugw("swing foot", "foot", c.e.feet.Name(id), "shift", footShift, "apex", gen.Apex())
	}
	return nil
}

// feetState fills the CoM frame foot states of a sample. Swinging feet follow their generators while
// feet in stance stay where they were in the world.
func (c *callContext) feetState(state *locomotion.ReducedBodyState) {
	n := len(c.generators)
	state.FootPos = make([]r3.Vector, n)
	state.FootVel = make([]r3.Vector, n)
	state.FootAcc = make([]r3.Vector, n)

	disp := spatialmath.FromWorldToBaseFrame(state.CoMPos.Sub(c.phaseStart.CoMPos), state.AngularPos)
	vel := spatialmath.FromWorldToBaseFrame(state.CoMVel.Mul(-1), state.AngularPos)
	acc := spatialmath.FromWorldToBaseFrame(state.CoMAcc.Mul(-1), state.AngularPos)
	for id, gen := range c.generators {
		if gen != nil {
			state.FootPos[id], state.FootVel[id], state.FootAcc[id] = gen.GenerateTrajectory(state.Time)
			continue
		}
		state.FootPos[id] = c.phaseStart.FootPos[id].Sub(disp)
		state.FootVel[id] = vel
		state.FootAcc[id] = acc
	}
}
