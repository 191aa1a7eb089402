package preview

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/locomotion/carttable"
	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/spatialmath"
	"go.viam.com/locomotion/swing"
	"go.viam.com/locomotion/terrain"
)

// callContext is the mutable state of a single preview or energy call.
type callContext struct {
	e      *Engine
	cfg    Config
	ground terrain.Provider

	cartTable *carttable.Model

	// start of the current phase and its swing generators, indexed by FootID
	phaseStart  locomotion.ReducedBodyState
	swingParams locomotion.SwingParams
	generators  []*swing.Generator
}

func (e *Engine) newCallContext(initial *locomotion.ReducedBodyState) (*callContext, error) {
	cartTable, err := carttable.NewModel(e.props)
	if err != nil {
		return nil, err
	}
	flat := terrain.Flat{Height: initial.CoMPos.Z - e.props.PendulumHeight}
	return &callContext{
		e:          e,
		cfg:        e.cfg,
		ground:     terrain.Select(e.terrain, flat),
		cartTable:  cartTable,
		generators: make([]*swing.Generator, e.feet.Len()),
	}, nil
}

// foothold returns the world position of a foot placed at its nominal stance position shifted by
// shift, relative to the CoM of state, and at terrain height.
func (c *callContext) foothold(state *locomotion.ReducedBodyState, id locomotion.FootID, shift r2.Point) r3.Vector {
	local := c.e.stance[id].Add(r3.Vector{X: shift.X, Y: shift.Y})
	foothold := state.CoMPos.Add(spatialmath.FromBaseToWorldFrame(local, state.AngularPos))
	foothold.Z = c.ground.TerrainHeight(r2.Point{X: foothold.X, Y: foothold.Y})
	return foothold
}

// startSupport returns the support region a phase starts with: the swing feet of the previous phase
// are committed at their footholds and the swing feet of the phase itself are lifted. The region of
// start is only copied if it changes.
func (c *callContext) startSupport(
	start *locomotion.ReducedBodyState,
	prev *locomotion.PreviewParams,
	cur *locomotion.PreviewParams,
) locomotion.SupportRegion {
	commit := prev != nil && prev.Duration > c.cfg.SampleTime && len(prev.Phase.SwingFeet) > 0
	lift := false
	for _, id := range cur.Phase.SwingFeet {
		lift = lift || start.IsSupportFoot(id)
	}
	if !commit && !lift && start.SupportRegion != nil {
		return start.SupportRegion
	}

	region := start.SupportRegion.Clone()
	if commit {
		for _, id := range prev.Phase.SwingFeet {
			region[id] = c.foothold(start, id, prev.Phase.Shift(id))
		}
	}
	for _, id := range cur.Phase.SwingFeet {
		delete(region, id)
	}
	return region
}

// endSupport commits the swing feet of the last phase into the support region of the final state.
func (c *callContext) endSupport(state *locomotion.ReducedBodyState, last *locomotion.PreviewParams) locomotion.SupportRegion {
	if last.Duration <= c.cfg.SampleTime || len(last.Phase.SwingFeet) == 0 {
		return state.SupportRegion
	}
	region := state.SupportRegion.Clone()
	for _, id := range last.Phase.SwingFeet {
		region[id] = c.foothold(state, id, last.Phase.Shift(id))
	}
	return region
}
