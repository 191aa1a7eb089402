package preview

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/locomotion/carttable"
	"go.viam.com/locomotion/locomotion"
)

// Energy is the CoM kinetic energy integral of a preview control.
type Energy struct {
	CoM r3.Vector
	// UnaccountedPhases are the indices of the phases whose energy is not modeled. Flight phases
	// contribute no energy.
	UnaccountedPhases []int
}

// Complete returns whether every phase contributed to the energy.
func (en Energy) Complete() bool {
	return len(en.UnaccountedPhases) == 0
}

// MultiPhaseEnergy computes the CoM kinetic energy of control starting at initial, one closed-form
// evaluation per phase.
func (e *Engine) MultiPhaseEnergy(initial locomotion.ReducedBodyState, control locomotion.PreviewControl) (Energy, error) {
	if err := e.checkLoaded("multi-phase energy"); err != nil {
		return Energy{}, err
	}
	if err := e.checkControl(&initial, &control); err != nil {
		return Energy{}, err
	}
	c, err := e.newCallContext(&initial)
	if err != nil {
		return Energy{}, err
	}

	var energy Energy
	state := initial
	for k, params := range control.Params {
		switch params.Phase.Type {
		case locomotion.Stance:
			phaseEnergy, err := c.cartTable.ComputeSystemEnergy(&state, carttable.ControlParams{
				Duration: params.Duration,
				CoPShift: params.Phase.CoPShift,
			})
			if err != nil {
				return Energy{}, errors.Wrapf(err, "phase %d", k)
			}
			energy.CoM = energy.CoM.Add(phaseEnergy)
			if err := c.cartTable.ComputeResponse(&state, state.Time+params.Duration); err != nil {
				return Energy{}, errors.Wrapf(err, "phase %d", k)
			}
		case locomotion.Flight:
			next, err := c.comState(&state, params.Phase.Type, state.Time+params.Duration)
			if err != nil {
				return Energy{}, errors.Wrapf(err, "phase %d", k)
			}
			state.Time, state.CoMPos, state.CoMVel, state.CoMAcc = next.Time, next.CoMPos, next.CoMVel, next.CoMAcc
			energy.UnaccountedPhases = append(energy.UnaccountedPhases, k)
		default:
			return Energy{}, errors.Wrapf(locomotion.NewUnknownPhaseTypeError(params.Phase.Type), "phase %d", k)
		}
	}
	e.logger.Debugw("computed preview energy", "energy", energy.CoM, "unaccounted_phases", energy.UnaccountedPhases)
	return energy, nil
}
