package preview

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/locomotion/config"
	"go.viam.com/locomotion/locomotion"
)

var (
	stateNamespace   = []string{"preview_sequence", "state"}
	controlNamespace = []string{"preview_sequence", "preview_control"}
)

func phaseNamespace(k int) []string {
	return append(append([]string(nil), controlNamespace...), fmt.Sprintf("phase_%d", k))
}

func readVector(r *config.Reader, namespace []string, key string) (r3.Vector, error) {
	v, err := r.Floats(namespace, key, 3)
	if err != nil {
		return r3.Vector{}, err
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func readPoint(r *config.Reader, namespace []string, key string) (r2.Point, error) {
	v, err := r.Floats(namespace, key, 2)
	if err != nil {
		return r2.Point{}, err
	}
	return r2.Point{X: v[0], Y: v[1]}, nil
}

// ReadPreviewSequence reads an initial state and a preview control from a YAML file of the form
//
//	preview_sequence:
//	  state:
//	    com_pos: [x, y, z]
//	    com_vel: [x, y, z]
//	    cop: [x, y, z]
//	  preview_control:
//	    number_phase: n
//	    phase_0:
//	      duration: d
//	      cop_shift: [x, y]   # stance phases only
//	      head_acc: a         # optional
//	      <foot name>: [x, y] # swing foot shift
//
// The state has every foot at its nominal stance position and in support. If a required key is
// missing the read stops and what was read so far is returned along with a *config.MissingKeyError.
func (e *Engine) ReadPreviewSequence(filePath string) (locomotion.ReducedBodyState, locomotion.PreviewControl, error) {
	var control locomotion.PreviewControl
	if err := e.checkLoaded("read preview sequence"); err != nil {
		return locomotion.ReducedBodyState{}, control, err
	}
	state := locomotion.NewReducedBodyState(e.feet.Len())

	r, err := config.Read(filePath, e.logger)
	if err != nil {
		return state, control, errors.Wrap(err, "cannot read preview sequence")
	}

	comPos, err := readVector(r, stateNamespace, "com_pos")
	if err != nil {
		return state, control, err
	}
	if state, err = e.NominalState(comPos); err != nil {
		return state, control, err
	}
	if state.CoMVel, err = readVector(r, stateNamespace, "com_vel"); err != nil {
		return state, control, err
	}
	if state.CoP, err = readVector(r, stateNamespace, "cop"); err != nil {
		return state, control, err
	}

	numPhases, err := r.Int(controlNamespace, "number_phase")
	if err != nil {
		return state, control, err
	}
	if numPhases < 0 {
		return state, control, errors.Errorf("number_phase cannot be negative, got %d", numPhases)
	}

	known := append([]string{"duration", "cop_shift", "head_acc"}, e.feet.Names()...)
	for k := 0; k < numPhases; k++ {
		ns := phaseNamespace(k)
		duration, err := r.Float(ns, "duration")
		if err != nil {
			return state, control, err
		}

		params := locomotion.PreviewParams{Duration: duration, Phase: locomotion.NewFlightPhase()}
		if r.Has(ns, "cop_shift") {
			shift, err := readPoint(r, ns, "cop_shift")
			if err != nil {
				return state, control, err
			}
			headAcc := 0.
			if r.Has(ns, "head_acc") {
				if headAcc, err = r.Float(ns, "head_acc"); err != nil {
					return state, control, err
				}
			}
			params.Phase = locomotion.NewStancePhase(shift, headAcc)
		}

		for _, id := range e.feet.IDs() {
			name := e.feet.Name(id)
			if !r.Has(ns, name) {
				continue
			}
			shift, err := readPoint(r, ns, name)
			if err != nil {
				return state, control, err
			}
			params.Phase.AddSwingFoot(id, shift)
		}

		if unknown, _ := lo.Difference(r.Keys(ns), known); len(unknown) > 0 {
			e.logger.Warnw("ignoring unknown phase keys", "phase", k, "keys", unknown, "path", filePath)
		}
		control.Params = append(control.Params, params)
	}
	return state, control, nil
}
