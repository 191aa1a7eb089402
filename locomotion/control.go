package locomotion

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// PreviewParams is one phase of a preview control together with its duration.
type PreviewParams struct {
	Duration float64
	Phase    Phase
}

// PreviewControl is the ordered sequence of phases to preview.
type PreviewControl struct {
	Params []PreviewParams
}

// TotalDuration returns the sum of the phase durations.
func (pc *PreviewControl) TotalDuration() float64 {
	total := 0.
	for _, p := range pc.Params {
		total += p.Duration
	}
	return total
}

// Validate checks every phase of the control and reports all problems found.
func (pc *PreviewControl) Validate(numFeet int) error {
	var err error
	for k, p := range pc.Params {
		if p.Duration <= 0 {
			err = multierr.Append(err, errors.Errorf("phase %d: duration must be positive, got %v", k, p.Duration))
		}
		if !p.Phase.Type.Valid() {
			err = multierr.Append(err, errors.Wrapf(NewUnknownPhaseTypeError(p.Phase.Type), "phase %d", k))
		}
		for _, id := range p.Phase.SwingFeet {
			if id < 0 || int(id) >= numFeet {
				err = multierr.Append(err, errors.Errorf("phase %d: swing foot %d out of range [0, %d)", k, id, numFeet))
				continue
			}
			if _, ok := p.Phase.FootShift[id]; !ok {
				err = multierr.Append(err, errors.Errorf("phase %d: swing foot %d has no shift", k, id))
			}
		}
	}
	return err
}

// SwingParams are the footstep targets of one phase. The planar part of each shift is commanded
// while its height is resolved against the terrain.
type SwingParams struct {
	Duration  float64
	FeetShift map[FootID]r3.Vector
}
