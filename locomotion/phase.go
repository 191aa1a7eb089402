package locomotion

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PhaseType distinguishes phases with ground contact from ballistic ones.
type PhaseType uint8

// The known phase types. The zero value is not a valid phase type.
const (
	Stance PhaseType = iota + 1
	Flight
)

func (pt PhaseType) String() string {
	switch pt {
	case Stance:
		return "stance"
	case Flight:
		return "flight"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(pt))
	}
}

// Valid returns whether the type is one of the known phase types.
func (pt PhaseType) Valid() bool {
	return pt == Stance || pt == Flight
}

// NewUnknownPhaseTypeError is returned when a phase type is neither stance nor flight.
func NewUnknownPhaseTypeError(pt PhaseType) error {
	return errors.Errorf("unknown phase type %v", pt)
}

// Phase describes a stance or flight phase.
type Phase struct {
	Type PhaseType

	// stance only
	CoPShift r2.Point
	HeadAcc  float64

	SwingFeet []FootID
	FootShift map[FootID]r2.Point
}

// NewStancePhase returns a stance phase moving the CoP by copShift.
func NewStancePhase(copShift r2.Point, headAcc float64) Phase {
	return Phase{Type: Stance, CoPShift: copShift, HeadAcc: headAcc, FootShift: map[FootID]r2.Point{}}
}

// NewFlightPhase returns a ballistic phase.
func NewFlightPhase() Phase {
	return Phase{Type: Flight, FootShift: map[FootID]r2.Point{}}
}

// AddSwingFoot marks a foot as swinging with the given planar displacement from its nominal stance position.
func (p *Phase) AddSwingFoot(id FootID, shift r2.Point) {
	if p.FootShift == nil {
		p.FootShift = map[FootID]r2.Point{}
	}
	if !p.IsSwingFoot(id) {
		p.SwingFeet = append(p.SwingFeet, id)
	}
	p.FootShift[id] = shift
}

// IsSwingFoot returns whether the foot swings during the phase.
func (p *Phase) IsSwingFoot(id FootID) bool {
	return lo.Contains(p.SwingFeet, id)
}

// Shift returns the commanded displacement of a swing foot.
func (p *Phase) Shift(id FootID) r2.Point {
	return p.FootShift[id]
}
