package locomotion

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/locomotion/spatialmath"
)

// SupportRegion holds the world positions of the feet in contact. A foot missing from the region
// is swinging.
type SupportRegion map[FootID]r3.Vector

// Clone returns a copy of the region that can be modified freely.
func (sr SupportRegion) Clone() SupportRegion {
	out := make(SupportRegion, len(sr))
	for id, pos := range sr {
		out[id] = pos
	}
	return out
}

// IDs returns the ids of the feet in contact in ascending order.
func (sr SupportRegion) IDs() []FootID {
	ids := lo.Keys(sr)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReducedBodyState is the center-of-mass level description of a legged robot at an instant.
// CoM quantities, orientation and the CoP are expressed in the world frame while foot positions,
// velocities and accelerations are expressed in the CoM frame, one entry per FootID.
type ReducedBodyState struct {
	Time float64

	CoMPos r3.Vector
	CoMVel r3.Vector
	CoMAcc r3.Vector

	// roll, pitch and yaw in X, Y and Z
	AngularPos r3.Vector
	AngularVel r3.Vector
	AngularAcc r3.Vector

	CoP r3.Vector

	// All the states sampled within one phase may share the same region; it must be cloned
	// before being modified.
	SupportRegion SupportRegion

	FootPos []r3.Vector
	FootVel []r3.Vector
	FootAcc []r3.Vector
}

// NewReducedBodyState returns a zero state for a system with numFeet feet and an empty support region.
func NewReducedBodyState(numFeet int) ReducedBodyState {
	return ReducedBodyState{
		SupportRegion: SupportRegion{},
		FootPos:       make([]r3.Vector, numFeet),
		FootVel:       make([]r3.Vector, numFeet),
		FootAcc:       make([]r3.Vector, numFeet),
	}
}

// Clone returns a deep copy of the state.
func (s ReducedBodyState) Clone() ReducedBodyState {
	out := s
	if s.SupportRegion != nil {
		out.SupportRegion = s.SupportRegion.Clone()
	}
	out.FootPos = append([]r3.Vector(nil), s.FootPos...)
	out.FootVel = append([]r3.Vector(nil), s.FootVel...)
	out.FootAcc = append([]r3.Vector(nil), s.FootAcc...)
	return out
}

// IsSupportFoot returns whether the foot is in contact.
func (s *ReducedBodyState) IsSupportFoot(id FootID) bool {
	_, ok := s.SupportRegion[id]
	return ok
}

// FootPosWorld returns the world position of a foot.
func (s *ReducedBodyState) FootPosWorld(id FootID) r3.Vector {
	return s.CoMPos.Add(spatialmath.FromBaseToWorldFrame(s.FootPos[id], s.AngularPos))
}

// NumFeet returns the number of feet the state describes.
func (s *ReducedBodyState) NumFeet() int {
	return len(s.FootPos)
}

// ReducedBodyTrajectory is a time ordered sequence of reduced states.
type ReducedBodyTrajectory []ReducedBodyState

// Duration returns the time spanned by the trajectory.
func (t ReducedBodyTrajectory) Duration() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Time - t[0].Time
}

// WholeBodyState describes the floating base and the joints of a legged robot. Base quantities are
// expressed in the world frame and contact quantities in the base frame.
type WholeBodyState struct {
	Time float64

	BasePos    r3.Vector
	BaseRPY    r3.Vector
	BaseVel    r3.Vector
	BaseRPYVel r3.Vector
	BaseAcc    r3.Vector
	BaseRPYAcc r3.Vector

	JointPos []float64
	JointVel []float64
	JointAcc []float64
	JointEff []float64

	ContactPos []r3.Vector
	ContactVel []r3.Vector
	ContactAcc []r3.Vector
	ContactEff []spatialmath.Wrench
	Contacts   []bool
}

// NewWholeBodyState returns a zero whole-body state sized for a robot.
func NewWholeBodyState(numFeet, jointDoF int) WholeBodyState {
	return WholeBodyState{
		JointPos:   make([]float64, jointDoF),
		JointVel:   make([]float64, jointDoF),
		JointAcc:   make([]float64, jointDoF),
		JointEff:   make([]float64, jointDoF),
		ContactPos: make([]r3.Vector, numFeet),
		ContactVel: make([]r3.Vector, numFeet),
		ContactAcc: make([]r3.Vector, numFeet),
		ContactEff: make([]spatialmath.Wrench, numFeet),
		Contacts:   make([]bool, numFeet),
	}
}

// WholeBodyTrajectory is a time ordered sequence of whole-body states.
type WholeBodyTrajectory []WholeBodyState
