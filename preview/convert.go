package preview

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/model"
	"go.viam.com/locomotion/spatialmath"
)

// ToWholeBodyState maps a reduced state to a whole-body state. The base is placed at the CoM minus
// the default CoM offset, the joints are solved with the kinematics from the foot states and the
// efforts are left at zero.
func (e *Engine) ToWholeBodyState(reduced locomotion.ReducedBodyState) (locomotion.WholeBodyState, error) {
	if err := e.checkLoaded("to whole-body state"); err != nil {
		return locomotion.WholeBodyState{}, err
	}
	return e.toWholeBodyState(&reduced)
}

func (e *Engine) toWholeBodyState(reduced *locomotion.ReducedBodyState) (locomotion.WholeBodyState, error) {
	if err := e.checkState(reduced); err != nil {
		return locomotion.WholeBodyState{}, err
	}
	full := locomotion.NewWholeBodyState(e.feet.Len(), e.system.JointDoF())
	full.Time = reduced.Time
	// joint contributions to the CoM are unknown here so a fixed offset is used
	full.BasePos = reduced.CoMPos.Sub(e.comOffset)
	full.BaseVel = reduced.CoMVel
	full.BaseAcc = reduced.CoMAcc
	full.BaseRPY = reduced.AngularPos
	full.BaseRPYVel = reduced.AngularVel
	full.BaseRPYAcc = reduced.AngularAcc

	n := e.feet.Len()
	contactPos := make(map[string]r3.Vector, n)
	contactVel := make(map[string]r3.Vector, n)
	contactAcc := make(map[string]r3.Vector, n)
	for _, id := range e.feet.IDs() {
		name := e.feet.Name(id)
		full.ContactPos[id] = reduced.FootPos[id].Add(e.comOffset)
		full.ContactVel[id] = reduced.FootVel[id]
		full.ContactAcc[id] = reduced.FootAcc[id]
		full.Contacts[id] = reduced.IsSupportFoot(id)
		contactPos[name] = full.ContactPos[id]
		contactVel[name] = full.ContactVel[id]
		contactAcc[name] = full.ContactAcc[id]
	}

	q, err := e.kin.InverseKinematics(contactPos, e.system.DefaultPosture())
	if err != nil {
		return locomotion.WholeBodyState{}, errors.Wrap(err, "cannot solve joint positions")
	}
	qd, err := e.kin.JointVelocity(q, contactVel)
	if err != nil {
		return locomotion.WholeBodyState{}, errors.Wrap(err, "cannot solve joint velocities")
	}
	qdd, err := e.kin.JointAcceleration(q, qd, contactAcc)
	if err != nil {
		return locomotion.WholeBodyState{}, errors.Wrap(err, "cannot solve joint accelerations")
	}
	full.JointPos, full.JointVel, full.JointAcc = q, qd, qdd
	return full, nil
}

// FromWholeBodyState maps a whole-body state to a reduced state. The CoP is computed from the contact
// wrenches and the support region holds the contacts whose force exceeds the force threshold.
func (e *Engine) FromWholeBodyState(full locomotion.WholeBodyState) (locomotion.ReducedBodyState, error) {
	if err := e.checkLoaded("from whole-body state"); err != nil {
		return locomotion.ReducedBodyState{}, err
	}
	n, dof := e.feet.Len(), e.system.JointDoF()
	if len(full.JointPos) != dof || len(full.JointVel) != dof {
		return locomotion.ReducedBodyState{}, errors.Errorf("whole-body state must have %d joints", dof)
	}
	if len(full.ContactPos) != n || len(full.ContactVel) != n || len(full.ContactAcc) != n || len(full.ContactEff) != n {
		return locomotion.ReducedBodyState{}, errors.Errorf("whole-body state must describe %d contacts", n)
	}

	base := model.BaseState{Linear: full.BasePos, Angular: full.BaseRPY}
	baseVel := model.BaseState{Linear: full.BaseVel, Angular: full.BaseRPYVel}
	com, err := e.system.SystemCoM(base, full.JointPos)
	if err != nil {
		return locomotion.ReducedBodyState{}, errors.Wrap(err, "cannot compute the center of mass")
	}
	comVel, err := e.system.SystemCoMRate(base, full.JointPos, baseVel, full.JointVel)
	if err != nil {
		return locomotion.ReducedBodyState{}, errors.Wrap(err, "cannot compute the center of mass rate")
	}

	reduced := locomotion.NewReducedBodyState(n)
	reduced.Time = full.Time
	reduced.CoMPos = com
	reduced.CoMVel = comVel
	reduced.CoMAcc = full.BaseAcc
	reduced.AngularPos = full.BaseRPY
	reduced.AngularVel = full.BaseRPYVel
	reduced.AngularAcc = full.BaseRPYAcc

	contactEff := make(map[string]spatialmath.Wrench, n)
	contactPos := make(map[string]r3.Vector, n)
	for _, id := range e.feet.IDs() {
		name := e.feet.Name(id)
		contactEff[name] = full.ContactEff[id]
		contactPos[name] = full.ContactPos[id]
		reduced.FootPos[id] = full.ContactPos[id].Sub(e.comOffset)
		reduced.FootVel[id] = full.ContactVel[id]
		reduced.FootAcc[id] = full.ContactAcc[id]
	}

	cop := e.dyn.CenterOfPressure(contactEff, contactPos)
	reduced.CoP = full.BasePos.Add(spatialmath.FromBaseToWorldFrame(cop, full.BaseRPY))
	for _, name := range e.dyn.ActiveContacts(contactEff, e.cfg.ForceThreshold) {
		id, ok := e.feet.ID(name)
		if !ok {
			return locomotion.ReducedBodyState{}, errors.Errorf("dynamics reported unknown contact %q", name)
		}
		reduced.SupportRegion[id] = full.BasePos.Add(spatialmath.FromBaseToWorldFrame(full.ContactPos[id], full.BaseRPY))
	}
	return reduced, nil
}

// ToWholeBodyTrajectory maps every state of a reduced trajectory, keeping order and length.
func (e *Engine) ToWholeBodyTrajectory(traj locomotion.ReducedBodyTrajectory) (locomotion.WholeBodyTrajectory, error) {
	if err := e.checkLoaded("to whole-body trajectory"); err != nil {
		return nil, err
	}
	out := make(locomotion.WholeBodyTrajectory, len(traj))
	for i := range traj {
		full, err := e.toWholeBodyState(&traj[i])
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		out[i] = full
	}
	return out, nil
}
