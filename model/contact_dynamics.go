package model

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"go.viam.com/locomotion/spatialmath"
)

// ContactDynamics computes the center of pressure and the active contacts from the wrenches
// measured, or predicted, at the contacts.
type ContactDynamics struct {
	// Normal is the contact normal in the base frame. It defaults to +Z.
	Normal r3.Vector
}

var _ Dynamics = (*ContactDynamics)(nil)

func (cd *ContactDynamics) normal() r3.Vector {
	if cd.Normal == (r3.Vector{}) {
		return r3.Vector{Z: 1}
	}
	return cd.Normal.Normalize()
}

// CenterOfPressure averages the contact positions weighted by their normal forces. Contacts pulling
// away from the ground are ignored. The result is zero if no contact carries load.
func (cd *ContactDynamics) CenterOfPressure(
	contactEff map[string]spatialmath.Wrench,
	contactPos map[string]r3.Vector,
) r3.Vector {
	n := cd.normal()
	var cop r3.Vector
	total := 0.
	for name, wrench := range contactEff {
		pos, ok := contactPos[name]
		if !ok {
			continue
		}
		f := wrench.Force.Dot(n)
		if f <= 0 {
			continue
		}
		cop = cop.Add(pos.Mul(f))
		total += f
	}
	if math.Abs(total) < 1e-9 {
		return r3.Vector{}
	}
	return cop.Mul(1 / total)
}

// ActiveContacts returns the sorted names of the contacts whose force magnitude exceeds threshold.
func (cd *ContactDynamics) ActiveContacts(contactEff map[string]spatialmath.Wrench, threshold float64) []string {
	active := make([]string, 0, len(contactEff))
	for name, wrench := range contactEff {
		if wrench.Force.Norm() > threshold {
			active = append(active, name)
		}
	}
	sort.Strings(active)
	return active
}
