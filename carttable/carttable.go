// Package carttable implements the cart-table model of legged locomotion: the horizontal
// motion of the center of mass is driven by a center of pressure that moves linearly over a phase,
// while the CoM height stays constant.
package carttable

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/locomotion/locomotion"
)

// ErrResponseNotInitialized is returned when a response is requested before InitResponse.
var ErrResponseNotInitialized = errors.New("cart-table response has not been initialized")

// Properties are the physical parameters of the cart-table model.
type Properties struct {
	Mass           float64 `json:"mass"`
	Gravity        float64 `json:"gravity"`
	PendulumHeight float64 `json:"pendulum_height"`
}

// Validate ensures all parts of the properties are valid.
func (p Properties) Validate() error {
	var err error
	if p.Mass <= 0 {
		err = multierr.Append(err, errors.Errorf("mass must be positive, got %v", p.Mass))
	}
	if p.Gravity <= 0 {
		err = multierr.Append(err, errors.Errorf("gravity must be positive, got %v", p.Gravity))
	}
	if p.PendulumHeight <= 0 {
		err = multierr.Append(err, errors.Errorf("pendulum height must be positive, got %v", p.PendulumHeight))
	}
	return err
}

// ControlParams describe the CoP motion over one stance phase.
type ControlParams struct {
	Duration float64
	CoPShift r2.Point
}

// closed form solution along one horizontal axis
type axisResponse struct {
	cop0, copRate float64
	beta1, beta2  float64
}

func newAxisResponse(pos, vel, cop, copShift, duration, omega float64) axisResponse {
	rate := 0.
	if duration > 0 {
		rate = copShift / duration
	}
	return axisResponse{
		cop0:    cop,
		copRate: rate,
		beta1:   0.5 * ((pos - cop) + (vel-rate)/omega),
		beta2:   0.5 * ((pos - cop) - (vel-rate)/omega),
	}
}

func (a axisResponse) cop(dt float64) float64 {
	return a.cop0 + a.copRate*dt
}

func (a axisResponse) position(dt, omega float64) float64 {
	return a.cop(dt) + a.beta1*math.Exp(omega*dt) + a.beta2*math.Exp(-omega*dt)
}

func (a axisResponse) velocity(dt, omega float64) float64 {
	return a.copRate + omega*(a.beta1*math.Exp(omega*dt)-a.beta2*math.Exp(-omega*dt))
}

// integral of the squared velocity over [0, duration]
func (a axisResponse) squaredVelocityIntegral(duration, omega float64) float64 {
	e := math.Exp(omega * duration)
	ei := math.Exp(-omega * duration)
	return a.copRate*a.copRate*duration +
		2*a.copRate*(a.beta1*(e-1)+a.beta2*(ei-1)) +
		omega*a.beta1*a.beta1*(e*e-1)/2 -
		2*omega*omega*a.beta1*a.beta2*duration +
		omega*a.beta2*a.beta2*(1-ei*ei)/2
}

// Model is a cart-table model. Its response is initialized once per phase and can then be
// evaluated at any time of the phase. A Model is not safe for concurrent initialization but
// ComputeResponse may be called concurrently once the response is initialized.
type Model struct {
	props Properties
	omega float64

	initialized bool
	start       locomotion.ReducedBodyState
	x, y        axisResponse
}

// NewModel returns a cart-table model with the given properties.
func NewModel(props Properties) (*Model, error) {
	m := &Model{}
	if err := m.SetModelProperties(props); err != nil {
		return nil, err
	}
	return m, nil
}

// SetModelProperties changes the physical parameters of the model and invalidates the response.
func (m *Model) SetModelProperties(props Properties) error {
	if err := props.Validate(); err != nil {
		return errors.Wrap(err, "invalid cart-table properties")
	}
	m.props = props
	m.omega = math.Sqrt(props.Gravity / props.PendulumHeight)
	m.initialized = false
	return nil
}

// Properties returns the physical parameters of the model.
func (m *Model) Properties() Properties {
	return m.props
}

// PendulumHeight returns the height of the CoM above the CoP.
func (m *Model) PendulumHeight() float64 {
	return m.props.PendulumHeight
}

// Omega returns the natural frequency sqrt(g/h) of the model.
func (m *Model) Omega() float64 {
	return m.omega
}

// InitResponse computes the closed form solution for a phase starting at state.
func (m *Model) InitResponse(state *locomotion.ReducedBodyState, params ControlParams) error {
	if m.omega == 0 {
		return errors.New("cart-table properties have not been set")
	}
	if params.Duration <= 0 {
		return errors.Errorf("phase duration must be positive, got %v", params.Duration)
	}
	m.start = locomotion.ReducedBodyState{
		Time:   state.Time,
		CoMPos: state.CoMPos,
		CoMVel: state.CoMVel,
		CoP:    state.CoP,
	}
	m.x = newAxisResponse(state.CoMPos.X, state.CoMVel.X, state.CoP.X, params.CoPShift.X, params.Duration, m.omega)
	m.y = newAxisResponse(state.CoMPos.Y, state.CoMVel.Y, state.CoP.Y, params.CoPShift.Y, params.Duration, m.omega)
	m.initialized = true
	return nil
}

// ComputeResponse writes the CoM and CoP motion at the absolute time t into out. Other fields of out
// are left untouched.
func (m *Model) ComputeResponse(out *locomotion.ReducedBodyState, t float64) error {
	if !m.initialized {
		return ErrResponseNotInitialized
	}
	dt := t - m.start.Time
	w2 := m.omega * m.omega
	out.Time = t
	if dt == 0 {
		out.CoMPos = m.start.CoMPos
		out.CoMVel = m.start.CoMVel
		out.CoP = m.start.CoP
	} else {
		out.CoMPos = r3.Vector{X: m.x.position(dt, m.omega), Y: m.y.position(dt, m.omega), Z: m.start.CoMPos.Z}
		out.CoMVel = r3.Vector{X: m.x.velocity(dt, m.omega), Y: m.y.velocity(dt, m.omega)}
		out.CoP = r3.Vector{X: m.x.cop(dt), Y: m.y.cop(dt), Z: m.start.CoP.Z}
	}
	out.CoMAcc = r3.Vector{
		X: w2 * (out.CoMPos.X - out.CoP.X),
		Y: w2 * (out.CoMPos.Y - out.CoP.Y),
	}
	return nil
}

// ComputeSystemEnergy returns the kinetic energy integral 1/2 m int(v^2 dt) of the phase per axis. The
// height is held constant so the vertical component is zero. The response is initialized for the
// phase as a side effect.
func (m *Model) ComputeSystemEnergy(state *locomotion.ReducedBodyState, params ControlParams) (r3.Vector, error) {
	if err := m.InitResponse(state, params); err != nil {
		return r3.Vector{}, err
	}
	half := 0.5 * m.props.Mass
	return r3.Vector{
		X: half * m.x.squaredVelocityIntegral(params.Duration, m.omega),
		Y: half * m.y.squaredVelocityIntegral(params.Duration, m.omega),
	}, nil
}
