package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/locomotion/locomotion"
	"go.viam.com/locomotion/model/fake"
	"go.viam.com/locomotion/preview"
	"go.viam.com/locomotion/terrain"
)

// session is an engine loaded with the built-in quadruped and the sequence named by the flags.
type session struct {
	logger  golog.Logger
	engine  *preview.Engine
	state   locomotion.ReducedBodyState
	control locomotion.PreviewControl
}

func newSession(c *cli.Context) (*session, error) {
	logger := newLogger(c)

	cfg := preview.DefaultConfig()
	if path := c.Path(flagConfig); path != "" {
		var err error
		if cfg, err = preview.ReadConfig(path, logger); err != nil {
			return nil, err
		}
	}
	engine, err := preview.NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	qp, err := fake.NewQuadruped(logger)
	if err != nil {
		return nil, err
	}
	if err := engine.Load(qp, qp.Kinematics(), qp.Dynamics()); err != nil {
		return nil, err
	}

	if path := c.Path(flagTerrain); path != "" {
		hm, err := terrain.ReadHeightMap(path)
		if err != nil {
			return nil, err
		}
		engine.SetTerrain(hm)
	}

	state, control, err := engine.ReadPreviewSequence(c.Path(flagSequence))
	if err != nil {
		return nil, err
	}
	return &session{logger: logger, engine: engine, state: state, control: control}, nil
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}

func (s *session) supportNames(state *locomotion.ReducedBodyState) string {
	return strings.Join(lo.Map(state.SupportRegion.IDs(), func(id locomotion.FootID, _ int) string {
		return s.engine.Feet().Name(id)
	}), ",")
}

// PreviewAction previews a sequence and prints its states along with CoM speed statistics.
func PreviewAction(c *cli.Context) error {
	stride := c.Int(flagStride)
	if stride < 1 {
		return errors.Errorf("%s must be at least 1, got %d", flagStride, stride)
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	traj, err := s.engine.MultiPhasePreview(s.state, s.control, !c.Bool(flagSummary))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Time", "CoM", "CoM Velocity", "CoP", "Support"})
	for i := 0; i < len(traj); i += stride {
		state := &traj[i]
		t.AppendRow(table.Row{
			i,
			fmt.Sprintf("%.4f", state.Time),
			formatVector(state.CoMPos),
			formatVector(state.CoMVel),
			formatVector(state.CoP),
			s.supportNames(state),
		})
	}
	printf(c.App.Writer, "%s", t.Render())

	speeds := lo.Map(traj, func(state locomotion.ReducedBodyState, _ int) float64 {
		return state.CoMVel.Norm()
	})
	mean, err := stats.Mean(speeds)
	if err != nil {
		return err
	}
	peak, err := stats.Max(speeds)
	if err != nil {
		return err
	}
	sd, err := stats.StandardDeviation(speeds)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%d states over %.4fs", len(traj), traj.Duration())
	printf(c.App.Writer, "com speed: mean %.4f, max %.4f, stddev %.4f", mean, peak, sd)
	return nil
}

// EnergyAction prints the CoM kinetic energy of a sequence.
func EnergyAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	energy, err := s.engine.MultiPhaseEnergy(s.state, s.control)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "com energy: x %.6f, y %.6f, z %.6f", energy.CoM.X, energy.CoM.Y, energy.CoM.Z)
	if !energy.Complete() {
		printf(c.App.ErrWriter, "Warning: the energy of flight phases %v is not accounted for", energy.UnaccountedPhases)
	}
	return nil
}

// PlotAction previews a sequence and plots the CoM and CoP, and the foot heights, over time.
func PlotAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	traj, err := s.engine.MultiPhasePreview(s.state, s.control, true)
	if err != nil {
		return err
	}

	dir := c.Path(flagOutput)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "cannot create plot directory")
	}

	series := func(value func(state *locomotion.ReducedBodyState) float64) plotter.XYs {
		pts := make(plotter.XYs, len(traj))
		for i := range traj {
			pts[i].X = traj[i].Time
			pts[i].Y = value(&traj[i])
		}
		return pts
	}

	com := plot.New()
	com.Title.Text = "Center of mass and center of pressure"
	com.X.Label.Text = "time (s)"
	com.Y.Label.Text = "position (m)"
	if err := plotutil.AddLines(com,
		"com x", series(func(st *locomotion.ReducedBodyState) float64 { return st.CoMPos.X }),
		"com y", series(func(st *locomotion.ReducedBodyState) float64 { return st.CoMPos.Y }),
		"cop x", series(func(st *locomotion.ReducedBodyState) float64 { return st.CoP.X }),
		"cop y", series(func(st *locomotion.ReducedBodyState) float64 { return st.CoP.Y }),
	); err != nil {
		return err
	}

	feet := plot.New()
	feet.Title.Text = "Foot heights"
	feet.X.Label.Text = "time (s)"
	feet.Y.Label.Text = "height (m)"
	var lines []interface{}
	for _, id := range s.engine.Feet().IDs() {
		lines = append(lines, s.engine.Feet().Name(id), series(func(st *locomotion.ReducedBodyState) float64 {
			return st.FootPosWorld(id).Z
		}))
	}
	if err := plotutil.AddLines(feet, lines...); err != nil {
		return err
	}

	for name, p := range map[string]*plot.Plot{"com.png": com, "feet.png": feet} {
		path := filepath.Join(dir, name)
		if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
			return errors.Wrapf(err, "cannot save %s", path)
		}
		printf(c.App.Writer, "wrote %s", path)
	}
	return nil
}
