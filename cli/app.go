// Package cli contains the locomotion command line: it previews preview sequences read from files and
// reports, or plots, the result.
package cli

import (
	"fmt"
	"io"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"
)

// Flags.
const (
	flagSequence = "sequence"
	flagConfig   = "config"
	flagTerrain  = "terrain"
	flagSummary  = "summary"
	flagStride   = "stride"
	flagOutput   = "output"
	flagDebug    = "debug"
)

func previewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:     flagSequence,
			Aliases:  []string{"s"},
			Required: true,
			Usage:    "read the initial state and preview control from `FILE`",
		},
		&cli.PathFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load preview tunables from `FILE`",
		},
		&cli.PathFlag{
			Name:  flagTerrain,
			Usage: "place footholds on the height map in `FILE`",
		},
	}
}

// NewApp returns a new app with the preview commands, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "locomotion",
		Usage:           "preview legged locomotion",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "preview",
				Usage: "preview a sequence and print the resulting trajectory",
				Flags: append(previewFlags(),
					&cli.BoolFlag{
						Name:  flagSummary,
						Usage: "only compute the state at the end of every phase",
					},
					&cli.IntFlag{
						Name:  flagStride,
						Value: 1,
						Usage: "print every `N`th state",
					},
				),
				Action: PreviewAction,
			},
			{
				Name:   "energy",
				Usage:  "print the center of mass kinetic energy of a sequence",
				Flags:  previewFlags(),
				Action: EnergyAction,
			},
			{
				Name:  "plot",
				Usage: "plot the previewed center of mass, center of pressure and feet",
				Flags: append(previewFlags(),
					&cli.PathFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write the plots to `DIR`",
					},
				),
				Action: PlotAction,
			},
		},
	}
}

func newLogger(c *cli.Context) golog.Logger {
	if c.Bool(flagDebug) {
		return golog.NewDebugLogger("locomotion")
	}
	return zap.NewNop().Sugar()
}

func printf(w io.Writer, format string, a ...interface{}) {
	_, err := fmt.Fprintf(w, format+"\n", a...)
	goutils.UncheckedError(err)
}
