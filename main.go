package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/tiletrace/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "tiles-x",
			Usage: "number of horizontal tiles; overrides the scene setting",
		},
		cli.IntFlag{
			Name:  "tiles-y",
			Usage: "number of vertical tiles; overrides the scene setting",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed; 0 selects a time-based seed",
		},
	}

	app := cli.NewApp()
	app.Name = "tiletrace"
	app.Usage = "progressive tiled path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error); -v and -vv take precedence",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-scenes",
			Usage:  "list the builtin scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render a still frame",
					Description: `
Progressively render a builtin scene and export the displayed surface as a
png image. Rendering stops after the requested number of frames or, if no
frame count is given, after the requested number of complete passes.

The --move-every option nudges the camera every N frames which suspends
accumulation and exercises the fallback preview.`,
					ArgsUsage: "[scene]",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "frames",
							Usage: "number of frames to render; each frame traces one tile",
						},
						cli.IntFlag{
							Name:  "passes",
							Value: 4,
							Usage: "number of complete passes to render when --frames is not set",
						},
						cli.IntFlag{
							Name:  "move-every",
							Usage: "move the camera every N frames",
						},
						cli.Float64Flag{
							Name:  "scale",
							Value: 1.0,
							Usage: "scale factor for the exported image",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
						cli.StringFlag{
							Name:  "depth-out",
							Usage: "image filename for the fallback depth buffer",
						},
					}, frameFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Display a continuously refining view of a builtin scene. Use the arrow and
page up/down keys to move the camera, drag with the left mouse button to
rotate it and with the right mouse button to pan. Press tab to toggle the
frame time overlay.`,
					ArgsUsage: "[scene]",
					Flags:     frameFlags,
					Action:    cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
