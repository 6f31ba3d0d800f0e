package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/tiletrace/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the builtin scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	if err := writeSceneTable(&buf); err != nil {
		return err
	}
	logger.Noticef("builtin scenes\n%s", buf.String())
	return nil
}

func writeSceneTable(buf *bytes.Buffer) error {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Name", "Description", "Instances", "Lights", "Env map", "Tiles"})

	names := scene.BuiltinNames()
	for _, name := range names {
		sc, err := scene.Builtin(name)
		if err != nil {
			return err
		}
		table.Append([]string{
			name,
			scene.BuiltinDescription(name),
			fmt.Sprintf("%d", len(sc.Instances)),
			fmt.Sprintf("%d", sc.NumLights()),
			fmt.Sprintf("%t", sc.Options.UseEnvMap && sc.Environment != nil),
			fmt.Sprintf("%dx%d", sc.Options.NumTilesX, sc.Options.NumTilesY),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%d", len(names))})

	table.Render()
	return nil
}
