package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mdc/common"
	"mdc/config"
	"mdc/convert"
	"mdc/state"
)

const convertHelp = `
SOURCE:
    markdown input, one of
        "[path_to_file]file.md"                        single file
        "[path_to_directory]directory"                 every markdown file under directory, symbolic links are not followed
        "[path_to_archive]archive.zip"                 every markdown file in archive
        "[path_to_archive]archive.zip[path_in_archive]" single file or subtree inside archive

    Files with extensions .md, .markdown, .mdown, .mkd and .txt are treated
    as markdown. Archives found inside archives are skipped.

DESTINATION:
    output directory, current working directory when absent. File names are
    derived from source names or from document.output_name_template.
`

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts markdown file(s) to HTML",
		ArgsUsage:    "SOURCE [DESTINATION]",
		OnUsageError: usageErrorHandler,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: common.OutputFmtFragment.String(),
				Usage: "output `TYPE`: " + strings.Join(common.OutputFmtNames(), " or ")},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "put all results directly into DESTINATION"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing output files"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "decode non UTF-8 file names in archives using `ENCODING` (IANA character set name)"},
		},
		CustomHelpTemplate: cli.CommandHelpTemplate + convertHelp,
	}
}

const dumpConfigHelp = `
DESTINATION:
    file to write configuration to, STDOUT when absent

Without --default the configuration in effect is written: embedded defaults
with values from --config file applied on top.
`

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "dumpconfig",
		Usage:     "Writes default or effective configuration (YAML)",
		ArgsUsage: "[DESTINATION]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write embedded defaults"},
		},
		OnUsageError:       usageErrorHandler,
		Action:             dumpConfig,
		CustomHelpTemplate: cli.CommandHelpTemplate + dumpConfigHelp,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().First()
	if len(fname) == 0 {
		env.Log.Info("Writing configuration", zap.Bool("default", cmd.Bool("default")), zap.String("file", "STDOUT"))
		return writeConfiguration(os.Stdout, env.Cfg, cmd.Bool("default"))
	}

	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	env.Log.Info("Writing configuration", zap.Bool("default", cmd.Bool("default")), zap.String("file", fname))
	if err := writeConfiguration(out, env.Cfg, cmd.Bool("default")); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeConfiguration writes either embedded defaults or cfg as YAML.
func writeConfiguration(w io.Writer, cfg *config.Config, defaults bool) error {
	var (
		data []byte
		err  error
	)
	if defaults {
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
