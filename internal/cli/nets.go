package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/pipeline"
)

// netsFlags holds the flags shared by commands that run the pipeline.
type netsFlags struct {
	formats string
	output  string
	noCache bool
}

func (f *netsFlags) register(cmd *cobra.Command, opts *pipeline.Options, defFormat string) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "",
		fmt.Sprintf("output format(s): %s (default %s, comma-separated)", strings.Join(pipeline.ValidFormats, ", "), defFormat))
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.Cleanup, "cleanup", false, "normalise the topology before extraction")
	cmd.Flags().BoolVar(&opts.NodeOnly, "node-only", opts.NodeOnly, "connect wires only at shared nodes")
	cmd.Flags().Float64Var(&opts.GridUnit, "grid", opts.GridUnit, "grid unit of the drawing")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "output scale for drawings")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label nets in drawings")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// netsCommand creates the nets command.
func (c *CLI) netsCommand() *cobra.Command {
	var flags netsFlags
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "nets [snapshot.json]",
		Short: "Extract the nets of a snapshot",
		Long: `Extract the nets of a snapshot.

Every group of electrically connected wires and pins becomes one net. Nets
touching a ground pin are named "0"; the others are numbered N001, N002, ...
in reading order of their anchor point.

With the default text format, one line per net is printed to stdout:

  N001 R1.1 V1.+
  0 GND.1 R1.2 V1.-

Use -f json for the full report with junctions and warnings, or -o to write
files. Results are cached by snapshot content.`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			c.applyConfigDefaults(cmd, &opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats, pipeline.FormatText)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runNets(cmd.Context(), args[0], opts, flags)
		},
	}
	flags.register(cmd, &opts, pipeline.FormatText)
	return cmd
}

// applyConfigDefaults copies config settings into opts for every flag the
// user did not set.
func (c *CLI) applyConfigDefaults(cmd *cobra.Command, opts *pipeline.Options) {
	def := c.pipelineOptions()
	opts.Eps = def.Eps
	opts.CellFactor = def.CellFactor
	opts.Logger = def.Logger
	if !cmd.Flags().Changed("grid") {
		opts.GridUnit = def.GridUnit
	}
	if !cmd.Flags().Changed("node-only") {
		opts.NodeOnly = def.NodeOnly
	}
}

// runNets runs the pipeline and writes the requested formats.
func (c *CLI) runNets(ctx context.Context, input string, opts pipeline.Options, flags netsFlags) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	toStdout := flags.output == "-" || (flags.output == "" && len(opts.Formats) == 1 && textual(opts.Formats[0]))

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinner(ctx, os.Stderr, "Opening cache...")
		spinner.Start()
		defer spinner.Stop()
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if spinner != nil {
		spinner.Update(fmt.Sprintf("Extracting nets from %s...", filepath.Base(input)))
	}
	res, err := runner.Execute(ctx, data, opts)
	if spinner != nil {
		spinner.Stop()
		if err != nil {
			printError("Could not extract nets from %s", filepath.Base(input))
		}
	}
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		toStdout:  toStdout,
	})
	if err != nil {
		return err
	}

	for _, w := range res.Report.Warnings {
		c.Logger.Warn(w.Message, "code", w.Code)
	}
	if toStdout {
		return nil
	}

	printSuccess("Extracted %d nets", len(res.Report.Nets))
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats, res.CacheInfo.ExtractHit)
	if len(res.Report.Unconnected) > 0 {
		refs := make([]string, len(res.Report.Unconnected))
		for i, r := range res.Report.Unconnected {
			refs[i] = r.String()
		}
		printWarning("Unconnected pins: %s", strings.Join(refs, ", "))
	}
	return nil
}

// textual reports whether format is readable on a terminal.
func textual(format string) bool {
	switch format {
	case pipeline.FormatText, pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSnapshot:
		return true
	}
	return false
}
