package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/pipeline"
)

// renderCommand creates the render command. It is the nets command with
// drawing formats as default and file output.
func (c *CLI) renderCommand() *cobra.Command {
	var flags netsFlags
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Draw a snapshot with its nets",
		Long: `Draw a snapshot with its nets.

Wires are coloured by net, junctions are drawn as dots and pins as labelled
boxes. Formats:

  svg       built-in SVG drawing (default)
  graphviz  SVG drawn by Graphviz from pinned node positions
  dot       Graphviz source
  png, pdf  converted from the SVG drawing (requires rsvg-convert)

Files are written next to the input unless -o is given.`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			c.applyConfigDefaults(cmd, &opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats, pipeline.FormatSVG)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if flags.output == "" {
				flags.output = basePath("", args[0])
				if len(opts.Formats) == 1 {
					flags.output += "." + fileExt(opts.Formats[0])
				}
			}
			return c.runNets(cmd.Context(), args[0], opts, flags)
		},
	}
	flags.register(cmd, &opts, pipeline.FormatSVG)
	return cmd
}
