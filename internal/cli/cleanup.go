package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/pipeline"
	"github.com/matzehuels/wiregraph/pkg/topo/cleanup"
)

// cleanupCommand creates the cleanup command.
func (c *CLI) cleanupCommand() *cobra.Command {
	var (
		output  string
		inPlace bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup [snapshot.json]",
		Short: "Normalise the topology of a snapshot",
		Long: `Normalise the topology of a snapshot.

Coincident nodes are merged, zero-length segments dropped and pass-through
nodes on straight wire runs removed, until nothing changes. Pins of the
snapshot's components are bound to the wires first, so wires ending on a
pin are never shortened past it.

The cleaned snapshot is written to stdout, to -o, or back to the input with
--in-place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPlace {
				if output != "" {
					return fmt.Errorf("--in-place and --output are mutually exclusive")
				}
				if args[0] == "-" {
					return fmt.Errorf("--in-place needs a file argument")
				}
				output = args[0]
			}
			return c.runCleanup(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	return cmd
}

func (c *CLI) runCleanup(ctx context.Context, input, output string) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	opts := c.pipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	opts.Logger = c.Logger

	p, err := pipeline.Parse(data, opts)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	st := cleanup.Run(p.Editor.Store())
	logger.Debug("cleanup finished", "passes", st.Passes)

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := wio.WriteJSON(p.Document(), out); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if output == "" || output == "-" {
		prog.done("cleaned up topology", "merged", st.Merged, "dropped", st.Dropped, "collapsed", st.Collapsed, "split", st.Split)
		return nil
	}
	if st.Changed() {
		printSuccess("Cleaned up topology")
	} else {
		printSuccess("Topology already clean")
	}
	printFile(output)
	printDetail("%d merged · %d dropped · %d collapsed · %d split", st.Merged, st.Dropped, st.Collapsed, st.Split)
	return nil
}
