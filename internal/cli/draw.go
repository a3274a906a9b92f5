package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/editor"
	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/pins"
)

// drawCommand creates the interactive editor command.
func (c *CLI) drawCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "draw [snapshot.json]",
		Short: "Edit wires interactively in the terminal",
		Long: `Edit wires interactively in the terminal.

The canvas shows one grid unit per character. Move the cursor with the
arrow keys; enter places wire points (wire tool) or picks up and drops a
node or segment (select tool). Wires landing on a pin, node or segment
connect to it. Wires are coloured by net as you draw.

A missing file starts an empty drawing; ctrl+s writes it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			ed, err := c.openEditor(path)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewDrawModel(ed, path), tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("run editor: %w", err)
			}
			if m, ok := final.(DrawModel); ok && !m.Saved() && path != "" {
				printWarning("Unsaved changes to %s were discarded", path)
			}
			return nil
		},
	}
}

// openEditor loads the snapshot at path into an editing session. Log
// output is discarded since it would garble the canvas.
func (c *CLI) openEditor(path string) (*editor.Editor, error) {
	opts := c.Config.EditorOptions(log.New(io.Discard))
	if path == "" {
		return editor.New(nil, opts), nil
	}
	doc, err := wio.ImportJSON(path, c.Config.Grid.Epsilon)
	if errors.Is(err, fs.ErrNotExist) {
		return editor.New(nil, opts), nil
	}
	if err != nil {
		return nil, err
	}
	return editor.NewWithStore(doc.Store, pins.NewStaticProvider(doc.Components...), opts), nil
}
