package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/errors"
	"github.com/matzehuels/wiregraph/pkg/pipeline"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

// storeCommand creates the document store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored documents",
		Long: `Manage stored documents.

Documents are snapshots saved under a UUID, in the directory set by
storage.dir or in MongoDB when storage.mongo_uri is configured.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeNetsCommand())

	return cmd
}

// withStore opens the store, runs fn and closes the store again.
func (c *CLI) withStore(ctx context.Context, fn func(storage.Store) error) error {
	s, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s storage.Store) error {
				docs, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					printInfo("No documents")
					return nil
				}
				for _, d := range docs {
					fmt.Printf("%s  %s  %s\n", StyleHighlight.Render(d.ID),
						StyleValue.Render(d.Name), StyleDim.Render(d.UpdatedAt.Local().Format(time.DateTime)))
				}
				return nil
			})
		},
	}
}

func (c *CLI) storePutCommand() *cobra.Command {
	var name, id string

	cmd := &cobra.Command{
		Use:   "put [snapshot.json]",
		Short: "Store a snapshot",
		Long: `Store a snapshot.

Without --id a new document is created. With --id the document is created
or replaced under that id. The name defaults to the file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			if err := c.checkSnapshot(data); err != nil {
				return err
			}
			if name == "" {
				name = documentName(args[0])
			}

			return c.withStore(cmd.Context(), func(s storage.Store) error {
				var doc *storage.Document
				if id == "" {
					doc, err = s.Create(cmd.Context(), name, data)
				} else {
					if err := errors.ValidateDocumentID(id); err != nil {
						return err
					}
					doc = &storage.Document{ID: id, Name: name, Snapshot: data}
					err = s.Put(cmd.Context(), doc)
				}
				if err != nil {
					return err
				}
				printSuccess("Stored %s", StyleValue.Render(doc.Name))
				printKeyValue("id", doc.ID)
				printNextStep("Extract nets", appName+" store nets "+doc.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "document name (default: file name)")
	cmd.Flags().StringVar(&id, "id", "", "document id to create or replace")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Print or save a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s storage.Store) error {
				doc, err := getDocument(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				if err := writeFile(output, doc.Snapshot); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printSuccess("Saved %s", StyleValue.Render(doc.Name))
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]...",
		Aliases: []string{"rm"},
		Short:   "Delete stored documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := errors.ValidateDocumentID(id); err != nil {
					return err
				}
			}
			return c.withStore(cmd.Context(), func(s storage.Store) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				printSuccess("Deleted %d document(s)", len(args))
				return nil
			})
		},
	}
}

func (c *CLI) storeNetsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "nets [id]",
		Short: "Show the nets of a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(s storage.Store) error {
				doc, err := getDocument(ctx, s, args[0])
				if err != nil {
					return err
				}
				runner, err := c.newRunner(ctx, noCache)
				if err != nil {
					return err
				}
				defer runner.Close()

				opts := c.pipelineOptions()
				opts.Formats = []string{pipeline.FormatJSON}
				res, err := runner.Execute(ctx, doc.Snapshot, opts)
				if err != nil {
					return err
				}
				fmt.Println(StyleTitle.Render(doc.Name))
				printNetTable(res.Report)
				printStats(res.Stats, res.CacheInfo.ExtractHit)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func getDocument(ctx context.Context, s storage.Store, id string) (*storage.Document, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.Wrap(errors.ErrCodeDocumentNotFound, err, "document %s not found", id)
	}
	return doc, err
}

// checkSnapshot rejects data that does not decode as a snapshot.
func (c *CLI) checkSnapshot(data []byte) error {
	opts := c.pipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	_, err := pipeline.Parse(data, opts)
	return err
}

func documentName(path string) string {
	if path == "-" {
		return "untitled"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
