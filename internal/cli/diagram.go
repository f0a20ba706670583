package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/render"
)

// showCommand prints diagram statistics and, with --all, its contents.
func (c *CLI) showCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show diagram statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			d := sess.store.Snapshot()
			c.printKeyValue("Backend", sess.cfg.Storage.Backend)
			if ns := sess.cfg.Storage.Namespace; ns != "" {
				c.printKeyValue("Namespace", ns)
			}
			c.printKeyValue("Source", sess.report.Source)
			if sess.report.Dropped > 0 {
				c.printWarning("%s with missing endpoints dropped on load", plural(sess.report.Dropped, "edge"))
			}
			c.printStats(d.Stats())

			if all {
				if len(d.Nodes) > 0 {
					c.printNodes(d.Nodes)
				}
				if len(d.Edges) > 0 {
					c.printEdges(d.Edges)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list nodes and edges")
	return cmd
}

// clearCommand removes every node and edge.
func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every node and edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.forms.ClearAll(ctx, c.confirmer()); err != nil {
				return c.cancelled(err)
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Cleared the diagram")
			c.printNextStep("Start again", appName+" node add")
			return nil
		},
	}
}

// exportCommand writes the diagram as DOT, SVG or JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		auto     bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the diagram as DOT, SVG or JSON",
		Long: `Export the diagram.

SVG output is rendered with Graphviz. Nodes keep their canvas positions unless
--auto-layout is given. JSON output can be used as a seed file.`,
		Example: `  diagrammer export -o diagram.svg
  diagrammer export --format dot > diagram.dot
  diagrammer export --format json -o seed.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !cmd.Flags().Changed("format") && output != "" {
				if ext := filepath.Ext(output); ext != "" {
					format = ext[1:]
				}
			}

			prog := newProgress(loggerFromContext(ctx))
			data, err := c.export(ctx, sess.store.Snapshot(), format, render.Options{AutoLayout: auto, Detailed: detailed})
			if err != nil {
				return err
			}

			if output == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			prog.done("Exported "+format, "bytes", len(data))
			c.printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatSVG, "output format: dot, svg or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&auto, "auto-layout", false, "let Graphviz place the nodes")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node ids and data in labels")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// export renders d, showing a spinner on a terminal while Graphviz runs.
func (c *CLI) export(ctx context.Context, d diagram.Diagram, format string, opts render.Options) ([]byte, error) {
	if format != render.FormatSVG || !c.interactive() {
		return render.Export(ctx, d, format, opts)
	}
	s := newSpinner(ctx, os.Stderr, "Rendering SVG...")
	s.Start()
	data, err := render.Export(ctx, d, format, opts)
	s.Stop()
	return data, err
}

// changesCommand groups commands that apply change descriptors.
func (c *CLI) changesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Apply change descriptors recorded from the canvas",
	}
	cmd.AddCommand(c.changesApplyCommand())
	return cmd
}

func (c *CLI) changesApplyCommand() *cobra.Command {
	var nodesFile, edgesFile string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a JSON array of node or edge changes",
		Long: `Apply change descriptors, the same ones the canvas posts to
/api/nodes/changes and /api/edges/changes. A file of "-" reads stdin.

Removing a node also removes every edge attached to it.`,
		Example: `  diagrammer changes apply --nodes moves.json
  echo '[{"type":"remove","id":"e1-2"}]' | diagrammer changes apply --edges -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if nodesFile == "" && edgesFile == "" {
				return derrors.New(derrors.ErrCodeInvalidInput, "one of --nodes or --edges is required")
			}
			ctx := cmd.Context()

			var nodeChanges []diagram.NodeChange
			if nodesFile != "" {
				if err := c.readJSON(nodesFile, &nodeChanges); err != nil {
					return err
				}
			}
			var edgeChanges []diagram.EdgeChange
			if edgesFile != "" {
				if err := c.readJSON(edgesFile, &edgeChanges); err != nil {
					return err
				}
			}

			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if len(nodeChanges) > 0 {
				sess.store.ApplyNodeChanges(ctx, nodeChanges)
			}
			if len(edgeChanges) > 0 {
				sess.store.ApplyEdgeChanges(ctx, edgeChanges)
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Applied %s", plural(len(nodeChanges)+len(edgeChanges), "change"))
			c.printStats(sess.store.Snapshot().Stats())
			return nil
		},
	}

	cmd.Flags().StringVar(&nodesFile, "nodes", "", "file with node changes")
	cmd.Flags().StringVar(&edgesFile, "edges", "", "file with edge changes")
	return cmd
}

// readJSON decodes the file at path ("-" for stdin) into v.
func (c *CLI) readJSON(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidChange, err, "decode %s", path)
	}
	return nil
}

// viewCommand groups viewport commands.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Compute viewport transforms",
	}
	cmd.AddCommand(c.viewFitCommand())
	return cmd
}

func (c *CLI) viewFitCommand() *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Print the pan and zoom that fit every node in a view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return derrors.New(derrors.ErrCodeInvalidInput, "--width and --height must be positive")
			}
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			vp := diagram.FitView(sess.store.Snapshot().Nodes, width, height, diagram.DefaultFitOptions())
			c.printKeyValue("x", strconv.FormatFloat(vp.X, 'f', 2, 64))
			c.printKeyValue("y", strconv.FormatFloat(vp.Y, 'f', 2, 64))
			c.printKeyValue("zoom", strconv.FormatFloat(vp.Zoom, 'f', 2, 64))
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 1280, "view width in pixels")
	cmd.Flags().Float64Var(&height, "height", 800, "view height in pixels")
	return cmd
}

// storeCommand groups storage inspection commands.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect diagram storage",
	}
	cmd.AddCommand(c.storePathCommand())
	return cmd
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the diagram is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			keys := sess.persist.Keys()
			c.printKeyValue("Backend", sess.cfg.Storage.Backend)
			c.printKeyValue("Location", backendLocation(sess.cfg.Storage))
			c.printKeyValue("Keys", keys.Nodes+", "+keys.Edges)
			c.printKeyValue("Loaded", sess.report.Source)
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// cancelled turns a declined confirmation into a notice.
func (c *CLI) cancelled(err error) error {
	if derrors.Is(err, derrors.ErrCodeCancelled) {
		c.printInfo("Cancelled")
		return nil
	}
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
