package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrammer/pkg/forms"
)

// edgeCommand creates the edge command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edge",
		Aliases: []string{"edges"},
		Short:   "Add, edit, remove and list edges",
	}
	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeEditCommand())
	cmd.AddCommand(c.edgeRemoveCommand())
	cmd.AddCommand(c.edgeListCommand())
	return cmd
}

// edgeFlags are the edge form's fields as flags.
type edgeFlags struct {
	source, target, typ string
}

func (f *edgeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "source node id")
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "target node id")
	cmd.Flags().StringVar(&f.typ, "type", "", "edge type: smoothstep, default, straight or bezier")

	_ = cmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return completions(forms.EdgeTypeOptions()), cobra.ShellCompDirectiveNoFileComp
	})
}

// apply overwrites the fields of in that were given on the command line.
func (f *edgeFlags) apply(cmd *cobra.Command, in forms.EdgeInput) forms.EdgeInput {
	if cmd.Flags().Changed("source") {
		in.Source = f.source
	}
	if cmd.Flags().Changed("target") {
		in.Target = f.target
	}
	if cmd.Flags().Changed("type") {
		in.Type = f.typ
	}
	return in
}

func (f *edgeFlags) given(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("source") || cmd.Flags().Changed("target") || cmd.Flags().Changed("type")
}

func (c *CLI) edgeAddCommand() *cobra.Command {
	var flags edgeFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Connect two nodes",
		Example: `  diagrammer edge add --source 1 --target 5
  diagrammer edge add -s 2 -t 3 --type bezier
  diagrammer edge add          # prompts for the endpoints`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			in := flags.apply(cmd, forms.EdgeInput{})
			if !flags.given(cmd) && c.interactive() {
				if in, err = c.promptEdge(ctx, "New edge", sess.forms.NodeOptions(), in); err != nil {
					return err
				}
			}

			e, err := sess.forms.AddEdge(ctx, in)
			if err != nil {
				return err
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Added edge %s", StyleValue.Render(e.OptionLabel()))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) edgeEditCommand() *cobra.Command {
	var flags edgeFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change an edge's endpoints or type",
		Example: `  diagrammer edge edit e1-2 --target 3
  diagrammer edge edit e4-5 --type straight`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeEdgeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			id, err := c.selectID(ctx, args, "Edit Edge", sess.forms.EdgeOptions())
			if err != nil {
				return err
			}
			in, err := sess.forms.EdgePrefill(id)
			if err != nil {
				return err
			}
			in = flags.apply(cmd, in)
			if !flags.given(cmd) && c.interactive() {
				if in, err = c.promptEdge(ctx, "Edit edge", sess.forms.NodeOptions(), in); err != nil {
					return err
				}
			}

			e, err := sess.forms.EditEdge(ctx, id, in)
			if err != nil {
				return err
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Updated edge %s", StyleValue.Render(e.OptionLabel()))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm [id]",
		Aliases:           []string{"remove", "delete"},
		Short:             "Remove an edge",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeEdgeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			id, err := c.selectID(ctx, args, "Delete Edge", sess.forms.EdgeOptions())
			if err != nil {
				return err
			}
			if err := sess.forms.DeleteEdge(ctx, id, c.confirmer()); err != nil {
				return c.cancelled(err)
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Removed edge %s", StyleValue.Render(id))
			return nil
		},
	}
}

func (c *CLI) edgeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List edges",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			edges := sess.store.Snapshot().Edges
			if len(edges) == 0 {
				c.printInfo("No edges")
				return nil
			}
			c.printEdges(edges)
			return nil
		},
	}
}

// completeEdgeIDs offers the ids of stored edges for shell completion.
func (c *CLI) completeEdgeIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	sess, err := c.completionSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer sess.Close()
	return completions(sess.forms.EdgeOptions()), cobra.ShellCompDirectiveNoFileComp
}
