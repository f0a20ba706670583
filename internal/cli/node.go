package cli

import (
	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/forms"
)

// nodeCommand creates the node command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Add, edit, remove and list nodes",
	}
	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeEditCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeListCommand())
	return cmd
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [label]",
		Short: "Add a node at a random position",
		Example: `  diagrammer node add "Payment Service"
  diagrammer node add          # prompts for the label`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			var in forms.NodeInput
			switch {
			case len(args) == 1:
				in.Label = args[0]
			case c.interactive():
				if in.Label, err = c.promptLabel(ctx, "Node label", ""); err != nil {
					return err
				}
			}

			n, err := sess.forms.AddNode(ctx, in)
			if err != nil {
				return err
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Added node %s", StyleValue.Render(n.OptionLabel()))
			return nil
		},
	}
}

func (c *CLI) nodeEditCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a node's label",
		Example: `  diagrammer node edit 3 --label "Identity Service"
  diagrammer node edit         # pick a node, then edit its label`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			id, err := c.selectID(ctx, args, "Edit Node", sess.forms.NodeOptions())
			if err != nil {
				return err
			}
			in, err := sess.forms.NodePrefill(id)
			if err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("label"):
				in.Label = label
			case c.interactive():
				if in.Label, err = c.promptLabel(ctx, "Node label", in.Label); err != nil {
					return err
				}
			default:
				return derrors.New(derrors.ErrCodeInvalidInput, "--label is required")
			}

			n, err := sess.forms.EditNode(ctx, id, in)
			if err != nil {
				return err
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			c.printSuccess("Updated node %s", StyleValue.Render(n.OptionLabel()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "new label")
	return cmd
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm [id]",
		Aliases:           []string{"remove", "delete"},
		Short:             "Remove a node and every edge attached to it",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			id, err := c.selectID(ctx, args, "Delete Node", sess.forms.NodeOptions())
			if err != nil {
				return err
			}
			before := sess.store.Snapshot().Stats()
			if err := sess.forms.DeleteNode(ctx, id, c.confirmer()); err != nil {
				return c.cancelled(err)
			}
			if err := sess.saveError(); err != nil {
				return err
			}
			after := sess.store.Snapshot().Stats()
			c.printSuccess("Removed node %s", StyleValue.Render(id))
			if dropped := before.Edges - after.Edges; dropped > 0 {
				c.printDetail("%s removed with it", plural(dropped, "edge"))
			}
			return nil
		},
	}
}

func (c *CLI) nodeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			nodes := sess.store.Snapshot().Nodes
			if len(nodes) == 0 {
				c.printInfo("No nodes")
				return nil
			}
			c.printNodes(nodes)
			return nil
		},
	}
}

// completeNodeIDs offers the ids of stored nodes for shell completion.
func (c *CLI) completeNodeIDs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	sess, err := c.completionSession(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer sess.Close()
	return completions(sess.forms.NodeOptions()), cobra.ShellCompDirectiveNoFileComp
}

// completions formats options as "value\tdescription" completion entries.
func completions(opts []forms.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value + "\t" + o.Label
	}
	return out
}
