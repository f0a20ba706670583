package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/forms"
)

// interactive reports whether prompts can be shown on the CLI's input.
func (c *CLI) interactive() bool {
	f, ok := c.in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirmer returns how destructive commands get approval: --yes approves,
// a terminal prompts, anything else refuses.
func (c *CLI) confirmer() forms.Confirmer {
	switch {
	case c.yes:
		return forms.AlwaysConfirm
	case c.interactive():
		return forms.ConfirmFunc(c.promptConfirm)
	default:
		return forms.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
			return false, derrors.New(derrors.ErrCodeConfirmationRequired, "%s (pass --yes)", prompt)
		})
	}
}

func (c *CLI) promptConfirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	err := c.runForm(ctx, huh.NewGroup(
		huh.NewConfirm().Title(prompt).Affirmative("Yes").Negative("No").Value(&ok),
	))
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// promptLabel asks for a node label, starting from value.
func (c *CLI) promptLabel(ctx context.Context, title, value string) (string, error) {
	err := c.runForm(ctx, huh.NewGroup(
		huh.NewInput().
			Title(title).
			Value(&value).
			Validate(derrors.ValidateLabel),
	))
	return value, err
}

// promptEdge asks for the fields of the edge form. Fields already set in in
// are offered as the initial choice.
func (c *CLI) promptEdge(ctx context.Context, title string, nodes []forms.Option, in forms.EdgeInput) (forms.EdgeInput, error) {
	if in.Type == "" {
		in.Type = forms.EdgeTypeOptions()[0].Value
	}
	err := c.runForm(ctx, huh.NewGroup(
		huh.NewSelect[string]().Title(title+": source").Options(huhOptions(nodes)...).Value(&in.Source),
		huh.NewSelect[string]().Title("Target").Options(huhOptions(nodes)...).Value(&in.Target),
		huh.NewSelect[string]().Title("Type").Options(huhOptions(forms.EdgeTypeOptions())...).Value(&in.Type),
	))
	return in, err
}

func (c *CLI) runForm(ctx context.Context, groups ...*huh.Group) error {
	return huh.NewForm(groups...).WithInput(c.in).WithOutput(os.Stderr).RunWithContext(ctx)
}

func huhOptions(opts []forms.Option) []huh.Option[string] {
	out := make([]huh.Option[string], len(opts))
	for i, o := range opts {
		out[i] = huh.NewOption(o.Label, o.Value)
	}
	return out
}
