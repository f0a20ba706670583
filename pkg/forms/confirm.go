package forms

import (
	"context"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt. It backs the CLI's --yes flag.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// NeverConfirm declines every prompt.
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})

// Preconfirmed reports a confirmation given up front, such as an HTTP
// request's confirm=true parameter. Without it the operation fails with
// CONFIRMATION_REQUIRED instead of prompting.
func Preconfirmed(confirmed bool) Confirmer {
	return ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		if !confirmed {
			return false, derrors.New(derrors.ErrCodeConfirmationRequired, "%s (pass confirm=true)", prompt)
		}
		return true, nil
	})
}

// confirm runs c and turns a decline into CANCELLED.
func confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil {
		c = NeverConfirm
	}
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return derrors.New(derrors.ErrCodeCancelled, "cancelled")
	}
	return nil
}
