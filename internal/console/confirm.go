package console

import (
	"context"
	"fmt"
)

// Confirmer approves or declines a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

type confirmKey struct{}

// WithConfirmation marks ctx as carrying the user's explicit approval
func WithConfirmation(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmKey{}, true)
}

// ContextConfirmer approves only requests whose context carries approval
type ContextConfirmer struct{}

// Confirm reports whether ctx was built with WithConfirmation
func (ContextConfirmer) Confirm(ctx context.Context, _ string) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
}

// ConfirmationRequired is returned when the Confirmer declined. Nothing was
// changed; repeating the action with approval carries it out.
type ConfirmationRequired struct {
	Prompt string
}

func (e *ConfirmationRequired) Error() string {
	return "confirmation required: " + e.Prompt
}

func deletePrompt(label string) string {
	return fmt.Sprintf(`Are you sure you want to delete "%s"? This action cannot be undone.`, label)
}

func updatePrompt(label string) string {
	return fmt.Sprintf(`Are you sure you want to update "%s"?`, label)
}
