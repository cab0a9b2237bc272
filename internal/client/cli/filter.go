package cli

import (
	"context"
	"fmt"
	"strings"
)

// Filter prints the shared filter.
func (a *App) Filter(ctx context.Context, _ []string) error {
	renderFilter(a.out, a.filter)
	if _, err := a.filter.ValidateRange(a.loc); err != nil {
		fmt.Fprintln(a.out, "Warning:", err)
	}
	return nil
}

// Set assigns one filter field: set <field> <value>. Remaining words are
// joined, so "set start 2024-01-01 10:00" works without quotes.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: set <start|end|tag|origin|session|format> <value>")
		return nil
	}
	if err := a.filter.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	return nil
}

// Unset clears an optional filter field.
func (a *App) Unset(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: unset <tag|origin|session|format>")
		return nil
	}
	if err := a.filter.Clear(args[0]); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	return nil
}
