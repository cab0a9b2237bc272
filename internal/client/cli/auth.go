package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Status prints the session phase, the signed-in user and the last auth
// message.
func (a *App) Status(ctx context.Context, _ []string) error {
	fmt.Fprintf(a.out, "Backend: %s\n", a.config.ServerURL)
	fmt.Fprintf(a.out, "Phase:   %s\n", a.auth.Phase())
	if c := a.auth.Credential(); !c.IsEmpty() {
		fmt.Fprintf(a.out, "User:    %s\n", c.DisplayName)
	}
	if msg := a.auth.Message(); msg != "" {
		fmt.Fprintf(a.out, "Note:    %s\n", msg)
	}
	return nil
}

// Login prompts for credentials (the username may be given as an argument)
// and signs in.
func (a *App) Login(ctx context.Context, args []string) error {
	if a.auth.Phase() == models.PhaseAuthenticated {
		fmt.Fprintln(a.out, "Already signed in. Use 'logout' first.")
		return nil
	}
	return a.authenticate(ctx, args, a.auth.Login, "Logged in as %s\n")
}

// Bootstrap creates the first administrator and signs in as it.
func (a *App) Bootstrap(ctx context.Context, args []string) error {
	if a.auth.Phase() == models.PhaseAuthenticated {
		fmt.Fprintln(a.out, "Already signed in. Use 'logout' first.")
		return nil
	}
	return a.authenticate(ctx, args, a.auth.Bootstrap, "Administrator created, logged in as %s\n")
}

type submitFn func(ctx context.Context, username string, password []byte) error

func (a *App) authenticate(ctx context.Context, args []string, submit submitFn, okFormat string) error {
	username, err := a.usernameArg(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	if err := submit(ctx, username, password); err != nil {
		fmt.Fprintln(a.out, "Error:", a.auth.Message())
		return err
	}
	fmt.Fprintf(a.out, okFormat, a.auth.Credential().DisplayName)
	return nil
}

// usernameArg takes the username from args, or prompts for it offering the
// last submitted one as default.
func (a *App) usernameArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	prompt := "Username"
	draft := a.auth.DraftUsername()
	if draft != "" {
		prompt = fmt.Sprintf("Username [%s]", draft)
	}
	username, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return "", err
	}
	if username == "" {
		username = draft
	}
	return username, nil
}

// Logout ends the session locally.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if a.auth.Phase() != models.PhaseAuthenticated {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	a.auth.Logout(ctx)
	return nil
}
