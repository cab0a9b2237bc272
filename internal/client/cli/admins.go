package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/common"
)

// Admins reloads and prints the administrator roster.
func (a *App) Admins(ctx context.Context, _ []string) error {
	err := a.roster.List(ctx)
	a.showRoster()
	return err
}

func (a *App) showRoster() {
	res := a.roster.ListResult()
	renderStatus(a.out, res)
	if res.HasData {
		renderAdmins(a.out, res.Data, a.auth.Credential().DisplayName, a.loc)
	}
}

// AdminAdd creates an administrator: admin-add [username]. The password is
// asked twice.
func (a *App) AdminAdd(ctx context.Context, args []string) error {
	username, err := a.textArg(args, "New username")
	if err != nil {
		return err
	}

	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.roster.Create(ctx, username, password)
	a.showAction()
	return err
}

// AdminEdit changes a password and/or the disabled flag:
// admin-edit <id> [-password] [-disable|-enable].
func (a *App) AdminEdit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: admin-edit <id> [-password] [-disable|-enable]")
		return nil
	}
	id, err := a.targetID(ctx, args[0])
	if err != nil {
		return err
	}

	fs := a.flagSet("admin-edit")
	setPassword := fs.Bool("password", false, "prompt for a new password")
	disable := fs.Bool("disable", false, "disable the account")
	enable := fs.Bool("enable", false, "enable the account")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *disable && *enable {
		fmt.Fprintln(a.out, "Error: -disable and -enable are exclusive")
		return nil
	}

	edit := models.PendingEdit{TargetID: id}
	if *disable || *enable {
		v := *disable
		edit.Disabled = &v
	}
	if *setPassword {
		pw, err := a.newPassword()
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		edit.Password = pw
	}

	err = a.roster.Update(ctx, edit)
	a.showAction()
	return err
}

// AdminDel deletes an administrator after the operator types its username:
// admin-del <id>.
func (a *App) AdminDel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: admin-del <id>")
		return nil
	}
	id, err := a.targetID(ctx, args[0])
	if err != nil {
		return err
	}

	del := models.PendingDelete{TargetID: id}
	if target, ok := a.roster.Lookup(id); ok {
		typed, err := getSimpleText(a.reader, fmt.Sprintf("Type %q to confirm deletion", target.Username), a.out)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		del.TypedUsername = typed
	}

	err = a.roster.Delete(ctx, del)
	a.showAction()
	return err
}

func (a *App) showAction() {
	renderStatus(a.out, a.roster.ActionResult())
}

// targetID parses an account id, loading the roster first when it is empty
// so the id can be resolved.
func (a *App) targetID(ctx context.Context, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Error: invalid id %q\n", s)
		return 0, err
	}
	if len(a.roster.Accounts()) == 0 {
		if err := a.roster.List(ctx); err != nil {
			renderStatus(a.out, a.roster.ListResult())
			return 0, err
		}
	}
	return id, nil
}

func (a *App) textArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		log.Printf("error: %v", err)
	}
	return s, err
}

// newPassword asks for a password twice and fails when the entries differ.
func (a *App) newPassword() ([]byte, error) {
	pw, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return nil, err
	}
	again, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(pw)
		log.Printf("error: %v", err)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		common.WipeByteArray(pw)
		fmt.Fprintln(a.out, "Error: passwords do not match")
		return nil, errPasswordMismatch
	}
	return pw, nil
}

var errPasswordMismatch = errors.New("passwords do not match")
