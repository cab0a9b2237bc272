package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/flagx"
)

// printFn is a test seam for the prompt and REPL messages. In tests, replace it with a stub.
var printFn = fmt.Print

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests can provide a lightweight stub.
type execIface interface {
	phase() models.AuthPhase
	Status(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Bootstrap(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Unset(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Tail(ctx context.Context, args []string) error
	Health(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Admins(ctx context.Context, args []string) error
	AdminAdd(ctx context.Context, args []string) error
	AdminEdit(ctx context.Context, args []string) error
	AdminDel(ctx context.Context, args []string) error
}

const helpSignedOut = `Available commands:
  status                     show session state
  login [username]           sign in
  bootstrap [username]       create the first administrator
  health                     backend health (no login needed)
  help, exit`

const helpSignedIn = `Available commands:
  status                     show session state
  filter                     show the shared filter
  set <field> <value>        set start, end, tag, origin, session or format
  unset <field>              clear tag, origin, session or format
  export                     download logs for the filter into the download dir
  stats [-n top]             APDU statistics for the filter range
  tail [-l limit]            newest log rows (tag/origin/session only)
  health                     backend health
  refresh                    health, stats and tail together
  admins                     list administrators
  admin-add [username]       create an administrator
  admin-edit <id> [-password] [-disable|-enable]
  admin-del <id>             delete an administrator (typed confirmation)
  logout, help, exit`

// commandsNeedingAuth are refused outside the Authenticated phase.
var commandsNeedingAuth = map[string]bool{
	"export": true, "stats": true, "tail": true, "refresh": true,
	"admins": true, "admin-add": true, "admin-edit": true, "admin-del": true,
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Each line is split with flagx.Split (quotes group words), the first word
// selects the command and the rest are passed as its arguments. Data and
// admin commands are only accepted while authenticated.
//
// Errors returned by command handlers are ignored here; handlers print their
// own results. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(promptFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printFn("\n")
			return
		}

		parts, perr := flagx.Split(line)
		if perr != nil {
			printFn("Error: ", perr.Error(), "\n")
			continue
		}
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if commandsNeedingAuth[cmd] && a.phase() != models.PhaseAuthenticated {
			printFn("Not signed in. Use 'login' first.\n")
			continue
		}

		switch cmd {
		case "help":
			if a.phase() == models.PhaseAuthenticated {
				printFn(helpSignedIn, "\n")
			} else {
				printFn(helpSignedOut, "\n")
			}
		case "status":
			_ = a.Status(ctx, args)
		case "login":
			_ = a.Login(ctx, args)
		case "bootstrap":
			_ = a.Bootstrap(ctx, args)
		case "logout":
			_ = a.Logout(ctx, args)
		case "filter":
			_ = a.Filter(ctx, args)
		case "set":
			_ = a.Set(ctx, args)
		case "unset":
			_ = a.Unset(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "stats":
			_ = a.Stats(ctx, args)
		case "tail":
			_ = a.Tail(ctx, args)
		case "health":
			_ = a.Health(ctx, args)
		case "refresh":
			_ = a.Refresh(ctx, args)
		case "admins":
			_ = a.Admins(ctx, args)
		case "admin-add":
			_ = a.AdminAdd(ctx, args)
		case "admin-edit":
			_ = a.AdminEdit(ctx, args)
		case "admin-del":
			_ = a.AdminDel(ctx, args)
		case "exit", "quit":
			printFn("Bye!\n")
			return
		default:
			printFn("Unknown command: ", cmd, " (type 'help')\n")
		}

		if err != nil {
			return
		}
	}
}
