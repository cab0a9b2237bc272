package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/client"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/config"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/services"
	"github.com/dmitrijs2005/nfcgate-console/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive console: the auth controller gates every other
// component, the filter is shared by the export, stats and tail panels, and
// the admin roster stands on its own.
type App struct {
	config *config.Config
	loc    *time.Location
	db     *sql.DB

	auth   *services.AuthController
	panels *services.Panels
	roster *services.AdminRoster
	filter *models.FilterState

	reader *bufio.Reader
	out    io.Writer

	mu        sync.Mutex
	lastPhase models.AuthPhase
}

// NewApp opens the session database and connects the services to the
// backend named in c.
//
// An empty DatabasePath keeps the session in memory only; it is gone when
// the console exits.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	api, err := client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "http")),
	)
	if err != nil {
		return nil, err
	}

	if c.DatabasePath == "" {
		store := services.NewRepositoryCredentialStore(metadata.NewMemoryRepository())
		return newApp(c, store, api, log, os.Stdin, os.Stdout), nil
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := newApp(c, services.NewCredentialStore(db), api, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

// newApp wires the services around api. It is split from NewApp so tests
// can supply their own store, backend and terminal.
func newApp(c *config.Config, store services.CredentialStore, api *client.HTTPClient, log logging.Logger, in io.Reader, out io.Writer) *App {
	loc := c.Location()
	auth := services.NewAuthController(api, store, log)
	api.SetSession(auth)

	filter := models.NewFilterState(time.Now(), loc)
	panels := services.NewPanels(api, filter, services.DirSaver{Dir: c.DownloadDir}, services.PanelOptions{
		TailLimit: c.TailLimit,
		StatsTop:  c.StatsTop,
		Location:  loc,
	}, log)
	roster := services.NewAdminRoster(api, func() string { return auth.Credential().DisplayName }, log)

	a := &App{
		config:    c,
		loc:       loc,
		auth:      auth,
		panels:    panels,
		roster:    roster,
		filter:    filter,
		reader:    bufio.NewReader(in),
		out:       out,
		lastPhase: auth.Phase(),
	}
	auth.OnPhaseChange(a.phaseChanged)
	return a
}

// Run starts the auth lifecycle and the REPL; it returns when the operator
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "NFCGate admin console, backend %s (type 'help' for commands)\n", a.config.ServerURL)

	done := a.auth.Start(ctx)
	if a.auth.Phase() == models.PhaseChecking {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}

	runREPL(ctx, a, a.prompt, a.reader)
}

// Close releases the session database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) phase() models.AuthPhase {
	return a.auth.Phase()
}

func (a *App) prompt() string {
	switch p := a.auth.Phase(); p {
	case models.PhaseAuthenticated:
		return fmt.Sprintf("nfcgate (%s)> ", a.auth.Credential().DisplayName)
	default:
		return fmt.Sprintf("nfcgate [%s]> ", p)
	}
}

// phaseChanged tells the operator about transitions they did not ask for:
// a rejected session or a switch to bootstrap.
func (a *App) phaseChanged(p models.AuthPhase) {
	a.mu.Lock()
	prev := a.lastPhase
	a.lastPhase = p
	a.mu.Unlock()

	switch {
	case p == models.PhaseLogin && prev == models.PhaseAuthenticated:
		fmt.Fprintln(a.out, "Session ended. Use 'login' to sign in again.")
	case p == models.PhaseLogin && prev == models.PhaseChecking:
		fmt.Fprintln(a.out, "Use 'login' to sign in.")
	case p == models.PhaseBootstrap:
		fmt.Fprintln(a.out, "No administrators exist yet. Use 'bootstrap' to create the first one.")
	}
}
