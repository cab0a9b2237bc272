package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
)

type fakeExec struct {
	ph    models.AuthPhase
	calls []string
	args  [][]string
}

func (f *fakeExec) phase() models.AuthPhase { return f.ph }

func (f *fakeExec) rec(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) Status(_ context.Context, a []string) error { return f.rec("status", a) }
func (f *fakeExec) Login(_ context.Context, a []string) error {
	f.ph = models.PhaseAuthenticated
	return f.rec("login", a)
}
func (f *fakeExec) Bootstrap(_ context.Context, a []string) error { return f.rec("bootstrap", a) }
func (f *fakeExec) Logout(_ context.Context, a []string) error {
	f.ph = models.PhaseLogin
	return f.rec("logout", a)
}
func (f *fakeExec) Filter(_ context.Context, a []string) error    { return f.rec("filter", a) }
func (f *fakeExec) Set(_ context.Context, a []string) error       { return f.rec("set", a) }
func (f *fakeExec) Unset(_ context.Context, a []string) error     { return f.rec("unset", a) }
func (f *fakeExec) Export(_ context.Context, a []string) error    { return f.rec("export", a) }
func (f *fakeExec) Stats(_ context.Context, a []string) error     { return f.rec("stats", a) }
func (f *fakeExec) Tail(_ context.Context, a []string) error      { return f.rec("tail", a) }
func (f *fakeExec) Health(_ context.Context, a []string) error    { return f.rec("health", a) }
func (f *fakeExec) Refresh(_ context.Context, a []string) error   { return f.rec("refresh", a) }
func (f *fakeExec) Admins(_ context.Context, a []string) error    { return f.rec("admins", a) }
func (f *fakeExec) AdminAdd(_ context.Context, a []string) error  { return f.rec("admin-add", a) }
func (f *fakeExec) AdminEdit(_ context.Context, a []string) error { return f.rec("admin-edit", a) }
func (f *fakeExec) AdminDel(_ context.Context, a []string) error  { return f.rec("admin-del", a) }

func capturePrint(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	orig := printFn
	printFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				sb.WriteString(s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printFn = orig })
	return &sb
}

func TestRunREPL_GatesDataCommandsOnLogin(t *testing.T) {
	out := capturePrint(t)

	input := strings.Join([]string{
		"help",
		"tail",
		"health",
		"login root",
		"help",
		"tail -l 5",
		`set origin "reader 1"`,
		"admin-del 3",
		"logout",
		"export",
		"exit",
		"status",
	}, "\n")

	exec := &fakeExec{ph: models.PhaseLogin}
	runREPL(context.Background(), exec, func() string { return "> " }, rdr(input))

	assert.Equal(t, []string{"health", "login", "tail", "set", "admin-del", "logout"}, exec.calls)
	assert.Equal(t, []string{"root"}, exec.args[1])
	assert.Equal(t, []string{"-l", "5"}, exec.args[2])
	assert.Equal(t, []string{"origin", "reader 1"}, exec.args[3])
	assert.Contains(t, out.String(), "Not signed in")
	assert.Contains(t, out.String(), "admin-edit <id>")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_UnknownAndBadQuoting(t *testing.T) {
	out := capturePrint(t)

	exec := &fakeExec{ph: models.PhaseAuthenticated}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("frobnicate\nset tag \"open\n\nquit\n"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
	assert.Contains(t, out.String(), "unterminated quote")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrint(t)

	exec := &fakeExec{ph: models.PhaseAuthenticated}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("stats\nhealth"))

	assert.Equal(t, []string{"stats", "health"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{ph: models.PhaseAuthenticated}
	runREPL(ctx, exec, func() string { return "" }, rdr("stats\n"))

	assert.Empty(t, exec.calls)
}
