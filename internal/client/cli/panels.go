package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
)

// Export downloads the logs selected by the filter.
func (a *App) Export(ctx context.Context, _ []string) error {
	err := a.panels.Export(ctx)
	res := a.panels.ExportResult()
	renderStatus(a.out, res)
	if res.HasData {
		fmt.Fprintln(a.out, "Path:", res.Data.Path)
	}
	return err
}

// Stats prints APDU statistics: stats [-n top].
func (a *App) Stats(ctx context.Context, args []string) error {
	fs := a.flagSet("stats")
	top := fs.Int("n", a.config.StatsTop, "entries per list (1-200)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.panels.Stats(ctx, *top)
	res := a.panels.StatsResult()
	renderStatus(a.out, res)
	if res.HasData {
		renderStats(a.out, res.Data)
	}
	return err
}

// Tail prints the newest log rows: tail [-l limit].
func (a *App) Tail(ctx context.Context, args []string) error {
	fs := a.flagSet("tail")
	limit := fs.Int("l", a.config.TailLimit, "number of rows (1-1000)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.panels.Tail(ctx, *limit)
	a.showTail()
	return err
}

// Health prints the backend health snapshot.
func (a *App) Health(ctx context.Context, _ []string) error {
	err := a.panels.Health(ctx)
	a.showHealth()
	return err
}

// Refresh reloads health, stats and tail concurrently and prints all three.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	err := a.panels.Refresh(ctx)

	fmt.Fprintln(a.out, "== Health")
	a.showHealth()
	fmt.Fprintln(a.out, "== Stats")
	res := a.panels.StatsResult()
	renderStatus(a.out, res)
	if res.HasData {
		renderStats(a.out, res.Data)
	}
	fmt.Fprintln(a.out, "== Tail")
	a.showTail()
	return err
}

func (a *App) showTail() {
	res := a.panels.TailResult()
	renderStatus(a.out, res)
	if res.HasData {
		renderTail(a.out, res.Data)
	}
}

func (a *App) showHealth() {
	res := a.panels.HealthResult()
	renderStatus(a.out, res)
	if res.HasData {
		renderHealth(a.out, res.Data, a.loc)
	}
}

// flagSet returns a FlagSet for a REPL command that reports problems on the
// console instead of exiting.
func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(writerOrDiscard(a.out))
	return fs
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
