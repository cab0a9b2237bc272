package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/client"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/logging"
)

// PanelAPI is the part of the backend the data panels read from.
type PanelAPI interface {
	ExportLogs(ctx context.Context, r models.TimeRange, format models.ExportFormat, scope models.Scope) (*client.Download, error)
	APDUStats(ctx context.Context, r models.TimeRange, top int, scope models.Scope) (*models.APDUStats, error)
	TailLogs(ctx context.Context, limit int, scope models.Scope) ([]models.TailRow, error)
	Health(ctx context.Context) (*models.Health, error)
}

// FileSaver stores a downloaded export under a suggested name.
type FileSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (models.ExportFile, error)
}

// PanelOptions are the defaults used when an operation gets a zero size.
type PanelOptions struct {
	TailLimit int
	StatsTop  int
	Location  *time.Location
}

// Panels runs the export, stats, tail and health panels against one shared
// filter. Each panel keeps its own result; panels never wait on each other.
type Panels struct {
	api    PanelAPI
	filter *models.FilterState
	saver  FileSaver
	opts   PanelOptions
	log    logging.Logger

	export Panel[models.ExportFile]
	stats  Panel[*models.APDUStats]
	tail   Panel[[]models.TailRow]
	health Panel[*models.Health]
}

// NewPanels binds the panels to api, the shared filter and saver.
func NewPanels(api PanelAPI, filter *models.FilterState, saver FileSaver, opts PanelOptions, log logging.Logger) *Panels {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Panels{
		api:    api,
		filter: filter,
		saver:  saver,
		opts:   opts,
		log:    log.With("component", "panels"),
	}
}

func (p *Panels) ExportResult() models.OperationResult[models.ExportFile] { return p.export.Snapshot() }
func (p *Panels) StatsResult() models.OperationResult[*models.APDUStats] { return p.stats.Snapshot() }
func (p *Panels) TailResult() models.OperationResult[[]models.TailRow]   { return p.tail.Snapshot() }
func (p *Panels) HealthResult() models.OperationResult[*models.Health]   { return p.health.Snapshot() }

// validRange checks the filter's bounds before any request is made.
func (p *Panels) validRange() (models.TimeRange, error) {
	rng, err := p.filter.ValidateRange(p.opts.Location)
	if err != nil {
		return models.TimeRange{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return rng, nil
}

// Export downloads the logs matching the filter and saves them through the
// FileSaver.
func (p *Panels) Export(ctx context.Context) error {
	seq := p.export.begin("Exporting…")

	rng, err := p.validRange()
	if err != nil {
		p.export.reject(seq, err.Error())
		return err
	}
	format := p.filter.FormatOrDefault()

	dl, err := p.api.ExportLogs(ctx, rng, format, p.filter.Scope())
	if err != nil {
		p.export.fail(seq, err)
		return fmt.Errorf("export: %w", err)
	}
	defer dl.Body.Close()

	name := dl.Filename
	if name == "" {
		name = ExportFallbackName(rng, format)
	}

	file, err := p.saver.Save(ctx, name, dl.Body)
	if err != nil {
		p.export.fail(seq, err)
		return fmt.Errorf("save export: %w", err)
	}

	p.log.Info(ctx, "export saved", "path", file.Path, "bytes", file.Bytes)
	p.export.finish(seq, file, fmt.Sprintf("Saved %s (%d bytes)", file.Name, file.Bytes))
	return nil
}

// ExportFallbackName is the file name used when the backend suggests none:
// logs_<from>_<to>.<format> with colons replaced by dashes.
func ExportFallbackName(r models.TimeRange, format models.ExportFormat) string {
	name := fmt.Sprintf("logs_%s_%s.%s", r.FromISO(), r.ToISO(), format)
	return strings.ReplaceAll(name, ":", "-")
}

// Stats loads APDU statistics for the filter range. top <= 0 uses the
// configured default.
func (p *Panels) Stats(ctx context.Context, top int) error {
	seq := p.stats.begin("Loading stats…")

	rng, err := p.validRange()
	if err != nil {
		p.stats.reject(seq, err.Error())
		return err
	}
	if top <= 0 {
		top = p.opts.StatsTop
	}

	st, err := p.api.APDUStats(ctx, rng, top, p.filter.Scope())
	if err != nil {
		p.stats.fail(seq, err)
		return fmt.Errorf("stats: %w", err)
	}
	p.stats.finish(seq, st, fmt.Sprintf("%d APDUs parsed, %d errors", st.ParsedAPDU, st.ParseErrors))
	return nil
}

// Tail loads the newest rows matching the filter's tag, origin and session.
// The time range is not used. limit <= 0 uses the configured default.
func (p *Panels) Tail(ctx context.Context, limit int) error {
	seq := p.tail.begin("Loading rows…")
	if limit <= 0 {
		limit = p.opts.TailLimit
	}

	rows, err := p.api.TailLogs(ctx, limit, p.filter.Scope())
	if err != nil {
		p.tail.fail(seq, err)
		return fmt.Errorf("tail: %w", err)
	}
	p.tail.finish(seq, rows, fmt.Sprintf("%d rows", len(rows)))
	return nil
}

// Health loads the backend liveness snapshot. It needs no session.
func (p *Panels) Health(ctx context.Context) error {
	seq := p.health.begin("Checking health…")

	h, err := p.api.Health(ctx)
	if err != nil {
		p.health.fail(seq, err)
		return fmt.Errorf("health: %w", err)
	}
	p.health.finish(seq, h, "Backend status: "+h.Status)
	return nil
}

// Refresh reloads health, stats and tail concurrently. A failure in one
// panel does not cancel the others; the first error is returned.
func (p *Panels) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return p.Health(ctx) })
	g.Go(func() error { return p.Stats(ctx, 0) })
	g.Go(func() error { return p.Tail(ctx, 0) })
	return g.Wait()
}
