package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gmaps-scraper/models"
	"gmaps-scraper/storage"
	"gmaps-scraper/utils"
)

// QueryReport describes one query's run.
type QueryReport struct {
	Query    string
	Seeded   int
	Drive    *DriveResult
	Merge    *MergeResult
	Mirrored int
	Insights *models.InsightReport
}

// Pipeline runs queries one after another: seed from the master table,
// paginate, merge into the aggregates, mirror, report.
type Pipeline struct {
	store    storage.TableStore
	driver   *Driver
	merger   *Merger
	mirror   storage.RecordWriter
	insights *InsightService
	out      io.Writer
	logger   *utils.Logger
}

// PipelineOptions wires a Pipeline. Mirror and Out are optional.
type PipelineOptions struct {
	Store     storage.TableStore
	Source    ListingSource
	Extractor Extractor
	Mirror    storage.RecordWriter
	Out       io.Writer
	Logger    *utils.Logger
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	return &Pipeline{
		store:    opts.Store,
		driver:   NewDriver(opts.Source, opts.Extractor, opts.Logger),
		merger:   NewMerger(opts.Store, opts.Logger),
		mirror:   opts.Mirror,
		insights: NewInsightService(opts.Logger),
		out:      opts.Out,
		logger:   opts.Logger,
	}
}

// Seed returns the keys of every business in the master table. An unreadable
// master table is reported and treated as empty for seeding; the merge will
// refuse to overwrite it.
func (p *Pipeline) Seed(ctx context.Context) []models.IdentityKey {
	master, err := p.store.Load(ctx, storage.MasterTable)
	switch {
	case errors.Is(err, storage.ErrTableNotFound):
		return nil
	case err != nil:
		p.logger.Warn("Failed to read master table: %v", err)
		return nil
	}
	if err := master.CheckIdentityColumns(); err != nil {
		p.logger.Warn("Master table cannot be used for seeding: %v", err)
		return nil
	}

	keys := SeedKeys(master)
	p.logger.Info("Loaded %d previously scraped businesses.", len(keys))
	return keys
}

// RunQuery collects up to total new businesses for query and persists them.
// When pagination fails midway, whatever was accepted is still saved and the
// pagination error is returned together with any save error.
func (p *Pipeline) RunQuery(ctx context.Context, query string, total int) (*QueryReport, error) {
	report := &QueryReport{Query: query}

	seed := p.Seed(ctx)
	report.Seeded = len(seed)
	set := NewCollectionSet(query, seed)

	drive, driveErr := p.driver.Run(ctx, set, total)
	report.Drive = drive
	if driveErr != nil {
		p.logger.Error("Collecting %q stopped: %v", query, driveErr)
		if set.Len() == 0 {
			return report, driveErr
		}
		p.logger.Warn("Saving %d businesses collected before the failure.", set.Len())
	}

	// The browser context may be the one that failed; saving must not depend on it.
	saveCtx := context.WithoutCancel(ctx)
	merge, mergeErr := p.merger.MergeAndSave(saveCtx, set)
	report.Merge = merge
	if mergeErr != nil {
		mergeErr = fmt.Errorf("persist %q: %w", query, mergeErr)
	}

	if p.mirror != nil && set.Len() > 0 {
		n, err := p.mirror.Write(saveCtx, query, set.Records())
		if err != nil {
			p.logger.Error("Mirroring %q failed: %v", query, err)
		}
		report.Mirrored = n
	}

	report.Insights = p.insights.Generate(query, set.Records())
	if p.out != nil && set.Len() > 0 {
		p.insights.Print(p.out, report.Insights)
	}

	return report, errors.Join(driveErr, mergeErr)
}

// RunAll runs every query in order. A failed query is logged and the next
// one still runs, unless ctx was cancelled.
func (p *Pipeline) RunAll(ctx context.Context, queries []string, total int) ([]*QueryReport, error) {
	var reports []*QueryReport
	var errs []error

	for i, q := range queries {
		p.logger.Info("----- %d - %s", i, q)

		report, err := p.RunQuery(ctx, q, total)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return reports, errors.Join(errs...)
}
