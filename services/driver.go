package services

import (
	"context"
	"errors"
	"fmt"

	"gmaps-scraper/models"
	"gmaps-scraper/utils"
)

// ErrInvalidTotal is returned by Driver.Run when the requested number of new
// businesses is not positive.
var ErrInvalidTotal = errors.New("total must be positive")

// EntryHandle addresses one rendered result card by its position in the
// results list. The list only grows while scrolling, so positions are stable
// within a query.
type EntryHandle struct {
	Index int
	Label string
}

// ListingSource is the paginated results UI.
type ListingSource interface {
	SubmitQuery(ctx context.Context, query string) error
	CurrentEntries(ctx context.Context) ([]EntryHandle, error)
	LoadMore(ctx context.Context) error
	Activate(ctx context.Context, entry EntryHandle) error
}

// Extractor reads the business currently shown in the detail view. Missing
// optional elements yield absent fields, not errors.
type Extractor interface {
	Extract(ctx context.Context, query string) (models.Business, error)
}

// EntryOutcome is the result of processing one entry: either an extracted
// business or a skip with its reason.
type EntryOutcome struct {
	Entry  EntryHandle
	Record *models.Business
	Reason string
	Err    error
}

func Extracted(entry EntryHandle, b models.Business) EntryOutcome {
	return EntryOutcome{Entry: entry, Record: &b}
}

func Skipped(entry EntryHandle, reason string, err error) EntryOutcome {
	return EntryOutcome{Entry: entry, Reason: reason, Err: err}
}

// IsExtracted reports whether a business was read from the entry.
func (o EntryOutcome) IsExtracted() bool { return o.Record != nil }

// State is a pagination state.
type State int

const (
	StateSearching State = iota
	StateExtracting
	StateCheckProgress
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateExtracting:
		return "extracting"
	case StateCheckProgress:
		return "check-progress"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StopReason says why a run reached StateDone.
type StopReason string

const (
	StopTargetReached StopReason = "target reached"
	StopEndOfListings StopReason = "end of listings"
)

// DriveResult summarises one query's pagination.
type DriveResult struct {
	Accepted      int
	Visited       int
	Skipped       int
	LoadMoreCalls int
	Reason        StopReason
}

// Driver walks a ListingSource until the requested number of new businesses
// has been accepted or the listing stops growing.
type Driver struct {
	source    ListingSource
	extractor Extractor
	logger    *utils.Logger

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)
}

// NewDriver creates a Driver over source and extractor.
func NewDriver(source ListingSource, extractor Extractor, logger *utils.Logger) *Driver {
	return &Driver{source: source, extractor: extractor, logger: logger.With("driver")}
}

// Run submits set's query and feeds extracted businesses into set until
// total new ones were accepted or two consecutive entry counts are equal.
// Per-entry failures are logged and skipped. Failures of the listing itself
// end the run with an error; the set keeps whatever was accepted.
func (d *Driver) Run(ctx context.Context, set *CollectionSet, total int) (*DriveResult, error) {
	if total <= 0 {
		return nil, ErrInvalidTotal
	}

	res := &DriveResult{}
	state := StateSearching
	previousCount := -1
	next := 0

	transition := func(to State) {
		if d.OnTransition != nil {
			d.OnTransition(state, to)
		}
		d.logger.Debug("%s -> %s", state, to)
		state = to
	}

	for {
		switch state {
		case StateSearching:
			if err := d.source.SubmitQuery(ctx, set.Query()); err != nil {
				return res, fmt.Errorf("submit query %q: %w", set.Query(), err)
			}
			transition(StateExtracting)

		case StateExtracting:
			entries, err := d.source.CurrentEntries(ctx)
			if err != nil {
				return res, fmt.Errorf("list entries: %w", err)
			}

			for ; next < len(entries) && res.Accepted < total; next++ {
				if err := ctx.Err(); err != nil {
					return res, err
				}

				outcome := d.processEntry(ctx, set.Query(), entries[next])
				res.Visited++

				switch {
				case !outcome.IsExtracted():
					res.Skipped++
					d.logger.Warn("Skipping entry %d (%s): %s: %v",
						outcome.Entry.Index, outcome.Entry.Label, outcome.Reason, outcome.Err)
				case set.Add(*outcome.Record):
					res.Accepted++
					if outcome.Record.Key().IsEmpty() {
						d.logger.Warn("Entry %d has no name, phone or address; later such entries count as duplicates",
							outcome.Entry.Index)
					}
					d.logger.Info("New business added (%d/%d): %s",
						res.Accepted, total, outcome.Record.DisplayName())
				default:
					d.logger.Debug("Already collected: %s", outcome.Record.DisplayName())
				}
			}
			transition(StateCheckProgress)

		case StateCheckProgress:
			entries, err := d.source.CurrentEntries(ctx)
			if err != nil {
				return res, fmt.Errorf("count entries: %w", err)
			}

			if len(entries) == previousCount {
				res.Reason = StopEndOfListings
				d.logger.Info("Reached the end of listings. Only %d unique businesses found.", res.Accepted)
				transition(StateDone)
				continue
			}
			previousCount = len(entries)

			if err := d.source.LoadMore(ctx); err != nil {
				return res, fmt.Errorf("load more entries: %w", err)
			}
			res.LoadMoreCalls++

			if res.Accepted >= total {
				res.Reason = StopTargetReached
				transition(StateDone)
				continue
			}
			transition(StateExtracting)

		case StateDone:
			return res, nil
		}
	}
}

func (d *Driver) processEntry(ctx context.Context, query string, entry EntryHandle) EntryOutcome {
	if err := d.source.Activate(ctx, entry); err != nil {
		return Skipped(entry, "activate", err)
	}
	b, err := d.extractor.Extract(ctx, query)
	if err != nil {
		return Skipped(entry, "extract", err)
	}
	return Extracted(entry, b)
}
