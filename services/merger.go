package services

import (
	"context"
	"errors"
	"fmt"

	"gmaps-scraper/models"
	"gmaps-scraper/storage"
	"gmaps-scraper/utils"
)

// Outcome of a merge.
type Outcome string

const (
	OutcomeNoNewData Outcome = "no new data"
	OutcomeSaved     Outcome = "saved"
	OutcomePartial   Outcome = "partially saved"
	OutcomeFailed    Outcome = "failed"
)

// TargetResult reports the merge into one aggregate.
type TargetResult struct {
	Table    storage.TableID
	Existing int
	Total    int
	Err      error
}

// Added is the number of rows the merge appended.
func (r TargetResult) Added() int { return r.Total - r.Existing }

// MergeResult reports a MergeAndSave call.
type MergeResult struct {
	Outcome    Outcome
	NewRecords int
	Targets    []TargetResult
}

// Merger folds a finished CollectionSet into the master and query aggregates.
type Merger struct {
	store  storage.TableStore
	logger *utils.Logger
}

func NewMerger(store storage.TableStore, logger *utils.Logger) *Merger {
	return &Merger{store: store, logger: logger.With("merger")}
}

// MergeAndSave appends set's records to the master table and to the query's
// table, dropping rows whose identity key already occurred earlier.
//
// An empty set touches nothing. A table that exists but cannot be loaded, or
// whose header lacks an identity column, is not saved, so its data is never replaced by a table built from nothing;
// the other table is still saved. All failures are joined in the error.
func (m *Merger) MergeAndSave(ctx context.Context, set *CollectionSet) (*MergeResult, error) {
	records := set.Records()
	res := &MergeResult{NewRecords: len(records)}

	if len(records) == 0 {
		res.Outcome = OutcomeNoNewData
		m.logger.Info("No new businesses found to save.")
		return res, nil
	}

	var errs []error
	for _, id := range []storage.TableID{storage.MasterTable, storage.QueryTable(set.Query())} {
		tr := m.mergeInto(ctx, id, records)
		if tr.Err != nil {
			errs = append(errs, tr.Err)
		}
		res.Targets = append(res.Targets, tr)
	}

	switch {
	case len(errs) == 0:
		res.Outcome = OutcomeSaved
		m.logger.Info("Saved %d new businesses for %q.", len(records), set.Query())
	case len(errs) < len(res.Targets):
		res.Outcome = OutcomePartial
	default:
		res.Outcome = OutcomeFailed
	}
	return res, errors.Join(errs...)
}

func (m *Merger) mergeInto(ctx context.Context, id storage.TableID, records []models.Business) TargetResult {
	tr := TargetResult{Table: id}

	existing, err := m.store.Load(ctx, id)
	switch {
	case errors.Is(err, storage.ErrTableNotFound):
		existing = nil
	case err != nil:
		tr.Err = fmt.Errorf("load %s: %w", id, err)
		m.logger.Error("Not saving %s, existing data could not be read: %v", id, err)
		return tr
	default:
		if err := existing.CheckIdentityColumns(); err != nil {
			tr.Err = fmt.Errorf("load %s: %w", id, err)
			m.logger.Error("Not saving %s, its rows cannot be told apart: %v", id, err)
			return tr
		}
		tr.Existing = existing.Len()
	}

	merged := MergeTables(existing, records)
	if err := m.store.Save(ctx, id, merged); err != nil {
		tr.Err = fmt.Errorf("save %s: %w", id, err)
		m.logger.Error("Saving %s failed: %v", id, err)
		return tr
	}

	tr.Total = merged.Len()
	m.logger.Debug("%s: %d existing + %d new -> %d rows", id, tr.Existing, len(records), tr.Total)
	return tr
}

// MergeTables concatenates existing rows and records, then keeps only the
// first row per identity key. Columns of existing are kept in their order and
// any missing Business column is appended. existing may be nil.
func MergeTables(existing *storage.Table, records []models.Business) *storage.Table {
	out := &storage.Table{}
	if existing != nil {
		out.Columns = append(out.Columns, existing.Columns...)
	}
	for _, c := range storage.BusinessColumns {
		if out.ColumnIndex(c) < 0 {
			out.Columns = append(out.Columns, c)
		}
	}

	var candidates [][]string
	if existing != nil {
		for _, row := range existing.Rows {
			candidates = append(candidates, storage.Project(row, existing.Columns, out.Columns))
		}
	}
	for _, b := range records {
		candidates = append(candidates, storage.Project(storage.BusinessRow(b), storage.BusinessColumns, out.Columns))
	}

	keys := (&storage.Table{Columns: out.Columns, Rows: candidates}).Keys()
	seen := utils.NewKeySet[models.IdentityKey]()
	for i, row := range candidates {
		if seen.Add(keys[i]) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
