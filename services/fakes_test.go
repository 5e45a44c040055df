package services

import (
	"context"
	"fmt"

	"gmaps-scraper/models"
	"gmaps-scraper/storage"
)

// fakeListing is a ListingSource and Extractor over a fixed list of
// businesses. It shows batch more entries per LoadMore call.
type fakeListing struct {
	businesses []models.Business
	batch      int

	submitted   []string
	loads       int
	current     int
	activations []int

	submitErr   error
	listErr     error
	loadErr     error
	activateErr map[int]error
	extractErr  map[int]error
}

func newFakeListing(batch int, businesses ...models.Business) *fakeListing {
	return &fakeListing{
		businesses:  businesses,
		batch:       batch,
		current:     -1,
		activateErr: map[int]error{},
		extractErr:  map[int]error{},
	}
}

func (f *fakeListing) visible() int {
	n := f.batch * (f.loads + 1)
	if n > len(f.businesses) {
		n = len(f.businesses)
	}
	return n
}

func (f *fakeListing) SubmitQuery(_ context.Context, query string) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, query)
	return nil
}

func (f *fakeListing) CurrentEntries(context.Context) ([]EntryHandle, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	entries := make([]EntryHandle, f.visible())
	for i := range entries {
		entries[i] = EntryHandle{Index: i, Label: f.businesses[i].DisplayName()}
	}
	return entries, nil
}

func (f *fakeListing) LoadMore(context.Context) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads++
	return nil
}

func (f *fakeListing) Activate(_ context.Context, e EntryHandle) error {
	f.activations = append(f.activations, e.Index)
	if err := f.activateErr[e.Index]; err != nil {
		return err
	}
	f.current = e.Index
	return nil
}

func (f *fakeListing) Extract(_ context.Context, _ string) (models.Business, error) {
	if f.current < 0 {
		return models.Business{}, fmt.Errorf("nothing selected")
	}
	if err := f.extractErr[f.current]; err != nil {
		return models.Business{}, err
	}
	return f.businesses[f.current], nil
}

func business(name, phone, address string) models.Business {
	return models.Business{
		Name:        models.String(name),
		PhoneNumber: models.String(phone),
		Address:     models.String(address),
	}
}

func numbered(n int) []models.Business {
	out := make([]models.Business, n)
	for i := range out {
		out[i] = business(fmt.Sprintf("Business %d", i), fmt.Sprintf("555-%d", i), fmt.Sprintf("%d Main St", i))
	}
	return out
}

func names(records []models.Business) []string {
	out := make([]string, len(records))
	for i, b := range records {
		out[i] = models.Value(b.Name)
	}
	return out
}

// memStore is an in-memory TableStore with injectable failures.
type memStore struct {
	tables  map[storage.TableID]*storage.Table
	loadErr map[storage.TableID]error
	saveErr map[storage.TableID]error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{
		tables:  map[storage.TableID]*storage.Table{},
		loadErr: map[storage.TableID]error{},
		saveErr: map[storage.TableID]error{},
	}
}

func (m *memStore) Load(_ context.Context, id storage.TableID) (*storage.Table, error) {
	if err := m.loadErr[id]; err != nil {
		return nil, err
	}
	t, ok := m.tables[id]
	if !ok {
		return nil, storage.ErrTableNotFound
	}
	return t, nil
}

func (m *memStore) Save(_ context.Context, id storage.TableID, t *storage.Table) error {
	if err := m.saveErr[id]; err != nil {
		return err
	}
	m.saves++
	m.tables[id] = t
	return nil
}

func (m *memStore) Close() error { return nil }

type recordingMirror struct {
	queries []string
	written int
	err     error
}

func (r *recordingMirror) Write(_ context.Context, query string, records []models.Business) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.queries = append(r.queries, query)
	r.written += len(records)
	return len(records), nil
}

func (r *recordingMirror) Close() error { return nil }
