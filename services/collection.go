package services

import (
	"gmaps-scraper/models"
	"gmaps-scraper/storage"
	"gmaps-scraper/utils"
)

// CollectionSet accumulates the new businesses found for one query. Its seen
// set starts with every key already stored in the master table, so only
// businesses never collected before are accepted.
type CollectionSet struct {
	query   string
	records []models.Business
	seen    *utils.KeySet[models.IdentityKey]
}

// NewCollectionSet creates an empty set for query that treats seen as
// already collected. The keys are copied.
func NewCollectionSet(query string, seen []models.IdentityKey) *CollectionSet {
	return &CollectionSet{
		query: query,
		seen:  utils.NewKeySet(seen...),
	}
}

// SeedKeys returns the identity keys of every row in t. A nil table yields none.
func SeedKeys(t *storage.Table) []models.IdentityKey {
	if t == nil {
		return nil
	}
	return t.Keys()
}

// Add appends b and returns true unless a business with the same identity
// key was seen before.
func (c *CollectionSet) Add(b models.Business) bool {
	if !c.seen.Add(b.Key()) {
		return false
	}
	c.records = append(c.records, b)
	return true
}

func (c *CollectionSet) Query() string { return c.query }

// Records returns the accepted businesses in discovery order.
func (c *CollectionSet) Records() []models.Business {
	return append([]models.Business(nil), c.records...)
}

// Len is the number of accepted businesses.
func (c *CollectionSet) Len() int { return len(c.records) }

// SeenCount is the number of known keys, seeded plus accepted.
func (c *CollectionSet) SeenCount() int { return c.seen.Size() }
