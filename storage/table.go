package storage

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gmaps-scraper/models"
)

// BusinessColumns is the flattened column order of a Business.
var BusinessColumns = []string{
	"name", "address", "domain", "website", "phone_number", "category",
	"location", "reviews_count", "reviews_average", "latitude", "longitude",
}

// IdentityColumns are the columns a row's identity key is read from.
var IdentityColumns = []string{"name", "phone_number", "address"}

// ErrMissingIdentityColumns is returned by CheckIdentityColumns when a table
// header lacks one of IdentityColumns. Every row of such a table would get
// the same key.
var ErrMissingIdentityColumns = errors.New("missing identity columns")

const masterName = "all_scraped_master"

var unsafeRune = regexp.MustCompile(`[^\p{L}\p{N}._-]`)

// TableID names a durable aggregate: the master table or one query's table.
type TableID struct {
	name   string
	master bool
}

// MasterTable is the aggregate spanning every query ever run.
var MasterTable = TableID{name: masterName, master: true}

// QueryTable returns the id of the aggregate scoped to query. Every rune that
// is not a letter, digit, '.', '-' or '_' is replaced with '_', so the same
// query always maps to the same table.
func QueryTable(query string) TableID {
	name := unsafeRune.ReplaceAllString(strings.TrimSpace(query), "_")
	switch name {
	case "":
		name = "query"
	case masterName:
		name = "query_" + name
	}
	return TableID{name: name}
}

// Name is the sanitized, path-safe table name.
func (id TableID) Name() string { return id.name }

func (id TableID) IsMaster() bool { return id.master }

func (id TableID) String() string {
	if id.master {
		return "master"
	}
	return "query:" + id.name
}

// Table is a tabular aggregate: a header and string cells. Empty cells are
// absent values. Columns unknown to Business are kept as-is.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with the Business columns.
func NewTable() *Table {
	return &Table{Columns: append([]string(nil), BusinessColumns...)}
}

// TableFromBusinesses flattens records, in order, into a new table.
func TableFromBusinesses(records []models.Business) *Table {
	t := NewTable()
	for _, b := range records {
		t.Rows = append(t.Rows, BusinessRow(b))
	}
	return t
}

func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// CheckIdentityColumns reports the IdentityColumns missing from t's header.
// Column names are matched exactly.
func (t *Table) CheckIdentityColumns() error {
	var missing []string
	for _, c := range IdentityColumns {
		if t.ColumnIndex(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingIdentityColumns, strings.Join(missing, ", "))
	}
	return nil
}

// Keys returns the identity key of every row, in row order.
func (t *Table) Keys() []models.IdentityKey {
	name, phone, addr := t.ColumnIndex("name"), t.ColumnIndex("phone_number"), t.ColumnIndex("address")
	keys := make([]models.IdentityKey, len(t.Rows))
	for i, row := range t.Rows {
		keys[i] = models.NewIdentityKey(cell(row, name), cell(row, phone), cell(row, addr))
	}
	return keys
}

// Businesses converts the rows back to records. Unparseable numeric cells
// become absent values.
func (t *Table) Businesses() []models.Business {
	idx := make([]int, len(BusinessColumns))
	for i, c := range BusinessColumns {
		idx[i] = t.ColumnIndex(c)
	}

	out := make([]models.Business, 0, len(t.Rows))
	for _, row := range t.Rows {
		get := func(i int) string { return cell(row, idx[i]) }
		out = append(out, models.Business{
			Name:           optString(get(0)),
			Address:        optString(get(1)),
			Domain:         optString(get(2)),
			Website:        optString(get(3)),
			PhoneNumber:    optString(get(4)),
			Category:       optString(get(5)),
			Location:       optString(get(6)),
			ReviewsCount:   optInt(get(7)),
			ReviewsAverage: optFloat(get(8)),
			Latitude:       optFloat(get(9)),
			Longitude:      optFloat(get(10)),
		})
	}
	return out
}

// BusinessRow flattens b in BusinessColumns order.
func BusinessRow(b models.Business) []string {
	return []string{
		models.Value(b.Name),
		models.Value(b.Address),
		models.Value(b.Domain),
		models.Value(b.Website),
		models.Value(b.PhoneNumber),
		models.Value(b.Category),
		models.Value(b.Location),
		formatInt(b.ReviewsCount),
		formatFloat(b.ReviewsAverage),
		formatFloat(b.Latitude),
		formatFloat(b.Longitude),
	}
}

// Project returns row re-ordered to match columns, given the row's own
// column order. Missing cells are empty.
func Project(row, rowColumns, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		for j, rc := range rowColumns {
			if rc == c {
				out[i] = cell(row, j)
				break
			}
		}
	}
	return out
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(s string) *int {
	if s == "" {
		return nil
	}
	// pandas writes integer columns with gaps as floats ("12.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > math.MaxInt32 || f != math.Trunc(f) {
		return nil
	}
	n := int(f)
	return &n
}

func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
