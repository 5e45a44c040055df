package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmaps-scraper/models"
)

func TestQueryTableSanitises(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"cafes in Oslo", "cafes_in_Oslo"},
		{"  bars/pubs in Köln ", "bars_pubs_in_Köln"},
		{`a:b*c?"d"<e>|f\g`, "a_b_c__d__e__f_g"},
		{"dentists in St. Gallen", "dentists_in_St._Gallen"},
		{"", "query"},
		{"all scraped master", "query_all_scraped_master"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QueryTable(tt.query).Name(), "query %q", tt.query)
	}
}

func TestQueryTableIsStable(t *testing.T) {
	assert.Equal(t, QueryTable("cafes in Oslo"), QueryTable("cafes in Oslo"))
	assert.False(t, QueryTable("cafes in Oslo").IsMaster())
	assert.True(t, MasterTable.IsMaster())
	assert.NotEqual(t, MasterTable, QueryTable("all_scraped_master"))
}

func TestBusinessRowRoundTripsAbsentFields(t *testing.T) {
	in := []models.Business{{
		Name:           models.String("Cafe A"),
		PhoneNumber:    models.String("555-1"),
		ReviewsCount:   models.Int(12),
		ReviewsAverage: models.Float(4.5),
		Latitude:       models.Float(59.91),
	}}

	out := TableFromBusinesses(in).Businesses()
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "Cafe A", *got.Name)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.Website)
	assert.Equal(t, 12, *got.ReviewsCount)
	assert.Equal(t, 4.5, *got.ReviewsAverage)
	assert.Equal(t, 59.91, *got.Latitude)
	assert.Nil(t, got.Longitude)
}

func TestBusinessesToleratesPandasFloats(t *testing.T) {
	tbl := &Table{
		Columns: []string{"name", "reviews_count", "reviews_average"},
		Rows:    [][]string{{"Cafe", "12.0", "n/a"}},
	}
	got := tbl.Businesses()[0]
	assert.Equal(t, 12, *got.ReviewsCount)
	assert.Nil(t, got.ReviewsAverage)
}

func TestBusinessesRejectsOutOfRangeCounts(t *testing.T) {
	tbl := &Table{
		Columns: []string{"name", "reviews_count"},
		Rows:    [][]string{{"a", "1e30"}, {"b", "-3"}, {"c", "12.5"}, {"d", "NaN"}, {"e", "7"}},
	}
	got := tbl.Businesses()
	for _, b := range got[:4] {
		assert.Nil(t, b.ReviewsCount, *b.Name)
	}
	require.NotNil(t, got[4].ReviewsCount)
	assert.Equal(t, 7, *got[4].ReviewsCount)
}

func TestCheckIdentityColumns(t *testing.T) {
	assert.NoError(t, NewTable().CheckIdentityColumns())

	titled := &Table{Columns: []string{"Name", "Phone_Number", "Address", "website"}}
	err := titled.CheckIdentityColumns()
	require.ErrorIs(t, err, ErrMissingIdentityColumns)
	assert.Contains(t, err.Error(), "name, phone_number, address")

	partial := &Table{Columns: []string{"name", "address"}}
	err = partial.CheckIdentityColumns()
	require.ErrorIs(t, err, ErrMissingIdentityColumns)
	assert.Contains(t, err.Error(), "phone_number")
}

func TestKeysUseColumnNames(t *testing.T) {
	tbl := &Table{
		Columns: []string{"address", "extra", "phone_number", "name"},
		Rows:    [][]string{{"1 Main St", "x", "555-1", "Cafe A"}, {"short"}},
	}
	keys := tbl.Keys()
	assert.Equal(t, models.NewIdentityKey("cafe a", "555-1", "1 main st"), keys[0])
	assert.Equal(t, models.NewIdentityKey("", "", "short"), keys[1])
}

func TestProject(t *testing.T) {
	got := Project([]string{"a", "b"}, []string{"name", "phone_number"}, []string{"phone_number", "extra", "name"})
	assert.Equal(t, []string{"b", "", "a"}, got)
}
