package storage

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gmaps-scraper/models"
)

func TestBuildInsertBatch(t *testing.T) {
	batch := []models.Business{
		{Name: models.String("Cafe A"), PhoneNumber: models.String("555-1"), ReviewsCount: models.Int(3)},
		{Name: models.String("Cafe B")},
	}

	stmt, args := buildInsertBatch("run-1", "cafes in Oslo", batch)

	assert.Len(t, args, 2*insertColumns)
	assert.Contains(t, stmt, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)")
	assert.Contains(t, stmt, "($15,")
	assert.Contains(t, stmt, "$28)")
	assert.True(t, strings.Contains(stmt, "ON CONFLICT (identity_key) DO NOTHING"))

	assert.Equal(t, "run-1", args[0])
	assert.Equal(t, "cafes in Oslo", args[1])
	assert.Equal(t, sql.NullString{String: "Cafe A", Valid: true}, args[2])
	assert.Equal(t, sql.NullString{}, args[3])
	assert.Equal(t, sql.NullInt64{Int64: 3, Valid: true}, args[9])
	assert.Equal(t, "cafe a\x1f555-1\x1f", args[13])
}
