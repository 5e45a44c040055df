package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmaps-scraper/models"
	"gmaps-scraper/utils"
)

func runDriver(t *testing.T, src *fakeListing, set *CollectionSet, total int) (*DriveResult, error) {
	t.Helper()
	return NewDriver(src, src, utils.Discard()).Run(context.Background(), set, total)
}

func TestDriverBatchesOfTwoTargetThree(t *testing.T) {
	src := newFakeListing(2, numbered(10)...)
	set := NewCollectionSet("cafes", nil)

	res, err := runDriver(t, src, set, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, res.LoadMoreCalls)
	assert.Equal(t, 3, res.Accepted)
	assert.Equal(t, StopTargetReached, res.Reason)
	assert.Equal(t, []string{"Business 0", "Business 1", "Business 2"}, names(set.Records()))
	assert.Equal(t, []string{"cafes"}, src.submitted)
}

func TestDriverStopsWhenListingStopsGrowing(t *testing.T) {
	src := newFakeListing(5, numbered(5)...)
	set := NewCollectionSet("cafes", nil)

	res, err := runDriver(t, src, set, 50)
	require.NoError(t, err)

	assert.LessOrEqual(t, res.LoadMoreCalls, 2)
	assert.Equal(t, 5, res.Accepted)
	assert.Equal(t, StopEndOfListings, res.Reason)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, src.activations, "each entry is visited once")
}

func TestDriverEmptyListing(t *testing.T) {
	src := newFakeListing(3)
	set := NewCollectionSet("nothing", nil)

	res, err := runDriver(t, src, set, 5)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 1, res.LoadMoreCalls)
	assert.Equal(t, StopEndOfListings, res.Reason)
}

func TestDriverHaltsExactlyAtTarget(t *testing.T) {
	for _, total := range []int{1, 4, 7, 20} {
		src := newFakeListing(3, numbered(100)...)
		set := NewCollectionSet("cafes", nil)

		res, err := runDriver(t, src, set, total)
		require.NoError(t, err)

		assert.Equal(t, total, res.Accepted, "total %d", total)
		assert.Equal(t, total, set.Len(), "total %d", total)
		assert.Equal(t, total, res.Visited, "no entry is visited after the target, total %d", total)
	}
}

func TestDriverSkipsKnownBusinesses(t *testing.T) {
	all := numbered(6)
	seed := []models.IdentityKey{all[0].Key(), all[2].Key()}
	src := newFakeListing(2, all...)
	set := NewCollectionSet("cafes", seed)

	res, err := runDriver(t, src, set, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Business 1", "Business 3", "Business 4"}, names(set.Records()))
	assert.Equal(t, 5, res.Visited)
}

func TestDriverIsolatesEntryFailures(t *testing.T) {
	src := newFakeListing(4, numbered(4)...)
	src.activateErr[1] = errors.New("click intercepted")
	src.extractErr[2] = errors.New("detail pane missing")
	set := NewCollectionSet("cafes", nil)

	res, err := runDriver(t, src, set, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, []string{"Business 0", "Business 3"}, names(set.Records()))
}

func TestDriverSubmitFailureIsFatal(t *testing.T) {
	src := newFakeListing(2, numbered(4)...)
	src.submitErr = errors.New("browser gone")

	res, err := runDriver(t, src, NewCollectionSet("cafes", nil), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, src.submitErr)
	assert.Equal(t, 0, res.Accepted)
}

func TestDriverRejectsNonPositiveTotal(t *testing.T) {
	src := newFakeListing(2, numbered(4)...)
	_, err := runDriver(t, src, NewCollectionSet("cafes", nil), 0)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestDriverStopsOnCancellation(t *testing.T) {
	src := newFakeListing(2, numbered(4)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDriver(src, src, utils.Discard()).Run(ctx, NewCollectionSet("cafes", nil), 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.activations)
}

func TestDriverStateSequence(t *testing.T) {
	src := newFakeListing(2, numbered(2)...)
	d := NewDriver(src, src, utils.Discard())

	var seq []State
	d.OnTransition = func(_, to State) { seq = append(seq, to) }

	_, err := d.Run(context.Background(), NewCollectionSet("cafes", nil), 5)
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateExtracting, StateCheckProgress,
		StateExtracting, StateCheckProgress,
		StateDone,
	}, seq)
}

func TestDriverWarnsOnEmptyIdentity(t *testing.T) {
	src := newFakeListing(3, models.Business{Website: models.String("https://www.a.com")},
		models.Business{Website: models.String("https://www.b.com")}, business("Cafe", "", ""))
	set := NewCollectionSet("cafes", nil)

	var out bytes.Buffer
	res, err := NewDriver(src, src, utils.NewLoggerTo(&out, &out, false)).Run(context.Background(), set, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Accepted)
	assert.Contains(t, out.String(), "Entry 0 has no name, phone or address")
	assert.NotContains(t, out.String(), "Entry 2 has no name")
}
