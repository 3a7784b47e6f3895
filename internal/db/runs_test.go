package db

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lightcurve/internal/transit"
)

func testRun() *Run {
	times := []float64{-0.07, -0.035, 0, 0.035, 0.07}
	flux := []float64{1, 0.9853337, 0.9801088176054319, 0.9851, 1}
	return &Run{
		Label:       "wasp-50b",
		Params:      transit.NewParams(0, 1.955, 0.1368, 7.326, 84.74, 0.009, 44, transit.LawQuadratic, 0.4, 0.26),
		Workers:     4,
		Supersample: 1,
		Duration:    1500 * time.Microsecond,
		Times:       times,
		Flux:        flux,
	}
}

func TestRunStore_InsertGet(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()

	run := testRun()
	require.NoError(t, store.Insert(ctx, run))

	_, err := uuid.Parse(run.RunID)
	assert.NoError(t, err, "generated run ID is a UUID")
	assert.NotZero(t, run.CreatedAt)
	assert.Equal(t, 5, run.NSamples)
	assert.Equal(t, 0.9801088176054319, run.MinFlux)
	assert.Equal(t, 0.0, run.MinTime)

	got, err := store.Get(ctx, run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStore_PreservesBits(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()

	run := testRun()
	run.Times = []float64{math.Nextafter(1, 2), 1e-300, -0.1 + 0.2, math.SmallestNonzeroFloat64}
	run.Flux = []float64{1 - 1e-16, 0.1 + 0.2, math.Nextafter(1, 0), 0.5}
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.Get(ctx, run.RunID)
	require.NoError(t, err)
	for i := range run.Times {
		assert.Equal(t, math.Float64bits(run.Times[i]), math.Float64bits(got.Times[i]), "time %d", i)
		assert.Equal(t, math.Float64bits(run.Flux[i]), math.Float64bits(got.Flux[i]), "flux %d", i)
	}
}

func TestRunStore_UniformLawAndEmptySeries(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()

	run := &Run{
		RunID:    "empty-uniform",
		Params:   transit.NewParams(0, 3, 0.1, 9, 90, 0, 90, transit.LawUniform),
		LDSource: "",
	}
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.Get(ctx, "empty-uniform")
	require.NoError(t, err)
	assert.Equal(t, transit.LawUniform, got.Params.Law)
	assert.Empty(t, got.Params.U)
	assert.Empty(t, got.Flux)
	assert.Equal(t, 0.0, got.MinFlux)
}

func TestRunStore_InsertRejectsRaggedRun(t *testing.T) {
	store := NewRunStore(openTestDB(t))

	run := testRun()
	run.Flux = run.Flux[:2]
	assert.Error(t, store.Insert(context.Background(), run))
}

func TestRunStore_DuplicateID(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()

	first := testRun()
	first.RunID = "fixed"
	require.NoError(t, store.Insert(ctx, first))

	second := testRun()
	second.RunID = "fixed"
	assert.Error(t, store.Insert(ctx, second))

	got, err := store.Get(ctx, "fixed")
	require.NoError(t, err)
	assert.Len(t, got.Flux, 5, "failed insert leaves no partial samples")
}

func TestRunStore_List(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	ctx := context.Background()

	for i, label := range []string{"oldest", "middle", "newest"} {
		run := testRun()
		run.Label = label
		run.CreatedAt = int64(1000 + i)
		run.LDSource = "ExoCTK_results.txt"
		require.NoError(t, store.Insert(ctx, run))
	}

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "newest", runs[0].Label)
	assert.Equal(t, "oldest", runs[2].Label)
	assert.Empty(t, runs[0].Flux, "list omits samples")
	assert.Equal(t, 5, runs[0].NSamples)
	assert.Equal(t, "ExoCTK_results.txt", runs[0].LDSource)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRunStore_Delete(t *testing.T) {
	db := openTestDB(t)
	store := NewRunStore(db)
	ctx := context.Background()

	run := testRun()
	require.NoError(t, store.Insert(ctx, run))
	require.NoError(t, store.Delete(ctx, run.RunID))

	_, err := store.Get(ctx, run.RunID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM lightcurve_samples`).Scan(&n))
	assert.Zero(t, n, "samples cascade with their run")

	assert.ErrorIs(t, store.Delete(ctx, run.RunID), ErrRunNotFound)
}

func TestRunStore_GetMissing(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
