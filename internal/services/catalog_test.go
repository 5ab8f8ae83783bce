package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/logging"
	"github.com/zach2017/oldtownaltour/internal/models"
	"github.com/zach2017/oldtownaltour/internal/repositories/kv"
	"github.com/zach2017/oldtownaltour/internal/store"
)

var fixedNow = time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)

// hookStore lets a test intercept writes to an otherwise real store.
type hookStore struct {
	LocationStore
	persist func(ctx context.Context, locations []models.Location) error
	writes  int
}

func (h *hookStore) Persist(ctx context.Context, locations []models.Location) error {
	h.writes++
	if h.persist != nil {
		if err := h.persist(ctx, locations); err != nil {
			return err
		}
	}
	return h.LocationStore.Persist(ctx, locations)
}

func newStore() (*store.Store, *kv.MemoryRepository) {
	repo := kv.NewMemoryRepository()
	return store.New(repo, "", kv.BackendMemory), repo
}

func newTestService(t *testing.T, st LocationStore, opts ...Option) CatalogService {
	t.Helper()
	opts = append([]Option{WithProgressStep(0), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewCatalogService(st, logging.Nop{}, opts...)
}

func strPtr(s string) *string { return &s }

func TestList_SeedsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	st, repo := newStore()
	svc := newTestService(t, st)

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 12)
	assert.Equal(t, "loc_oat_001", locs[0].LocationID)
	assert.Equal(t, "Lucas Tavern", locs[0].Name)
	assert.Equal(t, "loc_oat_012", locs[11].LocationID)
	assert.True(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC).Equal(locs[0].CreatedAt))

	raw, err := repo.Get(ctx, store.DefaultKey)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	again, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(locs, again))
}

func TestSeed_ReappliedAfterCorruption(t *testing.T) {
	ctx := context.Background()
	st, repo := newStore()
	svc := newTestService(t, st)

	require.NoError(t, repo.Set(ctx, store.DefaultKey, []byte("{broken")))

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 12)
}

func TestSeed_NotReappliedToEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	for _, l := range locs {
		require.NoError(t, svc.Delete(ctx, l.LocationID))
	}

	locs, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestLoadErrorIsNotReseeded(t *testing.T) {
	boom := errors.New("medium offline")
	st := store.New(&failingGetRepo{Repository: kv.NewMemoryRepository(), err: boom}, "", "memory")
	svc := newTestService(t, st)

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = svc.Health(context.Background())
	require.ErrorIs(t, err, boom)
}

type failingGetRepo struct {
	kv.Repository
	err error
}

func (f *failingGetRepo) Get(context.Context, string) ([]byte, error) { return nil, f.err }

func TestGet(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	loc, err := svc.Get(ctx, "loc_oat_005")
	require.NoError(t, err)
	assert.Equal(t, "BLE-COTTON-005", loc.BeaconID)

	_, err = svc.Get(ctx, "loc_missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	loc, err := svc.Create(ctx, models.LocationInput{BeaconID: "BLE-NEW-013", Name: "Blacksmith Shop"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^loc_[0-9a-z]+_[0-9a-z]{6}$`), loc.LocationID)
	assert.Equal(t, "", loc.Description)
	assert.True(t, fixedNow.Equal(loc.CreatedAt))
	assert.NotNil(t, loc.AudioFiles)
	assert.Empty(t, loc.AudioFiles)
	assert.Empty(t, loc.VideoFiles)
	assert.Empty(t, loc.TextFiles)

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 13)
	assert.Equal(t, loc.LocationID, locs[12].LocationID)
}

func TestCreate_IDsAreUnique(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	seen := map[string]bool{}
	for i := range 50 {
		loc, err := svc.Create(ctx, models.LocationInput{BeaconID: fmt.Sprintf("B-%d", i), Name: "n"})
		require.NoError(t, err)
		require.False(t, seen[loc.LocationID], loc.LocationID)
		seen[loc.LocationID] = true
	}
}

func TestCreate_Concurrent(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, models.LocationInput{BeaconID: fmt.Sprintf("B-%d", i), Name: "n"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 32)
}

func TestCreate_PersistFailure(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	hs := &hookStore{LocationStore: st}
	svc := newTestService(t, hs)

	_, err := svc.List(ctx)
	require.NoError(t, err)

	hs.persist = func(context.Context, []models.Location) error { return common.ErrQuotaExceeded }
	_, err = svc.Create(ctx, models.LocationInput{BeaconID: "B", Name: "N"})
	require.ErrorIs(t, err, common.ErrQuotaExceeded)

	hs.persist = nil
	locs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 12)
}

func TestUpdate_Sparse(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	before, err := svc.Get(ctx, "loc_oat_001")
	require.NoError(t, err)

	after, err := svc.Update(ctx, "loc_oat_001", models.LocationPatch{Name: strPtr("Lucas Tavern (1818)")})
	require.NoError(t, err)

	want := *before
	want.Name = "Lucas Tavern (1818)"
	assert.Empty(t, cmp.Diff(want, *after))

	stored, err := svc.Get(ctx, "loc_oat_001")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, *stored))
}

func TestUpdate_EmptyStringIsApplied(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	after, err := svc.Update(ctx, "loc_oat_002", models.LocationPatch{Description: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", after.Description)
	assert.Equal(t, "Ordeman-Shaw House", after.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	st, _ := newStore()
	svc := newTestService(t, st)

	_, err := svc.Update(context.Background(), "nope", models.LocationPatch{Name: strPtr("x")})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_CascadesAttachments(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	before, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "loc_oat_001"))

	after, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		Locations:  before.Locations - 1,
		AudioFiles: before.AudioFiles - 2,
		VideoFiles: before.VideoFiles - 1,
		TextFiles:  before.TextFiles - 1,
	}, after)

	_, err = svc.Get(ctx, "loc_oat_001")
	require.ErrorIs(t, err, common.ErrorNotFound)

	err = svc.Delete(ctx, "loc_oat_001")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDetach_SearchesAudioFirst(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	loc := models.Location{
		LocationID: "loc_1",
		BeaconID:   "B",
		Name:       "N",
		AudioFiles: []models.FileAttachment{{FileID: "dup", Filename: "a.mp3", URL: "#", Type: models.CategoryAudio}},
		TextFiles: []models.FileAttachment{
			{FileID: "dup", Filename: "a.txt", URL: "#", Type: models.CategoryText},
			{FileID: "t2", Filename: "b.txt", URL: "#", Type: models.CategoryText},
		},
	}
	require.NoError(t, st.Persist(ctx, []models.Location{loc}))
	svc := newTestService(t, st)

	require.NoError(t, svc.Detach(ctx, "loc_1", "dup"))

	got, err := svc.Get(ctx, "loc_1")
	require.NoError(t, err)
	assert.Empty(t, got.AudioFiles)
	require.Len(t, got.TextFiles, 2)
	assert.Equal(t, "a.txt", got.TextFiles[0].Filename)

	require.NoError(t, svc.Detach(ctx, "loc_1", "dup"))
	got, err = svc.Get(ctx, "loc_1")
	require.NoError(t, err)
	require.Len(t, got.TextFiles, 1)
	assert.Equal(t, "t2", got.TextFiles[0].FileID)
}

func TestDetach_Errors(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	hs := &hookStore{LocationStore: st}
	svc := newTestService(t, hs)

	before, err := svc.Get(ctx, "loc_oat_001")
	require.NoError(t, err)
	writes := hs.writes

	err = svc.Detach(ctx, "loc_oat_001", "f_999z")
	require.ErrorIs(t, err, common.ErrFileNotFound)
	assert.Equal(t, writes, hs.writes)

	after, err := svc.Get(ctx, "loc_oat_001")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after))

	err = svc.Detach(ctx, "loc_missing", "f_001a")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHealth(t *testing.T) {
	st, _ := newStore()
	svc := newTestService(t, st)

	h, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Health{Status: "healthy", Provider: "memory"}, h)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	svc := newTestService(t, st)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by name, any case", "TAVERN", []string{"loc_oat_001"}},
		{"by beacon", "ble-grist", []string{"loc_oat_007"}},
		{"by description", "letterpress", []string{"loc_oat_009"}},
		{"no match", "spaceship", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locs, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			var ids []string
			for _, l := range locs {
				ids = append(ids, l.LocationID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestStats_Seed(t *testing.T) {
	st, _ := newStore()
	svc := newTestService(t, st)

	s, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Locations: 12, AudioFiles: 17, VideoFiles: 9, TextFiles: 15}, s)
}

func TestExport(t *testing.T) {
	st, _ := newStore()
	svc := newTestService(t, st)

	env, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AppName, env.AppName)
	assert.Equal(t, 12, env.TotalLocations)
	assert.True(t, fixedNow.Equal(env.ExportDate))
	assert.Equal(t, models.ExportLocation{
		BeaconID:    "BLE-LUCAS-001",
		Name:        "Lucas Tavern",
		Description: env.Locations[0].Description,
		AudioFiles:  2,
		VideoFiles:  1,
		TextFiles:   1,
	}, env.Locations[0])
}

func TestImport_CountsFailures(t *testing.T) {
	ctx := context.Background()
	st, _ := newStore()
	hs := &hookStore{LocationStore: st}
	svc := newTestService(t, hs)

	_, err := svc.List(ctx)
	require.NoError(t, err)

	hs.persist = func(_ context.Context, locs []models.Location) error {
		if locs[len(locs)-1].BeaconID == "BAD" {
			return common.ErrQuotaExceeded
		}
		return nil
	}

	res, err := svc.Import(ctx, []models.ImportRecord{
		{BeaconID: "A", Name: "First"},
		{BeaconID: "BAD", Name: "Second"},
		{BeaconID: "C", Name: "Third", Description: "d"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{Imported: 2, Failed: 1}, res)

	locs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, locs, 14)
	assert.Equal(t, "d", locs[13].Description)
}

func TestImport_CancelledContext(t *testing.T) {
	st, _ := newStore()
	svc := newTestService(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Import(ctx, []models.ImportRecord{{BeaconID: "A", Name: "N"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Imported)
}
