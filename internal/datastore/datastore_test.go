package datastore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/observability"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	s := &conf.Settings{}
	s.Datastore.Driver = conf.DriverSQLite
	s.Datastore.QueryTimeout = 5 * time.Second
	s.Datastore.SQLite.Path = filepath.Join(t.TempDir(), "cropsevai.db")
	return s
}

// setupTestStore opens a migrated SQLite store in a temp directory.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	ds, err := New(testSettings(t), nil, nil)
	require.NoError(t, err)
	store, ok := ds.(*SQLiteStore)
	require.True(t, ok)

	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// seedWheatScenario inserts one crop with two diseases.
func seedWheatScenario(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&Crop{ID: 1, Name: "Wheat"}).Error)
	require.NoError(t, db.Create(&Disease{ID: 1, CropID: 1, DiseaseName: "Rust", Severity: "High"}).Error)
	require.NoError(t, db.Create(&Disease{ID: 2, CropID: 1, DiseaseName: "Blight", Severity: "Low"}).Error)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	s := testSettings(t)
	s.Datastore.Driver = "postgres"

	_, err := New(s, nil, nil)
	assert.Error(t, err)
}

func TestNewSelectsMySQLByDefault(t *testing.T) {
	s := testSettings(t)
	s.Datastore.Driver = conf.DriverMySQL

	ds, err := New(s, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &MySQLStore{}, ds)
}

func TestEmptyTablesReturnEmptyLists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	crops, err := store.ListCrops(ctx)
	require.NoError(t, err)
	assert.NotNil(t, crops)
	assert.Empty(t, crops)

	alerts, err := store.ListAlerts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, alerts)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)

	counts, err := store.CropDiseaseCounts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, counts)
}

func TestGetCropNotFound(t *testing.T) {
	store := setupTestStore(t)

	crop, err := store.GetCrop(context.Background(), 42)
	assert.Nil(t, crop)
	require.ErrorIs(t, err, ErrCropNotFound)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestGetDiseaseWithCrop(t *testing.T) {
	store := setupTestStore(t)
	seedWheatScenario(t, store.DB)
	ctx := context.Background()

	d, err := store.GetDiseaseWithCrop(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, &DiseaseWithCrop{ID: 2, CropID: 1, DiseaseName: "Blight", Severity: "Low", Crop: "Wheat"}, d)

	_, err = store.GetDiseaseWithCrop(ctx, 99)
	assert.ErrorIs(t, err, ErrDiseaseNotFound)
}

func TestSeededRowsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.DB.Create(&Crop{ID: 7, Name: "Cotton"}).Error)
	require.NoError(t, store.DB.Create(&Disease{ID: 3, CropID: 7, DiseaseName: "Wilt", Severity: "Medium"}).Error)
	require.NoError(t, store.DB.Create(&Solution{ID: 4, DiseaseID: 3, Solution: "Crop rotation", Type: "organic"}).Error)
	require.NoError(t, store.DB.Create(&Fertilizer{ID: 5, CropID: 7, Name: "Potash", Dosage: "50 kg/ha", ApplicationStage: "Basal"}).Error)
	require.NoError(t, store.DB.Create(&Advisory{ID: 6, CropID: 7, Title: "Sowing", Recommendation: "Sow after first rains", Season: "Kharif"}).Error)

	crop, err := store.GetCrop(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, Crop{ID: 7, Name: "Cotton"}, *crop)

	diseases, err := store.ListDiseasesByCrop(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []Disease{{ID: 3, CropID: 7, DiseaseName: "Wilt", Severity: "Medium"}}, diseases)

	solutions, err := store.ListSolutionsByDisease(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []Solution{{ID: 4, DiseaseID: 3, Solution: "Crop rotation", Type: "organic"}}, solutions)

	fertilizers, err := store.ListFertilizersByCrop(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []Fertilizer{{ID: 5, CropID: 7, Name: "Potash", Dosage: "50 kg/ha", ApplicationStage: "Basal"}}, fertilizers)

	all, err := store.ListFertilizers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	advisory, err := store.ListAdvisoryByCrop(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []Advisory{{ID: 6, CropID: 7, Title: "Sowing", Recommendation: "Sow after first rains", Season: "Kharif"}}, advisory)

	none, err := store.ListAdvisoryByCrop(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestForeignKeysEnforced(t *testing.T) {
	store := setupTestStore(t)

	err := store.DB.Create(&Disease{CropID: 404, DiseaseName: "Orphan"}).Error
	assert.Error(t, err, "disease must reference an existing crop")
}

func TestCountsIndependentOfJoinFanOut(t *testing.T) {
	store := setupTestStore(t)
	seedWheatScenario(t, store.DB)
	require.NoError(t, store.DB.Create(&Crop{ID: 2, Name: "Rice"}).Error)
	ctx := context.Background()

	crops, err := store.CountCrops(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), crops)

	diseases, err := store.CountDiseases(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), diseases)

	counts, err := store.CropDiseaseCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CropDiseaseCount{
		{CropID: 1, Name: "Wheat", DiseaseCount: 2},
		{CropID: 2, Name: "Rice", DiseaseCount: 0},
	}, counts)

	alerts, err := store.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Alert{
		{Crop: "Wheat", DiseaseName: "Rust", Severity: "High"},
		{Crop: "Wheat", DiseaseName: "Blight", Severity: "Low"},
	}, alerts)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := &User{Email: "farmer@example.com", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, "user", first.Role)

	err := store.CreateUser(ctx, &User{Email: "farmer@example.com", Password: "other"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))

	got, err := store.GetUserByEmail(ctx, "farmer@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConcurrentCreateUserSingleRow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.CreateUser(ctx, &User{Email: "race@example.com", Password: "hash"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateKey)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	var n int64
	require.NoError(t, store.DB.Model(&User{}).Where("email = ?", "race@example.com").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestQueriesWithoutConnection(t *testing.T) {
	ds, err := New(testSettings(t), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ds.ListCrops(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, ds.Ping(ctx), ErrStoreUnavailable)
	assert.NoError(t, ds.Close())
}

func TestQueryAfterCloseIsUnavailable(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.CountCrops(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
	assert.Error(t, store.Ping(context.Background()))
}

func TestCancelledContextIsNotATimeout(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	ds, err := New(testSettings(t), nil, m.Datastore)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ds.ListCrops(ctx)
	require.ErrorIs(t, err, ErrQueryCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrQueryTimeout)
	assert.False(t, errors.IsCategory(err, errors.CategoryTimeout))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	types := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "datastore_db_operation_errors_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "error_type" {
					types[l.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.InDelta(t, 1, types["cancelled"], 0)
	assert.Zero(t, types["timeout"])
}

func TestExpiredDeadlineMapsToTimeout(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := store.ListCrops(ctx)
	assert.ErrorIs(t, err, ErrQueryTimeout)
	assert.NotErrorIs(t, err, ErrQueryCanceled)
}

func TestPingUpdatesMetrics(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	ds, err := New(testSettings(t), nil, m.Datastore)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	require.NoError(t, ds.Ping(context.Background()))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "datastore_db_up" {
			found = true
			assert.InDelta(t, 1, f.GetMetric()[0].GetGauge().GetValue(), 0)
		}
	}
	assert.True(t, found)
}

func TestSeedIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx))
	first, err := store.CountCrops(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedData)), first)

	require.NoError(t, store.Seed(ctx))
	second, err := store.CountCrops(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	solutions, err := store.ListSolutionsByDisease(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, solutions)
}
