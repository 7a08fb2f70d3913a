package serve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
)

func testRuntime(t *testing.T, autoMigrate bool) *runtime.Context {
	t.Helper()
	s := &conf.Settings{}
	s.Datastore.Driver = conf.DriverSQLite
	s.Datastore.QueryTimeout = 5 * time.Second
	s.Datastore.AutoMigrate = autoMigrate
	s.Datastore.SQLite.Path = filepath.Join(t.TempDir(), "serve.db")
	return &runtime.Context{Settings: s, Logger: logger.NewDiscardLogger()}
}

func TestPrepareDatastoreMigratesWhenEnabled(t *testing.T) {
	rt := testRuntime(t, true)
	ds, err := rt.OpenDatastore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	prepareDatastore(context.Background(), rt, ds, rt.Logger)

	n, err := ds.CountCrops(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrepareDatastoreLeavesSchemaAlone(t *testing.T) {
	rt := testRuntime(t, false)
	ds, err := rt.OpenDatastore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	prepareDatastore(context.Background(), rt, ds, rt.Logger)

	_, err = ds.CountCrops(context.Background())
	assert.Error(t, err, "crops table must not exist without automigrate")
}

func TestPrepareDatastoreUnreachable(t *testing.T) {
	rt := testRuntime(t, true)
	ds, err := datastore.New(rt.Settings, nil, nil)
	require.NoError(t, err)

	// Not opened: the ping fails and startup carries on.
	assert.NotPanics(t, func() {
		prepareDatastore(context.Background(), rt, ds, rt.Logger)
	})
}

func TestPortFlagBindsViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := Command(runtime.New(nil))
	require.NoError(t, cmd.Flags().Set("port", "8088"))
	assert.Equal(t, "8088", viper.GetString("webserver.port"))
}
