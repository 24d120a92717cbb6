package migrate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/mallcart/pkg/config"
	"github.com/angelmondragon/mallcart/pkg/db"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteClient(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, Validate(Embedded()))
}

func TestCartSlotsMigrationUpAndDown(t *testing.T) {
	goose.SetLogger(goose.NopLogger())
	ctx := context.Background()
	client := newSQLiteClient(t)
	sqlDB, err := client.SQL()
	require.NoError(t, err)

	require.NoError(t, Run(ctx, sqlDB, "sqlite3", Embedded(), "up"))

	version, err := CurrentVersion(sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(20260301120000), version)

	require.NoError(t, client.DB().Exec(`INSERT INTO cart_slots (slot_key, value) VALUES ('mall_cart_guest', '[]')`).Error)
	var value string
	require.NoError(t, client.DB().Raw(`SELECT value FROM cart_slots WHERE slot_key = 'mall_cart_guest'`).Scan(&value).Error)
	assert.Equal(t, "[]", value)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite3", Embedded(), "0"))
	version, err = CurrentVersion(sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestMaybeRunDevHonorsFlags(t *testing.T) {
	goose.SetLogger(goose.NopLogger())
	ctx := context.Background()
	client := newSQLiteClient(t)
	sqlDB, err := client.SQL()
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}, FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true}}
	require.NoError(t, MaybeRunDev(ctx, cfg, nil, client))
	assert.False(t, client.DB().Migrator().HasTable("cart_slots"))

	cfg.App.Env = config.AppEnvDev
	require.NoError(t, MaybeRunDev(ctx, cfg, nil, client))
	assert.True(t, client.DB().Migrator().HasTable("cart_slots"))

	_, err = CurrentVersion(sqlDB, "sqlite3")
	require.NoError(t, err)
}

func TestDialect(t *testing.T) {
	for driver, want := range map[string]string{"": "postgres", "postgres": "postgres", "SQLite": "sqlite3"} {
		got, err := Dialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got, driver)
	}
	_, err := Dialect("mysql")
	assert.Error(t, err)
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Cart Owner!", now)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "20260402093000_add_cart_owner.sql"), path)

	_, err = CreateSQLMigration(dir, "add cart owner", now)
	assert.Error(t, err, "same version and name must not be overwritten")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)

	require.NoError(t, Validate(Source{FS: os.DirFS(dir), Dir: "."}))
}

func TestValidateRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/bad-name.sql", []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, Validate(Source{FS: os.DirFS(dir), Dir: "."}))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/20260101000000_no_down.sql", []byte("-- +goose Up\n"), 0o644))
	assert.Error(t, Validate(Source{FS: os.DirFS(dir), Dir: "."}))

	assert.Error(t, Validate(Source{FS: os.DirFS(t.TempDir()), Dir: "."}), "empty dir")
}
