package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "site.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRunMigrations_AutoMigrateAndSQLFiles(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_settings.sql"), []byte(`
-- default site name
INSERT INTO seo_settings (site_name, default_description, created_at, updated_at)
VALUES ('Example', 'Example site', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_index.sql"), []byte(`
CREATE INDEX IF NOT EXISTS idx_pages_title ON pages (title);
CREATE INDEX IF NOT EXISTS idx_pages_slug_live ON pages (slug, live);
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not sql"), 0o644))

	runner := NewRunner(db, logrus.New())
	require.NoError(t, runner.RunMigrations(dir))

	assert.True(t, db.Migrator().HasTable(&models.Page{}))
	assert.True(t, db.Migrator().HasIndex(&models.Page{}, "idx_pages_title"))

	var settings models.SEOSettings
	require.NoError(t, db.First(&settings).Error)
	assert.Equal(t, "Example", settings.SiteName)
}

func TestRunMigrations_MissingDirectory(t *testing.T) {
	runner := NewRunner(newTestDB(t), logrus.New())
	assert.NoError(t, runner.RunMigrations(filepath.Join(t.TempDir(), "nope")))
	assert.NoError(t, runner.RunMigrations(""))
}

func TestRunMigrations_AppliesEachFileOnce(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	seed := []byte("INSERT INTO seo_settings (site_name, created_at, updated_at) VALUES ('Example', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_seed.sql"), seed, 0o644))

	runner := NewRunner(db, logrus.New())
	require.NoError(t, runner.RunMigrations(dir))
	require.NoError(t, runner.RunMigrations(dir))

	var count int64
	require.NoError(t, db.Model(&models.SEOSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var applied []AppliedMigration
	require.NoError(t, db.Find(&applied).Error)
	require.Len(t, applied, 1)
	assert.Equal(t, "001_seed.sql", applied[0].Name)
}

func TestRunMigrations_FailedFileIsNotRecorded(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	bad := []byte("CREATE INDEX IF NOT EXISTS idx_ok ON pages (title);\nINSERT INTO no_such_table VALUES (1);")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), bad, 0o644))

	runner := NewRunner(db, logrus.New())
	err := runner.RunMigrations(dir)
	assert.ErrorContains(t, err, "001_bad.sql")

	var count int64
	require.NoError(t, db.Model(&AppliedMigration{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStatements(t *testing.T) {
	r := NewRunner(nil, logrus.New())
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, r.statements("-- comment\nSELECT 1;\n\nSELECT 2;;\n"))
	assert.Nil(t, r.statements("-- only a comment\n"))

	fn := "CREATE FUNCTION f() RETURNS int AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql;"
	assert.Equal(t, []string{fn}, r.statements("-- function\n"+fn))
}
