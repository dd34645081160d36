package repository

import (
	"testing"

	"github.com/myproject/website/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Page{}, &models.SEOSettings{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestPageRepository_CreateAndLookup(t *testing.T) {
	repo := NewPageRepository(newTestDB(t))

	home := &models.Page{Title: "Home", Slug: "home", URLPath: "/", PageType: models.PageTypeHome, Live: true}
	draft := &models.Page{Title: "Draft", Slug: "draft", URLPath: "/draft/"}
	require.NoError(t, repo.Create(home))
	require.NoError(t, repo.Create(draft))
	assert.NotZero(t, home.ID)
	assert.Equal(t, models.PageTypeLanding, draft.PageType)

	got, err := repo.GetByURLPath("/draft/")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = repo.GetLiveByURLPath("/draft/")
	assert.ErrorIs(t, err, ErrPageNotFound)

	live, err := repo.GetLiveByURLPath("/")
	require.NoError(t, err)
	assert.Equal(t, "Home", live.Title)

	_, err = repo.GetByID(9999)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPageRepository_CreateRejectsInvalid(t *testing.T) {
	repo := NewPageRepository(newTestDB(t))
	err := repo.Create(&models.Page{Title: "", URLPath: "/x/"})
	assert.Error(t, err)
}

func TestPageRepository_GetByIDsKeepsOrder(t *testing.T) {
	repo := NewPageRepository(newTestDB(t))

	var ids []uint
	for i, live := range []bool{true, false, true, true} {
		p := &models.Page{Title: "P", Slug: "p", URLPath: "/p" + string(rune('a'+i)) + "/", Live: live}
		require.NoError(t, repo.Create(p))
		ids = append(ids, p.ID)
	}

	pages, err := repo.GetByIDs([]uint{ids[3], ids[1], ids[0], ids[3], 4242}, true)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, ids[3], pages[0].ID)
	assert.Equal(t, ids[0], pages[1].ID)

	all, err := repo.GetByIDs([]uint{ids[3], ids[1], ids[0]}, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[1], all[1].ID)
	assert.False(t, all[1].Live)

	empty, err := repo.GetByIDs(nil, true)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPageRepository_Upsert(t *testing.T) {
	repo := NewPageRepository(newTestDB(t))

	first := &models.Page{Title: "About", Slug: "about", URLPath: "/about/", Live: true}
	require.NoError(t, repo.Upsert(first))

	second := &models.Page{Title: "About us", Slug: "about", URLPath: "/about/", Live: true}
	require.NoError(t, repo.Upsert(second))
	assert.Equal(t, first.ID, second.ID)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "About us", all[0].Title)

	require.NoError(t, repo.Delete(first.ID))
	all, err = repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSEOSettingsRepository(t *testing.T) {
	repo := NewSEOSettingsRepository(newTestDB(t))

	_, err := repo.GetFirst()
	assert.Error(t, err)

	require.NoError(t, repo.Save(&models.SEOSettings{SiteName: "Example", DefaultDescription: "An example site"}))
	require.NoError(t, repo.Save(&models.SEOSettings{SiteName: "Second"}))

	got, err := repo.GetFirst()
	require.NoError(t, err)
	assert.Equal(t, "Example", got.SiteName)
}
