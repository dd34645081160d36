package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/myproject/website/internal/config"
	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backendName string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Database.Driver = "sqlite"
	cfg.Database.URL = filepath.Join(dir, "site.db")
	cfg.Search.Backend = backendName
	cfg.Search.IndexPath = filepath.Join(dir, "index")
	cfg.Site.Environment = "test"
	return cfg
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestApp_EndToEnd(t *testing.T) {
	for _, name := range []string{config.BackendDatabase, config.BackendBleve, config.BackendFTS5} {
		t.Run(name, func(t *testing.T) {
			a, err := Open(testConfig(t, name), quietLogger())
			require.NoError(t, err)
			defer a.Close()

			require.NoError(t, a.Migrate())
			assert.Nil(t, a.QueryLog())

			require.NoError(t, a.Repos.Page.Create(&models.Page{Title: "Pricing", Slug: "pricing", URLPath: "/pricing/", Live: true}))
			require.NoError(t, a.Repos.Page.Create(&models.Page{Title: "Pricing draft", Slug: "draft", URLPath: "/draft/"}))

			n, err := a.Reindex(context.Background())
			require.NoError(t, err)
			if name == config.BackendDatabase {
				assert.Zero(t, n)
			} else {
				assert.Equal(t, 2, n)
			}

			res, err := a.SearchService().Search(context.Background(), "PRICING", "")
			require.NoError(t, err)
			require.Len(t, res.Results.Items, 1)
			assert.Equal(t, "/pricing/", res.Results.Items[0].URL)

			srv, err := a.Server(nil)
			require.NoError(t, err)
			w := httptest.NewRecorder()
			srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"status":"ok","db_status":"ok"}`, w.Body.String())
		})
	}
}

func TestOpen_InvalidBackend(t *testing.T) {
	_, err := Open(testConfig(t, "elastic"), quietLogger())
	assert.ErrorContains(t, err, "unknown search backend")
}
