package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/models"
	"github.com/kendall-kelly/bistro-orders-api/routes"
	"github.com/kendall-kelly/bistro-orders-api/services"
	"github.com/kendall-kelly/bistro-orders-api/tests/testutil"
)

// app is the fully wired API over a private SQLite file, the way main builds it
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	router *gin.Engine
	events *services.MockEventPublisher
	images services.ImageService
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.LoadTestConfig(t, t.TempDir(), nil)
	ctx := context.Background()

	db, err := config.ConnectDatabase(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(models.All()...))

	auth := services.NewAuthService(db, cfg)
	require.NoError(t, auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword))

	images, err := services.NewImageService(ctx, cfg)
	require.NoError(t, err)
	local, ok := images.(*services.LocalImageService)
	require.True(t, ok, "tests store images on local disk")

	events := services.NewMockEventPublisher()
	router, err := routes.New(routes.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    zerolog.Nop(),
		Auth:      auth,
		Orders:    services.NewOrderService(db, events),
		Catalog:   services.NewCatalogService(db, images),
		Stats:     services.NewStatsService(db, cfg.Location()),
		UploadDir: local.Dir(),
	})
	require.NoError(t, err)

	return &app{cfg: cfg, db: db, router: router, events: events, images: images}
}

func (a *app) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// call sends a JSON request and decodes the JSON envelope of the response
func (a *app) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := a.serve(testutil.Authorize(req, token))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func (a *app) register(t *testing.T, email, name string) map[string]interface{} {
	t.Helper()

	status, response := a.call(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "parola-sigura", "name": name,
	})
	require.Equal(t, http.StatusCreated, status, response)
	return response["data"].(map[string]interface{})
}

// login returns the access and refresh tokens
func (a *app) login(t *testing.T, email, password string) (string, string) {
	t.Helper()

	status, response := a.call(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, response)
	pair := response["data"].(map[string]interface{})
	return pair["accessToken"].(string), pair["refreshToken"].(string)
}

func (a *app) adminToken(t *testing.T) string {
	t.Helper()

	token, _ := a.login(t, a.cfg.AdminEmail, a.cfg.AdminPassword)
	return token
}

func dataOf(response map[string]interface{}) map[string]interface{} {
	return response["data"].(map[string]interface{})
}

func errorCodeOf(response map[string]interface{}) string {
	errData, _ := response["error"].(map[string]interface{})
	code, _ := errData["code"].(string)
	return code
}
