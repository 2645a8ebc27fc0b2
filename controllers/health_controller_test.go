package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NewHealthController(nil).Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Bistro Orders API is running", response["message"])
}

func TestDatabaseStatus(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter()
	router.GET("/database/status", NewHealthController(db).DatabaseStatus)

	w, response := performJSON(t, router, http.MethodGet, "/database/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database connected", response["message"])
	tables := response["tables"].([]interface{})
	for _, name := range []string{"orders", "order_items", "products", "refresh_tokens", "users"} {
		assert.Contains(t, tables, name)
	}
}

func TestDatabaseStatus_ClosedConnection(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	router := setupTestRouter()
	router.GET("/database/status", NewHealthController(db).DatabaseStatus)

	w, response := performJSON(t, router, http.MethodGet, "/database/status", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATABASE_CONNECTION_ERROR", errorCode(t, response))
}
