package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kendall-kelly/bistro-orders-api/middleware"
	"github.com/kendall-kelly/bistro-orders-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware stands in for EnsureValidToken, setting the identity it would set
func mockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	user := models.User{Email: email, PasswordHash: "x", Name: "User " + email, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name, price, category string) models.Product {
	t.Helper()

	product := models.Product{Name: name, Price: models.RequireMoney(price), Category: category}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// performJSON sends body (marshalled unless nil) and decodes the JSON response
func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()

	errData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "response has no error object: %v", response)
	return errData["code"].(string)
}

func requireMoney(t *testing.T, expected string, value interface{}) {
	t.Helper()

	raw, ok := value.(string)
	require.True(t, ok, "money should be encoded as a string, got %T", value)
	require.Equal(t, expected, raw, "money should carry exactly two decimals")
}
