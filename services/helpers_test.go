package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

// setupTestDB opens a fresh in-memory database with the schema migrated.
// A single connection keeps every statement on the same in-memory database.
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

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()

	user := models.User{Email: email, PasswordHash: "x", Name: "User " + email, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createProduct(t *testing.T, db *gorm.DB, name, price, category string) models.Product {
	t.Helper()

	product := models.Product{Name: name, Price: models.RequireMoney(price), Category: category}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// createOrderAt inserts an order directly, bypassing the service, with a fixed creation time
func createOrderAt(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, at time.Time, items ...models.OrderItem) models.Order {
	t.Helper()

	order := models.Order{
		UserID:     userID,
		Address:    "Strada Lunga 1",
		Status:     status,
		TotalPrice: models.CalculateTotal(items),
		Items:      items,
		CreatedAt:  at.UTC(),
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func line(product models.Product, quantity int) models.OrderItem {
	return models.OrderItem{ProductID: product.ID, Quantity: quantity, Price: product.Price}
}

func requireDecimal(t *testing.T, expected string, actual models.Money) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(expected).Equal(actual.Decimal), "expected %s, got %s", expected, actual.String())
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
