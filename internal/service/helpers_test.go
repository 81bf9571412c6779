package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "venda_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Order{},
		&model.OrderEvent{},
		&model.SiteSettings{},
		&model.ProductImages{},
		&model.AdminUser{},
		&model.PageView{},
		&model.ActionEvent{},
	))
	return db
}

func validOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		Name:          "José Silva",
		Email:         "Joao.Silva@Gmail.com",
		Phone:         "(11) 98888-7777",
		CEP:           "01310-100",
		Address:       "Avenida Paulista",
		Number:        "1000",
		Neighborhood:  "Bela Vista",
		City:          "São Paulo",
		State:         "sp",
		Quantity:      2,
		ProductPrice:  97.00,
		ShippingPrice: 0,
		TotalPrice:    194.00,
	}
}

func createTestOrder(t *testing.T, store OrderStore) *model.Order {
	t.Helper()
	order, err := NewOrderService(store).CreateOrder(context.Background(), validOrderRequest())
	require.NoError(t, err)
	return order
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
