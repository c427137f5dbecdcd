//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/dujiao-next/delivery/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CouponUsage{},
		&models.Coupon{},
		&models.OrderStatusHistory{},
		&models.OrderStore{},
		&models.OrderItem{},
		&models.Order{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCouponSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{
		Code:          "PGSPRING",
		Title:         "Spring Deal",
		DiscountType:  "FIXED_AMOUNT",
		DiscountValue: models.NewMoneyFromString("3"),
		ApplicableTo:  "ALL",
		IsActive:      true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	rows, total, err := repo.List(CouponListFilter{Page: 1, Search: "spring"})
	if err != nil {
		t.Fatalf("coupon search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("coupon search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresOrderRowLockAndUsageIncrement(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	limit := 1
	coupon := &models.Coupon{
		Code:            "PGONCE",
		DiscountType:    "FIXED_AMOUNT",
		DiscountValue:   models.NewMoneyFromString("1"),
		ApplicableTo:    "ALL",
		TotalUsageLimit: &limit,
		IsActive:        true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	order := &models.Order{OrderNo: "PG000001", UserID: 1, Status: "PENDING", DeliveryAddress: "pg street"}
	if err := NewOrderRepository(db).Create(order, nil, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := NewOrderRepository(db).WithTx(tx).GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.OrderNo != "PG000001" {
			t.Fatalf("unexpected locked order: %+v", locked)
		}
		couponRepo := NewCouponRepository(db).WithTx(tx)
		if _, err := couponRepo.GetByCodeForUpdate("pgonce"); err != nil {
			return err
		}
		ok, err := couponRepo.IncrementUsage(coupon.ID)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatalf("first increment should succeed")
		}
		ok, err = couponRepo.IncrementUsage(coupon.ID)
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("second increment should hit the limit")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}
