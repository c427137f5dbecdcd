package repository

import (
	"testing"

	"github.com/dujiao-next/delivery/internal/models"
)

func TestCouponRepositoryGetByCodeIgnoresCase(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCouponRepository(db)
	coupon := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  "PERCENTAGE",
		DiscountValue: models.NewMoneyFromString("10"),
		ApplicableTo:  "ALL",
		IsActive:      true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	got, err := repo.GetByCode(" save10 ")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got == nil || got.ID != coupon.ID {
		t.Fatalf("expected coupon %d, got %+v", coupon.ID, got)
	}

	missing, err := repo.GetByCode("NOPE")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing code, got %+v err=%v", missing, err)
	}
}

func TestCouponRepositoryIncrementUsageRespectsLimit(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCouponRepository(db)
	limit := 2
	coupon := &models.Coupon{
		Code:            "LIMIT2",
		DiscountType:    "FIXED_AMOUNT",
		DiscountValue:   models.NewMoneyFromString("5"),
		TotalUsageLimit: &limit,
		IsActive:        true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsage(coupon.ID)
		if err != nil || !ok {
			t.Fatalf("increment %d should succeed, ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := repo.IncrementUsage(coupon.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond limit should not succeed")
	}

	reloaded, _ := repo.GetByID(coupon.ID)
	if reloaded.CurrentUsageCount != 2 {
		t.Fatalf("expected usage count 2, got %d", reloaded.CurrentUsageCount)
	}
}

func TestCouponRepositoryIncrementUsageUnlimited(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCouponRepository(db)
	coupon := &models.Coupon{Code: "FREE", DiscountType: "FREE_DELIVERY", IsActive: true}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if ok, err := repo.IncrementUsage(coupon.ID); err != nil || !ok {
			t.Fatalf("unlimited coupon increment should succeed, ok=%v err=%v", ok, err)
		}
	}
}

func TestCouponUsageRepositoryCounts(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCouponUsageRepository(db)
	rows := []models.CouponUsage{
		{CouponID: 1, UserID: 7, OrderID: 100},
		{CouponID: 1, UserID: 7, OrderID: 101},
		{CouponID: 2, UserID: 7, OrderID: 102},
		{CouponID: 1, UserID: 8, OrderID: 103},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	if n, _ := repo.CountByCouponAndUser(1, 7); n != 2 {
		t.Fatalf("expected 2 usages for coupon 1 user 7, got %d", n)
	}
	if n, _ := repo.CountByUser(7); n != 3 {
		t.Fatalf("expected 3 usages for user 7, got %d", n)
	}
	if err := repo.DeleteByOrderID(100); err != nil {
		t.Fatalf("delete by order failed: %v", err)
	}
	if n, _ := repo.CountByCouponAndUser(1, 7); n != 1 {
		t.Fatalf("expected 1 usage after delete, got %d", n)
	}
}
