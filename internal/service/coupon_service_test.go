package service

import (
	"context"
	"testing"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moneyPtr(raw string) *models.Money {
	m := models.NewMoneyFromString(raw)
	return &m
}

func TestCalculateDiscount(t *testing.T) {
	subtotal := models.NewMoneyFromString("100")
	fee := models.NewMoneyFromString("7.50")

	cases := []struct {
		name   string
		coupon *models.Coupon
		want   string
	}{
		{name: "nil coupon", coupon: nil, want: "0.00"},
		{name: "free delivery", coupon: &models.Coupon{DiscountType: constants.DiscountTypeFreeDelivery}, want: "7.50"},
		{name: "fixed", coupon: &models.Coupon{DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("12")}, want: "12.00"},
		{name: "fixed above subtotal", coupon: &models.Coupon{DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("150")}, want: "100.00"},
		{name: "percentage", coupon: &models.Coupon{DiscountType: constants.DiscountTypePercentage, DiscountValue: models.NewMoneyFromString("15")}, want: "15.00"},
		{name: "percentage capped", coupon: &models.Coupon{DiscountType: constants.DiscountTypePercentage, DiscountValue: models.NewMoneyFromString("10"), MaxDiscountAmount: moneyPtr("5")}, want: "5.00"},
		{name: "unknown type", coupon: &models.Coupon{DiscountType: "BOGO", DiscountValue: models.NewMoneyFromString("10")}, want: "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateDiscount(tc.coupon, subtotal, fee)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestCouponAppliesByScope(t *testing.T) {
	sub := uint(31)
	items := []PricedLineItem{
		{ProductID: 11, CategoryID: 21, SubCategoryID: &sub},
	}
	store := &models.Store{ID: 5}
	id := func(v uint) *uint { return &v }

	assert.True(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeAll}, items, store))
	assert.True(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeStore, ApplicableID: id(5)}, items, store))
	assert.False(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeStore, ApplicableID: id(6)}, items, store))
	assert.True(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeCategory, ApplicableID: id(21)}, items, store))
	assert.True(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeSubCategory, ApplicableID: id(31)}, items, store))
	assert.True(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeProduct, ApplicableID: id(11)}, items, store))
	assert.False(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeProduct, ApplicableID: id(12)}, items, store))
	assert.False(t, couponApplies(&models.Coupon{ApplicableTo: constants.ScopeProduct}, items, store))
}

func TestCouponValidateOrder(t *testing.T) {
	db := openServiceTestDB(t)
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	svc := NewCouponService(couponRepo, usageRepo)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	items := []PricedLineItem{{ProductID: 1, CategoryID: 1, LineTotal: models.NewMoneyFromString("20")}}

	create := func(c *models.Coupon) {
		c.IsActive = true
		if c.ApplicableTo == "" {
			c.ApplicableTo = constants.ScopeAll
		}
		require.NoError(t, couponRepo.Create(c))
	}

	_, err := svc.Validate(ctx, "missing", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponNotFound)

	inactive := &models.Coupon{Code: "OFF", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1")}
	create(inactive)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	_, err = svc.Validate(ctx, "OFF", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponInactive)

	expiredAt := now.Add(-24 * time.Hour)
	both := &models.Coupon{Code: "STALE", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), EndDate: &expiredAt, MinOrderAmount: moneyPtr("500")}
	create(both)
	require.NoError(t, db.Model(both).Update("is_active", false).Error)
	_, err = svc.Validate(ctx, "STALE", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponInactive, "inactive is checked before expiry and minimum")

	require.NoError(t, db.Model(both).Update("is_active", true).Error)
	_, err = svc.Validate(ctx, "STALE", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponExpired, "expiry is checked before the minimum amount")

	future := now.Add(time.Hour)
	create(&models.Coupon{Code: "SOON", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), StartDate: &future})
	_, err = svc.Validate(ctx, "SOON", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponNotStarted)

	past := now.Add(-time.Hour)
	create(&models.Coupon{Code: "OLD", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), EndDate: &past})
	_, err = svc.Validate(ctx, "OLD", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponExpired)

	zero := 0
	create(&models.Coupon{Code: "FULL", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), TotalUsageLimit: &zero})
	_, err = svc.Validate(ctx, "FULL", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponLimitReached)

	create(&models.Coupon{Code: "BIG", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), MinOrderAmount: moneyPtr("50")})
	_, err = svc.Validate(ctx, "BIG", 1, items, nil)
	assert.ErrorIs(t, err, ErrCouponMinimumNotMet)
	assert.Contains(t, err.Error(), "50.00")

	first := &models.Coupon{Code: "WELCOME", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("1"), IsFirstOrderOnly: true}
	create(first)
	require.NoError(t, usageRepo.Create(&models.CouponUsage{CouponID: inactive.ID, UserID: 7, OrderID: 1}))
	_, err = svc.Validate(ctx, "welcome", 7, items, nil)
	assert.ErrorIs(t, err, ErrCouponNotFirstOrder)

	coupon, err := svc.Validate(ctx, " welcome ", 8, items, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, coupon.ID)
}

func TestCouponListUsages(t *testing.T) {
	db := openServiceTestDB(t)
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	svc := NewCouponService(couponRepo, usageRepo)

	coupon := &models.Coupon{Code: "USED", DiscountType: constants.DiscountTypeFixedAmount, DiscountValue: models.NewMoneyFromString("2"), ApplicableTo: constants.ScopeAll, IsActive: true}
	require.NoError(t, couponRepo.Create(coupon))
	for orderID := uint(1); orderID <= 3; orderID++ {
		require.NoError(t, usageRepo.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: 5, OrderID: orderID, DiscountAmount: models.NewMoneyFromString("2")}))
	}

	usages, total, err := svc.ListUsages(coupon.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, usages, 2)
	assert.Equal(t, uint(3), usages[0].OrderID)

	_, _, err = svc.ListUsages(999, 1, 20)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}
