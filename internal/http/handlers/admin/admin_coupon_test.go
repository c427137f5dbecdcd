package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/provider"
	"github.com/dujiao-next/delivery/internal/repository"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adminEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func setupAdminCouponHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_coupon_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	couponAdmin := service.NewCouponAdminService(
		repository.NewCouponRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewStoreRepository(db),
		repository.NewProductRepository(db),
	)
	h := New(&provider.Container{CouponAdminService: couponAdmin})

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(handlershared.ContextKeyUserID, uint(1))
		c.Set(handlershared.ContextKeyUserRole, constants.UserTypeAdmin)
		c.Next()
	})
	engine.GET("/coupons", h.GetCoupons)
	engine.POST("/coupons", h.CreateCoupon)
	engine.GET("/coupons/:id", h.GetCoupon)
	engine.PUT("/coupons/:id", h.UpdateCoupon)
	engine.PUT("/coupons/:id/toggle", h.ToggleCoupon)
	engine.DELETE("/coupons/:id", h.DeleteCoupon)
	return engine, db
}

func callAdmin(t *testing.T, engine *gin.Engine, method, path string, body interface{}) adminEnvelope {
	t.Helper()
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status: %d", w.Code)
	}
	var resp adminEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestAdminCouponLifecycle(t *testing.T) {
	engine, _ := setupAdminCouponHandlerTest(t)

	created := callAdmin(t, engine, http.MethodPost, "/coupons", map[string]interface{}{
		"code":           " save10 ",
		"discount_type":  "percentage",
		"discount_value": "10",
		"start_date":     "2026-01-01T00:00:00Z",
		"end_date":       "2026-12-31T23:59:59Z",
	})
	if created.StatusCode != 0 {
		t.Fatalf("create failed: %+v", created)
	}
	var coupon models.Coupon
	if err := json.Unmarshal(created.Data, &coupon); err != nil {
		t.Fatalf("decode coupon failed: %v", err)
	}
	if coupon.Code != "SAVE10" || coupon.ApplicableTo != constants.ScopeAll || !coupon.IsActive {
		t.Fatalf("unexpected coupon: %+v", coupon)
	}
	if coupon.CreatedBy == nil || *coupon.CreatedBy != 1 {
		t.Fatalf("created_by not recorded: %+v", coupon.CreatedBy)
	}

	dup := callAdmin(t, engine, http.MethodPost, "/coupons", map[string]interface{}{
		"code":           "SAVE10",
		"discount_type":  "FIXED_AMOUNT",
		"discount_value": 5,
	})
	if dup.StatusCode != 409 {
		t.Fatalf("expected 409 for duplicate code, got %+v", dup)
	}

	toggled := callAdmin(t, engine, http.MethodPut, fmt.Sprintf("/coupons/%d/toggle", coupon.ID), nil)
	var toggledCoupon models.Coupon
	if err := json.Unmarshal(toggled.Data, &toggledCoupon); err != nil {
		t.Fatalf("decode toggled failed: %v", err)
	}
	if toggled.StatusCode != 0 || toggledCoupon.IsActive {
		t.Fatalf("toggle should deactivate: %+v", toggled)
	}

	list := callAdmin(t, engine, http.MethodGet, "/coupons?is_active=false", nil)
	if list.StatusCode != 0 || list.Pagination.Total != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}

	deleted := callAdmin(t, engine, http.MethodDelete, fmt.Sprintf("/coupons/%d", coupon.ID), nil)
	if deleted.StatusCode != 0 {
		t.Fatalf("delete failed: %+v", deleted)
	}
	if missing := callAdmin(t, engine, http.MethodGet, fmt.Sprintf("/coupons/%d", coupon.ID), nil); missing.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %+v", missing)
	}
}

func TestAdminCouponValidation(t *testing.T) {
	engine, _ := setupAdminCouponHandlerTest(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "percentage over 100", body: map[string]interface{}{"code": "A", "discount_type": "PERCENTAGE", "discount_value": 150}},
		{name: "scope without target", body: map[string]interface{}{"code": "B", "discount_type": "FIXED_AMOUNT", "discount_value": 5, "applicable_to": "STORE"}},
		{name: "bad date", body: map[string]interface{}{"code": "C", "discount_type": "FIXED_AMOUNT", "discount_value": 5, "start_date": "yesterday"}},
		{name: "missing type", body: map[string]interface{}{"code": "D"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if resp := callAdmin(t, engine, http.MethodPost, "/coupons", tc.body); resp.StatusCode != 400 {
				t.Fatalf("expected 400, got %+v", resp)
			}
		})
	}

	if resp := callAdmin(t, engine, http.MethodGet, "/coupons?is_active=maybe", nil); resp.StatusCode != 400 {
		t.Fatalf("expected 400 for bad is_active, got %+v", resp)
	}
	if resp := callAdmin(t, engine, http.MethodPost, "/coupons", map[string]interface{}{
		"code": "E", "discount_type": "FIXED_AMOUNT", "discount_value": 5, "applicable_to": "STORE", "applicable_id": 99,
	}); resp.StatusCode != 400 {
		t.Fatalf("expected 400 for unknown store, got %+v", resp)
	}
}
