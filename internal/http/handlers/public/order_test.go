package public

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

type publicOrderFixture struct {
	engine    *gin.Engine
	db        *gorm.DB
	customer  models.User
	other     models.User
	address   models.UserAddress
	productID uint
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupPublicOrderHandlerTest(t *testing.T) *publicOrderFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_order_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	models.DB = db

	f := &publicOrderFixture{db: db}
	f.customer = models.User{Name: "Alice", Phone: "100", UserType: constants.UserTypeCustomer, PasswordHash: "x", IsActive: true}
	f.other = models.User{Name: "Bob", Phone: "101", UserType: constants.UserTypeCustomer, PasswordHash: "x", IsActive: true}
	for _, user := range []*models.User{&f.customer, &f.other} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	f.address = models.UserAddress{UserID: f.customer.ID, Label: "Home", AddressLine: "1 Main St", Latitude: 0, Longitude: 0}
	if err := db.Create(&f.address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	lat, lng := 0.0, 0.1
	store := models.Store{Name: "Burger Hub", Latitude: &lat, Longitude: &lng, DeliveryFeePerKM: models.NewMoneyFromString("2.00"), IsActive: true}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	product := models.Product{StoreID: store.ID, Name: "Burger", BasePrice: models.NewMoneyFromString("40.00"), IsAvailable: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	f.productID = product.ID

	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	orderService := service.NewOrderService(service.OrderServiceOptions{
		OrderRepo:     repository.NewOrderRepository(db),
		HistoryRepo:   repository.NewOrderStatusHistoryRepository(db),
		AddressRepo:   repository.NewAddressRepository(db),
		ProductRepo:   repository.NewProductRepository(db),
		StoreRepo:     repository.NewStoreRepository(db),
		UserRepo:      repository.NewUserRepository(db),
		UsageRepo:     usageRepo,
		CouponService: service.NewCouponService(couponRepo, usageRepo),
	})
	h := New(&provider.Container{OrderService: orderService})

	engine := gin.New()
	// 测试中通过请求头模拟鉴权中间件写入的身份
	engine.Use(func(c *gin.Context) {
		var uid uint
		if _, err := fmt.Sscanf(c.GetHeader("X-Test-User"), "%d", &uid); err == nil {
			c.Set(handlershared.ContextKeyUserID, uid)
			c.Set(handlershared.ContextKeyUserRole, constants.UserTypeCustomer)
		}
		c.Next()
	})
	engine.POST("/orders", h.PlaceOrder)
	engine.GET("/orders", h.ListOrders)
	engine.GET("/orders/:id", h.GetOrder)
	engine.GET("/orders/:id/history", h.OrderHistory)
	f.engine = engine
	return f
}

func (f *publicOrderFixture) do(t *testing.T, method, path string, userID uint, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status: %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestPlaceOrderHandlerSuccess(t *testing.T) {
	f := setupPublicOrderHandlerTest(t)

	resp := f.do(t, http.MethodPost, "/orders", f.customer.ID, map[string]interface{}{
		"address_id":           f.address.ID,
		"delivery_instruction": "leave at door",
		"items": []map[string]interface{}{
			{"product_id": f.productID, "quantity": 2},
		},
	})
	if resp.StatusCode != 0 || resp.Msg != "Order placed successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	var order models.Order
	if err := json.Unmarshal(resp.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if len(order.OrderNo) != 8 || order.Status != constants.OrderStatusPending {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Subtotal.String() != "80.00" {
		t.Fatalf("unexpected subtotal: %s", order.Subtotal.String())
	}
}

func TestPlaceOrderHandlerRejectsBadInput(t *testing.T) {
	f := setupPublicOrderHandlerTest(t)

	if resp := f.do(t, http.MethodPost, "/orders", f.customer.ID, map[string]interface{}{
		"address_id": f.address.ID,
		"items":      []map[string]interface{}{},
	}); resp.StatusCode != 400 {
		t.Fatalf("expected 400 for empty items, got %+v", resp)
	}
	if resp := f.do(t, http.MethodPost, "/orders", f.other.ID, map[string]interface{}{
		"address_id": f.address.ID,
		"items":      []map[string]interface{}{{"product_id": f.productID, "quantity": 1}},
	}); resp.StatusCode != 403 {
		t.Fatalf("expected 403 for foreign address, got %+v", resp)
	}
	if resp := f.do(t, http.MethodPost, "/orders", 0, map[string]interface{}{}); resp.StatusCode != 401 {
		t.Fatalf("expected 401 without user, got %+v", resp)
	}
}

func TestGetOrderHandlerOwnership(t *testing.T) {
	f := setupPublicOrderHandlerTest(t)
	placed := f.do(t, http.MethodPost, "/orders", f.customer.ID, map[string]interface{}{
		"address_id": f.address.ID,
		"items":      []map[string]interface{}{{"product_id": f.productID, "quantity": 1}},
	})
	var order models.Order
	if err := json.Unmarshal(placed.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}

	path := fmt.Sprintf("/orders/%d", order.ID)
	if resp := f.do(t, http.MethodGet, path, f.customer.ID, nil); resp.StatusCode != 0 {
		t.Fatalf("owner should read order, got %+v", resp)
	}
	if resp := f.do(t, http.MethodGet, path, f.other.ID, nil); resp.StatusCode != 403 {
		t.Fatalf("expected 403 for other customer, got %+v", resp)
	}
	if resp := f.do(t, http.MethodGet, "/orders/abc", f.customer.ID, nil); resp.StatusCode != 400 {
		t.Fatalf("expected 400 for bad id, got %+v", resp)
	}
	if resp := f.do(t, http.MethodGet, "/orders/9999", f.customer.ID, nil); resp.StatusCode != 404 {
		t.Fatalf("expected 404 for missing order, got %+v", resp)
	}

	history := f.do(t, http.MethodGet, path+"/history", f.customer.ID, nil)
	var rows []models.OrderStatusHistory
	if err := json.Unmarshal(history.Data, &rows); err != nil {
		t.Fatalf("decode history failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ToStatus != constants.OrderStatusPending {
		t.Fatalf("unexpected history: %+v", rows)
	}
}

func TestListOrdersHandlerPagination(t *testing.T) {
	f := setupPublicOrderHandlerTest(t)
	for i := 0; i < 3; i++ {
		f.do(t, http.MethodPost, "/orders", f.customer.ID, map[string]interface{}{
			"address_id": f.address.ID,
			"items":      []map[string]interface{}{{"product_id": f.productID, "quantity": 1}},
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/orders?page=1&page_size=2", nil)
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", f.customer.ID))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var resp struct {
		StatusCode int            `json:"status_code"`
		Data       []models.Order `json:"data"`
		Pagination struct {
			Total     int64 `json:"total"`
			TotalPage int64 `json:"total_page"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.StatusCode != 0 || len(resp.Data) != 2 || resp.Pagination.Total != 3 || resp.Pagination.TotalPage != 2 {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}
