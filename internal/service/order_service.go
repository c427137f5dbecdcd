package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/events"
	"github.com/dujiao-next/delivery/internal/geo"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultOrderNoAttempts = 3

// OrderService 订单服务
type OrderService struct {
	cfg           config.OrderConfig
	orderRepo     repository.OrderRepository
	historyRepo   repository.OrderStatusHistoryRepository
	addressRepo   repository.AddressRepository
	productRepo   repository.ProductRepository
	storeRepo     repository.StoreRepository
	userRepo      repository.UserRepository
	usageRepo     repository.CouponUsageRepository
	couponService *CouponService
	routeFee      *RouteFeeOptimizer
	notifier      Notifier
	emitter       OrderEventEmitter
	now           func() time.Time
	newOrderNo    func() string
}

// OrderServiceOptions 订单服务依赖
type OrderServiceOptions struct {
	Config        config.OrderConfig
	OrderRepo     repository.OrderRepository
	HistoryRepo   repository.OrderStatusHistoryRepository
	AddressRepo   repository.AddressRepository
	ProductRepo   repository.ProductRepository
	StoreRepo     repository.StoreRepository
	UserRepo      repository.UserRepository
	UsageRepo     repository.CouponUsageRepository
	CouponService *CouponService
	RouteFee      *RouteFeeOptimizer
	Notifier      Notifier
	Emitter       OrderEventEmitter
}

// NewOrderService 创建订单服务
func NewOrderService(opts OrderServiceOptions) *OrderService {
	routeFee := opts.RouteFee
	if routeFee == nil {
		routeFee = NewRouteFeeOptimizer()
	}
	return &OrderService{
		cfg:           opts.Config,
		orderRepo:     opts.OrderRepo,
		historyRepo:   opts.HistoryRepo,
		addressRepo:   opts.AddressRepo,
		productRepo:   opts.ProductRepo,
		storeRepo:     opts.StoreRepo,
		userRepo:      opts.UserRepo,
		usageRepo:     opts.UsageRepo,
		couponService: opts.CouponService,
		routeFee:      routeFee,
		notifier:      opts.Notifier,
		emitter:       opts.Emitter,
		now:           time.Now,
		newOrderNo:    generateOrderNo,
	}
}

// OrderItemSpec 下单商品项
type OrderItemSpec struct {
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// PlaceOrderInput 下单参数
type PlaceOrderInput struct {
	UserID      uint
	AddressID   uint
	Instruction string
	CouponCode  string
	Items       []OrderItemSpec
}

// VerifyCouponInput 优惠券试算参数，地址可选（用于计算免配送费）
type VerifyCouponInput struct {
	UserID    uint
	AddressID uint
	Code      string
	Items     []OrderItemSpec
}

// pricedCart 服务端定价结果
type pricedCart struct {
	Items    []PricedLineItem
	Stores   []models.Store
	Subtotal models.Money
}

// representativeStore 优惠券校验使用的门店（按商品顺序首个出现的门店）
func (c *pricedCart) representativeStore() *models.Store {
	if c == nil || len(c.Stores) == 0 {
		return nil
	}
	return &c.Stores[0]
}

var errOrderNoTaken = errors.New("order no already taken")

// PlaceOrder 创建订单
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsEmpty
	}
	if input.AddressID == 0 {
		return nil, ErrAddressRequired
	}

	address, err := s.loadAddress(input.UserID, input.AddressID)
	if err != nil {
		return nil, err
	}

	cart, err := s.priceItems(input.Items)
	if err != nil {
		return nil, err
	}

	destination := geo.Point{Lat: address.Latitude, Lng: address.Longitude}
	estimate := s.routeFee.EstimateFee(RouteStopsFromStores(cart.Stores), destination)

	code := strings.TrimSpace(input.CouponCode)
	attempts := s.orderNoAttempts()
	var order *models.Order
	for attempt := 1; attempt <= attempts; attempt++ {
		order, err = s.placeOrderTx(input, address, cart, estimate, code)
		if errors.Is(err, errOrderNoTaken) {
			logger.Ctx(ctx).Warnw("order_no_collision", "attempt", attempt, "user_id", input.UserID)
			continue
		}
		break
	}
	if errors.Is(err, errOrderNoTaken) {
		return nil, ErrOrderNoExhausted
	}
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Infow("order_placed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"store_count", len(cart.Stores),
		"total", order.TotalAmount.String(),
	)

	s.notify(ctx, order, NotifyInput{
		UserID:        order.UserID,
		Title:         "Order Placed",
		Message:       fmt.Sprintf("Your order #%s has been placed", order.OrderNo),
		Type:          constants.NotificationTypeOrderStatus,
		ReferenceType: constants.NotificationReferenceOrder,
		ReferenceID:   order.ID,
	})
	s.emit(ctx, newOrderEvent(constants.OrderEventPlaced, order, ""))

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

func (s *OrderService) placeOrderTx(input PlaceOrderInput, address *models.UserAddress, cart *pricedCart, estimate RouteEstimate, code string) (*models.Order, error) {
	orderNo, err := s.allocateOrderNo()
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		OrderNo:          orderNo,
		UserID:           input.UserID,
		Status:           constants.OrderStatusPending,
		AddressLabel:     address.Label,
		DeliveryAddress:  address.AddressLine,
		DeliveryLat:      address.Latitude,
		DeliveryLng:      address.Longitude,
		Instruction:      strings.TrimSpace(input.Instruction),
		Subtotal:         cart.Subtotal,
		DeliveryFee:      estimate.Fee,
		DistanceKM:       estimate.DistanceKM,
		EstimatedMinutes: estimate.EstimatedMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var coupon *models.Coupon
		discount := models.Money{}
		if code != "" {
			validated, err := s.couponService.ValidateTx(tx, code, input.UserID, cart.Items, cart.representativeStore())
			if err != nil {
				return err
			}
			coupon = validated
			discount = s.couponService.CalculateDiscount(coupon, cart.Subtotal, estimate.Fee)
			order.CouponID = &coupon.ID
		}
		order.DiscountAmount = discount
		order.TotalAmount = orderTotal(cart.Subtotal, estimate.Fee, discount)

		if err := s.orderRepo.WithTx(tx).Create(order, buildOrderItems(cart.Items, now), buildOrderStores(cart.Stores)); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errOrderNoTaken
			}
			return internalError("create order failed", err)
		}
		if err := s.couponService.RecordRedemption(tx, coupon, input.UserID, order.ID, discount); err != nil {
			return err
		}
		entry := &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  constants.OrderStatusPending,
			Note:      constants.OrderPlacedNote,
			ActorID:   &input.UserID,
			CreatedAt: now,
		}
		if err := s.historyRepo.WithTx(tx).Create(entry); err != nil {
			return internalError("create order history failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyCoupon 试算优惠券，不占用次数
func (s *OrderService) VerifyCoupon(ctx context.Context, input VerifyCouponInput) (*CouponVerification, error) {
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsEmpty
	}
	cart, err := s.priceItems(input.Items)
	if err != nil {
		return nil, err
	}
	coupon, err := s.couponService.Validate(ctx, input.Code, input.UserID, cart.Items, cart.representativeStore())
	if err != nil {
		return nil, err
	}

	fee := models.Money{}
	if input.AddressID != 0 {
		address, err := s.loadAddress(input.UserID, input.AddressID)
		if err != nil {
			return nil, err
		}
		destination := geo.Point{Lat: address.Latitude, Lng: address.Longitude}
		fee = s.routeFee.EstimateFee(RouteStopsFromStores(cart.Stores), destination).Fee
	}

	discount := s.couponService.CalculateDiscount(coupon, cart.Subtotal, fee)
	return &CouponVerification{
		Coupon:      coupon,
		Items:       cart.Items,
		Subtotal:    cart.Subtotal,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       orderTotal(cart.Subtotal, fee, discount),
	}, nil
}

// EstimateDeliveryFee 按门店列表与收货地址估算配送费
func (s *OrderService) EstimateDeliveryFee(ctx context.Context, userID, addressID uint, storeIDs []uint) (*RouteEstimate, error) {
	ids := uniqueIDs(storeIDs)
	if len(ids) == 0 {
		return nil, ErrNoStoresProvided
	}
	if addressID == 0 {
		return nil, ErrAddressRequired
	}
	address, err := s.loadAddress(userID, addressID)
	if err != nil {
		return nil, err
	}

	rows, err := s.storeRepo.ListByIDs(ids)
	if err != nil {
		return nil, internalError("load stores failed", err)
	}
	byID := make(map[uint]models.Store, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	stores := make([]models.Store, 0, len(ids))
	for _, id := range ids {
		store, ok := byID[id]
		if !ok {
			return nil, ErrStoreNotFound.WithMessage("store %d not found", id)
		}
		stores = append(stores, store)
	}

	estimate := s.routeFee.EstimateFee(RouteStopsFromStores(stores), geo.Point{Lat: address.Latitude, Lng: address.Longitude})
	logger.Ctx(ctx).Debugw("delivery_fee_estimated",
		"user_id", userID,
		"store_count", len(stores),
		"distance_km", estimate.DistanceKM,
		"fee", estimate.Fee.String(),
	)
	return &estimate, nil
}

func (s *OrderService) loadAddress(userID, addressID uint) (*models.UserAddress, error) {
	address, err := s.addressRepo.GetByID(addressID)
	if err != nil {
		return nil, internalError("load address failed", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	if address.UserID != userID {
		return nil, ErrAddressForbidden
	}
	return address, nil
}

// priceItems 按当前商品、规格与门店营业状态定价
func (s *OrderService) priceItems(specs []OrderItemSpec) (*pricedCart, error) {
	now := s.now()
	cart := &pricedCart{
		Items:  make([]PricedLineItem, 0, len(specs)),
		Stores: make([]models.Store, 0, 1),
	}
	seenStores := make(map[uint]struct{})
	subtotal := decimal.Zero

	for _, spec := range specs {
		if spec.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		product, err := s.productRepo.GetByID(spec.ProductID)
		if err != nil {
			return nil, internalError("load product failed", err)
		}
		if product == nil {
			return nil, ErrProductNotFound.WithMessage("product %d not found", spec.ProductID)
		}
		if !product.IsAvailable {
			return nil, ErrProductUnavailable.WithMessage("%s is not available", product.Name)
		}

		store := product.Store
		if store.ID == 0 {
			loaded, err := s.storeRepo.GetByID(product.StoreID)
			if err != nil {
				return nil, internalError("load store failed", err)
			}
			if loaded == nil {
				return nil, ErrStoreNotFound
			}
			store = *loaded
		}
		if !isStoreOpen(&store, now) {
			return nil, ErrStoreClosed.WithMessage("%s is currently closed", store.Name)
		}

		unitPrice := product.BasePrice.Decimal
		variantDescription := ""
		if spec.VariantID != nil {
			variant, err := s.productRepo.GetVariantByID(*spec.VariantID)
			if err != nil {
				return nil, internalError("load variant failed", err)
			}
			if variant == nil {
				return nil, ErrVariantNotFound
			}
			if variant.ProductID != product.ID {
				return nil, ErrVariantMismatch
			}
			if !variant.IsAvailable {
				return nil, ErrVariantUnavailable.WithMessage("%s (%s) is not available", product.Name, variant.Label())
			}
			unitPrice = unitPrice.Add(variant.PriceAdjustment.Decimal)
			variantDescription = variant.Label()
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(spec.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		cart.Items = append(cart.Items, PricedLineItem{
			ProductID:          product.ID,
			VariantID:          spec.VariantID,
			StoreID:            store.ID,
			CategoryID:         product.CategoryID,
			SubCategoryID:      product.SubCategoryID,
			ProductName:        product.Name,
			VariantDescription: variantDescription,
			UnitPrice:          models.NewMoneyFromDecimal(unitPrice),
			Quantity:           spec.Quantity,
			LineTotal:          models.NewMoneyFromDecimal(lineTotal),
			Notes:              strings.TrimSpace(spec.Notes),
		})

		if _, ok := seenStores[store.ID]; !ok {
			seenStores[store.ID] = struct{}{}
			cart.Stores = append(cart.Stores, store)
		}
	}

	cart.Subtotal = models.NewMoneyFromDecimal(subtotal)
	return cart, nil
}

// allocateOrderNo 生成未被占用的订单号
func (s *OrderService) allocateOrderNo() (string, error) {
	attempts := s.orderNoAttempts()
	for i := 0; i < attempts; i++ {
		candidate := s.newOrderNo()
		exists, err := s.orderRepo.ExistsOrderNo(candidate)
		if err != nil {
			return "", internalError("check order no failed", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrOrderNoExhausted
}

func (s *OrderService) orderNoAttempts() int {
	if s.cfg.NoRetryAttempts > 0 {
		return s.cfg.NoRetryAttempts
	}
	return defaultOrderNoAttempts
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, input NotifyInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, input); err != nil {
		logger.Ctx(ctx).Warnw("order_notify_enqueue_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"user_id", input.UserID,
			"type", input.Type,
			"error", err,
		)
	}
}

func (s *OrderService) emit(ctx context.Context, event events.OrderEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		logger.Ctx(ctx).Warnw("order_event_enqueue_failed",
			"order_id", event.OrderID,
			"order_no", event.OrderNo,
			"event_type", event.Type,
			"error", err,
		)
	}
}

// generateOrderNo 订单号：UUID 前 8 位大写十六进制
func generateOrderNo() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:8])
}

func orderTotal(subtotal, fee, discount models.Money) models.Money {
	total := subtotal.Decimal.Add(fee.Decimal).Sub(discount.Decimal)
	return models.NewMoneyFromDecimal(total).NonNegative()
}

func buildOrderItems(items []PricedLineItem, now time.Time) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.OrderItem{
			ProductID:          item.ProductID,
			VariantID:          item.VariantID,
			StoreID:            item.StoreID,
			CategoryID:         item.CategoryID,
			SubCategoryID:      item.SubCategoryID,
			ProductName:        item.ProductName,
			VariantDescription: item.VariantDescription,
			UnitPrice:          item.UnitPrice,
			Quantity:           item.Quantity,
			TotalPrice:         item.LineTotal,
			Notes:              item.Notes,
			CreatedAt:          now,
		})
	}
	return rows
}

func buildOrderStores(stores []models.Store) []models.OrderStore {
	rows := make([]models.OrderStore, 0, len(stores))
	for idx, store := range stores {
		rows = append(rows, models.OrderStore{
			StoreID:   store.ID,
			Position:  idx,
			StoreName: store.Name,
		})
	}
	return rows
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
