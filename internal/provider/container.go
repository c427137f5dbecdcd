package provider

import (
	"github.com/dujiao-next/delivery/internal/authz"
	"github.com/dujiao-next/delivery/internal/cache"
	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/events"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/queue"
	"github.com/dujiao-next/delivery/internal/repository"
	"github.com/dujiao-next/delivery/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	EventPublisher events.Publisher

	// Repositories
	UserRepo         repository.UserRepository
	AddressRepo      repository.AddressRepository
	StoreRepo        repository.StoreRepository
	ProductRepo      repository.ProductRepository
	CategoryRepo     repository.CategoryRepository
	CouponRepo       repository.CouponRepository
	CouponUsageRepo  repository.CouponUsageRepository
	OrderRepo        repository.OrderRepository
	OrderHistoryRepo repository.OrderStatusHistoryRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CouponService       *service.CouponService
	CouponAdminService  *service.CouponAdminService
	UserAdminService    *service.UserAdminService
	RouteFeeOptimizer   *service.RouteFeeOptimizer
	NotificationService *service.NotificationService
	OrderEventEmitter   *service.QueueOrderEventEmitter
	OrderService        *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	// 初始化订单事件发布器
	publisher, err := events.NewPublisher(&cfg.Events)
	if err != nil {
		logger.Errorw("provider_init_event_publisher_failed", "error", err)
		publisher = events.NopPublisher{}
	}

	c := &Container{
		Config:         cfg,
		QueueClient:    queueClient,
		EventPublisher: publisher,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// Close 释放队列与事件发布器连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.StoreRepo = repository.NewStoreRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.OrderHistoryRepo = repository.NewOrderStatusHistoryRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config.UserJWT, c.UserRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CategoryRepo, c.StoreRepo, c.ProductRepo)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)
	c.RouteFeeOptimizer = service.NewRouteFeeOptimizer()
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.OrderEventEmitter = service.NewOrderEventEmitter(c.QueueClient, c.EventPublisher)
	c.OrderService = service.NewOrderService(service.OrderServiceOptions{
		Config:        c.Config.Order,
		OrderRepo:     c.OrderRepo,
		HistoryRepo:   c.OrderHistoryRepo,
		AddressRepo:   c.AddressRepo,
		ProductRepo:   c.ProductRepo,
		StoreRepo:     c.StoreRepo,
		UserRepo:      c.UserRepo,
		UsageRepo:     c.CouponUsageRepo,
		CouponService: c.CouponService,
		RouteFee:      c.RouteFeeOptimizer,
		Notifier:      c.NotificationService,
		Emitter:       c.OrderEventEmitter,
	})
}
