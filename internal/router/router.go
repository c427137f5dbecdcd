package router

import (
	"sort"
	"strings"

	"github.com/dujiao-next/delivery/internal/authz"
	"github.com/dujiao-next/delivery/internal/cache"
	"github.com/dujiao-next/delivery/internal/config"
	adminhandlers "github.com/dujiao-next/delivery/internal/http/handlers/admin"
	driverhandlers "github.com/dujiao-next/delivery/internal/http/handlers/driver"
	publichandlers "github.com/dujiao-next/delivery/internal/http/handlers/public"
	"github.com/dujiao-next/delivery/internal/http/response"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按顾客/骑手/后台分组）
	publicHandler := publichandlers.New(c)
	driverHandler := driverhandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(cache.RateLimitPrefix("login"), cfg.Security.LoginRateLimit, "too many login attempts")
	placeOrderRule := NewRateLimitRule(cache.RateLimitPrefix("place_order"), cfg.Order.PlaceRateLimit, "too many orders")

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("identifier")), publicHandler.Login)
		}

		// 需鉴权的接口
		authorized := apiV1.Group("")
		authorized.Use(UserJWTAuthMiddleware(c.AuthService, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			// 顾客订单
			authorized.GET("/orders", publicHandler.ListOrders)
			authorized.POST("/orders", RateLimitMiddleware(redisClient, placeOrderRule, KeyByUserID), publicHandler.PlaceOrder)
			authorized.GET("/orders/:id", publicHandler.GetOrder)
			authorized.GET("/orders/:id/track", publicHandler.TrackOrder)
			authorized.GET("/orders/:id/history", publicHandler.OrderHistory)

			// 试算
			authorized.POST("/coupons/verify", publicHandler.VerifyCoupon)
			authorized.POST("/delivery-fee", publicHandler.EstimateDeliveryFee)

			// 通知
			authorized.GET("/notifications", publicHandler.ListNotifications)
			authorized.PUT("/notifications/:id/read", publicHandler.MarkNotificationRead)

			// 骑手
			authorized.GET("/driver/orders", driverHandler.ListOrders)
			authorized.PUT("/driver/orders/:id/status", driverHandler.UpdateOrderStatus)

			// 管理端
			admin := authorized.Group("/admin")
			{
				admin.GET("/orders", adminHandler.GetOrders)
				admin.GET("/orders/:id", adminHandler.GetOrder)
				admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
				admin.PUT("/orders/:id/driver", adminHandler.AssignDriver)
				admin.DELETE("/orders/:id", adminHandler.DeleteOrder)

				admin.GET("/coupons", adminHandler.GetCoupons)
				admin.POST("/coupons", adminHandler.CreateCoupon)
				admin.GET("/coupons/:id", adminHandler.GetCoupon)
				admin.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)
				admin.PUT("/coupons/:id/toggle", adminHandler.ToggleCoupon)
				admin.GET("/coupons/:id/usages", adminHandler.GetCouponUsages)

				admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

				admin.GET("/roles", adminHandler.GetRoles)
				admin.POST("/roles/:role/policies", adminHandler.GrantRolePolicy)
				admin.DELETE("/roles/:role/policies", adminHandler.RevokeRolePolicy)
				admin.GET("/permissions", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildPermissionCatalog 列出需鉴权的接口，供后台配置角色策略
func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/") || strings.HasPrefix(item.Path, "/api/v1/auth/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] == "admin" || segments[0] == "driver" {
		return segments[0] + ":" + segments[1]
	}
	return segments[0]
}
