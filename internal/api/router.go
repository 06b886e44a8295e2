package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/api/handler"
	"github.com/qs3c/course_store_server/internal/api/middleware"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Store     *handler.StoreHandler
	Library   *handler.LibraryHandler
	Order     *handler.OrderHandler
	Coupon    *handler.CouponHandler
	Tier      *handler.TierHandler
	Settings  *handler.SettingsHandler
	Upload    *handler.UploadHandler
	WebSocket *handler.WebSocketHandler
}

type Router struct {
	h   Handlers
	cfg *config.Config
	log *logrus.Logger
}

func NewRouter(h Handlers, cfg *config.Config, log *logrus.Logger) *Router {
	return &Router{
		h:   h,
		cfg: cfg,
		log: log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.log))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	secret := r.cfg.JWT.Secret
	api := engine.Group("/api/v1")
	{
		// WebSocket 订单动态
		api.GET("/ws", r.h.WebSocket.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.h.Auth.Register)
			auth.POST("/login", r.h.Auth.Login)
			auth.GET("/github", r.h.Auth.GithubAuth)
			auth.GET("/github/callback", r.h.Auth.GithubCallback)
		}

		// 公开接口 - 店铺
		api.GET("/settings", r.h.Settings.Get)
		api.GET("/products", r.h.Product.List)
		api.GET("/products/:id", r.h.Product.Get)
		api.GET("/tiers", r.h.Tier.List)
		api.GET("/tiers/:id", r.h.Tier.Get)

		store := api.Group("/store")
		{
			store.POST("/quote", r.h.Store.Quote)
			store.POST("/coupons/apply", r.h.Store.ApplyCoupon)
		}

		// 需要登录的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(secret))
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.h.User.GetProfile)
				user.PUT("/profile", r.h.User.UpdateProfile)
				user.POST("/avatar", r.h.User.UploadAvatar)
			}

			authenticated.POST("/store/checkout", r.h.Store.Checkout)

			library := authenticated.Group("/library")
			{
				library.GET("", r.h.Library.Library)
				library.GET("/courses/:id", r.h.Library.Player)
				library.GET("/ebooks/:id", r.h.Library.Ebook)
			}

			authenticated.GET("/orders", r.h.Order.ListMine)
			authenticated.GET("/orders/:id", r.h.Order.Get)
		}

		// 后台管理
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(secret), middleware.AdminOnly())
		{
			products := admin.Group("/products")
			{
				products.POST("", r.h.Product.Create)
				products.GET("/:id", r.h.Product.GetForEdit)
				products.PUT("/:id", r.h.Product.Update)
				products.DELETE("/:id", r.h.Product.Delete)
				products.POST("/:id/uploads", r.h.Upload.UploadContent)
				products.POST("/:id/modules", r.h.Product.AddModule)
				products.PATCH("/:id/modules/:moduleId", r.h.Product.UpdateModule)
				products.DELETE("/:id/modules/:moduleId", r.h.Product.DeleteModule)
				products.POST("/:id/modules/:moduleId/files", r.h.Product.AddFile)
				products.PATCH("/:id/modules/:moduleId/files/:fileId", r.h.Product.UpdateFile)
				products.DELETE("/:id/modules/:moduleId/files/:fileId", r.h.Product.DeleteFile)
			}

			coupons := admin.Group("/coupons")
			{
				coupons.GET("", r.h.Coupon.List)
				coupons.GET("/:id", r.h.Coupon.Get)
				coupons.POST("", r.h.Coupon.Create)
				coupons.PUT("/:id", r.h.Coupon.Update)
				coupons.DELETE("/:id", r.h.Coupon.Delete)
			}

			tiers := admin.Group("/tiers")
			{
				tiers.POST("", r.h.Tier.Create)
				tiers.PUT("/:id", r.h.Tier.Update)
				tiers.DELETE("/:id", r.h.Tier.Delete)
			}

			admin.GET("/orders", r.h.Order.List)
			admin.GET("/orders/:id", r.h.Order.Get)
			admin.PATCH("/orders/:id/status", r.h.Order.UpdateStatus)

			admin.PUT("/settings", r.h.Settings.Update)
		}
	}

	return engine
}
