package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pcmarket_dev_v1_202608/internal/controller"
	"pcmarket_dev_v1_202608/internal/middleware"

	_ "pcmarket_dev_v1_202608/docs"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtrl *controller.AuthController,
	discoveryCtrl *controller.DiscoveryController,
	listingCtrl *controller.ListingController,
	analyticsCtrl *controller.AnalyticsController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtrl.Register)
			auth.POST("/login", authCtrl.Login)
			auth.POST("/refresh", authCtrl.RefreshToken)
			auth.GET("/profile", middleware.JWTAuth(), authCtrl.Profile)
		}

		// discover 买家侧发现页，无需登录
		discover := api.Group("/discover")
		{
			// POST /api/discover
			discover.POST("", discoveryCtrl.Browse)
			discover.GET("/products/:id", discoveryCtrl.GetProduct)
		}

		// events 行为事件上报，游客可用，登录则归因到用户
		api.POST("/events", middleware.OptionalAuth(), analyticsCtrl.Track)

		// listings 卖家侧，全部需要登录
		listings := api.Group("/listings", middleware.JWTAuth())
		{
			listings.GET("", listingCtrl.ListMine)
			listings.GET("/stats", listingCtrl.MyStats)
			listings.POST("", listingCtrl.CreateDraft)
			listings.GET("/:id", listingCtrl.GetMine)
			listings.PATCH("/:id", listingCtrl.Edit)
			listings.DELETE("/:id", listingCtrl.Delete)

			// 发布向导
			listings.PUT("/:id/images", listingCtrl.AttachImages)
			listings.POST("/:id/grade", listingCtrl.SuggestGrade)
			listings.POST("/:id/grade/accept", listingCtrl.AcceptGrade)
			listings.POST("/:id/publish", listingCtrl.Publish)

			// 状态流转
			listings.POST("/:id/pause", listingCtrl.Pause)
			listings.POST("/:id/resume", listingCtrl.Resume)
			listings.POST("/:id/sold", listingCtrl.MarkSold)
			listings.POST("/:id/reactivate", listingCtrl.Reactivate)

			// 卖家数据
			listings.GET("/:id/analytics", analyticsCtrl.Stats)
			listings.GET("/:id/analytics/daily", analyticsCtrl.DailyStats)
		}
	}
}
