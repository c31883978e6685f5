package routes

import (
	"github.com/alohapoopscoop/scoop-service/config/db"
	redisclient "github.com/alohapoopscoop/scoop-service/config/redis"
	"github.com/alohapoopscoop/scoop-service/controllers/customer_controller"
	middleware "github.com/alohapoopscoop/scoop-service/middlewares"
	"github.com/alohapoopscoop/scoop-service/middlewares/auth"
	"github.com/gin-gonic/gin"
)

func RegisterCustomerRoutes(router *gin.Engine) {
	customerController := customer_controller.NewCustomerController(db.DB, redisclient.GetRedisClient())

	router.POST("/customer/register", middleware.CombinedRateLimiter("register", "10-2m", "30-60m"), customerController.Register)
	router.POST("/customer/login", middleware.CombinedRateLimiter("login", "10-2m", "30-30m"), customerController.Login)
	router.POST("/customer/forgot-password", middleware.NewRateLimiter("5-5m", "forgot-password"), customerController.ForgotPassword)
	router.POST("/customer/reset-password", middleware.CombinedRateLimiter("reset-password", "5-1m", "20-10m"), customerController.ResetPassword)

	protected := router.Group("/customer")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/profile", customerController.GetProfile)
		protected.PATCH("/profile", customerController.UpdateProfile)
	}
}
