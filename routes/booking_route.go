package routes

import (
	"github.com/alohapoopscoop/scoop-service/clients"
	"github.com/alohapoopscoop/scoop-service/config/db"
	redisclient "github.com/alohapoopscoop/scoop-service/config/redis"
	"github.com/alohapoopscoop/scoop-service/controllers/booking_controller"
	middleware "github.com/alohapoopscoop/scoop-service/middlewares"
	"github.com/alohapoopscoop/scoop-service/middlewares/auth"
	"github.com/gin-gonic/gin"
)

func RegisterBookingRoutes(router *gin.Engine) {
	bookingController := booking_controller.NewBookingController(db.DB, redisclient.GetRedisClient(), clients.NewStripeClient())

	// The wizard is usable without an account; OptionalAuthMiddleware
	// pre-fills the draft when a session token is present.
	wizard := router.Group("/booking")
	wizard.Use(auth.OptionalAuthMiddleware())
	{
		wizard.GET("/time-slots", bookingController.ListTimeSlots)
		wizard.POST("/wizard", middleware.NewRateLimiter("30-5m", "wizard-start"), bookingController.StartWizard)
		wizard.GET("/wizard/:wizard_id", bookingController.GetWizard)
		wizard.POST("/wizard/:wizard_id/next", bookingController.NextStep)
		wizard.POST("/wizard/:wizard_id/back", bookingController.PrevStep)
		wizard.POST("/wizard/:wizard_id/checkout", middleware.CombinedRateLimiter("checkout", "10-2m", "30-60m"), bookingController.StartCheckout)
		wizard.POST("/verify", middleware.CombinedRateLimiter("verify-payment", "20-2m", "60-60m"), bookingController.VerifyPayment)
	}

	// Booking history and cancellation require an account.
	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("", bookingController.ListBookings)
		protected.POST("/:booking_id/cancel", bookingController.CancelBooking)
	}
}
