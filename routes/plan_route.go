package routes

import (
	"github.com/alohapoopscoop/scoop-service/config/db"
	"github.com/alohapoopscoop/scoop-service/controllers/plan_controller"
	"github.com/gin-gonic/gin"
)

func RegisterPlanRoutes(router *gin.Engine) {
	planController := plan_controller.NewPlanController(db.DB)

	router.GET("/plans", planController.ListPlans)
	router.GET("/plans/quote", planController.QuotePrice)
}
