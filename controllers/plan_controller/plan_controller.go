package plan_controller

import (
	"net/http"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanController serves the public pricing surface used by the marketing
// pages and the wizard's plan step.
type PlanController struct {
	db *pgxpool.Pool
}

func NewPlanController(db *pgxpool.Pool) *PlanController {
	return &PlanController{db: db}
}

// ListPlans returns every service plan with its base price.
func (pc *PlanController) ListPlans(c *gin.Context) {
	plans, err := models.ListServicePlans(c.Request.Context(), pc.db)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list service plans: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// QuotePrice computes the total for a plan and dog count without starting a
// wizard, for live price display on the pricing page.
func (pc *PlanController) QuotePrice(c *gin.Context) {
	frequency := booking.ParseFrequency(c.Query("plan"))
	dogs := booking.ParseDogCount(c.Query("dogs"))
	total := booking.CalculatePrice(frequency, dogs)

	c.JSON(http.StatusOK, gin.H{
		"plan":      frequency,
		"num_dogs":  dogs,
		"total":     total,
		"formatted": booking.FormatPrice(total),
	})
}
