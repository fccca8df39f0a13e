package api

import (
	"net/http"

	"deliwaste/server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsController serves the dashboard and the next-day plan.
type AnalyticsController struct {
	dashboardService *services.DashboardService
	planService      *services.TomorrowPlanService
	log              *zap.Logger
}

func NewAnalyticsController(
	dashboardService *services.DashboardService,
	planService *services.TomorrowPlanService,
	log *zap.Logger,
) *AnalyticsController {
	return &AnalyticsController{
		dashboardService: dashboardService,
		planService:      planService,
		log:              log,
	}
}

// GetDashboard GET /api/v1/dashboard?view=day|week|month&anchor_date=YYYY-MM-DD
// view defaults to week and anchor_date to today in the business timezone.
func (ac *AnalyticsController) GetDashboard(c *gin.Context) {
	view := c.DefaultQuery("view", string(services.ViewWeek))
	anchor := c.Query("anchor_date")

	dashboard, err := ac.dashboardService.BuildDashboard(c.Request.Context(), view, anchor)
	if err != nil {
		respondError(c, ac.log, "failed to build dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetTomorrowPlan GET /api/v1/tomorrow-plan?target_date=YYYY-MM-DD
// target_date defaults to tomorrow.
func (ac *AnalyticsController) GetTomorrowPlan(c *gin.Context) {
	plan, err := ac.planService.BuildTomorrowPlan(c.Request.Context(), c.Query("target_date"))
	if err != nil {
		respondError(c, ac.log, "failed to build tomorrow plan", err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
