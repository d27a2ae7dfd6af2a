package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
)

// DashboardService is what DashboardController needs
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

// DashboardController serves the dashboard counters
type DashboardController struct {
	dashboardService DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats returns record counts
// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStats}
// @Router /dashboard/stats [get]
func (c *DashboardController) GetStats(ctx *gin.Context) {
	stats, err := c.dashboardService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, stats, "")
}
