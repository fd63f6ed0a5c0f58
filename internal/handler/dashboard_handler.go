package handler

import (
	"net/http"

	"pivadash/internal/middleware"
	"pivadash/internal/model"
	"pivadash/internal/service"
	"pivadash/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleProfessionista)
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("/taxes", auth, h.GetTaxes)
		dashboard.GET("/profitability", auth, h.GetProfitability)
	}
}

// GetTaxes returns the current tax computation, cached up to the staleness
// window unless ?refresh=true forces a recomputation
// @Summary      Tax dashboard
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        refresh  query     bool  false  "Bypass the cache"
// @Success      200      {object}  response.Response
// @Router       /api/dashboard/taxes [get]
func (h *DashboardHandler) GetTaxes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	refresh := c.Query("refresh") == "true"
	result, err := h.dashboardService.GetTaxes(c.Request.Context(), userID, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetProfitability returns the profitability and health computation
// @Summary      Profitability dashboard
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        refresh  query     bool  false  "Bypass the cache"
// @Success      200      {object}  response.Response
// @Router       /api/dashboard/profitability [get]
func (h *DashboardHandler) GetProfitability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	refresh := c.Query("refresh") == "true"
	result, err := h.dashboardService.GetProfit(c.Request.Context(), userID, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
