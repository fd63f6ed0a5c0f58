package handler

import (
	"net/http"
	"strconv"

	"pivadash/internal/middleware"
	"pivadash/internal/model"
	"pivadash/internal/service"
	"pivadash/pkg/pagination"
	"pivadash/pkg/response"

	"github.com/gin-gonic/gin"
)

type CostHandler struct {
	costService      service.CostService
	dashboardService service.DashboardService
}

func NewCostHandler(costService service.CostService, dashboardService service.DashboardService) *CostHandler {
	return &CostHandler{costService: costService, dashboardService: dashboardService}
}

func (h *CostHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleProfessionista)
	costs := router.Group("/api/costs")
	{
		costs.GET("", auth, h.ListCosts)
		costs.POST("", auth, h.CreateCost)
		costs.PUT("/:id", auth, h.UpdateCost)
		costs.DELETE("/:id", auth, h.DeleteCost)
		costs.GET("/breakdown", auth, h.GetBreakdown)
	}
}

// ListCosts returns the caller's costs, newest first, with derived categories
// @Summary      List costs
// @Tags         costs
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response
// @Router       /api/costs [get]
func (h *CostHandler) ListCosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	p := pagination.Parse(c)
	costs, total, err := h.costService.ListCosts(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, costs, p.Page, p.Limit, total))
}

// CreateCost records a new cost
// @Summary      Create cost
// @Tags         costs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCostRequest  true  "Cost payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/costs [post]
func (h *CostHandler) CreateCost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cost, err := h.costService.CreateCost(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cost))
}

// UpdateCost updates an existing cost
// @Summary      Update cost
// @Tags         costs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Cost ID"
// @Param        payload  body  service.UpdateCostRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/costs/{id} [put]
func (h *CostHandler) UpdateCost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.UpdateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cost, err := h.costService.UpdateCost(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cost))
}

// DeleteCost deletes a cost
// @Summary      Delete cost
// @Tags         costs
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Cost ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/costs/{id} [delete]
func (h *CostHandler) DeleteCost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	if err := h.costService.DeleteCost(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Cost deleted successfully"}))
}

// GetBreakdown returns the cost totals per derived category for a year
// @Summary      Cost category breakdown
// @Tags         costs
// @Security     BearerAuth
// @Produce      json
// @Param        year  query     int  false  "Year (default: current)"
// @Success      200   {object}  response.Response
// @Router       /api/costs/breakdown [get]
func (h *CostHandler) GetBreakdown(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	year := 0
	if y := c.Query("year"); y != "" {
		if parsed, err := strconv.Atoi(y); err == nil && parsed > 0 {
			year = parsed
		}
	}

	breakdown, err := h.dashboardService.GetCostBreakdown(c.Request.Context(), userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, breakdown))
}
