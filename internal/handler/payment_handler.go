package handler

import (
	"net/http"
	"strconv"

	"pivadash/internal/middleware"
	"pivadash/internal/model"
	"pivadash/internal/service"
	"pivadash/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(model.RoleAdmin, model.RoleProfessionista)
	payments := router.Group("/api/payments")
	{
		payments.GET("", auth, h.ListPayments)
		payments.POST("", auth, h.RecordPayment)
		payments.GET("/schedule", auth, h.GetSchedule)
		payments.PATCH("/:id/paid", auth, h.MarkPaid)
	}
}

// GetSchedule returns upcoming obligations reconciled against the ledger
// @Summary      Payment schedule
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/payments/schedule [get]
func (h *PaymentHandler) GetSchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	schedule, err := h.paymentService.GetSchedule(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, schedule))
}

// ListPayments returns the recorded tax payments for a year
// @Summary      List tax payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        year  query     int  false  "Year (default: current)"
// @Success      200   {object}  response.Response
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
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

	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// RecordPayment appends a payment to the ledger
// @Summary      Record tax payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.RecordPaymentRequest  true  "Payment payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

type markPaymentPaidRequest struct {
	PaidAt string `json:"paid_at"` // YYYY-MM-DD, empty = today
}

// MarkPaid marks a ledger entry as settled
// @Summary      Mark payment paid
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true   "Payment ID"
// @Param        payload  body  markPaymentPaidRequest  false  "Paid date"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/payments/{id}/paid [patch]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req markPaymentPaidRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	if err := h.paymentService.MarkPaid(c.Request.Context(), userID, c.Param("id"), req.PaidAt); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Payment marked as paid"}))
}
