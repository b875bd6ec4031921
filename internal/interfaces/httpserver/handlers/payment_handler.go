package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "cloudflix/services/streaming-api/internal/domain/payment"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/responses"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// PaymentService is the slice of the payment domain service the handler uses.
type PaymentService interface {
	Plans(ctx context.Context) ([]domain.Plan, error)
	Checkout(ctx context.Context, userID string, planID uint) (*domain.Transaction, error)
	Transactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	CurrentSubscription(ctx context.Context, userID string) (*domain.Subscription, error)
}

// PaymentHandler exposes subscription plans and the simulated checkout.
type PaymentHandler struct {
	service PaymentService
	log     zerolog.Logger
}

func NewPaymentHandler(service PaymentService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With().Str("component", "payment-handler").Logger(),
	}
}

// Plans lists purchasable subscription plans.
func (h *PaymentHandler) Plans(c *gin.Context) {
	plans, err := h.service.Plans(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type checkoutRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// Checkout performs a simulated purchase of a plan.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			err.Error(), "0e2f4a6b-8c0d-4e2f-8a4b-6c8d0e2f4a6b")
		return
	}

	tx, err := h.service.Checkout(c.Request.Context(), auth.UserID(c), req.PlanID)
	if err != nil {
		responses.HandleError(c, err, "checkout failed")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// Transactions lists the caller's past checkouts.
func (h *PaymentHandler) Transactions(c *gin.Context) {
	txs, err := h.service.Transactions(c.Request.Context(), auth.UserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Subscription returns the caller's active subscription, if any.
func (h *PaymentHandler) Subscription(c *gin.Context) {
	sub, err := h.service.CurrentSubscription(c.Request.Context(), auth.UserID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to get subscription")
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "subscription": sub})
}
