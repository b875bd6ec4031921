// Package payment implements subscription plans with a simulated checkout.
// No real payment processor is wired in; every checkout settles instantly.
package payment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/utils/platformerrors"
	"cloudflix/services/streaming-api/internal/utils/videoid"
)

// Transaction statuses. Simulated checkouts settle to completed directly.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Plan is a purchasable subscription plan.
type Plan struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	DurationDays int    `json:"duration_days"`
}

// Transaction records one checkout.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PlanID      uint      `json:"plan_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subscription is an active plan window for a user.
type Subscription struct {
	PlanID    uint      `json:"plan_id"`
	PlanName  string    `json:"plan_name"`
	StartsAt  time.Time `json:"starts_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Repository defines plan and transaction persistence.
type Repository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, id uint) (*Plan, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
	CreateSubscription(ctx context.Context, userID string, planID uint, startsAt, expiresAt time.Time) error
	ActiveSubscription(ctx context.Context, userID string, at time.Time) (*Subscription, error)
}

// Service sells subscription plans.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "payment-service").Logger(),
	}
}

// Plans lists the purchasable plans.
func (s *Service) Plans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

// Checkout simulates purchasing a plan: it records a completed transaction
// and opens a subscription window for the plan's duration.
func (s *Service) Checkout(ctx context.Context, userID string, planID uint) (*Transaction, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.ActiveSubscription(ctx, userID, time.Now().UTC()); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeConflict,
			"an active subscription already exists",
			nil,
			"a7b8c9d0-e1f2-4a3b-8c4d-6e7f8a9b0c1d",
		)
	}

	now := time.Now().UTC()
	tx := &Transaction{
		ID:          videoid.NewTransaction(),
		UserID:      userID,
		PlanID:      plan.ID,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Status:      StatusCompleted,
		CreatedAt:   now,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	expires := now.AddDate(0, 0, plan.DurationDays)
	if err := s.repo.CreateSubscription(ctx, userID, plan.ID, now, expires); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Uint("plan_id", plan.ID).
		Str("transaction_id", tx.ID).
		Msg("simulated checkout completed")

	return tx, nil
}

// Transactions lists the user's past checkouts, newest first.
func (s *Service) Transactions(ctx context.Context, userID string) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// CurrentSubscription returns the user's active subscription, nil if none.
func (s *Service) CurrentSubscription(ctx context.Context, userID string) (*Subscription, error) {
	return s.repo.ActiveSubscription(ctx, userID, time.Now().UTC())
}
