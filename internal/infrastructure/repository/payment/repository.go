package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "cloudflix/services/streaming-api/internal/domain/payment"
	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
	"cloudflix/services/streaming-api/internal/utils/platformerrors"
)

// Repository handles plan, transaction and subscription persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var rows []entities.SubscriptionPlan
	err := r.db.WithContext(ctx).Order("price_cents ASC").Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list plans",
			err,
			"9f1a3b5c-0d2e-4f4a-8b6c-7d8e9f0a1b2c",
		)
	}

	out := make([]domain.Plan, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPlan(row))
	}
	return out, nil
}

func (r *Repository) GetPlan(ctx context.Context, id uint) (*domain.Plan, error) {
	var entity entities.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"plan not found",
				err,
				"1b3c5d7e-2f4a-4b6c-8d8e-9f0a1b2c3d4f",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get plan",
			err,
			"3d5e7f9a-4b6c-4d8e-8f0a-1b2c3d4e5f6b",
		)
	}
	plan := mapPlan(entity)
	return &plan, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	entity := entities.Transaction{
		ID:          tx.ID,
		UserID:      tx.UserID,
		PlanID:      tx.PlanID,
		AmountCents: tx.AmountCents,
		Currency:    tx.Currency,
		Status:      tx.Status,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create transaction",
			err,
			"5f7a9b1c-6d8e-4f0a-8b2c-3d4e5f6a7b8d",
		)
	}
	tx.CreatedAt = entity.CreatedAt
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var rows []entities.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list transactions",
			err,
			"7b9c1d3e-8f0a-4b2c-8d4e-5f6a7b8c9d0f",
		)
	}

	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Transaction{
			ID:          row.ID,
			UserID:      row.UserID,
			PlanID:      row.PlanID,
			AmountCents: row.AmountCents,
			Currency:    row.Currency,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) CreateSubscription(ctx context.Context, userID string, planID uint, startsAt, expiresAt time.Time) error {
	entity := entities.UserSubscription{
		UserID:    userID,
		PlanID:    planID,
		StartsAt:  startsAt,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create subscription",
			err,
			"9d1e3f5a-0b2c-4d4e-8f6a-7b8c9d0e1f2b",
		)
	}
	return nil
}

func mapPlan(entity entities.SubscriptionPlan) domain.Plan {
	return domain.Plan{
		ID:           entity.ID,
		Name:         entity.Name,
		PriceCents:   entity.PriceCents,
		Currency:     entity.Currency,
		DurationDays: entity.DurationDays,
	}
}

// ActiveSubscription returns the subscription window containing the given
// instant, nil when the user has none.
func (r *Repository) ActiveSubscription(ctx context.Context, userID string, at time.Time) (*domain.Subscription, error) {
	var row struct {
		PlanID    uint
		PlanName  string
		StartsAt  time.Time
		ExpiresAt time.Time
	}
	err := r.db.WithContext(ctx).
		Table("user_subscriptions").
		Select("user_subscriptions.plan_id, subscription_plans.name AS plan_name, user_subscriptions.starts_at, user_subscriptions.expires_at").
		Joins("JOIN subscription_plans ON subscription_plans.id = user_subscriptions.plan_id").
		Where("user_subscriptions.user_id = ? AND user_subscriptions.starts_at <= ? AND user_subscriptions.expires_at > ?", userID, at, at).
		Order("user_subscriptions.expires_at DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get active subscription",
			err,
			"1f3a5b7c-2d4e-4f6a-8b8c-9d0e1f2a3b4d",
		)
	}
	if row.PlanID == 0 {
		return nil, nil
	}
	return &domain.Subscription{
		PlanID:    row.PlanID,
		PlanName:  row.PlanName,
		StartsAt:  row.StartsAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}
