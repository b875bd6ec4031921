package database

import (
	"gorm.io/gorm"

	"cloudflix/services/streaming-api/internal/infrastructure/database/entities"
)

// Migrate applies the schema and seeds reference data. It runs on every
// start; AutoMigrate and the seed are both idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Video{},
		&entities.Tag{},
		&entities.VideoTag{},
		&entities.Comment{},
		&entities.Rating{},
		&entities.WatchHistory{},
		&entities.SubscriptionPlan{},
		&entities.Transaction{},
		&entities.UserSubscription{},
	); err != nil {
		return err
	}
	return seedPlans(db)
}

func seedPlans(db *gorm.DB) error {
	plans := []entities.SubscriptionPlan{
		{Name: "basic", PriceCents: 499, Currency: "USD", DurationDays: 30},
		{Name: "standard", PriceCents: 999, Currency: "USD", DurationDays: 30},
		{Name: "premium", PriceCents: 1499, Currency: "USD", DurationDays: 30},
	}
	for _, plan := range plans {
		err := db.Where(entities.SubscriptionPlan{Name: plan.Name}).
			FirstOrCreate(&entities.SubscriptionPlan{}, plan).Error
		if err != nil {
			return err
		}
	}
	return nil
}
