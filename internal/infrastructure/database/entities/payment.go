package entities

import "time"

// SubscriptionPlan is a purchasable plan; seeded at migration time.
type SubscriptionPlan struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	PriceCents   int64     `gorm:"not null"`
	Currency     string    `gorm:"type:char(3);not null"`
	DurationDays int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// Transaction records a simulated payment; no real processor is involved.
type Transaction struct {
	ID          string    `gorm:"type:varchar(40);primaryKey"`
	UserID      string    `gorm:"type:varchar(64);not null;index"`
	PlanID      uint      `gorm:"not null"`
	AmountCents int64     `gorm:"not null"`
	Currency    string    `gorm:"type:char(3);not null"`
	Status      string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// UserSubscription marks an active plan window for a user.
type UserSubscription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	PlanID    uint      `gorm:"not null"`
	StartsAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
