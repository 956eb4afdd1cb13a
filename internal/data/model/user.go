package model

import "time"

// User 用户模型（订阅信息内嵌）
type User struct {
	ID                  uint64     `gorm:"primaryKey;column:user_id"`
	AuthID              string     `gorm:"column:auth_id;uniqueIndex;not null"`
	Email               string     `gorm:"column:email;uniqueIndex;not null"`
	FullName            string     `gorm:"column:full_name"`
	Phone               string     `gorm:"column:phone"`
	Role                string     `gorm:"column:role;default:'driver';not null"`
	Plan                string     `gorm:"column:plan;default:'free';not null"`
	SubscriptionStatus  string     `gorm:"column:subscription_status;default:'inactive';not null"`
	SubscriptionEndDate *time.Time `gorm:"column:subscription_end_date"`
	PushSubscription    string     `gorm:"column:push_subscription"` // Web Push 订阅信息 JSON
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "user" }
