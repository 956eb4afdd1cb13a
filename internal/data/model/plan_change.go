package model

import "time"

// PlanChange 套餐变更记录模型
type PlanChange struct {
	ID        uint64     `gorm:"primaryKey;column:plan_change_id"`
	UserID    uint64     `gorm:"column:user_id;index;not null"`
	FromPlan  string     `gorm:"column:from_plan;not null"`
	ToPlan    string     `gorm:"column:to_plan;not null"`
	Action    string     `gorm:"column:action;not null"` // upgraded, downgraded
	EndDate   *time.Time `gorm:"column:end_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (PlanChange) TableName() string { return "plan_change" }
