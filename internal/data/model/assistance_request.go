package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssistanceRequest 救援请求模型
// 价格和坐标使用定点 decimal 列，避免货币/坐标的浮点漂移
type AssistanceRequest struct {
	ID          uint64          `gorm:"primaryKey;column:assistance_request_id"`
	UserID      uint64          `gorm:"column:user_id;index;not null"`
	ProviderID  *uint64         `gorm:"column:provider_id"` // 技师/门店老板
	VehicleID   *uint64         `gorm:"column:vehicle_id"`
	Type        string          `gorm:"column:type;not null"`
	Description string          `gorm:"column:description"`
	Latitude    decimal.Decimal `gorm:"column:latitude;type:decimal(10,7);not null"`
	Longitude   decimal.Decimal `gorm:"column:longitude;type:decimal(10,7);not null"`
	Status      string          `gorm:"column:status;default:'pending';not null;index"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2)"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Provider *User `gorm:"foreignKey:ProviderID;references:ID"`
}

func (AssistanceRequest) TableName() string { return "assistance_request" }
