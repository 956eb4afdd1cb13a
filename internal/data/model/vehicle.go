package model

import "time"

// Vehicle 车辆模型
type Vehicle struct {
	ID        uint64    `gorm:"primaryKey;column:vehicle_id"`
	UserID    uint64    `gorm:"column:user_id;index;not null"`
	Make      string    `gorm:"column:make;not null"`
	Model     string    `gorm:"column:model;not null"`
	Year      int       `gorm:"column:year;not null"`
	Plate     string    `gorm:"column:plate;not null"`
	Vin       string    `gorm:"column:vin"`
	Color     string    `gorm:"column:color"`
	Mileage   int       `gorm:"column:mileage"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vehicle) TableName() string { return "vehicle" }
