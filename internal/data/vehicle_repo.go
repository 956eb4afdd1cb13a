package data

import (
	"context"
	"errors"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// vehicleRepo 车辆仓库实现
type vehicleRepo struct {
	data *Data
	log  *log.Helper
}

// NewVehicleRepo 创建车辆仓库
func NewVehicleRepo(data *Data, logger log.Logger) biz.VehicleRepo {
	return &vehicleRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toBizVehicle(m *model.Vehicle) *biz.Vehicle {
	return &biz.Vehicle{
		ID:        m.ID,
		UserID:    m.UserID,
		Make:      m.Make,
		Model:     m.Model,
		Year:      m.Year,
		Plate:     m.Plate,
		Vin:       m.Vin,
		Color:     m.Color,
		Mileage:   m.Mileage,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CountVehicles 统计用户的车辆数量
func (r *vehicleRepo) CountVehicles(ctx context.Context, userID uint64) (int, error) {
	var total int64
	if err := r.data.DB(ctx).Model(&model.Vehicle{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count vehicles for user %d: %v", userID, err)
		return 0, err
	}
	return int(total), nil
}

// CreateVehicle 创建车辆
func (r *vehicleRepo) CreateVehicle(ctx context.Context, vehicle *biz.Vehicle) error {
	m := &model.Vehicle{
		UserID:    vehicle.UserID,
		Make:      vehicle.Make,
		Model:     vehicle.Model,
		Year:      vehicle.Year,
		Plate:     vehicle.Plate,
		Vin:       vehicle.Vin,
		Color:     vehicle.Color,
		Mileage:   vehicle.Mileage,
		CreatedAt: vehicle.CreatedAt,
		UpdatedAt: vehicle.UpdatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create vehicle for user %d: %v", vehicle.UserID, err)
		return err
	}
	vehicle.ID = m.ID
	return nil
}

// ListVehicles 获取用户的车辆列表
func (r *vehicleRepo) ListVehicles(ctx context.Context, userID uint64) ([]*biz.Vehicle, error) {
	var models []model.Vehicle
	if err := r.data.DB(ctx).Where("user_id = ?", userID).Order("created_at ASC, vehicle_id ASC").Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list vehicles for user %d: %v", userID, err)
		return nil, err
	}
	vehicles := make([]*biz.Vehicle, len(models))
	for i := range models {
		vehicles[i] = toBizVehicle(&models[i])
	}
	return vehicles, nil
}

// GetVehicle 按 id 获取车辆
func (r *vehicleRepo) GetVehicle(ctx context.Context, id uint64) (*biz.Vehicle, error) {
	var m model.Vehicle
	err := r.data.DB(ctx).First(&m, "vehicle_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get vehicle %d: %v", id, err)
		return nil, err
	}
	return toBizVehicle(&m), nil
}

// DeleteVehicle 删除车辆
func (r *vehicleRepo) DeleteVehicle(ctx context.Context, id uint64) error {
	if err := r.data.DB(ctx).Delete(&model.Vehicle{}, "vehicle_id = ?", id).Error; err != nil {
		r.log.Errorf("Failed to delete vehicle %d: %v", id, err)
		return err
	}
	return nil
}

// GetDefaultVehicle 获取用户最早创建的车辆（id 升序兜底），没有返回 nil
func (r *vehicleRepo) GetDefaultVehicle(ctx context.Context, userID uint64) (*biz.Vehicle, error) {
	var m model.Vehicle
	err := r.data.DB(ctx).Where("user_id = ?", userID).Order("created_at ASC, vehicle_id ASC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get default vehicle for user %d: %v", userID, err)
		return nil, err
	}
	return toBizVehicle(&m), nil
}
