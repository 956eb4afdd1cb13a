package biz

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/auth"
	"xinyuan_tech/assistance-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// Vehicle 车辆
type Vehicle struct {
	ID        uint64
	UserID    uint64
	Make      string
	Model     string
	Year      int
	Plate     string
	Vin       string
	Color     string
	Mileage   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VehicleRepo 车辆仓库接口
type VehicleRepo interface {
	CountVehicles(ctx context.Context, userID uint64) (int, error)
	CreateVehicle(ctx context.Context, vehicle *Vehicle) error
	ListVehicles(ctx context.Context, userID uint64) ([]*Vehicle, error)
	GetVehicle(ctx context.Context, id uint64) (*Vehicle, error)
	DeleteVehicle(ctx context.Context, id uint64) error
	// GetDefaultVehicle 获取用户的默认车辆：created_at 最早的一辆（id 升序兜底），没有车辆返回 nil
	GetDefaultVehicle(ctx context.Context, userID uint64) (*Vehicle, error)
}

// VehicleUsecase 车辆业务逻辑
type VehicleUsecase struct {
	repo     VehicleRepo
	userRepo UserRepo
	quota    *QuotaConfig
	log      *log.Helper
}

// NewVehicleUsecase 创建车辆业务用例
func NewVehicleUsecase(repo VehicleRepo, userRepo UserRepo, quota *QuotaConfig, logger log.Logger) *VehicleUsecase {
	return &VehicleUsecase{
		repo:     repo,
		userRepo: userRepo,
		quota:    quota,
		log:      log.NewHelper(logger),
	}
}

// AddVehicle 添加车辆
// 数量受套餐配额限制，超限时返回错误提示升级，绝不静默创建
func (uc *VehicleUsecase) AddVehicle(ctx context.Context, vehicle *Vehicle) (*Vehicle, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	count, err := uc.repo.CountVehicles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	limit := uc.quota.VehicleLimit(user.Plan)
	if !CanConsume(limit, count) {
		uc.log.Infof("Vehicle limit reached: userID=%d, plan=%s, count=%d, limit=%d", user.ID, user.Plan, count, limit)
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeVehicleLimitReached)
	}

	now := time.Now()
	vehicle.UserID = user.ID
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	if err := uc.repo.CreateVehicle(ctx, vehicle); err != nil {
		uc.log.Errorf("Failed to create vehicle: %v", err)
		return nil, err
	}
	return vehicle, nil
}

// ListVehicles 获取当前用户的车辆列表
func (uc *VehicleUsecase) ListVehicles(ctx context.Context) ([]*Vehicle, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListVehicles(ctx, user.ID)
}

// DeleteVehicle 删除车辆（仅限车主本人）
func (uc *VehicleUsecase) DeleteVehicle(ctx context.Context, vehicleID uint64) error {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return err
	}

	vehicle, err := uc.repo.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeVehicleNotFound)
	}
	if vehicle.UserID != user.ID && !auth.IsAdmin(ctx) {
		return kerrors.Forbidden("FORBIDDEN", "permission denied: you can only delete your own vehicles")
	}

	return uc.repo.DeleteVehicle(ctx, vehicleID)
}

// VehicleQuota 获取车辆配额使用情况
func (uc *VehicleUsecase) VehicleQuota(ctx context.Context) (*QuotaStatus, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	count, err := uc.repo.CountVehicles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &QuotaStatus{Used: count, Limit: uc.quota.VehicleLimit(user.Plan)}, nil
}
