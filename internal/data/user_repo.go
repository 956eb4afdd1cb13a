package data

import (
	"context"
	"errors"
	"time"

	"xinyuan_tech/assistance-service/internal/auth"
	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// userRepo 用户仓库实现
type userRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo 创建用户仓库
func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toBizUser(m *model.User) *biz.User {
	return &biz.User{
		ID:                  m.ID,
		AuthID:              m.AuthID,
		Email:               m.Email,
		FullName:            m.FullName,
		Phone:               m.Phone,
		Role:                auth.Role(m.Role),
		Plan:                biz.Plan(m.Plan),
		SubscriptionStatus:  m.SubscriptionStatus,
		SubscriptionEndDate: m.SubscriptionEndDate,
		PushSubscription:    m.PushSubscription,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// GetUser 按内部 id 获取用户
func (r *userRepo) GetUser(ctx context.Context, id uint64) (*biz.User, error) {
	var m model.User
	err := r.data.DB(ctx).First(&m, "user_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get user %d: %v", id, err)
		return nil, err
	}
	return toBizUser(&m), nil
}

// GetUserByAuthID 按外部认证 id 获取用户
func (r *userRepo) GetUserByAuthID(ctx context.Context, authID string) (*biz.User, error) {
	var m model.User
	err := r.data.DB(ctx).First(&m, "auth_id = ?", authID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get user by auth id %s: %v", authID, err)
		return nil, err
	}
	return toBizUser(&m), nil
}

// UpdateProfile 更新用户资料
func (r *userRepo) UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) error {
	updates := map[string]interface{}{
		"full_name":  fullName,
		"phone":      phone,
		"updated_at": time.Now(),
	}
	if err := r.data.DB(ctx).Model(&model.User{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		r.log.Errorf("Failed to update profile for user %d: %v", userID, err)
		return err
	}
	return nil
}

// SetUserPlan 更新用户的套餐、订阅状态和到期时间
func (r *userRepo) SetUserPlan(ctx context.Context, userID uint64, plan biz.Plan, status string, endDate *time.Time) error {
	updates := map[string]interface{}{
		"plan":                  string(plan),
		"subscription_status":   status,
		"subscription_end_date": endDate,
		"updated_at":            time.Now(),
	}
	if err := r.data.DB(ctx).Model(&model.User{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		r.log.Errorf("Failed to set plan for user %d: %v", userID, err)
		return err
	}
	return nil
}

// MarkPastDueSubscriptions 批量标记已过期的付费订阅为 past_due
func (r *userRepo) MarkPastDueSubscriptions(ctx context.Context, now time.Time) (int, []uint64, error) {
	// 先查询需要标记的用户
	var users []model.User
	if err := r.data.DB(ctx).
		Where("plan <> ? AND subscription_status = ? AND subscription_end_date IS NOT NULL AND subscription_end_date < ?",
			constants.PlanFree, constants.SubscriptionActive, now).
		Find(&users).Error; err != nil {
		r.log.Errorf("Failed to query lapsed subscriptions: %v", err)
		return 0, nil, err
	}
	if len(users) == 0 {
		return 0, []uint64{}, nil
	}

	uids := make([]uint64, len(users))
	for i, u := range users {
		uids[i] = u.ID
	}

	result := r.data.DB(ctx).Model(&model.User{}).
		Where("plan <> ? AND subscription_status = ? AND subscription_end_date IS NOT NULL AND subscription_end_date < ?",
			constants.PlanFree, constants.SubscriptionActive, now).
		Updates(map[string]interface{}{
			"subscription_status": constants.SubscriptionPastDue,
			"updated_at":          now,
		})
	if result.Error != nil {
		r.log.Errorf("Failed to mark past due subscriptions: %v", result.Error)
		return 0, nil, result.Error
	}

	r.log.Infof("Marked %d subscriptions as past_due", result.RowsAffected)
	return int(result.RowsAffected), uids, nil
}
