package biz

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/auth"
	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// User 用户（订阅信息内嵌在用户记录上）
type User struct {
	ID                  uint64
	AuthID              string // 外部认证系统的 subject id
	Email               string
	FullName            string
	Phone               string
	Role                auth.Role
	Plan                Plan
	SubscriptionStatus  string // active, inactive, past_due
	SubscriptionEndDate *time.Time
	PushSubscription    string // Web Push 订阅信息 JSON
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UserRepo 用户仓库接口
type UserRepo interface {
	GetUser(ctx context.Context, id uint64) (*User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*User, error)
	UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) error
	SetUserPlan(ctx context.Context, userID uint64, plan Plan, status string, endDate *time.Time) error
	// MarkPastDueSubscriptions 批量标记已过期的付费订阅（用于定时任务）
	MarkPastDueSubscriptions(ctx context.Context, now time.Time) (int, []uint64, error)
}

// PlanChange 套餐变更记录
type PlanChange struct {
	ID        uint64
	UserID    uint64
	FromPlan  Plan
	ToPlan    Plan
	Action    string // upgraded, downgraded
	EndDate   *time.Time
	CreatedAt time.Time
}

// PlanChangeRepo 套餐变更记录仓库接口
type PlanChangeRepo interface {
	AddPlanChange(ctx context.Context, change *PlanChange) error
	ListPlanChanges(ctx context.Context, userID uint64, page, pageSize int) ([]*PlanChange, int, error)
}

// PlanInfo 用户当前套餐信息
type PlanInfo struct {
	Plan    Plan
	Status  string
	EndDate *time.Time
}

// SubscriptionUsecase 订阅业务逻辑
type SubscriptionUsecase struct {
	userRepo   UserRepo
	changeRepo PlanChangeRepo
	tx         Transaction
	log        *log.Helper
}

// NewSubscriptionUsecase 创建订阅业务用例
func NewSubscriptionUsecase(userRepo UserRepo, changeRepo PlanChangeRepo, tx Transaction, logger log.Logger) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		userRepo:   userRepo,
		changeRepo: changeRepo,
		tx:         tx,
		log:        log.NewHelper(logger),
	}
}

// getActor 解析当前请求的操作者
func getActor(ctx context.Context, repo UserRepo) (*User, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := repo.GetUserByAuthID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeUserNotFound)
	}
	return user, nil
}

// CurrentPlan 获取当前用户的套餐信息
// 没有用户记录时视为隐式 free 套餐，不报错
func (uc *SubscriptionUsecase) CurrentPlan(ctx context.Context) (*PlanInfo, error) {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetUserByAuthID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &PlanInfo{Plan: PlanFree, Status: constants.SubscriptionInactive}, nil
	}
	return &PlanInfo{
		Plan:    user.Plan,
		Status:  user.SubscriptionStatus,
		EndDate: user.SubscriptionEndDate,
	}, nil
}

// ChangePlan 变更用户套餐
// 付费套餐生效 30 天并置为 active；降级到 free 清空到期时间并置为 inactive
// 支付流程是模拟的：结算在这里立即完成
func (uc *SubscriptionUsecase) ChangePlan(ctx context.Context, newPlan Plan) (*PlanInfo, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("ChangePlan: userID=%d, plan=%s -> %s", user.ID, user.Plan, newPlan)

	if !newPlan.IsValid() {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeUnknownPlan)
	}

	// 幂等：套餐未变化时直接返回当前信息
	if user.Plan == newPlan {
		return &PlanInfo{
			Plan:    user.Plan,
			Status:  user.SubscriptionStatus,
			EndDate: user.SubscriptionEndDate,
		}, nil
	}

	now := time.Now()
	var status string
	var endDate *time.Time
	if newPlan == PlanFree {
		status = constants.SubscriptionInactive
	} else {
		status = constants.SubscriptionActive
		end := now.Add(constants.SubscriptionDurationDays * 24 * time.Hour)
		endDate = &end
	}

	action := constants.PlanActionUpgraded
	if newPlan.rank() < user.Plan.rank() {
		action = constants.PlanActionDowngraded
	}

	err = uc.tx.Exec(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.SetUserPlan(ctx, user.ID, newPlan, status, endDate); err != nil {
			uc.log.Errorf("Failed to set user plan: %v", err)
			return err
		}
		change := &PlanChange{
			UserID:    user.ID,
			FromPlan:  user.Plan,
			ToPlan:    newPlan,
			Action:    action,
			EndDate:   endDate,
			CreatedAt: now,
		}
		if err := uc.changeRepo.AddPlanChange(ctx, change); err != nil {
			uc.log.Errorf("Failed to add plan change record: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Plan changed successfully: userID=%d, plan=%s, action=%s", user.ID, newPlan, action)
	return &PlanInfo{Plan: newPlan, Status: status, EndDate: endDate}, nil
}

// PlanChangeHistory 获取套餐变更历史
func (uc *SubscriptionUsecase) PlanChangeHistory(ctx context.Context, page, pageSize int) ([]*PlanChange, int, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return uc.changeRepo.ListPlanChanges(ctx, user.ID, page, pageSize)
}

// UpdateProfile 更新用户资料
func (uc *SubscriptionUsecase) UpdateProfile(ctx context.Context, fullName, phone string) error {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdateProfile(ctx, user.ID, fullName, phone)
}

// MarkPastDueSubscriptions 批量标记已过期的付费订阅
// 源系统不会自动降级过期订阅；这里只把 active 的过期付费用户标记为
// past_due，套餐字段不动，留给人工对账处理。是否执行由配置开关控制
func (uc *SubscriptionUsecase) MarkPastDueSubscriptions(ctx context.Context) (int, []uint64, error) {
	count, uids, err := uc.userRepo.MarkPastDueSubscriptions(ctx, time.Now())
	if err != nil {
		uc.log.Errorf("Failed to mark past due subscriptions: %v", err)
		return 0, nil, err
	}
	uc.log.Infof("Marked %d subscriptions as past_due", count)
	return count, uids, nil
}
