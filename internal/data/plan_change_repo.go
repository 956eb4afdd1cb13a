package data

import (
	"context"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
)

// planChangeRepo 套餐变更记录仓库实现
type planChangeRepo struct {
	data *Data
	log  *log.Helper
}

// NewPlanChangeRepo 创建套餐变更记录仓库
func NewPlanChangeRepo(data *Data, logger log.Logger) biz.PlanChangeRepo {
	return &planChangeRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// AddPlanChange 追加套餐变更记录
func (r *planChangeRepo) AddPlanChange(ctx context.Context, change *biz.PlanChange) error {
	m := &model.PlanChange{
		UserID:    change.UserID,
		FromPlan:  string(change.FromPlan),
		ToPlan:    string(change.ToPlan),
		Action:    change.Action,
		EndDate:   change.EndDate,
		CreatedAt: change.CreatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to add plan change for user %d: %v", change.UserID, err)
		return err
	}
	change.ID = m.ID
	return nil
}

// ListPlanChanges 分页获取用户的套餐变更历史，按时间倒序
func (r *planChangeRepo) ListPlanChanges(ctx context.Context, userID uint64, page, pageSize int) ([]*biz.PlanChange, int, error) {
	db := r.data.DB(ctx).Model(&model.PlanChange{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count plan changes for user %d: %v", userID, err)
		return nil, 0, err
	}

	var models []model.PlanChange
	err := db.Order("created_at DESC, plan_change_id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list plan changes for user %d: %v", userID, err)
		return nil, 0, err
	}

	changes := make([]*biz.PlanChange, len(models))
	for i, m := range models {
		changes[i] = &biz.PlanChange{
			ID:        m.ID,
			UserID:    m.UserID,
			FromPlan:  biz.Plan(m.FromPlan),
			ToPlan:    biz.Plan(m.ToPlan),
			Action:    m.Action,
			EndDate:   m.EndDate,
			CreatedAt: m.CreatedAt,
		}
	}
	return changes, int(total), nil
}
