package data

import (
	"context"
	"errors"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// assistanceRequestRepo 救援请求仓库实现
type assistanceRequestRepo struct {
	data *Data
	log  *log.Helper
}

// NewAssistanceRequestRepo 创建救援请求仓库
func NewAssistanceRequestRepo(data *Data, logger log.Logger) biz.AssistanceRequestRepo {
	return &assistanceRequestRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toBizRequest(m *model.AssistanceRequest) *biz.AssistanceRequest {
	req := &biz.AssistanceRequest{
		ID:          m.ID,
		UserID:      m.UserID,
		ProviderID:  m.ProviderID,
		VehicleID:   m.VehicleID,
		Type:        biz.ServiceType(m.Type),
		Description: m.Description,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Status:      biz.RequestStatus(m.Status),
		Price:       m.Price,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Provider != nil {
		req.Provider = toBizUser(m.Provider)
	}
	return req
}

// CreateRequest 创建救援请求
func (r *assistanceRequestRepo) CreateRequest(ctx context.Context, req *biz.AssistanceRequest) error {
	m := &model.AssistanceRequest{
		UserID:      req.UserID,
		ProviderID:  req.ProviderID,
		VehicleID:   req.VehicleID,
		Type:        string(req.Type),
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      string(req.Status),
		Price:       req.Price,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create assistance request for user %d: %v", req.UserID, err)
		return err
	}
	req.ID = m.ID
	return nil
}

// GetRequest 按 id 获取请求并预加载服务商，不存在返回 nil
func (r *assistanceRequestRepo) GetRequest(ctx context.Context, id uint64) (*biz.AssistanceRequest, error) {
	var m model.AssistanceRequest
	err := r.data.DB(ctx).Preload("Provider").First(&m, "assistance_request_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get assistance request %d: %v", id, err)
		return nil, err
	}
	return toBizRequest(&m), nil
}

// CountSuccessfulRequestsSince 统计用户自 since 起的成功请求数
// 成功 = accepted/in_progress/completed，pending 和 cancelled 不计入
func (r *assistanceRequestRepo) CountSuccessfulRequestsSince(ctx context.Context, userID uint64, since time.Time) (int, error) {
	statuses := make([]string, len(biz.SuccessfulStatuses))
	for i, s := range biz.SuccessfulStatuses {
		statuses[i] = string(s)
	}
	var total int64
	err := r.data.DB(ctx).Model(&model.AssistanceRequest{}).
		Where("user_id = ? AND status IN ? AND created_at >= ?", userID, statuses, since).
		Count(&total).Error
	if err != nil {
		r.log.Errorf("Failed to count requests for user %d: %v", userID, err)
		return 0, err
	}
	return int(total), nil
}

// UpdateRequestStatus 单条条件更新
// 状态检查、provider_id 检查和写入都在同一条 UPDATE 里完成，
// 并发接单时由数据库行锁保证只有一个更新生效
func (r *assistanceRequestRepo) UpdateRequestStatus(ctx context.Context, id uint64,
	from []biz.RequestStatus, to biz.RequestStatus,
	expectNoProvider bool, expectedProviderID, setProviderID *uint64) (bool, error) {

	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query := r.data.DB(ctx).Model(&model.AssistanceRequest{}).
		Where("assistance_request_id = ? AND status IN ?", id, statuses)
	if expectNoProvider {
		query = query.Where("provider_id IS NULL")
	}
	if expectedProviderID != nil {
		query = query.Where("provider_id = ?", *expectedProviderID)
	}

	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if setProviderID != nil {
		updates["provider_id"] = *setProviderID
	}

	result := query.Updates(updates)
	if result.Error != nil {
		r.log.Errorf("Failed to update assistance request %d to %s: %v", id, to, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
