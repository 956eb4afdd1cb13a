package service

import (
	"context"
	"strconv"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// SubscriptionService 订阅 HTTP 服务
type SubscriptionService struct {
	uc *biz.SubscriptionUsecase
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(uc *biz.SubscriptionUsecase) *SubscriptionService {
	return &SubscriptionService{uc: uc}
}

// PlanReply 当前套餐信息响应
type PlanReply struct {
	Plan    string     `json:"plan"`
	Status  string     `json:"status"`
	EndDate *time.Time `json:"end_date"`
}

// CheckoutRequest 变更套餐入参（结算是模拟的，立即生效）
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// PlanChangeItem 套餐变更历史条目
type PlanChangeItem struct {
	FromPlan  string     `json:"from_plan"`
	ToPlan    string     `json:"to_plan"`
	Action    string     `json:"action"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
}

// PlanChangeHistoryReply 套餐变更历史响应
type PlanChangeHistoryReply struct {
	Items []*PlanChangeItem `json:"items"`
	Total int               `json:"total"`
}

// UpdateProfileRequest 更新用户资料入参
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func toPlanReply(info *biz.PlanInfo) *PlanReply {
	return &PlanReply{
		Plan:    string(info.Plan),
		Status:  info.Status,
		EndDate: info.EndDate,
	}
}

// RegisterHTTPServer 注册订阅路由
func (s *SubscriptionService) RegisterHTTPServer(srv *khttp.Server) {
	r := srv.Route("/v1")
	r.GET("/subscription", s.currentPlan)
	r.POST("/subscription/checkout", s.checkout)
	r.GET("/subscription/history", s.history)
	r.PUT("/profile", s.updateProfile)
}

func (s *SubscriptionService) currentPlan(ctx khttp.Context) error {
	return handle(ctx, "/v1/subscription/get", nil, func(c context.Context) (interface{}, error) {
		info, err := s.uc.CurrentPlan(c)
		if err != nil {
			return nil, err
		}
		return toPlanReply(info), nil
	})
}

func (s *SubscriptionService) checkout(ctx khttp.Context) error {
	var in CheckoutRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	return handle(ctx, "/v1/subscription/checkout", &in, func(c context.Context) (interface{}, error) {
		info, err := s.uc.ChangePlan(c, biz.Plan(in.Plan))
		if err != nil {
			return nil, err
		}
		return toPlanReply(info), nil
	})
}

func (s *SubscriptionService) history(ctx khttp.Context) error {
	page, _ := strconv.Atoi(ctx.Query().Get("page"))
	pageSize, _ := strconv.Atoi(ctx.Query().Get("page_size"))
	return handle(ctx, "/v1/subscription/history", nil, func(c context.Context) (interface{}, error) {
		changes, total, err := s.uc.PlanChangeHistory(c, page, pageSize)
		if err != nil {
			return nil, err
		}
		items := make([]*PlanChangeItem, len(changes))
		for i, ch := range changes {
			items[i] = &PlanChangeItem{
				FromPlan:  string(ch.FromPlan),
				ToPlan:    string(ch.ToPlan),
				Action:    ch.Action,
				EndDate:   ch.EndDate,
				CreatedAt: ch.CreatedAt,
			}
		}
		return &PlanChangeHistoryReply{Items: items, Total: total}, nil
	})
}

func (s *SubscriptionService) updateProfile(ctx khttp.Context) error {
	var in UpdateProfileRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	return handle(ctx, "/v1/profile/update", &in, func(c context.Context) (interface{}, error) {
		if err := s.uc.UpdateProfile(c, in.FullName, in.Phone); err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true}, nil
	})
}
