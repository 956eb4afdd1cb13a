package service

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/shopspring/decimal"
)

// AssistanceService 救援请求 HTTP 服务
type AssistanceService struct {
	uc *biz.AssistanceUsecase
}

// NewAssistanceService 创建救援请求服务
func NewAssistanceService(uc *biz.AssistanceUsecase) *AssistanceService {
	return &AssistanceService{uc: uc}
}

// CreateRequestRequest 创建救援请求入参
type CreateRequestRequest struct {
	Latitude    decimal.Decimal `json:"latitude"`
	Longitude   decimal.Decimal `json:"longitude"`
	ServiceType string          `json:"service_type"`
	Description string          `json:"description"`
	VehicleID   *uint64         `json:"vehicle_id"`
}

// ProviderInfo 请求上关联的服务商信息
type ProviderInfo struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// RequestReply 救援请求响应
type RequestReply struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	ProviderID  *uint64         `json:"provider_id"`
	VehicleID   *uint64         `json:"vehicle_id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Latitude    decimal.Decimal `json:"latitude"`
	Longitude   decimal.Decimal `json:"longitude"`
	Status      string          `json:"status"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Provider    *ProviderInfo   `json:"provider,omitempty"`
}

// QuotaReply 配额使用情况响应，limit 为 -1 表示不限制
type QuotaReply struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

func toRequestReply(req *biz.AssistanceRequest) *RequestReply {
	reply := &RequestReply{
		ID:          req.ID,
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
	if req.Provider != nil {
		reply.Provider = &ProviderInfo{
			ID:       req.Provider.ID,
			FullName: req.Provider.FullName,
			Phone:    req.Provider.Phone,
		}
	}
	return reply
}

// RegisterHTTPServer 注册救援请求路由
func (s *AssistanceService) RegisterHTTPServer(srv *khttp.Server) {
	r := srv.Route("/v1")
	r.POST("/assistance/requests", s.createRequest)
	r.GET("/assistance/requests/quota", s.requestQuota)
	r.GET("/assistance/requests/{id}", s.getRequest)
	r.POST("/assistance/requests/{id}/accept", s.acceptRequest)
	r.POST("/assistance/requests/{id}/start", s.startRequest)
	r.POST("/assistance/requests/{id}/complete", s.completeRequest)
	r.POST("/assistance/requests/{id}/cancel", s.cancelRequest)
}

func (s *AssistanceService) createRequest(ctx khttp.Context) error {
	var in CreateRequestRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests", &in, func(c context.Context) (interface{}, error) {
		req, err := s.uc.CreateRequest(c, &biz.CreateRequestInput{
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			ServiceType: biz.ServiceType(in.ServiceType),
			Description: in.Description,
			VehicleID:   in.VehicleID,
		})
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) getRequest(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests/get", nil, func(c context.Context) (interface{}, error) {
		req, err := s.uc.GetRequest(c, id)
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) acceptRequest(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests/accept", nil, func(c context.Context) (interface{}, error) {
		req, err := s.uc.AcceptRequest(c, id)
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) startRequest(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests/start", nil, func(c context.Context) (interface{}, error) {
		req, err := s.uc.StartRequest(c, id)
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) completeRequest(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests/complete", nil, func(c context.Context) (interface{}, error) {
		req, err := s.uc.CompleteRequest(c, id)
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) cancelRequest(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/assistance/requests/cancel", nil, func(c context.Context) (interface{}, error) {
		req, err := s.uc.CancelRequest(c, id)
		if err != nil {
			return nil, err
		}
		return toRequestReply(req), nil
	})
}

func (s *AssistanceService) requestQuota(ctx khttp.Context) error {
	return handle(ctx, "/v1/assistance/requests/quota", nil, func(c context.Context) (interface{}, error) {
		status, err := s.uc.RequestQuota(c)
		if err != nil {
			return nil, err
		}
		return &QuotaReply{Used: status.Used, Limit: status.Limit}, nil
	})
}
