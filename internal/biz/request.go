package biz

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// RequestStatus 救援请求状态
type RequestStatus string

const (
	RequestPending    RequestStatus = constants.RequestPending
	RequestAccepted   RequestStatus = constants.RequestAccepted
	RequestInProgress RequestStatus = constants.RequestInProgress
	RequestCompleted  RequestStatus = constants.RequestCompleted
	RequestCancelled  RequestStatus = constants.RequestCancelled
)

// SuccessfulStatuses 计入月度配额的状态集合
// pending 和 cancelled 的请求永远不占用配额
var SuccessfulStatuses = []RequestStatus{RequestAccepted, RequestInProgress, RequestCompleted}

// ServiceType 救援服务类型
type ServiceType string

const (
	ServiceTow         ServiceType = constants.ServiceTow
	ServiceBattery     ServiceType = constants.ServiceBattery
	ServiceTire        ServiceType = constants.ServiceTire
	ServiceFuel        ServiceType = constants.ServiceFuel
	ServiceMechanic    ServiceType = constants.ServiceMechanic
	ServiceMaintenance ServiceType = constants.ServiceMaintenance
	ServiceOther       ServiceType = constants.ServiceOther
)

// IsValid 判断是否为已知服务类型
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTow, ServiceBattery, ServiceTire, ServiceFuel, ServiceMechanic, ServiceMaintenance, ServiceOther:
		return true
	}
	return false
}

// AssistanceRequest 救援请求
type AssistanceRequest struct {
	ID          uint64
	UserID      uint64
	ProviderID  *uint64 // pending 状态下为空，接单后写入且不再变更
	VehicleID   *uint64
	Type        ServiceType
	Description string
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	Status      RequestStatus
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Provider *User // 关联的服务商，GetRequest 时预加载
}

// AssistanceRequestRepo 救援请求仓库接口
type AssistanceRequestRepo interface {
	CreateRequest(ctx context.Context, req *AssistanceRequest) error
	// GetRequest 按 id 获取请求并预加载服务商信息，不存在返回 nil
	GetRequest(ctx context.Context, id uint64) (*AssistanceRequest, error)
	CountSuccessfulRequestsSince(ctx context.Context, userID uint64, since time.Time) (int, error)
	// UpdateRequestStatus 单条条件更新，返回是否有行被更新
	// 接单竞争的正确性依赖这里的原子性：状态和 provider_id 的检查与写入
	// 必须发生在同一条 UPDATE 中
	UpdateRequestStatus(ctx context.Context, id uint64, from []RequestStatus, to RequestStatus,
		expectNoProvider bool, expectedProviderID, setProviderID *uint64) (bool, error)
}

// CreateRequestInput 创建救援请求的入参
type CreateRequestInput struct {
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	ServiceType ServiceType
	Description string
	VehicleID   *uint64
}

// AssistanceUsecase 救援请求业务逻辑
type AssistanceUsecase struct {
	repo        AssistanceRequestRepo
	userRepo    UserRepo
	vehicleRepo VehicleRepo
	quota       *QuotaConfig
	pricing     Pricing
	notifier    Notifier
	log         *log.Helper
}

// NewAssistanceUsecase 创建救援请求业务用例
func NewAssistanceUsecase(
	repo AssistanceRequestRepo,
	userRepo UserRepo,
	vehicleRepo VehicleRepo,
	quota *QuotaConfig,
	pricing Pricing,
	notifier Notifier,
	logger log.Logger,
) *AssistanceUsecase {
	return &AssistanceUsecase{
		repo:        repo,
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		quota:       quota,
		pricing:     pricing,
		notifier:    notifier,
		log:         log.NewHelper(logger),
	}
}

// startOfMonth 当月 1 日 00:00（本地时区）
func startOfMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
}

// startOfDay 当天 00:00（本地时区）
func startOfDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// CreateRequest 创建救援请求
// 配额检查按本月成功请求数（accepted/in_progress/completed）计算；
// 未指定车辆时取用户最早创建的车辆，没有车辆则为空
func (uc *AssistanceUsecase) CreateRequest(ctx context.Context, in *CreateRequestInput) (*AssistanceRequest, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	if !in.ServiceType.IsValid() {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeInvalidServiceType)
	}

	limit := uc.quota.MonthlyRequestLimit(user.Plan)
	if limit != Unlimited {
		count, err := uc.repo.CountSuccessfulRequestsSince(ctx, user.ID, startOfMonth(time.Now()))
		if err != nil {
			return nil, err
		}
		if !CanConsume(limit, count) {
			uc.log.Infof("Monthly request limit reached: userID=%d, plan=%s, count=%d, limit=%d", user.ID, user.Plan, count, limit)
			return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestLimitReached)
		}
	}

	vehicleID := in.VehicleID
	if vehicleID == nil {
		vehicle, err := uc.vehicleRepo.GetDefaultVehicle(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if vehicle != nil {
			vehicleID = &vehicle.ID
		}
	}

	description := in.Description
	if description == "" {
		description = "Solicitud de asistencia"
	}

	now := time.Now()
	req := &AssistanceRequest{
		UserID:      user.ID,
		VehicleID:   vehicleID,
		Type:        in.ServiceType,
		Description: description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Status:      RequestPending,
		Price:       uc.pricing.QuotePrice(in.ServiceType),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.CreateRequest(ctx, req); err != nil {
		uc.log.Errorf("Failed to create assistance request: %v", err)
		return nil, err
	}

	uc.log.Infof("Assistance request created: id=%d, userID=%d, type=%s, price=%s", req.ID, user.ID, req.Type, req.Price)
	return req, nil
}

// GetRequest 按 id 获取请求（附带服务商信息，用于状态轮询）
func (uc *AssistanceUsecase) GetRequest(ctx context.Context, id uint64) (*AssistanceRequest, error) {
	req, err := uc.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestNotFound)
	}
	return req, nil
}

// AcceptRequest 服务商接单
// 先到先得：条件更新要求状态仍为 pending 且 provider_id 为空，
// 两个服务商并发接同一单时只有一个能成功
func (uc *AssistanceUsecase) AcceptRequest(ctx context.Context, requestID uint64) (*AssistanceRequest, error) {
	actor, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsProvider() {
		return nil, kerrors.Forbidden("FORBIDDEN", "only providers can accept assistance requests")
	}

	ok, err := uc.repo.UpdateRequestStatus(ctx, requestID,
		[]RequestStatus{RequestPending}, RequestAccepted, true, nil, &actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.classifyAcceptFailure(ctx, requestID)
	}

	req, err := uc.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Request accepted: id=%d, providerID=%d", requestID, actor.ID)
	uc.notifier.Notify(ctx, req.UserID, Notification{
		Title: "Solicitud Aceptada",
		Body:  "Tu solicitud fue aceptada. El técnico está en camino.",
		URL:   "/dashboard/request",
	})
	return req, nil
}

// classifyAcceptFailure 接单条件更新失败后回读一次，区分失败原因
func (uc *AssistanceUsecase) classifyAcceptFailure(ctx context.Context, requestID uint64) error {
	req, err := uc.repo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestNotFound)
	}
	if req.Status == RequestAccepted && req.ProviderID != nil {
		// 被别的服务商抢先接走了
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeConflictingAssignment)
	}
	return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeInvalidTransition)
}

// StartRequest 服务商开始处理（accepted -> in_progress，可选动作）
func (uc *AssistanceUsecase) StartRequest(ctx context.Context, requestID uint64) (*AssistanceRequest, error) {
	actor, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	req, err := uc.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestNotFound)
	}
	if req.ProviderID == nil || *req.ProviderID != actor.ID {
		return nil, kerrors.Forbidden("FORBIDDEN", "only the assigned provider can start this request")
	}

	ok, err := uc.repo.UpdateRequestStatus(ctx, requestID,
		[]RequestStatus{RequestAccepted}, RequestInProgress, false, &actor.ID, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeInvalidTransition)
	}
	return uc.repo.GetRequest(ctx, requestID)
}

// CompleteRequest 服务商完成服务
// 只有被指派的服务商可以完成（即便源系统没有校验，这里强制执行）
func (uc *AssistanceUsecase) CompleteRequest(ctx context.Context, requestID uint64) (*AssistanceRequest, error) {
	actor, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	req, err := uc.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestNotFound)
	}
	if req.ProviderID == nil || *req.ProviderID != actor.ID {
		return nil, kerrors.Forbidden("FORBIDDEN", "only the assigned provider can complete this request")
	}

	ok, err := uc.repo.UpdateRequestStatus(ctx, requestID,
		[]RequestStatus{RequestAccepted, RequestInProgress}, RequestCompleted, false, &actor.ID, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeInvalidTransition)
	}

	uc.log.Infof("Request completed: id=%d, providerID=%d", requestID, actor.ID)
	uc.notifier.Notify(ctx, req.UserID, Notification{
		Title: "Servicio Completado",
		Body:  "El servicio de asistencia ha sido completado.",
		URL:   "/dashboard/request",
	})
	return uc.repo.GetRequest(ctx, requestID)
}

// CancelRequest 取消请求（发起的司机或被指派的服务商，pending/accepted 状态下）
func (uc *AssistanceUsecase) CancelRequest(ctx context.Context, requestID uint64) (*AssistanceRequest, error) {
	actor, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	req, err := uc.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeRequestNotFound)
	}
	isRequester := req.UserID == actor.ID
	isAssignedProvider := req.ProviderID != nil && *req.ProviderID == actor.ID
	if !isRequester && !isAssignedProvider {
		return nil, kerrors.Forbidden("FORBIDDEN", "permission denied: not a party of this request")
	}

	ok, err := uc.repo.UpdateRequestStatus(ctx, requestID,
		[]RequestStatus{RequestPending, RequestAccepted}, RequestCancelled, false, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeInvalidTransition)
	}

	uc.log.Infof("Request cancelled: id=%d, by userID=%d", requestID, actor.ID)
	// 通知对方当事人
	if isRequester && req.ProviderID != nil {
		uc.notifier.Notify(ctx, *req.ProviderID, Notification{
			Title: "Solicitud Cancelada",
			Body:  "El conductor ha cancelado la solicitud de asistencia.",
			URL:   "/dashboard/workshop/tickets",
		})
	} else if isAssignedProvider {
		uc.notifier.Notify(ctx, req.UserID, Notification{
			Title: "Solicitud Cancelada",
			Body:  "El técnico ha cancelado la solicitud de asistencia.",
			URL:   "/dashboard/request",
		})
	}
	return uc.repo.GetRequest(ctx, requestID)
}

// RequestQuota 获取本月救援请求配额使用情况
func (uc *AssistanceUsecase) RequestQuota(ctx context.Context) (*QuotaStatus, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	count, err := uc.repo.CountSuccessfulRequestsSince(ctx, user.ID, startOfMonth(time.Now()))
	if err != nil {
		return nil, err
	}
	return &QuotaStatus{Used: count, Limit: uc.quota.MonthlyRequestLimit(user.Plan)}, nil
}
