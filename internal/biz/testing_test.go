package biz

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"xinyuan_tech/assistance-service/internal/auth"

	"github.com/go-kratos/kratos/v2/log"
)

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func identityCtx(uid string, role auth.Role) context.Context {
	return auth.WithIdentity(context.Background(), uid, role)
}

// fakeUserRepo 内存用户仓库
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint64]*User
	nextID uint64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*User)}
}

func (r *fakeUserRepo) addUser(authID string, role auth.Role, plan Plan) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u := &User{
		ID:        r.nextID,
		AuthID:    authID,
		Email:     fmt.Sprintf("%s@example.com", authID),
		Role:      role,
		Plan:      plan,
		CreatedAt: time.Now(),
	}
	if plan == PlanFree {
		u.SubscriptionStatus = "inactive"
	} else {
		u.SubscriptionStatus = "active"
		end := time.Now().Add(30 * 24 * time.Hour)
		u.SubscriptionEndDate = &end
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) GetUser(ctx context.Context, id uint64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AuthID == authID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.FullName = fullName
		u.Phone = phone
	}
	return nil
}

func (r *fakeUserRepo) SetUserPlan(ctx context.Context, userID uint64, plan Plan, status string, endDate *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.Plan = plan
	u.SubscriptionStatus = status
	u.SubscriptionEndDate = endDate
	return nil
}

func (r *fakeUserRepo) MarkPastDueSubscriptions(ctx context.Context, now time.Time) (int, []uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var uids []uint64
	for _, u := range r.users {
		if u.Plan != PlanFree && u.SubscriptionStatus == "active" &&
			u.SubscriptionEndDate != nil && u.SubscriptionEndDate.Before(now) {
			u.SubscriptionStatus = "past_due"
			uids = append(uids, u.ID)
		}
	}
	return len(uids), uids, nil
}

// fakeVehicleRepo 内存车辆仓库
type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uint64]*Vehicle
	nextID   uint64
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uint64]*Vehicle)}
}

func (r *fakeVehicleRepo) CountVehicles(ctx context.Context, userID uint64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, v := range r.vehicles {
		if v.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeVehicleRepo) CreateVehicle(ctx context.Context, vehicle *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	vehicle.ID = r.nextID
	cp := *vehicle
	r.vehicles[vehicle.ID] = &cp
	return nil
}

func (r *fakeVehicleRepo) ListVehicles(ctx context.Context, userID uint64) ([]*Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Vehicle
	for _, v := range r.vehicles {
		if v.UserID == userID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) GetVehicle(ctx context.Context, id uint64) (*Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.vehicles[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeVehicleRepo) DeleteVehicle(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) GetDefaultVehicle(ctx context.Context, userID uint64) (*Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *Vehicle
	for _, v := range r.vehicles {
		if v.UserID != userID {
			continue
		}
		if oldest == nil ||
			v.CreatedAt.Before(oldest.CreatedAt) ||
			(v.CreatedAt.Equal(oldest.CreatedAt) && v.ID < oldest.ID) {
			oldest = v
		}
	}
	if oldest == nil {
		return nil, nil
	}
	cp := *oldest
	return &cp, nil
}

// fakeRequestRepo 内存救援请求仓库
// UpdateRequestStatus 在锁内完成检查和写入，和数据库的条件更新一样是原子的
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uint64]*AssistanceRequest
	nextID   uint64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uint64]*AssistanceRequest)}
}

func (r *fakeRequestRepo) CreateRequest(ctx context.Context, req *AssistanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetRequest(ctx context.Context, id uint64) (*AssistanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRequestRepo) CountSuccessfulRequestsSince(ctx context.Context, userID uint64, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, req := range r.requests {
		if req.UserID != userID || req.CreatedAt.Before(since) {
			continue
		}
		for _, s := range SuccessfulStatuses {
			if req.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) UpdateRequestStatus(ctx context.Context, id uint64,
	from []RequestStatus, to RequestStatus,
	expectNoProvider bool, expectedProviderID, setProviderID *uint64) (bool, error) {

	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if req.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	if expectNoProvider && req.ProviderID != nil {
		return false, nil
	}
	if expectedProviderID != nil && (req.ProviderID == nil || *req.ProviderID != *expectedProviderID) {
		return false, nil
	}
	req.Status = to
	req.UpdatedAt = time.Now()
	if setProviderID != nil {
		pid := *setProviderID
		req.ProviderID = &pid
	}
	return true, nil
}

// notifyCall 一次推送调用的记录
type notifyCall struct {
	userID uint64
	n      Notification
}

// fakeNotifier 记录推送调用
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uint64, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{userID: userID, n: n})
}

func (f *fakeNotifier) sent() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notifyCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakeChatRepo 内存聊天仓库
type fakeChatRepo struct {
	mu       sync.Mutex
	sessions map[string]*ChatSession
	messages []*ChatMessage
	nextID   uint64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{sessions: make(map[string]*ChatSession)}
}

func (r *fakeChatRepo) CreateSession(ctx context.Context, session *ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session.ID = r.nextID
	cp := *session
	r.sessions[session.Token] = &cp
	return nil
}

func (r *fakeChatRepo) GetSessionByToken(ctx context.Context, token string) (*ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeChatRepo) AddMessage(ctx context.Context, msg *ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, sessionID uint64) ([]*ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ChatMessage
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CountUserMessagesSince(ctx context.Context, userID uint64, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.messages {
		if m.UserID == userID && m.Role == "user" && !m.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// fakeCompletion 固定回复的补全客户端
type fakeCompletion struct {
	reply string
	err   error
}

func (f *fakeCompletion) Complete(ctx context.Context, history []*ChatMessage, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakePlanChangeRepo 内存套餐变更记录仓库
type fakePlanChangeRepo struct {
	mu      sync.Mutex
	changes []*PlanChange
	nextID  uint64
}

func (r *fakePlanChangeRepo) AddPlanChange(ctx context.Context, change *PlanChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	change.ID = r.nextID
	cp := *change
	r.changes = append(r.changes, &cp)
	return nil
}

func (r *fakePlanChangeRepo) ListPlanChanges(ctx context.Context, userID uint64, page, pageSize int) ([]*PlanChange, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*PlanChange
	for _, c := range r.changes {
		if c.UserID == userID {
			cp := *c
			all = append(all, &cp)
		}
	}
	total := len(all)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// fakeTx 直接执行回调的事务实现
type fakeTx struct{}

func (fakeTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
