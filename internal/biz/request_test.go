package biz

import (
	"sync"
	"testing"
	"time"

	"xinyuan_tech/assistance-service/internal/auth"
	"xinyuan_tech/assistance-service/internal/errors"

	"github.com/shopspring/decimal"
)

type requestTestEnv struct {
	uc       *AssistanceUsecase
	users    *fakeUserRepo
	vehicles *fakeVehicleRepo
	requests *fakeRequestRepo
	notifier *fakeNotifier
}

func newRequestTestEnv() *requestTestEnv {
	users := newFakeUserRepo()
	vehicles := newFakeVehicleRepo()
	requests := newFakeRequestRepo()
	notifier := &fakeNotifier{}
	uc := NewAssistanceUsecase(requests, users, vehicles, DefaultQuotaConfig(), NewPricing(nil), notifier, testLogger())
	return &requestTestEnv{uc: uc, users: users, vehicles: vehicles, requests: requests, notifier: notifier}
}

func (e *requestTestEnv) createPendingRequest(t *testing.T, driverAuthID string) *AssistanceRequest {
	t.Helper()
	req, err := e.uc.CreateRequest(identityCtx(driverAuthID, auth.RoleDriver), &CreateRequestInput{
		Latitude:    decimal.RequireFromString("-17.783330"),
		Longitude:   decimal.RequireFromString("-63.182140"),
		ServiceType: ServiceTow,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestCreateRequestDefaults(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanPro)
	ctx := identityCtx("driver", auth.RoleDriver)

	req, err := e.uc.CreateRequest(ctx, &CreateRequestInput{
		Latitude:    decimal.RequireFromString("-16.5"),
		Longitude:   decimal.RequireFromString("-68.15"),
		ServiceType: ServiceBattery,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.Status != RequestPending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if req.ProviderID != nil {
		t.Errorf("provider = %v, want nil", *req.ProviderID)
	}
	if req.Description != "Solicitud de asistencia" {
		t.Errorf("description = %q, want default", req.Description)
	}
	if !req.Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("price = %s, want 100 for battery", req.Price)
	}
}

func TestCreateRequestInvalidServiceType(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	_, err := e.uc.CreateRequest(identityCtx("driver", auth.RoleDriver), &CreateRequestInput{
		ServiceType: ServiceType("helicopter"),
	})
	if !errors.IsCode(err, errors.ErrCodeInvalidServiceType) {
		t.Fatalf("got %v, want code %d", err, errors.ErrCodeInvalidServiceType)
	}
}

func TestCreateRequestUsesOldestVehicleAsDefault(t *testing.T) {
	e := newRequestTestEnv()
	u := e.users.addUser("driver", auth.RoleDriver, PlanEnterprise)
	ctx := identityCtx("driver", auth.RoleDriver)

	base := time.Now().Add(-48 * time.Hour)
	_ = e.vehicles.CreateVehicle(ctx, &Vehicle{UserID: u.ID, Make: "Nissan", CreatedAt: base.Add(time.Hour)})
	oldest := &Vehicle{UserID: u.ID, Make: "Toyota", CreatedAt: base}
	_ = e.vehicles.CreateVehicle(ctx, oldest)
	// 同一时刻创建的取 id 较小的
	_ = e.vehicles.CreateVehicle(ctx, &Vehicle{UserID: u.ID, Make: "Kia", CreatedAt: base})

	req := e.createPendingRequest(t, "driver")
	if req.VehicleID == nil || *req.VehicleID != oldest.ID {
		t.Fatalf("vehicle = %v, want oldest vehicle %d", req.VehicleID, oldest.ID)
	}
}

func TestCreateRequestWithoutVehicles(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	req := e.createPendingRequest(t, "driver")
	if req.VehicleID != nil {
		t.Fatalf("vehicle = %v, want nil when user has no vehicles", *req.VehicleID)
	}
}

func TestCreateRequestMonthlyQuota(t *testing.T) {
	e := newRequestTestEnv()
	driver := e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	ctx := identityCtx("driver", auth.RoleDriver)

	// pending 的请求不占配额
	first := e.createPendingRequest(t, "driver")
	e.createPendingRequest(t, "driver")

	// 接单后，本月的成功请求数达到 free 上限
	if _, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), first.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err := e.uc.CreateRequest(ctx, &CreateRequestInput{ServiceType: ServiceTire})
	if !errors.IsCode(err, errors.ErrCodeRequestLimitReached) {
		t.Fatalf("got %v, want code %d", err, errors.ErrCodeRequestLimitReached)
	}

	// 升级后立即可以继续发起请求
	if err := e.users.SetUserPlan(ctx, driver.ID, PlanPro, "active", nil); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	if _, err := e.uc.CreateRequest(ctx, &CreateRequestInput{ServiceType: ServiceTire}); err != nil {
		t.Fatalf("create after upgrade: %v", err)
	}
}

func TestCancelledRequestsDoNotCountTowardQuota(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	ctx := identityCtx("driver", auth.RoleDriver)

	req := e.createPendingRequest(t, "driver")
	if _, err := e.uc.CancelRequest(ctx, req.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// 取消后配额仍然空闲
	if _, err := e.uc.CreateRequest(ctx, &CreateRequestInput{ServiceType: ServiceFuel}); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	e := newRequestTestEnv()
	driver := e.users.addUser("driver", auth.RoleDriver, PlanFree)
	tech := e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")

	accepted, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), req.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != RequestAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}
	if accepted.ProviderID == nil || *accepted.ProviderID != tech.ID {
		t.Errorf("provider = %v, want %d", accepted.ProviderID, tech.ID)
	}

	sent := e.notifier.sent()
	if len(sent) != 1 || sent[0].userID != driver.ID {
		t.Fatalf("notifications = %+v, want one to driver %d", sent, driver.ID)
	}
	if sent[0].n.Title != "Solicitud Aceptada" {
		t.Errorf("notification title = %q", sent[0].n.Title)
	}
}

func TestAcceptRequestDriverForbidden(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("driver2", auth.RoleDriver, PlanFree)
	req := e.createPendingRequest(t, "driver")

	if _, err := e.uc.AcceptRequest(identityCtx("driver2", auth.RoleDriver), req.ID); err == nil {
		t.Fatal("expected forbidden for driver role")
	}
}

func TestAcceptRequestNotFound(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	_, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), 404)
	if !errors.IsCode(err, errors.ErrCodeRequestNotFound) {
		t.Fatalf("got %v, want code %d", err, errors.ErrCodeRequestNotFound)
	}
}

func TestAcceptRequestAlreadyTaken(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech1", auth.RoleMechanic, PlanFree)
	e.users.addUser("tech2", auth.RoleWorkshopOwner, PlanFree)
	req := e.createPendingRequest(t, "driver")

	if _, err := e.uc.AcceptRequest(identityCtx("tech1", auth.RoleMechanic), req.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	_, err := e.uc.AcceptRequest(identityCtx("tech2", auth.RoleWorkshopOwner), req.ID)
	if !errors.IsCode(err, errors.ErrCodeConflictingAssignment) {
		t.Fatalf("second accept: got %v, want code %d", err, errors.ErrCodeConflictingAssignment)
	}
}

func TestAcceptRequestConcurrentExactlyOneWins(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	req := e.createPendingRequest(t, "driver")

	const workers = 16
	techIDs := make([]string, workers)
	for i := range techIDs {
		techIDs[i] = "tech-" + string(rune('a'+i))
		e.users.addUser(techIDs[i], auth.RoleMechanic, PlanFree)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.uc.AcceptRequest(identityCtx(techIDs[i], auth.RoleMechanic), req.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.IsCode(err, errors.ErrCodeConflictingAssignment) {
			t.Errorf("loser got %v, want code %d", err, errors.ErrCodeConflictingAssignment)
		}
	}
	if wins != 1 {
		t.Fatalf("%d accepts succeeded, want exactly 1", wins)
	}
}

func TestStartRequest(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	e.users.addUser("tech2", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")
	techCtx := identityCtx("tech", auth.RoleMechanic)

	// pending 状态不能直接开始
	if _, err := e.uc.StartRequest(techCtx, req.ID); err == nil {
		t.Fatal("expected error starting a pending request")
	}

	if _, err := e.uc.AcceptRequest(techCtx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// 只有被指派的服务商能开始
	if _, err := e.uc.StartRequest(identityCtx("tech2", auth.RoleMechanic), req.ID); err == nil {
		t.Fatal("expected forbidden for unassigned provider")
	}
	started, err := e.uc.StartRequest(techCtx, req.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != RequestInProgress {
		t.Errorf("status = %s, want in_progress", started.Status)
	}
}

func TestCompleteRequest(t *testing.T) {
	e := newRequestTestEnv()
	driver := e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")
	techCtx := identityCtx("tech", auth.RoleMechanic)

	if _, err := e.uc.AcceptRequest(techCtx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	completed, err := e.uc.CompleteRequest(techCtx, req.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != RequestCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}

	sent := e.notifier.sent()
	if len(sent) != 2 {
		t.Fatalf("notifications = %d, want 2 (accept + complete)", len(sent))
	}
	if sent[1].userID != driver.ID || sent[1].n.Title != "Servicio Completado" {
		t.Errorf("completion notification = %+v", sent[1])
	}

	// 完成后的请求不能再取消
	_, err = e.uc.CancelRequest(techCtx, req.ID)
	if !errors.IsCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("cancel completed: got %v, want code %d", err, errors.ErrCodeInvalidTransition)
	}
}

func TestCompleteRequestOnlyAssignedProvider(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	e.users.addUser("intruder", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")

	if _, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.uc.CompleteRequest(identityCtx("intruder", auth.RoleMechanic), req.ID); err == nil {
		t.Fatal("expected forbidden for unassigned provider")
	}
	// 发起请求的司机也不能完成
	if _, err := e.uc.CompleteRequest(identityCtx("driver", auth.RoleDriver), req.ID); err == nil {
		t.Fatal("expected forbidden for requester")
	}
}

func TestCompleteFromInProgress(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")
	techCtx := identityCtx("tech", auth.RoleMechanic)

	if _, err := e.uc.AcceptRequest(techCtx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.uc.StartRequest(techCtx, req.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	completed, err := e.uc.CompleteRequest(techCtx, req.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != RequestCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}
}

func TestCancelRequestByDriverNotifiesProvider(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	tech := e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")

	if _, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	cancelled, err := e.uc.CancelRequest(identityCtx("driver", auth.RoleDriver), req.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != RequestCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	sent := e.notifier.sent()
	last := sent[len(sent)-1]
	if last.userID != tech.ID {
		t.Errorf("cancel notification went to %d, want provider %d", last.userID, tech.ID)
	}
}

func TestCancelRequestByProviderNotifiesDriver(t *testing.T) {
	e := newRequestTestEnv()
	driver := e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")
	techCtx := identityCtx("tech", auth.RoleMechanic)

	if _, err := e.uc.AcceptRequest(techCtx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.uc.CancelRequest(techCtx, req.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	sent := e.notifier.sent()
	last := sent[len(sent)-1]
	if last.userID != driver.ID {
		t.Errorf("cancel notification went to %d, want driver %d", last.userID, driver.ID)
	}
}

func TestCancelRequestThirdPartyForbidden(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("stranger", auth.RoleDriver, PlanFree)
	req := e.createPendingRequest(t, "driver")

	if _, err := e.uc.CancelRequest(identityCtx("stranger", auth.RoleDriver), req.ID); err == nil {
		t.Fatal("expected forbidden for third party")
	}
}

func TestCancelInProgressRequestFails(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	req := e.createPendingRequest(t, "driver")
	techCtx := identityCtx("tech", auth.RoleMechanic)

	if _, err := e.uc.AcceptRequest(techCtx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.uc.StartRequest(techCtx, req.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := e.uc.CancelRequest(identityCtx("driver", auth.RoleDriver), req.ID)
	if !errors.IsCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("got %v, want code %d", err, errors.ErrCodeInvalidTransition)
	}
}

func TestRequestQuotaStatus(t *testing.T) {
	e := newRequestTestEnv()
	e.users.addUser("driver", auth.RoleDriver, PlanFree)
	e.users.addUser("tech", auth.RoleMechanic, PlanFree)
	ctx := identityCtx("driver", auth.RoleDriver)

	status, err := e.uc.RequestQuota(ctx)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if status.Used != 0 || status.Limit != 1 {
		t.Fatalf("quota = %+v, want used=0 limit=1", status)
	}

	req := e.createPendingRequest(t, "driver")
	if _, err := e.uc.AcceptRequest(identityCtx("tech", auth.RoleMechanic), req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	status, err = e.uc.RequestQuota(ctx)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if status.Used != 1 {
		t.Fatalf("quota = %+v, want used=1", status)
	}
}
