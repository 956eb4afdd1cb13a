package biz

import (
	"testing"

	"xinyuan_tech/assistance-service/internal/conf"

	"github.com/shopspring/decimal"
)

func TestDefaultQuotaConfig(t *testing.T) {
	q := DefaultQuotaConfig()

	tests := []struct {
		plan            Plan
		vehicles        int
		monthlyRequests int
		dailyAiMessages int
	}{
		{PlanFree, 1, 1, 5},
		{PlanPro, 5, Unlimited, Unlimited},
		{PlanEnterprise, Unlimited, Unlimited, Unlimited},
	}
	for _, tt := range tests {
		if got := q.VehicleLimit(tt.plan); got != tt.vehicles {
			t.Errorf("VehicleLimit(%s) = %d, want %d", tt.plan, got, tt.vehicles)
		}
		if got := q.MonthlyRequestLimit(tt.plan); got != tt.monthlyRequests {
			t.Errorf("MonthlyRequestLimit(%s) = %d, want %d", tt.plan, got, tt.monthlyRequests)
		}
		if got := q.DailyAiMessageLimit(tt.plan); got != tt.dailyAiMessages {
			t.Errorf("DailyAiMessageLimit(%s) = %d, want %d", tt.plan, got, tt.dailyAiMessages)
		}
	}
}

func TestQuotaConfigUnknownPlanFallsBackToFree(t *testing.T) {
	q := DefaultQuotaConfig()
	if got := q.VehicleLimit(Plan("gold")); got != 1 {
		t.Errorf("VehicleLimit(gold) = %d, want free limit 1", got)
	}
	if got := q.DailyAiMessageLimit(Plan("")); got != 5 {
		t.Errorf("DailyAiMessageLimit(empty) = %d, want free limit 5", got)
	}
}

func TestNewQuotaConfigOverrides(t *testing.T) {
	two := 2
	unlimited := Unlimited
	c := &conf.Bootstrap{
		Quota: &conf.Quota{
			Plans: map[string]*conf.PlanLimits{
				"free": {Vehicles: &two, MonthlyRequests: &unlimited},
				// 未知套餐的覆盖项被忽略
				"gold": {Vehicles: &two},
			},
		},
	}
	q := NewQuotaConfig(c)
	if got := q.VehicleLimit(PlanFree); got != 2 {
		t.Errorf("VehicleLimit(free) = %d, want override 2", got)
	}
	if got := q.MonthlyRequestLimit(PlanFree); got != Unlimited {
		t.Errorf("MonthlyRequestLimit(free) = %d, want unlimited", got)
	}
	// 未覆盖的保持默认
	if got := q.DailyAiMessageLimit(PlanFree); got != 5 {
		t.Errorf("DailyAiMessageLimit(free) = %d, want default 5", got)
	}
	if got := q.VehicleLimit(Plan("gold")); got != 2 {
		t.Errorf("VehicleLimit(gold) = %d, want free override 2", got)
	}
}

func TestCanConsume(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		current int
		want    bool
	}{
		{"below limit", 5, 4, true},
		{"at limit", 5, 5, false},
		{"above limit", 5, 6, false},
		{"zero limit", 0, 0, false},
		{"unlimited", Unlimited, 1000000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanConsume(tt.limit, tt.current); got != tt.want {
				t.Errorf("CanConsume(%d, %d) = %v, want %v", tt.limit, tt.current, got, tt.want)
			}
		})
	}
}

func TestPricingQuotePrice(t *testing.T) {
	p := NewPricing(nil)

	tests := []struct {
		serviceType ServiceType
		want        string
	}{
		{ServiceTow, "250"},
		{ServiceBattery, "100"},
		{ServiceTire, "80"},
		{ServiceFuel, "120"},
		{ServiceMechanic, "150"},
		// 未列入价目表的类型走兜底价
		{ServiceMaintenance, "150"},
		{ServiceOther, "150"},
	}
	for _, tt := range tests {
		want := decimal.RequireFromString(tt.want)
		if got := p.QuotePrice(tt.serviceType); !got.Equal(want) {
			t.Errorf("QuotePrice(%s) = %s, want %s", tt.serviceType, got, want)
		}
	}
}

func TestPricingOverrides(t *testing.T) {
	c := &conf.Bootstrap{
		Pricing: &conf.Pricing{
			Services: map[string]string{
				"tow":     "300.50",
				"invalid": "not a number",
			},
			Fallback: "99.99",
		},
	}
	p := NewPricing(c)
	if got := p.QuotePrice(ServiceTow); !got.Equal(decimal.RequireFromString("300.50")) {
		t.Errorf("QuotePrice(tow) = %s, want 300.50", got)
	}
	if got := p.QuotePrice(ServiceOther); !got.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("QuotePrice(other) = %s, want fallback 99.99", got)
	}
}
