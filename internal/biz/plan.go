package biz

import (
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/constants"
)

// Plan 订阅套餐
type Plan string

const (
	PlanFree       Plan = constants.PlanFree
	PlanPro        Plan = constants.PlanPro
	PlanEnterprise Plan = constants.PlanEnterprise
)

// Unlimited 配额不限制的哨兵值
const Unlimited = constants.Unlimited

// IsValid 判断是否为已知套餐
func (p Plan) IsValid() bool {
	return p == PlanFree || p == PlanPro || p == PlanEnterprise
}

// rank 套餐等级，用于区分升级/降级
func (p Plan) rank() int {
	switch p {
	case PlanPro:
		return 1
	case PlanEnterprise:
		return 2
	default:
		return 0
	}
}

// PlanLimits 单个套餐的配额限制，Unlimited 表示不限制
type PlanLimits struct {
	Vehicles        int
	MonthlyRequests int
	DailyAiMessages int
}

// QuotaConfig 套餐配额策略（纯逻辑，无副作用）
// 限制值集中在这里而不是散落在各个操作中，测试可以注入自定义配置
type QuotaConfig struct {
	plans map[Plan]PlanLimits
}

// DefaultQuotaConfig 返回默认套餐配额
func DefaultQuotaConfig() *QuotaConfig {
	return &QuotaConfig{
		plans: map[Plan]PlanLimits{
			PlanFree: {
				Vehicles:        constants.FreeVehicleLimit,
				MonthlyRequests: constants.FreeMonthlyRequestLimit,
				DailyAiMessages: constants.FreeDailyAiMessageLimit,
			},
			PlanPro: {
				Vehicles:        constants.ProVehicleLimit,
				MonthlyRequests: Unlimited,
				DailyAiMessages: Unlimited,
			},
			PlanEnterprise: {
				Vehicles:        Unlimited,
				MonthlyRequests: Unlimited,
				DailyAiMessages: Unlimited,
			},
		},
	}
}

// NewQuotaConfig 基于默认配额应用配置文件中的覆盖项
func NewQuotaConfig(c *conf.Bootstrap) *QuotaConfig {
	q := DefaultQuotaConfig()
	if c == nil || c.Quota == nil {
		return q
	}
	for name, override := range c.Quota.Plans {
		plan := Plan(name)
		if !plan.IsValid() || override == nil {
			continue
		}
		limits := q.plans[plan]
		if override.Vehicles != nil {
			limits.Vehicles = *override.Vehicles
		}
		if override.MonthlyRequests != nil {
			limits.MonthlyRequests = *override.MonthlyRequests
		}
		if override.DailyAiMessages != nil {
			limits.DailyAiMessages = *override.DailyAiMessages
		}
		q.plans[plan] = limits
	}
	return q
}

// LimitsFor 获取套餐的配额限制，未知套餐按 free 处理
func (q *QuotaConfig) LimitsFor(plan Plan) PlanLimits {
	if limits, ok := q.plans[plan]; ok {
		return limits
	}
	return q.plans[PlanFree]
}

// VehicleLimit 车辆数量限制
func (q *QuotaConfig) VehicleLimit(plan Plan) int {
	return q.LimitsFor(plan).Vehicles
}

// MonthlyRequestLimit 每月成功救援请求数量限制
func (q *QuotaConfig) MonthlyRequestLimit(plan Plan) int {
	return q.LimitsFor(plan).MonthlyRequests
}

// DailyAiMessageLimit 每日 AI 消息数量限制
func (q *QuotaConfig) DailyAiMessageLimit(plan Plan) int {
	return q.LimitsFor(plan).DailyAiMessages
}

// CanConsume 判断在当前用量下是否还允许新增一个单位的消耗
func CanConsume(limit, current int) bool {
	if limit == Unlimited {
		return true
	}
	return current < limit
}

// QuotaStatus 配额使用情况（用于前端展示）
type QuotaStatus struct {
	Used  int
	Limit int
}
