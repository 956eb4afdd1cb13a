package constants

import "time"

// 套餐标识
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Unlimited 配额不限制的哨兵值
const Unlimited = -1

// 套餐默认配额（可被 conf.Quota 覆盖）
const (
	// FreeVehicleLimit free 套餐车辆数量限制
	FreeVehicleLimit = 1
	// ProVehicleLimit pro 套餐车辆数量限制
	ProVehicleLimit = 5
	// FreeMonthlyRequestLimit free 套餐每月成功救援请求限制
	FreeMonthlyRequestLimit = 1
	// FreeDailyAiMessageLimit free 套餐每日 AI 消息限制
	FreeDailyAiMessageLimit = 5
)

// 订阅状态
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionPastDue  = "past_due"
)

// SubscriptionDurationDays 付费套餐有效期（天）
const SubscriptionDurationDays = 30

// 套餐变更操作
const (
	PlanActionUpgraded   = "upgraded"
	PlanActionDowngraded = "downgraded"
)

// 救援请求状态
const (
	RequestPending    = "pending"
	RequestAccepted   = "accepted"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// 服务类型
const (
	ServiceTow         = "tow"
	ServiceBattery     = "battery"
	ServiceTire        = "tire"
	ServiceFuel        = "fuel"
	ServiceMechanic    = "mechanic"
	ServiceMaintenance = "maintenance"
	ServiceOther       = "other"
)

// 服务类型默认报价（BOB，字符串形式避免浮点误差，可被 conf.Pricing 覆盖）
var DefaultServicePrices = map[string]string{
	ServiceTow:      "250.00",
	ServiceBattery:  "100.00",
	ServiceTire:     "80.00",
	ServiceFuel:     "120.00",
	ServiceMechanic: "150.00",
}

// DefaultFallbackPrice 未列入价格表的服务类型的兜底报价
const DefaultFallbackPrice = "150.00"

// 聊天消息角色
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// 分页相关常量
const (
	// DefaultPageSize 默认分页大小
	DefaultPageSize = 10
	// MaxPageSize 最大分页大小
	MaxPageSize = 100
)

// 通知相关常量
const (
	// NotifyTimeout 单次推送超时时间
	NotifyTimeout = 10 * time.Second
)

// 分布式锁相关常量
const (
	// ExpirySweepLockExpiration 过期巡检锁过期时间
	ExpirySweepLockExpiration = 10 * time.Minute
	// ExpirySweepLockRetries 过期巡检锁重试次数
	ExpirySweepLockRetries = 1
)
