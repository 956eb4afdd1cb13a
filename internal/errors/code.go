package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// 救援服务错误码定义
// 错误码格式：SSMMEE (6位数字)，其中 SS=14 表示 assistance-service
// 模块划分：
//   01: 车辆模块
//   02: 救援请求模块
//   03: 订阅模块
//   04: AI 聊天模块

// 车辆模块 (140100-140199)
const (
	// ErrCodeVehicleLimitReached 车辆数量达到套餐上限错误
	ErrCodeVehicleLimitReached = 140101
	// ErrCodeVehicleNotFound 车辆不存在错误
	ErrCodeVehicleNotFound = 140102
)

// 救援请求模块 (140200-140299)
const (
	// ErrCodeRequestLimitReached 本月成功请求数达到套餐上限错误
	ErrCodeRequestLimitReached = 140201
	// ErrCodeRequestNotFound 救援请求不存在错误
	ErrCodeRequestNotFound = 140202
	// ErrCodeInvalidTransition 当前状态不允许该操作错误
	ErrCodeInvalidTransition = 140203
	// ErrCodeConflictingAssignment 请求已被其他服务商接单错误
	ErrCodeConflictingAssignment = 140204
	// ErrCodeInvalidServiceType 无效的服务类型错误
	ErrCodeInvalidServiceType = 140205
)

// 订阅模块 (140300-140399)
const (
	// ErrCodeUserNotFound 用户不存在错误
	ErrCodeUserNotFound = 140301
	// ErrCodeUnknownPlan 未知套餐错误
	ErrCodeUnknownPlan = 140302
)

// AI 聊天模块 (140400-140499)
const (
	// ErrCodeAiMessageLimitReached 每日 AI 消息数达到套餐上限错误
	ErrCodeAiMessageLimitReached = 140401
	// ErrCodeChatSessionNotFound 聊天会话不存在错误
	ErrCodeChatSessionNotFound = 140402
	// ErrCodeCompletionFailed 文本补全服务调用失败错误
	ErrCodeCompletionFailed = 140403
)
