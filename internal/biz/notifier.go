package biz

import "context"

// Notification 推送通知内容
type Notification struct {
	Title string
	Body  string
	URL   string
}

// Notifier 推送服务客户端接口（防腐层）
// 推送是尽力而为的：实现内部自行吞掉并记录失败，永远不向调用方抛错，
// 也不阻塞触发它的状态变更
type Notifier interface {
	Notify(ctx context.Context, userID uint64, n Notification)
}
