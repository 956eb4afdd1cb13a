package data

import (
	"context"
	"encoding/json"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/data/model"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/go-kratos/kratos/v2/log"
)

// pushNotifier Web Push 推送实现
// 推送失败只记日志不向上返回，业务流程不因通知失败而回滚
type pushNotifier struct {
	data *Data
	conf *conf.Push
	log  *log.Helper
}

// NewPushNotifier 创建 Web Push 通知器
func NewPushNotifier(data *Data, c *conf.Bootstrap, logger log.Logger) biz.Notifier {
	var pushConf *conf.Push
	if c != nil {
		pushConf = c.Push
	}
	return &pushNotifier{
		data: data,
		conf: pushConf,
		log:  log.NewHelper(logger),
	}
}

// pushPayload 浏览器侧 service worker 解析的消息体
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Notify 给用户发送 Web Push 通知
// 投递在独立的 goroutine 中完成，不阻塞调用方，失败静默丢弃
func (p *pushNotifier) Notify(ctx context.Context, userID uint64, n biz.Notification) {
	if p.conf == nil || p.conf.VapidPublicKey == "" {
		return
	}

	var user model.User
	if err := p.data.DB(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		p.log.Warnf("Push skipped, failed to load user %d: %v", userID, err)
		return
	}
	if user.PushSubscription == "" {
		return
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(user.PushSubscription), &sub); err != nil {
		p.log.Warnf("Push skipped, invalid subscription for user %d: %v", userID, err)
		return
	}

	payload, err := json.Marshal(pushPayload{Title: n.Title, Body: n.Body, URL: n.URL})
	if err != nil {
		p.log.Warnf("Push skipped, failed to marshal payload: %v", err)
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), constants.NotifyTimeout)
		defer cancel()

		resp, err := webpush.SendNotificationWithContext(sendCtx, payload, &sub, &webpush.Options{
			Subscriber:      p.conf.Subscriber,
			VAPIDPublicKey:  p.conf.VapidPublicKey,
			VAPIDPrivateKey: p.conf.VapidPrivateKey,
			TTL:             60,
		})
		if err != nil {
			p.log.Warnf("Failed to send push notification to user %d: %v", userID, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			p.log.Warnf("Push notification to user %d rejected: status=%d", userID, resp.StatusCode)
		}
	}()
}
