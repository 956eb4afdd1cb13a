package service

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// ChatService AI 聊天 HTTP 服务
type ChatService struct {
	uc *biz.ChatUsecase
}

// NewChatService 创建聊天服务
func NewChatService(uc *biz.ChatUsecase) *ChatService {
	return &ChatService{uc: uc}
}

// SessionReply 聊天会话响应
type SessionReply struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest 发送消息入参
type SendMessageRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// MessageReply 聊天消息响应
type MessageReply struct {
	ID        uint64    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMessagesReply 消息列表响应
type ListMessagesReply struct {
	Messages []*MessageReply `json:"messages"`
}

func toMessageReply(m *biz.ChatMessage) *MessageReply {
	return &MessageReply{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
}

// RegisterHTTPServer 注册聊天路由
func (s *ChatService) RegisterHTTPServer(srv *khttp.Server) {
	r := srv.Route("/v1")
	r.POST("/chat/sessions", s.startSession)
	r.GET("/chat/quota", s.chatQuota)
	r.POST("/chat/sessions/{token}/messages", s.sendMessage)
	r.GET("/chat/sessions/{token}/messages", s.listMessages)
}

func (s *ChatService) startSession(ctx khttp.Context) error {
	return handle(ctx, "/v1/chat/sessions/start", nil, func(c context.Context) (interface{}, error) {
		session, err := s.uc.StartSession(c)
		if err != nil {
			return nil, err
		}
		return &SessionReply{Token: session.Token, CreatedAt: session.CreatedAt}, nil
	})
}

func (s *ChatService) sendMessage(ctx khttp.Context) error {
	token := ctx.Vars().Get("token")
	var in SendMessageRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	if in.Content == "" {
		return kerrors.BadRequest("INVALID_PARAM", "content is required")
	}
	return handle(ctx, "/v1/chat/messages/send", &in, func(c context.Context) (interface{}, error) {
		reply, err := s.uc.SendMessage(c, token, in.Content, in.ImageURL)
		if err != nil {
			return nil, err
		}
		return toMessageReply(reply), nil
	})
}

func (s *ChatService) listMessages(ctx khttp.Context) error {
	token := ctx.Vars().Get("token")
	return handle(ctx, "/v1/chat/messages/list", nil, func(c context.Context) (interface{}, error) {
		messages, err := s.uc.History(c, token)
		if err != nil {
			return nil, err
		}
		replies := make([]*MessageReply, len(messages))
		for i, m := range messages {
			replies[i] = toMessageReply(m)
		}
		return &ListMessagesReply{Messages: replies}, nil
	})
}

func (s *ChatService) chatQuota(ctx khttp.Context) error {
	return handle(ctx, "/v1/chat/quota", nil, func(c context.Context) (interface{}, error) {
		status, err := s.uc.ChatQuota(c)
		if err != nil {
			return nil, err
		}
		return &QuotaReply{Used: status.Used, Limit: status.Limit}, nil
	})
}
