package biz

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ChatSession AI 聊天会话
type ChatSession struct {
	ID        uint64
	Token     string // 对外暴露的会话标识
	UserID    uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage AI 聊天消息
type ChatMessage struct {
	ID        uint64
	SessionID uint64
	UserID    uint64
	Role      string // user, assistant
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// ChatRepo 聊天仓库接口
type ChatRepo interface {
	CreateSession(ctx context.Context, session *ChatSession) error
	GetSessionByToken(ctx context.Context, token string) (*ChatSession, error)
	AddMessage(ctx context.Context, msg *ChatMessage) error
	ListMessages(ctx context.Context, sessionID uint64) ([]*ChatMessage, error)
	// CountUserMessagesSince 统计用户自某时刻起发送的消息数（只计 role=user）
	CountUserMessagesSince(ctx context.Context, userID uint64, since time.Time) (int, error)
}

// CompletionClient 文本补全服务客户端接口（防腐层）
type CompletionClient interface {
	Complete(ctx context.Context, history []*ChatMessage, prompt string) (string, error)
}

// ChatUsecase AI 聊天业务逻辑
type ChatUsecase struct {
	repo       ChatRepo
	userRepo   UserRepo
	quota      *QuotaConfig
	completion CompletionClient
	log        *log.Helper
}

// NewChatUsecase 创建聊天业务用例
func NewChatUsecase(repo ChatRepo, userRepo UserRepo, quota *QuotaConfig, completion CompletionClient, logger log.Logger) *ChatUsecase {
	return &ChatUsecase{
		repo:       repo,
		userRepo:   userRepo,
		quota:      quota,
		completion: completion,
		log:        log.NewHelper(logger),
	}
}

// StartSession 创建新的聊天会话
func (uc *ChatUsecase) StartSession(ctx context.Context) (*ChatSession, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &ChatSession{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateSession(ctx, session); err != nil {
		uc.log.Errorf("Failed to create chat session: %v", err)
		return nil, err
	}
	return session, nil
}

// SendMessage 发送用户消息并返回助手回复
// 每日消息配额在服务端按仓库统计强制执行，不信任客户端计数
func (uc *ChatUsecase) SendMessage(ctx context.Context, sessionToken, content, imageURL string) (*ChatMessage, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}

	session, err := uc.repo.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeChatSessionNotFound)
	}
	if session.UserID != user.ID {
		return nil, kerrors.Forbidden("FORBIDDEN", "permission denied: not your chat session")
	}

	limit := uc.quota.DailyAiMessageLimit(user.Plan)
	if limit != Unlimited {
		count, err := uc.repo.CountUserMessagesSince(ctx, user.ID, startOfDay(time.Now()))
		if err != nil {
			return nil, err
		}
		if !CanConsume(limit, count) {
			uc.log.Infof("Daily AI message limit reached: userID=%d, plan=%s, count=%d, limit=%d", user.ID, user.Plan, count, limit)
			return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeAiMessageLimitReached)
		}
	}

	userMsg := &ChatMessage{
		SessionID: session.ID,
		UserID:    user.ID,
		Role:      constants.ChatRoleUser,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.AddMessage(ctx, userMsg); err != nil {
		uc.log.Errorf("Failed to add user message: %v", err)
		return nil, err
	}

	history, err := uc.repo.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	reply, err := uc.completion.Complete(ctx, history, content)
	if err != nil {
		uc.log.Errorf("Completion failed: %v", err)
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeCompletionFailed)
	}

	assistantMsg := &ChatMessage{
		SessionID: session.ID,
		UserID:    user.ID,
		Role:      constants.ChatRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.AddMessage(ctx, assistantMsg); err != nil {
		uc.log.Errorf("Failed to add assistant message: %v", err)
		return nil, err
	}
	return assistantMsg, nil
}

// History 获取会话的消息列表
func (uc *ChatUsecase) History(ctx context.Context, sessionToken string) ([]*ChatMessage, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	session, err := uc.repo.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeChatSessionNotFound)
	}
	if session.UserID != user.ID {
		return nil, kerrors.Forbidden("FORBIDDEN", "permission denied: not your chat session")
	}
	return uc.repo.ListMessages(ctx, session.ID)
}

// ChatQuota 获取今日 AI 消息配额使用情况
func (uc *ChatUsecase) ChatQuota(ctx context.Context) (*QuotaStatus, error) {
	user, err := getActor(ctx, uc.userRepo)
	if err != nil {
		return nil, err
	}
	count, err := uc.repo.CountUserMessagesSince(ctx, user.ID, startOfDay(time.Now()))
	if err != nil {
		return nil, err
	}
	return &QuotaStatus{Used: count, Limit: uc.quota.DailyAiMessageLimit(user.Plan)}, nil
}
