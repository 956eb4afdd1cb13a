package data

import (
	"context"
	"errors"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/constants"
	"xinyuan_tech/assistance-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// chatRepo 聊天仓库实现
type chatRepo struct {
	data *Data
	log  *log.Helper
}

// NewChatRepo 创建聊天仓库
func NewChatRepo(data *Data, logger log.Logger) biz.ChatRepo {
	return &chatRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func toBizChatMessage(m *model.ChatMessage) *biz.ChatMessage {
	return &biz.ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Role:      m.Role,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
}

// CreateSession 创建聊天会话
func (r *chatRepo) CreateSession(ctx context.Context, session *biz.ChatSession) error {
	m := &model.ChatSession{
		Token:     session.Token,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create chat session for user %d: %v", session.UserID, err)
		return err
	}
	session.ID = m.ID
	return nil
}

// GetSessionByToken 按对外 token 获取会话，不存在返回 nil
func (r *chatRepo) GetSessionByToken(ctx context.Context, token string) (*biz.ChatSession, error) {
	var m model.ChatSession
	err := r.data.DB(ctx).First(&m, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get chat session by token: %v", err)
		return nil, err
	}
	return &biz.ChatSession{
		ID:        m.ID,
		Token:     m.Token,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// AddMessage 追加聊天消息
func (r *chatRepo) AddMessage(ctx context.Context, msg *biz.ChatMessage) error {
	m := &model.ChatMessage{
		SessionID: msg.SessionID,
		UserID:    msg.UserID,
		Role:      msg.Role,
		Content:   msg.Content,
		ImageURL:  msg.ImageURL,
		CreatedAt: msg.CreatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to add chat message to session %d: %v", msg.SessionID, err)
		return err
	}
	msg.ID = m.ID
	return nil
}

// ListMessages 按时间升序返回会话的全部消息
func (r *chatRepo) ListMessages(ctx context.Context, sessionID uint64) ([]*biz.ChatMessage, error) {
	var models []model.ChatMessage
	err := r.data.DB(ctx).Where("session_id = ?", sessionID).
		Order("created_at ASC, chat_message_id ASC").Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list messages for session %d: %v", sessionID, err)
		return nil, err
	}
	messages := make([]*biz.ChatMessage, len(models))
	for i := range models {
		messages[i] = toBizChatMessage(&models[i])
	}
	return messages, nil
}

// CountUserMessagesSince 统计用户自 since 起发送的消息数，只计 role=user
// 命中 idx_user_role_created 组合索引
func (r *chatRepo) CountUserMessagesSince(ctx context.Context, userID uint64, since time.Time) (int, error) {
	var total int64
	err := r.data.DB(ctx).Model(&model.ChatMessage{}).
		Where("user_id = ? AND role = ? AND created_at >= ?", userID, constants.ChatRoleUser, since).
		Count(&total).Error
	if err != nil {
		r.log.Errorf("Failed to count chat messages for user %d: %v", userID, err)
		return 0, err
	}
	return int(total), nil
}
