package model

import "time"

// ChatSession AI 聊天会话模型
type ChatSession struct {
	ID        uint64    `gorm:"primaryKey;column:chat_session_id"`
	Token     string    `gorm:"column:token;uniqueIndex;not null"`
	UserID    uint64    `gorm:"column:user_id;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ChatSession) TableName() string { return "chat_session" }

// ChatMessage AI 聊天消息模型
// user_id 冗余存储，按天统计配额时不用回连会话表
type ChatMessage struct {
	ID        uint64    `gorm:"primaryKey;column:chat_message_id"`
	SessionID uint64    `gorm:"column:session_id;index;not null"`
	UserID    uint64    `gorm:"column:user_id;index:idx_user_role_created;not null"`
	Role      string    `gorm:"column:role;index:idx_user_role_created;not null"` // user, assistant
	Content   string    `gorm:"column:content;type:text;not null"`
	ImageURL  string    `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_user_role_created"`
}

func (ChatMessage) TableName() string { return "chat_message" }
