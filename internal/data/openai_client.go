package data

import (
	"context"
	"fmt"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt 助手人设，回复语言跟随用户
const systemPrompt = "Eres un asistente mecánico virtual para conductores en Bolivia. " +
	"Ayudas a diagnosticar problemas del vehículo y recomiendas el tipo de servicio " +
	"de asistencia adecuado (grúa, batería, llanta, combustible, mecánico). " +
	"Responde de forma breve y práctica."

// completionClient 文本补全客户端实现
type completionClient struct {
	client *openai.Client
	model  string
	log    *log.Helper
}

// NewCompletionClient 创建文本补全客户端
func NewCompletionClient(c *conf.Bootstrap, logger log.Logger) (biz.CompletionClient, error) {
	if c.AI == nil || c.AI.ApiKey == "" {
		return nil, fmt.Errorf("ai.api_key is required")
	}
	cfg := openai.DefaultConfig(c.AI.ApiKey)
	if c.AI.BaseUrl != "" {
		cfg.BaseURL = c.AI.BaseUrl
	}
	model := c.AI.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &completionClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log.NewHelper(logger),
	}, nil
}

// Complete 以会话历史为上下文生成助手回复
// history 已含刚写入的用户消息
func (c *completionClient) Complete(ctx context.Context, history []*biz.ChatMessage, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == constants.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		c.log.Errorf("Chat completion request failed: %v", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
