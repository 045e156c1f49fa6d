package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIChatter answers with an OpenAI chat model under the SAMN persona
type OpenAIChatter struct {
	client      chatCompletionClient
	model       string
	system      string
	temperature float32
}

// NewOpenAIChatter creates a chatter. An empty model uses gpt-4o-mini.
func NewOpenAIChatter(client *openai.Client, model, systemInstruction string) *OpenAIChatter {
	return newOpenAIChatter(client, model, systemInstruction)
}

func newOpenAIChatter(client chatCompletionClient, model, systemInstruction string) *OpenAIChatter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIChatter{
		client:      client,
		model:       model,
		system:      systemInstruction,
		temperature: 0.7,
	}
}

// Reply implements Chatter
func (c *OpenAIChatter) Reply(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// OfflineChatter replies without a model
type OfflineChatter struct{}

// Reply implements Chatter
func (OfflineChatter) Reply(ctx context.Context, history []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Text
	}
	return fmt.Sprintf("I'm running offline right now, so I can't give a full answer to %q. "+
		"Try one of the business tools or contact us on WhatsApp.", last), nil
}
