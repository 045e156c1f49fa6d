package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/samonya/pkg/observability"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

// NoContent is returned when the model answers with nothing usable
const NoContent = "No content generated."

// Generator produces content for a tool run
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// openAIClient is the subset of the go-openai client used here
type openAIClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

// OpenAIConfig configures OpenAIGenerator
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	ImageSize   string
	Temperature float32
	MaxTokens   int
}

// DefaultOpenAIConfig returns the default model settings
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		TextModel:   openai.GPT4oMini,
		ImageModel:  openai.CreateImageModelDallE3,
		ImageSize:   openai.CreateImageSize1024x1024,
		Temperature: 0.8,
		MaxTokens:   1500,
	}
}

// OpenAIGenerator generates tool content with the OpenAI chat and image APIs.
// When a visual is requested the text and image calls run concurrently and
// both must succeed.
type OpenAIGenerator struct {
	client openAIClient
	config OpenAIConfig
	logger *observability.Logger
}

// NewOpenAIClient builds a go-openai client from config
func NewOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// NewOpenAIGenerator creates a generator
func NewOpenAIGenerator(cfg OpenAIConfig, logger *observability.Logger) (*OpenAIGenerator, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return newOpenAIGenerator(client, cfg, logger), nil
}

func newOpenAIGenerator(client openAIClient, cfg OpenAIConfig, logger *observability.Logger) *OpenAIGenerator {
	defaults := DefaultOpenAIConfig()
	if cfg.TextModel == "" {
		cfg.TextModel = defaults.TextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaults.ImageModel
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = defaults.ImageSize
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaults.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &OpenAIGenerator{
		client: client,
		config: cfg,
		logger: logger.WithField("component", "generator"),
	}
}

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	var text, image string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		text, err = g.generateText(egCtx, req)
		return err
	})
	if req.Visual {
		eg.Go(func() error {
			var err error
			image, err = g.generateImage(egCtx, req)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		g.logger.WithError(err).WithField("tool", req.ToolName).Warn("Tool generation failed")
		return "", err
	}

	var out strings.Builder
	if text != "" {
		out.WriteString(text)
		out.WriteString("\n")
	}
	if image != "" {
		out.WriteString(EncodeImage("image/png", image))
	}
	if out.Len() == 0 {
		return NoContent, nil
	}
	return out.String(), nil
}

func (g *OpenAIGenerator) generateText(ctx context.Context, req Request) (string, error) {
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	prompt := BuildPrompt(req)
	if req.Attachment != "" {
		if _, err := ParseDataURI(req.Attachment); err != nil {
			return "", fmt.Errorf("attachment: %w", err)
		}
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    req.Attachment,
				Detail: openai.ImageURLDetailAuto,
			}},
		}
	} else {
		user.Content = prompt
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.config.TextModel,
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			user,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) generateImage(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         BuildImagePrompt(req),
		Model:          g.config.ImageModel,
		Size:           g.config.ImageSize,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].B64JSON, nil
}
