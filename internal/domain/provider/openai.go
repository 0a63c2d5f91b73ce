package provider

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"nutrisense-server-go/internal/platform/config"
	"nutrisense-server-go/internal/platform/errors"
	"nutrisense-server-go/internal/platform/logging"
)

// User-presentable messages for upstream failures. Anything else about the
// failure stays in the logs.
const (
	MsgRateLimited = "Rate limit exceeded. Please try again in a moment."
	MsgQuota       = "Usage limit reached. Please add credits to continue."
	MsgUnavailable = "service temporarily unavailable"
)

// OpenAIProvider talks to any openai-compatible endpoint, including the
// AI gateway front for Gemini models.
type OpenAIProvider struct {
	name   string
	cfg    config.ProviderConfig
	client *openai.Client
	logger *logging.Logger
}

func NewOpenAI(name string, cfg config.ProviderConfig, logger *logging.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.KindConfig, "provider.openai", fmt.Sprintf("provider %s has no api key", name))
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		name:   name,
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) model(tier Tier) string {
	if tier == TierCapable {
		return p.cfg.CapableModel
	}
	return p.cfg.LightModel
}

// Chat runs one completion against the configured endpoint. The call is
// bounded by the provider timeout independent of the caller's context.
func (p *OpenAIProvider) Chat(ctx context.Context, req Request) (string, error) {
	const op = "provider.chat"

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, p.userMessage(req))

	temperature := req.Temperature
	if temperature == 0 {
		temperature = float32(p.cfg.Temperature)
	}

	model := p.model(req.Tier)
	p.logger.DebugTag("LLM", "dispatching to %s model=%s image=%v", p.name, model, req.ImageBase64 != "")

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return "", p.classify(op, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New(errors.KindProvider, op, "no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) userMessage(req Request) openai.ChatCompletionMessage {
	if req.ImageBase64 == "" {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserText,
		}
	}

	imageURL := req.ImageBase64
	if !strings.HasPrefix(imageURL, "data:") {
		imageURL = fmt.Sprintf("data:image/jpeg;base64,%s", imageURL)
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: req.UserText,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: imageURL,
				},
			},
		},
	}
}

// Transcribe converts speech to text through the audio endpoint.
func (p *OpenAIProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	const op = "provider.transcribe"

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	format := req.Format
	if format == "" {
		format = "webm"
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       p.cfg.TranscribeModel,
		Reader:      bytes.NewReader(req.Audio),
		FilePath:    "recording." + format,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", p.classify(op, err)
	}
	if resp.Text == "" {
		return "", errors.New(errors.KindProvider, op, "no transcription generated")
	}
	return resp.Text, nil
}

// classify maps upstream failures onto error kinds the dispatcher understands.
func (p *OpenAIProvider) classify(op string, err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case stderrors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 429:
		return errors.Wrap(errors.KindRateLimit, op, MsgRateLimited, err)
	case 402:
		return errors.Wrap(errors.KindQuota, op, MsgQuota, err)
	default:
		return errors.Wrap(errors.KindProvider, op, MsgUnavailable, err)
	}
}
