package openai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/wanderdocs/anlauf/provider"
)

// DefaultModel is used when the caller does not name a model.
const DefaultModel = openai.ChatModelGPT4oMini

// Provider adapts the official OpenAI SDK to the provider contract.
type Provider struct {
	apiKey string
	model  string
	client *openai.Client
}

var _ provider.Provider = (*Provider)(nil)

// New builds an OpenAI provider. An empty model selects DefaultModel.
// Extra request options (base URL, middlewares) are passed through to the
// SDK client; tests use option.WithBaseURL to point at a fake backend.
func New(apiKey, model string, options ...option.RequestOption) *Provider {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	// fallback to the next vendor is the orchestrator's job, so the SDK's
	// built-in retries are disabled
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, options...)
	return &Provider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(reqOpts...),
	}
}

func (p *Provider) Vendor() provider.Vendor { return provider.OpenAI }

func (p *Provider) Model() string { return p.model }

func (p *Provider) Available() bool { return p.apiKey != "" }

func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	if !p.Available() {
		return "", provider.ErrNotConfigured(provider.OpenAI)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextPart(req.Prompt),
	}
	if req.Image != nil {
		parts = append(parts, openai.ChatCompletionContentPartImageParam{
			ImageURL: openai.F(openai.ChatCompletionContentPartImageImageURLParam{
				URL: openai.String(dataURL(req.Image)),
			}),
			Type: openai.F(openai.ChatCompletionContentPartImageTypeImageURL),
		})
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessageParts(parts...),
		}),
		Model: openai.F(p.model),
		N:     openai.Int(1),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", provider.Wrap(provider.OpenAI, err, "chat completion failed")
	}
	if len(chat.Choices) == 0 {
		return "", provider.Errf(provider.OpenAI, "completion has no choices")
	}

	text := chat.Choices[0].Message.Content
	if text == "" {
		return "", provider.Errf(provider.OpenAI, "completion has no text content")
	}
	return text, nil
}

func dataURL(img *provider.Attachment) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
