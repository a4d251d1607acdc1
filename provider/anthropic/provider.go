package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/wanderdocs/anlauf/provider"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "claude-3-5-sonnet-latest"

	defaultBaseURL   = "https://api.anthropic.com"
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

// Provider talks to the Anthropic Messages REST API.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ provider.Provider = (*Provider)(nil)

// Option customizes a Provider beyond key and model.
type Option func(*Provider)

// WithBaseURL points the adapter at a different API host.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New builds an Anthropic provider. An empty model selects DefaultModel.
func New(apiKey, model string, options ...Option) *Provider {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range options {
		o(p)
	}
	return p
}

func (p *Provider) Vendor() provider.Vendor { return provider.Anthropic }

func (p *Provider) Model() string { return p.model }

func (p *Provider) Available() bool { return p.apiKey != "" }

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int64     `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	if !p.Available() {
		return "", provider.ErrNotConfigured(provider.Anthropic)
	}

	blocks := []contentBlock{{Type: "text", Text: req.Prompt}}
	if req.Image != nil {
		mime := req.Image.MIME
		if mime == "" {
			mime = "image/jpeg"
		}
		blocks = append(blocks, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mime,
				Data:      base64.StdEncoding.EncodeToString(req.Image.Data),
			},
		})
	}

	// the Messages API requires max_tokens
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	payload := messagesRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: blocks}},
	}
	if req.Temperature > 0 {
		payload.Temperature = &req.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", provider.Wrap(provider.Anthropic, err, "failed to build request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", provider.Wrap(provider.Anthropic, err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", provider.Wrap(provider.Anthropic, err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.Wrap(provider.Anthropic, err, "failed to read response")
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", provider.Wrap(provider.Anthropic, err, "failed to decode response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", provider.Errf(provider.Anthropic, "status %d: %s", resp.StatusCode, msg)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", provider.Errf(provider.Anthropic, "response has no text block")
}
