package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/wanderdocs/anlauf/provider"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "gemini-2.0-flash"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 120 * time.Second
)

// Provider talks to the Gemini generateContent REST API directly. Google's
// wire format is small enough that the request document is assembled with
// sjson and the response picked apart with gjson, no SDK needed.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ provider.Provider = (*Provider)(nil)

// Option customizes a Provider beyond key and model.
type Option func(*Provider)

// WithBaseURL points the adapter at a different API host. Tests use this
// with an httptest server.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New builds a Gemini provider. An empty model selects DefaultModel.
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

func (p *Provider) Vendor() provider.Vendor { return provider.Gemini }

func (p *Provider) Model() string { return p.model }

func (p *Provider) Available() bool { return p.apiKey != "" }

func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	if !p.Available() {
		return "", provider.ErrNotConfigured(provider.Gemini)
	}

	body, err := buildRequest(req)
	if err != nil {
		return "", provider.Wrap(provider.Gemini, err, "failed to build request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", provider.Wrap(provider.Gemini, err, "failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", provider.Wrap(provider.Gemini, err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.Wrap(provider.Gemini, err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return "", provider.Errf(provider.Gemini, "status %d: %s", resp.StatusCode, msg)
	}

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", provider.Errf(provider.Gemini, "response has no candidate text")
	}
	return text, nil
}

func buildRequest(req provider.Request) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "contents.0.parts.0.text", req.Prompt)
	if err != nil {
		return nil, err
	}
	if req.Image != nil {
		mime := req.Image.MIME
		if mime == "" {
			mime = "image/jpeg"
		}
		if body, err = sjson.SetBytes(body, "contents.0.parts.1.inline_data.mime_type", mime); err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(req.Image.Data)
		if body, err = sjson.SetBytes(body, "contents.0.parts.1.inline_data.data", encoded); err != nil {
			return nil, err
		}
	}
	if req.MaxTokens > 0 {
		if body, err = sjson.SetBytes(body, "generationConfig.maxOutputTokens", req.MaxTokens); err != nil {
			return nil, err
		}
	}
	if req.Temperature > 0 {
		if body, err = sjson.SetBytes(body, "generationConfig.temperature", req.Temperature); err != nil {
			return nil, err
		}
	}
	return body, nil
}
