package anthropic

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderdocs/anlauf/provider"
)

const messageBody = `{
  "id": "msg_test",
  "type": "message",
  "role": "assistant",
  "content": [{"type": "text", "text": "Sehr geehrte Damen und Herren"}]
}`

func TestNewDefaults(t *testing.T) {
	p := New("key", "")
	assert.Equal(t, provider.Anthropic, p.Vendor())
	assert.Equal(t, DefaultModel, p.Model())
	assert.True(t, p.Available())

	assert.False(t, New("", "").Available())
}

func TestGenerate(t *testing.T) {
	var gotHeaders http.Header
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageBody))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	text, err := p.Generate(context.Background(), provider.Request{Prompt: "draft a letter"})
	require.NoError(t, err)
	assert.Equal(t, "Sehr geehrte Damen und Herren", text)

	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, apiVersion, gotHeaders.Get("anthropic-version"))
	assert.Equal(t, DefaultModel, gotReq.Model)
	assert.Equal(t, int64(defaultMaxTokens), gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "draft a letter", gotReq.Messages[0].Content[0].Text)
}

func TestGenerateEncodesImage(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageBody))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{
		Prompt: "what does this say?",
		Image:  &provider.Attachment{Data: []byte{0x1, 0x2}, MIME: "image/webp"},
	})
	require.NoError(t, err)

	require.Len(t, gotReq.Messages[0].Content, 2)
	img := gotReq.Messages[0].Content[1]
	assert.Equal(t, "image", img.Type)
	require.NotNil(t, img.Source)
	assert.Equal(t, "base64", img.Source.Type)
	assert.Equal(t, "image/webp", img.Source.MediaType)
	assert.Equal(t, "AQI=", img.Source.Data)
}

func TestGenerateVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := New("bad-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.Anthropic, perr.Vendor)
	assert.Contains(t, perr.Message, "invalid x-api-key")
}

func TestGenerateNoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_test","type":"message","content":[]}`))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no text block")
}

func TestGenerateWithoutKeySkipsNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	p := New("", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.False(t, hit)
}
