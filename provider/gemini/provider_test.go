package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/wanderdocs/anlauf/provider"
)

const candidateBody = `{
  "candidates": [
    {"content": {"parts": [{"text": "Hallo aus Berlin"}], "role": "model"}, "finishReason": "STOP"}
  ]
}`

func TestNewDefaults(t *testing.T) {
	p := New("key", "")
	assert.Equal(t, provider.Gemini, p.Vendor())
	assert.Equal(t, DefaultModel, p.Model())
	assert.True(t, p.Available())

	assert.False(t, New("", "").Available())
	assert.Equal(t, "gemini-1.5-pro", New("key", "gemini-1.5-pro").Model())
}

func TestGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateBody))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	text, err := p.Generate(context.Background(), provider.Request{
		Prompt:      "say hello",
		MaxTokens:   256,
		Temperature: 0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hallo aus Berlin", text)

	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "say hello", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	assert.Equal(t, int64(256), gjson.GetBytes(gotBody, "generationConfig.maxOutputTokens").Int())
	assert.InDelta(t, 0.4, gjson.GetBytes(gotBody, "generationConfig.temperature").Float(), 1e-9)
}

func TestGenerateInlineImage(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateBody))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{
		Prompt: "read this letter",
		Image:  &provider.Attachment{Data: []byte{0x1, 0x2}, MIME: "image/png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", gjson.GetBytes(gotBody, "contents.0.parts.1.inline_data.mime_type").String())
	assert.Equal(t, "AQI=", gjson.GetBytes(gotBody, "contents.0.parts.1.inline_data.data").String())
}

func TestGenerateVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := New("bad-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.Gemini, perr.Vendor)
	assert.Contains(t, perr.Message, "API key not valid")
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	p := New("test-key", "", WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "hi"})

	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no candidate text")
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
