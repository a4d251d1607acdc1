package anlauf

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/alphadose/haxmap"
	"github.com/wanderdocs/anlauf/provider"
	"github.com/wanderdocs/anlauf/provider/anthropic"
	"github.com/wanderdocs/anlauf/provider/gemini"
	"github.com/wanderdocs/anlauf/provider/openai"
)

// ErrUnsupportedVendor is returned when a caller names a vendor this module
// has no adapter for.
var ErrUnsupportedVendor = errors.New("unsupported vendor")

// VendorStatus describes one known vendor's configuration state, for
// observability endpoints and CLIs. Model is the effective model when
// configured, otherwise the adapter default that would apply.
type VendorStatus struct {
	Vendor     provider.Vendor
	Configured bool
	Model      string
}

// Registry owns the system-wide providers, one per vendor that has a key in
// Config. It is read-mostly: built once at startup, consulted on every
// generation. Reload swaps the whole provider map atomically, so concurrent
// readers always see a complete generation of the configuration.
type Registry struct {
	providers atomic.Pointer[haxmap.Map[string, provider.Provider]]
}

// NewRegistry builds a registry from cfg. Zero configured vendors is valid;
// the generator then degrades to demo text.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{}
	r.Reload(cfg)
	return r
}

// Reload replaces the provider set with one built from cfg.
func (r *Registry) Reload(cfg Config) {
	m := haxmap.New[string, provider.Provider]()
	if cfg.GeminiKey != "" {
		m.Set(string(provider.Gemini), gemini.New(cfg.GeminiKey, cfg.GeminiModel))
	}
	if cfg.OpenAIKey != "" {
		m.Set(string(provider.OpenAI), openai.New(cfg.OpenAIKey, cfg.OpenAIModel))
	}
	if cfg.AnthropicKey != "" {
		m.Set(string(provider.Anthropic), anthropic.New(cfg.AnthropicKey, cfg.AnthropicModel))
	}
	r.providers.Store(m)
}

// Get returns the system provider for v, if one is configured.
func (r *Registry) Get(v provider.Vendor) (provider.Provider, bool) {
	return r.providers.Load().Get(string(v))
}

// Available returns the vendors that are configured and usable, in fallback
// priority order.
func (r *Registry) Available() []provider.Vendor {
	var out []provider.Vendor
	for _, v := range provider.Known() {
		if p, ok := r.Get(v); ok && p.Available() {
			out = append(out, v)
		}
	}
	return out
}

// Status reports every known vendor, configured or not, so callers can render
// a complete picture instead of guessing which vendors exist.
func (r *Registry) Status() []VendorStatus {
	statuses := make([]VendorStatus, 0, len(provider.Known()))
	for _, v := range provider.Known() {
		if p, ok := r.Get(v); ok {
			statuses = append(statuses, VendorStatus{Vendor: v, Configured: p.Available(), Model: p.Model()})
			continue
		}
		statuses = append(statuses, VendorStatus{Vendor: v, Configured: false, Model: defaultModel(v)})
	}
	return statuses
}

// AdHoc constructs a provider from caller-supplied credentials without
// registering it. The instance lives for one request and is never stored, so
// a user's personal key cannot leak into other requests.
func (r *Registry) AdHoc(v provider.Vendor, model, apiKey string) (provider.Provider, error) {
	switch v {
	case provider.Gemini:
		return gemini.New(apiKey, model), nil
	case provider.OpenAI:
		return openai.New(apiKey, model), nil
	case provider.Anthropic:
		return anthropic.New(apiKey, model), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVendor, v)
	}
}

func defaultModel(v provider.Vendor) string {
	switch v {
	case provider.Gemini:
		return gemini.DefaultModel
	case provider.OpenAI:
		return openai.DefaultModel
	case provider.Anthropic:
		return anthropic.DefaultModel
	default:
		return ""
	}
}
