package anlauf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/wanderdocs/anlauf/pkg/slogx"
	"github.com/wanderdocs/anlauf/provider"
)

// DemoText is returned when no provider is configured or every configured
// provider failed. It is deliberately a coherent end-user string rather than
// an error, so callers can render it directly.
const DemoText = "Demo mode: no AI provider is currently available, so this " +
	"is a placeholder answer. Ask the operator to configure GEMINI_API_KEY, " +
	"OPENAI_API_KEY or ANTHROPIC_API_KEY, or add your own API key in the " +
	"settings, to get real answers."

// KeyCheckText is returned when a caller-supplied key was tried and the
// vendor rejected the call. The caller's own key is never silently swapped
// for a system one, so the only useful advice is to check the key.
const KeyCheckText = "Your API key could not be used. Please check that the " +
	"key is valid, matches the selected provider and still has quota, then " +
	"try again."

// DefaultCallTimeout bounds a single provider call. A vendor that hangs is
// treated the same as one that errors: the next vendor gets a turn.
const DefaultCallTimeout = 60 * time.Second

// Override carries caller-supplied credentials. When present, only this
// provider is tried; system providers stay untouched even on failure.
type Override struct {
	Vendor provider.Vendor
	Model  string
	APIKey string
}

// Request is a single generation request as seen by the orchestrator.
type Request struct {
	Prompt      string
	Image       *provider.Attachment
	MaxTokens   int64
	Temperature float64
	Override    *Override
}

func (r Request) providerRequest() provider.Request {
	return provider.Request{
		Prompt:      r.Prompt,
		Image:       r.Image,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	}
}

// Attempt records one provider call made on behalf of a generation run.
// Attempts are reported to the observer in the order they were made.
type Attempt struct {
	RunID     uuid.UUID
	Vendor    provider.Vendor
	Model     string
	StartedAt strfmt.DateTime
	Duration  time.Duration
	Err       error
}

// ProviderSource is the slice of the registry surface the Generator needs.
// *Registry satisfies it.
type ProviderSource interface {
	Get(v provider.Vendor) (provider.Provider, bool)
	AdHoc(v provider.Vendor, model, apiKey string) (provider.Provider, error)
}

// Generator is the single entry point callers use to get generated text.
// It tries providers in Priority order, falls back on provider failure, and
// always terminates in renderable text: a real answer, KeyCheckText on the
// override path, or DemoText when everything is exhausted.
type Generator struct {
	// Priority is the vendor order tried for requests without an override.
	// Fixed and deterministic; first success wins.
	Priority []provider.Vendor

	// CallTimeout bounds each individual provider call.
	CallTimeout time.Duration

	// DemoText is the terminal fallback answer.
	DemoText string

	registry ProviderSource
	observer func(Attempt)
}

var (
	// WithPriority overrides the vendor fallback order.
	WithPriority = opts.ForName[Generator, []provider.Vendor]("Priority")

	// WithCallTimeout overrides the per-provider call budget.
	WithCallTimeout = opts.ForName[Generator, time.Duration]("CallTimeout")

	// WithDemoText overrides the terminal fallback answer.
	WithDemoText = opts.ForName[Generator, string]("DemoText")
)

// WithAttemptObserver registers a callback invoked after every provider
// call, successful or not. Observers must be fast; they run inline.
func WithAttemptObserver(fn func(Attempt)) opts.Option[Generator] {
	return opts.Type[Generator](func(g *Generator) error {
		g.observer = fn
		return nil
	})
}

// NewGenerator builds a Generator over the given registry.
func NewGenerator(registry ProviderSource, options ...opts.Option[Generator]) (*Generator, error) {
	g := &Generator{
		Priority:    provider.Known(),
		CallTimeout: DefaultCallTimeout,
		DemoText:    DemoText,
		registry:    registry,
	}
	if err := opts.Apply(g, options); err != nil {
		return nil, err
	}
	for _, v := range g.Priority {
		if !provider.IsKnown(v) {
			return nil, fmt.Errorf("priority list: %w: %q", ErrUnsupportedVendor, v)
		}
	}
	return g, nil
}

// Generate produces text for req. Provider failures never surface as errors:
// they advance the fallback or degrade to KeyCheckText/DemoText. The error
// return is reserved for caller mistakes (an override naming an unknown
// vendor) and for genuine bugs escaping an adapter, which are not masked as
// demo mode.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	runID := uuid.New()

	if req.Override != nil {
		return g.generateOverride(ctx, runID, req)
	}

	for _, vendor := range g.Priority {
		p, ok := g.registry.Get(vendor)
		if !ok || !p.Available() {
			continue
		}

		text, err := g.attempt(ctx, runID, p, req.providerRequest())
		if err == nil {
			return text, nil
		}
		var perr *provider.Error
		if !errors.As(err, &perr) {
			return "", err
		}
		slog.WarnContext(ctx, "provider failed, falling back",
			slogx.RunID(runID), slogx.Vendor(vendor), slogx.Error(err))
	}

	slog.InfoContext(ctx, "no provider available, serving demo text", slogx.RunID(runID))
	return g.DemoText, nil
}

func (g *Generator) generateOverride(ctx context.Context, runID uuid.UUID, req Request) (string, error) {
	o := req.Override
	p, err := g.registry.AdHoc(o.Vendor, o.Model, o.APIKey)
	if err != nil {
		return "", fmt.Errorf("override: %w", err)
	}

	text, err := g.attempt(ctx, runID, p, req.providerRequest())
	if err == nil {
		return text, nil
	}
	var perr *provider.Error
	if !errors.As(err, &perr) {
		return "", err
	}
	// the key itself is never logged
	slog.WarnContext(ctx, "override provider failed",
		slogx.RunID(runID), slogx.Vendor(o.Vendor), slogx.Error(err))
	return KeyCheckText, nil
}

func (g *Generator) attempt(ctx context.Context, runID uuid.UUID, p provider.Provider, req provider.Request) (string, error) {
	callCtx := ctx
	if g.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.CallTimeout)
		defer cancel()
	}

	started := time.Now()
	text, err := p.Generate(callCtx, req)
	if g.observer != nil {
		g.observer(Attempt{
			RunID:     runID,
			Vendor:    p.Vendor(),
			Model:     p.Model(),
			StartedAt: strfmt.DateTime(started),
			Duration:  time.Since(started),
			Err:       err,
		})
	}
	return text, err
}
