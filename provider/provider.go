package provider

import (
	"context"
	"fmt"
)

// Vendor identifies an AI vendor integration.
type Vendor string

const (
	Gemini    Vendor = "gemini"
	OpenAI    Vendor = "openai"
	Anthropic Vendor = "anthropic"
)

// Known lists every vendor this module integrates with, in the default
// fallback priority order.
func Known() []Vendor {
	return []Vendor{Gemini, OpenAI, Anthropic}
}

// IsKnown reports whether v is one of the integrated vendors.
func IsKnown(v Vendor) bool {
	switch v {
	case Gemini, OpenAI, Anthropic:
		return true
	}
	return false
}

// Attachment is an optional binary input to a generation request, typically
// a photographed document. Each adapter decides how to encode it for its
// vendor's wire format.
type Attachment struct {
	Data []byte
	MIME string
}

// Request carries the inputs for a single generation call. MaxTokens and
// Temperature are hints; adapters for vendors that have no equivalent knob
// ignore them.
type Request struct {
	Prompt      string
	Image       *Attachment
	MaxTokens   int64
	Temperature float64
}

// Provider is the uniform contract over heterogeneous vendor APIs.
// Implementations of this interface handle the specifics of authenticating
// and talking to one AI service while the rest of the application stays
// vendor-agnostic.
type Provider interface {
	// Vendor returns the identity of the backing service.
	Vendor() Vendor

	// Model returns the effective model name, after defaulting.
	Model() string

	// Available reports whether the provider was constructed with a
	// non-empty API key. It never performs network I/O.
	Available() bool

	// Generate performs a single vendor call and returns the produced text.
	// Every failure mode (missing key, transport error, vendor error,
	// unusable response) is reported as a *Error. Generate never retries;
	// retry and fallback policy belong to the caller.
	Generate(ctx context.Context, req Request) (string, error)
}

// Error is the failure type every adapter reports. It carries the vendor
// identity so the fallback orchestrator can log which provider misbehaved
// without understanding vendor specifics.
type Error struct {
	Vendor  Vendor
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Vendor, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds a *Error for the given vendor.
func Errf(vendor Vendor, format string, args ...any) *Error {
	return &Error{Vendor: vendor, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error around an underlying cause.
func Wrap(vendor Vendor, err error, message string) *Error {
	return &Error{Vendor: vendor, Message: message, Err: err}
}

// ErrNotConfigured is the error adapters return from Generate when they were
// constructed without an API key. It is produced before any network I/O.
func ErrNotConfigured(vendor Vendor) *Error {
	return Errf(vendor, "not configured: missing API key")
}
