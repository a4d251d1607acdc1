// Package slogx holds small slog attribute constructors so log call sites
// stay uniform across the module.
package slogx

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/wanderdocs/anlauf/provider"
)

// Error returns a slog.Attr with key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Vendor returns a slog.Attr identifying the AI vendor an event concerns.
func Vendor(v provider.Vendor) slog.Attr {
	return slog.String("vendor", string(v))
}

// RunID returns a slog.Attr carrying the generation run identifier, so all
// fallback attempts of one call correlate in the logs.
func RunID(id uuid.UUID) slog.Attr {
	return slog.String("run_id", id.String())
}
