// Package provider defines the uniform contract over heterogeneous AI
// vendor APIs. Each vendor lives in its own subpackage (gemini, openai,
// anthropic) and differs only in how it authenticates, how it encodes an
// image attachment, and what its default model is. Those differences stay
// local to the adapter; callers only see Provider.
//
// Adapters never retry and never fall back on their own. They do exactly one
// vendor call per Generate and report every failure as a *Error carrying the
// vendor identity, so the orchestrator one level up can decide what to try
// next.
package provider
