// Package anlauf provides deterministic multi-vendor fallback for AI text
// generation. A Registry holds one provider per configured vendor (Gemini,
// OpenAI, Anthropic); a Generator tries them in a fixed priority order and
// degrades gracefully when vendors misbehave.
//
// The contract callers rely on:
//
//   - Generate always terminates in renderable text. A vendor outage is
//     turned into a fallback attempt, never into an exception for the
//     request handler to special-case.
//   - Requests carrying an Override (a user's own key) are isolated: only
//     that provider is tried, and on failure the caller gets KeyCheckText
//     instead of a silent fallback onto operator-billed system keys.
//   - When every system provider fails, or none is configured, the result is
//     DemoText, so downstream UIs still render something coherent.
//
// Typical use:
//
//	reg := anlauf.NewRegistry(anlauf.ConfigFromEnv())
//	gen, err := anlauf.NewGenerator(reg)
//	if err != nil {
//	    return err
//	}
//	answer, err := gen.Generate(ctx, anlauf.Request{Prompt: "Summarize this letter"})
//
// Fallback is intentionally simple: fixed order, first success wins, no
// retries against the same vendor, no cross-call memory of recent failures.
// Every call starts fresh at the top of the priority list.
package anlauf
