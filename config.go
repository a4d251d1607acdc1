package anlauf

import "os"

// Config carries the per-vendor secrets and model overrides the registry is
// built from. A vendor with an empty key is simply not configured; that is a
// normal state, not an error.
type Config struct {
	GeminiKey    string
	OpenAIKey    string
	AnthropicKey string

	// Optional model overrides. Empty selects each adapter's default.
	GeminiModel    string
	OpenAIModel    string
	AnthropicModel string
}

// ConfigFromEnv reads the well-known environment variables. Binaries that
// want .env support import godotenv/autoload before calling this.
func ConfigFromEnv() Config {
	return Config{
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		AnthropicModel: os.Getenv("ANTHROPIC_MODEL"),
	}
}
