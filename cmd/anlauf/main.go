// Command anlauf is a small operational front end for the fallback
// generator: run one generation against the configured providers, or inspect
// which vendors are configured. It exists so deployments can be smoke-tested
// without going through the full application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fogfish/opts"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wanderdocs/anlauf"
	"github.com/wanderdocs/anlauf/provider"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

var (
	vendorFlag  string
	modelFlag   string
	apiKeyFlag  string
	imageFlag   string
	maxTokens   int64
	temperature float64
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "anlauf",
	Short: "Multi-vendor AI text generation with deterministic fallback",
	Long: `Runs text generation against the configured AI vendors, trying them in
priority order and degrading gracefully when they fail.

Provider keys come from GEMINI_API_KEY, OPENAI_API_KEY and ANTHROPIC_API_KEY
(a local .env file is honored).`,
}

var generateCmd = &cobra.Command{
	Use:     "generate PROMPT...",
	Aliases: []string{"gen", "ask"},
	Short:   "Generate text for a prompt",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := anlauf.Request{
			Prompt:      strings.Join(args, " "),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}

		if imageFlag != "" {
			data, err := os.ReadFile(imageFlag)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			req.Image = &provider.Attachment{Data: data, MIME: mimeForPath(imageFlag)}
		}

		if vendorFlag != "" {
			req.Override = &anlauf.Override{
				Vendor: provider.Vendor(vendorFlag),
				Model:  modelFlag,
				APIKey: apiKeyFlag,
			}
		}

		reg := anlauf.NewRegistry(anlauf.ConfigFromEnv())
		gen, err := anlauf.NewGenerator(reg, generatorOptions()...)
		if err != nil {
			return err
		}

		text, err := gen.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-vendor configuration state",
	Run: func(cmd *cobra.Command, args []string) {
		reg := anlauf.NewRegistry(anlauf.ConfigFromEnv())
		for _, s := range reg.Status() {
			mark := color.RedString("unconfigured")
			if s.Configured {
				mark = color.GreenString("configured")
			}
			fmt.Printf("%-10s %-13s model=%s\n", s.Vendor, mark, s.Model)
		}
	},
}

func generatorOptions() []opts.Option[anlauf.Generator] {
	var options []opts.Option[anlauf.Generator]
	if timeoutFlag > 0 {
		options = append(options, anlauf.WithCallTimeout(timeoutFlag))
	}
	options = append(options, anlauf.WithAttemptObserver(func(a anlauf.Attempt) {
		ev := log.Debug().Str("vendor", string(a.Vendor)).Str("model", a.Model).Dur("took", a.Duration)
		if a.Err != nil {
			ev = ev.Err(a.Err)
		}
		ev.Msg("provider attempt")
	}))
	return options
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func main() {
	generateCmd.Flags().StringVar(&vendorFlag, "vendor", "", "use your own key against this vendor (gemini|openai|anthropic)")
	generateCmd.Flags().StringVar(&modelFlag, "model", "", "model name for --vendor (vendor default if empty)")
	generateCmd.Flags().StringVarP(&apiKeyFlag, "api-key", "k", "", "API key for --vendor")
	generateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "attach an image file")
	generateCmd.Flags().Int64Var(&maxTokens, "max-tokens", 0, "cap the response length")
	generateCmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	generateCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "per-provider call timeout")
	generateCmd.MarkFlagsRequiredTogether("vendor", "api-key")

	rootCmd.AddCommand(generateCmd, statusCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
