// Package main provides the grompt binary entry point.
// Grompt rephrases prompts through an LLM completion API, making them
// clearer, more concise, and more effective.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	// Register completion providers via init()
	_ "github.com/c360studio/grompt/llm/providers"

	"github.com/spf13/cobra"

	"github.com/c360studio/grompt/canvas"
	"github.com/c360studio/grompt/config"
	"github.com/c360studio/grompt/llm"
	"github.com/c360studio/grompt/optimizer"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "grompt"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// canvasFlags holds the advanced-mode flag values. Steps and references
// are newline-separated, matching the interactive surface.
type canvasFlags struct {
	persona      string
	audience     string
	task         string
	steps        string
	contextText  string
	references   string
	outputFormat string
	tonality     string
}

func (f *canvasFlags) isSet() bool {
	return f.persona != "" || f.audience != "" || f.task != "" ||
		f.steps != "" || f.contextText != "" || f.references != "" ||
		f.outputFormat != "" || f.tonality != ""
}

func (f *canvasFlags) toCanvas() *canvas.Canvas {
	return &canvas.Canvas{
		Persona:      f.persona,
		Audience:     f.audience,
		Task:         f.task,
		Steps:        canvas.SplitLines(f.steps),
		Context:      f.contextText,
		References:   canvas.SplitLines(f.references),
		OutputFormat: f.outputFormat,
		Tonality:     f.tonality,
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath  string
		logLevel    string
		model       string
		temperature float64
		maxTokens   int
		cf          canvasFlags
	)

	cmd := &cobra.Command{
		Use:   "grompt [prompt]",
		Short: "Rephrase prompts using an LLM",
		Long: `Grompt sends a templated "optimize this prompt" instruction to an
LLM completion API (Groq by default) and prints the improved text.

Basic mode takes a single prompt argument. Advanced mode builds a
structured prompt canvas from the --persona, --audience, --task,
--steps, --context, --references, --format and --tone flags; any canvas
flag switches to advanced mode and the positional prompt is ignored.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)

			var prompt string
			if len(args) > 0 {
				prompt = args[0]
			}
			if prompt == "" && !cf.isSet() {
				return cmd.Help()
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			req := optimizer.Request{Prompt: prompt}
			if cf.isSet() {
				req.Canvas = cf.toCanvas()
			}
			if cmd.Flags().Changed("model") {
				req.Model = model
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = maxTokens
			}

			return rephrase(cmd.Context(), cfg, req)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&model, "model", optimizer.DefaultModel, "Model to use")
	cmd.Flags().Float64Var(&temperature, "temperature", optimizer.DefaultTemperature, "Sampling temperature (0.0-1.0)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", optimizer.DefaultMaxTokens, "Response token budget")

	cmd.Flags().StringVar(&cf.persona, "persona", "", "Canvas: persona/role")
	cmd.Flags().StringVar(&cf.audience, "audience", "", "Canvas: target audience")
	cmd.Flags().StringVar(&cf.task, "task", "", "Canvas: task/intent")
	cmd.Flags().StringVar(&cf.steps, "steps", "", "Canvas: steps, one per line")
	cmd.Flags().StringVar(&cf.contextText, "context", "", "Canvas: background context")
	cmd.Flags().StringVar(&cf.references, "references", "", "Canvas: references, one per line")
	cmd.Flags().StringVar(&cf.outputFormat, "format", "", "Canvas: output format")
	cmd.Flags().StringVar(&cf.tonality, "tone", "", "Canvas: tone")

	cmd.AddCommand(serveCmd())

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// rephrase performs one optimization and prints the result.
func rephrase(ctx context.Context, cfg *config.Config, req optimizer.Request) error {
	// Credential precondition: fail before any call is attempted.
	if envName, ok := llm.CheckCredential(cfg.Model.Provider); !ok {
		return fmt.Errorf("%s is not set", envName)
	}

	opt := newOptimizer(cfg)

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := opt.Optimize(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println("Rephrased prompt:")
	fmt.Println(result)
	return nil
}

// newOptimizer wires a completion client and optimizer from config.
func newOptimizer(cfg *config.Config) *optimizer.Optimizer {
	client := llm.NewClient(
		llm.Endpoint{Provider: cfg.Model.Provider, URL: cfg.Model.Endpoint},
		llm.WithTimeout(cfg.Model.Timeout),
	)

	return optimizer.New(client, optimizer.Defaults{
		Model:       cfg.Model.Default,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
	})
}

func loadConfig(configPath string) (*config.Config, error) {
	loader := config.NewLoader(slog.Default())
	if configPath != "" {
		return loader.LoadFrom(configPath)
	}
	return loader.Load()
}

func setupLogging(logLevel string) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
