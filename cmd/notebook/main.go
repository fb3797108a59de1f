package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"notebook/cmd/notebook/chat"
	"notebook/cmd/notebook/ui"
	"notebook/internal/backend"
	"notebook/internal/config"
	"notebook/internal/feedback"
	"notebook/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "notebook",
	Short: "notebook - chat with your documents",
	Long: `notebook uploads a PDF, Markdown or text document to a document-chat
backend and lets you ask questions about it.

Run without arguments to start the interactive interface. Your API key is
entered in the interface and never written to disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		// Interactive mode logs to a file; the terminal belongs to the UI
		if cmd == cmd.Root() {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Use(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .notebook/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (or set NOTEBOOK_API_URL)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(stubCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if apiURL != "" {
		loaded.API.BaseURL = apiURL
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	cfg = loaded
	return nil
}

func newClient() *backend.Client {
	return backend.NewClient(cfg.API.BaseURL, backend.WithTimeout(cfg.GetRequestTimeout()))
}

// signalContext cancels on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			if logger != nil {
				logger.Info("Received shutdown signal")
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// runInteractive launches the terminal interface.
func runInteractive(cmd *cobra.Command, args []string) error {
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer func() {
		logging.Sync()
		logging.CloseAll()
	}()

	logging.Boot("starting notebook",
		zap.String("api", cfg.API.BaseURL),
		zap.Duration("request_timeout", cfg.GetRequestTimeout()),
		zap.String("sound", string(cfg.Sound.Mode)),
	)

	ctx, cancel := signalContext()
	defer cancel()

	return chat.Run(ctx, chat.Options{
		Backend:  newClient(),
		Emitter:  feedback.New(cfg.Sound),
		Styles:   ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		Markdown: cfg.UI.Markdown,
	})
}
