package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"modtrans/internal/charset"
	"modtrans/internal/config"
	"modtrans/internal/dialect"
	"modtrans/internal/memory"
	"modtrans/internal/parser"
	"modtrans/internal/pipeline"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modtrans",
		Short: "Extract game mod text for translation and restore translated files",
		Long: `Extracts translatable text from mod assets (language files, lore, NPC dialogs,
quests, speech banks) into flat key/value record files for a translation
platform, and rebuilds the assets from the translated records.`,
	}

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(classifyCmd())

	return rootCmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Extract original assets into record files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, true, false)
		},
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Rebuild assets from translated record files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, false, true)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run convert, then restore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, true, true)
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <relative-path>",
		Short: "Print the dialect of an asset path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			classifier, err := newClassifier(cfg)
			if err != nil {
				return err
			}
			d, err := classifier.Require(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d, classifier.OutputPath(args[0]))
			return nil
		},
	}
}

func newClassifier(cfg *config.Config) (*dialect.Classifier, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	return dialect.NewClassifier(table, log.Logger), nil
}

// runPasses handles the convert, restore and run commands.
func runPasses(cmd *cobra.Command, convert, restore bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	p, store, err := initPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	if convert {
		sum, err := p.Convert(ctx)
		printSummary(cmd, sum)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
	}
	if restore {
		sum, err := p.Restore(ctx)
		printSummary(cmd, sum)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	return nil
}

// printSummary prints sum unless the pass never started.
func printSummary(cmd *cobra.Command, sum pipeline.Summary) {
	if sum.Pass != "" {
		sum.Print(cmd.OutOrStdout())
	}
}

// initPipeline creates all shared dependencies. The translation memory is
// only opened when DATABASE_URL is set.
func initPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, memory.Store, error) {
	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	detector, err := charset.New(cfg.FallbackEncodings, cfg.EncodingConfidence)
	if err != nil {
		return nil, nil, err
	}

	var store memory.Store
	if cfg.DatabaseURL != "" {
		pg, err := memory.Connect(ctx, cfg.DatabaseURL, cfg.BatchSize, log.Logger)
		if err != nil {
			return nil, nil, err
		}
		store = pg
	}

	p := pipeline.New(cfg, classifier, parser.New(log.Logger), detector, store, log.Logger)
	return p, store, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
