// Package main implements the labeler CLI for labeling sentences from a local
// queue or from the labeling service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"labeling-service/internal/apiclient"
	"labeling-service/internal/config"
	"labeling-service/internal/kvstore"
	"labeling-service/internal/queue"
	"labeling-service/internal/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configPath points at the labeler YAML config
	configPath string
	// sourceFlag overrides the configured work source
	sourceFlag string
	// forwardFlag overrides the configured forward setting
	forwardFlag bool

	// logger is shared by every command; tests replace it.
	logger *zap.Logger

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "labeler",
	Short: "Label sentences for the hate speech dataset",
	Long: `labeler classifies short sentences into normal, hate_speech, offensive,
religious_hate and political_hate.

Sentences come either from a local queue (source "local") or from the
labeling service (source "remote"). Labeled sentences are kept in a local
ledger and can be exported as labeled_sentences.csv.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/labeler.yml", "labeler config file")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "work source: local or remote (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&forwardFlag, "forward", false, "send local labels to the labeling service too")
}

// app holds everything a command needs. Close must be called when done.
type app struct {
	cfg      *config.LabelerConfig
	logger   *zap.Logger
	kv       kvstore.Store
	queue    *queue.Store
	client   *apiclient.Client
	exporter *workflow.Exporter
	source   workflow.Source
	ctrl     *workflow.Controller
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadLabelerConfig(configPath)
	if err != nil {
		return nil, err
	}

	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if cmd.Flags().Changed("forward") {
		cfg.Forward = forwardFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger
	if log == nil {
		log, err = newLogger(cfg.API.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	kv, err := kvstore.Open(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: log,
		kv:     kv,
		queue:  queue.New(kv, log),
		client: apiclient.NewClient(cfg.APIClient(), log),
	}
	a.exporter = workflow.NewExporter(a.queue, cfg.Export.Dir, log)

	if cfg.Source == config.SourceRemote {
		a.source = workflow.NewRemoteSource(a.client)
	} else {
		var forward workflow.Service
		if cfg.Forward {
			forward = a.client
		}
		a.source = workflow.NewLocalSource(a.queue, forward)
	}

	a.ctrl = workflow.NewController(a.source, log,
		workflow.WithExporter(a.exporter),
		workflow.WithAutoExport(cfg.Export.Auto && cfg.Source == config.SourceLocal),
	)

	return a, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) remote() bool {
	return a.cfg.Source == config.SourceRemote
}

// newLogger logs everything in debug mode and only warnings otherwise, so
// command output stays readable.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printAdvance reports what happened after a decision was recorded.
func printAdvance(cmd *cobra.Command, adv workflow.Advance) {
	out := cmd.OutOrStdout()

	if adv.ExportPath != "" {
		fmt.Fprintf(out, "Exported %s\n", adv.ExportPath)
	}
	if adv.ExportErr != nil {
		fmt.Fprintf(out, "Export failed: %v\n", adv.ExportErr)
	}

	switch {
	case adv.Next != "":
		fmt.Fprintf(out, "Next: %s\n", adv.Next)
	case errors.Is(adv.FetchErr, workflow.ErrNoWork):
		fmt.Fprintln(out, "No sentences left to label.")
	case adv.FetchErr != nil:
		fmt.Fprintf(out, "Could not fetch the next sentence: %v\n", adv.FetchErr)
	}
}
