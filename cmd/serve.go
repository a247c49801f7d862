package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Gabee01/pii-detector-sub000/config"
	"github.com/Gabee01/pii-detector-sub000/internal/api"
	"github.com/Gabee01/pii-detector-sub000/internal/detect"
	"github.com/Gabee01/pii-detector-sub000/internal/dispatch"
	"github.com/Gabee01/pii-detector-sub000/internal/extract"
	"github.com/Gabee01/pii-detector-sub000/internal/notion"
	"github.com/Gabee01/pii-detector-sub000/internal/processor"
	"github.com/Gabee01/pii-detector-sub000/internal/remediate"
	"github.com/Gabee01/pii-detector-sub000/internal/slack"
)

// serveCmd is the cobra command that starts the webhook server and worker pool
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the webhook server and processing workers",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command and its flags on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().String("config", "./config/.config.yaml", "config file location")
}

// serve initializes dependencies and starts the service
func serve(ctx context.Context) error {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.Server.Debug = k.Bool("debug")
	cfg.Server.Pretty = k.Bool("pretty")

	notionClient, err := setupNotion(cfg)
	if err != nil {
		return fmt.Errorf("setting up workspace client: %w", err)
	}

	detector, err := setupDetector(cfg)
	if err != nil {
		return fmt.Errorf("setting up detector: %w", err)
	}

	executor, err := setupRemediation(cfg, notionClient)
	if err != nil {
		return fmt.Errorf("setting up remediation: %w", err)
	}

	proc, err := processor.New(notionClient, detector, executor,
		[]extract.ResolverOption{
			extract.WithMaxDepth(cfg.Extract.MaxDepth),
			extract.WithMaxBlocks(cfg.Extract.MaxBlocks),
		},
		processor.WithFileToken(cfg.Notion.Token),
		processor.WithMaxPageDepth(cfg.Extract.MaxPageDepth),
	)
	if err != nil {
		return fmt.Errorf("setting up processor: %w", err)
	}

	dispatcher, err := dispatch.New(
		func(ctx context.Context, job dispatch.Job) error {
			return proc.ProcessPage(ctx, job.PageID, job.AuthorID)
		},
		dispatch.WithWorkers(cfg.Dispatch.Workers),
		dispatch.WithQueueSize(cfg.Dispatch.QueueSize),
		dispatch.WithDedupWindow(cfg.Dispatch.DedupWindow),
	)
	if err != nil {
		return fmt.Errorf("setting up dispatcher: %w", err)
	}

	dispatcher.Start(ctx)

	handler := api.NewRouter(dispatcher, cfg.Server.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGracePeriod)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("listen", cfg.Server.Listen).Msg("starting pii-detector service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	dispatcher.Wait()

	return nil
}

// setupNotion initializes the workspace API client from config
func setupNotion(cfg *config.Config) (*notion.Client, error) {
	opts := []notion.Option{
		notion.WithHTTPClient(&http.Client{Timeout: cfg.Notion.RequestTimeout}),
		notion.WithMaxRetries(cfg.Notion.MaxRetries),
	}

	if cfg.Notion.BaseURL != "" {
		opts = append(opts, notion.WithBaseURL(cfg.Notion.BaseURL))
	}

	return notion.New(cfg.Notion.Token, opts...)
}

// setupDetector initializes the AI detection client from config
func setupDetector(cfg *config.Config) (*detect.Client, error) {
	opts := []detect.Option{
		detect.WithHTTPClient(&http.Client{Timeout: cfg.Detector.RequestTimeout}),
	}

	if cfg.Detector.BaseURL != "" {
		opts = append(opts, detect.WithBaseURL(cfg.Detector.BaseURL))
	}

	return detect.New(cfg.Detector.AccountID, cfg.Detector.APIToken, opts...)
}

// setupRemediation initializes the remediation executor; Slack notification
// is skipped when unconfigured
func setupRemediation(cfg *config.Config, notionClient *notion.Client) (*remediate.Executor, error) {
	var messenger remediate.Messenger

	if cfg.Slack.BotToken == "" {
		log.Info().Msg("slack notifications not configured, skipping")
	} else {
		slackClient, err := slack.New(
			cfg.Slack.BotToken,
			slack.WithHTTPClient(&http.Client{Timeout: cfg.Slack.RequestTimeout}),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize slack client")
		} else {
			log.Info().Msg("slack notifications configured")
			messenger = slackClient
		}
	}

	return remediate.NewExecutor(notionClient, notionClient, messenger)
}
