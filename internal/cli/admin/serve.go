// Package admin implements the snowbotd server commands.
package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/snowbot/internal/api/handlers"
	"github.com/cloo-solutions/snowbot/internal/bot"
	"github.com/cloo-solutions/snowbot/internal/config"
	"github.com/cloo-solutions/snowbot/internal/domain"
	"github.com/cloo-solutions/snowbot/internal/index"
	"github.com/cloo-solutions/snowbot/internal/jobs"
	"github.com/cloo-solutions/snowbot/internal/openai"
	"github.com/cloo-solutions/snowbot/internal/server"
	"github.com/cloo-solutions/snowbot/internal/servicenow"
	"github.com/cloo-solutions/snowbot/internal/snapshot"
	"github.com/cloo-solutions/snowbot/internal/storage"
	"github.com/cloo-solutions/snowbot/internal/telemetry"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Fetch the incident snapshot, build the index, and serve the question API",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("offline", false, "Skip the ServiceNow export and index the existing snapshot file")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	snowClient := servicenow.NewClient(servicenow.Config{
		Instance:     cfg.SnowInstance,
		ClientID:     cfg.SnowClientID,
		ClientSecret: cfg.SnowClientSecret,
		Username:     cfg.SnowUsername,
		Password:     cfg.SnowPassword,
		BaseURL:      cfg.SnowBaseURL,
	})

	embeddingClient := openai.NewEmbeddingClient(openai.EmbeddingConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  openaiapi.EmbeddingModel(cfg.EmbeddingModel),
	})

	completionClient, err := openai.NewCompletionClient(openai.CompletionConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.CompletionModel,
		Generation: openai.GenerationConfig{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	indexer := index.NewIndexer(embeddingClient)
	retriever := index.NewRetriever(cfg.RetrieveK)
	pipeline := bot.NewPipeline(embeddingClient, retriever, completionClient)

	offline, _ := cmd.Flags().GetBool("offline")

	records, err := loadRecords(ctx, cfg, snowClient, store, offline)
	if err != nil {
		return err
	}

	idx, err := indexer.Build(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	pipeline.InstallIndex(idx)
	log.Printf("serving %d indexed incidents", idx.Len())

	refresher := jobs.NewRefresher(snowClient, store, indexer, pipeline)

	var refreshWorker *jobs.Worker
	if cfg.HasRefresh() {
		refreshWorker = jobs.NewWorker(refresher, cfg.RefreshInterval)
		go refreshWorker.Start(ctx)
		log.Printf("refresh worker started (interval %v)", cfg.RefreshInterval)
	}

	routerCfg := server.RouterConfig{
		AskHandler: handlers.NewAskHandler(pipeline),
	}
	if cfg.HasAdmin() {
		routerCfg.AdminHandler = handlers.NewAdminHandler(refresher)
		routerCfg.AdminToken = cfg.AdminToken
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildStore creates the snapshot store, with an S3 archiver when configured.
func buildStore(ctx context.Context, cfg *config.Config) (*snapshot.Store, error) {
	if !cfg.HasS3() {
		return snapshot.NewStore(cfg.SnapshotPath), nil
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	return snapshot.NewStoreWithArchiver(cfg.SnapshotPath, s3Client), nil
}

func loadRecords(ctx context.Context, cfg *config.Config, snowClient *servicenow.Client, store *snapshot.Store, offline bool) ([]domain.IncidentRecord, error) {
	if offline {
		records, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot %s: %w", cfg.SnapshotPath, err)
		}
		log.Printf("loaded %d incidents from %s", len(records), store.Path())
		return records, nil
	}

	records, err := snowClient.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export incidents: %w", err)
	}
	log.Printf("exported %d incidents from ServiceNow", len(records))

	if err := store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	log.Printf("snapshot written to %s", store.Path())

	return records, nil
}
