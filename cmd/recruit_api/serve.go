package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/blobstore"
	"github.com/jonathan/faculty-recruitment/internal/config"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/server"
	"github.com/jonathan/faculty-recruitment/internal/server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job, application, review and payment webhook endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file; environment variables take precedence")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	shutdown := []func(){database.Close}

	blobs, files, err := openBlobStore(cfg)
	if err != nil {
		database.Close()
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	sinks := []audit.Sink{audit.NewSlogSink(logger)}
	if cfg.AuditSQLitePath != "" {
		sqliteSink, err := audit.OpenSQLite(ctx, cfg.AuditSQLitePath)
		if err != nil {
			database.Close()
			return err
		}
		sinks = append(sinks, sqliteSink)
		shutdown = append(shutdown, func() {
			if err := sqliteSink.Close(); err != nil {
				log.Printf("[audit] failed to close sqlite sink: %v", err)
			}
		})
	}

	var limiterBackend ratelimit.Backend
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			database.Close()
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		limiterBackend = ratelimit.NewRedisBackend(client, "recruit:ratelimit:")
		shutdown = append(shutdown, func() {
			if err := client.Close(); err != nil {
				log.Printf("[redis] failed to close client: %v", err)
			}
		})
	}

	// drain buffered audit events before the sinks close
	auditQueue := audit.NewQueue(audit.NewEmitter(logger, sinks...), audit.DefaultQueueSize)
	shutdown = append([]func(){auditQueue.Close}, shutdown...)

	svc := recruitment.NewService(database, blobs,
		recruitment.WithAuditor(auditQueue),
		recruitment.WithMaxFileSize(cfg.MaxUploadBytes()),
	)

	srv, err := server.New(server.Config{
		Port:             cfg.Port,
		Service:          svc,
		JWT:              jwtConfig,
		RateLimitBackend: limiterBackend,
		Files:            files,
		Health:           database,
		WebhookSecret:    cfg.PaymentWebhookSecret,
		OnShutdown:       shutdown,
	})
	if err != nil {
		for _, fn := range shutdown {
			fn()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// openBlobStore builds the configured backend. Only the local backend is
// served back through /files; Supabase objects are fetched from their
// public URL.
func openBlobStore(cfg *config.Config) (blobstore.Store, server.FileOpener, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendSupabase:
		store, err := blobstore.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store, err := blobstore.NewLocal(cfg.BlobLocalDir, cfg.BlobPublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
}
