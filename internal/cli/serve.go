package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"geoquiz-pipeline/internal/config"
	transport "geoquiz-pipeline/internal/transport/http"
)

// NewServeCmd starts the admin server with the audit stream endpoint.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit stream and health endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	env, err := newEnvironment(ctx, configPath)
	if err != nil {
		return err
	}
	defer env.close()

	if env.cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, env.cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = env.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	auditInterval := config.TTLDuration(env.cfg.Server.AuditInterval, time.Minute)
	auditHandler := transport.NewAuditStreamHandler(env.auditService(), auditInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/audit", auditHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the audit stream holds its connection open.
	}

	go func() {
		env.log.Info("starting audit server", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			env.log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		env.log.Info("shutting down server")
	case <-ctx.Done():
		env.log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
