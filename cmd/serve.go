package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/documents"
	"github.com/spigell/skillbridge-assistant/internal/events"
	"github.com/spigell/skillbridge-assistant/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API and the job catalogue over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, logger := bootstrap(ctx, "")
	defer a.Close()
	defer logger.Sync()

	logger.Info("starting the skillbridge server", zap.String("version", version))

	go a.chat.Sessions().Run(ctx, a.config.Sessions.TTL/2)

	if a.config.Documents.Watch {
		watcher, err := documents.NewWatcher(a.config.Documents.Dir, a.docs, logger.With(zap.String("component", "watcher")))
		if err != nil {
			logger.Warn("document watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	if a.nats != nil {
		sub, err := events.Subscribe(a.nats, a.config.Events.Subject, logger, events.LogHandler(logger))
		if err != nil {
			logger.Warn("job event listener disabled", zap.Error(err))
		} else {
			defer sub.Unsubscribe()
		}
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Chat:       a.chat,
		Jobs:       a.jobs,
		Gatherer:   a.registry,
		Logger:     logger.With(zap.String("component", "http")),
		RateLimit:  a.config.Server.RateLimit,
		RateBurst:  a.config.Server.RateBurst,
		TrustProxy: a.config.Server.TrustProxy,
	})
	server := httpapi.NewServer(a.config.Server.Addr, handler, a.config.Server.ReadTimeout)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return
	}

	logger.Info("server stopped gracefully")
}
