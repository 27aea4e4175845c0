// Command api runs the document core as a standalone HTTP server, serving
// exactly one document for the lifetime of the process. Generalizes the
// teacher's cmd/api/main.go (which built a CommandBus/QueryBus-backed router
// over a multi-tenant container) to this module's single-adapter
// architecture: di.InitializeContainer already resolves the adapter,
// layout actions and router for the requested document, so main only owns
// the HTTP server's lifecycle.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/infrastructure/di"
)

// resolveDocumentID reads DOCUMENT_ID from the environment, minting a fresh
// one if unset (a brand new document, same as LoadOrCreateDocument's
// ErrorTypeUnknownID path).
func resolveDocumentID() (valueobjects.DocumentID, error) {
	raw := os.Getenv("DOCUMENT_ID")
	if raw == "" {
		return valueobjects.NewDocumentID(), nil
	}
	return valueobjects.DocumentIDFromString(raw)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	documentID, err := resolveDocumentID()
	if err != nil {
		log.Fatalf("invalid DOCUMENT_ID: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg, documentID)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      container.Router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("document_id", documentID.String()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("failed to sync logger: %v", err)
	}

	log.Println("server stopped")
}
