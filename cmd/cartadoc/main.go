// Command cartadoc runs the document core entirely offline: no DynamoDB, no
// EventBridge, no JWT authentication — a single document backed by a local
// JSON file, served over the same interfaces/http.Router as cmd/api. The
// teacher has no equivalent (it is always cloud-backed); this follows
// infrastructure/di's provider style so the wiring stays recognizable, just
// swapping dynamodb.SnapshotStore for a local file and skipping every
// AWS-only provider.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/layoutactions"
	"github.com/carta-systems/carta-core/application/migrations"
	"github.com/carta-systems/carta-core/application/serialization"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/infrastructure/config"
	httpinterface "github.com/carta-systems/carta-core/interfaces/http"
)

// loadOrCreateLocalDocument reads path's stored snapshot, or starts a fresh
// document when path doesn't exist yet.
func loadOrCreateLocalDocument(path, title string) (*aggregates.Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return aggregates.NewDocument(title), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := serialization.FromJSON(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// saveLocalDocument persists a's current snapshot to path, overwriting it.
func saveLocalDocument(a *adapter.Adapter, path string) error {
	raw, err := serialization.ToJSON(a)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var pretty map[string]interface{}
	if err := json.Unmarshal(raw, &pretty); err == nil {
		if formatted, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			raw = formatted
		}
	}
	return os.WriteFile(path, raw, 0o644)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	docPath := os.Getenv("CARTADOC_FILE")
	if docPath == "" {
		docPath = "document.json"
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	doc, err := loadOrCreateLocalDocument(docPath, cfg.DefaultPageName)
	if err != nil {
		log.Fatalf("failed to load document: %v", err)
	}
	if len(doc.Pages) == 0 {
		doc.CreatePage(cfg.DefaultPageName)
	}

	documentID := valueobjects.NewDocumentID()
	a := adapter.New(doc, documentID.String(), logger,
		adapter.WithConfig(cfg),
		adapter.WithDocumentID(documentID),
	)

	if err := migrations.Run(a); err != nil {
		log.Fatalf("failed to migrate document: %v", err)
	}

	actions := layoutactions.NewWithConfig(a, cfg)

	// cmd/cartadoc has no authenticator or distributed rate limiters: every
	// route runs unauthenticated, matching interfaces/http.NewRouter's
	// documented local-only mode.
	router := httpinterface.NewRouter(a, actions, nil, nil, nil, cfg, logger)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting cartadoc",
			zap.String("address", cfg.ServerAddress),
			zap.String("document_file", docPath),
			zap.String("document_id", documentID.String()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down cartadoc...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	if err := saveLocalDocument(a, docPath); err != nil {
		logger.Error("failed to save document on shutdown", zap.Error(err))
	}

	_ = logger.Sync()
	log.Println("cartadoc stopped")
}
