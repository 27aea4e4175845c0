// Package di wires the document core's concrete infrastructure into a
// single Container, following the teacher's provider-function-plus-
// google/wire posture (infrastructure/di/providers.go there builds the same
// kind of AWS client/repository/bus graph for its CQRS command/query
// handlers). This module has no command/query bus: application/adapter.Adapter
// is itself the single mutation surface, so the providers below wire it,
// application/layoutactions.Actions and interfaces/http.Router directly
// instead of a bus.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/layoutactions"
	"github.com/carta-systems/carta-core/application/migrations"
	"github.com/carta-systems/carta-core/application/serialization"
	"github.com/carta-systems/carta-core/domain/core/aggregates"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/infrastructure/eventbus"
	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
	httpinterface "github.com/carta-systems/carta-core/interfaces/http"
	httpmiddleware "github.com/carta-systems/carta-core/interfaces/http/middleware"
	"github.com/carta-systems/carta-core/interfaces/websocket"
	"github.com/carta-systems/carta-core/pkg/auth"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
	"github.com/carta-systems/carta-core/pkg/observability"
)

// ProvideLogger creates a new logger instance, matching the teacher's
// production/development split.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates the shared AWS SDK config.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client.
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client. Returns nil when
// metrics are disabled so downstream providers can skip construction
// entirely rather than wiring a client nobody calls.
func ProvideCloudWatchClient(awsCfg aws.Config, cfg *config.Config) *awscloudwatch.Client {
	if !cfg.EnableMetrics {
		return nil
	}
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideInMemoryCache creates the read-through cache SnapshotStore
// consults before hitting DynamoDB.
func ProvideInMemoryCache() *InMemoryCache {
	return NewInMemoryCache()
}

// ProvideSnapshotStore creates the document persistence layer.
func ProvideSnapshotStore(client *awsdynamodb.Client, cache *InMemoryCache, cfg *config.Config, logger *zap.Logger) *dynamostore.SnapshotStore {
	return dynamostore.NewSnapshotStore(client, cfg.DocumentTable, cache, logger)
}

// ProvideConnectionStore creates the WebSocket connection registry.
func ProvideConnectionStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamostore.ConnectionStore {
	return dynamostore.NewConnectionStore(client, cfg.ConnectionsTable, "", logger)
}

// ProvideEventPublisher creates the domain event sink backing
// application/adapter.WithEventPublisher.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) *eventbus.Publisher {
	return eventbus.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideBroadcaster creates the websocket fan-out cmd/ws-broadcast uses;
// cmd/api and cmd/lambda never call it directly (EventBridge does, async).
func ProvideBroadcaster(store *dynamostore.ConnectionStore, logger *zap.Logger) *websocket.Broadcaster {
	return websocket.NewBroadcaster(store, logger)
}

// ProvideTracer creates the X-Ray tracer, or nil when tracing is disabled.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(fmt.Sprintf("carta-documentcore-%s", cfg.Environment))
}

// ProvideMetrics creates the CloudWatch metrics sink, or nil when metrics
// are disabled (application/adapter.WithMetrics and
// application/layoutactions.Actions.WithMetrics both treat a nil *Metrics
// as a no-op).
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if client == nil {
		return nil
	}
	return observability.NewMetrics(fmt.Sprintf("CartaDocumentCore/%s", cfg.Environment), client)
}

// ProvideAuthenticator creates the JWT authenticator front door handlers and
// cmd/ws-connect validate bearer tokens against.
func ProvideAuthenticator(cfg *config.Config) *auth.JWTAuthenticator {
	return auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
}

// ProvideDistributedUserRateLimiter and ProvideDistributedAIMCPRateLimiter
// create the cross-instance rate limiters a Lambda deployment needs
// (per-instance in-memory limiters don't share state across concurrent
// invocations). cmd/cartadoc's single long-running process uses the
// in-process pkg/auth.UserRateLimiter/AIMCPRateLimiter instead.
func ProvideDistributedUserRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedUserRateLimiter(client, cfg.DocumentTable, 200)
}

func ProvideDistributedAIMCPRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedAIMCPRateLimiter(client, cfg.DocumentTable, cfg.AIMCPRateLimitPerMinute)
}

// LoadOrCreateDocument resumes documentID's stored snapshot as stored (it
// does not run migrations; ProvideAdapter does), or starts a fresh document
// if none is stored yet (store.Load reports ErrorTypeUnknownID, §6's "new
// document" path).
func LoadOrCreateDocument(ctx context.Context, store *dynamostore.SnapshotStore, documentID valueobjects.DocumentID, title string) (*aggregates.Document, int64, error) {
	body, version, err := store.Load(ctx, documentID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeUnknownID {
			return aggregates.NewDocument(title), 0, nil
		}
		return nil, 0, err
	}
	doc, err := serialization.FromJSON(body)
	if err != nil {
		return nil, 0, fmt.Errorf("parse stored snapshot for %s: %w", documentID.String(), err)
	}
	return doc, version, nil
}

// ProvideAdapter builds the single-document adapter a Container serves,
// loading documentID's snapshot (or starting a fresh document) and running
// any pending migrations before handing it to callers.
func ProvideAdapter(ctx context.Context, documentID valueobjects.DocumentID, store *dynamostore.SnapshotStore, publisher *eventbus.Publisher, tracer *observability.Tracer, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) (*adapter.Adapter, error) {
	doc, _, err := LoadOrCreateDocument(ctx, store, documentID, cfg.DefaultPageName)
	if err != nil {
		return nil, err
	}
	if len(doc.Pages) == 0 {
		doc.CreatePage(cfg.DefaultPageName)
	}

	a := adapter.New(doc, documentID.String(), logger,
		adapter.WithConfig(cfg),
		adapter.WithEventPublisher(publisher),
		adapter.WithTracer(tracer),
		adapter.WithMetrics(metrics),
		adapter.WithDocumentID(documentID),
	)

	if err := migrations.Run(a); err != nil {
		return nil, fmt.Errorf("migrate document %s: %w", documentID.String(), err)
	}
	return a, nil
}

// ProvideLayoutActions builds the layout façade over a's document.
func ProvideLayoutActions(a *adapter.Adapter, cfg *config.Config) *layoutactions.Actions {
	return layoutactions.NewWithConfig(a, cfg)
}

// ProvideRouter builds the HTTP front door. authenticator is nil for
// cmd/cartadoc's local-only deployment, which serves every route
// unauthenticated. userLimiter and aimcpLimiter share one DynamoDB table,
// distinguished by key prefix
// (auth.NewDistributedUserRateLimiter/NewDistributedAIMCPRateLimiter) —
// InitializeContainer wires both from ProvideDistributedUserRateLimiter and
// ProvideDistributedAIMCPRateLimiter so limits hold across concurrent cold
// starts.
func ProvideRouter(a *adapter.Adapter, actions *layoutactions.Actions, authenticator *auth.JWTAuthenticator, userLimiter, aimcpLimiter httpmiddleware.RateLimiter, cfg *config.Config, logger *zap.Logger) *httpinterface.Router {
	return httpinterface.NewRouter(a, actions, authenticator, userLimiter, aimcpLimiter, cfg, logger)
}
