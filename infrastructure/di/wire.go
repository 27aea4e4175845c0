//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/application/adapter"
	"github.com/carta-systems/carta-core/application/layoutactions"
	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	"github.com/carta-systems/carta-core/infrastructure/config"
	"github.com/carta-systems/carta-core/infrastructure/eventbus"
	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
	httpinterface "github.com/carta-systems/carta-core/interfaces/http"
	"github.com/carta-systems/carta-core/interfaces/websocket"
	"github.com/carta-systems/carta-core/pkg/auth"
	"github.com/carta-systems/carta-core/pkg/observability"
)

// Container holds every wired dependency a cmd/ entrypoint needs, scoped to
// one open document (§2's single-document-per-session model: a deployment
// serving many documents runs one container — one Lambda invocation context
// or one cartadoc process — per document).
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Adapter         *adapter.Adapter
	Actions         *layoutactions.Actions
	Authenticator   *auth.JWTAuthenticator
	UserLimiter     *auth.DistributedRateLimiter
	AIMCPLimiter    *auth.DistributedRateLimiter
	SnapshotStore   *dynamostore.SnapshotStore
	ConnectionStore *dynamostore.ConnectionStore
	Broadcaster     *websocket.Broadcaster
	EventPublisher  *eventbus.Publisher
	Tracer          *observability.Tracer
	Metrics         *observability.Metrics
	Router          *httpinterface.Router
}

// SuperSet is the provider set google/wire compiles InitializeContainer
// from.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideInMemoryCache,
	ProvideSnapshotStore,
	ProvideConnectionStore,
	ProvideEventPublisher,
	ProvideBroadcaster,
	ProvideTracer,
	ProvideMetrics,
	ProvideAuthenticator,
	ProvideDistributedUserRateLimiter,
	ProvideDistributedAIMCPRateLimiter,
	ProvideAdapter,
	ProvideLayoutActions,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container serving documentID.
func InitializeContainer(ctx context.Context, cfg *config.Config, documentID valueobjects.DocumentID) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // wire replaces this body at generation time
}
