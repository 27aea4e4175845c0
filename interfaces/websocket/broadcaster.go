package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
)

// outboundMessage is the wire shape pushed to every connected client,
// mirroring cmd/ws-send-message's WebSocketMessage envelope.
type outboundMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Broadcaster pushes a domain event out to every connection subscribed to
// the affected document, via one apigatewaymanagementapi client per distinct
// endpoint (an API Gateway stage can be re-deployed with a new endpoint);
// each endpoint's client is created once and cached for later broadcasts.
// Grounded on
// cmd/ws-send-message's endpoint-grouped PostToConnection loop.
type Broadcaster struct {
	store  *dynamostore.ConnectionStore
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*apigatewaymanagementapi.Client
}

func NewBroadcaster(store *dynamostore.ConnectionStore, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{store: store, logger: logger, clients: make(map[string]*apigatewaymanagementapi.Client)}
}

func (b *Broadcaster) clientFor(ctx context.Context, endpoint string) (*apigatewaymanagementapi.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clients[endpoint]; ok {
		return c, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	c := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String("https://" + endpoint)
	})
	b.clients[endpoint] = c
	return c, nil
}

// BroadcastEvent fans a domain event out to every connection subscribed to
// documentID. eventType and detail are taken directly from the EventBridge
// entry application/adapter's publisher put on the bus (detail is the raw
// marshaled domain event), so this package never needs to know the concrete
// event type to relay it. Connections API Gateway reports gone
// (apigwTypes.GoneException) are pruned from the connections table rather
// than treated as a broadcast failure.
func (b *Broadcaster) BroadcastEvent(ctx context.Context, documentID valueobjects.DocumentID, eventType string, detail json.RawMessage) error {
	conns, err := b.store.ListByDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		return nil
	}

	payload, err := json.Marshal(outboundMessage{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      detail,
	})
	if err != nil {
		return fmt.Errorf("marshal broadcast payload: %w", err)
	}

	var sent, failed int
	for _, conn := range conns {
		client, err := b.clientFor(ctx, conn.Endpoint)
		if err != nil {
			failed++
			b.logger.Error("broadcast client setup failed", zap.String("endpoint", conn.Endpoint), zap.Error(err))
			continue
		}
		_, err = client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(conn.ConnectionID),
			Data:         payload,
		})
		if err != nil {
			var gone *apigwTypes.GoneException
			if errors.As(err, &gone) {
				_ = b.store.Delete(ctx, conn.ConnectionID)
				continue
			}
			failed++
			b.logger.Error("broadcast send failed", zap.String("connectionId", conn.ConnectionID), zap.Error(err))
			continue
		}
		sent++
	}

	if failed > 0 && sent == 0 {
		return fmt.Errorf("broadcast %s to document %s: all %d sends failed", eventType, documentID.String(), failed)
	}
	return nil
}
