// Package websocket implements the API Gateway WebSocket management surface
// (§7's live collaboration transport): connect/disconnect bookkeeping in
// DynamoDB and a broadcaster that pushes document changes out over
// apigatewaymanagementapi, generalizing the teacher's cmd/ws-connect and
// cmd/ws-send-message Lambdas (there is no in-process websocket.Hub here —
// API Gateway owns the socket, these handlers only manage the side-table of
// who is listening).
package websocket

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
	"github.com/carta-systems/carta-core/pkg/auth"
)

// ConnectRequest is the subset of an API Gateway $connect proxy request this
// package needs, kept narrow so callers don't have to construct a full
// events.APIGatewayWebsocketProxyRequest in tests.
type ConnectRequest struct {
	ConnectionID string
	DomainName   string
	Stage        string
	Token        string
	DocumentID   string
}

// ConnectRequestFromEvent extracts a ConnectRequest from the raw Lambda
// event, reading the bearer token from the "token" query parameter (API
// Gateway WebSocket routes can't forward a header at connect time) and the
// target document from "documentId".
func ConnectRequestFromEvent(req events.APIGatewayWebsocketProxyRequest) ConnectRequest {
	return ConnectRequest{
		ConnectionID: req.RequestContext.ConnectionID,
		DomainName:   req.RequestContext.DomainName,
		Stage:        req.RequestContext.Stage,
		Token:        req.QueryStringParameters["token"],
		DocumentID:   req.QueryStringParameters["documentId"],
	}
}

// Connect authenticates the connecting caller and records the connection,
// scoped to the document it opened against. Mirrors cmd/ws-connect's
// validateToken + storeConnection pair.
func Connect(ctx context.Context, authenticator *auth.JWTAuthenticator, store *dynamostore.ConnectionStore, req ConnectRequest, logger *zap.Logger) (*auth.Claims, error) {
	claims, err := authenticator.ValidateToken(req.Token)
	if err != nil {
		return nil, fmt.Errorf("connect auth: %w", err)
	}
	documentID := req.DocumentID
	if documentID == "" {
		documentID = claims.DocumentID
	}

	conn := dynamostore.Connection{
		ConnectionID: req.ConnectionID,
		DocumentID:   documentID,
		Endpoint:     fmt.Sprintf("%s/%s", req.DomainName, req.Stage),
		ConnectedAt:  time.Now(),
	}
	if err := store.Put(ctx, conn); err != nil {
		return nil, err
	}
	logger.Info("websocket connected", zap.String("connectionId", req.ConnectionID), zap.String("documentId", documentID), zap.String("subject", claims.Subject))
	return claims, nil
}

// Disconnect removes the connection record on $disconnect.
func Disconnect(ctx context.Context, store *dynamostore.ConnectionStore, connectionID string, logger *zap.Logger) error {
	if err := store.Delete(ctx, connectionID); err != nil {
		return err
	}
	logger.Info("websocket disconnected", zap.String("connectionId", connectionID))
	return nil
}
