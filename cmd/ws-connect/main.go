// Package main implements the WebSocket $connect route Lambda: authenticates
// the caller and records the connection, generalizing the teacher's
// cmd/ws-connect (which mock-validated a token and stored a user-scoped
// connection item) to this module's JWT authenticator and document-scoped
// connection store.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	appconfig "github.com/carta-systems/carta-core/infrastructure/config"
	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
	"github.com/carta-systems/carta-core/interfaces/websocket"
	"github.com/carta-systems/carta-core/pkg/auth"
)

var (
	connStore     *dynamostore.ConnectionStore
	authenticator *auth.JWTAuthenticator
	logger        *zap.Logger
)

func init() {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	client := dynamodb.NewFromConfig(awsCfg)
	connStore = dynamostore.NewConnectionStore(client, cfg.ConnectionsTable, "", logger)
	authenticator = auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, 0)
}

func handler(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	_, err := websocket.Connect(ctx, authenticator, connStore, websocket.ConnectRequestFromEvent(req), logger)
	if err != nil {
		logger.Warn("websocket connect rejected", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized, Body: `{"error":"unauthorized"}`}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: `{"message":"connected"}`}, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}
	log.Println("cmd/ws-connect is a Lambda entrypoint; invoke it behind API Gateway's WebSocket $connect route")
}
