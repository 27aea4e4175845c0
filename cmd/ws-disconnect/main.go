// Package main implements the WebSocket $disconnect route Lambda.
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
)

var (
	connStore *dynamostore.ConnectionStore
	logger    *zap.Logger
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
}

func handler(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := websocket.Disconnect(ctx, connStore, req.RequestContext.ConnectionID, logger); err != nil {
		logger.Error("websocket disconnect cleanup failed", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: `{"error":"internal server error"}`}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: `{"message":"disconnected"}`}, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}
	log.Println("cmd/ws-disconnect is a Lambda entrypoint; invoke it behind API Gateway's WebSocket $disconnect route")
}
