// Package main implements the EventBridge-triggered broadcast Lambda: one
// rule matches every "carta.documentcore" event and invokes this handler,
// which relays it to every WebSocket connection open on the affected
// document. Generalizes the teacher's cmd/ws-send-message (which matched on
// CloudWatchEvent.Detail and fanned out over a looser user/broadcast
// targeting scheme) to this module's single-document-per-session model,
// where the fan-out key is always the event's aggregate id.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	appconfig "github.com/carta-systems/carta-core/infrastructure/config"
	dynamostore "github.com/carta-systems/carta-core/infrastructure/persistence/dynamodb"
	"github.com/carta-systems/carta-core/interfaces/websocket"
)

var (
	broadcaster *websocket.Broadcaster
	logger      *zap.Logger
)

func init() {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	client := dynamodb.NewFromConfig(awsCfg)
	connStore := dynamostore.NewConnectionStore(client, cfg.ConnectionsTable, "", logger)
	broadcaster = websocket.NewBroadcaster(connStore, logger)
}

// baseEventFields mirrors domain/events.BaseEvent's json shape, just enough
// to route the broadcast without depending on the concrete event type.
type baseEventFields struct {
	AggregateID string `json:"aggregateId"`
	EventType   string `json:"eventType"`
}

func handler(ctx context.Context, event events.CloudWatchEvent) error {
	var fields baseEventFields
	if err := json.Unmarshal(event.Detail, &fields); err != nil {
		return fmt.Errorf("unmarshal event detail: %w", err)
	}
	if fields.AggregateID == "" {
		return fmt.Errorf("event detail missing aggregateId")
	}

	documentID, err := valueobjects.DocumentIDFromString(fields.AggregateID)
	if err != nil {
		return fmt.Errorf("invalid aggregateId %q: %w", fields.AggregateID, err)
	}

	eventType := fields.EventType
	if eventType == "" {
		eventType = event.DetailType
	}

	return broadcaster.BroadcastEvent(ctx, documentID, eventType, event.Detail)
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}
	log.Println("cmd/ws-broadcast is a Lambda entrypoint; invoke it behind an EventBridge rule matching source carta.documentcore")
}
