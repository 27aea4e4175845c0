package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
)

// Connection is one live API Gateway WebSocket connection, scoped to the
// document it was opened against (§2's single-document-per-session model;
// the teacher's equivalent item scopes by user instead since its graphs are
// multi-tenant within one connection pool).
type Connection struct {
	ConnectionID string
	DocumentID   string
	Endpoint     string
	ConnectedAt  time.Time
	TTL          int64
}

// connectionTTL bounds how long an orphaned connection record survives if
// its disconnect notification is ever lost, mirroring the teacher's
// cmd/ws-connect 24h window.
const connectionTTL = 24 * time.Hour

// ConnectionStore implements a single-table PK=CONN#<id>/SK=METADATA item
// shape, with GSI1PK=DOC#<documentId> for the per-document fan-out query a
// broadcaster needs, generalizing cmd/ws-connect's storeConnection.
type ConnectionStore struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

func NewConnectionStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *ConnectionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if indexName == "" {
		indexName = "connection-id-index"
	}
	return &ConnectionStore{client: client, tableName: tableName, indexName: indexName, logger: logger}
}

// Put records a newly-established connection.
func (s *ConnectionStore) Put(ctx context.Context, conn Connection) error {
	conn.TTL = time.Now().Add(connectionTTL).Unix()

	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", conn.ConnectionID)},
		"SK":           &types.AttributeValueMemberS{Value: "METADATA"},
		"ConnectionID": &types.AttributeValueMemberS{Value: conn.ConnectionID},
		"GSI1PK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", conn.DocumentID)},
		"GSI1SK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", conn.ConnectionID)},
		"Endpoint":     &types.AttributeValueMemberS{Value: conn.Endpoint},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: conn.ConnectedAt.Format(time.RFC3339)},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", conn.TTL)},
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put connection %s: %w", conn.ConnectionID, err)
	}
	s.logger.Debug("stored websocket connection", zap.String("connectionId", conn.ConnectionID), zap.String("documentId", conn.DocumentID))
	return nil
}

// Delete removes a connection record, called on disconnect or once a
// broadcast discovers the connection is gone (apigatewaymanagementapi
// GoneException).
func (s *ConnectionStore) Delete(ctx context.Context, connectionID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("delete connection %s: %w", connectionID, err)
	}
	return nil
}

// ListByDocument returns every live connection subscribed to a document, for
// a broadcaster fanning an update out to every open canvas.
func (s *ConnectionStore) ListByDocument(ctx context.Context, documentID valueobjects.DocumentID) ([]Connection, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(s.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :docpk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":docpk": &types.AttributeValueMemberS{Value: fmt.Sprintf("DOC#%s", documentID.String())},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query connections for document %s: %w", documentID.String(), err)
	}

	conns := make([]Connection, 0, len(out.Items))
	for _, item := range out.Items {
		conn := Connection{DocumentID: documentID.String()}
		if v, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			conn.ConnectionID = v.Value
		}
		if v, ok := item["Endpoint"].(*types.AttributeValueMemberS); ok {
			conn.Endpoint = v.Value
		}
		conns = append(conns, conn)
	}
	return conns, nil
}
