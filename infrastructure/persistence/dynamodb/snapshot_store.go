// Package dynamodb implements application/ports.SnapshotStore over AWS
// DynamoDB, generalizing the teacher's infrastructure/persistence/dynamodb
// GraphRepository (single-table PK/SK item, attributevalue marshal,
// PutItem/Query/DeleteItem, zap logging throughout) from a multi-entity
// graph store to this module's single-blob document snapshot (§6).
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/domain/core/valueobjects"
	apperrors "github.com/carta-systems/carta-core/pkg/errors"
)

// Cache is the narrow read-through cache SnapshotStore optionally consults
// before hitting DynamoDB, satisfied structurally by
// infrastructure/di.InMemoryCache without this package importing di.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
	Delete(ctx context.Context, key string) error
}

// snapshotItem is the single-table item shape: one row per document, keyed
// PK=DOC#<id>/SK=SNAPSHOT, carrying the serialized document body (§6's
// JSON wire format, produced by application/serialization) and a version
// counter for optimistic concurrency.
type snapshotItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Body      []byte `dynamodbav:"Body"`
	Version   int64  `dynamodbav:"Version"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// cacheTTLSeconds bounds how long a loaded snapshot is trusted without a
// re-read; short enough that a stale read only ever costs one extra
// version-mismatch retry on Save, never a lost update.
const cacheTTLSeconds = 30

// SnapshotStore implements application/ports.SnapshotStore.
type SnapshotStore struct {
	client    *dynamodb.Client
	tableName string
	cache     Cache
	logger    *zap.Logger
}

// NewSnapshotStore creates a SnapshotStore. cache may be nil to disable the
// read-through cache entirely.
func NewSnapshotStore(client *dynamodb.Client, tableName string, cache Cache, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{client: client, tableName: tableName, cache: cache, logger: logger}
}

func snapshotKey(id valueobjects.DocumentID) (pk, sk string) {
	return fmt.Sprintf("DOC#%s", id.String()), "SNAPSHOT"
}

// Load retrieves the current snapshot body and version for id.
func (s *SnapshotStore) Load(ctx context.Context, id valueobjects.DocumentID) ([]byte, int64, error) {
	pk, sk := snapshotKey(id)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, pk); ok {
			if item, ok := cached.(snapshotItem); ok {
				return item.Body, item.Version, nil
			}
		}
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return nil, 0, apperrors.NewUnavailableError("dynamodb snapshot load", err)
	}
	if result.Item == nil {
		return nil, 0, apperrors.NewUnknownID("document", id.String())
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to unmarshal snapshot").WithCause(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pk, item, cacheTTLSeconds); err != nil {
			s.logger.Warn("snapshot cache set failed", zap.Error(err))
		}
	}

	return item.Body, item.Version, nil
}

// ErrStaleVersion is returned, wrapped in an *apperrors.AppError of type
// ErrorTypeConflict, when Save's expectedVersion no longer matches the
// stored version.
var ErrStaleVersion = errors.New("snapshot version is stale")

// Save persists snapshot as the new body for id, succeeding only if the
// currently stored version equals expectedVersion (0 meaning "document
// does not exist yet"). On success the new version is expectedVersion+1.
func (s *SnapshotStore) Save(ctx context.Context, id valueobjects.DocumentID, snapshot []byte, expectedVersion int64) (int64, error) {
	pk, sk := snapshotKey(id)
	newVersion := expectedVersion + 1

	item := snapshotItem{
		PK:        pk,
		SK:        sk,
		Body:      snapshot,
		Version:   newVersion,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to marshal snapshot").WithCause(err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if expectedVersion == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(PK)")
	} else {
		input.ConditionExpression = aws.String("Version = :expected")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("document %s: expected version %d is stale", id.String(), expectedVersion)).WithCause(ErrStaleVersion)
		}
		return 0, apperrors.NewUnavailableError("dynamodb snapshot save", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pk, item, cacheTTLSeconds); err != nil {
			s.logger.Warn("snapshot cache set failed", zap.Error(err))
		}
	}

	s.logger.Info("snapshot saved",
		zap.String("documentId", id.String()),
		zap.Int64("version", newVersion),
		zap.Int("bytes", len(snapshot)),
	)

	return newVersion, nil
}
