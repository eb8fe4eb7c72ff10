package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

const collectionAuthEvents = "auth_events"

// AuditRepository implements ports.AuditRepository.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

// InsertEvent appends an event to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"_id":         event.ID,
		"type":        string(event.Type),
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Username != "" {
		doc["username"] = event.Username
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}
	if event.Method != "" {
		doc["method"] = event.Method
		doc["path"] = event.Path
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((90 * 24 * time.Hour).Seconds())),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
