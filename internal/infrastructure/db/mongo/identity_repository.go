package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

const (
	collectionIdentities = "identities"

	indexUsername = "uniq_username"
	indexEmail    = "uniq_email"
)

// IdentityRepository implements ports.IdentityRepository. Uniqueness of
// username and email is enforced by unique indexes, so Create is atomic with
// respect to concurrent registrations.
type IdentityRepository struct {
	col *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{col: db.Collection(collectionIdentities)}
}

type identityDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Roles        string             `bson:"roles"`
	Enabled      bool               `bson:"enabled"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d identityDocument) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		Enabled:      d.Enabled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc identityDocument
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *IdentityRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *IdentityRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count identities: %w", err)
	}
	return n > 0, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := identityDocument{
		ID:           primitive.NewObjectID(),
		Username:     identity.Username,
		Email:        identity.Email,
		PasswordHash: identity.PasswordHash,
		Roles:        identity.Roles,
		Enabled:      identity.Enabled,
		CreatedAt:    identity.CreatedAt.UTC(),
		UpdatedAt:    identity.UpdatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if dup := duplicateIdentityError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique indexes that back Create's conflict errors.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName(indexUsername).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexEmail).SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateIdentityError maps a duplicate key error to the sentinel of the
// index that rejected it. It returns nil for anything else.
func duplicateIdentityError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}

	msg := err.Error()
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				msg = e.Message
				break
			}
		}
	}

	switch {
	case strings.Contains(msg, indexUsername):
		return domain.ErrDuplicateUsername
	case strings.Contains(msg, indexEmail):
		return domain.ErrDuplicateEmail
	default:
		// Unknown index; the username is the first thing a client is told about.
		return domain.ErrDuplicateUsername
	}
}
