package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
	"github.com/99minutos/catalog-gateway/internal/core/ports"
)

const (
	collectionProducts = "products"
	collectionCounters = "counters"
	productSequence    = "products"
)

// ProductRepository implements ports.ProductRepository. Product ids are
// numeric and come from a counter document so they stay stable in URLs.
type ProductRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col:      db.Collection(collectionProducts),
		counters: db.Collection(collectionCounters),
	}
}

// productQuery translates a filter into a Mongo query document.
func productQuery(filter ports.ProductFilter) bson.M {
	q := bson.M{}
	if filter.NameContains != "" {
		q["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.NameContains), "$options": "i"}
	}
	if filter.PriceBelow != nil {
		q["price"] = bson.M{"$lt": *filter.PriceBelow}
	}
	return q
}

// Stream decodes one document at a time off the cursor. The caller's context
// bounds the whole iteration, so no per-operation timeout is applied.
func (r *ProductRepository) Stream(ctx context.Context, filter ports.ProductFilter, fn func(*domain.Product) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, productQuery(filter), opts)
	if err != nil {
		return fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p domain.Product
		if err := cur.Decode(&p); err != nil {
			return fmt.Errorf("decode product: %w", err)
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := *p
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &doc, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"quantity":    p.Quantity,
		"updated_at":  p.UpdatedAt.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next product id: %w", err)
	}
	return counter.Seq, nil
}
