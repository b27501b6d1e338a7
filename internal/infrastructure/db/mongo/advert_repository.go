package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adverts/adverts-api/internal/core/domain"
)

const (
	collectionAdverts  = "adverts"
	collectionCounters = "counters"
)

// advertDocument is the stored shape. Price is Decimal128 so no precision is
// lost in the database.
type advertDocument struct {
	ID          int64                `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	DateAdded   time.Time            `bson:"date_added"`
}

func toDocument(a *domain.Advert) (advertDocument, error) {
	price, err := primitive.ParseDecimal128(a.Price.String())
	if err != nil {
		return advertDocument{}, fmt.Errorf("encode price %s: %w", a.Price, err)
	}
	return advertDocument{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       price,
		DateAdded:   a.DateAdded.UTC(),
	}, nil
}

func (d *advertDocument) toDomain() (domain.Advert, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return domain.Advert{}, fmt.Errorf("decode price of advert %d: %w", d.ID, err)
	}
	return domain.Advert{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		DateAdded:   d.DateAdded.UTC(),
	}, nil
}

// AdvertRepository implements ports.AdvertRepository on MongoDB. Integer ids
// are drawn from a counters collection.
type AdvertRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewAdvertRepository(db *mongo.Database) *AdvertRepository {
	return &AdvertRepository{
		col:      db.Collection(collectionAdverts),
		counters: db.Collection(collectionCounters),
	}
}

func (r *AdvertRepository) FindByID(ctx context.Context, id int64) (*domain.Advert, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc advertDocument
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdvertNotFound
		}
		return nil, fmt.Errorf("find advert %d: %w", id, err)
	}

	a, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdvertRepository) List(ctx context.Context) ([]domain.Advert, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list adverts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []advertDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list adverts: %w", err)
	}

	out := make([]domain.Advert, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AdvertRepository) Create(ctx context.Context, a *domain.Advert) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	doc, err := toDocument(a)
	if err != nil {
		return err
	}
	doc.ID = id

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert advert: %w", err)
	}
	a.ID = id
	return nil
}

func (r *AdvertRepository) Update(ctx context.Context, a *domain.Advert) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toDocument(a)
	if err != nil {
		return err
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, doc)
	if err != nil {
		return fmt.Errorf("update advert %d: %w", a.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAdvertNotFound
	}
	return nil
}

func (r *AdvertRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete advert %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAdvertNotFound
	}
	return nil
}

// Ping satisfies ports.Pinger for the readiness probe.
func (r *AdvertRepository) Ping(ctx context.Context) error {
	return r.col.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// nextID atomically increments and returns the adverts sequence.
func (r *AdvertRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionAdverts},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate advert id: %w", err)
	}
	return counter.Seq, nil
}
