package blueprint

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assys/brickguide/pkg/errors"
)

// MongoSource keeps one document per blueprint, keyed by a unique name.
type MongoSource struct {
	coll *mongo.Collection
}

// MongoOptions locates the blueprint collection.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// ConnectMongo connects, pings and ensures the name index. The returned
// client must be disconnected by the caller.
func ConnectMongo(ctx context.Context, opts MongoOptions) (*MongoSource, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, errors.Wrap(errors.ErrCodeUnavailable, err, "ping mongodb")
	}
	coll := opts.Collection
	if coll == "" {
		coll = "blueprints"
	}
	src := NewMongoSource(client.Database(opts.Database).Collection(coll))
	if err := src.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return src, client, nil
}

func NewMongoSource(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

// EnsureIndexes creates the unique index on name.
func (s *MongoSource) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "create blueprint index")
	}
	return nil
}

func (s *MongoSource) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "name", Value: 1}}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list blueprints")
	}
	var docs []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list blueprints")
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

func (s *MongoSource) Load(ctx context.Context, name string) (*Blueprint, error) {
	if err := errors.ValidateBlueprintName(name); err != nil {
		return nil, err
	}
	var b Blueprint
	err := s.coll.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&b)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "load blueprint %q", name)
	}
	return &b, nil
}

// Save upserts b by name.
func (s *MongoSource) Save(ctx context.Context, b *Blueprint) error {
	if err := errors.ValidateBlueprintName(b.Name); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "name", Value: b.Name}},
		b,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save blueprint %q", b.Name)
	}
	return nil
}

var _ Store = (*MongoSource)(nil)
