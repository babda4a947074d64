// Package mongodoc is the MongoDB backend. Ids are kept as the hex string
// form of an ObjectID so documents round-trip through every backend.
package mongodoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	schema docstore.Schema
}

// Connect dials uri, pings the primary and makes sure the unique indexes
// exist in database dbName.
func Connect(ctx context.Context, uri, dbName string, schema docstore.Schema) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongodoc: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodoc: ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), schema: schema}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	for coll, fields := range s.schema {
		models := make([]mongo.IndexModel, 0, len(fields))
		for _, f := range fields {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: f, Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexName(f)),
			})
		}
		if len(models) == 0 {
			continue
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodoc: indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) FindByID(ctx context.Context, coll, id string, dst any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	err := s.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.ErrNotFound
	}
	return err
}

func (s *Store) FindOne(ctx context.Context, coll string, f docstore.Filter, dst any) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := s.db.Collection(coll).FindOne(ctx, toBSON(f), opts).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.ErrNotFound
	}
	return err
}

func (s *Store) Find(ctx context.Context, coll string, f docstore.Filter, dst any) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(coll).Find(ctx, toBSON(f), opts)
	if err != nil {
		return fmt.Errorf("mongodoc: find %s: %w", coll, err)
	}
	return cur.All(ctx, dst)
}

func (s *Store) Insert(ctx context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	if _, err := s.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		return s.mapError(err, coll, id, doc)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return s.mapError(err, coll, id, doc)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodoc: delete %s/%s: %w", coll, id, err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func toBSON(f docstore.Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		m[k] = v
	}
	return m
}

var _ docstore.Store = (*Store)(nil)
