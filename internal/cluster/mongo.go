package cluster

import (
	"context"
	"fmt"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoBackend implements [Backend] over a pooled [mongo.Client].
type mongoBackend struct {
	client *mongo.Client
}

var _ Backend = (*mongoBackend)(nil)

// clientOptions builds driver options for uri from the [mongo] config table.
func clientOptions(uri string, cfg shared.MongoConfig) *options.ClientOptions {
	opts := options.Client().ApplyURI(uri)

	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(cfg.MaxConnIdleTime)
	}
	if len(cfg.Compressors) > 0 {
		opts.SetCompressors(cfg.Compressors)
	}
	opts.SetRetryReads(cfg.RetryReads)
	opts.SetRetryWrites(cfg.RetryWrites)

	return opts
}

// DialMongo connects to the cluster at uri and verifies the connection with a ping.
func DialMongo(ctx context.Context, uri string, cfg shared.MongoConfig) (Backend, error) {
	opts := clientOptions(uri, cfg)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidURI, err)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &mongoBackend{client: client}, nil
}

func (b *mongoBackend) ListDatabaseNames(ctx context.Context) ([]string, error) {
	names, err := b.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return names, nil
}

func (b *mongoBackend) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	names, err := b.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

func (b *mongoBackend) FindAll(ctx context.Context, database, collection string) ([]models.Document, error) {
	cursor, err := b.client.Database(database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to execute find: %w", err)
	}

	documents := []models.Document{}
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to read cursor: %w", err)
	}
	return documents, nil
}

// InsertMany writes documents with one ordered bulk insert; an empty slice is a no-op.
func (b *mongoBackend) InsertMany(ctx context.Context, database, collection string, documents []models.Document) error {
	if len(documents) == 0 {
		return nil
	}

	batch := make([]any, len(documents))
	for i, doc := range documents {
		batch[i] = doc
	}

	if _, err := b.client.Database(database).Collection(collection).InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

func (b *mongoBackend) Disconnect(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
