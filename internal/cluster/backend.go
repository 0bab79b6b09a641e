package cluster

import (
	"context"

	"github.com/desertthunder/mgclone/internal/models"
)

// Backend is the driver surface a [Client] needs from one live cluster connection.
//
// Implementations must tolerate concurrent FindAll and InsertMany calls; ListDatabaseNames and
// ListCollectionNames are only ever called from the client's command loop.
type Backend interface {
	// ListDatabaseNames returns every database visible to the connection, in server order.
	ListDatabaseNames(ctx context.Context) ([]string, error)

	// ListCollectionNames returns the collections of one database.
	ListCollectionNames(ctx context.Context, database string) ([]string, error)

	// FindAll reads every document in a collection with no filter or projection.
	FindAll(ctx context.Context, database, collection string) ([]models.Document, error)

	// InsertMany writes documents in a single bulk call.
	InsertMany(ctx context.Context, database, collection string, documents []models.Document) error

	// Disconnect releases the connection pool.
	Disconnect(ctx context.Context) error
}
