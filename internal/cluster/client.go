package cluster

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
)

// DefaultQueueSize is the admission channel capacity used when [Options.QueueSize] is unset.
const DefaultQueueSize = 1024

// requestKind enumerates the commands a [Client] accepts.
type requestKind int

const (
	listRequest requestKind = iota
	downloadRequest
	uploadRequest
)

func (k requestKind) String() string {
	switch k {
	case listRequest:
		return "list"
	case downloadRequest:
		return "download"
	case uploadRequest:
		return "upload"
	default:
		return ""
	}
}

// envelope pairs a request with its single-use reply channel.
type envelope struct {
	kind       requestKind
	ctx        context.Context
	database   string
	collection string
	documents  []models.Document
	reply      chan response
}

type response struct {
	listings  []models.Listing
	documents []models.Document
	err       error
}

// Options configures a [Client].
type Options struct {
	QueueSize int
	Logger    *log.Logger
	Label     string // Human readable name used in logs, usually the redacted URI
}

// Client is an actor that owns one cluster connection.
//
// Every command passes through a single admission channel that a command loop reads in arrival order.
// Listing runs inline in the loop; downloads and uploads are handed to detached goroutines so long
// transfers never hold up admission. Completion order of transfers is therefore unspecified.
//
// A Client is safe for concurrent use and is meant to be shared by pointer between jobs.
type Client struct {
	backend  Backend
	logger   *log.Logger
	label    string
	requests chan envelope
	stopped  chan struct{}
	closing  chan struct{} // closed when Close starts, releases senders waiting on a full queue
	once     sync.Once

	mu     sync.RWMutex
	closed bool
}

// Connect dials the cluster at uri, verifies it, and starts the command loop.
//
// It blocks until the connection is established or fails.
func Connect(ctx context.Context, uri string, cfg shared.MongoConfig, opts Options) (*Client, error) {
	if _, err := shared.ParseURI(uri); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrConnection, err)
	}
	if opts.Label == "" {
		opts.Label = shared.RedactURI(uri)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	opts.Logger.Info("connecting", "uri", opts.Label)
	backend, err := DialMongo(ctx, uri, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrConnection, opts.Label, err)
	}
	opts.Logger.Info("connected", "uri", opts.Label)

	return New(backend, opts), nil
}

// New starts a command loop over an already connected backend.
func New(backend Backend, opts Options) *Client {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	c := &Client{
		backend:  backend,
		logger:   shared.WithLogger(opts.Logger, "cluster", opts.Label),
		label:    opts.Label,
		requests: make(chan envelope, opts.QueueSize),
		stopped:  make(chan struct{}),
		closing:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Label returns the name the client logs under.
func (c *Client) Label() string { return c.label }

// loop admits requests in arrival order until the admission channel is closed.
func (c *Client) loop() {
	defer close(c.stopped)

	for env := range c.requests {
		switch env.kind {
		case listRequest:
			listings, err := c.listAll(env.ctx)
			env.reply <- response{listings: listings, err: err}
		case downloadRequest:
			go c.download(env)
		case uploadRequest:
			go c.upload(env)
		}
	}

	c.logger.Debug("command loop stopped")
}

// listAll enumerates databases and then each database's collections, stopping at the first error.
func (c *Client) listAll(ctx context.Context) ([]models.Listing, error) {
	databases, err := c.backend.ListDatabaseNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrDiscovery, err)
	}

	listings := make([]models.Listing, 0, len(databases))
	for _, database := range databases {
		collections, err := c.backend.ListCollectionNames(ctx, database)
		if err != nil {
			return nil, fmt.Errorf("%w: database %q: %w", shared.ErrDiscovery, database, err)
		}
		listings = append(listings, models.Listing{Database: database, Collections: collections})
	}
	return listings, nil
}

func (c *Client) download(env envelope) {
	c.logger.Debug("downloading collection", "database", env.database, "collection", env.collection)

	documents, err := c.backend.FindAll(env.ctx, env.database, env.collection)
	if err != nil {
		err = fmt.Errorf("%w: download %s.%s: %w", shared.ErrTransfer, env.database, env.collection, err)
	} else {
		c.logger.Debug("downloaded collection", "database", env.database, "collection", env.collection, "documents", len(documents))
	}
	env.reply <- response{documents: documents, err: err}
}

func (c *Client) upload(env envelope) {
	c.logger.Debug("uploading collection", "database", env.database, "collection", env.collection, "documents", len(env.documents))

	err := c.backend.InsertMany(env.ctx, env.database, env.collection, env.documents)
	if err != nil {
		err = fmt.Errorf("%w: upload %s.%s: %w", shared.ErrTransfer, env.database, env.collection, err)
	} else {
		c.logger.Debug("uploaded collection", "database", env.database, "collection", env.collection)
	}
	env.reply <- response{err: err}
}

// submit places a request on the admission channel and waits for its reply.
//
// The request runs under a context detached from ctx's cancellation, so it completes even if the caller
// stops waiting. If ctx ends first, submit returns ctx.Err() and the reply is dropped into its buffer unread.
// A caller blocked on a full queue gives up when ctx ends or Close starts.
func (c *Client) submit(ctx context.Context, env envelope) (response, error) {
	env.ctx = context.WithoutCancel(ctx)
	env.reply = make(chan response, 1)

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return response{}, fmt.Errorf("%w: %s", shared.ErrClientClosed, env.kind)
	}
	select {
	case c.requests <- env:
		c.mu.RUnlock()
	case <-ctx.Done():
		c.mu.RUnlock()
		return response{}, ctx.Err()
	case <-c.closing:
		c.mu.RUnlock()
		return response{}, fmt.Errorf("%w: %s", shared.ErrClientClosed, env.kind)
	}

	select {
	case resp := <-env.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// ListDatabasesAndCollections enumerates every database and its collections in one serialized pass.
//
// The first failing database aborts the call: no partial result is returned and the error wraps
// [shared.ErrDiscovery] with the database name.
func (c *Client) ListDatabasesAndCollections(ctx context.Context) ([]models.Listing, error) {
	resp, err := c.submit(ctx, envelope{kind: listRequest})
	if err != nil {
		return nil, err
	}
	return resp.listings, resp.err
}

// Download reads every document currently in database.collection.
func (c *Client) Download(ctx context.Context, database, collection string) ([]models.Document, error) {
	resp, err := c.submit(ctx, envelope{kind: downloadRequest, database: database, collection: collection})
	if err != nil {
		return nil, err
	}
	return resp.documents, resp.err
}

// Upload inserts documents into database.collection in one bulk call.
//
// Any insert failure fails the whole call; partial writes are not reported.
func (c *Client) Upload(ctx context.Context, database, collection string, documents []models.Document) error {
	resp, err := c.submit(ctx, envelope{
		kind:       uploadRequest,
		database:   database,
		collection: collection,
		documents:  documents,
	})
	if err != nil {
		return err
	}
	return resp.err
}

// Close stops admission, waits for queued requests to be dispatched, and disconnects the backend.
//
// Detached transfers still running are neither awaited nor cancelled; they fail against the closed
// connection. Close is idempotent.
func (c *Client) Close(ctx context.Context) error {
	c.once.Do(func() { close(c.closing) })

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.requests)
	c.mu.Unlock()

	select {
	case <-c.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.logger.Info("disconnecting")
	if err := c.backend.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect %s: %w", c.label, err)
	}
	return nil
}
