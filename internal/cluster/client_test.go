package cluster

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
	testutil "github.com/desertthunder/mgclone/internal/testing"
	"go.mongodb.org/mongo-driver/bson"
)

var _ Backend = (*testutil.MemoryBackend)(nil)

func newTestClient(t *testing.T, backend Backend) *Client {
	t.Helper()
	c := New(backend, Options{Logger: shared.NewLogger(io.Discard), Label: "test"})
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func doc(id int, name string) models.Document {
	return bson.D{{Key: "_id", Value: id}, {Key: "name", Value: name}}
}

func TestListDatabasesAndCollections(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		backend func() *testutil.MemoryBackend
		want    []models.Listing
		wantErr error
		errText string
	}{
		{
			name: "lists every database in server order",
			backend: func() *testutil.MemoryBackend {
				return testutil.NewMemoryBackend().
					Seed("app", "users").
					Seed("app", "events").
					Seed("logs", "access")
			},
			want: []models.Listing{
				{Database: "app", Collections: []string{"users", "events"}},
				{Database: "logs", Collections: []string{"access"}},
			},
		},
		{
			name: "database with no collections",
			backend: func() *testutil.MemoryBackend {
				return testutil.NewMemoryBackend().SeedDatabase("empty")
			},
			want: []models.Listing{{Database: "empty", Collections: []string{}}},
		},
		{
			name: "empty cluster",
			backend: func() *testutil.MemoryBackend {
				return testutil.NewMemoryBackend()
			},
			want: []models.Listing{},
		},
		{
			name: "database listing fails",
			backend: func() *testutil.MemoryBackend {
				return testutil.NewMemoryBackend().Seed("app", "users").FailList(errBoom)
			},
			wantErr: shared.ErrDiscovery,
		},
		{
			name: "first failing database aborts",
			backend: func() *testutil.MemoryBackend {
				return testutil.NewMemoryBackend().
					Seed("app", "users").
					Seed("broken", "x").
					Seed("logs", "access").
					FailCollections("broken", errBoom)
			},
			wantErr: shared.ErrDiscovery,
			errText: "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := tt.backend()
			c := newTestClient(t, backend)

			got, err := c.ListDatabasesAndCollections(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != nil {
					t.Errorf("expected no partial result, got %v", got)
				}
				if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("error %q should name %q", err, tt.errText)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d listings, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i].Database != tt.want[i].Database || !slices.Equal(got[i].Collections, tt.want[i].Collections) {
					t.Errorf("listing %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("stops enumerating after the failing database", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().
			Seed("a", "x").
			Seed("b", "x").
			Seed("c", "x").
			FailCollections("b", errBoom)
		c := newTestClient(t, backend)

		if _, err := c.ListDatabasesAndCollections(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if slices.Contains(backend.Calls(), "collections c") {
			t.Errorf("database after the failure should not be listed, calls: %v", backend.Calls())
		}
	})
}

func TestDownloadUpload(t *testing.T) {
	t.Run("Download returns documents in stored order", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().Seed("app", "users", doc(1, "ada"), doc(2, "bob"))
		c := newTestClient(t, backend)

		docs, err := c.Download(context.Background(), "app", "users")
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(docs))
		}
		if docs[0][0].Key != "_id" || docs[1][1].Value != "bob" {
			t.Errorf("unexpected documents: %v", docs)
		}
	})

	t.Run("Download of missing collection is empty", func(t *testing.T) {
		c := newTestClient(t, testutil.NewMemoryBackend())

		docs, err := c.Download(context.Background(), "nope", "none")
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
	})

	t.Run("Download failure wraps ErrTransfer", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().Seed("app", "users").FailFind("app", "users", errors.New("cursor died"))
		c := newTestClient(t, backend)

		if _, err := c.Download(context.Background(), "app", "users"); !errors.Is(err, shared.ErrTransfer) {
			t.Errorf("expected ErrTransfer, got %v", err)
		}
	})

	t.Run("Upload inserts into target namespace", func(t *testing.T) {
		backend := testutil.NewMemoryBackend()
		c := newTestClient(t, backend)

		if err := c.Upload(context.Background(), "copy", "people", []models.Document{doc(1, "ada")}); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if got := backend.Documents("copy", "people"); len(got) != 1 {
			t.Errorf("expected 1 document in copy.people, got %d", len(got))
		}
	})

	t.Run("Upload of nothing succeeds", func(t *testing.T) {
		backend := testutil.NewMemoryBackend()
		c := newTestClient(t, backend)

		if err := c.Upload(context.Background(), "copy", "empty", nil); err != nil {
			t.Errorf("Upload() error = %v", err)
		}
	})

	t.Run("Upload failure wraps ErrTransfer", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().FailInsert("copy", "people", errors.New("duplicate key"))
		c := newTestClient(t, backend)

		err := c.Upload(context.Background(), "copy", "people", []models.Document{doc(1, "ada")})
		if !errors.Is(err, shared.ErrTransfer) {
			t.Errorf("expected ErrTransfer, got %v", err)
		}
	})
}

func TestClientConcurrency(t *testing.T) {
	t.Run("slow download does not block later requests", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().
			Seed("app", "slow", doc(1, "a")).
			Seed("app", "fast", doc(2, "b"))
		release := backend.Gate("app", "slow")
		defer release()
		c := newTestClient(t, backend)

		slow := make(chan error, 1)
		go func() {
			_, err := c.Download(context.Background(), "app", "slow")
			slow <- err
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := c.Download(ctx, "app", "fast"); err != nil {
			t.Fatalf("fast download should finish while slow one is held: %v", err)
		}
		if _, err := c.ListDatabasesAndCollections(ctx); err != nil {
			t.Fatalf("listing should be admitted while slow download is held: %v", err)
		}

		select {
		case <-slow:
			t.Fatal("slow download finished before release")
		default:
		}

		release()
		if err := <-slow; err != nil {
			t.Errorf("slow download error = %v", err)
		}
	})

	t.Run("abandoned request still completes", func(t *testing.T) {
		backend := testutil.NewMemoryBackend()
		release := backend.Gate("copy", "people")
		c := newTestClient(t, backend)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- c.Upload(ctx, "copy", "people", []models.Document{doc(1, "ada")})
		}()

		waitFor(t, func() bool { return slices.Contains(backend.Calls(), "insert copy.people") })
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}

		release()
		waitFor(t, func() bool { return len(backend.Documents("copy", "people")) == 1 })
	})

	t.Run("full queue releases cancelled and closing callers", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().Seed("app", "users", doc(1, "ada"))
		release := backend.GateList()
		defer release()
		c := New(backend, Options{QueueSize: 1, Logger: shared.NewLogger(io.Discard)})

		listed := make(chan error, 1)
		go func() {
			_, err := c.ListDatabasesAndCollections(context.Background())
			listed <- err
		}()
		waitFor(t, func() bool { return slices.Contains(backend.Calls(), "list") })

		queued := make(chan error, 1)
		go func() {
			_, err := c.Download(context.Background(), "app", "users")
			queued <- err
		}()
		waitFor(t, func() bool { return len(c.requests) == 1 })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := c.Download(ctx, "app", "users"); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Download() on a full queue = %v, want context.DeadlineExceeded", err)
		}

		blocked := make(chan error, 1)
		go func() {
			_, err := c.Download(context.Background(), "app", "users")
			blocked <- err
		}()
		time.Sleep(20 * time.Millisecond)

		closeCtx, cancelClose := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancelClose()
		if err := c.Close(closeCtx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Close() with a stalled loop = %v, want context.DeadlineExceeded", err)
		}

		select {
		case err := <-blocked:
			if !errors.Is(err, shared.ErrClientClosed) {
				t.Errorf("blocked Download() = %v, want ErrClientClosed", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Close should release callers waiting on a full queue")
		}

		release()
		if err := <-listed; err != nil {
			t.Errorf("ListDatabasesAndCollections() error = %v", err)
		}
		if err := <-queued; err != nil {
			t.Errorf("queued Download() error = %v", err)
		}
	})

	t.Run("many concurrent callers", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().Seed("app", "users", doc(1, "ada"))
		c := New(backend, Options{QueueSize: 2, Logger: shared.NewLogger(io.Discard)})
		defer c.Close(context.Background())

		const callers = 32
		errs := make(chan error, callers)
		for range callers {
			go func() {
				_, err := c.Download(context.Background(), "app", "users")
				errs <- err
			}()
		}
		for range callers {
			if err := <-errs; err != nil {
				t.Errorf("Download() error = %v", err)
			}
		}
	})
}

func TestClose(t *testing.T) {
	t.Run("requests after close fail", func(t *testing.T) {
		backend := testutil.NewMemoryBackend().Seed("app", "users")
		c := New(backend, Options{Logger: shared.NewLogger(io.Discard)})

		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !backend.Disconnected() {
			t.Error("Close should disconnect the backend")
		}

		if _, err := c.ListDatabasesAndCollections(context.Background()); !errors.Is(err, shared.ErrClientClosed) {
			t.Errorf("ListDatabasesAndCollections() after close = %v, want ErrClientClosed", err)
		}
		if _, err := c.Download(context.Background(), "app", "users"); !errors.Is(err, shared.ErrClientClosed) {
			t.Errorf("Download() after close = %v, want ErrClientClosed", err)
		}
		if err := c.Upload(context.Background(), "app", "users", nil); !errors.Is(err, shared.ErrClientClosed) {
			t.Errorf("Upload() after close = %v, want ErrClientClosed", err)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := New(testutil.NewMemoryBackend(), Options{Logger: shared.NewLogger(io.Discard)})
		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("first Close() error = %v", err)
		}
		if err := c.Close(context.Background()); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})

	t.Run("default queue size", func(t *testing.T) {
		c := newTestClient(t, testutil.NewMemoryBackend())
		if cap(c.requests) != DefaultQueueSize {
			t.Errorf("expected queue capacity %d, got %d", DefaultQueueSize, cap(c.requests))
		}
	})
}

func TestConnectRejectsBadURI(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://localhost", shared.DefaultConfig().Mongo, Options{Logger: shared.NewLogger(io.Discard)})
	if !errors.Is(err, shared.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
	if !errors.Is(err, shared.ErrInvalidURI) {
		t.Errorf("expected ErrInvalidURI in chain, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := shared.DefaultConfig().Mongo
	opts := clientOptions("mongodb://localhost:27017", cfg)

	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if opts.AppName == nil || *opts.AppName != cfg.AppName {
		t.Errorf("expected app name %q", cfg.AppName)
	}
	if opts.ConnectTimeout == nil || *opts.ConnectTimeout != cfg.ConnectTimeout {
		t.Errorf("expected connect timeout %v", cfg.ConnectTimeout)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != cfg.MaxPoolSize {
		t.Errorf("expected max pool size %d", cfg.MaxPoolSize)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
