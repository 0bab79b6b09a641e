// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/mgclone/internal/models"
)

// ErrDisconnected is returned by [MemoryBackend] operations after Disconnect.
var ErrDisconnected = errors.New("backend disconnected")

// MemoryBackend is an in-memory test double for cluster.Backend.
//
// Databases and collections are listed in the order they were first added. Failures and gates are
// keyed by database or "db.collection" namespace and must be configured before the backend is shared.
type MemoryBackend struct {
	mu          sync.Mutex
	databases   []string
	collections map[string][]string
	documents   map[string][]models.Document

	listErr       error
	collectionErr map[string]error
	findErr       map[string]error
	insertErr     map[string]error
	gates         map[string]chan struct{}

	calls        []string
	disconnected bool
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections:   make(map[string][]string),
		documents:     make(map[string][]models.Document),
		collectionErr: make(map[string]error),
		findErr:       make(map[string]error),
		insertErr:     make(map[string]error),
		gates:         make(map[string]chan struct{}),
	}
}

func namespace(database, collection string) string { return database + "." + collection }

// Seed adds a collection holding documents, creating the database if needed.
func (m *MemoryBackend) Seed(database, collection string, documents ...models.Document) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(database, collection)
	ns := namespace(database, collection)
	m.documents[ns] = append(m.documents[ns], documents...)
	return m
}

// SeedDatabase adds an empty database.
func (m *MemoryBackend) SeedDatabase(database string) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[database]; !ok {
		m.databases = append(m.databases, database)
		m.collections[database] = []string{}
	}
	return m
}

func (m *MemoryBackend) ensure(database, collection string) {
	if _, ok := m.collections[database]; !ok {
		m.databases = append(m.databases, database)
	}
	if !slices.Contains(m.collections[database], collection) {
		m.collections[database] = append(m.collections[database], collection)
	}
}

// FailList makes ListDatabaseNames return err.
func (m *MemoryBackend) FailList(err error) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	return m
}

// FailCollections makes ListCollectionNames return err for database.
func (m *MemoryBackend) FailCollections(database string, err error) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionErr[database] = err
	return m
}

// FailFind makes FindAll return err for database.collection.
func (m *MemoryBackend) FailFind(database, collection string, err error) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findErr[namespace(database, collection)] = err
	return m
}

// FailInsert makes InsertMany return err for database.collection.
func (m *MemoryBackend) FailInsert(database, collection string, err error) *MemoryBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErr[namespace(database, collection)] = err
	return m
}

// Gate blocks FindAll and InsertMany on database.collection until the returned release func is called.
func (m *MemoryBackend) Gate(database, collection string) (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[namespace(database, collection)] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// listGate keys the gate installed by GateList.
const listGate = "*list"

// GateList blocks ListDatabaseNames until the returned release func is called.
func (m *MemoryBackend) GateList() (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[listGate] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (m *MemoryBackend) wait(ns string) {
	m.mu.Lock()
	gate := m.gates[ns]
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (m *MemoryBackend) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *MemoryBackend) ListDatabaseNames(ctx context.Context) ([]string, error) {
	m.record("list")
	m.wait(listGate)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.databases), nil
}

func (m *MemoryBackend) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	m.record("collections " + database)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.collectionErr[database]; err != nil {
		return nil, err
	}
	return slices.Clone(m.collections[database]), nil
}

func (m *MemoryBackend) FindAll(ctx context.Context, database, collection string) ([]models.Document, error) {
	ns := namespace(database, collection)
	m.record("find " + ns)
	m.wait(ns)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disconnected {
		return nil, ErrDisconnected
	}
	if err := m.findErr[ns]; err != nil {
		return nil, err
	}
	return slices.Clone(m.documents[ns]), nil
}

func (m *MemoryBackend) InsertMany(ctx context.Context, database, collection string, documents []models.Document) error {
	ns := namespace(database, collection)
	m.record("insert " + ns)
	m.wait(ns)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disconnected {
		return ErrDisconnected
	}
	if err := m.insertErr[ns]; err != nil {
		return err
	}
	if len(documents) == 0 {
		return nil
	}
	m.ensure(database, collection)
	m.documents[ns] = append(m.documents[ns], documents...)
	return nil
}

func (m *MemoryBackend) Disconnect(ctx context.Context) error {
	m.record("disconnect")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
	return nil
}

// Documents returns a copy of what database.collection currently holds.
func (m *MemoryBackend) Documents(database, collection string) []models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.documents[namespace(database, collection)])
}

// HasCollection reports whether database.collection exists.
func (m *MemoryBackend) HasCollection(database, collection string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.collections[database], collection)
}

// Calls returns the operations made so far, in order, as "list", "collections db", "find db.coll",
// "insert db.coll" or "disconnect".
func (m *MemoryBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Disconnected reports whether Disconnect has been called.
func (m *MemoryBackend) Disconnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnected
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
