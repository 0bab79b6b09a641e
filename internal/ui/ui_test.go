package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mgclone/internal/cluster"
	"github.com/desertthunder/mgclone/internal/shared"
	"github.com/desertthunder/mgclone/internal/tasks"
	testutil "github.com/desertthunder/mgclone/internal/testing"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	sourceURI = "mongodb://source:27017"
	targetURI = "mongodb://target:27017"
)

type harness struct {
	model    *Model
	backends map[string]*testutil.MemoryBackend
	dials    int
}

func newHarness(t *testing.T, source *testutil.MemoryBackend) *harness {
	t.Helper()
	h := &harness{backends: map[string]*testutil.MemoryBackend{
		sourceURI: source,
		targetURI: testutil.NewMemoryBackend(),
	}}
	logger := shared.NewLogger(io.Discard)

	dial := func(ctx context.Context, uri string) (Cluster, error) {
		h.dials++
		backend, ok := h.backends[uri]
		if !ok {
			return nil, errors.New("no such host")
		}
		return cluster.New(backend, cluster.Options{Logger: logger, Label: uri}), nil
	}

	h.model = NewModel(context.Background(), Options{
		SourceURI:    sourceURI,
		TargetURI:    targetURI,
		Dial:         dial,
		Engine:       tasks.NewCloneEngine(tasks.EngineOptions{Logger: logger}),
		Logger:       logger,
		PollInterval: time.Millisecond,
	})
	t.Cleanup(func() { _ = h.model.Close(context.Background()) })
	return h
}

func salesBackend() *testutil.MemoryBackend {
	return testutil.NewMemoryBackend().
		Seed("sales", "orders", bson.D{{Key: "_id", Value: 1}}, bson.D{{Key: "_id", Value: 2}}).
		Seed("sales", "customers", bson.D{{Key: "_id", Value: "c1"}}).
		Seed("logs", "events", bson.D{{Key: "_id", Value: "e1"}})
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keySSL   = tea.KeyMsg{Type: tea.KeyCtrlT}
)

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

// exec runs cmd synchronously, flattening batches, and feeds every resulting message back into the model.
//
// Spinner ticks are dropped and returned commands are not run, so timers never fire.
func (h *harness) exec(cmd tea.Cmd) []tea.Cmd {
	var next []tea.Cmd
	for _, msg := range collect(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		if c := h.send(msg); c != nil {
			next = append(next, c)
		}
	}
	return next
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// connect drives the model from the connection form to the selection view.
func (h *harness) connect(t *testing.T) {
	t.Helper()
	cmd := h.send(keyEnter)
	if h.model.State() != LoadingView {
		t.Fatalf("expected loading view after enter, got %v", h.model.State())
	}

	for _, list := range h.exec(cmd) {
		h.exec(list)
	}
}

func TestConnectView(t *testing.T) {
	t.Run("invalid URI stays on the form", func(t *testing.T) {
		h := newHarness(t, salesBackend())
		h.model.inputs[targetField].SetValue("postgres://nope")

		h.send(keyEnter)
		if h.model.State() != ConnectView {
			t.Errorf("expected connect view, got %v", h.model.State())
		}
		if !errors.Is(h.model.inputErr, shared.ErrInvalidURI) {
			t.Errorf("expected ErrInvalidURI, got %v", h.model.inputErr)
		}
		if !strings.Contains(h.model.View(), "invalid") {
			t.Errorf("form should show the error, got:\n%s", h.model.View())
		}
	})

	t.Run("toggle ssl on focused field", func(t *testing.T) {
		h := newHarness(t, salesBackend())

		h.send(keySSL)
		if got := h.model.inputs[sourceField].Value(); got != "mongodb://source:27017/?ssl=true" {
			t.Errorf("source after toggle = %s", got)
		}
		h.send(keySSL)
		if got := h.model.inputs[sourceField].Value(); got != "mongodb://source:27017/?ssl=false" {
			t.Errorf("source after second toggle = %s", got)
		}
		if got := h.model.inputs[targetField].Value(); got != targetURI {
			t.Errorf("target should be untouched, got %s", got)
		}
	})

	t.Run("connect and list", func(t *testing.T) {
		h := newHarness(t, salesBackend())
		h.connect(t)

		if h.model.State() != SelectView {
			t.Fatalf("expected select view, got %v (err %v)", h.model.State(), h.model.err)
		}
		if len(h.model.Summary()) != 2 || h.model.Summary().SelectedCount() != 3 {
			t.Errorf("unexpected summary %+v", h.model.Summary())
		}
		if h.dials != 2 {
			t.Errorf("expected 2 dials, got %d", h.dials)
		}
	})

	t.Run("connection failure shows error", func(t *testing.T) {
		h := newHarness(t, salesBackend())
		delete(h.backends, targetURI)

		h.exec(h.send(keyEnter))
		if h.model.State() != ErrorView {
			t.Fatalf("expected error view, got %v", h.model.State())
		}
		if !strings.Contains(h.model.View(), "connect") {
			t.Errorf("error view should name the stage, got:\n%s", h.model.View())
		}
		if !h.backends[sourceURI].Disconnected() {
			t.Error("source client should be closed when the target fails")
		}
	})
}

func TestDiscoveryErrorReconnects(t *testing.T) {
	backend := salesBackend().FailCollections("logs", errors.New("not authorized"))
	h := newHarness(t, backend)
	h.connect(t)

	if h.model.State() != ErrorView {
		t.Fatalf("expected error view, got %v", h.model.State())
	}
	if !errors.Is(h.model.err, shared.ErrDiscovery) {
		t.Errorf("expected ErrDiscovery, got %v", h.model.err)
	}
	if !strings.Contains(h.model.View(), "discovery") {
		t.Errorf("error view should name the stage, got:\n%s", h.model.View())
	}

	cmd := h.send(keyEnter)
	if h.model.State() != LoadingView {
		t.Fatalf("acknowledging should reconnect, got %v", h.model.State())
	}
	collect(cmd)
	if !backend.Disconnected() {
		t.Error("acknowledging should drop the old client")
	}
}

func TestSelectView(t *testing.T) {
	h := newHarness(t, salesBackend())
	h.connect(t)
	summary := h.model.Summary()

	h.send(keyRune('n'))
	if summary.Database("sales").SelectedCount() != 0 {
		t.Errorf("n should select none in sales")
	}
	h.send(keyRune('a'))
	if summary.Database("sales").SelectedCount() != 2 {
		t.Errorf("a should select all in sales")
	}

	h.send(keySpace)
	if summary.Database("sales").SelectedCount() != 0 {
		t.Errorf("space on a fully selected database should clear it")
	}
	h.send(keySpace)

	h.send(keyDown)
	h.send(keySpace)
	if summary.Database("sales").Collection("orders").Selected {
		t.Error("space on a collection should toggle it")
	}
	h.send(keySpace)

	h.send(keyRune('r'))
	if !h.model.renaming {
		t.Fatal("r should open the rename input")
	}
	if h.model.renameInput.Value() != "orders" {
		t.Errorf("rename input should start with the current name, got %q", h.model.renameInput.Value())
	}
	h.model.renameInput.SetValue("orders_2023")
	h.send(keyEnter)
	if got := summary.Database("sales").Collection("orders").Rename; got != "orders_2023" {
		t.Errorf("collection rename = %q", got)
	}
	if !strings.Contains(h.model.View(), "orders → orders_2023") {
		t.Errorf("select view should show the rename, got:\n%s", h.model.View())
	}

	h.send(keyRune('r'))
	h.send(keyEsc)
	if h.model.renaming {
		t.Error("esc should cancel the rename")
	}

	h.send(keyEsc)
	if h.model.State() != ConnectView {
		t.Errorf("esc should disconnect, got %v", h.model.State())
	}
}

func TestCloneFlow(t *testing.T) {
	h := newHarness(t, salesBackend())
	h.connect(t)
	summary := h.model.Summary()
	summary.Database("logs").Collection("events").Selected = false
	summary.Database("sales").Identity.Rename = "sales_archive"

	h.send(keyEnter)
	if h.model.State() != ConfirmView {
		t.Fatalf("expected confirm view, got %v", h.model.State())
	}
	if !strings.Contains(h.model.View(), "sales.orders → sales_archive.orders") {
		t.Errorf("confirm view should list jobs, got:\n%s", h.model.View())
	}

	h.send(keyRune('n'))
	if h.model.State() != SelectView {
		t.Fatalf("n should return to selection, got %v", h.model.State())
	}
	h.send(keyEnter)
	h.send(keyRune('y'))
	if h.model.State() != CloneView {
		t.Fatalf("expected clone view, got %v", h.model.State())
	}
	if h.model.run.Total() != 2 {
		t.Errorf("expected 2 jobs, got %d", h.model.run.Total())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.model.run.Wait(ctx); err != nil {
		t.Fatalf("run did not finish: %v", err)
	}
	h.send(tickMsg())

	if h.model.State() != ResultView {
		t.Fatalf("expected result view, got %v", h.model.State())
	}
	if !strings.Contains(h.model.View(), "Cloned 2 collections") {
		t.Errorf("result view should report success, got:\n%s", h.model.View())
	}

	target := h.backends[targetURI]
	if len(target.Documents("sales_archive", "orders")) != 2 {
		t.Error("orders should be cloned into sales_archive")
	}
	if target.HasCollection("logs", "events") {
		t.Error("deselected collection should not be cloned")
	}

	h.send(keyEsc)
	if h.model.State() != SelectView {
		t.Errorf("esc should return to selection, got %v", h.model.State())
	}
}

func TestEmptySelectionCannotRun(t *testing.T) {
	h := newHarness(t, salesBackend())
	h.connect(t)
	for i := range h.model.Summary() {
		h.model.Summary()[i].SelectNone()
	}

	h.send(keyEnter)
	if h.model.State() != SelectView {
		t.Errorf("enter with nothing selected should stay, got %v", h.model.State())
	}
}
