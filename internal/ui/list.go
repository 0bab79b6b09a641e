package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mgclone/internal/models"
)

var (
	_ list.Item         = row{}
	_ list.Item         = outcomeItem{}
	_ list.ItemDelegate = rowDelegate{}
)

// row is one line of the selection view: a database header or one of its collections.
type row struct {
	db         int // index into the summary
	collection int // index into the database's collections; -1 for the database header
	database   models.DatabaseIdentity
	entry      models.CollectionEntry
	selected   int // selected collections, database rows only
	total      int // collections, database rows only
}

func (r row) isDatabase() bool { return r.collection < 0 }

func (r row) FilterValue() string {
	if r.isDatabase() {
		return r.database.Name
	}
	return r.database.Name + "." + r.entry.Name
}

func (r row) Title() string {
	if r.isDatabase() {
		return renamed(r.database.Name, r.database.Rename)
	}
	return renamed(r.entry.Name, r.entry.Rename)
}

func (r row) Description() string {
	if r.isDatabase() {
		return fmt.Sprintf("%d/%d selected", r.selected, r.total)
	}
	return ""
}

func renamed(name, rename string) string {
	if rename == name {
		return name
	}
	return fmt.Sprintf("%s → %s", name, rename)
}

// buildRows flattens summary into database headers each followed by its collections.
func buildRows(summary models.ClusterSummary) []list.Item {
	items := make([]list.Item, 0, len(summary)+summary.TotalCollections())
	for i, db := range summary {
		items = append(items, row{
			db:         i,
			collection: -1,
			database:   db.Identity,
			selected:   db.SelectedCount(),
			total:      len(db.Collections),
		})
		for j, c := range db.Collections {
			items = append(items, row{db: i, collection: j, database: db.Identity, entry: c})
		}
	}
	return items
}

// rowDelegate renders [row] items on a single line with a selection box.
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = styles.cursor.Render("> ")
	}

	if r.isDatabase() {
		fmt.Fprintf(w, "%s%s %s", cursor, styles.database.Render(r.Title()), styles.dim.Render(r.Description()))
		return
	}

	box := "[ ]"
	if r.entry.Selected {
		box = styles.ok.Render("[x]")
	}
	fmt.Fprintf(w, "%s    %s %s", cursor, box, r.Title())
}

// outcomeItem wraps [models.TransferOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.TransferOutcome
}

func (i outcomeItem) FilterValue() string { return i.outcome.Source }
func (i outcomeItem) Title() string {
	if i.outcome.OK() {
		return fmt.Sprintf("✓ %s → %s", i.outcome.Source, i.outcome.Target)
	}
	return fmt.Sprintf("✗ %s → %s", i.outcome.Source, i.outcome.Target)
}
func (i outcomeItem) Description() string {
	if i.outcome.OK() {
		return fmt.Sprintf("%d documents", i.outcome.Documents)
	}
	return i.outcome.Err.Error()
}
