package models

// Listing is the discovery result for one database: its name and the names of its collections, in listing order.
type Listing struct {
	Database    string
	Collections []string
}

// DatabaseIdentity stores a database's name and what it should be renamed to on the target.
type DatabaseIdentity struct {
	Name   string
	Rename string
}

// CollectionEntry stores a collection's name, its target name and whether it is included in a clone run.
type CollectionEntry struct {
	Name     string
	Rename   string
	Selected bool
}

// Database is a database and its collections.
type Database struct {
	Identity    DatabaseIdentity
	Collections []CollectionEntry
}

// NewDatabase builds a [Database] from a [Listing].
//
// Every rename defaults to the original name and every collection starts selected.
func NewDatabase(l Listing) Database {
	collections := make([]CollectionEntry, len(l.Collections))
	for i, name := range l.Collections {
		collections[i] = CollectionEntry{Name: name, Rename: name, Selected: true}
	}
	return Database{
		Identity:    DatabaseIdentity{Name: l.Database, Rename: l.Database},
		Collections: collections,
	}
}

// SelectAll marks every collection in the database as selected.
func (d *Database) SelectAll() {
	for i := range d.Collections {
		d.Collections[i].Selected = true
	}
}

// SelectNone clears the selection flag on every collection in the database.
func (d *Database) SelectNone() {
	for i := range d.Collections {
		d.Collections[i].Selected = false
	}
}

// SelectedCount returns the number of selected collections.
func (d Database) SelectedCount() int {
	n := 0
	for _, c := range d.Collections {
		if c.Selected {
			n++
		}
	}
	return n
}

// Collection returns a pointer to the named collection entry, or nil.
func (d *Database) Collection(name string) *CollectionEntry {
	for i := range d.Collections {
		if d.Collections[i].Name == name {
			return &d.Collections[i]
		}
	}
	return nil
}

// ClusterSummary is the ordered set of databases discovered on a cluster along with the user's edits.
//
// It is owned by a single editor (the UI or the CLI flag parser) until a run starts,
// at which point the engine works from a [ClusterSummary.Snapshot].
type ClusterSummary []Database

// NewClusterSummary builds a summary from discovery results, preserving their order.
func NewClusterSummary(listings []Listing) ClusterSummary {
	summary := make(ClusterSummary, len(listings))
	for i, l := range listings {
		summary[i] = NewDatabase(l)
	}
	return summary
}

// Snapshot returns a deep copy that shares no memory with s.
func (s ClusterSummary) Snapshot() ClusterSummary {
	if s == nil {
		return nil
	}
	out := make(ClusterSummary, len(s))
	for i, db := range s {
		out[i] = Database{
			Identity:    db.Identity,
			Collections: append([]CollectionEntry(nil), db.Collections...),
		}
	}
	return out
}

// Database returns a pointer to the named database, or nil.
func (s ClusterSummary) Database(name string) *Database {
	for i := range s {
		if s[i].Identity.Name == name {
			return &s[i]
		}
	}
	return nil
}

// SelectedCount returns the number of selected collections across all databases.
func (s ClusterSummary) SelectedCount() int {
	n := 0
	for _, db := range s {
		n += db.SelectedCount()
	}
	return n
}

// TotalCollections returns the number of collections across all databases.
func (s ClusterSummary) TotalCollections() int {
	n := 0
	for _, db := range s {
		n += len(db.Collections)
	}
	return n
}

// Listings converts the summary back into its discovery shape.
func (s ClusterSummary) Listings() []Listing {
	out := make([]Listing, len(s))
	for i, db := range s {
		names := make([]string, len(db.Collections))
		for j, c := range db.Collections {
			names[j] = c.Name
		}
		out[i] = Listing{Database: db.Identity.Name, Collections: names}
	}
	return out
}
