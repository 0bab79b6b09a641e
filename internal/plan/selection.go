package plan

import (
	"fmt"
	"strings"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
)

// Selector names a database ("db") or one collection ("db.collection").
//
// Database names cannot contain dots, so everything after the first dot is the collection name.
type Selector struct {
	Database   string
	Collection string
}

// ParseSelector parses "db" or "db.collection".
func ParseSelector(s string) (Selector, error) {
	database, collection, found := strings.Cut(s, ".")
	if database == "" || (found && collection == "") {
		return Selector{}, fmt.Errorf("%w: selector %q (want db or db.collection)", shared.ErrInvalidArgument, s)
	}
	return Selector{Database: database, Collection: collection}, nil
}

func (s Selector) String() string {
	if s.Collection == "" {
		return s.Database
	}
	return s.Database + "." + s.Collection
}

// Options is a selection expressed as CLI flags.
type Options struct {
	Include          []string // db or db.collection; when set only these are selected
	Exclude          []string // db or db.collection; deselected after includes
	RenameDatabase   []string // old=new
	RenameCollection []string // db.old=new
}

// Plan converts flag values into a [Plan] over summary.
//
// Includes reset the selection to nothing before selecting, excludes are applied last. Names that do
// not exist in summary fail with [shared.ErrInvalidPlan].
func (o Options) Plan(summary models.ClusterSummary) (Plan, error) {
	working := summary.Snapshot()

	if len(o.Include) > 0 {
		for i := range working {
			working[i].SelectNone()
		}
		if err := mark(working, o.Include, true); err != nil {
			return Plan{}, err
		}
	}
	if err := mark(working, o.Exclude, false); err != nil {
		return Plan{}, err
	}

	for _, pair := range o.RenameDatabase {
		from, to, err := parseRename(pair)
		if err != nil {
			return Plan{}, err
		}
		db := working.Database(from)
		if db == nil {
			return Plan{}, fmt.Errorf("%w: unknown database %q", shared.ErrInvalidPlan, from)
		}
		db.Identity.Rename = to
	}

	for _, pair := range o.RenameCollection {
		from, to, err := parseRename(pair)
		if err != nil {
			return Plan{}, err
		}
		sel, err := ParseSelector(from)
		if err != nil {
			return Plan{}, err
		}
		if sel.Collection == "" {
			return Plan{}, fmt.Errorf("%w: collection rename %q (want db.old=new)", shared.ErrInvalidArgument, pair)
		}
		c, err := lookup(working, sel)
		if err != nil {
			return Plan{}, err
		}
		c.Rename = to
	}

	return Export(working), nil
}

// Apply edits summary with the flag selection.
func (o Options) Apply(summary models.ClusterSummary) error {
	p, err := o.Plan(summary)
	if err != nil {
		return err
	}
	return p.Apply(summary)
}

func mark(summary models.ClusterSummary, selectors []string, selected bool) error {
	for _, raw := range selectors {
		sel, err := ParseSelector(raw)
		if err != nil {
			return err
		}

		if sel.Collection == "" {
			db := summary.Database(sel.Database)
			if db == nil {
				return fmt.Errorf("%w: unknown database %q", shared.ErrInvalidPlan, sel.Database)
			}
			if selected {
				db.SelectAll()
			} else {
				db.SelectNone()
			}
			continue
		}

		c, err := lookup(summary, sel)
		if err != nil {
			return err
		}
		c.Selected = selected
	}
	return nil
}

func lookup(summary models.ClusterSummary, sel Selector) (*models.CollectionEntry, error) {
	db := summary.Database(sel.Database)
	if db == nil {
		return nil, fmt.Errorf("%w: unknown database %q", shared.ErrInvalidPlan, sel.Database)
	}
	c := db.Collection(sel.Collection)
	if c == nil {
		return nil, fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidPlan, sel.String())
	}
	return c, nil
}

func parseRename(pair string) (from, to string, err error) {
	from, to, found := strings.Cut(pair, "=")
	if !found || from == "" || to == "" {
		return "", "", fmt.Errorf("%w: rename %q (want old=new)", shared.ErrInvalidArgument, pair)
	}
	return from, to, nil
}
