// package plan reads and writes TOML selection plans and applies them to a cluster summary.
//
// A plan records which collections to copy and what to call them on the target:
//
//	[[database]]
//	name = "sales"
//	rename = "sales_archive"
//
//	  [[database.collection]]
//	  name = "orders"
//	  rename = "orders_2023"
//	  selected = true
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
)

// Plan is a saved selection.
type Plan struct {
	Databases []Database `toml:"database"`
}

// Database is the plan entry for one database.
//
// A set Selected applies to every collection before per-collection entries are applied.
type Database struct {
	Name        string       `toml:"name"`
	Rename      string       `toml:"rename,omitempty"`
	Selected    *bool        `toml:"selected,omitempty"`
	Collections []Collection `toml:"collection,omitempty"`
}

// Collection is the plan entry for one collection.
type Collection struct {
	Name     string `toml:"name"`
	Rename   string `toml:"rename,omitempty"`
	Selected *bool  `toml:"selected,omitempty"`
}

// Export records every database and collection of summary with its current rename and selection.
func Export(summary models.ClusterSummary) Plan {
	p := Plan{Databases: make([]Database, len(summary))}
	for i, db := range summary {
		entry := Database{Name: db.Identity.Name, Rename: db.Identity.Rename}
		for _, c := range db.Collections {
			entry.Collections = append(entry.Collections, Collection{
				Name:     c.Name,
				Rename:   c.Rename,
				Selected: &c.Selected,
			})
		}
		p.Databases[i] = entry
	}
	return p
}

// Apply edits summary in place. Unknown databases or collections fail with [shared.ErrInvalidPlan]
// and leave summary untouched.
func (p Plan) Apply(summary models.ClusterSummary) error {
	working := summary.Snapshot()

	for _, pd := range p.Databases {
		db := working.Database(pd.Name)
		if db == nil {
			return fmt.Errorf("%w: unknown database %q", shared.ErrInvalidPlan, pd.Name)
		}
		if pd.Rename != "" {
			db.Identity.Rename = pd.Rename
		}
		if pd.Selected != nil {
			if *pd.Selected {
				db.SelectAll()
			} else {
				db.SelectNone()
			}
		}

		for _, pc := range pd.Collections {
			c := db.Collection(pc.Name)
			if c == nil {
				return fmt.Errorf("%w: unknown collection %q in database %q", shared.ErrInvalidPlan, pc.Name, pd.Name)
			}
			if pc.Rename != "" {
				c.Rename = pc.Rename
			}
			if pc.Selected != nil {
				c.Selected = *pc.Selected
			}
		}
	}

	copy(summary, working)
	return nil
}

// Decode parses a plan from TOML.
func Decode(data []byte) (Plan, error) {
	var p Plan
	meta, err := toml.Decode(string(data), &p)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", shared.ErrInvalidPlan, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Plan{}, fmt.Errorf("%w: unknown key %q", shared.ErrInvalidPlan, undecoded[0].String())
	}
	for _, db := range p.Databases {
		if db.Name == "" {
			return Plan{}, fmt.Errorf("%w: database entry without a name", shared.ErrInvalidPlan)
		}
		for _, c := range db.Collections {
			if c.Name == "" {
				return Plan{}, fmt.Errorf("%w: collection entry without a name in %q", shared.ErrInvalidPlan, db.Name)
			}
		}
	}
	return p, nil
}

// Encode renders a plan as TOML.
func Encode(p Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads the plan at path.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Plan{}, fmt.Errorf("%w: plan file not found: %s", shared.ErrInvalidPlan, path)
		}
		return Plan{}, fmt.Errorf("failed to read plan: %w", err)
	}
	return Decode(data)
}

// Write stores p at path, replacing any existing file.
func Write(path string, p Plan) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
