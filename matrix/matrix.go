// Package matrix provides the administrative permission-matrix editor and
// its translation to and from canonical storage shape.
//
// The editor holds one row of action flags per module in a fixed catalog.
// A row's "all" flag is derived: after every mutation it equals the
// conjunction of the four concrete actions. "all" is never persisted.
package matrix

import (
	"fmt"

	access "github.com/fieldline/access-go"
)

// Action names accepted by Toggle.
const (
	ActionAll    = "all"
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionView   = "view"
	ActionDelete = "delete"
)

// Actions is the editor-side permission row for one module.
type Actions struct {
	All    bool
	Add    bool
	Update bool
	View   bool
	Delete bool
}

// complete reports whether every concrete action is granted.
func (a Actions) complete() bool {
	return a.Add && a.Update && a.View && a.Delete
}

// Catalog is the fixed list of editable modules: display labels in
// presentation order plus the display-label to storage-key map. It is
// configuration owned outside the editor; modules absent from the catalog
// are never surfaced, whatever incoming data contains.
type Catalog struct {
	Labels      []string
	StorageKeys map[string]string
}

// StorageKey returns the canonical storage key for a display label,
// falling back to the label itself so forward-compatible module names
// survive translation.
func (c Catalog) StorageKey(label string) string {
	if key, ok := c.StorageKeys[label]; ok {
		return key
	}
	return label
}

// DefaultCatalog returns the console's module catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Labels: []string{
			"Dashboard",
			"Order Lists",
			"Products",
			"Customers",
			"Sales Teams",
			"Attendance",
			"Leave Requests",
			"Reports",
			"Settings",
		},
		StorageKeys: map[string]string{
			"Dashboard":      "dashboard",
			"Order Lists":    "orders",
			"Products":       "products",
			"Customers":      "customers",
			"Sales Teams":    "teams",
			"Attendance":     "attendance",
			"Leave Requests": "leaves",
			"Reports":        "reports",
			"Settings":       "settings",
		},
	}
}

// Editor builds and mutates a role's permission matrix.
type Editor struct {
	catalog Catalog
	rows    map[string]Actions
}

// New creates an editor seeded to all-false for every module in the
// catalog, the state of a newly created role.
func New(catalog Catalog) *Editor {
	e := &Editor{
		catalog: catalog,
		rows:    make(map[string]Actions, len(catalog.Labels)),
	}
	for _, label := range catalog.Labels {
		e.rows[label] = Actions{}
	}
	return e
}

// Load creates an editor rehydrated from a role's stored matrix. Modules
// missing from the stored record start all-false; stored modules outside
// the catalog are dropped.
func Load(catalog Catalog, stored access.StoredMatrix) *Editor {
	e := New(catalog)
	for _, label := range catalog.Labels {
		sa, ok := stored[catalog.StorageKey(label)]
		if !ok {
			continue
		}
		row := Actions{
			Add:    sa.Add,
			Update: sa.Update,
			View:   sa.View,
			Delete: sa.Delete,
		}
		row.All = row.complete()
		e.rows[label] = row
	}
	return e
}

// Catalog returns the editor's module catalog.
func (e *Editor) Catalog() Catalog { return e.catalog }

// Row returns the current action row for a module label.
func (e *Editor) Row(label string) (Actions, bool) {
	row, ok := e.rows[label]
	return row, ok
}

// Rows returns a copy of every row keyed by display label.
func (e *Editor) Rows() map[string]Actions {
	out := make(map[string]Actions, len(e.rows))
	for label, row := range e.rows {
		out[label] = row
	}
	return out
}

// Toggle flips one action of one module. Toggling "all" force-sets the
// four concrete actions to the new value; toggling a concrete action
// recomputes "all" as the conjunction of the four. Either way the row
// leaves with all == add && update && view && delete.
func (e *Editor) Toggle(label, action string) error {
	row, ok := e.rows[label]
	if !ok {
		return fmt.Errorf("matrix: unknown module %q", label)
	}

	switch action {
	case ActionAll:
		row.All = !row.All
		row.Add = row.All
		row.Update = row.All
		row.View = row.All
		row.Delete = row.All
	case ActionAdd:
		row.Add = !row.Add
	case ActionUpdate:
		row.Update = !row.Update
	case ActionView:
		row.View = !row.View
	case ActionDelete:
		row.Delete = !row.Delete
	default:
		return fmt.Errorf("matrix: unknown action %q", action)
	}

	if action != ActionAll {
		row.All = row.complete()
	}
	e.rows[label] = row
	return nil
}

// GrantAll grants every action on every module in the catalog.
func (e *Editor) GrantAll() {
	for label := range e.rows {
		e.rows[label] = Actions{All: true, Add: true, Update: true, View: true, Delete: true}
	}
}

// RevokeAll clears every action on every module in the catalog.
func (e *Editor) RevokeAll() {
	for label := range e.rows {
		e.rows[label] = Actions{}
	}
}

// ToStorage converts the matrix to canonical storage shape: rows keyed by
// storage key, the derived "all" flag stripped.
func (e *Editor) ToStorage() access.StoredMatrix {
	out := make(access.StoredMatrix, len(e.rows))
	for label, row := range e.rows {
		out[e.catalog.StorageKey(label)] = access.StoredActions{
			Add:    row.Add,
			Update: row.Update,
			View:   row.View,
			Delete: row.Delete,
		}
	}
	return out
}
