package matrix

import (
	"testing"

	access "github.com/fieldline/access-go"
)

func assertInvariant(t *testing.T, e *Editor) {
	t.Helper()
	for label, row := range e.Rows() {
		want := row.Add && row.Update && row.View && row.Delete
		if row.All != want {
			t.Errorf("module %q: all=%v, conjunction=%v", label, row.All, want)
		}
	}
}

func TestNew_SeedsAllFalse(t *testing.T) {
	e := New(DefaultCatalog())

	rows := e.Rows()
	if len(rows) != len(DefaultCatalog().Labels) {
		t.Fatalf("expected %d modules, got %d", len(DefaultCatalog().Labels), len(rows))
	}
	for label, row := range rows {
		if row != (Actions{}) {
			t.Errorf("module %q: expected all-false seed, got %+v", label, row)
		}
	}
}

func TestToggle_AllForcesConcreteActions(t *testing.T) {
	e := New(DefaultCatalog())

	if err := e.Toggle("Order Lists", ActionAll); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	row, _ := e.Row("Order Lists")
	if row != (Actions{All: true, Add: true, Update: true, View: true, Delete: true}) {
		t.Errorf("toggling all on should grant every action, got %+v", row)
	}

	if err := e.Toggle("Order Lists", ActionAll); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	row, _ = e.Row("Order Lists")
	if row != (Actions{}) {
		t.Errorf("toggling all off should clear every action, got %+v", row)
	}
}

func TestToggle_ConcreteActionRecomputesAll(t *testing.T) {
	e := New(DefaultCatalog())

	// Scenario: all on, then view off.
	if err := e.Toggle("Order Lists", ActionAll); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle("Order Lists", ActionView); err != nil {
		t.Fatal(err)
	}

	row, _ := e.Row("Order Lists")
	if row.View {
		t.Error("view should be off")
	}
	if row.All {
		t.Error("all should recompute to false")
	}
	if !row.Add || !row.Update || !row.Delete {
		t.Error("other actions must keep their values")
	}

	// Completing the set by hand turns all back on.
	if err := e.Toggle("Order Lists", ActionView); err != nil {
		t.Fatal(err)
	}
	row, _ = e.Row("Order Lists")
	if !row.All {
		t.Error("all should recompute to true once the set is complete")
	}
}

func TestToggle_InvariantHoldsOverSequences(t *testing.T) {
	e := New(DefaultCatalog())

	seq := []struct{ label, action string }{
		{"Order Lists", ActionAdd},
		{"Order Lists", ActionUpdate},
		{"Order Lists", ActionView},
		{"Order Lists", ActionDelete},
		{"Products", ActionAll},
		{"Products", ActionDelete},
		{"Customers", ActionView},
		{"Customers", ActionView},
		{"Order Lists", ActionAll},
		{"Order Lists", ActionAdd},
	}
	for _, step := range seq {
		if err := e.Toggle(step.label, step.action); err != nil {
			t.Fatalf("Toggle(%s, %s): %v", step.label, step.action, err)
		}
		assertInvariant(t, e)
	}
}

func TestToggle_UnknownModuleAndAction(t *testing.T) {
	e := New(DefaultCatalog())

	if err := e.Toggle("No Such Module", ActionView); err == nil {
		t.Error("expected error for unknown module")
	}
	if err := e.Toggle("Order Lists", "export"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestGrantAllRevokeAll(t *testing.T) {
	e := New(DefaultCatalog())

	e.GrantAll()
	for label, row := range e.Rows() {
		if row != (Actions{All: true, Add: true, Update: true, View: true, Delete: true}) {
			t.Errorf("module %q not fully granted: %+v", label, row)
		}
	}
	assertInvariant(t, e)

	e.RevokeAll()
	for label, row := range e.Rows() {
		if row != (Actions{}) {
			t.Errorf("module %q not fully revoked: %+v", label, row)
		}
	}
	assertInvariant(t, e)
}

func TestToStorage_UsesStorageKeysAndStripsAll(t *testing.T) {
	e := New(DefaultCatalog())
	if err := e.Toggle("Order Lists", ActionAll); err != nil {
		t.Fatal(err)
	}

	stored := e.ToStorage()
	if _, ok := stored["Order Lists"]; ok {
		t.Error("storage shape must be keyed by storage key, not display label")
	}
	row, ok := stored["orders"]
	if !ok {
		t.Fatal("expected orders key in storage shape")
	}
	if row != (access.StoredActions{Add: true, Update: true, View: true, Delete: true}) {
		t.Errorf("unexpected stored row: %+v", row)
	}
}

func TestStorageKey_FallsBackToLabel(t *testing.T) {
	catalog := Catalog{
		Labels:      []string{"Forecasts"},
		StorageKeys: map[string]string{},
	}
	e := New(catalog)
	if err := e.Toggle("Forecasts", ActionView); err != nil {
		t.Fatal(err)
	}

	stored := e.ToStorage()
	if _, ok := stored["Forecasts"]; !ok {
		t.Error("unmapped label should fall back to itself as storage key")
	}
}

func TestLoad_MissingModulesSeedFalse_UnknownDropped(t *testing.T) {
	stored := access.StoredMatrix{
		"orders":      {Add: true, Update: true, View: true, Delete: true},
		"products":    {View: true},
		"notInCatalog": {View: true},
	}
	e := Load(DefaultCatalog(), stored)

	row, _ := e.Row("Order Lists")
	if !row.All {
		t.Error("complete stored row should derive all=true")
	}
	row, _ = e.Row("Products")
	if row.All || !row.View || row.Add {
		t.Errorf("partial stored row mis-hydrated: %+v", row)
	}
	row, _ = e.Row("Customers")
	if row != (Actions{}) {
		t.Errorf("module absent from storage should seed all-false, got %+v", row)
	}
	if _, ok := e.Row("notInCatalog"); ok {
		t.Error("modules outside the catalog must be dropped")
	}
}

func TestRoundTrip_ReproducesMatrix(t *testing.T) {
	e := New(DefaultCatalog())
	steps := []struct{ label, action string }{
		{"Order Lists", ActionAll},
		{"Products", ActionView},
		{"Customers", ActionAdd},
		{"Customers", ActionDelete},
		{"Reports", ActionAll},
		{"Reports", ActionUpdate},
	}
	for _, s := range steps {
		if err := e.Toggle(s.label, s.action); err != nil {
			t.Fatal(err)
		}
	}

	back := Load(DefaultCatalog(), e.ToStorage())

	want := e.Rows()
	got := back.Rows()
	if len(got) != len(want) {
		t.Fatalf("row count changed: %d vs %d", len(got), len(want))
	}
	for label, w := range want {
		if got[label] != w {
			t.Errorf("module %q changed across round-trip: %+v vs %+v", label, got[label], w)
		}
	}
}
