package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"weekplanner/internal/adapter/memory"
	"weekplanner/internal/app"
	"weekplanner/internal/domain"
)

// recordingStore is a WeekplanStore that records every call and lets tests
// override single operations (function-fields pattern).
type recordingStore struct {
	mu    sync.Mutex
	calls []string

	createFn  func(ctx context.Context, ownerID, title string, startDate *time.Time) (*domain.Header, error)
	updateFn  func(ctx context.Context, id string, fields domain.HeaderUpdate) (*domain.Header, error)
	getFn     func(ctx context.Context, id string) (*domain.Header, error)
	listFn    func(ctx context.Context, id string) ([]domain.Entry, error)
	deleteFn  func(ctx context.Context, entryID string) error
	insertFn  func(ctx context.Context, entries []domain.EntryCreate) ([]domain.Entry, error)
	inserted  []domain.EntryCreate
	createdAs string
}

func (m *recordingStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *recordingStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *recordingStore) CreateHeader(ctx context.Context, ownerID, title string, startDate *time.Time) (*domain.Header, error) {
	m.record("CreateHeader")
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, title, startDate)
	}
	m.createdAs = title
	return &domain.Header{ID: "wp-1", OwnerID: ownerID, Title: title}, nil
}

func (m *recordingStore) UpdateHeader(ctx context.Context, id string, fields domain.HeaderUpdate) (*domain.Header, error) {
	m.record("UpdateHeader")
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return &domain.Header{ID: id, Title: fields.Title}, nil
}

func (m *recordingStore) GetHeader(ctx context.Context, id string) (*domain.Header, error) {
	m.record("GetHeader")
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &domain.Header{ID: id, OwnerID: "u1", Title: "Stored"}, nil
}

func (m *recordingStore) ListHeadersForOwner(ctx context.Context, ownerID string) ([]domain.Header, error) {
	m.record("ListHeadersForOwner")
	return nil, nil
}

func (m *recordingStore) DeleteHeader(ctx context.Context, ownerID, id string) error {
	m.record("DeleteHeader")
	return nil
}

func (m *recordingStore) ListEntriesForPlan(ctx context.Context, id string) ([]domain.Entry, error) {
	m.record("ListEntriesForPlan")
	if m.listFn != nil {
		return m.listFn(ctx, id)
	}
	return nil, nil
}

func (m *recordingStore) DeleteEntry(ctx context.Context, entryID string) error {
	m.record("DeleteEntry:" + entryID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, entryID)
	}
	return nil
}

func (m *recordingStore) BulkInsertEntries(ctx context.Context, entries []domain.EntryCreate) ([]domain.Entry, error) {
	m.record("BulkInsertEntries")
	if m.insertFn != nil {
		return m.insertFn(ctx, entries)
	}
	m.inserted = append(m.inserted, entries...)
	out := make([]domain.Entry, 0, len(entries))
	for _, c := range entries {
		out = append(out, domain.Entry{WeekplanID: c.WeekplanID, Day: c.Day, Meal: c.Meal, RecipeID: c.RecipeID, Sequence: c.Sequence})
	}
	return out, nil
}

type staticCatalog map[string]domain.Recipe

func (c staticCatalog) GetAllRecipes(ctx context.Context) ([]domain.Recipe, error) {
	out := make([]domain.Recipe, 0, len(c))
	for _, r := range c {
		out = append(out, r)
	}
	return out, nil
}

func (c staticCatalog) GetRecipeByID(ctx context.Context, id string) (*domain.Recipe, error) {
	r, ok := c[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

var recipes = staticCatalog{
	"r1": {ID: "r1", Title: "Tomato Soup", Category: "Vegetarian"},
	"r2": {ID: "r2", Title: "Beef Stew", Category: "Beef"},
	"r5": {ID: "r5", Title: "Trail Mix", Category: "Snack"},
}

func signedIn(id string) domain.IdentityFunc {
	return func(context.Context) (string, bool) { return id, true }
}

func signedOut(context.Context) (string, bool) { return "", false }

func mustLoadNew(t *testing.T, ed *app.Editor) {
	t.Helper()
	if _, err := ed.Load(context.Background(), ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestEditor_StartDateKeepsOnlyTheDay(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	ed := app.NewEditor(db, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	start := time.Date(2026, 10, 12, 18, 30, 0, 0, time.UTC)
	if err := ed.SetStartDate(&start); err != nil {
		t.Fatalf("SetStartDate: %v", err)
	}
	want := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	if got := ed.StartDate(); got == nil || !got.Equal(want) {
		t.Fatalf("StartDate() = %v, want %v", got, want)
	}

	res, err := ed.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	h, err := db.GetHeader(ctx, res.PlanID)
	if err != nil || h == nil {
		t.Fatalf("GetHeader: %v, %v", h, err)
	}
	if h.StartDate == nil || !h.StartDate.Equal(want) {
		t.Errorf("stored start date = %v, want %v", h.StartDate, want)
	}
}

func TestEditor_NewPlanStartsEditing(t *testing.T) {
	ed := app.NewEditor(&recordingStore{}, recipes, signedIn("u1"))
	if ed.Mode() != app.ModeLoading {
		t.Fatalf("expected loading before Load, got %s", ed.Mode())
	}
	mustLoadNew(t, ed)

	if ed.Mode() != app.ModeEditing {
		t.Errorf("expected editing, got %s", ed.Mode())
	}
	if ed.Title() != app.DefaultTitle {
		t.Errorf("expected default title, got %q", ed.Title())
	}
	if ed.PlanID() != "" || ed.Draft().Len() != 0 {
		t.Errorf("expected empty unsaved plan")
	}
}

func TestEditor_SaveNewPlan_Week42(t *testing.T) {
	store := &recordingStore{}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	_ = ed.SetTitle("Week 42")
	if err := ed.Assign(0, domain.Dinner, recipes["r1"]); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	_ = ed.Assign(2, domain.Snack, recipes["r5"])
	_ = ed.Assign(2, domain.Snack, recipes["r5"])

	res, err := ed.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !res.Created || res.PlanID != "wp-1" {
		t.Errorf("unexpected result: %+v", res)
	}
	if store.createdAs != "Week 42" {
		t.Errorf("header created with title %q", store.createdAs)
	}

	wantCalls := []string{"CreateHeader", "ListEntriesForPlan", "BulkInsertEntries"}
	if diff := cmp.Diff(wantCalls, store.Calls()); diff != "" {
		t.Errorf("store calls (-want +got):\n%s", diff)
	}
	want := []domain.EntryCreate{
		{WeekplanID: "wp-1", Day: 0, Meal: domain.Dinner, RecipeID: "r1", Sequence: 0},
		{WeekplanID: "wp-1", Day: 2, Meal: domain.Snack, RecipeID: "r5", Sequence: 0},
		{WeekplanID: "wp-1", Day: 2, Meal: domain.Snack, RecipeID: "r5", Sequence: 1},
	}
	if diff := cmp.Diff(want, store.inserted); diff != "" {
		t.Errorf("inserted entries (-want +got):\n%s", diff)
	}
	if ed.Mode() != app.ModeViewing {
		t.Errorf("expected viewing after save, got %s", ed.Mode())
	}
}

func TestEditor_SaveValidationPerformsNoIO(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		identity domain.IdentityFunc
	}{
		{"empty title", "", signedIn("u1")},
		{"whitespace title", "   \t", signedIn("u1")},
		{"no identity", "Week 42", signedOut},
		{"nil identity", "Week 42", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &recordingStore{}
			ed := app.NewEditor(store, recipes, tc.identity)
			mustLoadNew(t, ed)
			_ = ed.SetTitle(tc.title)
			_ = ed.Assign(1, domain.Lunch, recipes["r2"])

			_, err := ed.Save(context.Background())
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if calls := store.Calls(); len(calls) != 0 {
				t.Errorf("expected zero store calls, got %v", calls)
			}
			if ed.Mode() != app.ModeEditing || ed.Draft().Len() != 1 {
				t.Error("draft must survive a rejected save")
			}
		})
	}
}

func TestEditor_SaveExistingPlanReplacesEntries(t *testing.T) {
	store := &recordingStore{
		listFn: func(ctx context.Context, id string) ([]domain.Entry, error) {
			return []domain.Entry{
				{ID: "e1", WeekplanID: id, Day: 0, Meal: domain.Dinner, RecipeID: "r1"},
				{ID: "e2", WeekplanID: id, Day: 3, Meal: domain.Lunch, RecipeID: "r2"},
			}, nil
		},
	}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	if _, err := ed.Load(context.Background(), "wp-9"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ed.Mode() != app.ModeViewing {
		t.Fatalf("expected viewing, got %s", ed.Mode())
	}
	if err := ed.Assign(0, domain.Dinner, recipes["r2"]); !errors.Is(err, app.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing while viewing, got %v", err)
	}

	if err := ed.Edit(); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	_ = ed.Assign(0, domain.Dinner, recipes["r2"])

	store.calls = nil
	res, err := ed.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Created {
		t.Error("existing plan must not be reported as created")
	}
	wantCalls := []string{"UpdateHeader", "ListEntriesForPlan", "DeleteEntry:e1", "DeleteEntry:e2", "BulkInsertEntries"}
	if diff := cmp.Diff(wantCalls, store.Calls()); diff != "" {
		t.Errorf("store calls (-want +got):\n%s", diff)
	}
}

func TestEditor_SaveEmptyPlanSkipsInsert(t *testing.T) {
	store := &recordingStore{}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	if _, err := ed.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, c := range store.Calls() {
		if c == "BulkInsertEntries" {
			t.Fatal("empty plan must not insert")
		}
	}
}

func TestEditor_SaveFailureKeepsDraft(t *testing.T) {
	cause := errors.New("connection reset")
	store := &recordingStore{
		insertFn: func(ctx context.Context, entries []domain.EntryCreate) ([]domain.Entry, error) {
			return nil, cause
		},
	}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)
	_ = ed.SetTitle("Week 42")
	_ = ed.Assign(4, domain.Breakfast, recipes["r1"])

	_, err := ed.Save(context.Background())
	if !errors.Is(err, app.ErrSaveFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected save failure wrapping cause, got %v", err)
	}
	var se *app.SaveError
	if !errors.As(err, &se) || se.Step != "insert entries" {
		t.Fatalf("expected SaveError at insert step, got %#v", err)
	}
	if ed.Mode() != app.ModeEditing || ed.Draft().Len() != 1 || ed.Saving() {
		t.Error("failed save must leave the editor editing with its draft")
	}
	if ed.PlanID() != "wp-1" {
		t.Errorf("created id should be kept for the retry, got %q", ed.PlanID())
	}

	// The retry updates the header it already created.
	store.insertFn = nil
	store.calls = nil
	res, err := ed.Save(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Created || store.Calls()[0] != "UpdateHeader" {
		t.Errorf("retry should update, calls=%v created=%v", store.Calls(), res.Created)
	}
}

func TestEditor_SaveRejectsOverlap(t *testing.T) {
	entered := make(chan struct{})
	proceed := make(chan struct{})
	store := &recordingStore{
		createFn: func(ctx context.Context, ownerID, title string, _ *time.Time) (*domain.Header, error) {
			close(entered)
			<-proceed
			return &domain.Header{ID: "wp-1", OwnerID: ownerID, Title: title}, nil
		},
	}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	done := make(chan error, 1)
	go func() {
		_, err := ed.Save(context.Background())
		done <- err
	}()
	<-entered

	if !ed.Saving() {
		t.Error("expected Saving() during save")
	}
	if _, err := ed.Save(context.Background()); !errors.Is(err, app.ErrSaveInProgress) {
		t.Errorf("expected ErrSaveInProgress, got %v", err)
	}
	if err := ed.Assign(0, domain.Snack, recipes["r5"]); !errors.Is(err, app.ErrSaveInProgress) {
		t.Errorf("expected mutation to be refused during save, got %v", err)
	}
	if _, err := ed.Load(context.Background(), "wp-other"); !errors.Is(err, app.ErrSaveInProgress) {
		t.Errorf("expected Load of another plan to be refused during save, got %v", err)
	}
	if _, err := ed.Load(context.Background(), ""); !errors.Is(err, app.ErrSaveInProgress) {
		t.Errorf("expected Load of a new plan to be refused during save, got %v", err)
	}
	close(proceed)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}

	if ed.PlanID() != "wp-1" || ed.Title() != app.DefaultTitle || ed.Mode() != app.ModeViewing {
		t.Errorf("unexpected state after save: plan=%q title=%q mode=%s", ed.PlanID(), ed.Title(), ed.Mode())
	}
	if ed.Draft().Len() != 0 {
		t.Errorf("draft changed during save: %d slots", ed.Draft().Len())
	}
	for _, call := range store.Calls() {
		if call == "GetHeader" {
			t.Errorf("refused Load must not read the store, calls: %v", store.Calls())
		}
	}
}

func TestEditor_SaveIgnoresCallerCancellation(t *testing.T) {
	store := &recordingStore{
		createFn: func(ctx context.Context, ownerID, title string, _ *time.Time) (*domain.Header, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &domain.Header{ID: "wp-1", OwnerID: ownerID, Title: title}, nil
		},
	}
	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ed.Save(ctx); err != nil {
		t.Fatalf("Save with canceled context: %v", err)
	}
}

func TestEditor_Cancel(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	ed := app.NewEditor(db, recipes, signedIn("u1"))
	mustLoadNew(t, ed)
	_ = ed.SetTitle("Original")
	_ = ed.Assign(0, domain.Lunch, recipes["r1"])

	// Cancelling a never-saved plan resets it but stays editing.
	if err := ed.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ed.Mode() != app.ModeEditing || ed.Draft().Len() != 0 || ed.Title() != app.DefaultTitle {
		t.Fatalf("unexpected state after cancel of new plan: mode=%s len=%d title=%q", ed.Mode(), ed.Draft().Len(), ed.Title())
	}

	_ = ed.SetTitle("Original")
	_ = ed.Assign(0, domain.Lunch, recipes["r1"])
	if _, err := ed.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved := ed.Draft()

	if err := ed.Cancel(); !errors.Is(err, app.ErrInvalidTransition) {
		t.Errorf("cancel while viewing: expected ErrInvalidTransition, got %v", err)
	}
	if err := ed.Edit(); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := ed.Edit(); !errors.Is(err, app.ErrInvalidTransition) {
		t.Errorf("double edit: expected ErrInvalidTransition, got %v", err)
	}
	_ = ed.SetTitle("Changed")
	_ = ed.Assign(0, domain.Lunch, recipes["r2"])
	_ = ed.Assign(5, domain.Snack, recipes["r5"])

	if err := ed.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ed.Mode() != app.ModeViewing {
		t.Errorf("expected viewing after cancel, got %s", ed.Mode())
	}
	if ed.Title() != "Original" || !ed.Draft().Equal(saved) {
		t.Errorf("cancel must restore the saved plan: title=%q slots=%v", ed.Title(), ed.Draft().Slots())
	}
}

func TestEditor_RemoveAndCardinality(t *testing.T) {
	ed := app.NewEditor(&recordingStore{}, recipes, signedIn("u1"))
	mustLoadNew(t, ed)

	_ = ed.Assign(3, domain.Dinner, recipes["r1"])
	_ = ed.Assign(3, domain.Dinner, recipes["r2"])
	slot := ed.Draft().Slot(domain.SlotKey{Day: 3, Meal: domain.Dinner})
	if len(slot) != 1 || slot[0].ID != "r2" {
		t.Fatalf("dinner should hold only r2, got %v", slot)
	}

	removed, err := ed.Remove(3, domain.Dinner, "r1")
	if err != nil || removed {
		t.Errorf("removing replaced recipe: removed=%v err=%v", removed, err)
	}
	removed, _ = ed.Remove(3, domain.Dinner, "r2")
	if !removed || ed.Draft().Len() != 0 {
		t.Errorf("expected r2 removed, len=%d", ed.Draft().Len())
	}

	if err := ed.Assign(7, domain.Dinner, recipes["r1"]); !errors.Is(err, domain.ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestEditor_SaveRoundTrip(t *testing.T) {
	stores := map[string]func(*memory.DB) domain.WeekplanStore{
		"atomic replace":    func(db *memory.DB) domain.WeekplanStore { return db },
		"delete and insert": func(db *memory.DB) domain.WeekplanStore { return struct{ domain.WeekplanStore }{db} },
	}
	for name, wrap := range stores {
		t.Run(name, func(t *testing.T) {
			db := memory.New()
			store := wrap(db)
			ctx := context.Background()

			ed := app.NewEditor(store, recipes, signedIn("u1"))
			mustLoadNew(t, ed)
			_ = ed.SetTitle("Round trip")
			_ = ed.Assign(0, domain.Breakfast, recipes["r1"])
			_ = ed.Assign(0, domain.Snack, recipes["r5"])
			_ = ed.Assign(0, domain.Snack, recipes["r2"])
			_ = ed.Assign(0, domain.Snack, recipes["r5"])
			_ = ed.Assign(6, domain.Dinner, recipes["r2"])
			res, err := ed.Save(ctx)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}

			// Edit again and save a smaller plan to exercise the wipe.
			_ = ed.Edit()
			_, _ = ed.Remove(0, domain.Snack, "r2")
			_, _ = ed.Remove(6, domain.Dinner, "r2")
			if _, err := ed.Save(ctx); err != nil {
				t.Fatalf("second Save: %v", err)
			}
			want := ed.Draft()

			reloaded := app.NewEditor(store, recipes, signedIn("u1"))
			report, err := reloaded.Load(ctx, res.PlanID)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(report.Missing) != 0 {
				t.Errorf("unexpected missing recipes: %v", report.Missing)
			}
			if diff := cmp.Diff(want.Slots(), reloaded.Draft().Slots()); diff != "" {
				t.Errorf("round trip (-saved +reloaded):\n%s", diff)
			}
			if reloaded.Title() != "Round trip" {
				t.Errorf("title = %q", reloaded.Title())
			}
		})
	}
}

func TestEditor_NonAtomicWindowIsReported(t *testing.T) {
	db := memory.New()
	store := struct{ domain.WeekplanStore }{db}
	ctx := context.Background()

	ed := app.NewEditor(store, recipes, signedIn("u1"))
	mustLoadNew(t, ed)
	_ = ed.Assign(1, domain.Lunch, recipes["r1"])
	res, err := ed.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	_ = ed.Edit()
	_ = ed.Assign(1, domain.Lunch, recipes["r2"])
	db.FailOn(memory.OpBulkInsert, errors.New("disk full"))
	if _, err := ed.Save(ctx); !errors.Is(err, app.ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}

	// The delete went through, the insert did not.
	entries, _ := db.ListEntriesForPlan(ctx, res.PlanID)
	if len(entries) != 0 {
		t.Errorf("expected wiped entries, got %d", len(entries))
	}
	slot := ed.Draft().Slot(domain.SlotKey{Day: 1, Meal: domain.Lunch})
	if len(slot) != 1 || slot[0].ID != "r2" {
		t.Errorf("draft lost after failure: %v", slot)
	}

	db.FailOn(memory.OpBulkInsert, nil)
	if _, err := ed.Save(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	entries, _ = db.ListEntriesForPlan(ctx, res.PlanID)
	if len(entries) != 1 || entries[0].RecipeID != "r2" {
		t.Errorf("retry did not restore entries: %+v", entries)
	}
}

func TestEditor_AtomicReplaceKeepsRowsOnFailure(t *testing.T) {
	db := memory.New()
	ctx := context.Background()

	ed := app.NewEditor(db, recipes, signedIn("u1"))
	mustLoadNew(t, ed)
	_ = ed.Assign(1, domain.Lunch, recipes["r1"])
	res, _ := ed.Save(ctx)

	_ = ed.Edit()
	_ = ed.Assign(1, domain.Lunch, recipes["r2"])
	db.FailOn(memory.OpReplaceEntries, errors.New("serialization failure"))
	if _, err := ed.Save(ctx); !errors.Is(err, app.ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	entries, _ := db.ListEntriesForPlan(ctx, res.PlanID)
	if len(entries) != 1 || entries[0].RecipeID != "r1" {
		t.Errorf("atomic replace must keep the old rows: %+v", entries)
	}
}

func TestEditor_LoadMissingRecipes(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	h, _ := db.CreateHeader(ctx, "u1", "Stale", nil)
	_, _ = db.BulkInsertEntries(ctx, []domain.EntryCreate{
		{WeekplanID: h.ID, Day: 0, Meal: domain.Dinner, RecipeID: "r1"},
		{WeekplanID: h.ID, Day: 1, Meal: domain.Dinner, RecipeID: "deleted"},
	})

	lenient := app.NewEditor(db, recipes, signedIn("u1"))
	report, err := lenient.Load(ctx, h.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"deleted"}, report.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if lenient.Draft().Len() != 1 {
		t.Errorf("expected unresolved entry to be dropped, len=%d", lenient.Draft().Len())
	}

	strict := app.NewEditor(db, recipes, signedIn("u1"), app.WithStrictRecipes())
	_, err = strict.Load(ctx, h.ID)
	var mre *domain.MissingRecipesError
	if !errors.As(err, &mre) || mre.WeekplanID != h.ID {
		t.Fatalf("expected MissingRecipesError, got %v", err)
	}
	if strict.Mode() != app.ModeLoading {
		t.Errorf("failed load must not leave loading, got %s", strict.Mode())
	}
}

func TestEditor_LoadUnknownPlan(t *testing.T) {
	ed := app.NewEditor(memory.New(), recipes, signedIn("u1"))
	if _, err := ed.Load(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
