package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"weekplanner/internal/domain"
)

// DefaultTitle is the title given to a plan that has never been saved.
const DefaultTitle = "My Weekplan"

// Mode is the editor state.
type Mode int

const (
	ModeLoading Mode = iota
	ModeViewing
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeViewing:
		return "viewing"
	case ModeEditing:
		return "editing"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// LoadReport describes what Load could not project into the draft.
type LoadReport struct {
	Missing []string
}

// SaveResult is returned by a successful Save.
type SaveResult struct {
	PlanID string
	// Created is true when this save assigned the plan its id.
	Created bool
	Entries []domain.Entry
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithStrictRecipes makes Load fail with a MissingRecipesError when a plan
// references recipes the catalog no longer has. By default those entries are
// dropped and listed in the LoadReport.
func WithStrictRecipes() EditorOption {
	return func(e *Editor) { e.strict = true }
}

// WithLogger sets the logger used for save failures.
func WithLogger(l *log.Logger) EditorOption {
	return func(e *Editor) { e.logger = l }
}

type snapshot struct {
	title     string
	startDate *time.Time
	draft     domain.Draft
}

// Editor holds one editing session of a weekplan. Edits stay in memory until
// Save replaces the persisted entries.
type Editor struct {
	store    domain.WeekplanStore
	catalog  domain.RecipeCatalog
	identity domain.IdentityFunc
	strict   bool
	logger   *log.Logger

	mu        sync.Mutex
	mode      Mode
	planID    string
	title     string
	startDate *time.Time
	draft     domain.Draft
	saved     snapshot
	saving    bool
}

// NewEditor creates an editor in ModeLoading. Call Load before anything else.
func NewEditor(store domain.WeekplanStore, catalog domain.RecipeCatalog, identity domain.IdentityFunc, opts ...EditorOption) *Editor {
	e := &Editor{
		store:    store,
		catalog:  catalog,
		identity: identity,
		logger:   log.Default(),
		mode:     ModeLoading,
		draft:    domain.NewDraft(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load starts the session. An empty planID opens a new, unsaved plan in edit
// mode; otherwise the stored plan is loaded in view mode. Load is refused
// while a save is in flight.
func (e *Editor) Load(ctx context.Context, planID string) (*LoadReport, error) {
	if planID == "" {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.saving {
			return nil, ErrSaveInProgress
		}
		e.planID = ""
		e.title = DefaultTitle
		e.startDate = nil
		e.draft = domain.NewDraft()
		e.saved = snapshot{title: DefaultTitle, draft: domain.NewDraft()}
		e.mode = ModeEditing
		return &LoadReport{}, nil
	}

	if e.Saving() {
		return nil, ErrSaveInProgress
	}
	header, err := e.store.GetHeader(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load weekplan %s: %w", planID, err)
	}
	if header == nil {
		return nil, fmt.Errorf("load weekplan %s: %w", planID, domain.ErrNotFound)
	}
	entries, err := e.store.ListEntriesForPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load weekplan %s entries: %w", planID, err)
	}
	recipes, err := e.catalog.GetAllRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recipe catalog: %w", err)
	}
	byID := make(map[string]domain.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	draft, missing := domain.DraftFromEntries(entries, func(id string) (domain.Recipe, bool) {
		r, ok := byID[id]
		return r, ok
	})
	if len(missing) > 0 && e.strict {
		return nil, &domain.MissingRecipesError{WeekplanID: planID, RecipeIDs: missing}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// A save may have started while the store was being read.
	if e.saving {
		return nil, ErrSaveInProgress
	}
	e.planID = header.ID
	e.title = header.Title
	e.startDate = header.StartDate
	e.draft = draft
	e.saved = snapshot{title: header.Title, startDate: header.StartDate, draft: draft.Clone()}
	e.mode = ModeViewing
	return &LoadReport{Missing: missing}, nil
}

// Edit switches a loaded plan from view to edit mode.
func (e *Editor) Edit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeViewing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.mode, ModeEditing)
	}
	e.mode = ModeEditing
	return nil
}

// Cancel discards unsaved edits. A plan that was never saved stays in edit
// mode with an empty draft.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEditing {
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, e.mode)
	}
	if e.saving {
		return ErrSaveInProgress
	}
	e.title = e.saved.title
	e.startDate = e.saved.startDate
	e.draft = e.saved.draft.Clone()
	if e.planID != "" {
		e.mode = ModeViewing
	}
	return nil
}

// SetTitle changes the plan title. Blank titles are accepted here and
// rejected by Save.
func (e *Editor) SetTitle(title string) error {
	return e.mutate(func() error {
		e.title = title
		return nil
	})
}

// SetStartDate changes the optional start date. Only the calendar day is
// kept.
func (e *Editor) SetStartDate(d *time.Time) error {
	return e.mutate(func() error {
		e.startDate = domain.DateOnly(d)
		return nil
	})
}

// Assign places recipe r in the slot, replacing the occupant of a breakfast,
// lunch or dinner slot and appending to a snack slot.
func (e *Editor) Assign(day int, meal domain.MealType, r domain.Recipe) error {
	return e.mutate(func() error {
		return e.draft.Assign(domain.SlotKey{Day: day, Meal: meal}, r.Ref())
	})
}

// Remove takes the first occurrence of recipeID out of the slot. It reports
// false when the slot does not hold the recipe.
func (e *Editor) Remove(day int, meal domain.MealType, recipeID string) (bool, error) {
	var removed bool
	err := e.mutate(func() error {
		removed = e.draft.Remove(domain.SlotKey{Day: day, Meal: meal}, recipeID)
		return nil
	})
	return removed, err
}

// Clear empties every slot.
func (e *Editor) Clear() error {
	return e.mutate(func() error {
		e.draft = domain.NewDraft()
		return nil
	})
}

func (e *Editor) mutate(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEditing {
		return ErrNotEditing
	}
	if e.saving {
		return ErrSaveInProgress
	}
	return fn()
}

// Mode returns the current state.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// PlanID returns the plan id, empty until the first successful header create.
func (e *Editor) PlanID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planID
}

// Title returns the current, possibly unsaved, title.
func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// StartDate returns the current start date.
func (e *Editor) StartDate() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startDate
}

// Draft returns a copy of the working draft.
func (e *Editor) Draft() domain.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Save persists the draft by replacing every stored entry of the plan. On
// failure the draft is kept so the caller can retry; without an EntryReplacer
// store the plan may be left with its entries deleted and not re-inserted.
func (e *Editor) Save(ctx context.Context) (*SaveResult, error) {
	e.mu.Lock()
	if e.mode != ModeEditing {
		e.mu.Unlock()
		return nil, ErrNotEditing
	}
	if e.saving {
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	title := strings.TrimSpace(e.title)
	if title == "" {
		e.mu.Unlock()
		return nil, domain.Invalid("title", "must not be empty")
	}
	ownerID, ok := "", false
	if e.identity != nil {
		ownerID, ok = e.identity(ctx)
	}
	if !ok {
		e.mu.Unlock()
		return nil, domain.Invalid("user", "sign in to save a weekplan")
	}
	e.saving = true
	planID := e.planID
	startDate := e.startDate
	draft := e.draft.Clone()
	e.mu.Unlock()

	// Once started, a save runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	res, err := e.persist(ctx, ownerID, planID, title, startDate, draft)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if res != nil && res.PlanID != "" {
		// Keep a freshly created id even on failure so a retry updates the
		// header instead of creating a second one.
		e.planID = res.PlanID
	}
	if err != nil {
		e.logger.Printf("weekplan save failed: plan=%q owner=%q: %v", e.planID, ownerID, err)
		return nil, err
	}
	e.title = title
	e.saved = snapshot{title: title, startDate: startDate, draft: draft}
	e.mode = ModeViewing
	return res, nil
}

func (e *Editor) persist(ctx context.Context, ownerID, planID, title string, startDate *time.Time, draft domain.Draft) (*SaveResult, error) {
	res := &SaveResult{PlanID: planID}
	if planID == "" {
		header, err := e.store.CreateHeader(ctx, ownerID, title, startDate)
		if err != nil {
			return res, &SaveError{Step: "create header", Err: err}
		}
		res.PlanID = header.ID
		res.Created = true
	} else {
		if _, err := e.store.UpdateHeader(ctx, planID, domain.HeaderUpdate{Title: title, StartDate: startDate}); err != nil {
			return res, &SaveError{PlanID: planID, Step: "update header", Err: err}
		}
	}

	creates := draft.Entries(res.PlanID)

	if r, ok := e.store.(domain.EntryReplacer); ok {
		entries, err := r.ReplaceEntries(ctx, res.PlanID, creates)
		if err != nil {
			return res, &SaveError{PlanID: res.PlanID, Step: "replace entries", Err: err}
		}
		res.Entries = entries
		return res, nil
	}

	existing, err := e.store.ListEntriesForPlan(ctx, res.PlanID)
	if err != nil {
		return res, &SaveError{PlanID: res.PlanID, Step: "list entries", Err: err}
	}
	for _, old := range existing {
		if err := e.store.DeleteEntry(ctx, old.ID); err != nil {
			return res, &SaveError{PlanID: res.PlanID, Step: "delete entry", Err: err}
		}
	}
	if len(creates) == 0 {
		return res, nil
	}
	entries, err := e.store.BulkInsertEntries(ctx, creates)
	if err != nil {
		return res, &SaveError{PlanID: res.PlanID, Step: "insert entries", Err: err}
	}
	res.Entries = entries
	return res, nil
}
