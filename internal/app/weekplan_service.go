package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"weekplanner/internal/domain"
)

// SlotAssignment is the client's desired content of one grid cell.
type SlotAssignment struct {
	Day       int      `json:"day"`
	Meal      string   `json:"meal"`
	RecipeIDs []string `json:"recipeIds"`
}

// SavePlanInput is a full plan as submitted by a client. An empty ID creates
// a new plan.
type SavePlanInput struct {
	ID        string           `json:"id,omitempty"`
	Title     string           `json:"title"`
	StartDate *time.Time       `json:"startDate,omitempty"`
	Slots     []SlotAssignment `json:"slots"`
}

// PlanView is a weekplan as presented to clients.
type PlanView struct {
	Header  domain.Header `json:"header"`
	Slots   []domain.Slot `json:"slots"`
	Missing []string      `json:"missingRecipes,omitempty"`
}

// WeekplanService drives editor sessions on behalf of HTTP clients.
type WeekplanService struct {
	store   domain.WeekplanStore
	catalog domain.RecipeCatalog
	opts    []EditorOption

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewWeekplanService creates a WeekplanService. The options are applied to
// every editor it opens.
func NewWeekplanService(store domain.WeekplanStore, catalog domain.RecipeCatalog, opts ...EditorOption) *WeekplanService {
	return &WeekplanService{
		store:    store,
		catalog:  catalog,
		opts:     opts,
		inflight: make(map[string]struct{}),
	}
}

// List returns the owner's plans.
func (s *WeekplanService) List(ctx context.Context, ownerID string) ([]domain.Header, error) {
	return s.store.ListHeadersForOwner(ctx, ownerID)
}

// Get loads a plan owned by ownerID.
func (s *WeekplanService) Get(ctx context.Context, ownerID, id string) (*PlanView, error) {
	if err := s.checkOwner(ctx, ownerID, id); err != nil {
		return nil, err
	}
	ed := s.editor(ownerID)
	report, err := ed.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, ed, report.Missing)
}

// Save replaces the plan with the submitted content and reports whether a new
// plan was created.
func (s *WeekplanService) Save(ctx context.Context, ownerID string, in SavePlanInput) (*PlanView, bool, error) {
	if in.ID != "" {
		if !s.acquire(in.ID) {
			return nil, false, ErrSaveInProgress
		}
		defer s.release(in.ID)
		if err := s.checkOwner(ctx, ownerID, in.ID); err != nil {
			return nil, false, err
		}
	}

	ed := s.editor(ownerID)
	if _, err := ed.Load(ctx, in.ID); err != nil {
		var missing *domain.MissingRecipesError
		if !errors.As(err, &missing) {
			return nil, false, err
		}
		// The submitted slots replace the stale ones, so strict mode does not
		// block overwriting them.
		ed = s.editor(ownerID, func(e *Editor) { e.strict = false })
		if _, err := ed.Load(ctx, in.ID); err != nil {
			return nil, false, err
		}
	}
	if ed.Mode() == ModeViewing {
		if err := ed.Edit(); err != nil {
			return nil, false, err
		}
	}
	if err := s.apply(ctx, ed, in); err != nil {
		return nil, false, err
	}

	res, err := ed.Save(ctx)
	if err != nil {
		return nil, false, err
	}
	view, err := s.view(ctx, ed, nil)
	if err != nil {
		return nil, res.Created, err
	}
	return view, res.Created, nil
}

// Delete removes a plan and its entries.
func (s *WeekplanService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.checkOwner(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.DeleteHeader(ctx, ownerID, id)
}

func (s *WeekplanService) apply(ctx context.Context, ed *Editor, in SavePlanInput) error {
	if err := ed.SetTitle(in.Title); err != nil {
		return err
	}
	if err := ed.SetStartDate(in.StartDate); err != nil {
		return err
	}
	if err := ed.Clear(); err != nil {
		return err
	}
	seen := make(map[domain.SlotKey]bool)
	for _, slot := range in.Slots {
		meal, err := domain.ParseMealType(slot.Meal)
		if err != nil {
			return domain.Invalid("meal", "unknown meal type %q", slot.Meal)
		}
		if meal.SingleOccupant() {
			if len(slot.RecipeIDs) > 1 {
				return domain.Invalid("slots", "%s holds at most one recipe", meal)
			}
			key := domain.SlotKey{Day: slot.Day, Meal: meal}
			if seen[key] {
				return domain.Invalid("slots", "%s is listed more than once", key)
			}
			seen[key] = true
		}
		for _, id := range slot.RecipeIDs {
			r, err := s.catalog.GetRecipeByID(ctx, id)
			if err != nil {
				return err
			}
			if r == nil {
				return domain.Invalid("recipeIds", "unknown recipe %q", id)
			}
			if err := ed.Assign(slot.Day, meal, *r); err != nil {
				if errors.Is(err, domain.ErrInvalidSlot) {
					return domain.Invalid("slots", "%v", err)
				}
				return err
			}
		}
	}
	return nil
}

func (s *WeekplanService) view(ctx context.Context, ed *Editor, missing []string) (*PlanView, error) {
	h, err := s.store.GetHeader(ctx, ed.PlanID())
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, domain.ErrNotFound
	}
	return &PlanView{Header: *h, Slots: ed.Draft().Slots(), Missing: missing}, nil
}

func (s *WeekplanService) checkOwner(ctx context.Context, ownerID, id string) error {
	h, err := s.store.GetHeader(ctx, id)
	if err != nil {
		return fmt.Errorf("get weekplan: %w", err)
	}
	if h == nil || h.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	return nil
}

func (s *WeekplanService) editor(ownerID string, extra ...EditorOption) *Editor {
	identity := func(context.Context) (string, bool) { return ownerID, ownerID != "" }
	opts := append(append([]EditorOption(nil), s.opts...), extra...)
	return NewEditor(s.store, s.catalog, identity, opts...)
}

func (s *WeekplanService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *WeekplanService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}
