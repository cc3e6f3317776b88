// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekplanner/internal/domain"
)

// Operation names accepted by FailOn.
const (
	OpCreateHeader   = "CreateHeader"
	OpUpdateHeader   = "UpdateHeader"
	OpListEntries    = "ListEntriesForPlan"
	OpDeleteEntry    = "DeleteEntry"
	OpBulkInsert     = "BulkInsertEntries"
	OpReplaceEntries = "ReplaceEntries"
)

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	users     []*domain.User
	sessions  map[string]*domain.Session
	recipes   []domain.Recipe
	favorites map[string][]string
	headers   map[string]domain.Header
	entries   []domain.Entry
	failures  map[string]error
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions:  make(map[string]*domain.Session),
		favorites: make(map[string][]string),
		headers:   make(map[string]domain.Header),
		failures:  make(map[string]error),
	}
}

// Ensure interfaces are met.
var _ domain.RecipeRepository = (*DB)(nil)
var _ domain.FavoriteRepository = (*DB)(nil)
var _ domain.WeekplanStore = (*DB)(nil)
var _ domain.EntryReplacer = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// FailOn makes every later call of the named operation return err. A nil err
// clears the failure.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failures, op)
		return
	}
	db.failures[op] = err
}

func (db *DB) failure(op string) error {
	return db.failures[op]
}

// --- RecipeRepository ---

// ListRecipes returns all recipes in insertion order.
func (db *DB) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Recipe, len(db.recipes))
	copy(out, db.recipes)
	return out, nil
}

// GetRecipe returns the recipe or nil when absent.
func (db *DB) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, r := range db.recipes {
		if r.ID == id {
			ret := r
			return &ret, nil
		}
	}
	return nil, nil
}

// CreateRecipe stores r, generating an id when r has none.
func (db *DB) CreateRecipe(ctx context.Context, r domain.Recipe) (*domain.Recipe, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, existing := range db.recipes {
		if existing.ID == r.ID {
			return nil, errors.New("recipe already exists")
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	db.recipes = append(db.recipes, r)
	return &r, nil
}

// DeleteRecipe removes a recipe authored by creatorID.
func (db *DB) DeleteRecipe(ctx context.Context, creatorID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, r := range db.recipes {
		if r.ID == id && r.CreatorID == creatorID {
			db.recipes = append(db.recipes[:i], db.recipes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- FavoriteRepository ---

// AddFavorite saves recipeID for userID. Saving twice is a no-op.
func (db *DB) AddFavorite(ctx context.Context, userID, recipeID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, id := range db.favorites[userID] {
		if id == recipeID {
			return nil
		}
	}
	db.favorites[userID] = append(db.favorites[userID], recipeID)
	return nil
}

// RemoveFavorite drops recipeID from the user's favorites.
func (db *DB) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.favorites[userID]
	for i, id := range list {
		if id == recipeID {
			db.favorites[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListFavorites returns the user's favorite recipe ids in the order saved.
func (db *DB) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return append([]string(nil), db.favorites[userID]...), nil
}

// --- WeekplanStore ---

// CreateHeader stores a new weekplan header.
func (db *DB) CreateHeader(ctx context.Context, ownerID, title string, startDate *time.Time) (*domain.Header, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpCreateHeader); err != nil {
		return nil, err
	}
	h := domain.Header{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		StartDate: domain.DateOnly(startDate),
		CreatedAt: time.Now().UTC(),
	}
	db.headers[h.ID] = h
	return &h, nil
}

// UpdateHeader changes the mutable header fields.
func (db *DB) UpdateHeader(ctx context.Context, id string, fields domain.HeaderUpdate) (*domain.Header, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpUpdateHeader); err != nil {
		return nil, err
	}
	h, ok := db.headers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	h.Title = fields.Title
	h.StartDate = domain.DateOnly(fields.StartDate)
	db.headers[id] = h
	return &h, nil
}

// GetHeader returns the header or nil when absent.
func (db *DB) GetHeader(ctx context.Context, id string) (*domain.Header, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	h, ok := db.headers[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

// ListHeadersForOwner returns the owner's plans, newest first.
func (db *DB) ListHeadersForOwner(ctx context.Context, ownerID string) ([]domain.Header, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Header, 0)
	for _, h := range db.headers {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteHeader removes a plan owned by ownerID together with its entries.
func (db *DB) DeleteHeader(ctx context.Context, ownerID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	h, ok := db.headers[id]
	if !ok || h.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(db.headers, id)
	db.removeEntries(id)
	return nil
}

// ListEntriesForPlan returns the plan's entries ordered by day, meal and sequence.
func (db *DB) ListEntriesForPlan(ctx context.Context, weekplanID string) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpListEntries); err != nil {
		return nil, err
	}
	out := make([]domain.Entry, 0)
	for _, e := range db.entries {
		if e.WeekplanID == weekplanID {
			out = append(out, e)
		}
	}
	domain.SortEntries(out)
	return out, nil
}

// DeleteEntry removes one entry. Deleting a missing entry is not an error.
func (db *DB) DeleteEntry(ctx context.Context, entryID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpDeleteEntry); err != nil {
		return err
	}
	for i, e := range db.entries {
		if e.ID == entryID {
			db.entries = append(db.entries[:i], db.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// BulkInsertEntries inserts all entries or none.
func (db *DB) BulkInsertEntries(ctx context.Context, creates []domain.EntryCreate) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpBulkInsert); err != nil {
		return nil, err
	}
	if err := db.validate(creates); err != nil {
		return nil, err
	}
	return db.insert(creates), nil
}

// ReplaceEntries swaps the plan's entries atomically.
func (db *DB) ReplaceEntries(ctx context.Context, weekplanID string, creates []domain.EntryCreate) ([]domain.Entry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.failure(OpReplaceEntries); err != nil {
		return nil, err
	}
	for _, c := range creates {
		if c.WeekplanID != weekplanID {
			return nil, errors.New("entry belongs to another weekplan")
		}
	}
	if err := db.validate(creates); err != nil {
		return nil, err
	}
	db.removeEntries(weekplanID)
	return db.insert(creates), nil
}

func (db *DB) validate(creates []domain.EntryCreate) error {
	for _, c := range creates {
		if _, ok := db.headers[c.WeekplanID]; !ok {
			return domain.ErrNotFound
		}
		if !(domain.SlotKey{Day: c.Day, Meal: c.Meal}).Valid() {
			return domain.ErrInvalidSlot
		}
	}
	return nil
}

func (db *DB) insert(creates []domain.EntryCreate) []domain.Entry {
	now := time.Now().UTC()
	out := make([]domain.Entry, 0, len(creates))
	for _, c := range creates {
		out = append(out, domain.Entry{
			ID:         uuid.NewString(),
			WeekplanID: c.WeekplanID,
			Day:        c.Day,
			Meal:       c.Meal,
			RecipeID:   c.RecipeID,
			Sequence:   c.Sequence,
			CreatedAt:  now,
		})
	}
	db.entries = append(db.entries, out...)
	return out
}

func (db *DB) removeEntries(weekplanID string) {
	kept := db.entries[:0]
	for _, e := range db.entries {
		if e.WeekplanID != weekplanID {
			kept = append(kept, e)
		}
	}
	db.entries = kept
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	// Return nil if not found
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
