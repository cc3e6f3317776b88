package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"weekplanner/internal/domain"
)

const headerColumns = "id, owner_id, title, start_date, created_at"

func scanHeader(row rowScanner) (domain.Header, error) {
	var h domain.Header
	var start sql.NullTime
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Title, &start, &h.CreatedAt); err != nil {
		return h, err
	}
	if start.Valid {
		h.StartDate = domain.DateOnly(&start.Time)
	}
	return h, nil
}

// nullDate converts a start date for the DATE column, dropping any time of day.
func nullDate(t *time.Time) sql.NullTime {
	d := domain.DateOnly(t)
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *d, Valid: true}
}

// CreateHeader stores a new weekplan header.
func (d *DB) CreateHeader(ctx context.Context, ownerID, title string, startDate *time.Time) (*domain.Header, error) {
	h, err := scanHeader(d.sql.QueryRowContext(ctx,
		"INSERT INTO weekplans ("+headerColumns+") VALUES ($1, $2, $3, $4, $5) RETURNING "+headerColumns,
		uuid.NewString(), ownerID, title, nullDate(startDate), time.Now().UTC(),
	))
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHeader changes the mutable header fields.
func (d *DB) UpdateHeader(ctx context.Context, id string, fields domain.HeaderUpdate) (*domain.Header, error) {
	h, err := scanHeader(d.sql.QueryRowContext(ctx,
		"UPDATE weekplans SET title = $1, start_date = $2 WHERE id = $3 RETURNING "+headerColumns,
		fields.Title, nullDate(fields.StartDate), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHeader returns the header or nil when absent.
func (d *DB) GetHeader(ctx context.Context, id string) (*domain.Header, error) {
	h, err := scanHeader(d.sql.QueryRowContext(ctx, "SELECT "+headerColumns+" FROM weekplans WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHeadersForOwner returns the owner's plans, newest first.
func (d *DB) ListHeadersForOwner(ctx context.Context, ownerID string) ([]domain.Header, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+headerColumns+" FROM weekplans WHERE owner_id = $1 ORDER BY created_at DESC, id ASC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Header, 0)
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHeader removes a plan owned by ownerID. Entries go with it through the
// foreign key cascade.
func (d *DB) DeleteHeader(ctx context.Context, ownerID, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM weekplans WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListEntriesForPlan returns the plan's entries ordered by day, meal and sequence.
func (d *DB) ListEntriesForPlan(ctx context.Context, weekplanID string) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, weekplan_id, day, meal, recipe_id, sequence, created_at FROM weekplan_entries WHERE weekplan_id = $1",
		weekplanID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entry, 0)
	for rows.Next() {
		var e domain.Entry
		var meal string
		if err := rows.Scan(&e.ID, &e.WeekplanID, &e.Day, &meal, &e.RecipeID, &e.Sequence, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Meal = domain.MealType(meal)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortEntries(out)
	return out, nil
}

// DeleteEntry removes one entry. Deleting a missing entry is not an error.
func (d *DB) DeleteEntry(ctx context.Context, entryID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM weekplan_entries WHERE id = $1", entryID)
	return err
}

// BulkInsertEntries inserts all entries in one transaction, so either all
// rows land or none do.
func (d *DB) BulkInsertEntries(ctx context.Context, creates []domain.EntryCreate) (_ []domain.Entry, err error) {
	if len(creates) == 0 {
		return []domain.Entry{}, nil
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	entries, err := insertEntries(ctx, tx, creates)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceEntries deletes the plan's entries and inserts creates in a single
// transaction.
func (d *DB) ReplaceEntries(ctx context.Context, weekplanID string, creates []domain.EntryCreate) (_ []domain.Entry, err error) {
	for _, c := range creates {
		if c.WeekplanID != weekplanID {
			return nil, errors.New("entry belongs to another weekplan")
		}
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the header so concurrent replaces of the same plan serialize.
	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM weekplans WHERE id = $1 FOR UPDATE", weekplanID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM weekplan_entries WHERE weekplan_id = $1", weekplanID); err != nil {
		return nil, err
	}
	entries, err := insertEntries(ctx, tx, creates)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return entries, nil
}

// entryColumns is the number of bind parameters per inserted entry row.
const entryColumns = 7

// maxEntriesPerInsert keeps one statement well below the 65535 bind
// parameter limit of the Postgres wire protocol.
const maxEntriesPerInsert = 1000

// chunkEntries splits creates into batches of at most size rows.
func chunkEntries(creates []domain.EntryCreate, size int) [][]domain.EntryCreate {
	var out [][]domain.EntryCreate
	for len(creates) > size {
		out = append(out, creates[:size:size])
		creates = creates[size:]
	}
	if len(creates) > 0 {
		out = append(out, creates)
	}
	return out
}

// insertEntries writes creates in batches. Callers run it inside a
// transaction so a failing batch discards the earlier ones.
func insertEntries(ctx context.Context, q querier, creates []domain.EntryCreate) ([]domain.Entry, error) {
	out := make([]domain.Entry, 0, len(creates))
	for _, c := range creates {
		if !(domain.SlotKey{Day: c.Day, Meal: c.Meal}).Valid() {
			return nil, fmt.Errorf("%w: day %d meal %q", domain.ErrInvalidSlot, c.Day, c.Meal)
		}
	}

	now := time.Now().UTC()
	for _, batch := range chunkEntries(creates, maxEntriesPerInsert) {
		var sb strings.Builder
		sb.WriteString("INSERT INTO weekplan_entries (id, weekplan_id, day, meal, recipe_id, sequence, created_at) VALUES ")
		args := make([]any, 0, len(batch)*entryColumns)
		for i, c := range batch {
			e := domain.Entry{
				ID:         uuid.NewString(),
				WeekplanID: c.WeekplanID,
				Day:        c.Day,
				Meal:       c.Meal,
				RecipeID:   c.RecipeID,
				Sequence:   c.Sequence,
				CreatedAt:  now,
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * entryColumns
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
			args = append(args, e.ID, e.WeekplanID, e.Day, string(e.Meal), e.RecipeID, e.Sequence, e.CreatedAt)
			out = append(out, e)
		}

		if _, err := q.ExecContext(ctx, sb.String(), args...); err != nil {
			if isForeignKeyViolation(err) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
	}
	return out, nil
}
