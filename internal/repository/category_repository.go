package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/selamtours/tour-booking-api/internal/model"
)

// CategoryRepo persists tour categories and their tour assignments.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a new CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugDashes = regexp.MustCompile(`[\s_-]+`)

// Slugify derives a URL-safe slug from a category name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Create inserts a category, deriving its slug from the name.  A
// duplicate name or slug is reported as ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	c.Slug = Slugify(c.Name)
	const q = `INSERT INTO categories (name, slug, description) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Slug, c.Description)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// List returns all categories ordered by name, each with the number of
// tours assigned to it.
func (r *CategoryRepo) List(ctx context.Context) ([]CategoryWithCount, error) {
	const q = `SELECT c.id, c.name, c.slug, c.description, COUNT(tc.tour_id)
	           FROM categories c
	           LEFT JOIN tour_categories tc ON tc.category_id = c.id
	           GROUP BY c.id
	           ORDER BY c.name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CategoryWithCount, 0)
	for rows.Next() {
		var c CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.TourCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryWithCount is a category plus how many tours carry it.
type CategoryWithCount struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	TourCount   uint32  `json:"tour_count"`
}

// Update renames a category, re-deriving its slug.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	c.Slug = Slugify(c.Name)
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category and its tour assignments.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM tour_categories WHERE category_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// AssignToTour replaces the set of categories on a tour.  Unknown
// category IDs are rejected with ErrCategoryNotFound before anything is
// written; the delete-and-insert runs in one transaction.
func (r *CategoryRepo) AssignToTour(ctx context.Context, tourID uint64, categoryIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var tourExists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tours WHERE id = ?)`, tourID).Scan(&tourExists); err != nil {
		return err
	}
	if !tourExists {
		return ErrTourNotFound
	}
	for _, cid := range categoryIDs {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, cid).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tour_categories WHERE tour_id = ?`, tourID); err != nil {
		return err
	}
	if len(categoryIDs) > 0 {
		q := `INSERT INTO tour_categories (tour_id, category_id) VALUES `
		args := make([]any, 0, len(categoryIDs)*2)
		for i, cid := range categoryIDs {
			if i > 0 {
				q += ","
			}
			q += "(?, ?)"
			args = append(args, tourID, cid)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
