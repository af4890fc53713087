package repository

import (
	"context"
	"database/sql"

	"github.com/arepabyte/comanda/internal/model"
)

// SectionRepo provides CRUD operations for dining-room sections.
// Sections only group tables; deleting one is refused while any table
// still references it.
type SectionRepo struct {
	db *sql.DB
}

// NewSectionRepo returns a new SectionRepo bound to the given database.
func NewSectionRepo(db *sql.DB) *SectionRepo { return &SectionRepo{db: db} }

// List returns all sections ordered by name.
func (r *SectionRepo) List(ctx context.Context) ([]model.Section, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM sections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sections := make([]model.Section, 0)
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetByID returns one section or ErrNotFound.
func (r *SectionRepo) GetByID(ctx context.Context, id uint64) (*model.Section, error) {
	var s model.Section
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM sections WHERE id = ?`, id).
		Scan(&s.ID, &s.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a section and returns its generated ID.  A duplicate
// name yields ErrConflict.
func (r *SectionRepo) Create(ctx context.Context, name string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO sections (name) VALUES (?)`, name)
	if err != nil {
		return 0, translateMySQL(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes a section.  It returns ErrConflict while tables still
// reference the section and ErrNotFound when the id is unknown.
func (r *SectionRepo) Delete(ctx context.Context, id uint64) error {
	var tables int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dining_tables WHERE section_id = ?`, id).Scan(&tables)
	if err != nil {
		return err
	}
	if tables > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return translateMySQL(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
