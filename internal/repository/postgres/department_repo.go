package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orgdir/internal/domain/department"
)

var _ department.Repo = (*DepartmentRepo)(nil)

type DepartmentRepo struct {
	db *DB
}

func NewDepartmentRepo(db *DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

const (
	qDeptInsert = `
INSERT INTO departments (name, created_by)
VALUES ($1, $2)
RETURNING id, name, created_by, created_at;`

	qDeptByID = `
SELECT id, name, created_by, created_at
FROM departments
WHERE id = $1;`

	qDeptList = `
SELECT id, name, created_by, created_at
FROM departments
ORDER BY id;`

	qDeptUpdateName = `
UPDATE departments
SET name = $2
WHERE id = $1
RETURNING id, name, created_by, created_at;`

	qDeptDelete = `DELETE FROM departments WHERE id = $1;`

	qSubInsert = `
INSERT INTO sub_departments (department_id, name)
VALUES ($1, $2)
RETURNING id;`

	qSubUpdateName = `
UPDATE sub_departments
SET name = $2
WHERE id = $1
RETURNING id, department_id, name;`

	qSubDelete = `DELETE FROM sub_departments WHERE id = $1;`

	qSubsByDept = `
SELECT id, department_id, name
FROM sub_departments
WHERE department_id = $1
ORDER BY id;`
)

// Create inserts the department together with its nested sub-departments in a
// single transaction, so a failed sub-department insert leaves no partial
// write behind.
func (r *DepartmentRepo) Create(ctx context.Context, d *department.Department) (err error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, qDeptInsert, d.Name, d.CreatedBy)
	if err = row.Scan(&d.ID, &d.Name, &d.CreatedBy, &d.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("department insert: %w", err)
	}

	for _, s := range d.SubDepartments {
		s.DepartmentID = d.ID
		if err = tx.QueryRow(ctx, qSubInsert, d.ID, s.Name).Scan(&s.ID); err != nil {
			return fmt.Errorf("sub-department insert: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var d department.Department
	if err := scanDepartment(r.db.Pool.QueryRow(ctx, qDeptByID, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*department.Department, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qDeptList)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var out []*department.Department
	for rows.Next() {
		var d department.Department
		if err := scanDepartment(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return out, nil
}

func (r *DepartmentRepo) UpdateName(ctx context.Context, id int64, name string) (*department.Department, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var d department.Department
	err := scanDepartment(r.db.Pool.QueryRow(ctx, qDeptUpdateName, id, name), &d)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &d, nil
}

// Delete removes the department; sub-departments go with it via ON DELETE
// CASCADE.
func (r *DepartmentRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qDeptDelete, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DepartmentRepo) CreateSub(ctx context.Context, s *department.SubDepartment) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qSubInsert, s.DepartmentID, s.Name).Scan(&s.ID); err != nil {
		if isForeignKeyViolation(err) {
			// parent department is gone
			return ErrNotFound
		}
		return fmt.Errorf("sub-department insert: %w", err)
	}
	return nil
}

func (r *DepartmentRepo) UpdateSubName(ctx context.Context, id int64, name string) (*department.SubDepartment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s department.SubDepartment
	if err := r.db.Pool.QueryRow(ctx, qSubUpdateName, id, name).Scan(&s.ID, &s.DepartmentID, &s.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update sub-department: %w", err)
	}
	return &s, nil
}

func (r *DepartmentRepo) DeleteSub(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qSubDelete, id)
	if err != nil {
		return fmt.Errorf("delete sub-department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DepartmentRepo) ListSubs(ctx context.Context, departmentID int64) ([]*department.SubDepartment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSubsByDept, departmentID)
	if err != nil {
		return nil, fmt.Errorf("query sub-departments: %w", err)
	}
	defer rows.Close()

	var out []*department.SubDepartment
	for rows.Next() {
		var s department.SubDepartment
		if err := rows.Scan(&s.ID, &s.DepartmentID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan sub-department: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sub-departments: %w", err)
	}
	return out, nil
}

func scanDepartment(row pgx.Row, out *department.Department) error {
	if err := row.Scan(&out.ID, &out.Name, &out.CreatedBy, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan department: %w", err)
	}
	return nil
}
