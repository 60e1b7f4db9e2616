package department

import "context"

type Repo interface {
	// Create persists the department and any nested sub-departments in one
	// transaction.
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	UpdateName(ctx context.Context, id int64, name string) (*Department, error)
	Delete(ctx context.Context, id int64) error

	CreateSub(ctx context.Context, s *SubDepartment) error
	UpdateSubName(ctx context.Context, id int64, name string) (*SubDepartment, error)
	DeleteSub(ctx context.Context, id int64) error
	ListSubs(ctx context.Context, departmentID int64) ([]*SubDepartment, error)
}
