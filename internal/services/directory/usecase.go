// Package directory implements the department and sub-department operations
// behind the request guard.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"orgdir/internal/domain/department"
	"orgdir/internal/repository"
)

var (
	ErrNameTooShort = errors.New("name must be at least 2 characters long")
	ErrNameTaken    = errors.New("department name already in use")
	ErrNotFound     = repository.ErrNotFound
)

type Usecase struct {
	repo department.Repo
}

func New(repo department.Repo) *Usecase {
	return &Usecase{repo: repo}
}

// CreateDepartment stores the department, stamped with the creating admin,
// together with any nested sub-departments. Names are normalized to lower
// case before storage.
func (u *Usecase) CreateDepartment(ctx context.Context, createdBy uuid.UUID, name string, subNames []string) (*department.Department, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	subs := make([]*department.SubDepartment, 0, len(subNames))
	for _, sn := range subNames {
		sn, err := normalizeName(sn)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &department.SubDepartment{Name: sn})
	}

	d := &department.Department{
		Name:           name,
		CreatedBy:      createdBy,
		SubDepartments: subs,
	}
	if err := u.repo.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

// GetDepartment loads the department and its sub-departments with an explicit
// second query.
func (u *Usecase) GetDepartment(ctx context.Context, id int64) (*department.Department, error) {
	d, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.attachSubs(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *Usecase) ListDepartments(ctx context.Context) ([]*department.Department, error) {
	depts, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range depts {
		if err := u.attachSubs(ctx, d); err != nil {
			return nil, err
		}
	}
	return depts, nil
}

func (u *Usecase) UpdateDepartment(ctx context.Context, id int64, name string) (*department.Department, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	d, err := u.repo.UpdateName(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	if err := u.attachSubs(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *Usecase) DeleteDepartment(ctx context.Context, id int64) error {
	return u.repo.Delete(ctx, id)
}

func (u *Usecase) CreateSubDepartment(ctx context.Context, departmentID int64, name string) (*department.SubDepartment, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	s := &department.SubDepartment{DepartmentID: departmentID, Name: name}
	if err := u.repo.CreateSub(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *Usecase) UpdateSubDepartment(ctx context.Context, id int64, name string) (*department.SubDepartment, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return u.repo.UpdateSubName(ctx, id, name)
}

func (u *Usecase) DeleteSubDepartment(ctx context.Context, id int64) error {
	return u.repo.DeleteSub(ctx, id)
}

func (u *Usecase) attachSubs(ctx context.Context, d *department.Department) error {
	subs, err := u.repo.ListSubs(ctx, d.ID)
	if err != nil {
		return err
	}
	if subs == nil {
		subs = []*department.SubDepartment{}
	}
	d.SubDepartments = subs
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return "", ErrNameTooShort
	}
	return strings.ToLower(name), nil
}
