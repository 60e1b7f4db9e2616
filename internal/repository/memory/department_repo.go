package memory

import (
	"context"
	"sync"
	"time"

	"orgdir/internal/domain/department"
	"orgdir/internal/repository"
)

var _ department.Repo = (*DepartmentRepo)(nil)

type DepartmentRepo struct {
	mu     sync.RWMutex
	nextID int64
	depts  map[int64]department.Department
	byName map[string]int64
	subs   map[int64]department.SubDepartment
}

func NewDepartmentRepo() *DepartmentRepo {
	return &DepartmentRepo{
		depts:  make(map[int64]department.Department),
		byName: make(map[string]int64),
		subs:   make(map[int64]department.SubDepartment),
	}
}

func (r *DepartmentRepo) Create(_ context.Context, d *department.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[d.Name]; ok {
		return repository.ErrConflict
	}

	r.nextID++
	d.ID = r.nextID
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	for _, s := range d.SubDepartments {
		r.nextID++
		s.ID = r.nextID
		s.DepartmentID = d.ID
		r.subs[s.ID] = *s
	}

	stored := *d
	stored.SubDepartments = nil
	r.depts[d.ID] = stored
	r.byName[d.Name] = d.ID
	return nil
}

func (r *DepartmentRepo) GetByID(_ context.Context, id int64) (*department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.depts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *DepartmentRepo) List(_ context.Context) ([]*department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*department.Department, 0, len(r.depts))
	for id := int64(1); id <= r.nextID; id++ {
		if d, ok := r.depts[id]; ok {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r *DepartmentRepo) UpdateName(_ context.Context, id int64, name string) (*department.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.depts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if other, ok := r.byName[name]; ok && other != id {
		return nil, repository.ErrConflict
	}

	delete(r.byName, d.Name)
	d.Name = name
	r.depts[id] = d
	r.byName[name] = id
	return &d, nil
}

func (r *DepartmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.depts[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.depts, id)
	delete(r.byName, d.Name)
	for sid, s := range r.subs {
		if s.DepartmentID == id {
			delete(r.subs, sid)
		}
	}
	return nil
}

func (r *DepartmentRepo) CreateSub(_ context.Context, s *department.SubDepartment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.depts[s.DepartmentID]; !ok {
		return repository.ErrNotFound
	}
	r.nextID++
	s.ID = r.nextID
	r.subs[s.ID] = *s
	return nil
}

func (r *DepartmentRepo) UpdateSubName(_ context.Context, id int64, name string) (*department.SubDepartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Name = name
	r.subs[id] = s
	return &s, nil
}

func (r *DepartmentRepo) DeleteSub(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.subs, id)
	return nil
}

func (r *DepartmentRepo) ListSubs(_ context.Context, departmentID int64) ([]*department.SubDepartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*department.SubDepartment
	for id := int64(1); id <= r.nextID; id++ {
		if s, ok := r.subs[id]; ok && s.DepartmentID == departmentID {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}
