package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"orgdir/internal/repository/memory"
)

func newTestUsecase() *Usecase {
	return New(memory.NewDepartmentRepo())
}

func TestCreateDepartment_WithSubDepartments(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()
	admin := uuid.New()

	d, err := uc.CreateDepartment(ctx, admin, "Engineering", []string{"Backend", "Frontend"})
	require.NoError(t, err)
	require.NotZero(t, d.ID)
	require.Equal(t, "engineering", d.Name, "names are lowercased")
	require.Equal(t, admin, d.CreatedBy)
	require.Len(t, d.SubDepartments, 2)
	require.Equal(t, "backend", d.SubDepartments[0].Name)
	require.Equal(t, d.ID, d.SubDepartments[0].DepartmentID)

	got, err := uc.GetDepartment(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.SubDepartments, 2)
}

func TestCreateDepartment_Validation(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.CreateDepartment(ctx, uuid.New(), "x", nil)
	require.ErrorIs(t, err, ErrNameTooShort)

	_, err = uc.CreateDepartment(ctx, uuid.New(), "ok", []string{"y"})
	require.ErrorIs(t, err, ErrNameTooShort)
}

func TestCreateDepartment_DuplicateName(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.CreateDepartment(ctx, uuid.New(), "Sales", nil)
	require.NoError(t, err)

	// duplicate after lowercasing
	_, err = uc.CreateDepartment(ctx, uuid.New(), "SALES", nil)
	require.ErrorIs(t, err, ErrNameTaken)
}

func TestUpdateAndDeleteDepartment(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	d, err := uc.CreateDepartment(ctx, uuid.New(), "Sales", nil)
	require.NoError(t, err)
	other, err := uc.CreateDepartment(ctx, uuid.New(), "Marketing", nil)
	require.NoError(t, err)

	upd, err := uc.UpdateDepartment(ctx, d.ID, "Growth")
	require.NoError(t, err)
	require.Equal(t, "growth", upd.Name)

	_, err = uc.UpdateDepartment(ctx, other.ID, "Growth")
	require.ErrorIs(t, err, ErrNameTaken)

	require.NoError(t, uc.DeleteDepartment(ctx, d.ID))
	_, err = uc.GetDepartment(ctx, d.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, uc.DeleteDepartment(ctx, d.ID), ErrNotFound)
}

func TestSubDepartmentLifecycle(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	d, err := uc.CreateDepartment(ctx, uuid.New(), "Engineering", nil)
	require.NoError(t, err)

	s, err := uc.CreateSubDepartment(ctx, d.ID, "Platform")
	require.NoError(t, err)
	require.Equal(t, "platform", s.Name)
	require.Equal(t, d.ID, s.DepartmentID)

	_, err = uc.CreateSubDepartment(ctx, 9999, "Orphan")
	require.ErrorIs(t, err, ErrNotFound)

	upd, err := uc.UpdateSubDepartment(ctx, s.ID, "Infra")
	require.NoError(t, err)
	require.Equal(t, "infra", upd.Name)

	require.NoError(t, uc.DeleteSubDepartment(ctx, s.ID))
	require.ErrorIs(t, uc.DeleteSubDepartment(ctx, s.ID), ErrNotFound)

	got, err := uc.GetDepartment(ctx, d.ID)
	require.NoError(t, err)
	require.Empty(t, got.SubDepartments)
}

func TestDeleteDepartment_CascadesToSubDepartments(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	d, err := uc.CreateDepartment(ctx, uuid.New(), "Engineering", []string{"Backend"})
	require.NoError(t, err)
	sub := d.SubDepartments[0]

	require.NoError(t, uc.DeleteDepartment(ctx, d.ID))
	require.ErrorIs(t, uc.DeleteSubDepartment(ctx, sub.ID), ErrNotFound)
}
