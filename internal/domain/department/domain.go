package department

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	CreatedBy      uuid.UUID        `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	SubDepartments []*SubDepartment `json:"sub_departments"`
}

// SubDepartment references its parent by id; related data is loaded with
// explicit queries, there are no back-pointers.
type SubDepartment struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
}
