package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"orgdir/internal/services/auth"
)

type Controller struct {
	log *zap.Logger
	uc  *Usecase
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log, uc: uc}
}

// Routes registers the protected department operations; the caller mounts
// them behind the guard.
func (c *Controller) Routes(r chi.Router) {
	r.Post("/departments", c.CreateDepartment)
	r.Get("/departments", c.ListDepartments)
	r.Get("/departments/{id}", c.GetDepartment)
	r.Put("/departments/{id}", c.UpdateDepartment)
	r.Delete("/departments/{id}", c.DeleteDepartment)
	r.Post("/departments/{id}/sub-departments", c.CreateSubDepartment)
	r.Put("/sub-departments/{id}", c.UpdateSubDepartment)
	r.Delete("/sub-departments/{id}", c.DeleteSubDepartment)
}

type createDepartmentRequest struct {
	Name           string        `json:"name"`
	SubDepartments []nameRequest `json:"subDepartments"`
}

type nameRequest struct {
	Name string `json:"name"`
}

func (c *Controller) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "auth required")
		return
	}

	var req createDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	subNames := make([]string, 0, len(req.SubDepartments))
	for _, s := range req.SubDepartments {
		subNames = append(subNames, s.Name)
	}

	c.log.Info("directory.create-department",
		zap.String("name", req.Name),
		zap.Int("sub_departments", len(subNames)),
		zap.String("created_by", ident.AccountID.String()))

	d, err := c.uc.CreateDepartment(r.Context(), ident.AccountID, req.Name, subNames)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (c *Controller) ListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := c.uc.ListDepartments(r.Context())
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depts)
}

func (c *Controller) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := c.uc.GetDepartment(r.Context(), id)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (c *Controller) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := c.uc.UpdateDepartment(r.Context(), id, req.Name)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (c *Controller) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.uc.DeleteDepartment(r.Context(), id); err != nil {
		c.mapErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) CreateSubDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := c.uc.CreateSubDepartment(r.Context(), id, req.Name)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (c *Controller) UpdateSubDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := c.uc.UpdateSubDepartment(r.Context(), id, req.Name)
	if err != nil {
		c.mapErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (c *Controller) DeleteSubDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.uc.DeleteSubDepartment(r.Context(), id); err != nil {
		c.mapErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (c *Controller) mapErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNameTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		c.log.Error("directory: internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
