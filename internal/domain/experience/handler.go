package experience

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mwork/experience-api/internal/pkg/errorhandler"
	"github.com/mwork/experience-api/internal/pkg/response"
)

const (
	defaultPageLimit   = 20
	maxPageLimit       = 100
	defaultRecentLimit = 3
)

// Handler handles work experience HTTP requests
type Handler struct {
	service      *Service
	maxBodyBytes int64
}

// NewHandler creates new work experience handler
func NewHandler(service *Service, maxBodyBytes int64) *Handler {
	return &Handler{service: service, maxBodyBytes: maxBodyBytes}
}

// Create handles POST /experiences
// @Summary Create work experience
// @Tags Experience
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Failure 422 {object} response.Response
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	in, err := ValidateCreate(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	exp, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, Serialize(*exp))
}

// List handles GET /experiences
// @Summary List work experience, newest first
// @Tags Experience
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {array} Response
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pagination := &Pagination{
		Page:  parseIntParam(query.Get("page"), 1, 1, 0),
		Limit: parseIntParam(query.Get("limit"), defaultPageLimit, 1, maxPageLimit),
	}

	items, total, err := h.service.List(r.Context(), pagination)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.WithMeta(w, SerializeList(items), response.NewMeta(total, pagination.Page, pagination.Limit))
}

// Recent handles GET /experiences/recent
// @Summary Most recent work experience by start date
// @Tags Experience
// @Produce json
// @Param limit query int false "Number of records"
// @Success 200 {array} Response
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), defaultRecentLimit, 1, maxPageLimit)

	items, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, SerializeList(items))
}

// Locations handles GET /experiences/locations
// @Summary Work experience grouped by location
// @Tags Experience
// @Produce json
// @Success 200 {array} LocationGroup
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Locations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, groups)
}

// GetByID handles GET /experiences/{id}
// @Summary Get work experience
// @Tags Experience
// @Produce json
// @Param id path string true "Experience ID"
// @Success 200 {object} Response
// @Failure 404 {object} response.Response
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	exp, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, Serialize(*exp))
}

// Update handles PUT and PATCH /experiences/{id}.
// Both methods take a sparse body; absent fields are left unchanged.
// @Summary Update work experience
// @Tags Experience
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Experience ID"
// @Success 200 {object} Response
// @Failure 422 {object} response.Response
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	patch, err := ValidateUpdate(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	exp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, Serialize(*exp))
}

// Delete handles DELETE /experiences/{id}
// @Summary Delete work experience
// @Tags Experience
// @Security BearerAuth
// @Param id path string true "Experience ID"
// @Success 204
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := response.ReadBody(w, r, h.maxBodyBytes)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.PayloadTooLarge(w)
			return nil, false
		}
		response.BadRequest(w, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if verr, ok := AsValidationError(err); ok {
		errorhandler.HandleValidationError(ctx, w, verr.Details())
		return
	}

	switch {
	case errors.Is(err, ErrInvalidID):
		errorhandler.HandleError(ctx, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid experience ID", err)
	case errors.Is(err, ErrExperienceNotFound):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "NOT_FOUND", "Experience not found", err)
	case errors.Is(err, ErrDuplicateID):
		errorhandler.HandleError(ctx, w, http.StatusConflict, "CONFLICT", "Experience already exists", err)
	case errors.Is(err, ErrExperienceConstraint):
		errorhandler.HandleError(ctx, w, http.StatusUnprocessableEntity, "CONSTRAINT_VIOLATION", "Experience violates a storage constraint", err)
	default:
		errorhandler.HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}

// parseIntParam parses a positive query value, clamping it to max when max > 0.
func parseIntParam(raw string, def, min, max int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
