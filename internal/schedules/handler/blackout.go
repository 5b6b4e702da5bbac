package handler

import (
	"net/http"
	"time"

	"salonbook/internal/schedules/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BlackoutHandler struct {
	service service.BlackoutService
	log     *logger.Logger
}

func NewBlackoutHandler(service service.BlackoutService, log *logger.Logger) *BlackoutHandler {
	return &BlackoutHandler{
		service: service,
		log:     log,
	}
}

func (h *BlackoutHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p model.BlackoutPeriod
	if err := decodeBody(r, &p); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &p); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, p); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BlackoutHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}
	writeSuccess(h.log, w, "GetByID", p)
}

func (h *BlackoutHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	periods, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, periods, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

// Search lists a technician's periods, optionally limited to those
// overlapping [from, to). Both bounds are RFC3339.
func (h *BlackoutHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	technicianID := query.Get("technician_id")
	if technicianID == "" {
		writeError(h.log, w, "Search", apperrors.InvalidInput("technician_id query parameter is required"))
		return
	}

	from, err := parseOptionalTime(query.Get("from"), "from")
	if err != nil {
		writeError(h.log, w, "Search", err)
		return
	}
	to, err := parseOptionalTime(query.Get("to"), "to")
	if err != nil {
		writeError(h.log, w, "Search", err)
		return
	}

	periods, err := h.service.GetByTechnician(r.Context(), technicianID, from, to)
	if err != nil {
		writeError(h.log, w, "Search", err)
		return
	}
	writeSuccess(h.log, w, "Search", periods)
}

func (h *BlackoutHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BlackoutPeriodUpdate
	if err := decodeBody(r, &updates); err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	p, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}
	writeSuccess(h.log, w, "Update", p)
}

func (h *BlackoutHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BlackoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/blackouts", h.Create)
	router.GET("/api/v1/blackouts", h.GetAll)
	router.GET("/api/v1/blackouts/search", h.Search)
	router.GET("/api/v1/blackouts/id/:id", h.GetByID)
	router.PATCH("/api/v1/blackouts/id/:id", h.Update)
	router.DELETE("/api/v1/blackouts/id/:id", h.Delete)
}

func parseOptionalTime(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " format, must be RFC3339")
	}
	return &t, nil
}
