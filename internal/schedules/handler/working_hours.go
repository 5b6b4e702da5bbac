package handler

import (
	"net/http"

	"salonbook/internal/schedules/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkingHoursHandler struct {
	service service.WorkingHoursService
	log     *logger.Logger
}

func NewWorkingHoursHandler(service service.WorkingHoursService, log *logger.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{
		service: service,
		log:     log,
	}
}

// Create accepts a row; is_active defaults to true when omitted.
func (h *WorkingHoursHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	wh := model.WorkingHours{IsActive: true}
	if err := decodeBody(r, &wh); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &wh); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, wh); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkingHoursHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wh, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}
	writeSuccess(h.log, w, "GetByID", wh)
}

func (h *WorkingHoursHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	rows, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, rows, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *WorkingHoursHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	technicianID := r.URL.Query().Get("technician_id")
	if technicianID == "" {
		writeError(h.log, w, "Search", apperrors.InvalidInput("technician_id query parameter is required"))
		return
	}

	rows, err := h.service.GetByTechnician(r.Context(), technicianID)
	if err != nil {
		writeError(h.log, w, "Search", err)
		return
	}
	writeSuccess(h.log, w, "Search", rows)
}

func (h *WorkingHoursHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.WorkingHoursUpdate
	if err := decodeBody(r, &updates); err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	wh, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}
	writeSuccess(h.log, w, "Update", wh)
}

func (h *WorkingHoursHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *WorkingHoursHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/working-hours", h.Create)
	router.GET("/api/v1/working-hours", h.GetAll)
	router.GET("/api/v1/working-hours/search", h.Search)
	router.GET("/api/v1/working-hours/id/:id", h.GetByID)
	router.PATCH("/api/v1/working-hours/id/:id", h.Update)
	router.DELETE("/api/v1/working-hours/id/:id", h.Delete)
}
