package handler

import (
	"net/http"

	"salonbook/internal/schedules/service"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SettingsHandler struct {
	service service.SettingsService
	log     *logger.Logger
}

func NewSettingsHandler(service service.SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		log:     log,
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		writeError(h.log, w, "Get", err)
		return
	}
	writeSuccess(h.log, w, "Get", settings)
}

// Update applies only the fields present in the body.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var updates model.BusinessSettingsUpdate
	if err := decodeBody(r, &updates); err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	settings, err := h.service.Update(r.Context(), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}
	writeSuccess(h.log, w, "Update", settings)
}

func (h *SettingsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/settings", h.Get)
	router.PUT("/api/v1/settings", h.Update)
}
