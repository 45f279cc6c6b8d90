package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/booking/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// PublicHandler serves the invite-token surface. The token in the path is the
// only credential; there is no account and no session.
type PublicHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewPublicHandler(service service.BookingService, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		log:     log,
	}
}

func (h *PublicHandler) ListSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	view, err := h.service.ListSlots(r.Context(), token)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PublicHandler) Claim(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	var input model.ClaimInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Claim", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Claim(r.Context(), token, &input)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Claim", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Claim", "operation", "WriteCreated", "error", err)
	}
}

func (h *PublicHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/booking/:token", h.ListSlots)
	router.POST("/api/v1/booking/:token/claim", h.Claim)
}
