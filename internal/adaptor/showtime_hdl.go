package adaptor

import (
	"encoding/json"
	"net/http"

	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/utils"

	"go.uber.org/zap"
)

type ShowTimeHandler struct {
	service usecase.ShowTimeService
	log     *zap.Logger
}

func NewShowTimeHandler(service usecase.ShowTimeService, log *zap.Logger) *ShowTimeHandler {
	return &ShowTimeHandler{
		service: service,
		log:     log.With(zap.String("handler", "showtime")),
	}
}

func (h *ShowTimeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShowTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseCreated(w, "Showtime scheduled", result)
}

func (h *ShowTimeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Showtime retrieved", result)
}

func (h *ShowTimeHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)

	result, err := h.service.ListAvailable(r.Context(), page, limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Showtimes retrieved", result)
}

func (h *ShowTimeHandler) SeatAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	result, err := h.service.SeatAvailability(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Seat availability retrieved", result)
}

func (h *ShowTimeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	var req request.UpdateShowTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Showtime updated", result)
}

func (h *ShowTimeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid showtime ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Showtime deleted", nil)
}
