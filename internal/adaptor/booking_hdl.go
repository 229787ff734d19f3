package adaptor

import (
	"encoding/json"
	"net/http"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/utils"
	"movie-ticket/pkg/vietqr"

	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	qr      *vietqr.Client
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, qr *vietqr.Client, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		qr:      qr,
		log:     log.With(zap.String("handler", "booking")),
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, payment, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseCreated(w, "Booking created, awaiting payment", map[string]any{
		"booking": booking,
		"payment": payment,
	})
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	result, err := h.service.GetByID(r.Context(), id, userID, isAdmin(r))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Booking retrieved", result)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)

	result, err := h.service.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved", result)
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 10)
	status := r.URL.Query().Get("status")

	result, err := h.service.ListAll(r.Context(), status, page, limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved", result)
}

func (h *BookingHandler) PaymentInstructions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	result, err := h.service.PaymentInstructions(r.Context(), id, userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Payment instructions", result)
}

func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	var req request.ConfirmPaymentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.service.ConfirmPayment(r.Context(), id, userID, isAdmin(r), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Payment confirmed", result)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	if err := h.service.Cancel(r.Context(), id, userID, isAdmin(r)); err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", nil)
}

// Banks lists the supported transfer banks for the payment screen.
func (h *BookingHandler) Banks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.qr.Banks(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Banks retrieved", banks)
}

func isAdmin(r *http.Request) bool {
	role, ok := utils.GetRoleFromContext(r.Context())
	return ok && role == string(entity.RoleAdmin)
}
