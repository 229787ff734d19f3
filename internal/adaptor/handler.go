package adaptor

import (
	"errors"
	"net/http"

	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/utils"

	"go.uber.org/zap"
)

// Handler aggregates all HTTP handlers for route wiring.
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Movie    *MovieHandler
	Room     *RoomHandler
	ShowTime *ShowTimeHandler
	Booking  *BookingHandler
}

// respondError maps service errors onto the HTTP taxonomy. Unrecognized
// errors become a 500 with a generic message.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		notFound      *usecase.NotFoundError
		validation    *usecase.ValidationError
		notAuthorized *usecase.NotAuthorizedError
		seatConflict  *usecase.SeatConflictError
		showConflict  *usecase.ShowtimeConflictError
		state         *usecase.StateError
		adapter       *usecase.AdapterError
	)

	switch {
	case errors.As(err, &validation):
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)
	case errors.As(err, &notFound):
		utils.ResponseNotFound(w, notFound.Error())
	case errors.As(err, &notAuthorized):
		utils.ResponseForbidden(w, notAuthorized.Error())
	case errors.As(err, &seatConflict):
		utils.ResponseConflict(w, seatConflict.Error(), map[string]any{"seats": seatConflict.SeatNumbers})
	case errors.As(err, &showConflict):
		utils.ResponseConflict(w, showConflict.Error(), nil)
	case errors.As(err, &state):
		utils.ResponseConflict(w, state.Error(), nil)
	case errors.As(err, &adapter):
		log.Error("upstream adapter failed", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment QR service is unavailable, please retry")
	default:
		log.Error("unhandled service error", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
