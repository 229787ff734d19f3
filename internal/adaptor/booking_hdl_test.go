package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/dto/response"
	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookingService struct {
	createBooking *response.BookingResponse
	createPayment *response.PaymentInstructionResponse
	createErr     error
	confirmResult *response.ConfirmPaymentResponse
	confirmErr    error
	cancelErr     error
}

func (s *stubBookingService) Create(ctx context.Context, userID uuid.UUID, req request.CreateBookingRequest) (*response.BookingResponse, *response.PaymentInstructionResponse, error) {
	return s.createBooking, s.createPayment, s.createErr
}

func (s *stubBookingService) ConfirmPayment(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool, req request.ConfirmPaymentRequest) (*response.ConfirmPaymentResponse, error) {
	return s.confirmResult, s.confirmErr
}

func (s *stubBookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) error {
	return s.cancelErr
}

func (s *stubBookingService) GetByID(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*response.BookingResponse, error) {
	return nil, &usecase.NotFoundError{Resource: "Booking"}
}

func (s *stubBookingService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) (*response.Paginated[response.BookingResponse], error) {
	return nil, nil
}

func (s *stubBookingService) ListAll(ctx context.Context, status string, page, limit int) (*response.Paginated[response.BookingResponse], error) {
	return nil, nil
}

func (s *stubBookingService) PaymentInstructions(ctx context.Context, bookingID, actorID uuid.UUID) (*response.PaymentInstructionResponse, error) {
	return nil, nil
}

func bookingRouter(service usecase.BookingService) *chi.Mux {
	handler := NewBookingHandler(service, nil, zap.NewNop())

	router := chi.NewRouter()
	router.Post("/bookings", handler.Create)
	router.Get("/bookings/{id}", handler.GetByID)
	router.Post("/bookings/{id}/confirm", handler.ConfirmPayment)
	router.Post("/bookings/{id}/cancel", handler.Cancel)
	return router
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := utils.SetUserContext(req.Context(), uuid.New(), "customer")
	return req.WithContext(ctx)
}

func TestCreateBookingSeatConflictMapsTo409(t *testing.T) {
	service := &stubBookingService{
		createErr: &usecase.SeatConflictError{SeatNumbers: []string{"A1", "A2"}},
	}

	rec := httptest.NewRecorder()
	body := `{"show_time_id":"` + uuid.NewString() + `","seat_ids":["` + uuid.NewString() + `"]}`
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings", body))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var parsed utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.False(t, parsed.Status)
	assert.Contains(t, parsed.Message, "A1")
}

func TestCreateBookingAdapterErrorMapsTo502(t *testing.T) {
	service := &stubBookingService{
		createErr: &usecase.AdapterError{Err: assert.AnError},
	}

	rec := httptest.NewRecorder()
	body := `{"show_time_id":"` + uuid.NewString() + `","seat_ids":["` + uuid.NewString() + `"]}`
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings", body))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateBookingValidationMapsTo400(t *testing.T) {
	service := &stubBookingService{
		createErr: &usecase.ValidationError{Fields: map[string]string{"seat_ids": "Maximum is 5"}},
	}

	rec := httptest.NewRecorder()
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingWithoutSessionMapsTo401(t *testing.T) {
	service := &stubBookingService{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	bookingRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingSuccessMapsTo201(t *testing.T) {
	service := &stubBookingService{
		createBooking: &response.BookingResponse{OrderID: "TICKET-1", Status: "pending"},
		createPayment: &response.PaymentInstructionResponse{OrderID: "TICKET-1", Amount: 90000},
	}

	rec := httptest.NewRecorder()
	body := `{"show_time_id":"` + uuid.NewString() + `","seat_ids":["` + uuid.NewString() + `"]}`
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetBookingNotFoundMapsTo404(t *testing.T) {
	service := &stubBookingService{}

	rec := httptest.NewRecorder()
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodGet, "/bookings/"+uuid.NewString(), ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelStateErrorMapsTo409(t *testing.T) {
	service := &stubBookingService{
		cancelErr: &usecase.StateError{Reason: "Booking is already cancelled"},
	}

	rec := httptest.NewRecorder()
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings/"+uuid.NewString()+"/cancel", ""))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfirmPaymentWithoutSessionMapsTo401(t *testing.T) {
	service := &stubBookingService{
		confirmResult: &response.ConfirmPaymentResponse{},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/"+uuid.NewString()+"/confirm", nil)
	bookingRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmPaymentByStrangerMapsTo403(t *testing.T) {
	service := &stubBookingService{
		confirmErr: &usecase.NotAuthorizedError{Reason: "Not your booking"},
	}

	rec := httptest.NewRecorder()
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings/"+uuid.NewString()+"/confirm", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConfirmPaymentSuccessMapsTo200(t *testing.T) {
	service := &stubBookingService{
		confirmResult: &response.ConfirmPaymentResponse{
			Booking: response.BookingResponse{OrderID: "TICKET-1", Status: "completed"},
		},
	}

	rec := httptest.NewRecorder()
	bookingRouter(service).ServeHTTP(rec, authedRequest(http.MethodPost, "/bookings/"+uuid.NewString()+"/confirm", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
}
