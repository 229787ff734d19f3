package usecase

import (
	"context"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/dto/response"
	"movie-ticket/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowTimeService interface {
	Create(ctx context.Context, req request.CreateShowTimeRequest) (*response.ShowTimeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.ShowTimeResponse, error)
	ListByMovie(ctx context.Context, movieID uuid.UUID) ([]response.ShowTimeResponse, error)
	ListAvailable(ctx context.Context, page, limit int) (*response.Paginated[response.ShowTimeResponse], error)
	Update(ctx context.Context, id uuid.UUID, req request.UpdateShowTimeRequest) (*response.ShowTimeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SeatAvailability(ctx context.Context, showTimeID uuid.UUID) (*response.SeatAvailabilityResponse, error)
}

type showTimeService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewShowTimeService(repo *repository.Repository, config *utils.Config, log *zap.Logger) ShowTimeService {
	return &showTimeService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "showtime")),
	}
}

func (s *showTimeService) toResponse(showTime *entity.ShowTime, movie *entity.Movie, room *entity.Room) response.ShowTimeResponse {
	resp := response.ShowTimeResponse{
		ID:        showTime.ID.String(),
		MovieID:   showTime.MovieID.String(),
		RoomID:    showTime.RoomID.String(),
		StartTime: showTime.StartTime,
		Price:     showTime.Price,
		Format:    string(showTime.Format),
		Status:    string(showTime.Status),
	}

	if movie != nil {
		resp.MovieTitle = movie.Title
		// End time shown to clients excludes the cleanup buffer.
		resp.EndTime = showTime.StartTime.Add(time.Duration(movie.DurationInMinutes) * time.Minute)
	}
	if room != nil {
		resp.RoomName = room.Name
	}

	return resp
}

// Create schedules a showtime after checking that the room is free for
// the whole busy window: movie duration plus the cleanup buffer.
func (s *showTimeService) Create(ctx context.Context, req request.CreateShowTimeRequest) (*response.ShowTimeResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"start_time": "Must be an RFC3339 timestamp"}}
	}
	if startTime.Before(time.Now()) {
		return nil, &ValidationError{Fields: map[string]string{"start_time": "Must be in the future"}}
	}

	movieID, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"movie_id": "Must be a valid UUID"}}
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"room_id": "Must be a valid UUID"}}
	}

	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, &NotFoundError{Resource: "Movie"}
	}
	if movie.Status == entity.MovieStatusArchived {
		return nil, &StateError{Reason: "Cannot schedule an archived movie"}
	}

	room, err := s.repo.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, &NotFoundError{Resource: "Room"}
	}

	until := startTime.Add(time.Duration(movie.DurationInMinutes)*time.Minute + s.config.Booking.CleanupBuffer)
	if err := s.checkOverlap(ctx, roomID, startTime, until, room.Name, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	showTime := &entity.ShowTime{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MovieID:   movieID,
		RoomID:    roomID,
		StartTime: startTime,
		Price:     req.Price,
		Format:    entity.ShowTimeFormat(req.Format),
		Status:    entity.ShowTimeStatusAvailable,
	}

	if err := s.repo.ShowTime.Create(ctx, showTime); err != nil {
		return nil, err
	}

	s.log.Info("showtime scheduled",
		zap.String("show_time_id", showTime.ID.String()),
		zap.String("movie_id", movieID.String()),
		zap.String("room_id", roomID.String()),
		zap.Time("start_time", startTime),
	)

	resp := s.toResponse(showTime, movie, room)
	return &resp, nil
}

// checkOverlap rejects a candidate window that intersects any existing
// showtime's busy window in the room. excludeID skips the showtime being
// rescheduled.
func (s *showTimeService) checkOverlap(ctx context.Context, roomID uuid.UUID, from, until time.Time, roomName string, excludeID *uuid.UUID) error {
	overlapping, err := s.repo.ShowTime.FindOverlapping(ctx, roomID, from, until, s.config.Booking.CleanupBuffer)
	if err != nil {
		return err
	}

	for _, other := range overlapping {
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		return &ShowtimeConflictError{RoomName: roomName}
	}

	return nil
}

func (s *showTimeService) GetByID(ctx context.Context, id uuid.UUID) (*response.ShowTimeResponse, error) {
	showTime, err := s.repo.ShowTime.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if showTime == nil {
		return nil, &NotFoundError{Resource: "Showtime"}
	}

	movie, err := s.repo.Movie.FindByID(ctx, showTime.MovieID)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.Room.FindByID(ctx, showTime.RoomID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(showTime, movie, room)
	return &resp, nil
}

func (s *showTimeService) ListByMovie(ctx context.Context, movieID uuid.UUID) ([]response.ShowTimeResponse, error) {
	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, &NotFoundError{Resource: "Movie"}
	}

	showTimes, err := s.repo.ShowTime.FindByMovieID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	items := make([]response.ShowTimeResponse, 0, len(showTimes))
	for _, showTime := range showTimes {
		room, err := s.repo.Room.FindByID(ctx, showTime.RoomID)
		if err != nil {
			return nil, err
		}
		items = append(items, s.toResponse(showTime, movie, room))
	}

	return items, nil
}

func (s *showTimeService) ListAvailable(ctx context.Context, page, limit int) (*response.Paginated[response.ShowTimeResponse], error) {
	offset := (page - 1) * limit
	showTimes, err := s.repo.ShowTime.FindAvailable(ctx, time.Now(), limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]response.ShowTimeResponse, 0, len(showTimes))
	for _, showTime := range showTimes {
		movie, err := s.repo.Movie.FindByID(ctx, showTime.MovieID)
		if err != nil {
			return nil, err
		}
		room, err := s.repo.Room.FindByID(ctx, showTime.RoomID)
		if err != nil {
			return nil, err
		}
		items = append(items, s.toResponse(showTime, movie, room))
	}

	paginated := response.NewPaginated(items, page, limit, int64(len(items)+offset))
	return &paginated, nil
}

func (s *showTimeService) Update(ctx context.Context, id uuid.UUID, req request.UpdateShowTimeRequest) (*response.ShowTimeResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	showTime, err := s.repo.ShowTime.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if showTime == nil {
		return nil, &NotFoundError{Resource: "Showtime"}
	}

	held, err := s.repo.BookingDetail.FindHeldSeatIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(held) > 0 {
		return nil, &StateError{Reason: "Cannot reschedule a showtime that already has bookings"}
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"start_time": "Must be an RFC3339 timestamp"}}
	}
	if startTime.Before(time.Now()) {
		return nil, &ValidationError{Fields: map[string]string{"start_time": "Must be in the future"}}
	}

	movie, err := s.repo.Movie.FindByID(ctx, showTime.MovieID)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.Room.FindByID(ctx, showTime.RoomID)
	if err != nil {
		return nil, err
	}
	if movie == nil || room == nil {
		return nil, &NotFoundError{Resource: "Showtime"}
	}

	until := startTime.Add(time.Duration(movie.DurationInMinutes)*time.Minute + s.config.Booking.CleanupBuffer)
	if err := s.checkOverlap(ctx, showTime.RoomID, startTime, until, room.Name, &id); err != nil {
		return nil, err
	}

	showTime.StartTime = startTime
	showTime.Price = req.Price
	showTime.Format = entity.ShowTimeFormat(req.Format)
	showTime.UpdatedAt = time.Now()

	if err := s.repo.ShowTime.Update(ctx, showTime); err != nil {
		return nil, err
	}

	resp := s.toResponse(showTime, movie, room)
	return &resp, nil
}

func (s *showTimeService) Delete(ctx context.Context, id uuid.UUID) error {
	showTime, err := s.repo.ShowTime.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if showTime == nil {
		return &NotFoundError{Resource: "Showtime"}
	}

	held, err := s.repo.BookingDetail.FindHeldSeatIDs(ctx, id)
	if err != nil {
		return err
	}
	if len(held) > 0 {
		return &StateError{Reason: "Cannot delete a showtime that already has bookings"}
	}

	return s.repo.ShowTime.Delete(ctx, id)
}

// SeatAvailability partitions the room's seats into taken and free for
// one showtime.
func (s *showTimeService) SeatAvailability(ctx context.Context, showTimeID uuid.UUID) (*response.SeatAvailabilityResponse, error) {
	showTime, err := s.repo.ShowTime.FindByID(ctx, showTimeID)
	if err != nil {
		return nil, err
	}
	if showTime == nil {
		return nil, &NotFoundError{Resource: "Showtime"}
	}

	seats, err := s.repo.Seat.FindByRoomID(ctx, showTime.RoomID)
	if err != nil {
		return nil, err
	}

	heldIDs, err := s.repo.BookingDetail.FindHeldSeatIDs(ctx, showTimeID)
	if err != nil {
		return nil, err
	}

	held := make(map[uuid.UUID]bool, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = true
	}

	resp := &response.SeatAvailabilityResponse{
		ShowTimeID:     showTimeID.String(),
		AvailableSeats: []response.SeatResponse{},
		TakenSeats:     []response.SeatResponse{},
	}

	for _, seat := range seats {
		if held[seat.ID] {
			resp.TakenSeats = append(resp.TakenSeats, toSeatResponse(seat))
		} else {
			resp.AvailableSeats = append(resp.AvailableSeats, toSeatResponse(seat))
		}
	}

	return resp, nil
}
