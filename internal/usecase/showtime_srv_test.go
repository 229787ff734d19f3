package usecase

import (
	"context"
	"testing"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMovieRepo struct {
	repository.MovieRepository
	byID map[uuid.UUID]*entity.Movie
}

func (f *stubMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	return f.byID[id], nil
}

type stubRoomRepo struct {
	repository.RoomRepository
	byID map[uuid.UUID]*entity.Room
}

func (f *stubRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return f.byID[id], nil
}

type schedShowTimeRepo struct {
	repository.ShowTimeRepository

	overlapping []*entity.ShowTime
	overlapFrom time.Time
	overlapTo   time.Time
	created     *entity.ShowTime
	byID        map[uuid.UUID]*entity.ShowTime
}

func (f *schedShowTimeRepo) FindOverlapping(ctx context.Context, roomID uuid.UUID, from, until time.Time, buffer time.Duration) ([]*entity.ShowTime, error) {
	f.overlapFrom = from
	f.overlapTo = until
	return f.overlapping, nil
}

func (f *schedShowTimeRepo) Create(ctx context.Context, showTime *entity.ShowTime) error {
	f.created = showTime
	return nil
}

func (f *schedShowTimeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowTime, error) {
	return f.byID[id], nil
}

func (f *fakeSeatRepo) FindByRoomID(ctx context.Context, roomID uuid.UUID) ([]*entity.Seat, error) {
	return f.seats, nil
}

type showTimeFixture struct {
	service   ShowTimeService
	showTimes *schedShowTimeRepo
	details   *fakeBookingDetailRepo
	seats     *fakeSeatRepo
	movieID   uuid.UUID
	roomID    uuid.UUID
}

func newShowTimeFixture(t *testing.T) *showTimeFixture {
	t.Helper()

	movieID := uuid.New()
	roomID := uuid.New()

	showTimes := &schedShowTimeRepo{byID: map[uuid.UUID]*entity.ShowTime{}}
	details := &fakeBookingDetailRepo{}
	seats := &fakeSeatRepo{}

	repo := &repository.Repository{
		Movie: &stubMovieRepo{byID: map[uuid.UUID]*entity.Movie{
			movieID: {
				Base:              entity.Base{ID: movieID},
				Title:             "Interstellar",
				DurationInMinutes: 120,
				Status:            entity.MovieStatusNowShowing,
			},
		}},
		Room: &stubRoomRepo{byID: map[uuid.UUID]*entity.Room{
			roomID: {Base: entity.Base{ID: roomID}, Name: "Room 1", TotalSeats: 50},
		}},
		ShowTime:      showTimes,
		BookingDetail: details,
		Seat:          seats,
	}

	config := testConfig()
	config.Booking.CleanupBuffer = 30 * time.Minute

	return &showTimeFixture{
		service:   NewShowTimeService(repo, config, zap.NewNop()),
		showTimes: showTimes,
		details:   details,
		seats:     seats,
		movieID:   movieID,
		roomID:    roomID,
	}
}

func (f *showTimeFixture) createRequest(start time.Time) request.CreateShowTimeRequest {
	return request.CreateShowTimeRequest{
		MovieID:   f.movieID.String(),
		RoomID:    f.roomID.String(),
		StartTime: start.Format(time.RFC3339),
		Price:     90000,
		Format:    "2D",
	}
}

func TestCreateShowTimeChecksFullBusyWindow(t *testing.T) {
	f := newShowTimeFixture(t)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	result, err := f.service.Create(context.Background(), f.createRequest(start))
	require.NoError(t, err)

	require.NotNil(t, f.showTimes.created)
	assert.Equal(t, entity.ShowTimeStatusAvailable, f.showTimes.created.Status)
	assert.Equal(t, "available", result.Status)

	// Busy window covers the 120 minute movie plus the 30 minute cleanup.
	assert.WithinDuration(t, start, f.showTimes.overlapFrom, time.Second)
	assert.WithinDuration(t, start.Add(150*time.Minute), f.showTimes.overlapTo, time.Second)
}

func TestCreateShowTimeRejectsOverlap(t *testing.T) {
	f := newShowTimeFixture(t)
	f.showTimes.overlapping = []*entity.ShowTime{
		{Base: entity.Base{ID: uuid.New()}, RoomID: f.roomID},
	}

	_, err := f.service.Create(context.Background(), f.createRequest(time.Now().Add(24*time.Hour)))
	require.Error(t, err)

	var conflict *ShowtimeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Room 1", conflict.RoomName)
	assert.Nil(t, f.showTimes.created)
}

func TestCreateShowTimeRejectsPastStart(t *testing.T) {
	f := newShowTimeFixture(t)

	_, err := f.service.Create(context.Background(), f.createRequest(time.Now().Add(-time.Hour)))
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateShowTimeRejectsArchivedMovie(t *testing.T) {
	f := newShowTimeFixture(t)
	movies := f.service.(*showTimeService).repo.Movie.(*stubMovieRepo)
	movies.byID[f.movieID].Status = entity.MovieStatusArchived

	_, err := f.service.Create(context.Background(), f.createRequest(time.Now().Add(24*time.Hour)))
	require.Error(t, err)

	var state *StateError
	assert.ErrorAs(t, err, &state)
}

func TestUpdateShowTimeRejectedWhenBooked(t *testing.T) {
	f := newShowTimeFixture(t)
	showTimeID := uuid.New()
	f.showTimes.byID[showTimeID] = &entity.ShowTime{
		Base:      entity.Base{ID: showTimeID},
		MovieID:   f.movieID,
		RoomID:    f.roomID,
		StartTime: time.Now().Add(24 * time.Hour),
		Status:    entity.ShowTimeStatusAvailable,
	}
	f.details.held = []uuid.UUID{uuid.New()}

	_, err := f.service.Update(context.Background(), showTimeID, request.UpdateShowTimeRequest{
		StartTime: time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		Price:     100000,
		Format:    "2D",
	})
	require.Error(t, err)

	var state *StateError
	assert.ErrorAs(t, err, &state)
}

func TestSeatAvailabilityPartition(t *testing.T) {
	f := newShowTimeFixture(t)
	showTimeID := uuid.New()
	f.showTimes.byID[showTimeID] = &entity.ShowTime{
		Base:      entity.Base{ID: showTimeID},
		MovieID:   f.movieID,
		RoomID:    f.roomID,
		StartTime: time.Now().Add(24 * time.Hour),
		Status:    entity.ShowTimeStatusAvailable,
	}

	taken := &entity.Seat{Base: entity.Base{ID: uuid.New()}, RoomID: f.roomID, SeatNumber: "A1", SeatRow: "A", SeatColumn: 1}
	free := &entity.Seat{Base: entity.Base{ID: uuid.New()}, RoomID: f.roomID, SeatNumber: "A2", SeatRow: "A", SeatColumn: 2}
	f.seats.seats = []*entity.Seat{taken, free}
	f.details.held = []uuid.UUID{taken.ID}

	result, err := f.service.SeatAvailability(context.Background(), showTimeID)
	require.NoError(t, err)

	require.Len(t, result.TakenSeats, 1)
	assert.Equal(t, "A1", result.TakenSeats[0].SeatNumber)
	require.Len(t, result.AvailableSeats, 1)
	assert.Equal(t, "A2", result.AvailableSeats[0].SeatNumber)
}

func TestSeatAvailabilityUnknownShowtime(t *testing.T) {
	f := newShowTimeFixture(t)

	_, err := f.service.SeatAvailability(context.Background(), uuid.New())
	require.Error(t, err)

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
