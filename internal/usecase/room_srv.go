package usecase

import (
	"context"
	"fmt"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/dto/response"
	"movie-ticket/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoomService interface {
	Create(ctx context.Context, req request.CreateRoomRequest) (*response.RoomDetailResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.RoomDetailResponse, error)
	List(ctx context.Context) ([]response.RoomResponse, error)
	Update(ctx context.Context, id uuid.UUID, req request.UpdateRoomRequest) (*response.RoomResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type roomService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRoomService(repo *repository.Repository, log *zap.Logger) RoomService {
	return &roomService{
		repo: repo,
		log:  log.With(zap.String("service", "room")),
	}
}

func toSeatResponse(seat *entity.Seat) response.SeatResponse {
	return response.SeatResponse{
		ID:         seat.ID.String(),
		SeatNumber: seat.SeatNumber,
		SeatRow:    seat.SeatRow,
		SeatColumn: seat.SeatColumn,
	}
}

// Create inserts the room together with its full seat grid. Rows are
// lettered A, B, C and columns numbered from 1, so row 2 column 3 is B3.
func (s *roomService) Create(ctx context.Context, req request.CreateRoomRequest) (*response.RoomDetailResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	now := time.Now()
	room := &entity.Room{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:       req.Name,
		TotalSeats: req.Rows * req.Cols,
	}

	seats := make([]*entity.Seat, 0, req.Rows*req.Cols)
	for row := 0; row < req.Rows; row++ {
		rowLabel := string(rune('A' + row))
		for col := 1; col <= req.Cols; col++ {
			seats = append(seats, &entity.Seat{
				Base: entity.Base{
					ID:        uuid.New(),
					CreatedAt: now,
					UpdatedAt: now,
				},
				RoomID:     room.ID,
				SeatNumber: fmt.Sprintf("%s%d", rowLabel, col),
				SeatRow:    rowLabel,
				SeatColumn: col,
			})
		}
	}

	if err := s.repo.Room.CreateWithSeats(ctx, room, seats); err != nil {
		return nil, err
	}

	s.log.Info("room created",
		zap.String("room_id", room.ID.String()),
		zap.String("name", room.Name),
		zap.Int("seats", room.TotalSeats),
	)

	seatResponses := make([]response.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		seatResponses = append(seatResponses, toSeatResponse(seat))
	}

	return &response.RoomDetailResponse{
		RoomResponse: response.RoomResponse{
			ID:         room.ID.String(),
			Name:       room.Name,
			TotalSeats: room.TotalSeats,
		},
		Seats: seatResponses,
	}, nil
}

func (s *roomService) GetByID(ctx context.Context, id uuid.UUID) (*response.RoomDetailResponse, error) {
	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, &NotFoundError{Resource: "Room"}
	}

	seats, err := s.repo.Seat.FindByRoomID(ctx, id)
	if err != nil {
		return nil, err
	}

	seatResponses := make([]response.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		seatResponses = append(seatResponses, toSeatResponse(seat))
	}

	return &response.RoomDetailResponse{
		RoomResponse: response.RoomResponse{
			ID:         room.ID.String(),
			Name:       room.Name,
			TotalSeats: room.TotalSeats,
		},
		Seats: seatResponses,
	}, nil
}

func (s *roomService) List(ctx context.Context) ([]response.RoomResponse, error) {
	rooms, err := s.repo.Room.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]response.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, response.RoomResponse{
			ID:         room.ID.String(),
			Name:       room.Name,
			TotalSeats: room.TotalSeats,
		})
	}

	return items, nil
}

func (s *roomService) Update(ctx context.Context, id uuid.UUID, req request.UpdateRoomRequest) (*response.RoomResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, &NotFoundError{Resource: "Room"}
	}

	room.Name = req.Name
	room.UpdatedAt = time.Now()

	if err := s.repo.Room.Update(ctx, room); err != nil {
		return nil, err
	}

	return &response.RoomResponse{
		ID:         room.ID.String(),
		Name:       room.Name,
		TotalSeats: room.TotalSeats,
	}, nil
}

func (s *roomService) Delete(ctx context.Context, id uuid.UUID) error {
	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if room == nil {
		return &NotFoundError{Resource: "Room"}
	}

	return s.repo.Room.Delete(ctx, id)
}
