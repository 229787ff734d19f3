package repository

import (
	"context"
	"fmt"

	"movie-ticket/internal/data/entity"
	"movie-ticket/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RoomRepository interface {
	// CreateWithSeats inserts the room and its seat grid in one transaction.
	CreateWithSeats(ctx context.Context, room *entity.Room, seats []*entity.Seat) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error)
	FindAll(ctx context.Context) ([]*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type roomRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRoomRepository(db database.PgxIface, log *zap.Logger) RoomRepository {
	return &roomRepository{
		db:  db,
		log: log.With(zap.String("repository", "room")),
	}
}

func (r *roomRepository) CreateWithSeats(ctx context.Context, room *entity.Room, seats []*entity.Seat) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin room tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insertRoom := `
		INSERT INTO rooms (id, name, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, insertRoom,
		room.ID,
		room.Name,
		room.TotalSeats,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create room",
			zap.Error(err),
			zap.String("name", room.Name),
		)
		return fmt.Errorf("create room %q: %w", room.Name, err)
	}

	if len(seats) > 0 {
		insertSeats := `INSERT INTO seats (id, room_id, seat_number, seat_row, seat_column, created_at, updated_at) VALUES `
		args := []interface{}{}
		for i, seat := range seats {
			if i > 0 {
				insertSeats += ", "
			}
			insertSeats += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)
			args = append(args,
				seat.ID,
				seat.RoomID,
				seat.SeatNumber,
				seat.SeatRow,
				seat.SeatColumn,
				seat.CreatedAt,
				seat.UpdatedAt,
			)
		}

		if _, err := tx.Exec(ctx, insertSeats, args...); err != nil {
			r.log.Error("Failed to create seats",
				zap.Error(err),
				zap.String("room_id", room.ID.String()),
				zap.Int("count", len(seats)),
			)
			return fmt.Errorf("create seats for room %q: %w", room.Name, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	query := `SELECT id, name, total_seats, created_at, updated_at FROM rooms WHERE id = $1`

	var room entity.Room
	err := r.db.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.TotalSeats,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find room by ID",
			zap.Error(err),
			zap.String("room_id", id.String()),
		)
		return nil, fmt.Errorf("find room by ID %s: %w", id.String(), err)
	}

	return &room, nil
}

func (r *roomRepository) FindAll(ctx context.Context) ([]*entity.Room, error) {
	query := `SELECT id, name, total_seats, created_at, updated_at FROM rooms ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list rooms", zap.Error(err))
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*entity.Room
	for rows.Next() {
		var room entity.Room
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.TotalSeats,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) Update(ctx context.Context, room *entity.Room) error {
	query := `UPDATE rooms SET name = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, room.ID, room.Name, room.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update room",
			zap.Error(err),
			zap.String("room_id", room.ID.String()),
		)
		return fmt.Errorf("update room %s: %w", room.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", room.ID.String())
	}

	return nil
}

func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rooms WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete room",
			zap.Error(err),
			zap.String("room_id", id.String()),
		)
		return fmt.Errorf("delete room %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s not found", id.String())
	}

	r.log.Info("Room deleted", zap.String("room_id", id.String()))
	return nil
}
