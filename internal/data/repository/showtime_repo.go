package repository

import (
	"context"
	"fmt"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowTimeRepository interface {
	Create(ctx context.Context, showTime *entity.ShowTime) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowTime, error)
	FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.ShowTime, error)
	FindAvailable(ctx context.Context, from time.Time, limit, offset int) ([]*entity.ShowTime, error)
	Update(ctx context.Context, showTime *entity.ShowTime) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindOverlapping returns non-expired showtimes in a room whose busy
	// window [start_time, start_time + movie duration + buffer) intersects
	// [from, until). Used by the scheduling conflict check.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, from, until time.Time, buffer time.Duration) ([]*entity.ShowTime, error)

	// ExpireStarted flips available showtimes whose start time has passed
	// to expired. Returns the number of rows updated.
	ExpireStarted(ctx context.Context) (int64, error)
}

type showTimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowTimeRepository(db database.PgxIface, log *zap.Logger) ShowTimeRepository {
	return &showTimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "show_time")),
	}
}

const showTimeColumns = `id, movie_id, room_id, start_time, price, format, status, created_at, updated_at`

func scanShowTime(row pgx.Row) (*entity.ShowTime, error) {
	var st entity.ShowTime
	err := row.Scan(
		&st.ID,
		&st.MovieID,
		&st.RoomID,
		&st.StartTime,
		&st.Price,
		&st.Format,
		&st.Status,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *showTimeRepository) Create(ctx context.Context, showTime *entity.ShowTime) error {
	query := `
		INSERT INTO show_times (id, movie_id, room_id, start_time, price, format, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		showTime.ID,
		showTime.MovieID,
		showTime.RoomID,
		showTime.StartTime,
		showTime.Price,
		showTime.Format,
		showTime.Status,
		showTime.CreatedAt,
		showTime.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create showtime",
			zap.Error(err),
			zap.String("movie_id", showTime.MovieID.String()),
			zap.String("room_id", showTime.RoomID.String()),
			zap.Time("start_time", showTime.StartTime),
		)
		return fmt.Errorf("create showtime for movie %s room %s: %w",
			showTime.MovieID.String(), showTime.RoomID.String(), err)
	}

	return nil
}

func (r *showTimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowTime, error) {
	query := `SELECT ` + showTimeColumns + ` FROM show_times WHERE id = $1`

	st, err := scanShowTime(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID",
			zap.Error(err),
			zap.String("show_time_id", id.String()),
		)
		return nil, fmt.Errorf("find showtime by ID %s: %w", id.String(), err)
	}

	return st, nil
}

func (r *showTimeRepository) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.ShowTime, error) {
	query := `
		SELECT ` + showTimeColumns + `
		FROM show_times
		WHERE movie_id = $1
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, movieID)
	if err != nil {
		r.log.Error("Failed to find showtimes by movie ID",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return nil, fmt.Errorf("find showtimes by movie ID %s: %w", movieID.String(), err)
	}
	defer rows.Close()

	return collectShowTimes(rows)
}

func (r *showTimeRepository) FindAvailable(ctx context.Context, from time.Time, limit, offset int) ([]*entity.ShowTime, error) {
	query := `
		SELECT ` + showTimeColumns + `
		FROM show_times
		WHERE status = 'available' AND start_time >= $1
		ORDER BY start_time
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, from, limit, offset)
	if err != nil {
		r.log.Error("Failed to find available showtimes", zap.Error(err))
		return nil, fmt.Errorf("find available showtimes: %w", err)
	}
	defer rows.Close()

	return collectShowTimes(rows)
}

func (r *showTimeRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, from, until time.Time, buffer time.Duration) ([]*entity.ShowTime, error) {
	// Existing showtimes occupy [start_time, start_time + duration + buffer).
	query := `
		SELECT st.id, st.movie_id, st.room_id, st.start_time, st.price, st.format, st.status, st.created_at, st.updated_at
		FROM show_times st
		INNER JOIN movies m ON st.movie_id = m.id
		WHERE st.room_id = $1
		  AND st.status <> 'expired'
		  AND st.start_time < $3
		  AND st.start_time + make_interval(mins => m.duration_in_minutes) + $4::interval > $2
	`

	rows, err := r.db.Query(ctx, query, roomID, from, until, buffer.String())
	if err != nil {
		r.log.Error("Failed to find overlapping showtimes",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
			zap.Time("from", from),
			zap.Time("until", until),
		)
		return nil, fmt.Errorf("find overlapping showtimes in room %s: %w", roomID.String(), err)
	}
	defer rows.Close()

	return collectShowTimes(rows)
}

func (r *showTimeRepository) ExpireStarted(ctx context.Context) (int64, error) {
	query := `
		UPDATE show_times
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'available' AND start_time <= NOW()
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to expire started showtimes", zap.Error(err))
		return 0, fmt.Errorf("expire started showtimes: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *showTimeRepository) Update(ctx context.Context, showTime *entity.ShowTime) error {
	query := `
		UPDATE show_times
		SET movie_id = $2, room_id = $3, start_time = $4, price = $5, format = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		showTime.ID,
		showTime.MovieID,
		showTime.RoomID,
		showTime.StartTime,
		showTime.Price,
		showTime.Format,
		showTime.Status,
		showTime.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update showtime",
			zap.Error(err),
			zap.String("show_time_id", showTime.ID.String()),
		)
		return fmt.Errorf("update showtime %s: %w", showTime.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("showtime %s not found", showTime.ID.String())
	}

	return nil
}

func (r *showTimeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Foreign keys from booking_details are RESTRICT; a showtime with
	// bookings cannot be removed.
	query := `DELETE FROM show_times WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete showtime",
			zap.Error(err),
			zap.String("show_time_id", id.String()),
		)
		return fmt.Errorf("delete showtime %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("showtime %s not found", id.String())
	}

	r.log.Info("Showtime deleted", zap.String("show_time_id", id.String()))
	return nil
}

func collectShowTimes(rows pgx.Rows) ([]*entity.ShowTime, error) {
	var showTimes []*entity.ShowTime
	for rows.Next() {
		st, err := scanShowTime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan showtime row: %w", err)
		}
		showTimes = append(showTimes, st)
	}
	return showTimes, rows.Err()
}
