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

type MovieService interface {
	Create(ctx context.Context, req request.CreateMovieRequest) (*response.MovieResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.MovieResponse, error)
	List(ctx context.Context, status string, page, limit int) (*response.Paginated[response.MovieResponse], error)
	Update(ctx context.Context, id uuid.UUID, req request.UpdateMovieRequest) (*response.MovieResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMovieService(repo *repository.Repository, log *zap.Logger) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
	}
}

func toMovieResponse(movie *entity.Movie) *response.MovieResponse {
	return &response.MovieResponse{
		ID:                movie.ID.String(),
		Title:             movie.Title,
		Genre:             movie.Genre,
		Director:          movie.Director,
		Description:       movie.Description,
		PosterURL:         movie.PosterURL,
		TrailerURL:        movie.TrailerURL,
		Cast:              movie.Cast,
		Language:          movie.Language,
		Rating:            movie.Rating,
		ReleaseDate:       movie.ReleaseDate,
		DurationInMinutes: movie.DurationInMinutes,
		Status:            string(movie.Status),
	}
}

func (s *movieService) Create(ctx context.Context, req request.CreateMovieRequest) (*response.MovieResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"release_date": "Must be a valid date (YYYY-MM-DD)"}}
	}

	now := time.Now()
	movie := &entity.Movie{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:             req.Title,
		Genre:             req.Genre,
		Director:          req.Director,
		Description:       req.Description,
		PosterURL:         req.PosterURL,
		TrailerURL:        req.TrailerURL,
		Cast:              req.Cast,
		Language:          req.Language,
		Rating:            req.Rating,
		ReleaseDate:       releaseDate,
		DurationInMinutes: req.DurationInMinutes,
		Status:            entity.MovieStatus(req.Status),
	}

	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		return nil, err
	}

	s.log.Info("movie created", zap.String("movie_id", movie.ID.String()), zap.String("title", movie.Title))
	return toMovieResponse(movie), nil
}

func (s *movieService) GetByID(ctx context.Context, id uuid.UUID) (*response.MovieResponse, error) {
	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, &NotFoundError{Resource: "Movie"}
	}

	return toMovieResponse(movie), nil
}

func (s *movieService) List(ctx context.Context, status string, page, limit int) (*response.Paginated[response.MovieResponse], error) {
	var statusFilter *entity.MovieStatus
	if status != "" {
		st := entity.MovieStatus(status)
		switch st {
		case entity.MovieStatusNowShowing, entity.MovieStatusComingSoon, entity.MovieStatusArchived:
			statusFilter = &st
		default:
			return nil, &ValidationError{Fields: map[string]string{"status": "Must be one of: now_showing, coming_soon, archived"}}
		}
	}

	offset := (page - 1) * limit
	movies, err := s.repo.Movie.FindAll(ctx, statusFilter, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Movie.CountAll(ctx, statusFilter)
	if err != nil {
		return nil, err
	}

	items := make([]response.MovieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, *toMovieResponse(movie))
	}

	paginated := response.NewPaginated(items, page, limit, total)
	return &paginated, nil
}

func (s *movieService) Update(ctx context.Context, id uuid.UUID, req request.UpdateMovieRequest) (*response.MovieResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, &NotFoundError{Resource: "Movie"}
	}

	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"release_date": "Must be a valid date (YYYY-MM-DD)"}}
	}

	movie.Title = req.Title
	movie.Genre = req.Genre
	movie.Director = req.Director
	movie.Description = req.Description
	movie.PosterURL = req.PosterURL
	movie.TrailerURL = req.TrailerURL
	movie.Cast = req.Cast
	movie.Language = req.Language
	movie.Rating = req.Rating
	movie.ReleaseDate = releaseDate
	movie.DurationInMinutes = req.DurationInMinutes
	movie.Status = entity.MovieStatus(req.Status)
	movie.UpdatedAt = time.Now()

	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		return nil, err
	}

	return toMovieResponse(movie), nil
}

func (s *movieService) Delete(ctx context.Context, id uuid.UUID) error {
	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if movie == nil {
		return &NotFoundError{Resource: "Movie"}
	}

	// Movies with scheduled showtimes are archived instead of removed so
	// existing bookings keep their references.
	showTimes, err := s.repo.ShowTime.FindByMovieID(ctx, id)
	if err != nil {
		return err
	}
	if len(showTimes) > 0 {
		movie.Status = entity.MovieStatusArchived
		movie.UpdatedAt = time.Now()
		return s.repo.Movie.Update(ctx, movie)
	}

	return s.repo.Movie.Delete(ctx, id)
}
