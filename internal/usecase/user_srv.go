package usecase

import (
	"context"

	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*response.UserResponse, error)
	List(ctx context.Context, page, limit int) (*response.Paginated[response.UserResponse], error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
	}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "User"}
	}

	return &response.UserResponse{
		ID:       user.ID.String(),
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     string(user.Role),
		IsActive: user.IsActive,
	}, nil
}

func (s *userService) List(ctx context.Context, page, limit int) (*response.Paginated[response.UserResponse], error) {
	offset := (page - 1) * limit
	users, err := s.repo.User.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.User.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, response.UserResponse{
			ID:       user.ID.String(),
			FullName: user.FullName,
			Email:    user.Email,
			Phone:    user.Phone,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		})
	}

	paginated := response.NewPaginated(items, page, limit, total)
	return &paginated, nil
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return &NotFoundError{Resource: "User"}
	}

	if err := s.repo.User.SetActive(ctx, id, active); err != nil {
		return err
	}

	// Deactivation cuts existing sessions immediately.
	if !active {
		if err := s.repo.Session.RevokeAllForUser(ctx, id); err != nil {
			s.log.Warn("failed to revoke sessions on deactivation",
				zap.Error(err),
				zap.String("user_id", id.String()),
			)
		}
	}

	return nil
}
