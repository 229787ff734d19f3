package usecase

import (
	"context"
	"fmt"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/dto/response"
	"movie-ticket/pkg/mailer"
	"movie-ticket/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*response.RegisterResponse, error)
	Login(ctx context.Context, req request.LoginRequest, userAgent, ip string) (*response.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, req request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req request.ResetPasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	mailer mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		mailer: mail,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req request.RegisterRequest) (*response.RegisterResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Fields: map[string]string{"email": "Email is already registered"}}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))

	return &response.RegisterResponse{
		ID:       user.ID.String(),
		FullName: user.FullName,
		Email:    user.Email,
		Role:     string(user.Role),
	}, nil
}

func (s *authService) Login(ctx context.Context, req request.LoginRequest, userAgent, ip string) (*response.LoginResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, &NotAuthorizedError{Reason: "Invalid email or password"}
	}
	if !user.IsActive {
		return nil, &NotAuthorizedError{Reason: "Account is not active"}
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		ExpiresAt: now.Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour),
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}
	if ip != "" {
		session.IPAddress = &ip
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))

	return &response.LoginResponse{
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
		User: response.UserResponse{
			ID:       user.ID.String(),
			FullName: user.FullName,
			Email:    user.Email,
			Phone:    user.Phone,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.repo.Session.Revoke(ctx, token)
}

func (s *authService) RequestPasswordReset(ctx context.Context, req request.ForgotPasswordRequest) error {
	if fields := utils.ValidateStruct(req); fields != nil {
		return &ValidationError{Fields: fields}
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	// Do not reveal whether the email is registered.
	if user == nil {
		return nil
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	now := time.Now()
	resetToken := &entity.ResetToken{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: now.Add(s.config.Session.ResetTokenExpiry),
	}

	if err := s.repo.ResetToken.Create(ctx, resetToken); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, token)
	go func() {
		if err := s.mailer.SendPasswordReset(user.Email, user.FullName, resetURL); err != nil {
			s.log.Error("failed to send reset email",
				zap.Error(err),
				zap.String("user_id", user.ID.String()),
			)
		}
	}()

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req request.ResetPasswordRequest) error {
	if fields := utils.ValidateStruct(req); fields != nil {
		return &ValidationError{Fields: fields}
	}

	resetToken, err := s.repo.ResetToken.FindValid(ctx, req.Token)
	if err != nil {
		return err
	}
	if resetToken == nil {
		return &NotAuthorizedError{Reason: "Reset token is invalid or expired"}
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.User.UpdatePassword(ctx, resetToken.UserID, hash); err != nil {
		return err
	}
	if err := s.repo.ResetToken.MarkUsed(ctx, req.Token); err != nil {
		return err
	}

	// Existing sessions are revoked after a password change.
	if err := s.repo.Session.RevokeAllForUser(ctx, resetToken.UserID); err != nil {
		s.log.Warn("failed to revoke sessions after password reset",
			zap.Error(err),
			zap.String("user_id", resetToken.UserID.String()),
		)
	}

	s.log.Info("password reset", zap.String("user_id", resetToken.UserID.String()))
	return nil
}
