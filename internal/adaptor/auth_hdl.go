package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/usecase"
	"movie-ticket/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseCreated(w, "Registration successful", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Login(r.Context(), req, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		var notAuthorized *usecase.NotAuthorizedError
		if errors.As(err, &notAuthorized) {
			utils.ResponseUnauthorized(w, notAuthorized.Error())
			return
		}
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Login successful", result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req); err != nil {
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "If the email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		var notAuthorized *usecase.NotAuthorizedError
		if errors.As(err, &notAuthorized) {
			utils.ResponseUnauthorized(w, notAuthorized.Error())
			return
		}
		respondError(w, h.log, err)
		return
	}

	utils.ResponseSuccess(w, "Password has been reset", nil)
}
