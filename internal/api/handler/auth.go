package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/astraschool/astra-platform/internal/api/middleware"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		RespondError(w, r, http.StatusBadRequest, "auth/invalid-email", "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		RespondError(w, r, http.StatusBadRequest, "auth/weak-password", "password must be at least 8 characters")
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	token, err := issueToken(user)
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "auth/token-signing", "failed to sign token")
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	token, err := issueToken(user)
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "auth/token-signing", "failed to sign token")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func issueToken(user *models.User) (string, error) {
	role := middleware.RoleStudent
	if user.IsAdmin {
		role = middleware.RoleAdmin
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"sub":     user.ID.String(),
		"role":    role,
		"iss":     middleware.JWTIssuer(),
		"aud":     middleware.JWTAudience(),
		"iat":     now.Unix(),
		"exp":     now.Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(middleware.JWTSecret())
}
