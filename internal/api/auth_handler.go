package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	userService   service.UserService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	validator     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		jwtService:    jwtService,
		tokenLifetime: tokenLifetime,
		validator:     validator.New(),
	}
}

// Register handles POST /auth/register requests
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id, err := parseOptionalUUID("id", req.ID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), id, req.Email, req.DisplayName, req.Password)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token after registration",
			"error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:      user.ID,
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}

// Login handles POST /auth/login requests
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:      user.ID,
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}
