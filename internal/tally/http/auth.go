package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tally/internal/tally/service"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
	"github.com/aussiebroadwan/tally/pkg/tallysdk"
)

const (
	msgAlreadyExists = "Username or email already exists"
	msgRequired      = "Username, email and password are required"
	msgInternal      = "internal server error"
)

var registerSchema = newBodySchema("register.json", &tallysdk.RegisterRequest{})

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates a new account.
//
//	@Summary		Register a user
//	@Description	Creates an account and returns a bearer token for it.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.RegisterRequest	true	"username, email, password"
//	@Success		200		{object}	tallysdk.AuthResponse
//	@Failure		400		{object}	tallysdk.ErrorResponse	"Validation failed or username/email taken"
//	@Failure		500		{object}	tallysdk.ErrorResponse
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req tallysdk.RegisterRequest
	if err := registerSchema.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, tallysdk.AuthResponse{
			Token:    res.Token,
			Username: res.Username,
			Email:    res.Email,
		})
	case errors.Is(err, service.ErrConflict):
		httpx.WriteMessage(w, http.StatusBadRequest, msgAlreadyExists)
	case errors.Is(err, service.ErrValidation):
		httpx.WriteMessage(w, http.StatusBadRequest, msgRequired)
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

// HandleLogin exchanges a username and password for a bearer token.
//
//	@Summary		Log in
//	@Description	Returns a bearer token. Unknown users and wrong passwords both get an empty 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.LoginRequest	true	"username, password"
//	@Success		200		{object}	tallysdk.AuthResponse
//	@Failure		400		{object}	tallysdk.ErrorResponse	"Malformed JSON"
//	@Failure		401		"Invalid credentials"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req tallysdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, tallysdk.AuthResponse{
			Token:    res.Token,
			Username: res.Username,
			Email:    res.Email,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.NoCache(w)
		w.WriteHeader(http.StatusUnauthorized)
	default:
		httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

// HandleMe describes the authenticated caller.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tallysdk.MeResponse
//	@Failure		401	"Invalid or missing access token"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := h.AuthService.Me(ctx, id.UserID)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, tallysdk.MeResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
	case errors.Is(err, service.ErrNotFound):
		// Token outlived its account.
		w.WriteHeader(http.StatusUnauthorized)
	default:
		slogx.FromContext(ctx).Error("failed to load user", "user_id", id.UserID, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidBody) {
		httpx.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	slogx.FromContext(r.Context()).Error("request schema unavailable", "err", err)
	httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
}
