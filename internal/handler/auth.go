package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/logger"
	"github.com/addressbook/addressbook-go/internal/middleware"
	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/service"
)

// AuthHandler handles HTTP requests for the account lifecycle.
type AuthHandler struct {
	service *service.AuthService
	baseURL string
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. baseURL may be empty.
func NewAuthHandler(svc *service.AuthService, baseURL string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{service: svc, baseURL: baseURL, log: log}
}

// HandleSignup handles POST /api/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req, requestBaseURL(r, h.baseURL))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrUsernameRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			h.fail(w, r, "signup", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleConfirmEmail handles GET /api/auth/confirmed_email/{token} requests.
func (h *AuthHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ConfirmEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmailToken):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err.Error()))
		case errors.Is(err, service.ErrVerificationFailed):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			h.fail(w, r, "confirm email", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRequestEmail handles POST /api/auth/request_email requests.
func (h *AuthHandler) HandleRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req model.RequestEmail
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.RequestEmail(r.Context(), req.Email, requestBaseURL(r, h.baseURL))
	if err != nil {
		h.fail(w, r, "request email", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /api/auth/login requests carrying an
// application/x-www-form-urlencoded username (the email) and password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form body"))
		return
	}

	req := model.LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("username and password are required"))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.WriteUnauthorized(w, err.Error())
			return
		}
		h.fail(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles GET /api/auth/refresh_token requests. The refresh
// token travels as the Bearer credential.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return
	}

	resp, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrInvalidRefreshToken) {
			middleware.WriteUnauthorized(w, err.Error())
			return
		}
		h.fail(w, r, "refresh", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.FromContext(r.Context(), h.log).Error(op, zap.Error(err))
	internalError(w)
}
