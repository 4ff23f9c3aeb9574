package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/logger"
	"github.com/addressbook/addressbook-go/internal/middleware"
	"github.com/addressbook/addressbook-go/internal/service"
)

const maxAvatarBytes = 5 << 20 // 5MB

// UserHandler handles HTTP requests for the caller's profile.
type UserHandler struct {
	service *service.UserService
	log     *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: svc, log: log}
}

// HandleMe handles GET /api/users/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, h.service.Me(user))
}

// HandleUpdateAvatar handles PATCH /api/users/avatar requests with a
// multipart "file" field.
func (h *UserHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(errBodyTooLarge.Error()))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("file is required"))
		return
	}
	defer file.Close()

	resp, err := h.service.UpdateAvatar(r.Context(), user, file, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, service.ErrAvatarUpload) {
			writeJSON(w, http.StatusBadGateway, errorResponse(err.Error()))
			return
		}
		logger.FromContext(r.Context(), h.log).Error("update avatar", zap.Error(err))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
