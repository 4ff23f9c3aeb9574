package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/avatar"
	"github.com/addressbook/addressbook-go/internal/model"
)

var ErrAvatarUpload = errors.New("avatar upload failed")

// UserService handles the authenticated user's profile.
type UserService struct {
	users    UserStore
	uploader AvatarUploader
	log      *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, uploader AvatarUploader, log *zap.Logger) *UserService {
	return &UserService{users: users, uploader: uploader, log: log}
}

// Me returns the profile of user.
func (s *UserService) Me(user *model.User) model.UserResponse {
	return user.ToResponse()
}

// UpdateAvatar uploads a new image for user and stores its URL. On upload
// failure the profile is left unchanged.
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, file io.Reader, contentType string) (model.UserResponse, error) {
	url, err := s.uploader.Upload(ctx, avatar.ObjectKey(user.ID), file, contentType)
	if err != nil {
		s.log.Warn("avatar upload", zap.Int64("user_id", user.ID), zap.Error(err))
		return model.UserResponse{}, ErrAvatarUpload
	}

	updated, err := s.users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return model.UserResponse{}, err
	}
	return updated.ToResponse(), nil
}
