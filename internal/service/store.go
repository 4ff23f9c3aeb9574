package service

import (
	"context"
	"io"

	"github.com/addressbook/addressbook-go/internal/mail"
	"github.com/addressbook/addressbook-go/internal/model"
)

// UserStore persists user accounts. Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Confirm(ctx context.Context, email string) error
	SetRefreshToken(ctx context.Context, userID int64, token string) error
	RotateRefreshToken(ctx context.Context, userID int64, current, next string) error
	UpdateAvatar(ctx context.Context, email, url string) (*model.User, error)
}

// ContactStore persists contacts. Every method is scoped by owner ID.
// Implemented by repository.ContactRepository.
type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	Get(ctx context.Context, userID, id int64) (*model.Contact, error)
	List(ctx context.Context, userID int64, filter model.ContactFilter, offset, limit int) ([]model.Contact, error)
	ListByBirthdays(ctx context.Context, userID int64, days []model.MonthDay, offset, limit int) ([]model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, userID, id int64) error
}

// ConfirmationMailer schedules confirmation mail without blocking.
// Implemented by mail.Dispatcher.
type ConfirmationMailer interface {
	Enqueue(c mail.Confirmation) bool
}

// AvatarUploader stores an image and returns its public URL.
// Implemented by avatar.S3Uploader.
type AvatarUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
