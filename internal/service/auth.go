package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/avatar"
	"github.com/addressbook/addressbook-go/internal/crypto"
	mailer "github.com/addressbook/addressbook-go/internal/mail"
	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/repository"
)

var (
	ErrEmailRequired       = errors.New("email is required")
	ErrInvalidEmail        = errors.New("email is not a valid address")
	ErrPasswordRequired    = errors.New("password is required")
	ErrUsernameRequired    = errors.New("username is required")
	ErrEmailTaken          = errors.New("account already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("could not validate credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrVerificationFailed  = errors.New("verification error")
	ErrInvalidEmailToken   = errors.New("invalid token for email verification")
)

const (
	MsgSignupDetail     = "User successfully created. Check your email for confirmation."
	MsgEmailConfirmed   = "Email confirmed"
	MsgAlreadyConfirmed = "Your email is already confirmed"
	MsgCheckEmail       = "Check your email for confirmation."

	TokenTypeBearer = "bearer"
)

// AuthService owns the account lifecycle: signup, email confirmation,
// login and refresh-token rotation. It also resolves access tokens to users.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenService
	hasher *crypto.PasswordHasher
	mailer ConfirmationMailer
	log    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenService, hasher *crypto.PasswordHasher, m ConfirmationMailer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		mailer: m,
		log:    log,
	}
}

// Signup registers an unconfirmed user and schedules the confirmation mail.
// baseURL is the public root the confirmation link points at.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest, baseURL string) (model.SignupResponse, error) {
	if err := validateSignup(req); err != nil {
		return model.SignupResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return model.SignupResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.SignupResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.SignupResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		PasswordHash: hash,
		Avatar:       avatar.GravatarURL(req.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.SignupResponse{}, ErrEmailTaken
		}
		return model.SignupResponse{}, err
	}

	s.sendConfirmation(user, baseURL)

	return model.SignupResponse{User: user.ToResponse(), Detail: MsgSignupDetail}, nil
}

func validateSignup(req model.SignupRequest) error {
	if req.Email == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return ErrInvalidEmail
	}
	if req.Password == "" {
		return ErrPasswordRequired
	}
	if strings.TrimSpace(req.Username) == "" {
		return ErrUsernameRequired
	}
	return nil
}

// ConfirmEmail confirms the account named by an email-verification token.
// Confirming an already confirmed account changes nothing.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (model.MessageResponse, error) {
	email, err := s.tokens.Decode(token, crypto.ScopeNone)
	if err != nil {
		return model.MessageResponse{}, ErrInvalidEmailToken
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.MessageResponse{}, ErrVerificationFailed
		}
		return model.MessageResponse{}, err
	}
	if user.Confirmed {
		return model.MessageResponse{Message: MsgAlreadyConfirmed}, nil
	}

	if err := s.users.Confirm(ctx, email); err != nil {
		return model.MessageResponse{}, err
	}
	s.log.Info("email confirmed", zap.Int64("user_id", user.ID))
	return model.MessageResponse{Message: MsgEmailConfirmed}, nil
}

// RequestEmail re-sends the confirmation mail with a fresh token. Earlier
// tokens stay valid until they expire. Unknown addresses get the same
// answer as pending ones, and so does an empty address.
func (s *AuthService) RequestEmail(ctx context.Context, email, baseURL string) (model.MessageResponse, error) {
	if strings.TrimSpace(email) == "" {
		return model.MessageResponse{Message: MsgCheckEmail}, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.MessageResponse{Message: MsgCheckEmail}, nil
		}
		return model.MessageResponse{}, err
	}
	if user.Confirmed {
		return model.MessageResponse{Message: MsgAlreadyConfirmed}, nil
	}

	s.sendConfirmation(user, baseURL)
	return model.MessageResponse{Message: MsgCheckEmail}, nil
}

func (s *AuthService) sendConfirmation(user *model.User, baseURL string) {
	token, err := s.tokens.IssueEmailToken(user.Email)
	if err != nil {
		s.log.Warn("issue email token", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	s.mailer.Enqueue(mailer.Confirmation{
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
		BaseURL:  baseURL,
	})
}

// Login verifies credentials of a confirmed user and opens a session,
// replacing any previous refresh token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Debug("login rejected: unknown email")
			return model.TokenPair{}, ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}
	if !user.Confirmed {
		s.log.Debug("login rejected: email not confirmed", zap.Int64("user_id", user.ID))
		return model.TokenPair{}, ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		s.log.Debug("login rejected: wrong password", zap.Int64("user_id", user.ID))
		return model.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return model.TokenPair{}, err
	}
	return pair, nil
}

// Refresh exchanges the user's current refresh token for a new pair. A token
// that is not the stored one is treated as reuse: the session is revoked.
func (s *AuthService) Refresh(ctx context.Context, token string) (model.TokenPair, error) {
	email, err := s.tokens.Decode(token, crypto.ScopeRefresh)
	if err != nil {
		return model.TokenPair{}, ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenPair{}, ErrUnauthorized
		}
		return model.TokenPair{}, err
	}

	if user.RefreshToken != token {
		return model.TokenPair{}, s.revokeSession(ctx, user)
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := s.users.RotateRefreshToken(ctx, user.ID, token, pair.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenMismatch) {
			return model.TokenPair{}, s.revokeSession(ctx, user)
		}
		return model.TokenPair{}, err
	}
	return pair, nil
}

func (s *AuthService) revokeSession(ctx context.Context, user *model.User) error {
	s.log.Warn("refresh token reuse, revoking session", zap.Int64("user_id", user.ID))
	if err := s.users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		return err
	}
	return ErrInvalidRefreshToken
}

func (s *AuthService) issuePair(email string) (model.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(email)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(email)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenTypeBearer}, nil
}

// Authenticate resolves an access token to its user. The user is re-read on
// every call, so confirmation or deletion takes effect immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Decode(token, crypto.ScopeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
