package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/repository"
)

var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidPagination = errors.New("skip must not be negative and limit must be positive")
)

const (
	DefaultContactLimit  = 100
	DefaultBirthdayLimit = 20
	MaxLimit             = 1000
)

// Page selects a window of a listing.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalize() (Page, error) {
	if p.Skip < 0 || p.Limit < 1 {
		return Page{}, ErrInvalidPagination
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// ContactService handles address book operations. Every call is scoped to
// the owner passed in; contacts of other users are indistinguishable from
// missing ones.
type ContactService struct {
	repo ContactStore
	now  func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(repo ContactStore) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

// List returns a page of owner's contacts matching the raw filter expression.
func (s *ContactService) List(ctx context.Context, owner *model.User, rawFilter string, page Page) ([]model.ContactResponse, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	filter, err := model.ParseContactFilter(rawFilter)
	if err != nil {
		return nil, err
	}

	contacts, err := s.repo.List(ctx, owner.ID, filter, page.Skip, page.Limit)
	if err != nil {
		return nil, err
	}
	return model.ContactsToResponse(contacts), nil
}

// Get returns one of owner's contacts.
func (s *ContactService) Get(ctx context.Context, owner *model.User, id int64) (model.ContactResponse, error) {
	c, err := s.repo.Get(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return model.ContactResponse{}, ErrContactNotFound
		}
		return model.ContactResponse{}, err
	}
	return c.ToResponse(), nil
}

// UpcomingBirthdays returns owner's contacts whose birthday falls within the
// next BirthdayWindowDays days, today included.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, owner *model.User, page Page) ([]model.ContactResponse, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}

	days := model.UpcomingMonthDays(s.now(), model.BirthdayWindowDays)
	contacts, err := s.repo.ListByBirthdays(ctx, owner.ID, days, page.Skip, page.Limit)
	if err != nil {
		return nil, err
	}
	return model.ContactsToResponse(contacts), nil
}

// Create adds a contact to owner's address book.
func (s *ContactService) Create(ctx context.Context, owner *model.User, req model.ContactRequest) (model.ContactResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.ContactResponse{}, ErrNameRequired
	}
	birthday, err := model.ParseBirthday(req.Birthday)
	if err != nil {
		return model.ContactResponse{}, err
	}

	c := &model.Contact{
		UserID:    owner.ID,
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
		Address:   req.Address,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return model.ContactResponse{}, fmt.Errorf("create contact: %w", err)
	}
	return c.ToResponse(), nil
}

// Update applies patch to one of owner's contacts. It returns nil when the
// contact does not exist for owner. A patch with no values writes nothing.
func (s *ContactService) Update(ctx context.Context, owner *model.User, id int64, patch model.ContactPatch) (*model.ContactResponse, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if patch.IsDirty() {
		if err := patch.Apply(c, s.now()); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("update contact: %w", err)
		}
	}

	resp := c.ToResponse()
	return &resp, nil
}

// Remove deletes one of owner's contacts and returns it. It returns nil when
// the contact does not exist for owner.
func (s *ContactService) Remove(ctx context.Context, owner *model.User, id int64) (*model.ContactResponse, error) {
	c, err := s.repo.Get(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.repo.Delete(ctx, owner.ID, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, nil
		}
		return nil, err
	}

	resp := c.ToResponse()
	return &resp, nil
}
