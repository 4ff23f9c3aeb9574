package handler

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/addressbook/addressbook-go/internal/mail"
	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	next  int64
	users map[string]*model.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*model.User{}} }

func (s *memUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	s.next++
	u.ID = s.next
	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) Confirm(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.Confirmed = true
	}
	return nil
}

func (s *memUsers) withID(id int64) *model.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *memUsers) SetRefreshToken(_ context.Context, id int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.withID(id); u != nil {
		u.RefreshToken = token
	}
	return nil
}

func (s *memUsers) RotateRefreshToken(_ context.Context, id int64, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.withID(id)
	if u == nil || u.RefreshToken != current {
		return repository.ErrRefreshTokenMismatch
	}
	u.RefreshToken = next
	return nil
}

func (s *memUsers) UpdateAvatar(_ context.Context, email, url string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Avatar = url
	cp := *u
	return &cp, nil
}

type memContacts struct {
	mu   sync.Mutex
	next int64
	rows []model.Contact
}

func (s *memContacts) Create(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	c.ID = s.next
	s.rows = append(s.rows, *c)
	return nil
}

func (s *memContacts) Get(_ context.Context, userID, id int64) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.rows {
		if c.UserID == userID && c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (s *memContacts) List(_ context.Context, userID int64, filter model.ContactFilter, offset, limit int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := filter.Map()
	out := []model.Contact{}
	for _, c := range s.rows {
		if c.UserID != userID {
			continue
		}
		if v, ok := m[model.FieldName]; ok && c.Name != v {
			continue
		}
		if v, ok := m[model.FieldSurname]; ok && c.Surname != v {
			continue
		}
		out = append(out, c)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memContacts) ListByBirthdays(_ context.Context, userID int64, days []model.MonthDay, offset, limit int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Contact{}
	for _, c := range s.rows {
		if c.UserID != userID || c.Birthday == nil {
			continue
		}
		for _, d := range days {
			if c.Birthday.Month() == d.Month && c.Birthday.Day() == d.Day {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *memContacts) Update(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].UserID == c.UserID && s.rows[i].ID == c.ID {
			s.rows[i] = *c
		}
	}
	return nil
}

func (s *memContacts) Delete(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.rows {
		if c.UserID == userID && c.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrContactNotFound
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Confirmation
}

func (m *captureMailer) Enqueue(c mail.Confirmation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return true
}

func (m *captureMailer) last() mail.Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type stubUploader struct {
	url string
	err error
	key string
}

func (u *stubUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key = key
	io.Copy(io.Discard, body)
	return u.url, nil
}
