package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/addressbook/addressbook-go/internal/mail"
	"github.com/addressbook/addressbook-go/internal/model"
	"github.com/addressbook/addressbook-go/internal/repository"
)

// memUserStore mirrors repository.UserRepository semantics in memory.
type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User

	// rotateErr, when set, is returned by RotateRefreshToken to simulate a
	// concurrent writer winning the race.
	rotateErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*model.User{}}
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) byID(id int64) *model.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *memUserStore) Confirm(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.Confirmed = true
	}
	return nil
}

func (s *memUserStore) SetRefreshToken(_ context.Context, userID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byID(userID); u != nil {
		u.RefreshToken = token
	}
	return nil
}

func (s *memUserStore) RotateRefreshToken(_ context.Context, userID int64, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotateErr != nil {
		return s.rotateErr
	}
	u := s.byID(userID)
	if u == nil || u.RefreshToken != current {
		return repository.ErrRefreshTokenMismatch
	}
	u.RefreshToken = next
	return nil
}

func (s *memUserStore) UpdateAvatar(_ context.Context, email, url string) (*model.User, error) {
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

func (s *memUserStore) stored(email string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[email]
}

// memContactStore mirrors repository.ContactRepository semantics in memory.
type memContactStore struct {
	mu       sync.Mutex
	nextID   int64
	contacts []*model.Contact
	updates  int
}

func (s *memContactStore) Create(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.contacts = append(s.contacts, &cp)
	return nil
}

func (s *memContactStore) find(userID, id int64) (int, *model.Contact) {
	for i, c := range s.contacts {
		if c.UserID == userID && c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

func (s *memContactStore) Get(_ context.Context, userID, id int64) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c := s.find(userID, id)
	if c == nil {
		return nil, repository.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func fieldValue(c *model.Contact, f model.FilterField) string {
	switch f {
	case model.FieldName:
		return c.Name
	case model.FieldSurname:
		return c.Surname
	case model.FieldEmail:
		return c.Email
	case model.FieldPhone:
		return c.Phone
	case model.FieldAddress:
		return c.Address
	case model.FieldBirthday:
		if c.Birthday == nil {
			return ""
		}
		return c.Birthday.Format(model.DateLayout)
	}
	return ""
}

func page(all []model.Contact, offset, limit int) []model.Contact {
	if offset >= len(all) {
		return []model.Contact{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (s *memContactStore) List(_ context.Context, userID int64, filter model.ContactFilter, offset, limit int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Contact{}
next:
	for _, c := range s.contacts {
		if c.UserID != userID {
			continue
		}
		for _, p := range filter {
			if fieldValue(c, p.Field) != p.Value {
				continue next
			}
		}
		out = append(out, *c)
	}
	return page(out, offset, limit), nil
}

func (s *memContactStore) ListByBirthdays(_ context.Context, userID int64, days []model.MonthDay, offset, limit int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Contact{}
	for _, c := range s.contacts {
		if c.UserID != userID || c.Birthday == nil {
			continue
		}
		for _, d := range days {
			if c.Birthday.Month() == d.Month && c.Birthday.Day() == d.Day {
				out = append(out, *c)
				break
			}
		}
	}
	return page(out, offset, limit), nil
}

func (s *memContactStore) Update(_ context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, _ := s.find(c.UserID, c.ID)
	if i < 0 {
		return nil
	}
	cp := *c
	s.contacts[i] = &cp
	s.updates++
	return nil
}

func (s *memContactStore) Delete(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, _ := s.find(userID, id)
	if i < 0 {
		return repository.ErrContactNotFound
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Confirmation
}

func (m *fakeMailer) Enqueue(c mail.Confirmation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return true
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() mail.Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeUploader struct {
	key         string
	keys        []string
	contentType string
	body        []byte
	url         string
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key = key
	u.keys = append(u.keys, key)
	u.contentType = contentType
	u.body, _ = io.ReadAll(body)
	return u.url, nil
}
