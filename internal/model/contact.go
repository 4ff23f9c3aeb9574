package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format of contact birthdays.
const DateLayout = "2006-01-02"

var ErrInvalidBirthday = errors.New("birthday must be a date in YYYY-MM-DD format")

// Contact represents an address book entry owned by exactly one user.
type Contact struct {
	ID        int64
	UserID    int64
	Name      string
	Surname   string
	Email     string
	Phone     string
	Birthday  *time.Time
	Address   string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ContactRequest represents a contact creation request.
type ContactRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Address  string `json:"address"`
}

// ContactPatch represents a partial update. A nil or empty field leaves the
// stored value untouched, so a field can never be cleared through a patch.
type ContactPatch struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Birthday *string `json:"birthday"`
	Address  *string `json:"address"`
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Birthday  string     `json:"birthday,omitempty"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// ParseBirthday parses a YYYY-MM-DD birthday. An empty string yields nil.
func ParseBirthday(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, ErrInvalidBirthday
	}
	return &d, nil
}

func present(p *string) bool {
	return p != nil && *p != ""
}

// IsDirty reports whether at least one field of the patch carries a value.
func (p ContactPatch) IsDirty() bool {
	return present(p.Name) || present(p.Surname) || present(p.Email) ||
		present(p.Phone) || present(p.Birthday) || present(p.Address)
}

// Validate checks the fields that need parsing before the patch is applied.
func (p ContactPatch) Validate() error {
	if present(p.Birthday) {
		if _, err := ParseBirthday(*p.Birthday); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies every present field onto c and stamps UpdatedAt with now when
// the patch is dirty.
func (p ContactPatch) Apply(c *Contact, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if present(p.Name) {
		c.Name = *p.Name
	}
	if present(p.Surname) {
		c.Surname = *p.Surname
	}
	if present(p.Email) {
		c.Email = *p.Email
	}
	if present(p.Phone) {
		c.Phone = *p.Phone
	}
	if present(p.Birthday) {
		c.Birthday, _ = ParseBirthday(*p.Birthday)
	}
	if present(p.Address) {
		c.Address = *p.Address
	}
	if p.IsDirty() {
		t := now.UTC()
		c.UpdatedAt = &t
	}
	return nil
}

// ToResponse converts the contact to its API representation.
func (c *Contact) ToResponse() ContactResponse {
	resp := ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Surname:   c.Surname,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.Format(DateLayout)
	}
	return resp
}

// ContactsToResponse converts a slice of contacts, never returning nil.
func ContactsToResponse(contacts []Contact) []ContactResponse {
	result := make([]ContactResponse, len(contacts))
	for i := range contacts {
		result[i] = contacts[i].ToResponse()
	}
	return result
}
