package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/addressbook/addressbook-go/internal/model"
)

var ErrContactNotFound = errors.New("contact not found")

const contactColumns = `id, user_id, name, surname, email, phone, birthday, address, created_at, updated_at`

// filterColumns maps filterable fields to their columns. Only these names
// ever reach the SQL text; values are always bound.
var filterColumns = map[model.FilterField]string{
	model.FieldName:     "name",
	model.FieldSurname:  "surname",
	model.FieldEmail:    "email",
	model.FieldPhone:    "phone",
	model.FieldBirthday: "birthday",
	model.FieldAddress:  "address",
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ContactRepository handles contact persistence. Every query is scoped by
// the owning user's ID.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a contact and sets its generated ID.
func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	query := `INSERT INTO contacts (user_id, name, surname, email, phone, birthday, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		c.UserID, c.Name, c.Surname, c.Email, c.Phone, birthdayValue(c), c.Address, c.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Get returns the contact with id owned by userID.
func (r *ContactRepository) Get(ctx context.Context, userID, id int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? AND id = ?`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns a page of the user's contacts matching every predicate of filter.
func (r *ContactRepository) List(ctx context.Context, userID int64, filter model.ContactFilter, offset, limit int) ([]model.Contact, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ?`)
	args := []any{userID}

	for _, p := range filter {
		col, ok := filterColumns[p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", model.ErrInvalidFilter, p.Field)
		}
		sb.WriteString(` AND ` + col + ` = ?`)
		args = append(args, p.Value)
	}

	sb.WriteString(` ORDER BY id LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	return r.query(ctx, sb.String(), args...)
}

// ListByBirthdays returns a page of the user's contacts whose birthday falls
// on one of days, ignoring the year.
func (r *ContactRepository) ListByBirthdays(ctx context.Context, userID int64, days []model.MonthDay, offset, limit int) ([]model.Contact, error) {
	if len(days) == 0 {
		return []model.Contact{}, nil
	}

	pairs := make([]string, len(days))
	args := []any{userID}
	for i, d := range days {
		pairs[i] = "(?, ?)"
		args = append(args, int(d.Month), d.Day)
	}
	args = append(args, limit, offset)

	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE user_id = ? AND birthday IS NOT NULL
		AND (MONTH(birthday), DAYOFMONTH(birthday)) IN (` + strings.Join(pairs, ", ") + `)
		ORDER BY id LIMIT ? OFFSET ?`

	return r.query(ctx, query, args...)
}

// Update writes every mutable field of c. The row must belong to c.UserID.
func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	query := `UPDATE contacts SET name = ?, surname = ?, email = ?, phone = ?, birthday = ?, address = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`

	var updatedAt sql.NullTime
	if c.UpdatedAt != nil {
		updatedAt = sql.NullTime{Time: *c.UpdatedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		c.Name, c.Surname, c.Email, c.Phone, birthdayValue(c), c.Address, updatedAt,
		c.UserID, c.ID,
	)
	return err
}

// Delete removes the contact with id owned by userID.
func (r *ContactRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrContactNotFound)
}

func (r *ContactRepository) query(ctx context.Context, query string, args ...any) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	return contacts, rows.Err()
}

func scanContact(s rowScanner) (*model.Contact, error) {
	var (
		c         model.Contact
		birthday  sql.NullTime
		updatedAt sql.NullTime
	)
	if err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Surname, &c.Email, &c.Phone,
		&birthday, &c.Address, &c.CreatedAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if birthday.Valid {
		b := birthday.Time
		c.Birthday = &b
	}
	if updatedAt.Valid {
		u := updatedAt.Time
		c.UpdatedAt = &u
	}
	return &c, nil
}

func birthdayValue(c *model.Contact) sql.NullTime {
	if c.Birthday == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *c.Birthday, Valid: true}
}
