package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/addressbook/addressbook-go/internal/model"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match")
)

const mysqlDuplicateEntry = 1062

const userColumns = `id, username, email, password_hash, confirmed, refresh_token, avatar, created_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, confirmed, avatar) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Confirmed, nullString(user.Avatar),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByEmail retrieves a user by their email address. The match is exact.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Confirm marks the user's email as confirmed. Confirming twice is a no-op.
func (r *UserRepository) Confirm(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET confirmed = TRUE WHERE email = ?`, email)
	return err
}

// SetRefreshToken stores token as the user's only active refresh token.
// An empty token clears the session.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET refresh_token = ? WHERE id = ?`, nullString(token), userID)
	return err
}

// RotateRefreshToken replaces current with next only if current is still the
// stored token. It returns ErrRefreshTokenMismatch when another writer got
// there first.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID int64, current, next string) error {
	query := `UPDATE users SET refresh_token = ? WHERE id = ? AND refresh_token = ?`

	result, err := r.db.ExecContext(ctx, query, next, userID, current)
	if err != nil {
		return err
	}
	return requireRow(result, ErrRefreshTokenMismatch)
}

// UpdateAvatar sets the avatar URL and returns the updated user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, url string) (*model.User, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE email = ?`, nullString(url), email); err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, email)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user         model.User
		refreshToken sql.NullString
		avatar       sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Confirmed, &refreshToken, &avatar, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.RefreshToken = refreshToken.String
	user.Avatar = avatar.String
	return &user, nil
}

func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
