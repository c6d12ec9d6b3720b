package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
)

const userColumns = `id, email, password_hash, first_name, last_name, middle_name, username,
	address, contact_number, date_of_birth, user_type, created_at, updated_at`

// UserRepository handles user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u, assigning an id when it has none.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, middle_name, username,
		                   address, contact_number, date_of_birth, user_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.MiddleName, u.Username,
		u.Address, u.ContactNumber, u.DateOfBirth, u.UserType,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return database.MapError(err)
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.Conn(ctx).GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// GetByEmail looks a user up case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.Conn(ctx).GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// List returns a page of users, optionally restricted to one role.
func (r *UserRepository) List(ctx context.Context, role *domain.Role, page, perPage int) ([]*domain.User, int64, error) {
	w := &where{}
	if role != nil {
		w.and("user_type = " + w.arg(*role))
	}

	var total int64
	if err := r.db.Conn(ctx).GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC` + w.page(page, perPage)

	users := []*domain.User{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &users, query, w.args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// IDsByRole returns the ids of every user holding role.
func (r *UserRepository) IDsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	ids := []string{}
	err := r.db.Conn(ctx).SelectContext(ctx, &ids, `SELECT id FROM users WHERE user_type = $1`, role)
	return ids, err
}

// Update writes the mutable profile fields of u. Role and email are left alone.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, middle_name = $4, address = $5,
		    contact_number = $6, date_of_birth = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.MiddleName, u.Address, u.ContactNumber, u.DateOfBirth,
	).Scan(&u.UpdatedAt)
	if err != nil {
		return notFound(err, "user")
	}
	return nil
}

// Delete removes a user; profiles, assignments and notifications cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err)
	}
	return affected(res, "user")
}

// Counts summarises users by role.
func (r *UserRepository) Counts(ctx context.Context) (*domain.UserCounts, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE user_type = 'beneficiary') AS beneficiaries,
		       COUNT(*) FILTER (WHERE user_type = 'bhw') AS bhws,
		       COUNT(*) FILTER (WHERE user_type = 'mswdo') AS mswdo,
		       COUNT(*) FILTER (WHERE user_type = 'admin') AS admins
		FROM users
	`

	var c domain.UserCounts
	if err := r.db.Conn(ctx).GetContext(ctx, &c, query); err != nil {
		return nil, err
	}
	return &c, nil
}
