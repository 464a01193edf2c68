package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/utils"
)

// UserRepo encapsulates all database queries against the `users` table.
// It doubles as the identity provider consulted by the authorization
// middleware (FindRole) and the credential validator used at login.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, password_hash, role,
	first_name, last_name, website, facebook, instagram, youtube, x_link,
	created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName,
		&u.SocialLinks.Website, &u.SocialLinks.Facebook, &u.SocialLinks.Instagram,
		&u.SocialLinks.Youtube, &u.SocialLinks.X,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with a bcrypt-hashed password and returns the
// new row's ID. A duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, hash, role)
	if err != nil {
		// MySQL error 1062: duplicate entry on a unique index
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("%w: create user: %v", ErrStoreUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: create user: %v", ErrStoreUnavailable, err)
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. Returns ErrNotFound
// when no such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: get user by email: %v", ErrStoreUnavailable, err)
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: get user by id: %v", ErrStoreUnavailable, err)
	}
	return u, nil
}

// FindRole returns the role for a subject id. The authorization gate
// calls this on every protected request, so a deleted account is
// locked out as soon as its row is gone.
func (r *UserRepo) FindRole(ctx context.Context, id uint64) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? LIMIT 1", id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: find role: %v", ErrStoreUnavailable, err)
	}
	return role, nil
}

// List returns a page of users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.FirstName, &u.LastName,
			&u.SocialLinks.Website, &u.SocialLinks.Facebook, &u.SocialLinks.Instagram,
			&u.SocialLinks.Youtube, &u.SocialLinks.X,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: list users: %v", ErrStoreUnavailable, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", ErrStoreUnavailable, err)
	}
	return users, nil
}

// Update overwrites the mutable profile fields of a user. The role,
// email and password are managed elsewhere and stay untouched.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username=?, first_name=?, last_name=?,
		 website=?, facebook=?, instagram=?, youtube=?, x_link=?
		 WHERE id=?`,
		u.Username, u.FirstName, u.LastName,
		u.SocialLinks.Website, u.SocialLinks.Facebook, u.SocialLinks.Instagram,
		u.SocialLinks.Youtube, u.SocialLinks.X, u.ID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: update user: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a user row. Missing rows are reported as ErrNotFound
// so admin endpoints can answer 404.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
