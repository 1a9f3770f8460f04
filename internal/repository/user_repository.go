package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/selamtours/tour-booking-api/internal/model"
	"github.com/selamtours/tour-booking-api/internal/utils"
)

// UserRepo persists application users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// ErrLastAdmin is returned when a role change would demote the only
// remaining admin, which would lock everyone out of the admin surface.
var ErrLastAdmin = errors.New("cannot demote the last admin")

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, name, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var nameArg any
	if n := strings.TrimSpace(name); n != "" {
		nameArg = n
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, role) VALUES (?,?,?,?)",
		email, nameArg, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,email,name,password_hash,role,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var name sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if name.Valid {
		n := name.String
		u.Name = &n
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ListAll returns id, email, name and role for every user.  Admin-only.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,name,role FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &name, &u.Role); err != nil {
			return nil, err
		}
		if name.Valid {
			n := name.String
			u.Name = &n
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole changes a user's role.  Demoting the last remaining ADMIN
// is rejected with ErrLastAdmin; the admin count check and the role
// write run in one transaction so two concurrent demotions cannot both
// slip past the guard.
func (r *UserRepo) UpdateRole(ctx context.Context, userID uint64, role string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT role FROM users WHERE id=? FOR UPDATE", userID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		return err
	}
	if current == model.RoleAdmin && role != model.RoleAdmin {
		var admins int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE role=? FOR UPDATE", model.RoleAdmin).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
