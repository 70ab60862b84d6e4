package repository

import (
	"context"
	"fmt"

	"github.com/astraschool/astra-platform/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, balance, is_admin, is_banned, is_founder, created_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Password, &u.Balance, &u.IsAdmin, &u.IsBanned, &u.IsFounder, &u.CreatedAt)
}

type CreateUserParams struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Balance      int64
	IsAdmin      bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, balance, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + userColumns
	var u models.User
	if err := scanUser(q.db.QueryRow(ctx, query, arg.ID, arg.Email, arg.PasswordHash, arg.Balance, arg.IsAdmin), &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListActiveAdmins returns every admin eligible for automatic equity
// grants and distribution fees.
func (q *Queries) ListActiveAdmins(ctx context.Context) ([]models.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin AND NOT is_banned ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active admins: %w", err)
	}
	defer rows.Close()

	var admins []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}

// DeductUserBalance applies a guarded decrement. The balance check lives
// in the same statement so concurrent callers cannot race it below zero.
// Returns the number of rows updated: 0 means the user is missing or the
// balance was insufficient.
func (q *Queries) DeductUserBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE users SET balance = balance - $1
		WHERE id = $2 AND balance >= $1
	`, amount, userID)
	if err != nil {
		return 0, fmt.Errorf("deduct balance for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// AddUserBalance credits a user unconditionally.
func (q *Queries) AddUserBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return 0, fmt.Errorf("add balance for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// SetUserBalance sets a balance outright. Reserved for the admin adjust
// and role-change paths, which validate the value before calling.
func (q *Queries) SetUserBalance(ctx context.Context, userID uuid.UUID, balance int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, balance, userID)
	if err != nil {
		return 0, fmt.Errorf("set balance for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// GetUserBalanceForUpdate reads a balance under a row lock.
func (q *Queries) GetUserBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := q.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (q *Queries) SetUserBanned(ctx context.Context, userID uuid.UUID, banned bool) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, userID)
	if err != nil {
		return 0, fmt.Errorf("set banned for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) SetUserAdmin(ctx context.Context, userID uuid.UUID, admin bool) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE users SET is_admin = $1 WHERE id = $2`, admin, userID)
	if err != nil {
		return 0, fmt.Errorf("set admin for user %s: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// UserExists reports whether an account exists, banned or not.
func (q *Queries) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return exists, nil
}
