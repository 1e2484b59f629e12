package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/crucial707/notes-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// UserRepo
// ==========================

// UserRepo is the credential store. Only bcrypt hashes are persisted.
type UserRepo struct {
	DB *sql.DB

	// Cost is the bcrypt cost for new hashes. Zero means bcrypt.DefaultCost.
	Cost int
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// dummyHash is compared against when the username does not exist.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

func (r *UserRepo) hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	cost := r.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// ==========================
// Create User
// ==========================

// Create stores a new user. Returns ErrConflict when the username is taken.
func (r *UserRepo) Create(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := r.hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, CreatedAt: now()}

	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, hash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================

// GetByUsername includes the password hash. Callers must not serialize it (the json tag hides it).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by username: %w", err)
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// ==========================
// Verify Credentials
// ==========================

// Verify returns the user when password matches. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials after one bcrypt comparison.
func (r *UserRepo) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// checkPassword reports whether password matches the stored hash of user id.
// A missing user is a mismatch, not an error.
func (r *UserRepo) checkPassword(ctx context.Context, id int, password string) (bool, error) {
	var hash string
	err := r.DB.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select password hash: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// ==========================
// Update Password
// ==========================

// UpdatePassword replaces the hash only when oldPassword verifies. Returns false otherwise.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int, oldPassword, newPassword string) (bool, error) {
	ok, err := r.checkPassword(ctx, id, oldPassword)
	if err != nil || !ok {
		return false, err
	}

	hash, err := r.hash(newPassword)
	if err != nil {
		return false, err
	}

	result, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// ==========================
// Delete User
// ==========================

// Delete removes the user together with their notes and activity after
// re-verifying password. All three deletes share one transaction.
func (r *UserRepo) Delete(ctx context.Context, id int, password string) (bool, error) {
	ok, err := r.checkPassword(ctx, id, password)
	if err != nil || !ok {
		return false, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_log WHERE user_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE owner_id = $1`, id); err != nil {
		return false, fmt.Errorf("delete notes: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete user: %w", err)
	}
	return true, nil
}
