package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/filmreel/movie-booking/internal/model"
    "github.com/filmreel/movie-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrUserExists = errors.New("username or email already exists")

const userCols = "id,username,email,password_hash,role,is_active,created_at,updated_at"

// Create inserts a user and returns its ID. Username and email carry
// UNIQUE keys; a duplicate on either surfaces as ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
    username = strings.TrimSpace(username)
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
        username, email, hash, role)
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrUserExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+userCols+" FROM users WHERE email=? LIMIT 1",
        email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+userCols+" FROM users WHERE username=? LIMIT 1",
        strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+userCols+" FROM users WHERE id=? LIMIT 1",
        id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    return u, err
}

// UpdateProfile changes username and email. A duplicate on either
// unique column surfaces as ErrUserExists.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email string) error {
    username = strings.TrimSpace(username)
    email = strings.ToLower(strings.TrimSpace(email))
    _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET username=?, email=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
        username, email, id)
    if err != nil && isDuplicateKey(err) {
        return ErrUserExists
    }
    return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return err
    }
    _, err = r.DB.ExecContext(ctx,
        "UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
        hash, id)
    return err
}
