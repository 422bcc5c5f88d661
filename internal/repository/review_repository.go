// This file implements the review repository. Reviews carry a text
// body and a rate, and every mutation keeps the owning movie's
// comments_count and rating columns in step inside the same
// transaction so the aggregates never drift from the review rows.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/filmreel/movie-booking/internal/model"
)

// ReviewRepo provides persistence operations for reviews.
type ReviewRepo struct {
    db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
    return &ReviewRepo{db: db}
}

// DB exposes the underlying sql.DB.
func (r *ReviewRepo) DB() *sql.DB { return r.db }

// refreshMovieAggregates recomputes the movie's rating from its
// current reviews and adjusts comments_count by delta. Both columns
// change in one UPDATE so a crash between them cannot be observed.
func refreshMovieAggregates(ctx context.Context, tx *sql.Tx, movieID uint64, delta int64) error {
    const q = `UPDATE movies
               SET comments_count = comments_count + ?,
                   rating = (SELECT COALESCE(AVG(rate), 0) FROM reviews WHERE movie_id = ?)
               WHERE id = ?`
    res, err := tx.ExecContext(ctx, q, delta, movieID, movieID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // MySQL reports rows changed, not rows matched: a delta of 0
        // with an unchanged mean is a legitimate no-op. Distinguish it
        // from a missing movie before failing the transaction.
        var one int
        if err := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, movieID).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrMovieNotFound
            }
            return err
        }
    }
    return nil
}

// Create stores a new review and bumps the movie's aggregates in the
// same transaction. The review's ID and timestamps are populated on
// success.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) (err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var res sql.Result
    res, err = tx.ExecContext(ctx,
        `INSERT INTO reviews (user_id, movie_id, content, rate) VALUES (?, ?, ?, ?)`,
        rev.UserID, rev.MovieID, rev.Content, rev.Rate)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rev.ID = uint64(id)
    if err = refreshMovieAggregates(ctx, tx, rev.MovieID, 1); err != nil {
        return err
    }
    err = tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM reviews WHERE id = ?`, rev.ID).
        Scan(&rev.CreatedAt, &rev.UpdatedAt)
    return err
}

// GetByID retrieves a review by its ID.  It returns
// ErrReviewNotFound if there is no matching row.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
    const q = `SELECT id, user_id, movie_id, content, rate, created_at, updated_at FROM reviews WHERE id = ?`
    var rev model.Review
    err := r.db.QueryRowContext(ctx, q, id).Scan(&rev.ID, &rev.UserID, &rev.MovieID, &rev.Content, &rev.Rate, &rev.CreatedAt, &rev.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReviewNotFound
        }
        return nil, err
    }
    return &rev, nil
}

// Update rewrites a review's content and rate on behalf of its
// owner and recomputes the movie's rating. comments_count is left
// untouched since the review still exists.
func (r *ReviewRepo) Update(ctx context.Context, id, userID uint64, content string, rate float64) (err error) {
    rev, err := r.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if rev.UserID != userID {
        return ErrForbidden
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    if _, err = tx.ExecContext(ctx,
        `UPDATE reviews SET content = ?, rate = ? WHERE id = ?`, content, rate, id); err != nil {
        return err
    }
    err = refreshMovieAggregates(ctx, tx, rev.MovieID, 0)
    return err
}

// Delete removes a review and decrements the movie's aggregates in
// the same transaction. Admins may delete any review; regular users
// only their own, enforced by the caller passing requireOwner.
func (r *ReviewRepo) Delete(ctx context.Context, id, userID uint64, requireOwner bool) (err error) {
    rev, err := r.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if requireOwner && rev.UserID != userID {
        return ErrForbidden
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var res sql.Result
    res, err = tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        err = ErrReviewNotFound
        return err
    }
    err = refreshMovieAggregates(ctx, tx, rev.MovieID, -1)
    return err
}

// ReviewRow is one review joined with its author's username for
// display on movie pages.
type ReviewRow struct {
    ID        uint64    `json:"id"`
    UserID    uint64    `json:"user_id"`
    Username  string    `json:"username"`
    MovieID   uint64    `json:"movie_id"`
    Content   string    `json:"content"`
    Rate      float64   `json:"rate"`
    CreatedAt time.Time `json:"created_at"`
}

// ListByMovie returns a movie's reviews with author usernames, most
// recent first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID uint64) ([]ReviewRow, error) {
    const q = `SELECT r.id, r.user_id, u.username, r.movie_id, r.content, r.rate, r.created_at
               FROM reviews r
               JOIN users u ON u.id = r.user_id
               WHERE r.movie_id = ?
               ORDER BY r.created_at DESC`
    return r.listRows(ctx, q, movieID)
}

// ListByUser returns every review written by one user, most recent
// first.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]ReviewRow, error) {
    const q = `SELECT r.id, r.user_id, u.username, r.movie_id, r.content, r.rate, r.created_at
               FROM reviews r
               JOIN users u ON u.id = r.user_id
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC`
    return r.listRows(ctx, q, userID)
}

func (r *ReviewRepo) listRows(ctx context.Context, q string, args ...any) ([]ReviewRow, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ReviewRow, 0)
    for rows.Next() {
        var row ReviewRow
        if err := rows.Scan(&row.ID, &row.UserID, &row.Username, &row.MovieID, &row.Content, &row.Rate, &row.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
