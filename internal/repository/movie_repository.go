// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for movies. The derived columns
// (is_current, rating, comments_count) are only ever written by the currency
// sweep and the review repository; everything else treats them as read-only.
package repository

import (
    "context"      // context allows passing deadlines and cancellation signals to DB operations
    "database/sql" // sql provides generic database operations and drivers
    "errors"       // errors is used for sentinel comparisons
    "strings"      // strings builds LIKE patterns for search

    "github.com/filmreel/movie-booking/internal/model"
)

const movieCols = "id, title, description, genre, release_date, poster_url, is_current, rating, comments_count, created_at, updated_at"

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
    db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
    return &MovieRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *MovieRepo) DB() *sql.DB { return r.db }

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
    var m model.Movie
    err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.ReleaseDate,
        &m.PosterURL, &m.IsCurrent, &m.Rating, &m.CommentsCount, &m.CreatedAt, &m.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &m, nil
}

// Create inserts a new movie. New movies start with is_current=false;
// the sweep flips the flag once a future screening exists. On success
// the generated ID and default fields are populated on the struct.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
    const q = `INSERT INTO movies (title, description, genre, release_date, poster_url) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.ReleaseDate, m.PosterURL)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    const sel = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
    got, err := scanMovie(r.db.QueryRowContext(ctx, sel, m.ID))
    if err != nil {
        return err
    }
    *m = *got
    return nil
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound
// when no matching row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
    const q = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
    m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrMovieNotFound
        }
        return nil, err
    }
    return m, nil
}

// Update changes a movie's editable attributes. Derived columns are
// deliberately absent from the SET list. Returns ErrMovieNotFound
// when the row does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
    const q = `UPDATE movies
               SET title = ?, description = ?, genre = ?, release_date = ?, poster_url = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.ReleaseDate, m.PosterURL, m.ID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // distinguish missing row from a no-op update
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, m.ID).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return ErrMovieNotFound
            }
            return err
        }
    }
    return nil
}

// DeleteTx removes a movie inside the caller's transaction. Used by
// the admin delete flow after the movie's last screening is gone.
func (r *MovieRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrMovieNotFound
    }
    return nil
}

// ListCurrent returns up to limit currently-showing movies, newest
// release first. Used by the home page listing.
func (r *MovieRepo) ListCurrent(ctx context.Context, limit int) ([]model.Movie, error) {
    const q = `SELECT ` + movieCols + ` FROM movies WHERE is_current = TRUE ORDER BY release_date DESC, id DESC LIMIT ?`
    return r.listMovies(ctx, q, limit)
}

// ListShowing returns a page of currently-showing movies ordered by
// release date descending, plus the total count for pagination.
func (r *MovieRepo) ListShowing(ctx context.Context, page, pageSize int) ([]model.Movie, int64, error) {
    var total int64
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies WHERE is_current = TRUE`).Scan(&total); err != nil {
        return nil, 0, err
    }
    const q = `SELECT ` + movieCols + ` FROM movies WHERE is_current = TRUE ORDER BY release_date DESC, id DESC LIMIT ? OFFSET ?`
    items, err := r.listMovies(ctx, q, pageSize, (page-1)*pageSize)
    return items, total, err
}

// ListTopRated returns a page of movies ordered by rating descending.
func (r *MovieRepo) ListTopRated(ctx context.Context, page, pageSize int) ([]model.Movie, int64, error) {
    var total int64
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
        return nil, 0, err
    }
    const q = `SELECT ` + movieCols + ` FROM movies ORDER BY rating DESC, id ASC LIMIT ? OFFSET ?`
    items, err := r.listMovies(ctx, q, pageSize, (page-1)*pageSize)
    return items, total, err
}

// ListMostCommented returns a page of movies ordered by review count
// descending.
func (r *MovieRepo) ListMostCommented(ctx context.Context, page, pageSize int) ([]model.Movie, int64, error) {
    var total int64
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
        return nil, 0, err
    }
    const q = `SELECT ` + movieCols + ` FROM movies ORDER BY comments_count DESC, id ASC LIMIT ? OFFSET ?`
    items, err := r.listMovies(ctx, q, pageSize, (page-1)*pageSize)
    return items, total, err
}

// SearchByTitle returns movies whose title contains the query,
// case-insensitively. An empty query yields an empty slice.
func (r *MovieRepo) SearchByTitle(ctx context.Context, query string) ([]model.Movie, error) {
    query = strings.TrimSpace(query)
    if query == "" {
        return []model.Movie{}, nil
    }
    const q = `SELECT ` + movieCols + ` FROM movies WHERE LOWER(title) LIKE ? ORDER BY title ASC`
    return r.listMovies(ctx, q, "%"+strings.ToLower(query)+"%")
}

func (r *MovieRepo) listMovies(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Movie, 0)
    for rows.Next() {
        m, err := scanMovie(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// CurrencyState pairs a movie's stored is_current flag with the live
// answer to "does it have a future screening". The sweep updates the
// rows where the two disagree.
type CurrencyState struct {
    MovieID   uint64
    IsCurrent bool
    HasFuture bool
}

// ListCurrencyStatesTx returns the currency state of every movie in a
// single pass, inside the caller's transaction.
func (r *MovieRepo) ListCurrencyStatesTx(ctx context.Context, tx *sql.Tx) ([]CurrencyState, error) {
    const q = `SELECT m.id, m.is_current,
                      EXISTS(SELECT 1 FROM screenings s WHERE s.movie_id = m.id AND s.starts_at >= NOW())
               FROM movies m`
    rows, err := tx.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []CurrencyState
    for rows.Next() {
        var st CurrencyState
        if err := rows.Scan(&st.MovieID, &st.IsCurrent, &st.HasFuture); err != nil {
            return nil, err
        }
        out = append(out, st)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// SetIsCurrentTx writes the derived flag for one movie inside the
// caller's transaction.
func (r *MovieRepo) SetIsCurrentTx(ctx context.Context, tx *sql.Tx, movieID uint64, isCurrent bool) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE movies SET is_current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        isCurrent, movieID)
    return err
}

// ToggleFavorite adds the movie to the user's favorites, or removes
// it when already present. Returns true when the movie is a favorite
// after the call.
func (r *MovieRepo) ToggleFavorite(ctx context.Context, userID, movieID uint64) (bool, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM user_favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
    if err != nil {
        return false, err
    }
    if n, _ := res.RowsAffected(); n > 0 {
        return false, nil
    }
    if _, err := r.db.ExecContext(ctx,
        `INSERT INTO user_favorites (user_id, movie_id) VALUES (?, ?)`, userID, movieID); err != nil {
        if isDuplicateKey(err) {
            // concurrent toggle; treat as already favorited
            return true, nil
        }
        return false, err
    }
    return true, nil
}

// ListFavorites returns the user's favorite movies ordered by title.
func (r *MovieRepo) ListFavorites(ctx context.Context, userID uint64) ([]model.Movie, error) {
    const q = `SELECT m.id, m.title, m.description, m.genre, m.release_date, m.poster_url,
                      m.is_current, m.rating, m.comments_count, m.created_at, m.updated_at
               FROM movies m
               JOIN user_favorites uf ON uf.movie_id = m.id
               WHERE uf.user_id = ?
               ORDER BY m.title ASC`
    return r.listMovies(ctx, q, userID)
}
