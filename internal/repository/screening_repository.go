// This file defines repository methods for screenings. A Screening is the
// schedulable unit of the system: one movie in one hall of one cinema at one
// start time and price. Booking admission and the currency sweep both key off
// this table.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/filmreel/movie-booking/internal/model"
)

const screeningCols = "id, movie_id, cinema_id, hall_id, starts_at, price_cents, created_at, updated_at"

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
    db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
    return &ScreeningRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *ScreeningRepo) DB() *sql.DB { return r.db }

func scanScreening(row interface{ Scan(...any) error }) (*model.Screening, error) {
    var s model.Screening
    err := row.Scan(&s.ID, &s.MovieID, &s.CinemaID, &s.HallID, &s.StartsAt, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// Create inserts a new screening. The caller must have verified that
// the hall belongs to the cinema. A screening duplicating an existing
// (movie, cinema, hall, starts_at) tuple is rejected with ErrConflict
// via the table's UNIQUE key.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) error {
    const q = `INSERT INTO screenings (movie_id, cinema_id, hall_id, starts_at, price_cents) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.MovieID, s.CinemaID, s.HallID, s.StartsAt.UTC(), s.PriceCents)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    const sel = `SELECT ` + screeningCols + ` FROM screenings WHERE id = ?`
    got, err := scanScreening(r.db.QueryRowContext(ctx, sel, s.ID))
    if err != nil {
        return err
    }
    *s = *got
    return nil
}

// CreateBulk inserts multiple screenings in one statement. Used by
// the admin movie-creation fan-out. Passing an empty slice has no
// effect and returns nil.
func (r *ScreeningRepo) CreateBulk(ctx context.Context, screenings []model.Screening) error {
    if len(screenings) == 0 {
        return nil
    }
    query := `INSERT INTO screenings (movie_id, cinema_id, hall_id, starts_at, price_cents) VALUES `
    args := make([]interface{}, 0, len(screenings)*5)
    for i, s := range screenings {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args, s.MovieID, s.CinemaID, s.HallID, s.StartsAt.UTC(), s.PriceCents)
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    if err != nil && isDuplicateKey(err) {
        return ErrConflict
    }
    return err
}

// GetByID retrieves a screening by its ID.  It returns
// ErrScreeningNotFound if there is no matching row.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
    const q = `SELECT ` + screeningCols + ` FROM screenings WHERE id = ?`
    s, err := scanScreening(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrScreeningNotFound
        }
        return nil, err
    }
    return s, nil
}

// ScreeningDetail joins a screening with its movie, cinema and hall
// so seat-map and receipt responses can be assembled in one query.
type ScreeningDetail struct {
    ID         uint64    `json:"id"`
    MovieID    uint64    `json:"movie_id"`
    MovieTitle string    `json:"movie_title"`
    CinemaID   uint64    `json:"cinema_id"`
    CinemaName string    `json:"cinema_name"`
    HallID     uint64    `json:"hall_id"`
    HallName   string    `json:"hall_name"`
    HallSize   uint32    `json:"hall_size"`
    StartsAt   time.Time `json:"starts_at"`
    PriceCents uint32    `json:"price_cents"`
}

// GetDetail loads a screening together with movie title, cinema name
// and hall name/size. Returns ErrScreeningNotFound when absent.
func (r *ScreeningRepo) GetDetail(ctx context.Context, id uint64) (*ScreeningDetail, error) {
    const q = `SELECT s.id, s.movie_id, m.title, s.cinema_id, c.name, s.hall_id, h.name, h.size, s.starts_at, s.price_cents
               FROM screenings s
               JOIN movies m ON m.id = s.movie_id
               JOIN cinemas c ON c.id = s.cinema_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ?`
    var d ScreeningDetail
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &d.ID, &d.MovieID, &d.MovieTitle, &d.CinemaID, &d.CinemaName,
        &d.HallID, &d.HallName, &d.HallSize, &d.StartsAt, &d.PriceCents,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrScreeningNotFound
        }
        return nil, err
    }
    return &d, nil
}

// GetDetailTx is GetDetail inside the caller's transaction, used by
// booking admission so hall bounds and price are read under the same
// transaction that inserts the bookings.
func (r *ScreeningRepo) GetDetailTx(ctx context.Context, tx *sql.Tx, id uint64) (*ScreeningDetail, error) {
    const q = `SELECT s.id, s.movie_id, m.title, s.cinema_id, c.name, s.hall_id, h.name, h.size, s.starts_at, s.price_cents
               FROM screenings s
               JOIN movies m ON m.id = s.movie_id
               JOIN cinemas c ON c.id = s.cinema_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ?`
    var d ScreeningDetail
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &d.ID, &d.MovieID, &d.MovieTitle, &d.CinemaID, &d.CinemaName,
        &d.HallID, &d.HallName, &d.HallSize, &d.StartsAt, &d.PriceCents,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrScreeningNotFound
        }
        return nil, err
    }
    return &d, nil
}

// ListUpcomingByMovie returns future screenings of a movie ordered by
// start time. Used on the movie detail page.
func (r *ScreeningRepo) ListUpcomingByMovie(ctx context.Context, movieID uint64) ([]model.Screening, error) {
    const q = `SELECT ` + screeningCols + ` FROM screenings WHERE movie_id = ? AND starts_at >= NOW() ORDER BY starts_at ASC`
    return r.list(ctx, q, movieID)
}

// ListByCinema returns every screening hosted by a cinema ordered by
// start time ascending.
func (r *ScreeningRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]model.Screening, error) {
    const q = `SELECT ` + screeningCols + ` FROM screenings WHERE cinema_id = ? ORDER BY starts_at ASC`
    return r.list(ctx, q, cinemaID)
}

func (r *ScreeningRepo) list(ctx context.Context, q string, args ...any) ([]model.Screening, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Screening, 0)
    for rows.Next() {
        s, err := scanScreening(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Delete removes a screening. Deletion is refused with ErrConflict
// while bookings still reference it.
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64) error {
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
    var bookings int64
    if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE screening_id = ?`, id).Scan(&bookings); err != nil {
        return err
    }
    if bookings > 0 {
        err = ErrConflict
        return err
    }
    var res sql.Result
    res, err = tx.ExecContext(ctx, `DELETE FROM screenings WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        err = ErrScreeningNotFound
    }
    return err
}

// DeleteByMovieAndCinemaTx removes all of a movie's screenings at one
// cinema inside the caller's transaction and reports how many
// screenings of that movie remain anywhere. Screenings with bookings
// block the removal with ErrConflict.
func (r *ScreeningRepo) DeleteByMovieAndCinemaTx(ctx context.Context, tx *sql.Tx, movieID, cinemaID uint64) (remaining int64, err error) {
    var booked int64
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings b JOIN screenings s ON s.id = b.screening_id
         WHERE s.movie_id = ? AND s.cinema_id = ?`, movieID, cinemaID).Scan(&booked)
    if err != nil {
        return 0, err
    }
    if booked > 0 {
        return 0, ErrConflict
    }
    if _, err = tx.ExecContext(ctx,
        `DELETE FROM screenings WHERE movie_id = ? AND cinema_id = ?`, movieID, cinemaID); err != nil {
        return 0, err
    }
    err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM screenings WHERE movie_id = ?`, movieID).Scan(&remaining)
    return remaining, err
}

// ScreeningSearchQuery defines filters & pagination for searching
// upcoming screenings.
type ScreeningSearchQuery struct {
    Movie    string
    Cinema   string
    Page     int
    PageSize int
}

// ScreeningRow is one search result with display names joined in.
type ScreeningRow struct {
    ID         uint64    `json:"id"`
    MovieID    uint64    `json:"movie_id"`
    MovieTitle string    `json:"movie_title"`
    CinemaID   uint64    `json:"cinema_id"`
    CinemaName string    `json:"cinema_name"`
    HallName   string    `json:"hall_name"`
    StartsAt   time.Time `json:"starts_at"`
    PriceCents uint32    `json:"price_cents"`
}

// SearchUpcoming returns upcoming screenings matching the query plus
// the total match count for pagination.
func (r *ScreeningRepo) SearchUpcoming(ctx context.Context, q ScreeningSearchQuery) ([]ScreeningRow, int64, error) {
    cond := "s.starts_at >= NOW()"
    args := []any{}
    if q.Movie != "" {
        cond += " AND LOWER(m.title) LIKE ?"
        args = append(args, "%"+strings.ToLower(q.Movie)+"%")
    }
    if q.Cinema != "" {
        cond += " AND LOWER(c.name) LIKE ?"
        args = append(args, "%"+strings.ToLower(q.Cinema)+"%")
    }
    countQ := `SELECT COUNT(*)
               FROM screenings s
               JOIN movies m ON m.id = s.movie_id
               JOIN cinemas c ON c.id = s.cinema_id
               WHERE ` + cond
    var total int64
    if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 || q.PageSize > 100 {
        q.PageSize = 20
    }
    listQ := `SELECT s.id, s.movie_id, m.title, s.cinema_id, c.name, h.name, s.starts_at, s.price_cents
              FROM screenings s
              JOIN movies m ON m.id = s.movie_id
              JOIN cinemas c ON c.id = s.cinema_id
              JOIN halls h ON h.id = s.hall_id
              WHERE ` + cond + `
              ORDER BY s.starts_at ASC
              LIMIT ? OFFSET ?`
    args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
    rows, err := r.db.QueryContext(ctx, listQ, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]ScreeningRow, 0)
    for rows.Next() {
        var row ScreeningRow
        if err := rows.Scan(&row.ID, &row.MovieID, &row.MovieTitle, &row.CinemaID, &row.CinemaName,
            &row.HallName, &row.StartsAt, &row.PriceCents); err != nil {
            return nil, 0, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}
