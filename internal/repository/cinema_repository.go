// This file defines repository methods for cinemas and their halls. A Cinema
// represents a venue that can contain multiple halls; halls carry only a flat
// seat count from which seat charts are derived. Halls are created together
// with their cinema and are never moved between cinemas.
package repository

import (
    "context"      // context allows passing deadlines and cancellation signals to DB operations
    "database/sql" // sql provides generic database operations and drivers
    "errors"       // errors is used for sentinel comparisons

    "github.com/filmreel/movie-booking/internal/model"
)

// CinemaRepo encapsulates all database queries related to cinemas
// and halls.  It depends on a sql.DB connection which should be
// configured elsewhere.
type CinemaRepo struct {
    db *sql.DB // db is the underlying database connection pool
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
    return &CinemaRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *CinemaRepo) DB() *sql.DB { return r.db }

// CreateWithHalls inserts a cinema together with its halls in one
// transaction. A duplicate cinema name surfaces as ErrConflict. On
// success the generated IDs are populated on the cinema and halls.
func (r *CinemaRepo) CreateWithHalls(ctx context.Context, c *model.Cinema, halls []model.Hall) error {
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
    res, err = tx.ExecContext(ctx, `INSERT INTO cinemas (name, location) VALUES (?, ?)`, c.Name, c.Location)
    if err != nil {
        if isDuplicateKey(err) {
            err = ErrConflict
        }
        return err
    }
    var id int64
    id, err = res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    for i := range halls {
        halls[i].CinemaID = c.ID
        res, err = tx.ExecContext(ctx, `INSERT INTO halls (cinema_id, name, size) VALUES (?, ?, ?)`,
            c.ID, halls[i].Name, halls[i].Size)
        if err != nil {
            if isDuplicateKey(err) {
                err = ErrConflict
            }
            return err
        }
        id, err = res.LastInsertId()
        if err != nil {
            return err
        }
        halls[i].ID = uint64(id)
    }
    return nil
}

// GetByID fetches a cinema by its ID.  It returns ErrCinemaNotFound
// if no row is found.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
    const q = `SELECT id, name, location, created_at, updated_at FROM cinemas WHERE id = ?`
    var c model.Cinema
    if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrCinemaNotFound
        }
        return nil, err
    }
    return &c, nil
}

// GetByName fetches a cinema by its unique name.
func (r *CinemaRepo) GetByName(ctx context.Context, name string) (*model.Cinema, error) {
    const q = `SELECT id, name, location, created_at, updated_at FROM cinemas WHERE name = ?`
    var c model.Cinema
    if err := r.db.QueryRowContext(ctx, q, name).Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrCinemaNotFound
        }
        return nil, err
    }
    return &c, nil
}

// ListAll returns all cinemas ordered by id. It backs the public
// browsing endpoints, so timestamps are included but handlers decide
// what to expose.
func (r *CinemaRepo) ListAll(ctx context.Context) ([]model.Cinema, error) {
    const q = `SELECT id, name, location, created_at, updated_at FROM cinemas ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Cinema, 0)
    for rows.Next() {
        var c model.Cinema
        if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Delete removes a cinema and its halls. Deletion is refused with
// ErrConflict while any screening still references the cinema, so
// bookings can never dangle. Runs in one transaction.
func (r *CinemaRepo) Delete(ctx context.Context, id uint64) error {
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
    var one int
    if err = tx.QueryRowContext(ctx, `SELECT 1 FROM cinemas WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            err = ErrCinemaNotFound
        }
        return err
    }
    var screenings int64
    if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM screenings WHERE cinema_id = ?`, id).Scan(&screenings); err != nil {
        return err
    }
    if screenings > 0 {
        err = ErrConflict
        return err
    }
    if _, err = tx.ExecContext(ctx, `DELETE FROM halls WHERE cinema_id = ?`, id); err != nil {
        return err
    }
    _, err = tx.ExecContext(ctx, `DELETE FROM cinemas WHERE id = ?`, id)
    return err
}

// GetHall fetches a hall by id, returning ErrHallNotFound when absent.
func (r *CinemaRepo) GetHall(ctx context.Context, hallID uint64) (*model.Hall, error) {
    const q = `SELECT id, cinema_id, name, size, created_at, updated_at FROM halls WHERE id = ?`
    var h model.Hall
    if err := r.db.QueryRowContext(ctx, q, hallID).Scan(&h.ID, &h.CinemaID, &h.Name, &h.Size, &h.CreatedAt, &h.UpdatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrHallNotFound
        }
        return nil, err
    }
    return &h, nil
}

// ListHalls returns every hall of a cinema ordered by name.
func (r *CinemaRepo) ListHalls(ctx context.Context, cinemaID uint64) ([]model.Hall, error) {
    const q = `SELECT id, cinema_id, name, size, created_at, updated_at FROM halls WHERE cinema_id = ? ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q, cinemaID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Hall, 0)
    for rows.Next() {
        var h model.Hall
        if err := rows.Scan(&h.ID, &h.CinemaID, &h.Name, &h.Size, &h.CreatedAt, &h.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, h)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// CinemaMovies groups the currently-showing movies of one cinema.
type CinemaMovies struct {
    CinemaID   uint64   `json:"cinema_id"`
    CinemaName string   `json:"cinema_name"`
    MovieIDs   []uint64 `json:"movie_ids"`
    Titles     []string `json:"titles"`
}

// ListCurrentMoviesByCinema aggregates, per cinema, the distinct
// currently-showing movies screened there. It is computed on demand
// from the screenings table; no process-wide state is kept between
// requests.
func (r *CinemaRepo) ListCurrentMoviesByCinema(ctx context.Context) ([]CinemaMovies, error) {
    const q = `SELECT DISTINCT c.id, c.name, m.id, m.title
               FROM cinemas c
               JOIN screenings s ON s.cinema_id = c.id
               JOIN movies m ON m.id = s.movie_id
               WHERE m.is_current = TRUE
               ORDER BY c.id, m.title`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]CinemaMovies, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var cinemaID, movieID uint64
        var cinemaName, title string
        if err := rows.Scan(&cinemaID, &cinemaName, &movieID, &title); err != nil {
            return nil, err
        }
        i, ok := index[cinemaID]
        if !ok {
            i = len(out)
            index[cinemaID] = i
            out = append(out, CinemaMovies{CinemaID: cinemaID, CinemaName: cinemaName})
        }
        out[i].MovieIDs = append(out[i].MovieIDs, movieID)
        out[i].Titles = append(out[i].Titles, title)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
