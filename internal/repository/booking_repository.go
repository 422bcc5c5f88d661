// This file implements the booking repository. Bookings are the
// contended resource of the system, so every write happens inside a
// transaction supplied by the caller and seat uniqueness is enforced
// by the UNIQUE KEY (screening_id, seat_number) rather than by a
// read-then-write check.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/filmreel/movie-booking/internal/model"
)

// BookingRepo provides persistence operations for bookings.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
    return &BookingRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// ListSeatNumbers returns the seat numbers already booked for a
// screening. The seat-map builder marks these as taken and reports
// any number that falls outside the hall's chart.
func (r *BookingRepo) ListSeatNumbers(ctx context.Context, screeningID uint64) ([]uint32, error) {
    const q = `SELECT seat_number FROM bookings WHERE screening_id = ? ORDER BY seat_number ASC`
    rows, err := r.db.QueryContext(ctx, q, screeningID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]uint32, 0)
    for rows.Next() {
        var n uint32
        if err := rows.Scan(&n); err != nil {
            return nil, err
        }
        out = append(out, n)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// CreateManyTx inserts one booking row per requested seat inside the
// caller's transaction and returns the new booking IDs in seat order.
// Seats are inserted one at a time so the first already-taken seat
// surfaces as ErrSeatTaken and the caller can roll the whole request
// back; partial admission is never committed.
func (r *BookingRepo) CreateManyTx(ctx context.Context, tx *sql.Tx, userID, screeningID uint64, seats []uint32, receiptRef string) ([]uint64, error) {
    const q = `INSERT INTO bookings (user_id, screening_id, seat_number, receipt_ref) VALUES (?, ?, ?, ?)`
    ids := make([]uint64, 0, len(seats))
    for _, seat := range seats {
        res, err := tx.ExecContext(ctx, q, userID, screeningID, seat, receiptRef)
        if err != nil {
            if isDuplicateKey(err) {
                return nil, ErrSeatTaken
            }
            return nil, err
        }
        id, err := res.LastInsertId()
        if err != nil {
            return nil, err
        }
        ids = append(ids, uint64(id))
    }
    return ids, nil
}

// GetByID retrieves a booking by its ID.  It returns
// ErrBookingNotFound if there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT id, user_id, screening_id, seat_number, receipt_ref, created_at FROM bookings WHERE id = ?`
    var b model.Booking
    err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.UserID, &b.ScreeningID, &b.SeatNumber, &b.ReceiptRef, &b.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &b, nil
}

// DeleteOwned cancels a booking on behalf of its owner. It returns
// ErrBookingNotFound when the row does not exist and ErrForbidden
// when it belongs to a different user.
func (r *BookingRepo) DeleteOwned(ctx context.Context, id, userID uint64) (*model.Booking, error) {
    b, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if b.UserID != userID {
        return nil, ErrForbidden
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ? AND user_id = ?`, id, userID)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return nil, ErrBookingNotFound
    }
    return b, nil
}

// BookingRow is one booking joined with its screening, movie and
// cinema for display on the "my bookings" page and admin listings.
type BookingRow struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"user_id"`
    ScreeningID uint64    `json:"screening_id"`
    SeatNumber  uint32    `json:"seat_number"`
    ReceiptRef  string    `json:"receipt_ref"`
    MovieTitle  string    `json:"movie_title"`
    CinemaName  string    `json:"cinema_name"`
    HallName    string    `json:"hall_name"`
    StartsAt    time.Time `json:"starts_at"`
    PriceCents  uint32    `json:"price_cents"`
    CreatedAt   time.Time `json:"created_at"`
}

const bookingRowQuery = `SELECT b.id, b.user_id, b.screening_id, b.seat_number, b.receipt_ref,
    m.title, c.name, h.name, s.starts_at, s.price_cents, b.created_at
    FROM bookings b
    JOIN screenings s ON s.id = b.screening_id
    JOIN movies m ON m.id = s.movie_id
    JOIN cinemas c ON c.id = s.cinema_id
    JOIN halls h ON h.id = s.hall_id`

// GetRow returns one booking with its screening details. The caller
// checks ownership against UserID.
func (r *BookingRepo) GetRow(ctx context.Context, id uint64) (*BookingRow, error) {
    q := bookingRowQuery + ` WHERE b.id = ?`
    var row BookingRow
    err := r.db.QueryRowContext(ctx, q, id).Scan(&row.ID, &row.UserID, &row.ScreeningID, &row.SeatNumber, &row.ReceiptRef,
        &row.MovieTitle, &row.CinemaName, &row.HallName, &row.StartsAt, &row.PriceCents, &row.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &row, nil
}

// ListByUser returns a user's bookings with screening details, most
// recent first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingRow, error) {
    q := bookingRowQuery + ` WHERE b.user_id = ? ORDER BY s.starts_at DESC, b.seat_number ASC`
    return r.listRows(ctx, q, userID)
}

// ListByScreening returns every booking of one screening for admin
// inspection, ordered by seat number.
func (r *BookingRepo) ListByScreening(ctx context.Context, screeningID uint64) ([]BookingRow, error) {
    q := bookingRowQuery + ` WHERE b.screening_id = ? ORDER BY b.seat_number ASC`
    return r.listRows(ctx, q, screeningID)
}

func (r *BookingRepo) listRows(ctx context.Context, q string, args ...any) ([]BookingRow, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]BookingRow, 0)
    for rows.Next() {
        var row BookingRow
        if err := rows.Scan(&row.ID, &row.UserID, &row.ScreeningID, &row.SeatNumber, &row.ReceiptRef,
            &row.MovieTitle, &row.CinemaName, &row.HallName, &row.StartsAt, &row.PriceCents, &row.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
