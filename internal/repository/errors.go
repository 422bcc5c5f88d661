// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrSeatTaken signals that a requested seat
// already belongs to another booking for the same screening.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a cinema that still has screenings. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSeatTaken is returned by booking creation when the storage
// layer's UNIQUE KEY on (screening_id, seat_number) rejects an
// insert. This constraint is the only arbiter between racing
// requests for the same seat; the application performs no
// check-then-insert.
var ErrSeatTaken = errors.New("seat already booked")

// Not-found sentinels for the individual entities.
var (
    ErrMovieNotFound     = errors.New("movie not found")
    ErrCinemaNotFound    = errors.New("cinema not found")
    ErrHallNotFound      = errors.New("hall not found")
    ErrScreeningNotFound = errors.New("screening not found")
    ErrBookingNotFound   = errors.New("booking not found")
    ErrReviewNotFound    = errors.New("review not found")
)
