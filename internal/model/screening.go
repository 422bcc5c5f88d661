package model

import "time"

// Screening represents a scheduled showing of a movie in a specific
// hall at a specific time and price.  The referenced hall must belong
// to the referenced cinema; the screening repository enforces this at
// creation time.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being shown.
//  CinemaID   – cinema hosting the screening.
//  HallID     – hall inside the cinema.
//  StartsAt   – when the screening begins (UTC).
//  PriceCents – ticket price per seat in cents.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Screening struct {
    ID         uint64    // screenings.id
    MovieID    uint64    // screenings.movie_id
    CinemaID   uint64    // screenings.cinema_id
    HallID     uint64    // screenings.hall_id
    StartsAt   time.Time // screenings.starts_at
    PriceCents uint32    // screenings.price_cents
    CreatedAt  time.Time // screenings.created_at
    UpdatedAt  time.Time // screenings.updated_at
}
