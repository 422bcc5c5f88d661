package model

import "time"

// Review is a user's rating and comment for a movie.  Rates are
// validated at the submission boundary to lie in [0.5, 5.0].  The
// owning movie's rating and comments_count columns are recomputed in
// the same transaction whenever a review is inserted or deleted.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – author of the review.
//  MovieID   – movie being reviewed.
//  Content   – non-empty review text.
//  Rate      – score in [0.5, 5.0].
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Review struct {
    ID        uint64    // reviews.id
    UserID    uint64    // reviews.user_id
    MovieID   uint64    // reviews.movie_id
    Content   string    // reviews.content
    Rate      float64   // reviews.rate
    CreatedAt time.Time // reviews.created_at
    UpdatedAt time.Time // reviews.updated_at
}
