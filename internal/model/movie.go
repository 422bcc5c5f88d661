package model

import "time"

// Movie represents a film in the catalog.  The rating,
// comments_count and is_current columns are derived values owned by
// the system: rating and comments_count are maintained by the review
// repository whenever a review is created or deleted, and is_current
// is maintained by the currency sweep.  Request handlers never write
// these fields directly.
//
// Fields:
//  ID            – primary key identifier.
//  Title         – movie title.
//  Description   – optional synopsis.
//  Genre         – optional genre label.
//  ReleaseDate   – optional release date string as entered by admins.
//  PosterURL     – optional URL of the poster image.
//  IsCurrent     – derived: true when at least one future screening exists.
//  Rating        – derived: arithmetic mean of all review rates (0 if none).
//  CommentsCount – derived: number of reviews.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Movie struct {
    ID            uint64    // movies.id
    Title         string    // movies.title
    Description   *string   // movies.description (nullable)
    Genre         *string   // movies.genre (nullable)
    ReleaseDate   *string   // movies.release_date (nullable)
    PosterURL     *string   // movies.poster_url (nullable)
    IsCurrent     bool      // movies.is_current
    Rating        float64   // movies.rating
    CommentsCount uint32    // movies.comments_count
    CreatedAt     time.Time // movies.created_at
    UpdatedAt     time.Time // movies.updated_at
}
