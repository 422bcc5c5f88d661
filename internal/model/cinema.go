package model

import "time"

// Cinema represents a movie theatre venue.  A cinema contains one or
// more halls.  This struct corresponds to a row in the `cinemas`
// table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique cinema name.
//  Location  – optional address or district.
//  CreatedAt – timestamp when the cinema was created.
//  UpdatedAt – timestamp of last update.
type Cinema struct {
    ID        uint64    // cinemas.id
    Name      string    // cinemas.name
    Location  *string   // cinemas.location (nullable)
    CreatedAt time.Time // cinemas.created_at
    UpdatedAt time.Time // cinemas.updated_at
}

// Hall represents an individual screening hall within a cinema.
// Seats are not stored as rows: a hall only records its total seat
// count and the seat map is derived from it at query time.
//
// Fields:
//  ID        – primary key identifier.
//  CinemaID  – cinema this hall belongs to.
//  Name      – hall name unique per cinema (e.g. A1, A2).
//  Size      – total number of seats; never negative.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hall struct {
    ID        uint64    // halls.id
    CinemaID  uint64    // halls.cinema_id
    Name      string    // halls.name
    Size      uint32    // halls.size
    CreatedAt time.Time // halls.created_at
    UpdatedAt time.Time // halls.updated_at
}
