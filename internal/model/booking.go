package model

import "time"

// Booking records one seat booked by a user for a screening.  The
// pair (ScreeningID, SeatNumber) is unique at the storage layer: two
// racing requests for the same seat are arbitrated by the UNIQUE KEY
// on the bookings table, not by an application-level pre-check.
// Bookings are deleted on cancellation by their owning user.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who booked the seat.
//  ScreeningID – screening the seat belongs to.
//  SeatNumber  – 1-based seat number inside the hall's seat chart.
//  ReceiptRef  – reference shared by all seats booked in one request.
//  CreatedAt   – creation timestamp.
type Booking struct {
    ID          uint64    // bookings.id
    UserID      uint64    // bookings.user_id
    ScreeningID uint64    // bookings.screening_id
    SeatNumber  uint32    // bookings.seat_number
    ReceiptRef  string    // bookings.receipt_ref
    CreatedAt   time.Time // bookings.created_at
}
