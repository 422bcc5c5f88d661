// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the publisher and the consumer.
const (
    BookingCreatedQueue   = "booking.created"
    BookingCancelledQueue = "booking.cancelled"
)

// BookingCreatedEvent is published when a booking request is admitted.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.  One event
// covers all seats admitted by a single request; they share ReceiptRef.
type BookingCreatedEvent struct {
    EventID          string   `json:"event_id"`
    ReceiptRef       string   `json:"receipt_ref"`
    UserID           uint64   `json:"user_id"`
    ScreeningID      uint64   `json:"screening_id"`
    CinemaName       string   `json:"cinema_name"`
    HallName         string   `json:"hall_name"`
    MovieTitle       string   `json:"movie_title"`
    StartsAt         string   `json:"starts_at"`
    SeatNumbers      []uint32 `json:"seat_numbers"`
    TotalAmountCents uint64   `json:"total_amount_cents"`
    CreatedAt        string   `json:"created_at"`
}

// BookingCancelledEvent is published when a user cancels one of their
// bookings.  Cancellation frees a single seat.
type BookingCancelledEvent struct {
    EventID     string `json:"event_id"`
    BookingID   uint64 `json:"booking_id"`
    UserID      uint64 `json:"user_id"`
    ScreeningID uint64 `json:"screening_id"`
    SeatNumber  uint32 `json:"seat_number"`
    CancelledAt string `json:"cancelled_at"`
}
