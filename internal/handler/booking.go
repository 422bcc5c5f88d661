package handler

import (
    "context"  // detached context for fire-and-forget event publishing
    "net/http" // HTTP status codes
    "time"     // timestamps in published events

    "github.com/google/uuid"      // event IDs
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/filmreel/movie-booking/internal/queue"      // event payloads
    "github.com/filmreel/movie-booking/internal/repository" // repository layer
    "github.com/filmreel/movie-booking/internal/seatmap"    // seat chart derivation
    queue_publisher "github.com/filmreel/movie-booking/internal/service"
    "github.com/filmreel/movie-booking/internal/utils"
)

// BookingHandler groups repositories required to render seat maps,
// admit bookings and cancel them.  All methods assume that JWT
// authentication has already been performed by middleware where the
// route requires it.  Booking admission runs inside a transaction so
// a request for several seats is admitted completely or not at all.
type BookingHandler struct {
    BookingRepo   *repository.BookingRepo   // access to bookings
    ScreeningRepo *repository.ScreeningRepo // access to screenings and their halls
    RowWidth      uint32                    // seats per row in the derived chart
}

// NewBookingHandler constructs a BookingHandler.  rowWidth comes from
// configuration; zero falls back to the default chart width.
func NewBookingHandler(bookings *repository.BookingRepo, screenings *repository.ScreeningRepo, rowWidth uint32) *BookingHandler {
    if bookings == nil || screenings == nil {
        panic("nil repository passed to NewBookingHandler")
    }
    if rowWidth == 0 {
        rowWidth = seatmap.DefaultRowWidth
    }
    return &BookingHandler{BookingRepo: bookings, ScreeningRepo: screenings, RowWidth: rowWidth}
}

// SeatMap handles GET /v1/screenings/:id/seats.  The seat chart is
// derived from the hall size at request time; stored seat numbers
// that no longer fit the chart are reported in "invalid_seats"
// instead of being silently dropped.
func (h *BookingHandler) SeatMap(c echo.Context) error {
    screeningID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
    }
    ctx := c.Request().Context()
    detail, err := h.ScreeningRepo.GetDetail(ctx, screeningID)
    if err != nil {
        if err == repository.ErrScreeningNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    booked, err := h.BookingRepo.ListSeatNumbers(ctx, screeningID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    rows, invalid := seatmap.Build(detail.HallSize, h.RowWidth, booked)
    resp := echo.Map{
        "screening": detail,
        "rows":      rows,
    }
    if len(invalid) > 0 {
        resp["invalid_seats"] = invalid
    }
    return c.JSON(http.StatusOK, resp)
}

// Book handles POST /v1/screenings/:id/bookings.  The body carries a
// "seat_numbers" array.  Every requested seat is admitted in one
// transaction; when any seat is already taken the whole request is
// rolled back with 409 Conflict.  Seats outside the hall's chart are
// rejected before the transaction starts.
func (h *BookingHandler) Book(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    screeningID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
    }
    var body struct {
        SeatNumbers []uint32 `json:"seat_numbers"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.SeatNumbers) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
    }
    // deduplicate seat numbers to avoid double inserts within one request
    unique := make([]uint32, 0, len(body.SeatNumbers))
    seen := make(map[uint32]struct{})
    for _, n := range body.SeatNumbers {
        if n == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat numbers are 1-based"})
        }
        if _, ok := seen[n]; !ok {
            seen[n] = struct{}{}
            unique = append(unique, n)
        }
    }

    ctx := c.Request().Context()
    tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    detail, err := h.ScreeningRepo.GetDetailTx(ctx, tx, screeningID)
    if err != nil {
        if err == repository.ErrScreeningNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    capacity := seatmap.Capacity(detail.HallSize, h.RowWidth)
    outOfRange := make([]uint32, 0)
    for _, n := range unique {
        if n > capacity {
            outOfRange = append(outOfRange, n)
        }
    }
    if len(outOfRange) > 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":         "seat numbers outside the hall's seat chart",
            "invalid_seats": outOfRange,
        })
    }

    receiptRef := utils.NewReceiptRef()
    bookingIDs, err := h.BookingRepo.CreateManyTx(ctx, tx, userID, screeningID, unique, receiptRef)
    if err != nil {
        if err == repository.ErrSeatTaken {
            return c.JSON(http.StatusConflict, echo.Map{"error": "one or more seats already booked"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit booking"})
    }
    committed = true

    total := uint64(detail.PriceCents) * uint64(len(unique))
    // Publish asynchronously; booking success does not depend on the broker.
    go func(ev queue.BookingCreatedEvent) {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingCreated(pubCtx, ev)
    }(queue.BookingCreatedEvent{
        EventID:          uuid.NewString(),
        ReceiptRef:       receiptRef,
        UserID:           userID,
        ScreeningID:      screeningID,
        CinemaName:       detail.CinemaName,
        HallName:         detail.HallName,
        MovieTitle:       detail.MovieTitle,
        StartsAt:         detail.StartsAt.UTC().Format(timeFormat),
        SeatNumbers:      unique,
        TotalAmountCents: total,
        CreatedAt:        time.Now().UTC().Format(timeFormat),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "receipt_ref":        receiptRef,
        "booking_ids":        bookingIDs,
        "user_id":            userID,
        "screening_id":       screeningID,
        "movie_title":        detail.MovieTitle,
        "cinema_name":        detail.CinemaName,
        "hall_name":          detail.HallName,
        "starts_at":          detail.StartsAt.UTC().Format(timeFormat),
        "seat_numbers":       unique,
        "seat_count":         len(unique),
        "total_amount_cents": total,
    })
}

// Cancel handles DELETE /v1/bookings/:id.  Only the booking's owner
// may cancel it.
func (h *BookingHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    b, err := h.BookingRepo.DeleteOwned(c.Request().Context(), bookingID, userID)
    if err != nil {
        switch err {
        case repository.ErrBookingNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    go func(ev queue.BookingCancelledEvent) {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingCancelled(pubCtx, ev)
    }(queue.BookingCancelledEvent{
        EventID:     uuid.NewString(),
        BookingID:   b.ID,
        UserID:      userID,
        ScreeningID: b.ScreeningID,
        SeatNumber:  b.SeatNumber,
        CancelledAt: time.Now().UTC().Format(timeFormat),
    })

    return c.NoContent(http.StatusNoContent)
}

// Detail handles GET /v1/bookings/:id. Only the booking's owner may
// view it.
func (h *BookingHandler) Detail(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    row, err := h.BookingRepo.GetRow(c.Request().Context(), bookingID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if row.UserID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, row)
}

// MyBookings handles GET /v1/me/bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.BookingRepo.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}
