package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "regexp"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/filmreel/movie-booking/internal/repository"
)

const screeningDetailQ = `SELECT s.id, s.movie_id, m.title, s.cinema_id, c.name, s.hall_id, h.name, h.size, s.starts_at, s.price_cents
               FROM screenings s
               JOIN movies m ON m.id = s.movie_id
               JOIN cinemas c ON c.id = s.cinema_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ?`

var screeningDetailCols = []string{
    "id", "movie_id", "title", "cinema_id", "cinema_name",
    "hall_id", "hall_name", "hall_size", "starts_at", "price_cents",
}

func detailRow(hallSize uint32) *sqlmock.Rows {
    return sqlmock.NewRows(screeningDetailCols).
        AddRow(12, 3, "Night Train", 1, "Downtown", 4, "Hall A", hallSize, time.Now().Add(24*time.Hour), 30000)
}

func newBookingHandler(t *testing.T) (sqlmock.Sqlmock, *BookingHandler, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewScreeningRepo(db), 10)
    return mock, h, func() { db.Close() }
}

func bookRequest(t *testing.T, h *BookingHandler, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/screenings/12/bookings", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/screenings/:id/bookings")
    c.SetParamNames("id")
    c.SetParamValues("12")
    c.Set("user_id", uint64(7))
    require.NoError(t, h.Book(c))
    return rec
}

func TestBookAdmitsAllSeatsInOneTransaction(t *testing.T) {
    mock, h, done := newBookingHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(screeningDetailQ)).WithArgs(uint64(12)).WillReturnRows(detailRow(50))
    insert := regexp.QuoteMeta(`INSERT INTO bookings (user_id, screening_id, seat_number, receipt_ref) VALUES (?, ?, ?, ?)`)
    for _, seat := range []uint32{3, 4} {
        mock.ExpectExec(insert).
            WithArgs(uint64(7), uint64(12), seat, sqlmock.AnyArg()).
            WillReturnResult(sqlmock.NewResult(int64(seat), 1))
    }
    mock.ExpectCommit()

    rec := bookRequest(t, h, `{"seat_numbers":[3,4]}`)
    require.Equal(t, http.StatusCreated, rec.Code)

    var resp map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.NotEmpty(t, resp["receipt_ref"])
    assert.Equal(t, []any{float64(3), float64(4)}, resp["booking_ids"])
    assert.Equal(t, float64(2), resp["seat_count"])
    assert.Equal(t, float64(60000), resp["total_amount_cents"])
    assert.Equal(t, "Night Train", resp["movie_title"])
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsSeatsOutsideChart(t *testing.T) {
    mock, h, done := newBookingHandler(t)
    defer done()

    // hall of 57 seats keeps a 50-seat chart; 51 is outside it
    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(screeningDetailQ)).WithArgs(uint64(12)).WillReturnRows(detailRow(57))
    mock.ExpectRollback()

    rec := bookRequest(t, h, `{"seat_numbers":[2,51]}`)
    require.Equal(t, http.StatusBadRequest, rec.Code)

    var resp struct {
        Error        string   `json:"error"`
        InvalidSeats []uint32 `json:"invalid_seats"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, []uint32{51}, resp.InvalidSeats)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookTakenSeatRollsBackWithConflict(t *testing.T) {
    mock, h, done := newBookingHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(screeningDetailQ)).WithArgs(uint64(12)).WillReturnRows(detailRow(50))
    insert := regexp.QuoteMeta(`INSERT INTO bookings (user_id, screening_id, seat_number, receipt_ref) VALUES (?, ?, ?, ?)`)
    mock.ExpectExec(insert).
        WithArgs(uint64(7), uint64(12), uint32(3), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectExec(insert).
        WithArgs(uint64(7), uint64(12), uint32(4), sqlmock.AnyArg()).
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
    mock.ExpectRollback()

    rec := bookRequest(t, h, `{"seat_numbers":[3,4]}`)
    require.Equal(t, http.StatusConflict, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsZeroSeatNumber(t *testing.T) {
    _, h, done := newBookingHandler(t)
    defer done()

    rec := bookRequest(t, h, `{"seat_numbers":[0,2]}`)
    require.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "1-based")
}

func TestBookRequiresSeatNumbers(t *testing.T) {
    _, h, done := newBookingHandler(t)
    defer done()

    rec := bookRequest(t, h, `{"seat_numbers":[]}`)
    require.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "seat_numbers is required")
}

func TestSeatMapReportsInvalidStoredSeats(t *testing.T) {
    mock, h, done := newBookingHandler(t)
    defer done()

    mock.ExpectQuery(regexp.QuoteMeta(screeningDetailQ)).WithArgs(uint64(12)).WillReturnRows(detailRow(57))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT seat_number FROM bookings WHERE screening_id = ? ORDER BY seat_number ASC`)).
        WithArgs(uint64(12)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(2).AddRow(55))

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/screenings/12/seats", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/screenings/:id/seats")
    c.SetParamNames("id")
    c.SetParamValues("12")
    require.NoError(t, h.SeatMap(c))

    require.Equal(t, http.StatusOK, rec.Code)
    var resp struct {
        Rows         [][]map[string]any `json:"rows"`
        InvalidSeats []uint32           `json:"invalid_seats"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    require.Len(t, resp.Rows, 5) // 57 seats at width 10 keeps 5 full rows
    assert.Equal(t, []uint32{55}, resp.InvalidSeats)
    assert.NoError(t, mock.ExpectationsWereMet())
}
