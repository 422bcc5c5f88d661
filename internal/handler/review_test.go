package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/filmreel/movie-booking/internal/repository"
)

func newReviewHandler(t *testing.T) (sqlmock.Sqlmock, *ReviewHandler, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    h := NewReviewHandler(repository.NewReviewRepo(db), repository.NewMovieRepo(db))
    return mock, h, func() { db.Close() }
}

func createReview(t *testing.T, h *ReviewHandler, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/movies/3/reviews", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/movies/:id/reviews")
    c.SetParamNames("id")
    c.SetParamValues("3")
    c.Set("user_id", uint64(7))
    require.NoError(t, h.Create(c))
    return rec
}

func TestCreateReviewValidation(t *testing.T) {
    _, h, done := newReviewHandler(t)
    defer done()

    cases := []struct {
        name string
        body string
        want string
    }{
        {"empty content", `{"content":"  ","rate":4}`, "content is required"},
        {"rate too low", `{"content":"meh","rate":0.4}`, "rate must be between 0.5 and 5.0"},
        {"rate too high", `{"content":"wow","rate":5.5}`, "rate must be between 0.5 and 5.0"},
        {"missing rate", `{"content":"wow"}`, "rate must be between 0.5 and 5.0"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec := createReview(t, h, tc.body)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
            assert.Contains(t, rec.Body.String(), tc.want)
        })
    }
}

func TestCreateReviewUnknownMovie(t *testing.T) {
    mock, h, done := newReviewHandler(t)
    defer done()

    mock.ExpectQuery("SELECT .* FROM movies WHERE id = ?").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))

    rec := createReview(t, h, `{"content":"great","rate":4.5}`)
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Contains(t, rec.Body.String(), "movie not found")
    assert.NoError(t, mock.ExpectationsWereMet())
}
