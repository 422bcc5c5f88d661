package sweep

import (
    "context"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/filmreel/movie-booking/internal/repository"
)

const currencyQ = `SELECT m.id, m.is_current,
                      EXISTS(SELECT 1 FROM screenings s WHERE s.movie_id = m.id AND s.starts_at >= NOW())
               FROM movies m`

func newSweeper(t *testing.T) (sqlmock.Sqlmock, *Sweeper, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    s := New(repository.NewMovieRepo(db), repository.NewTokenRepo(db), time.Minute)
    return mock, s, func() { db.Close() }
}

func TestRunOnceFlipsMismatchedFlags(t *testing.T) {
    mock, s, done := newSweeper(t)
    defer done()

    rows := sqlmock.NewRows([]string{"id", "is_current", "has_future"}).
        AddRow(1, true, true).   // still showing, untouched
        AddRow(2, true, false).  // last screening passed, flip off
        AddRow(3, false, true)   // new screenings arrived, flip on
    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(currencyQ)).WillReturnRows(rows)
    update := regexp.QuoteMeta(`UPDATE movies SET is_current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
    mock.ExpectExec(update).WithArgs(false, uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(update).WithArgs(true, uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    updated, err := s.RunOnce(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 2, updated)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnceNoChangesStillCommits(t *testing.T) {
    mock, s, done := newSweeper(t)
    defer done()

    rows := sqlmock.NewRows([]string{"id", "is_current", "has_future"}).
        AddRow(1, true, true).
        AddRow(2, false, false)
    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(currencyQ)).WillReturnRows(rows)
    mock.ExpectCommit()

    updated, err := s.RunOnce(context.Background())
    require.NoError(t, err)
    assert.Zero(t, updated)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnceRollsBackOnUpdateFailure(t *testing.T) {
    mock, s, done := newSweeper(t)
    defer done()

    rows := sqlmock.NewRows([]string{"id", "is_current", "has_future"}).
        AddRow(2, true, false)
    mock.ExpectBegin()
    mock.ExpectQuery(regexp.QuoteMeta(currencyQ)).WillReturnRows(rows)
    mock.ExpectExec(regexp.QuoteMeta(`UPDATE movies SET is_current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
        WithArgs(false, uint64(2)).
        WillReturnError(errors.New("deadlock"))
    mock.ExpectRollback()

    _, err := s.RunOnce(context.Background())
    assert.Error(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}
