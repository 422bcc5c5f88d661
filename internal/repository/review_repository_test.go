package repository

import (
    "context"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/filmreel/movie-booking/internal/model"
)

const aggregateQ = `UPDATE movies
               SET comments_count = comments_count + ?,
                   rating = (SELECT COALESCE(AVG(rate), 0) FROM reviews WHERE movie_id = ?)
               WHERE id = ?`

func TestCreateReviewUpdatesMovieAggregates(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewReviewRepo(db)

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reviews (user_id, movie_id, content, rate) VALUES (?, ?, ?, ?)`)).
        WithArgs(uint64(7), uint64(3), "great soundtrack", 4.5).
        WillReturnResult(sqlmock.NewResult(21, 1))
    mock.ExpectExec(regexp.QuoteMeta(aggregateQ)).
        WithArgs(int64(1), uint64(3), uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM reviews WHERE id = ?`)).
        WithArgs(uint64(21)).
        WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
    mock.ExpectCommit()

    rev := &model.Review{UserID: 7, MovieID: 3, Content: "great soundtrack", Rate: 4.5}
    require.NoError(t, repo.Create(context.Background(), rev))
    assert.Equal(t, uint64(21), rev.ID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewRollsBackWhenMovieMissing(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewReviewRepo(db)

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reviews (user_id, movie_id, content, rate) VALUES (?, ?, ?, ?)`)).
        WithArgs(uint64(7), uint64(404), "lost review", 3.0).
        WillReturnResult(sqlmock.NewResult(22, 1))
    mock.ExpectExec(regexp.QuoteMeta(aggregateQ)).
        WithArgs(int64(1), uint64(404), uint64(404)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM movies WHERE id = ? LIMIT 1`)).
        WithArgs(uint64(404)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}))
    mock.ExpectRollback()

    rev := &model.Review{UserID: 7, MovieID: 404, Content: "lost review", Rate: 3.0}
    err = repo.Create(context.Background(), rev)
    assert.ErrorIs(t, err, ErrMovieNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewContentOnlyEditCommits(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewReviewRepo(db)

    cols := []string{"id", "user_id", "movie_id", "content", "rate", "created_at", "updated_at"}
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, movie_id, content, rate, created_at, updated_at FROM reviews WHERE id = ?`)).
        WithArgs(uint64(21)).
        WillReturnRows(sqlmock.NewRows(cols).AddRow(21, 7, 3, "great soundtrack", 4.5, time.Now(), time.Now()))
    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(`UPDATE reviews SET content = ?, rate = ? WHERE id = ?`)).
        WithArgs("even better on rewatch", 4.5, uint64(21)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    // same rate and a zero delta leave the movies row untouched: MySQL
    // reports 0 rows changed even though the movie matched
    mock.ExpectExec(regexp.QuoteMeta(aggregateQ)).
        WithArgs(int64(0), uint64(3), uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM movies WHERE id = ? LIMIT 1`)).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
    mock.ExpectCommit()

    require.NoError(t, repo.Update(context.Background(), 21, 7, "even better on rewatch", 4.5))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewDecrementsAggregates(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewReviewRepo(db)

    cols := []string{"id", "user_id", "movie_id", "content", "rate", "created_at", "updated_at"}
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, movie_id, content, rate, created_at, updated_at FROM reviews WHERE id = ?`)).
        WithArgs(uint64(21)).
        WillReturnRows(sqlmock.NewRows(cols).AddRow(21, 7, 3, "great soundtrack", 4.5, time.Now(), time.Now()))
    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = ?`)).
        WithArgs(uint64(21)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(regexp.QuoteMeta(aggregateQ)).
        WithArgs(int64(-1), uint64(3), uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    require.NoError(t, repo.Delete(context.Background(), 21, 7, true))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewRejectsNonOwner(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewReviewRepo(db)

    cols := []string{"id", "user_id", "movie_id", "content", "rate", "created_at", "updated_at"}
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, movie_id, content, rate, created_at, updated_at FROM reviews WHERE id = ?`)).
        WithArgs(uint64(21)).
        WillReturnRows(sqlmock.NewRows(cols).AddRow(21, 99, 3, "great soundtrack", 4.5, time.Now(), time.Now()))

    err = repo.Delete(context.Background(), 21, 7, true)
    assert.True(t, errors.Is(err, ErrForbidden))
    assert.NoError(t, mock.ExpectationsWereMet())
}
