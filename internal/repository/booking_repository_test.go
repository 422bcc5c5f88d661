package repository

import (
    "context"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *BookingRepo, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    return mock, NewBookingRepo(db), func() { db.Close() }
}

func TestCreateManyTxInsertsEverySeat(t *testing.T) {
    mock, repo, done := newMock(t)
    defer done()

    insert := regexp.QuoteMeta(`INSERT INTO bookings (user_id, screening_id, seat_number, receipt_ref) VALUES (?, ?, ?, ?)`)
    mock.ExpectBegin()
    for _, seat := range []uint32{3, 4, 5} {
        mock.ExpectExec(insert).
            WithArgs(uint64(7), uint64(12), seat, "rcpt-1").
            WillReturnResult(sqlmock.NewResult(int64(seat), 1))
    }
    mock.ExpectCommit()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    require.NoError(t, err)
    ids, err := repo.CreateManyTx(context.Background(), tx, 7, 12, []uint32{3, 4, 5}, "rcpt-1")
    require.NoError(t, err)
    assert.Equal(t, []uint64{3, 4, 5}, ids)
    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManyTxDuplicateSeatBecomesErrSeatTaken(t *testing.T) {
    mock, repo, done := newMock(t)
    defer done()

    insert := regexp.QuoteMeta(`INSERT INTO bookings (user_id, screening_id, seat_number, receipt_ref) VALUES (?, ?, ?, ?)`)
    mock.ExpectBegin()
    mock.ExpectExec(insert).
        WithArgs(uint64(7), uint64(12), uint32(3), "rcpt-2").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectExec(insert).
        WithArgs(uint64(7), uint64(12), uint32(4), "rcpt-2").
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
    mock.ExpectRollback()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    require.NoError(t, err)
    _, err = repo.CreateManyTx(context.Background(), tx, 7, 12, []uint32{3, 4}, "rcpt-2")
    assert.ErrorIs(t, err, ErrSeatTaken)
    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSeatNumbers(t *testing.T) {
    mock, repo, done := newMock(t)
    defer done()

    rows := sqlmock.NewRows([]string{"seat_number"}).AddRow(2).AddRow(9).AddRow(41)
    mock.ExpectQuery(regexp.QuoteMeta(`SELECT seat_number FROM bookings WHERE screening_id = ? ORDER BY seat_number ASC`)).
        WithArgs(uint64(12)).
        WillReturnRows(rows)

    got, err := repo.ListSeatNumbers(context.Background(), 12)
    require.NoError(t, err)
    assert.Equal(t, []uint32{2, 9, 41}, got)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned(t *testing.T) {
    selectQ := regexp.QuoteMeta(`SELECT id, user_id, screening_id, seat_number, receipt_ref, created_at FROM bookings WHERE id = ?`)
    deleteQ := regexp.QuoteMeta(`DELETE FROM bookings WHERE id = ? AND user_id = ?`)
    cols := []string{"id", "user_id", "screening_id", "seat_number", "receipt_ref", "created_at"}

    t.Run("owner cancels", func(t *testing.T) {
        mock, repo, done := newMock(t)
        defer done()

        mock.ExpectQuery(selectQ).WithArgs(uint64(5)).
            WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 7, 12, 3, "rcpt-1", time.Now()))
        mock.ExpectExec(deleteQ).WithArgs(uint64(5), uint64(7)).
            WillReturnResult(sqlmock.NewResult(0, 1))

        b, err := repo.DeleteOwned(context.Background(), 5, 7)
        require.NoError(t, err)
        assert.Equal(t, uint64(5), b.ID)
        assert.Equal(t, "rcpt-1", b.ReceiptRef)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("someone else's booking", func(t *testing.T) {
        mock, repo, done := newMock(t)
        defer done()

        mock.ExpectQuery(selectQ).WithArgs(uint64(5)).
            WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 99, 12, 3, "rcpt-1", time.Now()))

        _, err := repo.DeleteOwned(context.Background(), 5, 7)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("missing booking", func(t *testing.T) {
        mock, repo, done := newMock(t)
        defer done()

        mock.ExpectQuery(selectQ).WithArgs(uint64(5)).
            WillReturnRows(sqlmock.NewRows(cols))

        _, err := repo.DeleteOwned(context.Background(), 5, 7)
        assert.ErrorIs(t, err, ErrBookingNotFound)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}
