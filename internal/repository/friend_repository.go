// This file implements the friend repository. Friendships are stored
// as two directed rows so "who are my friends" is a single indexed
// lookup; the two rows are written and removed inside one
// transaction.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/filmreel/movie-booking/internal/model"
)

// ErrFriendRequestExists is returned when a pending request between
// the two users already exists in either direction.
var ErrFriendRequestExists = errors.New("friend request already pending")

// ErrAlreadyFriends is returned when the two users are already
// friends.
var ErrAlreadyFriends = errors.New("users are already friends")

// ErrFriendRequestNotFound is returned when no matching pending
// request exists.
var ErrFriendRequestNotFound = errors.New("friend request not found")

// ErrNotFriends is returned when a friendship to remove does not
// exist.
var ErrNotFriends = errors.New("users are not friends")

// FriendRepo provides persistence operations for friend requests and
// friendships.
type FriendRepo struct {
    db *sql.DB
}

// NewFriendRepo constructs a FriendRepo with the given DB handle.
func NewFriendRepo(db *sql.DB) *FriendRepo {
    return &FriendRepo{db: db}
}

// AreFriends reports whether a directed friendship row exists from
// userID to otherID.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, otherID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM friends WHERE user_id = ? AND friend_id = ?)`
    var exists bool
    if err := r.db.QueryRowContext(ctx, q, userID, otherID).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// SendRequest records a pending friend request from sender to
// receiver. Requests to oneself, duplicates in either direction and
// requests between existing friends are rejected.
func (r *FriendRepo) SendRequest(ctx context.Context, senderID, receiverID uint64) (*model.FriendRequest, error) {
    if senderID == receiverID {
        return nil, ErrConflict
    }
    already, err := r.AreFriends(ctx, senderID, receiverID)
    if err != nil {
        return nil, err
    }
    if already {
        return nil, ErrAlreadyFriends
    }
    const dupQ = `SELECT EXISTS(SELECT 1 FROM friend_requests
                  WHERE status = ? AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)))`
    var pending bool
    if err := r.db.QueryRowContext(ctx, dupQ, model.FriendRequestPending,
        senderID, receiverID, receiverID, senderID).Scan(&pending); err != nil {
        return nil, err
    }
    if pending {
        return nil, ErrFriendRequestExists
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO friend_requests (sender_id, receiver_id, status) VALUES (?, ?, ?)`,
        senderID, receiverID, model.FriendRequestPending)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    req := &model.FriendRequest{
        ID:         uint64(id),
        SenderID:   senderID,
        ReceiverID: receiverID,
        Status:     model.FriendRequestPending,
    }
    err = r.db.QueryRowContext(ctx, `SELECT created_at FROM friend_requests WHERE id = ?`, req.ID).
        Scan(&req.CreatedAt)
    if err != nil {
        return nil, err
    }
    return req, nil
}

// FriendRequestRow is one pending request joined with the sender's
// username.
type FriendRequestRow struct {
    ID             uint64    `json:"id"`
    SenderID       uint64    `json:"sender_id"`
    SenderUsername string    `json:"sender_username"`
    CreatedAt      time.Time `json:"created_at"`
}

// ListIncoming returns the pending requests addressed to a user,
// oldest first.
func (r *FriendRepo) ListIncoming(ctx context.Context, receiverID uint64) ([]FriendRequestRow, error) {
    const q = `SELECT fr.id, fr.sender_id, u.username, fr.created_at
               FROM friend_requests fr
               JOIN users u ON u.id = fr.sender_id
               WHERE fr.receiver_id = ? AND fr.status = ?
               ORDER BY fr.created_at ASC`
    rows, err := r.db.QueryContext(ctx, q, receiverID, model.FriendRequestPending)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]FriendRequestRow, 0)
    for rows.Next() {
        var row FriendRequestRow
        if err := rows.Scan(&row.ID, &row.SenderID, &row.SenderUsername, &row.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Respond resolves a pending request addressed to receiverID. When
// accept is true the request is marked ACCEPTED and both friendship
// rows are inserted in the same transaction; otherwise it is marked
// REJECTED.
func (r *FriendRepo) Respond(ctx context.Context, requestID, receiverID uint64, accept bool) (err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var senderID uint64
    err = tx.QueryRowContext(ctx,
        `SELECT sender_id FROM friend_requests WHERE id = ? AND receiver_id = ? AND status = ?`,
        requestID, receiverID, model.FriendRequestPending).Scan(&senderID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            err = ErrFriendRequestNotFound
        }
        return err
    }
    status := model.FriendRequestRejected
    if accept {
        status = model.FriendRequestAccepted
    }
    if _, err = tx.ExecContext(ctx,
        `UPDATE friend_requests SET status = ? WHERE id = ?`, status, requestID); err != nil {
        return err
    }
    if accept {
        if _, err = tx.ExecContext(ctx,
            `INSERT INTO friends (user_id, friend_id) VALUES (?, ?), (?, ?)`,
            senderID, receiverID, receiverID, senderID); err != nil {
            if isDuplicateKey(err) {
                err = ErrAlreadyFriends
            }
            return err
        }
    }
    return nil
}

// FriendRow is one friend with their username.
type FriendRow struct {
    UserID   uint64 `json:"user_id"`
    Username string `json:"username"`
}

// ListFriends returns a user's friends ordered by username.
func (r *FriendRepo) ListFriends(ctx context.Context, userID uint64) ([]FriendRow, error) {
    const q = `SELECT f.friend_id, u.username
               FROM friends f
               JOIN users u ON u.id = f.friend_id
               WHERE f.user_id = ?
               ORDER BY u.username ASC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]FriendRow, 0)
    for rows.Next() {
        var row FriendRow
        if err := rows.Scan(&row.UserID, &row.Username); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Remove deletes both directions of a friendship in one transaction.
// It returns ErrNotFriends when no friendship exists.
func (r *FriendRepo) Remove(ctx context.Context, userID, friendID uint64) (err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            err = tx.Commit()
        }
    }()
    var res sql.Result
    res, err = tx.ExecContext(ctx,
        `DELETE FROM friends WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
        userID, friendID, friendID, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        err = ErrNotFriends
    }
    return err
}

// FriendFavoriteRow is one movie favourited by a friend, labelled
// with the friend's username.
type FriendFavoriteRow struct {
    FriendID   uint64 `json:"friend_id"`
    Username   string `json:"username"`
    MovieID    uint64 `json:"movie_id"`
    MovieTitle string `json:"movie_title"`
}

// ListFriendFavorites returns the favourite movies of all of a user's
// friends, grouped by friend.
func (r *FriendRepo) ListFriendFavorites(ctx context.Context, userID uint64) ([]FriendFavoriteRow, error) {
    const q = `SELECT f.friend_id, u.username, m.id, m.title
               FROM friends f
               JOIN users u ON u.id = f.friend_id
               JOIN user_favorites uf ON uf.user_id = f.friend_id
               JOIN movies m ON m.id = uf.movie_id
               WHERE f.user_id = ?
               ORDER BY u.username ASC, m.title ASC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]FriendFavoriteRow, 0)
    for rows.Next() {
        var row FriendFavoriteRow
        if err := rows.Scan(&row.FriendID, &row.Username, &row.MovieID, &row.MovieTitle); err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
