package model

import "time"

// Friend request states as stored in friend_requests.status.
const (
    FriendRequestPending  = "PENDING"
    FriendRequestAccepted = "ACCEPTED"
    FriendRequestRejected = "REJECTED"
)

// FriendRequest models a pending invitation from one user to
// another.  Status moves from PENDING to ACCEPTED or REJECTED; an
// accepted request produces two Friend rows, one in each direction.
//
// Fields:
//  ID         – primary key identifier.
//  SenderID   – user who sent the request.
//  ReceiverID – user receiving the request.
//  Status     – PENDING, ACCEPTED or REJECTED.
//  CreatedAt  – creation timestamp.
type FriendRequest struct {
    ID         uint64    // friend_requests.id
    SenderID   uint64    // friend_requests.sender_id
    ReceiverID uint64    // friend_requests.receiver_id
    Status     string    // friend_requests.status
    CreatedAt  time.Time // friend_requests.created_at
}

// Friend is one direction of an established friendship.
type Friend struct {
    ID        uint64    // friends.id
    UserID    uint64    // friends.user_id
    FriendID  uint64    // friends.friend_id
    CreatedAt time.Time // friends.created_at
}
