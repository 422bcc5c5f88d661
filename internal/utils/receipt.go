package utils

import "github.com/google/uuid"

// NewReceiptRef returns the reference string shared by all seats booked
// in one admission request.  Receipts are opaque to the client; a UUID
// keeps them unguessable without another database round trip.
func NewReceiptRef() string {
    return uuid.NewString()
}
