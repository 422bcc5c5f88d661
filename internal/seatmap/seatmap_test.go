package seatmap

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBuildShape(t *testing.T) {
    cases := []struct {
        name     string
        hallSize uint32
        width    uint32
        wantRows int
    }{
        {"exact multiple", 50, 10, 5},
        {"remainder dropped", 57, 10, 5},
        {"smaller than one row", 7, 10, 0},
        {"zero hall", 0, 10, 0},
        {"custom width", 24, 8, 3},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rows, invalid := Build(tc.hallSize, tc.width, nil)
            require.Len(t, rows, tc.wantRows)
            assert.Empty(t, invalid)
            // numbering is 1-based row-major and every row is full width
            next := uint32(1)
            for _, row := range rows {
                require.Len(t, row, int(tc.width))
                for _, s := range row {
                    assert.Equal(t, next, s.Number)
                    assert.Equal(t, StatusAvailable, s.Status)
                    next++
                }
            }
        })
    }
}

func TestBuildMarksBookedSeats(t *testing.T) {
    rows, invalid := Build(50, 10, []uint32{1, 10, 11, 50})
    require.Len(t, rows, 5)
    assert.Empty(t, invalid)

    booked := map[uint32]bool{}
    for _, row := range rows {
        for _, s := range row {
            if s.Status == StatusBooked {
                booked[s.Number] = true
            }
        }
    }
    assert.Equal(t, map[uint32]bool{1: true, 10: true, 11: true, 50: true}, booked)
}

func TestBuildReportsInvalidSeats(t *testing.T) {
    // hall of 57 seats keeps 5 rows of 10: numbers 51..57 exist in the
    // hall but not in the chart, 0 and 9999 never existed at all
    rows, invalid := Build(57, 10, []uint32{5, 51, 0, 9999})
    require.Len(t, rows, 5)
    assert.ElementsMatch(t, []uint32{51, 0, 9999}, invalid)
    assert.Equal(t, StatusBooked, rows[0][4].Status)
}

func TestBookThenCancelRoundTrip(t *testing.T) {
    rows, _ := Build(50, 10, []uint32{5})
    assert.Equal(t, StatusBooked, rows[0][4].Status)

    // after cancellation the stored booking set no longer contains 5
    rows, _ = Build(50, 10, nil)
    assert.Equal(t, StatusAvailable, rows[0][4].Status)
}

func TestCapacityAndPosition(t *testing.T) {
    assert.Equal(t, uint32(50), Capacity(57, 10))
    assert.Equal(t, uint32(50), Capacity(50, 10))
    assert.Equal(t, uint32(0), Capacity(9, 10))
    assert.Equal(t, uint32(0), Capacity(100, 0))

    row, col := Position(1, 10)
    assert.Equal(t, uint32(0), row)
    assert.Equal(t, uint32(0), col)
    row, col = Position(25, 10)
    assert.Equal(t, uint32(2), row)
    assert.Equal(t, uint32(4), col)
    row, col = Position(50, 10)
    assert.Equal(t, uint32(4), row)
    assert.Equal(t, uint32(9), col)
}
