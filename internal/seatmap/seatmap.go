// Package seatmap derives the seat chart of a screening from its
// hall's flat seat count.  Seats are not stored as rows anywhere: a
// seat exists only as a 1-based number inside the chart, mapped to a
// (row, column) position by a fixed row width.  Halls whose size is
// not an exact multiple of the row width expose only the full rows;
// the remainder seats are not part of the chart.  The row width is
// configuration, not a constant baked into call sites.
package seatmap

// DefaultRowWidth is the number of seats per row used when no
// explicit width is configured.
const DefaultRowWidth uint32 = 10

// Seat statuses rendered in a chart.
const (
    StatusAvailable = "available"
    StatusBooked    = "booked"
)

// Seat is one cell of a chart.
type Seat struct {
    Number uint32 `json:"seat_number"` // 1-based, row-major
    Status string `json:"status"`      // available | booked
}

// Capacity returns how many seats the chart for a hall of the given
// size actually covers: rows * width with rows = size / width.  A
// zero width yields zero capacity.
func Capacity(hallSize, rowWidth uint32) uint32 {
    if rowWidth == 0 {
        return 0
    }
    return hallSize / rowWidth * rowWidth
}

// Position maps a seat number to its zero-based (row, column)
// coordinates.  The caller must ensure n >= 1.
func Position(n, rowWidth uint32) (row, col uint32) {
    return (n - 1) / rowWidth, (n - 1) % rowWidth
}

// Build produces the chart for a hall of hallSize seats with the
// given row width, marking every seat number in booked as booked.
// Booked numbers outside [1, Capacity] cannot be placed in the chart;
// they are returned in invalid so the caller can surface them, rather
// than being dropped silently.
func Build(hallSize, rowWidth uint32, booked []uint32) (rows [][]Seat, invalid []uint32) {
    if rowWidth == 0 {
        rowWidth = DefaultRowWidth
    }
    rowCount := hallSize / rowWidth
    rows = make([][]Seat, rowCount)
    for r := uint32(0); r < rowCount; r++ {
        row := make([]Seat, rowWidth)
        for c := uint32(0); c < rowWidth; c++ {
            row[c] = Seat{Number: r*rowWidth + c + 1, Status: StatusAvailable}
        }
        rows[r] = row
    }
    cap := rowCount * rowWidth
    for _, n := range booked {
        if n < 1 || n > cap {
            invalid = append(invalid, n)
            continue
        }
        r, c := Position(n, rowWidth)
        rows[r][c].Status = StatusBooked
    }
    return rows, invalid
}
