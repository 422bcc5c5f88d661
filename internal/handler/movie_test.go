package handler

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/filmreel/movie-booking/internal/model"
)

func TestMovieItemRoundsRatingToTwoDecimals(t *testing.T) {
    cases := []struct {
        name   string
        stored float64
        want   float64
    }{
        {"mean of 2, 4 and 5", 11.0 / 3.0, 3.67},
        {"whole number untouched", 4.0, 4.0},
        {"half star", 3.5, 3.5},
        {"no reviews", 0, 0},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            item := toMovieItem(model.Movie{Title: "x", Rating: tc.stored})
            assert.Equal(t, tc.want, item.Rating)
        })
    }
}
