package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/filmreel/movie-booking/internal/model"
    "github.com/filmreel/movie-booking/internal/repository"
)

// ReviewHandler groups repositories for reviews and favourites.
type ReviewHandler struct {
    ReviewRepo *repository.ReviewRepo
    MovieRepo  *repository.MovieRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, movies *repository.MovieRepo) *ReviewHandler {
    if reviews == nil || movies == nil {
        panic("nil repository passed to NewReviewHandler")
    }
    return &ReviewHandler{ReviewRepo: reviews, MovieRepo: movies}
}

type reviewReq struct {
    Content string  `json:"content"`
    Rate    float64 `json:"rate"`
}

func (r reviewReq) validate() string {
    if strings.TrimSpace(r.Content) == "" {
        return "content is required"
    }
    if r.Rate < 0.5 || r.Rate > 5.0 {
        return "rate must be between 0.5 and 5.0"
    }
    return ""
}

// Create handles POST /v1/movies/:id/reviews.  The movie's rating and
// comment count are updated in the same transaction as the insert.
func (h *ReviewHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    movieID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    ctx := c.Request().Context()
    if _, err := h.MovieRepo.GetByID(ctx, movieID); err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    rev := &model.Review{
        UserID:  userID,
        MovieID: movieID,
        Content: strings.TrimSpace(req.Content),
        Rate:    req.Rate,
    }
    if err := h.ReviewRepo.Create(ctx, rev); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":       rev.ID,
        "movie_id": rev.MovieID,
        "content":  rev.Content,
        "rate":     rev.Rate,
    })
}

// Update handles PUT /v1/reviews/:id on behalf of the review's owner.
func (h *ReviewHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    reviewID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }
    var req reviewReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    err = h.ReviewRepo.Update(c.Request().Context(), reviewID, userID, strings.TrimSpace(req.Content), req.Rate)
    if err != nil {
        switch err {
        case repository.ErrReviewNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update review"})
    }
    return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete handles DELETE /v1/reviews/:id.  Users delete their own
// reviews; the admin variant skips the ownership check.
func (h *ReviewHandler) Delete(c echo.Context) error {
    return h.delete(c, true)
}

// AdminDelete handles DELETE /v1/admin/reviews/:id.
func (h *ReviewHandler) AdminDelete(c echo.Context) error {
    return h.delete(c, false)
}

func (h *ReviewHandler) delete(c echo.Context, requireOwner bool) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    reviewID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }
    err = h.ReviewRepo.Delete(c.Request().Context(), reviewID, userID, requireOwner)
    if err != nil {
        switch err {
        case repository.ErrReviewNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete review"})
    }
    return c.NoContent(http.StatusNoContent)
}

// MyReviews handles GET /v1/me/reviews.
func (h *ReviewHandler) MyReviews(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.ReviewRepo.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// ToggleFavorite handles POST /v1/movies/:id/favorite.  A second call
// removes the favourite again; the response reports the new state.
func (h *ReviewHandler) ToggleFavorite(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    movieID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    ctx := c.Request().Context()
    if _, err := h.MovieRepo.GetByID(ctx, movieID); err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    added, err := h.MovieRepo.ToggleFavorite(ctx, userID, movieID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to toggle favorite"})
    }
    return c.JSON(http.StatusOK, echo.Map{"movie_id": movieID, "favorited": added})
}

// MyFavorites handles GET /v1/me/favorites.
func (h *ReviewHandler) MyFavorites(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    movies, err := h.MovieRepo.ListFavorites(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies)})
}
