// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public movie-browsing API: the home page list of
// current movies, ranked listings, title search and the movie detail page
// with its reviews and upcoming screenings.

package handler

import (
    "math"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/filmreel/movie-booking/internal/model"
    "github.com/filmreel/movie-booking/internal/repository"
)

// MovieHandler aggregates repositories needed for movie browsing.
type MovieHandler struct {
    MovieRepo     *repository.MovieRepo     // provides access to movie data
    ReviewRepo    *repository.ReviewRepo    // provides access to review data
    ScreeningRepo *repository.ScreeningRepo // provides access to screening data
    CinemaRepo    *repository.CinemaRepo    // provides access to cinema data
}

func NewMovieHandler(movies *repository.MovieRepo, reviews *repository.ReviewRepo, screenings *repository.ScreeningRepo, cinemas *repository.CinemaRepo) *MovieHandler {
    if movies == nil || reviews == nil || screenings == nil || cinemas == nil {
        panic("nil repository passed to NewMovieHandler")
    }
    return &MovieHandler{MovieRepo: movies, ReviewRepo: reviews, ScreeningRepo: screenings, CinemaRepo: cinemas}
}

// MovieItem is a movie in list and detail responses.  Rating is
// rendered rounded to two decimals; the stored full-precision mean
// stays in the database.
type MovieItem struct {
    ID            uint64  `json:"id"`
    Title         string  `json:"title"`
    Description   *string `json:"description,omitempty"`
    Genre         *string `json:"genre,omitempty"`
    ReleaseDate   *string `json:"release_date,omitempty"`
    PosterURL     *string `json:"poster_url,omitempty"`
    IsCurrent     bool    `json:"is_current"`
    Rating        float64 `json:"rating"`
    CommentsCount uint32  `json:"comments_count"`
}

func toMovieItem(m model.Movie) MovieItem {
    return MovieItem{
        ID:            m.ID,
        Title:         m.Title,
        Description:   m.Description,
        Genre:         m.Genre,
        ReleaseDate:   m.ReleaseDate,
        PosterURL:     m.PosterURL,
        IsCurrent:     m.IsCurrent,
        Rating:        math.Round(m.Rating*100) / 100,
        CommentsCount: m.CommentsCount,
    }
}

func toMovieItems(movies []model.Movie) []MovieItem {
    out := make([]MovieItem, 0, len(movies))
    for _, m := range movies {
        out = append(out, toMovieItem(m))
    }
    return out
}

// CinemaItem is a cinema in public responses.
type CinemaItem struct {
    ID       uint64  `json:"id"`
    Name     string  `json:"name"`
    Location *string `json:"location,omitempty"`
}

// HallItem is a hall in public responses.
type HallItem struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
    Size uint32 `json:"size"`
}

// ScreeningItem is a screening in public responses.
type ScreeningItem struct {
    ID         uint64 `json:"id"`
    MovieID    uint64 `json:"movie_id"`
    CinemaID   uint64 `json:"cinema_id"`
    HallID     uint64 `json:"hall_id"`
    StartsAt   string `json:"starts_at"`
    PriceCents uint32 `json:"price_cents"`
}

func toCinemaItem(cin model.Cinema) CinemaItem {
    return CinemaItem{ID: cin.ID, Name: cin.Name, Location: cin.Location}
}

func toScreeningItems(screenings []model.Screening) []ScreeningItem {
    out := make([]ScreeningItem, 0, len(screenings))
    for _, s := range screenings {
        out = append(out, ScreeningItem{
            ID:         s.ID,
            MovieID:    s.MovieID,
            CinemaID:   s.CinemaID,
            HallID:     s.HallID,
            StartsAt:   s.StartsAt.UTC().Format(timeFormat),
            PriceCents: s.PriceCents,
        })
    }
    return out
}

// timeFormat renders screening times the same way everywhere.
const timeFormat = "2006-01-02T15:04:05Z07:00"

// Home handles GET /v1/movies/home.  It returns the movies currently
// showing anywhere, for the landing page.
func (h *MovieHandler) Home(c echo.Context) error {
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 || limit > 100 {
        limit = 20
    }
    movies, err := h.MovieRepo.ListCurrent(c.Request().Context(), limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies)})
}

// ListShowing handles GET /v1/movies/showing with pagination.
func (h *MovieHandler) ListShowing(c echo.Context) error {
    page, pageSize := pageParams(c)
    movies, total, err := h.MovieRepo.ListShowing(c.Request().Context(), page, pageSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies), "total": total, "page": page})
}

// ListTopRated handles GET /v1/movies/top-rated with pagination.
func (h *MovieHandler) ListTopRated(c echo.Context) error {
    page, pageSize := pageParams(c)
    movies, total, err := h.MovieRepo.ListTopRated(c.Request().Context(), page, pageSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies), "total": total, "page": page})
}

// ListMostCommented handles GET /v1/movies/most-commented with pagination.
func (h *MovieHandler) ListMostCommented(c echo.Context) error {
    page, pageSize := pageParams(c)
    movies, total, err := h.MovieRepo.ListMostCommented(c.Request().Context(), page, pageSize)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies), "total": total, "page": page})
}

// Search handles GET /v1/movies/search?q=…, a case-insensitive title
// search.
func (h *MovieHandler) Search(c echo.Context) error {
    q := strings.TrimSpace(c.QueryParam("q"))
    if q == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
    }
    movies, err := h.MovieRepo.SearchByTitle(c.Request().Context(), q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toMovieItems(movies)})
}

// Detail handles GET /v1/movies/:id.  The response bundles the movie,
// its reviews with author usernames and its upcoming screenings so
// the detail page renders from one request.
func (h *MovieHandler) Detail(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    ctx := c.Request().Context()
    m, err := h.MovieRepo.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    reviews, err := h.ReviewRepo.ListByMovie(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    screenings, err := h.ScreeningRepo.ListUpcomingByMovie(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "movie":      toMovieItem(*m),
        "reviews":    reviews,
        "screenings": toScreeningItems(screenings),
    })
}

// ListCinemas handles GET /v1/cinemas, the public cinema directory.
func (h *MovieHandler) ListCinemas(c echo.Context) error {
    cinemas, err := h.CinemaRepo.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]CinemaItem, 0, len(cinemas))
    for _, cin := range cinemas {
        out = append(out, toCinemaItem(cin))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CinemaMovies handles GET /v1/cinemas/movies.  It returns, for every
// cinema, the movies with upcoming screenings there.
func (h *MovieHandler) CinemaMovies(c echo.Context) error {
    grouped, err := h.CinemaRepo.ListCurrentMoviesByCinema(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": grouped})
}

// CinemaDetail handles GET /v1/cinemas/:id with the cinema's halls
// and screenings.
func (h *MovieHandler) CinemaDetail(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
    }
    ctx := c.Request().Context()
    cin, err := h.CinemaRepo.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrCinemaNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    halls, err := h.CinemaRepo.ListHalls(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    screenings, err := h.ScreeningRepo.ListByCinema(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    hallItems := make([]HallItem, 0, len(halls))
    for _, hall := range halls {
        hallItems = append(hallItems, HallItem{ID: hall.ID, Name: hall.Name, Size: hall.Size})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "cinema":     toCinemaItem(*cin),
        "halls":      hallItems,
        "screenings": toScreeningItems(screenings),
    })
}

// SearchScreenings handles GET /v1/screenings/search with optional
// movie and cinema filters plus pagination.
func (h *MovieHandler) SearchScreenings(c echo.Context) error {
    page, pageSize := pageParams(c)
    q := repository.ScreeningSearchQuery{
        Movie:    strings.TrimSpace(c.QueryParam("movie")),
        Cinema:   strings.TrimSpace(c.QueryParam("cinema")),
        Page:     page,
        PageSize: pageSize,
    }
    rows, total, err := h.ScreeningRepo.SearchUpcoming(c.Request().Context(), q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": total, "page": page})
}
