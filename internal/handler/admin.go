// This file defines the admin API: catalogue management for movies,
// cinemas and screenings. All routes are wrapped in RequireRole(ADMIN)
// by the router.
package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/filmreel/movie-booking/internal/model"
    "github.com/filmreel/movie-booking/internal/repository"
)

// AdminHandler bundles repositories for catalogue administration.
type AdminHandler struct {
    MovieRepo     *repository.MovieRepo
    CinemaRepo    *repository.CinemaRepo
    ScreeningRepo *repository.ScreeningRepo
    BookingRepo   *repository.BookingRepo
}

func NewAdminHandler(movies *repository.MovieRepo, cinemas *repository.CinemaRepo, screenings *repository.ScreeningRepo, bookings *repository.BookingRepo) *AdminHandler {
    if movies == nil || cinemas == nil || screenings == nil || bookings == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{MovieRepo: movies, CinemaRepo: cinemas, ScreeningRepo: screenings, BookingRepo: bookings}
}

// fanOutHours are the daily time slots screenings are generated at
// when a movie is created with a cinema fan-out.
var fanOutHours = []int{10, 14, 18}

const defaultPriceCents uint32 = 30000

// optional turns a form value into a nullable column value.
func optional(s string) *string {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil
    }
    return &s
}

// CreateMovie handles POST /v1/admin/movies.  When cinema_ids is
// present (empty means every cinema) screenings are fanned out over
// each selected cinema's halls at the fixed daily slots.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
    var body struct {
        Title       string   `json:"title"`
        Description string   `json:"description"`
        Genre       string   `json:"genre"`
        ReleaseDate string   `json:"release_date"`
        PosterURL   string   `json:"poster_url"`
        CinemaIDs   []uint64 `json:"cinema_ids"`
        AllCinemas  bool     `json:"all_cinemas"`
        PriceCents  uint32   `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(body.Title) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }
    if body.PriceCents == 0 {
        body.PriceCents = defaultPriceCents
    }

    ctx := c.Request().Context()
    m := &model.Movie{
        Title:       strings.TrimSpace(body.Title),
        Description: optional(body.Description),
        Genre:       optional(body.Genre),
        ReleaseDate: optional(body.ReleaseDate),
        PosterURL:   optional(body.PosterURL),
    }
    if err := h.MovieRepo.Create(ctx, m); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
    }

    var targets []model.Cinema
    if body.AllCinemas {
        all, err := h.CinemaRepo.ListAll(ctx)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        targets = all
    } else {
        for _, id := range body.CinemaIDs {
            cin, err := h.CinemaRepo.GetByID(ctx, id)
            if err != nil {
                if err == repository.ErrCinemaNotFound {
                    return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
            }
            targets = append(targets, *cin)
        }
    }

    screenings := make([]model.Screening, 0)
    now := time.Now().UTC()
    for _, cin := range targets {
        halls, err := h.CinemaRepo.ListHalls(ctx, cin.ID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        for _, hall := range halls {
            for _, hour := range fanOutHours {
                starts := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
                screenings = append(screenings, model.Screening{
                    MovieID:    m.ID,
                    CinemaID:   cin.ID,
                    HallID:     hall.ID,
                    StartsAt:   starts,
                    PriceCents: body.PriceCents,
                })
            }
        }
    }
    if err := h.ScreeningRepo.CreateBulk(ctx, screenings); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate screening in fan-out"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create screenings"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "movie":      toMovieItem(*m),
        "screenings": len(screenings),
    })
}

// UpdateMovie handles PUT /v1/admin/movies/:id.  Omitted fields keep
// their stored values; derived columns cannot be set here.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    var body struct {
        Title       *string `json:"title"`
        Description *string `json:"description"`
        Genre       *string `json:"genre"`
        ReleaseDate *string `json:"release_date"`
        PosterURL   *string `json:"poster_url"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx := c.Request().Context()
    m, err := h.MovieRepo.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
        m.Title = strings.TrimSpace(*body.Title)
    }
    if body.Description != nil {
        m.Description = optional(*body.Description)
    }
    if body.Genre != nil {
        m.Genre = optional(*body.Genre)
    }
    if body.ReleaseDate != nil {
        m.ReleaseDate = optional(*body.ReleaseDate)
    }
    if body.PosterURL != nil {
        m.PosterURL = optional(*body.PosterURL)
    }
    if err := h.MovieRepo.Update(ctx, m); err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update movie"})
    }
    return c.JSON(http.StatusOK, toMovieItem(*m))
}

// DeleteMovieAtCinema handles DELETE /v1/admin/cinemas/:cinemaID/movies/:movieID.
// It removes the movie's screenings at one cinema and deletes the
// movie itself once no screenings remain anywhere.  Screenings with
// bookings block the removal.
func (h *AdminHandler) DeleteMovieAtCinema(c echo.Context) error {
    cinemaID, ok := pathID(c, "cinemaID")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
    }
    movieID, ok := pathID(c, "movieID")
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
    if _, err := h.CinemaRepo.GetByID(ctx, cinemaID); err != nil {
        if err == repository.ErrCinemaNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    tx, err := h.MovieRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    remaining, err := h.ScreeningRepo.DeleteByMovieAndCinemaTx(ctx, tx, movieID, cinemaID)
    if err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "screenings still have bookings"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete screenings"})
    }
    movieDeleted := false
    if remaining == 0 {
        if err := h.MovieRepo.DeleteTx(ctx, tx, movieID); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete movie"})
        }
        movieDeleted = true
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
    }
    committed = true
    return c.JSON(http.StatusOK, echo.Map{
        "remaining_screenings": remaining,
        "movie_deleted":        movieDeleted,
    })
}

// CreateCinema handles POST /v1/admin/cinemas with its halls in one
// request.
func (h *AdminHandler) CreateCinema(c echo.Context) error {
    var body struct {
        Name     string `json:"name"`
        Location string `json:"location"`
        Halls    []struct {
            Name string `json:"name"`
            Size uint32 `json:"size"`
        } `json:"halls"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(body.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if len(body.Halls) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one hall is required"})
    }
    halls := make([]model.Hall, 0, len(body.Halls))
    for _, hall := range body.Halls {
        if strings.TrimSpace(hall.Name) == "" || hall.Size == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "each hall needs a name and a positive size"})
        }
        halls = append(halls, model.Hall{Name: strings.TrimSpace(hall.Name), Size: hall.Size})
    }
    ctx := c.Request().Context()
    if _, err := h.CinemaRepo.GetByName(ctx, strings.TrimSpace(body.Name)); err == nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "cinema name already exists"})
    } else if err != repository.ErrCinemaNotFound {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    cin := &model.Cinema{Name: strings.TrimSpace(body.Name), Location: optional(body.Location)}
    if err := h.CinemaRepo.CreateWithHalls(ctx, cin, halls); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "cinema name already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create cinema"})
    }
    hallItems := make([]HallItem, 0, len(halls))
    for _, hall := range halls {
        hallItems = append(hallItems, HallItem{ID: hall.ID, Name: hall.Name, Size: hall.Size})
    }
    return c.JSON(http.StatusCreated, echo.Map{"cinema": toCinemaItem(*cin), "halls": hallItems})
}

// DeleteCinema handles DELETE /v1/admin/cinemas/:id.  The cinema
// cannot be removed while screenings still reference it.
func (h *AdminHandler) DeleteCinema(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
    }
    if err := h.CinemaRepo.Delete(c.Request().Context(), id); err != nil {
        switch err {
        case repository.ErrCinemaNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "cinema still has screenings"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete cinema"})
    }
    return c.NoContent(http.StatusNoContent)
}

// CreateScreening handles POST /v1/admin/screenings.  The hall must
// belong to the named cinema; a duplicate (movie, cinema, hall,
// starts_at) tuple is rejected.
func (h *AdminHandler) CreateScreening(c echo.Context) error {
    var body struct {
        MovieID    uint64 `json:"movie_id"`
        CinemaID   uint64 `json:"cinema_id"`
        HallID     uint64 `json:"hall_id"`
        StartsAt   string `json:"starts_at"`
        PriceCents uint32 `json:"price_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if body.MovieID == 0 || body.CinemaID == 0 || body.HallID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id/cinema_id/hall_id required"})
    }
    startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
    }
    if body.PriceCents == 0 {
        body.PriceCents = defaultPriceCents
    }
    ctx := c.Request().Context()
    if _, err := h.MovieRepo.GetByID(ctx, body.MovieID); err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    hall, err := h.CinemaRepo.GetHall(ctx, body.HallID)
    if err != nil {
        if err == repository.ErrHallNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if hall.CinemaID != body.CinemaID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "hall does not belong to cinema"})
    }
    s := &model.Screening{
        MovieID:    body.MovieID,
        CinemaID:   body.CinemaID,
        HallID:     body.HallID,
        StartsAt:   startsAt.UTC(),
        PriceCents: body.PriceCents,
    }
    if err := h.ScreeningRepo.Create(ctx, s); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "screening already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create screening"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":          s.ID,
        "movie_id":    s.MovieID,
        "cinema_id":   s.CinemaID,
        "hall_id":     s.HallID,
        "starts_at":   s.StartsAt.UTC().Format(timeFormat),
        "price_cents": s.PriceCents,
    })
}

// DeleteScreening handles DELETE /v1/admin/screenings/:id.  Blocked
// with 409 while bookings reference the screening.
func (h *AdminHandler) DeleteScreening(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
    }
    if err := h.ScreeningRepo.Delete(c.Request().Context(), id); err != nil {
        switch err {
        case repository.ErrScreeningNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "screening still has bookings"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete screening"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ScreeningBookings handles GET /v1/admin/screenings/:id/bookings.
func (h *AdminHandler) ScreeningBookings(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
    }
    ctx := c.Request().Context()
    if _, err := h.ScreeningRepo.GetByID(ctx, id); err != nil {
        if err == repository.ErrScreeningNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    rows, err := h.BookingRepo.ListByScreening(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}
