package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/filmreel/movie-booking/internal/handler"    // import the handlers that implement business logic
    "github.com/filmreel/movie-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers and monitoring systems use this to verify the
    // service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected account endpoints live under /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token and returns a new pair.
    g.POST("/refresh", a.Refresh)
    // Logout accepts either an Authorization header (revoke all
    // sessions) or a refresh_token body (revoke one session), so it is
    // registered without the JWT middleware.
    g.POST("/logout", a.Logout)

    me := e.Group("/v1/me", middleware.JWTAuth(jwtSecret))
    me.GET("", a.Me)
    me.PUT("", a.UpdateProfile)
    me.PUT("/password", a.UpdatePassword)
}

// RegisterPublic registers unauthenticated browse endpoints: movie
// listings, search, movie and cinema detail pages and the screening
// seat map.  Guests can browse everything; booking requires a session.
func RegisterPublic(e *echo.Echo, m *handler.MovieHandler, b *handler.BookingHandler) {
    e.GET("/v1/movies/home", m.Home)
    e.GET("/v1/movies/showing", m.ListShowing)
    e.GET("/v1/movies/top-rated", m.ListTopRated)
    e.GET("/v1/movies/most-commented", m.ListMostCommented)
    e.GET("/v1/movies/search", m.Search)
    e.GET("/v1/movies/:id", m.Detail)

    e.GET("/v1/cinemas", m.ListCinemas)
    e.GET("/v1/cinemas/movies", m.CinemaMovies)
    e.GET("/v1/cinemas/:id", m.CinemaDetail)

    e.GET("/v1/screenings/search", m.SearchScreenings)
    e.GET("/v1/screenings/:id/seats", b.SeatMap)
}

// RegisterUser registers endpoints that require a valid session with
// the USER or ADMIN role: booking, cancelling, reviews, favourites
// and friends.
func RegisterUser(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, f *handler.FriendHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("USER", "ADMIN"),
    )

    // ---- Bookings ----
    g.POST("/screenings/:id/bookings", b.Book)
    g.GET("/bookings/:id", b.Detail)
    g.DELETE("/bookings/:id", b.Cancel)
    g.GET("/me/bookings", b.MyBookings)

    // ---- Reviews ----
    g.POST("/movies/:id/reviews", r.Create)
    g.PUT("/reviews/:id", r.Update)
    g.DELETE("/reviews/:id", r.Delete)
    g.GET("/me/reviews", r.MyReviews)

    // ---- Favourites ----
    g.POST("/movies/:id/favorite", r.ToggleFavorite)
    g.GET("/me/favorites", r.MyFavorites)

    // ---- Friends ----
    g.POST("/friends/requests", f.SendRequest)
    g.GET("/friends/requests", f.ListRequests)
    g.POST("/friends/requests/:id", f.Respond)
    g.GET("/friends", f.ListFriends)
    g.GET("/friends/favorites", f.FriendFavorites)
    g.DELETE("/friends/:id", f.Remove)
}

// RegisterAdmin registers ADMIN-scoped catalogue management endpoints
// under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, r *handler.ReviewHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )

    // ---- Movies ----
    g.POST("/movies", a.CreateMovie)
    g.PUT("/movies/:id", a.UpdateMovie)
    g.PATCH("/movies/:id", a.UpdateMovie) // allow partial updates via PATCH as well
    g.DELETE("/cinemas/:cinemaID/movies/:movieID", a.DeleteMovieAtCinema)

    // ---- Cinemas ----
    g.POST("/cinemas", a.CreateCinema)
    g.DELETE("/cinemas/:id", a.DeleteCinema)

    // ---- Screenings ----
    g.POST("/screenings", a.CreateScreening)
    g.DELETE("/screenings/:id", a.DeleteScreening)
    g.GET("/screenings/:id/bookings", a.ScreeningBookings)

    // ---- Moderation ----
    g.DELETE("/reviews/:id", r.AdminDelete)
}
