package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers liveness probes. It does not touch the database; a
// degraded MySQL connection surfaces through request errors, not here.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "movie-booking"})
}
