package middleware

// identity.go defines helper functions shared across middleware files. It
// provides user identifier extraction from the values JWTAuth stores in the
// Echo context, used by the rate limiter to build per-user keys. When no
// token is present "anon" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's ID as a string for use in
// cache and rate-limit keys. JWT numeric claims decode as float64, so that
// case comes first.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case string:
        if v != "" {
            return v
        }
    }
    return "anon"
}
