package handler

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/filmreel/movie-booking/internal/repository"
)

// FriendHandler groups repositories for the friends feature: sending
// and answering requests, listing friends and browsing their
// favourite movies.
type FriendHandler struct {
    FriendRepo *repository.FriendRepo
    UserRepo   *repository.UserRepo
}

func NewFriendHandler(friends *repository.FriendRepo, users *repository.UserRepo) *FriendHandler {
    if friends == nil || users == nil {
        panic("nil repository passed to NewFriendHandler")
    }
    return &FriendHandler{FriendRepo: friends, UserRepo: users}
}

// SendRequest handles POST /v1/friends/requests.  The target is named
// by username so user IDs never need to be exchanged out of band.
func (h *FriendHandler) SendRequest(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body struct {
        Username string `json:"username"`
    }
    if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Username) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username is required"})
    }
    ctx := c.Request().Context()
    target, err := h.UserRepo.GetByUsername(ctx, body.Username)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    req, err := h.FriendRepo.SendRequest(ctx, userID, target.ID)
    if err != nil {
        switch err {
        case repository.ErrConflict:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot befriend yourself"})
        case repository.ErrAlreadyFriends:
            return c.JSON(http.StatusConflict, echo.Map{"error": "already friends"})
        case repository.ErrFriendRequestExists:
            return c.JSON(http.StatusConflict, echo.Map{"error": "request already pending"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send request"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": req.ID, "receiver": target.Username, "status": req.Status})
}

// ListRequests handles GET /v1/friends/requests, the caller's pending
// incoming requests.
func (h *FriendHandler) ListRequests(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.FriendRepo.ListIncoming(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// Respond handles POST /v1/friends/requests/:id with {"accept": bool}.
func (h *FriendHandler) Respond(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    requestID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
    }
    var body struct {
        Accept bool `json:"accept"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    err = h.FriendRepo.Respond(c.Request().Context(), requestID, userID, body.Accept)
    if err != nil {
        switch err {
        case repository.ErrFriendRequestNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
        case repository.ErrAlreadyFriends:
            return c.JSON(http.StatusConflict, echo.Map{"error": "already friends"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to respond"})
    }
    return c.JSON(http.StatusOK, echo.Map{"accepted": body.Accept})
}

// ListFriends handles GET /v1/friends.
func (h *FriendHandler) ListFriends(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.FriendRepo.ListFriends(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// Remove handles DELETE /v1/friends/:id where :id is the friend's
// user ID.
func (h *FriendHandler) Remove(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    friendID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid friend id"})
    }
    if err := h.FriendRepo.Remove(c.Request().Context(), userID, friendID); err != nil {
        if err == repository.ErrNotFriends {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not friends"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove friend"})
    }
    return c.NoContent(http.StatusNoContent)
}

// FriendFavorites handles GET /v1/friends/favorites, the favourite
// movies of every friend.
func (h *FriendHandler) FriendFavorites(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.FriendRepo.ListFriendFavorites(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}
